package zones

import (
	"testing"

	"github.com/miramax/cobranzas/config"
	"github.com/miramax/cobranzas/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	assert.NoError(t, err)
	assert.NoError(t, config.Migrate(db))
	return db
}

func seedCollector(t *testing.T, db *gorm.DB, username, zone string, status models.CollectorStatus) models.Collector {
	collector := models.Collector{
		Username:     username,
		PasswordHash: "x",
		Name:         username,
		Zone:         zone,
		Status:       status,
	}
	assert.NoError(t, db.Create(&collector).Error)
	return collector
}

func TestEffectiveZone(t *testing.T) {
	tests := []struct {
		name     string
		zone     string
		locality string
		district string
		expected string
	}{
		{"Zone Wins", "Z1", "L1", "D1", "Z1"},
		{"Locality When Zone Empty", "", "L1", "D1", "L1"},
		{"District When Both Empty", "", "", "D1", "D1"},
		{"All Empty", "", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EffectiveZone(tt.zone, tt.locality, tt.district))
		})
	}
}

func TestAutoAssign(t *testing.T) {
	t.Run("Substring Match On Locality", func(t *testing.T) {
		db := setupTestDB(t)
		match := seedCollector(t, db, "norte", "Zona Norte, Mache, Otuzco", models.CollectorActive)
		seedCollector(t, db, "sur", "Zona Sur", models.CollectorActive)

		id, err := AutoAssign(db, "", "Mache", "Otuzco")
		assert.NoError(t, err)
		assert.NotNil(t, id)
		assert.Equal(t, match.ID, *id)
	})

	t.Run("Zone Takes Priority Over Locality", func(t *testing.T) {
		db := setupTestDB(t)
		seedCollector(t, db, "loc", "Mache", models.CollectorActive)
		byZone := seedCollector(t, db, "zon", "Barrio Central", models.CollectorActive)

		id, err := AutoAssign(db, "Barrio Central", "Mache", "Otuzco")
		assert.NoError(t, err)
		assert.NotNil(t, id)
		assert.Equal(t, byZone.ID, *id)
	})

	t.Run("No Match Falls Back To First Active", func(t *testing.T) {
		db := setupTestDB(t)
		seedCollector(t, db, "inactivo", "Otra Zona", models.CollectorInactive)
		active := seedCollector(t, db, "activo", "Otra Zona", models.CollectorActive)

		id, err := AutoAssign(db, "Sin Cobertura", "", "")
		assert.NoError(t, err)
		assert.NotNil(t, id)
		assert.Equal(t, active.ID, *id)
	})

	t.Run("No Collectors Yields Nil Without Error", func(t *testing.T) {
		db := setupTestDB(t)

		id, err := AutoAssign(db, "Z", "L", "D")
		assert.NoError(t, err)
		assert.Nil(t, id)
	})
}

func TestBulkAssign(t *testing.T) {
	seedClients := func(t *testing.T, db *gorm.DB) (models.Client, models.Client, models.Client) {
		a := models.Client{DNI: "1", Name: "A", Cost: 50, District: "Otuzco", Locality: "Mache"}
		b := models.Client{DNI: "2", Name: "B", Cost: 50, District: "Otuzco", Locality: "Usquil"}
		c := models.Client{DNI: "3", Name: "C", Cost: 50, District: "Julcán", Locality: "Mache"}
		assert.NoError(t, db.Create(&a).Error)
		assert.NoError(t, db.Create(&b).Error)
		assert.NoError(t, db.Create(&c).Error)
		return a, b, c
	}

	t.Run("Reassigns Matching District And Locality", func(t *testing.T) {
		db := setupTestDB(t)
		collector := seedCollector(t, db, "c1", "", models.CollectorActive)
		a, b, c := seedClients(t, db)

		total, err := BulkAssign(db, collector.ID, []Assignment{
			{District: "Otuzco", Localities: []string{"Mache", "Usquil"}},
		}, "Otuzco: Mache, Usquil")
		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)

		var got models.Client
		db.First(&got, a.ID)
		assert.Equal(t, collector.ID, *got.CollectorID)
		got = models.Client{}
		db.First(&got, b.ID)
		assert.Equal(t, collector.ID, *got.CollectorID)
		got = models.Client{}
		db.First(&got, c.ID)
		assert.Nil(t, got.CollectorID)

		var updated models.Collector
		db.First(&updated, collector.ID)
		assert.Equal(t, "Otuzco: Mache, Usquil", updated.Zone)
	})

	t.Run("Overwrites Previous Owner", func(t *testing.T) {
		db := setupTestDB(t)
		old := seedCollector(t, db, "old", "", models.CollectorActive)
		next := seedCollector(t, db, "new", "", models.CollectorActive)
		a, _, _ := seedClients(t, db)
		db.Model(&models.Client{}).Where("id = ?", a.ID).Update("collector_id", old.ID)

		total, err := BulkAssign(db, next.ID, []Assignment{
			{District: "Otuzco", Localities: []string{"Mache"}},
		}, "")
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)

		var got models.Client
		db.First(&got, a.ID)
		assert.Equal(t, next.ID, *got.CollectorID)
	})

	t.Run("Repeat Run Keeps Same Ownership", func(t *testing.T) {
		db := setupTestDB(t)
		collector := seedCollector(t, db, "c1", "", models.CollectorActive)
		a, _, _ := seedClients(t, db)

		pairs := []Assignment{{District: "Otuzco", Localities: []string{"Mache"}}}
		_, err := BulkAssign(db, collector.ID, pairs, "")
		assert.NoError(t, err)
		_, err = BulkAssign(db, collector.ID, pairs, "")
		assert.NoError(t, err)

		var got models.Client
		db.First(&got, a.ID)
		assert.Equal(t, collector.ID, *got.CollectorID)
	})

	t.Run("Empty Locality List Is Skipped", func(t *testing.T) {
		db := setupTestDB(t)
		collector := seedCollector(t, db, "c1", "", models.CollectorActive)
		seedClients(t, db)

		total, err := BulkAssign(db, collector.ID, []Assignment{
			{District: "Otuzco", Localities: nil},
		}, "")
		assert.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("Empty Assignment List Is A No-Op", func(t *testing.T) {
		db := setupTestDB(t)
		collector := seedCollector(t, db, "c1", "", models.CollectorActive)

		total, err := BulkAssign(db, collector.ID, nil, "")
		assert.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("Missing Collector Is Not Found", func(t *testing.T) {
		db := setupTestDB(t)

		_, err := BulkAssign(db, 999, nil, "")
		assert.Error(t, err)
	})
}
