// Package notify composes the WhatsApp messages the operators send by hand.
// It builds the text and a wa.me deep link; nothing here transmits anything.
package notify

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/miramax/cobranzas/models"
	"gorm.io/gorm"
)

// PaymentApprovedMessage is the text sent after an admin verifies a payment.
func PaymentApprovedMessage(clientName string, amount float64, month string, year int) string {
	return fmt.Sprintf(
		"Hola %s, confirmamos la recepción de tu pago de S/ %.2f por el servicio de %s %d. ¡Gracias por tu preferencia! - MIRAMAX",
		clientName, amount, month, year)
}

// PaymentRejectedMessage is the text sent after an admin rejects a reported
// payment, including the operator's reason.
func PaymentRejectedMessage(clientName string, amount float64, month string, year int, reason string) string {
	return fmt.Sprintf(
		"Hola %s, no pudimos validar tu pago de S/ %.2f por el servicio de %s %d. Motivo: %s. Por favor vuelve a enviar tu comprobante. - MIRAMAX",
		clientName, amount, month, year, reason)
}

// NormalizePhone strips everything but digits and prefixes the country code
// once. Numbers already carrying the code are left alone. Returns "" for a
// phone with no digits.
func NormalizePhone(phone, countryCode string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(digits, countryCode) {
		return digits
	}
	return countryCode + digits
}

// DeepLink builds a wa.me URL that opens a prefilled conversation. An empty
// or digitless phone yields "", which callers surface as "no link available".
func DeepLink(phone, countryCode, message string) string {
	normalized := NormalizePhone(phone, countryCode)
	if normalized == "" {
		return ""
	}
	return "https://wa.me/" + normalized + "?text=" + url.QueryEscape(message)
}

// RecordHistory appends an outbound-message log entry. This is a side
// channel: a failure is logged and swallowed so it never rolls back the
// payment transition that triggered it.
func RecordHistory(db *gorm.DB, clientID uint, collectorID *uint, messageType, message, sentBy string) {
	entry := models.WhatsAppHistory{
		ClientID:    &clientID,
		CollectorID: collectorID,
		MessageType: messageType,
		Message:     message,
		SentBy:      sentBy,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("whatsapp history write failed for client %d: %v", clientID, err)
	}
}
