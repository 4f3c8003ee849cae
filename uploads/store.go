// Package uploads stores voucher and QR images on local disk behind a size
// ceiling and an image mimetype allowlist.
package uploads

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/miramax/cobranzas/apperrors"
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Store writes image files under a base directory.
type Store struct {
	Dir      string
	MaxBytes int64
}

func NewStore(dir string, maxBytes int64) *Store {
	return &Store{Dir: dir, MaxBytes: maxBytes}
}

// Save persists an uploaded image and returns its stable filename. Files over
// the size ceiling or outside the image allowlist are rejected with a
// validation error before anything touches disk.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.MaxBytes {
		return "", apperrors.Validation("La imagen supera el tamaño máximo permitido")
	}

	src, err := fh.Open()
	if err != nil {
		return "", apperrors.Internal("No se pudo leer el archivo", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		return "", apperrors.Internal("No se pudo leer el archivo", err)
	}
	contentType := http.DetectContentType(head[:n])
	ext, ok := extensions[contentType]
	if !ok {
		return "", apperrors.Validation("Solo se aceptan imágenes JPG, PNG o WebP")
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", apperrors.Internal("No se pudo leer el archivo", err)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", apperrors.Internal("No se pudo preparar el directorio de subidas", err)
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", apperrors.Internal("No se pudo guardar el archivo", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", apperrors.Internal("No se pudo guardar el archivo", err)
	}
	return name, nil
}
