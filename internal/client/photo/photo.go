// Package photo validates profile pictures before they are uploaded and
// manages the short-lived display handles created for them.
package photo

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/notesync/internal/client/models"
	"github.com/dmitrijs2005/notesync/internal/common"
)

// MaxSize is the largest accepted photo, in bytes.
const MaxSize = 5 * 1024 * 1024

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Allowed reports whether mimeType is an accepted image type.
func Allowed(mimeType string) bool {
	return allowedTypes[normalize(mimeType)]
}

func normalize(mimeType string) string {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// Validate checks p against the type allow-list and the size limit.
// It never touches the network.
func Validate(p models.ProfilePhoto) error {
	if !Allowed(p.MimeType) {
		return common.NewValidationError("photo", "Please upload a valid image file (JPEG, PNG, GIF, or WebP)")
	}
	if len(p.Data) == 0 {
		return common.NewValidationError("photo", "Image file is empty")
	}
	if len(p.Data) > MaxSize {
		return common.NewValidationError("photo", "Image size must be less than 5MB")
	}
	return nil
}

// FromReader reads a photo from r. An empty mimeType is sniffed from the
// content. Reading stops just past MaxSize, so oversized input is rejected
// without being buffered whole.
func FromReader(r io.Reader, mimeType string) (*models.ProfilePhoto, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	p := &models.ProfilePhoto{Data: data, MimeType: normalize(mimeType)}
	if err := Validate(*p); err != nil {
		return nil, err
	}
	return p, nil
}

// FromFile loads a photo from disk. The type comes from the file extension,
// falling back to the content.
func FromFile(path string) (*models.ProfilePhoto, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()

	return FromReader(f, mime.TypeByExtension(strings.ToLower(filepath.Ext(path))))
}

// DataURL embeds p in a data URL.
func DataURL(p models.ProfilePhoto) string {
	return "data:" + p.MimeType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}
