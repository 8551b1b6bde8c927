// Package storage keeps uploaded supplier logos.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

// MaxLogoSize is the largest accepted logo upload.
const MaxLogoSize = 2 << 20

var (
	ErrUnsupportedType = errors.New("unsupported logo type")
	ErrTooLarge        = errors.New("logo too large")
	ErrNotFound        = errors.New("logo not found")
)

var logoExtensions = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/svg+xml": ".svg",
}

// LogoStore stores and serves logo images.
type LogoStore interface {
	Put(ctx context.Context, userID uint, contentType string, r io.Reader, size int64) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// CheckLogo validates the declared content type and size of an upload.
func CheckLogo(contentType string, size int64) error {
	if _, ok := logoExtensions[contentType]; !ok {
		return ErrUnsupportedType
	}
	if size <= 0 || size > MaxLogoSize {
		return ErrTooLarge
	}
	return nil
}

// DetectLogoType returns the content type of an upload from its first
// bytes. SVG is text, so a declared SVG is taken as is.
func DetectLogoType(head []byte, declared string) string {
	if declared == "image/svg+xml" {
		return declared
	}
	return http.DetectContentType(head)
}

// LogoKey builds the object key of a new logo of userID.
func LogoKey(userID uint, contentType string) string {
	return fmt.Sprintf("logos/%d/%s%s", userID, uuid.NewString(), logoExtensions[contentType])
}
