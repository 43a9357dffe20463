// Package imagestore saves uploaded member photos and pin logos and returns
// the URL they are served from.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUnsupportedType is returned for a file whose extension the folder does
// not accept.
var ErrUnsupportedType = errors.New("unsupported image type")

// Store writes an object under key and returns its public URL.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// Folder groups uploads of one kind and lists the extensions it accepts,
// mapped to the content type stored with the object.
type Folder struct {
	Name    string
	Formats map[string]string
}

var (
	MemberImages = Folder{
		Name: "members",
		Formats: map[string]string{
			".jpg":  "image/jpeg",
			".jpeg": "image/jpeg",
			".png":  "image/png",
		},
	}
	PinLogos = Folder{
		Name: "pin-logos",
		Formats: map[string]string{
			".png":  "image/png",
			".jpg":  "image/jpeg",
			".jpeg": "image/jpeg",
			".webp": "image/webp",
			".svg":  "image/svg+xml",
		},
	}
)

// ContentType returns the content type for filename, or ErrUnsupportedType.
func (f Folder) ContentType(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	ct, ok := f.Formats[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	return ct, nil
}

// Key builds a unique object key: folder/YYYY/MM/uuid-filename.
func (f Folder) Key(filename string, now time.Time) string {
	return path.Join(
		f.Name,
		fmt.Sprintf("%04d/%02d", now.Year(), now.Month()),
		fmt.Sprintf("%s-%s", uuid.New().String()[:8], sanitizeFilename(filename)),
	)
}

// UploadError wraps a backend failure so callers can tell it apart from a
// rejected file.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string { return "image upload failed: " + e.Err.Error() }
func (e *UploadError) Unwrap() error { return e.Err }

// Upload checks the file type against folder, stores it and returns its URL.
func Upload(ctx context.Context, s Store, folder Folder, filename string, r io.Reader, size int64) (string, error) {
	ct, err := folder.ContentType(filename)
	if err != nil {
		return "", err
	}
	url, err := s.Put(ctx, folder.Key(filename, time.Now().UTC()), r, size, ct)
	if err != nil {
		return "", &UploadError{Err: err}
	}
	return url, nil
}

// sanitizeFilename keeps only the base name and replaces anything outside
// [A-Za-z0-9._-] with '_'. Long names are cut to 100 bytes, keeping the
// extension.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 || string(result) == "." || string(result) == ".." {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
