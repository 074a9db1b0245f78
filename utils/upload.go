package utils

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrFileTooLarge     = errors.New("file too large")
)

// AllowedImageExtensions is the upload allow-list, without dots.
var AllowedImageExtensions = []string{"png", "jpg", "jpeg", "gif"}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ImageUpload saves user images under Dir, which is served at URLPrefix.
type ImageUpload struct {
	Dir       string
	URLPrefix string
	MaxBytes  int64
	// MaxWidth > 0 downsizes wider images, keeping the aspect ratio.
	MaxWidth int
}

// CheckImage validates name and size only; nothing is read or written.
func (u ImageUpload) CheckImage(file *multipart.FileHeader) error {
	if !AllowedImage(file.Filename) {
		return ErrUnsupportedImage
	}
	if u.MaxBytes > 0 && file.Size > u.MaxBytes {
		return ErrFileTooLarge
	}
	return nil
}

// Save checks, decodes and writes the image as <prefix>_<sanitized name>, returning its URL.
func (u ImageUpload) Save(file *multipart.FileHeader, prefix string) (string, error) {
	if err := u.CheckImage(file); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open image file: %w", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", ErrUnsupportedImage
	}
	if u.MaxWidth > 0 && img.Bounds().Dx() > u.MaxWidth {
		img = imaging.Resize(img, u.MaxWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	name := prefix + "_" + SanitizeFilename(file.Filename)
	if err := imaging.Save(img, filepath.Join(u.Dir, name)); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return strings.TrimSuffix(u.URLPrefix, "/") + "/" + name, nil
}

func AllowedImage(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	for _, allowed := range AllowedImageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// SanitizeFilename drops any directory part and characters outside [A-Za-z0-9._-].
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, "._")
	if name == "" {
		return "upload"
	}
	return name
}
