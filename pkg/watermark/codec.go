package watermark

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// JPEGQuality is used when re-encoding JPEG output.
const JPEGQuality = 95

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Extensions lists the file extensions the codec reads and writes.
func Extensions() []string {
	return []string{".jpg", ".jpeg", ".png"}
}

// FormatFromPath maps a file extension (case-insensitive) to "jpeg" or "png".
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "jpeg", nil
	case ".png":
		return "png", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// DecodeFile decodes the JPEG or PNG image at path.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Encode writes img to w as format ("jpeg" or "png").
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "jpeg":
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return fmt.Errorf("encode jpeg: %w", err)
		}
	case "png":
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return nil
}
