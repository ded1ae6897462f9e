package batch

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/quidome/photo-datemark/pkg/watermark"
)

var (
	// ErrDestinationExists is returned when overwriting is disabled and the
	// output file already exists.
	ErrDestinationExists = errors.New("destination file already exists")
)

// writeImage encodes img to dst in the format implied by dst's extension.
// If allowOverwrite is false, an existing dst is left untouched.
func writeImage(dst string, img image.Image, allowOverwrite bool) error {
	format, err := watermark.FormatFromPath(dst)
	if err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE
	if !allowOverwrite {
		flags |= os.O_EXCL
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(dst, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return ErrDestinationExists
		}
		return fmt.Errorf("create destination: %w", err)
	}

	if err := watermark.Encode(f, img, format); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return err
	}

	// Ensure data is written to disk
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync: %w", err)
	}

	return f.Close()
}
