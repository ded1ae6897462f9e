package capturedate

import (
	"fmt"
	"io"

	"github.com/barasher/go-exiftool"
)

// ExiftoolSource reads metadata through an external exiftool process. It
// understands far more containers than ExifSource (PNG eXIf/XMP chunks among
// them) at the cost of requiring exiftool on PATH.
type ExiftoolSource struct {
	et *exiftool.Exiftool
}

// NewExiftoolSource starts the exiftool process. Close must be called to
// stop it.
func NewExiftoolSource() (*ExiftoolSource, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("start exiftool: %w", err)
	}
	return &ExiftoolSource{et: et}, nil
}

// Tags ignores r; exiftool reads the file itself.
func (s *ExiftoolSource) Tags(path string, _ io.Reader) (Tags, bool) {
	infos := s.et.ExtractMetadata(path)
	if len(infos) == 0 {
		return nil, false
	}

	info := infos[0]
	if info.Err != nil || len(info.Fields) == 0 {
		return nil, false
	}

	tags := make(Tags, len(info.Fields))
	for name, v := range info.Fields {
		if str, ok := v.(string); ok {
			tags[name] = str
			continue
		}
		tags[name] = fmt.Sprint(v)
	}
	return tags, true
}

// Close stops the exiftool process.
func (s *ExiftoolSource) Close() error {
	return s.et.Close()
}
