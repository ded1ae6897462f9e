package capturedate

import (
	"io"
	"os"
	"strings"
)

// TagDateTimeOriginal is the friendly name of the EXIF capture timestamp, as
// distinct from the file-modified (DateTime) and digitized timestamps.
const TagDateTimeOriginal = "DateTimeOriginal"

// Tags maps a friendly metadata tag name to its raw string value.
type Tags map[string]string

// MetadataSource reads the metadata block embedded in an image container.
//
// Implementations return (tags, true) when a metadata block exists. If the
// container has none, or it cannot be read for any reason, they return
// (nil, false).
type MetadataSource interface {
	Tags(path string, r io.Reader) (Tags, bool)
}

// Resolve returns the capture date of the image in r as YYYY-MM-DD.
//
// If src is nil, the EXIF source is used.
func Resolve(src MetadataSource, path string, r io.Reader) (string, bool) {
	if src == nil {
		src = ExifSource{}
	}

	tags, ok := src.Tags(path, r)
	if !ok {
		return "", false
	}

	raw, ok := tags[TagDateTimeOriginal]
	if !ok {
		return "", false
	}

	return Normalize(raw), true
}

// ResolveFile opens the file at path and resolves its capture date.
// A file that cannot be opened has no capture date.
func ResolveFile(path string, src MetadataSource) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	return Resolve(src, path, f)
}

// Normalize converts a raw EXIF timestamp ("2023:09:21 18:17:46") into a
// date string ("2023-09-21").
//
// Only the separators are rewritten; the value is not checked against the
// calendar, so malformed input passes through.
func Normalize(raw string) string {
	date, _, _ := strings.Cut(raw, " ")
	return strings.ReplaceAll(date, ":", "-")
}
