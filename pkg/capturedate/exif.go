package capturedate

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// maxExifChunk bounds the eXIf chunk read from a PNG.
const maxExifChunk = 1 << 20

var (
	pngSignature = []byte("\x89PNG\r\n\x1a\n")

	errNoExifChunk = errors.New("png has no eXIf chunk")
)

// ExifSource reads EXIF blocks from JPEG APP1 segments, PNG eXIf chunks and
// raw TIFF streams.
type ExifSource struct{}

// Tags decodes the EXIF block of the image in r.
func (ExifSource) Tags(path string, r io.Reader) (Tags, bool) {
	br := bufio.NewReader(r)

	var src io.Reader = br
	if sig, err := br.Peek(len(pngSignature)); err == nil && bytes.Equal(sig, pngSignature) {
		payload, err := pngExif(br)
		if err != nil {
			return nil, false
		}
		src = bytes.NewReader(payload)
	}

	x, err := exif.Decode(src)
	// Non-critical errors (a broken GPS or Interop sub-IFD) still leave the
	// main and Exif IFDs usable.
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return nil, false
	}

	c := tagCollector{}
	if err := x.Walk(c); err != nil {
		return nil, false
	}
	return Tags(c), true
}

// pngExif returns the payload of the first eXIf chunk, which holds a raw
// TIFF block.
func pngExif(r io.Reader) ([]byte, error) {
	if _, err := io.CopyN(io.Discard, r, int64(len(pngSignature))); err != nil {
		return nil, err
	}

	var hdr [8]byte
	for {
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, err
		}
		length := binary.BigEndian.Uint32(hdr[:4])
		typ := string(hdr[4:])

		switch typ {
		case "eXIf":
			if length > maxExifChunk {
				return nil, errNoExifChunk
			}
			data := make([]byte, length)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, err
			}
			return data, nil
		case "IEND":
			return nil, errNoExifChunk
		}

		// Skip data and CRC.
		if _, err := io.CopyN(io.Discard, r, int64(length)+4); err != nil {
			return nil, err
		}
	}
}

// tagCollector keeps every ASCII-valued field. When two fields share a
// friendly name the first one walked wins.
type tagCollector Tags

func (c tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag == nil {
		return nil
	}
	if _, seen := c[string(name)]; seen {
		return nil
	}

	s, err := tag.StringVal()
	if err != nil {
		// Not an ASCII field.
		return nil
	}
	c[string(name)] = s
	return nil
}
