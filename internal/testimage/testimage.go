// Package testimage builds small in-memory images, optionally carrying an
// EXIF DateTimeOriginal tag, for use in tests.
package testimage

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

const (
	tagExifIFDPointer   = 0x8769
	tagGPSIFDPointer    = 0x8825
	tagDateTimeOriginal = 0x9003

	typeASCII = 2
	typeLong  = 4
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// Exif describes the EXIF block attached by JPEGWithExif and PNGWithExif.
type Exif struct {
	DateTimeOriginal string

	// GPSOffset, when non-zero, adds a GPS IFD pointer to IFD0 that points at
	// this offset, which need not hold a valid IFD.
	GPSOffset uint32
}

// Solid returns a w×h image filled with c.
func Solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// JPEG encodes img as a JPEG. If dateTimeOriginal is not empty, an EXIF APP1
// segment carrying it is inserted right after the SOI marker.
func JPEG(t testing.TB, img image.Image, dateTimeOriginal string) []byte {
	t.Helper()

	if dateTimeOriginal == "" {
		return encodeJPEG(t, img)
	}
	return JPEGWithExif(t, img, Exif{DateTimeOriginal: dateTimeOriginal})
}

// JPEGWithExif encodes img as a JPEG with x in an APP1 segment.
func JPEGWithExif(t testing.TB, img image.Image, x Exif) []byte {
	t.Helper()

	b := encodeJPEG(t, img)
	payload := append([]byte("Exif\x00\x00"), x.TIFF()...)
	app1 := []byte{0xFF, 0xE1, 0, 0}
	binary.BigEndian.PutUint16(app1[2:], uint16(len(payload)+2))
	app1 = append(app1, payload...)

	out := make([]byte, 0, len(b)+len(app1))
	out = append(out, b[:2]...)
	out = append(out, app1...)
	out = append(out, b[2:]...)
	return out
}

func encodeJPEG(t testing.TB, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// PNG encodes img as a PNG without metadata.
func PNG(t testing.TB, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// PNGWithExif encodes img as a PNG with x in an eXIf chunk placed right
// after IHDR.
func PNGWithExif(t testing.TB, img image.Image, x Exif) []byte {
	t.Helper()

	b := PNG(t, img)
	// Signature, then IHDR: length, type, 13 data bytes, CRC.
	ihdrEnd := len(pngSignature) + 4 + 4 + 13 + 4
	if !bytes.HasPrefix(b, pngSignature) || len(b) < ihdrEnd {
		t.Fatalf("unexpected png encoding")
	}

	chunk := pngChunk("eXIf", x.TIFF())
	out := make([]byte, 0, len(b)+len(chunk))
	out = append(out, b[:ihdrEnd]...)
	out = append(out, chunk...)
	out = append(out, b[ihdrEnd:]...)
	return out
}

func pngChunk(typ string, data []byte) []byte {
	chunk := make([]byte, 4, 12+len(data))
	binary.BigEndian.PutUint32(chunk, uint32(len(data)))
	chunk = append(chunk, typ...)
	chunk = append(chunk, data...)
	crc := crc32.ChecksumIEEE(chunk[4:])
	return binary.BigEndian.AppendUint32(chunk, crc)
}

// WriteFile writes data to dir/name, creating dir if needed, and returns the
// full path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

// TIFF builds a little-endian TIFF block with IFD0 pointing at an Exif IFD
// that holds a single DateTimeOriginal entry.
func (x Exif) TIFF() []byte {
	le := binary.LittleEndian
	ascii := append([]byte(x.DateTimeOriginal), 0)

	entries := uint32(1)
	if x.GPSOffset != 0 {
		entries++
	}

	var tiff bytes.Buffer
	tiff.WriteString("II")
	binary.Write(&tiff, le, uint16(42))
	binary.Write(&tiff, le, uint32(8))

	// IFD0 at 8, then the Exif IFD, then the string data.
	exifIFD := 8 + 2 + 12*entries + 4
	dataOffset := exifIFD + 2 + 12 + 4

	binary.Write(&tiff, le, uint16(entries))
	writeEntry(&tiff, tagExifIFDPointer, typeLong, 1, exifIFD)
	if x.GPSOffset != 0 {
		writeEntry(&tiff, tagGPSIFDPointer, typeLong, 1, x.GPSOffset)
	}
	binary.Write(&tiff, le, uint32(0))

	binary.Write(&tiff, le, uint16(1))
	if len(ascii) <= 4 {
		var inline [4]byte
		copy(inline[:], ascii)
		binary.Write(&tiff, le, uint16(tagDateTimeOriginal))
		binary.Write(&tiff, le, uint16(typeASCII))
		binary.Write(&tiff, le, uint32(len(ascii)))
		tiff.Write(inline[:])
		binary.Write(&tiff, le, uint32(0))
	} else {
		writeEntry(&tiff, tagDateTimeOriginal, typeASCII, uint32(len(ascii)), dataOffset)
		binary.Write(&tiff, le, uint32(0))
		tiff.Write(ascii)
	}

	return tiff.Bytes()
}

func writeEntry(buf *bytes.Buffer, tag, typ uint16, count, value uint32) {
	le := binary.LittleEndian
	binary.Write(buf, le, tag)
	binary.Write(buf, le, typ)
	binary.Write(buf, le, count)
	binary.Write(buf, le, value)
}
