package watermark

import (
	"bytes"
	"errors"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/quidome/photo-datemark/internal/testimage"
)

func TestFormatFromPath(t *testing.T) {
	testCases := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{path: "a.jpg", want: "jpeg"},
		{path: "a.JPEG", want: "jpeg"},
		{path: "dir/a.Png", want: "png"},
		{path: "a.gif", wantErr: true},
		{path: "README", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			got, err := FormatFromPath(tc.path)
			if tc.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("FormatFromPath(%q) = (%q, %v), want %q", tc.path, got, err, tc.want)
			}
		})
	}
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	img := testimage.Solid(20, 10, color.White)

	jpgPath := testimage.WriteFile(t, dir, "a.jpg", testimage.JPEG(t, img, "2023:09:21 18:17:46"))
	pngPath := testimage.WriteFile(t, dir, "b.png", testimage.PNG(t, img))
	badPath := testimage.WriteFile(t, dir, "c.jpg", []byte("garbage"))

	for _, p := range []string{jpgPath, pngPath} {
		got, err := DecodeFile(p)
		if err != nil {
			t.Fatalf("DecodeFile(%s): %v", filepath.Base(p), err)
		}
		if got.Bounds().Dx() != 20 || got.Bounds().Dy() != 10 {
			t.Fatalf("unexpected bounds %v", got.Bounds())
		}
	}

	if _, err := DecodeFile(badPath); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := DecodeFile(filepath.Join(dir, "missing.png")); err == nil {
		t.Fatalf("expected open error")
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	err := Encode(&bytes.Buffer{}, testimage.Solid(1, 1, color.White), "gif")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
