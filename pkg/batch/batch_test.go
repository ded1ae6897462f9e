package batch

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/quidome/photo-datemark/internal/testimage"
	"github.com/quidome/photo-datemark/pkg/watermark"
)

func TestRun_WritesOnlyFilesWithCaptureDate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "photos")
	img := testimage.Solid(200, 100, color.White)

	testimage.WriteFile(t, dir, "dated.jpg", testimage.JPEG(t, img, "2023:09:21 18:17:46"))
	testimage.WriteFile(t, dir, "undated.png", testimage.PNG(t, img))
	testimage.WriteFile(t, dir, "notes.txt", []byte("ignore me"))

	results, err := Run(context.Background(), Options{
		InputDir:  dir,
		Style:     watermark.DefaultStyle(),
		Overwrite: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusProcessed || results[0].Date != "2023-09-21" {
		t.Fatalf("unexpected result for dated.jpg: %+v", results[0])
	}
	if results[1].Status != StatusSkipped {
		t.Fatalf("unexpected result for undated.png: %+v", results[1])
	}

	outDir := filepath.Join(dir, "photos_watermark")
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "dated.jpg" {
		t.Fatalf("expected exactly dated.jpg in output, got %v", entries)
	}

	out, err := watermark.DecodeFile(filepath.Join(outDir, "dated.jpg"))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 200, 100) {
		t.Fatalf("unexpected output bounds %v", out.Bounds())
	}
}

func TestRun_ProcessesPNGWithExifChunk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "photos")
	img := testimage.Solid(120, 60, color.White)

	testimage.WriteFile(t, dir, "dated.png", testimage.PNGWithExif(t, img, testimage.Exif{DateTimeOriginal: "2022:05:06 07:08:09"}))

	results, err := Run(context.Background(), Options{
		InputDir:  dir,
		Style:     watermark.DefaultStyle(),
		Overwrite: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 || results[0].Status != StatusProcessed || results[0].Date != "2022-05-06" {
		t.Fatalf("unexpected results %+v", results)
	}
	if results[0].SourceSizeBytes <= 0 {
		t.Fatalf("expected source size, got %d", results[0].SourceSizeBytes)
	}

	if _, err := watermark.DecodeFile(filepath.Join(dir, "photos_watermark", "dated.png")); err != nil {
		t.Fatalf("decode output: %v", err)
	}
}

func TestRun_DecodeFailureDoesNotStopBatch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "photos")
	img := testimage.Solid(64, 64, color.White)

	good := testimage.JPEG(t, img, "2021:01:02 03:04:05")
	// EXIF survives, the image data does not.
	broken := good[:len(good)/2]

	testimage.WriteFile(t, dir, "a-broken.jpg", broken)
	testimage.WriteFile(t, dir, "b-good.jpg", good)

	results, err := Run(context.Background(), Options{
		InputDir:  dir,
		Style:     watermark.DefaultStyle(),
		Overwrite: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if results[0].Status != StatusFailed || results[0].Error == nil {
		t.Fatalf("expected failure for broken file, got %+v", results[0])
	}
	if results[1].Status != StatusProcessed {
		t.Fatalf("expected good file to be processed, got %+v", results[1])
	}

	summary := Summarize(results)
	if summary != (Summary{Processed: 1, Failed: 1}) {
		t.Fatalf("unexpected summary %+v", summary)
	}

	if _, err := os.Stat(filepath.Join(dir, "photos_watermark", "a-broken.jpg")); !os.IsNotExist(err) {
		t.Fatalf("expected no output for broken file, stat err %v", err)
	}
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "photos")
	testimage.WriteFile(t, dir, "a.jpg", testimage.JPEG(t, testimage.Solid(32, 32, color.White), "2023:09:21 18:17:46"))

	var seen []Result
	results, err := Run(context.Background(), Options{
		InputDir: dir,
		Style:    watermark.DefaultStyle(),
		DryRun:   true,
		Progress: func(r Result) { seen = append(seen, r) },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(results) != 1 || results[0].Status != StatusPlanned || results[0].Date != "2023-09-21" {
		t.Fatalf("unexpected results %+v", results)
	}
	if len(seen) != 1 {
		t.Fatalf("expected progress callback once, got %d", len(seen))
	}
	if _, err := os.Stat(filepath.Join(dir, "photos_watermark")); !os.IsNotExist(err) {
		t.Fatalf("dry run created output directory, stat err %v", err)
	}
}

func TestRun_NoClobber(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "photos")
	testimage.WriteFile(t, dir, "a.jpg", testimage.JPEG(t, testimage.Solid(32, 32, color.White), "2023:09:21 18:17:46"))
	existing := testimage.WriteFile(t, dir, "photos_watermark/a.jpg", []byte("old"))

	results, err := Run(context.Background(), Options{
		InputDir:  dir,
		Style:     watermark.DefaultStyle(),
		Overwrite: false,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(results) != 1 || !errors.Is(results[0].Error, ErrDestinationExists) {
		t.Fatalf("expected ErrDestinationExists, got %+v", results)
	}

	got, err := os.ReadFile(existing)
	if err != nil {
		t.Fatalf("read existing: %v", err)
	}
	if string(got) != "old" {
		t.Fatalf("existing output was overwritten")
	}
}

func TestRun_RerunDoesNotPickUpOutputs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "photos")
	testimage.WriteFile(t, dir, "a.jpg", testimage.JPEG(t, testimage.Solid(32, 32, color.White), "2023:09:21 18:17:46"))

	opts := Options{InputDir: dir, Style: watermark.DefaultStyle(), Overwrite: true}
	for i := 0; i < 2; i++ {
		results, err := Run(context.Background(), opts)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if len(results) != 1 || results[0].Status != StatusProcessed {
			t.Fatalf("run %d: unexpected results %+v", i, results)
		}
	}
}

func TestRun_InvalidStyle(t *testing.T) {
	style := watermark.DefaultStyle()
	style.FontSize = 0

	if _, err := Run(context.Background(), Options{InputDir: t.TempDir(), Style: style}); !errors.Is(err, watermark.ErrInvalidFontSize) {
		t.Fatalf("expected ErrInvalidFontSize, got %v", err)
	}
}

func TestRun_MissingInputDir(t *testing.T) {
	if _, err := Run(context.Background(), Options{
		InputDir: filepath.Join(t.TempDir(), "missing"),
		Style:    watermark.DefaultStyle(),
	}); err == nil {
		t.Fatalf("expected error for missing input directory")
	}
}

func TestRun_CancelledContext(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "photos")
	testimage.WriteFile(t, dir, "a.jpg", testimage.JPEG(t, testimage.Solid(8, 8, color.White), "2023:09:21 18:17:46"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Run(ctx, Options{InputDir: dir, Style: watermark.DefaultStyle()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %+v", results)
	}
}
