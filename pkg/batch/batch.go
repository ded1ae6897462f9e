// Package batch watermarks every supported image of a directory with its
// capture date, one file at a time.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/image/font"

	"github.com/quidome/photo-datemark/pkg/capturedate"
	"github.com/quidome/photo-datemark/pkg/scan"
	"github.com/quidome/photo-datemark/pkg/watermark"
)

// Status is the outcome for a single file.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusPlanned   Status = "planned"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Result contains the outcome for one source file.
type Result struct {
	Operation

	// Date is the resolved capture date, empty when skipped.
	Date   string
	Status Status
	Error  error
}

// Options configures Run.
type Options struct {
	InputDir string
	Style    watermark.Style

	// FontPath names the TrueType font to draw with. An empty or unusable
	// path falls back to the built-in face.
	FontPath string

	// Metadata reads capture dates. If nil, EXIF is used.
	Metadata capturedate.MetadataSource

	// DryRun resolves dates and plans outputs without writing anything.
	DryRun bool

	// Overwrite replaces existing output files.
	Overwrite bool

	// Progress, if set, is called with each result as soon as it is known.
	Progress func(Result)
}

// Run watermarks the images in opts.InputDir into OutputDir(opts.InputDir).
//
// Files without a capture date are skipped. A file that cannot be decoded or
// written is reported as failed and the run continues. The returned error is
// non-nil only when the run itself cannot proceed; results gathered so far
// are returned with it.
func Run(ctx context.Context, opts Options) ([]Result, error) {
	if err := opts.Style.Validate(); err != nil {
		return nil, err
	}

	inputDir, err := filepath.Abs(opts.InputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve input directory: %w", err)
	}
	outputDir := OutputDir(inputDir)

	scanOpts := scan.DefaultOptions()
	scanOpts.Extensions = watermark.Extensions()
	scanOpts.Exclude = []string{filepath.Base(outputDir)}

	files, err := scan.Scan(os.DirFS(inputDir), ".", scanOpts)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", inputDir, err)
	}

	if !opts.DryRun {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	slog.Debug("starting batch", "input", inputDir, "output", outputDir, "files", len(files), "dry_run", opts.DryRun)

	face := watermark.LoadFace(opts.FontPath, opts.Style.FontSize)
	operations := Plan(inputDir, outputDir, files)
	results := make([]Result, 0, len(operations))

	for _, op := range operations {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := Result{Operation: op}

		date, ok := capturedate.ResolveFile(op.SourcePath, opts.Metadata)
		switch {
		case !ok:
			result.Status = StatusSkipped
		case opts.DryRun:
			result.Date = date
			result.Status = StatusPlanned
		default:
			result.Date = date
			if err := process(op, date, face, opts); err != nil {
				result.Status = StatusFailed
				result.Error = err
			} else {
				result.Status = StatusProcessed
			}
		}

		slog.Debug("file done", "source", op.SourcePath, "status", result.Status, "date", result.Date, "error", result.Error)

		results = append(results, result)
		if opts.Progress != nil {
			opts.Progress(result)
		}
	}

	return results, nil
}

func process(op Operation, date string, face font.Face, opts Options) error {
	img, err := watermark.DecodeFile(op.SourcePath)
	if err != nil {
		return err
	}

	out := watermark.Composite(img, date, face, opts.Style)
	if err := writeImage(op.DestinationPath, out, opts.Overwrite); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(op.DestinationPath), err)
	}
	return nil
}

// Summary counts results by status.
type Summary struct {
	Processed int
	Planned   int
	Skipped   int
	Failed    int
}

func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case StatusProcessed:
			s.Processed++
		case StatusPlanned:
			s.Planned++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}
