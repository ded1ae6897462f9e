package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quidome/photo-datemark/pkg/batch"
	"github.com/quidome/photo-datemark/pkg/capturedate"
	"github.com/quidome/photo-datemark/pkg/watermark"
)

const version = "0.1.0"

var errFilesFailed = errors.New("some files could not be watermarked")

type options struct {
	verbose   bool
	dryRun    bool
	jsonOut   bool
	noClobber bool

	fontSize int
	color    string
	position string
	xy       string
	font     string
	metadata string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "photo-datemark [directory]",
		Short: "Stamp photos with their capture date",
		Long: "photo-datemark reads the EXIF capture date (DateTimeOriginal) of every .jpg, .jpeg and .png " +
			"file in a directory and writes a copy with the date drawn as a half-transparent watermark " +
			"to <directory>/<name>_watermark. Files without a capture date are skipped.",
		Version: version,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			setupLogging(cmd, opts.verbose)
			return runWatermark(cmd, opts, args[0])
		},
	}

	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)

	flags := rootCmd.Flags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "resolve capture dates without writing any files")
	flags.BoolVar(&opts.jsonOut, "json", false, "print results as JSON")
	flags.BoolVar(&opts.noClobber, "no-clobber", false, "do not overwrite existing output files")

	defaults := watermark.DefaultStyle()
	flags.IntVar(&opts.fontSize, "font-size", envIntOr("PHOTO_DATEMARK_FONT_SIZE", defaults.FontSize), "font size in pixels")
	flags.StringVar(&opts.color, "color", envOr("PHOTO_DATEMARK_COLOR", defaults.Color.String()), "text color as r,g,b")
	flags.StringVar(&opts.position, "position", envOr("PHOTO_DATEMARK_POSITION", string(defaults.Position)), "watermark position: left-top, right-top, left-center, center, right-center, left-bottom, right-bottom")
	flags.StringVar(&opts.xy, "xy", "", "explicit x,y of the text's top-left corner (overrides --position)")
	flags.StringVar(&opts.font, "font", envOr("PHOTO_DATEMARK_FONT", watermark.DefaultFont), "TrueType font file; falls back to a built-in face")
	flags.StringVar(&opts.metadata, "metadata", "exif", "metadata reader: exif or exiftool")

	return rootCmd
}

func setupLogging(cmd *cobra.Command, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
}

// style validates the watermark flags.
func (o *options) style() (watermark.Style, error) {
	style := watermark.DefaultStyle()
	style.FontSize = o.fontSize

	c, err := watermark.ParseColor(o.color)
	if err != nil {
		return watermark.Style{}, err
	}
	style.Color = c

	p, err := watermark.ParsePosition(o.position)
	if err != nil {
		return watermark.Style{}, err
	}
	style.Position = p

	if o.xy != "" {
		pt, err := watermark.ParsePoint(o.xy)
		if err != nil {
			return watermark.Style{}, err
		}
		style.Offset = &pt
	}

	return style, style.Validate()
}

func (o *options) metadataSource() (capturedate.MetadataSource, func(), error) {
	switch o.metadata {
	case "", "exif":
		return capturedate.ExifSource{}, func() {}, nil
	case "exiftool":
		src, err := capturedate.NewExiftoolSource()
		if err != nil {
			return nil, nil, err
		}
		return src, func() { _ = src.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown metadata reader %q (want exif or exiftool)", o.metadata)
	}
}

type jsonResult struct {
	SourcePath      string    `json:"source_path"`
	DestinationPath string    `json:"destination_path"`
	SourceSizeBytes int64     `json:"source_size_bytes"`
	SourceModTime   time.Time `json:"source_mod_time"`
	Date            string    `json:"date,omitempty"`
	Status          string    `json:"status"`
	Error           string    `json:"error,omitempty"`
}

func runWatermark(cmd *cobra.Command, opts *options, dir string) error {
	style, err := opts.style()
	if err != nil {
		return err
	}

	source, closeSource, err := opts.metadataSource()
	if err != nil {
		return err
	}
	defer closeSource()

	runOpts := batch.Options{
		InputDir:  dir,
		Style:     style,
		FontPath:  opts.font,
		Metadata:  source,
		DryRun:    opts.dryRun,
		Overwrite: !opts.noClobber,
	}
	if !opts.jsonOut {
		runOpts.Progress = func(r batch.Result) {
			printResult(cmd, r)
		}
	}

	results, err := batch.Run(cmd.Context(), runOpts)

	if opts.jsonOut {
		if encErr := printJSON(cmd, results); encErr != nil && err == nil {
			err = encErr
		}
	}
	if err != nil {
		return err
	}

	summary := batch.Summarize(results)
	if opts.verbose {
		cmd.PrintErrf("processed %d, planned %d, skipped %d, failed %d\n",
			summary.Processed, summary.Planned, summary.Skipped, summary.Failed)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%w: %d failed", errFilesFailed, summary.Failed)
	}
	return nil
}

func printResult(cmd *cobra.Command, r batch.Result) {
	name := filepath.Base(r.SourcePath)
	switch r.Status {
	case batch.StatusProcessed:
		cmd.Printf("processed: %s -> %s\n", name, r.DestinationPath)
	case batch.StatusPlanned:
		cmd.Printf("would process: %s (%s) -> %s\n", name, r.Date, r.DestinationPath)
	case batch.StatusSkipped:
		cmd.Printf("skipped (no capture date): %s\n", name)
	case batch.StatusFailed:
		cmd.PrintErrf("failed: %s: %v\n", name, r.Error)
	}
}

func printJSON(cmd *cobra.Command, results []batch.Result) error {
	out := make([]jsonResult, 0, len(results))
	for _, r := range results {
		jr := jsonResult{
			SourcePath:      r.SourcePath,
			DestinationPath: r.DestinationPath,
			SourceSizeBytes: r.SourceSizeBytes,
			SourceModTime:   r.SourceModTime,
			Date:            r.Date,
			Status:          string(r.Status),
		}
		if r.Error != nil {
			jr.Error = r.Error.Error()
		}
		out = append(out, jr)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
