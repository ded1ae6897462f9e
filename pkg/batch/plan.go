package batch

import (
	"path/filepath"
	"time"

	"github.com/quidome/photo-datemark/pkg/scan"
)

// OutputSuffix is appended to the input directory's name to form the output
// directory, which lives inside the input directory.
const OutputSuffix = "_watermark"

// Operation represents a planned watermark from source to destination.
type Operation struct {
	SourcePath      string
	DestinationPath string

	SourceSizeBytes int64
	SourceModTime   time.Time
}

// OutputDir returns <inputDir>/<base(inputDir)>_watermark.
//
// inputDir should be absolute so that "." and trailing separators resolve to
// the real directory name.
func OutputDir(inputDir string) string {
	inputDir = filepath.Clean(inputDir)
	return filepath.Join(inputDir, filepath.Base(inputDir)+OutputSuffix)
}

// Plan computes destination paths for files scanned relative to inputDir.
// Output files keep the input file name.
func Plan(inputDir, outputDir string, files []scan.Record) []Operation {
	operations := make([]Operation, 0, len(files))

	for _, f := range files {
		rel := filepath.FromSlash(f.Path)
		operations = append(operations, Operation{
			SourcePath:      filepath.Join(inputDir, rel),
			DestinationPath: filepath.Join(outputDir, filepath.Base(rel)),
			SourceSizeBytes: f.FileSizeBytes,
			SourceModTime:   f.ModTime,
		})
	}

	return operations
}
