package scan

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type Options struct {
	// MaxDepth limits recursion below root; 0 lists root only and -1 means
	// unlimited.
	MaxDepth int

	// Extensions are matched case-insensitively against file names.
	Extensions []string

	// Exclude lists directories (relative to root, slash separated) that are
	// never entered.
	Exclude []string
}

func DefaultOptions() Options {
	return Options{
		MaxDepth:   0,
		Extensions: []string{".jpg", ".jpeg", ".png"},
	}
}

// Record is one matched file.
type Record struct {
	Path          string    `json:"path"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	ModTime       time.Time `json:"mod_time"`
}

// Scan lists the files below root whose extension is in opts.Extensions,
// sorted by slash-separated relative path.
func Scan(fsys fs.FS, root string, opts Options) ([]Record, error) {
	if opts.MaxDepth < -1 {
		return nil, fs.ErrInvalid
	}

	exts := normalizeExts(opts.Extensions)
	excluded := make(map[string]bool, len(opts.Exclude))
	for _, e := range opts.Exclude {
		excluded[filepath.ToSlash(filepath.Clean(e))] = true
	}

	var matches []Record

	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if excluded[filepath.ToSlash(rel)] {
				return fs.SkipDir
			}
			if opts.MaxDepth >= 0 && depth(rel) >= opts.MaxDepth {
				return fs.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(rel))
		if !exts[ext] {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}

		matches = append(matches, Record{
			Path:          filepath.ToSlash(rel),
			FileSizeBytes: info.Size(),
			ModTime:       info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Path < matches[j].Path
	})
	return matches, nil
}

func normalizeExts(exts []string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, ext := range exts {
		e := strings.TrimSpace(strings.ToLower(ext))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		m[e] = true
	}
	return m
}

// depth is the number of directories between root and rel.
func depth(rel string) int {
	rel = filepath.Clean(rel)
	if rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/")
}
