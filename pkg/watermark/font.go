package watermark

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultFont is the face requested when no font is configured.
const DefaultFont = "arial.ttf"

// LoadFace returns a face for the TrueType/OpenType font at path, rendered at
// size pixels.
//
// A bare file name such as "arial.ttf" is looked up in the usual system font
// directories. If the font cannot be found or parsed, the embedded Go Regular
// face is used at the same size, and if even that fails, the fixed 7x13
// bitmap face. LoadFace never fails.
func LoadFace(path string, size int) font.Face {
	if path != "" {
		face, err := openFace(resolveFontPath(path), size)
		if err == nil {
			return face
		}
		slog.Debug("font unavailable, using built-in face", "font", path, "error", err)
	}

	if face, err := parseFace(goregular.TTF, size); err == nil {
		return face
	}
	return basicfont.Face7x13
}

func openFace(path string, size int) (font.Face, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseFace(b, size)
}

func parseFace(b []byte, size int) (font.Face, error) {
	f, err := opentype.Parse(b)
	if err != nil {
		return nil, err
	}
	// At 72 DPI one point is one pixel.
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func resolveFontPath(name string) string {
	if filepath.IsAbs(name) || filepath.Base(name) != name {
		return name
	}
	if _, err := os.Stat(name); err == nil {
		return name
	}

	for _, dir := range systemFontDirs() {
		var found string
		_ = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() && strings.EqualFold(d.Name(), name) {
				found = p
				return filepath.SkipAll
			}
			return nil
		})
		if found != "" {
			return found
		}
	}
	return name
}

func systemFontDirs() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{filepath.Join(os.Getenv("WINDIR"), "Fonts")}
	case "darwin":
		home, _ := os.UserHomeDir()
		return []string{"/System/Library/Fonts", "/Library/Fonts", filepath.Join(home, "Library", "Fonts")}
	default:
		home, _ := os.UserHomeDir()
		return []string{"/usr/share/fonts", "/usr/local/share/fonts", filepath.Join(home, ".fonts"), filepath.Join(home, ".local", "share", "fonts")}
	}
}
