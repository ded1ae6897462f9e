package watermark

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
)

// Alpha is the opacity of the watermark text (about 50%).
const Alpha = 128

var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidColor    = errors.New("invalid color")
	ErrInvalidPoint    = errors.New("invalid point")
	ErrInvalidFontSize = errors.New("font size must be positive")
)

// Position names the anchor the watermark is placed against.
type Position string

const (
	LeftTop     Position = "left-top"
	RightTop    Position = "right-top"
	LeftCenter  Position = "left-center"
	Center      Position = "center"
	RightCenter Position = "right-center"
	LeftBottom  Position = "left-bottom"
	RightBottom Position = "right-bottom"
)

// Positions lists the supported anchors.
func Positions() []Position {
	return []Position{LeftTop, RightTop, LeftCenter, Center, RightCenter, LeftBottom, RightBottom}
}

// ParsePosition accepts one of the anchors returned by Positions.
func ParsePosition(s string) (Position, error) {
	p := Position(strings.TrimSpace(s))
	if _, ok := anchors[p]; !ok {
		return "", fmt.Errorf("%w %q (want one of %s)", ErrInvalidPosition, s, joinPositions())
	}
	return p, nil
}

func joinPositions() string {
	ps := Positions()
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// RGB is an opaque text color.
type RGB struct {
	R, G, B uint8
}

// ParseColor parses "r,g,b" with each component in 0..255.
func ParseColor(s string) (RGB, error) {
	parts, err := splitInts(s, 3)
	if err != nil {
		return RGB{}, fmt.Errorf("%w %q: %v", ErrInvalidColor, s, err)
	}
	for _, v := range parts {
		if v < 0 || v > 255 {
			return RGB{}, fmt.Errorf("%w %q: component %d out of range 0-255", ErrInvalidColor, s, v)
		}
	}
	return RGB{R: uint8(parts[0]), G: uint8(parts[1]), B: uint8(parts[2])}, nil
}

func (c RGB) String() string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}

// ParsePoint parses an explicit "x,y" coordinate.
func ParsePoint(s string) (image.Point, error) {
	parts, err := splitInts(s, 2)
	if err != nil {
		return image.Point{}, fmt.Errorf("%w %q: %v", ErrInvalidPoint, s, err)
	}
	return image.Pt(parts[0], parts[1]), nil
}

func splitInts(s string, n int) ([]int, error) {
	fields := strings.Split(s, ",")
	if len(fields) != n {
		return nil, fmt.Errorf("expected %d comma-separated integers", n)
	}

	out := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Style describes how the watermark text is drawn. It is fixed for a whole
// batch run.
type Style struct {
	FontSize int
	Color    RGB
	Position Position

	// Offset, when set, is used verbatim as the top-left corner of the text
	// and Position is ignored.
	Offset *image.Point
}

// DefaultStyle returns 32px red text in the bottom-right corner.
func DefaultStyle() Style {
	return Style{
		FontSize: 32,
		Color:    RGB{R: 255},
		Position: RightBottom,
	}
}

// Validate reports an error if the style cannot be drawn.
func (s Style) Validate() error {
	if s.FontSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidFontSize, s.FontSize)
	}
	return nil
}
