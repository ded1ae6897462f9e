package watermark

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Measure returns the width and height of the ink bounding box of text.
func Measure(face font.Face, text string) (int, int) {
	b, _ := font.BoundString(face, text)
	return (b.Max.X - b.Min.X).Ceil(), (b.Max.Y - b.Min.Y).Ceil()
}

// Composite draws text onto src according to style and returns an opaque
// image with the same bounds as src. src is not modified.
func Composite(src image.Image, text string, face font.Face, style Style) *image.RGBA {
	bounds := src.Bounds()

	base := toNRGBA(src)

	overlay := image.NewNRGBA(bounds)
	textW, textH := Measure(face, text)
	at := Place(style.Position, style.Offset, bounds.Dx(), bounds.Dy(), textW, textH)
	drawText(overlay, bounds.Min.Add(at), text, face, color.NRGBA{R: style.Color.R, G: style.Color.G, B: style.Color.B, A: Alpha})

	over(base, overlay)
	return flatten(base)
}

// toNRGBA returns a non-premultiplied copy of src. NRGBA sources are copied
// byte for byte so fully transparent pixels keep their color.
func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	if n, ok := src.(*image.NRGBA); ok {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			copy(dst.Pix[dst.PixOffset(bounds.Min.X, y):dst.PixOffset(bounds.Max.X, y)],
				n.Pix[n.PixOffset(bounds.Min.X, y):n.PixOffset(bounds.Max.X, y)])
		}
		return dst
	}
	draw.Copy(dst, bounds.Min, src, bounds, draw.Src, nil)
	return dst
}

// over blends src onto dst in place with the Porter-Duff over operator on
// non-premultiplied 8-bit values. Where src is fully transparent dst is left
// exactly as it was. Both images must share the same bounds.
func over(dst, src *image.NRGBA) {
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		sa := uint32(src.Pix[i+3])
		if sa == 0 {
			continue
		}
		da := uint32(dst.Pix[i+3])

		// Alpha of the result, scaled by 255.
		outA := sa*255 + da*(255-sa)
		for c := 0; c < 3; c++ {
			sc := uint32(src.Pix[i+c])
			dc := uint32(dst.Pix[i+c])
			dst.Pix[i+c] = uint8((sc*sa*255 + dc*da*(255-sa) + outA/2) / outA)
		}
		dst.Pix[i+3] = uint8((outA + 127) / 255)
	}
}

// drawText draws text with the top of its line, the ascent above the
// baseline, at origin. The ink may start right of or below origin.
func drawText(dst draw.Image, origin image.Point, text string, face font.Face, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(origin.X),
			Y: fixed.I(origin.Y) + face.Metrics().Ascent,
		},
	}
	d.DrawString(text)
}

// flatten drops the alpha channel: color values are kept as stored and every
// pixel becomes fully opaque.
func flatten(src *image.NRGBA) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	for y := 0; y < bounds.Dy(); y++ {
		s := src.Pix[y*src.Stride : y*src.Stride+bounds.Dx()*4]
		d := dst.Pix[y*dst.Stride : y*dst.Stride+bounds.Dx()*4]
		for i := 0; i < len(s); i += 4 {
			d[i+0] = s[i+0]
			d[i+1] = s[i+1]
			d[i+2] = s[i+2]
			d[i+3] = 0xff
		}
	}
	return dst
}
