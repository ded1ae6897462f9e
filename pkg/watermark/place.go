package watermark

import "image"

// Margin is the distance in pixels kept from every edge an anchor touches.
const Margin = 10

type anchorFunc func(w, h, textW, textH int) image.Point

var anchors = map[Position]anchorFunc{
	LeftTop: func(w, h, tw, th int) image.Point {
		return image.Pt(Margin, Margin)
	},
	RightTop: func(w, h, tw, th int) image.Point {
		return image.Pt(w-tw-Margin, Margin)
	},
	LeftCenter: func(w, h, tw, th int) image.Point {
		return image.Pt(Margin, floorHalf(h-th))
	},
	Center: func(w, h, tw, th int) image.Point {
		return image.Pt(floorHalf(w-tw), floorHalf(h-th))
	},
	RightCenter: func(w, h, tw, th int) image.Point {
		return image.Pt(w-tw-Margin, floorHalf(h-th))
	},
	LeftBottom: func(w, h, tw, th int) image.Point {
		return image.Pt(Margin, h-th-Margin)
	},
	RightBottom: func(w, h, tw, th int) image.Point {
		return image.Pt(w-tw-Margin, h-th-Margin)
	},
}

// Place returns the top-left corner of a textW×textH box on a w×h image.
//
// A non-nil offset always wins. Unknown positions fall back to LeftTop.
func Place(pos Position, offset *image.Point, w, h, textW, textH int) image.Point {
	if offset != nil {
		return *offset
	}

	anchor, ok := anchors[pos]
	if !ok {
		anchor = anchors[LeftTop]
	}
	return anchor(w, h, textW, textH)
}

// floorHalf is n/2 rounded toward negative infinity, so text wider than the
// image still centers consistently.
func floorHalf(n int) int {
	if n < 0 {
		return (n - 1) / 2
	}
	return n / 2
}
