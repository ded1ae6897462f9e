// Package watermark lays out and composites a flat, half-transparent text
// watermark onto an image.
//
// Placement is a pure function of the anchor, the image size and the
// measured text box (see Place). Composite renders the text on a
// transparent overlay, blends it over the source and returns an opaque
// image of the same size.
package watermark
