// Package capturedate resolves the original capture date of an image from its
// embedded metadata.
//
// Resolution is best-effort: missing, unreadable or incomplete metadata is
// reported as absence, never as an error.
package capturedate
