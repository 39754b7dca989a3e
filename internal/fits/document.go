// Package fits reads FITS files into an in-memory Document holding the
// HDU summary, the primary header cards and the primary image array.
package fits

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors wrapped by ParseError.
var (
	ErrNotFITS     = errors.New("not a FITS file")
	ErrNoImage     = errors.New("primary HDU has no image data")
	ErrUnsupported = errors.New("unsupported image layout")
)

// ParseError reports a file that could not be opened or decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Card is one header record of the primary HDU.
type Card struct {
	Keyword string `json:"keyword"`
	Value   string `json:"value"`
	Comment string `json:"comment,omitempty"`
}

// Image is a 2D array in row-major order. Row 0 is the first row stored in
// the file. BZERO and BSCALE have already been applied.
type Image struct {
	Width  int
	Height int
	Bitpix int
	Pix    []float64
}

// NewImage allocates a zeroed width x height image.
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height),
	}
}

// At returns the value at column x, row y.
func (im *Image) At(x, y int) float64 {
	return im.Pix[y*im.Width+x]
}

// Set stores v at column x, row y.
func (im *Image) Set(x, y int, v float64) {
	im.Pix[y*im.Width+x] = v
}

// Range returns the minimum and maximum finite values. ok is false when the
// image holds no finite value at all.
func (im *Image) Range() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range im.Pix {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		ok = true
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// Document is everything the viewer needs from one FITS file. The file
// handle is closed by the time a Document is returned.
type Document struct {
	Path    string
	Size    int64
	Summary string
	Cards   []Card
	Image   *Image
}

// Card returns the primary header card with the given keyword.
func (d *Document) Card(keyword string) (Card, bool) {
	for _, c := range d.Cards {
		if c.Keyword == keyword {
			return c, true
		}
	}
	return Card{}, false
}
