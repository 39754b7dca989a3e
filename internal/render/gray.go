// Package render turns FITS image arrays into displayable images.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/piwi3910/fitsview/internal/fits"
)

// Grayscale maps img onto 8-bit gray with a linear stretch between the
// minimum and maximum finite values. Row 0 of the array is the top row of
// the result. NaN and infinite pixels, and every pixel of a constant image,
// are drawn black.
func Grayscale(img *fits.Image) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
	lo, hi, ok := img.Range()
	if !ok || hi <= lo {
		return out
	}

	for y := 0; y < img.Height; y++ {
		row := out.Pix[y*out.Stride : y*out.Stride+img.Width]
		for x := range row {
			row[x] = Level(img.At(x, y), lo, hi).Y
		}
	}
	return out
}

// Level returns the gray level for v given the display range [lo, hi].
// Values outside the range are clamped.
func Level(v, lo, hi float64) color.Gray {
	if hi <= lo || math.IsNaN(v) || math.IsInf(v, 0) {
		return color.Gray{}
	}
	f := (v - lo) / (hi - lo)
	f = math.Max(0, math.Min(1, f))
	return color.Gray{Y: uint8(math.Round(f * 255))}
}
