package export

import (
	"fmt"
	"image/png"
	"os"

	"github.com/piwi3910/fitsview/internal/fits"
	"github.com/piwi3910/fitsview/internal/render"
)

// ExportPNG writes the image as an 8-bit grayscale PNG using the same
// stretch the viewer window displays.
func ExportPNG(path string, img *fits.Image) error {
	if img == nil {
		return fmt.Errorf("no image to export")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, render.Grayscale(img)); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return f.Close()
}
