package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/piwi3910/fitsview/internal/fits"
)

func TestGrayscale_StretchesMinMax(t *testing.T) {
	img := fits.NewImage(3, 1)
	img.Pix = []float64{-10, 0, 10}

	g := Grayscale(img)

	assert.Equal(t, 3, g.Bounds().Dx())
	assert.Equal(t, 1, g.Bounds().Dy())
	assert.Equal(t, uint8(0), g.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(128), g.GrayAt(1, 0).Y)
	assert.Equal(t, uint8(255), g.GrayAt(2, 0).Y)
}

func TestGrayscale_RowZeroOnTop(t *testing.T) {
	img := fits.NewImage(1, 2)
	img.Pix = []float64{100, 0}

	g := Grayscale(img)
	assert.Equal(t, uint8(255), g.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), g.GrayAt(0, 1).Y)
}

func TestGrayscale_NonFiniteAndConstant(t *testing.T) {
	img := fits.NewImage(3, 1)
	img.Pix = []float64{math.NaN(), 1, 2}
	g := Grayscale(img)
	assert.Equal(t, uint8(0), g.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), g.GrayAt(2, 0).Y)

	flat := fits.NewImage(2, 2)
	for i := range flat.Pix {
		flat.Pix[i] = 7
	}
	g = Grayscale(flat)
	for _, p := range g.Pix {
		assert.Equal(t, uint8(0), p)
	}
}

func TestLevel(t *testing.T) {
	assert.Equal(t, uint8(0), Level(-5, 0, 10).Y)
	assert.Equal(t, uint8(255), Level(50, 0, 10).Y)
	assert.Equal(t, uint8(128), Level(5, 0, 10).Y)
	assert.Equal(t, uint8(0), Level(5, 3, 3).Y)
}
