// Package fitstest writes small FITS files for tests.
package fitstest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// BlockSize is the FITS record length; headers and data are padded to it.
const BlockSize = 2880

// Card is an extra header record. Value is written verbatim into the value
// field, so strings must carry their own quotes.
type Card struct {
	Keyword string
	Value   string
	Comment string
}

func record(key, value, comment string) string {
	var rec string
	switch {
	case value == "":
		rec = fmt.Sprintf("%-8s", key)
	case strings.HasPrefix(value, "'"):
		// fixed format: string values open in column 11
		rec = fmt.Sprintf("%-8s= %-20s", key, value)
		if comment != "" {
			rec += " / " + comment
		}
	default:
		rec = fmt.Sprintf("%-8s= %20s", key, value)
		if comment != "" {
			rec += " / " + comment
		}
	}
	if len(rec) > 80 {
		rec = rec[:80]
	}
	return fmt.Sprintf("%-80s", rec)
}

func header(bitpix int, axes []int, extra []Card) []byte {
	var b strings.Builder
	b.WriteString(record("SIMPLE", "T", "conforms to FITS standard"))
	b.WriteString(record("BITPIX", fmt.Sprint(bitpix), "array data type"))
	b.WriteString(record("NAXIS", fmt.Sprint(len(axes)), "number of array dimensions"))
	for i, n := range axes {
		b.WriteString(record(fmt.Sprintf("NAXIS%d", i+1), fmt.Sprint(n), ""))
	}
	for _, c := range extra {
		b.WriteString(record(c.Keyword, c.Value, c.Comment))
	}
	b.WriteString(record("END", "", ""))
	return pad([]byte(b.String()), ' ')
}

func pad(data []byte, fill byte) []byte {
	if rem := len(data) % BlockSize; rem != 0 {
		data = append(data, bytes.Repeat([]byte{fill}, BlockSize-rem)...)
	}
	return data
}

// Encode returns a complete single-HDU FITS file. pix must be a slice of
// uint8, int16, int32, int64, float32 or float64 matching bitpix, stored in
// row-major order with NAXIS1 varying fastest.
func Encode(bitpix int, axes []int, pix interface{}, extra ...Card) ([]byte, error) {
	var data bytes.Buffer
	if pix != nil {
		if err := binary.Write(&data, binary.BigEndian, pix); err != nil {
			return nil, err
		}
	}
	out := header(bitpix, axes, extra)
	out = append(out, pad(data.Bytes(), 0)...)
	return out, nil
}

// WriteImage16 writes a BITPIX=16 image of the given size to dir/name and
// returns its path.
func WriteImage16(t testing.TB, dir, name string, width, height int, pix []int16, extra ...Card) string {
	t.Helper()
	return Write(t, dir, name, 16, []int{width, height}, pix, extra...)
}

// Write encodes a FITS file into dir/name and returns its path.
func Write(t testing.TB, dir, name string, bitpix int, axes []int, pix interface{}, extra ...Card) string {
	t.Helper()
	data, err := Encode(bitpix, axes, pix, extra...)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// Gradient returns a width x height pattern where pixel (x, y) holds x + 100*y,
// so every pixel is distinguishable and row order is observable.
func Gradient(width, height int) []int16 {
	pix := make([]int16, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pix[y*width+x] = int16(x + 100*y)
		}
	}
	return pix
}
