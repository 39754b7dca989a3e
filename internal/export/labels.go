package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/fitsview/internal/fits"
)

// FileInfo holds the data encoded into the report's QR code.
type FileInfo struct {
	File     string `json:"file"`
	Size     int64  `json:"size_bytes"`
	Width    int    `json:"naxis1"`
	Height   int    `json:"naxis2"`
	Bitpix   int    `json:"bitpix"`
	Object   string `json:"object,omitempty"`
	DateObs  string `json:"date_obs,omitempty"`
	Telescop string `json:"telescop,omitempty"`
}

// CollectFileInfo extracts the QR payload from a document.
func CollectFileInfo(doc *fits.Document) FileInfo {
	info := FileInfo{
		File: filepath.Base(doc.Path),
		Size: doc.Size,
	}
	if doc.Image != nil {
		info.Width = doc.Image.Width
		info.Height = doc.Image.Height
		info.Bitpix = doc.Image.Bitpix
	}
	if c, ok := doc.Card("OBJECT"); ok {
		info.Object = c.Value
	}
	if c, ok := doc.Card("DATE-OBS"); ok {
		info.DateObs = c.Value
	}
	if c, ok := doc.Card("TELESCOP"); ok {
		info.Telescop = c.Value
	}
	return info
}

// renderQR draws the metadata QR code with its top-left corner at (x, y).
func renderQR(pdf *fpdf.Fpdf, x, y, size float64, info FileInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal file info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(data), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	const name = "qr_metadata"
	pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	pdf.ImageOptions(name, x, y, size, size, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	return nil
}
