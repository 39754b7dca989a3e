// Package export writes a viewed FITS document to other file formats.
package export

import (
	"bytes"
	"fmt"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/fitsview/internal/fits"
	"github.com/piwi3910/fitsview/internal/render"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	imageArea    = pageHeight - drawAreaTop - marginBottom
	qrSize       = 40.0
	tableRowH    = 5.0
)

// ExportReport generates a PDF with the rendered image, the HDU summary and
// a QR code carrying the file metadata on the first page, followed by the
// primary header cards as a table.
func ExportReport(path string, doc *fits.Document) error {
	if doc == nil || doc.Image == nil {
		return fmt.Errorf("no image to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	if err := renderImagePage(pdf, doc); err != nil {
		return err
	}
	if len(doc.Cards) > 0 {
		renderCardPages(pdf, doc.Cards)
	}

	return pdf.OutputFileAndClose(path)
}

// renderImagePage draws the title, the image fitted into a square area on the
// left, and the QR code and summary text on the right.
func renderImagePage(pdf *fpdf.Fpdf, doc *fits.Document) error {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("FITS File: %s", filepath.Base(doc.Path))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	var buf bytes.Buffer
	if err := png.Encode(&buf, render.Grayscale(doc.Image)); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	const imgName = "fits_image"
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, &buf)

	w, h := fitBox(float64(doc.Image.Width), float64(doc.Image.Height), imageArea, imageArea)
	x := marginLeft + (imageArea-w)/2
	y := drawAreaTop + (imageArea-h)/2
	pdf.ImageOptions(imgName, x, y, w, h, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Rect(marginLeft, drawAreaTop, imageArea, imageArea, "D")

	rightX := marginLeft + imageArea + 10
	rightW := pageWidth - marginRight - rightX
	if err := renderQR(pdf, pageWidth-marginRight-qrSize, drawAreaTop, qrSize, CollectFileInfo(doc)); err != nil {
		return err
	}

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(rightX, drawAreaTop)
	pdf.MultiCell(rightW-qrSize-5, 4.5, imageStats(doc.Image), "", "L", false)

	pdf.SetFont("Courier", "", 7)
	pdf.SetXY(rightX, drawAreaTop+qrSize+5)
	pdf.MultiCell(rightW, 3.5, strings.TrimRight(doc.Summary, "\n"), "", "L", false)
	return nil
}

// renderCardPages lays the header cards out as a three-column table,
// starting a new page whenever the current one fills up.
func renderCardPages(pdf *fpdf.Fpdf, cards []fits.Card) {
	colW := []float64{30, 80, pageWidth - marginLeft - marginRight - 110}
	heading := func() {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetXY(marginLeft, marginTop)
		pdf.CellFormat(0, headerHeight, "Primary Header", "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		pdf.SetX(marginLeft)
		for i, title := range []string{"Keyword", "Value", "Comment"} {
			pdf.CellFormat(colW[i], tableRowH+1, title, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Courier", "", 8)
	}

	heading()
	for _, c := range cards {
		if pdf.GetY()+tableRowH > pageHeight-marginBottom {
			heading()
		}
		pdf.SetX(marginLeft)
		pdf.CellFormat(colW[0], tableRowH, c.Keyword, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[1], tableRowH, truncate(c.Value, 45), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[2], tableRowH, truncate(c.Comment, 80), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}
}

func imageStats(img *fits.Image) string {
	lo, hi, ok := img.Range()
	lines := []string{
		fmt.Sprintf("Dimensions: %d x %d", img.Width, img.Height),
		fmt.Sprintf("BITPIX: %d", img.Bitpix),
	}
	if ok {
		lines = append(lines, fmt.Sprintf("Min: %g", lo), fmt.Sprintf("Max: %g", hi))
	}
	return strings.Join(lines, "\n")
}

// fitBox scales w x h to fit inside maxW x maxH keeping the aspect ratio.
func fitBox(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	scale := maxW / w
	if s := maxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}
