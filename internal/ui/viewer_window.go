package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	sqdialog "github.com/sqweek/dialog"

	"github.com/piwi3910/fitsview/internal/export"
	"github.com/piwi3910/fitsview/internal/fits"
	"github.com/piwi3910/fitsview/internal/model"
	"github.com/piwi3910/fitsview/internal/render"
	"github.com/piwi3910/fitsview/internal/viewer"
)

// viewerFactory builds one Fyne window per opened document.
type viewerFactory struct {
	app     fyne.App
	desktop Desktop
	config  func() model.AppConfig
	logger  *slog.Logger
}

var _ viewer.SurfaceFactory = (*viewerFactory)(nil)

func (f *viewerFactory) NewSurface(spec viewer.SurfaceSpec) (viewer.Surface, error) {
	if spec.Document == nil || spec.Document.Image == nil {
		return nil, fmt.Errorf("document has no image")
	}
	cfg := f.config()

	v := &viewerWindow{
		win:        f.app.NewWindow(spec.Title),
		doc:        spec.Document,
		desktop:    f.desktop,
		logger:     f.logger.With("window", spec.ID),
		nativeSave: true,
	}
	v.win.SetContent(v.build(cfg.InfoFraction))
	v.win.Resize(fyne.NewSize(float32(cfg.WindowWidth), float32(cfg.WindowHeight)))
	if spec.OnClosed != nil {
		v.win.SetOnClosed(spec.OnClosed)
	}
	return v, nil
}

// viewerWindow shows the HDU summary above the rendered image. Placement and
// keep-above are applied once the window is mapped.
type viewerWindow struct {
	win     fyne.Window
	doc     *fits.Document
	desktop Desktop
	logger  *slog.Logger

	x, y    int
	topmost bool
	mapped  bool

	// nativeSave is cleared after the first native save dialog failure.
	nativeSave bool
}

func (v *viewerWindow) build(infoFraction float64) fyne.CanvasObject {
	summary := widget.NewTextGridFromString(strings.TrimRight(v.doc.Summary, "\n"))

	img := canvas.NewImageFromImage(render.Grayscale(v.doc.Image))
	img.FillMode = canvas.ImageFillStretch
	img.ScaleMode = canvas.ImageScalePixels
	img.SetMinSize(fyne.NewSize(64, 64))

	split := container.NewVSplit(container.NewScroll(summary), img)
	split.Offset = infoFraction

	exportBar := container.NewHBox(
		widget.NewLabel("Export:"),
		newButtonWithTooltip("PNG", theme.FileImageIcon(), "Save the displayed image as PNG", func() {
			v.exportTo(".png", func(path string) error { return export.ExportPNG(path, v.doc.Image) })
		}),
		newButtonWithTooltip("PDF", theme.DocumentPrintIcon(), "Save a PDF report with image, summary and header", func() {
			v.exportTo(".pdf", func(path string) error { return export.ExportReport(path, v.doc) })
		}),
		newButtonWithTooltip("XLSX", theme.GridIcon(), "Save the primary header as a spreadsheet", func() {
			v.exportTo(".xlsx", func(path string) error { return export.ExportHeaderXLSX(path, v.doc) })
		}),
	)

	return addToolTipLayer(container.NewBorder(exportBar, nil, nil, nil, split), v.win)
}

func (v *viewerWindow) exportTo(ext string, write func(path string) error) {
	if !v.nativeSave {
		v.exportFyne(ext, write)
		return
	}
	name := exportName(v.doc.Path, ext)
	startDir := filepath.Dir(v.doc.Path)
	kind := strings.ToUpper(strings.TrimPrefix(ext, "."))
	go func() {
		path, err := sqdialog.File().
			Filter(kind+" files", strings.TrimPrefix(ext, ".")).
			SetStartDir(startDir).
			SetStartFile(name).
			Title("Export " + kind).
			Save()
		fyne.Do(func() {
			switch {
			case errors.Is(err, sqdialog.ErrCancelled):
				// dismissed
			case err != nil:
				v.logger.Warn("native save dialog unavailable, using built-in dialog", "error", err)
				v.nativeSave = false
				v.exportFyne(ext, write)
			default:
				v.writeExport(path, write)
			}
		})
	}()
}

func (v *viewerWindow) exportFyne(ext string, write func(path string) error) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, v.win)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		v.writeExport(path, write)
	}, v.win)
	d.SetFileName(exportName(v.doc.Path, ext))
	d.SetFilter(storage.NewExtensionFileFilter([]string{ext}))
	d.Show()
}

func (v *viewerWindow) writeExport(path string, write func(path string) error) {
	if err := write(path); err != nil {
		v.logger.Error("export failed", "path", path, "error", err)
		dialog.ShowError(err, v.win)
		return
	}
	v.logger.Info("exported", "path", path)
}

// exportName derives a default export file name from the FITS path.
func exportName(path, ext string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

func (v *viewerWindow) SetOffset(x, y int) {
	v.x, v.y = x, y
	if v.mapped {
		v.desktop.Place(v.win, x, y)
	}
}

func (v *viewerWindow) SetTopmost(on bool) {
	v.topmost = on
	if v.mapped {
		v.desktop.SetAbove(v.win, on)
	}
}

func (v *viewerWindow) Show() {
	v.win.Show()
	if !v.mapped {
		v.mapped = true
		v.desktop.Place(v.win, v.x, v.y)
	}
	v.desktop.SetAbove(v.win, v.topmost)
}

func (v *viewerWindow) Hide() {
	v.win.Hide()
}

func (v *viewerWindow) Close() {
	v.win.Close()
}
