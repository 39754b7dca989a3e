package ui

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"github.com/ncruces/zenity"

	"github.com/piwi3910/fitsview/internal/viewer"
)

// selectFunc shows a multi-select file dialog and returns the chosen paths
// in selection order. A dismissed dialog returns viewer.ErrCancelled.
type selectFunc func(title, startDir string, exts []string) ([]string, error)

// filePicker asks the OS file dialog for FITS files and falls back to the
// Fyne dialog, which picks one file at a time, when no native dialog is
// available.
type filePicker struct {
	parent     fyne.Window
	extensions func() []string
	logger     *slog.Logger

	startDir string
	selectFn selectFunc
	async    func(func())

	// native is cleared after the first native dialog failure.
	native bool
}

var _ viewer.FileSource = (*filePicker)(nil)

func newFilePicker(parent fyne.Window, extensions func() []string, logger *slog.Logger) *filePicker {
	cwd, _ := os.Getwd()
	return &filePicker{
		parent:     parent,
		extensions: extensions,
		logger:     logger,
		startDir:   cwd,
		selectFn:   zenitySelect,
		async:      func(f func()) { go f() },
		native:     true,
	}
}

func (p *filePicker) Choose(done func(paths []string, err error)) {
	if !p.native {
		p.chooseFyne(done)
		return
	}

	exts := p.extensions()
	startDir := p.startDir
	p.async(func() {
		paths, err := p.selectFn("Open FITS Files", startDir, exts)
		fyne.Do(func() { p.finish(paths, err, done) })
	})
}

func (p *filePicker) finish(paths []string, err error, done func(paths []string, err error)) {
	switch {
	case errors.Is(err, viewer.ErrCancelled):
		done(nil, viewer.ErrCancelled)
	case err != nil:
		p.logger.Warn("native file dialog unavailable, using built-in dialog", "error", err)
		p.native = false
		p.chooseFyne(done)
	default:
		paths = absPaths(paths)
		if len(paths) > 0 {
			p.startDir = filepath.Dir(paths[0])
		}
		done(paths, nil)
	}
}

func (p *filePicker) chooseFyne(done func(paths []string, err error)) {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			done(nil, err)
			return
		}
		if reader == nil {
			done(nil, viewer.ErrCancelled)
			return
		}
		path := reader.URI().Path()
		reader.Close()
		p.startDir = filepath.Dir(path)
		done([]string{path}, nil)
	}, p.parent)
	d.SetFilter(storage.NewExtensionFileFilter(p.extensions()))
	if dir, err := storage.ListerForURI(storage.NewFileURI(p.startDir)); err == nil {
		d.SetLocation(dir)
	}
	d.Show()
}

// zenitySelect runs the platform multi-select dialog. On Linux it needs the
// zenity, qarma or kdialog helper; without one it returns an error and the
// picker switches to the Fyne dialog.
func zenitySelect(title, startDir string, exts []string) ([]string, error) {
	opts := []zenity.Option{zenity.Title(title)}
	if startDir != "" {
		opts = append(opts, zenity.Filename(startDir+string(filepath.Separator)))
	}
	if patterns := dialogPatterns(exts); len(patterns) > 0 {
		opts = append(opts, zenity.FileFilter{Name: "FITS files", Patterns: patterns})
	}
	paths, err := zenity.SelectFileMultiple(opts...)
	if errors.Is(err, zenity.ErrCanceled) {
		return nil, viewer.ErrCancelled
	}
	return paths, err
}

// dialogPatterns turns ".fits" style extensions into glob patterns in both
// cases, since some native dialogs match case-sensitively.
func dialogPatterns(exts []string) []string {
	out := make([]string, 0, 2*len(exts))
	for _, ext := range exts {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext == "" {
			continue
		}
		lower, upper := "*."+strings.ToLower(ext), "*."+strings.ToUpper(ext)
		out = append(out, lower)
		if upper != lower {
			out = append(out, upper)
		}
	}
	return out
}

// absPaths makes every selected path absolute, keeping the order.
func absPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		out = append(out, path)
	}
	return out
}

// droppedPaths keeps the local files from a drag-and-drop, in drop order.
// Extensions are not checked so that a wrong file still produces a notice.
func droppedPaths(uris []fyne.URI) []string {
	var out []string
	for _, u := range uris {
		if u == nil || u.Scheme() != "file" {
			continue
		}
		out = append(out, u.Path())
	}
	return out
}
