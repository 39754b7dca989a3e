// Package viewer tracks the FITS viewer windows opened from the main window
// and applies one visibility policy to all of them.
//
// Nothing in this package touches a GUI toolkit: windows are driven through
// the Surface interface, so the manager runs unchanged under tests.
package viewer

import (
	"errors"

	"github.com/piwi3910/fitsview/internal/fits"
)

// ErrCancelled is reported by a FileSource when the user dismisses the picker.
var ErrCancelled = errors.New("selection cancelled")

// FileSource supplies paths chosen by the user. done may be called
// asynchronously but must run on the UI thread. An empty selection or
// ErrCancelled means the user cancelled.
type FileSource interface {
	Choose(done func(paths []string, err error))
}

// Renderer parses a file into the header summary and image array to show.
type Renderer interface {
	Render(path string) (*fits.Document, error)
}

// SurfaceSpec describes the toolkit window to build for one document.
type SurfaceSpec struct {
	ID       string
	Title    string
	Document *fits.Document
	// OnClosed is called when the user closes the window from the toolkit side.
	OnClosed func()
}

// Surface is the toolkit side of a viewer window.
type Surface interface {
	SetOffset(x, y int)
	SetTopmost(on bool)
	Show()
	Hide()
	Close()
}

// SurfaceFactory builds surfaces.
type SurfaceFactory interface {
	NewSurface(spec SurfaceSpec) (Surface, error)
}

// Notice is a non-blocking message about one file that could not be shown.
type Notice struct {
	Path string
	Err  error
}

// Notifier surfaces notices to the user.
type Notifier interface {
	Notify(n Notice)
}

// Window is one tracked viewer window.
type Window struct {
	ID      string
	Path    string
	OffsetX int
	OffsetY int

	topmost bool
	hidden  bool
	surface Surface
}

// Topmost reports whether the window is kept above other windows.
func (w *Window) Topmost() bool { return w.topmost }

// Hidden reports whether the window is withdrawn.
func (w *Window) Hidden() bool { return w.hidden }

// Offset returns the cascade offset from the main window's origin.
func (w *Window) Offset() (x, y int) { return w.OffsetX, w.OffsetY }

func (w *Window) setTopmost(on bool) {
	w.topmost = on
	w.surface.SetTopmost(on)
}

func (w *Window) show() {
	w.hidden = false
	w.surface.Show()
}

func (w *Window) hide() {
	w.hidden = true
	w.surface.Hide()
}
