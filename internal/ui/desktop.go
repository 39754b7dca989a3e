package ui

import (
	"log/slog"
	"os"
	"runtime"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/piwi3910/fitsview/internal/x11"
)

// Desktop performs the window manager requests Fyne has no API for.
// All methods must be called on the UI thread.
type Desktop interface {
	// Place moves w to (x, y) relative to the main window's origin.
	Place(w fyne.Window, x, y int)
	SetAbove(w fyne.Window, on bool)
	Maximize(w fyne.Window)
	// WatchIconify reports minimize and restore of w on the UI thread.
	WatchIconify(w fyne.Window, onMinimize, onRestore func())
	Close()
}

// NewDesktop connects to X11 when a display is available and falls back to
// a desktop that ignores every request. Without X11, WatchIconify is a no-op,
// so minimizing the main window does not hide or restore the viewer windows.
func NewDesktop(main fyne.Window, logger *slog.Logger) Desktop {
	if runtime.GOOS != "linux" && runtime.GOOS != "freebsd" && runtime.GOOS != "openbsd" {
		return noopDesktop{}
	}
	if os.Getenv("DISPLAY") == "" {
		logger.Info("no X11 display, window placement disabled")
		return noopDesktop{}
	}
	conn, err := x11.NewConnection()
	if err != nil {
		logger.Warn("cannot connect to X11, window placement disabled", "error", err)
		return noopDesktop{}
	}
	return &x11Desktop{conn: conn, main: main, logger: logger}
}

type noopDesktop struct{}

func (noopDesktop) Place(fyne.Window, int, int) {}
func (noopDesktop) SetAbove(fyne.Window, bool) {}
func (noopDesktop) Maximize(fyne.Window) {}
func (noopDesktop) WatchIconify(fyne.Window, func(), func()) {}
func (noopDesktop) Close() {}

type x11Desktop struct {
	conn   *x11.Connection
	main   fyne.Window
	logger *slog.Logger

	loopOnce sync.Once
	watched  []xproto.Window
}

// windowID resolves the X11 window behind a Fyne window. It is zero until
// the window has been shown.
func windowID(w fyne.Window) xproto.Window {
	nw, ok := w.(driver.NativeWindow)
	if !ok {
		return 0
	}
	var id uintptr
	nw.RunNative(func(ctx any) {
		switch c := ctx.(type) {
		case driver.X11WindowContext:
			id = c.WindowHandle
		case *driver.X11WindowContext:
			id = c.WindowHandle
		}
	})
	return xproto.Window(id)
}

func (d *x11Desktop) Place(w fyne.Window, x, y int) {
	id, mainID := windowID(w), windowID(d.main)
	if id == 0 || mainID == 0 {
		return
	}
	ox, oy, err := d.conn.Origin(mainID)
	if err != nil {
		d.logger.Debug("cannot read main window origin", "error", err)
		return
	}
	if err := d.conn.MoveWindow(id, ox+x, oy+y); err != nil {
		d.logger.Debug("cannot move window", "error", err)
	}
}

func (d *x11Desktop) SetAbove(w fyne.Window, on bool) {
	id := windowID(w)
	if id == 0 {
		return
	}
	if err := d.conn.SetAbove(id, on); err != nil {
		d.logger.Debug("cannot change keep-above", "error", err)
	}
}

func (d *x11Desktop) Maximize(w fyne.Window) {
	id := windowID(w)
	if id == 0 {
		return
	}
	if err := d.conn.Maximize(id); err != nil {
		d.logger.Debug("cannot maximize window", "error", err)
	}
}

func (d *x11Desktop) WatchIconify(w fyne.Window, onMinimize, onRestore func()) {
	id := windowID(w)
	if id == 0 {
		d.logger.Warn("main window has no X11 handle, minimize/restore not tracked")
		return
	}
	err := d.conn.WatchIconify(id, func(hidden bool) {
		fyne.Do(func() {
			if hidden {
				onMinimize()
			} else {
				onRestore()
			}
		})
	})
	if err != nil {
		d.logger.Warn("cannot watch main window state", "error", err)
		return
	}
	d.watched = append(d.watched, id)
	d.loopOnce.Do(func() { go d.conn.EventLoop() })
}

func (d *x11Desktop) Close() {
	for _, id := range d.watched {
		d.conn.Unwatch(id)
	}
	d.watched = nil
	d.conn.Close()
}
