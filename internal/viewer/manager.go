package viewer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/piwi3910/fitsview/internal/model"
)

// Options configures a Manager. Renderer and Surfaces are required.
type Options struct {
	Source   FileSource
	Renderer Renderer
	Surfaces SurfaceFactory
	Notifier Notifier
	Logger   *slog.Logger

	// OnOpened is called after a window has been committed.
	OnOpened func(w *Window)
}

// Manager owns the viewer windows. It is not safe for concurrent use; all
// calls are expected on the UI thread.
type Manager struct {
	source   FileSource
	renderer Renderer
	surfaces SurfaceFactory
	notifier Notifier
	logger   *slog.Logger
	onOpened func(w *Window)

	step      int
	windows   []*Window
	// counter seeds the next cascade offset. It goes up on open, down on
	// close and back to zero on clear, so it is not a live-window count.
	counter   int
	minimized bool
}

// NewManager creates a Manager with the default cascade step.
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		source:   opts.Source,
		renderer: opts.Renderer,
		surfaces: opts.Surfaces,
		notifier: opts.Notifier,
		logger:   logger,
		onOpened: opts.OnOpened,
		step:     model.DefaultCascadeStep,
	}
}

// SetCascadeStep sets the pixel distance between consecutive windows.
// It applies to windows opened afterwards.
func (m *Manager) SetCascadeStep(step int) {
	if step < 0 {
		step = model.DefaultCascadeStep
	}
	m.step = step
}

// OpenFiles asks the file source for paths and opens each one in the order
// returned. A cancelled selection does nothing.
func (m *Manager) OpenFiles() {
	if m.source == nil {
		m.logger.Warn("no file source configured")
		return
	}
	m.source.Choose(func(paths []string, err error) {
		if errors.Is(err, ErrCancelled) || (err == nil && len(paths) == 0) {
			m.logger.Debug("file selection cancelled")
			return
		}
		if err != nil {
			m.logger.Error("file selection failed", "error", err)
			m.notify(Notice{Err: fmt.Errorf("file selection failed: %w", err)})
			return
		}
		m.OpenPaths(paths)
	})
}

// OpenPaths opens every path in order, without deduplication, and returns
// how many windows were opened. A failure on one path does not stop the rest.
func (m *Manager) OpenPaths(paths []string) int {
	opened := 0
	for _, path := range paths {
		if _, err := m.DisplayFits(path); err == nil {
			opened++
		}
	}
	return opened
}

// DisplayFits renders path and opens a window for it. The window is only
// tracked once both the document and its surface exist; on failure a notice
// is raised and the manager state is left untouched.
func (m *Manager) DisplayFits(path string) (*Window, error) {
	doc, err := m.renderer.Render(path)
	if err != nil {
		m.logger.Warn("failed to open FITS file", "path", path, "error", err)
		m.notify(Notice{Path: path, Err: err})
		return nil, err
	}

	w := &Window{
		ID:      uuid.NewString(),
		Path:    path,
		OffsetX: m.step * m.counter,
		OffsetY: m.step * m.counter,
	}
	surface, err := m.surfaces.NewSurface(SurfaceSpec{
		ID:       w.ID,
		Title:    "FITS File: " + path,
		Document: doc,
		OnClosed: func() { m.CloseWindow(w) },
	})
	if err != nil {
		err = fmt.Errorf("failed to create window for %s: %w", path, err)
		m.logger.Error("failed to create viewer window", "path", path, "error", err)
		m.notify(Notice{Path: path, Err: err})
		return nil, err
	}
	w.surface = surface

	m.counter++
	m.windows = append(m.windows, w)

	surface.SetOffset(w.OffsetX, w.OffsetY)
	if m.minimized {
		w.hide()
		w.setTopmost(false)
	} else {
		w.show()
		w.setTopmost(true)
	}

	m.logger.Info("opened FITS file", "path", path, "window", w.ID, "offset", w.OffsetX)
	if m.onOpened != nil {
		m.onOpened(w)
	}
	return w, nil
}

// CloseWindow untracks w and releases its surface. It returns false, and
// does nothing, if w is not tracked.
func (m *Manager) CloseWindow(w *Window) bool {
	idx := m.indexOf(w)
	if idx < 0 {
		return false
	}
	// Untrack before closing: the surface reports its own close back here.
	m.windows = append(m.windows[:idx], m.windows[idx+1:]...)
	m.counter--
	w.surface.Close()

	m.logger.Debug("closed viewer window", "path", w.Path, "window", w.ID)
	return true
}

// ClearWindows closes every tracked window and resets the cascade counter.
func (m *Manager) ClearWindows() {
	windows := m.windows
	m.windows = nil
	for _, w := range windows {
		w.surface.Close()
	}
	m.counter = 0
	m.logger.Debug("cleared viewer windows", "count", len(windows))
}

// OnMinimize withdraws every window and drops its topmost flag. It is
// called when the main window is minimized.
func (m *Manager) OnMinimize() {
	m.minimized = true
	for _, w := range m.windows {
		w.hide()
		w.setTopmost(false)
	}
}

// OnRestore shows every window and keeps it on top. It is called when the
// main window is restored.
func (m *Manager) OnRestore() {
	m.minimized = false
	for _, w := range m.windows {
		w.show()
		w.setTopmost(true)
	}
}

// SetCalibration is a placeholder for calibration settings.
func (m *Manager) SetCalibration() {
	m.logger.Info("Set Calibration button clicked")
}

// UploadResults is a placeholder for uploading results to BHTOM.
func (m *Manager) UploadResults() {
	m.logger.Info("Upload to BHTOM button clicked")
}

// Windows returns the tracked windows in creation order.
func (m *Manager) Windows() []*Window {
	out := make([]*Window, len(m.windows))
	copy(out, m.windows)
	return out
}

// Len returns the number of tracked windows.
func (m *Manager) Len() int { return len(m.windows) }

// Counter returns the cascade counter.
func (m *Manager) Counter() int { return m.counter }

// Minimized reports whether the main window is currently minimized.
func (m *Manager) Minimized() bool { return m.minimized }

func (m *Manager) indexOf(w *Window) int {
	for i, tracked := range m.windows {
		if tracked == w {
			return i
		}
	}
	return -1
}

func (m *Manager) notify(n Notice) {
	if m.notifier != nil {
		m.notifier.Notify(n)
	}
}
