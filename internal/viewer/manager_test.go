package viewer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/fitsview/internal/fits"
	"github.com/piwi3910/fitsview/internal/fits/fitstest"
)

type fakeSurface struct {
	spec    SurfaceSpec
	x, y    int
	topmost bool
	visible bool
	closed  int

	// reentrant makes Close call back into the manager like a toolkit would.
	reentrant bool
}

func (s *fakeSurface) SetOffset(x, y int) { s.x, s.y = x, y }
func (s *fakeSurface) SetTopmost(on bool) { s.topmost = on }
func (s *fakeSurface) Show()              { s.visible = true }
func (s *fakeSurface) Hide()              { s.visible = false }
func (s *fakeSurface) Close() {
	s.closed++
	s.visible = false
	if s.reentrant && s.spec.OnClosed != nil {
		s.spec.OnClosed()
	}
}

type fakeFactory struct {
	surfaces  []*fakeSurface
	fail      error
	reentrant bool
}

func (f *fakeFactory) NewSurface(spec SurfaceSpec) (Surface, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	s := &fakeSurface{spec: spec, reentrant: f.reentrant}
	f.surfaces = append(f.surfaces, s)
	return s, nil
}

type fakeRenderer struct {
	failures map[string]error
	calls    []string
}

func (r *fakeRenderer) Render(path string) (*fits.Document, error) {
	r.calls = append(r.calls, path)
	if err := r.failures[path]; err != nil {
		return nil, err
	}
	return &fits.Document{Path: path, Image: fits.NewImage(2, 2)}, nil
}

type fakeNotifier struct {
	notices []Notice
}

func (n *fakeNotifier) Notify(notice Notice) { n.notices = append(n.notices, notice) }

type fakeSource struct {
	paths []string
	err   error
}

func (s *fakeSource) Choose(done func([]string, error)) { done(s.paths, s.err) }

type harness struct {
	mgr      *Manager
	factory  *fakeFactory
	renderer *fakeRenderer
	notifier *fakeNotifier
}

func newHarness(opts ...func(*Options)) *harness {
	h := &harness{
		factory:  &fakeFactory{},
		renderer: &fakeRenderer{failures: map[string]error{}},
		notifier: &fakeNotifier{},
	}
	o := Options{
		Renderer: h.renderer,
		Surfaces: h.factory,
		Notifier: h.notifier,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, fn := range opts {
		fn(&o)
	}
	h.mgr = NewManager(o)
	return h
}

func openN(t *testing.T, m *Manager, n int) []*Window {
	t.Helper()
	var out []*Window
	for i := 0; i < n; i++ {
		w, err := m.DisplayFits(fmt.Sprintf("/data/img%d.fits", i))
		require.NoError(t, err)
		out = append(out, w)
	}
	return out
}

func TestDisplayFits_CascadesOffsets(t *testing.T) {
	h := newHarness()
	windows := openN(t, h.mgr, 4)

	for i, w := range windows {
		x, y := w.Offset()
		assert.Equal(t, 15*i, x)
		assert.Equal(t, 15*i, y)
		assert.True(t, w.Topmost())
		assert.False(t, w.Hidden())
	}
	assert.Equal(t, 4, h.mgr.Len())
	assert.Equal(t, 4, h.mgr.Counter())

	s := h.factory.surfaces[3]
	assert.Equal(t, 45, s.x)
	assert.Equal(t, 45, s.y)
	assert.True(t, s.visible)
	assert.True(t, s.topmost)
	assert.Equal(t, "FITS File: /data/img3.fits", s.spec.Title)
	assert.Equal(t, windows[3].ID, s.spec.ID)
	require.NotNil(t, s.spec.Document)
}

func TestDisplayFits_UniqueIDs(t *testing.T) {
	h := newHarness()
	a, err := h.mgr.DisplayFits("/data/same.fits")
	require.NoError(t, err)
	b, err := h.mgr.DisplayFits("/data/same.fits")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, h.mgr.Len())
}

func TestDisplayFits_CustomStep(t *testing.T) {
	h := newHarness()
	h.mgr.SetCascadeStep(0)
	windows := openN(t, h.mgr, 3)
	for _, w := range windows {
		x, y := w.Offset()
		assert.Zero(t, x)
		assert.Zero(t, y)
	}

	h.mgr.SetCascadeStep(-4)
	w, err := h.mgr.DisplayFits("/data/next.fits")
	require.NoError(t, err)
	assert.Equal(t, 45, w.OffsetX)
}

func TestDisplayFits_RenderFailureLeavesStateUntouched(t *testing.T) {
	h := newHarness()
	first := openN(t, h.mgr, 1)[0]

	h.renderer.failures["/data/bad.txt"] = fits.ErrNotFITS
	w, err := h.mgr.DisplayFits("/data/bad.txt")

	assert.Nil(t, w)
	assert.ErrorIs(t, err, fits.ErrNotFITS)
	assert.Equal(t, 1, h.mgr.Len())
	assert.Equal(t, 1, h.mgr.Counter())
	assert.Len(t, h.factory.surfaces, 1)
	assert.True(t, first.Topmost())
	assert.False(t, first.Hidden())

	require.Len(t, h.notifier.notices, 1)
	assert.Equal(t, "/data/bad.txt", h.notifier.notices[0].Path)
	assert.ErrorIs(t, h.notifier.notices[0].Err, fits.ErrNotFITS)
}

func TestDisplayFits_SurfaceFailure(t *testing.T) {
	h := newHarness()
	h.factory.fail = errors.New("no display")

	_, err := h.mgr.DisplayFits("/data/a.fits")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no display")
	assert.Zero(t, h.mgr.Len())
	assert.Zero(t, h.mgr.Counter())
	assert.Len(t, h.notifier.notices, 1)
}

func TestDisplayFits_OnOpenedHook(t *testing.T) {
	var opened []string
	h := newHarness(func(o *Options) {
		o.OnOpened = func(w *Window) { opened = append(opened, w.Path) }
	})
	h.renderer.failures["/data/b.fits"] = fits.ErrNoImage

	h.mgr.OpenPaths([]string{"/data/a.fits", "/data/b.fits", "/data/c.fits"})
	assert.Equal(t, []string{"/data/a.fits", "/data/c.fits"}, opened)
}

func TestOpenPaths_ContinuesPastFailures(t *testing.T) {
	h := newHarness()
	h.renderer.failures["/data/b.fits"] = &fits.ParseError{Path: "/data/b.fits", Err: fits.ErrNotFITS}

	n := h.mgr.OpenPaths([]string{"/data/a.fits", "/data/b.fits", "/data/c.fits"})

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"/data/a.fits", "/data/b.fits", "/data/c.fits"}, h.renderer.calls)
	windows := h.mgr.Windows()
	require.Len(t, windows, 2)
	assert.Equal(t, "/data/a.fits", windows[0].Path)
	assert.Equal(t, "/data/c.fits", windows[1].Path)
	assert.Equal(t, 15, windows[1].OffsetX)
	assert.Len(t, h.notifier.notices, 1)
}

func TestOpenFiles(t *testing.T) {
	selection := []string{"/data/c.fits", "/data/a.fits", "/data/b.fits"}
	src := &fakeSource{paths: selection}
	h := newHarness(func(o *Options) { o.Source = src })

	h.mgr.OpenFiles()
	require.Equal(t, len(selection), h.mgr.Len())
	assert.Equal(t, selection, h.renderer.calls)

	for i, w := range h.mgr.Windows() {
		assert.Equal(t, selection[i], w.Path)
		assert.Equal(t, 15*i, w.OffsetX)
		assert.Equal(t, 15*i, w.OffsetY)

		s := h.factory.surfaces[i]
		assert.Equal(t, 15*i, s.x)
		assert.Equal(t, 15*i, s.y)
		assert.True(t, s.visible)
		assert.True(t, s.topmost)
	}
	assert.Equal(t, len(selection), h.mgr.Counter())
}

func TestOpenFiles_Cancelled(t *testing.T) {
	for name, src := range map[string]*fakeSource{
		"empty":     {},
		"cancelled": {err: ErrCancelled},
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(func(o *Options) { o.Source = src })
			h.mgr.OpenFiles()
			assert.Zero(t, h.mgr.Len())
			assert.Empty(t, h.notifier.notices)
			assert.Empty(t, h.renderer.calls)
		})
	}
}

func TestOpenFiles_SourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("portal unavailable")}
	h := newHarness(func(o *Options) { o.Source = src })

	h.mgr.OpenFiles()
	assert.Zero(t, h.mgr.Len())
	require.Len(t, h.notifier.notices, 1)
	assert.Contains(t, h.notifier.notices[0].Err.Error(), "portal unavailable")
}

func TestOpenFiles_NoSource(t *testing.T) {
	h := newHarness()
	h.mgr.OpenFiles()
	assert.Zero(t, h.mgr.Len())
}

func TestCloseWindow(t *testing.T) {
	h := newHarness()
	windows := openN(t, h.mgr, 3)

	assert.True(t, h.mgr.CloseWindow(windows[1]))

	remaining := h.mgr.Windows()
	assert.Equal(t, []*Window{windows[0], windows[2]}, remaining)
	assert.Equal(t, 2, h.mgr.Counter())
	assert.Equal(t, 1, h.factory.surfaces[1].closed)
	assert.Zero(t, h.factory.surfaces[0].closed)
	assert.Zero(t, h.factory.surfaces[2].closed)
}

func TestCloseWindow_Untracked(t *testing.T) {
	h := newHarness()
	windows := openN(t, h.mgr, 2)
	require.True(t, h.mgr.CloseWindow(windows[0]))

	assert.False(t, h.mgr.CloseWindow(windows[0]))
	assert.False(t, h.mgr.CloseWindow(&Window{ID: "stray"}))
	assert.Equal(t, 1, h.mgr.Len())
	assert.Equal(t, 1, h.mgr.Counter())
	assert.Equal(t, 1, h.factory.surfaces[0].closed)
}

func TestCloseWindow_Reentrant(t *testing.T) {
	h := newHarness()
	h.factory.reentrant = true
	windows := openN(t, h.mgr, 2)

	assert.True(t, h.mgr.CloseWindow(windows[0]))
	assert.Equal(t, 1, h.mgr.Len())
	assert.Equal(t, 1, h.mgr.Counter())
	assert.Equal(t, 1, h.factory.surfaces[0].closed)
}

func TestCloseWindow_FromToolkit(t *testing.T) {
	h := newHarness()
	openN(t, h.mgr, 2)

	// user clicks the close button on the second window
	h.factory.surfaces[1].spec.OnClosed()

	assert.Equal(t, 1, h.mgr.Len())
	assert.Equal(t, 1, h.mgr.Counter())
	assert.Equal(t, 1, h.factory.surfaces[1].closed)
}

func TestCloseWindow_CounterCanCollide(t *testing.T) {
	h := newHarness()
	windows := openN(t, h.mgr, 3)

	require.True(t, h.mgr.CloseWindow(windows[0]))
	w, err := h.mgr.DisplayFits("/data/d.fits")
	require.NoError(t, err)

	// counter went 3 -> 2, so the new window lands on the third one
	assert.Equal(t, windows[2].OffsetX, w.OffsetX)
	assert.Equal(t, 3, h.mgr.Len())
}

func TestClearWindows(t *testing.T) {
	h := newHarness()
	openN(t, h.mgr, 3)

	h.mgr.ClearWindows()

	assert.Zero(t, h.mgr.Len())
	assert.Zero(t, h.mgr.Counter())
	for _, s := range h.factory.surfaces {
		assert.Equal(t, 1, s.closed)
	}

	w, err := h.mgr.DisplayFits("/data/again.fits")
	require.NoError(t, err)
	assert.Zero(t, w.OffsetX)
	assert.Zero(t, w.OffsetY)
}

func TestClearWindows_Reentrant(t *testing.T) {
	h := newHarness()
	h.factory.reentrant = true
	openN(t, h.mgr, 3)

	h.mgr.ClearWindows()

	assert.Zero(t, h.mgr.Len())
	assert.Zero(t, h.mgr.Counter())
	for _, s := range h.factory.surfaces {
		assert.Equal(t, 1, s.closed)
	}
}

func TestClearWindows_Empty(t *testing.T) {
	h := newHarness()
	h.mgr.ClearWindows()
	assert.Zero(t, h.mgr.Len())
	assert.Zero(t, h.mgr.Counter())
}

func TestMinimizeRestore(t *testing.T) {
	h := newHarness()
	windows := openN(t, h.mgr, 3)

	h.mgr.OnMinimize()
	assert.True(t, h.mgr.Minimized())
	for i, w := range windows {
		assert.True(t, w.Hidden())
		assert.False(t, w.Topmost())
		assert.False(t, h.factory.surfaces[i].visible)
		assert.False(t, h.factory.surfaces[i].topmost)
	}

	h.mgr.OnRestore()
	assert.False(t, h.mgr.Minimized())
	for i, w := range windows {
		assert.False(t, w.Hidden())
		assert.True(t, w.Topmost())
		assert.True(t, h.factory.surfaces[i].visible)
		assert.True(t, h.factory.surfaces[i].topmost)
	}
}

func TestMinimizeRestore_Idempotent(t *testing.T) {
	h := newHarness()
	windows := openN(t, h.mgr, 2)

	h.mgr.OnMinimize()
	h.mgr.OnMinimize()
	for _, w := range windows {
		assert.True(t, w.Hidden())
		assert.False(t, w.Topmost())
	}

	h.mgr.OnRestore()
	h.mgr.OnRestore()
	for _, w := range windows {
		assert.False(t, w.Hidden())
		assert.True(t, w.Topmost())
	}
	assert.Equal(t, 2, h.mgr.Len())
	assert.Equal(t, 2, h.mgr.Counter())
}

func TestMinimizeRestore_NoWindows(t *testing.T) {
	h := newHarness()
	h.mgr.OnMinimize()
	h.mgr.OnRestore()
	assert.Zero(t, h.mgr.Len())
}

func TestDisplayFits_WhileMinimized(t *testing.T) {
	h := newHarness()
	h.mgr.OnMinimize()

	w, err := h.mgr.DisplayFits("/data/late.fits")
	require.NoError(t, err)
	assert.True(t, w.Hidden())
	assert.False(t, w.Topmost())

	h.mgr.OnRestore()
	assert.False(t, w.Hidden())
	assert.True(t, w.Topmost())
}

func TestScenario_OpenClearReopen(t *testing.T) {
	h := newHarness()
	n := h.mgr.OpenPaths([]string{"/data/A.fits", "/data/B.fits"})
	require.Equal(t, 2, n)

	windows := h.mgr.Windows()
	assert.Equal(t, 0, windows[0].OffsetX)
	assert.Equal(t, 15, windows[1].OffsetX)

	h.mgr.ClearWindows()
	require.Equal(t, 1, h.mgr.OpenPaths([]string{"/data/A.fits"}))

	windows = h.mgr.Windows()
	require.Len(t, windows, 1)
	assert.Equal(t, 0, windows[0].OffsetX)
	assert.Equal(t, 0, windows[0].OffsetY)
	assert.Equal(t, 1, h.mgr.Counter())
}

func TestPlaceholders(t *testing.T) {
	h := newHarness()
	openN(t, h.mgr, 1)

	h.mgr.SetCalibration()
	h.mgr.UploadResults()

	assert.Equal(t, 1, h.mgr.Len())
	assert.Equal(t, 1, h.mgr.Counter())
	assert.Empty(t, h.notifier.notices)
}

func TestWindows_ReturnsCopy(t *testing.T) {
	h := newHarness()
	openN(t, h.mgr, 2)

	list := h.mgr.Windows()
	list[0] = nil
	assert.NotNil(t, h.mgr.Windows()[0])
}

func TestManager_WithFITSReader(t *testing.T) {
	dir := t.TempDir()
	good := fitstest.WriteImage16(t, dir, "m31.fits", 100, 100, fitstest.Gradient(100, 100))
	bad := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(bad, []byte("not a fits file"), 0644))

	factory := &fakeFactory{}
	notifier := &fakeNotifier{}
	m := NewManager(Options{
		Renderer: fits.Reader{},
		Surfaces: factory,
		Notifier: notifier,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	n := m.OpenPaths([]string{good, bad, good})
	assert.Equal(t, 2, n)
	require.Len(t, factory.surfaces, 2)

	doc := factory.surfaces[0].spec.Document
	require.NotNil(t, doc)
	require.NotNil(t, doc.Image)
	assert.Equal(t, 100, doc.Image.Width)
	assert.Equal(t, 100, doc.Image.Height)
	assert.Equal(t, float64(99+100*99), doc.Image.At(99, 99))
	assert.Contains(t, doc.Summary, "m31.fits")

	require.Len(t, notifier.notices, 1)
	assert.Equal(t, bad, notifier.notices[0].Path)
	var perr *fits.ParseError
	assert.ErrorAs(t, notifier.notices[0].Err, &perr)
}
