package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// iconTracker turns _NET_WM_STATE snapshots into minimize/restore edges.
type iconTracker struct {
	hidden   bool
	onChange func(hidden bool)
}

// update records the latest state list and fires onChange only when the
// hidden flag flips.
func (t *iconTracker) update(states []string) {
	hidden := hasState(states, StateHidden)
	if hidden == t.hidden {
		return
	}
	t.hidden = hidden
	t.onChange(hidden)
}

// seed sets the starting state. A window that starts minimized is reported
// as a minimize.
func (t *iconTracker) seed(hidden bool) {
	t.hidden = hidden
	if hidden {
		t.onChange(true)
	}
}

// WatchIconify calls onChange(true) when the window is minimized and
// onChange(false) when it is restored. A window that is already minimized
// is reported once before WatchIconify returns. Callbacks run on the event loop
// goroutine, so callers must hop to their UI thread. EventLoop must be
// running for notifications to arrive.
func (c *Connection) WatchIconify(windowID xproto.Window, onChange func(hidden bool)) error {
	win := xwindow.New(c.XUtil, windowID)
	if err := win.Listen(xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify); err != nil {
		return fmt.Errorf("failed to listen on window %d: %w", windowID, err)
	}

	tracker := &iconTracker{onChange: onChange}
	if hidden, err := c.Iconified(windowID); err == nil {
		tracker.seed(hidden)
	}

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil || name != wmStateProperty {
			return
		}
		states, err := c.States(windowID)
		if err != nil {
			return
		}
		tracker.update(states)
	}).Connect(c.XUtil, windowID)
	return nil
}

// Unwatch drops every callback attached to the window.
func (c *Connection) Unwatch(windowID xproto.Window) {
	xevent.Detach(c.XUtil, windowID)
}
