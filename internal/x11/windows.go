package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// EWMH state atoms used by the viewer.
const (
	StateAbove      = "_NET_WM_STATE_ABOVE"
	StateHidden     = "_NET_WM_STATE_HIDDEN"
	StateMaxHorz    = "_NET_WM_STATE_MAXIMIZED_HORZ"
	StateMaxVert    = "_NET_WM_STATE_MAXIMIZED_VERT"
	wmStateProperty = "_NET_WM_STATE"
)

// MoveWindow places a top-level window at absolute root coordinates. When
// the _NET_MOVERESIZE_WINDOW request cannot be sent it configures the window
// directly and reports that request's outcome.
func (c *Connection) MoveWindow(windowID xproto.Window, x, y int) error {
	if err := ewmh.MoveWindow(c.XUtil, windowID, x, y); err == nil {
		return nil
	}
	err := xproto.ConfigureWindowChecked(c.XUtil.Conn(), windowID,
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(int32(x)), uint32(int32(y))}).Check()
	if err != nil {
		return fmt.Errorf("failed to move window %d: %w", windowID, err)
	}
	return nil
}

// Origin returns the root position of the window including its decorations.
func (c *Connection) Origin(windowID xproto.Window) (x, y int, err error) {
	geom, err := xwindow.New(c.XUtil, windowID).DecorGeometry()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read geometry of window %d: %w", windowID, err)
	}
	return geom.X(), geom.Y(), nil
}

// SetAbove asks the window manager to keep the window above others, or to
// stop doing so.
func (c *Connection) SetAbove(windowID xproto.Window, on bool) error {
	action := ewmh.StateRemove
	if on {
		action = ewmh.StateAdd
	}
	if err := ewmh.WmStateReq(c.XUtil, windowID, action, StateAbove); err != nil {
		return fmt.Errorf("failed to set keep-above on window %d: %w", windowID, err)
	}
	return nil
}

// Maximize requests both maximized states in one message.
func (c *Connection) Maximize(windowID xproto.Window) error {
	err := ewmh.WmStateReqExtra(c.XUtil, windowID, ewmh.StateAdd, StateMaxVert, StateMaxHorz, 2)
	if err != nil {
		return fmt.Errorf("failed to maximize window %d: %w", windowID, err)
	}
	return nil
}

// States returns the current _NET_WM_STATE atoms of the window.
func (c *Connection) States(windowID xproto.Window) ([]string, error) {
	return ewmh.WmStateGet(c.XUtil, windowID)
}

// Iconified reports whether the window manager has minimized the window.
func (c *Connection) Iconified(windowID xproto.Window) (bool, error) {
	states, err := c.States(windowID)
	if err != nil {
		return false, err
	}
	return hasState(states, StateHidden), nil
}

func hasState(states []string, name string) bool {
	for _, s := range states {
		if s == name {
			return true
		}
	}
	return false
}
