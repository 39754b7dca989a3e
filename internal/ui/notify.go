package ui

import (
	"fmt"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/fitsview/internal/viewer"
)

const maxNotices = 50

// noticeBoard lists recent failures in the main window and mirrors each one
// as a desktop notification.
type noticeBoard struct {
	app   fyne.App
	items []string
	list  *widget.List
	now   func() time.Time
}

var _ viewer.Notifier = (*noticeBoard)(nil)

func newNoticeBoard(app fyne.App) *noticeBoard {
	b := &noticeBoard{app: app, now: time.Now}
	b.list = widget.NewList(
		func() int { return len(b.items) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(b.items[id])
		},
	)
	return b
}

func (b *noticeBoard) Notify(n viewer.Notice) {
	msg := formatNotice(n)
	line := b.now().Format("15:04:05") + "  " + msg

	b.items = append([]string{line}, b.items...)
	if len(b.items) > maxNotices {
		b.items = b.items[:maxNotices]
	}
	b.list.Refresh()

	b.app.SendNotification(fyne.NewNotification("FITS File Viewer", msg))
}

// Clear empties the list.
func (b *noticeBoard) Clear() {
	b.items = nil
	b.list.Refresh()
}

// Items returns the notices, newest first.
func (b *noticeBoard) Items() []string {
	return append([]string(nil), b.items...)
}

func formatNotice(n viewer.Notice) string {
	if n.Err == nil {
		return filepath.Base(n.Path)
	}
	if n.Path == "" {
		return n.Err.Error()
	}
	return fmt.Sprintf("%s: %v", filepath.Base(n.Path), n.Err)
}
