package ui

import (
	"log/slog"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/fitsview/internal/fits"
	"github.com/piwi3910/fitsview/internal/model"
	"github.com/piwi3910/fitsview/internal/prefs"
	"github.com/piwi3910/fitsview/internal/viewer"
)

// App holds the main window, the viewer window manager and the
// preferences that drive them.
type App struct {
	app        fyne.App
	window     fyne.Window
	config     model.AppConfig
	configPath string
	logger     *slog.Logger

	manager *viewer.Manager
	picker  *filePicker
	desktop Desktop
	notices *noticeBoard
	theme   *FitsViewTheme
	watcher *prefs.Watcher

	mainMenu   *fyne.MainMenu
	recentMenu *fyne.Menu
}

// NewApp wires the viewer manager to Fyne windows. desktop may be nil, in
// which case window placement requests are ignored.
func NewApp(application fyne.App, window fyne.Window, config model.AppConfig, configPath string, desktop Desktop, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	if desktop == nil {
		desktop = noopDesktop{}
	}
	a := &App{
		app:        application,
		window:     window,
		config:     config,
		configPath: configPath,
		logger:     logger,
		desktop:    desktop,
		notices:    newNoticeBoard(application),
		theme:      NewFitsViewTheme(config.Theme),
	}
	application.Settings().SetTheme(a.theme)

	a.picker = newFilePicker(window, func() []string { return a.config.Extensions }, logger)
	a.manager = viewer.NewManager(viewer.Options{
		Source:   a.picker,
		Renderer: fits.Reader{},
		Surfaces: &viewerFactory{
			app:     application,
			desktop: desktop,
			config:  func() model.AppConfig { return a.config },
			logger:  logger,
		},
		Notifier: a.notices,
		Logger:   logger,
		OnOpened: func(w *viewer.Window) { a.rememberRecent(w.Path) },
	})
	a.manager.SetCascadeStep(config.CascadeStep)
	return a
}

// Manager returns the viewer window manager.
func (a *App) Manager() *viewer.Manager { return a.manager }

// SetupMenus creates the native menu bar for the application.
func (a *App) SetupMenus() {
	a.recentMenu = fyne.NewMenu("Open Recent")
	a.refreshRecentMenu()

	openRecent := fyne.NewMenuItem("Open Recent", nil)
	openRecent.ChildMenu = a.recentMenu

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open FITS Files...", a.manager.OpenFiles),
		openRecent,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear Windows", a.manager.ClearWindows),
		fyne.NewMenuItem("Clear Notices", a.notices.Clear),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", a.showAboutDialog),
	)

	a.mainMenu = fyne.NewMainMenu(fileMenu, helpMenu)
	a.window.SetMainMenu(a.mainMenu)
}

func (a *App) showAboutDialog() {
	dialog.ShowInformation(
		"About FITS File Viewer",
		"FITS File Viewer\n\n"+
			"Opens FITS images in cascaded viewer windows that follow\n"+
			"the main window when it is minimized or restored.\n\n"+
			"Config: "+a.configPath,
		a.window,
	)
}

// Build constructs the main window content: the four controls in a row
// above the notice list.
func (a *App) Build() fyne.CanvasObject {
	controls := container.NewHBox(
		newButtonWithTooltip("Choose Files", theme.FolderOpenIcon(),
			"Choose FITS files and open each in its own window", a.manager.OpenFiles),
		newButtonWithTooltip("Set Calibration", theme.SettingsIcon(),
			"Calibration settings (not available yet)", a.manager.SetCalibration),
		newButtonWithTooltip("Upload to BHTOM", theme.UploadIcon(),
			"Upload results to BHTOM (not available yet)", a.manager.UploadResults),
		newButtonWithTooltip("Clear", theme.DeleteIcon(),
			"Close every open FITS window", a.manager.ClearWindows),
	)

	noticeHeader := widget.NewLabelWithStyle("Notices", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	content := container.NewBorder(
		container.NewVBox(controls, widget.NewSeparator(), noticeHeader),
		nil, nil, nil,
		a.notices.list,
	)

	a.window.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		a.manager.OpenPaths(droppedPaths(uris))
	})

	return addToolTipLayer(content, a.window)
}

// Start runs once the main window is up: it hooks the window manager
// integration, opens the files given on the command line and starts
// watching the config file.
func (a *App) Start(paths []string) {
	if a.config.MaximizeMain {
		a.desktop.Maximize(a.window)
	}
	a.desktop.WatchIconify(a.window, a.manager.OnMinimize, a.manager.OnRestore)

	if len(paths) > 0 {
		a.manager.OpenPaths(paths)
	}

	a.startWatcher()
}

// Shutdown closes every viewer window and releases background resources.
func (a *App) Shutdown() {
	if a.watcher != nil {
		if err := a.watcher.Stop(); err != nil {
			a.logger.Debug("config watcher stop", "error", err)
		}
	}
	a.manager.ClearWindows()
	a.desktop.Close()
}

func (a *App) startWatcher() {
	if a.configPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(a.configPath), 0755); err != nil {
		a.logger.Warn("cannot create config directory", "error", err)
		return
	}
	w, err := prefs.NewWatcher(a.configPath, func(cfg model.AppConfig) {
		fyne.Do(func() { a.ApplyConfig(cfg) })
	}, a.logger)
	if err != nil {
		a.logger.Warn("cannot watch config file", "error", err)
		return
	}
	if err := w.Start(); err != nil {
		a.logger.Warn("cannot watch config file", "error", err)
		return
	}
	a.watcher = w
}

// ApplyConfig switches to a new configuration. The cascade step applies to
// windows opened afterwards; open windows keep their position.
func (a *App) ApplyConfig(cfg model.AppConfig) {
	a.config = cfg
	a.manager.SetCascadeStep(cfg.CascadeStep)

	a.theme.SetVariantName(cfg.Theme)
	a.app.Settings().SetTheme(a.theme)

	a.refreshRecentMenu()
	a.logger.Debug("config applied", "cascade_step", cfg.CascadeStep, "theme", cfg.Theme)
}

func (a *App) rememberRecent(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	a.config.AddRecentFile(path)
	a.refreshRecentMenu()
	a.saveConfig()
}

// saveConfig persists the current config. Saves go through the watcher when
// it runs so they are not applied a second time.
func (a *App) saveConfig() {
	if a.configPath == "" {
		return
	}
	var err error
	if a.watcher != nil {
		err = a.watcher.Save(a.config)
	} else {
		err = prefs.SaveAppConfig(a.configPath, a.config)
	}
	if err != nil {
		a.logger.Warn("cannot save recent files", "error", err)
	}
}

func (a *App) refreshRecentMenu() {
	if a.recentMenu == nil {
		return
	}
	items := make([]*fyne.MenuItem, 0, len(a.config.RecentFiles)+2)
	for _, path := range a.config.RecentFiles {
		items = append(items, fyne.NewMenuItem(path, func() {
			a.manager.OpenPaths([]string{path})
		}))
	}
	if len(items) == 0 {
		none := fyne.NewMenuItem("(none)", nil)
		none.Disabled = true
		items = append(items, none)
	} else {
		items = append(items, fyne.NewMenuItemSeparator(), fyne.NewMenuItem("Clear Recent", func() {
			a.config.RecentFiles = nil
			a.refreshRecentMenu()
			a.saveConfig()
		}))
	}
	a.recentMenu.Items = items
	a.recentMenu.Refresh()
	if a.mainMenu != nil {
		a.mainMenu.Refresh()
	}
}
