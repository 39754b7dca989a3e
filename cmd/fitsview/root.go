package main

import (
	"fmt"
	"log/slog"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"github.com/piwi3910/fitsview/internal/model"
	"github.com/piwi3910/fitsview/internal/prefs"
	"github.com/piwi3910/fitsview/internal/ui"
)

// Build-time variables (set via ldflags)
var (
	version = "dev"
	commit  = "unknown"
)

var (
	globalOpts struct {
		verbose    bool
		configPath string
	}
	logger *slog.Logger
	cfg    model.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "fitsview [files...]",
	Short: "Desktop viewer for FITS astronomical images",
	Long: `fitsview opens FITS files in cascaded viewer windows.

Files given as arguments are opened at startup; more can be opened from the
main window, by dropping them onto it, or from the Open Recent menu.`,
	Version: fmt.Sprintf("%s (commit: %s)", version, commit),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		if globalOpts.configPath == "" {
			globalOpts.configPath = prefs.DefaultConfigPath()
		}
		var err error
		cfg, err = prefs.LoadAppConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger.Debug("config loaded", "path", globalOpts.configPath)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		runGUI(args)
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/fitsview/config.toml)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

func runGUI(paths []string) {
	application := app.NewWithID("com.piwi3910.fitsview")

	window := application.NewWindow("FITS File Viewer")
	window.SetMaster()

	appUI := ui.NewApp(application, window, cfg, globalOpts.configPath, ui.NewDesktop(window, logger), logger)
	appUI.SetupMenus()
	window.SetContent(appUI.Build())
	window.Resize(fyne.NewSize(560, 360))

	application.Lifecycle().SetOnStarted(func() {
		appUI.Start(paths)
	})
	window.SetOnClosed(appUI.Shutdown)

	window.ShowAndRun()
}
