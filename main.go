// WinDusky applies per-window color-transform overlays -- smart inversion,
// grayscale, sepia, and more -- driven by hotkeys and declarative
// auto-rules, with a system tray front-end.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/yakrider/WinDusky/autostart"
	"github.com/yakrider/WinDusky/config"
	"github.com/yakrider/WinDusky/logger"
	"github.com/yakrider/WinDusky/luminance"
	"github.com/yakrider/WinDusky/overlay"
	"github.com/yakrider/WinDusky/rules"
	"github.com/yakrider/WinDusky/ui"
	"github.com/yakrider/WinDusky/winapi"
)

const appVersion = "1.0.0"

// application wires every package's runtime pieces together and exposes the
// tray's Controller/StatusSource surface.
type application struct {
	configMgr *config.Manager
	log       *logger.Logger
	manager   *overlay.Manager
	evaluator *rules.Evaluator
	autostart *autostart.Manager
	tray      *ui.TrayUI

	configPath   string
	trayOnly     bool
	shutdownOnce sync.Once
}

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	version := flag.Bool("version", false, "Print version and exit")
	trayOnly := flag.Bool("tray-only", false, "Launch directly to the tray with no startup banner (used by autostart)")
	flag.Parse()

	if *version {
		fmt.Printf("WinDusky v%s\n", appVersion)
		os.Exit(0)
	}

	app := &application{trayOnly: *trayOnly}
	if err := app.init(*configPath, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}
	app.run()
}

func (app *application) init(configPath string, debug bool) error {
	app.log = logger.Get()

	app.configMgr = config.GetManager()
	if configPath == "" {
		var err error
		configPath, err = config.GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
	}
	app.configPath = configPath

	loadErr := app.configMgr.Load(configPath)
	if loadErr != nil && app.configMgr.Get() == nil {
		return fmt.Errorf("load config: %w", loadErr)
	}
	cfg := app.configMgr.Get()

	level := cfg.LoggingLevel
	if debug {
		level = "DEBUG"
	}
	logDir := filepath.Dir(configPath)
	if err := app.log.Init(cfg.LoggingEnabled, level, logDir); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	app.log.AddHook(logger.NewBufferedHook(500))

	app.log.Infof("starting WinDusky v%s", appVersion)
	app.log.Infof("config loaded from %s", configPath)
	if loadErr != nil {
		app.log.WithError(loadErr).Warn("config could not be loaded cleanly; continuing with the bundled defaults")
	}

	for _, verr := range cfg.Validate() {
		app.log.Warnf("config validation: %v", verr)
	}

	table := cfg.BuildEffectsTable()

	elevated := winapi.CheckCurrentProcessElevated()
	rulesCfg := cfg.BuildRulesConfig(table, elevated)
	app.evaluator = rules.New(
		rulesCfg,
		overlay.NewLiveInfoSource(),
		luminance.NewCapturer(),
		table.DefaultEffect(),
		app.log.WithField("component", "rules"),
	)

	exePath, _ := os.Executable()
	manager, err := overlay.NewManager(overlay.Config{
		Table:        table,
		GammaPresets: cfg.BuildGammaPresets(),
		Evaluator:    app.evaluator,
		DriverExe:    filepath.Base(exePath),
		Log:          app.log.WithField("component", "overlay"),
	})
	if err != nil {
		return fmt.Errorf("create overlay manager: %w", err)
	}
	app.manager = manager

	app.autostart = autostart.New()

	enabled, err := app.autostart.IsEnabled()
	if err != nil {
		app.log.WithError(err).Warn("could not read autostart registry state")
	}
	app.tray = ui.NewTrayUI(app, app, enabled)

	return nil
}

func (app *application) run() {
	bindings := app.configMgr.Get().ResolveHotkeys()
	go func() {
		if err := app.manager.Run(bindings); err != nil {
			app.log.WithError(err).Error("overlay manager stopped unexpectedly")
		}
	}()

	if app.trayOnly {
		app.log.Info("WinDusky started (tray-only)")
	} else {
		app.log.Info("WinDusky started")
	}
	app.tray.Run()
}

func (app *application) shutdown() {
	app.shutdownOnce.Do(func() {
		app.log.Info("shutting down")
		app.manager.ClearOverlays()
		app.manager.Quit()
		app.log.Close()
		app.tray.Quit()
		go func() {
			time.Sleep(300 * time.Millisecond)
			os.Exit(0)
		}()
	})
}

// --- ui.StatusSource ---

func (app *application) OverlayCount() int      { return app.manager.OverlayCount() }
func (app *application) FullScreenActive() bool { return app.manager.FullScreenActive() }
func (app *application) MagnifierActive() bool  { return app.manager.MagnifierActive() }
func (app *application) GammaActive() bool      { return app.manager.GammaActive() }
func (app *application) OverrideCount() int     { return app.evaluator.OverrideCount() }

// --- ui.Controller ---

func (app *application) ToggleFullScreen() { app.manager.ToggleFullScreen() }
func (app *application) ToggleMagnifier()  { app.manager.ToggleMagnifier() }
func (app *application) ToggleGamma()      { app.manager.ToggleGamma() }
func (app *application) ClearOverlays()    { app.manager.ClearOverlays() }
func (app *application) ClearOverrides()   { app.manager.ClearOverrides() }

func (app *application) OpenConfigFile() {
	if err := winapi.ShellExecuteOpen(app.configPath); err != nil {
		app.log.WithError(err).Warn("could not open config file")
	}
}

func (app *application) ReloadConfig() error {
	if err := app.configMgr.Reload(); err != nil {
		return err
	}
	app.manager.ReloadHotkeys(app.configMgr.Get().ResolveHotkeys())
	app.log.Info("config reloaded")
	return nil
}

func (app *application) ToggleAutostart() (bool, error) {
	enabled, err := app.autostart.Toggle()
	if err != nil {
		return false, err
	}
	if enabled {
		app.log.Info("autostart enabled")
	} else {
		app.log.Info("autostart disabled")
	}
	return enabled, nil
}

func (app *application) Restart() {
	exePath, err := os.Executable()
	if err != nil {
		app.log.WithError(err).Warn("restart: could not resolve executable path")
		app.shutdown()
		return
	}
	args := ""
	if app.configPath != "" {
		args = `-config "` + app.configPath + `"`
	}
	if app.trayOnly {
		args += " -tray-only"
	}
	if err := winapi.RestartSelf(exePath, args); err != nil {
		app.log.WithError(err).Warn("restart: could not relaunch")
	}
	app.shutdown()
}

func (app *application) Quit() { app.shutdown() }
