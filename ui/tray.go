// Package ui provides the system tray front-end for WinDusky.
package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/yakrider/WinDusky/logger"
)

// StatusSource is the read-only view of live overlay state the tray polls
// to keep its tooltip current. Implemented by main's application type,
// which reads these from *overlay.Manager and *rules.Evaluator.
type StatusSource interface {
	OverlayCount() int
	FullScreenActive() bool
	MagnifierActive() bool
	GammaActive() bool
	OverrideCount() int
}

// Controller is the set of actions the tray menu can trigger. Implemented
// by main's wiring code around *overlay.Manager, *config.Manager, and
// *autostart.Manager.
type Controller interface {
	ToggleFullScreen()
	ToggleMagnifier()
	ToggleGamma()
	ClearOverlays()
	ClearOverrides()
	OpenConfigFile()
	ReloadConfig() error
	ToggleAutostart() (bool, error)
	Restart()
	Quit()
}

// TrayUI manages the system tray icon and menu.
type TrayUI struct {
	status     StatusSource
	controller Controller
	log        *logger.Logger

	mToggleFullScreen *systray.MenuItem
	mToggleMagnifier  *systray.MenuItem
	mToggleGamma      *systray.MenuItem
	mClearOverlays    *systray.MenuItem
	mClearOverrides   *systray.MenuItem
	mOpenConfig       *systray.MenuItem
	mReloadConfig     *systray.MenuItem
	mAutostart        *systray.MenuItem
	mRestart          *systray.MenuItem
	mQuit             *systray.MenuItem

	mu       sync.Mutex
	running  bool
	quitting bool

	autostartEnabled bool

	iconIdle   []byte
	iconActive []byte
}

// NewTrayUI builds a tray front-end driven by status and controller.
// autostartEnabled seeds the initial checkbox state.
func NewTrayUI(status StatusSource, controller Controller, autostartEnabled bool) *TrayUI {
	return &TrayUI{
		status:           status,
		controller:       controller,
		log:              logger.Get(),
		autostartEnabled: autostartEnabled,
	}
}

// Run starts the system tray. This call blocks until the tray exits.
func (t *TrayUI) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *TrayUI) onReady() {
	t.mu.Lock()
	t.running = true
	t.mu.Unlock()

	t.setIcon(false)
	systray.SetTitle("WinDusky")
	systray.SetTooltip("WinDusky")

	t.mToggleFullScreen = systray.AddMenuItem("Toggle Full-Screen Overlay", "Apply the active effect to the whole desktop")
	t.mToggleMagnifier = systray.AddMenuItem("Toggle Magnifier", "Follow the pointer with a zoomed view")
	t.mToggleGamma = systray.AddMenuItem("Toggle Gamma Preset", "Apply the current gamma/color-temperature preset to the screen")
	systray.AddSeparator()
	t.mClearOverlays = systray.AddMenuItem("Clear Overlays", "Remove every per-window overlay")
	t.mClearOverrides = systray.AddMenuItem("Clear Overrides", "Forget every manually toggled-off window")
	systray.AddSeparator()
	t.mOpenConfig = systray.AddMenuItem("Open Config File", "Edit WinDusky.conf.toml")
	t.mReloadConfig = systray.AddMenuItem("Reload Config", "Re-read WinDusky.conf.toml")
	t.mAutostart = systray.AddMenuItemCheckbox("Start with Windows", "Launch WinDusky at sign-in", t.autostartEnabled)
	systray.AddSeparator()
	t.mRestart = systray.AddMenuItem("Restart", "Restart WinDusky")
	t.mQuit = systray.AddMenuItem("Exit", "Exit WinDusky")

	go t.handleMenuEvents()
	go t.pollStatus()

	t.log.Info("system tray initialized")
}

func (t *TrayUI) onExit() {
	t.mu.Lock()
	t.running = false
	t.mu.Unlock()
	t.log.Info("system tray closed")
}

func (t *TrayUI) handleMenuEvents() {
	for {
		t.mu.Lock()
		quitting := t.quitting
		t.mu.Unlock()
		if quitting {
			return
		}

		select {
		case <-t.mToggleFullScreen.ClickedCh:
			t.controller.ToggleFullScreen()

		case <-t.mToggleMagnifier.ClickedCh:
			t.controller.ToggleMagnifier()

		case <-t.mToggleGamma.ClickedCh:
			t.controller.ToggleGamma()

		case <-t.mClearOverlays.ClickedCh:
			t.controller.ClearOverlays()

		case <-t.mClearOverrides.ClickedCh:
			t.controller.ClearOverrides()

		case <-t.mOpenConfig.ClickedCh:
			t.controller.OpenConfigFile()

		case <-t.mReloadConfig.ClickedCh:
			if err := t.controller.ReloadConfig(); err != nil {
				t.log.WithError(err).Warn("config reload failed")
			}

		case <-t.mAutostart.ClickedCh:
			enabled, err := t.controller.ToggleAutostart()
			if err != nil {
				t.log.WithError(err).Warn("autostart toggle failed")
				continue
			}
			t.autostartEnabled = enabled
			if enabled {
				t.mAutostart.Check()
			} else {
				t.mAutostart.Uncheck()
			}

		case <-t.mRestart.ClickedCh:
			t.controller.Restart()
			return

		case <-t.mQuit.ClickedCh:
			t.controller.Quit()
			return
		}
	}
}

// pollStatus refreshes the tooltip and icon every second; there is no
// push-based status event, so a short poll is simplest given how cheap
// these getters are (map length reads and atomic loads).
func (t *TrayUI) pollStatus() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		t.mu.Lock()
		running := t.running
		t.mu.Unlock()
		if !running {
			return
		}
		t.refresh()
	}
}

func (t *TrayUI) refresh() {
	overlays := t.status.OverlayCount()
	fsActive := t.status.FullScreenActive()
	magActive := t.status.MagnifierActive()
	gammaActive := t.status.GammaActive()
	overrides := t.status.OverrideCount()

	mode := "per-window"
	switch {
	case fsActive:
		mode = "full-screen"
	case magActive:
		mode = "magnifier"
	}

	tooltip := fmt.Sprintf("WinDusky (%s)\n%d overlay(s) active\n%d override(s)", mode, overlays, overrides)
	if gammaActive {
		tooltip += "\ngamma preset active"
	}
	systray.SetTooltip(tooltip)
	t.setIcon(overlays > 0 || fsActive || magActive || gammaActive)
}

func (t *TrayUI) setIcon(active bool) {
	var icon []byte
	if active {
		if t.iconActive == nil {
			t.iconActive = generateSimpleIcon(80, 160, 255)
		}
		icon = t.iconActive
	} else {
		if t.iconIdle == nil {
			t.iconIdle = generateSimpleIcon(128, 128, 128)
		}
		icon = t.iconIdle
	}
	if len(icon) > 0 {
		systray.SetIcon(icon)
	}
}

// Quit tears the tray down, safe to call more than once.
func (t *TrayUI) Quit() {
	t.mu.Lock()
	if t.quitting {
		t.mu.Unlock()
		return
	}
	t.quitting = true
	t.running = false
	t.mu.Unlock()

	systray.Quit()
}

// IsRunning reports whether the tray's event loop is live.
func (t *TrayUI) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// generateSimpleIcon builds a minimal 16x16 32-bit ICO of a solid color, so
// the tray never depends on an external asset file.
func generateSimpleIcon(r, g, b byte) []byte {
	width, height := 16, 16

	imageSize := width * height * 4
	xorSize := imageSize
	andSize := ((width + 31) / 32) * 4 * height
	dataSize := 40 + xorSize + andSize

	buf := make([]byte, 6+16+dataSize)

	buf[2] = 1 // ICONDIR.Type = icon
	buf[4] = 1 // ICONDIR.Count = 1

	buf[6] = byte(width)
	buf[7] = byte(height)
	buf[10] = 1  // color planes
	buf[12] = 32 // bits per pixel
	buf[14] = byte(dataSize)
	buf[15] = byte(dataSize >> 8)
	buf[16] = byte(dataSize >> 16)
	buf[17] = byte(dataSize >> 24)
	buf[18] = 22 // offset to image data

	offset := 22
	buf[offset] = 40 // BITMAPINFOHEADER size
	buf[offset+4] = byte(width)
	buf[offset+8] = byte(height * 2)
	buf[offset+12] = 1
	buf[offset+14] = 32
	buf[offset+20] = byte(xorSize + andSize)
	buf[offset+21] = byte((xorSize + andSize) >> 8)

	pixels := 22 + 40
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := pixels + (y*width+x)*4
			buf[idx] = b
			buf[idx+1] = g
			buf[idx+2] = r
			buf[idx+3] = 255
		}
	}

	return buf
}
