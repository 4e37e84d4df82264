//go:build windows

package overlay

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yakrider/WinDusky/effects"
	"github.com/yakrider/WinDusky/gamma"
	"github.com/yakrider/WinDusky/handle"
	"github.com/yakrider/WinDusky/occlusion"
	"github.com/yakrider/WinDusky/rules"
	"github.com/yakrider/WinDusky/winapi"
)

const (
	timerIntervalMs uint32 = 16 // ~60Hz, matches the magnifier's own refresh cadence
	mainTimerID     uintptr = 1
)

// Custom message ids posted to the manager's hidden message window, built on
// top of WM_APP the way every other app-defined message in this codebase is.
const (
	msgDrainQueue = winapi.WMApp + iota + 1
	msgHotkey     // unused: real WM_HOTKEY carries its own id in wParam
)

type requestKind int

const (
	reqRefresh requestKind = iota
	reqOverlayCreate
	reqOverlayRemove
	reqOverlayClearAll
	reqToggleFullscreenMode
	reqToggleFullscreenEffect
	reqToggleMagnifier
	reqToggleGamma
	reqMagRefresh
	reqReloadConfig
	reqQuit
)

type request struct {
	kind     requestKind
	target   handle.Handle
	effect   effects.Effect
	bindings []Binding
}

// Manager is the sole owner of every OS resource belonging to an overlay. It
// must be constructed and run from a single goroutine pinned to its OS
// thread; every method documented as "manager thread only" assumes that.
type Manager struct {
	hwndMsg  uintptr
	threadID uint32

	mu       sync.RWMutex
	overlays map[handle.Handle]*Overlay
	hosts    map[handle.Handle]struct{}

	ovTopmost handle.Atomic
	fgndCache handle.Atomic

	timerRunning bool
	occlDirty    *handle.Flag

	table      *effects.Table
	fsOverlay  *FullScreenOverlay
	magOverlay *MagnifierOverlay
	gammaCtrl  *gamma.Controller

	evaluator *rules.Evaluator

	driverExe string // process whose own foreground transitions are ignored

	winEventHooks []uintptr
	mouseHook     uintptr

	queueMu sync.Mutex
	queue   []request

	windows occlusion.WindowSource

	log *logrus.Entry
}

// Config bundles everything the manager needs at construction time that
// comes from elsewhere (resolved effect table, rule evaluator, logger).
type Config struct {
	Table        *effects.Table
	GammaPresets *gamma.PresetTable
	Evaluator    *rules.Evaluator
	DriverExe    string
	Log          *logrus.Entry
}

// NewManager allocates a Manager; its hidden message window is created
// later by Run. The caller must then call Run from a goroutine that will own it for the rest
// of the process lifetime.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Log == nil {
		cfg.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	if cfg.GammaPresets == nil {
		cfg.GammaPresets = gamma.NewPresetTable(nil, nil, "")
	}
	m := &Manager{
		overlays:   make(map[handle.Handle]*Overlay),
		hosts:      make(map[handle.Handle]struct{}),
		occlDirty:  handle.NewFlag(false),
		table:      cfg.Table,
		fsOverlay:  NewFullScreenOverlay(cfg.Table, cfg.Log),
		magOverlay: NewMagnifierOverlay(cfg.Log),
		gammaCtrl:  gamma.NewController(cfg.GammaPresets, cfg.Log),
		evaluator:  cfg.Evaluator,
		driverExe:  cfg.DriverExe,
		windows:    liveWindowSource{},
		log:        cfg.Log,
	}
	return m, nil
}

// Post enqueues a request for the manager thread to process and wakes its
// message loop. Safe to call from any goroutine.
func (m *Manager) Post(r request) {
	m.queueMu.Lock()
	m.queue = append(m.queue, r)
	m.queueMu.Unlock()
	if m.hwndMsg != 0 {
		winapi.PostMessageW(m.hwndMsg, msgDrainQueue, 0, 0)
	}
}

// RequestOverlayCreate implements rules.OverlayRequester.
func (m *Manager) RequestOverlayCreate(h handle.Handle, eff effects.Effect) {
	m.Post(request{kind: reqOverlayCreate, target: h, effect: eff})
}

// HasOverlay implements rules.OverlayRequester.
func (m *Manager) HasOverlay(h handle.Handle) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.overlays[h]
	return ok
}

// FullScreenActive implements rules.OverlayRequester.
func (m *Manager) FullScreenActive() bool { return m.fsOverlay.Enabled() }

// MagnifierActive reports whether pointer-follow magnification is engaged.
// Safe to call from any goroutine (e.g. the tray's status poll).
func (m *Manager) MagnifierActive() bool { return m.magOverlay.Active() }

// GammaActive reports whether a non-Normal device gamma ramp is currently
// installed. Safe to call from any goroutine.
func (m *Manager) GammaActive() bool { return m.gammaCtrl.Enabled() }

// OverlayCount reports how many per-window overlays currently exist.
// Safe to call from any goroutine.
func (m *Manager) OverlayCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.overlays)
}

// ToggleFullScreen posts a full-screen-mode toggle request. Safe to call
// from any goroutine, including the tray's menu handler.
func (m *Manager) ToggleFullScreen() { m.Post(request{kind: reqToggleFullscreenMode}) }

// ToggleMagnifier posts a pointer-follow magnifier toggle request. Safe to
// call from any goroutine.
func (m *Manager) ToggleMagnifier() { m.Post(request{kind: reqToggleMagnifier}) }

// ToggleGamma posts a device gamma ramp toggle request. Safe to call from
// any goroutine.
func (m *Manager) ToggleGamma() { m.Post(request{kind: reqToggleGamma}) }

// ClearOverlays posts a request to remove every per-window overlay and
// forget user overrides. Safe to call from any goroutine.
func (m *Manager) ClearOverlays() { m.Post(request{kind: reqOverlayClearAll}) }

// ClearOverrides forgets every manually toggled-off window without
// disturbing currently active overlays. Safe to call from any goroutine.
func (m *Manager) ClearOverrides() {
	if m.evaluator != nil {
		m.evaluator.ClearUserOverrides()
	}
}

// ReloadHotkeys posts a request to unregister every hotkey and register
// bindings in their place. Safe to call from any goroutine; actual
// (un)registration only ever happens on the manager thread.
func (m *Manager) ReloadHotkeys(bindings []Binding) {
	m.Post(request{kind: reqReloadConfig, bindings: bindings})
}

// Quit unregisters every hotkey and tears down the message loop, causing
// Run to return. Safe to call from any goroutine.
func (m *Manager) Quit() {
	m.Post(request{kind: reqQuit})
}

// overlayByTarget, loadTopmost, storeTopmost implement Overlay's topmostTracker.
func (m *Manager) overlayByTarget(h handle.Handle) (*Overlay, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ov, ok := m.overlays[h]
	return ov, ok
}
func (m *Manager) loadTopmost() handle.Handle    { return m.ovTopmost.Load() }
func (m *Manager) storeTopmost(h handle.Handle)  { m.ovTopmost.Store(h) }

// Run pins the calling goroutine to its OS thread, creates the hidden
// message window, registers bindings, and pumps messages until QUIT. It
// never returns until shutdown; callers should run it in its own goroutine.
// Hotkeys must be registered from this same thread, so initial bindings are
// taken here rather than via a separate RegisterHotkeys call from the
// caller's goroutine.
func (m *Manager) Run(bindings []Binding) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !winapi.MagInitialize() {
		return fmt.Errorf("MagInitialize failed")
	}
	defer winapi.MagUninitialize()

	if err := registerOverlayWindowClass(); err != nil {
		return fmt.Errorf("register overlay window class: %w", err)
	}
	hwnd, err := winapi.CreateWindowExW(
		0, winapi.WideString(hostWindowClassName), winapi.WideString("WinDusky Manager"),
		0, 0, 0, 0, 0, 0, winapi.GetModuleHandle(),
	)
	if err != nil {
		return fmt.Errorf("create manager message window: %w", err)
	}
	m.hwndMsg = hwnd

	m.installWinEventHooks()
	m.mouseHook = winapi.SetMouseHook(m.mouseProc)
	m.RegisterHotkeys(bindings)

	var msg winapi.MSG
	for {
		ok, err := winapi.GetMessage(&msg)
		if err != nil {
			m.log.WithError(err).Error("message loop GetMessage failed")
			return err
		}
		if !ok {
			return nil // WM_QUIT
		}
		winapi.TranslateMessage(&msg)

		switch msg.Message {
		case winapi.WMHotkey:
			m.handleHotkey(int(msg.WParam))
		case winapi.WMTimer:
			m.drainQueue()
			m.doRefresh()
		case msgDrainQueue:
			m.drainQueue()
		default:
			winapi.DispatchMessageW(&msg)
		}
	}
}

func (m *Manager) drainQueue() {
	m.queueMu.Lock()
	pending := m.queue
	m.queue = nil
	m.queueMu.Unlock()

	for _, r := range pending {
		switch r.kind {
		case reqRefresh:
			m.doRefresh()
		case reqOverlayCreate:
			m.doOverlayCreate(r.target, r.effect)
		case reqOverlayRemove:
			m.doOverlayRemove(r.target)
		case reqOverlayClearAll:
			m.doOverlayClearAll()
		case reqToggleFullscreenMode:
			m.doToggleFullscreenMode()
		case reqToggleFullscreenEffect:
			m.fsOverlay.ToggleEffect()
		case reqToggleMagnifier:
			m.magOverlay.ToggleEffect()
			m.magOverlay.Refresh()
		case reqToggleGamma:
			m.gammaCtrl.Toggle()
		case reqMagRefresh:
			m.magOverlay.Refresh()
		case reqReloadConfig:
			m.UnregisterHotkeys()
			m.RegisterHotkeys(r.bindings)
		case reqQuit:
			m.UnregisterHotkeys()
			winapi.PostMessageW(m.hwndMsg, winapi.WMQuit, 0, 0)
		}
	}
}

// doOverlayCreate is the manager-thread-only implementation of
// OVERLAY_CREATE: fails silently (logging) on an invalid or already-mapped
// target.
func (m *Manager) doOverlayCreate(target handle.Handle, eff effects.Effect) {
	if !target.IsValid() {
		return
	}
	m.mu.RLock()
	_, exists := m.overlays[target]
	m.mu.RUnlock()
	if exists {
		return
	}

	ov, err := newOverlay(target, m.table, eff)
	if err != nil {
		m.log.WithError(err).Warn("overlay creation failed")
		return
	}

	m.mu.Lock()
	m.overlays[target] = ov
	m.hosts[ov.Host()] = struct{}{}
	first := len(m.overlays) == 1
	m.mu.Unlock()

	m.occlDirty.Set()
	if first {
		m.startTimer()
	}
}

// doOverlayRemove destroys target's overlay, if any.
func (m *Manager) doOverlayRemove(target handle.Handle) {
	m.mu.Lock()
	ov, ok := m.overlays[target]
	if ok {
		delete(m.overlays, target)
		delete(m.hosts, ov.Host())
	}
	empty := len(m.overlays) == 0
	m.mu.Unlock()
	if !ok {
		return
	}
	ov.destroy()
	if m.ovTopmost.Contains(target) {
		m.ovTopmost.Clear()
	}
	m.occlDirty.Set()
	if empty {
		m.stopTimer()
	}
}

// doOverlayClearAll implements OVERLAY_CLEAR_ALL.
func (m *Manager) doOverlayClearAll() {
	m.mu.Lock()
	all := m.overlays
	m.overlays = make(map[handle.Handle]*Overlay)
	m.hosts = make(map[handle.Handle]struct{})
	m.mu.Unlock()

	for _, ov := range all {
		ov.destroy()
	}
	m.ovTopmost.Clear()
	m.stopTimer()
	if m.evaluator != nil {
		m.evaluator.ClearUserOverrides()
	}
}

// doToggleFullscreenMode implements TOGGLE_FULLSCREEN_MODE: per-window
// overlays and full-screen/magnifier mode are mutually exclusive.
func (m *Manager) doToggleFullscreenMode() {
	wasEnabled := m.fsOverlay.Enabled()
	if !wasEnabled {
		m.doOverlayClearAll()
	}
	m.fsOverlay.Toggle()
}

func (m *Manager) startTimer() {
	if m.timerRunning {
		return
	}
	winapi.SetTimer(m.hwndMsg, mainTimerID, timerIntervalMs)
	m.timerRunning = true
}

func (m *Manager) stopTimer() {
	if !m.timerRunning {
		return
	}
	winapi.KillTimer(m.hwndMsg, mainTimerID)
	m.timerRunning = false
}

// doRefresh implements REFRESH: recompute occlusion if dirty, then give
// every overlay a chance to re-sync geometry or invalidate just its visible
// region.
func (m *Manager) doRefresh() {
	m.mu.RLock()
	targets := make(map[handle.Handle]occlusion.Rect, len(m.overlays))
	hostsCopy := make(map[handle.Handle]struct{}, len(m.hosts))
	for h := range m.hosts {
		hostsCopy[h] = struct{}{}
	}
	overlaysCopy := make([]*Overlay, 0, len(m.overlays))
	for t, ov := range m.overlays {
		overlaysCopy = append(overlaysCopy, ov)
		if rect, ok := winapi.GetWindowRect(t.Uintptr()); ok {
			targets[t] = occlusion.Rect{Left: rect.Left, Top: rect.Top, Right: rect.Right, Bottom: rect.Bottom}
		}
	}
	m.mu.RUnlock()

	if m.occlDirty.Swap(false) && len(targets) > 0 {
		visible := occlusion.VisibleBounds(m.windows, hostsCopy, targets)
		for _, ov := range overlaysCopy {
			ov.setVizBounds(visible[ov.Target()])
		}
	}

	for _, ov := range overlaysCopy {
		ov.refresh(m)
	}
}

// removeOverlayIfMapped is a convenience used by the event router: posts a
// remove request only if the handle currently has an overlay.
func (m *Manager) removeOverlayIfMapped(h handle.Handle) {
	if m.HasOverlay(h) {
		m.Post(request{kind: reqOverlayRemove, target: h})
	}
}

// markOverlayIfMapped flags an existing overlay dirty without a full
// post/drain round trip, since the router already runs on the manager
// thread; it then asks for a refresh.
func (m *Manager) markOverlayIfMapped(h handle.Handle) bool {
	m.mu.RLock()
	ov, ok := m.overlays[h]
	m.mu.RUnlock()
	if ok {
		ov.Mark()
	}
	return ok
}

// liveWindowSource backs occlusion.WindowSource with a real top-level
// EnumWindows pass (already front-to-back per Win32 semantics).
type liveWindowSource struct{}

func (liveWindowSource) EnumerateTopDown(fn func(h handle.Handle, rect occlusion.Rect, visible, cloaked bool) bool) {
	winapi.EnumWindows(func(hwnd uintptr) bool {
		rect, _ := winapi.GetWindowRect(hwnd)
		r := occlusion.Rect{Left: rect.Left, Top: rect.Top, Right: rect.Right, Bottom: rect.Bottom}
		return fn(handle.FromUintptr(hwnd), r, winapi.IsWindowVisible(hwnd), winapi.IsWindowCloaked(hwnd))
	})
}
