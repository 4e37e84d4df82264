//go:build windows

package overlay

import (
	"github.com/yakrider/WinDusky/handle"
	"github.com/yakrider/WinDusky/winapi"
)

// Stable hotkey ids, registered with RegisterHotKey and dispatched from
// WM_HOTKEY's wParam. Values are part of the external contract: config
// resolves hotkey strings to these ids at load time.
const (
	HotkeyFullscreenToggle = 1
	HotkeyEffectToggle     = 2
	HotkeyNextEffect       = 3
	HotkeyPrevEffect       = 4
	HotkeyClearOverlays    = 5
	HotkeyClearOverrides   = 6
	HotkeyGammaToggle      = 7
	HotkeyGammaNext        = 8
	HotkeyGammaPrev        = 9
	HotkeyMagToggle        = 10
	HotkeyMagNext          = 11
	HotkeyMagPrev          = 12

	hotkeyIDMax = HotkeyMagPrev
)

// Binding is one resolved hotkey: the RegisterHotKey modifier bitmask plus
// the virtual-key code, keyed by the stable id it's registered under.
type Binding struct {
	ID        int
	Modifiers uint32
	VK        uint32
}

// RegisterHotkeys installs every binding, tolerating individual failures
// (each is logged and the rest still get a chance). Must run on the manager
// thread.
func (m *Manager) RegisterHotkeys(bindings []Binding) {
	for _, b := range bindings {
		if err := winapi.RegisterHotKey(0, b.ID, b.Modifiers|winapi.ModNoRepeat, b.VK); err != nil {
			m.log.WithError(err).Warnf("failed to register hotkey id %d", b.ID)
		}
	}
}

// UnregisterHotkeys removes every stable hotkey id, ignoring ids that were
// never successfully registered. Must run on the manager thread that
// registered them.
func (m *Manager) UnregisterHotkeys() {
	for id := 1; id <= hotkeyIDMax; id++ {
		_ = winapi.UnregisterHotKey(0, id)
	}
}

// handleHotkey implements the §4.8 dispatch table. Runs on the manager
// thread (WM_HOTKEY is only ever delivered there).
func (m *Manager) handleHotkey(id int) {
	switch id {

	case HotkeyFullscreenToggle:
		m.doToggleFullscreenMode()
		return

	case HotkeyGammaToggle:
		m.gammaCtrl.Toggle()
		return
	case HotkeyGammaNext:
		m.gammaCtrl.CycleNext()
		return
	case HotkeyGammaPrev:
		m.gammaCtrl.CyclePrev()
		return

	case HotkeyMagToggle:
		m.magOverlay.ToggleEffect()
		m.magOverlay.Refresh()
		return
	case HotkeyMagNext:
		m.magOverlay.ApplyLevelNext()
		m.magOverlay.Refresh()
		return
	case HotkeyMagPrev:
		m.magOverlay.ApplyLevelPrev()
		m.magOverlay.Refresh()
		return
	}

	if m.fsOverlay.Enabled() {
		switch id {
		case HotkeyEffectToggle:
			m.fsOverlay.ToggleEffect()
		case HotkeyNextEffect:
			m.fsOverlay.ApplyEffectNext()
		case HotkeyPrevEffect:
			m.fsOverlay.ApplyEffectPrev()
		case HotkeyClearOverlays, HotkeyClearOverrides:
			// per-window state is already empty while full-screen mode is on
		}
		return
	}

	switch id {
	case HotkeyClearOverlays:
		m.doOverlayClearAll()
	case HotkeyClearOverrides:
		if m.evaluator != nil {
			m.evaluator.ClearUserOverrides()
		}
	case HotkeyEffectToggle, HotkeyNextEffect, HotkeyPrevEffect:
		target := m.fgndCache.Load()
		if !target.IsValid() {
			return
		}
		m.handlePerWindowEffectHotkey(id, target)
	}
}

func (m *Manager) handlePerWindowEffectHotkey(id int, target handle.Handle) {
	m.mu.RLock()
	ov, hasOverlay := m.overlays[target]
	m.mu.RUnlock()

	switch id {
	case HotkeyEffectToggle:
		if hasOverlay {
			m.doOverlayRemove(target)
			if m.evaluator != nil {
				m.evaluator.RegisterUserUnapplied(target)
			}
			return
		}
		eff := m.table.DefaultEffect()
		if m.evaluator != nil {
			if cached, ok := m.evaluator.CheckCached(target); ok && cached.Effect != nil {
				eff = *cached.Effect
			}
		}
		m.doOverlayCreate(target, eff)

	case HotkeyNextEffect:
		if hasOverlay {
			ov.ApplyEffectNext()
			if m.evaluator != nil {
				m.evaluator.UpdateCachedEffect(target, ov.EffectCursor().Current())
			}
		}
	case HotkeyPrevEffect:
		if hasOverlay {
			ov.ApplyEffectPrev()
			if m.evaluator != nil {
				m.evaluator.UpdateCachedEffect(target, ov.EffectCursor().Current())
			}
		}
	}
}
