//go:build windows

package overlay

import (
	"testing"

	"github.com/yakrider/WinDusky/effects"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{Table: effects.DefaultTable()})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestManagerStartsWithNoOverlaysOrModesActive(t *testing.T) {
	m := newTestManager(t)

	if m.OverlayCount() != 0 {
		t.Fatalf("expected a fresh manager to have zero overlays, got %d", m.OverlayCount())
	}
	if m.FullScreenActive() {
		t.Fatal("expected full-screen mode to start inactive")
	}
	if m.MagnifierActive() {
		t.Fatal("expected the magnifier to start inactive")
	}
	if m.HasOverlay(1) {
		t.Fatal("expected an arbitrary handle to have no overlay")
	}
}

// drainOnce processes everything currently queued, the same way the message
// loop's msgDrainQueue case does -- used here to exercise request handling
// without actually pumping Win32 messages.
func drainOnce(m *Manager) { m.drainQueue() }

func TestToggleFullScreenFlipsFullScreenActive(t *testing.T) {
	m := newTestManager(t)

	m.ToggleFullScreen()
	drainOnce(m)
	if !m.FullScreenActive() {
		t.Fatal("expected ToggleFullScreen to engage full-screen mode")
	}

	m.ToggleFullScreen()
	drainOnce(m)
	if m.FullScreenActive() {
		t.Fatal("expected a second ToggleFullScreen to disengage full-screen mode")
	}
}

func TestToggleMagnifierFlipsMagnifierActive(t *testing.T) {
	m := newTestManager(t)

	m.ToggleMagnifier()
	drainOnce(m)
	if !m.MagnifierActive() {
		t.Fatal("expected ToggleMagnifier to engage the magnifier")
	}

	m.ToggleMagnifier()
	drainOnce(m)
	if m.MagnifierActive() {
		t.Fatal("expected a second ToggleMagnifier to disengage the magnifier")
	}
}

func TestClearOverlaysIsSafeWithNoEvaluatorAndNoOverlays(t *testing.T) {
	m := newTestManager(t)

	m.ClearOverlays()
	drainOnce(m)

	if m.OverlayCount() != 0 {
		t.Fatalf("expected OverlayCount to remain zero, got %d", m.OverlayCount())
	}
}

func TestClearOverridesIsSafeWithNoEvaluator(t *testing.T) {
	m := newTestManager(t)
	m.ClearOverrides() // must not panic when cfg.Evaluator is nil
}

func TestReloadHotkeysReplacesRegistrations(t *testing.T) {
	m := newTestManager(t)

	m.ReloadHotkeys([]Binding{{ID: HotkeyFullscreenToggle, Modifiers: 0, VK: 0x46}})
	drainOnce(m) // exercises UnregisterHotkeys + RegisterHotkeys; failures are logged, not fatal
}
