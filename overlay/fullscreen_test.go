//go:build windows

package overlay

import (
	"testing"

	"github.com/yakrider/WinDusky/effects"
)

func TestFullScreenOverlayToggleTracksEnabledAndActive(t *testing.T) {
	f := NewFullScreenOverlay(effects.DefaultTable(), nil)

	if f.Enabled() {
		t.Fatal("expected full-screen overlay to start disabled")
	}

	if enabled := f.Toggle(); !enabled {
		t.Fatal("expected Toggle to turn full-screen mode on")
	}
	if !f.Enabled() {
		t.Fatal("expected Enabled to report true after Toggle on")
	}

	if enabled := f.Toggle(); enabled {
		t.Fatal("expected a second Toggle to turn full-screen mode back off")
	}
	if f.Enabled() {
		t.Fatal("expected Enabled to report false after Toggle off")
	}
}

func TestFullScreenOverlayToggleEffectUnappliesWhenActive(t *testing.T) {
	f := NewFullScreenOverlay(effects.DefaultTable(), nil)
	f.Toggle() // enable, which also activates the default effect

	if _, ok := f.ToggleEffect(); ok {
		t.Fatal("expected ToggleEffect to unapply (ok=false) while already active")
	}

	if _, ok := f.ToggleEffect(); !ok {
		t.Fatal("expected a second ToggleEffect to reapply (ok=true) once unapplied")
	}
}

func TestFullScreenOverlayApplyEffectCycledWrapsAround(t *testing.T) {
	f := NewFullScreenOverlay(effects.DefaultTable(), nil)
	f.activateEffect()
	start := f.effect.Current()

	n := effects.DefaultTable().Len()
	for i := 0; i < n; i++ {
		f.ApplyEffectNext()
	}
	if f.effect.Current() != start {
		t.Fatalf("expected cycling forward by the full table length to return to %v, got %v", start, f.effect.Current())
	}
}
