//go:build windows

package overlay

import "testing"

func TestMagLevelCycleClampsWithoutWrapping(t *testing.T) {
	var lvl magLevel

	if got := lvl.cycle(false); got != 0 {
		t.Fatalf("expected stepping below zero to clamp at 0, got %d", got)
	}

	for i := 0; i < maxMagLevels+5; i++ {
		lvl.cycle(true)
	}
	if got := lvl.load(); got != maxMagLevels {
		t.Fatalf("expected stepping past the top to clamp at %d, got %d", maxMagLevels, got)
	}
}

func TestMagLevelScaleGrowsWithLevel(t *testing.T) {
	var lvl magLevel
	if s := lvl.scale(); s != 1 {
		t.Fatalf("expected level 0 to scale to 1x, got %f", s)
	}
	lvl.store(5)
	if s := lvl.scale(); s <= 1 {
		t.Fatalf("expected level 5 to scale above 1x, got %f", s)
	}
}

func TestMagnifierOverlayToggleEffectEngagesThenDisengages(t *testing.T) {
	m := NewMagnifierOverlay(nil)

	if m.Active() {
		t.Fatal("expected a fresh magnifier overlay to start inactive")
	}

	level, ok := m.ToggleEffect()
	if !ok || level == 0 {
		t.Fatalf("expected first ToggleEffect to engage at a non-zero level, got level=%d ok=%v", level, ok)
	}
	if !m.Active() {
		t.Fatal("expected Active to report true once engaged")
	}

	if _, ok := m.ToggleEffect(); ok {
		t.Fatal("expected a second ToggleEffect to disengage (ok=false)")
	}
	if m.Active() {
		t.Fatal("expected Active to report false after disengaging")
	}
}

func TestClampInt32(t *testing.T) {
	cases := []struct{ v, lo, hi, want int32 }{
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{5, 0, 10, 5},
	}
	for _, c := range cases {
		if got := clampInt32(c.v, c.lo, c.hi); got != c.want {
			t.Errorf("clampInt32(%d,%d,%d) = %d, want %d", c.v, c.lo, c.hi, got, c.want)
		}
	}
}
