package rules

import (
	"testing"

	"github.com/yakrider/WinDusky/effects"
	"github.com/yakrider/WinDusky/handle"
	"github.com/yakrider/WinDusky/luminance"
)

type fakeInfo map[handle.Handle]WindowInfo

func (f fakeInfo) Info(h handle.Handle) (WindowInfo, bool) {
	w, ok := f[h]
	return w, ok
}

type noLuminance struct{}

func (noLuminance) AverageLuminance(handle.Handle, luminance.Method) (byte, bool) { return 0, false }

func sepia() effects.Effect { e := effects.Effect(7); return e }
func inv() effects.Effect   { e := effects.Effect(2); return e }

func TestClassMatchWithExecutableExclusion(t *testing.T) {
	sep := sepia()
	invEff := inv()
	cfg := Config{
		Rules: map[Key]Value{
			ClassKey("Dialog"): {Enabled: true, Effect: &sep, ExclExes: map[string]struct{}{"bad.exe": {}}},
			ExeKey("good.exe"): {Enabled: true, Effect: &invEff},
		},
	}
	info := fakeInfo{
		handle.FromUintptr(1): {Visible: true, Class: "Dialog", Exe: "good.exe"},
		handle.FromUintptr(2): {Visible: true, Class: "Dialog", Exe: "bad.exe"},
		handle.FromUintptr(3): {Visible: true, Class: "Other", Exe: "good.exe"},
	}
	ev := New(cfg, info, noLuminance{}, effects.Effect(0), nil)

	ra := ev.evalRules(handle.FromUintptr(1))
	if !ra.Enabled || ra.Effect == nil || *ra.Effect != sep {
		t.Fatalf("expected sepia for dialog/good.exe, got %+v", ra)
	}

	rb := ev.evalRules(handle.FromUintptr(2))
	if rb != none {
		t.Fatalf("expected NONE for dialog/bad.exe (excluded), got %+v", rb)
	}

	rc := ev.evalRules(handle.FromUintptr(3))
	if !rc.Enabled || rc.Effect == nil || *rc.Effect != invEff {
		t.Fatalf("expected inversion for other/good.exe (exe fallback), got %+v", rc)
	}
}

func TestRegisterUserUnappliedPreservesEffect(t *testing.T) {
	cfg := Config{}
	info := fakeInfo{}
	ev := New(cfg, info, noLuminance{}, effects.Effect(0), nil)

	h := handle.FromUintptr(42)
	gray := effects.Effect(20)
	ev.mu.Lock()
	ev.evalCache[h] = Result{Enabled: true, Effect: &gray}
	ev.mu.Unlock()

	ev.RegisterUserUnapplied(h)

	cached, ok := ev.CheckCached(h)
	if !ok {
		t.Fatal("expected cache entry to still exist")
	}
	if cached.Enabled {
		t.Fatal("expected enabled=false after user override")
	}
	if !cached.Overridden {
		t.Fatal("expected overridden=true")
	}
	if cached.Effect == nil || *cached.Effect != gray {
		t.Fatalf("expected effect to be preserved across override, got %+v", cached.Effect)
	}
}

func TestClearUserOverrides(t *testing.T) {
	ev := New(Config{}, fakeInfo{}, noLuminance{}, effects.Effect(0), nil)
	ev.RegisterUserUnapplied(handle.FromUintptr(1))
	ev.RegisterUserUnapplied(handle.FromUintptr(2))
	ev.ClearUserOverrides()
	if _, ok := ev.CheckCached(handle.FromUintptr(1)); ok {
		t.Fatal("expected cache cleared")
	}
}

func TestReCheckRulePromotesNilEffectToDefault(t *testing.T) {
	def := effects.Effect(3)
	cfg := Config{
		Rules: map[Key]Value{
			ExeKey("app.exe"): {Enabled: true}, // no explicit effect
		},
	}
	info := fakeInfo{
		handle.FromUintptr(5): {Visible: true, Exe: "app.exe"},
	}
	ev := New(cfg, info, noLuminance{}, def, nil)
	r := ev.ReCheckRule(handle.FromUintptr(5))
	if r.Effect == nil || *r.Effect != def {
		t.Fatalf("expected default effect promotion, got %+v", r)
	}
}

func TestInvisibleOrCloakedWindowReturnsNone(t *testing.T) {
	info := fakeInfo{
		handle.FromUintptr(1): {Visible: false},
		handle.FromUintptr(2): {Visible: true, Cloaked: true},
	}
	ev := New(Config{}, info, noLuminance{}, effects.Effect(0), nil)
	if r := ev.evalRules(handle.FromUintptr(1)); r != none {
		t.Fatalf("expected NONE for invisible window, got %+v", r)
	}
	if r := ev.evalRules(handle.FromUintptr(2)); r != none {
		t.Fatalf("expected NONE for cloaked window, got %+v", r)
	}
}
