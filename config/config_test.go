package config

import (
	"testing"

	"github.com/yakrider/WinDusky/rules"
)

func TestValidateAcceptsEmbeddedDefault(t *testing.T) {
	m := &Manager{}
	if err := m.Load(""); err != nil {
		t.Fatal(err)
	}
	if errs := m.Get().Validate(); len(errs) != 0 {
		t.Fatalf("embedded default config should validate cleanly, got %v", errs)
	}
}

func TestValidateRejectsBadLoggingLevel(t *testing.T) {
	c := &Config{LoggingLevel: "VERY_LOUD", EffectsDefault: "identity"}
	found := false
	for _, err := range c.Validate() {
		if err != nil {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an error for an invalid logging_level")
	}
}

func TestValidateRejectsUnknownEffectsDefault(t *testing.T) {
	c := &Config{LoggingLevel: "INFO", EffectsDefault: "not_a_real_effect"}
	if len(c.Validate()) == 0 {
		t.Fatal("expected an error for an unknown effects_default")
	}
}

func TestBuildEffectsTableHonorsCycleOrderAndDefault(t *testing.T) {
	c := &Config{
		EffectsCycleOrder: []string{"grayscale", "identity", "sepia_not_real"},
		EffectsDefault:    "grayscale",
	}
	table := c.BuildEffectsTable()
	if table.Len() != 2 {
		t.Fatalf("expected cycle reordering to drop unknown names, got %d entries", table.Len())
	}
	if table.Name(table.DefaultEffect()) != "grayscale" {
		t.Fatalf("expected default effect grayscale, got %s", table.Name(table.DefaultEffect()))
	}
}

func TestResolveHotkeysSkipsUnboundEntries(t *testing.T) {
	c := &Config{
		HotkeyFullscreenToggle: HotkeyBinding{Key: "F", Modifiers: []string{"Ctrl", "Alt"}},
	}
	bindings := c.ResolveHotkeys()
	if len(bindings) != 1 {
		t.Fatalf("expected exactly one resolved binding, got %d", len(bindings))
	}
	if bindings[0].VK != vkCodes["F"] {
		t.Fatalf("unexpected VK code for F: %#x", bindings[0].VK)
	}
}

func TestBuildRulesConfigResolvesEffectsAndExclusions(t *testing.T) {
	c := &Config{
		AutoOverlayLuminanceThreshold: 0.5,
		AutoOverlayLuminanceDelayMs:   300,
		AutoOverlayExes: []AutoOverlayExe{
			{Exe: "notepad.exe", Effect: "grayscale"},
		},
		AutoOverlayWindowClasses: []AutoOverlayClass{
			{ClassName: "Notepad", Effect: "sepia_not_real", ExclusionExes: []string{"excluded.exe"}},
		},
	}
	table := c.BuildEffectsTable()
	rulesCfg := c.BuildRulesConfig(table, false)

	if rulesCfg.LumThreshold == 0 {
		t.Fatal("expected a non-zero luminance threshold")
	}
	exeValue, ok := rulesCfg.Rules[rules.ExeKey("notepad.exe")]
	if !ok || exeValue.Effect == nil {
		t.Fatal("expected notepad.exe to resolve to a concrete effect")
	}
	classValue, ok := rulesCfg.Rules[rules.ClassKey("Notepad")]
	if !ok {
		t.Fatal("expected a rule for the Notepad window class")
	}
	if classValue.Effect != nil {
		t.Fatal("expected an unknown effect name to fall back to nil (table default)")
	}
	if _, excluded := classValue.ExclExes["excluded.exe"]; !excluded {
		t.Fatal("expected excluded.exe to be in the class rule's exclusion set")
	}
}
