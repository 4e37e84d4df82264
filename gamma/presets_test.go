//go:build windows

package gamma

import "testing"

func TestNewPresetTableSynthesizesNormalWhenEmpty(t *testing.T) {
	table := NewPresetTable(nil, nil, "")
	if table.Len() != 1 {
		t.Fatalf("expected a single synthesized preset, got %d", table.Len())
	}
	if table.At(0).Name != Normal.Name {
		t.Fatalf("expected the synthesized preset to be Normal, got %q", table.At(0).Name)
	}
}

func TestNewPresetTableHonorsCycleOrderSubset(t *testing.T) {
	presets := []Preset{
		{Name: "Warm", ColorTempK: 4000},
		{Name: "Cool", ColorTempK: 9000},
		{Name: "Night", ColorTempK: 2000},
	}
	table := NewPresetTable(presets, []string{"Cool", "Night", "not_a_real_preset"}, "Night")

	if table.Len() != 2 {
		t.Fatalf("expected cycle order to restrict to 2 known presets, got %d", table.Len())
	}
	if table.At(0).Name != "Cool" || table.At(1).Name != "Night" {
		t.Fatalf("expected cycle order [Cool, Night], got [%s, %s]", table.At(0).Name, table.At(1).Name)
	}
	if table.DefaultIndex() != 1 {
		t.Fatalf("expected default to resolve to Night's cycle position 1, got %d", table.DefaultIndex())
	}
}

func TestNewPresetTableFallsBackToAlphabeticalOrder(t *testing.T) {
	presets := []Preset{
		{Name: "Zebra", ColorTempK: 5000},
		{Name: "Alpha", ColorTempK: 5000},
	}
	table := NewPresetTable(presets, nil, "")
	if table.At(0).Name != "Alpha" || table.At(1).Name != "Zebra" {
		t.Fatalf("expected alphabetical fallback order, got [%s, %s]", table.At(0).Name, table.At(1).Name)
	}
}

func TestPresetTableAtWrapsBothDirections(t *testing.T) {
	table := NewPresetTable([]Preset{{Name: "A"}, {Name: "B"}, {Name: "C"}}, []string{"A", "B", "C"}, "A")
	if table.At(-1).Name != "C" {
		t.Fatalf("expected At(-1) to wrap to the last preset, got %q", table.At(-1).Name)
	}
	if table.At(3).Name != "A" {
		t.Fatalf("expected At(3) to wrap to the first preset, got %q", table.At(3).Name)
	}
}

func TestControllerTogglesAndCyclesCursor(t *testing.T) {
	table := NewPresetTable([]Preset{{Name: "A"}, {Name: "B"}}, []string{"A", "B"}, "A")
	c := NewController(table, nil)

	if c.Enabled() {
		t.Fatal("expected a fresh controller to start disabled")
	}
	if !c.Toggle() {
		t.Fatal("expected Toggle to engage the controller")
	}
	if !c.Enabled() {
		t.Fatal("expected Enabled to report true once toggled on")
	}

	next := c.CycleNext()
	if next.Name != "B" {
		t.Fatalf("expected cycling forward from A to reach B, got %q", next.Name)
	}
	if !c.Enabled() {
		t.Fatal("expected cycling to leave the controller enabled")
	}

	prev := c.CyclePrev()
	if prev.Name != "A" {
		t.Fatalf("expected cycling back from B to reach A, got %q", prev.Name)
	}

	if c.Toggle() {
		t.Fatal("expected a second Toggle to disengage the controller")
	}
	if c.Enabled() {
		t.Fatal("expected Enabled to report false after toggling off")
	}
}
