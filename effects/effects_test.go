package effects

import "testing"

func TestDefaultTableIndexing(t *testing.T) {
	table := DefaultTable()
	if table.Len() != len(Builtins) {
		t.Fatalf("expected %d effects, got %d", len(Builtins), table.Len())
	}
	if table.Matrix(table.DefaultEffect()) != smartInversionV2 {
		t.Fatalf("expected default effect to be smart_inversion_v2")
	}
}

func TestFindByNameDefault(t *testing.T) {
	table := DefaultTable()
	e, err := table.FindByName("default")
	if err != nil {
		t.Fatal(err)
	}
	if e != table.DefaultEffect() {
		t.Fatal("\"default\" should resolve to the table default")
	}
	if _, err := table.FindByName("not_a_real_effect"); err == nil {
		t.Fatal("expected error for unknown effect name")
	}
	e, err = table.FindByName("grayscale")
	if err != nil {
		t.Fatal(err)
	}
	if table.Matrix(e) != grayscale {
		t.Fatal("grayscale lookup did not resolve to the grayscale matrix")
	}
}

func TestCycleIsPureRotation(t *testing.T) {
	table := DefaultTable()
	for start := 0; start < table.Len(); start++ {
		a := NewAtomic(table, Effect(start))
		before := a.Current()
		a.CycleNext()
		a.CyclePrev()
		if a.Current() != before {
			t.Fatalf("cycle_next then cycle_prev from %d did not return to start, got %d", before, a.Current())
		}
	}
}

func TestCycleWrapsBothDirections(t *testing.T) {
	table := DefaultTable()
	a := NewAtomic(table, Effect(table.Len()-1))
	a.CycleNext()
	if a.Current() != 0 {
		t.Fatalf("expected wraparound to 0, got %d", a.Current())
	}
	a.CyclePrev()
	if a.Current() != Effect(table.Len()-1) {
		t.Fatalf("expected wraparound to last index, got %d", a.Current())
	}
}
