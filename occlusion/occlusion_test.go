package occlusion

import (
	"sort"
	"testing"

	"github.com/yakrider/WinDusky/handle"
)

func TestSubtractIntoNoOverlap(t *testing.T) {
	r := Rect{0, 0, 10, 10}
	other := Rect{20, 20, 30, 30}
	got := SubtractInto(nil, r, other)
	if len(got) != 1 || got[0] != r {
		t.Fatalf("expected rect unchanged when disjoint, got %v", got)
	}
}

func TestSubtractIntoFullyCovers(t *testing.T) {
	r := Rect{0, 0, 10, 10}
	got := SubtractInto(nil, r, r)
	if len(got) != 0 {
		t.Fatalf("expected no residual when fully covered, got %v", got)
	}
}

// TestSubtractIntoTilesOriginal verifies the splitting law: the union of the
// residual rects plus the intersection exactly tiles the original rect, and
// the pieces are pairwise disjoint.
func TestSubtractIntoTilesOriginal(t *testing.T) {
	r := Rect{0, 0, 100, 100}
	occluder := Rect{25, 25, 75, 125}
	residuals := SubtractInto(nil, r, occluder)

	want := []Rect{
		{0, 0, 100, 25},
		{0, 25, 25, 100},
		{75, 25, 100, 100},
	}
	if len(residuals) != len(want) {
		t.Fatalf("expected %d residuals, got %d: %v", len(want), len(residuals), residuals)
	}
	for i, w := range want {
		if residuals[i] != w {
			t.Fatalf("residual %d: expected %v, got %v", i, w, residuals[i])
		}
	}

	isect, _ := r.Intersect(occluder)
	all := append(append([]Rect{}, residuals...), isect)
	area := func(rs []Rect) int64 {
		var a int64
		for _, x := range rs {
			a += int64(x.Right-x.Left) * int64(x.Bottom-x.Top)
		}
		return a
	}
	rArea := int64(r.Right-r.Left) * int64(r.Bottom-r.Top)
	if area(all) != rArea {
		t.Fatalf("residual+intersection area %d does not equal original area %d", area(all), rArea)
	}
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if _, overlap := all[i].Intersect(all[j]); overlap {
				t.Fatalf("pieces %d and %d overlap: %v, %v", i, j, all[i], all[j])
			}
		}
	}
}

func TestVisibleBoundsScenario(t *testing.T) {
	target := handle.FromUintptr(1)
	front := handle.FromUintptr(2)

	src := StaticWindows{}
	src.Windows = append(src.Windows, struct {
		Handle  handle.Handle
		Rect    Rect
		Visible bool
		Cloaked bool
	}{front, Rect{25, 25, 75, 125}, true, false})
	src.Windows = append(src.Windows, struct {
		Handle  handle.Handle
		Rect    Rect
		Visible bool
		Cloaked bool
	}{target, Rect{0, 0, 100, 100}, true, false})

	out := VisibleBounds(src, nil, map[handle.Handle]Rect{target: {0, 0, 100, 100}})
	got := out[target]
	if got == nil {
		t.Fatal("expected a non-nil visible bound")
	}
	want := Rect{0, 0, 100, 100}
	if *got != want {
		t.Fatalf("expected bounding box %v, got %v", want, *got)
	}
}

func TestVisibleBoundsHostsNeverOcclude(t *testing.T) {
	target := handle.FromUintptr(1)
	host := handle.FromUintptr(2)

	src := StaticWindows{}
	src.Windows = append(src.Windows, struct {
		Handle  handle.Handle
		Rect    Rect
		Visible bool
		Cloaked bool
	}{host, Rect{0, 0, 100, 100}, true, false})
	src.Windows = append(src.Windows, struct {
		Handle  handle.Handle
		Rect    Rect
		Visible bool
		Cloaked bool
	}{target, Rect{0, 0, 100, 100}, true, false})

	hosts := map[handle.Handle]struct{}{host: {}}
	out := VisibleBounds(src, hosts, map[handle.Handle]Rect{target: {0, 0, 100, 100}})
	if out[target] == nil || *out[target] != (Rect{0, 0, 100, 100}) {
		t.Fatalf("expected target fully visible despite host window in front, got %v", out[target])
	}
}

func TestVisibleBoundsFullyOccluded(t *testing.T) {
	target := handle.FromUintptr(1)
	front := handle.FromUintptr(2)

	src := StaticWindows{}
	src.Windows = append(src.Windows, struct {
		Handle  handle.Handle
		Rect    Rect
		Visible bool
		Cloaked bool
	}{front, Rect{0, 0, 100, 100}, true, false})
	src.Windows = append(src.Windows, struct {
		Handle  handle.Handle
		Rect    Rect
		Visible bool
		Cloaked bool
	}{target, Rect{0, 0, 100, 100}, true, false})

	out := VisibleBounds(src, nil, map[handle.Handle]Rect{target: {0, 0, 100, 100}})
	if out[target] != nil {
		t.Fatalf("expected fully occluded target to resolve to nil, got %v", out[target])
	}
}

func sortedRects(rs []Rect) []Rect {
	out := append([]Rect{}, rs...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Left != out[j].Left {
			return out[i].Left < out[j].Left
		}
		return out[i].Top < out[j].Top
	})
	return out
}
