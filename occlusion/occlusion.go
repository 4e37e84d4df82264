// Package occlusion computes, for a set of target windows, the bounding
// rectangle of the pixels that remain visible after subtracting every
// window drawn in front of them in current z-order.
package occlusion

import "github.com/yakrider/WinDusky/handle"

// Rect is an axis-aligned rectangle in screen coordinates, left/top
// inclusive and right/bottom exclusive (matching Win32 RECT semantics).
type Rect struct {
	Left, Top, Right, Bottom int32
}

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.Right <= r.Left || r.Bottom <= r.Top }

// Intersect returns the overlapping rectangle of r and o, or (Rect{}, false)
// if they don't overlap.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	out := Rect{
		Left:   max32(r.Left, o.Left),
		Top:    max32(r.Top, o.Top),
		Right:  min32(r.Right, o.Right),
		Bottom: min32(r.Bottom, o.Bottom),
	}
	if out.IsEmpty() {
		return Rect{}, false
	}
	return out, true
}

// Bounding returns the smallest rect containing every rect in rs, or
// (Rect{}, false) if rs is empty.
func Bounding(rs []Rect) (Rect, bool) {
	if len(rs) == 0 {
		return Rect{}, false
	}
	out := rs[0]
	for _, r := range rs[1:] {
		if r.Left < out.Left {
			out.Left = r.Left
		}
		if r.Top < out.Top {
			out.Top = r.Top
		}
		if r.Right > out.Right {
			out.Right = r.Right
		}
		if r.Bottom > out.Bottom {
			out.Bottom = r.Bottom
		}
	}
	return out, true
}

// SubtractInto subtracts occluder from r, appending up to four axis-aligned
// residual rectangles (top strip, bottom strip, left slice, right slice) to
// dst and returning the extended slice. If r and occluder don't overlap, r
// itself is appended unchanged. The four residuals, together with
// r.Intersect(occluder), exactly tile r with no overlap between pieces.
func SubtractInto(dst []Rect, r, occluder Rect) []Rect {
	isect, ok := r.Intersect(occluder)
	if !ok {
		return append(dst, r)
	}

	// top strip: full width, above the intersection
	if isect.Top > r.Top {
		dst = append(dst, Rect{Left: r.Left, Top: r.Top, Right: r.Right, Bottom: isect.Top})
	}
	// bottom strip: full width, below the intersection
	if isect.Bottom < r.Bottom {
		dst = append(dst, Rect{Left: r.Left, Top: isect.Bottom, Right: r.Right, Bottom: r.Bottom})
	}
	// left slice: limited to the intersection's vertical band
	if isect.Left > r.Left {
		dst = append(dst, Rect{Left: r.Left, Top: isect.Top, Right: isect.Left, Bottom: isect.Bottom})
	}
	// right slice: limited to the intersection's vertical band
	if isect.Right < r.Right {
		dst = append(dst, Rect{Left: isect.Right, Top: isect.Top, Right: r.Right, Bottom: isect.Bottom})
	}
	return dst
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// WindowSource is the minimal view of the OS window stack the engine needs;
// production code backs this with live EnumWindows calls, tests back it
// with a fixed slice.
type WindowSource interface {
	// EnumerateTopDown invokes fn once per top-level window from frontmost
	// to backmost, stopping early if fn returns false.
	EnumerateTopDown(fn func(h handle.Handle, rect Rect, visible, cloaked bool) (keepGoing bool))
}

// StaticWindows is a WindowSource backed by a fixed, already z-ordered
// (front to back) slice -- used by tests and by any caller that already
// has a snapshot of the window stack.
type StaticWindows struct {
	Windows []struct {
		Handle  handle.Handle
		Rect    Rect
		Visible bool
		Cloaked bool
	}
}

// EnumerateTopDown implements WindowSource.
func (s StaticWindows) EnumerateTopDown(fn func(handle.Handle, Rect, bool, bool) bool) {
	for _, w := range s.Windows {
		if !fn(w.Handle, w.Rect, w.Visible, w.Cloaked) {
			return
		}
	}
}

// target tracks the subtraction state of a single window as the enumeration
// proceeds. A target is "done" once it has either been seen in the
// enumeration (nothing z-below can occlude it further) or its visible
// region has been subtracted down to nothing.
type target struct {
	visible []Rect
	seen    bool
}

func (t *target) done() bool { return t.seen || len(t.visible) == 0 }

// VisibleBounds computes, for each handle in targets (with its full rect
// given by the map value), the bounding box of the portion that remains
// visible after every window ahead of it in z-order (as enumerated by src)
// is subtracted out. hosts identifies WinDusky's own overlay windows, which
// are skipped entirely (they never occlude anything and never complete a
// target's "seen" state). The result map always has one entry per requested
// target; a nil Rect pointer means fully occluded or otherwise unknown.
func VisibleBounds(src WindowSource, hosts map[handle.Handle]struct{}, targets map[handle.Handle]Rect) map[handle.Handle]*Rect {
	state := make(map[handle.Handle]*target, len(targets))
	for h, r := range targets {
		state[h] = &target{visible: []Rect{r}}
	}

	doneCount := 0
	total := len(state)

	src.EnumerateTopDown(func(h handle.Handle, rect Rect, visible, cloaked bool) bool {
		if doneCount >= total {
			return false
		}
		if _, isHost := hosts[h]; isHost {
			return true
		}
		if t, ok := state[h]; ok && !t.done() {
			t.seen = true
			doneCount++
			return doneCount < total
		}
		if !visible || cloaked {
			return true
		}
		for _, t := range state {
			if t.done() {
				continue
			}
			next := t.visible[:0:0]
			for _, sub := range t.visible {
				next = SubtractInto(next, sub, rect)
			}
			t.visible = next
			if t.done() {
				doneCount++
			}
		}
		return doneCount < total
	})

	out := make(map[handle.Handle]*Rect, len(targets))
	for h, t := range state {
		if len(t.visible) == 0 {
			out[h] = nil
			continue
		}
		b, _ := Bounding(t.visible)
		out[h] = &b
	}
	return out
}
