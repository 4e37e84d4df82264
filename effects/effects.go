// Package effects holds the ordered table of 5x5 color-transform matrices
// WinDusky installs on a magnifier control, plus the index-based cycle
// used by hotkeys and config to name and step through them.
package effects

import (
	"fmt"
	"sync/atomic"
)

// Matrix is a row-major 5x5 affine transform in RGBA + homogeneous-translation
// form, matching the OS magnifier API's color-effect layout exactly.
type Matrix [25]float32

// Identity leaves pixels unchanged.
var Identity = Matrix{
	1, 0, 0, 0, 0,
	0, 1, 0, 0, 0,
	0, 0, 1, 0, 0,
	0, 0, 0, 1, 0,
	0, 0, 0, 0, 1,
}

var simpleInversion = Matrix{
	-1, 0, 0, 0, 0,
	0, -1, 0, 0, 0,
	0, 0, -1, 0, 0,
	0, 0, 0, 1, 0,
	1, 1, 1, 0, 1,
}

var smartInversionV1 = Matrix{
	0.33, -0.66, -0.66, 0, 0,
	-0.66, 0.33, -0.66, 0, 0,
	-0.66, -0.66, 0.33, 0, 0,
	0, 0, 0, 1, 0,
	1, 1, 1, 0, 1,
}

var smartInversionV2 = Matrix{
	1, -1, -1, 0, 0,
	-1, 1, -1, 0, 0,
	-1, -1, 1, 0, 0,
	0, 0, 0, 1, 0,
	1, 1, 1, 0, 1,
}

var smartInversionV3 = Matrix{
	0.39, -0.62, -0.62, 0, 0,
	-1.21, -0.22, -1.22, 0, 0,
	-0.16, -0.16, 0.84, 0, 0,
	0, 0, 0, 1, 0,
	1, 1, 1, 0, 1,
}

var smartInversionV4 = Matrix{
	1.089, -0.932, -0.932, 0, 0,
	-1.817, 0.168, -1.841, 0, 0,
	-0.244, -0.247, 1.762, 0, 0,
	0, 0, 0, 1, 0,
	1, 1, 1, 0, 1,
}

var smartInversionV5 = Matrix{
	0.50, -0.78, -0.78, 0, 0,
	-0.56, 0.72, -0.56, 0, 0,
	-0.94, -0.94, 0.34, 0, 0,
	0, 0, 0, 1, 0,
	1, 1, 1, 0, 1,
}

var negativeSepia = Matrix{
	-0.393, -0.349, -0.272, 0, 0,
	-0.769, -0.686, -0.534, 0, 0,
	-0.189, -0.168, -0.131, 0, 0,
	0, 0, 0, 1, 0,
	1.351, 1.203, 0.937, 0, 1,
}

var cyan = Matrix{
	0, 0.3, 0.3, 0, 0,
	0, 0.6, 0.6, 0, 0,
	0, 0.1, 0.1, 0, 0,
	0, 0, 0, 1, 0,
	0, 0, 0, 0, 1,
}

var negativeCyan = Matrix{
	0, -0.3, -0.3, 0, 0,
	0, -0.6, -0.6, 0, 0,
	0, -0.1, -0.1, 0, 0,
	0, 0, 0, 1, 0,
	0, 1, 1, 0, 1,
}

var yellow = Matrix{
	0.3, 0.3, 0, 0, 0,
	0.6, 0.6, 0, 0, 0,
	0.1, 0.1, 0, 0, 0,
	0, 0, 0, 1, 0,
	0, 0, 0, 0, 1,
}

var negativeYellow = Matrix{
	-0.3, -0.3, 0, 0, 0,
	-0.6, -0.6, 0, 0, 0,
	-0.1, -0.1, 0, 0, 0,
	0, 0, 0, 1, 0,
	1, 1, 0, 0, 1,
}

var gold = Matrix{
	0.40, 0.30, 0.10, 0, 0,
	0.40, 0.30, 0.10, 0, 0,
	0.20, 0.15, 0.05, 0, 0,
	0, 0, 0, 1, 0,
	0, 0, 0, 0, 1,
}

var negativeGold = Matrix{
	-0.40, -0.30, -0.10, 0, 0,
	-0.40, -0.30, -0.10, 0, 0,
	-0.20, -0.15, -0.05, 0, 0,
	0, 0, 0, 1, 0,
	1.00, 0.85, 0.20, 0, 1,
}

var green = Matrix{
	0, 0.3, 0, 0, 0,
	0, 0.6, 0, 0, 0,
	0, 0.1, 0, 0, 0,
	0, 0, 0, 1, 0,
	0, 0, 0, 0, 1,
}

var negativeGreen = Matrix{
	0, -0.3, 0, 0, 0,
	0, -0.6, 0, 0, 0,
	0, -0.1, 0, 0, 0,
	0, 0, 0, 1, 0,
	0, 1, 0, 0, 1,
}

var red = Matrix{
	0.3, 0, 0, 0, 0,
	0.6, 0, 0, 0, 0,
	0.1, 0, 0, 0, 0,
	0, 0, 0, 1, 0,
	0, 0, 0, 0, 1,
}

var negativeRed = Matrix{
	-0.3, 0, 0, 0, 0,
	-0.6, 0, 0, 0, 0,
	-0.1, 0, 0, 0, 0,
	0, 0, 0, 1, 0,
	1, 0, 0, 0, 1,
}

var grayscale = Matrix{
	0.3, 0.3, 0.3, 0, 0,
	0.6, 0.6, 0.6, 0, 0,
	0.1, 0.1, 0.1, 0, 0,
	0, 0, 0, 1, 0,
	0, 0, 0, 0, 1,
}

var negativeGrayscale = Matrix{
	-0.3, -0.3, -0.3, 0, 0,
	-0.6, -0.6, -0.6, 0, 0,
	-0.1, -0.1, -0.1, 0, 0,
	0, 0, 0, 1, 0,
	1, 1, 1, 0, 1,
}

var blackAndWhite = Matrix{
	127, 127, 127, 0, 0,
	127, 127, 127, 0, 0,
	127, 127, 127, 0, 0,
	0, 0, 0, 1, 0,
	-180, -180, -180, 0, 1,
}

var negativeBlackAndWhite = Matrix{
	-127, -127, -127, 0, 0,
	-127, -127, -127, 0, 0,
	-127, -127, -127, 0, 0,
	0, 0, 0, 1, 0,
	180, 180, 180, 0, 1,
}

// Named is one entry of the built-in table: a stable lookup name plus its
// matrix. Order here is the default load order; config's effects_cycle_order
// can re-sequence the cycle a running instance walks.
type Named struct {
	Name   string
	Matrix Matrix
}

// Builtins is the full built-in effect table, in the order the original
// implementation enumerates them.
var Builtins = []Named{
	{"identity", Identity},

	{"simple_inversion", simpleInversion},
	{"smart_inversion_v1", smartInversionV1},
	{"smart_inversion_v2", smartInversionV2},
	{"smart_inversion_v3", smartInversionV3},
	{"smart_inversion_v4", smartInversionV4},
	{"smart_inversion_v5", smartInversionV5},
	{"negative_sepia", negativeSepia},

	{"negative_cyan", negativeCyan},
	{"negative_green", negativeGreen},
	{"negative_red", negativeRed},
	{"negative_yellow", negativeYellow},
	{"negative_gold", negativeGold},
	{"negative_grayscale", negativeGrayscale},
	{"negative_black_and_white", negativeBlackAndWhite},

	{"cyan", cyan},
	{"green", green},
	{"red", red},
	{"yellow", yellow},
	{"gold", gold},
	{"grayscale", grayscale},
	{"black_and_white", blackAndWhite},
}

// defaultIndex mirrors the original implementation's default cycle position
// (smart_inversion_v2), used whenever config does not override it.
const defaultIndex = 3

// Effect is an index into an ordered cycle of matrices. The zero value is
// not meaningful on its own; use a Table's DefaultEffect.
type Effect int

// Table is a resolved, ordered cycle of effects together with a name index,
// as loaded from config (or Builtins when config doesn't override it).
type Table struct {
	cycle   []Named
	byName  map[string]int
	defIdx  Effect
}

// NewTable builds a Table from an ordered slice of named effects and a
// default effect name (looked up in the table; falls back to index 0 if the
// name is absent or empty).
func NewTable(cycle []Named, defaultName string) *Table {
	t := &Table{cycle: cycle, byName: make(map[string]int, len(cycle))}
	for i, n := range cycle {
		t.byName[n.Name] = i
	}
	if idx, ok := t.byName[defaultName]; ok {
		t.defIdx = Effect(idx)
	}
	return t
}

// DefaultTable returns a Table built from the built-in effects using the
// built-in default index.
func DefaultTable() *Table {
	t := NewTable(Builtins, "")
	t.defIdx = defaultIndex
	return t
}

// Len returns the number of effects in the cycle.
func (t *Table) Len() int { return len(t.cycle) }

// DefaultEffect returns the table's configured default cycle position.
func (t *Table) DefaultEffect() Effect { return t.defIdx }

// Matrix resolves an Effect to its color matrix. Out-of-range indices clamp
// to identity-safe zero; callers should only ever pass values produced by
// this table.
func (t *Table) Matrix(e Effect) Matrix {
	if int(e) < 0 || int(e) >= len(t.cycle) {
		return Identity
	}
	return t.cycle[e].Matrix
}

// Name resolves an Effect to its lookup name.
func (t *Table) Name(e Effect) string {
	if int(e) < 0 || int(e) >= len(t.cycle) {
		return ""
	}
	return t.cycle[e].Name
}

// FindByName resolves a name to an Effect. The special name "default" (or
// empty string) resolves to the table's own default. Returns an error if
// the name isn't present.
func (t *Table) FindByName(name string) (Effect, error) {
	if name == "" || name == "default" {
		return t.defIdx, nil
	}
	if idx, ok := t.byName[name]; ok {
		return Effect(idx), nil
	}
	return 0, fmt.Errorf("effects: unknown effect name %q", name)
}

// Atomic is a lock-free cursor into a Table's cycle, used by overlays and
// the full-screen/magnifier singletons so effect cycling never needs a
// mutex.
type Atomic struct {
	table *Table
	idx   atomic.Int64
}

// NewAtomic creates a cursor starting at the given effect.
func NewAtomic(table *Table, start Effect) *Atomic {
	a := &Atomic{table: table}
	a.idx.Store(int64(start))
	return a
}

// Get returns the currently-selected matrix.
func (a *Atomic) Get() Matrix { return a.table.Matrix(Effect(a.idx.Load())) }

// Current returns the currently-selected effect index.
func (a *Atomic) Current() Effect { return Effect(a.idx.Load()) }

// CycleNext advances the cursor one step forward (wrapping) and returns the
// newly-selected matrix.
func (a *Atomic) CycleNext() Matrix { return a.cycle(1) }

// CyclePrev steps the cursor one position back (wrapping) and returns the
// newly-selected matrix.
func (a *Atomic) CyclePrev() Matrix { return a.cycle(-1) }

func (a *Atomic) cycle(delta int64) Matrix {
	n := int64(a.table.Len())
	if n == 0 {
		return Identity
	}
	for {
		cur := a.idx.Load()
		next := ((cur+delta)%n + n) % n
		if a.idx.CompareAndSwap(cur, next) {
			return a.table.Matrix(Effect(next))
		}
	}
}

// Set pins the cursor to a specific effect.
func (a *Atomic) Set(e Effect) { a.idx.Store(int64(e)) }
