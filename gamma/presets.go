//go:build windows

package gamma

import (
	"sort"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/yakrider/WinDusky/handle"
)

// Preset names a (GBC, color-temperature) combination navigable by the
// gamma cycle hotkeys.
type Preset struct {
	Name       string
	GBC        GBC
	ColorTempK uint32
}

// Normal is the identity preset synthesized whenever config supplies none.
var Normal = Preset{Name: "Normal", GBC: DefaultGBC(), ColorTempK: 6500}

// PresetTable is an ordered, named cycle of presets plus a default cycle
// position, as loaded from config (or a single synthesized Normal preset
// when config supplies none).
type PresetTable struct {
	cycle  []Preset
	defIdx int
}

// NewPresetTable builds a cycle from presets, restricted to cycleOrder's
// names when that names a non-empty subset of presets, falling back to
// every preset sorted alphabetically by name otherwise. defaultName
// resolves to a cycle position, falling back to index 0 if absent.
func NewPresetTable(presets []Preset, cycleOrder []string, defaultName string) *PresetTable {
	byName := make(map[string]Preset, len(presets))
	for _, p := range presets {
		byName[p.Name] = p
	}
	if len(byName) == 0 {
		byName[Normal.Name] = Normal
	}

	cycle := make([]Preset, 0, len(cycleOrder))
	for _, name := range cycleOrder {
		if p, ok := byName[name]; ok {
			cycle = append(cycle, p)
		}
	}
	if len(cycle) == 0 {
		names := make([]string, 0, len(byName))
		for name := range byName {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cycle = append(cycle, byName[name])
		}
	}

	t := &PresetTable{cycle: cycle}
	for i, p := range cycle {
		if p.Name == defaultName {
			t.defIdx = i
			break
		}
	}
	return t
}

// Len returns the number of presets in the cycle.
func (t *PresetTable) Len() int { return len(t.cycle) }

// At resolves a cycle index, wrapping modulo the cycle length. Falls back
// to Normal if the cycle is somehow empty.
func (t *PresetTable) At(idx int) Preset {
	n := len(t.cycle)
	if n == 0 {
		return Normal
	}
	return t.cycle[((idx%n)+n)%n]
}

// DefaultIndex returns the table's configured default cycle position.
func (t *PresetTable) DefaultIndex() int { return t.defIdx }

// Controller owns the whole-screen device gamma ramp: an enabled flag plus
// an atomic cursor into a PresetTable. Distinct from the overlay package's
// color-matrix effect cursors; installs its ramp through SetScreenRamp
// instead of the magnifier color-effect API.
type Controller struct {
	enabled *handle.Flag
	idx     atomic.Int64
	table   *PresetTable
	log     *logrus.Entry
}

// NewController builds a gamma controller starting disabled, with its
// cursor at table's configured default.
func NewController(table *PresetTable, log *logrus.Entry) *Controller {
	c := &Controller{enabled: handle.NewFlag(false), table: table, log: log}
	c.idx.Store(int64(table.DefaultIndex()))
	return c
}

// Enabled reports whether a non-Normal ramp is currently installed.
func (c *Controller) Enabled() bool { return c.enabled.IsSet() }

// Current returns the preset the cursor is currently on.
func (c *Controller) Current() Preset { return c.table.At(int(c.idx.Load())) }

// Toggle flips enabled and returns the new state: turning on installs the
// cursor's current preset; turning off restores Normal (identity gamma,
// 6500K) rather than whatever ramp the OS had before WinDusky started.
func (c *Controller) Toggle() bool {
	enabled := !c.enabled.Toggle()
	if c.log != nil {
		c.log.Infof("gamma controller: %v", enabled)
	}
	if enabled {
		c.apply(c.Current())
	} else {
		c.apply(Normal)
	}
	return enabled
}

// CycleNext advances the preset cursor one step forward (wrapping),
// enables the controller, and installs the new preset.
func (c *Controller) CycleNext() Preset { return c.cycle(1) }

// CyclePrev steps the preset cursor one position back (wrapping), enables
// the controller, and installs the new preset.
func (c *Controller) CyclePrev() Preset { return c.cycle(-1) }

func (c *Controller) cycle(delta int64) Preset {
	n := int64(c.table.Len())
	if n == 0 {
		n = 1
	}
	for {
		cur := c.idx.Load()
		next := ((cur+delta)%n + n) % n
		if c.idx.CompareAndSwap(cur, next) {
			p := c.table.At(int(next))
			c.enabled.Set()
			if c.log != nil {
				c.log.Infof("gamma preset: %s", p.Name)
			}
			c.apply(p)
			return p
		}
	}
}

func (c *Controller) apply(p Preset) {
	ramp := CalcRamp(p.GBC, p.ColorTempK)
	if !SetScreenRamp(&ramp) && c.log != nil {
		c.log.Warn("SetDeviceGammaRamp failed")
	}
}
