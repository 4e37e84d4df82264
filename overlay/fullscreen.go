//go:build windows

package overlay

import (
	"github.com/sirupsen/logrus"

	"github.com/yakrider/WinDusky/effects"
	"github.com/yakrider/WinDusky/handle"
	"github.com/yakrider/WinDusky/winapi"
)

// FullScreenOverlay applies a color effect to the entire desktop via
// MagSetFullscreenColorEffect rather than a per-window host. Exactly one
// instance exists per process; all methods must run on the thread that
// called winapi.MagInitialize.
type FullScreenOverlay struct {
	enabled *handle.Flag
	active  *handle.Flag
	effect  *effects.Atomic
	table   *effects.Table
	log     *logrus.Entry
}

// NewFullScreenOverlay builds a full-screen overlay cursor over table,
// starting at its default effect.
func NewFullScreenOverlay(table *effects.Table, log *logrus.Entry) *FullScreenOverlay {
	return &FullScreenOverlay{
		enabled: handle.NewFlag(false),
		active:  handle.NewFlag(false),
		effect:  effects.NewAtomic(table, table.DefaultEffect()),
		table:   table,
		log:     log,
	}
}

// Enabled reports whether full-screen mode is on.
func (f *FullScreenOverlay) Enabled() bool { return f.enabled.IsSet() }

// Toggle flips full-screen mode on/off and returns the new state. Turning
// on activates the current (or default) effect; turning off clears it back
// to identity.
func (f *FullScreenOverlay) Toggle() bool {
	enabled := !f.enabled.Toggle()
	f.active.Store(enabled)
	if f.log != nil {
		f.log.Infof("full-screen overlay mode: %v", enabled)
	}
	if enabled {
		f.activateEffect()
	} else {
		f.applyColorEffect(effects.Identity)
	}
	return enabled
}

// SetEnabled forces full-screen mode to a specific state, only acting (and
// logging) on an actual transition.
func (f *FullScreenOverlay) SetEnabled(enabled bool) {
	prior := f.enabled.Swap(enabled)
	f.active.Store(enabled)
	if prior == enabled {
		return
	}
	if f.log != nil {
		f.log.Infof("full-screen overlay mode: %v", enabled)
	}
	if enabled {
		f.activateEffect()
	} else {
		f.applyColorEffect(effects.Identity)
	}
}

// ToggleEffect toggles the applied effect without touching the enabled
// state: unapplying returns to identity if already active, or applies the
// cycle's current/default effect if not. ok is false when the effect was
// unapplied rather than applied.
func (f *FullScreenOverlay) ToggleEffect() (m effects.Matrix, ok bool) {
	if f.active.IsSet() {
		f.UnapplyEffect()
		return effects.Matrix{}, false
	}
	return f.activateEffect(), true
}

// activateEffect promotes an identity cursor to the table default (first
// activation after a full clear), then re-applies whatever is current.
func (f *FullScreenOverlay) activateEffect() effects.Matrix {
	if f.effect.Current() == 0 {
		f.effect.Set(f.table.DefaultEffect())
	}
	return f.ApplyEffectCycled(nil)
}

// UnapplyEffect clears the applied color effect but leaves enabled mode on.
func (f *FullScreenOverlay) UnapplyEffect() effects.Effect {
	prior := f.effect.Current()
	if f.log != nil {
		f.log.Info("clearing full-screen overlay color effect (mode remains active)")
	}
	f.active.Clear()
	f.applyColorEffect(effects.Identity)
	return prior
}

// ApplyEffectCycled advances (dir=true), retreats (dir=false), or (dir=nil)
// re-applies the current effect, logging and installing it.
func (f *FullScreenOverlay) ApplyEffectCycled(dir *bool) effects.Matrix {
	var m effects.Matrix
	switch {
	case dir == nil:
		m = f.effect.Get()
	case *dir:
		m = f.effect.CycleNext()
	default:
		m = f.effect.CyclePrev()
	}
	if f.log != nil {
		f.log.Infof("full-screen overlay color effect: %s", f.table.Name(f.effect.Current()))
	}
	f.applyColorEffect(m)
	f.active.Set()
	return m
}

// ApplyEffectNext and ApplyEffectPrev are convenience wrappers over
// ApplyEffectCycled for the hotkey router.
func (f *FullScreenOverlay) ApplyEffectNext() effects.Matrix { fwd := true; return f.ApplyEffectCycled(&fwd) }
func (f *FullScreenOverlay) ApplyEffectPrev() effects.Matrix { fwd := false; return f.ApplyEffectCycled(&fwd) }

func (f *FullScreenOverlay) applyColorEffect(m effects.Matrix) {
	eff := winapi.MagColorEffect(m)
	if !winapi.MagSetFullscreenColorEffect(&eff) && f.log != nil {
		f.log.Warn("MagSetFullscreenColorEffect failed")
	}
}
