//go:build windows

package overlay

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/yakrider/WinDusky/handle"
	"github.com/yakrider/WinDusky/winapi"
)

// magScalingStep is the per-level magnification multiplier: level 5 means
// 1.10^5, roughly 1.61x.
const magScalingStep float32 = 1.10

// maxMagLevels bounds how far a cycle can zoom in.
const maxMagLevels = 32

// magLevel is a non-wrapping (clamped) zoom step cursor.
type magLevel struct{ v atomic.Int32 }

func (m *magLevel) load() int32 { return m.v.Load() }
func (m *magLevel) store(level int32) { m.v.Store(level) }

func (m *magLevel) scale() float32 {
	level := m.load()
	s := float32(1)
	for i := int32(0); i < level; i++ {
		s *= magScalingStep
	}
	return s
}

func (m *magLevel) isIdentity() bool { return m.load() == 0 }

// cycle steps the cursor by one level, clamped to [0, maxMagLevels], and
// returns the resulting level (no wraparound, unlike color-effect cycling:
// zooming past the top or bottom should simply stop).
func (m *magLevel) cycle(forward bool) int32 {
	delta := int32(-1)
	if forward {
		delta = 1
	}
	for {
		cur := m.v.Load()
		next := cur + delta
		if next < 0 {
			next = 0
		}
		if next > maxMagLevels {
			next = maxMagLevels
		}
		if m.v.CompareAndSwap(cur, next) {
			return next
		}
	}
}

// MagnifierOverlay drives the OS full-screen magnifier transform, following
// the pointer and stepping zoom level on demand. All methods that touch
// Magnification API state must run on the thread that called
// winapi.MagInitialize.
type MagnifierOverlay struct {
	active *handle.Flag
	level  *magLevel
	log    *logrus.Entry
}

// NewMagnifierOverlay builds an inactive magnifier cursor at zoom level 0
// (1.0x, i.e. identity).
func NewMagnifierOverlay(log *logrus.Entry) *MagnifierOverlay {
	return &MagnifierOverlay{active: handle.NewFlag(false), level: &magLevel{}, log: log}
}

// Active reports whether pointer-follow magnification is currently engaged.
func (m *MagnifierOverlay) Active() bool { return m.active.IsSet() }

// Refresh recomputes and installs the fullscreen magnifier transform
// centered on the current pointer position, or clears it back to identity
// when inactive. Must run on the Magnification-init thread; it is called
// for the refresh requests the low-level mouse hook posts, and after the
// magnifier hotkeys and the toggle request.
func (m *MagnifierOverlay) Refresh() {
	if m.active.IsClear() {
		winapi.MagSetFullscreenTransform(1.0, 0, 0)
		winapi.MagSetInputTransform(false, nil, nil)
		return
	}

	mag := m.level.scale()
	pt, ok := winapi.GetCursorPos()
	if !ok {
		return
	}

	screenW := winapi.GetSystemMetrics(winapi.SMCxScreen)
	screenH := winapi.GetSystemMetrics(winapi.SMCyScreen)
	srcW := int32(float32(screenW) / mag)
	srcH := int32(float32(screenH) / mag)

	xOffset := clampInt32(pt.X-srcW/2, 0, screenW-srcW)
	yOffset := clampInt32(pt.Y-srcH/2, 0, screenH-srcH)

	if !winapi.MagSetFullscreenTransform(mag, xOffset, yOffset) && m.log != nil {
		m.log.Warn("MagSetFullscreenTransform failed")
	}
}

// ToggleEffect turns magnification off if currently zoomed in; otherwise it
// engages the remembered zoom level, or level 1 when that level is 0.
func (m *MagnifierOverlay) ToggleEffect() (level int32, ok bool) {
	curValid := !m.level.isIdentity()
	if m.active.IsSet() && curValid {
		m.UnapplyEffect()
		return 0, false
	}
	if !curValid {
		m.level.store(1)
	}
	return m.applyLevelCycled(nil), true
}

// UnapplyEffect deactivates magnification without resetting the remembered
// zoom level; the caller must still post a refresh request since this does
// not itself touch Magnification API state off the init thread.
func (m *MagnifierOverlay) UnapplyEffect() int32 {
	prior := m.level.load()
	m.active.Clear()
	if m.log != nil {
		m.log.Info("clearing magnification overlay")
	}
	return prior
}

// ApplyLevelNext and ApplyLevelPrev step the zoom cursor one notch; the
// caller is responsible for triggering a Refresh afterward.
func (m *MagnifierOverlay) ApplyLevelNext() int32 { fwd := true; return m.applyLevelCycled(&fwd) }
func (m *MagnifierOverlay) ApplyLevelPrev() int32 { fwd := false; return m.applyLevelCycled(&fwd) }

func (m *MagnifierOverlay) applyLevelCycled(dir *bool) int32 {
	var level int32
	switch {
	case dir == nil:
		level = m.level.load()
	case *dir:
		level = m.level.cycle(true)
	default:
		level = m.level.cycle(false)
	}
	m.active.Store(level != 0)
	if m.log != nil {
		m.log.Infof("screen magnification level: %d (%.2fx)", level, m.level.scale())
	}
	return level
}

func clampInt32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
