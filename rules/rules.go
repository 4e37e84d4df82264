// Package rules evaluates the declarative auto-overlay rules: per-window
// decisions driven by window class, executable name, and an optional
// luminance heuristic, with a result cache carrying user-override state.
package rules

import (
	"fmt"
	"sync"
	"time"

	"github.com/yakrider/WinDusky/effects"
	"github.com/yakrider/WinDusky/handle"
	"github.com/yakrider/WinDusky/luminance"
	"github.com/sirupsen/logrus"
)

// Key is a tagged lookup key into the rule table: either a window class
// name or an executable name. ClassName is always tried first.
type Key struct {
	kind  keyKind
	value string
}

type keyKind int

const (
	kindClass keyKind = iota
	kindExe
)

// ClassKey builds a Key matching a window class name.
func ClassKey(class string) Key { return Key{kind: kindClass, value: class} }

// ExeKey builds a Key matching an executable's base file name.
func ExeKey(exe string) Key { return Key{kind: kindExe, value: exe} }

// Value is the configured behavior for one rule key.
type Value struct {
	Enabled    bool
	Effect     *effects.Effect // nil means "use the configured default"
	ExclExes   map[string]struct{}
}

// Result is the outcome of evaluating the rules (and optionally the
// luminance heuristic) against a specific window.
type Result struct {
	Enabled    bool
	Effect     *effects.Effect
	Overridden bool
	ElevExcl   bool
}

var none = Result{}
var overridden = Result{Overridden: true}

// WindowInfo is the process/visibility context the evaluator needs about a
// candidate window; production code fills this from live Win32 queries,
// tests supply it directly.
type WindowInfo struct {
	Visible  bool
	Cloaked  bool
	Class    string
	Exe      string
	Elevated bool
}

// InfoSource supplies a WindowInfo for a handle, or ok=false if the window
// no longer exists / couldn't be queried.
type InfoSource interface {
	Info(h handle.Handle) (WindowInfo, bool)
}

// LuminanceSource supplies an average luminance sample in [0,255] for a
// handle, or ok=false on capture failure.
type LuminanceSource interface {
	AverageLuminance(h handle.Handle, method luminance.Method) (byte, bool)
}

// Config is the set of tunables the evaluator needs at init time, mirroring
// the config file's auto_overlay_luminance__* keys.
type Config struct {
	Elevated         bool
	LumThreshold     byte
	LumDelayMs       uint32
	LumUseAlternate  bool
	LumExcludedExes  map[string]struct{}
	Rules            map[Key]Value
}

// Evaluator is the process-wide auto-rules engine: rule table plus a
// read-write result cache. It never touches OS windows directly beyond what
// InfoSource/LuminanceSource provide.
type Evaluator struct {
	cfg Config

	enabled *handle.Flag

	mu        sync.RWMutex
	evalCache map[handle.Handle]Result

	info InfoSource
	lum  LuminanceSource

	defaultEffect effects.Effect

	log *logrus.Entry
}

// New builds an Evaluator. auto-overlay starts enabled iff the luminance
// threshold is set or at least one rule is configured, matching the
// original implementation's bootstrap behavior.
func New(cfg Config, info InfoSource, lum LuminanceSource, defaultEffect effects.Effect, log *logrus.Entry) *Evaluator {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	e := &Evaluator{
		cfg:           cfg,
		enabled:       handle.NewFlag(cfg.LumThreshold > 0 || len(cfg.Rules) > 0),
		evalCache:     make(map[handle.Handle]Result),
		info:          info,
		lum:           lum,
		defaultEffect: defaultEffect,
		log:           log,
	}
	return e
}

// Enabled reports whether auto-overlay evaluation is currently active.
func (e *Evaluator) Enabled() bool { return e.enabled.IsSet() }

// ToggleEnabled flips auto-overlay on/off and returns the new state.
func (e *Evaluator) ToggleEnabled() bool {
	enabled := !e.enabled.Toggle()
	return enabled
}

// CheckCached returns the cached result for h, if any.
func (e *Evaluator) CheckCached(h handle.Handle) (Result, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.evalCache[h]
	return r, ok
}

// UpdateCachedEffect mutates just the effect field of an existing cache
// entry, used when the user cycles an active overlay's effect so the
// preference survives a later toggle-off/on.
func (e *Evaluator) UpdateCachedEffect(h handle.Handle, eff effects.Effect) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r, ok := e.evalCache[h]; ok {
		r.Effect = &eff
		e.evalCache[h] = r
	}
}

// RegisterUserUnapplied records that the user manually removed an overlay
// from h: the window is marked overridden (auto-overlay will no longer
// apply to it) while any existing effect preference is preserved.
func (e *Evaluator) RegisterUserUnapplied(h handle.Handle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r, ok := e.evalCache[h]; ok {
		r.Enabled = false
		r.Overridden = true
		e.evalCache[h] = r
	} else {
		e.evalCache[h] = overridden
	}
	return e.countOverridesLocked()
}

// ClearUserOverrides wipes the entire evaluation cache (overrides and
// evaluated results alike), matching the original's "clear overrides" hotkey.
func (e *Evaluator) ClearUserOverrides() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.evalCache = make(map[handle.Handle]Result)
}

// OverrideCount reports how many windows currently carry a user override.
// Safe to call from any goroutine (e.g. the tray's status poll).
func (e *Evaluator) OverrideCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.countOverridesLocked()
}

func (e *Evaluator) countOverridesLocked() int {
	n := 0
	for _, r := range e.evalCache {
		if r.Overridden {
			n++
		}
	}
	return n
}

// ReCheckRule freshly evaluates the rules (and luminance heuristic) for h,
// caches the result, and returns it. A result that comes back enabled with
// no explicit effect is promoted to the evaluator's configured default.
func (e *Evaluator) ReCheckRule(h handle.Handle) Result {
	result := e.evalRules(h)
	if result.Enabled && result.Effect == nil {
		def := e.defaultEffect
		result.Effect = &def
		result.Overridden = false
	}
	e.mu.Lock()
	e.evalCache[h] = result
	e.mu.Unlock()
	return result
}

func (e *Evaluator) evalRules(h handle.Handle) Result {
	info, ok := e.info.Info(h)
	if !ok || !info.Visible || info.Cloaked {
		return none
	}

	elevExcl := !e.cfg.Elevated && info.Elevated

	if _, excluded := e.cfg.LumExcludedExes[info.Exe]; !excluded && e.cfg.LumThreshold > 0 {
		method := luminance.PrintWindow
		if e.cfg.LumUseAlternate {
			method = luminance.BitBlt
		}
		if lum, ok := e.lum.AverageLuminance(h, method); ok {
			if lum != 0 && lum != 255 && lum > e.cfg.LumThreshold {
				e.log.WithField("window", h).WithField("luminance", lum).Info("luminance over threshold, auto-applying overlay")
				return Result{Enabled: true, ElevExcl: elevExcl}
			}
		}
	}

	if v, ok := e.cfg.Rules[ClassKey(info.Class)]; ok {
		if _, excl := v.ExclExes[info.Exe]; excl {
			return none
		}
		return valueToResult(v, elevExcl)
	}

	if v, ok := e.cfg.Rules[ExeKey(info.Exe)]; ok {
		return valueToResult(v, elevExcl)
	}

	return none
}

func valueToResult(v Value, elevExcl bool) Result {
	return Result{Enabled: v.Enabled, Effect: v.Effect, ElevExcl: elevExcl}
}

// OverlayRequester is the manager-side hook the evaluator posts overlay
// creation requests through; it must be safe to call from any goroutine.
type OverlayRequester interface {
	RequestOverlayCreate(h handle.Handle, eff effects.Effect)
	HasOverlay(h handle.Handle) bool
	FullScreenActive() bool
}

// HandleAutoOverlay implements the §4.9 auto-overlay decision flow for a
// window that just came to the foreground without a mapped overlay. It
// returns immediately after kicking off a worker goroutine for any case
// that needs fresh evaluation, so the caller (the event-router/manager
// thread) never blocks on screen capture.
func (e *Evaluator) HandleAutoOverlay(h handle.Handle, mgr OverlayRequester) {
	if mgr.FullScreenActive() {
		return
	}
	if !e.Enabled() {
		return
	}

	if cached, ok := e.CheckCached(h); ok {
		if !cached.Enabled {
			return
		}
		mgr.RequestOverlayCreate(h, e.resolveEffect(cached.Effect))
		return
	}

	go e.evaluateWithRetries(h, mgr)
}

func (e *Evaluator) resolveEffect(eff *effects.Effect) effects.Effect {
	if eff == nil {
		return e.defaultEffect
	}
	return *eff
}

func (e *Evaluator) evaluateWithRetries(h handle.Handle, mgr OverlayRequester) {
	time.Sleep(time.Duration(e.cfg.LumDelayMs) * time.Millisecond)

	result := e.ReCheckRule(h)
	if result.ElevExcl {
		e.log.Warn(fmt.Sprintf("WinDusky is NOT elevated; cannot overlay elevated window %v", h))
		return
	}
	if result.Enabled {
		mgr.RequestOverlayCreate(h, e.resolveEffect(result.Effect))
	}

	// Some windows report properties (class/exe/title) late relative to
	// their first foreground event; re-check a couple more times before
	// giving up, mirroring the 300ms/500ms follow-up delays the original
	// implementation uses.
	time.Sleep(300 * time.Millisecond)
	if mgr.HasOverlay(h) {
		return
	}
	if result = e.ReCheckRule(h); result.Enabled {
		mgr.RequestOverlayCreate(h, e.resolveEffect(result.Effect))
	}

	time.Sleep(500 * time.Millisecond)
	if mgr.HasOverlay(h) {
		return
	}
	if result = e.ReCheckRule(h); result.Enabled {
		mgr.RequestOverlayCreate(h, e.resolveEffect(result.Effect))
	}
}
