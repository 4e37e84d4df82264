// Package overlay implements the per-window color overlay, its full-screen
// and magnifier-mode siblings, and the single-threaded manager that owns
// and drives all of them.
//go:build windows

package overlay

import (
	"fmt"
	"unsafe"

	"github.com/yakrider/WinDusky/effects"
	"github.com/yakrider/WinDusky/handle"
	"github.com/yakrider/WinDusky/occlusion"
	"github.com/yakrider/WinDusky/winapi"
)

const (
	hostWindowClassName = "WinDuskyOverlayWindowClass"
	hostWindowTitle      = "WinDusky Overlay Host"
)

var (
	classRegistered bool
	hostWndProcAddr uintptr
)

func hostWndProc(hwnd uintptr, msg uint32, wparam, lparam uintptr) uintptr {
	return winapi.DefWindowProcW(hwnd, msg, wparam, lparam)
}

// registerOverlayWindowClass registers the shared host window class used by
// every Overlay (and the manager's hidden message window). Safe to call more
// than once; ErrClassAlreadyExists is tolerated.
func registerOverlayWindowClass() error {
	if classRegistered {
		return nil
	}
	if hostWndProcAddr == 0 {
		hostWndProcAddr = windowProcCallback(hostWndProc)
	}
	var wc winapi.WNDCLASSEXW
	wc.Size = uint32(unsafe.Sizeof(wc))
	wc.Style = winapi.CSHRedraw | winapi.CSVRedraw
	wc.WndProc = hostWndProcAddr
	wc.Instance = winapi.GetModuleHandle()
	wc.ClassName = winapi.WideString(hostWindowClassName)

	if _, err := winapi.RegisterClassExW(&wc); err != nil {
		if err != winapi.ErrClassAlreadyExists {
			return fmt.Errorf("RegisterClassExW: %w", err)
		}
	}
	classRegistered = true
	return nil
}

// Overlay owns one host+magnifier window pair bound to a single target
// window. It is exclusively mutated from the manager thread; refresh/update
// are the only methods that touch OS state, and both must run there.
type Overlay struct {
	host   handle.Handle
	mag    handle.Handle
	target handle.Handle

	effect *effects.Atomic

	isTop  *handle.Flag
	marked *handle.Flag

	vizBounds *occlusion.Rect
}

// Target returns the window this overlay recolors.
func (o *Overlay) Target() handle.Handle { return o.target }

// Host returns the overlay's host window handle.
func (o *Overlay) Host() handle.Handle { return o.host }

// Mark flags the overlay dirty so the next tick re-syncs its geometry.
func (o *Overlay) Mark() { o.marked.Set() }

// IsTop reports whether this overlay currently holds the topmost slot.
func (o *Overlay) IsTop() bool { return o.isTop.IsSet() }

// EffectCursor exposes the overlay's effect cursor for the hotkey router.
func (o *Overlay) EffectCursor() *effects.Atomic { return o.effect }

// newOverlay creates the host + magnifier child window pair for target and
// installs the initial color effect. Must run on the manager thread.
func newOverlay(target handle.Handle, table *effects.Table, start effects.Effect) (*Overlay, error) {
	if err := registerOverlayWindowClass(); err != nil {
		return nil, err
	}
	inst := winapi.GetModuleHandle()

	host, err := winapi.CreateWindowExW(
		winapi.WSExLayered|winapi.WSExTransparent|winapi.WSExToolWindow|winapi.WSExNoActivate,
		winapi.WideString(hostWindowClassName),
		winapi.WideString(fmt.Sprintf("%s for %#x", hostWindowTitle, target.Uintptr())),
		winapi.WSPopup, 0, 0, 0, 0, 0, inst,
	)
	if err != nil {
		return nil, fmt.Errorf("create host window: %w", err)
	}

	mag, err := winapi.CreateWindowExW(
		0, winapi.WideString(winapi.WCMagnifierClassName), winapi.WideString(""),
		winapi.WSChild|winapi.WSVisible, 0, 0, 0, 0, host, inst,
	)
	if err != nil {
		winapi.DestroyWindow(host)
		return nil, fmt.Errorf("create magnifier control: %w", err)
	}

	ov := &Overlay{
		host:   handle.FromUintptr(host),
		mag:    handle.FromUintptr(mag),
		target: target,
		effect: effects.NewAtomic(table, start),
		isTop:  handle.NewFlag(false),
		marked: handle.NewFlag(false),
	}
	ov.applyColorEffect(ov.effect.Get())
	ov.marked.Set()
	winapi.ShowWindow(host, winapi.SWShowNoActivate)
	return ov, nil
}

func (o *Overlay) applyColorEffect(m effects.Matrix) {
	eff := winapi.MagColorEffect(m)
	winapi.MagSetColorEffect(o.mag.Uintptr(), &eff)
}

// ApplyEffectNext advances and installs the next effect in the cycle.
func (o *Overlay) ApplyEffectNext() effects.Matrix {
	m := o.effect.CycleNext()
	o.applyColorEffect(m)
	return m
}

// ApplyEffectPrev installs the previous effect in the cycle.
func (o *Overlay) ApplyEffectPrev() effects.Matrix {
	m := o.effect.CyclePrev()
	o.applyColorEffect(m)
	return m
}

// topmostTracker is implemented by the manager so an overlay can demote the
// previously-topmost overlay without needing the whole manager type.
type topmostTracker interface {
	overlayByTarget(handle.Handle) (*Overlay, bool)
	loadTopmost() handle.Handle
	storeTopmost(handle.Handle)
}

// update resyncs geometry, size, and z-order with the target. Runs only
// when marked, and clears marked at the START (not the end) so a concurrent
// event arriving mid-update is guaranteed to trigger another pass.
func (o *Overlay) update(mgr topmostTracker) {
	o.marked.Clear()

	targetH := o.target.Uintptr()
	rect, ok := winapi.GetExtendedFrameBounds(targetH)
	if !ok {
		rect, _ = winapi.GetWindowRect(targetH)
	}
	x, y := rect.Left, rect.Top
	w, h := rect.Right-rect.Left, rect.Bottom-rect.Top

	winapi.MagSetWindowSource(o.mag.Uintptr(), rect)
	winapi.SetWindowPos(o.mag.Uintptr(), 0, 0, 0, w, h, 0)

	fgnd := handle.FromUintptr(winapi.GetForegroundWindow())
	if o.target == fgnd {
		if top := mgr.loadTopmost(); top.IsValid() && top != o.target {
			if prev, ok := mgr.overlayByTarget(top); ok {
				prev.resyncZOrder()
			}
		}
	}

	hostH := o.host.Uintptr()
	insertAfter := winapi.GetWindow(targetH, winapi.GWHwndPrev)
	if insertAfter == 0 {
		insertAfter = winapi.HWND_TOP
	}
	// Two-step SetWindowPos: move without touching z-order, then insert into
	// z-order without touching position. A single combined call was found to
	// be unreliable for windows that just moved across monitors.
	winapi.SetWindowPos(hostH, 0, x, y, w, h, winapi.SWPNoActivate|winapi.SWPNoZOrder|winapi.SWPNoRedraw)
	winapi.SetWindowPos(hostH, insertAfter, 0, 0, 0, 0, winapi.SWPShowWindow|winapi.SWPNoMove|winapi.SWPNoSize|winapi.SWPNoRedraw)

	if o.target == fgnd {
		winapi.SetWindowPos(hostH, winapi.HWND_TOP, 0, 0, 0, 0, winapi.SWPNoMove|winapi.SWPNoSize)
		winapi.SetWindowPos(hostH, winapi.HWND_TOPMOST, 0, 0, 0, 0, winapi.SWPNoMove|winapi.SWPNoSize)
		o.isTop.Set()
		mgr.storeTopmost(o.target)
	}
}

// refresh re-syncs geometry if marked, otherwise invalidates only the
// currently-visible sub-rect (or the whole magnifier region if unknown).
func (o *Overlay) refresh(mgr topmostTracker) {
	if o.marked.IsSet() {
		o.update(mgr)
		winapi.InvalidateRect(o.mag.Uintptr(), nil, false)
		return
	}
	if o.vizBounds == nil {
		winapi.InvalidateRect(o.mag.Uintptr(), nil, false)
		return
	}
	pts := []winapi.POINT{
		{X: o.vizBounds.Left, Y: o.vizBounds.Top},
		{X: o.vizBounds.Right, Y: o.vizBounds.Bottom},
	}
	if winapi.MapWindowPoints(0, o.mag.Uintptr(), pts) != 0 {
		dirty := winapi.RECT{Left: pts[0].X, Top: pts[0].Y, Right: pts[1].X, Bottom: pts[1].Y}
		winapi.InvalidateRect(o.mag.Uintptr(), &dirty, false)
	}
}

// setVizBounds records the currently-visible sub-rect computed by the
// occlusion pass, in screen coordinates, for the next non-dirty refresh.
func (o *Overlay) setVizBounds(r *occlusion.Rect) { o.vizBounds = r }

// resyncZOrder demotes the overlay to sit just above its target (and no
// higher), clearing the topmost flag.
func (o *Overlay) resyncZOrder() {
	o.isTop.Clear()
	insertAfter := winapi.GetWindow(o.target.Uintptr(), winapi.GWHwndPrev)
	if insertAfter == 0 {
		insertAfter = winapi.HWND_TOP
	}
	winapi.SetWindowPos(o.host.Uintptr(), insertAfter, 0, 0, 0, 0, winapi.SWPShowWindow|winapi.SWPNoMove|winapi.SWPNoSize)
}

// destroy tears down the host window (and its magnifier child with it).
// Must run on the manager thread.
func (o *Overlay) destroy() {
	winapi.DestroyWindow(o.host.Uintptr())
}
