//go:build windows

package overlay

import (
	"strings"

	"github.com/yakrider/WinDusky/handle"
	"github.com/yakrider/WinDusky/winapi"
)

// installWinEventHooks subscribes to every OS window-event range the router
// cares about. Must run on the manager thread; the hooks' callbacks then
// also arrive on the manager thread's message queue.
func (m *Manager) installWinEventHooks() {
	ranges := [][2]uint32{
		{winapi.EventSystemForeground, winapi.EventSystemForeground},
		{winapi.EventSystemCaptureStart, winapi.EventSystemMoveSizeEnd},
		{winapi.EventSystemMinimizeStart, winapi.EventSystemMinimizeEnd},
		{winapi.EventObjectCreate, winapi.EventObjectHide},
		{winapi.EventObjectLocationChange, winapi.EventObjectLocationChange},
		{winapi.EventObjectCloaked, winapi.EventObjectUncloaked},
	}
	for _, r := range ranges {
		hook := winapi.SetWinEventHook(r[0], r[1], m.winEventProc)
		if hook != 0 {
			m.winEventHooks = append(m.winEventHooks, hook)
		}
	}
}

func (m *Manager) teardownWinEventHooks() {
	for _, hook := range m.winEventHooks {
		winapi.UnhookWinEvent(hook)
	}
	m.winEventHooks = nil
	if m.mouseHook != 0 {
		winapi.UnhookWindowsHookEx(m.mouseHook)
		m.mouseHook = 0
	}
}

// winEventProc is the OS callback for every installed SetWinEventHook range.
// It filters to window-level events, ignores our own host windows, and
// short-circuits entirely in full-screen mode. Overlay removal and refresh
// go through posted requests; the foreground cache, dirty flags, overlay
// marking and the demotion of the previously topmost overlay are done in
// place, since this callback runs on the manager thread.
func (m *Manager) winEventProc(hook uintptr, event uint32, hwnd uintptr, idObject, idChild int32, eventThread, eventTime uint32) {
	if idObject != winapi.ObjIDWindow {
		return
	}
	h := handle.FromUintptr(hwnd)

	m.mu.RLock()
	_, isHost := m.hosts[h]
	m.mu.RUnlock()
	if isHost {
		return
	}

	if m.fsOverlay.Enabled() {
		return
	}

	switch event {

	case winapi.EventObjectHide, winapi.EventObjectCloaked, winapi.EventObjectDestroy:
		m.removeOverlayIfMapped(h)
		m.occlDirty.Set()

	case winapi.EventSystemForeground:
		if m.isDriverProcess(h) {
			return
		}
		m.fgndCache.Store(h)
		m.occlDirty.Set()

		if m.markOverlayIfMapped(h) {
			return
		}
		if top := m.ovTopmost.Load(); top.IsValid() {
			m.ovTopmost.Clear()
			if prev, ok := m.overlayByTarget(top); ok {
				prev.resyncZOrder()
			}
		}
		if m.evaluator != nil {
			m.evaluator.HandleAutoOverlay(h, m)
		}

	case winapi.EventSystemMinimizeStart, winapi.EventSystemMinimizeEnd,
		winapi.EventSystemMoveSizeStart, winapi.EventSystemMoveSizeEnd,
		winapi.EventObjectCreate, winapi.EventObjectShow,
		winapi.EventObjectUncloaked, winapi.EventObjectLocationChange:
		m.occlDirty.Set()
		if m.markOverlayIfMapped(h) {
			m.Post(request{kind: reqRefresh})
		}

	default:
		if m.markOverlayIfMapped(h) {
			m.occlDirty.Set()
			m.Post(request{kind: reqRefresh})
		}
	}
}

// isDriverProcess reports whether hwnd belongs to the configured external
// driver process (e.g. a separate hotkey-issuing utility) whose own
// foreground transitions should never perturb fgnd_cache or z-ordering.
func (m *Manager) isDriverProcess(hwnd handle.Handle) bool {
	if m.driverExe == "" {
		return false
	}
	exe, ok := exeNameForWindow(hwnd.Uintptr())
	return ok && strings.EqualFold(exe, m.driverExe)
}

// mouseProc is the WH_MOUSE_LL callback: it only ever forwards a mag-refresh
// request on WM_MOUSEMOVE while the magnifier is active, and always calls
// through to the next hook in the chain.
func (m *Manager) mouseProc(code int32, wparam uintptr, mouseData uintptr) uintptr {
	if code == winapi.HCAction && uint32(wparam) == winapi.WMMouseMove {
		if m.magOverlay.Active() {
			m.Post(request{kind: reqMagRefresh})
		}
	}
	return winapi.CallNextHookEx(0, code, wparam, mouseData)
}
