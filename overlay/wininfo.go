//go:build windows

package overlay

import (
	"path/filepath"

	"github.com/yakrider/WinDusky/handle"
	"github.com/yakrider/WinDusky/rules"
	"github.com/yakrider/WinDusky/winapi"
)

// liveInfoSource backs rules.InfoSource with live Win32 queries: window
// visibility/cloak state, class name, owning executable, and its elevation.
type liveInfoSource struct{}

// NewLiveInfoSource builds the live Win32-backed rules.InfoSource, for
// wiring a rules.Evaluator at startup.
func NewLiveInfoSource() rules.InfoSource { return liveInfoSource{} }

func (liveInfoSource) Info(h handle.Handle) (rules.WindowInfo, bool) {
	hwnd := h.Uintptr()

	exe, _ := exeNameForWindow(hwnd)
	_, pid := winapi.GetWindowThreadProcessId(hwnd)
	elevated := pid != 0 && winapi.IsProcessElevated(pid)

	return rules.WindowInfo{
		Visible:  winapi.IsWindowVisible(hwnd),
		Cloaked:  winapi.IsWindowCloaked(hwnd),
		Class:    winapi.GetClassName(hwnd),
		Exe:      exe,
		Elevated: elevated,
	}, true
}

// exeNameForWindow resolves hwnd's owning process's base executable name.
func exeNameForWindow(hwnd uintptr) (string, bool) {
	_, pid := winapi.GetWindowThreadProcessId(hwnd)
	if pid == 0 {
		return "", false
	}
	proc, ok := winapi.OpenProcessForQuery(pid)
	if !ok {
		return "", false
	}
	defer winapi.CloseHandle(proc)
	path, ok := winapi.QueryFullProcessImageName(proc)
	if !ok {
		return "", false
	}
	return filepath.Base(path), true
}
