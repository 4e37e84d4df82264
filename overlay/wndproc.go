//go:build windows

package overlay

import "syscall"

// windowProcCallback wraps a Go WNDPROC implementation as a callback address
// usable in a WNDCLASSEXW. The returned address is MSDN-shaped -
// (hwnd, msg, wparam, lparam) -> result - and survives for the process
// lifetime, matching what RegisterClassExW requires.
func windowProcCallback(fn func(hwnd uintptr, msg uint32, wparam, lparam uintptr) uintptr) uintptr {
	return syscall.NewCallback(fn)
}
