//go:build windows

package luminance

import (
	"github.com/yakrider/WinDusky/handle"
	"github.com/yakrider/WinDusky/winapi"
)

// Capturer is the live Win32-backed implementation of a luminance source.
type Capturer struct{}

// NewCapturer builds a Capturer. There is no state to own; every call opens
// and tears down its own GDI resources.
func NewCapturer() *Capturer { return &Capturer{} }

// AverageLuminance captures h's client area via the requested method and
// returns its mean BT.709 luminance. Every GDI handle acquired is released
// on every exit path, including early failures.
func (c *Capturer) AverageLuminance(h handle.Handle, method Method) (byte, bool) {
	hwnd := h.Uintptr()

	rect, ok := winapi.GetClientRect(hwnd)
	if !ok {
		return 0, false
	}
	width := rect.Right - rect.Left
	height := rect.Bottom - rect.Top
	if width <= 0 || height <= 0 {
		return 0, false
	}

	windowDC := winapi.GetDC(hwnd)
	if windowDC == 0 {
		return 0, false
	}
	defer winapi.ReleaseDC(hwnd, windowDC)

	memDC := winapi.CreateCompatibleDC(windowDC)
	if memDC == 0 {
		return 0, false
	}
	defer winapi.DeleteDC(memDC)

	bitmap := winapi.CreateCompatibleBitmap(windowDC, width, height)
	if bitmap == 0 {
		return 0, false
	}
	defer winapi.DeleteObject(bitmap)

	prior := winapi.SelectObject(memDC, bitmap)
	defer winapi.SelectObject(memDC, prior)

	var captured bool
	switch method {
	case BitBlt:
		captured = winapi.BitBlt(memDC, 0, 0, width, height, windowDC, 0, 0)
	default:
		captured = winapi.PrintWindow(hwnd, memDC, winapi.PWRenderFullContent)
	}
	if !captured {
		return 0, false
	}

	buf, stride, ok := winapi.GetDIBits(memDC, bitmap, width, height)
	if !ok {
		return 0, false
	}
	return averageFromBGRA(buf, int(width), int(height), stride)
}
