// Package winapi centralizes the raw Win32 syscall bindings used across
// WinDusky: window/class/message plumbing, the Magnification and DWM
// subsystems, window-event hooks, and the GDI calls behind luminance
// capture. Everything here is a thin syscall wrapper; domain logic lives in
// the packages that call it.
//go:build windows

package winapi

import (
	"syscall"
	"unsafe"
)

var (
	user32   = syscall.NewLazyDLL("user32.dll")
	gdi32    = syscall.NewLazyDLL("gdi32.dll")
	kernel32 = syscall.NewLazyDLL("kernel32.dll")
	dwmapi   = syscall.NewLazyDLL("dwmapi.dll")
	magnif   = syscall.NewLazyDLL("magnification.dll")
	advapi32 = syscall.NewLazyDLL("advapi32.dll")
	shell32  = syscall.NewLazyDLL("shell32.dll")

	procRegisterClassExW    = user32.NewProc("RegisterClassExW")
	procCreateWindowExW     = user32.NewProc("CreateWindowExW")
	procDefWindowProcW      = user32.NewProc("DefWindowProcW")
	procDestroyWindow       = user32.NewProc("DestroyWindow")
	procShowWindow          = user32.NewProc("ShowWindow")
	procSetWindowPos        = user32.NewProc("SetWindowPos")
	procGetWindow            = user32.NewProc("GetWindow")
	procGetForegroundWindow  = user32.NewProc("GetForegroundWindow")
	procGetWindowRect        = user32.NewProc("GetWindowRect")
	procGetClientRect        = user32.NewProc("GetClientRect")
	procGetClassNameW        = user32.NewProc("GetClassNameW")
	procGetWindowThreadPID   = user32.NewProc("GetWindowThreadProcessId")
	procIsWindowVisible      = user32.NewProc("IsWindowVisible")
	procEnumWindows          = user32.NewProc("EnumWindows")
	procSetLayeredWinAttrs   = user32.NewProc("SetLayeredWindowAttributes")
	procRegisterHotKey       = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey     = user32.NewProc("UnregisterHotKey")
	procGetMessageW          = user32.NewProc("GetMessageW")
	procPeekMessageW         = user32.NewProc("PeekMessageW")
	procDispatchMessageW     = user32.NewProc("DispatchMessageW")
	procTranslateMessage     = user32.NewProc("TranslateMessage")
	procPostMessageW         = user32.NewProc("PostMessageW")
	procPostThreadMessageW   = user32.NewProc("PostThreadMessageW")
	procSetTimer             = user32.NewProc("SetTimer")
	procKillTimer            = user32.NewProc("KillTimer")
	procInvalidateRect       = user32.NewProc("InvalidateRect")
	procMapWindowPoints      = user32.NewProc("MapWindowPoints")
	procSetWinEventHook      = user32.NewProc("SetWinEventHook")
	procUnhookWinEvent       = user32.NewProc("UnhookWinEvent")
	procSetWindowsHookExW    = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx  = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx       = user32.NewProc("CallNextHookEx")
	procPrintWindow          = user32.NewProc("PrintWindow")
	procGetDC                = user32.NewProc("GetDC")
	procReleaseDC            = user32.NewProc("ReleaseDC")

	procCreateCompatibleDC     = gdi32.NewProc("CreateCompatibleDC")
	procCreateCompatibleBitmap = gdi32.NewProc("CreateCompatibleBitmap")
	procSelectObject           = gdi32.NewProc("SelectObject")
	procDeleteObject           = gdi32.NewProc("DeleteObject")
	procDeleteDC               = gdi32.NewProc("DeleteDC")
	procBitBlt                 = gdi32.NewProc("BitBlt")
	procGetDIBits              = gdi32.NewProc("GetDIBits")
	procGetDeviceGammaRamp     = gdi32.NewProc("GetDeviceGammaRamp")
	procSetDeviceGammaRamp     = gdi32.NewProc("SetDeviceGammaRamp")

	procGetModuleHandleW             = kernel32.NewProc("GetModuleHandleW")
	procOpenProcess                  = kernel32.NewProc("OpenProcess")
	procCloseHandle                  = kernel32.NewProc("CloseHandle")
	procQueryFullProcessImageNameW   = kernel32.NewProc("QueryFullProcessImageNameW")
	procCreateProcessW               = kernel32.NewProc("CreateProcessW")

	procDwmGetWindowAttribute = dwmapi.NewProc("DwmGetWindowAttribute")

	procMagInitialize             = magnif.NewProc("MagInitialize")
	procMagUninitialize           = magnif.NewProc("MagUninitialize")
	procMagSetWindowSource        = magnif.NewProc("MagSetWindowSource")
	procMagSetColorEffect         = magnif.NewProc("MagSetColorEffect")
	procMagSetFullscreenColorEff  = magnif.NewProc("MagSetFullscreenColorEffect")
	procMagSetFullscreenTransform = magnif.NewProc("MagSetFullscreenTransform")
	procMagSetInputTransform      = magnif.NewProc("MagSetInputTransform")

	procGetSystemMetrics = user32.NewProc("GetSystemMetrics")
	procGetCursorPos     = user32.NewProc("GetCursorPos")

	procOpenProcessToken      = advapi32.NewProc("OpenProcessToken")
	procGetTokenInformation   = advapi32.NewProc("GetTokenInformation")

	procShellExecuteW = shell32.NewProc("ShellExecuteW")
)

// RECT mirrors the Win32 RECT struct layout exactly.
type RECT struct{ Left, Top, Right, Bottom int32 }

// POINT mirrors the Win32 POINT struct layout.
type POINT struct{ X, Y int32 }

// MSG mirrors the Win32 MSG struct layout.
type MSG struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      POINT
}

// WNDCLASSEXW mirrors the Win32 WNDCLASSEXW struct layout.
type WNDCLASSEXW struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   uintptr
	Icon       uintptr
	Cursor     uintptr
	Background uintptr
	MenuName   *uint16
	ClassName  *uint16
	IconSm     uintptr
}

// Window style / extended-style constants.
const (
	WSExLayered     uintptr = 0x00080000
	WSExTransparent uintptr = 0x00000020
	WSExToolWindow  uintptr = 0x00000080
	WSExNoActivate  uintptr = 0x08000000
	WSExTopmost     uintptr = 0x00000008

	WSPopup   uintptr = 0x80000000
	WSChild   uintptr = 0x40000000
	WSVisible uintptr = 0x10000000

	CSHRedraw uint32 = 0x0002
	CSVRedraw uint32 = 0x0001
)

// HWND sentinel values for SetWindowPos's hwndInsertAfter parameter.
var (
	HWND_TOP      uintptr = 0
	HWND_TOPMOST  uintptr = ^uintptr(0)      // -1
	HWND_NOTOPMOST uintptr = ^uintptr(0) - 1 // -2
)

// SetWindowPos flags.
const (
	SWPNoSize      uint32 = 0x0001
	SWPNoMove      uint32 = 0x0002
	SWPNoZOrder    uint32 = 0x0004
	SWPNoRedraw    uint32 = 0x0008
	SWPNoActivate  uint32 = 0x0010
	SWPShowWindow  uint32 = 0x0040
)

// ShowWindow commands.
const SWShowNoActivate = 4

// GetWindow relationship codes.
const GWHwndPrev = 3

// Window messages.
const (
	WMTimer  uint32 = 0x0113
	WMHotkey uint32 = 0x0312
	WMClose  uint32 = 0x0010
	WMDestroy uint32 = 0x0002
	WMQuit   uint32 = 0x0012
	WMApp    uint32 = 0x8000
)

// RegisterHotKey modifier flags.
const (
	ModAlt      uint32 = 0x0001
	ModControl  uint32 = 0x0002
	ModShift    uint32 = 0x0004
	ModWin      uint32 = 0x0008
	ModNoRepeat uint32 = 0x4000
)

// DWM window attributes.
const (
	DWMWAExtendedFrameBounds uint32 = 9
	DWMWACloaked             uint32 = 14
)

// Window-event hook event ids (OBJID_WINDOW-scoped).
const (
	EventSystemForeground   uint32 = 0x0003
	EventSystemCaptureStart uint32 = 0x0008
	EventSystemCaptureEnd   uint32 = 0x0009
	EventSystemMoveSizeStart uint32 = 0x000A
	EventSystemMoveSizeEnd   uint32 = 0x000B
	EventSystemMinimizeStart uint32 = 0x0016
	EventSystemMinimizeEnd   uint32 = 0x0017
	EventObjectCreate        uint32 = 0x8000
	EventObjectDestroy       uint32 = 0x8001
	EventObjectShow          uint32 = 0x8002
	EventObjectHide          uint32 = 0x8003
	EventObjectLocationChange uint32 = 0x800B
	EventObjectCloaked        uint32 = 0x8017
	EventObjectUncloaked      uint32 = 0x8018

	ObjIDWindow int32 = 0
)

// WH_MOUSE_LL low-level mouse hook plus the subset of messages it forwards.
const (
	WHMouseLL  = 14
	HCAction   = 0
	WMMouseMove uint32 = 0x0200
)

// bool32 converts a Win32 BOOL return value.
func bool32(r uintptr) bool { return r != 0 }

func wide(s string) *uint16 {
	p, _ := syscall.UTF16PtrFromString(s)
	return p
}

// WideString exposes the UTF-16 conversion for callers outside this package
// (e.g. GetClassName buffers, window titles).
func WideString(s string) *uint16 { return wide(s) }

// UTF16ToString exposes the inverse conversion.
func UTF16ToString(buf []uint16) string { return syscall.UTF16ToString(buf) }

// RegisterClassExW registers a window class. On failure it returns the
// Win32 error unchanged; callers decide whether ErrClassAlreadyExists is
// acceptable.
func RegisterClassExW(wc *WNDCLASSEXW) (atom uint16, lastErr error) {
	r, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(wc)))
	if r == 0 {
		return 0, err
	}
	return uint16(r), nil
}

// ErrClassAlreadyExists is the Win32 error code RegisterClassExW returns
// when the class name is already registered by this process.
const ErrClassAlreadyExists syscall.Errno = 1410

func CreateWindowExW(exStyle uintptr, className, windowName *uint16, style uintptr, x, y, w, h int32, parent uintptr, instance uintptr) (uintptr, error) {
	r, _, err := procCreateWindowExW.Call(
		exStyle, uintptr(unsafe.Pointer(className)), uintptr(unsafe.Pointer(windowName)),
		style, uintptr(x), uintptr(y), uintptr(w), uintptr(h),
		parent, 0, instance, 0,
	)
	if r == 0 {
		return 0, err
	}
	return r, nil
}

func DefWindowProcW(hwnd uintptr, msg uint32, wparam, lparam uintptr) uintptr {
	r, _, _ := procDefWindowProcW.Call(hwnd, uintptr(msg), wparam, lparam)
	return r
}

func DestroyWindow(hwnd uintptr) bool {
	r, _, _ := procDestroyWindow.Call(hwnd)
	return bool32(r)
}

func ShowWindow(hwnd uintptr, cmd int32) bool {
	r, _, _ := procShowWindow.Call(hwnd, uintptr(cmd))
	return bool32(r)
}

func SetWindowPos(hwnd uintptr, insertAfter uintptr, x, y, w, h int32, flags uint32) bool {
	r, _, _ := procSetWindowPos.Call(hwnd, insertAfter, uintptr(x), uintptr(y), uintptr(w), uintptr(h), uintptr(flags))
	return bool32(r)
}

func GetWindow(hwnd uintptr, relation uint32) uintptr {
	r, _, _ := procGetWindow.Call(hwnd, uintptr(relation))
	return r
}

func GetForegroundWindow() uintptr {
	r, _, _ := procGetForegroundWindow.Call()
	return r
}

func GetWindowRect(hwnd uintptr) (RECT, bool) {
	var r RECT
	ret, _, _ := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))
	return r, bool32(ret)
}

func GetClientRect(hwnd uintptr) (RECT, bool) {
	var r RECT
	ret, _, _ := procGetClientRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))
	return r, bool32(ret)
}

func GetClassName(hwnd uintptr) string {
	buf := make([]uint16, 256)
	procGetClassNameW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return syscall.UTF16ToString(buf)
}

func GetWindowThreadProcessId(hwnd uintptr) (threadID, processID uint32) {
	var pid uint32
	tid, _, _ := procGetWindowThreadPID.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	return uint32(tid), pid
}

func IsWindowVisible(hwnd uintptr) bool {
	r, _, _ := procIsWindowVisible.Call(hwnd)
	return bool32(r)
}

// GetExtendedFrameBounds queries DWMWA_EXTENDED_FRAME_BOUNDS, which excludes
// the transparent resize padding an ordinary GetWindowRect would include.
func GetExtendedFrameBounds(hwnd uintptr) (RECT, bool) {
	var r RECT
	ret, _, _ := procDwmGetWindowAttribute.Call(hwnd, uintptr(DWMWAExtendedFrameBounds), uintptr(unsafe.Pointer(&r)), unsafe.Sizeof(r))
	return r, ret == 0
}

// IsWindowCloaked reports the DWMWA_CLOAKED attribute (non-zero == cloaked).
func IsWindowCloaked(hwnd uintptr) bool {
	var cloaked uint32
	ret, _, _ := procDwmGetWindowAttribute.Call(hwnd, uintptr(DWMWACloaked), uintptr(unsafe.Pointer(&cloaked)), unsafe.Sizeof(cloaked))
	return ret == 0 && cloaked != 0
}

// EnumWindows enumerates top-level windows front-to-back, calling fn for
// each; stops early if fn returns false.
func EnumWindows(fn func(hwnd uintptr) bool) {
	cb := syscall.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		if fn(hwnd) {
			return 1
		}
		return 0
	})
	procEnumWindows.Call(cb, 0)
}

func SetLayeredWindowAttributes(hwnd uintptr, colorKey uint32, alpha byte, flags uint32) bool {
	r, _, _ := procSetLayeredWinAttrs.Call(hwnd, uintptr(colorKey), uintptr(alpha), uintptr(flags))
	return bool32(r)
}

func RegisterHotKey(hwnd uintptr, id int, modifiers, vk uint32) error {
	r, _, err := procRegisterHotKey.Call(hwnd, uintptr(id), uintptr(modifiers), uintptr(vk))
	if r == 0 {
		return err
	}
	return nil
}

func UnregisterHotKey(hwnd uintptr, id int) error {
	r, _, err := procUnregisterHotKey.Call(hwnd, uintptr(id))
	if r == 0 {
		return err
	}
	return nil
}

// GetMessage blocks for the next message on the calling thread's queue.
// Returns false at WM_QUIT.
func GetMessage(msg *MSG) (bool, error) {
	r, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(msg)), 0, 0, 0)
	if int32(r) == -1 {
		return false, err
	}
	return r != 0, nil
}

// PeekMessage is the non-blocking poll variant (PM_REMOVE = 1).
func PeekMessage(msg *MSG) bool {
	r, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(msg)), 0, 0, 0, 1)
	return r != 0
}

func TranslateMessage(msg *MSG) { procTranslateMessage.Call(uintptr(unsafe.Pointer(msg))) }
func DispatchMessageW(msg *MSG) {
	procDispatchMessageW.Call(uintptr(unsafe.Pointer(msg)))
}

func PostMessageW(hwnd uintptr, msg uint32, wparam, lparam uintptr) bool {
	r, _, _ := procPostMessageW.Call(hwnd, uintptr(msg), wparam, lparam)
	return bool32(r)
}

func PostThreadMessageW(threadID uint32, msg uint32, wparam, lparam uintptr) bool {
	r, _, _ := procPostThreadMessageW.Call(uintptr(threadID), uintptr(msg), wparam, lparam)
	return bool32(r)
}

func SetTimer(hwnd uintptr, id uintptr, elapseMs uint32) uintptr {
	r, _, _ := procSetTimer.Call(hwnd, id, uintptr(elapseMs), 0)
	return r
}

func KillTimer(hwnd uintptr, id uintptr) bool {
	r, _, _ := procKillTimer.Call(hwnd, id)
	return bool32(r)
}

func InvalidateRect(hwnd uintptr, rect *RECT, erase bool) bool {
	var e uintptr
	if erase {
		e = 1
	}
	r, _, _ := procInvalidateRect.Call(hwnd, uintptr(unsafe.Pointer(rect)), e)
	return bool32(r)
}

func MapWindowPoints(from, to uintptr, points []POINT) int32 {
	r, _, _ := procMapWindowPoints.Call(from, to, uintptr(unsafe.Pointer(&points[0])), uintptr(len(points)))
	return int32(r)
}

// WinEventProc matches the OS callback signature for SetWinEventHook.
type WinEventProc func(hook uintptr, event uint32, hwnd uintptr, idObject, idChild int32, eventThread, eventTime uint32)

// SetWinEventHook installs a hook spanning [eventMin, eventMax] and returns
// its handle.
func SetWinEventHook(eventMin, eventMax uint32, proc WinEventProc) uintptr {
	cb := syscall.NewCallback(func(hook uintptr, event uint32, hwnd uintptr, idObject, idChild int32, eventThread, eventTime uint32) uintptr {
		proc(hook, event, hwnd, idObject, idChild, eventThread, eventTime)
		return 0
	})
	r, _, _ := procSetWinEventHook.Call(uintptr(eventMin), uintptr(eventMax), 0, cb, 0, 0, 0)
	return r
}

func UnhookWinEvent(hook uintptr) bool {
	r, _, _ := procUnhookWinEvent.Call(hook)
	return bool32(r)
}

// MouseHookProc matches the WH_MOUSE_LL callback signature.
type MouseHookProc func(code int32, wparam uintptr, mouseData uintptr) uintptr

// SetMouseHook installs a low-level mouse hook and returns its handle. The
// proc MUST call CallNextHookEx on every path (callers are responsible for
// that inside fn).
func SetMouseHook(fn MouseHookProc) uintptr {
	cb := syscall.NewCallback(func(code int32, wparam uintptr, lparam uintptr) uintptr {
		return fn(code, wparam, lparam)
	})
	r, _, _ := procSetWindowsHookExW.Call(uintptr(WHMouseLL), cb, 0, 0)
	return r
}

func UnhookWindowsHookEx(hook uintptr) bool {
	r, _, _ := procUnhookWindowsHookEx.Call(hook)
	return bool32(r)
}

func CallNextHookEx(hook uintptr, code int32, wparam, lparam uintptr) uintptr {
	r, _, _ := procCallNextHookEx.Call(hook, uintptr(code), wparam, lparam)
	return r
}

// --- GDI / capture ---

func PrintWindow(hwnd uintptr, hdc uintptr, flags uint32) bool {
	r, _, _ := procPrintWindow.Call(hwnd, hdc, uintptr(flags))
	return bool32(r)
}

// PWRenderFullContent is the undocumented PrintWindow flag that captures
// DirectX/UWP-composited content most apps would otherwise render blank.
const PWRenderFullContent uint32 = 0x00000002

func GetDC(hwnd uintptr) uintptr {
	r, _, _ := procGetDC.Call(hwnd)
	return r
}

func ReleaseDC(hwnd, hdc uintptr) {
	procReleaseDC.Call(hwnd, hdc)
}

func CreateCompatibleDC(hdc uintptr) uintptr {
	r, _, _ := procCreateCompatibleDC.Call(hdc)
	return r
}

func CreateCompatibleBitmap(hdc uintptr, w, h int32) uintptr {
	r, _, _ := procCreateCompatibleBitmap.Call(hdc, uintptr(w), uintptr(h))
	return r
}

func SelectObject(hdc, obj uintptr) uintptr {
	r, _, _ := procSelectObject.Call(hdc, obj)
	return r
}

func DeleteObject(obj uintptr) { procDeleteObject.Call(obj) }
func DeleteDC(hdc uintptr)     { procDeleteDC.Call(hdc) }

func BitBlt(dstDC uintptr, x, y, w, h int32, srcDC uintptr, srcX, srcY int32) bool {
	const srcCopy = 0x00CC0020
	r, _, _ := procBitBlt.Call(dstDC, uintptr(x), uintptr(y), uintptr(w), uintptr(h), srcDC, uintptr(srcX), uintptr(srcY), srcCopy)
	return bool32(r)
}

// GammaRamp mirrors the Win32 GAMMARAMP struct: three 256-entry 16-bit
// channel curves, in Red/Green/Blue order.
type GammaRamp struct {
	Red, Green, Blue [256]uint16
}

// GetDeviceGammaRamp reads the gamma ramp currently installed on hdc's
// device. ok is false if the device doesn't support gamma ramps.
func GetDeviceGammaRamp(hdc uintptr) (ramp GammaRamp, ok bool) {
	r, _, _ := procGetDeviceGammaRamp.Call(hdc, uintptr(unsafe.Pointer(&ramp)))
	return ramp, r != 0
}

// SetDeviceGammaRamp installs ramp on hdc's device. Most drivers reject
// ramps whose values deviate too far from linear.
func SetDeviceGammaRamp(hdc uintptr, ramp *GammaRamp) bool {
	r, _, _ := procSetDeviceGammaRamp.Call(hdc, uintptr(unsafe.Pointer(ramp)))
	return r != 0
}

// BITMAPINFOHEADER mirrors the Win32 struct layout.
type BITMAPINFOHEADER struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

// GetDIBits extracts a top-down 32bpp BGRA buffer from a compatible bitmap.
func GetDIBits(hdc, bitmap uintptr, width, height int32) ([]byte, int, bool) {
	var hdr BITMAPINFOHEADER
	hdr.Size = uint32(unsafe.Sizeof(hdr))
	hdr.Width = width
	hdr.Height = -height // negative: top-down DIB
	hdr.Planes = 1
	hdr.BitCount = 32
	hdr.Compression = 0 // BI_RGB

	stride := int(width) * 4
	buf := make([]byte, stride*int(height))

	const dibRGBColors = 0
	r, _, _ := procGetDIBits.Call(
		hdc, bitmap, 0, uintptr(height),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&hdr)),
		uintptr(dibRGBColors),
	)
	if r == 0 {
		return nil, 0, false
	}
	return buf, stride, true
}

// --- process / elevation ---

func GetModuleHandle() uintptr {
	r, _, _ := procGetModuleHandleW.Call(0)
	return r
}

const (
	processQueryLimitedInformation uint32 = 0x1000
)

func OpenProcessForQuery(pid uint32) (uintptr, bool) {
	r, _, _ := procOpenProcess.Call(uintptr(processQueryLimitedInformation), 0, uintptr(pid))
	return r, r != 0
}

func CloseHandle(h uintptr) { procCloseHandle.Call(h) }

// QueryFullProcessImageName returns the full path to the process's
// executable, or ok=false on failure.
func QueryFullProcessImageName(proc uintptr) (string, bool) {
	buf := make([]uint16, 1024)
	size := uint32(len(buf))
	r, _, _ := procQueryFullProcessImageNameW.Call(proc, 0, uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&size)))
	if r == 0 {
		return "", false
	}
	return syscall.UTF16ToString(buf[:size]), true
}

const (
	tokenQuery        uint32 = 0x0008
	tokenElevation     uint32 = 20 // TokenElevation
)

// IsProcessElevated reports whether the process owning pid is running
// elevated. Best-effort: any failure reports false.
func IsProcessElevated(pid uint32) bool {
	proc, ok := OpenProcessForQuery(pid)
	if !ok {
		return false
	}
	defer CloseHandle(proc)

	var token uintptr
	r, _, _ := procOpenProcessToken.Call(proc, uintptr(tokenQuery), uintptr(unsafe.Pointer(&token)))
	if r == 0 {
		return false
	}
	defer CloseHandle(token)

	var elevation uint32
	var retLen uint32
	r, _, _ = procGetTokenInformation.Call(
		token, uintptr(tokenElevation),
		uintptr(unsafe.Pointer(&elevation)), unsafe.Sizeof(elevation),
		uintptr(unsafe.Pointer(&retLen)),
	)
	return r != 0 && elevation != 0
}

// CheckCurrentProcessElevated reports whether this process itself is
// running elevated, for the auto-rules evaluator's own bootstrap check.
func CheckCurrentProcessElevated() bool {
	return IsProcessElevated(currentProcessID())
}

func currentProcessID() uint32 {
	procGetCurrentProcessId := kernel32.NewProc("GetCurrentProcessId")
	r, _, _ := procGetCurrentProcessId.Call()
	return uint32(r)
}

// --- shell ---

// ShellExecuteOpen opens path with its default OS association (e.g. a
// config file in its default editor).
func ShellExecuteOpen(path string) error {
	verb := wide("open")
	p := wide(path)
	r, _, err := procShellExecuteW.Call(0, uintptr(unsafe.Pointer(verb)), uintptr(unsafe.Pointer(p)), 0, 0, 1)
	if r <= 32 {
		return err
	}
	return nil
}

// --- Magnification API ---

// MagColorEffect mirrors MAGCOLOREFFECT's layout (5x5 row-major float32).
type MagColorEffect [25]float32

func MagInitialize() bool {
	r, _, _ := procMagInitialize.Call()
	return bool32(r)
}

func MagUninitialize() bool {
	r, _, _ := procMagUninitialize.Call()
	return bool32(r)
}

func MagSetWindowSource(mag uintptr, rect RECT) bool {
	r, _, _ := procMagSetWindowSource.Call(mag, uintptr(unsafe.Pointer(&rect)))
	return bool32(r)
}

func MagSetColorEffect(mag uintptr, effect *MagColorEffect) bool {
	r, _, _ := procMagSetColorEffect.Call(mag, uintptr(unsafe.Pointer(effect)))
	return bool32(r)
}

func MagSetFullscreenColorEffect(effect *MagColorEffect) bool {
	r, _, _ := procMagSetFullscreenColorEff.Call(uintptr(unsafe.Pointer(effect)))
	return bool32(r)
}

// WCMagnifierClassName is the OS-provided magnifier control window class name.
const WCMagnifierClassName = "Magnifier"

// MagSetFullscreenTransform sets the whole-screen magnification factor and
// top-left source offset. Only effective from the thread that called
// MagInitialize.
func MagSetFullscreenTransform(magLevel float32, xOffset, yOffset int32) bool {
	r, _, _ := procMagSetFullscreenTransform.Call(
		uintptr(mathFloat32bits(magLevel)), uintptr(xOffset), uintptr(yOffset),
	)
	return bool32(r)
}

// MagSetInputTransform enables or disables pen/touch input remapping to
// match the active fullscreen magnification transform.
func MagSetInputTransform(enabled bool, src, dst *RECT) bool {
	var e uintptr
	if enabled {
		e = 1
	}
	r, _, _ := procMagSetInputTransform.Call(e, uintptr(unsafe.Pointer(src)), uintptr(unsafe.Pointer(dst)))
	return bool32(r)
}

// GetSystemMetrics wraps the eponymous Win32 call (SM_CXSCREEN, SM_CYSCREEN, ...).
func GetSystemMetrics(index int32) int32 {
	r, _, _ := procGetSystemMetrics.Call(uintptr(index))
	return int32(r)
}

// Screen-metric indices used for fullscreen magnifier sizing.
const (
	SMCxScreen int32 = 0
	SMCyScreen int32 = 1
)

// GetCursorPos returns the current screen-space pointer location.
func GetCursorPos() (POINT, bool) {
	var p POINT
	r, _, _ := procGetCursorPos.Call(uintptr(unsafe.Pointer(&p)))
	return p, bool32(r)
}

func mathFloat32bits(f float32) uint32 {
	return *(*uint32)(unsafe.Pointer(&f))
}

// --- process creation (restart) ---

// STARTUPINFOW / PROCESS_INFORMATION trimmed to the fields CreateProcessW
// requires by pointer.
type startupInfoW struct {
	cb              uint32
	reserved1       *uint16
	desktop         *uint16
	title           *uint16
	x, y            uint32
	xSize, ySize    uint32
	xCountChars     uint32
	yCountChars     uint32
	fillAttr        uint32
	flags           uint32
	showWindow      uint16
	reserved2       uint16
	reserved3       uintptr
	stdInput        uintptr
	stdOutput       uintptr
	stdError        uintptr
}

type processInformation struct {
	process   uintptr
	thread    uintptr
	processID uint32
	threadID  uint32
}

const createNoWindow uint32 = 0x08000000
const detachedProcess uint32 = 0x00000008

// RestartSelf launches exePath args as a new detached process with no
// console window (used by the tray's Restart action).
func RestartSelf(exePath string, args string) error {
	var si startupInfoW
	si.cb = uint32(unsafe.Sizeof(si))
	var pi processInformation

	cmdLine := wide(`"` + exePath + `" ` + args)
	r, _, err := procCreateProcessW.Call(
		0, uintptr(unsafe.Pointer(cmdLine)), 0, 0, 0,
		uintptr(createNoWindow|detachedProcess), 0, 0,
		uintptr(unsafe.Pointer(&si)), uintptr(unsafe.Pointer(&pi)),
	)
	if r == 0 {
		return err
	}
	CloseHandle(pi.process)
	CloseHandle(pi.thread)
	return nil
}
