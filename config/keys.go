package config

import "github.com/yakrider/WinDusky/winapi"

// vkCodes maps the key names accepted in hotkey tables to their Windows
// virtual-key code. Names follow the same vocabulary as a standard VK-code
// reference: letters and digits by themselves, named keys by their common
// label (PgUp, CapsLock, LWin, Numpad_0, ...).
var vkCodes = map[string]uint32{
	"Back": 0x08, "Tab": 0x09, "Clear": 0x0C, "Return": 0x0D,
	"Shift": 0x10, "Ctrl": 0x11, "Alt": 0x12, "Pause": 0x13, "CapsLock": 0x14,
	"Escape": 0x1B, "Space": 0x20, "PgUp": 0x21, "PgDown": 0x22,
	"End": 0x23, "Home": 0x24, "Left": 0x25, "Up": 0x26, "Right": 0x27, "Down": 0x28,
	"Select": 0x29, "Print": 0x2A, "Execute": 0x2B, "Snapshot": 0x2C,
	"Insert": 0x2D, "Delete": 0x2E, "Help": 0x2F,

	"Numrow_0": 0x30, "Numrow_1": 0x31, "Numrow_2": 0x32, "Numrow_3": 0x33, "Numrow_4": 0x34,
	"Numrow_5": 0x35, "Numrow_6": 0x36, "Numrow_7": 0x37, "Numrow_8": 0x38, "Numrow_9": 0x39,

	"A": 0x41, "B": 0x42, "C": 0x43, "D": 0x44, "E": 0x45, "F": 0x46, "G": 0x47,
	"H": 0x48, "I": 0x49, "J": 0x4A, "K": 0x4B, "L": 0x4C, "M": 0x4D, "N": 0x4E,
	"O": 0x4F, "P": 0x50, "Q": 0x51, "R": 0x52, "S": 0x53, "T": 0x54, "U": 0x55,
	"V": 0x56, "W": 0x57, "X": 0x58, "Y": 0x59, "Z": 0x5A,

	"LWin": 0x5B, "RWin": 0x5C, "Apps": 0x5D, "Sleep": 0x5F,

	"Numpad_0": 0x60, "Numpad_1": 0x61, "Numpad_2": 0x62, "Numpad_3": 0x63, "Numpad_4": 0x64,
	"Numpad_5": 0x65, "Numpad_6": 0x66, "Numpad_7": 0x67, "Numpad_8": 0x68, "Numpad_9": 0x69,
	"Multiply": 0x6A, "Add": 0x6B, "Separator": 0x6C, "Subtract": 0x6D, "Decimal": 0x6E, "Divide": 0x6F,

	"F1": 0x70, "F2": 0x71, "F3": 0x72, "F4": 0x73, "F5": 0x74, "F6": 0x75,
	"F7": 0x76, "F8": 0x77, "F9": 0x78, "F10": 0x79, "F11": 0x7A, "F12": 0x7B,
	"F13": 0x7C, "F14": 0x7D, "F15": 0x7E, "F16": 0x7F, "F17": 0x80, "F18": 0x81,
	"F19": 0x82, "F20": 0x83, "F21": 0x84, "F22": 0x85, "F23": 0x86, "F24": 0x87,

	"NumLock": 0x90, "ScrollLock": 0x91,
	"LShift": 0xA0, "RShift": 0xA1, "LCtrl": 0xA2, "RCtrl": 0xA3, "LAlt": 0xA4, "RAlt": 0xA5,

	"SemiColon": 0xBA, "Equal": 0xBB, "Comma": 0xBC, "Minus": 0xBD,
	"Period": 0xBE, "Slash": 0xBF, "Backquote": 0xC0,
	"LBracket": 0xDB, "Backslash": 0xDC, "RBracket": 0xDD, "Quote": 0xDE,
}

// modNames maps hotkey modifier entries to their RegisterHotKey bitmask.
var modNames = map[string]uint32{
	"Alt": winapi.ModAlt, "LAlt": winapi.ModAlt, "RAlt": winapi.ModAlt,
	"Ctrl": winapi.ModControl, "LCtrl": winapi.ModControl, "RCtrl": winapi.ModControl,
	"Shift": winapi.ModShift, "LShift": winapi.ModShift, "RShift": winapi.ModShift,
	"LWin": winapi.ModWin, "RWin": winapi.ModWin, "Win": winapi.ModWin,
}

// vkCodeFor resolves a configured key name to its virtual-key code.
func vkCodeFor(name string) (uint32, bool) {
	vk, ok := vkCodes[name]
	return vk, ok
}

// modifierMaskFor ORs together the RegisterHotKey bitmask for a list of
// modifier key names, skipping any name that isn't a recognized modifier.
func modifierMaskFor(names []string) uint32 {
	var mask uint32
	for _, n := range names {
		mask |= modNames[n]
	}
	return mask
}
