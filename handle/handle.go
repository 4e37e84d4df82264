// Package handle provides the small comparable/atomic primitives that the
// rest of WinDusky builds on: a hashable window-handle value, an atomic box
// for it, and a lock-free boolean flag.
package handle

import "sync/atomic"

// Handle is a process-wide-unique window identifier. The zero value is
// invalid and never refers to a real window.
type Handle int64

// Invalid is the distinguished zero handle.
const Invalid Handle = 0

// IsValid reports whether h could plausibly identify a live window.
func (h Handle) IsValid() bool { return h != Invalid }

// FromUintptr converts a raw HWND value (as returned by a syscall) to a Handle.
func FromUintptr(hwnd uintptr) Handle { return Handle(hwnd) }

// Uintptr converts back to the raw HWND representation for syscalls.
func (h Handle) Uintptr() uintptr { return uintptr(h) }

// Atomic is a lock-free box for a Handle, safe for concurrent load/store
// from multiple goroutines. It is not a synchronization primitive beyond
// that: callers needing a consistent read-modify-write must serialize
// externally (the manager thread is the only writer for overlay-owned
// handles).
type Atomic struct {
	v atomic.Int64
}

// Load returns the current handle.
func (a *Atomic) Load() Handle { return Handle(a.v.Load()) }

// Store sets the current handle.
func (a *Atomic) Store(h Handle) { a.v.Store(int64(h)) }

// Clear resets to Invalid.
func (a *Atomic) Clear() { a.Store(Invalid) }

// Contains reports whether the stored handle equals h.
func (a *Atomic) Contains(h Handle) bool { return a.Load() == h }

// IsValid reports whether the stored handle is non-zero.
func (a *Atomic) IsValid() bool { return a.Load().IsValid() }

// Flag is a lock-free atomic boolean used for mode/state flags that do not
// need map-like locking. Acquire/release semantics are provided by the
// standard atomic.Bool underneath.
type Flag struct {
	v atomic.Bool
}

// NewFlag builds a Flag with the given initial state.
func NewFlag(state bool) *Flag {
	f := &Flag{}
	f.v.Store(state)
	return f
}

// Set marks the flag true.
func (f *Flag) Set() { f.v.Store(true) }

// Clear marks the flag false.
func (f *Flag) Clear() { f.v.Store(false) }

// Store sets the flag to the given state.
func (f *Flag) Store(state bool) { f.v.Store(state) }

// IsSet reports whether the flag is currently true.
func (f *Flag) IsSet() bool { return f.v.Load() }

// IsClear reports whether the flag is currently false.
func (f *Flag) IsClear() bool { return !f.v.Load() }

// Toggle flips the flag and returns the prior state.
func (f *Flag) Toggle() bool {
	for {
		old := f.v.Load()
		if f.v.CompareAndSwap(old, !old) {
			return old
		}
	}
}

// Swap stores the new state and returns the prior one.
func (f *Flag) Swap(state bool) bool { return f.v.Swap(state) }
