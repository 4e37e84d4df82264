package handle

import "testing"

func TestHandleValidity(t *testing.T) {
	if Invalid.IsValid() {
		t.Fatal("zero handle must be invalid")
	}
	h := FromUintptr(0x1234)
	if !h.IsValid() {
		t.Fatal("non-zero handle must be valid")
	}
	if h.Uintptr() != 0x1234 {
		t.Fatalf("round trip mismatch: got %x", h.Uintptr())
	}
}

func TestAtomic(t *testing.T) {
	var a Atomic
	if a.IsValid() {
		t.Fatal("fresh atomic should be invalid")
	}
	h := FromUintptr(99)
	a.Store(h)
	if !a.Contains(h) {
		t.Fatal("expected stored handle to be contained")
	}
	a.Clear()
	if a.IsValid() {
		t.Fatal("expected clear to reset to invalid")
	}
}

func TestFlag(t *testing.T) {
	f := NewFlag(false)
	if f.IsSet() {
		t.Fatal("expected initial state false")
	}
	prior := f.Toggle()
	if prior != false || !f.IsSet() {
		t.Fatal("toggle did not flip state correctly")
	}
	prior = f.Swap(false)
	if prior != true || f.IsSet() {
		t.Fatal("swap did not report prior state / apply new state")
	}
}
