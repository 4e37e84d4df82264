package luminance

import "testing"

func TestAverageFromBGRAWhite(t *testing.T) {
	width, height := 8, 8
	stride := width * 4
	buf := make([]byte, stride*height)
	for i := range buf {
		buf[i] = 255
	}
	lum, ok := averageFromBGRA(buf, width, height, stride)
	if !ok {
		t.Fatal("expected successful sample")
	}
	if lum != 255 {
		t.Fatalf("expected pure white to average to 255, got %d", lum)
	}
}

func TestAverageFromBGRABlack(t *testing.T) {
	width, height := 8, 8
	stride := width * 4
	buf := make([]byte, stride*height)
	lum, ok := averageFromBGRA(buf, width, height, stride)
	if !ok {
		t.Fatal("expected successful sample")
	}
	if lum != 0 {
		t.Fatalf("expected pure black to average to 0, got %d", lum)
	}
}

func TestAverageFromBGRAEmptyBuffer(t *testing.T) {
	if _, ok := averageFromBGRA(nil, 8, 8, 32); ok {
		t.Fatal("expected failure on undersized buffer")
	}
}

func TestAverageFromBGRAZeroDims(t *testing.T) {
	if _, ok := averageFromBGRA([]byte{1, 2, 3, 4}, 0, 0, 0); ok {
		t.Fatal("expected failure on zero dimensions")
	}
}
