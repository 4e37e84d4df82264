//go:build windows

package gamma

import "testing"

func TestDefaultGBCRampIsLinear(t *testing.T) {
	ramp := DefaultGBC().Ramp()
	for i := 0; i < 256; i++ {
		want := uint16(i * 257) // i/255 scaled into [0, 65535]
		if ramp.Red[i] != want || ramp.Green[i] != want || ramp.Blue[i] != want {
			t.Fatalf("index %d: got (%d,%d,%d), want %d on every channel", i, ramp.Red[i], ramp.Green[i], ramp.Blue[i], want)
		}
	}
}

func TestRampIsMonotonicForGammaAboveOne(t *testing.T) {
	ramp := GBC{Gamma: 2.2, Bright: 0, Contrast: 1}.Ramp()
	for i := 1; i < 256; i++ {
		if ramp.Red[i] < ramp.Red[i-1] {
			t.Fatalf("expected a non-decreasing ramp, dropped at index %d", i)
		}
	}
}

func TestColorTempToRGBWarmerShiftsTowardRed(t *testing.T) {
	warm := ColorTempToRGB(3000)
	cool := ColorTempToRGB(9000)
	if warm[0] <= cool[0] {
		t.Fatalf("expected a warmer temperature to have a higher red channel, got warm=%v cool=%v", warm, cool)
	}
	if warm[2] >= cool[2] {
		t.Fatalf("expected a warmer temperature to have a lower blue channel, got warm=%v cool=%v", warm, cool)
	}
}

func TestApplyColorTempAtStandardIsNearIdentity(t *testing.T) {
	ramp := DefaultGBC().Ramp()
	before := ramp
	ApplyColorTempToRamp(&ramp, 6500)
	if ramp.Red[255] != before.Red[255] {
		t.Fatalf("expected the standard white point to leave the top of the red channel unchanged, got %d want %d", ramp.Red[255], before.Red[255])
	}
}

func TestCalcRampClampsIntoRange(t *testing.T) {
	ramp := CalcRamp(GBC{Gamma: 0.3, Bright: 1.0, Contrast: 100}, 2000)
	for i := 0; i < 256; i++ {
		if ramp.Red[i] > 65535 || ramp.Green[i] > 65535 || ramp.Blue[i] > 65535 {
			t.Fatalf("index %d exceeded the 16-bit range", i)
		}
	}
}
