//go:build windows

// Package gamma implements the whole-screen device gamma ramp: a
// gamma/brightness/contrast curve blended with a Kelvin color temperature,
// installed via the OS device gamma ramp API. Independent of the 5x5
// color-matrix effects used by the overlay/full-screen/magnifier systems.
package gamma

import (
	"math"

	"github.com/yakrider/WinDusky/winapi"
)

// GBC is a gamma/brightness/contrast curve. The zero value is not a usable
// default; use DefaultGBC.
type GBC struct {
	Gamma, Bright, Contrast float32
}

// DefaultGBC returns the identity curve (no change from a linear ramp).
func DefaultGBC() GBC { return GBC{Gamma: 1.0, Bright: 0.0, Contrast: 1.0} }

func clampF32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampU16(v float64) uint16 {
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return uint16(v)
}

// Ramp builds the 256-entry gamma ramp for this curve: contrast first
// (pivoting around mid-gray), then a gamma power curve, then brightness,
// scaled to the 16-bit range. The same value is written to all three
// (R=G=B) channels; color temperature is blended in separately by
// ApplyColorTempToRamp.
func (g GBC) Ramp() winapi.GammaRamp {
	gamma := clampF32(g.Gamma, 0.3, 4.4)
	bright := clampF32(g.Bright, -1.0, 1.0)
	contrast := clampF32(g.Contrast, 0.1, 100.0)

	invGamma := 1.0 / float64(gamma)
	norm := math.Pow(255, invGamma-1.0)

	var ramp winapi.GammaRamp
	for i := 0; i < 256; i++ {
		val := float64(i)*float64(contrast) - float64(contrast-1.0)*127.0
		if gamma != 1.0 {
			val = math.Pow(val, invGamma) / norm
		}
		val += float64(bright) * 128.0
		v := clampU16(math.Round(val * 257.0))
		ramp.Red[i] = v
		ramp.Green[i] = v
		ramp.Blue[i] = v
	}
	return ramp
}

// ColorTempToRGB converts a Kelvin value (clamped to [2000, 10000]) to an
// RGB triple in [0, 1], via the standard piecewise black-body
// approximation.
func ColorTempToRGB(kelvin uint32) [3]float32 {
	if kelvin < 2000 {
		kelvin = 2000
	}
	if kelvin > 10000 {
		kelvin = 10000
	}
	temp := float64(kelvin) / 100.0

	var r, g, b float64
	if temp <= 66 {
		r = 255
	} else {
		r = 329.698727446 * math.Pow(temp-60, -0.1332047592)
	}
	if temp <= 66 {
		g = 99.4708025861*math.Log(temp) - 161.1195681661
	} else {
		g = 288.1221695283 * math.Pow(temp-60, -0.0755148492)
	}
	switch {
	case temp >= 66:
		b = 255
	case temp <= 19:
		b = 0
	default:
		b = 138.5177312231*math.Log(temp-10) - 305.0447927307
	}

	clamp := func(v float64) float32 {
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		return float32(v / 255.0)
	}
	return [3]float32{clamp(r), clamp(g), clamp(b)}
}

// ApplyColorTempToRamp multiplies each channel of ramp by the target color
// temperature's RGB relative to the ramp's own assumed white point (6500K),
// clamping back into range.
func ApplyColorTempToRamp(ramp *winapi.GammaRamp, kelvin uint32) {
	std := ColorTempToRGB(6500)
	target := ColorTempToRGB(kelvin)

	scale := func(ch *[256]uint16, std, target float32) {
		mult := float64(target) / math.Max(float64(std), 1e-6)
		for i, v := range ch {
			ch[i] = clampU16(float64(v) * mult)
		}
	}
	scale(&ramp.Red, std[0], target[0])
	scale(&ramp.Green, std[1], target[1])
	scale(&ramp.Blue, std[2], target[2])
}

// CalcRamp combines a GBC curve and a color temperature into one ramp.
func CalcRamp(gbc GBC, kelvin uint32) winapi.GammaRamp {
	ramp := gbc.Ramp()
	ApplyColorTempToRamp(&ramp, kelvin)
	return ramp
}

// SetScreenRamp installs ramp on the whole screen's device context.
func SetScreenRamp(ramp *winapi.GammaRamp) bool {
	hdc := winapi.GetDC(0)
	if hdc == 0 {
		return false
	}
	defer winapi.ReleaseDC(0, hdc)
	return winapi.SetDeviceGammaRamp(hdc, ramp)
}

// ScreenRamp reads back the ramp currently installed on the whole screen.
func ScreenRamp() (winapi.GammaRamp, bool) {
	hdc := winapi.GetDC(0)
	if hdc == 0 {
		return winapi.GammaRamp{}, false
	}
	defer winapi.ReleaseDC(0, hdc)
	return winapi.GetDeviceGammaRamp(hdc)
}
