package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns magnitudes of the positive-frequency half of
// the FFT of samples, Hann-windowed and zero-padded to a power of two.
func PowerSpectrum(samples []float64) []float64 {
	if len(samples) == 0 {
		return nil
	}

	n := 1
	for n < len(samples) {
		n *= 2
	}

	padded := make([]float64, n)
	for i, v := range samples {
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(len(samples)-1)))
		if len(samples) == 1 {
			window = 1
		}
		padded[i] = v * window
	}

	spectrum := fft.FFTReal(padded)

	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod estimates the period of the strongest oscillation in a
// uniformly sampled trace. Returns 0 when no nonzero-frequency peak
// stands out (fewer than 4 samples, or a flat signal).
func DominantPeriod(samples []float64, dt float64) float64 {
	if len(samples) < 4 || dt <= 0 {
		return 0
	}

	ps := PowerSpectrum(samples)

	// Skip the DC bin.
	maxPower, maxIdx := 0.0, 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower = ps[i]
			maxIdx = i
		}
	}
	if maxIdx == 0 || maxPower == 0 {
		return 0
	}

	n := 2 * len(ps) // padded length
	freq := float64(maxIdx) / (float64(n) * dt)
	return 1.0 / freq
}
