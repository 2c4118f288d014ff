package analysis

import (
	"errors"
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
)

var ErrTooFewSamples = errors.New("analysis: too few samples")

// PowerSpectrum returns the magnitude of the first half of the DFT of data
// after removing its mean. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// Peak is a local maximum of the power spectrum.
type Peak struct {
	Bin       int
	Frequency float64
	Period    float64
	Power     float64
}

// Peaks returns up to n local maxima of the spectrum of data, strongest
// first. interval is the time between samples. Bin positions are refined
// by parabolic interpolation.
func Peaks(data []float64, interval float64, n int) ([]Peak, error) {
	if len(data) < 4 {
		return nil, ErrTooFewSamples
	}
	ps := PowerSpectrum(data)
	total := float64(len(data)) * interval

	peaks := make([]Peak, 0)
	for k := 1; k < len(ps)-1; k++ {
		if ps[k] <= ps[k-1] || ps[k] < ps[k+1] {
			continue
		}
		bin := float64(k) + interpolate(ps[k-1], ps[k], ps[k+1])
		freq := bin / total
		peaks = append(peaks, Peak{Bin: k, Frequency: freq, Period: 1 / freq, Power: ps[k]})
	}

	sort.Slice(peaks, func(i, j int) bool { return peaks[i].Power > peaks[j].Power })
	if n > 0 && len(peaks) > n {
		peaks = peaks[:n]
	}
	return peaks, nil
}

// DominantPeriod is the period of the strongest spectral peak.
func DominantPeriod(data []float64, interval float64) (float64, error) {
	peaks, err := Peaks(data, interval, 1)
	if err != nil {
		return 0, err
	}
	if len(peaks) == 0 {
		return 0, ErrTooFewSamples
	}
	return peaks[0].Period, nil
}

func interpolate(a, b, c float64) float64 {
	den := a - 2*b + c
	if den == 0 {
		return 0
	}
	off := 0.5 * (a - c) / den
	if math.Abs(off) > 0.5 {
		return 0
	}
	return off
}
