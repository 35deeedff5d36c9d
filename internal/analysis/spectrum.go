package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/clothsim/internal/dynamo"
)

// Series extracts one coordinate of particle index from every frame.
// Frames that do not contain the particle are skipped.
func Series(frames []dynamo.Frame, index int, y bool) []float64 {
	out := make([]float64, 0, len(frames))
	for _, f := range frames {
		if index < 0 || index >= len(f.Positions) {
			continue
		}
		p := f.Positions[index]
		if y {
			out = append(out, p.Y)
		} else {
			out = append(out, p.X)
		}
	}
	return out
}

// PowerSpectrum returns the magnitude of the first half of the DFT of data
// after removing its mean.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centred := make([]float64, len(data))
	for i, v := range data {
		centred[i] = v - mean
	}

	spectrum := fft.FFTReal(centred)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// SwaySpectrum is the power spectrum of the horizontal motion of one
// particle across the recorded frames.
func SwaySpectrum(frames []dynamo.Frame, index int) []float64 {
	return PowerSpectrum(Series(frames, index, false))
}

// DominantFrequency finds the strongest bin above DC and converts it to a
// frequency given the spacing between samples. It returns zeros when the
// series is too short or flat.
func DominantFrequency(data []float64, sampleInterval float64) (freq, power float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || sampleInterval <= 0 {
		return 0, 0
	}

	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	if ps[best] == 0 {
		return 0, 0
	}
	return float64(best) / (float64(len(data)) * sampleInterval), ps[best]
}
