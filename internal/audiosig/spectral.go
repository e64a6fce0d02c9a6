package audiosig

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	fftSize       = 1024
	fftHop        = 512
	numMelFilters = 26
	logFloor      = 1e-10
)

// spectralAnalyzer computes centroid, roll-off, and MFCC coefficients for one
// frame at a time. Scratch buffers are reused across calls, so an analyzer is
// not safe for concurrent use; extraction is a single linear pass anyway.
type spectralAnalyzer struct {
	sampleRate int
	fft        *fourier.FFT
	hann       []float64
	binFreq    []float64
	melBank    [][]float64
	dctBasis   [][]float64

	buf    []float64
	coeffs []complex128
	mags   []float64
	power  []float64
	logMel []float64
}

func newSpectralAnalyzer(sampleRate int) *spectralAnalyzer {
	bins := fftSize/2 + 1
	a := &spectralAnalyzer{
		sampleRate: sampleRate,
		fft:        fourier.NewFFT(fftSize),
		hann:       hannWindow(fftSize),
		binFreq:    make([]float64, bins),
		buf:        make([]float64, fftSize),
		coeffs:     make([]complex128, bins),
		mags:       make([]float64, bins),
		power:      make([]float64, bins),
		logMel:     make([]float64, numMelFilters),
	}
	for k := range a.binFreq {
		a.binFreq[k] = float64(k) * float64(sampleRate) / fftSize
	}
	a.melBank = melFilterBank(numMelFilters, a.binFreq, float64(sampleRate)/2)
	a.dctBasis = dctIIBasis(MFCCCount, numMelFilters)
	return a
}

// analyze averages short FFT chunks across the frame and derives the spectral
// features from the averaged spectrum.
func (a *spectralAnalyzer) analyze(window []float64) (centroid, rolloff float64, mfcc []float64) {
	for k := range a.mags {
		a.mags[k] = 0
		a.power[k] = 0
	}

	chunks := 0
	for offset := 0; offset+fftSize <= len(window); offset += fftHop {
		a.accumulateChunk(window[offset : offset+fftSize])
		chunks++
	}
	if chunks == 0 {
		// Frame shorter than the FFT size: analyze one zero-padded chunk.
		for i := range a.buf {
			a.buf[i] = 0
		}
		copy(a.buf, window)
		a.accumulateSpectrum()
		chunks = 1
	}

	totalMag := 0.0
	weighted := 0.0
	for k, mag := range a.mags {
		totalMag += mag
		weighted += mag * a.binFreq[k]
	}
	if totalMag > 0 {
		centroid = weighted / totalMag
		target := 0.85 * totalMag
		cumulative := 0.0
		for k, mag := range a.mags {
			cumulative += mag
			if cumulative >= target {
				rolloff = a.binFreq[k]
				break
			}
		}
	}

	mfcc = make([]float64, MFCCCount)
	scale := 1.0 / float64(chunks)
	for m, filter := range a.melBank {
		energy := 0.0
		for k, weight := range filter {
			if weight != 0 {
				energy += weight * a.power[k] * scale
			}
		}
		a.logMel[m] = math.Log(math.Max(energy, logFloor))
	}
	for k, basis := range a.dctBasis {
		sum := 0.0
		for m, cos := range basis {
			sum += cos * a.logMel[m]
		}
		mfcc[k] = sum
	}
	return centroid, rolloff, mfcc
}

func (a *spectralAnalyzer) accumulateChunk(chunk []float64) {
	for i, sample := range chunk {
		a.buf[i] = sample * a.hann[i]
	}
	a.accumulateSpectrum()
}

func (a *spectralAnalyzer) accumulateSpectrum() {
	a.fft.Coefficients(a.coeffs, a.buf)
	for k, c := range a.coeffs {
		re, im := real(c), imag(c)
		p := re*re + im*im
		a.power[k] += p
		a.mags[k] += math.Sqrt(p)
	}
}

func hannWindow(n int) []float64 {
	window := make([]float64, n)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n)))
	}
	return window
}

func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

// melFilterBank builds triangular filters evaluated at each FFT bin center.
func melFilterBank(filters int, binFreq []float64, maxHz float64) [][]float64 {
	edges := make([]float64, filters+2)
	melMax := hzToMel(maxHz)
	for i := range edges {
		edges[i] = melToHz(melMax * float64(i) / float64(filters+1))
	}

	bank := make([][]float64, filters)
	for m := 0; m < filters; m++ {
		left, center, right := edges[m], edges[m+1], edges[m+2]
		filter := make([]float64, len(binFreq))
		for k, freq := range binFreq {
			switch {
			case freq <= left || freq >= right:
			case freq <= center:
				if center > left {
					filter[k] = (freq - left) / (center - left)
				}
			default:
				if right > center {
					filter[k] = (right - freq) / (right - center)
				}
			}
		}
		bank[m] = filter
	}
	return bank
}

// dctIIBasis returns the orthonormal DCT-II rows used to decorrelate log-mel
// energies into cepstral coefficients.
func dctIIBasis(coeffs, filters int) [][]float64 {
	basis := make([][]float64, coeffs)
	for k := 0; k < coeffs; k++ {
		row := make([]float64, filters)
		alpha := math.Sqrt(2 / float64(filters))
		if k == 0 {
			alpha = math.Sqrt(1 / float64(filters))
		}
		for m := 0; m < filters; m++ {
			row[m] = alpha * math.Cos(math.Pi*float64(k)*(2*float64(m)+1)/(2*float64(filters)))
		}
		basis[k] = row
	}
	return basis
}
