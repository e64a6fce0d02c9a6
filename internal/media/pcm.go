// Package media decodes podcast audio into the mono PCM waveform consumed by
// feature extraction. Decoding shells out to ffmpeg so every container and
// codec the system downloads is handled by one dependency.
package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultSampleRate matches the rate speech models expect.
const DefaultSampleRate = 16000

// Waveform holds decoded mono PCM samples in [-1, 1].
type Waveform struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the waveform length in seconds.
func (w Waveform) Duration() float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// Empty reports whether no samples were decoded.
func (w Waveform) Empty() bool {
	return len(w.Samples) == 0
}

// DecodePCM decodes one audio stream of the file at path to mono PCM at the
// requested rate. A negative streamIndex lets ffmpeg pick the default audio
// stream; otherwise the absolute container index is mapped explicitly.
func DecodePCM(ctx context.Context, ffmpegBinary, path string, streamIndex, sampleRate int) (Waveform, error) {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(path) == "" {
		return Waveform{}, errors.New("pcm decode: empty path")
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	cmd := exec.CommandContext(ctx, ffmpegBinary, decodeArgs(path, streamIndex, sampleRate)...) //nolint:gosec
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Waveform{}, fmt.Errorf("ffmpeg pcm decode: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return Waveform{Samples: samplesFromS16LE(stdout.Bytes()), SampleRate: sampleRate}, nil
}

func decodeArgs(path string, streamIndex, sampleRate int) []string {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", path,
	}
	if streamIndex >= 0 {
		args = append(args, "-map", fmt.Sprintf("0:%d", streamIndex))
	} else {
		args = append(args, "-vn", "-sn", "-dn")
	}
	args = append(args,
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-f", "s16le",
		"-",
	)
	return args
}

func samplesFromS16LE(data []byte) []float64 {
	count := len(data) / 2
	if count == 0 {
		return nil
	}
	samples := make([]float64, count)
	for i := 0; i < count; i++ {
		raw := int16(binary.LittleEndian.Uint16(data[2*i:]))
		samples[i] = float64(raw) / 32768.0
	}
	return samples
}
