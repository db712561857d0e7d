package render

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// WaveformData holds min/max peak pairs for drawing an audio waveform.
type WaveformData struct {
	Peaks          [][2]float32 `json:"peaks"`
	SampleRate     int          `json:"sample_rate"`
	SamplesPerPeak int          `json:"samples_per_peak"`
}

const waveformSampleRate = 8000

// ExtractWaveform decodes an asset's audio to 8kHz mono PCM and reduces it to
// per-window min/max peaks. Results are cached as JSON under
// <cacheDir>/<assetID>.json.
func (r *Runner) ExtractWaveform(ctx context.Context, sourcePath, cacheDir, assetID string, samplesPerPeak int) (*WaveformData, error) {
	cachePath := filepath.Join(cacheDir, assetID+".json")

	if raw, err := os.ReadFile(cachePath); err == nil {
		var data WaveformData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to parse cached waveform: %w", err)
		}
		return &data, nil
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create waveform cache: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.ffmpegPath,
		"-i", sourcePath,
		"-f", "s16le",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", waveformSampleRate),
		"-acodec", "pcm_s16le",
		"-",
	)
	pcm, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: waveform extraction for %s: %v", ErrFFmpegFailed, sourcePath, err)
	}

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}

	data := &WaveformData{
		Peaks:          computePeaks(samples, samplesPerPeak),
		SampleRate:     waveformSampleRate,
		SamplesPerPeak: samplesPerPeak,
	}

	if raw, err := json.Marshal(data); err == nil {
		// Cache write failures are non-fatal; the peaks are already computed.
		_ = os.WriteFile(cachePath, raw, 0644)
	}

	return data, nil
}

func computePeaks(samples []int16, samplesPerPeak int) [][2]float32 {
	peaks := make([][2]float32, 0, (len(samples)+samplesPerPeak-1)/samplesPerPeak)
	for i := 0; i < len(samples); i += samplesPerPeak {
		end := i + samplesPerPeak
		if end > len(samples) {
			end = len(samples)
		}
		var min, max int16
		for j, s := range samples[i:end] {
			if j == 0 || s < min {
				min = s
			}
			if j == 0 || s > max {
				max = s
			}
		}
		peaks = append(peaks, [2]float32{float32(min) / 32768.0, float32(max) / 32768.0})
	}
	return peaks
}
