package render

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/alexanderwanyoike/forgecut/internal/config"
	"github.com/alexanderwanyoike/forgecut/internal/logging"
	"github.com/alexanderwanyoike/forgecut/internal/timeline"
)

// Runner drives the ffmpeg and ffprobe binaries.
type Runner struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
	threads     int
}

// NewRunner resolves the configured binaries on PATH.
func NewRunner(logger zerolog.Logger, cfg *config.Config) (*Runner, error) {
	ffmpegPath, err := exec.LookPath(cfg.FFmpeg.BinaryPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not in PATH", ErrFFmpegNotFound, cfg.FFmpeg.BinaryPath)
	}

	ffprobePath, err := exec.LookPath(cfg.FFmpeg.FFprobePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not in PATH", ErrFFmpegNotFound, cfg.FFmpeg.FFprobePath)
	}

	return &Runner{
		logger:      logging.WithComponent(logger, "render"),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		threads:     cfg.FFmpeg.Threads,
	}, nil
}

// Progress is one parsed ffmpeg status update.
type Progress struct {
	Percent    float64  `json:"percent"`
	Frame      int64    `json:"frame"`
	FPS        float64  `json:"fps"`
	Speed      string   `json:"speed"`
	ETASeconds *float64 `json:"eta_seconds,omitempty"`
}

// ProgressSink is a latest-value conduit between the render goroutine and a
// polling consumer. Publishing never blocks; a slow consumer only ever sees
// the most recent update.
type ProgressSink struct {
	ch chan Progress
}

func NewProgressSink() *ProgressSink {
	return &ProgressSink{ch: make(chan Progress, 1)}
}

// Publish replaces any unconsumed update with p.
func (s *ProgressSink) Publish(p Progress) {
	for {
		select {
		case s.ch <- p:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

// Updates yields progress values as they arrive. The channel is closed when
// the producing render finishes.
func (s *ProgressSink) Updates() <-chan Progress {
	return s.ch
}

func (s *ProgressSink) close() {
	close(s.ch)
}

// Execute runs a compiled plan. Progress parsed from ffmpeg's stderr is
// published to sink (may be nil); totalDuration is the timeline length used
// to turn the transcode position into a percentage.
func (r *Runner) Execute(ctx context.Context, plan *Plan, sink *ProgressSink, totalDuration timeline.TimeUs) error {
	if sink != nil {
		defer sink.close()
	}

	args := []string{}
	if r.threads > 0 {
		args = append(args, "-threads", strconv.Itoa(r.threads))
	}
	args = append(args, BuildArgs(plan)...)

	r.logger.Debug().
		Str("output", plan.OutputPath).
		Int("inputs", len(plan.Inputs)).
		Strs("args", args).
		Msg("executing render")

	cmd := exec.CommandContext(ctx, r.ffmpegPath, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %v", ErrFFmpegNotFound, err)
		}
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	totalSecs := totalDuration.Seconds()
	scanner := bufio.NewScanner(stderr)
	scanner.Split(scanStatusLines)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if p := ParseProgress(line, totalSecs); p != nil && sink != nil {
			sink.Publish(*p)
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrFFmpegFailed, err)
	}

	r.logger.Debug().Str("output", plan.OutputPath).Msg("render completed")
	return nil
}

// scanStatusLines splits on both \r and \n: ffmpeg rewrites its status line
// with carriage returns, so a plain line scanner would buffer the whole run.
func scanStatusLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// ParseProgress parses an ffmpeg stderr status line, e.g.
//
//	frame=  123 fps= 60 q=28.0 size= 1024kB time=00:01:02.05 speed=1.50x
//
// Returns nil for lines that carry no time= field.
func ParseProgress(line string, totalSecs float64) *Progress {
	if !strings.Contains(line, "time=") {
		return nil
	}

	var p Progress
	if v, ok := extractValue(line, "frame="); ok {
		p.Frame, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := extractValue(line, "fps="); ok {
		p.FPS, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := extractValue(line, "speed="); ok {
		p.Speed = v
	}

	var timeSecs float64
	if v, ok := extractValue(line, "time="); ok {
		timeSecs, _ = parseTimeString(v)
	}

	if totalSecs > 0 {
		p.Percent = timeSecs / totalSecs * 100
		if p.Percent > 100 {
			p.Percent = 100
		}
	}

	speedFactor, _ := strconv.ParseFloat(strings.TrimSuffix(p.Speed, "x"), 64)
	if speedFactor > 0 && totalSecs > timeSecs {
		eta := (totalSecs - timeSecs) / speedFactor
		p.ETASeconds = &eta
	}

	return &p
}

// extractValue pulls the value following key in a status line, skipping the
// padding spaces ffmpeg inserts after '='.
func extractValue(line, key string) (string, bool) {
	i := strings.Index(line, key)
	if i < 0 {
		return "", false
	}
	rest := strings.TrimLeft(line[i+len(key):], " ")
	if j := strings.IndexFunc(rest, func(r rune) bool { return r == ' ' || r == '\t' }); j >= 0 {
		rest = rest[:j]
	}
	if rest == "" {
		return "", false
	}
	return rest, true
}

// parseTimeString converts an ffmpeg "HH:MM:SS.ss" timestamp to seconds.
func parseTimeString(s string) (float64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}
	hours, err1 := strconv.ParseFloat(parts[0], 64)
	mins, err2 := strconv.ParseFloat(parts[1], 64)
	secs, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return hours*3600 + mins*60 + secs, true
}
