package media

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/reelmaker/reelmaker-backend/internal/config"
	"github.com/reelmaker/reelmaker-backend/pkg/execx"
)

// Toolbox wraps the ffmpeg and ffprobe binaries.
type Toolbox struct {
	ffmpegBin  string
	ffprobeBin string
	runner     *execx.Runner

	filtersOnce sync.Once
	filters     map[string]bool
}

func NewToolbox(cfg config.MediaConfig, runner *execx.Runner) *Toolbox {
	ffmpeg := cfg.FFmpegBin
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	ffprobe := cfg.FFprobeBin
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	return &Toolbox{
		ffmpegBin:  ffmpeg,
		ffprobeBin: ffprobe,
		runner:     runner,
	}
}

func (t *Toolbox) Run(ctx context.Context, args ...string) error {
	_, err := t.runner.Run(ctx, t.ffmpegBin, args...)
	return err
}

func (t *Toolbox) ProbeDuration(ctx context.Context, path string) (float64, error) {
	res, err := t.runner.Run(ctx, t.ffprobeBin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, err
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(res.Stdout), 64)
	if err != nil || dur <= 0 {
		return 0, fmt.Errorf("could not read duration of %s: %q", path, strings.TrimSpace(res.Stdout))
	}
	return dur, nil
}

// AudioInfo describes the first audio stream of a file.
type AudioInfo struct {
	HasAudio bool
	Codec    string
}

func (t *Toolbox) ProbeAudioInfo(ctx context.Context, path string) (AudioInfo, error) {
	res, err := t.runner.Run(ctx, t.ffprobeBin,
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=codec_name",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		// A file with no audio stream is not an error for us.
		return AudioInfo{}, nil
	}
	codec := strings.TrimSpace(res.Stdout)
	if codec == "" {
		return AudioInfo{}, nil
	}
	return AudioInfo{HasAudio: true, Codec: codec}, nil
}

// HasFilter reports whether the installed ffmpeg build ships the named
// filter. The filter list is probed once and cached.
func (t *Toolbox) HasFilter(ctx context.Context, name string) bool {
	t.filtersOnce.Do(func() {
		t.filters = make(map[string]bool)
		res, err := t.runner.Run(ctx, t.ffmpegBin, "-hide_banner", "-filters")
		if err != nil {
			return
		}
		for _, line := range strings.Split(res.Stdout, "\n") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				t.filters[fields[1]] = true
			}
		}
	})
	return t.filters[name]
}

// ExtractAudioPCM pulls mono 16 kHz PCM out of a video, the input
// format whisper.cpp expects.
func (t *Toolbox) ExtractAudioPCM(ctx context.Context, inPath, outPath string) error {
	return t.Run(ctx,
		"-y",
		"-i", inPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		outPath,
	)
}
