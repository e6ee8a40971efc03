package stt

import (
	"context"
	"fmt"
	"os"

	"github.com/reelmaker/reelmaker-backend/internal/config"
	"github.com/reelmaker/reelmaker-backend/pkg/execx"
)

// Transcriber produces an SRT transcript from a mono 16 kHz WAV file.
type Transcriber interface {
	TranscribeToSRT(ctx context.Context, wavPath, outPrefix string) (string, error)
}

type whisperCLI struct {
	bin       string
	modelPath string
	runner    *execx.Runner
}

func NewWhisper(cfg config.WhisperConfig, runner *execx.Runner) Transcriber {
	bin := cfg.Bin
	if bin == "" {
		bin = "whisper-cli"
	}
	return &whisperCLI{
		bin:       bin,
		modelPath: cfg.ModelPath,
		runner:    runner,
	}
}

// TranscribeToSRT runs whisper.cpp; the tool writes <outPrefix>.srt and
// the resulting path is returned.
func (w *whisperCLI) TranscribeToSRT(ctx context.Context, wavPath, outPrefix string) (string, error) {
	args := []string{}
	if w.modelPath != "" {
		args = append(args, "-m", w.modelPath)
	}
	args = append(args,
		"-f", wavPath,
		"-osrt",
		"-of", outPrefix,
	)
	if _, err := w.runner.Run(ctx, w.bin, args...); err != nil {
		return "", fmt.Errorf("whisper transcription failed: %w", err)
	}
	srtPath := outPrefix + ".srt"
	info, err := os.Stat(srtPath)
	if err != nil || info.Size() == 0 {
		return "", fmt.Errorf("whisper produced no transcript at %s", srtPath)
	}
	return srtPath, nil
}
