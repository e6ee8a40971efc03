package tts

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/reelmaker/reelmaker-backend/internal/config"
	"github.com/reelmaker/reelmaker-backend/pkg/execx"
)

// Engine turns narration text into a WAV file on disk.
type Engine interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

// NewEngine picks an implementation from config. "piper" reads text on
// stdin, "say" passes it as an argument; both write a WAV.
func NewEngine(cfg config.TTSConfig, runner *execx.Runner) (Engine, error) {
	switch strings.ToLower(cfg.Engine) {
	case "", "piper":
		bin := cfg.Bin
		if bin == "" {
			bin = "piper"
		}
		return &piperEngine{bin: bin, voice: cfg.Voice, runner: runner}, nil
	case "say":
		bin := cfg.Bin
		if bin == "" {
			bin = "say"
		}
		return &sayEngine{bin: bin, voice: cfg.Voice, runner: runner}, nil
	default:
		return nil, fmt.Errorf("unknown tts engine %q", cfg.Engine)
	}
}

type piperEngine struct {
	bin    string
	voice  string
	runner *execx.Runner
}

func (p *piperEngine) Synthesize(ctx context.Context, text, outPath string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("empty narration text")
	}
	args := []string{"--output_file", outPath}
	if p.voice != "" {
		args = append(args, "--model", p.voice)
	}
	if _, err := p.runner.RunInput(ctx, text, p.bin, args...); err != nil {
		return fmt.Errorf("piper synthesis failed: %w", err)
	}
	return checkOutput(outPath)
}

type sayEngine struct {
	bin    string
	voice  string
	runner *execx.Runner
}

func (s *sayEngine) Synthesize(ctx context.Context, text, outPath string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("empty narration text")
	}
	args := []string{"-o", outPath, "--data-format=LEF32@22050"}
	if s.voice != "" {
		args = append(args, "-v", s.voice)
	}
	args = append(args, text)
	if _, err := s.runner.Run(ctx, s.bin, args...); err != nil {
		return fmt.Errorf("say synthesis failed: %w", err)
	}
	return checkOutput(outPath)
}

func checkOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("tts produced no audio at %s", path)
	}
	return nil
}
