package pipeline

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/reelmaker/reelmaker-backend/internal/config"
	"github.com/reelmaker/reelmaker-backend/internal/media"
	"github.com/reelmaker/reelmaker-backend/internal/models"
	"github.com/reelmaker/reelmaker-backend/pkg/logger"

	"github.com/google/uuid"
)

const (
	watermarkScale  = "scale=260:-2"
	watermarkMargin = 40
	textMarginX     = 60
	textMarginY     = 200
	textMaxX        = 860
	textMaxY        = 1400
)

// OverlayConfig is everything the video filter graph needs besides the
// input streams.
type OverlayConfig struct {
	CanvasWidth    int
	CanvasHeight   int
	FlipH          bool
	FlipV          bool
	WatermarkPath  string
	WatermarkAlpha float64
	ChannelName    string
	FontFile       string
	TextX          string
	TextY          string
	DrawTextOK     bool
}

// Renderer drives ffmpeg for cutting, overlaying and concatenating.
type Renderer struct {
	media  *media.Toolbox
	cfg    config.MediaConfig
	logger logger.Logger
	rng    *rand.Rand
}

func NewRenderer(toolbox *media.Toolbox, cfg config.MediaConfig, log logger.Logger) *Renderer {
	return &Renderer{
		media:  toolbox,
		cfg:    cfg,
		logger: log,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// BuildOverlayConfig resolves an OverlayConfig from job options,
// probing filter availability once per process.
func (r *Renderer) BuildOverlayConfig(ctx context.Context, opts Options, channelName string) OverlayConfig {
	cfg := OverlayConfig{
		CanvasWidth:    opts.CanvasWidth,
		CanvasHeight:   opts.CanvasHeight,
		FlipH:          opts.FlipH,
		FlipV:          opts.FlipV,
		WatermarkAlpha: 0.55,
		FontFile:       r.cfg.FontFile,
	}
	if opts.Watermark && r.cfg.WatermarkPath != "" {
		cfg.WatermarkPath = r.cfg.WatermarkPath
	}
	if opts.ChannelText != "" && opts.ChannelText != "none" && channelName != "" {
		cfg.DrawTextOK = r.media.HasFilter(ctx, "drawtext")
		if cfg.DrawTextOK {
			cfg.ChannelName = channelName
			if opts.ChannelText == "fixed" {
				cfg.TextX = "(w-text_w)/2"
				cfg.TextY = "h-300"
			} else {
				x := textMarginX + r.rng.Intn(textMaxX-textMarginX)
				y := textMarginY + r.rng.Intn(textMaxY-textMarginY)
				cfg.TextX = fmt.Sprintf("%d", x)
				cfg.TextY = fmt.Sprintf("%d", y)
			}
		}
	}
	return cfg
}

// BuildOverlayFilter renders the video filter graph: scale and pad onto
// the canvas, optional flips, watermark and channel-name text. The
// returned graph maps the main input as [0:v] and the watermark, when
// present, as [1:v]; output is labeled [vout].
func BuildOverlayFilter(cfg OverlayConfig) string {
	var stages []string
	stages = append(stages, fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		cfg.CanvasWidth, cfg.CanvasHeight, cfg.CanvasWidth, cfg.CanvasHeight,
	))
	if cfg.FlipH {
		stages = append(stages, "hflip")
	}
	if cfg.FlipV {
		stages = append(stages, "vflip")
	}

	graph := fmt.Sprintf("[0:v]%s[base]", strings.Join(stages, ","))
	last := "base"

	if cfg.WatermarkPath != "" {
		graph += fmt.Sprintf(
			";[1:v]%s,format=argb,colorchannelmixer=aa=%.2f[wm];[%s][wm]overlay=W-w-%d:H-h-%d[wmd]",
			watermarkScale, cfg.WatermarkAlpha, last, watermarkMargin, watermarkMargin,
		)
		last = "wmd"
	}

	if cfg.ChannelName != "" && cfg.DrawTextOK {
		text := strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`).Replace(cfg.ChannelName)
		draw := fmt.Sprintf(
			"drawtext=text='%s':x=%s:y=%s:fontsize=42:fontcolor=white:borderw=2:bordercolor=black",
			text, cfg.TextX, cfg.TextY,
		)
		if cfg.FontFile != "" {
			draw += fmt.Sprintf(":fontfile='%s'", cfg.FontFile)
		}
		graph += fmt.Sprintf(";[%s]%s[vout]", last, draw)
	} else {
		graph += fmt.Sprintf(";[%s]null[vout]", last)
	}
	return graph
}

// PickAudioMode chooses how scene cuts carry audio: stream-copy is only
// safe for AAC sources and only when configured; everything else gets
// re-encoded, and a silent source drops the audio track entirely.
func PickAudioMode(info media.AudioInfo, preferCopy bool) string {
	if !info.HasAudio {
		return "none"
	}
	if preferCopy && info.Codec == "aac" {
		return "copy"
	}
	return "aac"
}

// BuildAudioArgs maps an audio mode to ffmpeg output arguments for a
// scene cut; re-encoded audio resets timestamps so cuts start clean.
func BuildAudioArgs(mode string) []string {
	switch mode {
	case "none":
		return []string{"-an"}
	case "copy":
		return []string{"-c:a", "copy"}
	default:
		return []string{
			"-af", "asetpts=PTS-STARTPTS,aresample=48000",
			"-c:a", "aac", "-b:a", "192k", "-ac", "2",
		}
	}
}

// CutScene extracts one scene into a standalone clip with the overlay
// graph applied.
func (r *Renderer) CutScene(ctx context.Context, inPath, outPath string, scene models.SceneCandidate, overlay OverlayConfig, audioMode string) error {
	args := []string{
		"-y",
		"-ss", fmt.Sprintf("%.3f", scene.StartSec),
		"-to", fmt.Sprintf("%.3f", scene.EndSec),
		"-i", inPath,
	}
	if overlay.WatermarkPath != "" {
		args = append(args, "-i", overlay.WatermarkPath)
	}
	args = append(args,
		"-filter_complex", BuildOverlayFilter(overlay),
		"-map", "[vout]",
	)
	if audioMode != "none" {
		args = append(args, "-map", "0:a?")
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
	)
	args = append(args, BuildAudioArgs(audioMode)...)
	args = append(args, outPath)
	return r.media.Run(ctx, args...)
}

// ConcatClips joins clips losslessly through the concat demuxer and
// atomically moves the result into place.
func (r *Renderer) ConcatClips(ctx context.Context, clips []string, outPath string) error {
	if len(clips) == 0 {
		return fmt.Errorf("no clips to concatenate")
	}
	listPath := outPath + ".files.txt"
	var list strings.Builder
	for _, clip := range clips {
		abs, err := filepath.Abs(clip)
		if err != nil {
			return fmt.Errorf("resolve clip path: %w", err)
		}
		fmt.Fprintf(&list, "file '%s'\n", abs)
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	defer os.Remove(listPath)

	tmpPath := outPath + ".tmp.mp4"
	err := r.media.Run(ctx,
		"-y",
		"-fflags", "+genpts",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-movflags", "+faststart",
		tmpPath,
	)
	if err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, outPath)
}

// BurnSubtitles renders an SRT file into the video stream.
func (r *Renderer) BurnSubtitles(ctx context.Context, inPath, srtPath, outPath string) error {
	if !r.media.HasFilter(ctx, "subtitles") {
		r.logger.Warnf("ffmpeg build has no subtitles filter, skipping burn-in")
		return copyFile(inPath, outPath)
	}
	tmpPath := outPath + ".tmp.mp4"
	err := r.media.Run(ctx,
		"-y",
		"-i", inPath,
		"-vf", fmt.Sprintf("subtitles='%s':force_style='Fontsize=18,Outline=1,Shadow=0,Alignment=2'", escapeFilterPath(srtPath)),
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "23",
		"-c:a", "copy",
		tmpPath,
	)
	if err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, outPath)
}

// MakeOutputFilename builds a stable, collision-free output name.
func MakeOutputFilename(projectID uuid.UUID, kind models.OutputKind, sceneIndex int) string {
	short := strings.ReplaceAll(projectID.String(), "-", "")[:12]
	if sceneIndex > 0 {
		return fmt.Sprintf("%s_%s_scene%02d.mp4", short, kind, sceneIndex)
	}
	return fmt.Sprintf("%s_%s.mp4", short, kind)
}

func escapeFilterPath(path string) string {
	return strings.NewReplacer(`\`, `/`, `:`, `\:`, `'`, `\'`).Replace(path)
}

// copyFile streams src into dst via a temp file so a crash mid-copy
// never leaves a partial file at the destination.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmpPath := dst + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return err
	}
	if err = out.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, dst)
}
