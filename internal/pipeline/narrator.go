package pipeline

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/reelmaker/reelmaker-backend/internal/media"
	"github.com/reelmaker/reelmaker-backend/internal/models"
	"github.com/reelmaker/reelmaker-backend/internal/tts"
	"github.com/reelmaker/reelmaker-backend/pkg/logger"
)

// NarrationOracle is the language-model side of narration.
type NarrationOracle interface {
	NarrateScene(ctx context.Context, transcript, memory string, durationSec float64) (string, error)
	PlanStorySegments(ctx context.Context, chunk models.Chunk, count int, memory string) ([]models.StorySegment, error)
}

// Narrator synthesizes narration audio and fits it onto scenes.
type Narrator struct {
	oracle NarrationOracle
	engine tts.Engine
	media  *media.Toolbox
	logger logger.Logger
}

func NewNarrator(oracle NarrationOracle, engine tts.Engine, toolbox *media.Toolbox, log logger.Logger) *Narrator {
	return &Narrator{oracle: oracle, engine: engine, media: toolbox, logger: log}
}

// StoryMemory is the rolling context passed between narration calls,
// capped so prompts stay bounded on long videos.
type StoryMemory struct {
	text string
}

func (m *StoryMemory) Append(narration string) {
	narration = strings.TrimSpace(narration)
	if narration == "" {
		return
	}
	if m.text == "" {
		m.text = narration
	} else {
		m.text = m.text + " " + narration
	}
	if len(m.text) > storyMemoryChars {
		m.text = m.text[len(m.text)-storyMemoryChars:]
	}
}

func (m *StoryMemory) String() string { return m.text }

// NarrateScene produces narration text for a scene, falling back to
// the transcript itself when the oracle is unavailable.
func (n *Narrator) NarrateScene(ctx context.Context, scene models.SceneCandidate, items []models.TranscriptItem, memory *StoryMemory) string {
	transcript := sceneTranscript(items, scene.StartSec, scene.EndSec)
	narration, err := n.oracle.NarrateScene(ctx, transcript, memory.String(), scene.Duration())
	if err != nil {
		n.logger.Warnf("narration oracle failed, using transcript fallback: %v", err)
		narration = FallbackNarration(transcript, scene.Duration())
	}
	memory.Append(narration)
	return narration
}

// PlanStory asks for narrated segments per chunk, substituting evenly
// split fallback segments when the oracle fails.
func (n *Narrator) PlanStory(ctx context.Context, chunks []models.Chunk, opts Options) []models.StorySegment {
	var all []models.StorySegment
	memory := &StoryMemory{}
	for _, chunk := range chunks {
		segments, err := n.oracle.PlanStorySegments(ctx, chunk, opts.SegmentsPerChunk, memory.String())
		if err != nil || len(segments) == 0 {
			if err != nil {
				n.logger.Warnf("story oracle failed for chunk %d, using fallback segments: %v", chunk.Index, err)
			}
			segments = FallbackStorySegments(chunk)
		}
		for _, seg := range segments {
			memory.Append(seg.Narration)
		}
		all = append(all, segments...)
	}
	return all
}

// FallbackNarration trims the scene transcript down to the word budget
// the scene duration allows.
func FallbackNarration(transcript string, durationSec float64) string {
	words := strings.Fields(transcript)
	if len(words) == 0 {
		return "Here is a key moment from the video."
	}
	budget := TargetNarrationWords(durationSec)
	if budget < 1 {
		budget = 1
	}
	if len(words) > budget {
		words = words[:budget]
	}
	return strings.Join(words, " ")
}

// FallbackStorySegments splits a chunk span into even segments between
// the summary minimum and maximum lengths, narrated from the items that
// fall inside each segment.
func FallbackStorySegments(chunk models.Chunk) []models.StorySegment {
	span := chunk.EndSec - chunk.StartSec
	if span <= 0 {
		return nil
	}
	count := int(math.Ceil(span / summaryMaxSegSec))
	if count < 1 {
		count = 1
	}
	segLen := span / float64(count)
	if segLen < summaryMinSegSec && count > 1 {
		count--
		segLen = span / float64(count)
	}
	out := make([]models.StorySegment, 0, count)
	for i := 0; i < count; i++ {
		start := chunk.StartSec + float64(i)*segLen
		end := start + segLen
		if i == count-1 {
			end = chunk.EndSec
		}
		transcript := sceneTranscript(chunk.Items, start, end)
		out = append(out, models.StorySegment{
			StartSec:  start,
			EndSec:    end,
			Narration: FallbackNarration(transcript, end-start),
		})
	}
	return out
}

func sceneTranscript(items []models.TranscriptItem, start, end float64) string {
	var b strings.Builder
	for _, item := range items {
		if item.EndSec <= start || item.StartSec >= end {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(item.Text)
	}
	return b.String()
}

// AtempoChain decomposes a tempo factor into ffmpeg atempo stages, each
// within the filter's supported [0.5, 2.0] range.
func AtempoChain(factor float64) []string {
	var stages []string
	for factor > 2.0 {
		stages = append(stages, "atempo=2.0")
		factor /= 2.0
	}
	for factor < 0.5 {
		stages = append(stages, "atempo=0.5")
		factor /= 0.5
	}
	stages = append(stages, fmt.Sprintf("atempo=%.6f", factor))
	return stages
}

// FitFactor computes the tempo factor that fits inDur into targetDur,
// capped by the configured speedup and slowdown. trim reports whether
// the result must additionally be cut to targetDur (narration that is
// still too long after the capped speedup).
func FitFactor(inDur, targetDur float64, opts Options) (factor float64, trim bool) {
	if inDur <= 0 || targetDur <= 0 {
		return 1.0, false
	}
	ratio := inDur / targetDur
	if ratio >= 1 {
		maxSpeedup := math.Max(1, opts.MaxSpeedup)
		return math.Min(ratio, maxSpeedup), true
	}
	minSlowdown := math.Max(0.5, opts.MinSlowdown)
	return math.Max(ratio, minSlowdown), false
}

// FitTTS time-fits a synthesized WAV into targetDur and renders it as
// 48 kHz stereo, ready for mixing.
func (n *Narrator) FitTTS(ctx context.Context, inPath, outPath string, targetDur float64, opts Options) error {
	inDur, err := n.media.ProbeDuration(ctx, inPath)
	if err != nil {
		return err
	}
	factor, trim := FitFactor(inDur, targetDur, opts)
	filters := AtempoChain(factor)
	if trim {
		filters = append(filters, fmt.Sprintf("atrim=0:%.3f", targetDur))
	}
	filters = append(filters, "aresample=48000")
	return n.media.Run(ctx,
		"-y",
		"-i", inPath,
		"-filter:a", strings.Join(filters, ","),
		"-ac", "2",
		outPath,
	)
}

// BuildDuckFilter returns the filter_complex that plays narration over
// the original audio, ducking the original while narration runs.
func BuildDuckFilter(ttsDur float64, opts Options) string {
	fadeOutStart := ttsDur - opts.TTSFadeSec
	if fadeOutStart < 0 {
		fadeOutStart = 0
	}
	return fmt.Sprintf(
		"[1:a]afade=t=in:st=0:d=%.2f,afade=t=out:st=%.3f:d=%.2f[tts];"+
			"[0:a]volume='if(lt(t,%.3f),%.2f,1.0)':eval=frame[bg];"+
			"[bg][tts]amix=inputs=2:duration=first[aout]",
		opts.TTSFadeSec, fadeOutStart, opts.TTSFadeSec, ttsDur, opts.DuckVolume,
	)
}

// MixDuck overlays fitted narration onto a clip, keeping the original
// audio at the duck volume while the narration plays.
func (n *Narrator) MixDuck(ctx context.Context, videoIn, ttsWav, outPath string, opts Options) error {
	ttsDur, err := n.media.ProbeDuration(ctx, ttsWav)
	if err != nil {
		return err
	}
	return n.media.Run(ctx,
		"-y",
		"-i", videoIn,
		"-i", ttsWav,
		"-filter_complex", BuildDuckFilter(ttsDur, opts),
		"-map", "0:v",
		"-map", "[aout]",
		"-c:v", "copy",
		"-c:a", "aac", "-b:a", "192k",
		outPath,
	)
}

// MuxReplace swaps a clip's audio for the narration track.
func (n *Narrator) MuxReplace(ctx context.Context, videoIn, ttsWav, outPath string) error {
	return n.media.Run(ctx,
		"-y",
		"-i", videoIn,
		"-i", ttsWav,
		"-map", "0:v",
		"-map", "1:a",
		"-c:v", "copy",
		"-c:a", "aac", "-b:a", "192k",
		"-shortest",
		outPath,
	)
}

// Synthesize renders narration text to a fitted WAV inside workDir and
// returns its path.
func (n *Narrator) Synthesize(ctx context.Context, narration string, targetDur float64, workDir, name string, opts Options) (string, error) {
	rawPath := filepath.Join(workDir, name+"_raw.wav")
	fitPath := filepath.Join(workDir, name+".wav")
	if err := n.engine.Synthesize(ctx, narration, rawPath); err != nil {
		return "", err
	}
	if err := n.FitTTS(ctx, rawPath, fitPath, targetDur, opts); err != nil {
		return "", err
	}
	return fitPath, nil
}
