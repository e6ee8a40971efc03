package pipeline

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/reelmaker/reelmaker-backend/internal/llm"
	"github.com/reelmaker/reelmaker-backend/internal/models"
)

const sceneSystemPrompt = `You are a video editor picking the strongest moments from a transcript.
Respond with JSON only, no prose, in this shape:
{"scenes":[{"start_sec":0,"end_sec":0,"score":0,"reason":""}]}
Scores range 0-100. Use only timestamps that appear in the transcript.`

const narrationSystemPrompt = `You write short spoken narration for video summaries.
Respond with JSON only: {"narration":""}. Plain sentences, no stage directions.`

const storySystemPrompt = `You turn a transcript span into narrated story beats.
Respond with JSON only: {"segments":[{"start_sec":0,"end_sec":0,"narration":""}]}.
Segments must lie inside the given span and must not overlap.`

var storyOpeners = []string{"Once upon a time", "Then", "But soon", "Meanwhile", "After that"}

type llmOracle struct {
	client *llm.Client
}

// NewLLMOracle wraps the chat-completion client as the scene and
// narration oracle.
func NewLLMOracle(client *llm.Client) *llmOracle {
	return &llmOracle{client: client}
}

func (o *llmOracle) ProposeScenes(ctx context.Context, chunk models.Chunk, opts Options) ([]models.SceneCandidate, error) {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Pick up to %d scenes between %.1fs and %.1fs. Preferred length %.0f-%.0f seconds.\n\n",
		opts.SegmentsPerChunk*4, chunk.StartSec, chunk.EndSec, opts.MinSceneSec, opts.MaxSceneSec)
	if len(chunk.Context) > 0 {
		prompt.WriteString("Earlier context (do not select from here):\n")
		writeTranscript(&prompt, chunk.Context)
		prompt.WriteString("\nTranscript:\n")
	} else {
		prompt.WriteString("Transcript:\n")
	}
	writeTranscript(&prompt, chunk.Items)

	content, err := o.client.Complete(ctx, sceneSystemPrompt, prompt.String())
	if err != nil {
		return nil, err
	}
	var payload struct {
		Scenes []struct {
			StartSec float64 `json:"start_sec"`
			EndSec   float64 `json:"end_sec"`
			Score    float64 `json:"score"`
			Reason   string  `json:"reason"`
		} `json:"scenes"`
	}
	if err := llm.DecodeJSON(content, &payload); err != nil {
		return nil, fmt.Errorf("scene payload: %w", err)
	}
	out := make([]models.SceneCandidate, 0, len(payload.Scenes))
	for _, s := range payload.Scenes {
		if s.EndSec <= s.StartSec+0.25 {
			continue
		}
		out = append(out, models.SceneCandidate{
			StartSec: s.StartSec,
			EndSec:   s.EndSec,
			Score:    s.Score,
			Reason:   strings.TrimSpace(s.Reason),
		})
	}
	return out, nil
}

// NarrateScene asks for narration text sized to the scene duration,
// carrying the rolling story memory for continuity.
func (o *llmOracle) NarrateScene(ctx context.Context, transcript, memory string, durationSec float64) (string, error) {
	targetWords := TargetNarrationWords(durationSec)
	var prompt strings.Builder
	if memory != "" {
		fmt.Fprintf(&prompt, "Story so far:\n%s\n\n", memory)
	}
	fmt.Fprintf(&prompt, "Write narration of about %d words for this scene:\n%s", targetWords, transcript)

	content, err := o.client.Complete(ctx, narrationSystemPrompt, prompt.String())
	if err != nil {
		return "", err
	}
	var payload struct {
		Narration string `json:"narration"`
	}
	if err := llm.DecodeJSON(content, &payload); err != nil {
		return "", fmt.Errorf("narration payload: %w", err)
	}
	narration := strings.TrimSpace(payload.Narration)
	if narration == "" {
		return "", fmt.Errorf("empty narration")
	}
	return narration, nil
}

// PlanStorySegments asks for count narrated beats inside the chunk span.
func (o *llmOracle) PlanStorySegments(ctx context.Context, chunk models.Chunk, count int, memory string) ([]models.StorySegment, error) {
	var prompt strings.Builder
	if memory != "" {
		fmt.Fprintf(&prompt, "Story so far:\n%s\n\n", memory)
	}
	fmt.Fprintf(&prompt, "Plan %d narrated segments between %.1fs and %.1fs. Size narration at about %.2f words per second of segment.\n",
		count, chunk.StartSec, chunk.EndSec, wordsPerSecond)
	if memory != "" {
		fmt.Fprintf(&prompt, "Open later segments with connectives such as %q.\n", storyOpeners[1:])
	} else {
		fmt.Fprintf(&prompt, "Open the first segment in the spirit of %q.\n", storyOpeners[0])
	}
	prompt.WriteString("\nTranscript:\n")
	writeTranscript(&prompt, chunk.Items)

	content, err := o.client.Complete(ctx, storySystemPrompt, prompt.String())
	if err != nil {
		return nil, err
	}
	var payload struct {
		Segments []struct {
			StartSec  float64 `json:"start_sec"`
			EndSec    float64 `json:"end_sec"`
			Narration string  `json:"narration"`
		} `json:"segments"`
	}
	if err := llm.DecodeJSON(content, &payload); err != nil {
		return nil, fmt.Errorf("story payload: %w", err)
	}
	out := make([]models.StorySegment, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		if seg.EndSec <= seg.StartSec+0.25 || strings.TrimSpace(seg.Narration) == "" {
			continue
		}
		out = append(out, models.StorySegment{
			StartSec:  seg.StartSec,
			EndSec:    seg.EndSec,
			Narration: strings.TrimSpace(seg.Narration),
		})
	}
	return out, nil
}

// TargetNarrationWords converts a duration to a word budget at normal
// speaking pace.
func TargetNarrationWords(durationSec float64) int {
	return int(math.Round(durationSec * wordsPerSecond))
}

func writeTranscript(b *strings.Builder, items []models.TranscriptItem) {
	for _, item := range items {
		fmt.Fprintf(b, "[%.1f - %.1f] %s\n", item.StartSec, item.EndSec, item.Text)
	}
}
