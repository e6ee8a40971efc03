package pipeline

import (
	"testing"

	"github.com/reelmaker/reelmaker-backend/internal/models"
)

func TestNormalizeOptionsDefaults(t *testing.T) {
	o := NormalizeOptions(models.ModeBestScenes, models.RenderSettings{})
	if o.ScoreThreshold != 72 || o.MinGapSec != 2 || o.MinSceneSec != 60 || o.MaxSceneSec != 600 {
		t.Fatalf("unexpected selection defaults: %+v", o)
	}
	if o.ScenePaddingSec != 5 {
		t.Fatalf("unexpected padding default: %v", o.ScenePaddingSec)
	}
	if o.MaxScenes != UnlimitedScenes || o.MaxTotalSec != UnlimitedSeconds {
		t.Fatalf("limits must default to unlimited sentinels")
	}
	if o.NarrationMix != "duck" {
		t.Fatalf("expected duck mix default, got %q", o.NarrationMix)
	}
	if o.ContextOverlap != 0 {
		t.Fatalf("best scenes mode carries no context overlap, got %d", o.ContextOverlap)
	}
}

func TestNormalizeOptionsSplitMode(t *testing.T) {
	o := NormalizeOptions(models.ModeBestScenesSplit, models.RenderSettings{})
	if o.MaxSceneSec != 90 {
		t.Fatalf("split mode caps scenes at 90s, got %v", o.MaxSceneSec)
	}
	if o.SegmentsPerChunk != 3 {
		t.Fatalf("split mode plans 3 segments per chunk, got %d", o.SegmentsPerChunk)
	}
}

func TestNormalizeOptionsNarratedModes(t *testing.T) {
	summary := NormalizeOptions(models.ModeSummaryHybrid, models.RenderSettings{})
	if summary.ContextOverlap != 6 {
		t.Fatalf("summary mode carries context overlap, got %d", summary.ContextOverlap)
	}
	if summary.NarrationMix != "duck" {
		t.Fatalf("summary narration ducks the original audio, got %q", summary.NarrationMix)
	}
	story := NormalizeOptions(models.ModeStoryOnly, models.RenderSettings{})
	if story.NarrationMix != "replace" {
		t.Fatalf("story narration replaces the original audio, got %q", story.NarrationMix)
	}
}

func TestNormalizeOptionsOverrides(t *testing.T) {
	s := models.RenderSettings{
		ScoreThreshold: 80,
		MinGapSec:      4,
		MaxScenes:      5,
		MaxTotalSec:    180,
		NarrationMix:   "replace",
		BurnSubtitles:  true,
		Watermark:      true,
		CanvasWidth:    720,
		CanvasHeight:   1280,
	}
	o := NormalizeOptions(models.ModeBestScenes, s)
	if o.ScoreThreshold != 80 || o.MinGapSec != 4 {
		t.Fatalf("selection overrides not applied: %+v", o)
	}
	if o.MaxScenes != 5 || o.MaxTotalSec != 180 {
		t.Fatalf("limit overrides not applied: %+v", o)
	}
	if o.NarrationMix != "replace" || !o.BurnSubtitles || !o.Watermark {
		t.Fatalf("render overrides not applied: %+v", o)
	}
	if o.CanvasWidth != 720 || o.CanvasHeight != 1280 {
		t.Fatalf("canvas overrides not applied: %+v", o)
	}
}

func TestNormalizeOptionsRejectsBadMix(t *testing.T) {
	o := NormalizeOptions(models.ModeBestScenes, models.RenderSettings{NarrationMix: "loud"})
	if o.NarrationMix != "duck" {
		t.Fatalf("unknown mix value must fall back to the default, got %q", o.NarrationMix)
	}
}

func TestNormalizeOptionsClampsSceneBand(t *testing.T) {
	o := NormalizeOptions(models.ModeBestScenes, models.RenderSettings{MinSceneSec: 120, MaxSceneSec: 60})
	if o.MinSceneSec != o.MaxSceneSec {
		t.Fatalf("minimum above maximum must clamp, got min=%v max=%v", o.MinSceneSec, o.MaxSceneSec)
	}
}
