package pipeline

import (
	"strings"
	"testing"

	"github.com/reelmaker/reelmaker-backend/internal/models"
)

func TestAtempoChainSingleStage(t *testing.T) {
	got := AtempoChain(1.2)
	if len(got) != 1 || got[0] != "atempo=1.200000" {
		t.Fatalf("expected single stage, got %v", got)
	}
}

func TestAtempoChainDecomposesLargeFactors(t *testing.T) {
	got := AtempoChain(3.0)
	if len(got) != 2 {
		t.Fatalf("expected two stages for factor 3.0, got %v", got)
	}
	if got[0] != "atempo=2.0" || got[1] != "atempo=1.500000" {
		t.Fatalf("unexpected decomposition: %v", got)
	}
}

func TestAtempoChainDecomposesSmallFactors(t *testing.T) {
	got := AtempoChain(0.3)
	if len(got) != 2 {
		t.Fatalf("expected two stages for factor 0.3, got %v", got)
	}
	if got[0] != "atempo=0.5" {
		t.Fatalf("expected a half-speed stage first, got %v", got)
	}
	if !strings.HasPrefix(got[1], "atempo=0.6") {
		t.Fatalf("remainder stage out of atempo range: %v", got)
	}
}

func TestFitFactorCapsSpeedup(t *testing.T) {
	opts := defaultTestOptions()
	factor, trim := FitFactor(20, 10, opts)
	if factor != opts.MaxSpeedup {
		t.Fatalf("expected speedup capped at %.2f, got %.2f", opts.MaxSpeedup, factor)
	}
	if !trim {
		t.Fatalf("capped speedup must request a trim")
	}
}

func TestFitFactorCapsSlowdown(t *testing.T) {
	opts := defaultTestOptions()
	factor, trim := FitFactor(5, 20, opts)
	if factor != opts.MinSlowdown {
		t.Fatalf("expected slowdown capped at %.2f, got %.2f", opts.MinSlowdown, factor)
	}
	if trim {
		t.Fatalf("slowdown never trims")
	}
}

func TestFitFactorExactFit(t *testing.T) {
	opts := defaultTestOptions()
	factor, trim := FitFactor(12, 10, opts)
	if factor != 1.2 || trim != true {
		t.Fatalf("expected factor 1.2 with trim, got %.2f trim=%v", factor, trim)
	}
	factor, trim = FitFactor(9, 10, opts)
	if factor != 0.9 || trim {
		t.Fatalf("expected factor 0.9 without trim, got %.2f trim=%v", factor, trim)
	}
}

func TestFitFactorDegenerateInput(t *testing.T) {
	opts := defaultTestOptions()
	if factor, trim := FitFactor(0, 10, opts); factor != 1.0 || trim {
		t.Fatalf("zero input duration must be a no-op, got %.2f trim=%v", factor, trim)
	}
}

func TestBuildDuckFilter(t *testing.T) {
	opts := defaultTestOptions()
	got := BuildDuckFilter(8.0, opts)
	if !strings.Contains(got, "volume='if(lt(t,8.000),0.18,1.0)'") {
		t.Fatalf("duck expression missing or wrong: %s", got)
	}
	if !strings.Contains(got, "afade=t=in:st=0:d=0.10") {
		t.Fatalf("fade-in missing: %s", got)
	}
	if !strings.Contains(got, "afade=t=out:st=7.900:d=0.10") {
		t.Fatalf("fade-out should start one fade before the end: %s", got)
	}
	if !strings.Contains(got, "amix=inputs=2:duration=first[aout]") {
		t.Fatalf("mix stage missing: %s", got)
	}
}

func TestTargetNarrationWords(t *testing.T) {
	if got := TargetNarrationWords(10); got != 24 {
		t.Fatalf("expected 24 words for 10s, got %d", got)
	}
	if got := TargetNarrationWords(60); got != 141 {
		t.Fatalf("expected 141 words for 60s, got %d", got)
	}
}

func TestFallbackNarrationTrimsToBudget(t *testing.T) {
	transcript := strings.TrimSpace(strings.Repeat("word ", 100))
	got := FallbackNarration(transcript, 10)
	if n := len(strings.Fields(got)); n != TargetNarrationWords(10) {
		t.Fatalf("expected narration trimmed to %d words, got %d", TargetNarrationWords(10), n)
	}
}

func TestFallbackNarrationEmptyTranscript(t *testing.T) {
	if got := FallbackNarration("   ", 10); got == "" {
		t.Fatalf("empty transcript still needs a narration line")
	}
}

func TestFallbackStorySegments(t *testing.T) {
	chunk := models.Chunk{StartSec: 0, EndSec: 150}
	for i := 0; i < 30; i++ {
		chunk.Items = append(chunk.Items, models.TranscriptItem{
			StartSec: float64(i * 5),
			EndSec:   float64(i*5 + 5),
			Text:     "segment text",
		})
	}
	got := FallbackStorySegments(chunk)
	if len(got) != 3 {
		t.Fatalf("150s should split into 3 even segments, got %d", len(got))
	}
	for i, seg := range got {
		span := seg.EndSec - seg.StartSec
		if span < summaryMinSegSec-0.001 || span > summaryMaxSegSec+0.001 {
			t.Fatalf("segment %d length %.2fs outside the allowed band", i, span)
		}
		if seg.Narration == "" {
			t.Fatalf("segment %d missing narration", i)
		}
	}
	if got[len(got)-1].EndSec != chunk.EndSec {
		t.Fatalf("last segment must end at the chunk end, got %.2f", got[len(got)-1].EndSec)
	}
}

func TestFallbackStorySegmentsShortSpan(t *testing.T) {
	chunk := models.Chunk{
		StartSec: 0,
		EndSec:   80,
		Items:    []models.TranscriptItem{{StartSec: 0, EndSec: 80, Text: "short span"}},
	}
	got := FallbackStorySegments(chunk)
	// 80s would split into two 40s segments, both above the minimum.
	if len(got) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(got))
	}
}

func TestFallbackStorySegmentsEmptySpan(t *testing.T) {
	if got := FallbackStorySegments(models.Chunk{StartSec: 5, EndSec: 5}); got != nil {
		t.Fatalf("empty span must yield no segments, got %v", got)
	}
}

func TestStoryMemoryCapsLength(t *testing.T) {
	m := &StoryMemory{}
	for i := 0; i < 100; i++ {
		m.Append("a fairly long narration line that keeps the story going forward")
	}
	if got := len(m.String()); got > storyMemoryChars {
		t.Fatalf("memory grew past the cap: %d chars", got)
	}
	if !strings.HasSuffix(m.String(), "forward") {
		t.Fatalf("memory must keep the most recent narration")
	}
}

func TestClampSegments(t *testing.T) {
	segments := []models.StorySegment{
		{StartSec: -5, EndSec: 30, Narration: "starts early"},
		{StartSec: 100, EndSec: 300, Narration: "too long"},
		{StartSec: 595, EndSec: 700, Narration: "past the end"},
		{StartSec: 599.8, EndSec: 599.9, Narration: "collapses"},
	}
	got := clampSegments(segments, 600)
	if len(got) != 3 {
		t.Fatalf("expected 3 surviving segments, got %d", len(got))
	}
	if got[0].StartSec != 0 {
		t.Fatalf("negative start must clamp to zero, got %.2f", got[0].StartSec)
	}
	if span := got[1].EndSec - got[1].StartSec; span != summaryMaxSegSec {
		t.Fatalf("long segment must clamp to %.0fs, got %.2f", summaryMaxSegSec, span)
	}
	if got[2].EndSec != 600 {
		t.Fatalf("segment past the end must clamp to the video duration, got %.2f", got[2].EndSec)
	}
}
