package pipeline

import (
	"math"

	"github.com/reelmaker/reelmaker-backend/internal/models"
)

// Unlimited sentinels. Normalization maps "no limit" settings to these
// so selection code never has to treat zero as a special case.
const (
	UnlimitedScenes  = math.MaxInt32
	UnlimitedSeconds = math.MaxFloat64
)

const (
	defaultScoreThreshold  = 72.0
	defaultMinGapSec       = 2.0
	defaultMinSceneSec     = 60.0
	defaultMaxSceneSec     = 600.0
	splitMaxSceneSec       = 90.0
	defaultScenePaddingSec = 5.0
	defaultMaxSpeedup      = 1.35
	defaultMinSlowdown     = 0.85
	defaultDuckVolume      = 0.18
	defaultTTSFadeSec      = 0.1
	defaultSegPerChunk     = 1
	splitSegPerChunk       = 3
	defaultContextOverlap  = 6
	defaultCanvasWidth     = 1080
	defaultCanvasHeight    = 1920

	summaryMinSegSec = 25.0
	summaryMaxSegSec = 60.0
	storyMemoryChars = 1400
	wordsPerSecond   = 2.35
)

// Options is the fully resolved per-job option set. Every field holds a
// usable value; nothing downstream re-checks for zero.
type Options struct {
	Mode models.ProcessingMode

	ScoreThreshold   float64
	MinGapSec        float64
	MinSceneSec      float64
	MaxSceneSec      float64
	ScenePaddingSec  float64
	MaxScenes        int
	MaxTotalSec      float64
	SegmentsPerChunk int
	ContextOverlap   int

	MaxSpeedup  float64
	MinSlowdown float64
	DuckVolume  float64
	TTSFadeSec  float64

	NarrationMix  string
	BurnSubtitles bool
	FlipH         bool
	FlipV         bool
	CanvasWidth   int
	CanvasHeight  int
	Watermark     bool
	ChannelText   string
}

// NormalizeOptions resolves raw settings against mode-aware defaults.
func NormalizeOptions(mode models.ProcessingMode, s models.RenderSettings) Options {
	split := mode == models.ModeBestScenesSplit

	o := Options{
		Mode:             mode,
		ScoreThreshold:   defaultScoreThreshold,
		MinGapSec:        defaultMinGapSec,
		MinSceneSec:      defaultMinSceneSec,
		MaxSceneSec:      defaultMaxSceneSec,
		ScenePaddingSec:  defaultScenePaddingSec,
		MaxScenes:        UnlimitedScenes,
		MaxTotalSec:      UnlimitedSeconds,
		SegmentsPerChunk: defaultSegPerChunk,
		ContextOverlap:   0,
		MaxSpeedup:       defaultMaxSpeedup,
		MinSlowdown:      defaultMinSlowdown,
		DuckVolume:       defaultDuckVolume,
		TTSFadeSec:       defaultTTSFadeSec,
		NarrationMix:     "duck",
		CanvasWidth:      defaultCanvasWidth,
		CanvasHeight:     defaultCanvasHeight,
		ChannelText:      s.ChannelTextMode,
	}

	if split {
		o.MaxSceneSec = splitMaxSceneSec
		o.SegmentsPerChunk = splitSegPerChunk
	}
	if mode == models.ModeSummaryHybrid || mode == models.ModeStoryOnly {
		o.ContextOverlap = defaultContextOverlap
	}
	if mode == models.ModeStoryOnly {
		o.NarrationMix = "replace"
	}

	if s.ScoreThreshold > 0 {
		o.ScoreThreshold = s.ScoreThreshold
	}
	if s.MinGapSec > 0 {
		o.MinGapSec = s.MinGapSec
	}
	if s.MinSceneSec > 0 {
		o.MinSceneSec = s.MinSceneSec
	}
	if s.MaxSceneSec > 0 {
		o.MaxSceneSec = s.MaxSceneSec
	}
	if s.ScenePaddingSec > 0 {
		o.ScenePaddingSec = s.ScenePaddingSec
	}
	if s.MaxScenes > 0 {
		o.MaxScenes = s.MaxScenes
	}
	if s.MaxTotalSec > 0 {
		o.MaxTotalSec = s.MaxTotalSec
	}
	if s.SegmentsPerChunk > 0 {
		o.SegmentsPerChunk = s.SegmentsPerChunk
	}
	if s.ContextOverlap > 0 {
		o.ContextOverlap = s.ContextOverlap
	}
	if s.MaxSpeedup > 0 {
		o.MaxSpeedup = s.MaxSpeedup
	}
	if s.MinSlowdown > 0 {
		o.MinSlowdown = s.MinSlowdown
	}
	if s.DuckVolume > 0 {
		o.DuckVolume = s.DuckVolume
	}
	if s.NarrationMix == "duck" || s.NarrationMix == "replace" {
		o.NarrationMix = s.NarrationMix
	}
	if s.CanvasWidth > 0 {
		o.CanvasWidth = s.CanvasWidth
	}
	if s.CanvasHeight > 0 {
		o.CanvasHeight = s.CanvasHeight
	}
	o.BurnSubtitles = s.BurnSubtitles
	o.FlipH = s.FlipHorizontal
	o.FlipV = s.FlipVertical
	o.Watermark = s.Watermark

	if o.MinSceneSec > o.MaxSceneSec {
		o.MinSceneSec = o.MaxSceneSec
	}
	return o
}
