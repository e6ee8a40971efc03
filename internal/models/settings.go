package models

// RenderSettings is the raw per-project settings document as stored in
// projects.settings. Zero values mean "use the default"; the pipeline
// normalizes this into a fully resolved option set before running.
type RenderSettings struct {
	ScoreThreshold   float64 `json:"score_threshold,omitempty"`
	MinGapSec        float64 `json:"min_gap_sec,omitempty"`
	MinSceneSec      float64 `json:"min_scene_sec,omitempty"`
	MaxSceneSec      float64 `json:"max_scene_sec,omitempty"`
	ScenePaddingSec  float64 `json:"scene_padding_sec,omitempty"`
	MaxScenes        int     `json:"max_scenes,omitempty"`
	MaxTotalSec      float64 `json:"max_total_sec,omitempty"`
	SegmentsPerChunk int     `json:"segments_per_chunk,omitempty"`
	ContextOverlap   int     `json:"context_overlap,omitempty"`
	MaxSpeedup       float64 `json:"max_speedup,omitempty"`
	MinSlowdown      float64 `json:"min_slowdown,omitempty"`
	DuckVolume       float64 `json:"duck_volume,omitempty"`
	NarrationMix     string  `json:"narration_mix,omitempty"`
	BurnSubtitles    bool    `json:"burn_subtitles,omitempty"`
	FlipHorizontal   bool    `json:"flip_horizontal,omitempty"`
	FlipVertical     bool    `json:"flip_vertical,omitempty"`
	CanvasWidth      int     `json:"canvas_width,omitempty"`
	CanvasHeight     int     `json:"canvas_height,omitempty"`
	Watermark        bool    `json:"watermark,omitempty"`
	ChannelTextMode  string  `json:"channel_text_mode,omitempty"`
}
