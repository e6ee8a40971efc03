package models

// TranscriptItem is a single subtitle cue parsed from whisper output.
type TranscriptItem struct {
	Index    int     `json:"index"`
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
	Text     string  `json:"text"`
}

// Chunk groups transcript items for one analysis request. Context
// holds trailing items from the previous chunk, passed for continuity
// only; scene bounds never come from them.
type Chunk struct {
	Index    int              `json:"index"`
	StartSec float64          `json:"start_sec"`
	EndSec   float64          `json:"end_sec"`
	Items    []TranscriptItem `json:"items"`
	Context  []TranscriptItem `json:"context,omitempty"`
}

// SceneCandidate is a scored span proposed by the oracle or the
// heuristic fallback.
type SceneCandidate struct {
	StartSec  float64 `json:"start_sec"`
	EndSec    float64 `json:"end_sec"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason,omitempty"`
	Narration string  `json:"narration,omitempty"`
}

func (s SceneCandidate) Duration() float64 {
	return s.EndSec - s.StartSec
}

// ChunkResult is the cached analysis outcome for one chunk.
type ChunkResult struct {
	ChunkIndex int              `json:"chunk_index"`
	Source     string           `json:"source"`
	Candidates []SceneCandidate `json:"candidates"`
}

const (
	ChunkSourceOracle    = "oracle"
	ChunkSourceHeuristic = "heuristic"
)

// StorySegment is a narrated span planned in story and summary modes.
type StorySegment struct {
	StartSec  float64 `json:"start_sec"`
	EndSec    float64 `json:"end_sec"`
	Narration string  `json:"narration"`
}
