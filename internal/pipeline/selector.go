package pipeline

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/reelmaker/reelmaker-backend/internal/models"
	"github.com/reelmaker/reelmaker-backend/pkg/logger"

	"github.com/google/uuid"
)

// Oracle proposes scored scenes for one transcript chunk.
type Oracle interface {
	ProposeScenes(ctx context.Context, chunk models.Chunk, opts Options) ([]models.SceneCandidate, error)
}

// ResultCache persists per-chunk analysis so re-runs never repeat an
// oracle call. Get returns (nil, nil) on a miss.
type ResultCache interface {
	GetChunkResult(ctx context.Context, projectID uuid.UUID, chunkIndex int) (*models.ChunkResult, error)
	PutChunkResult(ctx context.Context, projectID uuid.UUID, result *models.ChunkResult) error
}

// Selector turns chunked transcripts into a final scene list.
type Selector struct {
	oracle Oracle
	cache  ResultCache
	logger logger.Logger
}

func NewSelector(oracle Oracle, cache ResultCache, log logger.Logger) *Selector {
	return &Selector{oracle: oracle, cache: cache, logger: log}
}

// AnalyzeChunks collects candidates for every chunk, serving cached
// results when present and falling back to the heuristic when the
// oracle fails. Every fresh result is written back to the cache.
// onChunk, when non-nil, is called after each chunk finishes.
func (s *Selector) AnalyzeChunks(ctx context.Context, projectID uuid.UUID, chunks []models.Chunk, opts Options, totalDuration float64, onChunk func(done, total int)) ([]models.SceneCandidate, error) {
	var all []models.SceneCandidate
	for i, chunk := range chunks {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		cached, err := s.cache.GetChunkResult(ctx, projectID, chunk.Index)
		if err != nil {
			return nil, err
		}
		if cached != nil {
			all = append(all, ClampCandidates(cached.Candidates, chunk, totalDuration)...)
			reportChunk(onChunk, i+1, len(chunks))
			continue
		}

		result := &models.ChunkResult{ChunkIndex: chunk.Index, Source: models.ChunkSourceOracle}
		candidates, err := s.oracle.ProposeScenes(ctx, chunk, opts)
		if err != nil {
			s.logger.Warnf("chunk %d oracle failed, using heuristic: %v", chunk.Index, err)
			candidates = HeuristicCandidates(chunk, opts)
			result.Source = models.ChunkSourceHeuristic
		}
		result.Candidates = candidates
		if err := s.cache.PutChunkResult(ctx, projectID, result); err != nil {
			return nil, err
		}
		all = append(all, ClampCandidates(candidates, chunk, totalDuration)...)
		reportChunk(onChunk, i+1, len(chunks))
	}
	return all, nil
}

func reportChunk(onChunk func(done, total int), done, total int) {
	if onChunk != nil {
		onChunk(done, total)
	}
}

var heuristicMarkers = []string{
	"but", "however", "finally", "important", "secret", "problem",
	"solution", "amazing", "wow", "must", "need", "never", "always",
	"why", "how",
}

// HeuristicCandidates scores spans of the chunk by text density and
// emphasis markers. It is deliberately crude; it only has to keep a job
// alive when the oracle is down.
func HeuristicCandidates(chunk models.Chunk, opts Options) []models.SceneCandidate {
	var out []models.SceneCandidate
	var span []models.TranscriptItem
	spanDur := func() float64 {
		if len(span) == 0 {
			return 0
		}
		return span[len(span)-1].EndSec - span[0].StartSec
	}
	flush := func() {
		if len(span) == 0 {
			return
		}
		var text strings.Builder
		for _, item := range span {
			text.WriteString(item.Text)
			text.WriteString(" ")
		}
		out = append(out, models.SceneCandidate{
			StartSec: span[0].StartSec,
			EndSec:   clampDuration(span[0].StartSec, span[len(span)-1].EndSec, opts),
			Score:    heuristicScore(text.String()),
			Reason:   "heuristic",
		})
		span = nil
	}
	for _, item := range chunk.Items {
		span = append(span, item)
		if spanDur() >= opts.MinSceneSec {
			flush()
		}
	}
	flush()
	return out
}

func heuristicScore(text string) float64 {
	text = strings.TrimSpace(text)
	score := math.Floor(float64(len(text)) / 260.0 * 100.0)
	if score > 95 {
		score = 95
	}
	lower := strings.ToLower(text)
	for _, marker := range heuristicMarkers {
		if strings.Contains(lower, marker) {
			score += 7
		}
	}
	if score < 15 {
		score = 15
	}
	if score > 98 {
		score = 98
	}
	return score
}

func clampDuration(start, end float64, opts Options) float64 {
	dur := end - start
	if dur < opts.MinSceneSec {
		return start + opts.MinSceneSec
	}
	if dur > opts.MaxSceneSec {
		return start + opts.MaxSceneSec
	}
	return end
}

// ClampCandidates restricts candidates to the chunk bounds and the
// video timeline, dropping spans that collapse below half a second.
func ClampCandidates(candidates []models.SceneCandidate, chunk models.Chunk, totalDuration float64) []models.SceneCandidate {
	out := make([]models.SceneCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.StartSec < chunk.StartSec {
			c.StartSec = chunk.StartSec
		}
		if c.EndSec > chunk.EndSec {
			c.EndSec = chunk.EndSec
		}
		if c.StartSec < 0 {
			c.StartSec = 0
		}
		if totalDuration > 0 && c.EndSec > totalDuration {
			c.EndSec = totalDuration
		}
		if c.EndSec <= c.StartSec+0.5 {
			continue
		}
		out = append(out, c)
	}
	return out
}

// SelectBest runs the greedy selection: highest score first, earliest
// start on ties, skipping anything within minGap of an accepted scene.
func SelectBest(candidates []models.SceneCandidate, threshold, minGap float64, maxScenes int, maxTotalSec float64) []models.SceneCandidate {
	sorted := make([]models.SceneCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Score >= threshold {
			sorted = append(sorted, c)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].StartSec < sorted[j].StartSec
	})

	var chosen []models.SceneCandidate
	total := 0.0
	for _, c := range sorted {
		if len(chosen) >= maxScenes {
			break
		}
		conflict := false
		for _, picked := range chosen {
			if !(c.EndSec+minGap <= picked.StartSec || c.StartSec >= picked.EndSec+minGap) {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}
		if total+c.Duration() > maxTotalSec {
			continue
		}
		chosen = append(chosen, c)
		total += c.Duration()
	}
	sort.Slice(chosen, func(i, j int) bool { return chosen[i].StartSec < chosen[j].StartSec })
	return chosen
}

// SelectWithLadder retries selection at progressively lower score
// thresholds. The first threshold that yields at least three scenes
// wins; when none does, a final floor-40 pass with a tight gap picks up
// lower-scored scenes the ladder left behind.
func SelectWithLadder(candidates []models.SceneCandidate, opts Options) []models.SceneCandidate {
	base := opts.ScoreThreshold
	ladder := []float64{
		base,
		math.Max(65, base-4),
		math.Max(60, base-8),
		math.Max(55, base-12),
		55,
	}
	for _, threshold := range ladder {
		selected := SelectBest(candidates, threshold, opts.MinGapSec, opts.MaxScenes, opts.MaxTotalSec)
		if len(selected) >= 3 {
			return selected
		}
	}
	relaxedGap := math.Min(opts.MinGapSec, 0.5)
	return SelectBest(candidates, math.Max(40, base-20), relaxedGap, opts.MaxScenes, opts.MaxTotalSec)
}

// HeuristicFallback re-analyzes every chunk with the heuristic scorer
// under relaxed thresholds. It is the last resort when the oracle-driven
// selection came up empty.
func HeuristicFallback(chunks []models.Chunk, opts Options, totalDuration float64) []models.SceneCandidate {
	relaxed := opts
	relaxed.ScoreThreshold = math.Max(40, opts.ScoreThreshold-20)
	relaxed.MinGapSec = 0.5

	var all []models.SceneCandidate
	for _, chunk := range chunks {
		all = append(all, ClampCandidates(HeuristicCandidates(chunk, relaxed), chunk, totalDuration)...)
	}
	return SelectBest(all, relaxed.ScoreThreshold, relaxed.MinGapSec, relaxed.MaxScenes, relaxed.MaxTotalSec)
}

// ApplyScenePadding widens each scene by the configured padding, then
// normalizes: grow to the minimum length, shrink symmetrically around
// the center to the maximum, and shift forward past the previous scene
// plus gap. Scenes that collapse below half a second are dropped.
// Input must be sorted by start time.
func ApplyScenePadding(scenes []models.SceneCandidate, opts Options, totalDuration float64) []models.SceneCandidate {
	out := make([]models.SceneCandidate, 0, len(scenes))
	prevEnd := math.Inf(-1)
	for _, s := range scenes {
		start := s.StartSec - opts.ScenePaddingSec
		end := s.EndSec + opts.ScenePaddingSec
		if start < 0 {
			start = 0
		}
		if end > totalDuration {
			end = totalDuration
		}

		if end-start < opts.MinSceneSec {
			grow := (opts.MinSceneSec - (end - start)) / 2
			start -= grow
			end += grow
			if start < 0 {
				end += -start
				start = 0
			}
			if end > totalDuration {
				start -= end - totalDuration
				end = totalDuration
				if start < 0 {
					start = 0
				}
			}
		}

		if end-start > opts.MaxSceneSec {
			center := (start + end) / 2
			start = center - opts.MaxSceneSec/2
			end = center + opts.MaxSceneSec/2
		}

		if !math.IsInf(prevEnd, -1) && start < prevEnd+opts.MinGapSec {
			shift := prevEnd + opts.MinGapSec - start
			start += shift
			end += shift
			if end > totalDuration {
				end = totalDuration
			}
		}

		if end <= start+0.5 {
			continue
		}
		s.StartSec = start
		s.EndSec = end
		out = append(out, s)
		prevEnd = end
	}
	return out
}
