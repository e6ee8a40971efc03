package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/reelmaker/reelmaker-backend/internal/models"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) InitLogger()                          {}
func (nopLogger) Debug(args ...interface{})            {}
func (nopLogger) Debugf(t string, args ...interface{}) {}
func (nopLogger) Info(args ...interface{})             {}
func (nopLogger) Infof(t string, args ...interface{})  {}
func (nopLogger) Warn(args ...interface{})             {}
func (nopLogger) Warnf(t string, args ...interface{})  {}
func (nopLogger) Error(args ...interface{})            {}
func (nopLogger) Errorf(t string, args ...interface{}) {}
func (nopLogger) DPanic(args ...interface{})           {}
func (nopLogger) DPanicf(t string, args ...interface{}) {
}
func (nopLogger) Fatal(args ...interface{})            {}
func (nopLogger) Fatalf(t string, args ...interface{}) {}

type fakeOracle struct {
	calls      int
	err        error
	candidates []models.SceneCandidate
}

func (f *fakeOracle) ProposeScenes(ctx context.Context, chunk models.Chunk, opts Options) ([]models.SceneCandidate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

type memCache struct {
	results map[int]*models.ChunkResult
	puts    int
}

func newMemCache() *memCache {
	return &memCache{results: make(map[int]*models.ChunkResult)}
}

func (m *memCache) GetChunkResult(ctx context.Context, projectID uuid.UUID, chunkIndex int) (*models.ChunkResult, error) {
	return m.results[chunkIndex], nil
}

func (m *memCache) PutChunkResult(ctx context.Context, projectID uuid.UUID, result *models.ChunkResult) error {
	m.puts++
	m.results[result.ChunkIndex] = result
	return nil
}

func defaultTestOptions() Options {
	return NormalizeOptions(models.ModeBestScenes, models.RenderSettings{})
}

func testChunk(start, end float64) models.Chunk {
	return models.Chunk{
		Index:    0,
		StartSec: start,
		EndSec:   end,
		Items: []models.TranscriptItem{
			{StartSec: start, EndSec: end, Text: "some transcript text"},
		},
	}
}

func TestAnalyzeChunksUsesCacheWithoutOracleCalls(t *testing.T) {
	oracle := &fakeOracle{}
	cache := newMemCache()
	cache.results[0] = &models.ChunkResult{
		ChunkIndex: 0,
		Source:     models.ChunkSourceOracle,
		Candidates: []models.SceneCandidate{{StartSec: 10, EndSec: 80, Score: 90}},
	}
	s := NewSelector(oracle, cache, nopLogger{})

	chunks := []models.Chunk{testChunk(0, 100)}
	got, err := s.AnalyzeChunks(context.Background(), uuid.New(), chunks, defaultTestOptions(), 100, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oracle.calls != 0 {
		t.Fatalf("cached chunk must not reach the oracle, got %d calls", oracle.calls)
	}
	if len(got) != 1 || got[0].Score != 90 {
		t.Fatalf("expected cached candidate back, got %+v", got)
	}
}

func TestAnalyzeChunksFallsBackToHeuristic(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("model unavailable")}
	cache := newMemCache()
	s := NewSelector(oracle, cache, nopLogger{})

	chunk := models.Chunk{Index: 0, StartSec: 0, EndSec: 200}
	for i := 0; i < 40; i++ {
		chunk.Items = append(chunk.Items, models.TranscriptItem{
			StartSec: float64(i * 5),
			EndSec:   float64(i*5 + 5),
			Text:     "something important happened here but nobody noticed",
		})
	}
	got, err := s.AnalyzeChunks(context.Background(), uuid.New(), []models.Chunk{chunk}, defaultTestOptions(), 200, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oracle.calls != 1 {
		t.Fatalf("expected one oracle attempt, got %d", oracle.calls)
	}
	if len(got) == 0 {
		t.Fatalf("heuristic fallback produced no candidates")
	}
	if cache.results[0] == nil || cache.results[0].Source != models.ChunkSourceHeuristic {
		t.Fatalf("fallback result must be cached with heuristic source, got %+v", cache.results[0])
	}
}

func TestAnalyzeChunksCachesOracleResults(t *testing.T) {
	oracle := &fakeOracle{candidates: []models.SceneCandidate{{StartSec: 5, EndSec: 75, Score: 88}}}
	cache := newMemCache()
	s := NewSelector(oracle, cache, nopLogger{})
	chunks := []models.Chunk{testChunk(0, 100)}
	projectID := uuid.New()

	if _, err := s.AnalyzeChunks(context.Background(), projectID, chunks, defaultTestOptions(), 100, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.AnalyzeChunks(context.Background(), projectID, chunks, defaultTestOptions(), 100, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oracle.calls != 1 {
		t.Fatalf("second pass must be served from cache, oracle saw %d calls", oracle.calls)
	}
	if cache.puts != 1 {
		t.Fatalf("expected exactly one cache write, got %d", cache.puts)
	}
}

func TestSelectBestKeepsNonConflictingScenes(t *testing.T) {
	candidates := []models.SceneCandidate{
		{StartSec: 5, EndSec: 15, Score: 90},
		{StartSec: 20, EndSec: 30, Score: 85},
	}
	got := SelectBest(candidates, 72, 2.0, UnlimitedScenes, UnlimitedSeconds)
	if len(got) != 2 {
		t.Fatalf("expected both scenes kept, got %d", len(got))
	}
	if got[0].StartSec != 5 || got[1].StartSec != 20 {
		t.Fatalf("expected output sorted by start, got %+v", got)
	}
}

func TestSelectBestRejectsConflicts(t *testing.T) {
	candidates := []models.SceneCandidate{
		{StartSec: 5, EndSec: 15, Score: 90},
		{StartSec: 16, EndSec: 26, Score: 85},
	}
	got := SelectBest(candidates, 72, 2.0, UnlimitedScenes, UnlimitedSeconds)
	if len(got) != 1 {
		t.Fatalf("scenes within the minimum gap must not both survive, got %d", len(got))
	}
	if got[0].Score != 90 {
		t.Fatalf("the higher scored scene should win, got %+v", got[0])
	}
}

func TestSelectBestHonorsLimits(t *testing.T) {
	candidates := []models.SceneCandidate{
		{StartSec: 0, EndSec: 60, Score: 95},
		{StartSec: 100, EndSec: 160, Score: 90},
		{StartSec: 200, EndSec: 260, Score: 85},
	}
	if got := SelectBest(candidates, 72, 2.0, 2, UnlimitedSeconds); len(got) != 2 {
		t.Fatalf("expected scene cap of 2, got %d", len(got))
	}
	// 150s total budget fits the first two scenes only.
	if got := SelectBest(candidates, 72, 2.0, UnlimitedScenes, 150); len(got) != 2 {
		t.Fatalf("expected total duration cap to drop one scene, got %d", len(got))
	}
}

func TestSelectWithLadderLowersThreshold(t *testing.T) {
	opts := defaultTestOptions()
	candidates := []models.SceneCandidate{
		{StartSec: 0, EndSec: 70, Score: 58},
	}
	got := SelectWithLadder(candidates, opts)
	if len(got) != 1 {
		t.Fatalf("ladder should relax down to 55 and keep the scene, got %d", len(got))
	}
}

func TestSelectWithLadderRelaxedFloor(t *testing.T) {
	opts := defaultTestOptions()
	candidates := []models.SceneCandidate{
		{StartSec: 0, EndSec: 70, Score: 53},
	}
	got := SelectWithLadder(candidates, opts)
	if len(got) != 1 {
		t.Fatalf("relaxed floor pass should rescue the scene, got %d", len(got))
	}
}

func TestSelectWithLadderRelaxedPassRunsUnderThreeScenes(t *testing.T) {
	opts := defaultTestOptions()
	candidates := []models.SceneCandidate{
		{StartSec: 0, EndSec: 70, Score: 58},
		{StartSec: 200, EndSec: 270, Score: 53},
	}
	got := SelectWithLadder(candidates, opts)
	if len(got) != 2 {
		t.Fatalf("with fewer than 3 ladder survivors the relaxed pass must run, got %d scenes", len(got))
	}
	if got[1].StartSec != 200 {
		t.Fatalf("the lower-scored scene must be rescued, got %+v", got[1])
	}
}

func TestSelectWithLadderEmptyOnHopelessInput(t *testing.T) {
	opts := defaultTestOptions()
	candidates := []models.SceneCandidate{
		{StartSec: 0, EndSec: 70, Score: 20},
	}
	if got := SelectWithLadder(candidates, opts); len(got) != 0 {
		t.Fatalf("a scene below every threshold must not be selected, got %d", len(got))
	}
}

func TestApplyScenePaddingGrowsShortScenes(t *testing.T) {
	opts := defaultTestOptions()
	scenes := []models.SceneCandidate{{StartSec: 100, EndSec: 120, Score: 90}}
	got := ApplyScenePadding(scenes, opts, 1000)
	if len(got) != 1 {
		t.Fatalf("expected one scene, got %d", len(got))
	}
	if d := got[0].Duration(); d < opts.MinSceneSec-0.001 {
		t.Fatalf("scene should grow to the minimum length, got %.2fs", d)
	}
}

func TestApplyScenePaddingShrinksLongScenes(t *testing.T) {
	opts := defaultTestOptions()
	opts.MaxSceneSec = 90
	scenes := []models.SceneCandidate{{StartSec: 100, EndSec: 400, Score: 90}}
	got := ApplyScenePadding(scenes, opts, 1000)
	if len(got) != 1 {
		t.Fatalf("expected one scene, got %d", len(got))
	}
	if d := got[0].Duration(); d > opts.MaxSceneSec+0.001 {
		t.Fatalf("scene should shrink to the maximum length, got %.2fs", d)
	}
	center := (100.0 + 400.0) / 2
	gotCenter := (got[0].StartSec + got[0].EndSec) / 2
	if gotCenter < center-0.001 || gotCenter > center+0.001 {
		t.Fatalf("shrink must keep the scene centered, got center %.2f", gotCenter)
	}
}

func TestApplyScenePaddingShiftsPastPrevious(t *testing.T) {
	opts := defaultTestOptions()
	opts.MinSceneSec = 10
	opts.ScenePaddingSec = 5
	scenes := []models.SceneCandidate{
		{StartSec: 10, EndSec: 40, Score: 90},
		{StartSec: 46, EndSec: 80, Score: 85},
	}
	got := ApplyScenePadding(scenes, opts, 1000)
	if len(got) != 2 {
		t.Fatalf("expected both scenes, got %d", len(got))
	}
	if got[1].StartSec < got[0].EndSec+opts.MinGapSec-0.001 {
		t.Fatalf("second scene must start after the first plus gap: first ends %.2f, second starts %.2f", got[0].EndSec, got[1].StartSec)
	}
}

func TestApplyScenePaddingDropsCollapsedScenes(t *testing.T) {
	opts := defaultTestOptions()
	opts.MinSceneSec = 10
	opts.ScenePaddingSec = 0
	// Second scene sits at the very end; after shifting past the first
	// scene plus gap there is no room left.
	scenes := []models.SceneCandidate{
		{StartSec: 80, EndSec: 99, Score: 90},
		{StartSec: 99, EndSec: 100, Score: 85},
	}
	got := ApplyScenePadding(scenes, opts, 100)
	if len(got) != 1 {
		t.Fatalf("collapsed trailing scene must be dropped, got %d scenes", len(got))
	}
}

func TestHeuristicScoreBounds(t *testing.T) {
	if got := heuristicScore(""); got != 15 {
		t.Fatalf("empty text should hit the floor, got %v", got)
	}
	long := ""
	for i := 0; i < 50; i++ {
		long += "an amazing secret problem that must never always matter why how "
	}
	if got := heuristicScore(long); got != 98 {
		t.Fatalf("marker-heavy text should hit the ceiling, got %v", got)
	}
}

func TestHeuristicFallbackSelectsScenes(t *testing.T) {
	opts := defaultTestOptions()
	chunk := models.Chunk{Index: 0, StartSec: 0, EndSec: 300}
	for i := 0; i < 60; i++ {
		chunk.Items = append(chunk.Items, models.TranscriptItem{
			StartSec: float64(i * 5),
			EndSec:   float64(i*5 + 5),
			Text:     "steady narration with a problem and a solution",
		})
	}
	chunks := finalizeBounds([]models.Chunk{chunk})

	got := HeuristicFallback(chunks, opts, 300)
	if len(got) == 0 {
		t.Fatalf("fallback must produce scenes from a dense transcript")
	}
	for i, c := range got {
		if c.EndSec > 300 {
			t.Fatalf("scene %d exceeds the video duration: %+v", i, c)
		}
	}
}

func TestHeuristicCandidatesSpanLength(t *testing.T) {
	opts := defaultTestOptions()
	chunk := models.Chunk{Index: 0, StartSec: 0, EndSec: 300}
	for i := 0; i < 60; i++ {
		chunk.Items = append(chunk.Items, models.TranscriptItem{
			StartSec: float64(i * 5),
			EndSec:   float64(i*5 + 5),
			Text:     "steady narration with a problem and a solution",
		})
	}
	chunk = finalizeBounds([]models.Chunk{chunk})[0]
	got := HeuristicCandidates(chunk, opts)
	if len(got) == 0 {
		t.Fatalf("expected candidates from a dense chunk")
	}
	for i, c := range got {
		if c.Duration() < opts.MinSceneSec-0.001 {
			t.Fatalf("candidate %d shorter than the scene minimum: %.2fs", i, c.Duration())
		}
		if c.Score < 15 || c.Score > 98 {
			t.Fatalf("candidate %d score out of range: %v", i, c.Score)
		}
	}
}
