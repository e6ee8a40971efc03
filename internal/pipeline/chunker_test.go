package pipeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/reelmaker/reelmaker-backend/internal/models"
)

func makeItems(n int, secEach float64, text string) []models.TranscriptItem {
	items := make([]models.TranscriptItem, n)
	for i := range items {
		items[i] = models.TranscriptItem{
			Index:    i,
			StartSec: float64(i) * secEach,
			EndSec:   float64(i+1) * secEach,
			Text:     fmt.Sprintf("%s %d", text, i),
		}
	}
	return items
}

func TestChunkByItemCountCoversAllItems(t *testing.T) {
	items := makeItems(120, 3, "line")
	chunks := ChunkByItemCount(items, 50, 0)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	var total int
	for i, c := range chunks {
		if c.Index != i {
			t.Fatalf("chunk %d has index %d", i, c.Index)
		}
		total += len(c.Items)
	}
	if total != 120 {
		t.Fatalf("expected 120 items across chunks, got %d", total)
	}
	if chunks[0].StartSec != 0 || chunks[2].EndSec != 360 {
		t.Fatalf("unexpected bounds: %v / %v", chunks[0].StartSec, chunks[2].EndSec)
	}
}

func TestChunkByItemCountOverlapContext(t *testing.T) {
	items := makeItems(10, 2, "line")
	chunks := ChunkByItemCount(items, 4, 2)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0].Context) != 0 {
		t.Fatalf("first chunk should carry no context, got %d items", len(chunks[0].Context))
	}
	if len(chunks[1].Context) != 2 {
		t.Fatalf("expected 2 context items, got %d", len(chunks[1].Context))
	}
	if chunks[1].Context[1].Index != 3 {
		t.Fatalf("context should be the trailing items of the previous chunk, got index %d", chunks[1].Context[1].Index)
	}
	// Bounds come from core items only.
	if chunks[1].StartSec != chunks[1].Items[0].StartSec {
		t.Fatalf("context must not widen chunk bounds")
	}
}

func TestChunkByTokenBudgetRespectsBudget(t *testing.T) {
	items := makeItems(200, 5, strings.Repeat("word ", 30))
	budget := 2000
	chunks := ChunkByTokenBudget(items, budget)
	if len(chunks) < 2 {
		t.Fatalf("expected transcript split into multiple chunks, got %d", len(chunks))
	}
	var total int
	for _, c := range chunks {
		tokens := 0
		for _, item := range c.Items {
			tokens += EstimateItemTokens(item)
		}
		if len(c.Items) > 1 && tokens > budget {
			t.Fatalf("chunk %d holds %d tokens over budget %d", c.Index, tokens, budget)
		}
		total += len(c.Items)
	}
	if total != 200 {
		t.Fatalf("expected every item assigned, got %d", total)
	}
}

func TestChunkByTokenBudgetOversizedItem(t *testing.T) {
	items := []models.TranscriptItem{
		{StartSec: 0, EndSec: 5, Text: "small"},
		{StartSec: 5, EndSec: 10, Text: strings.Repeat("x", 20000)},
		{StartSec: 10, EndSec: 15, Text: "small again"},
	}
	chunks := ChunkByTokenBudget(items, 600)
	if len(chunks) != 3 {
		t.Fatalf("oversized item should isolate into its own chunk, got %d chunks", len(chunks))
	}
	if len(chunks[1].Items) != 1 {
		t.Fatalf("expected the oversized item alone in chunk 1, got %d items", len(chunks[1].Items))
	}
}

func TestEstimateItemTokensFloor(t *testing.T) {
	tiny := models.TranscriptItem{StartSec: 0, EndSec: 1, Text: "a"}
	if got := EstimateItemTokens(tiny); got < minTokensPerItem {
		t.Fatalf("expected floor of %d tokens, got %d", minTokensPerItem, got)
	}
}

func TestWithContextOverlap(t *testing.T) {
	items := makeItems(20, 2, "line")
	chunks := ChunkByItemCount(items, 10, 0)
	chunks = WithContextOverlap(chunks, 6)
	if len(chunks[0].Context) != 0 {
		t.Fatalf("first chunk should stay context-free")
	}
	if len(chunks[1].Context) != 6 {
		t.Fatalf("expected 6 context items, got %d", len(chunks[1].Context))
	}
	if chunks[1].Context[5].Index != 9 {
		t.Fatalf("context should end at the previous chunk's last item, got %d", chunks[1].Context[5].Index)
	}
}
