package pipeline

import (
	"github.com/reelmaker/reelmaker-backend/internal/models"
)

const (
	minTokensPerItem = 5
	minHardCharCap   = 8000
	minTokenBudget   = 500
)

// EstimateItemTokens approximates the prompt cost of one transcript
// item, counting its timestamp header plus text at roughly three bytes
// per token.
func EstimateItemTokens(item models.TranscriptItem) int {
	payload := SecondsToSRT(item.StartSec) + " --> " + SecondsToSRT(item.EndSec) + "\n" + item.Text
	tokens := (len(payload) + 2) / 3
	if tokens < minTokensPerItem {
		return minTokensPerItem
	}
	return tokens
}

// ChunkByItemCount splits items into fixed-size groups. Each chunk
// after the first carries up to overlap trailing items from the
// previous chunk as read-only context.
func ChunkByItemCount(items []models.TranscriptItem, perChunk, overlap int) []models.Chunk {
	if len(items) == 0 {
		return nil
	}
	if perChunk <= 0 {
		perChunk = len(items)
	}
	var chunks []models.Chunk
	for start := 0; start < len(items); start += perChunk {
		end := start + perChunk
		if end > len(items) {
			end = len(items)
		}
		chunk := models.Chunk{
			Index: len(chunks),
			Items: items[start:end],
		}
		if overlap > 0 && start > 0 {
			ctxStart := start - overlap
			if ctxStart < 0 {
				ctxStart = 0
			}
			chunk.Context = items[ctxStart:start]
		}
		chunks = append(chunks, chunk)
	}
	return finalizeBounds(chunks)
}

// ChunkByTokenBudget greedily packs items while the running token
// estimate stays under budget. A hard character ceiling also closes a
// chunk, so a pathological transcript cannot blow past the prompt
// window on token-estimate error alone. An item bigger than the whole
// budget still gets its own chunk.
func ChunkByTokenBudget(items []models.TranscriptItem, budget int) []models.Chunk {
	if len(items) == 0 {
		return nil
	}
	if budget < minTokenBudget {
		budget = minTokenBudget
	}
	hardCharCap := budget * 4
	if hardCharCap < minHardCharCap {
		hardCharCap = minHardCharCap
	}

	var chunks []models.Chunk
	var current []models.TranscriptItem
	tokens, chars := 0, 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, models.Chunk{Index: len(chunks), Items: current})
		current = nil
		tokens, chars = 0, 0
	}

	for _, item := range items {
		itemTokens := EstimateItemTokens(item)
		itemChars := len(item.Text)
		if len(current) > 0 && (tokens+itemTokens > budget || chars+itemChars > hardCharCap) {
			flush()
		}
		current = append(current, item)
		tokens += itemTokens
		chars += itemChars
	}
	flush()
	return finalizeBounds(chunks)
}

// WithContextOverlap copies up to overlap trailing items of each chunk
// into the next chunk's context window.
func WithContextOverlap(chunks []models.Chunk, overlap int) []models.Chunk {
	if overlap <= 0 {
		return chunks
	}
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Items
		ctxStart := len(prev) - overlap
		if ctxStart < 0 {
			ctxStart = 0
		}
		chunks[i].Context = prev[ctxStart:]
	}
	return chunks
}

func finalizeBounds(chunks []models.Chunk) []models.Chunk {
	for i := range chunks {
		items := chunks[i].Items
		if len(items) == 0 {
			continue
		}
		chunks[i].StartSec = items[0].StartSec
		chunks[i].EndSec = items[len(items)-1].EndSec
	}
	return chunks
}
