package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/reelmaker/reelmaker-backend/internal/models"
)

var (
	srtTimeRe = regexp.MustCompile(`(\d{2}):(\d{2}):(\d{2})[,.](\d{1,3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})[,.](\d{1,3})`)
	srtTagRe  = regexp.MustCompile(`<[^>]+>|\{\\[^}]*\}`)
)

// ParseSRT parses SRT text into transcript items. Blocks without a
// valid timestamp line are skipped; cues shorter than a quarter second
// are dropped.
func ParseSRT(content string) []models.TranscriptItem {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	blocks := strings.Split(content, "\n\n")
	items := make([]models.TranscriptItem, 0, len(blocks))
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}
		tsLine := -1
		var m []string
		for i, line := range lines {
			if m = srtTimeRe.FindStringSubmatch(line); m != nil {
				tsLine = i
				break
			}
		}
		if tsLine < 0 {
			continue
		}
		start := srtPartsToSeconds(m[1], m[2], m[3], m[4])
		end := srtPartsToSeconds(m[5], m[6], m[7], m[8])
		text := StripSRTTags(strings.TrimSpace(strings.Join(lines[tsLine+1:], " ")))
		if text == "" || end <= start+0.25 {
			continue
		}
		items = append(items, models.TranscriptItem{
			Index:    len(items),
			StartSec: start,
			EndSec:   end,
			Text:     text,
		})
	}
	return items
}

func srtPartsToSeconds(h, m, s, ms string) float64 {
	hh, _ := strconv.Atoi(h)
	mm, _ := strconv.Atoi(m)
	ss, _ := strconv.Atoi(s)
	for len(ms) < 3 {
		ms += "0"
	}
	msec, _ := strconv.Atoi(ms)
	return float64(hh)*3600 + float64(mm)*60 + float64(ss) + float64(msec)/1000
}

// SecondsToSRT formats seconds as an SRT timestamp (HH:MM:SS,mmm).
func SecondsToSRT(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	msTotal := int(sec*1000 + 0.5)
	h := msTotal / 3600000
	m := (msTotal % 3600000) / 60000
	s := (msTotal % 60000) / 1000
	ms := msTotal % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// StripSRTTags removes HTML-style and ASS override tags from cue text.
func StripSRTTags(text string) string {
	return strings.TrimSpace(srtTagRe.ReplaceAllString(text, ""))
}

// FormatSRT renders items back out as SRT, 1-based indices.
func FormatSRT(items []models.TranscriptItem) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, SecondsToSRT(item.StartSec), SecondsToSRT(item.EndSec), item.Text)
	}
	return b.String()
}

// BuildSceneSRT returns subtitles for one cut scene, rebased so the
// scene starts at zero. Cues are clipped to the scene bounds.
func BuildSceneSRT(items []models.TranscriptItem, sceneStart, sceneEnd float64) string {
	var out []models.TranscriptItem
	for _, item := range items {
		if item.EndSec <= sceneStart || item.StartSec >= sceneEnd {
			continue
		}
		start := item.StartSec
		if start < sceneStart {
			start = sceneStart
		}
		end := item.EndSec
		if end > sceneEnd {
			end = sceneEnd
		}
		out = append(out, models.TranscriptItem{
			StartSec: start - sceneStart,
			EndSec:   end - sceneStart,
			Text:     item.Text,
		})
	}
	return FormatSRT(out)
}

// BuildMergedSRT returns subtitles for a concatenation of scenes: each
// scene's cues are rebased onto the running output timeline.
func BuildMergedSRT(items []models.TranscriptItem, scenes []models.SceneCandidate) string {
	var out []models.TranscriptItem
	offset := 0.0
	for _, scene := range scenes {
		for _, item := range items {
			if item.EndSec <= scene.StartSec || item.StartSec >= scene.EndSec {
				continue
			}
			start := item.StartSec
			if start < scene.StartSec {
				start = scene.StartSec
			}
			end := item.EndSec
			if end > scene.EndSec {
				end = scene.EndSec
			}
			out = append(out, models.TranscriptItem{
				StartSec: start - scene.StartSec + offset,
				EndSec:   end - scene.StartSec + offset,
				Text:     item.Text,
			})
		}
		offset += scene.Duration()
	}
	return FormatSRT(out)
}
