package pipeline

import (
	"strings"
	"testing"

	"github.com/reelmaker/reelmaker-backend/internal/models"
)

const sampleSRT = "1\n00:00:01,000 --> 00:00:04,500\nHello there.\n\n" +
	"2\n00:00:05,000 --> 00:00:05,100\nblink\n\n" +
	"3\n00:00:06,000 --> 00:00:09,000\n<i>styled</i> {\\an8}text\n\n" +
	"garbage block without timestamps\n\n" +
	"4\n00:01:00,000 --> 00:01:03,250\nLast cue.\n"

func TestParseSRT(t *testing.T) {
	items := ParseSRT(sampleSRT)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].StartSec != 1.0 || items[0].EndSec != 4.5 {
		t.Fatalf("unexpected bounds for first item: %v-%v", items[0].StartSec, items[0].EndSec)
	}
	if items[0].Text != "Hello there." {
		t.Fatalf("unexpected text: %q", items[0].Text)
	}
	// Tag stripping.
	if items[1].Text != "styled text" {
		t.Fatalf("expected tags stripped, got %q", items[1].Text)
	}
	if items[2].StartSec != 60.0 {
		t.Fatalf("expected minute parsing, got %v", items[2].StartSec)
	}
	for i, item := range items {
		if item.Index != i {
			t.Fatalf("expected reindexed items, got %d at %d", item.Index, i)
		}
	}
}

func TestParseSRTWindowsLineEndings(t *testing.T) {
	crlf := strings.ReplaceAll(sampleSRT, "\n", "\r\n")
	if got := len(ParseSRT(crlf)); got != 3 {
		t.Fatalf("expected 3 items from CRLF input, got %d", got)
	}
}

func TestParseSRTDropsShortCues(t *testing.T) {
	items := ParseSRT("1\n00:00:01,000 --> 00:00:01,200\ntoo short\n")
	if len(items) != 0 {
		t.Fatalf("expected cue under a quarter second dropped, got %d items", len(items))
	}
}

func TestSecondsToSRT(t *testing.T) {
	cases := []struct {
		sec  float64
		want string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{61.25, "00:01:01,250"},
		{3661.001, "01:01:01,001"},
		{-5, "00:00:00,000"},
	}
	for _, tc := range cases {
		if got := SecondsToSRT(tc.sec); got != tc.want {
			t.Errorf("SecondsToSRT(%v) = %q, want %q", tc.sec, got, tc.want)
		}
	}
}

func TestBuildSceneSRTRebasesAndClips(t *testing.T) {
	items := []models.TranscriptItem{
		{StartSec: 8, EndSec: 12, Text: "before"},
		{StartSec: 14, EndSec: 18, Text: "inside"},
		{StartSec: 19, EndSec: 25, Text: "straddles end"},
		{StartSec: 30, EndSec: 33, Text: "after"},
	}
	out := BuildSceneSRT(items, 10, 20)
	if strings.Contains(out, "after") {
		t.Fatalf("cue outside the scene leaked into output:\n%s", out)
	}
	// "before" straddles the scene start: clipped to start at zero.
	if !strings.Contains(out, "00:00:00,000 --> 00:00:02,000") {
		t.Fatalf("expected clipped leading cue, got:\n%s", out)
	}
	if !strings.Contains(out, "00:00:04,000 --> 00:00:08,000") {
		t.Fatalf("expected rebased inner cue, got:\n%s", out)
	}
	// "straddles end" clipped at the scene end.
	if !strings.Contains(out, "00:00:09,000 --> 00:00:10,000") {
		t.Fatalf("expected clipped trailing cue, got:\n%s", out)
	}
}

func TestBuildMergedSRTAccumulatesOffsets(t *testing.T) {
	items := []models.TranscriptItem{
		{StartSec: 2, EndSec: 4, Text: "first scene cue"},
		{StartSec: 52, EndSec: 54, Text: "second scene cue"},
	}
	scenes := []models.SceneCandidate{
		{StartSec: 0, EndSec: 10},
		{StartSec: 50, EndSec: 60},
	}
	out := BuildMergedSRT(items, scenes)
	if !strings.Contains(out, "00:00:02,000 --> 00:00:04,000") {
		t.Fatalf("expected first cue on output timeline, got:\n%s", out)
	}
	// Second scene starts at 10s of output time, so 52s maps to 12s.
	if !strings.Contains(out, "00:00:12,000 --> 00:00:14,000") {
		t.Fatalf("expected second cue shifted by first scene length, got:\n%s", out)
	}
}
