package models

import "testing"

func TestJobClaimable(t *testing.T) {
	cases := []struct {
		name     string
		mode     ProcessingMode
		category string
		want     bool
	}{
		{"best scenes", ModeBestScenes, "", true},
		{"best scenes split", ModeBestScenesSplit, "", true},
		{"summary hybrid", ModeSummaryHybrid, "", true},
		{"story only", ModeStoryOnly, "", true},
		{"summary category with foreign mode", "transcode_720p", "summary", true},
		{"foreign mode", "transcode_720p", "", false},
		{"empty mode", "", "", false},
		{"short mode", "ai", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			job := &Job{Mode: tc.mode, Category: tc.category}
			if got := job.Claimable(); got != tc.want {
				t.Errorf("Claimable() = %v, want %v", got, tc.want)
			}
		})
	}
}
