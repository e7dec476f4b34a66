package util

import "testing"

func TestInsightStatusFromRunStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		runStatus string
		hasRun    bool
		want      string
	}{
		{
			name:      "no_run_returns_no_insights",
			runStatus: "",
			hasRun:    false,
			want:      "no_insights",
		},
		{
			name:      "completed_maps_to_ready",
			runStatus: "completed",
			hasRun:    true,
			want:      "ready",
		},
		{
			name:      "failed_maps_to_failed",
			runStatus: "failed",
			hasRun:    true,
			want:      "failed",
		},
		{
			name:      "pending_maps_to_queued",
			runStatus: "pending",
			hasRun:    true,
			want:      "queued",
		},
		{
			name:      "building_maps_to_processing",
			runStatus: "building",
			hasRun:    true,
			want:      "processing",
		},
		{
			name:      "ranking_maps_to_processing",
			runStatus: "ranking",
			hasRun:    true,
			want:      "processing",
		},
		{
			name:      "unknown_status_maps_to_processing",
			runStatus: "something_else",
			hasRun:    true,
			want:      "processing",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := InsightStatusFromRunStatus(tc.runStatus, tc.hasRun)
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
