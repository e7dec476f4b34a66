package util

// InsightStatusFromRunStatus maps a run's lifecycle stage to the coarse
// insight status the project API reports.
func InsightStatusFromRunStatus(runStatus string, hasRun bool) string {
	if !hasRun {
		return "no_insights"
	}

	switch runStatus {
	case "completed":
		return "ready"
	case "failed":
		return "failed"
	case "pending":
		return "queued"
	default:
		return "processing"
	}
}
