package util

import (
	"fmt"
)

type RunStepProgress struct {
	Pending   string `json:"pending,omitempty"`
	Analyzing string `json:"analyzing,omitempty"`
	Analyzed  string `json:"analyzed,omitempty"`
	Building  string `json:"building,omitempty"`
	Ranking   string `json:"ranking,omitempty"`
	Reporting string `json:"reporting,omitempty"`
	Completed string `json:"completed,omitempty"`
	Failed    string `json:"failed,omitempty"`
}

type RunProgress struct {
	Step              *RunStepProgress
	Percentage        *int32
	EstimatedDuration *int64
	TimeRemaining     *int64
}

// RunProgressCounts aggregates mention-source states and the latest insight
// run stage for one project. Source analysis dominates the percentage; the
// run itself is the short final phase.
type RunProgressCounts struct {
	SourceTotal     int64
	SourcePending   int64
	SourceAnalyzing int64
	SourceAnalyzed  int64
	SourceFailed    int64

	RunStage string

	TotalEstimatedDuration     int64
	RemainingEstimatedDuration int64
}

const (
	ingestStepCount        int64 = 2
	totalProgressStepCount int64 = 5
	ingestProgressWeight   int64 = 4
)

var runStageWeights = map[string]int64{
	RunStagePending:   0,
	RunStageBuilding:  1,
	RunStageRanking:   2,
	RunStageReporting: 3,
	RunStageCompleted: 4,
}

const (
	RunStagePending   = "pending"
	RunStageBuilding  = "building"
	RunStageRanking   = "ranking"
	RunStageReporting = "reporting"
	RunStageCompleted = "completed"
	RunStageFailed    = "failed"
)

func BuildRunProgress(counts RunProgressCounts) RunProgress {
	if counts.SourceTotal <= 0 && counts.RunStage == "" {
		return RunProgress{}
	}

	stepProgress := RunStepProgress{}
	hasStep := false

	if counts.SourceTotal > 0 {
		if counts.SourcePending > 0 {
			stepProgress.Pending = fmt.Sprintf("%d/%d", counts.SourcePending, counts.SourceTotal)
			hasStep = true
		}
		if counts.SourceAnalyzing > 0 {
			stepProgress.Analyzing = fmt.Sprintf("%d/%d", counts.SourceAnalyzing, counts.SourceTotal)
			hasStep = true
		}
		if counts.SourceAnalyzed > 0 {
			stepProgress.Analyzed = fmt.Sprintf("%d/%d", counts.SourceAnalyzed, counts.SourceTotal)
			hasStep = true
		}
		if counts.SourceFailed > 0 {
			stepProgress.Failed = fmt.Sprintf("%d/%d", counts.SourceFailed, counts.SourceTotal)
			hasStep = true
		}
	}

	switch counts.RunStage {
	case RunStageBuilding:
		stepProgress.Building = counts.RunStage
		hasStep = true
	case RunStageRanking:
		stepProgress.Ranking = counts.RunStage
		hasStep = true
	case RunStageReporting:
		stepProgress.Reporting = counts.RunStage
		hasStep = true
	case RunStageCompleted:
		stepProgress.Completed = counts.RunStage
		hasStep = true
	case RunStageFailed:
		stepProgress.Failed = counts.RunStage
		hasStep = true
	}

	runProgress := RunProgress{}
	if hasStep {
		runProgress.Step = &stepProgress
	}

	percentage := CalculateRunProgressPercentage(counts)
	runProgress.Percentage = &percentage

	if counts.TotalEstimatedDuration > 0 {
		runProgress.EstimatedDuration = &counts.TotalEstimatedDuration
	}
	if counts.RemainingEstimatedDuration > 0 {
		runProgress.TimeRemaining = &counts.RemainingEstimatedDuration
	}

	return runProgress
}

func CalculateRunProgressPercentage(counts RunProgressCounts) int32 {
	ingestPct := calculateIngestPercentage(
		counts.SourceTotal,
		counts.SourceAnalyzing,
		counts.SourceAnalyzed,
	)

	runPct := int32(0)
	if weight, ok := runStageWeights[counts.RunStage]; ok {
		runPct = int32(weight * 100 / 4)
	}

	if counts.SourceTotal == 0 {
		return runPct
	}

	if ingestPct < 100 {
		return int32(int64(ingestPct) * ingestProgressWeight / totalProgressStepCount)
	}

	if counts.RunStage == "" {
		return int32(ingestProgressWeight * 100 / totalProgressStepCount)
	}
	return int32(ingestProgressWeight*100/totalProgressStepCount) + runPct/int32(totalProgressStepCount)
}

func calculateIngestPercentage(total, analyzing, analyzed int64) int32 {
	if total <= 0 {
		return 100
	}

	totalWork := total * ingestStepCount
	completedWork := min(analyzing+analyzed*2, totalWork)

	return int32(completedWork * 100 / totalWork)
}
