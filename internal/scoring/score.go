package scoring

import (
	"onboard/internal/progress"
)

// Factors holds the tunable constants of the score formula.
type Factors struct {
	// InProgressDamping scales the partial credit of in-progress stages.
	InProgressDamping float64
	// SkipCredit is the fraction of a stage's weight granted when skipped.
	SkipCredit float64
}

// DefaultFactors returns the factors observed in production behavior.
func DefaultFactors() Factors {
	return Factors{InProgressDamping: 0.7, SkipCredit: 0.5}
}

// StageStanding is one stage's contribution input to the score.
type StageStanding struct {
	Weight          int
	Required        bool
	Status          progress.Status
	FieldsCompleted int
	FieldsTotal     int
}

// Score computes the weighted completion score, clamped to [0, 100].
//
// Per stage with weight w: completed contributes w, skipped contributes
// w*SkipCredit, in-progress contributes w*(done/total)*InProgressDamping,
// not started contributes nothing.
func Score(stages []StageStanding, factors Factors) float64 {
	total := 0.0
	for _, stage := range stages {
		w := float64(stage.Weight)
		switch stage.Status {
		case progress.StatusCompleted:
			total += w
		case progress.StatusSkipped:
			total += w * factors.SkipCredit
		case progress.StatusInProgress:
			if stage.FieldsTotal > 0 {
				fraction := float64(stage.FieldsCompleted) / float64(stage.FieldsTotal)
				total += w * fraction * factors.InProgressDamping
			}
		}
	}
	if total < 0 {
		return 0
	}
	if total > 100 {
		return 100
	}
	return total
}

// SessionComplete reports whether every required stage is settled
// (completed or skipped). Optional stages never block completion.
func SessionComplete(stages []StageStanding) bool {
	if len(stages) == 0 {
		return false
	}
	for _, stage := range stages {
		if !stage.Required {
			continue
		}
		if !stage.Status.Settled() {
			return false
		}
	}
	return true
}

// EstimatedMinutesRemaining sums the remaining time estimate across stages,
// prorating in-progress stages by their completed-field fraction.
func EstimatedMinutesRemaining(stages []StageStanding, minutes []int) int {
	remaining := 0.0
	for i, stage := range stages {
		if i >= len(minutes) {
			break
		}
		switch stage.Status {
		case progress.StatusCompleted, progress.StatusSkipped:
		case progress.StatusInProgress:
			fraction := 0.0
			if stage.FieldsTotal > 0 {
				fraction = float64(stage.FieldsCompleted) / float64(stage.FieldsTotal)
			}
			remaining += float64(minutes[i]) * (1 - fraction)
		default:
			remaining += float64(minutes[i])
		}
	}
	return int(remaining + 0.5)
}
