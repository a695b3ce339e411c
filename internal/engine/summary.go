package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"onboard/internal/catalog"
	"onboard/internal/progress"
	"onboard/internal/scoring"
)

// FieldSummary is the read model for one field.
type FieldSummary struct {
	Name           string          `json:"name"`
	Status         progress.Status `json:"status"`
	Required       bool            `json:"required"`
	Skipped        bool            `json:"skipped"`
	SkipReason     string          `json:"skipReason,omitempty"`
	Value          any             `json:"value,omitempty"`
	LastModifiedAt *time.Time      `json:"lastModifiedAt,omitempty"`
}

// StageSummary is the read model for one stage.
type StageSummary struct {
	StageNumber      int               `json:"stageNumber"`
	Name             string            `json:"name"`
	Status           progress.Status   `json:"status"`
	Required         bool              `json:"required"`
	Weight           int               `json:"weight"`
	IsValid          bool              `json:"isValid"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
	FieldsCompleted  int               `json:"fieldsCompleted"`
	FieldsTotal      int               `json:"fieldsTotal"`
	Fields           []FieldSummary    `json:"fields"`
}

// SkipSummary is the read model for one active skip.
type SkipSummary struct {
	ItemType    progress.SkipItemType `json:"itemType"`
	StageNumber int                   `json:"stageNumber"`
	FieldName   string                `json:"fieldName,omitempty"`
	Reason      string                `json:"reason,omitempty"`
	Category    string                `json:"category,omitempty"`
	SkippedBy   string                `json:"skippedBy,omitempty"`
	SkippedAt   time.Time             `json:"skippedAt"`
}

// Summary is the full progress read model for one session.
type Summary struct {
	SessionID              string                 `json:"sessionId"`
	CurrentStep            int                    `json:"currentStep"`
	TotalSteps             int                    `json:"totalSteps"`
	StepsCompleted         int                    `json:"stepsCompleted"`
	StepsSkipped           int                    `json:"stepsSkipped"`
	FieldsCompleted        int                    `json:"fieldsCompleted"`
	FieldsSkipped          int                    `json:"fieldsSkipped"`
	TotalFields            int                    `json:"totalFields"`
	ProgressPercentage     float64                `json:"progressPercentage"`
	Status                 progress.SessionStatus `json:"status"`
	EstimatedTimeRemaining int                    `json:"estimatedTimeRemaining"`
	CompletedAt            *time.Time             `json:"completedAt,omitempty"`
	PerStage               []StageSummary         `json:"perStage"`
	ActiveSkips            []SkipSummary          `json:"activeSkips"`
}

// summaryLocked assembles the read model from stored rows. Caller holds
// the session lock so the snapshot is internally consistent.
func (e *Engine) summaryLocked(ctx context.Context, sessionID string) (*Summary, error) {
	session, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: session %q", progress.ErrNotFound, sessionID)
	}

	stages, err := e.store.StagesBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	fields, err := e.store.FieldsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	counters, err := e.store.SessionCounters(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	skips, err := e.store.ActiveSkipRecords(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	standings, minutes := buildStandings(stages, fields)
	score := scoring.Score(standings, e.factors)

	stagesByNumber := make(map[int]*progress.StageProgress, len(stages))
	for _, stage := range stages {
		stagesByNumber[stage.StageNumber] = stage
	}
	fieldsByStage := make(map[int][]*progress.FieldProgress)
	for _, field := range fields {
		fieldsByStage[field.StageNumber] = append(fieldsByStage[field.StageNumber], field)
	}

	perStage := make([]StageSummary, 0, catalog.StageCount())
	for i, stageDef := range catalog.Stages() {
		stageSummary := StageSummary{
			StageNumber: stageDef.Number,
			Name:        stageDef.Name,
			Status:      progress.StatusNotStarted,
			Required:    stageDef.Required,
			Weight:      stageDef.Weight,
			IsValid:     true,
			FieldsTotal: len(stageDef.Fields),
		}
		if stage := stagesByNumber[stageDef.Number]; stage != nil {
			stageSummary.Status = stage.Status
			stageSummary.IsValid = stage.IsValid
			stageSummary.ValidationErrors = stage.ValidationErrors
		}
		stageSummary.FieldsCompleted = standings[i].FieldsCompleted
		for _, field := range fieldsByStage[stageDef.Number] {
			stageSummary.Fields = append(stageSummary.Fields, FieldSummary{
				Name:           field.FieldName,
				Status:         field.Status,
				Required:       field.IsRequired,
				Skipped:        field.IsSkipped,
				SkipReason:     field.SkipReason,
				Value:          decodeValue(field.Value),
				LastModifiedAt: field.LastModifiedAt,
			})
		}
		perStage = append(perStage, stageSummary)
	}

	activeSkips := make([]SkipSummary, 0, len(skips))
	for _, record := range skips {
		activeSkips = append(activeSkips, SkipSummary{
			ItemType:    record.ItemType,
			StageNumber: record.StageNumber,
			FieldName:   record.FieldName,
			Reason:      record.Reason,
			Category:    record.Category,
			SkippedBy:   record.SkippedBy,
			SkippedAt:   record.SkippedAt,
		})
	}

	return &Summary{
		SessionID:              session.ID,
		CurrentStep:            session.CurrentStep,
		TotalSteps:             session.TotalSteps,
		StepsCompleted:         counters.StepsCompleted,
		StepsSkipped:           counters.StepsSkipped,
		FieldsCompleted:        counters.FieldsCompleted,
		FieldsSkipped:          counters.FieldsSkipped,
		TotalFields:            counters.TotalFields,
		ProgressPercentage:     math.Round(score*100) / 100,
		Status:                 session.Status,
		EstimatedTimeRemaining: scoring.EstimatedMinutesRemaining(standings, minutes),
		CompletedAt:            session.CompletedAt,
		PerStage:               perStage,
		ActiveSkips:            activeSkips,
	}, nil
}

// buildStandings projects stored rows onto the scoring inputs, ordered by
// catalog stage number. Missing rows count as not started.
func buildStandings(stages []*progress.StageProgress, fields []*progress.FieldProgress) ([]scoring.StageStanding, []int) {
	statusByStage := make(map[int]progress.Status, len(stages))
	for _, stage := range stages {
		statusByStage[stage.StageNumber] = stage.Status
	}
	completedByStage := make(map[int]int)
	for _, field := range fields {
		if field.Status == progress.StatusCompleted {
			completedByStage[field.StageNumber]++
		}
	}

	defs := catalog.Stages()
	standings := make([]scoring.StageStanding, 0, len(defs))
	minutes := make([]int, 0, len(defs))
	for _, stageDef := range defs {
		status, ok := statusByStage[stageDef.Number]
		if !ok {
			status = progress.StatusNotStarted
		}
		standings = append(standings, scoring.StageStanding{
			Weight:          stageDef.Weight,
			Required:        stageDef.Required,
			Status:          status,
			FieldsCompleted: completedByStage[stageDef.Number],
			FieldsTotal:     len(stageDef.Fields),
		})
		minutes = append(minutes, stageDef.EstimatedMinutes)
	}
	return standings, minutes
}
