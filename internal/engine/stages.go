package engine

import (
	"context"
	"fmt"
	"time"

	"onboard/internal/catalog"
	"onboard/internal/logging"
	"onboard/internal/progress"
)

// UpdateStage applies the declared fields present in payload, then, when
// completed is true, runs enforcing validation and marks the stage
// COMPLETED. A validation failure is returned as *progress.ValidationError
// and leaves every field write in place.
func (e *Engine) UpdateStage(ctx context.Context, sessionID string, stageNumber int, payload map[string]any, completed bool, actor string) (*Summary, error) {
	stageDef, ok := catalog.StageByNumber(stageNumber)
	if !ok {
		return nil, fmt.Errorf("%w: stage %d", progress.ErrInvalidStage, stageNumber)
	}

	opCtx, cancel := e.opContext(ctx)
	defer cancel()

	var summary *Summary
	err := e.withSessionLock(sessionID, func() error {
		now := time.Now().UTC()
		for _, fieldDef := range stageDef.Fields {
			value, present := payload[fieldDef.Name]
			if !present {
				continue
			}
			if _, err := e.applyFieldLocked(opCtx, sessionID, fieldWrite{
				stageNumber: stageNumber,
				fieldName:   fieldDef.Name,
				value:       value,
				timestamp:   now,
				actor:       actor,
			}); err != nil {
				return err
			}
		}

		if completed {
			if err := e.completeStageLocked(opCtx, sessionID, stageDef, actor); err != nil {
				return err
			}
		}

		if err := e.evaluateSessionLocked(opCtx, sessionID); err != nil {
			return err
		}
		var err error
		summary, err = e.summaryLocked(opCtx, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// completeStageLocked enforces validation and settles the stage. An
// explicit completed submission also lifts a stage-level skip.
func (e *Engine) completeStageLocked(ctx context.Context, sessionID string, stageDef catalog.Stage, actor string) error {
	stage, err := e.store.StageBySession(ctx, sessionID, stageDef.Number)
	if err != nil {
		return err
	}
	if stage == nil {
		return fmt.Errorf("%w: session %q stage %d", progress.ErrNotFound, sessionID, stageDef.Number)
	}
	fields, err := e.store.FieldsByStage(ctx, sessionID, stageDef.Number)
	if err != nil {
		return err
	}

	result := validateStage(stageDef.Number, fields)
	stage.IsValid = result.IsValid
	stage.ValidationErrors = result.Errors
	if !result.IsValid {
		if err := e.store.UpdateStageProgress(ctx, stage); err != nil {
			return err
		}
		e.logger.Info("stage submission blocked by validation",
			logging.FieldSession, sessionID,
			logging.FieldStage, stageDef.Number,
			"errors", len(result.Errors))
		return &progress.ValidationError{StageNumber: stageDef.Number, Errors: result.Errors}
	}

	now := time.Now().UTC()
	wasSkipped := stage.Status == progress.StatusSkipped
	stage.Status = progress.StatusCompleted
	stage.CompletedAt = &now
	stage.SkippedAt = nil
	if stage.StartedAt == nil {
		stage.StartedAt = &now
	}
	if err := e.store.UpdateStageProgress(ctx, stage); err != nil {
		return err
	}
	if wasSkipped {
		if _, err := e.store.CloseSkipRecords(ctx, sessionID, progress.SkipItemStage, stageDef.Number, "", actor); err != nil {
			return err
		}
	}

	if err := e.advanceCurrentStepLocked(ctx, sessionID, stageDef.Number); err != nil {
		return err
	}

	e.logger.Info("stage completed",
		logging.FieldSession, sessionID,
		logging.FieldStage, stageDef.Number,
		logging.FieldActor, actor)
	if err := e.notifier.NotifyStageCompleted(ctx, sessionID, stageDef.Name); err != nil {
		e.logger.Warn("stage completion notification failed", logging.Error(err))
	}
	return nil
}

// advanceCurrentStepLocked moves the session pointer past a completed
// stage, clamped to the final step. It never moves backwards.
func (e *Engine) advanceCurrentStepLocked(ctx context.Context, sessionID string, completedStage int) error {
	session, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("%w: session %q", progress.ErrNotFound, sessionID)
	}
	next := completedStage + 1
	if next > session.TotalSteps {
		next = session.TotalSteps
	}
	if next <= session.CurrentStep {
		return nil
	}
	session.CurrentStep = next
	return e.store.UpdateSession(ctx, session)
}
