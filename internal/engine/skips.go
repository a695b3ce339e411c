package engine

import (
	"context"
	"fmt"
	"time"

	"onboard/internal/catalog"
	"onboard/internal/logging"
	"onboard/internal/progress"
)

// SkipRequest carries the audit details of a skip decision.
type SkipRequest struct {
	Reason   string
	Category string
	Actor    string
}

// SkipField marks one field SKIPPED and appends an active skip record.
// Skipping an already-skipped field refreshes the reason without adding a
// second active record.
func (e *Engine) SkipField(ctx context.Context, sessionID string, stageNumber int, fieldName string, req SkipRequest) (*Summary, error) {
	opCtx, cancel := e.opContext(ctx)
	defer cancel()

	var summary *Summary
	err := e.withSessionLock(sessionID, func() error {
		field, err := e.lookupFieldLocked(opCtx, sessionID, stageNumber, fieldName)
		if err != nil {
			return err
		}

		if !field.IsSkipped {
			if err := e.store.AppendSkipRecord(opCtx, &progress.SkipRecord{
				SessionID:   sessionID,
				ItemType:    progress.SkipItemField,
				StageNumber: stageNumber,
				FieldName:   fieldName,
				Reason:      req.Reason,
				Category:    req.Category,
				SkippedBy:   req.Actor,
				SkippedAt:   time.Now().UTC(),
			}); err != nil {
				return err
			}
		}
		field.IsSkipped = true
		field.SkipReason = req.Reason
		field.Status = progress.StatusSkipped
		if err := e.store.UpdateFieldProgress(opCtx, field); err != nil {
			return err
		}
		e.logger.Info("field skipped",
			logging.FieldSession, sessionID,
			logging.FieldStage, stageNumber,
			logging.FieldField, fieldName,
			logging.FieldActor, req.Actor,
			"reason", req.Reason)

		if err := e.recomputeStageLocked(opCtx, sessionID, stageNumber); err != nil {
			return err
		}
		if err := e.evaluateSessionLocked(opCtx, sessionID); err != nil {
			return err
		}
		e.checkSkipThresholdLocked(opCtx, sessionID)
		summary, err = e.summaryLocked(opCtx, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// UnskipField lifts a field skip, closes its active record, and restores
// the status the preserved value implies: COMPLETED when a value survives,
// NOT_STARTED otherwise. Unskipping a field with no active skip is a no-op.
func (e *Engine) UnskipField(ctx context.Context, sessionID string, stageNumber int, fieldName, actor string) (*Summary, error) {
	opCtx, cancel := e.opContext(ctx)
	defer cancel()

	var summary *Summary
	err := e.withSessionLock(sessionID, func() error {
		field, err := e.lookupFieldLocked(opCtx, sessionID, stageNumber, fieldName)
		if err != nil {
			return err
		}
		if field.IsSkipped {
			field.IsSkipped = false
			field.SkipReason = ""
			if field.HasValue() {
				field.Status = progress.StatusCompleted
			} else {
				field.Status = progress.StatusNotStarted
			}
			if err := e.store.UpdateFieldProgress(opCtx, field); err != nil {
				return err
			}
			if _, err := e.store.CloseSkipRecords(opCtx, sessionID, progress.SkipItemField, stageNumber, fieldName, actor); err != nil {
				return err
			}
			e.logger.Info("field unskipped",
				logging.FieldSession, sessionID,
				logging.FieldStage, stageNumber,
				logging.FieldField, fieldName,
				logging.FieldActor, actor)
			if err := e.recomputeStageLocked(opCtx, sessionID, stageNumber); err != nil {
				return err
			}
			if err := e.evaluateSessionLocked(opCtx, sessionID); err != nil {
				return err
			}
		}
		summary, err = e.summaryLocked(opCtx, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// SkipStage marks a whole stage SKIPPED. The stage's fields keep their
// individual state; only the stage status settles.
func (e *Engine) SkipStage(ctx context.Context, sessionID string, stageNumber int, req SkipRequest) (*Summary, error) {
	opCtx, cancel := e.opContext(ctx)
	defer cancel()

	var summary *Summary
	err := e.withSessionLock(sessionID, func() error {
		stage, err := e.lookupStageLocked(opCtx, sessionID, stageNumber)
		if err != nil {
			return err
		}

		if stage.Status != progress.StatusSkipped {
			now := time.Now().UTC()
			if err := e.store.AppendSkipRecord(opCtx, &progress.SkipRecord{
				SessionID:   sessionID,
				ItemType:    progress.SkipItemStage,
				StageNumber: stageNumber,
				Reason:      req.Reason,
				Category:    req.Category,
				SkippedBy:   req.Actor,
				SkippedAt:   now,
			}); err != nil {
				return err
			}
			stage.Status = progress.StatusSkipped
			stage.SkippedAt = &now
			stage.CompletedAt = nil
			if err := e.store.UpdateStageProgress(opCtx, stage); err != nil {
				return err
			}
			e.logger.Info("stage skipped",
				logging.FieldSession, sessionID,
				logging.FieldStage, stageNumber,
				logging.FieldActor, req.Actor,
				"reason", req.Reason)
		}

		if err := e.evaluateSessionLocked(opCtx, sessionID); err != nil {
			return err
		}
		e.checkSkipThresholdLocked(opCtx, sessionID)
		summary, err = e.summaryLocked(opCtx, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// UnskipStage lifts a stage skip and recomputes the stage status from its
// fields. Unskipping a stage with no active skip is a no-op.
func (e *Engine) UnskipStage(ctx context.Context, sessionID string, stageNumber int, actor string) (*Summary, error) {
	opCtx, cancel := e.opContext(ctx)
	defer cancel()

	var summary *Summary
	err := e.withSessionLock(sessionID, func() error {
		stage, err := e.lookupStageLocked(opCtx, sessionID, stageNumber)
		if err != nil {
			return err
		}
		if stage.Status == progress.StatusSkipped {
			stage.Status = progress.StatusInProgress
			stage.SkippedAt = nil
			if err := e.store.UpdateStageProgress(opCtx, stage); err != nil {
				return err
			}
			if _, err := e.store.CloseSkipRecords(opCtx, sessionID, progress.SkipItemStage, stageNumber, "", actor); err != nil {
				return err
			}
			e.logger.Info("stage unskipped",
				logging.FieldSession, sessionID,
				logging.FieldStage, stageNumber,
				logging.FieldActor, actor)
			if err := e.recomputeStageLocked(opCtx, sessionID, stageNumber); err != nil {
				return err
			}
			if err := e.evaluateSessionLocked(opCtx, sessionID); err != nil {
				return err
			}
		}
		summary, err = e.summaryLocked(opCtx, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (e *Engine) lookupFieldLocked(ctx context.Context, sessionID string, stageNumber int, fieldName string) (*progress.FieldProgress, error) {
	stageDef, ok := catalog.StageByNumber(stageNumber)
	if !ok {
		return nil, fmt.Errorf("%w: stage %d", progress.ErrInvalidStage, stageNumber)
	}
	if _, ok := stageDef.FieldByName(fieldName); !ok {
		return nil, fmt.Errorf("%w: %q in stage %d", progress.ErrInvalidField, fieldName, stageNumber)
	}
	field, err := e.store.FieldByName(ctx, sessionID, stageNumber, fieldName)
	if err != nil {
		return nil, err
	}
	if field == nil {
		return nil, fmt.Errorf("%w: session %q has no progress for %s", progress.ErrNotFound, sessionID, fieldName)
	}
	return field, nil
}

func (e *Engine) lookupStageLocked(ctx context.Context, sessionID string, stageNumber int) (*progress.StageProgress, error) {
	if _, ok := catalog.StageByNumber(stageNumber); !ok {
		return nil, fmt.Errorf("%w: stage %d", progress.ErrInvalidStage, stageNumber)
	}
	stage, err := e.store.StageBySession(ctx, sessionID, stageNumber)
	if err != nil {
		return nil, err
	}
	if stage == nil {
		return nil, fmt.Errorf("%w: session %q stage %d", progress.ErrNotFound, sessionID, stageNumber)
	}
	return stage, nil
}

// checkSkipThresholdLocked fires a notification when the active skip count
// reaches the configured threshold. Failures are logged, never returned.
func (e *Engine) checkSkipThresholdLocked(ctx context.Context, sessionID string) {
	if e.skipThreshold <= 0 {
		return
	}
	records, err := e.store.ActiveSkipRecords(ctx, sessionID)
	if err != nil {
		e.logger.Warn("skip threshold check failed", logging.Error(err))
		return
	}
	if len(records) != e.skipThreshold {
		return
	}
	if err := e.notifier.NotifySkipThreshold(ctx, sessionID, len(records)); err != nil {
		e.logger.Warn("skip threshold notification failed", logging.Error(err))
	}
}
