package engine

import (
	"context"
	"fmt"
	"time"

	"onboard/internal/autosave"
	"onboard/internal/catalog"
	"onboard/internal/logging"
	"onboard/internal/progress"
	"onboard/internal/validation"
)

// fieldWrite is the normalized form of one field mutation.
type fieldWrite struct {
	stageNumber int
	fieldName   string
	value       any
	timestamp   time.Time
	actor       string
}

// UpdateField applies one explicit field write and returns the refreshed
// summary. Unlike the auto-save path, persistence errors propagate.
func (e *Engine) UpdateField(ctx context.Context, sessionID string, stageNumber int, fieldName string, value any, actor string) (*Summary, error) {
	opCtx, cancel := e.opContext(ctx)
	defer cancel()

	var summary *Summary
	err := e.withSessionLock(sessionID, func() error {
		write := fieldWrite{
			stageNumber: stageNumber,
			fieldName:   fieldName,
			value:       value,
			timestamp:   time.Now().UTC(),
			actor:       actor,
		}
		if _, err := e.applyFieldLocked(opCtx, sessionID, write); err != nil {
			return err
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

// ApplyFieldWrite merges one auto-saved write under the session lock. It
// implements autosave.Applier; the reconciler owns timeout and soft-fail
// handling.
func (e *Engine) ApplyFieldWrite(ctx context.Context, write autosave.Write) (bool, error) {
	var stale bool
	err := e.withSessionLock(write.SessionID, func() error {
		var applyErr error
		stale, applyErr = e.applyFieldLocked(ctx, write.SessionID, fieldWrite{
			stageNumber: write.StageNumber,
			fieldName:   write.FieldName,
			value:       write.Value,
			timestamp:   write.ClientTimestamp.UTC(),
			actor:       write.Actor,
		})
		if applyErr != nil || stale {
			return applyErr
		}
		return e.evaluateSessionLocked(ctx, write.SessionID)
	})
	return stale, err
}

// applyFieldLocked validates the target, enforces last-write-wins, writes
// the field row, and recomputes the owning stage. Caller holds the session
// lock.
func (e *Engine) applyFieldLocked(ctx context.Context, sessionID string, write fieldWrite) (bool, error) {
	stageDef, ok := catalog.StageByNumber(write.stageNumber)
	if !ok {
		return false, fmt.Errorf("%w: stage %d", progress.ErrInvalidStage, write.stageNumber)
	}
	if _, ok := stageDef.FieldByName(write.fieldName); !ok {
		return false, fmt.Errorf("%w: %q in stage %d", progress.ErrInvalidField, write.fieldName, write.stageNumber)
	}

	field, err := e.store.FieldByName(ctx, sessionID, write.stageNumber, write.fieldName)
	if err != nil {
		return false, err
	}
	if field == nil {
		return false, fmt.Errorf("%w: session %q has no progress for %s", progress.ErrNotFound, sessionID, write.fieldName)
	}

	if field.LastModifiedAt != nil && write.timestamp.Before(*field.LastModifiedAt) {
		// The value is discarded, but the arrival itself goes into the
		// structured log as the audit trail for out-of-order edits.
		e.logger.Info("stale write superseded",
			logging.FieldSession, sessionID,
			logging.FieldStage, write.stageNumber,
			logging.FieldField, write.fieldName,
			logging.FieldActor, write.actor,
			"client_ts", write.timestamp,
			"stored_ts", *field.LastModifiedAt)
		return true, nil
	}

	encoded, err := encodeValue(write.value)
	if err != nil {
		return false, err
	}
	empty := progress.IsEmptyValue(encoded)

	field.Value = encoded
	timestamp := write.timestamp
	field.LastModifiedAt = &timestamp
	switch {
	case field.IsSkipped:
		// Value recorded, but a skipped field changes status only via unskip.
	case empty && field.Status == progress.StatusNotStarted:
		// Empty write on an untouched field leaves it untouched.
	case empty:
		field.Status = progress.StatusInProgress
	default:
		field.Status = progress.StatusCompleted
	}

	if err := e.store.UpdateFieldProgress(ctx, field); err != nil {
		return false, err
	}
	e.logger.Debug("field updated",
		logging.FieldSession, sessionID,
		logging.FieldStage, write.stageNumber,
		logging.FieldField, write.fieldName,
		logging.FieldActor, write.actor,
		"status", string(field.Status))

	return false, e.recomputeStageLocked(ctx, sessionID, write.stageNumber)
}

// recomputeStageLocked refreshes a stage's status and advisory validation
// from its field rows. A skipped stage keeps its status until an explicit
// unskip or completed submission.
func (e *Engine) recomputeStageLocked(ctx context.Context, sessionID string, stageNumber int) error {
	stage, err := e.store.StageBySession(ctx, sessionID, stageNumber)
	if err != nil {
		return err
	}
	if stage == nil {
		return fmt.Errorf("%w: session %q stage %d", progress.ErrNotFound, sessionID, stageNumber)
	}

	fields, err := e.store.FieldsByStage(ctx, sessionID, stageNumber)
	if err != nil {
		return err
	}

	touched := false
	requiredSettled := true
	for _, field := range fields {
		if field.Status != progress.StatusNotStarted {
			touched = true
		}
		if field.IsRequired && !field.Status.Settled() {
			requiredSettled = false
		}
	}

	result := validateStage(stageNumber, fields)

	updated := *stage
	updated.IsValid = result.IsValid
	updated.ValidationErrors = result.Errors

	if updated.Status != progress.StatusSkipped {
		switch {
		case !touched:
			updated.Status = progress.StatusNotStarted
		case updated.Status == progress.StatusCompleted && requiredSettled:
			// Submission stands while every required field stays settled.
		default:
			updated.Status = progress.StatusInProgress
			updated.CompletedAt = nil
		}
		if updated.Status != progress.StatusNotStarted && updated.StartedAt == nil {
			now := time.Now().UTC()
			updated.StartedAt = &now
		}
	}

	return e.store.UpdateStageProgress(ctx, &updated)
}

// validateStage runs the stage rules against stored field rows. Skipped
// fields are exempt from the required check; a deliberate skip is not a
// validation failure.
func validateStage(stageNumber int, fields []*progress.FieldProgress) validation.Result {
	data := make(map[string]any, len(fields))
	for _, field := range fields {
		if value := decodeValue(field.Value); value != nil {
			data[field.FieldName] = value
		}
	}
	result := validation.ValidateStage(stageNumber, data)
	for _, field := range fields {
		if field.IsSkipped {
			delete(result.Errors, field.FieldName)
		}
	}
	result.IsValid = len(result.Errors) == 0
	return result
}
