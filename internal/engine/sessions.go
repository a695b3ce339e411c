package engine

import (
	"context"
	"errors"
	"strings"

	"onboard/internal/catalog"
	"onboard/internal/logging"
	"onboard/internal/progress"
)

// ErrEmptySessionID rejects initialization without an entity identifier.
var ErrEmptySessionID = errors.New("session id must not be empty")

// Initialize creates the progress skeleton for a session: the session row,
// one stage row per catalog stage, and one field row per declared field.
// It is idempotent; re-initializing an existing session changes nothing.
func (e *Engine) Initialize(ctx context.Context, sessionID string) (*Summary, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}

	opCtx, cancel := e.opContext(ctx)
	defer cancel()

	var summary *Summary
	err := e.withSessionLock(sessionID, func() error {
		created, err := e.store.CreateSession(opCtx, sessionID, catalog.StageCount())
		if err != nil {
			return err
		}
		for _, stageDef := range catalog.Stages() {
			if err := e.store.EnsureStage(opCtx, sessionID, stageDef.Number); err != nil {
				return err
			}
			stage, err := e.store.StageBySession(opCtx, sessionID, stageDef.Number)
			if err != nil {
				return err
			}
			if stage == nil {
				return progress.ErrNotFound
			}
			for _, fieldDef := range stageDef.Fields {
				if err := e.store.EnsureField(opCtx, stage.ID, sessionID, stageDef.Number, fieldDef.Name, fieldDef.Required); err != nil {
					return err
				}
			}
		}
		if created {
			e.logger.Info("session initialized",
				logging.FieldSession, sessionID,
				"stages", catalog.StageCount(),
				"fields", catalog.TotalFields())
		}
		summary, err = e.summaryLocked(opCtx, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// Progress returns the full read model for a session.
func (e *Engine) Progress(ctx context.Context, sessionID string) (*Summary, error) {
	opCtx, cancel := e.opContext(ctx)
	defer cancel()

	var summary *Summary
	err := e.withSessionLock(sessionID, func() error {
		var err error
		summary, err = e.summaryLocked(opCtx, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
