package engine

import (
	"context"
	"fmt"
	"time"

	"onboard/internal/logging"
	"onboard/internal/progress"
	"onboard/internal/scoring"
)

// evaluateSessionLocked recomputes the session status after any mutation.
// When every required stage settles, the entity is activated exactly once:
// the COMPLETED transition only fires from a non-completed status, and an
// activation failure parks the session in PENDING_REVIEW so the next
// mutation retries instead of re-activating a completed session.
func (e *Engine) evaluateSessionLocked(ctx context.Context, sessionID string) error {
	session, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("%w: session %q", progress.ErrNotFound, sessionID)
	}
	if session.Status == progress.SessionCompleted {
		return nil
	}

	stages, err := e.store.StagesBySession(ctx, sessionID)
	if err != nil {
		return err
	}
	fields, err := e.store.FieldsBySession(ctx, sessionID)
	if err != nil {
		return err
	}
	standings, _ := buildStandings(stages, fields)

	previous := session.Status
	if scoring.SessionComplete(standings) {
		score := scoring.Score(standings, e.factors)
		if err := e.activator.Activate(ctx, sessionID); err != nil {
			session.Status = progress.SessionPendingReview
			e.logger.Error("entity activation failed",
				logging.FieldSession, sessionID,
				logging.Error(err))
			if notifyErr := e.notifier.NotifyError(ctx, err, "entity activation for "+sessionID); notifyErr != nil {
				e.logger.Warn("activation failure notification failed", logging.Error(notifyErr))
			}
		} else {
			now := time.Now().UTC()
			session.Status = progress.SessionCompleted
			session.CompletedAt = &now
			e.logger.Info("onboarding completed",
				logging.FieldSession, sessionID,
				"score", score)
			if notifyErr := e.notifier.NotifyOnboardingCompleted(ctx, sessionID, score); notifyErr != nil {
				e.logger.Warn("completion notification failed", logging.Error(notifyErr))
			}
		}
	} else if anyProgress(standings) {
		session.Status = progress.SessionInProgress
	} else {
		session.Status = progress.SessionNotStarted
	}

	if session.Status == previous {
		return nil
	}
	return e.store.UpdateSession(ctx, session)
}

func anyProgress(standings []scoring.StageStanding) bool {
	for _, standing := range standings {
		if standing.Status != progress.StatusNotStarted {
			return true
		}
	}
	return false
}
