package autosave

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"onboard/internal/logging"
	"onboard/internal/progress"
)

// Write is a single auto-saved field mutation.
type Write struct {
	SessionID       string
	StageNumber     int
	FieldName       string
	Value           any
	ClientTimestamp time.Time
	Actor           string
}

// Applier merges one field write into the session, honoring per-session
// mutual exclusion and last-write-wins ordering. The engine implements it.
type Applier interface {
	ApplyFieldWrite(ctx context.Context, write Write) (stale bool, err error)
}

// Outcome classifies what happened to a write.
type Outcome string

const (
	// OutcomeApplied means the write reached the store.
	OutcomeApplied Outcome = "applied"
	// OutcomeStale means a newer write already owned the field; the
	// incoming value was discarded.
	OutcomeStale Outcome = "stale"
	// OutcomeRejected means the write referenced an unknown session,
	// stage, or field. Rejections carry their error and are fatal.
	OutcomeRejected Outcome = "rejected"
	// OutcomeSoftFailed means persistence failed; the failure was logged
	// and absorbed so the caller's flow continues.
	OutcomeSoftFailed Outcome = "soft_failed"
)

// Result reports the fate of one write. Err is set for OutcomeRejected and
// OutcomeSoftFailed; only rejections need handling by the caller.
// CorrelationID ties the result to the reconciler's log entries so a
// soft-failed save can be traced later.
type Result struct {
	Outcome       Outcome
	CorrelationID string
	Err           error
}

// Reconciler funnels auto-save writes through an Applier with a bounded
// per-write timeout.
type Reconciler struct {
	applier Applier
	logger  *slog.Logger
	timeout time.Duration
}

func New(applier Applier, logger *slog.Logger, timeout time.Duration) *Reconciler {
	if logger == nil {
		logger = logging.NewNop()
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Reconciler{
		applier: applier,
		logger:  logging.WithComponent(logger, "autosave"),
		timeout: timeout,
	}
}

// Save applies one write. It returns promptly even when the store is
// unavailable: persistence errors are logged and classified, not returned.
func (r *Reconciler) Save(ctx context.Context, write Write) Result {
	if write.ClientTimestamp.IsZero() {
		write.ClientTimestamp = time.Now().UTC()
	}
	correlationID := uuid.NewString()
	logger := r.logger.With(
		logging.FieldCorrelationID, correlationID,
		logging.FieldSession, write.SessionID,
		logging.FieldStage, write.StageNumber,
		logging.FieldField, write.FieldName)

	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	stale, err := r.applier.ApplyFieldWrite(opCtx, write)
	switch {
	case err == nil && stale:
		logger.Debug("stale write discarded")
		return Result{Outcome: OutcomeStale, CorrelationID: correlationID}
	case err == nil:
		logger.Debug("write applied")
		return Result{Outcome: OutcomeApplied, CorrelationID: correlationID}
	case errors.Is(err, progress.ErrNotFound),
		errors.Is(err, progress.ErrInvalidStage),
		errors.Is(err, progress.ErrInvalidField):
		return Result{Outcome: OutcomeRejected, CorrelationID: correlationID, Err: err}
	default:
		logger.Warn("auto-save write failed", logging.Error(err))
		return Result{Outcome: OutcomeSoftFailed, CorrelationID: correlationID, Err: err}
	}
}
