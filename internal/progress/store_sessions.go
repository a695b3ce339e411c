package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateSession inserts a session row when none exists for the identifier.
// Returns true when a new row was created; an existing session is left
// untouched so initialization stays idempotent.
func (s *Store) CreateSession(ctx context.Context, id string, totalSteps int) (bool, error) {
	now := formatTime(time.Now())
	res, err := s.execWithRetry(
		ctx,
		`INSERT OR IGNORE INTO sessions (id, current_step, total_steps, status, created_at, updated_at)
         VALUES (?, 1, ?, ?, ?, ?)`,
		id,
		totalSteps,
		SessionNotStarted,
		now,
		now,
	)
	if err != nil {
		return false, persistenceErr("insert session", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, persistenceErr("rows affected", err)
	}
	return affected > 0, nil
}

// GetSession fetches a session by identifier. Returns nil when missing.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT id, current_step, total_steps, status, created_at, updated_at, completed_at
         FROM sessions WHERE id = ?`,
		id,
	)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceErr("get session", err)
	}
	return session, nil
}

// UpdateSession persists mutable session columns.
func (s *Store) UpdateSession(ctx context.Context, session *Session) error {
	if session == nil {
		return errors.New("session is nil")
	}
	session.UpdatedAt = time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE sessions
         SET current_step = ?, total_steps = ?, status = ?, updated_at = ?, completed_at = ?
         WHERE id = ?`,
		session.CurrentStep,
		session.TotalSteps,
		session.Status,
		formatTime(session.UpdatedAt),
		nullableTime(session.CompletedAt),
		session.ID,
	)
	if err != nil {
		return persistenceErr("update session", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return persistenceErr("rows affected", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: session %q", ErrNotFound, session.ID)
	}
	return nil
}

// ListSessions returns sessions filtered by status set (or all sessions when
// no status is provided), ordered by creation time.
func (s *Store) ListSessions(ctx context.Context, statuses ...SessionStatus) ([]*Session, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT id, current_step, total_steps, status, created_at, updated_at, completed_at FROM sessions`
	orderClause := ` ORDER BY created_at`

	ctx = ensureContext(ctx)
	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, persistenceErr("list sessions", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, persistenceErr("scan session", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// SessionStats returns a count of sessions grouped by status.
func (s *Store) SessionStats(ctx context.Context) (map[SessionStatus]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM sessions GROUP BY status`)
	if err != nil {
		return nil, persistenceErr("session stats", err)
	}
	defer rows.Close()

	stats := make(map[SessionStatus]int)
	for rows.Next() {
		var status SessionStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, persistenceErr("scan stats", err)
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// SessionCounters recomputes derived completion counts from the session's
// stage and field rows. Nothing else stores these numbers.
func (s *Store) SessionCounters(ctx context.Context, sessionID string) (Counters, error) {
	ctx = ensureContext(ctx)
	var counters Counters

	row := s.db.QueryRowContext(
		ctx,
		`SELECT
            COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
         FROM stage_progress WHERE session_id = ?`,
		StatusCompleted,
		StatusSkipped,
		sessionID,
	)
	if err := row.Scan(&counters.StepsCompleted, &counters.StepsSkipped); err != nil {
		return Counters{}, persistenceErr("count stages", err)
	}

	row = s.db.QueryRowContext(
		ctx,
		`SELECT
            COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN is_skipped = 1 THEN 1 ELSE 0 END), 0),
            COUNT(1)
         FROM field_progress WHERE session_id = ?`,
		StatusCompleted,
		sessionID,
	)
	if err := row.Scan(&counters.FieldsCompleted, &counters.FieldsSkipped, &counters.TotalFields); err != nil {
		return Counters{}, persistenceErr("count fields", err)
	}

	return counters, nil
}

func scanSession(scanner interface{ Scan(dest ...any) error }) (*Session, error) {
	var (
		id           string
		currentStep  int
		totalSteps   int
		statusStr    string
		createdRaw   string
		updatedRaw   string
		completedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &currentStep, &totalSteps, &statusStr, &createdRaw, &updatedRaw, &completedRaw); err != nil {
		return nil, err
	}

	status, ok := ParseSessionStatus(statusStr)
	if !ok {
		return nil, fmt.Errorf("unknown session status %q", statusStr)
	}

	session := &Session{
		ID:          id,
		CurrentStep: currentStep,
		TotalSteps:  totalSteps,
		Status:      status,
		CompletedAt: parseOptionalTime(completedRaw),
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		session.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		session.UpdatedAt = updated
	}
	return session, nil
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
