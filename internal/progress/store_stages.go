package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

const stageColumns = "id, session_id, stage_number, status, is_valid, validation_errors, started_at, completed_at, skipped_at, created_at, updated_at"

// EnsureStage inserts a stage_progress row when none exists for the
// (session, stage) pair. Existing rows are left untouched.
func (s *Store) EnsureStage(ctx context.Context, sessionID string, stageNumber int) error {
	now := formatTime(time.Now())
	_, err := s.execWithRetry(
		ctx,
		`INSERT OR IGNORE INTO stage_progress (session_id, stage_number, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		sessionID,
		stageNumber,
		StatusNotStarted,
		now,
		now,
	)
	if err != nil {
		return persistenceErr("insert stage", err)
	}
	return nil
}

// StageBySession fetches one stage of a session. Returns nil when missing.
func (s *Store) StageBySession(ctx context.Context, sessionID string, stageNumber int) (*StageProgress, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+stageColumns+` FROM stage_progress WHERE session_id = ? AND stage_number = ?`,
		sessionID,
		stageNumber,
	)
	stage, err := scanStage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceErr("get stage", err)
	}
	return stage, nil
}

// StagesBySession returns all stage rows for a session ordered by stage number.
func (s *Store) StagesBySession(ctx context.Context, sessionID string) ([]*StageProgress, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+stageColumns+` FROM stage_progress WHERE session_id = ? ORDER BY stage_number`,
		sessionID,
	)
	if err != nil {
		return nil, persistenceErr("list stages", err)
	}
	defer rows.Close()

	var stages []*StageProgress
	for rows.Next() {
		stage, err := scanStage(rows)
		if err != nil {
			return nil, persistenceErr("scan stage", err)
		}
		stages = append(stages, stage)
	}
	return stages, rows.Err()
}

// UpdateStageProgress persists mutable stage columns.
func (s *Store) UpdateStageProgress(ctx context.Context, stage *StageProgress) error {
	if stage == nil {
		return errors.New("stage is nil")
	}
	stage.UpdatedAt = time.Now().UTC()

	var validationJSON any
	if len(stage.ValidationErrors) > 0 {
		encoded, err := json.Marshal(stage.ValidationErrors)
		if err != nil {
			return persistenceErr("marshal validation errors", err)
		}
		validationJSON = string(encoded)
	}

	_, err := s.execWithRetry(
		ctx,
		`UPDATE stage_progress
         SET status = ?, is_valid = ?, validation_errors = ?,
             started_at = ?, completed_at = ?, skipped_at = ?, updated_at = ?
         WHERE id = ?`,
		stage.Status,
		boolToInt(stage.IsValid),
		validationJSON,
		nullableTime(stage.StartedAt),
		nullableTime(stage.CompletedAt),
		nullableTime(stage.SkippedAt),
		formatTime(stage.UpdatedAt),
		stage.ID,
	)
	if err != nil {
		return persistenceErr("update stage", err)
	}
	return nil
}

func scanStage(scanner interface{ Scan(dest ...any) error }) (*StageProgress, error) {
	var (
		id            int64
		sessionID     string
		stageNumber   int
		statusStr     string
		isValid       int
		validationRaw sql.NullString
		startedRaw    sql.NullString
		completedRaw  sql.NullString
		skippedRaw    sql.NullString
		createdRaw    string
		updatedRaw    string
	)
	if err := scanner.Scan(
		&id,
		&sessionID,
		&stageNumber,
		&statusStr,
		&isValid,
		&validationRaw,
		&startedRaw,
		&completedRaw,
		&skippedRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	stage := &StageProgress{
		ID:          id,
		SessionID:   sessionID,
		StageNumber: stageNumber,
		Status:      Status(statusStr),
		IsValid:     isValid != 0,
		StartedAt:   parseOptionalTime(startedRaw),
		CompletedAt: parseOptionalTime(completedRaw),
		SkippedAt:   parseOptionalTime(skippedRaw),
	}
	if validationRaw.Valid && validationRaw.String != "" {
		parsed := make(map[string]string)
		if err := json.Unmarshal([]byte(validationRaw.String), &parsed); err == nil {
			stage.ValidationErrors = parsed
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		stage.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		stage.UpdatedAt = updated
	}
	return stage, nil
}
