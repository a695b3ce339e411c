package progress

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const fieldColumns = "id, stage_progress_id, session_id, stage_number, field_name, value, status, is_skipped, skip_reason, is_required, last_modified_at, created_at, updated_at"

// EnsureField inserts a field_progress row when none exists for the
// (stage, field) pair. Existing rows keep their recorded progress.
func (s *Store) EnsureField(ctx context.Context, stageProgressID int64, sessionID string, stageNumber int, fieldName string, required bool) error {
	now := formatTime(time.Now())
	_, err := s.execWithRetry(
		ctx,
		`INSERT OR IGNORE INTO field_progress
            (stage_progress_id, session_id, stage_number, field_name, status, is_required, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		stageProgressID,
		sessionID,
		stageNumber,
		fieldName,
		StatusNotStarted,
		boolToInt(required),
		now,
		now,
	)
	if err != nil {
		return persistenceErr("insert field", err)
	}
	return nil
}

// FieldByName fetches one field of a stage. Returns nil when missing.
func (s *Store) FieldByName(ctx context.Context, sessionID string, stageNumber int, fieldName string) (*FieldProgress, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+fieldColumns+` FROM field_progress
         WHERE session_id = ? AND stage_number = ? AND field_name = ?`,
		sessionID,
		stageNumber,
		fieldName,
	)
	field, err := scanField(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceErr("get field", err)
	}
	return field, nil
}

// FieldsByStage returns the fields of one stage in declaration order
// (insertion order matches the catalog's field order).
func (s *Store) FieldsByStage(ctx context.Context, sessionID string, stageNumber int) ([]*FieldProgress, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+fieldColumns+` FROM field_progress
         WHERE session_id = ? AND stage_number = ? ORDER BY id`,
		sessionID,
		stageNumber,
	)
	if err != nil {
		return nil, persistenceErr("list stage fields", err)
	}
	defer rows.Close()

	return collectFields(rows)
}

// FieldsBySession returns every field row of a session ordered by stage.
func (s *Store) FieldsBySession(ctx context.Context, sessionID string) ([]*FieldProgress, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+fieldColumns+` FROM field_progress WHERE session_id = ? ORDER BY stage_number, id`,
		sessionID,
	)
	if err != nil {
		return nil, persistenceErr("list session fields", err)
	}
	defer rows.Close()

	return collectFields(rows)
}

// UpdateFieldProgress persists mutable field columns.
func (s *Store) UpdateFieldProgress(ctx context.Context, field *FieldProgress) error {
	if field == nil {
		return errors.New("field is nil")
	}
	field.UpdatedAt = time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`UPDATE field_progress
         SET value = ?, status = ?, is_skipped = ?, skip_reason = ?, last_modified_at = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(field.Value),
		field.Status,
		boolToInt(field.IsSkipped),
		nullableString(field.SkipReason),
		nullableTime(field.LastModifiedAt),
		formatTime(field.UpdatedAt),
		field.ID,
	)
	if err != nil {
		return persistenceErr("update field", err)
	}
	return nil
}

func collectFields(rows *sql.Rows) ([]*FieldProgress, error) {
	var fields []*FieldProgress
	for rows.Next() {
		field, err := scanField(rows)
		if err != nil {
			return nil, persistenceErr("scan field", err)
		}
		fields = append(fields, field)
	}
	return fields, rows.Err()
}

func scanField(scanner interface{ Scan(dest ...any) error }) (*FieldProgress, error) {
	var (
		id              int64
		stageProgressID int64
		sessionID       string
		stageNumber     int
		fieldName       string
		value           sql.NullString
		statusStr       string
		isSkipped       int
		skipReason      sql.NullString
		isRequired      int
		lastModifiedRaw sql.NullString
		createdRaw      string
		updatedRaw      string
	)
	if err := scanner.Scan(
		&id,
		&stageProgressID,
		&sessionID,
		&stageNumber,
		&fieldName,
		&value,
		&statusStr,
		&isSkipped,
		&skipReason,
		&isRequired,
		&lastModifiedRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	field := &FieldProgress{
		ID:              id,
		StageProgressID: stageProgressID,
		SessionID:       sessionID,
		StageNumber:     stageNumber,
		FieldName:       fieldName,
		Value:           value.String,
		Status:          Status(statusStr),
		IsSkipped:       isSkipped != 0,
		SkipReason:      skipReason.String,
		IsRequired:      isRequired != 0,
		LastModifiedAt:  parseOptionalTime(lastModifiedRaw),
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		field.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		field.UpdatedAt = updated
	}
	return field, nil
}
