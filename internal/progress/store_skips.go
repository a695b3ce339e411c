package progress

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

const skipColumns = "id, session_id, item_type, stage_number, field_name, reason, category, skipped_by, skipped_at, is_active, unskipped_by, unskipped_at"

// AppendSkipRecord inserts a new active skip audit entry and returns its id.
func (s *Store) AppendSkipRecord(ctx context.Context, record *SkipRecord) error {
	if record == nil {
		return errors.New("skip record is nil")
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.SkippedAt.IsZero() {
		record.SkippedAt = time.Now().UTC()
	}
	record.IsActive = true

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO skip_records
            (id, session_id, item_type, stage_number, field_name, reason, category, skipped_by, skipped_at, is_active)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		record.ID,
		record.SessionID,
		record.ItemType,
		record.StageNumber,
		nullableString(record.FieldName),
		nullableString(record.Reason),
		nullableString(record.Category),
		nullableString(record.SkippedBy),
		formatTime(record.SkippedAt),
	)
	if err != nil {
		return persistenceErr("insert skip record", err)
	}
	return nil
}

// CloseSkipRecords marks the active skip records for an item inactive and
// stamps the closing metadata. History rows are never deleted.
func (s *Store) CloseSkipRecords(ctx context.Context, sessionID string, itemType SkipItemType, stageNumber int, fieldName, unskippedBy string) (int64, error) {
	now := formatTime(time.Now())
	query := `UPDATE skip_records
         SET is_active = 0, unskipped_by = ?, unskipped_at = ?
         WHERE session_id = ? AND item_type = ? AND stage_number = ? AND is_active = 1`
	args := []any{nullableString(unskippedBy), now, sessionID, itemType, stageNumber}
	if itemType == SkipItemField {
		query += ` AND field_name = ?`
		args = append(args, fieldName)
	}

	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, persistenceErr("close skip records", err)
	}
	return res.RowsAffected()
}

// ActiveSkipRecords returns the currently applying skips for a session.
func (s *Store) ActiveSkipRecords(ctx context.Context, sessionID string) ([]*SkipRecord, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+skipColumns+` FROM skip_records
         WHERE session_id = ? AND is_active = 1 ORDER BY skipped_at`,
		sessionID,
	)
	if err != nil {
		return nil, persistenceErr("list active skips", err)
	}
	defer rows.Close()

	return collectSkipRecords(rows)
}

// SkipHistory returns every skip record for a session, active or not.
func (s *Store) SkipHistory(ctx context.Context, sessionID string) ([]*SkipRecord, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+skipColumns+` FROM skip_records WHERE session_id = ? ORDER BY skipped_at`,
		sessionID,
	)
	if err != nil {
		return nil, persistenceErr("list skip history", err)
	}
	defer rows.Close()

	return collectSkipRecords(rows)
}

func collectSkipRecords(rows *sql.Rows) ([]*SkipRecord, error) {
	var records []*SkipRecord
	for rows.Next() {
		record, err := scanSkipRecord(rows)
		if err != nil {
			return nil, persistenceErr("scan skip record", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanSkipRecord(scanner interface{ Scan(dest ...any) error }) (*SkipRecord, error) {
	var (
		id           string
		sessionID    string
		itemType     string
		stageNumber  int
		fieldName    sql.NullString
		reason       sql.NullString
		category     sql.NullString
		skippedBy    sql.NullString
		skippedRaw   string
		isActive     int
		unskippedBy  sql.NullString
		unskippedRaw sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&sessionID,
		&itemType,
		&stageNumber,
		&fieldName,
		&reason,
		&category,
		&skippedBy,
		&skippedRaw,
		&isActive,
		&unskippedBy,
		&unskippedRaw,
	); err != nil {
		return nil, err
	}

	record := &SkipRecord{
		ID:          id,
		SessionID:   sessionID,
		ItemType:    SkipItemType(itemType),
		StageNumber: stageNumber,
		FieldName:   fieldName.String,
		Reason:      reason.String,
		Category:    category.String,
		SkippedBy:   skippedBy.String,
		IsActive:    isActive != 0,
		UnskippedBy: unskippedBy.String,
		UnskippedAt: parseOptionalTime(unskippedRaw),
	}
	if skipped, err := parseTimeString(skippedRaw); err == nil {
		record.SkippedAt = skipped
	}
	return record, nil
}
