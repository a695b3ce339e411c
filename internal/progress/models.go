package progress

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a stage or field.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusSkipped    Status = "skipped"
)

var allStatuses = []Status{
	StatusNotStarted,
	StatusInProgress,
	StatusCompleted,
	StatusSkipped,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Settled reports whether the status no longer needs user input.
func (s Status) Settled() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// SessionStatus represents the lifecycle of a whole onboarding session.
type SessionStatus string

const (
	SessionNotStarted    SessionStatus = "not_started"
	SessionInProgress    SessionStatus = "in_progress"
	SessionCompleted     SessionStatus = "completed"
	SessionPendingReview SessionStatus = "pending_review"
)

var sessionStatusSet = map[SessionStatus]struct{}{
	SessionNotStarted:    {},
	SessionInProgress:    {},
	SessionCompleted:     {},
	SessionPendingReview: {},
}

// ParseSessionStatus converts a string into a known SessionStatus.
func ParseSessionStatus(value string) (SessionStatus, bool) {
	normalized := SessionStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := sessionStatusSet[normalized]
	return normalized, ok
}

// Session is the onboarding-progress record for one property entity.
// Counters are intentionally absent; SessionCounters derives them.
type Session struct {
	ID          string
	CurrentStep int
	TotalSteps  int
	Status      SessionStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// StageProgress tracks one stage of one session.
type StageProgress struct {
	ID               int64
	SessionID        string
	StageNumber      int
	Status           Status
	IsValid          bool
	ValidationErrors map[string]string
	StartedAt        *time.Time
	CompletedAt      *time.Time
	SkippedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FieldProgress tracks one field within a stage. Value holds the raw JSON
// payload supplied by the caller; the store never interprets it.
type FieldProgress struct {
	ID              int64
	StageProgressID int64
	SessionID       string
	StageNumber     int
	FieldName       string
	Value           string
	Status          Status
	IsSkipped       bool
	SkipReason      string
	IsRequired      bool
	LastModifiedAt  *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasValue reports whether the field carries a non-empty payload.
func (f *FieldProgress) HasValue() bool {
	return !isEmptyValueJSON(f.Value)
}

// SkipItemType distinguishes field-level from stage-level skip records.
type SkipItemType string

const (
	SkipItemField SkipItemType = "field"
	SkipItemStage SkipItemType = "stage"
)

// SkipRecord is an append-only audit entry for a skip decision.
type SkipRecord struct {
	ID          string
	SessionID   string
	ItemType    SkipItemType
	StageNumber int
	FieldName   string
	Reason      string
	Category    string
	SkippedBy   string
	SkippedAt   time.Time
	IsActive    bool
	UnskippedBy string
	UnskippedAt *time.Time
}

// Counters aggregates derived completion counts for a session.
type Counters struct {
	StepsCompleted  int
	StepsSkipped    int
	FieldsCompleted int
	FieldsSkipped   int
	TotalFields     int
}

// IsEmptyValue reports whether an encoded field value counts as absent for
// completion purposes.
func IsEmptyValue(value string) bool {
	return isEmptyValueJSON(value)
}

// isEmptyValueJSON reports whether a stored value encodes an absent payload:
// no value at all, JSON null, an empty string, or an empty array/object.
func isEmptyValueJSON(value string) bool {
	switch strings.TrimSpace(value) {
	case "", "null", `""`, "[]", "{}":
		return true
	}
	return false
}
