package logging

import "log/slog"

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSession is the standardized structured logging key for session identifiers.
	FieldSession = "session"
	// FieldStage is the standardized structured logging key for stage numbers.
	FieldStage = "stage"
	// FieldField is the standardized structured logging key for field names.
	FieldField = "field"
	// FieldActor is the standardized structured logging key for the acting user.
	FieldActor = "actor"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
)

// Error wraps an error for structured logging.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}
