package progress

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors shared across the engine, reconciler, and store. Callers
// match with errors.Is; the engine decides which ones propagate and which
// are absorbed on the auto-save path.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidStage = errors.New("invalid stage")
	ErrInvalidField = errors.New("invalid field")
	ErrPersistence  = errors.New("persistence error")
)

// ValidationError carries field-keyed messages from a failed enforcing
// validation. It blocks a stage COMPLETED transition but is never fatal.
type ValidationError struct {
	StageNumber int
	Errors      map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("stage %d failed validation", e.StageNumber)
	}
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e.Errors[field])
	}
	return fmt.Sprintf("stage %d failed validation: %s", e.StageNumber, strings.Join(parts, "; "))
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func persistenceErr(operation string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, operation, err)
}
