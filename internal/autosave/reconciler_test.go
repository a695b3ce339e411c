package autosave

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"onboard/internal/progress"
)

type fakeApplier struct {
	stale bool
	err   error
	calls int
	last  Write
}

func (f *fakeApplier) ApplyFieldWrite(_ context.Context, write Write) (bool, error) {
	f.calls++
	f.last = write
	return f.stale, f.err
}

func TestSaveApplied(t *testing.T) {
	applier := &fakeApplier{}
	rec := New(applier, nil, time.Second)

	res := rec.Save(context.Background(), Write{
		SessionID:       "prop-1",
		StageNumber:     1,
		FieldName:       "villaName",
		Value:           "Casa Uno",
		ClientTimestamp: time.Now(),
	})
	if res.Outcome != OutcomeApplied {
		t.Fatalf("Save outcome = %s, want %s", res.Outcome, OutcomeApplied)
	}
	if res.Err != nil {
		t.Fatalf("Save err = %v, want nil", res.Err)
	}
	if applier.calls != 1 {
		t.Fatalf("applier calls = %d, want 1", applier.calls)
	}
}

func TestSaveFillsMissingTimestamp(t *testing.T) {
	applier := &fakeApplier{}
	rec := New(applier, nil, time.Second)

	rec.Save(context.Background(), Write{SessionID: "prop-1", StageNumber: 1, FieldName: "villaName"})
	if applier.last.ClientTimestamp.IsZero() {
		t.Fatal("expected Save to default a zero client timestamp")
	}
}

func TestSaveStale(t *testing.T) {
	rec := New(&fakeApplier{stale: true}, nil, time.Second)

	res := rec.Save(context.Background(), Write{SessionID: "prop-1", StageNumber: 1, FieldName: "villaName"})
	if res.Outcome != OutcomeStale {
		t.Fatalf("Save outcome = %s, want %s", res.Outcome, OutcomeStale)
	}
}

func TestSaveRejectsInvalidInput(t *testing.T) {
	cases := []error{progress.ErrNotFound, progress.ErrInvalidStage, progress.ErrInvalidField}
	for _, sentinel := range cases {
		rec := New(&fakeApplier{err: fmt.Errorf("apply: %w", sentinel)}, nil, time.Second)
		res := rec.Save(context.Background(), Write{SessionID: "prop-1", StageNumber: 99, FieldName: "nope"})
		if res.Outcome != OutcomeRejected {
			t.Fatalf("outcome for %v = %s, want %s", sentinel, res.Outcome, OutcomeRejected)
		}
		if !errors.Is(res.Err, sentinel) {
			t.Fatalf("expected rejected result to wrap %v, got %v", sentinel, res.Err)
		}
	}
}

func TestSaveAbsorbsPersistenceFailure(t *testing.T) {
	failure := fmt.Errorf("update field: %w", progress.ErrPersistence)
	rec := New(&fakeApplier{err: failure}, nil, time.Second)

	res := rec.Save(context.Background(), Write{SessionID: "prop-1", StageNumber: 1, FieldName: "villaName"})
	if res.Outcome != OutcomeSoftFailed {
		t.Fatalf("Save outcome = %s, want %s", res.Outcome, OutcomeSoftFailed)
	}
	if !errors.Is(res.Err, progress.ErrPersistence) {
		t.Fatalf("expected soft failure to carry the persistence error, got %v", res.Err)
	}
}

func TestSaveTagsWritesWithCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	applier := &fakeApplier{err: errors.New("database is locked")}
	rec := New(applier, logger, time.Second)

	res := rec.Save(context.Background(), Write{
		SessionID:   "prop-1",
		StageNumber: 2,
		FieldName:   "email",
		Value:       "ayu@example.com",
	})
	if res.Outcome != OutcomeSoftFailed {
		t.Fatalf("Save outcome = %s, want %s", res.Outcome, OutcomeSoftFailed)
	}
	if res.CorrelationID == "" {
		t.Fatal("expected a correlation id on the result")
	}
	logged := buf.String()
	if !strings.Contains(logged, res.CorrelationID) {
		t.Fatalf("log missing correlation id %s:\n%s", res.CorrelationID, logged)
	}
	if !strings.Contains(logged, "correlation_id") {
		t.Fatalf("log missing correlation_id key:\n%s", logged)
	}
}
