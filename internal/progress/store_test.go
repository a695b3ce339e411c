package progress_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"onboard/internal/config"
	"onboard/internal/progress"
)

func newStore(t *testing.T) *progress.Store {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	store, err := progress.Open(&cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func seedSession(t *testing.T, store *progress.Store, id string) {
	t.Helper()

	ctx := context.Background()
	if _, err := store.CreateSession(ctx, id, 10); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := store.EnsureStage(ctx, id, 1); err != nil {
		t.Fatalf("ensure stage: %v", err)
	}
	stage, err := store.StageBySession(ctx, id, 1)
	if err != nil || stage == nil {
		t.Fatalf("stage lookup: %v, %v", stage, err)
	}
	if err := store.EnsureField(ctx, stage.ID, id, 1, "villaName", true); err != nil {
		t.Fatalf("ensure field: %v", err)
	}
}

func TestOpenMigratesAndReopens(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	store, err := progress.Open(&cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := store.CreateSession(context.Background(), "prop-1", 10); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := progress.Open(&cfg)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()
	session, err := reopened.GetSession(context.Background(), "prop-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session == nil {
		t.Fatal("session lost across reopen")
	}
}

func TestCreateSessionIdempotent(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	created, err := store.CreateSession(ctx, "prop-1", 10)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if !created {
		t.Fatal("first create reported not created")
	}
	created, err = store.CreateSession(ctx, "prop-1", 10)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if created {
		t.Fatal("second create reported created")
	}
}

func TestEnsureStageAndFieldIdempotent(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedSession(t, store, "prop-1")

	// Repeat the ensure calls; row identity must not change.
	field, err := store.FieldByName(ctx, "prop-1", 1, "villaName")
	if err != nil || field == nil {
		t.Fatalf("field lookup: %v, %v", field, err)
	}
	originalID := field.ID

	if err := store.EnsureStage(ctx, "prop-1", 1); err != nil {
		t.Fatalf("re-ensure stage: %v", err)
	}
	stage, err := store.StageBySession(ctx, "prop-1", 1)
	if err != nil || stage == nil {
		t.Fatalf("stage lookup: %v, %v", stage, err)
	}
	if err := store.EnsureField(ctx, stage.ID, "prop-1", 1, "villaName", true); err != nil {
		t.Fatalf("re-ensure field: %v", err)
	}
	field, err = store.FieldByName(ctx, "prop-1", 1, "villaName")
	if err != nil || field == nil {
		t.Fatalf("field lookup after re-ensure: %v, %v", field, err)
	}
	if field.ID != originalID {
		t.Fatalf("re-ensure replaced field row: %d -> %d", originalID, field.ID)
	}
}

func TestFieldRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedSession(t, store, "prop-1")

	field, err := store.FieldByName(ctx, "prop-1", 1, "villaName")
	if err != nil || field == nil {
		t.Fatalf("field lookup: %v, %v", field, err)
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	field.Value = `"Casa Sola"`
	field.Status = progress.StatusCompleted
	field.LastModifiedAt = &now
	if err := store.UpdateFieldProgress(ctx, field); err != nil {
		t.Fatalf("update field: %v", err)
	}

	loaded, err := store.FieldByName(ctx, "prop-1", 1, "villaName")
	if err != nil || loaded == nil {
		t.Fatalf("reload field: %v, %v", loaded, err)
	}
	if loaded.Value != `"Casa Sola"` || loaded.Status != progress.StatusCompleted {
		t.Fatalf("field did not round-trip: %+v", loaded)
	}
	if loaded.LastModifiedAt == nil || !loaded.LastModifiedAt.Equal(now) {
		t.Fatalf("LastModifiedAt = %v, want %v", loaded.LastModifiedAt, now)
	}
	if !loaded.HasValue() {
		t.Fatal("HasValue false for stored value")
	}
}

func TestStageValidationErrorsRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedSession(t, store, "prop-1")

	stage, err := store.StageBySession(ctx, "prop-1", 1)
	if err != nil || stage == nil {
		t.Fatalf("stage lookup: %v, %v", stage, err)
	}
	stage.Status = progress.StatusInProgress
	stage.IsValid = false
	stage.ValidationErrors = map[string]string{"villaName": "required"}
	if err := store.UpdateStageProgress(ctx, stage); err != nil {
		t.Fatalf("update stage: %v", err)
	}

	loaded, err := store.StageBySession(ctx, "prop-1", 1)
	if err != nil || loaded == nil {
		t.Fatalf("reload stage: %v, %v", loaded, err)
	}
	if loaded.IsValid {
		t.Fatal("IsValid not persisted")
	}
	if loaded.ValidationErrors["villaName"] != "required" {
		t.Fatalf("validation errors = %v", loaded.ValidationErrors)
	}
}

func TestSessionCountersDeriveFromRows(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedSession(t, store, "prop-1")

	field, err := store.FieldByName(ctx, "prop-1", 1, "villaName")
	if err != nil || field == nil {
		t.Fatalf("field lookup: %v, %v", field, err)
	}
	field.Status = progress.StatusCompleted
	if err := store.UpdateFieldProgress(ctx, field); err != nil {
		t.Fatalf("update field: %v", err)
	}
	stage, err := store.StageBySession(ctx, "prop-1", 1)
	if err != nil || stage == nil {
		t.Fatalf("stage lookup: %v, %v", stage, err)
	}
	stage.Status = progress.StatusCompleted
	if err := store.UpdateStageProgress(ctx, stage); err != nil {
		t.Fatalf("update stage: %v", err)
	}

	counters, err := store.SessionCounters(ctx, "prop-1")
	if err != nil {
		t.Fatalf("counters: %v", err)
	}
	if counters.StepsCompleted != 1 || counters.FieldsCompleted != 1 || counters.TotalFields != 1 {
		t.Fatalf("counters = %+v", counters)
	}
}

func TestSkipRecordsAppendOnly(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedSession(t, store, "prop-1")

	record := &progress.SkipRecord{
		SessionID:   "prop-1",
		ItemType:    progress.SkipItemField,
		StageNumber: 1,
		FieldName:   "villaName",
		Reason:      "pending",
		SkippedBy:   "ops",
	}
	if err := store.AppendSkipRecord(ctx, record); err != nil {
		t.Fatalf("append skip record: %v", err)
	}
	if record.ID == "" {
		t.Fatal("append did not assign an id")
	}

	active, err := store.ActiveSkipRecords(ctx, "prop-1")
	if err != nil {
		t.Fatalf("active records: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("active records = %d, want 1", len(active))
	}

	closed, err := store.CloseSkipRecords(ctx, "prop-1", progress.SkipItemField, 1, "villaName", "ops")
	if err != nil {
		t.Fatalf("close records: %v", err)
	}
	if closed != 1 {
		t.Fatalf("closed = %d, want 1", closed)
	}
	active, err = store.ActiveSkipRecords(ctx, "prop-1")
	if err != nil {
		t.Fatalf("active records after close: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("active records after close = %d, want 0", len(active))
	}

	// Closing never deletes; history keeps the full audit trail.
	history, err := store.SkipHistory(ctx, "prop-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history = %d, want 1", len(history))
	}
	if history[0].IsActive {
		t.Fatal("closed record still active in history")
	}
	if history[0].UnskippedBy != "ops" || history[0].UnskippedAt == nil {
		t.Fatalf("closing metadata missing: %+v", history[0])
	}
}

func TestDeleteSessionCascades(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedSession(t, store, "prop-1")

	deleted, err := store.DeleteSession(ctx, "prop-1")
	if err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if !deleted {
		t.Fatal("delete reported nothing removed")
	}
	stage, err := store.StageBySession(ctx, "prop-1", 1)
	if err != nil {
		t.Fatalf("stage lookup: %v", err)
	}
	if stage != nil {
		t.Fatal("stage row survived session delete")
	}
	field, err := store.FieldByName(ctx, "prop-1", 1, "villaName")
	if err != nil {
		t.Fatalf("field lookup: %v", err)
	}
	if field != nil {
		t.Fatal("field row survived session delete")
	}
}

func TestPurgeCompletedRemovesOnlyCompleted(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedSession(t, store, "prop-done")
	seedSession(t, store, "prop-live")

	done, err := store.GetSession(ctx, "prop-done")
	if err != nil || done == nil {
		t.Fatalf("get session: %v, %v", done, err)
	}
	now := time.Now().UTC()
	done.Status = progress.SessionCompleted
	done.CompletedAt = &now
	if err := store.UpdateSession(ctx, done); err != nil {
		t.Fatalf("update session: %v", err)
	}

	purged, err := store.PurgeCompleted(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged = %d, want 1", purged)
	}
	live, err := store.GetSession(ctx, "prop-live")
	if err != nil {
		t.Fatalf("get live session: %v", err)
	}
	if live == nil {
		t.Fatal("purge removed an in-flight session")
	}
}

func TestListSessionsFiltersByStatus(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedSession(t, store, "prop-1")
	seedSession(t, store, "prop-2")

	session, err := store.GetSession(ctx, "prop-2")
	if err != nil || session == nil {
		t.Fatalf("get session: %v, %v", session, err)
	}
	session.Status = progress.SessionInProgress
	if err := store.UpdateSession(ctx, session); err != nil {
		t.Fatalf("update session: %v", err)
	}

	inProgress, err := store.ListSessions(ctx, progress.SessionInProgress)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(inProgress) != 1 || inProgress[0].ID != "prop-2" {
		t.Fatalf("filtered list = %+v", inProgress)
	}
	all, err := store.ListSessions(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all sessions = %d, want 2", len(all))
	}

	stats, err := store.SessionStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats[progress.SessionInProgress] != 1 || stats[progress.SessionNotStarted] != 1 {
		t.Fatalf("stats = %v", stats)
	}
}

func TestUpdateMissingSessionReturnsNotFound(t *testing.T) {
	store := newStore(t)
	session := &progress.Session{ID: "ghost", CurrentStep: 1, TotalSteps: 10, Status: progress.SessionNotStarted}
	if err := store.UpdateSession(context.Background(), session); !errors.Is(err, progress.ErrNotFound) {
		t.Fatalf("update missing session error = %v, want %v", err, progress.ErrNotFound)
	}
}
