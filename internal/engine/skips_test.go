package engine

import (
	"context"
	"testing"

	"onboard/internal/config"
	"onboard/internal/progress"
)

func TestSkipAndUnskipFieldRestoresFromValue(t *testing.T) {
	eng, _, _ := newTestEngine(t, nil)
	ctx := context.Background()
	if _, err := eng.Initialize(ctx, "prop-1"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if _, err := eng.UpdateField(ctx, "prop-1", 1, "villaName", "Casa Sola", "tester"); err != nil {
		t.Fatalf("UpdateField: %v", err)
	}

	summary, err := eng.SkipField(ctx, "prop-1", 1, "villaName", SkipRequest{
		Reason: "name pending trademark check", Category: "legal", Actor: "ops",
	})
	if err != nil {
		t.Fatalf("SkipField: %v", err)
	}
	field := summary.PerStage[0].Fields[0]
	if field.Status != progress.StatusSkipped || !field.Skipped {
		t.Fatalf("field after skip = %+v, want skipped", field)
	}
	if field.Value != "Casa Sola" {
		t.Fatalf("skip discarded value: %v", field.Value)
	}
	if len(summary.ActiveSkips) != 1 {
		t.Fatalf("active skips = %d, want 1", len(summary.ActiveSkips))
	}
	if summary.ActiveSkips[0].Reason != "name pending trademark check" {
		t.Fatalf("skip reason = %q", summary.ActiveSkips[0].Reason)
	}

	// The preserved value makes the field COMPLETED again on unskip.
	summary, err = eng.UnskipField(ctx, "prop-1", 1, "villaName", "ops")
	if err != nil {
		t.Fatalf("UnskipField: %v", err)
	}
	field = summary.PerStage[0].Fields[0]
	if field.Status != progress.StatusCompleted || field.Skipped {
		t.Fatalf("field after unskip = %+v, want completed", field)
	}
	if len(summary.ActiveSkips) != 0 {
		t.Fatalf("active skips after unskip = %d, want 0", len(summary.ActiveSkips))
	}

	// A valueless field lands back at NOT_STARTED instead.
	if _, err := eng.SkipField(ctx, "prop-1", 1, "maxGuests", SkipRequest{Reason: "unknown", Actor: "ops"}); err != nil {
		t.Fatalf("SkipField maxGuests: %v", err)
	}
	summary, err = eng.UnskipField(ctx, "prop-1", 1, "maxGuests", "ops")
	if err != nil {
		t.Fatalf("UnskipField maxGuests: %v", err)
	}
	for _, f := range summary.PerStage[0].Fields {
		if f.Name == "maxGuests" && f.Status != progress.StatusNotStarted {
			t.Fatalf("maxGuests status = %s, want %s", f.Status, progress.StatusNotStarted)
		}
	}
}

func TestUnskipWithoutActiveSkipIsNoop(t *testing.T) {
	eng, _, _ := newTestEngine(t, nil)
	ctx := context.Background()
	if _, err := eng.Initialize(ctx, "prop-1"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	summary, err := eng.UnskipField(ctx, "prop-1", 1, "villaName", "ops")
	if err != nil {
		t.Fatalf("UnskipField: %v", err)
	}
	if got := summary.PerStage[0].Fields[0].Status; got != progress.StatusNotStarted {
		t.Fatalf("field status = %s, want %s", got, progress.StatusNotStarted)
	}
	if _, err := eng.UnskipStage(ctx, "prop-1", 5, "ops"); err != nil {
		t.Fatalf("UnskipStage: %v", err)
	}
}

func TestSkipStageSettlesAndCounts(t *testing.T) {
	eng, _, _ := newTestEngine(t, nil)
	ctx := context.Background()
	if _, err := eng.Initialize(ctx, "prop-1"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	summary, err := eng.SkipStage(ctx, "prop-1", 5, SkipRequest{Reason: "not listed anywhere yet", Actor: "ops"})
	if err != nil {
		t.Fatalf("SkipStage: %v", err)
	}
	if got := summary.PerStage[4].Status; got != progress.StatusSkipped {
		t.Fatalf("stage status = %s, want %s", got, progress.StatusSkipped)
	}
	if summary.StepsSkipped != 1 {
		t.Fatalf("StepsSkipped = %d, want 1", summary.StepsSkipped)
	}
	// Half credit for the skipped stage: 5 * 0.5 = 2.5.
	if summary.ProgressPercentage != 2.5 {
		t.Fatalf("ProgressPercentage = %v, want 2.5", summary.ProgressPercentage)
	}

	summary, err = eng.UnskipStage(ctx, "prop-1", 5, "ops")
	if err != nil {
		t.Fatalf("UnskipStage: %v", err)
	}
	if got := summary.PerStage[4].Status; got != progress.StatusNotStarted {
		t.Fatalf("stage status after unskip = %s, want %s", got, progress.StatusNotStarted)
	}
	if summary.ProgressPercentage != 0 {
		t.Fatalf("ProgressPercentage after unskip = %v, want 0", summary.ProgressPercentage)
	}
}

func TestSkippedStageStaysSkippedUnderFieldWrites(t *testing.T) {
	eng, _, _ := newTestEngine(t, nil)
	ctx := context.Background()
	if _, err := eng.Initialize(ctx, "prop-1"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if _, err := eng.SkipStage(ctx, "prop-1", 5, SkipRequest{Reason: "later", Actor: "ops"}); err != nil {
		t.Fatalf("SkipStage: %v", err)
	}

	summary, err := eng.UpdateField(ctx, "prop-1", 5, "platformUsername", "casasola", "tester")
	if err != nil {
		t.Fatalf("UpdateField: %v", err)
	}
	if got := summary.PerStage[4].Status; got != progress.StatusSkipped {
		t.Fatalf("stage status = %s, want %s", got, progress.StatusSkipped)
	}

	// Lifting the skip surfaces the progress made meanwhile.
	summary, err = eng.UnskipStage(ctx, "prop-1", 5, "ops")
	if err != nil {
		t.Fatalf("UnskipStage: %v", err)
	}
	if got := summary.PerStage[4].Status; got != progress.StatusInProgress {
		t.Fatalf("stage status after unskip = %s, want %s", got, progress.StatusInProgress)
	}
}

func TestSkippedRequiredStageAllowsCompletion(t *testing.T) {
	eng, activator, _ := newTestEngine(t, nil)
	ctx := context.Background()
	if _, err := eng.Initialize(ctx, "prop-1"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	// Complete every required stage except documents, then skip it.
	for number, payload := range stagePayloads {
		if number == 6 {
			continue
		}
		if _, err := eng.UpdateStage(ctx, "prop-1", number, payload, true, "tester"); err != nil {
			t.Fatalf("UpdateStage %d: %v", number, err)
		}
	}
	summary, err := eng.SkipStage(ctx, "prop-1", 6, SkipRequest{Reason: "title deed in escrow", Actor: "ops"})
	if err != nil {
		t.Fatalf("SkipStage: %v", err)
	}
	if summary.Status != progress.SessionCompleted {
		t.Fatalf("session status = %s, want %s", summary.Status, progress.SessionCompleted)
	}
	if activator.calls != 1 {
		t.Fatalf("activation calls = %d, want 1", activator.calls)
	}
}

func TestSkippedRequiredFieldDoesNotBlockSubmission(t *testing.T) {
	eng, _, _ := newTestEngine(t, nil)
	ctx := context.Background()
	if _, err := eng.Initialize(ctx, "prop-1"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if _, err := eng.SkipField(ctx, "prop-1", 6, "propertyContract", SkipRequest{Reason: "contract being drafted", Actor: "ops"}); err != nil {
		t.Fatalf("SkipField: %v", err)
	}
	summary, err := eng.UpdateStage(ctx, "prop-1", 6, map[string]any{"propertyTitle": "doc://title.pdf"}, true, "tester")
	if err != nil {
		t.Fatalf("UpdateStage: %v", err)
	}
	if got := summary.PerStage[5].Status; got != progress.StatusCompleted {
		t.Fatalf("stage status = %s, want %s", got, progress.StatusCompleted)
	}
}

func TestSkipThresholdNotifiesOnce(t *testing.T) {
	eng, _, notifier := newTestEngine(t, func(cfg *config.Config) {
		cfg.Notifications.SkipThreshold = 2
	})
	ctx := context.Background()
	if _, err := eng.Initialize(ctx, "prop-1"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if _, err := eng.SkipField(ctx, "prop-1", 1, "maxGuests", SkipRequest{Reason: "a", Actor: "ops"}); err != nil {
		t.Fatalf("SkipField 1: %v", err)
	}
	if notifier.skipThreshold != 0 {
		t.Fatalf("threshold notifications after 1 skip = %d, want 0", notifier.skipThreshold)
	}
	if _, err := eng.SkipField(ctx, "prop-1", 1, "landSize", SkipRequest{Reason: "b", Actor: "ops"}); err != nil {
		t.Fatalf("SkipField 2: %v", err)
	}
	if notifier.skipThreshold != 1 {
		t.Fatalf("threshold notifications after 2 skips = %d, want 1", notifier.skipThreshold)
	}
	if _, err := eng.SkipField(ctx, "prop-1", 1, "villaArea", SkipRequest{Reason: "c", Actor: "ops"}); err != nil {
		t.Fatalf("SkipField 3: %v", err)
	}
	if notifier.skipThreshold != 1 {
		t.Fatalf("threshold notifications after 3 skips = %d, want 1", notifier.skipThreshold)
	}
}
