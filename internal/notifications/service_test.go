package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"onboard/internal/config"
	"onboard/internal/notifications"
)

func TestNoopWhenTopicEmpty(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyOnboardingCompleted(context.Background(), "prop-1", 100); err != nil {
		t.Fatalf("noop notify should not fail: %v", err)
	}
}

func TestNotifySendsHeadersAndBody(t *testing.T) {
	type captured struct {
		body     string
		title    string
		priority string
	}
	var got captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = captured{
			body:     string(body),
			title:    r.Header.Get("Title"),
			priority: r.Header.Get("Priority"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.NotifySkipThreshold(context.Background(), "prop-9", 6); err != nil {
		t.Fatalf("NotifySkipThreshold: %v", err)
	}
	if !strings.Contains(got.body, "prop-9") || !strings.Contains(got.body, "6") {
		t.Fatalf("unexpected body %q", got.body)
	}
	if got.title == "" {
		t.Fatal("expected Title header")
	}
	if got.priority != "high" {
		t.Fatalf("expected high priority, got %q", got.priority)
	}
}

func TestDisabledTogglesSuppressDelivery(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Completion = false
	cfg.Notifications.Errors = false
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyOnboardingCompleted(context.Background(), "prop-3", 97.5); err != nil {
		t.Fatalf("disabled completion notify should be a no-op: %v", err)
	}
	if err := svc.NotifyError(context.Background(), io.ErrUnexpectedEOF, "store"); err != nil {
		t.Fatalf("disabled error notify should be a no-op: %v", err)
	}
	if requests != 0 {
		t.Fatalf("expected no requests with toggles off, got %d", requests)
	}

	// Stage completion has no toggle and still delivers.
	if err := svc.NotifyStageCompleted(context.Background(), "prop-3", "Bank Details"); err != nil {
		t.Fatalf("NotifyStageCompleted: %v", err)
	}
	if requests != 1 {
		t.Fatalf("expected stage notification to send, got %d requests", requests)
	}
}

func TestNotifySurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic over quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
