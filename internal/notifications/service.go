package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"onboard/internal/config"
)

const userAgent = "Onboard/0.1.0"

// Service defines the notification surface exposed to the engine.
type Service interface {
	NotifyOnboardingCompleted(ctx context.Context, sessionID string, score float64) error
	NotifyStageCompleted(ctx context.Context, sessionID, stageName string) error
	NotifySkipThreshold(ctx context.Context, sessionID string, activeSkips int) error
	NotifyError(ctx context.Context, err error, detail string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
// Completion and error events additionally honor their per-event toggles;
// disabled events are silently dropped.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		onCompletion: cfg.Notifications.Completion,
		onErrors:     cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	onCompletion bool
	onErrors     bool
}

func (n *ntfyService) NotifyOnboardingCompleted(ctx context.Context, sessionID string, score float64) error {
	if !n.onCompletion {
		return nil
	}
	data := payload{
		title:   "Onboard - Completed",
		message: fmt.Sprintf("Onboarding completed for %s (score %.1f)", strings.TrimSpace(sessionID), score),
		tags:    []string{"onboard", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyStageCompleted(ctx context.Context, sessionID, stageName string) error {
	data := payload{
		title:   "Onboard - Stage Completed",
		message: fmt.Sprintf("%s: %s submitted", strings.TrimSpace(sessionID), strings.TrimSpace(stageName)),
		tags:    []string{"onboard", "stage", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySkipThreshold(ctx context.Context, sessionID string, activeSkips int) error {
	data := payload{
		title:    "Onboard - Skips Accumulating",
		message:  fmt.Sprintf("%s has %d active skips; review before activation", strings.TrimSpace(sessionID), activeSkips),
		tags:     []string{"onboard", "skip", "review"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, detail string) error {
	if !n.onErrors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Onboarding error")
	if detail = strings.TrimSpace(detail); detail != "" {
		builder.WriteString(" (")
		builder.WriteString(detail)
		builder.WriteString(")")
	}
	if err != nil {
		builder.WriteString(": ")
		builder.WriteString(err.Error())
	}
	data := payload{
		title:    "Onboard - Error",
		message:  builder.String(),
		tags:     []string{"onboard", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Onboard - Test",
		message:  "Notification system test",
		tags:     []string{"onboard", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyOnboardingCompleted(context.Context, string, float64) error { return nil }
func (noopService) NotifyStageCompleted(context.Context, string, string) error       { return nil }
func (noopService) NotifySkipThreshold(context.Context, string, int) error           { return nil }
func (noopService) NotifyError(context.Context, error, string) error                 { return nil }
func (noopService) TestNotification(context.Context) error                           { return nil }
