package activation

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

// Service activates a property entity once its onboarding completes.
type Service interface {
	Activate(ctx context.Context, entityID string) error
}

// NewService builds an activation service backed by the configured HTTP
// endpoint. When no endpoint is configured, a noop implementation is
// returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	endpoint := strings.TrimSpace(cfg.Activation.Endpoint)
	if endpoint == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Activation.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &httpService{
		endpoint: endpoint,
		token:    cfg.Activation.Token,
		client:   &http.Client{Timeout: timeout},
	}
}

type httpService struct {
	endpoint string
	token    string
	client   *http.Client
}

func (s *httpService) Activate(ctx context.Context, entityID string) error {
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return fmt.Errorf("entity id is empty")
	}

	body := strings.NewReader(fmt.Sprintf(`{"entityId":%q}`, entityID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, body)
	if err != nil {
		return fmt.Errorf("build activation request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send activation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("activation endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Activate(context.Context, string) error { return nil }
