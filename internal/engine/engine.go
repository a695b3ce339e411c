package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"onboard/internal/activation"
	"onboard/internal/config"
	"onboard/internal/logging"
	"onboard/internal/notifications"
	"onboard/internal/progress"
	"onboard/internal/scoring"
)

// Engine is the single entry point for progress mutations and reads.
type Engine struct {
	store          *progress.Store
	logger         *slog.Logger
	notifier       notifications.Service
	activator      activation.Service
	factors        scoring.Factors
	persistTimeout time.Duration
	skipThreshold  int

	locks sessionLocks
}

// New wires an Engine from its collaborators. A nil logger disables
// logging; nil notifier and activator degrade to no-ops.
func New(store *progress.Store, cfg *config.Config, logger *slog.Logger, notifier notifications.Service, activator activation.Service) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	factors := scoring.DefaultFactors()
	persistTimeout := 5 * time.Second
	skipThreshold := 0
	if cfg != nil {
		if cfg.Scoring.InProgressDamping > 0 {
			factors.InProgressDamping = cfg.Scoring.InProgressDamping
		}
		if cfg.Scoring.SkipCredit >= 0 {
			factors.SkipCredit = cfg.Scoring.SkipCredit
		}
		if cfg.Engine.PersistTimeoutSeconds > 0 {
			persistTimeout = time.Duration(cfg.Engine.PersistTimeoutSeconds) * time.Second
		}
		skipThreshold = cfg.Notifications.SkipThreshold
	}
	if notifier == nil {
		notifier = notifications.NewService(nil)
	}
	if activator == nil {
		activator = activation.NewService(nil)
	}
	return &Engine{
		store:          store,
		logger:         logging.WithComponent(logger, "engine"),
		notifier:       notifier,
		activator:      activator,
		factors:        factors,
		persistTimeout: persistTimeout,
		skipThreshold:  skipThreshold,
	}
}

// sessionLocks hands out one mutex per session identifier.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *sessionLocks) forSession(id string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}
	return lock
}

func (e *Engine) withSessionLock(sessionID string, fn func() error) error {
	lock := e.locks.forSession(sessionID)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// opContext bounds one mutating operation's store access.
func (e *Engine) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, e.persistTimeout)
}

// encodeValue serializes an incoming field value for storage. Nil and the
// empty string encode as the absent value.
func encodeValue(value any) (string, error) {
	if value == nil {
		return "", nil
	}
	if text, ok := value.(string); ok && text == "" {
		return "", nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("%w: unserializable value for field: %v", progress.ErrInvalidField, err)
	}
	return string(raw), nil
}

// decodeValue reverses encodeValue for read models and validation input.
func decodeValue(raw string) any {
	if progress.IsEmptyValue(raw) {
		return nil
	}
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}
	return value
}
