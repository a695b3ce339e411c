package progress

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// DeleteSession removes a session and, via foreign keys, its stage, field,
// and skip rows. This is the only way progress rows are ever removed.
func (s *Store) DeleteSession(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return false, persistenceErr("delete session", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, persistenceErr("rows affected", err)
	}
	return affected > 0, nil
}

// PurgeCompleted removes sessions that finished onboarding. Destructive
// maintenance takes an exclusive file lock so two operators cannot purge
// concurrently while a third inspects the same database.
func (s *Store) PurgeCompleted(ctx context.Context) (int64, error) {
	var purged int64
	err := s.withMaintenanceLock(func() error {
		res, err := s.execWithRetry(ctx, `DELETE FROM sessions WHERE status = ?`, SessionCompleted)
		if err != nil {
			return persistenceErr("purge completed sessions", err)
		}
		purged, err = res.RowsAffected()
		return err
	})
	return purged, err
}

func (s *Store) withMaintenanceLock(fn func() error) error {
	lockPath := filepath.Join(filepath.Dir(s.path), "progress.maintenance.lock")
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire maintenance lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("maintenance lock %s is held by another process", lockPath)
	}
	defer func() { _ = lock.Unlock() }()
	return fn()
}
