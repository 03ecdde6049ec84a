package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/GoodnessFx/GlowUp/internal/config"
	"github.com/GoodnessFx/GlowUp/internal/logger"
	"github.com/GoodnessFx/GlowUp/internal/metrics"
	model "github.com/GoodnessFx/GlowUp/internal/models"
	"github.com/GoodnessFx/GlowUp/internal/store"
)

// updater applique des lecture-modification-écriture sur les enregistrements JSON du store
type updater struct {
	store       store.Store
	locks       *KeyLock
	consistent  bool
	maxAttempts int
}

func newUpdater(s store.Store, cfg config.PointsConfig) *updater {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &updater{
		store:       s,
		locks:       NewKeyLock(),
		consistent:  cfg.ConsistentUpdates,
		maxAttempts: attempts,
	}
}

// mutateRecord relit key, applique mutate et réécrit l'enregistrement.
// En mode cohérent l'écriture est un compare-and-swap rejoué sur conflit; sinon le dernier écrivain gagne.
// mutate peut être appelé plusieurs fois et doit repartir de l'enregistrement fourni.
func mutateRecord[T any](ctx context.Context, u *updater, kind, key string, notFound error, mutate func(*T) error) (*T, error) {
	if !u.consistent {
		var rec T
		if _, err := store.GetJSON(ctx, u.store, key, &rec); err != nil {
			return nil, storeError(err, notFound)
		}
		if err := mutate(&rec); err != nil {
			return nil, err
		}
		if _, err := store.PutJSON(ctx, u.store, key, &rec, -1); err != nil {
			return nil, fmt.Errorf("save %s %s: %w", kind, key, err)
		}
		return &rec, nil
	}

	unlock := u.locks.Lock(key)
	defer unlock()

	for attempt := 1; attempt <= u.maxAttempts; attempt++ {
		var rec T
		version, err := store.GetJSON(ctx, u.store, key, &rec)
		if err != nil {
			return nil, storeError(err, notFound)
		}
		if err := mutate(&rec); err != nil {
			return nil, err
		}

		_, err = store.PutJSON(ctx, u.store, key, &rec, version)
		if err == nil {
			return &rec, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, fmt.Errorf("save %s %s: %w", kind, key, err)
		}

		metrics.RecordVersionConflict(kind)
		logger.Debug("version conflict on %s (attempt %d/%d)", key, attempt, u.maxAttempts)
	}

	logger.Warning("giving up on %s after %d conflicting writes", key, u.maxAttempts)
	return nil, model.Errorf(model.ErrConflict, "The %s was modified concurrently, please retry", kind)
}

// storeError traduit store.ErrNotFound en erreur métier
func storeError(err, notFound error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	return err
}
