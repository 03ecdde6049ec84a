// Package store définit le contrat clé-valeur versionné utilisé par GlowUp et ses backends.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound la clé n'existe pas
	ErrNotFound = errors.New("key not found")
	// ErrVersionConflict la version attendue ne correspond plus à la version stockée
	ErrVersionConflict = errors.New("version conflict")
)

// Entry est une valeur stockée avec sa version.
// La version démarre à 1 à la création et augmente de 1 à chaque écriture.
type Entry struct {
	Key     string
	Value   []byte
	Version int64
}

// Store est un stockage clé-valeur avec écriture conditionnelle.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	// Set écrit sans condition (le dernier écrivain gagne) et retourne la nouvelle version.
	Set(ctx context.Context, key string, value []byte) (int64, error)
	// CompareAndSwap écrit seulement si la version stockée vaut expected.
	// expected == 0 signifie "la clé ne doit pas exister".
	CompareAndSwap(ctx context.Context, key string, value []byte, expected int64) (int64, error)
	// List retourne toutes les entrées dont la clé commence par prefix, triées par clé.
	List(ctx context.Context, prefix string) ([]Entry, error)
	Close() error
}

// GetJSON lit une clé et décode sa valeur
func GetJSON(ctx context.Context, s Store, key string, dest interface{}) (int64, error) {
	entry, err := s.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if err := json.Unmarshal(entry.Value, dest); err != nil {
		return 0, fmt.Errorf("decode %s: %w", key, err)
	}
	return entry.Version, nil
}

// PutJSON encode value et l'écrit, conditionnellement si expected >= 0
func PutJSON(ctx context.Context, s Store, key string, value interface{}, expected int64) (int64, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", key, err)
	}
	if expected < 0 {
		return s.Set(ctx, key, data)
	}
	return s.CompareAndSwap(ctx, key, data, expected)
}
