// Package occ implements optimistic concurrency over a version stamp:
// a mutation is written only if the stored status and version still match
// what the caller last read. Losers get the latest state back instead of
// overwriting it.
package occ

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrConflict matches every *ConflictError via errors.Is.
	ErrConflict = errors.New("resource was modified by someone else")
	// ErrNotFound is returned when the resource does not exist.
	ErrNotFound = errors.New("resource not found")
)

// Expectation is the state the caller saw before submitting a mutation.
type Expectation struct {
	Version time.Time
	Status  string
}

// Matches reports whether the stored status and version equal the expectation.
func (e Expectation) Matches(status string, version time.Time) bool {
	return e.Status == status && e.Version.Equal(version)
}

// ConflictError carries the latest stored state for the caller to re-present.
type ConflictError[T any] struct {
	Latest T
}

func (e *ConflictError[T]) Error() string {
	return ErrConflict.Error()
}

func (e *ConflictError[T]) Is(target error) bool {
	return target == ErrConflict
}

// Versioned exposes the fields the guard compares.
type Versioned interface {
	VersionStamp() time.Time
	StatusValue() string
}

// Store is the storage primitive the guard needs.
type Store[T Versioned] interface {
	// Load returns ErrNotFound (possibly wrapped) when missing.
	Load(ctx context.Context, id string) (T, error)

	// CompareAndSwap writes next only if the row still has the expected
	// status and version, and assigns a new, strictly greater version.
	// ok is false when the condition failed.
	CompareAndSwap(ctx context.Context, id string, expected Expectation, next T) (updated T, ok bool, err error)
}

// Mutation derives the next state from the current one. Returning an error
// aborts without writing.
type Mutation[T any] func(current T) (T, error)

// TryMutate applies mutation to resource id iff its status and version still
// match expected. It never retries or merges.
func TryMutate[T Versioned](ctx context.Context, store Store[T], id string, expected Expectation, mutate Mutation[T]) (T, error) {
	var zero T

	current, err := store.Load(ctx, id)
	if err != nil {
		return zero, err
	}

	// Stale before we even start: no point building the mutation.
	if !expected.Matches(current.StatusValue(), current.VersionStamp()) {
		return zero, &ConflictError[T]{Latest: current}
	}

	next, err := mutate(current)
	if err != nil {
		return zero, err
	}

	updated, ok, err := store.CompareAndSwap(ctx, id, expected, next)
	if err != nil {
		return zero, fmt.Errorf("conditional write: %w", err)
	}
	if ok {
		return updated, nil
	}

	// Lost the race between our read and the write.
	latest, err := store.Load(ctx, id)
	if err != nil {
		return zero, err
	}
	return zero, &ConflictError[T]{Latest: latest}
}

// LatestFrom extracts the latest state from a conflict error.
func LatestFrom[T any](err error) (T, bool) {
	var conflict *ConflictError[T]
	if errors.As(err, &conflict) {
		return conflict.Latest, true
	}
	var zero T
	return zero, false
}
