/**
 * @description
 * This file defines the `Repository` interface: the contract for the versioned
 * finance memory store and the raw-profile source the analysis flow reads from.
 * Defining an interface decouples the orchestration logic from the storage
 * backend, so the Postgres implementation and the in-memory implementation are
 * interchangeable behind a static configuration switch.
 *
 * @notes
 * - Not-found is a normal value at this boundary, never an error: GetProfile
 *   returns (nil, nil), DeleteProfile and PatchInsights return (false, nil).
 *   Only storage connectivity failures surface as errors.
 * - UpsertProfile is find-then-replace. Two concurrent upserts for the same
 *   user can read the same existing version and the second write wins; callers
 *   needing per-user serialization take the user's lock in KeyedMutex first.
 */

package store

import (
	"context"
	"errors"

	"github.com/wo-aiml-user/finance-agent/internal/domain"
)

var (
	// ErrRawProfileNotFound indicates the raw-data source has no banking facts
	// for the requested user.
	ErrRawProfileNotFound = errors.New("raw finance profile not found")
)

// Repository defines the set of methods for interacting with the memory store.
type Repository interface {
	// UpsertProfile stores or replaces the memory document for a user.
	// First write creates version 1 with created_at == updated_at; every later
	// write replaces the document body, preserves user_id, created_at and the
	// document identity, increments version by 1 and refreshes updated_at.
	// Returns the document's stable identity.
	UpsertProfile(ctx context.Context, userID string, profile map[string]any, insights map[string]any, summary *string) (string, error)

	// GetProfile returns the memory document for a user, or (nil, nil) when
	// none exists. Exact-key lookup only.
	GetProfile(ctx context.Context, userID string) (*domain.ProfileDocument, error)

	// ListProfiles returns every stored memory document. Ordering is
	// implementation-defined.
	ListProfiles(ctx context.Context) ([]domain.ProfileDocument, error)

	// PatchInsights replaces the additional_insights mapping wholesale for an
	// existing document, incrementing version and refreshing updated_at.
	// Returns false when no document exists or the write touched zero rows.
	PatchInsights(ctx context.Context, userID string, insights map[string]any) (bool, error)

	// DeleteProfile removes the document entirely. Returns false when none
	// existed.
	DeleteProfile(ctx context.Context, userID string) (bool, error)

	// ProfileHistory returns up to limit stored versions for a user, newest
	// first. Only the current version is retained, so the result holds at most
	// one document.
	ProfileHistory(ctx context.Context, userID string, limit int) ([]domain.ProfileDocument, error)

	// GetRawProfile returns the raw banking facts for a user from the
	// raw-data source, or ErrRawProfileNotFound.
	GetRawProfile(ctx context.Context, userID string) (map[string]any, error)
}
