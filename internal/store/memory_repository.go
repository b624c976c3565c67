/**
 * @description
 * This file implements the Repository interface entirely in memory. It exists
 * for two reasons: local development and tests run without a database, and the
 * service can be statically configured (STORE_BACKEND=memory) to boot with this
 * backend when PostgreSQL is not available. Operation semantics are identical
 * to the Postgres implementation, including versioning and not-found results.
 *
 * @notes
 * - Maps are deep-copied on the way in and out so callers never alias stored
 *   state.
 * - The backend choice is made once at startup from configuration, never
 *   auto-detected per call.
 */

package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wo-aiml-user/finance-agent/internal/domain"
)

// MemoryRepository is an in-memory Repository with the same semantics as the
// Postgres implementation.
type MemoryRepository struct {
	mu          sync.Mutex
	documents   map[string]*domain.ProfileDocument
	rawProfiles map[string]map[string]any
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		documents:   make(map[string]*domain.ProfileDocument),
		rawProfiles: make(map[string]map[string]any),
	}
}

// SeedRawProfile loads raw banking facts for a user into the raw-data source.
func (r *MemoryRepository) SeedRawProfile(userID string, data map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rawProfiles[userID] = cloneMap(data)
}

// UpsertProfile stores or replaces the memory document for a user.
func (r *MemoryRepository) UpsertProfile(_ context.Context, userID string, profile map[string]any, insights map[string]any, summary *string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if insights == nil {
		insights = map[string]any{}
	}
	now := time.Now().UTC()

	if existing, ok := r.documents[userID]; ok {
		existing.FinanceProfile = cloneMap(profile)
		existing.AdditionalInsights = cloneMap(insights)
		existing.ProfileSummary = cloneStringPtr(summary)
		existing.UpdatedAt = now
		existing.Version++
		return existing.ID.String(), nil
	}

	doc := &domain.ProfileDocument{
		ID:                 uuid.New(),
		UserID:             userID,
		FinanceProfile:     cloneMap(profile),
		AdditionalInsights: cloneMap(insights),
		ProfileSummary:     cloneStringPtr(summary),
		CreatedAt:          now,
		UpdatedAt:          now,
		Version:            1,
	}
	r.documents[userID] = doc
	return doc.ID.String(), nil
}

// GetProfile returns the memory document for a user, or (nil, nil) when missing.
func (r *MemoryRepository) GetProfile(_ context.Context, userID string) (*domain.ProfileDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.documents[userID]
	if !ok {
		return nil, nil
	}
	return cloneDocument(doc), nil
}

// ListProfiles returns every stored memory document.
func (r *MemoryRepository) ListProfiles(_ context.Context) ([]domain.ProfileDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs := make([]domain.ProfileDocument, 0, len(r.documents))
	for _, doc := range r.documents {
		docs = append(docs, *cloneDocument(doc))
	}
	return docs, nil
}

// PatchInsights replaces additional_insights wholesale for an existing document.
func (r *MemoryRepository) PatchInsights(_ context.Context, userID string, insights map[string]any) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.documents[userID]
	if !ok {
		return false, nil
	}
	if insights == nil {
		insights = map[string]any{}
	}
	doc.AdditionalInsights = cloneMap(insights)
	doc.UpdatedAt = time.Now().UTC()
	doc.Version++
	return true, nil
}

// DeleteProfile removes the memory document for a user.
func (r *MemoryRepository) DeleteProfile(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.documents[userID]; !ok {
		return false, nil
	}
	delete(r.documents, userID)
	return true, nil
}

// ProfileHistory returns stored versions for a user, newest first. Only the
// current version is retained, so the result holds at most one document.
func (r *MemoryRepository) ProfileHistory(ctx context.Context, userID string, limit int) ([]domain.ProfileDocument, error) {
	if limit == 0 {
		return nil, nil
	}
	doc, err := r.GetProfile(ctx, userID)
	if err != nil || doc == nil {
		return nil, err
	}
	return []domain.ProfileDocument{*doc}, nil
}

// GetRawProfile returns the raw banking facts for a user.
func (r *MemoryRepository) GetRawProfile(_ context.Context, userID string) (map[string]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok := r.rawProfiles[userID]
	if !ok {
		return nil, ErrRawProfileNotFound
	}
	return cloneMap(data), nil
}

func cloneDocument(doc *domain.ProfileDocument) *domain.ProfileDocument {
	out := *doc
	out.FinanceProfile = cloneMap(doc.FinanceProfile)
	out.AdditionalInsights = cloneMap(doc.AdditionalInsights)
	out.ProfileSummary = cloneStringPtr(doc.ProfileSummary)
	return &out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}
