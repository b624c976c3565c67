package store

import (
	"context"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestUpsertProfile_CreateThenReplace(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	docID, err := repo.UpsertProfile(ctx, "user-1", map[string]any{"user_age_years": 34}, nil, strPtr("first summary"))
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	doc, err := repo.GetProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if doc == nil {
		t.Fatal("expected a document after upsert")
	}
	if doc.Version != 1 {
		t.Fatalf("expected version 1 on create, got %d", doc.Version)
	}
	if !doc.CreatedAt.Equal(doc.UpdatedAt) {
		t.Fatalf("expected created_at == updated_at on create, got %v vs %v", doc.CreatedAt, doc.UpdatedAt)
	}
	if doc.ID.String() != docID {
		t.Fatalf("expected returned id %s, got %s", docID, doc.ID)
	}

	secondID, err := repo.UpsertProfile(ctx, "user-1", map[string]any{"user_age_years": 35}, map[string]any{"note": "updated"}, strPtr("second summary"))
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if secondID != docID {
		t.Fatalf("expected replacement to keep document identity, got %s then %s", docID, secondID)
	}

	updated, err := repo.GetProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("get after replace failed: %v", err)
	}
	if updated.Version != 2 {
		t.Fatalf("expected version 2 after replace, got %d", updated.Version)
	}
	if !updated.CreatedAt.Equal(doc.CreatedAt) {
		t.Fatal("expected created_at preserved across replacement")
	}
	if updated.FinanceProfile["user_age_years"] != 35 {
		t.Fatalf("expected replaced profile, got %v", updated.FinanceProfile)
	}
	if *updated.ProfileSummary != "second summary" {
		t.Fatalf("expected replaced summary, got %q", *updated.ProfileSummary)
	}
}

func TestGetProfile_MissingIsNotAnError(t *testing.T) {
	repo := NewMemoryRepository()

	doc, err := repo.GetProfile(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("expected no error for missing user, got %v", err)
	}
	if doc != nil {
		t.Fatalf("expected nil document for missing user, got %v", doc)
	}
}

func TestGetProfile_ReturnsACopy(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if _, err := repo.UpsertProfile(ctx, "user-1", map[string]any{"user_age_years": 34}, nil, nil); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	doc, _ := repo.GetProfile(ctx, "user-1")
	doc.FinanceProfile["user_age_years"] = 99

	again, _ := repo.GetProfile(ctx, "user-1")
	if again.FinanceProfile["user_age_years"] != 34 {
		t.Fatal("mutating a returned document leaked into stored state")
	}
}

func TestPatchInsights_ReplacesWholesale(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if _, err := repo.UpsertProfile(ctx, "user-1", map[string]any{}, map[string]any{"a": 1, "b": 2}, nil); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	updated, err := repo.PatchInsights(ctx, "user-1", map[string]any{"c": 3})
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if !updated {
		t.Fatal("expected patch to report an update")
	}

	doc, _ := repo.GetProfile(ctx, "user-1")
	if len(doc.AdditionalInsights) != 1 || doc.AdditionalInsights["c"] != 3 {
		t.Fatalf("expected wholesale replacement {c:3}, got %v", doc.AdditionalInsights)
	}
	if doc.Version != 2 {
		t.Fatalf("expected patch to bump version to 2, got %d", doc.Version)
	}
}

func TestPatchInsights_MissingUser(t *testing.T) {
	repo := NewMemoryRepository()

	updated, err := repo.PatchInsights(context.Background(), "nobody", map[string]any{"c": 3})
	if err != nil {
		t.Fatalf("expected no error for missing user, got %v", err)
	}
	if updated {
		t.Fatal("expected no update for missing user")
	}
}

func TestDeleteProfile(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if _, err := repo.UpsertProfile(ctx, "user-1", map[string]any{}, nil, nil); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	deleted, err := repo.DeleteProfile(ctx, "user-1")
	if err != nil || !deleted {
		t.Fatalf("expected delete to succeed, got deleted=%t err=%v", deleted, err)
	}

	doc, _ := repo.GetProfile(ctx, "user-1")
	if doc != nil {
		t.Fatal("expected document gone after delete")
	}

	deleted, err = repo.DeleteProfile(ctx, "user-1")
	if err != nil || deleted {
		t.Fatalf("expected second delete to be a no-op, got deleted=%t err=%v", deleted, err)
	}
}

func TestProfileHistory_CurrentVersionOnly(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if _, err := repo.UpsertProfile(ctx, "user-1", map[string]any{"user_age_years": 34}, nil, nil); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if _, err := repo.UpsertProfile(ctx, "user-1", map[string]any{"user_age_years": 35}, nil, nil); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	history, err := repo.ProfileHistory(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected only the current version retained, got %d entries", len(history))
	}
	if history[0].Version != 2 {
		t.Fatalf("expected current version 2, got %d", history[0].Version)
	}

	empty, err := repo.ProfileHistory(ctx, "user-1", 0)
	if err != nil || empty != nil {
		t.Fatalf("expected empty history for limit 0, got %v err=%v", empty, err)
	}
}

func TestGetRawProfile(t *testing.T) {
	repo := NewMemoryRepository()
	repo.SeedRawProfile("user-1", map[string]any{"accounts": []any{"checking"}})

	data, err := repo.GetRawProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected seeded raw profile, got %v", err)
	}
	if _, ok := data["accounts"]; !ok {
		t.Fatalf("unexpected raw data: %v", data)
	}

	if _, err := repo.GetRawProfile(context.Background(), "nobody"); err != ErrRawProfileNotFound {
		t.Fatalf("expected ErrRawProfileNotFound, got %v", err)
	}
}
