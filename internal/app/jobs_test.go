package app

import (
	"context"
	"testing"
	"time"

	"github.com/wo-aiml-user/finance-agent/internal/store"
)

func TestRefreshStaleMemories_RebuildsStaleDocuments(t *testing.T) {
	repo := seededRepo(t, "user-1")
	analysis := &analysisStub{response: `{"FinanceProfile": {"user_age_years": 34}, "additional_insights": {}, "profile_summary": "s"}`}
	svc := newTestService(repo, analysis, &suggestionStub{}, &publisherStub{})

	if _, err := svc.BuildMemory(context.Background(), "user-1"); err != nil {
		t.Fatalf("initial build failed: %v", err)
	}

	// maxAge zero makes every existing document stale.
	jobs := NewJobs(svc, 0)
	jobs.RefreshStaleMemories()

	doc, _ := repo.GetProfile(context.Background(), "user-1")
	if doc == nil || doc.Version != 2 {
		t.Fatalf("expected stale document rebuilt to version 2, got %v", doc)
	}
}

func TestRefreshStaleMemories_LeavesFreshDocumentsAlone(t *testing.T) {
	repo := seededRepo(t, "user-1")
	analysis := &analysisStub{response: `{"FinanceProfile": {}, "additional_insights": {}, "profile_summary": "s"}`}
	svc := newTestService(repo, analysis, &suggestionStub{}, &publisherStub{})

	if _, err := svc.BuildMemory(context.Background(), "user-1"); err != nil {
		t.Fatalf("initial build failed: %v", err)
	}
	callsAfterBuild := analysis.calls

	jobs := NewJobs(svc, 24*time.Hour)
	jobs.RefreshStaleMemories()

	if analysis.calls != callsAfterBuild {
		t.Fatal("expected no rebuild for a fresh document")
	}
}

func TestRefreshStaleMemories_SkipsUsersWithoutRawData(t *testing.T) {
	repo := store.NewMemoryRepository()
	if _, err := repo.UpsertProfile(context.Background(), "orphan", map[string]any{}, nil, nil); err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}
	analysis := &analysisStub{}
	svc := newTestService(repo, analysis, &suggestionStub{}, &publisherStub{})

	jobs := NewJobs(svc, 0)
	jobs.RefreshStaleMemories()

	if analysis.calls != 0 {
		t.Fatal("expected no provider call for a user without raw data")
	}
	doc, _ := repo.GetProfile(context.Background(), "orphan")
	if doc == nil || doc.Version != 1 {
		t.Fatalf("expected orphan document untouched, got %v", doc)
	}
}

func TestNewScheduler_RejectsBadSpec(t *testing.T) {
	svc := newTestService(store.NewMemoryRepository(), &analysisStub{}, &suggestionStub{}, &publisherStub{})
	jobs := NewJobs(svc, time.Hour)

	if _, err := NewScheduler(jobs, "not a cron spec"); err == nil {
		t.Fatal("expected invalid schedule to be rejected")
	}
	scheduler, err := NewScheduler(jobs, "@hourly")
	if err != nil {
		t.Fatalf("expected valid schedule to parse, got %v", err)
	}
	if scheduler == nil {
		t.Fatal("expected a scheduler")
	}
}
