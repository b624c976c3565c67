package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wo-aiml-user/finance-agent/internal/domain"
	"github.com/wo-aiml-user/finance-agent/internal/store"
	"github.com/wo-aiml-user/finance-agent/pkg/groqclient"
)

type analysisStub struct {
	response string
	err      error
	calls    int
}

func (s *analysisStub) CreateChatCompletion(ctx context.Context, model string, messages []groqclient.Message, temperature float64) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

type suggestionStub struct {
	response string
	err      error
}

func (s *suggestionStub) GenerateContent(ctx context.Context, model, prompt string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

type publisherStub struct {
	routingKeys []string
}

func (p *publisherStub) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	p.routingKeys = append(p.routingKeys, routingKey)
	return nil
}

func (p *publisherStub) Close() {}

type limiterStub struct {
	count      int
	retryAfter int
	err        error
}

func (l *limiterStub) ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (int, int, error) {
	return l.count, l.retryAfter, l.err
}

func newTestService(repo store.Repository, analysis AnalysisClient, suggestions SuggestionClient, producer *publisherStub) *Service {
	return NewService(repo, analysis, suggestions, producer, Config{
		AnalysisModel:    "test-analysis-model",
		SuggestionsModel: "test-suggestions-model",
		EventExchange:    "finance.events",
	})
}

func seededRepo(t *testing.T, userID string) *store.MemoryRepository {
	t.Helper()
	repo := store.NewMemoryRepository()
	repo.SeedRawProfile(userID, map[string]any{
		"accounts": []any{map[string]any{"type": "checking", "balance": 2400.10}},
	})
	return repo
}

func TestBuildMemory_Success(t *testing.T) {
	repo := seededRepo(t, "user-1")
	analysis := &analysisStub{response: "```json\n" + `{
		"FinanceProfile": {"user_age_years": 34, "income_monthly_take_home": "1500.50"},
		"additional_insights": {"spending_pattern": "steady"},
		"profile_summary": "A 34 year old steady saver."
	}` + "\n```"}
	producer := &publisherStub{}
	svc := newTestService(repo, analysis, &suggestionStub{}, producer)

	result, err := svc.BuildMemory(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("BuildMemory returned error: %v", err)
	}
	if result.Status != domain.AnalysisStatusSuccess {
		t.Fatalf("expected success, got status %q error %q", result.Status, result.Error)
	}
	if result.DocumentID == "" {
		t.Fatal("expected a document id")
	}
	if result.FinanceProfile["user_age_years"] != 34 {
		t.Fatalf("expected coerced age, got %#v", result.FinanceProfile["user_age_years"])
	}
	if result.FinanceProfile["income_monthly_take_home"] != 1500.50 {
		t.Fatalf("expected numeric string coerced to float, got %#v", result.FinanceProfile["income_monthly_take_home"])
	}
	if result.ProfileSummary != "A 34 year old steady saver." {
		t.Fatalf("unexpected summary: %q", result.ProfileSummary)
	}

	doc, _ := repo.GetProfile(context.Background(), "user-1")
	if doc == nil || doc.Version != 1 {
		t.Fatalf("expected stored document at version 1, got %v", doc)
	}
	if len(producer.routingKeys) != 1 || producer.routingKeys[0] != "memory.built" {
		t.Fatalf("expected memory.built event, got %v", producer.routingKeys)
	}
}

func TestBuildMemory_RawProfileMissing(t *testing.T) {
	repo := store.NewMemoryRepository()
	svc := newTestService(repo, &analysisStub{}, &suggestionStub{}, &publisherStub{})

	_, err := svc.BuildMemory(context.Background(), "nobody")
	if !errors.Is(err, store.ErrRawProfileNotFound) {
		t.Fatalf("expected ErrRawProfileNotFound, got %v", err)
	}
}

func TestBuildMemory_MissingRequiredKeyFailsWithoutWrite(t *testing.T) {
	repo := seededRepo(t, "user-1")
	analysis := &analysisStub{response: `{"additional_insights": {}}`}
	svc := newTestService(repo, analysis, &suggestionStub{}, &publisherStub{})

	result, err := svc.BuildMemory(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected failure inside the result, got error %v", err)
	}
	if result.Status != domain.AnalysisStatusFailed {
		t.Fatalf("expected failed status, got %q", result.Status)
	}
	if result.Error == "" {
		t.Fatal("expected a failure reason")
	}

	doc, _ := repo.GetProfile(context.Background(), "user-1")
	if doc != nil {
		t.Fatal("expected no document written on a rejected response")
	}
}

func TestBuildMemory_ProviderErrorFailsWithoutWrite(t *testing.T) {
	repo := seededRepo(t, "user-1")
	analysis := &analysisStub{err: errors.New("upstream 500")}
	svc := newTestService(repo, analysis, &suggestionStub{}, &publisherStub{})

	result, err := svc.BuildMemory(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected failure inside the result, got error %v", err)
	}
	if result.Status != domain.AnalysisStatusFailed {
		t.Fatalf("expected failed status, got %q", result.Status)
	}
}

func TestBuildMemory_CoercionFailureStoresRawData(t *testing.T) {
	repo := seededRepo(t, "user-1")
	analysis := &analysisStub{response: `{
		"FinanceProfile": {"user_age_years": 34, "income_monthly_take_home": "around two grand"},
		"additional_insights": {},
		"profile_summary": "summary"
	}`}
	svc := newTestService(repo, analysis, &suggestionStub{}, &publisherStub{})

	result, err := svc.BuildMemory(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("BuildMemory returned error: %v", err)
	}
	if result.Status != domain.AnalysisStatusSuccess {
		t.Fatalf("expected success with raw fallback, got %q error %q", result.Status, result.Error)
	}
	if result.FinanceProfile["income_monthly_take_home"] != "around two grand" {
		t.Fatalf("expected raw value preserved, got %#v", result.FinanceProfile["income_monthly_take_home"])
	}
	// Raw fallback stores only the keys the provider returned, no schema padding.
	if _, present := result.FinanceProfile["expense_total_monthly"]; present {
		t.Fatal("raw fallback should not pad unknown schema fields")
	}

	doc, _ := repo.GetProfile(context.Background(), "user-1")
	if doc == nil {
		t.Fatal("expected raw fallback document to be stored")
	}
}

func TestBuildMemory_RateLimited(t *testing.T) {
	repo := seededRepo(t, "user-1")
	analysis := &analysisStub{}
	svc := NewService(repo, analysis, &suggestionStub{}, &publisherStub{}, Config{
		MemoryBuildRateLimitPerMinute: 2,
	})
	svc.SetRateLimiter(&limiterStub{count: 3, retryAfter: 17})

	_, err := svc.BuildMemory(context.Background(), "user-1")
	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rateErr.RetryAfterSeconds != 17 {
		t.Fatalf("expected retry-after 17, got %d", rateErr.RetryAfterSeconds)
	}
	if analysis.calls != 0 {
		t.Fatal("expected no provider call when rate limited")
	}
}

func TestBuildMemory_LimiterFailureAllowsRequest(t *testing.T) {
	repo := seededRepo(t, "user-1")
	analysis := &analysisStub{response: `{"FinanceProfile": {}, "profile_summary": "s"}`}
	svc := NewService(repo, analysis, &suggestionStub{}, &publisherStub{}, Config{
		MemoryBuildRateLimitPerMinute: 2,
	})
	svc.SetRateLimiter(&limiterStub{err: errors.New("redis down")})

	result, err := svc.BuildMemory(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected limiter failure to be ignored, got %v", err)
	}
	if result.Status != domain.AnalysisStatusSuccess {
		t.Fatalf("expected success, got %q error %q", result.Status, result.Error)
	}
}

func TestGenerateSuggestions_Success(t *testing.T) {
	repo := store.NewMemoryRepository()
	summary := "steady saver"
	if _, err := repo.UpsertProfile(context.Background(), "user-1", map[string]any{"user_age_years": 34, "expense_total_monthly": nil}, nil, &summary); err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}
	suggestions := &suggestionStub{response: "```json\n{\"short_msg\": \"Save more\", \"suggestion\": \"Move 10% into savings.\"}\n```"}
	svc := newTestService(repo, &analysisStub{}, suggestions, &publisherStub{})

	result, err := svc.GenerateSuggestions(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GenerateSuggestions returned error: %v", err)
	}
	if result.ShortMsg != "Save more" || result.Suggestion != "Move 10% into savings." {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestGenerateSuggestions_UnparseableOutputDegradesToRawText(t *testing.T) {
	repo := store.NewMemoryRepository()
	if _, err := repo.UpsertProfile(context.Background(), "user-1", map[string]any{}, nil, nil); err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}
	suggestions := &suggestionStub{response: "Just plain advice, no JSON."}
	svc := newTestService(repo, &analysisStub{}, suggestions, &publisherStub{})

	result, err := svc.GenerateSuggestions(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GenerateSuggestions returned error: %v", err)
	}
	if result.Suggestion != "Just plain advice, no JSON." {
		t.Fatalf("expected raw text wrapped as suggestion, got %q", result.Suggestion)
	}
	if result.ShortMsg == "" {
		t.Fatal("expected a placeholder short message")
	}
}

func TestGenerateSuggestions_MemoryMissing(t *testing.T) {
	repo := store.NewMemoryRepository()
	svc := newTestService(repo, &analysisStub{}, &suggestionStub{}, &publisherStub{})

	_, err := svc.GenerateSuggestions(context.Background(), "nobody")
	if !errors.Is(err, ErrMemoryNotFound) {
		t.Fatalf("expected ErrMemoryNotFound, got %v", err)
	}
}

func TestGenerateSuggestions_EmptySuggestion(t *testing.T) {
	repo := store.NewMemoryRepository()
	if _, err := repo.UpsertProfile(context.Background(), "user-1", map[string]any{}, nil, nil); err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}
	suggestions := &suggestionStub{response: `{"short_msg": "", "suggestion": ""}`}
	svc := newTestService(repo, &analysisStub{}, suggestions, &publisherStub{})

	_, err := svc.GenerateSuggestions(context.Background(), "user-1")
	if !errors.Is(err, ErrEmptySuggestion) {
		t.Fatalf("expected ErrEmptySuggestion, got %v", err)
	}
}

func TestAnalyzeAccounts_RequiresDocumentedKeys(t *testing.T) {
	repo := seededRepo(t, "user-1")
	analysis := &analysisStub{response: `{"account_overview": {}, "summary": "ok"}`}
	svc := newTestService(repo, analysis, &suggestionStub{}, &publisherStub{})

	if _, err := svc.AnalyzeAccounts(context.Background(), "user-1"); err == nil {
		t.Fatal("expected rejection when documented analysis keys are missing")
	}

	analysis.response = `{
		"account_overview": {}, "spending_analysis": {}, "income_analysis": {},
		"debt_analysis": {}, "risk_flags": [], "recommendations": [], "summary": "ok"
	}`
	parsed, err := svc.AnalyzeAccounts(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("AnalyzeAccounts returned error: %v", err)
	}
	if parsed["summary"] != "ok" {
		t.Fatalf("unexpected analysis payload: %v", parsed)
	}

	// Account analysis never persists.
	doc, _ := repo.GetProfile(context.Background(), "user-1")
	if doc != nil {
		t.Fatal("expected no document written by account analysis")
	}
}

func TestPatchInsights_PublishesEventOnUpdate(t *testing.T) {
	repo := store.NewMemoryRepository()
	if _, err := repo.UpsertProfile(context.Background(), "user-1", map[string]any{}, map[string]any{"a": 1}, nil); err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}
	producer := &publisherStub{}
	svc := newTestService(repo, &analysisStub{}, &suggestionStub{}, producer)

	updated, err := svc.PatchInsights(context.Background(), "user-1", map[string]any{"b": 2})
	if err != nil || !updated {
		t.Fatalf("expected update, got updated=%t err=%v", updated, err)
	}
	if len(producer.routingKeys) != 1 || producer.routingKeys[0] != "memory.insights.updated" {
		t.Fatalf("expected insights event, got %v", producer.routingKeys)
	}

	updated, err = svc.PatchInsights(context.Background(), "nobody", map[string]any{"b": 2})
	if err != nil || updated {
		t.Fatalf("expected miss for unknown user, got updated=%t err=%v", updated, err)
	}
	if len(producer.routingKeys) != 1 {
		t.Fatalf("expected no event for a miss, got %v", producer.routingKeys)
	}
}

func TestDeleteMemory_PublishesEventOnDelete(t *testing.T) {
	repo := store.NewMemoryRepository()
	if _, err := repo.UpsertProfile(context.Background(), "user-1", map[string]any{}, nil, nil); err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}
	producer := &publisherStub{}
	svc := newTestService(repo, &analysisStub{}, &suggestionStub{}, producer)

	deleted, err := svc.DeleteMemory(context.Background(), "user-1")
	if err != nil || !deleted {
		t.Fatalf("expected delete, got deleted=%t err=%v", deleted, err)
	}
	if len(producer.routingKeys) != 1 || producer.routingKeys[0] != "memory.deleted" {
		t.Fatalf("expected delete event, got %v", producer.routingKeys)
	}
}
