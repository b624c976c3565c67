/**
 * @description
 * This file contains the core orchestration logic for the finance memory
 * service. The `Service` struct coordinates the analysis flow (raw banking
 * facts -> LLM analysis -> schema validation -> versioned upsert), the
 * suggestions flow (stored memory -> LLM advice), and the memory CRUD
 * operations exposed by the API layer.
 *
 * Key behaviors:
 * - Provider output is fence-stripped and parsed; missing required top-level
 *   keys fail the build with no document written.
 * - Schema coercion failure degrades to storing the raw mapping, logged as a
 *   warning. The degrade decision lives here, not in the validator.
 * - Writes for the same user are serialized in-process with a keyed mutex;
 *   the cross-process upsert race is an accepted limitation of the store.
 * - Memory lifecycle events are published after successful writes; publish
 *   failures are logged and never fail the operation.
 *
 * @dependencies
 * - internal/domain, internal/schema, internal/store: models, validation, persistence.
 * - pkg/groqclient, pkg/geminiclient, pkg/rabbitmq: external collaborators.
 */

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/wo-aiml-user/finance-agent/internal/domain"
	"github.com/wo-aiml-user/finance-agent/internal/schema"
	"github.com/wo-aiml-user/finance-agent/internal/store"
	"github.com/wo-aiml-user/finance-agent/pkg/groqclient"
	"github.com/wo-aiml-user/finance-agent/pkg/rabbitmq"
)

var (
	// ErrMemoryNotFound indicates no memory document exists for the user.
	ErrMemoryNotFound = errors.New("finance memory not found")
	// ErrEmptySuggestion indicates the suggestions provider returned no usable text.
	ErrEmptySuggestion = errors.New("suggestions provider returned no suggestion text")
)

// RateLimitError is returned when a user exceeds the configured request budget
// for an LLM-backed operation.
type RateLimitError struct {
	Scope             string
	RetryAfterSeconds int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s; retry after %ds", e.Scope, e.RetryAfterSeconds)
}

// AnalysisClient is the contract for the profile-analysis LLM provider.
type AnalysisClient interface {
	CreateChatCompletion(ctx context.Context, model string, messages []groqclient.Message, temperature float64) (string, error)
}

// SuggestionClient is the contract for the suggestions LLM provider.
type SuggestionClient interface {
	GenerateContent(ctx context.Context, model, prompt string) (string, error)
}

// Config carries the tunables the service needs from the configuration layer.
type Config struct {
	AnalysisModel                 string
	AnalysisTemperature           float64
	SuggestionsModel              string
	EventExchange                 string
	MemoryBuildRateLimitPerMinute int
	SuggestionsRateLimitPerMinute int
}

// Service provides the core business logic for building and serving finance memories.
type Service struct {
	repo        store.Repository
	analysis    AnalysisClient
	suggestions SuggestionClient
	producer    rabbitmq.Publisher
	locks       *store.KeyedMutex
	rateLimiter RateLimiter
	cfg         Config
}

// NewService creates a new memory service instance.
func NewService(repo store.Repository, analysis AnalysisClient, suggestions SuggestionClient, producer rabbitmq.Publisher, cfg Config) *Service {
	if producer == nil {
		producer = &rabbitmq.NoopPublisher{}
	}
	return &Service{
		repo:        repo,
		analysis:    analysis,
		suggestions: suggestions,
		producer:    producer,
		locks:       store.NewKeyedMutex(),
		cfg:         cfg,
	}
}

// SetRateLimiter installs a distributed rate limiter for LLM-backed operations.
func (s *Service) SetRateLimiter(limiter RateLimiter) {
	s.rateLimiter = limiter
}

// BuildMemory analyzes a user's raw banking facts and stores the structured
// memory document. Returns store.ErrRawProfileNotFound when the raw-data
// source has nothing for the user; every other failure is reported inside the
// result with status "failed" and no document written.
func (s *Service) BuildMemory(ctx context.Context, userID string) (domain.AnalysisResult, error) {
	if err := s.consumeLimit(ctx, "memory_build", userID, s.cfg.MemoryBuildRateLimitPerMinute); err != nil {
		return domain.AnalysisResult{}, err
	}

	rawData, err := s.repo.GetRawProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrRawProfileNotFound) {
			return domain.AnalysisResult{}, err
		}
		return failedResult(userID, fmt.Errorf("raw profile fetch failed: %w", err)), nil
	}

	log.Printf("level=info component=app msg=\"analyzing finances\" user_id=%s", userID)

	prompt := buildProfileExtractionPrompt(rawData)
	responseText, err := s.analysis.CreateChatCompletion(ctx, s.cfg.AnalysisModel, []groqclient.Message{
		{Role: "system", Content: analysisSystemMessage},
		{Role: "user", Content: prompt},
	}, s.cfg.AnalysisTemperature)
	if err != nil {
		return failedResult(userID, fmt.Errorf("analysis provider call failed: %w", err)), nil
	}

	parsed, err := parseAnalysisResponse(responseText)
	if err != nil {
		log.Printf("level=error component=app msg=\"analysis response rejected\" user_id=%s err=%v", userID, err)
		return failedResult(userID, err), nil
	}

	profileData, _ := parsed["FinanceProfile"].(map[string]any)
	if profileData == nil {
		profileData = map[string]any{}
	}

	var storedProfile map[string]any
	result := schema.Coerce(profileData)
	if result.Coerced() {
		storedProfile = schema.StorageMap(result.Profile)
	} else {
		log.Printf("level=warn component=app msg=\"profile validation failed; storing raw data\" user_id=%s reason=%q", userID, result.Reason)
		normalized, _ := schema.NormalizeValue(result.Raw).(map[string]any)
		storedProfile = normalized
	}

	insights, _ := parsed["additional_insights"].(map[string]any)
	if normalized, ok := schema.NormalizeValue(insights).(map[string]any); ok {
		insights = normalized
	}
	summary, _ := parsed["profile_summary"].(string)

	unlock := s.locks.Lock(userID)
	docID, err := s.repo.UpsertProfile(ctx, userID, storedProfile, insights, &summary)
	unlock()
	if err != nil {
		return failedResult(userID, fmt.Errorf("memory store failed: %w", err)), nil
	}

	s.publishEvent(ctx, rabbitmq.RoutingKeyMemoryBuilt, userID, docID)
	log.Printf("level=info component=app msg=\"memory stored\" user_id=%s doc_id=%s", userID, docID)

	return domain.AnalysisResult{
		UserID:             userID,
		DocumentID:         docID,
		FinanceProfile:     storedProfile,
		AdditionalInsights: insights,
		ProfileSummary:     summary,
		Status:             domain.AnalysisStatusSuccess,
	}, nil
}

// AnalyzeAccounts runs the one-shot account analysis over a user's raw banking
// facts and returns the structured analysis without persisting anything.
func (s *Service) AnalyzeAccounts(ctx context.Context, userID string) (map[string]any, error) {
	if err := s.consumeLimit(ctx, "account_analysis", userID, s.cfg.MemoryBuildRateLimitPerMinute); err != nil {
		return nil, err
	}

	rawData, err := s.repo.GetRawProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	prompt := buildAccountAnalysisPrompt(rawData)
	responseText, err := s.analysis.CreateChatCompletion(ctx, s.cfg.AnalysisModel, []groqclient.Message{
		{Role: "system", Content: analysisSystemMessage},
		{Role: "user", Content: prompt},
	}, s.cfg.AnalysisTemperature)
	if err != nil {
		return nil, fmt.Errorf("analysis provider call failed: %w", err)
	}

	return parseAccountAnalysisResponse(responseText)
}

// GenerateSuggestions produces short personalized advice from a user's stored
// memory. Returns ErrMemoryNotFound when no memory document exists.
func (s *Service) GenerateSuggestions(ctx context.Context, userID string) (domain.SuggestionResult, error) {
	if err := s.consumeLimit(ctx, "suggestions", userID, s.cfg.SuggestionsRateLimitPerMinute); err != nil {
		return domain.SuggestionResult{}, err
	}

	doc, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return domain.SuggestionResult{}, err
	}
	if doc == nil {
		return domain.SuggestionResult{}, ErrMemoryNotFound
	}

	compact := buildSuggestionsInput(doc)
	prompt := buildSuggestionsPrompt(compact)

	content, err := s.suggestions.GenerateContent(ctx, s.cfg.SuggestionsModel, prompt)
	if err != nil {
		return domain.SuggestionResult{}, fmt.Errorf("suggestions provider call failed: %w", err)
	}

	shortMsg, suggestion := parseSuggestionsResponse(content)
	if suggestion == "" {
		return domain.SuggestionResult{}, ErrEmptySuggestion
	}

	return domain.SuggestionResult{
		UserID:     userID,
		ShortMsg:   shortMsg,
		Suggestion: suggestion,
	}, nil
}

// GetMemory returns the stored memory document for a user, or (nil, nil).
func (s *Service) GetMemory(ctx context.Context, userID string) (*domain.ProfileDocument, error) {
	return s.repo.GetProfile(ctx, userID)
}

// ListMemories returns every stored memory document.
func (s *Service) ListMemories(ctx context.Context) ([]domain.ProfileDocument, error) {
	return s.repo.ListProfiles(ctx)
}

// MemoryHistory returns up to limit versions for a user, newest first.
func (s *Service) MemoryHistory(ctx context.Context, userID string, limit int) ([]domain.ProfileDocument, error) {
	return s.repo.ProfileHistory(ctx, userID, limit)
}

// PatchInsights replaces the additional insights of an existing memory
// document. Returns false when no document exists.
func (s *Service) PatchInsights(ctx context.Context, userID string, insights map[string]any) (bool, error) {
	if normalized, ok := schema.NormalizeValue(insights).(map[string]any); ok {
		insights = normalized
	}

	unlock := s.locks.Lock(userID)
	updated, err := s.repo.PatchInsights(ctx, userID, insights)
	unlock()
	if err != nil {
		return false, err
	}
	if updated {
		s.publishEvent(ctx, rabbitmq.RoutingKeyMemoryInsightsUpdated, userID, "")
	}
	return updated, nil
}

// DeleteMemory removes a user's memory document. Returns false when none existed.
func (s *Service) DeleteMemory(ctx context.Context, userID string) (bool, error) {
	deleted, err := s.repo.DeleteProfile(ctx, userID)
	if err != nil {
		return false, err
	}
	if deleted {
		s.publishEvent(ctx, rabbitmq.RoutingKeyMemoryDeleted, userID, "")
	}
	return deleted, nil
}

func (s *Service) consumeLimit(ctx context.Context, scope, userID string, perMinute int) error {
	if s.rateLimiter == nil || perMinute <= 0 {
		return nil
	}
	count, retryAfter, err := s.rateLimiter.ConsumeRateLimit(ctx, scope, userID, perMinute, time.Minute)
	if err != nil {
		// A broken limiter must not block the product path.
		log.Printf("level=warn component=app msg=\"rate limiter unavailable; allowing request\" scope=%s user_id=%s err=%v", scope, userID, err)
		return nil
	}
	if count > perMinute {
		return &RateLimitError{Scope: scope, RetryAfterSeconds: retryAfter}
	}
	return nil
}

func (s *Service) publishEvent(ctx context.Context, routingKey, userID, docID string) {
	event := rabbitmq.MemoryEvent{
		UserID:     userID,
		DocumentID: docID,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.cfg.EventExchange, routingKey, event); err != nil {
		log.Printf("level=warn component=app msg=\"event publish failed\" routing_key=%s user_id=%s err=%v", routingKey, userID, err)
	}
}

// parseAnalysisResponse parses the profile-extraction provider output and
// enforces the required top-level keys.
func parseAnalysisResponse(responseText string) (map[string]any, error) {
	clean := stripJSONFence(responseText)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON response from analysis provider: %w", err)
	}

	for _, key := range []string{"FinanceProfile", "profile_summary"} {
		if _, ok := parsed[key]; !ok {
			return nil, fmt.Errorf("analysis response missing required key: %s", key)
		}
	}
	return parsed, nil
}

// parseAccountAnalysisResponse parses the account-analysis provider output and
// enforces the documented top-level keys.
func parseAccountAnalysisResponse(responseText string) (map[string]any, error) {
	clean := stripJSONFence(responseText)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON response from analysis provider: %w", err)
	}

	required := []string{
		"account_overview", "spending_analysis", "income_analysis",
		"debt_analysis", "risk_flags", "recommendations", "summary",
	}
	for _, key := range required {
		if _, ok := parsed[key]; !ok {
			return nil, fmt.Errorf("account analysis response missing required key: %s", key)
		}
	}
	return parsed, nil
}

// parseSuggestionsResponse extracts short_msg and suggestion from the
// suggestions provider output. Unparseable output degrades to wrapping the raw
// text as the suggestion.
func parseSuggestionsResponse(content string) (shortMsg, suggestion string) {
	clean := stripJSONFence(content)

	var parsed struct {
		ShortMsg   string `json:"short_msg"`
		Suggestion string `json:"suggestion"`
	}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		log.Printf("level=warn component=app msg=\"failed to parse suggestions JSON; returning raw text\" err=%v", err)
		return "Personalized advice ready", content
	}
	return parsed.ShortMsg, parsed.Suggestion
}

// buildSuggestionsInput composes the compact, non-null memory payload embedded
// in the suggestions prompt.
func buildSuggestionsInput(doc *domain.ProfileDocument) map[string]any {
	summary := ""
	if doc.ProfileSummary != nil {
		summary = *doc.ProfileSummary
	}
	payload := map[string]any{
		"finance_profile":     doc.FinanceProfile,
		"additional_insights": doc.AdditionalInsights,
		"profile_summary":     summary,
	}
	cleaned, _ := removeNulls(payload).(map[string]any)
	return cleaned
}

func failedResult(userID string, err error) domain.AnalysisResult {
	log.Printf("level=error component=app msg=\"memory build failed\" user_id=%s err=%v", userID, err)
	return domain.AnalysisResult{
		UserID: userID,
		Status: domain.AnalysisStatusFailed,
		Error:  err.Error(),
	}
}
