/**
 * @description
 * This file defines the core domain models for the finance memory service: the
 * stored memory document, the orchestration results for the analysis and
 * suggestions flows, and the API request/response DTOs.
 *
 * @notes
 * - ProfileDocument stores the finance profile and insights as open mappings.
 *   Schema enforcement happens upstream in the orchestration layer; the store
 *   persists whatever mapping it is given.
 * - Analysis outcomes are reported as a structured result (status success|failed)
 *   rather than an error, so the boundary layer can turn failures into responses
 *   without losing the user context.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Memory build statuses reported by the orchestration layer.
const (
	AnalysisStatusSuccess = "success"
	AnalysisStatusFailed  = "failed"
)

// ProfileDocument is the stored finance memory record, one per user.
// The document identity (ID) is allocated on first insert and is stable across
// every subsequent write.
type ProfileDocument struct {
	ID                 uuid.UUID      `json:"document_id"`
	UserID             string         `json:"user_id"`
	FinanceProfile     map[string]any `json:"finance_profile"`
	AdditionalInsights map[string]any `json:"additional_insights"`
	ProfileSummary     *string        `json:"profile_summary"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	Version            int            `json:"version"`
}

// AnalysisResult is the outcome of a memory build for one user.
type AnalysisResult struct {
	UserID             string         `json:"user_id"`
	DocumentID         string         `json:"document_id,omitempty"`
	FinanceProfile     map[string]any `json:"finance_profile,omitempty"`
	AdditionalInsights map[string]any `json:"additional_insights,omitempty"`
	ProfileSummary     string         `json:"profile_summary,omitempty"`
	Status             string         `json:"analysis_status"`
	Error              string         `json:"error,omitempty"`
}

// SuggestionResult is the parsed output of the suggestions flow.
type SuggestionResult struct {
	UserID     string `json:"user_id"`
	ShortMsg   string `json:"short_msg"`
	Suggestion string `json:"suggestion"`
}

// MemoryRequest is the DTO for the memory build and suggestions endpoints.
type MemoryRequest struct {
	UserID string `json:"user_id"`
}

// MemoryResponse is the DTO returned by the memory build endpoint.
type MemoryResponse struct {
	UserID       string `json:"user_id"`
	MemoryStatus string `json:"memory_status"`
	DocumentID   string `json:"document_id,omitempty"`
	Error        string `json:"error,omitempty"`
	Message      string `json:"message,omitempty"`
}

// PatchInsightsRequest is the DTO for the insights replace endpoint.
type PatchInsightsRequest struct {
	AdditionalInsights map[string]any `json:"additional_insights"`
}
