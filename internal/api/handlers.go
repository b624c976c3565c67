/**
 * @description
 * This file contains the HTTP handlers for the memory service's API endpoints.
 * Handlers parse incoming requests, call the orchestration service, and write
 * JSON responses. They are the bridge between the web layer and the business
 * logic; no domain decisions live here.
 *
 * @dependencies
 * - encoding/json, errors, log, net/http, strconv: Standard Go libraries.
 * - github.com/go-chi/chi/v5: URL parameter extraction.
 * - internal/app, internal/domain, internal/store: service logic, models, sentinel errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wo-aiml-user/finance-agent/internal/app"
	"github.com/wo-aiml-user/finance-agent/internal/domain"
	"github.com/wo-aiml-user/finance-agent/internal/store"
)

// MemoryHandlers holds the application service that handlers will use.
type MemoryHandlers struct {
	service *app.Service
}

// NewMemoryHandlers creates a new instance of MemoryHandlers.
func NewMemoryHandlers(service *app.Service) *MemoryHandlers {
	return &MemoryHandlers{service: service}
}

// BuildMemoryHandler handles requests to build structured memory for a user
// from their raw banking data.
func (h *MemoryHandlers) BuildMemoryHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.MemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	result, err := h.service.BuildMemory(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrRawProfileNotFound) {
			h.writeError(w, http.StatusNotFound, fmt.Sprintf("No financial profile found for user_id: %s", userID))
			return
		}
		var rateErr *app.RateLimitError
		if errors.As(err, &rateErr) {
			h.writeRateLimited(w, rateErr)
			return
		}
		log.Printf("level=error component=api endpoint=build_memory msg=\"unexpected failure\" user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Error occurred while building memory")
		return
	}

	if result.Status == domain.AnalysisStatusSuccess {
		h.writeJSON(w, http.StatusOK, domain.MemoryResponse{
			UserID:       userID,
			MemoryStatus: domain.AnalysisStatusSuccess,
			DocumentID:   result.DocumentID,
			Message:      fmt.Sprintf("Memory successfully built and stored for user %s", userID),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, domain.MemoryResponse{
		UserID:       userID,
		MemoryStatus: domain.AnalysisStatusFailed,
		Error:        result.Error,
		Message:      "Failed to build memory for user",
	})
}

// SuggestionsHandler handles requests for personalized suggestions from a
// user's stored memory.
func (h *MemoryHandlers) SuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.MemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	result, err := h.service.GenerateSuggestions(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMemoryNotFound):
			h.writeError(w, http.StatusNotFound, fmt.Sprintf("No finance memory found for user_id: %s", userID))
		case errors.Is(err, app.ErrEmptySuggestion):
			h.writeError(w, http.StatusInternalServerError, "LLM did not return suggestion text")
		default:
			var rateErr *app.RateLimitError
			if errors.As(err, &rateErr) {
				h.writeRateLimited(w, rateErr)
				return
			}
			log.Printf("level=error component=api endpoint=suggestions msg=\"generation failed\" user_id=%s err=%v", userID, err)
			h.writeError(w, http.StatusInternalServerError, "Error generating suggestions")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// AccountAnalysisHandler handles requests for a one-shot structured account
// analysis of a user's raw banking data. Nothing is persisted.
func (h *MemoryHandlers) AccountAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.MemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	analysis, err := h.service.AnalyzeAccounts(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrRawProfileNotFound) {
			h.writeError(w, http.StatusNotFound, fmt.Sprintf("No financial profile found for user_id: %s", userID))
			return
		}
		var rateErr *app.RateLimitError
		if errors.As(err, &rateErr) {
			h.writeRateLimited(w, rateErr)
			return
		}
		log.Printf("level=error component=api endpoint=account_analysis msg=\"analysis failed\" user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Error analyzing accounts")
		return
	}

	h.writeJSON(w, http.StatusOK, analysis)
}

// GetMemoryHandler returns the stored memory document for a user.
func (h *MemoryHandlers) GetMemoryHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	doc, err := h.service.GetMemory(r.Context(), userID)
	if err != nil {
		log.Printf("level=error component=api endpoint=get_memory msg=\"fetch failed\" user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Error fetching memory")
		return
	}
	if doc == nil {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("No finance memory found for user_id: %s", userID))
		return
	}

	h.writeJSON(w, http.StatusOK, doc)
}

// ListMemoriesHandler returns every stored memory document.
func (h *MemoryHandlers) ListMemoriesHandler(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.ListMemories(r.Context())
	if err != nil {
		log.Printf("level=error component=api endpoint=list_memories msg=\"list failed\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Error listing memories")
		return
	}
	if docs == nil {
		docs = []domain.ProfileDocument{}
	}

	h.writeJSON(w, http.StatusOK, docs)
}

// MemoryHistoryHandler returns stored versions for a user, newest first.
func (h *MemoryHandlers) MemoryHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	docs, err := h.service.MemoryHistory(r.Context(), userID, limit)
	if err != nil {
		log.Printf("level=error component=api endpoint=memory_history msg=\"fetch failed\" user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Error fetching memory history")
		return
	}
	if docs == nil {
		docs = []domain.ProfileDocument{}
	}

	h.writeJSON(w, http.StatusOK, docs)
}

// PatchInsightsHandler replaces the additional insights of a stored memory document.
func (h *MemoryHandlers) PatchInsightsHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req domain.PatchInsightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if req.AdditionalInsights == nil {
		h.writeError(w, http.StatusBadRequest, "additional_insights is required")
		return
	}

	updated, err := h.service.PatchInsights(r.Context(), userID, req.AdditionalInsights)
	if err != nil {
		log.Printf("level=error component=api endpoint=patch_insights msg=\"update failed\" user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Error updating insights")
		return
	}
	if !updated {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("No finance memory found for user_id: %s", userID))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "updated": true})
}

// DeleteMemoryHandler removes a user's memory document.
func (h *MemoryHandlers) DeleteMemoryHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	deleted, err := h.service.DeleteMemory(r.Context(), userID)
	if err != nil {
		log.Printf("level=error component=api endpoint=delete_memory msg=\"delete failed\" user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Error deleting memory")
		return
	}
	if !deleted {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("No finance memory found for user_id: %s", userID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeJSON is a helper for writing JSON responses.
func (h *MemoryHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *MemoryHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *MemoryHandlers) writeRateLimited(w http.ResponseWriter, rateErr *app.RateLimitError) {
	w.Header().Set("Retry-After", strconv.Itoa(rateErr.RetryAfterSeconds))
	h.writeError(w, http.StatusTooManyRequests, "Too many requests. Please wait and try again.")
}
