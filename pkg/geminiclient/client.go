/**
 * @description
 * This package provides a client for the Google Generative Language API
 * (Gemini). The suggestions flow uses it to turn a stored finance memory into
 * short personalized advice.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, net/http, time: Standard Go libraries.
 */
package geminiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a client for the Gemini API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new Gemini API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// GenerateContentRequest is the payload for the generateContent endpoint.
type GenerateContentRequest struct {
	Contents []Content `json:"contents"`
}

// Content is one conversational turn in a generateContent request.
type Content struct {
	Parts []Part `json:"parts"`
}

// Part is one piece of content, plain text here.
type Part struct {
	Text string `json:"text"`
}

// GenerateContentResponse is the expected response from the generateContent endpoint.
type GenerateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []Part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// ErrorResponse represents an error returned by the Gemini API.
type ErrorResponse struct {
	ErrorDetail struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (e *ErrorResponse) Error() string {
	if e.ErrorDetail.Message != "" {
		return fmt.Sprintf("gemini api error: %s - %s", e.ErrorDetail.Status, e.ErrorDetail.Message)
	}
	return "unknown gemini api error"
}

// GenerateContent sends a single-turn prompt to the given model and returns the
// text of the first candidate.
func (c *Client) GenerateContent(ctx context.Context, model, prompt string) (string, error) {
	payload := GenerateContentRequest{
		Contents: []Content{{Parts: []Part{{Text: prompt}}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate content request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.BaseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call gemini api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr ErrorResponse
		if jsonErr := json.Unmarshal(respBody, &apiErr); jsonErr == nil && apiErr.ErrorDetail.Message != "" {
			return "", &apiErr
		}
		return "", fmt.Errorf("gemini api returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var generated GenerateContentResponse
	if err := json.Unmarshal(respBody, &generated); err != nil {
		return "", fmt.Errorf("failed to parse gemini response: %w", err)
	}
	if len(generated.Candidates) == 0 || len(generated.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response contained no candidates")
	}

	return generated.Candidates[0].Content.Parts[0].Text, nil
}
