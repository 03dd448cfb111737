package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"aide/config"
	"aide/model"
)

// geminiAPIVersions is the ordered list of API path versions to try. Google
// has renamed models and moved them between v1beta and v1 more than once, so
// the adapter walks a version×model matrix instead of trusting one endpoint.
var geminiAPIVersions = []string{"v1beta", "v1"}

// geminiModelNames maps catalog version ids to the names the API accepts.
var geminiModelNames = map[string]string{
	"gemini-2-flash":              "gemini-2.0-flash",
	"gemini-2-pro":                "gemini-2.0-pro",
	"gemini-2-flash-experimental": "gemini-2.0-flash-thinking-exp",
	"gemma-2":                     "gemma-2-27b-it",
}

const (
	geminiMaxAttempts    = 3
	geminiRetryBaseDelay = 2 * time.Second
)

// GeminiProvider implements the Provider interface against the Generative
// Language REST API. There is no official Go SDK in use here; requests are
// built by hand because the endpoint shape (API version and model name in
// the path, key in the query string) is exactly what the fallback matrix
// needs to vary.
type GeminiProvider struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	retryDelay time.Duration
}

// NewGeminiProvider creates a new Gemini provider instance.
func NewGeminiProvider(baseURL, apiKey string) (*GeminiProvider, error) {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	return &GeminiProvider{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		baseURL:    baseURL,
		apiKey:     apiKey,
		retryDelay: geminiRetryBaseDelay,
	}, nil
}

type geminiRequest struct {
	Contents         []geminiContent       `json:"contents"`
	GenerationConfig *geminiGenerationConf `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConf struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *geminiError `json:"error"`
}

type geminiError struct {
	Message string `json:"message"`
}

// candidateModels returns the ordered model names to try for a catalog
// version id: the mapped name first, then gemini-pro as the stable fallback.
func candidateModels(versionID string) []string {
	mapped, ok := geminiModelNames[versionID]
	if !ok || mapped == "" {
		mapped = versionID
	}
	if mapped == "gemini-pro" {
		return []string{"gemini-pro"}
	}
	return []string{mapped, "gemini-pro"}
}

// Chat implements Provider.Chat. It flattens instructions, knowledge base,
// recent history, and the new message into a single prompt (the legacy
// text-completion shape this API takes), then walks the API-version × model
// fallback matrix. Each pair gets up to three attempts with linearly growing
// delay, but only when the failure is the service-unavailable class; any
// other error abandons the pair immediately. When every pair is exhausted
// the last observed error is surfaced.
func (p *GeminiProvider) Chat(ctx context.Context, req model.ChatRequest) (string, error) {
	prompt := BuildFlattenedPrompt(req)

	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &geminiGenerationConf{
			MaxOutputTokens: req.Options.MaxTokens,
			Temperature:     req.Options.Temperature,
		},
	}

	var lastErr error
	for _, apiVersion := range geminiAPIVersions {
		for _, modelName := range candidateModels(req.Options.ModelVersion) {
			text, err := p.generateWithRetry(ctx, apiVersion, modelName, body)
			if err == nil {
				return text, nil
			}
			lastErr = err
			if config.Debug && config.DebugLog != nil {
				config.DebugLog.Printf("[Gemini] %s/%s failed: %v", apiVersion, modelName, err)
			}
		}
	}

	return "", fmt.Errorf("all Gemini endpoints failed: %w", lastErr)
}

// generateWithRetry issues the call for one endpoint/model pair, retrying
// only on HTTP 503 with delay attempt×retryDelay between attempts.
func (p *GeminiProvider) generateWithRetry(ctx context.Context, apiVersion, modelName string, body geminiRequest) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= geminiMaxAttempts; attempt++ {
		text, status, err := p.generate(ctx, apiVersion, modelName, body)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if status != http.StatusServiceUnavailable {
			return "", err
		}

		if attempt < geminiMaxAttempts {
			select {
			case <-time.After(time.Duration(attempt) * p.retryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}

	return "", lastErr
}

// generate performs a single generateContent call. The returned status is 0
// for transport-level failures.
func (p *GeminiProvider) generate(ctx context.Context, apiVersion, modelName string, body geminiRequest) (string, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode Gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent?key=%s",
		p.baseURL, apiVersion, modelName, p.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", 0, fmt.Errorf("failed to build Gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// Redundant with the query key, but accepted by the API and kept so
	// proxies that strip query strings still authenticate.
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", 0, fmt.Errorf("Gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read Gemini response: %w", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", resp.StatusCode, fmt.Errorf("Gemini API error: %d", resp.StatusCode)
		}
		return "", resp.StatusCode, fmt.Errorf("failed to decode Gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		reason := "Unknown error"
		if parsed.Error != nil && parsed.Error.Message != "" {
			reason = parsed.Error.Message
		}
		return "", resp.StatusCode, fmt.Errorf("Gemini API error: %d - %s", resp.StatusCode, reason)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", resp.StatusCode, fmt.Errorf("Gemini returned no candidates")
	}

	return parsed.Candidates[0].Content.Parts[0].Text, resp.StatusCode, nil
}

// Ping implements Provider.Ping with a trivial one-word generate call, since
// the API has no cheap authenticated health endpoint.
func (p *GeminiProvider) Ping(ctx context.Context) error {
	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: "Hello"}}}},
	}

	_, _, err := p.generate(ctx, "v1beta", "gemini-pro", body)
	if err != nil {
		return fmt.Errorf("Gemini ping failed: %w", err)
	}
	return nil
}
