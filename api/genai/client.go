package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/local/studyai/api/models"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.0-flash"

	previewLen = 100
)

// Generator turns a GenerationRequest into raw text
type Generator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (string, error)
}

// SafetySetting is one harm category threshold sent with every request
type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// DefaultSafetySettings block medium and above in every category
var DefaultSafetySettings = []SafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client calls the Gemini generateContent endpoint. It never retries.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	safety     []SafetySetting
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewClient fails with a ConfigurationError when no API key is configured
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, &ConfigurationError{Missing: "GEMINI_API_KEY"}
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:     opts.APIKey,
		model:      model,
		baseURL:    baseURL,
		safety:     DefaultSafetySettings,
		httpClient: &http.Client{Timeout: timeout},
		tracer:     otel.Tracer("github.com/local/studyai/api/genai"),
	}, nil
}

func (c *Client) Model() string { return c.model }

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	TopP             float64 `json:"topP"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []SafetySetting  `json:"safetySettings"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends one request and returns the first candidate's text.
// In JSON mode any markdown code fence around the payload is removed.
func (c *Client) Generate(ctx context.Context, req models.GenerationRequest) (string, error) {
	if c == nil || c.apiKey == "" {
		return "", &ConfigurationError{Missing: "GEMINI_API_KEY"}
	}
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid generation request: %w", err)
	}

	ctx, span := c.tracer.Start(ctx, "genai.generate", trace.WithAttributes(
		attribute.String("genai.model", c.model),
		attribute.Bool("genai.json_mode", req.JSONMode),
		attribute.Float64("genai.temperature", req.Temperature),
		attribute.Int("genai.max_tokens", req.MaxTokens),
	))
	defer span.End()

	text, status, err := c.do(ctx, req)
	span.SetAttributes(attribute.Int("http.status_code", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error().Err(err).Int("status", status).Bool("json_mode", req.JSONMode).Msg("Generation request failed")
		return "", err
	}

	if req.JSONMode {
		text = StripCodeFence(text)
	}

	log.Debug().
		Str("model", c.model).
		Bool("json_mode", req.JSONMode).
		Int("length", len(text)).
		Str("preview", Preview(text, previewLen)).
		Msg("Generation response received")

	return text, nil
}

func (c *Client) do(ctx context.Context, req models.GenerationRequest) (string, int, error) {
	mime := "text/plain"
	if req.JSONMode {
		mime = "application/json"
	}
	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: req.Prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:      req.Temperature,
			MaxOutputTokens:  req.MaxTokens,
			TopP:             req.TopP,
			ResponseMimeType: mime,
		},
		SafetySettings: c.safety,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", 0, &ServiceError{Message: "failed to send request", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, &ServiceError{Status: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(respBody))
		var apiErr errorResponse
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return "", resp.StatusCode, &ServiceError{Status: resp.StatusCode, Message: msg}
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", resp.StatusCode, &ServiceError{Status: resp.StatusCode, Message: "failed to parse response", Err: err}
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", resp.StatusCode, &ServiceError{Status: resp.StatusCode, Message: "no candidates in response"}
	}

	return result.Candidates[0].Content.Parts[0].Text, resp.StatusCode, nil
}

// StripCodeFence removes a ```json ... ``` or ``` ... ``` wrapper
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Preview returns at most n runes of s for log lines
func Preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
