package genai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/local/studyai/api/models"
)

func geminiReply(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	})
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{APIKey: "test-key", Model: "gemini-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Options{APIKey: "  "})
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if !IsConfiguration(err) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
}

func TestGenerateWireFormat(t *testing.T) {
	var got map[string]any
	var path, key string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.Header.Get("x-goog-api-key")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		io.WriteString(w, geminiReply(`{"ok":true}`))
	})

	_, err := c.Generate(context.Background(), models.GenerationRequest{
		Prompt: "hello", JSONMode: true, Temperature: 0.5, MaxTokens: 256, TopP: 0.9,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if path != "/v1beta/models/gemini-test:generateContent" {
		t.Errorf("unexpected path %q", path)
	}
	if key != "test-key" {
		t.Errorf("api key header not sent, got %q", key)
	}
	cfg, _ := got["generationConfig"].(map[string]any)
	if cfg["responseMimeType"] != "application/json" {
		t.Errorf("expected json mime type, got %v", cfg["responseMimeType"])
	}
	if cfg["temperature"] != 0.5 || cfg["topP"] != 0.9 || cfg["maxOutputTokens"] != float64(256) {
		t.Errorf("generation config not forwarded: %v", cfg)
	}
	safety, _ := got["safetySettings"].([]any)
	if len(safety) != len(DefaultSafetySettings) {
		t.Errorf("expected %d safety settings, got %d", len(DefaultSafetySettings), len(safety))
	}
	contents, _ := got["contents"].([]any)
	if len(contents) != 1 {
		t.Fatalf("expected one content entry, got %d", len(contents))
	}
}

func TestGenerateTextModeMimeType(t *testing.T) {
	var mime string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body generateRequest
		json.NewDecoder(r.Body).Decode(&body)
		mime = body.GenerationConfig.ResponseMimeType
		io.WriteString(w, geminiReply("```json\nnot stripped in text mode\n```"))
	})

	text, err := c.Generate(context.Background(), models.GenerationRequest{
		Prompt: "hi", Temperature: 0.7, MaxTokens: 1000, TopP: 0.95,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if mime != "text/plain" {
		t.Errorf("expected text/plain, got %q", mime)
	}
	if !strings.HasPrefix(text, "```json") {
		t.Errorf("text mode must not strip fences, got %q", text)
	}
}

func TestGenerateStripsFencesInJSONMode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, geminiReply("```json\n{\"title\":\"x\"}\n```"))
	})
	text, err := c.Generate(context.Background(), models.GenerationRequest{
		Prompt: "hi", JSONMode: true, Temperature: 0.5, MaxTokens: 100, TopP: 1,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != `{"title":"x"}` {
		t.Errorf("fence not stripped: %q", text)
	}
}

func TestGenerateServiceError(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"code":429,"message":"quota exhausted"}}`)
	})

	_, err := c.Generate(context.Background(), models.GenerationRequest{
		Prompt: "hi", Temperature: 0.5, MaxTokens: 10, TopP: 1,
	})
	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if se.Status != http.StatusTooManyRequests || se.Message != "quota exhausted" {
		t.Errorf("unexpected service error %+v", se)
	}
	if calls != 1 {
		t.Errorf("client must not retry, got %d calls", calls)
	}
}

func TestGenerateNoCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"candidates":[]}`)
	})
	_, err := c.Generate(context.Background(), models.GenerationRequest{
		Prompt: "hi", Temperature: 0.5, MaxTokens: 10, TopP: 1,
	})
	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
}

func TestGenerateNilClientIsConfigurationError(t *testing.T) {
	var c *Client
	_, err := c.Generate(context.Background(), models.GenerationRequest{Prompt: "x", MaxTokens: 1})
	if !IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding space", "  \n```json{\"a\":1}```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.in); got != tt.want {
				t.Errorf("StripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("a", 150)
	if got := Preview(long, 100); len(got) != 103 {
		t.Errorf("expected 100 chars plus ellipsis, got %d", len(got))
	}
	if got := Preview("short", 100); got != "short" {
		t.Errorf("short text changed: %q", got)
	}
}
