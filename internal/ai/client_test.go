package ai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"puntoventa/internal/ai"
)

func TestChat_ReturnsFirstChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing auth header, got %q", got)
		}
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["model"] != "test-model" {
			t.Errorf("model not forwarded: %v", req["model"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "hello there"}},
			},
		})
	}))
	defer srv.Close()

	c := ai.NewClient("test-key", "test-model", srv.URL)
	out, err := c.Chat(context.Background(), []ai.Message{{Role: "user", Content: "hi"}}, 0.7, 64)
	if err != nil {
		t.Fatal(err)
	}
	if out != "hello there" {
		t.Fatalf("want completion text, got %q", out)
	}
}

func TestChat_SurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid api key"},
		})
	}))
	defer srv.Close()

	c := ai.NewClient("bad-key", "test-model", srv.URL)
	_, err := c.Chat(context.Background(), []ai.Message{{Role: "user", Content: "hi"}}, 0.7, 64)
	if err == nil || !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("want api error surfaced, got %v", err)
	}
}

func TestEnabled(t *testing.T) {
	if ai.NewClient("", "m", "http://x").Enabled() {
		t.Fatal("client without key should be disabled")
	}
	if !ai.NewClient("k", "m", "http://x").Enabled() {
		t.Fatal("client with key should be enabled")
	}
}
