package qstash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPublishJSON(t *testing.T) {
	t.Parallel()

	var (
		gotPath  string
		gotDedup string
		gotBody  map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		gotPath = r.URL.Path
		gotDedup = r.Header.Get("Upstash-Deduplication-Id")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, `{"messageId":"msg_1"}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{URL: server.URL, Token: "tok"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	resp, err := client.PublishJSON(context.Background(), "https://example.com/hook", map[string]any{"k": "v"}, "dedup-1")
	if err != nil {
		t.Fatalf("PublishJSON() error = %v", err)
	}
	if resp.MessageID != "msg_1" {
		t.Fatalf("MessageID = %q", resp.MessageID)
	}
	if gotPath != "/v2/publish/https://example.com/hook" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotDedup != "dedup-1" || gotBody["k"] != "v" {
		t.Fatalf("unexpected request: dedup=%q body=%#v", gotDedup, gotBody)
	}
}

func TestPublishJSONHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{URL: server.URL, Token: "tok"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if _, err := client.PublishJSON(context.Background(), "dest", struct{}{}, ""); err == nil {
		t.Fatal("expected error for 429")
	}
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{Token: "tok"}); err == nil {
		t.Fatal("expected error for missing url")
	}
	if _, err := NewClient(Config{URL: "https://qstash.upstash.io"}); err == nil {
		t.Fatal("expected error for missing token")
	}
}
