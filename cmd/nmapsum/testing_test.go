package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/germanamz/nmapsum/pkg/config"
	"github.com/germanamz/nmapsum/pkg/credentials"
	"github.com/germanamz/nmapsum/pkg/logger"
	"github.com/germanamz/nmapsum/pkg/nmapdir"
	"github.com/germanamz/nmapsum/pkg/providers/gemini"
	"github.com/germanamz/nmapsum/pkg/summarizer"
)

// fakeGemini is a generateContent backend that answers graph prompts with a
// fenced DOT block and everything else with "summary ok".
type fakeGemini struct {
	*httptest.Server

	status int
	mu     sync.Mutex
	keys   []string
}

func newFakeGemini(t *testing.T, status int) *fakeGemini {
	t.Helper()
	f := &fakeGemini{status: status}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeGemini) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.keys = append(f.keys, r.Header.Get("x-goog-api-key"))
	f.mu.Unlock()

	if f.status != http.StatusOK {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
		return
	}

	var req struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Contents) == 0 || len(req.Contents[0].Parts) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	text := "summary ok"
	if strings.Contains(req.Contents[0].Parts[0].Text, "graphviz (DOT language)") {
		text = "```dot\ndigraph{A}\n```"
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []any{
			map[string]any{
				"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}},
				"finishReason": "STOP",
			},
		},
		"usageMetadata": map[string]any{
			"promptTokenCount":     10,
			"candidatesTokenCount": 5,
			"totalTokenCount":      15,
		},
	})
}

func (f *fakeGemini) seenKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

func newTestDeps(t *testing.T, srv *fakeGemini, creds credentials.Provider) *deps {
	t.Helper()
	client := gemini.NewClient(srv.URL, gemini.DefaultModel, srv.Client())
	log := logger.Discard()
	return &deps{
		cfg:    config.Default(),
		dir:    nmapdir.New(t.TempDir()),
		creds:  creds,
		client: client,
		sum:    summarizer.New(client, log),
		log:    log,
	}
}
