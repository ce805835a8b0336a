// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newTestClient returns a client pointed at a httptest server with the rate
// limiter effectively disabled so polling-heavy tests run fast.
func newTestClient(srv *httptest.Server) *Client {
	return NewClientWithConfig(&ClientConfig{
		BaseURL:           srv.URL,
		Timeout:           5 * time.Second,
		UserID:            "tester",
		RequestsPerSecond: 1000,
	})
}

// =============================================================================
// STATUS TESTS
// =============================================================================

func TestCheckRunning_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			t.Errorf("path = %q, want /status", r.URL.Path)
		}
		json.NewEncoder(w).Encode(StatusResponse{Status: "ok"})
	}))
	defer srv.Close()

	client := newTestClient(srv)
	if err := client.CheckRunning(context.Background()); err != nil {
		t.Fatalf("CheckRunning() error = %v, want nil", err)
	}
}

func TestCheckRunning_NotRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed server simulates a backend that isn't listening

	client := newTestClient(srv)
	err := client.CheckRunning(context.Background())
	if !IsNotRunning(err) {
		t.Errorf("CheckRunning() error = %v, want not-running", err)
	}
}

func TestDoJSON_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(APIError{Error: "backend exploded"})
	}))
	defer srv.Close()

	client := newTestClient(srv)
	err := client.CheckRunning(context.Background())
	if err == nil {
		t.Fatal("CheckRunning() error = nil, want error")
	}
	if err.Error() != "backend exploded" {
		t.Errorf("error = %q, want backend's envelope message", err.Error())
	}
}

func TestDoJSON_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := newTestClient(srv)
	err := client.DeletePersonality(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Errorf("DeletePersonality() error = %v, want not-found", err)
	}
}

// =============================================================================
// PERSONALITY TESTS
// =============================================================================

func TestListPersonalities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/personalities/tester" {
			t.Errorf("path = %q, want /personalities/tester", r.URL.Path)
		}
		json.NewEncoder(w).Encode(ListPersonalitiesResponse{
			Personalities: []Personality{
				{ID: "p1", Name: "Mentor", IsActive: true},
				{ID: "p2", Name: "Critic"},
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv)
	got, err := client.ListPersonalities(context.Background())
	if err != nil {
		t.Fatalf("ListPersonalities() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if !got[0].IsActive || got[0].Name != "Mentor" {
		t.Errorf("first personality = %+v, want active Mentor", got[0])
	}
}

func TestSwitchPersonality_SendsID(t *testing.T) {
	var body SwitchPersonalityRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(Ack{Success: true})
	}))
	defer srv.Close()

	client := newTestClient(srv)
	if err := client.SwitchPersonality(context.Background(), "p2"); err != nil {
		t.Fatalf("SwitchPersonality() error = %v", err)
	}
	if body.PersonalityID != "p2" {
		t.Errorf("sent personality_id = %q, want p2", body.PersonalityID)
	}
}

// =============================================================================
// ANALYZE TESTS
// =============================================================================

func TestAnalyze_FillsUserID(t *testing.T) {
	var body AnalyzeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(AnalyzeResponse{Answer: "42"})
	}))
	defer srv.Close()

	client := newTestClient(srv)
	resp, err := client.Analyze(context.Background(), AnalyzeRequest{
		OCRText:  "some screen text",
		Question: "what is this?",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if resp.Answer != "42" {
		t.Errorf("Answer = %q, want 42", resp.Answer)
	}
	if body.UserID != "tester" {
		t.Errorf("user_id = %q, want tester (filled from config)", body.UserID)
	}
}

// =============================================================================
// UPDATE TESTS
// =============================================================================

func TestDownloadProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(DownloadProgress{
			Status:          DownloadStatusDownloading,
			BytesDownloaded: 512,
			TotalBytes:      1024,
			Percent:         50,
		})
	}))
	defer srv.Close()

	client := newTestClient(srv)
	progress, err := client.DownloadProgress(context.Background())
	if err != nil {
		t.Fatalf("DownloadProgress() error = %v", err)
	}
	if progress.Status != DownloadStatusDownloading {
		t.Errorf("Status = %q, want downloading", progress.Status)
	}
	if progress.Percent != 50 {
		t.Errorf("Percent = %v, want 50", progress.Percent)
	}
}

// =============================================================================
// HUB TESTS
// =============================================================================

func TestSearchModels_EscapesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "llama 7b" {
			t.Errorf("q = %q, want 'llama 7b'", got)
		}
		json.NewEncoder(w).Encode(SearchModelsResponse{
			Models: []ModelInfo{{ID: "org/llama-7b", Downloads: 9000}},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv)
	models, err := client.SearchModels(context.Background(), "llama 7b")
	if err != nil {
		t.Fatalf("SearchModels() error = %v", err)
	}
	if len(models) != 1 || models[0].ID != "org/llama-7b" {
		t.Errorf("models = %+v, want single org/llama-7b", models)
	}
}
