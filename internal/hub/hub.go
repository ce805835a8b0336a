// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package hub drives the model hub: searching the remote catalog, starting
// model downloads, polling their status, and cleaning up failed downloads.
package hub

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/suriai/ruma-tui/internal/backend"
)

// StatusPollInterval is how often an in-flight model download is polled.
const StatusPollInterval = time.Second

// client is the slice of the backend API the hub needs.
type client interface {
	SearchModels(ctx context.Context, query string) ([]backend.ModelInfo, error)
	DownloadModel(ctx context.Context, modelID string) error
	ModelStatus(ctx context.Context, modelID string) (*backend.ModelStatus, error)
	ListLocalModels(ctx context.Context) ([]backend.LocalModel, error)
	ListFailedDownloads(ctx context.Context) ([]backend.FailedDownload, error)
	CleanupFailedDownload(ctx context.Context, modelID string) error
}

// Hub caches catalog search results and tracks in-flight downloads.
// Mutations arrive from command goroutines running concurrently with the
// render loop (each poll tick runs on its own goroutine), so all cached
// state is mutex-guarded. Backend calls happen outside the lock.
type Hub struct {
	client client

	mu          sync.Mutex
	results     []backend.ModelInfo
	lastQuery   string
	local       []backend.LocalModel
	failed      []backend.FailedDownload
	downloading map[string]backend.ModelStatus // model id -> last status
}

// New creates a Hub backed by the given client.
func New(c client) *Hub {
	return &Hub{
		client:      c,
		downloading: make(map[string]backend.ModelStatus),
	}
}

// =============================================================================
// CACHE ACCESS
// =============================================================================

// Results returns the last search results.
func (h *Hub) Results() []backend.ModelInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.results
}

// LastQuery returns the query the current results belong to.
func (h *Hub) LastQuery() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastQuery
}

// Local returns the cached local model list.
func (h *Hub) Local() []backend.LocalModel {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.local
}

// Failed returns the cached failed-download list.
func (h *Hub) Failed() []backend.FailedDownload {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.failed
}

// DownloadStatus returns the last observed status for a model download.
func (h *Hub) DownloadStatus(modelID string) (backend.ModelStatus, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.downloading[modelID]
	return s, ok
}

// ActiveDownloads returns the ids of downloads still being polled.
func (h *Hub) ActiveDownloads() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.downloading))
	for id := range h.downloading {
		ids = append(ids, id)
	}
	return ids
}

// =============================================================================
// CATALOG
// =============================================================================

// Search queries the remote catalog and replaces the cached results.
// Blank queries clear the results instead of hitting the backend.
func (h *Hub) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		h.mu.Lock()
		h.results = nil
		h.lastQuery = ""
		h.mu.Unlock()
		return nil
	}

	models, err := h.client.SearchModels(ctx, query)
	if err != nil {
		return fmt.Errorf("model search failed: %w", err)
	}

	h.mu.Lock()
	h.results = models
	h.lastQuery = query
	h.mu.Unlock()
	return nil
}

// =============================================================================
// DOWNLOADS
// =============================================================================

// StartDownload asks the backend to download a model and registers it for
// status polling. The registration happens before the backend call, so a
// second start for the same model fails instead of racing the first.
func (h *Hub) StartDownload(ctx context.Context, modelID string) error {
	if modelID == "" {
		return fmt.Errorf("model id must not be empty")
	}

	h.mu.Lock()
	if _, inFlight := h.downloading[modelID]; inFlight {
		h.mu.Unlock()
		return fmt.Errorf("model %s is already downloading", modelID)
	}
	h.downloading[modelID] = backend.ModelStatus{ModelID: modelID, Status: "downloading"}
	h.mu.Unlock()

	if err := h.client.DownloadModel(ctx, modelID); err != nil {
		h.mu.Lock()
		delete(h.downloading, modelID)
		h.mu.Unlock()
		return fmt.Errorf("failed to start download: %w", err)
	}
	return nil
}

// PollDownload fetches the latest status for an in-flight download.
// Terminal states (complete, error) unregister the download; a failure also
// refreshes the failed-download list so the cleanup view stays current.
func (h *Hub) PollDownload(ctx context.Context, modelID string) (*backend.ModelStatus, error) {
	h.mu.Lock()
	_, inFlight := h.downloading[modelID]
	h.mu.Unlock()
	if !inFlight {
		return nil, nil // already settled, stale poll
	}

	status, err := h.client.ModelStatus(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to poll model status: %w", err)
	}

	h.mu.Lock()
	if _, inFlight := h.downloading[modelID]; !inFlight {
		// A concurrent poll settled this download while we were fetching.
		h.mu.Unlock()
		return nil, nil
	}
	h.downloading[modelID] = *status
	switch status.Status {
	case "complete", "error":
		delete(h.downloading, modelID)
	}
	h.mu.Unlock()

	switch status.Status {
	case "complete":
		_ = h.RefreshLocal(ctx)
	case "error":
		_ = h.RefreshFailed(ctx)
	}

	return status, nil
}

// =============================================================================
// LOCAL MODELS AND CLEANUP
// =============================================================================

// RefreshLocal replaces the cached local model list.
func (h *Hub) RefreshLocal(ctx context.Context) error {
	models, err := h.client.ListLocalModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list local models: %w", err)
	}
	h.mu.Lock()
	h.local = models
	h.mu.Unlock()
	return nil
}

// RefreshFailed replaces the cached failed-download list.
func (h *Hub) RefreshFailed(ctx context.Context) error {
	failed, err := h.client.ListFailedDownloads(ctx)
	if err != nil {
		return fmt.Errorf("failed to list failed downloads: %w", err)
	}
	h.mu.Lock()
	h.failed = failed
	h.mu.Unlock()
	return nil
}

// Cleanup removes a failed download's partial files and refreshes the list.
func (h *Hub) Cleanup(ctx context.Context, modelID string) error {
	if err := h.client.CleanupFailedDownload(ctx, modelID); err != nil {
		return fmt.Errorf("failed to clean up download: %w", err)
	}
	return h.RefreshFailed(ctx)
}
