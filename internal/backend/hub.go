// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"net/http"
	"net/url"
)

// =============================================================================
// MODEL HUB OPERATIONS
// =============================================================================

// SearchModels queries the model hub search endpoint.
func (c *Client) SearchModels(ctx context.Context, query string) ([]ModelInfo, error) {
	var resp SearchModelsResponse
	path := "/search_models?q=" + url.QueryEscape(query)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Models, nil
}

// DownloadModel asks the backend to download a model from the hub.
func (c *Client) DownloadModel(ctx context.Context, modelID string) error {
	return c.doJSON(ctx, http.MethodPost, "/download_model", map[string]string{"model_id": modelID}, nil)
}

// ModelStatus retrieves the state of a model download in flight.
func (c *Client) ModelStatus(ctx context.Context, modelID string) (*ModelStatus, error) {
	var status ModelStatus
	path := "/model_status?model_id=" + url.QueryEscape(modelID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListLocalModels retrieves fully downloaded models.
func (c *Client) ListLocalModels(ctx context.Context) ([]LocalModel, error) {
	var resp ListLocalModelsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/list_local_models", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Models, nil
}

// ListFailedDownloads retrieves partial downloads left behind by aborted
// model downloads, for the cleanup confirmation view.
func (c *Client) ListFailedDownloads(ctx context.Context) ([]FailedDownload, error) {
	var resp ListFailedDownloadsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/failed_downloads", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Failed, nil
}

// CleanupFailedDownload removes the partial files for a failed download.
func (c *Client) CleanupFailedDownload(ctx context.Context, modelID string) error {
	return c.doJSON(ctx, http.MethodPost, "/cleanup_download", map[string]string{"model_id": modelID}, nil)
}
