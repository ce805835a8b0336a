// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"net/http"
)

// =============================================================================
// UPDATE LIFECYCLE
// =============================================================================
//
// The backend owns the entire download; the client only mirrors progress.
// Pause/resume/cancel are fire-and-forget POSTs reconciled by the next
// /download_progress poll.

// CheckUpdates asks the backend whether an application update is available.
func (c *Client) CheckUpdates(ctx context.Context) (*UpdateInfo, error) {
	var info UpdateInfo
	if err := c.doJSON(ctx, http.MethodGet, "/check_updates", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// DownloadUpdate starts a server-side update download.
func (c *Client) DownloadUpdate(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/download_update", nil, nil)
}

// PauseUpdateDownload pauses the in-flight update download.
func (c *Client) PauseUpdateDownload(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/pause_update_download", nil, nil)
}

// ResumeUpdateDownload resumes a paused update download.
func (c *Client) ResumeUpdateDownload(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/resume_update_download", nil, nil)
}

// CancelUpdateDownload cancels the update download and discards partial data.
func (c *Client) CancelUpdateDownload(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/cancel_update_download", nil, nil)
}

// DownloadProgress retrieves the current server-side download state.
func (c *Client) DownloadProgress(ctx context.Context) (*DownloadProgress, error) {
	var progress DownloadProgress
	if err := c.doJSON(ctx, http.MethodGet, "/download_progress", nil, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

// InstallUpdate asks the backend to install a completed download.
func (c *Client) InstallUpdate(ctx context.Context) (*InstallResponse, error) {
	var resp InstallResponse
	if err := c.doJSON(ctx, http.MethodPost, "/install_update", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// =============================================================================
// BACKUPS
// =============================================================================

// ListBackups retrieves the server-side application backups.
func (c *Client) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	var resp ListBackupsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/app_backups", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Backups, nil
}

// RestoreBackup restores the application from a server-side backup.
func (c *Client) RestoreBackup(ctx context.Context, backupID string) error {
	return c.doJSON(ctx, http.MethodPost, "/restore_backup", map[string]string{"backup_id": backupID}, nil)
}

// DeleteBackup removes a server-side backup.
func (c *Client) DeleteBackup(ctx context.Context, backupID string) error {
	return c.doJSON(ctx, http.MethodPost, "/delete_backup", map[string]string{"backup_id": backupID}, nil)
}
