// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for communicating with the Ruma backend API.
package backend

import "time"

// =============================================================================
// STATUS
// =============================================================================

// StatusResponse is the response from GET /status.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  int64  `json:"uptime_seconds,omitempty"`
}

// =============================================================================
// PERSONALITIES
// =============================================================================

// Personality is an AI personality profile stored server-side.
// Local copies are replaced wholesale on every reload; the backend is the
// single mutation authority.
type Personality struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Traits             []string  `json:"traits"`
	CommunicationStyle string    `json:"communication_style"`
	ExpertiseDomains   []string  `json:"expertise_domains"`
	AvatarIcon         string    `json:"avatar_icon"`
	ColorTheme         string    `json:"color_theme"`
	IsActive           bool      `json:"is_active"`
	UsageCount         int       `json:"usage_count"`
	CreatedAt          time.Time `json:"created_at"`
}

// ListPersonalitiesResponse is the response from GET /personalities/{userId}.
type ListPersonalitiesResponse struct {
	Personalities []Personality `json:"personalities"`
}

// CreatePersonalityRequest is the request body for POST /personalities.
type CreatePersonalityRequest struct {
	UserID             string   `json:"user_id"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Traits             []string `json:"traits"`
	CommunicationStyle string   `json:"communication_style"`
	ExpertiseDomains   []string `json:"expertise_domains"`
	AvatarIcon         string   `json:"avatar_icon"`
	ColorTheme         string   `json:"color_theme"`
}

// SwitchPersonalityRequest is the request body for POST /personalities/{userId}/switch.
type SwitchPersonalityRequest struct {
	PersonalityID string `json:"personality_id"`
}

// PersonalityStats reports per-user personality usage from the backend.
type PersonalityStats struct {
	TotalPersonalities int            `json:"total_personalities"`
	ActivePersonality  string         `json:"active_personality"`
	TotalInteractions  int            `json:"total_interactions"`
	UsageByPersonality map[string]int `json:"usage_by_personality"`
}

// =============================================================================
// ANALYZE
// =============================================================================

// AnalyzeRequest is the request body for POST /analyze_image.
// OCRText carries extracted text; ImageBase64 is optional raw image data.
type AnalyzeRequest struct {
	OCRText     string `json:"ocr_text"`
	ImageBase64 string `json:"image_base64,omitempty"`
	Question    string `json:"question"`
	UserID      string `json:"user_id"`
}

// AnalyzeResponse is the backend's answer to an analyze request.
type AnalyzeResponse struct {
	Answer      string `json:"answer"`
	Personality string `json:"personality,omitempty"`
	Model       string `json:"model,omitempty"`
}

// =============================================================================
// UPDATES
// =============================================================================

// UpdateInfo describes an available application update.
type UpdateInfo struct {
	Available      bool   `json:"update_available"`
	CurrentVersion string `json:"current_version"`
	LatestVersion  string `json:"latest_version"`
	DownloadURL    string `json:"download_url,omitempty"`
	DownloadSize   int64  `json:"download_size,omitempty"`
	ReleaseNotes   string `json:"release_notes,omitempty"`
}

// Download status strings reported by /download_progress. The client mirrors
// these verbatim; it never computes progress itself.
const (
	DownloadStatusNone        = "none"
	DownloadStatusDownloading = "downloading"
	DownloadStatusPaused      = "paused"
	DownloadStatusComplete    = "complete"
	DownloadStatusError       = "error"
)

// DownloadProgress is the response from GET /download_progress. Each poll
// supersedes the previous one entirely.
type DownloadProgress struct {
	Status          string  `json:"status"`
	BytesDownloaded int64   `json:"bytes_downloaded"`
	TotalBytes      int64   `json:"total_bytes"`
	Percent         float64 `json:"percent"`
	Error           string  `json:"error,omitempty"`
}

// InstallResponse is the response from POST /install_update.
type InstallResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// =============================================================================
// BACKUPS
// =============================================================================

// BackupInfo describes a server-side application backup.
type BackupInfo struct {
	ID        string    `json:"id"`
	Version   string    `json:"version"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// ListBackupsResponse is the response from GET /app_backups.
type ListBackupsResponse struct {
	Backups []BackupInfo `json:"backups"`
}

// =============================================================================
// MODEL HUB
// =============================================================================

// ModelInfo is a search result from the model hub.
type ModelInfo struct {
	ID        string   `json:"id"`
	Author    string   `json:"author"`
	Tags      []string `json:"tags"`
	Downloads int64    `json:"downloads"`
	Likes     int64    `json:"likes"`
	SizeBytes int64    `json:"size_bytes,omitempty"`
}

// SearchModelsResponse is the response from GET /search_models.
type SearchModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// ModelStatus reports the state of a model download in flight.
type ModelStatus struct {
	ModelID         string  `json:"model_id"`
	Status          string  `json:"status"` // "downloading", "complete", "error", "none"
	Percent         float64 `json:"percent"`
	BytesDownloaded int64   `json:"bytes_downloaded"`
	TotalBytes      int64   `json:"total_bytes"`
	Error           string  `json:"error,omitempty"`
}

// LocalModel describes a fully downloaded model on disk.
type LocalModel struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}

// ListLocalModelsResponse is the response from GET /list_local_models.
type ListLocalModelsResponse struct {
	Models []LocalModel `json:"models"`
}

// FailedDownload describes partial files left behind by an aborted model
// download. Read-only; used by the cleanup confirmation view.
type FailedDownload struct {
	ModelID      string   `json:"model_id"`
	PartialFiles []string `json:"partial_files"`
	TotalSize    int64    `json:"total_size"`
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

// ListFailedDownloadsResponse is the response from GET /failed_downloads.
type ListFailedDownloadsResponse struct {
	Failed []FailedDownload `json:"failed_downloads"`
}

// =============================================================================
// UI STATUS
// =============================================================================

// UIStatusRequest notifies the backend of UI presence so it can throttle
// background work while nobody is looking.
type UIStatusRequest struct {
	Visible bool   `json:"visible"`
	State   string `json:"state"` // "active", "idle", "hidden"
	UserID  string `json:"user_id,omitempty"`
}

// =============================================================================
// GENERIC
// =============================================================================

// APIError is the backend's error envelope.
type APIError struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// Ack is the generic success envelope for fire-and-forget POSTs.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
