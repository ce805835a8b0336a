// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"net/http"
	"net/url"
)

// =============================================================================
// PERSONALITY OPERATIONS
// =============================================================================

// ListPersonalities retrieves all personalities for the configured user.
func (c *Client) ListPersonalities(ctx context.Context) ([]Personality, error) {
	var resp ListPersonalitiesResponse
	path := "/personalities/" + url.PathEscape(c.config.UserID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Personalities, nil
}

// CreatePersonality creates a new personality profile on the backend.
func (c *Client) CreatePersonality(ctx context.Context, req CreatePersonalityRequest) (*Personality, error) {
	if req.UserID == "" {
		req.UserID = c.config.UserID
	}
	var created Personality
	if err := c.doJSON(ctx, http.MethodPost, "/personalities", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// SwitchPersonality sets the active personality for the configured user.
func (c *Client) SwitchPersonality(ctx context.Context, personalityID string) error {
	path := "/personalities/" + url.PathEscape(c.config.UserID) + "/switch"
	return c.doJSON(ctx, http.MethodPost, path, SwitchPersonalityRequest{PersonalityID: personalityID}, nil)
}

// DeletePersonality removes a personality profile from the backend.
func (c *Client) DeletePersonality(ctx context.Context, personalityID string) error {
	path := "/personalities/" + url.PathEscape(c.config.UserID) + "/" + url.PathEscape(personalityID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// PersonalityStats retrieves usage statistics for the configured user.
func (c *Client) PersonalityStats(ctx context.Context) (*PersonalityStats, error) {
	var stats PersonalityStats
	path := "/personalities/" + url.PathEscape(c.config.UserID) + "/stats"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
