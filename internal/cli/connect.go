// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// connect.go - Shared backend connection setup for CLI commands.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/suriai/ruma-tui/internal/backend"
	"github.com/suriai/ruma-tui/internal/config"
	"github.com/suriai/ruma-tui/internal/discovery"
)

// discoverTimeout bounds the port sweep when no saved URL answers.
const discoverTimeout = 10 * time.Second

// connectBackend builds a client for the discovered backend. The --server
// flag wins over the saved URL; discovery runs only when the override is
// empty. The working URL is saved back to the config for the next run.
func connectBackend(args Args) (*backend.Client, error) {
	cfg := config.Global()

	baseURL := args.Server
	if baseURL == "" {
		ctx, cancel := context.WithTimeout(context.Background(), discoverTimeout)
		defer cancel()

		result := discovery.New().Discover(ctx, cfg.Server.URL)
		if !result.Reachable {
			return nil, fmt.Errorf("no backend found on %s (ports %v); start the server or pass --server",
				discovery.DefaultHost, discovery.CandidatePorts)
		}
		baseURL = result.URL

		if !result.FromSaved {
			cfg.Server.URL = baseURL
			if err := config.Save(cfg); err != nil && args.Verbose {
				fmt.Println(DimStyle.Render("warning: could not save discovered URL: " + err.Error()))
			}
		}
	}

	return backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL: baseURL,
		UserID:  cfg.Server.UserID,
	}), nil
}
