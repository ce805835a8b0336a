// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// doctor.go - System diagnostics command for the ruma CLI.
//
// Command: doctor
//
// Runs a fixed battery of checks: config, backend reachability, backend
// extraction state, history database. Exit code 0 only when every check
// passes; warnings do not fail the run.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/suriai/ruma-tui/internal/backend"
	"github.com/suriai/ruma-tui/internal/config"
	"github.com/suriai/ruma-tui/internal/discovery"
	"github.com/suriai/ruma-tui/internal/history"
)

// checkResult is one doctor check outcome.
type checkResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // pass, warn, fail
	Message string `json:"message"`
}

// HandleDoctor handles the doctor command.
func HandleDoctor(args Args) int {
	results := []checkResult{
		checkConfig(),
		checkBackend(args),
		checkExtraction(),
		checkHistory(),
	}

	if args.JSON {
		outputJSON(results)
	} else {
		fmt.Println(TitleStyle.Render("ruma doctor"))
		for _, r := range results {
			fmt.Printf("%s %s\n", RenderStatus(r.Status), ValueStyle.Render(r.Name))
			if r.Message != "" {
				fmt.Println(DimStyle.Render("    " + r.Message))
			}
		}
	}

	for _, r := range results {
		if r.Status == "fail" {
			return 1
		}
	}
	return 0
}

// checkConfig verifies the config file loads and validates.
func checkConfig() checkResult {
	path, err := config.ConfigPath()
	if err != nil {
		return checkResult{"config", "fail", err.Error()}
	}

	cfg, err := config.Load()
	if err != nil {
		return checkResult{"config", "fail", err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return checkResult{"config", "fail", err.Error()}
	}
	return checkResult{"config", "pass", path}
}

// checkBackend probes for a reachable backend and queries its status.
func checkBackend(args Args) checkResult {
	ctx, cancel := context.WithTimeout(context.Background(), discoverTimeout)
	defer cancel()

	baseURL := args.Server
	if baseURL == "" {
		result := discovery.New().Discover(ctx, config.Global().Server.URL)
		if !result.Reachable {
			return checkResult{"backend", "fail",
				fmt.Sprintf("no backend on %s ports %v", discovery.DefaultHost, discovery.CandidatePorts)}
		}
		baseURL = result.URL
	}

	client := backend.NewClientWithConfig(&backend.ClientConfig{BaseURL: baseURL})
	statusCtx, statusCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer statusCancel()

	status, err := client.Status(statusCtx)
	if err != nil {
		return checkResult{"backend", "fail", baseURL + ": " + err.Error()}
	}
	msg := baseURL
	if status.Version != "" {
		msg += " (v" + status.Version + ")"
	}
	return checkResult{"backend", "pass", msg}
}

// checkExtraction verifies the backend payload is extracted with the
// expected permissions. A missing extraction is a warning: the backend may
// be running from somewhere else entirely.
func checkExtraction() checkResult {
	boot, err := newBootstrapper()
	if err != nil {
		return checkResult{"extraction", "fail", err.Error()}
	}
	if !boot.IsExtracted() {
		return checkResult{"extraction", "warn",
			"backend payload not extracted; run: ruma setup"}
	}
	if err := boot.AssertPermissions(); err != nil {
		return checkResult{"extraction", "warn", "permissions repaired: " + err.Error()}
	}
	return checkResult{"extraction", "pass", boot.SupportDir()}
}

// checkHistory verifies the history database opens and counts entries.
func checkHistory() checkResult {
	path, err := history.DefaultPath()
	if err != nil {
		return checkResult{"history", "fail", err.Error()}
	}
	store, err := history.Open(path)
	if err != nil {
		return checkResult{"history", "fail", err.Error()}
	}
	defer store.Close()

	count, err := store.Count()
	if err != nil {
		return checkResult{"history", "fail", err.Error()}
	}
	return checkResult{"history", "pass", fmt.Sprintf("%d entries in %s", count, path)}
}
