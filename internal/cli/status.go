// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Backend status command for the ruma CLI.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/suriai/ruma-tui/internal/config"
)

// HandleStatus handles the status command.
func HandleStatus(args Args) int {
	client, err := connectBackend(args)
	if err != nil {
		if args.JSON {
			outputJSON(map[string]interface{}{"reachable": false, "error": err.Error()})
		} else {
			fmt.Println(RenderStatus("fail") + " backend unreachable")
			fmt.Println(DimStyle.Render("  " + err.Error()))
		}
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status, err := client.Status(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}

	if args.JSON {
		outputJSON(map[string]interface{}{
			"reachable":      true,
			"url":            client.BaseURL(),
			"status":         status.Status,
			"version":        status.Version,
			"uptime_seconds": status.Uptime,
		})
		return 0
	}

	fmt.Println(TitleStyle.Render("ruma status"))
	fmt.Println(RenderLabel("Backend") + SuccessStyle.Render(client.BaseURL()))
	fmt.Println(RenderLabel("Status") + ValueStyle.Render(status.Status))
	if status.Version != "" {
		fmt.Println(RenderLabel("Version") + ValueStyle.Render(status.Version))
	}
	if status.Uptime > 0 {
		fmt.Println(RenderLabel("Uptime") + ValueStyle.Render(formatDuration(time.Duration(status.Uptime)*time.Second)))
	}

	user := config.Global().Server.UserID
	if user == "" {
		user = getCurrentUserID()
	}
	fmt.Println(RenderLabel("User") + ValueStyle.Render(user))
	return 0
}
