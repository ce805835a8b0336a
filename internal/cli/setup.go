// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// setup.go - Backend payload extraction command for the ruma CLI.
//
// Command: setup [--repair]
package cli

import (
	"fmt"
	"os"

	"github.com/suriai/ruma-tui/internal/bootstrap"
	"github.com/suriai/ruma-tui/internal/config"
)

// newBootstrapper builds a Bootstrapper from the loaded config.
func newBootstrapper() (*bootstrap.Bootstrapper, error) {
	cfg := config.Global()
	supportDir, err := cfg.SupportDir()
	if err != nil {
		return nil, err
	}
	return bootstrap.New(bootstrap.Options{
		AppID:      "ruma",
		Version:    Version,
		AssetPath:  cfg.Bootstrap.AssetPath,
		SupportDir: supportDir,
	}), nil
}

// HandleSetup handles the setup command.
func HandleSetup(args Args) int {
	boot, err := newBootstrapper()
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}

	repair := args.Subcommand == "--repair" || args.Subcommand == "repair"

	if !repair && boot.IsExtracted() {
		if err := boot.AssertPermissions(); err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
			return 1
		}
		if !args.Quiet {
			fmt.Println(RenderStatus("pass") + " backend already extracted at " +
				ValueStyle.Render(boot.SupportDir()))
		}
		return 0
	}

	if !args.Quiet {
		if repair {
			fmt.Println("Repairing backend extraction...")
		} else {
			fmt.Println("Extracting backend payload...")
		}
	}

	if repair {
		err = boot.Repair()
	} else {
		err = boot.Run()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}

	if !args.Quiet {
		fmt.Println(RenderStatus("pass") + " backend ready at " +
			ValueStyle.Render(boot.SupportDir()))
	}
	return 0
}
