// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// backup.go - Application backup commands for the ruma CLI.
//
// Commands: backup list, backup restore <id>, backup delete <id>
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/suriai/ruma-tui/internal/backend"
)

// backupRequestTimeout bounds backup list and delete calls. Restores copy
// the whole application bundle and get a longer leash.
const backupRequestTimeout = 15 * time.Second

const backupRestoreTimeout = 5 * time.Minute

// HandleBackup handles the backup command.
func HandleBackup(args Args) int {
	client, err := connectBackend(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}

	parser := NewArgParser(args.Raw)

	switch args.Subcommand {
	case "", "list":
		return backupList(client, args)
	case "restore":
		return backupRestore(client, args, parser)
	case "delete", "rm":
		return backupDelete(client, args, parser)
	default:
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+
			fmt.Sprintf("unknown backup subcommand %q (list, restore, delete)", args.Subcommand))
		return 1
	}
}

func backupList(client *backend.Client, args Args) int {
	ctx, cancel := context.WithTimeout(context.Background(), backupRequestTimeout)
	defer cancel()

	backups, err := client.ListBackups(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}

	if args.JSON {
		outputJSON(backups)
		return 0
	}

	if len(backups) == 0 {
		fmt.Println(DimStyle.Render("No backups."))
		return 0
	}

	fmt.Println(TitleStyle.Render("Backups"))
	for _, b := range backups {
		fmt.Printf("  %s  %s  %s  %s\n",
			HighlightStyle.Render(b.ID),
			ValueStyle.Render("v"+b.Version),
			DimStyle.Render(formatBytes(b.SizeBytes)),
			DimStyle.Render(b.CreatedAt.Format("2006-01-02 15:04")))
	}
	return 0
}

func backupRestore(client *backend.Client, args Args, parser *ArgParser) int {
	id := parser.Positional(1)
	if id == "" {
		return backupUsageError("restore")
	}

	if !parser.HasFlag("confirm") &&
		!confirmPrompt(fmt.Sprintf("Restore backup %s? The current version will be replaced.", id)) {
		fmt.Println(DimStyle.Render("Cancelled."))
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), backupRestoreTimeout)
	defer cancel()

	if err := client.RestoreBackup(ctx, id); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}
	fmt.Println(RenderStatus("pass") + " restore started; the app will relaunch when it completes")
	return 0
}

func backupDelete(client *backend.Client, args Args, parser *ArgParser) int {
	id := parser.Positional(1)
	if id == "" {
		return backupUsageError("delete")
	}

	if !parser.HasFlag("confirm") && !confirmPrompt(fmt.Sprintf("Delete backup %s?", id)) {
		fmt.Println(DimStyle.Render("Cancelled."))
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), backupRequestTimeout)
	defer cancel()

	if err := client.DeleteBackup(ctx, id); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}
	fmt.Println(RenderStatus("pass") + " backup deleted")
	return 0
}

// backupUsageError reports a missing backup id and returns the exit code.
func backupUsageError(verb string) int {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+
		fmt.Sprintf("backup %s requires a backup id (see: ruma backup list)", verb))
	return 1
}
