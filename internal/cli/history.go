// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - Question history commands for the ruma CLI.
//
// Commands: history show [--lines N], history search <text>, history clear
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/suriai/ruma-tui/internal/history"
)

// defaultHistoryLines is how many entries "history show" prints.
const defaultHistoryLines = 20

// HandleHistory handles the history command.
func HandleHistory(args Args) int {
	path, err := history.DefaultPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}
	store, err := history.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}
	defer store.Close()

	parser := NewArgParser(args.Raw)

	switch args.Subcommand {
	case "", "show", "list":
		return historyShow(store, args, parser)
	case "search":
		return historySearch(store, args, parser)
	case "clear":
		return historyClear(store, parser)
	default:
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+
			fmt.Sprintf("unknown history subcommand %q (show, search, clear)", args.Subcommand))
		return 1
	}
}

func historyShow(store *history.Store, args Args, parser *ArgParser) int {
	limit := parser.FlagIntOrDefault("lines", defaultHistoryLines)

	entries, err := store.Recent(limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}
	return printEntries(entries, args, "No history yet.")
}

func historySearch(store *history.Store, args Args, parser *ArgParser) int {
	query := strings.TrimSpace(JoinPositionalArgs(parser, 1))
	if query == "" {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+"search requires a query")
		return 1
	}

	limit := parser.FlagIntOrDefault("lines", defaultHistoryLines)
	entries, err := store.Search(query, limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}
	return printEntries(entries, args, fmt.Sprintf("No matches for %q.", query))
}

func historyClear(store *history.Store, parser *ArgParser) int {
	count, err := store.Count()
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}
	if count == 0 {
		fmt.Println(DimStyle.Render("History is already empty."))
		return 0
	}

	if !parser.HasFlag("confirm") &&
		!confirmPrompt(fmt.Sprintf("Delete all %d history entries?", count)) {
		fmt.Println(DimStyle.Render("Cancelled."))
		return 1
	}

	if err := store.Clear(); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}
	fmt.Printf("%s cleared %d entries\n", RenderStatus("pass"), count)
	return 0
}

// printEntries renders a history entry list, newest first.
func printEntries(entries []history.Entry, args Args, emptyMsg string) int {
	if args.JSON {
		if entries == nil {
			entries = []history.Entry{}
		}
		outputJSON(entries)
		return 0
	}

	if len(entries) == 0 {
		fmt.Println(DimStyle.Render(emptyMsg))
		return 0
	}

	for _, e := range entries {
		stamp := DimStyle.Render(e.CreatedAt.Format("2006-01-02 15:04"))
		badge := ""
		if e.HadCapture {
			badge = " " + DimStyle.Render("[capture]")
		}
		fmt.Printf("%s%s  %s\n", stamp, badge, HighlightStyle.Render(e.Question))
		fmt.Println("  " + ValueStyle.Render(summarize(e.Answer, 200)))
	}
	return 0
}

// summarize collapses an answer to a single truncated line.
func summarize(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > max {
		s = s[:max-1] + "…"
	}
	return s
}
