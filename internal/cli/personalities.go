// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// personalities.go - Personality management commands for the ruma CLI.
//
// Commands: personalities list, switch <id>, create <name>, delete <id>, stats
package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/suriai/ruma-tui/internal/backend"
	"github.com/suriai/ruma-tui/internal/util"
)

// personalityRequestTimeout bounds one personality API call.
const personalityRequestTimeout = 15 * time.Second

// HandlePersonalities handles the personalities command.
func HandlePersonalities(args Args) int {
	client, err := connectBackend(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}

	parser := NewArgParser(args.Raw)

	switch args.Subcommand {
	case "", "list":
		return personalityList(client, args)
	case "switch", "use":
		return personalitySwitch(client, parser)
	case "create", "new":
		return personalityCreate(client, args, parser)
	case "delete", "rm":
		return personalityDelete(client, parser)
	case "stats":
		return personalityStats(client, args)
	default:
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+
			fmt.Sprintf("unknown personalities subcommand %q (list, switch, create, delete, stats)", args.Subcommand))
		return 1
	}
}

func personalityList(client *backend.Client, args Args) int {
	ctx, cancel := context.WithTimeout(context.Background(), personalityRequestTimeout)
	defer cancel()

	personalities, err := client.ListPersonalities(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}

	if args.JSON {
		outputJSON(personalities)
		return 0
	}

	if len(personalities) == 0 {
		fmt.Println(DimStyle.Render("No personalities."))
		return 0
	}

	fmt.Println(TitleStyle.Render("Personalities"))
	for _, p := range personalities {
		marker := "  "
		name := ValueStyle.Render(p.Name)
		if p.IsActive {
			marker = SuccessStyle.Render("* ")
			name = SuccessStyle.Render(p.Name)
		}
		line := fmt.Sprintf("%s%s  %s", marker, name, DimStyle.Render(p.ID))
		if p.Description != "" {
			line += "\n    " + DimStyle.Render(util.TruncateRunes(p.Description, 80))
		}
		fmt.Println(line)
	}
	return 0
}

func personalitySwitch(client *backend.Client, parser *ArgParser) int {
	id := parser.Positional(1)
	if id == "" {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+
			"switch requires a personality id (see: ruma personalities list)")
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), personalityRequestTimeout)
	defer cancel()

	if err := client.SwitchPersonality(ctx, id); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}
	fmt.Println(RenderStatus("pass") + " active personality switched")
	return 0
}

func personalityCreate(client *backend.Client, args Args, parser *ArgParser) int {
	name := strings.TrimSpace(JoinPositionalArgs(parser, 1))
	if name == "" {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+
			"create requires a personality name")
		return 1
	}

	req := backend.CreatePersonalityRequest{
		Name:               name,
		Description:        parser.Flag("description"),
		CommunicationStyle: parser.FlagOrDefault("style", "balanced"),
	}
	if traits := parser.Flag("traits"); traits != "" {
		for _, t := range strings.Split(traits, ",") {
			if t = strings.TrimSpace(t); t != "" {
				req.Traits = append(req.Traits, t)
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), personalityRequestTimeout)
	defer cancel()

	created, err := client.CreatePersonality(ctx, req)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}

	if args.JSON {
		outputJSON(created)
		return 0
	}
	fmt.Println(RenderStatus("pass") + " created " +
		ValueStyle.Render(created.Name) + " " + DimStyle.Render(created.ID))
	return 0
}

func personalityDelete(client *backend.Client, parser *ArgParser) int {
	id := parser.Positional(1)
	if id == "" {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+
			"delete requires a personality id (see: ruma personalities list)")
		return 1
	}

	if !parser.HasFlag("confirm") && !confirmPrompt(fmt.Sprintf("Delete personality %s?", id)) {
		fmt.Println(DimStyle.Render("Cancelled."))
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), personalityRequestTimeout)
	defer cancel()

	if err := client.DeletePersonality(ctx, id); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}
	fmt.Println(RenderStatus("pass") + " personality deleted")
	return 0
}

func personalityStats(client *backend.Client, args Args) int {
	ctx, cancel := context.WithTimeout(context.Background(), personalityRequestTimeout)
	defer cancel()

	stats, err := client.PersonalityStats(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}

	if args.JSON {
		outputJSON(stats)
		return 0
	}

	fmt.Println(TitleStyle.Render("Personality Stats"))
	fmt.Println(RenderLabel("Personalities") + ValueStyle.Render(fmt.Sprintf("%d", stats.TotalPersonalities)))
	fmt.Println(RenderLabel("Active") + ValueStyle.Render(stats.ActivePersonality))
	fmt.Println(RenderLabel("Interactions") + ValueStyle.Render(fmt.Sprintf("%d", stats.TotalInteractions)))

	if len(stats.UsageByPersonality) > 0 {
		names := make([]string, 0, len(stats.UsageByPersonality))
		for name := range stats.UsageByPersonality {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			return stats.UsageByPersonality[names[i]] > stats.UsageByPersonality[names[j]]
		})
		fmt.Println(SectionStyle.Render("Usage"))
		for _, name := range names {
			fmt.Printf("  %s %s\n",
				RenderLabel(name), ValueStyle.Render(fmt.Sprintf("%d", stats.UsageByPersonality[name])))
		}
	}
	return 0
}
