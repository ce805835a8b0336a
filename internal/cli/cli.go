// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for ruma.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdStatus
	CmdSetup
	CmdBackup
	CmdPersonalities
	CmdHistory
	CmdDoctor
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool
	Server  string // Override the backend URL for this invocation

	// Command-specific
	Query      string
	File       string // Capture file attached to an ask
	Subcommand string

	// Raw args (remaining after the command word)
	Raw []string
}

const usageText = `ruma - local AI assistant with screen awareness

Ruma answers questions through a local backend, optionally with a
screenshot or text file attached for context. Personalities shape the
answer's voice; the model hub manages the local model library.

Usage:
  ruma                       Start the TUI (default)
  ruma ask "question"        Ask a single question
    -f, --file FILE          Attach a screenshot or text file
    --json                   Output the answer as JSON
  ruma ask                   Interactive ask loop (REPL)
  ruma status, s             Show backend status
  ruma personalities [subcommand]
                             Personality management
  ruma history [subcommand]  Question history
  ruma backup [subcommand]   Application backups
  ruma setup [--repair]      Extract or repair the bundled backend
  ruma doctor                System diagnostics
  ruma version, -v           Show version
  ruma help, -h              Show this help

Personality Commands:
  ruma personalities list           List personalities
  ruma personalities switch <id>    Switch the active personality
  ruma personalities create <name>  Create a personality
    --description TEXT              Short description
    --traits a,b,c                  Comma-separated traits
  ruma personalities delete <id>    Delete a personality
    --confirm                       Skip the confirmation prompt
  ruma personalities stats          Usage statistics

History Commands:
  ruma history show                 Show recent questions (default: 20)
    --lines N                       Show last N entries
  ruma history search <text>        Search questions and answers
  ruma history clear --confirm      Delete all history

Backup Commands:
  ruma backup list                  List application backups
  ruma backup restore <id>          Restore a backup
    --confirm                       Skip the confirmation prompt
  ruma backup delete <id>           Delete a backup
    --confirm                       Skip the confirmation prompt

Global Flags:
  --server URL               Backend URL (overrides config and discovery)
  --json                     JSON output where supported
  -q, --quiet                Minimal output
  --verbose                  Verbose output

Environment:
  RUMA_SERVER_URL            Backend URL
  RUMA_USER_ID               User id sent with requests
  NO_COLOR                   Disable colored output
`

// PrintUsage prints the usage text.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("ruma %s (%s, built %s, %s/%s)\n",
		Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}

// Parse parses os.Args into a command and its arguments.
func Parse() (Command, Args) {
	return ParseFrom(os.Args[1:])
}

// ParseFrom parses the given argument list. Split out for testing.
func ParseFrom(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	// No command word: launch the TUI.
	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, args

	case "ask":
		parseAskArgs(&args, remaining)
		return CmdAsk, args

	case "status", "s":
		return CmdStatus, args

	case "setup":
		if len(remaining) > 0 {
			args.Subcommand = remaining[0]
		}
		return CmdSetup, args

	case "backup", "backups":
		if len(remaining) > 0 {
			args.Subcommand = remaining[0]
		}
		return CmdBackup, args

	case "personalities", "personality", "p":
		if len(remaining) > 0 {
			args.Subcommand = remaining[0]
		}
		return CmdPersonalities, args

	case "history", "h":
		if len(remaining) > 0 {
			args.Subcommand = remaining[0]
		}
		return CmdHistory, args

	case "doctor":
		return CmdDoctor, args

	case "version", "-v", "--version":
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args

	default:
		// Unknown word: treat the whole line as a question.
		args.Query = strings.Join(append([]string{cmd}, remaining...), " ")
		return CmdAsk, args
	}
}

// parseGlobalFlags extracts flags that apply to every command.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var args Args
	var remaining []string

	i := 0
	for i < len(argv) {
		switch arg := argv[i]; arg {
		case "-q", "--quiet":
			args.Quiet = true
		case "--verbose":
			args.Verbose = true
		case "--json":
			args.JSON = true
		case "--server":
			if i+1 < len(argv) {
				args.Server = argv[i+1]
				i++
			}
		default:
			if strings.HasPrefix(arg, "--server=") {
				args.Server = strings.TrimPrefix(arg, "--server=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}
	return remaining, args
}

// parseAskArgs extracts the question and attachment from ask arguments.
func parseAskArgs(args *Args, remaining []string) {
	var queryParts []string

	i := 0
	for i < len(remaining) {
		switch arg := remaining[i]; arg {
		case "-f", "--file":
			if i+1 < len(remaining) {
				args.File = remaining[i+1]
				i++
			}
		default:
			if strings.HasPrefix(arg, "--file=") {
				args.File = strings.TrimPrefix(arg, "--file=")
			} else if !strings.HasPrefix(arg, "-") {
				queryParts = append(queryParts, arg)
			}
		}
		i++
	}
	args.Query = strings.Join(queryParts, " ")
}
