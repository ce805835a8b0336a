// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question and interactive ask loop for the ruma CLI.
//
// Command: ask [question]
//
// Examples:
//   ruma ask "What does this error mean?" --file screenshot.png
//   ruma ask "Summarize this" -f notes.txt
//   ruma ask --json "List the steps"
//   ruma ask            (no question: interactive loop)
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"

	"github.com/suriai/ruma-tui/internal/backend"
	"github.com/suriai/ruma-tui/internal/capture"
	"github.com/suriai/ruma-tui/internal/config"
	"github.com/suriai/ruma-tui/internal/history"
)

// askRequestTimeout bounds one analyze round trip. Vision answers on large
// captures can be slow on modest hardware.
const askRequestTimeout = 120 * time.Second

// markdownRenderer is the shared glamour renderer for answers.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		markdownRenderer = nil
	}
}

// renderAnswer renders a markdown answer for terminal display. Piped output
// gets the raw text so downstream tools see clean markdown.
func renderAnswer(content string) string {
	if !IsStdoutTTY() || markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// HandleAsk handles the ask command: one-shot with a query, interactive
// without one.
func HandleAsk(args Args) int {
	client, err := connectBackend(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}

	store := openHistory(args)
	if store != nil {
		defer store.Close()
	}

	if strings.TrimSpace(args.Query) != "" {
		return askOnce(client, store, args)
	}
	return askLoop(client, store, args)
}

// askOnce sends a single question and prints the answer.
func askOnce(client *backend.Client, store *history.Store, args Args) int {
	req := backend.AnalyzeRequest{Question: args.Query}

	if args.File != "" {
		cap, err := capture.FromFile(args.File)
		if err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
			return 1
		}
		req.OCRText = cap.Text
		req.ImageBase64 = cap.ImageBase64
	}

	ctx, cancel := context.WithTimeout(context.Background(), askRequestTimeout)
	defer cancel()

	started := time.Now()
	resp, err := client.Analyze(ctx, req)
	if err != nil {
		return askFallback(args, req, err)
	}
	elapsed := time.Since(started)

	if args.JSON {
		outputJSON(map[string]string{
			"question":    args.Query,
			"answer":      resp.Answer,
			"personality": resp.Personality,
			"model":       resp.Model,
		})
	} else {
		fmt.Print(renderAnswer(resp.Answer))
		if resp.Personality != "" && !args.Quiet {
			fmt.Println(DimStyle.Render("— " + resp.Personality))
		}
		if args.Verbose {
			fmt.Println(DimStyle.Render("answered in " + formatDurationShort(elapsed)))
		}
	}

	saveHistory(store, args.Query, resp, args.File != "")
	return 0
}

// askLoop runs the interactive ask REPL with line editing and history.
func askLoop(client *backend.Client, store *history.Store, args Args) int {
	if err := RequiresTTY("run the ask loop"); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return 1
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile := askHistoryPath()
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	if !args.Quiet {
		fmt.Println(TitleStyle.Render("ruma ask") +
			DimStyle.Render("  (empty line or ctrl+d to exit, @file attaches context)"))
	}

	for {
		input, err := line.Prompt("> ")
		if err != nil || strings.TrimSpace(input) == "" {
			break
		}
		line.AppendHistory(input)

		question, attachment := splitAttachment(input)
		if question == "" {
			continue
		}

		req := backend.AnalyzeRequest{Question: question}
		if attachment != "" {
			cap, err := capture.FromFile(attachment)
			if err != nil {
				fmt.Println(ErrorStyle.Render("attach failed: ") + err.Error())
				continue
			}
			req.OCRText = cap.Text
			req.ImageBase64 = cap.ImageBase64
		}

		ctx, cancel := context.WithTimeout(context.Background(), askRequestTimeout)
		resp, err := client.Analyze(ctx, req)
		cancel()
		if err != nil {
			if req.OCRText != "" {
				fmt.Println(WarningStyle.Render("analysis failed: ") + askError(err))
				fmt.Println(DimStyle.Render("captured text:"))
				fmt.Println(req.OCRText)
			} else {
				fmt.Println(ErrorStyle.Render("Error: ") + askError(err))
			}
			continue
		}

		fmt.Print(renderAnswer(resp.Answer))
		saveHistory(store, question, resp, attachment != "")
	}

	if historyFile != "" {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}
	return 0
}

// splitAttachment pulls a trailing @path token out of an ask line.
//
//	"what is this @shot.png" -> ("what is this", "shot.png")
func splitAttachment(input string) (question, attachment string) {
	fields := strings.Fields(input)
	var kept []string
	for _, f := range fields {
		if strings.HasPrefix(f, "@") && len(f) > 1 {
			attachment = f[1:]
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " "), attachment
}

// askFallback handles a failed analyze call. With text context attached the
// command degrades to printing the captured text itself, so the user still
// sees what was on their screen; without context it is a plain failure.
func askFallback(args Args, req backend.AnalyzeRequest, err error) int {
	if req.OCRText == "" {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+askError(err))
		return 1
	}

	if args.JSON {
		outputJSON(map[string]string{
			"question":     args.Query,
			"error":        askError(err),
			"capture_text": req.OCRText,
		})
		return 0
	}

	fmt.Fprintln(os.Stderr, WarningStyle.Render("analysis failed: ")+askError(err))
	fmt.Println(DimStyle.Render("captured text:"))
	fmt.Println(req.OCRText)
	return 0
}

// askError maps client errors to short actionable messages.
func askError(err error) string {
	switch {
	case backend.IsNotRunning(err):
		return "backend unreachable; is the server running?"
	case backend.IsTimeout(err):
		return "the model took too long to answer"
	default:
		return err.Error()
	}
}

// openHistory opens the question history store, nil on failure.
func openHistory(args Args) *history.Store {
	path, err := history.DefaultPath()
	if err != nil {
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		if args.Verbose {
			fmt.Println(DimStyle.Render("warning: history disabled: " + err.Error()))
		}
		return nil
	}
	return store
}

// saveHistory records an exchange, ignoring failures.
func saveHistory(store *history.Store, question string, resp *backend.AnalyzeResponse, hadCapture bool) {
	if store == nil {
		return
	}
	store.Add(history.Entry{
		Question:   question,
		Answer:     resp.Answer,
		HadCapture: hadCapture,
	})
}

// askHistoryPath returns the liner history file path, empty on failure.
func askHistoryPath() string {
	dir, err := config.ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ask_history")
}
