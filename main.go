// ruma TUI - a terminal interface for the local Ruma AI assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/suriai/ruma-tui/internal/backend"
	"github.com/suriai/ruma-tui/internal/bootstrap"
	"github.com/suriai/ruma-tui/internal/cli"
	"github.com/suriai/ruma-tui/internal/config"
	"github.com/suriai/ruma-tui/internal/discovery"
	"github.com/suriai/ruma-tui/internal/history"
	"github.com/suriai/ruma-tui/internal/hub"
	"github.com/suriai/ruma-tui/internal/personality"
	"github.com/suriai/ruma-tui/internal/session"
	"github.com/suriai/ruma-tui/internal/ui/ask"
	"github.com/suriai/ruma-tui/internal/ui/components"
	"github.com/suriai/ruma-tui/internal/ui/modelhub"
	"github.com/suriai/ruma-tui/internal/ui/personalities"
	"github.com/suriai/ruma-tui/internal/ui/styles"
	"github.com/suriai/ruma-tui/internal/ui/updates"
	"github.com/suriai/ruma-tui/internal/update"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		os.Exit(cli.HandleAsk(args))
	case cli.CmdStatus:
		os.Exit(cli.HandleStatus(args))
	case cli.CmdSetup:
		os.Exit(cli.HandleSetup(args))
	case cli.CmdBackup:
		os.Exit(cli.HandleBackup(args))
	case cli.CmdPersonalities:
		os.Exit(cli.HandlePersonalities(args))
	case cli.CmdHistory:
		os.Exit(cli.HandleHistory(args))
	case cli.CmdDoctor:
		os.Exit(cli.HandleDoctor(args))
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		runTUI(args)
	}
}

// runTUI starts the full-screen interface.
func runTUI(args cli.Args) {
	cfg := config.Global()

	// Find the backend before the UI comes up. An unreachable backend is not
	// fatal: the status bar shows offline and the periodic check reconnects.
	baseURL := args.Server
	connected := baseURL != ""
	if baseURL == "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		result := discovery.New().Discover(ctx, cfg.Server.URL)
		cancel()
		if result.Reachable {
			baseURL = result.URL
			connected = true
			if !result.FromSaved {
				cfg.Server.URL = baseURL
				_ = config.Save(cfg)
			}
		} else {
			// Unreachable: fall back to the saved URL (or the client's
			// default) and let the periodic check reconnect.
			baseURL = cfg.Server.URL
		}
	}

	client := backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL: baseURL,
		UserID:  cfg.Server.UserID,
	})

	// History is optional; the ask view degrades to no persistence.
	var store *history.Store
	if path, err := history.DefaultPath(); err == nil {
		if s, err := history.Open(path); err == nil {
			store = s
			defer store.Close()
		}
	}

	app := newApp(cfg, client, store, connected)

	p := tea.NewProgram(app, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running ruma: %v\n", err)
		os.Exit(1)
	}

	if a, ok := finalModel.(*App); ok {
		if a.monitor != nil {
			a.monitor.Close()
		}
		reportHidden(a.sessions)
	}
}

// reportHidden tells the backend the UI is gone, so it drops to its
// background cadence immediately instead of waiting out the idle timer.
// Terminal emulators give no focus events on this bubbletea version, so exit
// is the one hidden transition we can observe.
func reportHidden(sessions *session.Manager) {
	sessions.SetHidden(true)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = sessions.Report(ctx)
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// backendCheckInterval is how often the backend connection is re-verified.
const backendCheckInterval = 15 * time.Second

// App is the root Bubble Tea model: the tab strip, the four views, and the
// shared chrome around them.
type App struct {
	theme *styles.Theme

	width  int
	height int

	header *components.Header
	status components.StatusBar
	toast  components.Toast

	active components.Tab

	askView    *ask.Model
	rosterView *personalities.Model
	hubView    *modelhub.Model
	updateView *updates.Model

	client   *backend.Client
	sessions *session.Manager
	config   *config.Config

	// monitor guards the extracted backend payload, nil until bootstrap
	// completes.
	monitor *bootstrap.Monitor

	connected bool
}

// BackendCheckMsg reports a connectivity probe result.
type BackendCheckMsg struct {
	Connected bool
}

// BootstrapDoneMsg reports the backend payload extraction result.
type BootstrapDoneMsg struct {
	Monitor *bootstrap.Monitor
	Err     error
}

// newApp wires the views to their domain managers.
func newApp(cfg *config.Config, client *backend.Client, store *history.Store, connected bool) *App {
	theme := styles.NewTheme()

	app := &App{
		theme:      theme,
		width:      80,
		height:     24,
		header:     components.NewHeader(theme),
		status:     components.NewStatusBar(),
		active:     components.TabAsk,
		rosterView: personalities.New(theme, personality.NewManager(client)),
		hubView:    modelhub.New(theme, hub.New(client)),
		updateView: updates.New(theme, client),
		client:     client,
		sessions:   session.NewManager(session.DefaultConfig(), client),
		config:     cfg,
		connected:  connected,
	}

	if store != nil {
		app.askView = ask.New(theme, client, store)
	} else {
		app.askView = ask.New(theme, client, nil)
	}

	return app
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the pollers and loads initial data.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		session.TickCmd(),
		a.checkBackend(),
		a.bootstrapCmd(),
		a.rosterView.Reload(),
		a.hubView.Refresh(),
		a.updateView.Init(),
	)
}

// Update handles messages and routes them to the views.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.header.SetWidth(msg.Width)
		a.status.Width = msg.Width

		// Header and status bar each take one line.
		contentHeight := msg.Height - 2
		a.askView.SetSize(msg.Width, contentHeight)
		a.rosterView.SetSize(msg.Width, contentHeight)
		a.hubView.SetSize(msg.Width, contentHeight)
		a.updateView.SetSize(msg.Width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case session.TickMsg:
		return a, a.sessions.HandleTick()

	case session.PresenceChangedMsg:
		return a, nil

	case BackendCheckMsg:
		a.connected = msg.Connected
		return a, a.scheduleBackendCheck()

	case BootstrapDoneMsg:
		if msg.Err != nil {
			return a, a.toast.Show(components.ToastWarning,
				"backend setup incomplete: "+msg.Err.Error())
		}
		a.monitor = msg.Monitor
		return a, nil

	case personalities.ActiveChangedMsg:
		a.header.Personality = msg.Name
		a.status.Personality = msg.Name
		a.askView.SetPersonality(msg.ID, msg.Name)
		return a, nil

	case components.ToastExpiredMsg:
		a.toast.Update(msg)
		return a, nil
	}

	// Everything else (poll ticks, command results, spinner frames) goes to
	// every view; each one ignores messages it does not own.
	return a, a.broadcast(msg)
}

// handleKey dispatches global keys and forwards the rest to the active view.
func (a *App) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.sessions.RecordActivity()

	switch key.String() {
	case "ctrl+c", a.config.Keys.Quit:
		return a, tea.Quit

	case a.config.Keys.NextTab:
		// The create form owns tab for field focus.
		if a.active == components.TabPersonalities && a.rosterView.Typing() {
			break
		}
		a.setActive(a.header.Next())
		return a, nil

	case "shift+tab":
		if a.active == components.TabPersonalities && a.rosterView.Typing() {
			break
		}
		a.setActive(a.header.Prev())
		return a, nil
	}

	return a, a.activeView(key)
}

// setActive switches the visible view.
func (a *App) setActive(tab components.Tab) {
	a.active = tab
	a.header.SetActive(tab)
}

// activeView forwards a message to the currently visible view only.
func (a *App) activeView(msg tea.Msg) tea.Cmd {
	switch a.active {
	case components.TabAsk:
		return a.askView.Update(msg)
	case components.TabPersonalities:
		return a.rosterView.Update(msg)
	case components.TabHub:
		return a.hubView.Update(msg)
	case components.TabUpdates:
		return a.updateView.Update(msg)
	}
	return nil
}

// broadcast forwards a message to all views.
func (a *App) broadcast(msg tea.Msg) tea.Cmd {
	return tea.Batch(
		a.askView.Update(msg),
		a.rosterView.Update(msg),
		a.hubView.Update(msg),
		a.updateView.Update(msg),
	)
}

// View renders the full screen: header, active view, toast, status bar.
func (a *App) View() string {
	a.syncStatusBar()

	var content string
	switch a.active {
	case components.TabAsk:
		content = a.askView.View()
	case components.TabPersonalities:
		content = a.rosterView.View()
	case components.TabHub:
		content = a.hubView.View()
	case components.TabUpdates:
		content = a.updateView.View()
	}

	out := a.header.View() + "\n" + content
	if toast := a.toast.View(); toast != "" {
		out += "\n" + toast
	}
	return out + "\n" + a.status.View()
}

// syncStatusBar pulls current state into the status bar fields.
func (a *App) syncStatusBar() {
	a.status.Connected = a.connected
	a.status.BackendURL = a.client.BaseURL()

	machine := a.updateView.Machine()
	switch machine.State() {
	case update.StateDownloading, update.StatePaused:
		a.status.Downloading = true
		a.status.UpdateAvailable = true
		a.status.DownloadPercent = machine.Progress().Percent
	case update.StateUpdateAvailable, update.StateDownloadComplete:
		a.status.Downloading = false
		a.status.UpdateAvailable = true
	default:
		a.status.Downloading = false
		a.status.UpdateAvailable = false
	}
}

// =============================================================================
// BACKGROUND COMMANDS
// =============================================================================

// checkBackend probes the backend once.
func (a *App) checkBackend() tea.Cmd {
	client := a.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return BackendCheckMsg{Connected: client.CheckRunning(ctx) == nil}
	}
}

// scheduleBackendCheck re-arms the periodic connectivity probe.
func (a *App) scheduleBackendCheck() tea.Cmd {
	client := a.client
	return tea.Tick(backendCheckInterval, func(time.Time) tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return BackendCheckMsg{Connected: client.CheckRunning(ctx) == nil}
	})
}

// bootstrapCmd extracts the bundled backend payload and starts the
// permission monitor over the extracted tree.
func (a *App) bootstrapCmd() tea.Cmd {
	cfg := a.config
	return func() tea.Msg {
		supportDir, err := cfg.SupportDir()
		if err != nil {
			return BootstrapDoneMsg{Err: err}
		}

		boot := bootstrap.New(bootstrap.Options{
			AppID:      "ruma",
			Version:    Version,
			AssetPath:  cfg.Bootstrap.AssetPath,
			SupportDir: supportDir,
		})
		if err := boot.Run(); err != nil {
			return BootstrapDoneMsg{Err: err}
		}

		interval := time.Duration(cfg.Bootstrap.MonitorIntervalSecs) * time.Second
		monitor, err := bootstrap.NewMonitor(boot, interval)
		if err != nil {
			return BootstrapDoneMsg{Err: err}
		}
		if err := monitor.Start(); err != nil {
			return BootstrapDoneMsg{Err: err}
		}
		return BootstrapDoneMsg{Monitor: monitor}
	}
}
