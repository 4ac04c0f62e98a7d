package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/prior-it/hermes/views"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch the template directory and show every reload",
		Long: `Watch the template directory (default: templates.dir) and rebuild it on every change.

The screen shows the status of every file of the last reload and a history of
reloads. Press r to reload by hand, q to quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := templateDir(args)
			if err != nil {
				return err
			}
			return runWatch(cmd.Context(), dir, debounce)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "wait this long for changes to settle") //nolint:mnd
	return cmd
}

func runWatch(ctx context.Context, dir string, debounce time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan reloadMsg, 16) //nolint:mnd
	quiet := slog.New(slog.DiscardHandler)
	store := views.NewStore(
		dir,
		views.WithLogger(quiet),
		views.WithDebounce(debounce),
		views.WithReloadHook(func(env *views.Environment, err error) {
			msg := reloadMsg{env: env, err: err, at: time.Now()}
			msg.entries, _ = views.Inspect(os.DirFS(dir), views.WithBuildLogger(quiet))
			select {
			case events <- msg:
			default:
			}
		}),
	)

	watchErr := make(chan error, 1)
	go func() { watchErr <- store.Watch(ctx) }()

	program := tea.NewProgram(
		newWatchUI(store, events, cancel),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	cancel()
	return <-watchErr
}

type reloadMsg struct {
	env     *views.Environment
	err     error
	entries []views.Entry
	at      time.Time
}

type reloadDoneMsg struct{}

var watchKeys = watchKeyMap{
	// Up is defined by the viewport, we're just putting it here for the help menu
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	// Down is defined by the viewport, we're just putting it here for the help menu
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	ToTop: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "scroll to top"),
	),
	ToBottom: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "scroll to bottom"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear history"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type watchUI struct {
	initialised  bool
	quitting     bool
	followBottom bool
	store        *views.Store
	events       <-chan reloadMsg
	stop         context.CancelFunc
	last         reloadMsg
	history      []string
	spinner      spinner.Model
	keys         watchKeyMap
	help         help.Model
	viewport     viewport.Model
}

func newWatchUI(store *views.Store, events <-chan reloadMsg, stop context.CancelFunc) *watchUI {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = StyleTitle

	return &watchUI{
		followBottom: true,
		store:        store,
		events:       events,
		stop:         stop,
		spinner:      s,
		keys:         watchKeys,
		help:         help.New(),
	}
}

func waitForReload(events <-chan reloadMsg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

func (ui *watchUI) Init() tea.Cmd {
	return tea.Batch(ui.spinner.Tick, waitForReload(ui.events))
}

func (ui *watchUI) record(msg reloadMsg) {
	at := msg.at.Format(time.TimeOnly)
	if msg.err != nil {
		ui.history = append(ui.history, StyleError.Render(fmt.Sprintf("[%s] reload failed: %v", at, msg.err)))
		return
	}
	ui.history = append(ui.history, StyleEvent.Render(
		fmt.Sprintf("[%s] snapshot %s: %d templates", at, msg.env.ID(), msg.env.Len()),
	))
}

func (ui *watchUI) updateViewportContent() {
	var b strings.Builder
	for _, entry := range ui.last.entries {
		b.WriteString(entryLine(entry))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(strings.Join(ui.history, "\n"))
	b.WriteString("\n")

	ui.viewport.SetContent(lipgloss.NewStyle().Width(ui.viewport.Width).Render(b.String()))
	if ui.followBottom {
		ui.viewport.GotoBottom()
	}
}

//nolint:cyclop
func (ui *watchUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, ui.keys.Quit):
			ui.quitting = true
			ui.stop()
			return ui, tea.Quit
		case key.Matches(msg, ui.keys.Reload):
			store := ui.store
			cmds = append(cmds, func() tea.Msg {
				_, _ = store.Reload()
				return reloadDoneMsg{}
			})
		case key.Matches(msg, ui.keys.Clear):
			ui.history = nil
			ui.updateViewportContent()
		case key.Matches(msg, ui.keys.Help):
			ui.help.ShowAll = !ui.help.ShowAll
		case key.Matches(msg, ui.keys.Up), key.Matches(msg, ui.keys.Down):
			ui.followBottom = ui.viewport.AtBottom()
		case key.Matches(msg, ui.keys.ToTop):
			ui.followBottom = false
			ui.viewport.GotoTop()
		case key.Matches(msg, ui.keys.ToBottom):
			ui.followBottom = true
			ui.viewport.GotoBottom()
		}

	case reloadMsg:
		ui.last = msg
		ui.record(msg)
		if ui.initialised {
			ui.updateViewportContent()
		}
		cmds = append(cmds, waitForReload(ui.events))

	case tea.WindowSizeMsg:
		ui.help.Width = msg.Width
		verticalMargin := lipgloss.Height(ui.headerView()) + lipgloss.Height(ui.footerView())
		if !ui.initialised {
			ui.viewport = viewport.New(msg.Width, msg.Height-verticalMargin)
			ui.viewport.Style = StyleViewport
			ui.initialised = true
		} else {
			ui.viewport.Width = msg.Width
			ui.viewport.Height = msg.Height - verticalMargin
		}
		ui.updateViewportContent()
	}

	ui.spinner, cmd = ui.spinner.Update(msg)
	cmds = append(cmds, cmd)

	ui.viewport, cmd = ui.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return ui, tea.Batch(cmds...)
}

func (ui *watchUI) View() string {
	if ui.quitting {
		return "\nBye!\n"
	}
	if !ui.initialised {
		return fmt.Sprintf("\n%vInitialising…\n", ui.spinner.View())
	}
	return ui.headerView() + ui.viewport.View() + ui.footerView()
}

func (ui *watchUI) headerView() string {
	status := "no snapshot"
	if env := ui.store.Current(); env != nil {
		status = fmt.Sprintf("snapshot %s, loaded %s", env.ID(), env.LoadedAt().Format(time.TimeOnly))
	}
	title := StyleTitle.Width(ui.viewport.Width).
		Render(fmt.Sprintf("%v hermes watch %v", ui.spinner.View(), ui.spinner.View()))
	info := StyleDefault.Width(ui.viewport.Width).
		AlignHorizontal(lipgloss.Center).
		Render(fmt.Sprintf("%s · %s", ui.store.Dir(), status))
	return title + "\n" + info + "\n"
}

func (ui *watchUI) footerView() string {
	helpView := lipgloss.NewStyle().
		Width(ui.viewport.Width).
		AlignHorizontal(lipgloss.Center).
		Render(ui.help.View(ui.keys))

	var errView string
	if err := ui.store.Err(); err != nil {
		errView = "\n" + StyleError.
			Width(ui.viewport.Width).
			AlignHorizontal(lipgloss.Center).
			Render(fmt.Sprintf("[ERROR] %v", err))
	}
	return "\n" + helpView + errView
}

type watchKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	ToTop    key.Binding
	ToBottom key.Binding
	Reload   key.Binding
	Help     key.Binding
	Clear    key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view. It's part
// of the key.Map interface.
func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Reload, k.Help}
}

// FullHelp returns keybindings for the expanded help view. It's part of the
// key.Map interface.
func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.ToTop, k.ToBottom},
		{k.Reload, k.Clear},
		{k.Help, k.Quit},
	}
}
