// Package tui provides the BubbleTea-based toast playground.
//
// Keys pop the convenience toasts into a real manager, the renderer draws
// them in their corners, and the expiry sweeper runs for as long as the
// program does.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/toastd/internal/adapter/input"
	"github.com/jmylchreest/toastd/internal/adapter/output"
	"github.com/jmylchreest/toastd/internal/config"
	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/render"
	"github.com/jmylchreest/toastd/internal/theme"
	"github.com/jmylchreest/toastd/internal/toast"
)

// refreshInterval redraws remaining lifetimes even when nothing changed.
const refreshInterval = time.Second

// Model is the main TUI model.
type Model struct {
	// Configuration
	cfg      *config.Config
	manager  *toast.Manager
	renderer *render.Renderer

	// Components
	help help.Model
	keys KeyMap

	// State
	buckets   toast.Buckets
	position  model.Position
	permanent bool
	counter   int
	width     int
	height    int
	ready     bool
	showHelp  bool
	now       func() time.Time

	// Status message
	statusMsg string
	statusErr bool

	clipboardCommand string

	// Refresh channel subscription
	refreshCh <-chan toast.ChangeEvent
}

// New creates a new TUI model driving manager.
func New(cfg *config.Config, manager *toast.Manager) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	m := Model{
		cfg:      cfg,
		manager:  manager,
		renderer: newRenderer(cfg, nil),
		help:     help.New(),
		keys:     DefaultKeyMap(),
		position: cfg.Defaults.DefaultPosition(),
		now:      time.Now,
	}

	m.refreshCh = manager.Subscribe()
	return m
}

func newRenderer(cfg *config.Config, t *theme.Theme) *render.Renderer {
	return render.NewRenderer(render.Options{
		Width:    cfg.Render.Width,
		ShowIDs:  cfg.Render.ShowIDs,
		ShowTime: true,
		Theme:    t,
	})
}

// WithTheme returns a copy of m drawing with t.
func (m Model) WithTheme(t *theme.Theme) Model {
	m.renderer = newRenderer(m.cfg, t)
	return m
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadToasts,
		m.watchForChanges,
		tick(),
	)
}

// loadToasts requests an initial snapshot.
func (m Model) loadToasts() tea.Msg {
	return refreshMsg{}
}

// watchForChanges waits for the next manager change.
func (m Model) watchForChanges() tea.Msg {
	if m.refreshCh == nil {
		return nil
	}
	if _, ok := <-m.refreshCh; !ok {
		return nil
	}
	return changeMsg{}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type refreshMsg struct{}

type changeMsg struct{}

type tickMsg time.Time

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	err error
}

type themeMsg struct {
	theme *theme.Theme
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case refreshMsg:
		m.buckets = m.manager.Buckets()
		return m, nil

	case changeMsg:
		m.buckets = m.manager.Buckets()
		return m, m.watchForChanges

	case tickMsg:
		return m, tick()

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case themeMsg:
		m = m.WithTheme(msg.theme)
		return m, status("Theme "+msg.theme.Name+" reloaded", false)

	case copyResultMsg:
		if msg.err != nil {
			return m, status("Copy failed: "+msg.err.Error(), true)
		}
		return m, status("Copied to clipboard", false)
	}

	return m, nil
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if c, ok := m.demoContent(msg); ok {
		m.counter++
		c.Body = fmt.Sprintf("%s (#%d)", c.Body, m.counter)
		return m.popup(c)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Position):
		positions := model.Positions()
		m.position = positions[(int(m.position)+1)%len(positions)]
		return m, status("New toasts go to "+m.position.String(), false)

	case key.Matches(msg, m.keys.Sticky):
		m.permanent = !m.permanent
		if m.permanent {
			return m, status("New toasts stay until closed", false)
		}
		return m, status("New toasts expire", false)

	case key.Matches(msg, m.keys.DismissNewest):
		return m.dismiss(true)
	case key.Matches(msg, m.keys.DismissOldest):
		return m.dismiss(false)

	case key.Matches(msg, m.keys.Clear):
		n := m.manager.Clear()
		return m, status(fmt.Sprintf("Cleared %d toast(s)", n), false)

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyAll()
	}

	return m, nil
}

// demoContent returns the toast a popup key stands for.
func (m Model) demoContent(msg tea.KeyMsg) (model.Content, bool) {
	switch {
	case key.Matches(msg, m.keys.Simple):
		return model.Simple("Hello from toastd"), true
	case key.Matches(msg, m.keys.Success):
		return model.Success("Everything went fine", "Success"), true
	case key.Matches(msg, m.keys.Warning):
		return model.Warning("Something looks off", "Warning"), true
	case key.Matches(msg, m.keys.Info):
		return model.Info("Just so you know", "Info"), true
	case key.Matches(msg, m.keys.Error):
		return model.Error("Something broke", "Error"), true
	case key.Matches(msg, m.keys.Corner):
		return model.Info("Pinned to the top right", "Top right").At(model.PositionTopRight), true
	default:
		return model.Content{}, false
	}
}

// popup applies the interactive position and lifetime choices, then pops content.
// The corner key keeps its own position.
func (m Model) popup(c model.Content) (tea.Model, tea.Cmd) {
	if c.Position == model.PositionBottomLeft {
		c.Position = m.position
	}
	if m.permanent {
		c = c.Permanent()
	} else if c.HideAfter != nil {
		c = c.WithHideAfter(m.cfg.Defaults.HideAfter.Duration())
	}
	m.manager.Popup(c)
	return m, nil
}

func (m Model) dismiss(newest bool) (tea.Model, tea.Cmd) {
	records := m.manager.Snapshot()
	if len(records) == 0 {
		return m, status("Nothing to dismiss", true)
	}
	target := records[0]
	if newest {
		target = records[len(records)-1]
	}
	m.manager.Remove(target.ID)
	return m, nil
}

// copyAll copies the live toasts to the clipboard as YAML.
func (m Model) copyAll() tea.Cmd {
	records := m.manager.Snapshot()
	command := m.clipboardCommand
	return func() tea.Msg {
		var buf bytes.Buffer
		if err := output.NewYAMLFormatter(output.FormatterOptions{}).Format(&buf, records); err != nil {
			return copyResultMsg{err: err}
		}
		return copyResultMsg{err: copyText(buf.String(), command)}
	}
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	footer := m.footer()
	height := max(m.height-lipgloss.Height(footer), 0)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderer.Screen(m.buckets, m.width, height, m.now()),
		footer,
	)
}

func (m Model) footer() string {
	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		return statusStyle.Render(m.statusMsg)
	}

	counts := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(
		fmt.Sprintf("%d/%d live · %s", m.buckets.Len(), m.manager.Capacity(), m.position))

	if m.showHelp {
		return counts + "\n" + m.help.FullHelpView(m.keys.FullHelp())
	}
	return counts + "  " + m.help.ShortHelpView(m.keys.ShortHelp())
}

// RunOptions configures the TUI.
type RunOptions struct {
	Config           *config.Config
	Manager          *toast.Manager     // nil = new manager from Config
	Adapter          input.InputAdapter // Seeds toasts before the program starts
	ClipboardCommand string             // Auto-detected if empty
	Themes           *theme.Loader      // nil = load render.theme from Config
	Logger           *slog.Logger
}

// Run starts the TUI and blocks until it exits.
// Unless the manager already sweeps, the expiry sweeper runs for exactly
// the lifetime of the program.
func Run(ctx context.Context, opts RunOptions) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	mgr := opts.Manager
	if mgr == nil {
		mgr = toast.NewManager(cfg.Manager.Capacity, opts.Logger)
		defer mgr.Close()
	}

	var programOpts []tea.ProgramOption
	programOpts = append(programOpts, tea.WithAltScreen(), tea.WithContext(ctx))

	if opts.Adapter != nil {
		importCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		_, err := importFromAdapter(importCtx, opts.Adapter, mgr)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to import toasts: %w", err)
		}
		// stdin was consumed by the adapter; read keys from the terminal
		programOpts = append(programOpts, tea.WithInputTTY())
	}

	// A daemon-owned manager already sweeps
	if !mgr.SweeperRunning() {
		sweepCtx, stopSweeper := context.WithCancel(ctx)
		defer stopSweeper()
		mgr.StartSweeper(sweepCtx, cfg.Manager.SweepInterval.Duration())
	}

	themes := opts.Themes
	if themes == nil {
		themes = theme.NewLoader("", opts.Logger)
		_ = themes.LoadTheme(cfg.Render.Theme)
	}

	m := New(cfg, mgr).WithTheme(themes.Theme())
	m.clipboardCommand = opts.ClipboardCommand
	defer mgr.Unsubscribe(m.refreshCh)

	p := tea.NewProgram(m, programOpts...)
	themes.SetChangeCallback(func(t *theme.Theme) {
		p.Send(themeMsg{theme: t})
	})
	themes.StartHotReload(ctx)
	defer themes.StopHotReload()

	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
