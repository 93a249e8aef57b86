// Package tui is the interactive terminal browser. It drives a shell from a
// command line and redraws whenever the store publishes a new state.
//
// Store actions run in bubbletea commands, off the event loop. Store
// listeners only signal a buffered channel, so a slow redraw never holds up
// a store transition.
package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mesh-intelligence/activities/internal/shell"
	"github.com/mesh-intelligence/activities/internal/store"
	"github.com/mesh-intelligence/activities/internal/views"
)

// refreshInterval paces redraws so expired toasts disappear.
const refreshInterval = time.Second

const maxHistory = 50

// changedMsg reports that the store published a new state.
type changedMsg struct{}

// tickMsg triggers a periodic redraw.
type tickMsg time.Time

// doneMsg carries the outcome of a store-backed command.
type doneMsg struct {
	status string
	err    error
}

// Model is the bubbletea model for the browser.
type Model struct {
	ctx     context.Context
	shell   *shell.Shell
	changes <-chan struct{}

	input        textinput.Model
	history      []string
	historyIndex int
	currentInput string

	status   string
	busy     int
	quitting bool
}

// Watch subscribes to st and returns a channel that receives a value after
// state transitions. Notifications that arrive while one is pending are
// coalesced. The returned function unsubscribes.
func Watch(st *store.Store) (<-chan struct{}, func()) {
	changes := make(chan struct{}, 1)
	unsubscribe := st.Subscribe(func(store.State) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	return changes, unsubscribe
}

// New creates a browser model over sh. changes is typically the channel
// returned by Watch.
func New(ctx context.Context, sh *shell.Shell, changes <-chan struct{}) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "/activities"
	ti.CharLimit = 1024
	ti.Width = 80
	ti.Focus()

	return Model{
		ctx:          ctx,
		shell:        sh,
		changes:      changes,
		input:        ti,
		historyIndex: -1,
		status:       helpText,
	}
}

// Run starts the browser on in/out and blocks until the user quits or ctx
// is canceled.
func Run(ctx context.Context, sh *shell.Shell, st *store.Store, in io.Reader, out io.Writer) error {
	changes, unsubscribe := Watch(st)
	defer unsubscribe()

	p := tea.NewProgram(New(ctx, sh, changes),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func waitForChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		<-changes
		return changedMsg{}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForChange(m.changes), tick())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		return m, waitForChange(m.changes)

	case tickMsg:
		return m, tick()

	case doneMsg:
		m.busy--
		switch {
		case msg.err != nil:
			m.status = msg.err.Error()
		case msg.status != "":
			m.status = msg.status
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			m.quitting = true
			m.shell.Close()
			return m, tea.Quit

		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			m.historyIndex = -1
			if line == "" {
				return m, nil
			}
			m.addToHistory(line)
			return m.execute(line)

		case tea.KeyUp:
			if len(m.history) == 0 {
				return m, nil
			}
			if m.historyIndex == -1 {
				m.currentInput = m.input.Value()
				m.historyIndex = len(m.history) - 1
			} else if m.historyIndex > 0 {
				m.historyIndex--
			}
			m.input.SetValue(m.history[m.historyIndex])
			m.input.CursorEnd()
			return m, nil

		case tea.KeyDown:
			if m.historyIndex == -1 {
				return m, nil
			}
			if m.historyIndex < len(m.history)-1 {
				m.historyIndex++
				m.input.SetValue(m.history[m.historyIndex])
			} else {
				m.historyIndex = -1
				m.input.SetValue(m.currentInput)
			}
			m.input.CursorEnd()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// execute runs one command line. Commands that reach the API are returned
// as tea.Cmds.
func (m Model) execute(line string) (tea.Model, tea.Cmd) {
	c, err := Parse(line)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}

	sh, ctx := m.shell, m.ctx
	switch c.Action {
	case ActionQuit:
		m.quitting = true
		sh.Close()
		return m, tea.Quit

	case ActionHelp:
		m.status = helpText
		return m, nil

	case ActionDismiss:
		sh.Toasts().Dismiss()
		m.status = ""
		return m, nil

	case ActionSet:
		if err := sh.SetField(c.Field, c.Value); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = c.Field + " updated"
		return m, nil

	case ActionNavigate:
		m.busy++
		return m, func() tea.Msg {
			match := sh.Navigate(ctx, c.Path)
			return doneMsg{status: match.Path}
		}

	case ActionSubmit:
		m.busy++
		return m, func() tea.Msg {
			saved, err := sh.Submit(ctx)
			if err != nil {
				return doneMsg{err: err}
			}
			return doneMsg{status: "saved " + saved.ID}
		}

	case ActionDelete:
		m.busy++
		return m, func() tea.Msg {
			if err := sh.Delete(ctx, c.ID); err != nil {
				return doneMsg{err: err}
			}
			return doneMsg{status: "deleted " + c.ID}
		}
	}
	return m, nil
}

func (m *Model) addToHistory(line string) {
	if n := len(m.history); n > 0 && m.history[n-1] == line {
		return
	}
	m.history = append(m.history, line)
	if len(m.history) > maxHistory {
		m.history = m.history[1:]
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	m.shell.Render(&b)
	b.WriteString("\n")
	status := m.status
	if m.busy > 0 {
		status = "working..."
	}
	if status != "" {
		b.WriteString(views.Styles.Muted.Render(status))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	return b.String()
}
