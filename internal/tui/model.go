package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rustyeddy/marketinsight/session"
)

// Controller is the session surface the UI drives.
type Controller interface {
	Snapshot() session.State
	SetSymbol(symbol string)
	FetchMarketData(ctx context.Context) error
	GenerateReport(ctx context.Context) error
}

type focus int

const (
	focusInput focus = iota
	focusFetch
	focusGenerate
	focusCount
)

// ── messages ──────────────────────────────────────────────────────────────────

type stateMsg struct{ st session.State }

type opDoneMsg struct{ err error }

// ── model ─────────────────────────────────────────────────────────────────────

// Model is the bubbletea model for the market insight screen.
type Model struct {
	ctx   context.Context
	sess  Controller
	ch    <-chan session.State
	state session.State
	input textinput.Model
	focus focus

	// pending covers the gap between a trigger and the first in-flight state.
	pending bool
	width   int
}

// NewModel builds a model over sess. ch receives session snapshots, see
// Observer.
func NewModel(ctx context.Context, sess Controller, ch <-chan session.State) Model {
	st := sess.Snapshot()

	ti := textinput.New()
	ti.Prompt = "Symbol: "
	ti.Placeholder = session.DefaultSymbol
	ti.SetValue(st.Symbol)
	ti.Focus()

	return Model{
		ctx:   ctx,
		sess:  sess,
		ch:    ch,
		state: st,
		input: ti,
	}
}

// Observer returns a session observer that forwards snapshots to ch without
// blocking. A full channel drops the snapshot; opDoneMsg resyncs afterwards.
func Observer(ch chan<- session.State) func(session.State) {
	return func(st session.State) {
		select {
		case ch <- st:
		default:
		}
	}
}

// ── Init / Update / View ──────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForState(m.ch), textinput.Blink)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case stateMsg:
		m.apply(msg.st)
		return m, waitForState(m.ch)

	case opDoneMsg:
		m.pending = false
		m.apply(m.sess.Snapshot())
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// cursor blink
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return render(m)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// waitForState blocks on the channel and returns a Cmd that fires stateMsg.
func waitForState(ch <-chan session.State) tea.Cmd {
	return func() tea.Msg {
		return stateMsg{<-ch}
	}
}

// apply keeps the newest snapshot; observers may deliver out of order.
func (m *Model) apply(st session.State) {
	if st.Version < m.state.Version {
		return
	}
	m.state = st
}

func (m Model) loading() bool {
	return m.state.Loading || m.pending
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		return m.setFocus((m.focus + 1) % focusCount)
	case "shift+tab":
		return m.setFocus((m.focus + focusCount - 1) % focusCount)
	case "ctrl+f":
		return m.trigger(session.OpFetchMarketData)
	case "ctrl+g":
		return m.trigger(session.OpGenerateReport)
	case "enter":
		if m.focus == focusGenerate {
			return m.trigger(session.OpGenerateReport)
		}
		return m.trigger(session.OpFetchMarketData)
	}

	if m.focus != focusInput {
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.sess.SetSymbol(v)
	}
	return m, cmd
}

func (m Model) setFocus(f focus) (tea.Model, tea.Cmd) {
	m.focus = f
	if f == focusInput {
		return m, m.input.Focus()
	}
	m.input.Blur()
	return m, nil
}

// trigger starts op unless a request is already running.
func (m Model) trigger(op session.Op) (tea.Model, tea.Cmd) {
	if m.loading() {
		return m, nil
	}
	m.pending = true

	ctx, sess := m.ctx, m.sess
	return m, func() tea.Msg {
		var err error
		switch op {
		case session.OpGenerateReport:
			err = sess.GenerateReport(ctx)
		default:
			err = sess.FetchMarketData(ctx)
		}
		if errors.Is(err, session.ErrBusy) {
			err = nil
		}
		return opDoneMsg{err: err}
	}
}

// Run starts the interactive program and blocks until the user quits or
// ctx is done. opts are passed to the bubbletea program.
func Run(ctx context.Context, sess Controller, ch <-chan session.State, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(NewModel(ctx, sess, ch), opts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
