package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/marketinsight/insight"
	"github.com/rustyeddy/marketinsight/session"
)

func newTestModel(t *testing.T, handler http.HandlerFunc) (Model, *session.Session, chan session.State) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	ch := make(chan session.State, 16)
	sess := session.New(insight.NewClient(server.URL), session.WithObserver(Observer(ch)))
	return NewModel(context.Background(), sess, ch), sess, ch
}

func marketDataHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/market-data/"):
			rows := make([]map[string]any, 0, 7)
			for i := 1; i <= 7; i++ {
				rows = append(rows, map[string]any{
					"Date":  fmt.Sprintf("2024-01-0%d", i),
					"Close": 100 + float64(i),
				})
			}
			assert.NoError(t, json.NewEncoder(w).Encode(map[string]any{
				"success":      true,
				"symbol":       strings.TrimPrefix(r.URL.Path, "/market-data/"),
				"latest_price": 100.5,
				"data":         rows,
			}))
		case r.URL.Path == "/reports/generate":
			assert.NoError(t, json.NewEncoder(w).Encode(map[string]any{
				"success":     true,
				"report_path": "reports/x.pdf",
			}))
		default:
			http.NotFound(w, r)
		}
	}
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestView_Initial(t *testing.T) {
	m, _, _ := newTestModel(t, marketDataHandler(t))

	view := m.View()
	assert.Contains(t, view, "MarketInsight Pro")
	assert.Contains(t, view, "Symbol: ")
	assert.Contains(t, view, "BANKNIFTY")
	assert.True(t, m.input.Focused())
	assert.Contains(t, view, fetchLabel)
	assert.Contains(t, view, generateLabel)
	assert.NotContains(t, view, "Latest Close")
	assert.NotContains(t, view, "Error")
}

func TestTyping_UpdatesSessionSymbol(t *testing.T) {
	m, sess, _ := newTestModel(t, marketDataHandler(t))

	for range len("BANKNIFTY") {
		m, _ = update(t, m, key(tea.KeyBackspace))
	}
	assert.Equal(t, "", sess.Snapshot().Symbol)

	// extra backspace on empty input is a no-op
	m, _ = update(t, m, key(tea.KeyBackspace))

	m, _ = update(t, m, runes("NIF"))
	m, _ = update(t, m, runes("TY"))
	assert.Equal(t, "NIFTY", sess.Snapshot().Symbol)
	assert.Equal(t, "NIFTY", m.input.Value())
	assert.Contains(t, m.View(), "NIFTY")
}

func TestTyping_IgnoredOffInput(t *testing.T) {
	m, sess, _ := newTestModel(t, marketDataHandler(t))

	m, _ = update(t, m, key(tea.KeyTab))
	m, _ = update(t, m, runes("X"))
	assert.Equal(t, "BANKNIFTY", sess.Snapshot().Symbol)
	assert.False(t, m.input.Focused())
	assert.Equal(t, "BANKNIFTY", m.input.Value())
}

func TestFocusCycle(t *testing.T) {
	m, _, _ := newTestModel(t, marketDataHandler(t))

	tests := []struct {
		key  tea.KeyType
		want focus
	}{
		{tea.KeyTab, focusFetch},
		{tea.KeyTab, focusGenerate},
		{tea.KeyTab, focusInput},
		{tea.KeyShiftTab, focusGenerate},
		{tea.KeyShiftTab, focusFetch},
	}
	for _, tt := range tests {
		m, _ = update(t, m, key(tt.key))
		assert.Equal(t, tt.want, m.focus)
		assert.Equal(t, tt.want == focusInput, m.input.Focused())
	}
}

func TestFetch_EnterOnInput(t *testing.T) {
	m, _, _ := newTestModel(t, marketDataHandler(t))

	m, cmd := update(t, m, key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), loadingLabel)

	// buttons are disabled until the request completes
	_, again := update(t, m, key(tea.KeyCtrlG))
	assert.Nil(t, again)

	m, _ = update(t, m, cmd())
	assert.False(t, m.loading())

	view := m.View()
	assert.Contains(t, view, fetchLabel)
	assert.Contains(t, view, "Data fetched successfully for BANKNIFTY. Latest Price: 100.5")
	assert.Contains(t, view, "Latest Close: 100.5")
	assert.Contains(t, view, "Last 5 candles:")
	assert.NotContains(t, view, "2024-01-02")
	for i := 3; i <= 7; i++ {
		assert.Contains(t, view, fmt.Sprintf("Date: 2024-01-0%d, Close: %d.00", i, 100+i))
	}
	assert.Less(t, strings.Index(view, "2024-01-03"), strings.Index(view, "2024-01-07"))
}

func TestGenerate_EnterOnButton(t *testing.T) {
	m, sess, _ := newTestModel(t, marketDataHandler(t))

	m, _ = update(t, m, key(tea.KeyShiftTab))
	require.Equal(t, focusGenerate, m.focus)

	m, cmd := update(t, m, key(tea.KeyEnter))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.Contains(t, m.View(), "Report generated successfully! Path: reports/x.pdf")
	assert.Nil(t, sess.Snapshot().Data)
}

func TestFetch_ServerError(t *testing.T) {
	m, _, _ := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"bad symbol"}`))
	})

	m, cmd := update(t, m, key(tea.KeyCtrlF))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	view := m.View()
	assert.Contains(t, view, "Error: bad symbol")
	assert.NotContains(t, view, "Latest Close")
}

func TestStateMessages(t *testing.T) {
	m, sess, ch := newTestModel(t, marketDataHandler(t))

	sess.SetSymbol("SENSEX")
	require.NotNil(t, m.Init())
	m, cmd := update(t, m, waitForState(ch)())
	require.NotNil(t, cmd, "keeps listening")
	assert.Equal(t, "SENSEX", m.state.Symbol)

	// an older snapshot never overwrites a newer one
	stale := m.state
	stale.Version--
	stale.Symbol = "OLD"
	m, _ = update(t, m, stateMsg{stale})
	assert.Equal(t, "SENSEX", m.state.Symbol)

	assert.Empty(t, ch)
}

func TestObserver_DoesNotBlock(t *testing.T) {
	ch := make(chan session.State, 1)
	obs := Observer(ch)

	obs(session.State{Version: 1})
	obs(session.State{Version: 2})

	got := <-ch
	assert.Equal(t, uint64(1), got.Version)
	assert.Empty(t, ch)
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t, marketDataHandler(t))

	for _, k := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		_, cmd := update(t, m, key(k))
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}
