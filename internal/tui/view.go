package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rustyeddy/marketinsight/market"
)

// ── styles ────────────────────────────────────────────────────────────────────

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#aaaaaa"))
	buttonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#aaaaaa"))
	focusedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#26a641"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e05c5c"))
	statusStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#555555")).
			Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
)

const (
	title         = "MarketInsight Pro"
	fetchLabel    = "[ Fetch Market Data ]"
	loadingLabel  = "[ Processing... ]"
	generateLabel = "[ Generate Report ]"
	footer        = "[tab] focus  [enter] select  [ctrl+f] fetch  [ctrl+g] report  [esc] quit"
)

func render(m Model) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(renderInput(m))
	b.WriteString("\n\n")

	b.WriteString(renderButtons(m))
	b.WriteString("\n")

	if st := m.state.Status; st != "" {
		text := st
		if strings.HasPrefix(st, "Error: ") {
			text = errorStyle.Render(st)
		}
		b.WriteString(statusStyle.Render(text))
		b.WriteString("\n")
	}

	if md := m.state.Data; md != nil {
		b.WriteString(renderPreview(md))
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render(footer))
	return b.String()
}

func renderInput(m Model) string {
	return m.input.View()
}

func renderButtons(m Model) string {
	fetch := fetchLabel
	if m.loading() {
		fetch = loadingLabel
	}
	return button(m, fetch, focusFetch) + "  " + button(m, generateLabel, focusGenerate)
}

func button(m Model, label string, f focus) string {
	switch {
	case m.loading():
		return dimStyle.Render(label)
	case m.focus == f:
		return focusedStyle.Render(label)
	default:
		return buttonStyle.Render(label)
	}
}

func renderPreview(md *market.MarketData) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("Latest Close: " + md.PriceString())
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Last 5 candles:"))
	b.WriteString("\n")
	for _, line := range market.Preview(md, market.PreviewSize) {
		b.WriteString("  ")
		b.WriteString(line.String())
		b.WriteString("\n")
	}
	return b.String()
}
