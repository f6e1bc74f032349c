package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Tone picks the colour of a summary value.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneGood
	ToneWarn
)

type SummaryRow struct {
	Label string
	Value string
	Tone  Tone
}

// RenderSummary draws rows as a two-column table between horizontal rules.
func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		labelWidth = max(labelWidth, len(row.Label))
		valueWidth = max(valueWidth, len(row.Value))
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		lines = append(lines, fmt.Sprintf("%s | %s", labelStyle.Render(label), valueStyleFor(row.Tone).Render(value)))
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

func valueStyleFor(tone Tone) lipgloss.Style {
	switch tone {
	case ToneGood:
		return valueStyle.Foreground(ColorSuccess)
	case ToneWarn:
		return valueStyle.Foreground(ColorWarn)
	default:
		return valueStyle
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

var valueStyle = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
