package analysis

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/budget"
	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/metrics"
)

// Styles contains all styling definitions for report formatting.
type Styles struct {
	// Base styles from CLI package
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Subtle   lipgloss.Style
	Normal   lipgloss.Style
	Income   lipgloss.Style
	Expense  lipgloss.Style

	Box           lipgloss.Style
	InsightBox    lipgloss.Style
	Score         lipgloss.Style
	Header        lipgloss.Style
	Critical      lipgloss.Style
	Suggestion    lipgloss.Style
	ProgressFill  lipgloss.Style
	ProgressEmpty lipgloss.Style
}

// NewStyles creates a new Styles instance with default styling.
func NewStyles() *Styles {
	s := &Styles{
		Title:    cli.TitleStyle,
		Subtitle: cli.SubtitleStyle,
		Success:  cli.SuccessStyle,
		Warning:  cli.WarningStyle,
		Error:    cli.ErrorStyle,
		Info:     cli.InfoStyle,
		Subtle:   cli.SubtleStyle,
		Normal:   lipgloss.NewStyle(),
		Income:   cli.IncomeStyle,
		Expense:  cli.ExpenseStyle,
	}

	s.Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(cli.SubtleColor).
		Padding(0, 1)

	s.InsightBox = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(cli.InfoColor).
		Padding(0, 1).
		MarginTop(1)

	s.Score = lipgloss.NewStyle().
		Bold(true).
		Foreground(cli.PrimaryColor)

	s.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(cli.SubtleColor)

	s.Critical = lipgloss.NewStyle().
		Bold(true).
		Foreground(cli.ErrorColor).
		Background(lipgloss.Color("#2D0000"))

	s.Suggestion = lipgloss.NewStyle().
		Foreground(cli.InfoColor)

	s.ProgressFill = lipgloss.NewStyle().
		Foreground(cli.PrimaryColor)

	s.ProgressEmpty = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#333333"))

	return s
}

// WithWidth returns a copy with boxes fitted to a narrow terminal.
func (s *Styles) WithWidth(width int) *Styles {
	newStyles := *s
	if width > 0 && width < 100 {
		newStyles.Box = s.Box.Width(width - 4)
		newStyles.InsightBox = s.InsightBox.Width(width - 4)
	}
	return &newStyles
}

// ForSeverity returns the style of an insight severity.
func (s *Styles) ForSeverity(severity metrics.Severity) lipgloss.Style {
	switch severity {
	case metrics.SeverityCritical:
		return s.Critical
	case metrics.SeverityWarning:
		return s.Warning
	case metrics.SeveritySuggestion:
		return s.Suggestion
	default:
		return s.Normal
	}
}

// ForBand returns the style of a health band.
func (s *Styles) ForBand(band metrics.Band) lipgloss.Style {
	switch band {
	case metrics.BandExcellent, metrics.BandGood:
		return s.Success
	case metrics.BandFair:
		return s.Warning
	default:
		return s.Error
	}
}

// ForLevel returns the style of a budget alert level.
func (s *Styles) ForLevel(level budget.Level) lipgloss.Style {
	switch level {
	case budget.LevelSafe:
		return s.Success
	case budget.LevelWarning:
		return s.Warning
	case budget.LevelDanger:
		return s.Error
	case budget.LevelExceeded:
		return s.Critical
	default:
		return s.Normal
	}
}

// ForAmount colors an amount by sign.
func (s *Styles) ForAmount(d decimal.Decimal) lipgloss.Style {
	switch {
	case d.IsNegative():
		return s.Expense
	case d.IsPositive():
		return s.Income
	default:
		return s.Normal
	}
}

// RenderProgressBar creates a progress bar for progress in [0, 1]. Values
// outside the range are clamped.
func (s *Styles) RenderProgressBar(progress float64, width int) string {
	if width <= 0 {
		width = 30
	}

	filled := int(float64(width) * progress)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	// Raw characters keep the visible width exact.
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// RenderBox renders content in a styled box with an optional title line.
func (s *Styles) RenderBox(content string, title string, style lipgloss.Style) string {
	if title != "" {
		titleStyled := s.Info.Bold(true).Render(" " + title + " ")
		return style.Render(titleStyled + "\n" + content)
	}
	return style.Render(content)
}
