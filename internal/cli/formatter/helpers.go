package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// Ago renders how long before now t happened.
func Ago(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 14*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(math.Round(diff.Hours()/24)))
	default:
		return t.Format("Jan 2, 2006")
	}
}

// Hours renders an hour amount with at most two decimals.
func Hours(d decimal.Decimal) string {
	return d.Round(2).String() + "h"
}

// NullHours renders optional hours, dimming the absent case.
func NullHours(d decimal.NullDecimal) string {
	if !d.Valid {
		return Dim("--")
	}
	return Hours(d.Decimal)
}

// WeekLabel renders a week as "W10 2025-03-03".
func WeekLabel(start time.Time) string {
	_, wk := start.ISOWeek()
	return fmt.Sprintf("W%02d %s", wk, start.Format(domain.DateLayout))
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return Dim("--")
	}
	return s
}
