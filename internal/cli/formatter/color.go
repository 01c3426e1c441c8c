package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/staffplan/internal/capacity"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorOrange = lipgloss.Color("#fe8019")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleOrange = lipgloss.NewStyle().Foreground(ColorOrange)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorOrange).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// DisableColor renders every style as plain text.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// TierStyle colors a capacity tier from idle green to overloaded red.
func TierStyle(t capacity.Tier) lipgloss.Style {
	switch t {
	case capacity.TierAvailable:
		return StyleGreen
	case capacity.TierPartiallyBusy:
		return StyleBlue
	case capacity.TierBusy, capacity.TierFull:
		return StyleYellow
	case capacity.TierOverloaded, capacity.TierOver:
		return StyleRed
	default:
		return StyleDim
	}
}

// TierBadge renders a tier such as "● partially busy".
func TierBadge(t capacity.Tier) string {
	return TierStyle(t).Render("● " + strings.ReplaceAll(string(t), "_", " "))
}

// PhaseStatusPill returns a colored indicator for an allocation status.
func PhaseStatusPill(s domain.PhaseApprovalStatus) string {
	switch s {
	case domain.PhasePending:
		return StyleYellow.Render("○ Pending")
	case domain.PhaseApproved:
		return StyleGreen.Render("● Approved")
	case domain.PhaseRejected:
		return StyleRed.Render("✖ Rejected")
	case domain.PhaseDeletionPending:
		return StyleOrange.Render("⊘ Deletion pending")
	case domain.PhaseExpired:
		return StyleDim.Render("◌ Expired")
	case domain.PhaseForfeited:
		return StyleDim.Render("◌ Forfeited")
	default:
		return StyleDim.Render(string(s))
	}
}

// WeekStatusPill returns a colored indicator for a weekly planning status.
func WeekStatusPill(s domain.WeeklyPlanningStatus) string {
	switch s {
	case domain.WeeklyPending:
		return StyleYellow.Render("○ Pending")
	case domain.WeeklyApproved:
		return StyleGreen.Render("● Approved")
	case domain.WeeklyModified:
		return StyleBlue.Render("◐ Modified")
	case domain.WeeklyRejected:
		return StyleRed.Render("✖ Rejected")
	default:
		return StyleDim.Render(string(s))
	}
}

// Header renders a section header with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
