package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/staffplan/internal/cli/formatter"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func huhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorOrange).Bold(true)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorOrange).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorOrange)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorOrange)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// reasonForm collects a rejection reason long enough to pass validation.
func reasonForm(title string, value *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(title).
				Placeholder("Explain what needs to change").
				Value(value).
				Validate(func(s string) error {
					return domain.ValidateRejectionReason(strings.TrimSpace(s))
				}),
		),
	).WithTheme(huhTheme()).WithShowHelp(false)
}

func confirmForm(title string, result *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(result),
		),
	).WithTheme(huhTheme()).WithShowHelp(false)
}

// promptReason returns reason, or asks for one when it is empty and a
// terminal is attached.
func promptReason(app *App, reason, title string) (string, error) {
	if strings.TrimSpace(reason) != "" || !app.interactive() {
		return reason, nil
	}
	if err := reasonForm(title, &reason).Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(reason), nil
}

// confirm asks for a yes/no answer. Without a terminal --yes is required.
func confirm(app *App, yes bool, title string) (bool, error) {
	if yes {
		return true, nil
	}
	if !app.interactive() {
		return false, fmt.Errorf("%s: pass --yes to confirm", title)
	}
	ok := false
	if err := confirmForm(title, &ok).Run(); err != nil {
		return false, err
	}
	return ok, nil
}
