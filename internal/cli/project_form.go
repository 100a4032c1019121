package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/phaseboard/timeline/internal/cli/formatter"
	"github.com/phaseboard/timeline/internal/domain"
)

// projectInput backs the interactive project form.
type projectInput struct {
	Title string
	Start string
	Suite bool
}

func (in projectInput) parse() (string, time.Time, bool, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "", time.Time{}, false, fmt.Errorf("title is required")
	}
	start, err := domain.ParseDate(in.Start)
	if err != nil {
		return "", time.Time{}, false, fmt.Errorf("invalid start date %q: %w", in.Start, err)
	}
	return title, start, in.Suite, nil
}

func timelineHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

func validateDate(s string) error {
	if _, err := domain.ParseDate(s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	return nil
}

// projectForm asks for title, start date and whether to add the suite.
func projectForm(in *projectInput) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&in.Title).
				Validate(validateTitle),
			huh.NewInput().
				Title("Start (YYYY-MM-DD)").
				Placeholder(in.Start).
				Value(&in.Start).
				Validate(validateDate),
			huh.NewConfirm().
				Title("Create suite").
				Description("Add the configured phases to the new project").
				Affirmative("Yes").
				Negative("No").
				Value(&in.Suite),
		),
	).WithTheme(timelineHuhTheme()).WithShowHelp(false)
}
