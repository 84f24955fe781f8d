package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/ekingoksan/docker-cmd-studio/internal/domain"
	"github.com/ekingoksan/docker-cmd-studio/pkg/dockerrun"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#54baff"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// printFieldErrors lists per-field problems of a validation or profile
// error. It reports whether err carried any.
func printFieldErrors(w io.Writer, err error) bool {
	var (
		fields map[string]string
		paths  []string
		verr   *dockerrun.ValidationError
		perr   *domain.ProfileError
	)
	switch {
	case errors.As(err, &verr):
		fields, paths = verr.Fields, verr.Paths()
	case errors.As(err, &perr):
		fields, paths = perr.Fields, perr.Paths()
	default:
		return false
	}

	red := color.New(color.FgRed)
	for _, p := range paths {
		red.Fprintf(w, "  %s: %s\n", p, fields[p])
	}
	return true
}

func printSuccess(w io.Writer, format string, args ...any) {
	color.New(color.FgGreen).Fprintf(w, format+"\n", args...)
}

func printHint(w io.Writer, s string) {
	fmt.Fprintln(w, dimStyle.Render(s))
}
