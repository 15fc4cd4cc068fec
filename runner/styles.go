package runner

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Color modes accepted by UseColor.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// UseColor decides whether output to w is styled. In auto mode colour is on
// for terminals unless NO_COLOR is set.
func UseColor(mode string, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	f, ok := w.(*os.File)

	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// Styles holds the lipgloss styles of the text report.
type Styles struct {
	Banner  lipgloss.Style
	Name    lipgloss.Style
	Heading lipgloss.Style
	Value   lipgloss.Style
	Pass    lipgloss.Style
	Fail    lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles creates the report styles for w. With color off every style
// renders text unchanged.
func NewStyles(w io.Writer, color bool) *Styles {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	return &Styles{
		Banner:  r.NewStyle().Foreground(lipgloss.Color("240")),
		Name:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
		Heading: r.NewStyle().Bold(true),
		Value:   r.NewStyle().Foreground(lipgloss.Color("252")),
		Pass:    r.NewStyle().Foreground(lipgloss.Color("78")),
		Fail:    r.NewStyle().Foreground(lipgloss.Color("203")),
		Error:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Muted:   r.NewStyle().Faint(true),
	}
}
