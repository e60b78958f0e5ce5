package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette, in 256-color codes so output looks the same in most terminals.
var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorFail   = lipgloss.Color("167")
	colorCmd    = lipgloss.Color("75")
	colorText   = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleDim       = lipgloss.NewStyle().Foreground(colorFaint)
	StyleValue     = lipgloss.NewStyle().Foreground(colorText)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleCached      = lipgloss.NewStyle().Foreground(colorOK)
	styleComputed    = lipgloss.NewStyle().Foreground(colorMuted)
	styleCommand     = lipgloss.NewStyle().Foreground(colorCmd)
)

// statusLine is one icon-prefixed line of command output.
type statusLine struct {
	icon  string
	color lipgloss.Color
	// body styles the message; nil prints it plain.
	body *lipgloss.Style
}

var (
	lineSuccess = statusLine{icon: "✓", color: colorOK}
	lineError   = statusLine{icon: "✗", color: colorFail}
	lineWarning = statusLine{icon: "!", color: colorWarn, body: &StyleWarning}
	lineInfo    = statusLine{icon: "›", color: colorMuted}
)

const iconArrow = "→"

func (l statusLine) print(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if l.body != nil {
		msg = l.body.Render(msg)
	}
	fmt.Println(lipgloss.NewStyle().Foreground(l.color).Render(l.icon) + " " + msg)
}

func printSuccess(format string, args ...any) { lineSuccess.print(format, args...) }
func printError(format string, args ...any)   { lineError.print(format, args...) }
func printWarning(format string, args ...any) { lineWarning.print(format, args...) }
func printInfo(format string, args ...any)    { lineInfo.print(format, args...) }

// printDetail prints an indented, muted line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints an output file line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printNextStep prints a suggested follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// routeSummary is the one-line digest printed after a diagram is routed.
type routeSummary struct {
	Nodes     int
	Routes    int
	Crossings int
	Dangling  int
	Cached    bool
}

// String renders the summary as "3 nodes · 2 routes · 0 crossings · fresh".
func (s routeSummary) String() string {
	parts := []string{
		fmt.Sprintf("%d nodes", s.Nodes),
		fmt.Sprintf("%d routes", s.Routes),
		fmt.Sprintf("%d crossings", s.Crossings),
	}
	if s.Dangling > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d dangling", s.Dangling)))
	}
	if s.Cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, styleComputed.Render("fresh"))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

// printRouteSummary prints s indented under the preceding status line.
func printRouteSummary(s routeSummary) {
	fmt.Println("  " + s.String())
}
