package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleStatusNight = lipgloss.NewStyle().
				Background(lipgloss.Color("53")).
				Foreground(lipgloss.Color("225")).
				Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleHit = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	styleDanger = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleMap = lipgloss.NewStyle().
			Foreground(lipgloss.Color("150"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleRefusal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	styleTriumph = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindHit
	kindDanger
	kindMap
	kindSystem
	kindRefusal
	kindTriumph
	kindTrace
)

// refusalPrefixes open the messages for commands that were turned down.
var refusalPrefixes = []string{
	"No action points",
	"Not enough",
	"Cannot ",
	"Unknown ",
	"Usage:",
	"That can only",
	"There is no",
	"There is nothing",
	"You cannot",
}

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "Victory!"), strings.HasPrefix(line, "Dawn breaks."):
		return kindTriumph
	case strings.Contains(line, "reaches the keep"),
		strings.HasPrefix(line, "Miss:"),
		strings.HasPrefix(line, "The keep has fallen"),
		strings.HasPrefix(line, "A champion of the dark"):
		return kindDanger
	case strings.Contains(line, "' falls."),
		strings.Contains(line, "' staggers"),
		strings.HasPrefix(line, "Tower at"):
		return kindHit
	case isMapRow(line):
		return kindMap
	}
	for _, p := range refusalPrefixes {
		if strings.HasPrefix(line, p) {
			return kindRefusal
		}
	}
	return kindNarrative
}

// mapGlyphs holds every rune a map row can contain: terrain, markers and
// upper-case structure initials.
const mapGlyphs = " .fh~^@!?ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// isMapRow reports whether line is a row of the map grid.
func isMapRow(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	for _, r := range line {
		if !strings.ContainsRune(mapGlyphs, r) {
			return false
		}
	}
	return strings.ContainsAny(line, ".fh~^@")
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindHit:
		return styleHit.Render(line)
	case kindDanger:
		return styleDanger.Render(line)
	case kindMap:
		return styleMap.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindRefusal:
		return styleRefusal.Render(line)
	case kindTriumph:
		return styleTriumph.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
