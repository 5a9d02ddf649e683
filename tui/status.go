package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nathoo/nightkeep/types"
)

// phaseLabel is the status bar name of a phase.
func phaseLabel(p types.Phase) string {
	switch p {
	case types.PhaseNight:
		return "Night"
	case types.PhaseGameOver:
		return "Fallen"
	case types.PhaseVictory:
		return "Victory"
	default:
		return "Day"
	}
}

// statusFields returns the left and right halves of the status bar.
func statusFields(s *types.GameState) (string, string) {
	left := fmt.Sprintf(" Day %d | %s | HP %d/%d | AP %d/%d | Gold %d | Threat %d",
		s.Day, phaseLabel(s.Phase), s.Hp, s.HpMax, s.Ap, s.ApMax, s.Gold, s.Threat)

	var right string
	if s.Phase == types.PhaseNight {
		right = fmt.Sprintf("Enemies %d +%d ", len(s.Enemies), s.NightSpawnRemaining)
	} else {
		right = fmt.Sprintf("W%d S%d F%d ",
			s.Resources[types.ResourceWood], s.Resources[types.ResourceStone], s.Resources[types.ResourceFood])
	}
	return left, right
}

// renderStatusBar produces a full-width status line. At night it turns
// purple and lists the enemies still on the field or to come.
func (m Model) renderStatusBar() string {
	s := m.host.Engine.State
	left, right := statusFields(s)

	// Show enemy words at night if they fit.
	if s.Phase == types.PhaseNight && len(s.Enemies) > 0 {
		words := make([]string, 0, len(s.Enemies))
		for _, e := range s.Enemies {
			words = append(words, fmt.Sprintf("%s:%d", e.Word, e.Dist))
		}
		candidate := strings.Join(words, " ") + " | " + right
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	style := styleStatusBar
	if s.Phase == types.PhaseNight {
		style = styleStatusNight
	}
	return style.Width(m.width).Render(bar)
}
