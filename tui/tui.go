package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/nightkeep/cli"
	"github.com/nathoo/nightkeep/engine/intent"
	"github.com/nathoo/nightkeep/engine/save"
	"github.com/nathoo/nightkeep/host"
	"github.com/nathoo/nightkeep/types"
)

// TickInterval is how often the world clock advances while the TUI runs.
const TickInterval = time.Second

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for the Nightkeep TUI.
type Model struct {
	ctx  context.Context
	host *host.Host

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	lastCmd  string

	copy func(text string) error
}

// gameOutputMsg carries output from the engine into the Update loop.
type gameOutputMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// worldTickMsg fires once per TickInterval.
type worldTickMsg time.Time

// New creates a TUI model wired to the given host.
func New(ctx context.Context, h *host.Host) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		ctx:     ctx,
		host:    h,
		input:   ti,
		history: NewHistory(100),
		copy:    clipboard.WriteAll,
	}
}

// Run starts the Bubble Tea program.
func Run(ctx context.Context, h *host.Host) error {
	m := New(ctx, h)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init returns the commands that print the intro and start the world clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput(), worldTick())
}

func worldTick() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg {
		return worldTickMsg(t)
	})
}

func (m Model) initialOutput() tea.Cmd {
	game := m.host.Engine.Defs.Game
	day := m.host.Engine.State.Day
	return func() tea.Msg {
		title := game.Title
		if game.Version != "" {
			title += " v" + game.Version
		}
		lines := []string{title, ""}
		if game.Intro != "" {
			lines = append(lines, game.Intro, "")
		}
		lines = append(lines, fmt.Sprintf("Day %d. Type 'help' for commands.", day))
		return gameOutputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, game output, ticks).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := max(1, m.height-2) // 1 status bar + 1 input line

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Older(m.input.Value()); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Newer(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case gameOutputMsg:
		m = m.appendOutput(msg)

	case worldTickMsg:
		if lines := m.host.Tick(1); len(lines) > 0 {
			m = m.appendOutput(gameOutputMsg{lines: lines})
		}
		return m, worldTick()
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	night := m.host.Engine.State.Phase == types.PhaseNight

	// Handle "again" / "g".
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(gameOutputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		input = m.lastCmd
	} else if !night || strings.HasPrefix(input, "/") {
		m.lastCmd = input
	}
	if !night || strings.HasPrefix(input, "/") {
		m.history.Push(input)
	}

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Game command.
	reply := m.host.Submit(m.ctx, input)
	output := reply.Lines
	if m.trace {
		output = append(output, m.formatTrace(reply)...)
	}
	m = m.appendOutput(gameOutputMsg{input: input, lines: output})
	return m, nil
}

// appendOutput adds lines to the log and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := max(10, m.width)

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wordWrap(rl.text, width)))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wordWrap(rl.text, width)))
		case rl.kind == kindMap:
			// Map rows keep their spacing.
			styled = append(styled, renderLineKind(rl.text, rl.kind))
		default:
			styled = append(styled, renderLineKind(wordWrap(rl.text, width), rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	lineLen := 0

	for i, word := range strings.Fields(text) {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	cmd := strings.Fields(input)[0]

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return cli.StateDump(m.host.Engine.State), false

	case "/copy":
		return m.cmdCopy(), false

	case "/slots":
		return m.cmdSlots(), false

	case "/hash":
		return []string{"State hash: " + save.Fingerprint(m.host.Engine.State)}, false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /quit    Exit game",
		"  /help    Show this help",
		"  /state   Debug: dump current state",
		"  /trace   Toggle debug trace output",
		"  /slots   List saved games",
		"  /hash    Print the state fingerprint",
		"  /copy    Copy the status report to the clipboard",
		"",
		"Game commands: type 'help' for the full list, 'help <command>' for one.",
		"At night, type the word shown next to an enemy to strike it.",
		"  again (g)   Repeat your last command",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

func (m *Model) cmdSlots() []string {
	slots, err := m.host.Slots(m.ctx)
	if err != nil {
		return []string{fmt.Sprintf("Listing saves failed: %v", err)}
	}
	if len(slots) == 0 {
		return []string{"No saved games."}
	}
	out := make([]string, 0, len(slots))
	for _, sl := range slots {
		out = append(out, fmt.Sprintf("%s: day %d, %s", sl.Name, sl.Day, sl.Phase))
	}
	return out
}

func (m *Model) cmdCopy() []string {
	if m.copy == nil {
		return []string{"Clipboard is not available."}
	}
	r := m.host.Engine.Submit(intent.Status{})
	if err := m.copy(strings.Join(r.Events, "\n")); err != nil {
		return []string{fmt.Sprintf("Copy failed: %v", err)}
	}
	return []string{"Status copied to the clipboard."}
}

func (m *Model) formatTrace(reply host.Reply) []string {
	s := m.host.Engine.State
	lines := []string{fmt.Sprintf("[trace] phase=%s day=%d ap=%d hp=%d rng=%d enemies=%d",
		s.Phase, s.Day, s.Ap, s.Hp, s.RngState, len(s.Enemies))}
	if reply.Request != nil {
		lines = append(lines, fmt.Sprintf("[trace] request %s %s", reply.Request.Kind, reply.Request.Reason))
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
