// Package cli provides the plain terminal front end: line input, output
// formatting and meta-command dispatch.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/nathoo/nightkeep/engine/intent"
	"github.com/nathoo/nightkeep/engine/save"
	"github.com/nathoo/nightkeep/host"
	"github.com/nathoo/nightkeep/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Host      *host.Host
	In        io.Reader
	Out       io.Writer
	Trace     bool
	EchoInput bool                    // echo each input line after the prompt (for script playback)
	Copy      func(text string) error // clipboard writer for /copy
	lastCmd   string                  // for "again"/"g" repeat
}

// New creates a CLI wired to the given host.
func New(h *host.Host) *CLI {
	return &CLI{
		Host: h,
		In:   os.Stdin,
		Out:  os.Stdout,
		Copy: clipboard.WriteAll,
	}
}

// Run starts the game loop: intro, then prompt, input, dispatch and output
// until input ends or the player quits.
func (c *CLI) Run(ctx context.Context) {
	defs := c.Host.Engine.Defs
	if defs.Game.Intro != "" {
		c.printLine(defs.Game.Intro)
		c.printLine("")
	}
	c.printLine(fmt.Sprintf("Day %d. Type 'help' for commands.", c.Host.Engine.State.Day))

	scanner := bufio.NewScanner(c.In)
	for {
		c.print(c.prompt())
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(ctx, input) {
				return // /quit
			}
			continue
		}

		// "again" / "g" repeats the last game command. Words typed at
		// enemies are not remembered: they change after every hit.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else if c.Host.Engine.State.Phase != types.PhaseNight {
			c.lastCmd = input
		}

		// Lines starting with '{' are JSON intents; Host.Submit decodes them.
		reply := c.Host.Submit(ctx, input)
		for _, line := range reply.Lines {
			c.printLine(line)
		}
		if c.Trace {
			c.printTrace(reply)
		}
	}
}

func (c *CLI) prompt() string {
	s := c.Host.Engine.State
	if s.Phase == types.PhaseNight {
		return fmt.Sprintf("[night %d hp %d] > ", s.Day, s.Hp)
	}
	return "> "
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	case "/slots":
		c.cmdSlots(ctx)

	case "/hash":
		c.printSystem("State hash: " + save.Fingerprint(c.Host.Engine.State))

	case "/copy":
		c.cmdCopy()

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdHelp() {
	help := []string{
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
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	for _, line := range StateDump(c.Host.Engine.State) {
		c.printSystem(line)
	}
}

// StateDump renders the debug view of s.
func StateDump(s *types.GameState) []string {
	lines := []string{
		fmt.Sprintf("Day %d, phase %s, AP %d/%d, HP %d/%d", s.Day, s.Phase, s.Ap, s.ApMax, s.Hp, s.HpMax),
		fmt.Sprintf("Gold %d, resources %v, threat %d", s.Gold, s.Resources, s.Threat),
		fmt.Sprintf("Seed %q at %d, lesson %s", s.RngSeed, s.RngState, s.LessonID),
		fmt.Sprintf("Structures: %v", s.Structures),
	}
	if len(s.Enemies) > 0 {
		lines = append(lines, fmt.Sprintf("Enemies: %d (%d still to spawn)", len(s.Enemies), s.NightSpawnRemaining))
	}
	if len(s.Flags) > 0 {
		lines = append(lines, fmt.Sprintf("Flags: %v", s.Flags))
	}
	if len(s.Counters) > 0 {
		lines = append(lines, fmt.Sprintf("Counters: %v", s.Counters))
	}
	return lines
}

func (c *CLI) cmdSlots(ctx context.Context) {
	slots, err := c.Host.Slots(ctx)
	if err != nil {
		c.printSystem(fmt.Sprintf("Listing saves failed: %v", err))
		return
	}
	if len(slots) == 0 {
		c.printSystem("No saved games.")
		return
	}
	for _, sl := range slots {
		c.printSystem(fmt.Sprintf("%-12s day %-3d %-9s %s", sl.Name, sl.Day, sl.Phase,
			sl.Time().Format("2006-01-02 15:04")))
	}
}

func (c *CLI) cmdCopy() {
	r := c.Host.Engine.Submit(intent.Status{})
	text := strings.Join(r.Events, "\n")
	if c.Copy == nil {
		c.printSystem("Clipboard is not available.")
		return
	}
	if err := c.Copy(text); err != nil {
		c.printSystem(fmt.Sprintf("Copy failed: %v", err))
		return
	}
	c.printSystem("Status copied to the clipboard.")
}

func (c *CLI) printTrace(reply host.Reply) {
	s := c.Host.Engine.State
	c.printSystem(fmt.Sprintf("[trace] phase=%s day=%d ap=%d hp=%d rng=%d enemies=%d",
		s.Phase, s.Day, s.Ap, s.Hp, s.RngState, len(s.Enemies)))
	if reply.Request != nil {
		c.printSystem(fmt.Sprintf("[trace] request %s %s", reply.Request.Kind, reply.Request.Reason))
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
