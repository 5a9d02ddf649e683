// Package parser converts command lines into intents.
// Intentionally dumb: no NLP, just a verb table and argument checks.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/nightkeep/engine/intent"
	"github.com/nathoo/nightkeep/engine/state"
	"github.com/nathoo/nightkeep/types"
)

// UsageError is returned for any line that does not parse. Its message is
// meant to be shown to the player as-is.
type UsageError struct {
	Verb    string
	Msg     string
	Unknown bool // the verb itself is not recognized
}

func (e *UsageError) Error() string { return e.Msg }

var directionExpansions = map[string]string{
	"n":     "north",
	"s":     "south",
	"e":     "east",
	"w":     "west",
	"north": "north",
	"south": "south",
	"east":  "east",
	"west":  "west",
	"up":    "north",
	"down":  "south",
	"left":  "west",
	"right": "east",
}

var verbAliases = map[string]string{
	"?":        "help",
	"stats":    "status",
	"take":     "harvest",
	"grab":     "harvest",
	"z":        "wait",
	"go":       "move",
	"walk":     "move",
	"look":     "inspect",
	"l":        "inspect",
	"m":        "map",
	"loot":     "collect",
	"lang":     "locale",
	"purchase": "buy",
	"type":     "defend",
}

var usages = map[string]string{
	"help":     "help [topic]",
	"status":   "status",
	"gather":   "gather <wood|stone|food> <amount>",
	"harvest":  "take",
	"build":    "build <type> [x y]",
	"explore":  "explore",
	"demolish": "demolish [x y]",
	"upgrade":  "upgrade [x y]",
	"end":      "end",
	"wait":     "wait",
	"defend":   "defend <text>",
	"restart":  "restart",
	"new":      "new",
	"save":     "save [slot]",
	"load":     "load [slot]",
	"seed":     "seed <text>",
	"lesson":   "lesson <id>",
	"practice": "practice [on|off]",
	"cursor":   "cursor <direction> [n] | cursor <x> <y>",
	"move":     "move <direction>",
	"inspect":  "inspect [x y]",
	"map":      "map",
	"research": "research <id> | research cancel",
	"buy":      "buy <upgrade>",
	"trade":    "trade <from> <to> <amount>",
	"collect":  "collect",
	"hero":     "hero <id>",
	"locale":   "locale <id>",
	"title":    "title <id>",
	"target":   "target <first|last|weakest|strongest|closest>",
	"choice":   "choice <id> [text]",
}

// command is one tokenized line. rest is the trimmed original text after
// the verb, with internal whitespace preserved.
type command struct {
	verb string
	args []string
	rest string
}

type verbFunc func(p *Parser, c command) (intent.Intent, error)

// Parser turns lines into intents, checking ids against content registries.
type Parser struct {
	defs  *state.Defs
	verbs map[string]verbFunc
}

// New creates a parser. defs may be nil, which disables registry checks.
func New(defs *state.Defs) *Parser {
	p := &Parser{defs: defs}
	p.verbs = map[string]verbFunc{
		"help":     parseHelp,
		"status":   fixed(intent.Status{}),
		"gather":   parseGather,
		"harvest":  fixed(intent.GatherAtCursor{}),
		"build":    parseBuild,
		"explore":  fixed(intent.Explore{}),
		"demolish": parsePositional(func(at intent.Pos) intent.Intent { return intent.Demolish{At: at} }),
		"upgrade":  parsePositional(func(at intent.Pos) intent.Intent { return intent.Upgrade{At: at} }),
		"end":      fixed(intent.End{}),
		"wait":     fixed(intent.Wait{}),
		"defend":   parseDefend,
		"restart":  fixed(intent.Restart{}),
		"new":      fixed(intent.New{}),
		"save":     parseSlot(func(s string) intent.Intent { return intent.Save{Slot: s} }),
		"load":     parseSlot(func(s string) intent.Intent { return intent.Load{Slot: s} }),
		"seed":     parseSeed,
		"lesson":   parseLesson,
		"practice": parsePractice,
		"cursor":   parseCursor,
		"move":     parseMove,
		"inspect":  parsePositional(func(at intent.Pos) intent.Intent { return intent.InspectTile{At: at} }),
		"map":      fixed(intent.Map{}),
		"research": parseResearch,
		"buy":      parseBuy,
		"trade":    parseTrade,
		"collect":  fixed(intent.CollectLoot{}),
		"hero":     parseHero,
		"locale":   parseLocale,
		"title":    parseTitle,
		"target":   parseTarget,
		"choice":   parseChoice,
	}
	return p
}

// Parse converts a raw line into an intent. It never panics; every failure
// is a *UsageError.
func (p *Parser) Parse(line string) (intent.Intent, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, &UsageError{Msg: "Type a command. Try 'help'."}
	}
	fields := strings.Fields(line)
	verb := strings.ToLower(fields[0])
	rest := strings.TrimSpace(line[len(fields[0]):])

	// Bare direction: "n", "south" → move.
	if dir, ok := directionExpansions[verb]; ok && len(fields) == 1 {
		return intent.MovePlayer{Dir: dir}, nil
	}
	if alias, ok := verbAliases[verb]; ok {
		verb = alias
	}
	fn, ok := p.verbs[verb]
	if !ok {
		return nil, &UsageError{
			Verb:    verb,
			Msg:     fmt.Sprintf("Unknown command: %s. Type 'help' for a list of commands.", fields[0]),
			Unknown: true,
		}
	}
	return fn(p, command{verb: verb, args: fields[1:], rest: rest})
}

// Verbs returns every canonical verb, sorted.
func Verbs() []string {
	return state.SortedKeys(usages)
}

// Usage returns the usage line of a verb, or "" if unknown.
func Usage(verb string) string {
	if alias, ok := verbAliases[verb]; ok {
		verb = alias
	}
	return usages[verb]
}

func usage(verb string, reason string) error {
	msg := "Usage: " + usages[verb]
	if reason != "" {
		msg = reason + " " + msg
	}
	return &UsageError{Verb: verb, Msg: msg}
}

func argCount(c command, lo, hi int) error {
	if len(c.args) < lo || len(c.args) > hi {
		return usage(c.verb, "")
	}
	return nil
}

func fixed(in intent.Intent) verbFunc {
	return func(_ *Parser, c command) (intent.Intent, error) {
		if err := argCount(c, 0, 0); err != nil {
			return nil, err
		}
		return in, nil
	}
}

func parseInt(c command, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, usage(c.verb, fmt.Sprintf("'%s' is not a whole number.", s))
	}
	return n, nil
}

// optionalPos reads an optional trailing "x y" pair.
func optionalPos(c command, args []string) (intent.Pos, error) {
	switch len(args) {
	case 0:
		return intent.Pos{}, nil
	case 2:
		x, err := parseInt(c, args[0])
		if err != nil {
			return intent.Pos{}, err
		}
		y, err := parseInt(c, args[1])
		if err != nil {
			return intent.Pos{}, err
		}
		return intent.At(x, y), nil
	default:
		return intent.Pos{}, usage(c.verb, "")
	}
}

func (p *Parser) known(c command, id, what string, ok func(*state.Defs) bool) error {
	if p.defs == nil || ok(p.defs) {
		return nil
	}
	return usage(c.verb, fmt.Sprintf("Unknown %s: %s.", what, id))
}

func parseHelp(_ *Parser, c command) (intent.Intent, error) {
	if err := argCount(c, 0, 1); err != nil {
		return nil, err
	}
	topic := ""
	if len(c.args) == 1 {
		topic = strings.ToLower(c.args[0])
	}
	return intent.Help{Topic: topic}, nil
}

func parseGather(_ *Parser, c command) (intent.Intent, error) {
	if err := argCount(c, 2, 2); err != nil {
		return nil, err
	}
	res := strings.ToLower(c.args[0])
	if !isResource(res) {
		return nil, usage(c.verb, fmt.Sprintf("Unknown resource: %s.", c.args[0]))
	}
	n, err := parseInt(c, c.args[1])
	if err != nil {
		return nil, err
	}
	return intent.Gather{Resource: res, Amount: n}, nil
}

func isResource(k string) bool {
	for _, r := range types.ResourceKeys {
		if r == k {
			return true
		}
	}
	return false
}

func parseBuild(p *Parser, c command) (intent.Intent, error) {
	if len(c.args) != 1 && len(c.args) != 3 {
		return nil, usage(c.verb, "")
	}
	kind := strings.ToLower(c.args[0])
	if err := p.known(c, kind, "building", func(d *state.Defs) bool {
		_, ok := d.Buildings[kind]
		return ok
	}); err != nil {
		return nil, err
	}
	at, err := optionalPos(c, c.args[1:])
	if err != nil {
		return nil, err
	}
	return intent.Build{Building: kind, At: at}, nil
}

func parsePositional(build func(intent.Pos) intent.Intent) verbFunc {
	return func(_ *Parser, c command) (intent.Intent, error) {
		at, err := optionalPos(c, c.args)
		if err != nil {
			return nil, err
		}
		return build(at), nil
	}
}

func parseDefend(_ *Parser, c command) (intent.Intent, error) {
	if c.rest == "" {
		return nil, usage(c.verb, "")
	}
	return intent.Defend{Text: c.rest}, nil
}

func parseSlot(build func(string) intent.Intent) verbFunc {
	return func(_ *Parser, c command) (intent.Intent, error) {
		if err := argCount(c, 0, 1); err != nil {
			return nil, err
		}
		slot := intent.DefaultSlot
		if len(c.args) == 1 {
			slot = c.args[0]
		}
		return build(slot), nil
	}
}

func parseSeed(_ *Parser, c command) (intent.Intent, error) {
	if c.rest == "" {
		return nil, usage(c.verb, "")
	}
	return intent.Seed{Text: c.rest}, nil
}

func parseLesson(p *Parser, c command) (intent.Intent, error) {
	if err := argCount(c, 1, 1); err != nil {
		return nil, err
	}
	id := strings.ToLower(c.args[0])
	if err := p.known(c, id, "lesson", func(d *state.Defs) bool {
		_, ok := d.Lessons[id]
		return ok
	}); err != nil {
		return nil, err
	}
	return intent.Lesson{ID: id}, nil
}

func parsePractice(_ *Parser, c command) (intent.Intent, error) {
	if err := argCount(c, 0, 1); err != nil {
		return nil, err
	}
	if len(c.args) == 0 {
		return intent.Practice{Toggle: true}, nil
	}
	switch strings.ToLower(c.args[0]) {
	case "on":
		return intent.Practice{On: true}, nil
	case "off":
		return intent.Practice{On: false}, nil
	}
	return nil, usage(c.verb, "")
}

func parseCursor(_ *Parser, c command) (intent.Intent, error) {
	if err := argCount(c, 1, 2); err != nil {
		return nil, err
	}
	if dir, ok := directionExpansions[strings.ToLower(c.args[0])]; ok {
		steps := 1
		if len(c.args) == 2 {
			n, err := parseInt(c, c.args[1])
			if err != nil {
				return nil, err
			}
			if n < 1 {
				return nil, usage(c.verb, "Step count must be at least 1.")
			}
			steps = n
		}
		return intent.CursorMove{Dir: dir, Steps: steps}, nil
	}
	if len(c.args) != 2 {
		return nil, usage(c.verb, fmt.Sprintf("Unknown direction: %s.", c.args[0]))
	}
	x, err := parseInt(c, c.args[0])
	if err != nil {
		return nil, err
	}
	y, err := parseInt(c, c.args[1])
	if err != nil {
		return nil, err
	}
	return intent.CursorSet{X: x, Y: y}, nil
}

func parseMove(_ *Parser, c command) (intent.Intent, error) {
	if err := argCount(c, 1, 1); err != nil {
		return nil, err
	}
	dir, ok := directionExpansions[strings.ToLower(c.args[0])]
	if !ok {
		return nil, usage(c.verb, fmt.Sprintf("Unknown direction: %s.", c.args[0]))
	}
	return intent.MovePlayer{Dir: dir}, nil
}

func parseResearch(p *Parser, c command) (intent.Intent, error) {
	if err := argCount(c, 1, 1); err != nil {
		return nil, err
	}
	id := strings.ToLower(c.args[0])
	if id == "cancel" {
		return intent.ResearchCancel{}, nil
	}
	if err := p.known(c, id, "research", func(d *state.Defs) bool {
		_, ok := d.Research[id]
		return ok
	}); err != nil {
		return nil, err
	}
	return intent.ResearchStart{ID: id}, nil
}

func parseBuy(p *Parser, c command) (intent.Intent, error) {
	if err := argCount(c, 1, 1); err != nil {
		return nil, err
	}
	id := strings.ToLower(c.args[0])
	if err := p.known(c, id, "upgrade", func(d *state.Defs) bool {
		_, ok := d.Upgrades[id]
		return ok
	}); err != nil {
		return nil, err
	}
	return intent.BuyUpgrade{ID: id}, nil
}

func parseTrade(_ *Parser, c command) (intent.Intent, error) {
	if err := argCount(c, 3, 3); err != nil {
		return nil, err
	}
	from, to := strings.ToLower(c.args[0]), strings.ToLower(c.args[1])
	for _, r := range []string{from, to} {
		if !isResource(r) {
			return nil, usage(c.verb, fmt.Sprintf("Unknown resource: %s.", r))
		}
	}
	if from == to {
		return nil, usage(c.verb, "Cannot trade a resource for itself.")
	}
	n, err := parseInt(c, c.args[2])
	if err != nil {
		return nil, err
	}
	return intent.Trade{From: from, To: to, Amount: n}, nil
}

func parseHero(p *Parser, c command) (intent.Intent, error) {
	if err := argCount(c, 1, 1); err != nil {
		return nil, err
	}
	id := strings.ToLower(c.args[0])
	if err := p.known(c, id, "hero", func(d *state.Defs) bool {
		_, ok := d.Heroes[id]
		return ok
	}); err != nil {
		return nil, err
	}
	return intent.HeroSelect{ID: id}, nil
}

func parseLocale(p *Parser, c command) (intent.Intent, error) {
	if err := argCount(c, 1, 1); err != nil {
		return nil, err
	}
	id := strings.ToLower(c.args[0])
	if err := p.known(c, id, "locale", func(d *state.Defs) bool {
		_, ok := d.Locales[id]
		return ok
	}); err != nil {
		return nil, err
	}
	return intent.LocaleSet{ID: id}, nil
}

func parseTitle(p *Parser, c command) (intent.Intent, error) {
	if err := argCount(c, 1, 1); err != nil {
		return nil, err
	}
	id := strings.ToLower(c.args[0])
	if err := p.known(c, id, "title", func(d *state.Defs) bool {
		_, ok := d.Titles[id]
		return ok
	}); err != nil {
		return nil, err
	}
	return intent.TitleEquip{ID: id}, nil
}

func parseTarget(_ *Parser, c command) (intent.Intent, error) {
	if err := argCount(c, 1, 1); err != nil {
		return nil, err
	}
	mode := strings.ToLower(c.args[0])
	for _, m := range intent.TargetModes {
		if m == mode {
			return intent.TargetMode{Mode: mode}, nil
		}
	}
	return nil, usage(c.verb, fmt.Sprintf("Unknown targeting mode: %s.", c.args[0]))
}

func parseChoice(_ *Parser, c command) (intent.Intent, error) {
	if len(c.args) < 1 {
		return nil, usage(c.verb, "")
	}
	id := strings.ToLower(c.args[0])
	text := strings.TrimSpace(c.rest[len(c.args[0]):])
	return intent.Choice{ID: id, Text: text}, nil
}
