package intent

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Wire is the flat {kind, params} envelope of an intent.
type Wire struct {
	Kind   string         `json:"kind"`
	Params map[string]any `json:"params,omitempty"`
}

// Encode flattens an intent into its wire form.
func Encode(in Intent) Wire {
	w := Wire{Kind: string(in.Kind()), Params: map[string]any{}}
	p := w.Params
	pos := func(at Pos) {
		if at.Set {
			p["x"], p["y"] = at.X, at.Y
		}
	}
	switch v := in.(type) {
	case Help:
		if v.Topic != "" {
			p["topic"] = v.Topic
		}
	case Gather:
		p["resource"], p["amount"] = v.Resource, v.Amount
	case Build:
		p["building"] = v.Building
		pos(v.At)
	case Demolish:
		pos(v.At)
	case Upgrade:
		pos(v.At)
	case InspectTile:
		pos(v.At)
	case Defend:
		p["text"] = v.Text
	case Save:
		p["slot"] = v.Slot
	case Load:
		p["slot"] = v.Slot
	case Seed:
		p["text"] = v.Text
	case Lesson:
		p["id"] = v.ID
	case Practice:
		if v.Toggle {
			p["mode"] = "toggle"
		} else {
			p["on"] = v.On
		}
	case CursorMove:
		p["dir"], p["steps"] = v.Dir, v.Steps
	case CursorSet:
		p["x"], p["y"] = v.X, v.Y
	case MovePlayer:
		p["dir"] = v.Dir
	case ResearchStart:
		p["id"] = v.ID
	case BuyUpgrade:
		p["id"] = v.ID
	case Trade:
		p["from"], p["to"], p["amount"] = v.From, v.To, v.Amount
	case HeroSelect:
		p["id"] = v.ID
	case LocaleSet:
		p["id"] = v.ID
	case TitleEquip:
		p["id"] = v.ID
	case TargetMode:
		p["mode"] = v.Mode
	case Choice:
		p["id"] = v.ID
		if v.Text != "" {
			p["text"] = v.Text
		}
	case Unknown:
		for k, val := range v.Params {
			p[k] = val
		}
	}
	if len(p) == 0 {
		w.Params = nil
	}
	return w
}

// Decode rebuilds an intent from its wire form. Unrecognized kinds decode to
// UI (for ui_ kinds) or Unknown. Missing or mistyped parameters are errors.
func Decode(w Wire) (Intent, error) {
	p := params(w.Params)
	switch Kind(w.Kind) {
	case KindHelp:
		v := Help{Topic: p.str("topic")}
		return v, p.err
	case KindStatus:
		return Status{}, nil
	case KindGather:
		v := Gather{Resource: p.need("resource"), Amount: p.num("amount")}
		return v, p.err
	case KindGatherAtCursor:
		return GatherAtCursor{}, nil
	case KindBuild:
		v := Build{Building: p.need("building"), At: p.pos()}
		return v, p.err
	case KindExplore:
		return Explore{}, nil
	case KindDemolish:
		v := Demolish{At: p.pos()}
		return v, p.err
	case KindUpgrade:
		v := Upgrade{At: p.pos()}
		return v, p.err
	case KindEnd:
		return End{}, nil
	case KindWait:
		return Wait{}, nil
	case KindDefend:
		v := Defend{Text: p.str("text")}
		return v, p.err
	case KindRestart:
		return Restart{}, nil
	case KindNew:
		return New{}, nil
	case KindSave:
		v := Save{Slot: p.slot()}
		return v, p.err
	case KindLoad:
		v := Load{Slot: p.slot()}
		return v, p.err
	case KindSeed:
		v := Seed{Text: p.need("text")}
		return v, p.err
	case KindLesson:
		v := Lesson{ID: p.need("id")}
		return v, p.err
	case KindPractice:
		if _, ok := p.m["on"]; !ok || p.str("mode") == "toggle" {
			return Practice{Toggle: true}, nil
		}
		v := Practice{On: p.boolean("on")}
		return v, p.err
	case KindCursorMove:
		v := CursorMove{Dir: p.need("dir"), Steps: p.optNum("steps", 1)}
		return v, p.err
	case KindCursorSet:
		v := CursorSet{X: p.num("x"), Y: p.num("y")}
		return v, p.err
	case KindMovePlayer:
		v := MovePlayer{Dir: p.need("dir")}
		return v, p.err
	case KindInspectTile:
		v := InspectTile{At: p.pos()}
		return v, p.err
	case KindMap:
		return Map{}, nil
	case KindResearchStart:
		v := ResearchStart{ID: p.need("id")}
		return v, p.err
	case KindResearchCancel:
		return ResearchCancel{}, nil
	case KindBuyUpgrade:
		v := BuyUpgrade{ID: p.need("id")}
		return v, p.err
	case KindTrade:
		v := Trade{From: p.need("from"), To: p.need("to"), Amount: p.num("amount")}
		return v, p.err
	case KindCollectLoot:
		return CollectLoot{}, nil
	case KindHeroSelect:
		v := HeroSelect{ID: p.need("id")}
		return v, p.err
	case KindLocaleSet:
		v := LocaleSet{ID: p.need("id")}
		return v, p.err
	case KindTitleEquip:
		v := TitleEquip{ID: p.need("id")}
		return v, p.err
	case KindTargetMode:
		v := TargetMode{Mode: p.need("mode")}
		return v, p.err
	case KindChoice:
		v := Choice{ID: p.need("id"), Text: p.str("text")}
		return v, p.err
	}
	if IsUI(w.Kind) {
		return UI{Name: w.Kind}, nil
	}
	return Unknown{Name: w.Kind, Params: w.Params}, nil
}

// paramReader collects the first decoding error so Decode can read every
// field and report once.
type paramReader struct {
	m   map[string]any
	err error
}

func params(m map[string]any) *paramReader {
	if m == nil {
		m = map[string]any{}
	}
	return &paramReader{m: m}
}

func (p *paramReader) fail(format string, args ...any) {
	if p.err == nil {
		p.err = fmt.Errorf(format, args...)
	}
}

func (p *paramReader) str(key string) string {
	v, ok := p.m[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		p.fail("param %q: expected string, got %T", key, v)
	}
	return s
}

func (p *paramReader) need(key string) string {
	s := p.str(key)
	if s == "" {
		p.fail("param %q is required", key)
	}
	return s
}

func (p *paramReader) slot() string {
	if s := p.str("slot"); s != "" {
		return s
	}
	return DefaultSlot
}

func (p *paramReader) boolean(key string) bool {
	switch v := p.m[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			p.fail("param %q: %v", key, err)
		}
		return b
	default:
		p.fail("param %q: expected bool, got %T", key, v)
		return false
	}
}

func (p *paramReader) num(key string) int {
	v, ok := p.m[key]
	if !ok {
		p.fail("param %q is required", key)
		return 0
	}
	n, err := toInt(v)
	if err != nil {
		p.fail("param %q: %v", key, err)
	}
	return n
}

func (p *paramReader) optNum(key string, def int) int {
	if _, ok := p.m[key]; !ok {
		return def
	}
	return p.num(key)
}

func (p *paramReader) pos() Pos {
	_, hasX := p.m["x"]
	_, hasY := p.m["y"]
	if !hasX && !hasY {
		return Pos{}
	}
	return At(p.num("x"), p.num("y"))
}

// toInt accepts the numeric shapes a JSON decoder or a Go caller produces.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case string:
		return strconv.Atoi(n)
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}
