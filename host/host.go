// Package host runs a play session for a front end: it feeds command lines
// to the engine and carries out the save and load requests the engine
// hands back.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/nathoo/nightkeep/engine"
	"github.com/nathoo/nightkeep/engine/intent"
	"github.com/nathoo/nightkeep/engine/state"
	"github.com/nathoo/nightkeep/store"
	"github.com/nathoo/nightkeep/types"
)

// AutosaveSlot is the slot autosave requests write to.
const AutosaveSlot = "autosave"

// Store persists save slots. *store.Store satisfies it.
type Store interface {
	Save(ctx context.Context, slot string, s *types.GameState) (store.Slot, error)
	Load(ctx context.Context, slot string) (*types.GameState, error)
	List(ctx context.Context) ([]store.Slot, error)
}

// Host couples an engine with persistence. Store may be nil, in which case
// save and load report that saving is unavailable.
type Host struct {
	Engine   *engine.Engine
	Store    Store
	Log      *slog.Logger
	Autosave bool
}

// Reply is what one submitted line produced.
type Reply struct {
	Lines   []string
	Request *types.Request
}

// New returns a host with a discarding logger.
func New(eng *engine.Engine, st Store, autosave bool) *Host {
	return &Host{
		Engine:   eng,
		Store:    st,
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Autosave: autosave,
	}
}

// Submit runs one command line and any request it raised. A line that
// starts with '{' is taken as an intent in wire form, e.g.
// {"kind":"gather","params":{"resource":"wood","amount":2}}.
func (h *Host) Submit(ctx context.Context, line string) Reply {
	if strings.HasPrefix(strings.TrimSpace(line), "{") {
		return h.SubmitWire(ctx, []byte(line))
	}
	before := h.Engine.State.Phase
	return h.finish(ctx, before, h.Engine.Step(line))
}

// SubmitWire decodes one JSON wire intent and submits it.
func (h *Host) SubmitWire(ctx context.Context, data []byte) Reply {
	var w intent.Wire
	if err := json.Unmarshal(data, &w); err != nil {
		return Reply{Lines: []string{fmt.Sprintf("Bad intent: %v", err)}}
	}
	in, err := intent.Decode(w)
	if err != nil {
		return Reply{Lines: []string{fmt.Sprintf("Bad intent: %v", err)}}
	}
	return h.SubmitIntent(ctx, in)
}

// SubmitIntent applies an already built intent and any request it raised.
func (h *Host) SubmitIntent(ctx context.Context, in intent.Intent) Reply {
	h.Log.Debug("intent", "wire", intent.Encode(in))
	before := h.Engine.State.Phase
	return h.finish(ctx, before, h.Engine.Submit(in))
}

func (h *Host) finish(ctx context.Context, before types.Phase, r types.Result) Reply {
	lines := append([]string(nil), r.Events...)

	if after := h.Engine.State.Phase; after != before {
		h.Log.Info("phase change", "from", before, "to", after, "day", h.Engine.State.Day)
	}
	if r.Request != nil {
		lines = append(lines, h.handle(ctx, r.Request)...)
	}
	return Reply{Lines: lines, Request: r.Request}
}

func (h *Host) handle(ctx context.Context, req *types.Request) []string {
	switch req.Kind {
	case engine.RequestSave:
		return h.save(ctx, req.Reason)
	case engine.RequestLoad:
		return h.load(ctx, req.Reason)
	case engine.RequestAutosave:
		if !h.Autosave || h.Store == nil {
			return nil
		}
		if _, err := h.Store.Save(ctx, AutosaveSlot, h.Engine.State); err != nil {
			h.Log.Error("autosave failed", "reason", req.Reason, "err", err)
			return []string{fmt.Sprintf("Autosave failed: %v", err)}
		}
		h.Log.Debug("autosaved", "reason", req.Reason, "day", h.Engine.State.Day)
		return nil
	default:
		h.Log.Warn("unhandled request", "kind", req.Kind)
		return nil
	}
}

func (h *Host) save(ctx context.Context, slot string) []string {
	if h.Store == nil {
		return []string{"Saving is not available."}
	}
	row, err := h.Store.Save(ctx, slot, h.Engine.State)
	if err != nil {
		h.Log.Error("save failed", "slot", slot, "err", err)
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	return []string{fmt.Sprintf("Game saved to %s (day %d).", row.Name, row.Day)}
}

func (h *Host) load(ctx context.Context, slot string) []string {
	if h.Store == nil {
		return []string{"Loading is not available."}
	}
	s, err := h.Store.Load(ctx, slot)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return []string{fmt.Sprintf("No save in slot %s.", slot)}
	case err != nil:
		h.Log.Error("load failed", "slot", slot, "err", err)
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	if err := state.Check(s); err != nil {
		h.Log.Error("loaded state rejected", "slot", slot, "err", err)
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	h.Engine.Restore(s)
	return []string{fmt.Sprintf("Game loaded from %s (day %d, %s).", slot, s.Day, s.Phase)}
}

// Tick advances the world clock by n ticks.
func (h *Host) Tick(n int) []string {
	return h.Engine.Tick(n)
}

// Slots lists saved slots.
func (h *Host) Slots(ctx context.Context) ([]store.Slot, error) {
	if h.Store == nil {
		return nil, nil
	}
	return h.Store.List(ctx)
}
