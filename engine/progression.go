package engine

import (
	"strings"

	"github.com/nathoo/nightkeep/engine/effects"
	"github.com/nathoo/nightkeep/engine/events"
	"github.com/nathoo/nightkeep/engine/intent"
	"github.com/nathoo/nightkeep/engine/rules"
	"github.com/nathoo/nightkeep/engine/state"
)

func (a *applier) researchStart(v intent.ResearchStart) {
	if !a.requireDay() {
		return
	}
	s := a.s
	def, ok := a.defs.Research[v.ID]
	switch {
	case !ok:
		a.say("Unknown research: %s.", v.ID)
		return
	case s.CompletedResearch[v.ID]:
		a.say("%s is already researched.", name(def.Name, def.ID))
		return
	case s.ActiveResearch != "":
		a.say("Already researching %s. Type 'research cancel' first.", s.ActiveResearch)
		return
	}
	if req := rules.Requirement(def.Requires, s, a.defs); req != "" {
		a.say("%s %s", name(def.Name, def.ID), req)
		return
	}
	if s.Gold < def.Cost {
		a.say("%s costs %d gold; you have %d.", name(def.Name, def.ID), def.Cost, s.Gold)
		return
	}
	s.Gold -= def.Cost
	s.ActiveResearch = def.ID
	s.ResearchProgress = 0
	a.say("Research begins: %s (%d days).", name(def.Name, def.ID), max(1, def.Days))
}

func (a *applier) researchCancel() {
	if !a.requireDay() {
		return
	}
	s := a.s
	if s.ActiveResearch == "" {
		a.say("Nothing is being researched.")
		return
	}
	def := a.defs.Research[s.ActiveResearch]
	refund := def.Cost / 2
	s.Gold += refund
	a.say("Research on %s abandoned. %d gold refunded.", name(def.Name, s.ActiveResearch), refund)
	s.ActiveResearch = ""
	s.ResearchProgress = 0
}

func (a *applier) buyUpgrade(v intent.BuyUpgrade) {
	if !a.requireDay() {
		return
	}
	s := a.s
	def, ok := a.defs.Upgrades[v.ID]
	switch {
	case !ok:
		a.say("Unknown upgrade: %s.", v.ID)
		return
	case s.PurchasedUpgrades[v.ID]:
		a.say("You already own %s.", name(def.Name, def.ID))
		return
	}
	if req := rules.Requirement(def.Requires, s, a.defs); req != "" {
		a.say("%s %s", name(def.Name, def.ID), req)
		return
	}
	if s.Gold < def.Cost {
		a.say("%s costs %d gold; you have %d.", name(def.Name, def.ID), def.Cost, s.Gold)
		return
	}
	s.Gold -= def.Cost
	s.PurchasedUpgrades[def.ID] = true
	a.say("Purchased %s for %d gold.", name(def.Name, def.ID), def.Cost)
	a.emit(effects.Apply(s, a.defs, def.Effects)...)
}

func (a *applier) heroSelect(v intent.HeroSelect) {
	if !a.requireDay() {
		return
	}
	s := a.s
	h, ok := a.defs.Heroes[v.ID]
	if !ok {
		a.say("Unknown hero: %s.", v.ID)
		return
	}
	if s.HeroID == h.ID {
		a.say("%s already leads the keep.", name(h.Name, h.ID))
		return
	}
	s.HeroID = h.ID
	state.Recalc(s, a.defs)
	a.say("%s now leads the keep. HP %d/%d, AP %d/%d.", name(h.Name, h.ID), s.Hp, s.HpMax, s.Ap, s.ApMax)
}

func (a *applier) localeSet(v intent.LocaleSet) {
	l, ok := a.defs.Locales[v.ID]
	if !ok {
		a.say("Unknown locale: %s.", v.ID)
		return
	}
	a.s.Locale = l.ID
	a.say("Locale set to %s.", name(l.Name, l.ID))
}

func (a *applier) titleEquip(v intent.TitleEquip) {
	s := a.s
	t, ok := a.defs.Titles[v.ID]
	switch {
	case !ok:
		a.say("Unknown title: %s.", v.ID)
		return
	case !s.UnlockedTitles[v.ID]:
		if req := rules.Requirement(t.Requires, s, a.defs); req != "" {
			a.say("%s is locked. %s", name(t.Name, t.ID), req)
		} else {
			a.say("%s is locked.", name(t.Name, t.ID))
		}
		return
	}
	s.EquippedTitle = t.ID
	a.say("You are now known as %s.", name(t.Name, t.ID))
}

func (a *applier) targetMode(v intent.TargetMode) {
	for _, m := range intent.TargetModes {
		if m == v.Mode {
			a.s.TargetingMode = m
			a.say("Towers now target the %s enemy.", m)
			return
		}
	}
	a.say("Unknown targeting mode: %s. Choose one of %s.", v.Mode, strings.Join(intent.TargetModes, ", "))
}

func (a *applier) practice(v intent.Practice) {
	s := a.s
	if v.Toggle {
		s.PracticeMode = !s.PracticeMode
	} else {
		s.PracticeMode = v.On
	}
	if s.PracticeMode {
		a.say("Practice mode on: misses cost nothing.")
	} else {
		a.say("Practice mode off.")
	}
}

func (a *applier) seed(v intent.Seed) {
	if !a.requireDay() {
		return
	}
	text := strings.TrimSpace(v.Text)
	if text == "" {
		a.say("The seed cannot be empty.")
		return
	}
	a.s.RngSeed = text
	a.s.RngState = 0
	a.say("Seed set to '%s'.", text)
}

func (a *applier) lesson(v intent.Lesson) {
	if !a.requireDay() {
		return
	}
	l, ok := a.defs.Lessons[v.ID]
	if !ok {
		a.say("Unknown lesson: %s.", v.ID)
		return
	}
	a.s.LessonID = l.ID
	a.say("Lesson set to %s (%d words).", name(l.Name, l.ID), len(l.Words))
}

// choice resolves the pending point-of-interest event.
func (a *applier) choice(v intent.Choice) {
	s := a.s
	if s.PendingEvent == "" {
		a.say("There is no event to answer.")
		return
	}
	ev, ok := a.defs.Events[s.PendingEvent]
	if !ok {
		s.PendingEvent = ""
		a.say("The event has passed.")
		return
	}
	c, ok := events.Find(ev, v.ID)
	if !ok {
		a.say("Unknown choice: %s. Choose one of %s.", v.ID, strings.Join(events.IDs(ev), ", "))
		return
	}
	if req := rules.Requirement(c.Requires, s, a.defs); req != "" {
		a.say("You cannot choose that. %s", req)
		return
	}

	s.PendingEvent = ""
	s.Counters["events"]++
	effs, spoken := events.Resolve(c, v.Text)
	if !spoken {
		a.say("You falter over the words.")
	}
	a.emit(effects.Apply(s, a.defs, effs)...)
}
