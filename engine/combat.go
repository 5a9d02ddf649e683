package engine

import (
	"fmt"
	"strings"

	"github.com/nathoo/nightkeep/engine/balance"
	"github.com/nathoo/nightkeep/engine/resolve"
	"github.com/nathoo/nightkeep/engine/rng"
	"github.com/nathoo/nightkeep/engine/simmap"
	"github.com/nathoo/nightkeep/engine/state"
	"github.com/nathoo/nightkeep/engine/tick"
	"github.com/nathoo/nightkeep/engine/words"
	"github.com/nathoo/nightkeep/types"
)

// AutoPrefix marks structures that fire on their own every night step.
const AutoPrefix = "auto_"

const statusFrozen = "frozen"

// end moves the day into night and sizes the wave.
func (a *applier) end() {
	if !a.requireDay() {
		return
	}
	s := a.s
	s.Phase = types.PhaseNight
	s.Ap = 0
	s.Enemies = []types.Enemy{}

	wave := balance.NightWave(s.Day, s.Threat, state.Defense(s, a.defs))
	// Only walls thin the wave; water and rock closing the keep in on their
	// own do not count.
	natural := simmap.PathOpenToBase(s, nil)
	s.LastPathOpen = natural && simmap.PathOpenToBase(s, state.WallBlocked(s, a.defs))
	if natural && !s.LastPathOpen {
		wave = balance.ApplyWallPenalty(wave)
		a.say("Your walls close every path to the keep. The wave thins.")
	}
	s.NightWaveTotal = wave
	s.NightSpawnRemaining = wave
	a.say("Night %d falls. %d enemies approach.", s.Day, wave)

	if balance.IsMilestone(s.Day) {
		if def, ok := a.bossFor(s.Day); ok {
			e := a.spawn(def)
			a.say("A champion of the dark arrives: %s '%s' (hp %d).", name(def.Name, def.ID), e.Word, e.Hp)
		}
	}
	a.request(RequestAutosave, ReasonNight)
}

// bossFor returns the boss kind scheduled for day, first by id.
func (a *applier) bossFor(day int) (types.EnemyDef, bool) {
	for _, id := range state.SortedKeys(a.defs.Enemies) {
		def := a.defs.Enemies[id]
		if def.Boss && def.BossDay == day {
			return def, true
		}
	}
	return types.EnemyDef{}, false
}

// nightStep advances the night by one atomic step: the player's action,
// one spawn, one auto-tower shot, then every enemy closes in.
func (a *applier) nightStep(text string, typed bool) {
	s := a.s
	if s.Phase != types.PhaseNight {
		a.say("There is nothing to fight during the day. Type 'end' to begin the night.")
		return
	}

	// 1. Player action.
	if typed {
		a.strike(text)
	} else {
		a.say("You hold your ground.")
	}

	// 2. Spawn.
	if s.NightSpawnRemaining > 0 {
		if def, ok := a.pickRegular(); ok {
			e := a.spawn(def)
			a.say("%s '%s' emerges from the dark (distance %d).", name(def.Name, def.ID), e.Word, e.Dist)
			s.NightSpawnRemaining--
		} else {
			s.NightSpawnRemaining = 0
		}
	}

	// 3. Auto-tower volley.
	a.towerVolley()

	// 4. Advance.
	a.advance()

	if s.Hp <= 0 {
		s.Hp = 0
		s.Phase = types.PhaseGameOver
		a.say("The keep has fallen on night %d. Type 'restart' to try again.", s.Day)
		return
	}
	if s.NightSpawnRemaining <= 0 && len(s.Enemies) == 0 {
		a.dawn()
	}
}

// strike resolves typed text against the enemies.
func (a *applier) strike(text string) {
	s := a.s
	if len(s.Enemies) == 0 {
		a.say("Your words echo over an empty field.")
		return
	}
	hit, err := resolve.Match(s.Enemies, text)
	if err != nil {
		s.Counters["misses"]++
		if s.PracticeMode {
			a.say("Miss: '%s' matches nothing. (practice)", strings.TrimSpace(text))
			return
		}
		s.Hp--
		a.say("Miss: '%s' matches nothing. The keep takes 1 damage (HP %d/%d).", strings.TrimSpace(text), max(0, s.Hp), s.HpMax)
		return
	}

	s.Counters["hits"]++
	acc := balance.Accuracy(s.Counters["hits"], s.Counters["misses"])
	dmg := balance.TypingDamage(state.TypingBase(s, a.defs), acc, 0)
	target := s.Enemies[hit.Index]
	if a.damage(hit.Index, dmg, "Your words strike") {
		return
	}

	// Survivors get a fresh word and may be frozen by the hero.
	e := &s.Enemies[hit.Index]
	if h, ok := state.Hero(s, a.defs); ok && h.FreezeOnHit > 0 {
		e.Effects[statusFrozen] = h.FreezeOnHit
	}
	e.Word = a.word(a.defs.Enemies[e.Kind], e.Kind, e.ID)
	a.say("'%s' staggers (hp %d/%d). Its word is now '%s'.", target.Word, e.Hp, e.MaxHp, e.Word)
}

// damage hits the enemy at index i and reports whether it died. Dead
// enemies are removed at once so the list never holds hp <= 0.
func (a *applier) damage(i, amount int, source string) bool {
	s := a.s
	s.Enemies[i].Hp -= amount
	e := s.Enemies[i]
	if e.Hp > 0 {
		return false
	}
	s.Enemies = append(s.Enemies[:i], s.Enemies[i+1:]...)
	s.Gold += e.Gold
	s.Counters["kills"]++
	if e.Boss {
		s.Counters["bosses"]++
	}
	a.say("%s: '%s' falls. +%d gold.", source, e.Word, e.Gold)

	if def, ok := a.defs.Enemies[e.Kind]; ok && len(def.Loot) > 0 {
		loot := types.Loot{Source: e.Kind, Resources: map[string]int{}}
		for k, v := range def.Loot {
			if k == "gold" {
				loot.Gold += v
			} else {
				loot.Resources[k] += v
			}
		}
		s.PendingLoot = append(s.PendingLoot, loot)
		a.say("The %s dropped loot. Collect it at dawn.", name(def.Name, def.ID))
	}
	return true
}

// pickRegular draws a regular enemy kind available on the current day.
func (a *applier) pickRegular() (types.EnemyDef, bool) {
	var pool []types.EnemyDef
	var weights []int
	for _, id := range state.SortedKeys(a.defs.Enemies) {
		def := a.defs.Enemies[id]
		if !def.Boss && def.MinDay <= a.s.Day {
			pool = append(pool, def)
			weights = append(weights, max(1, def.Weight))
		}
	}
	if len(pool) == 0 {
		return types.EnemyDef{}, false
	}
	return pool[rng.WeightedSelect(a.s, weights)], true
}

// spawn appends a new enemy of the given kind.
func (a *applier) spawn(def types.EnemyDef) types.Enemy {
	s := a.s
	hp := max(1, def.Hp+balance.EnemyHpBonus(s.Day))
	e := types.Enemy{
		ID:      s.EnemyNextID,
		Kind:    def.ID,
		Hp:      hp,
		MaxHp:   hp,
		Gold:    def.Gold,
		Dist:    max(1, def.Distance),
		Damage:  max(1, def.Damage),
		Boss:    def.Boss,
		Effects: map[string]int{},
	}
	s.EnemyNextID++
	e.Word = a.word(def, def.ID, e.ID)
	s.Enemies = append(s.Enemies, e)
	return e
}

// word picks a word for an enemy, avoiding words already on the field.
func (a *applier) word(def types.EnemyDef, kind string, id int) string {
	s := a.s
	pool := def.Words
	if !def.Boss || len(pool) == 0 {
		pool = a.lessonWords()
	}
	used := map[string]bool{}
	for _, e := range s.Enemies {
		used[words.Normalize(e.Word)] = true
	}
	w := words.Pick(pool, words.Request{
		Seed:   s.RngSeed,
		Day:    s.Day,
		Kind:   kind,
		ID:     id,
		Lesson: s.LessonID,
		MinLen: def.MinLen,
		MaxLen: def.MaxLen,
		Used:   used,
	})
	if w == "" {
		w = kind
	}
	return w
}

func (a *applier) lessonWords() []string {
	if l, ok := a.defs.Lessons[a.s.LessonID]; ok && len(l.Words) > 0 {
		return l.Words
	}
	if l, ok := a.defs.Lessons[a.defs.Game.Lesson]; ok {
		return l.Words
	}
	return nil
}

// towerVolley fires the first auto structure, in tile order, at one enemy.
func (a *applier) towerVolley() {
	s := a.s
	if len(s.Enemies) == 0 {
		return
	}
	for _, idx := range state.SortedTiles(s.Structures) {
		if !strings.HasPrefix(s.Structures[idx], AutoPrefix) {
			continue
		}
		p := simmap.FromIndex(idx, s.MapW)
		i := a.target()
		if !a.damage(i, 1, fmt.Sprintf("Tower at (%d,%d)", p.X, p.Y)) {
			a.say("Tower at (%d,%d) hits '%s' (hp %d/%d).", p.X, p.Y, s.Enemies[i].Word, s.Enemies[i].Hp, s.Enemies[i].MaxHp)
		}
		return
	}
}

// target picks the auto-tower target index by targeting mode. Ties go to
// the earliest spawn.
func (a *applier) target() int {
	es := a.s.Enemies
	best := 0
	for i := 1; i < len(es); i++ {
		switch a.s.TargetingMode {
		case "last":
			best = i
		case "weakest":
			if es[i].Hp < es[best].Hp {
				best = i
			}
		case "strongest":
			if es[i].Hp > es[best].Hp {
				best = i
			}
		case "closest":
			if es[i].Dist < es[best].Dist {
				best = i
			}
		}
	}
	return best
}

// advance moves every enemy one step closer. Frozen enemies skip a step
// and thaw; enemies reaching the keep deal their damage and leave.
func (a *applier) advance() {
	s := a.s
	kept := s.Enemies[:0]
	for _, e := range s.Enemies {
		if n := e.Effects[statusFrozen]; n > 0 {
			if n == 1 {
				delete(e.Effects, statusFrozen)
			} else {
				e.Effects[statusFrozen] = n - 1
			}
			kept = append(kept, e)
			continue
		}
		e.Dist--
		if e.Dist > 0 {
			kept = append(kept, e)
			continue
		}
		s.Hp -= e.Damage
		a.say("'%s' reaches the keep! -%d HP (%d/%d).", e.Word, e.Damage, max(0, s.Hp), s.HpMax)
	}
	s.Enemies = kept
}

// dawn ends a cleared night: victory on the last night, otherwise the next
// day begins.
func (a *applier) dawn() {
	s := a.s
	s.Counters["nights"]++
	s.NightSpawnRemaining = 0
	if s.Day >= balance.VictoryDay {
		s.Phase = types.PhaseVictory
		a.say("Victory! The keep stands after %d nights with %d gold in the treasury.", s.Day, s.Gold)
		a.request(RequestAutosave, "victory")
		return
	}
	s.Day++
	s.Phase = types.PhaseDay
	s.Threat = max(0, s.Threat-1)
	events := tick.AdvanceDay(s, a.defs)
	s.Ap = s.ApMax
	a.say("Dawn breaks. Day %d begins with %d AP.", s.Day, s.Ap)
	a.emit(events...)
	a.request(RequestAutosave, ReasonDawn)
}

func name(display, id string) string {
	if display != "" {
		return display
	}
	return id
}
