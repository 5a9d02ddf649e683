// Package balance holds the pure formulas that size waves, scale damage and
// cap the economy. Nothing here touches the random stream.
package balance

import "math"

const (
	// VictoryDay is the last night; clearing it wins the game.
	VictoryDay = 21

	MaxGatherAmount  = 10
	GatherYield      = 2
	MaxStructureLvl  = 3
	UpgradeGoldPerLv = 5
	BaseStorageCap   = 50
	StoragePerLevel  = 25

	// AmbientDecayTicks is the number of day-phase world ticks per point of
	// ambient threat decay.
	AmbientDecayTicks = 120

	// FogRadius is the discovery radius around the player after a move.
	FogRadius = 1

	// WallPenalty is subtracted from the wave when walls close the path.
	WallPenalty = 2
)

// MilestoneDays are the nights that open with a boss.
var MilestoneDays = []int{7, 14, 21}

var waveTable = []int{3, 4, 4, 5, 6, 6, 7, 8, 8, 9}

// WaveSize returns the base number of regular enemies on a given night.
// Days past the table extrapolate by one enemy per day.
func WaveSize(day int) int {
	if day < 1 {
		day = 1
	}
	if day <= len(waveTable) {
		return waveTable[day-1]
	}
	return waveTable[len(waveTable)-1] + (day - len(waveTable))
}

// NightWave combines the base wave with threat and tower defense, floored at 1.
func NightWave(day, threat, defense int) int {
	n := WaveSize(day) + threat - defense
	if n < 1 {
		return 1
	}
	return n
}

// ApplyWallPenalty reduces a wave whose path to the base is closed.
func ApplyWallPenalty(wave int) int {
	wave -= WallPenalty
	if wave < 1 {
		return 1
	}
	return wave
}

// IsMilestone reports whether a boss opens the given night.
func IsMilestone(day int) bool {
	for _, d := range MilestoneDays {
		if d == day {
			return true
		}
	}
	return false
}

// Accuracy returns the hit ratio in [0, 1]. No attempts counts as perfect.
func Accuracy(hits, misses int) float64 {
	total := hits + misses
	if total <= 0 {
		return 1
	}
	return float64(hits) / float64(total)
}

// WordsPerMinute converts characters typed in elapsedMs to standard words
// (five characters) per minute. Zero elapsed time yields zero.
func WordsPerMinute(chars, elapsedMs int) float64 {
	if elapsedMs <= 0 || chars <= 0 {
		return 0
	}
	return (float64(chars) / 5) / (float64(elapsedMs) / 60000)
}

// TypingDamage scales base damage by accuracy and speed. Accuracy under 70%
// halves the bonus-free damage (minimum 1); 95%+ adds one; 60+ wpm adds one.
func TypingDamage(base int, accuracy, wpm float64) int {
	dmg := base
	switch {
	case accuracy >= 0.95:
		dmg++
	case accuracy < 0.70:
		dmg = int(math.Ceil(float64(dmg) / 2))
	}
	if wpm >= 60 {
		dmg++
	}
	if dmg < 1 {
		return 1
	}
	return dmg
}

// StorageCap returns the per-resource storage limit.
func StorageCap(storehouseLevels, bonus int) int {
	return BaseStorageCap + StoragePerLevel*storehouseLevels + bonus
}

// Production returns the amount a building yields at dawn for one resource.
func Production(perLevel, level, bonus int) int {
	if perLevel <= 0 || level <= 0 {
		return 0
	}
	return perLevel*level + bonus
}

// UpgradeCost is the gold price of raising a structure from level.
func UpgradeCost(level int) int {
	return level * UpgradeGoldPerLv
}

// EnemyHpBonus is the extra hit points every enemy gets on later nights.
func EnemyHpBonus(day int) int {
	if day <= 1 {
		return 0
	}
	return (day - 1) / 7
}

// Refund returns the demolition refund for one cost entry.
func Refund(cost int) int {
	return cost / 2
}
