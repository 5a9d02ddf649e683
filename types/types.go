// Package types defines the shared data structures for the Nightkeep simulation.
// This package contains only type definitions: no logic, no methods.
package types

// Phase is the coarse state of the day/night cycle.
type Phase string

const (
	PhaseDay      Phase = "day"
	PhaseNight    Phase = "night"
	PhaseGameOver Phase = "game_over"
	PhaseVictory  Phase = "victory"
)

// Resource keys. The ledger never holds any other key.
const (
	ResourceWood  = "wood"
	ResourceStone = "stone"
	ResourceFood  = "food"
)

// ResourceKeys lists the ledger keys in display order.
var ResourceKeys = []string{ResourceWood, ResourceStone, ResourceFood}

// Terrain kinds. An empty string marks a tile that has not been generated yet.
const (
	TerrainPlains   = "plains"
	TerrainForest   = "forest"
	TerrainHills    = "hills"
	TerrainWater    = "water"
	TerrainMountain = "mountain"
)

// Vec2 is a tile coordinate.
type Vec2 struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Enemy is a single attacker approaching the base during the night.
type Enemy struct {
	ID      int            `json:"id"`
	Kind    string         `json:"kind"`
	Word    string         `json:"word"`
	Hp      int            `json:"hp"`
	MaxHp   int            `json:"max_hp"`
	Gold    int            `json:"gold"`
	Dist    int            `json:"dist"`
	Damage  int            `json:"damage"`
	Boss    bool           `json:"boss"`
	Effects map[string]int `json:"effects"` // status → remaining steps
}

// Loot is an uncollected reward waiting at the base.
type Loot struct {
	Source    string         `json:"source"`
	Gold      int            `json:"gold"`
	Resources map[string]int `json:"resources"`
}

// GameState is the complete mutable game state.
type GameState struct {
	Day    int   `json:"day"`
	Phase  Phase `json:"phase"`
	Ap     int   `json:"ap"`
	ApMax  int   `json:"ap_max"`
	Hp     int   `json:"hp"`
	HpMax  int   `json:"hp_max"`
	Threat int   `json:"threat"`
	Gold   int   `json:"gold"`

	Resources map[string]int `json:"resources"`

	MapW            int            `json:"map_w"`
	MapH            int            `json:"map_h"`
	Terrain         []string       `json:"terrain"`
	BasePos         Vec2           `json:"base_pos"`
	CursorPos       Vec2           `json:"cursor_pos"`
	PlayerPos       Vec2           `json:"player_pos"`
	PlayerFacing    string         `json:"player_facing"`
	Discovered      map[int]bool   `json:"discovered"`
	Structures      map[int]string `json:"structures"`
	StructureLevels map[int]int    `json:"structure_levels"`
	BuildingCounts  map[string]int `json:"building_counts"`
	Pois            map[int]string `json:"pois"`

	Enemies             []Enemy `json:"enemies"`
	EnemyNextID         int     `json:"enemy_next_id"`
	NightWaveTotal      int     `json:"night_wave_total"`
	NightSpawnRemaining int     `json:"night_spawn_remaining"`
	LastPathOpen        bool    `json:"last_path_open"`
	TargetingMode       string  `json:"targeting_mode"`
	PracticeMode        bool    `json:"practice_mode"`

	RngSeed    string `json:"rng_seed"`
	RngState   int64  `json:"rng_state"`
	LessonID   string `json:"lesson_id"`
	Locale     string `json:"locale"`
	WorldClock int    `json:"world_clock"`

	ActiveResearch    string          `json:"active_research"`
	ResearchProgress  int             `json:"research_progress"`
	CompletedResearch map[string]bool `json:"completed_research"`
	TradeRates        map[string]int  `json:"trade_rates"`
	PurchasedUpgrades map[string]bool `json:"purchased_upgrades"`
	UnlockedTitles    map[string]bool `json:"unlocked_titles"`
	EquippedTitle     string          `json:"equipped_title"`
	HeroID            string          `json:"hero_id"`
	PendingEvent      string          `json:"pending_event"`
	PendingLoot       []Loot          `json:"pending_loot"`
	Flags             map[string]bool `json:"flags"`
	Counters          map[string]int  `json:"counters"`
	Modifiers         map[string]int  `json:"modifiers"`
}

// Request asks the host to perform I/O outside the pure state transform.
type Request struct {
	Kind   string `json:"kind"` // "save", "load", "autosave"
	Reason string `json:"reason,omitempty"`
}

// Result is the output of applying one intent.
type Result struct {
	State   *GameState
	Events  []string
	Request *Request
}

// Effect is a single atomic state mutation instruction from content.
type Effect struct {
	Type   string
	Params map[string]any
}

// Condition is a predicate over the game state used by content.
type Condition struct {
	Type   string         // "day_at_least", "has_resource", "flag_set", etc.
	Params map[string]any // condition-specific parameters
	Negate bool           // true if wrapped in Not()
	Inner  *Condition     // for Not(): the negated inner condition
}

// GameDef holds game-wide content settings.
type GameDef struct {
	Title          string
	Version        string
	MapW           int
	MapH           int
	ApMax          int
	Hp             int
	StartGold      int
	StartResources map[string]int
	TradeRate      int
	Lesson         string
	Locale         string
	Intro          string
	Towers         []TowerDef // placed on every new game
}

// TowerDef is a structure standing on the map from day 1.
type TowerDef struct {
	Kind string
	X, Y int
}

// BuildingDef describes a buildable structure.
type BuildingDef struct {
	ID          string
	Name        string
	Cost        map[string]int
	Produces    map[string]int
	Defense     int
	Storage     bool // raises the storage cap per level
	BlocksPath  bool
	Description string
}

// EnemyDef describes an enemy kind. Boss kinds carry the day they appear on.
type EnemyDef struct {
	ID       string
	Name     string
	Hp       int
	Damage   int
	Gold     int
	Distance int
	MinDay   int
	Weight   int // relative spawn weight among eligible kinds; 0 counts as 1
	MinLen   int
	MaxLen   int
	Boss     bool
	BossDay  int
	Words    []string // boss-only word list; regular kinds draw from the lesson
	Loot     map[string]int
}

// HeroDef describes a selectable hero and the bonuses they grant.
type HeroDef struct {
	ID           string
	Name         string
	TypingDamage int
	ApBonus      int
	HpBonus      int
	FreezeOnHit  int
	Description  string
}

// ResearchDef describes a research project.
type ResearchDef struct {
	ID       string
	Name     string
	Cost     int
	Days     int
	Requires []Condition
	Effects  []Effect
}

// UpgradeDef describes a one-time kingdom upgrade bought with gold.
type UpgradeDef struct {
	ID       string
	Name     string
	Cost     int
	Requires []Condition
	Effects  []Effect
}

// TitleDef describes an unlockable title.
type TitleDef struct {
	ID       string
	Name     string
	Requires []Condition
}

// LessonDef is a word list used to generate enemy words.
type LessonDef struct {
	ID    string
	Name  string
	Words []string
}

// LocaleDef is a selectable display locale.
type LocaleDef struct {
	ID   string
	Name string
}

// ChoiceDef is a single option of a point-of-interest event.
type ChoiceDef struct {
	ID       string
	Text     string
	Phrase   string // must be typed to succeed; empty means no phrase needed
	Requires []Condition
	Effects  []Effect
	Fail     []Effect
}

// EventDef describes a point-of-interest event.
type EventDef struct {
	ID      string
	Text    string
	Weight  int
	Choices []ChoiceDef
}
