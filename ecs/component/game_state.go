package component

// GameState is the aggregate score and health shared by the combat loop,
// the UI and persistence. Fields are mutated only through its methods.
type GameState struct {
	DefenderHealth     int  `json:"playerHealth"`
	StructureHealth    int  `json:"towerHealth"`
	MaxStructureHealth int  `json:"maxTowerHealth"`
	Score              int  `json:"score"`
	Resources          int  `json:"resources"`
	CurrentWave        int  `json:"currentWave"`
	UpgradeLevel       int  `json:"upgradeLevel"`
	GameOver           bool `json:"-"`
}

const (
	DefaultDefenderHealth  = 100
	DefaultStructureHealth = 100
)

func NewGameState() *GameState {
	return &GameState{
		DefenderHealth:     DefaultDefenderHealth,
		StructureHealth:    DefaultStructureHealth,
		MaxStructureHealth: DefaultStructureHealth,
	}
}

// ApplyStructureDamage subtracts n from the structure, clamped at zero, and
// returns the remaining health.
func (s *GameState) ApplyStructureDamage(n int) int {
	if s == nil {
		return 0
	}
	if n > 0 && !s.GameOver {
		s.StructureHealth = max(0, s.StructureHealth-n)
	}
	return s.StructureHealth
}

func (s *GameState) ApplyDefenderDamage(n int) int {
	if s == nil {
		return 0
	}
	if n > 0 && !s.GameOver {
		s.DefenderHealth = max(0, s.DefenderHealth-n)
	}
	return s.DefenderHealth
}

// ApplyReward credits a kill.
func (s *GameState) ApplyReward(score, resources int) {
	if s == nil {
		return
	}
	s.Score += max(0, score)
	s.Resources += max(0, resources)
}

// SetWave publishes the 1-based wave number.
func (s *GameState) SetWave(n int) {
	if s == nil {
		return
	}
	s.CurrentWave = n
}

// SpendResources deducts n if affordable.
func (s *GameState) SpendResources(n int) bool {
	if s == nil || n < 0 || s.Resources < n {
		return false
	}
	s.Resources -= n
	return true
}

func (s *GameState) Upgrade() {
	if s == nil {
		return
	}
	s.UpgradeLevel++
}

// Defeated reports whether the defender or the structure has fallen.
func (s *GameState) Defeated() bool {
	return s != nil && (s.DefenderHealth <= 0 || s.StructureHealth <= 0)
}

// MarkGameOver sets GameOver and reports whether this call set it.
func (s *GameState) MarkGameOver() bool {
	if s == nil || s.GameOver {
		return false
	}
	s.GameOver = true
	return true
}

// Restore copies persisted progress into s. GameOver is never restored.
func (s *GameState) Restore(saved GameState) {
	if s == nil {
		return
	}
	s.DefenderHealth = saved.DefenderHealth
	s.StructureHealth = saved.StructureHealth
	if saved.MaxStructureHealth > 0 {
		s.MaxStructureHealth = saved.MaxStructureHealth
	}
	s.Score = saved.Score
	s.Resources = saved.Resources
	s.CurrentWave = saved.CurrentWave
	s.UpgradeLevel = saved.UpgradeLevel
	s.GameOver = false
}

// Snapshot returns a copy safe to hand to other goroutines.
func (s *GameState) Snapshot() GameState {
	if s == nil {
		return GameState{}
	}
	return *s
}
