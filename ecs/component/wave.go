package component

// WaveDefinition is the immutable template for one wave.
type WaveDefinition struct {
	AttackerType  string  `yaml:"attacker_type" json:"attackerType"`
	Count         int     `yaml:"count" json:"count"`
	SpawnDelay    float64 `yaml:"spawn_delay" json:"spawnDelay"`
	Health        int     `yaml:"health" json:"health"`
	Speed         float64 `yaml:"speed" json:"speed"`
	ScoreValue    int     `yaml:"score_value" json:"scoreValue"`
	ResourceValue int     `yaml:"resource_value" json:"resourceValue"`
	AttackDamage  int     `yaml:"attack_damage" json:"attackDamage"`
	AttackRate    float64 `yaml:"attack_rate" json:"attackRate"`
	Scale         float64 `yaml:"scale" json:"scale"`
}

// WaveDirectorState tracks spawning for the current wave. CurrentIndex is
// -1 before the first wave starts.
type WaveDirectorState struct {
	CurrentIndex     int
	RemainingToSpawn int
	SpawnTimer       float64
	Spawning         bool
}
