package physics

// Config holds the world parameters loaded from arena.yaml.
type Config struct {
	TimeStep    float64           `yaml:"time_step"`
	MaxSubSteps int               `yaml:"max_sub_steps"`
	Gravity     float64           `yaml:"gravity"`
	Iterations  int               `yaml:"iterations"`
	Contacts    []ContactMaterial `yaml:"contacts"`
	Structure   StructureConfig   `yaml:"structure"`
	Walls       WallConfig        `yaml:"walls"`
}

// StructureConfig places the defended structure.
type StructureConfig struct {
	Position    [3]float64 `yaml:"position"`
	HalfExtents [3]float64 `yaml:"half_extents"`
}

// WallConfig describes the square arena boundary. A zero HalfSize disables it.
type WallConfig struct {
	HalfSize   float64 `yaml:"half_size"`
	HalfHeight float64 `yaml:"half_height"`
}

// DefaultConfig mirrors the embedded arena definition.
func DefaultConfig() Config {
	return Config{
		TimeStep:    1.0 / 60.0,
		MaxSubSteps: 3,
		Gravity:     -9.82,
		Iterations:  10,
		Contacts:    DefaultContacts(),
		Structure: StructureConfig{
			HalfExtents: [3]float64{0.4, 0.75, 0.5},
		},
		Walls: WallConfig{HalfSize: 40, HalfHeight: 2},
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.TimeStep <= 0 {
		c.TimeStep = def.TimeStep
	}
	if c.MaxSubSteps <= 0 {
		c.MaxSubSteps = def.MaxSubSteps
	}
	if c.Iterations <= 0 {
		c.Iterations = def.Iterations
	}
	if c.Contacts == nil {
		c.Contacts = def.Contacts
	}
	return c
}
