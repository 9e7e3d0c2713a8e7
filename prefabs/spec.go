package prefabs

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/bastion/ecs"
	"github.com/milk9111/bastion/ecs/component"
	"github.com/milk9111/bastion/physics"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

func vec3(v [3]float64) mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], v[2]}
}

type ShapeSpec struct {
	HalfExtents [3]float64 `yaml:"half_extents"`
	Radius      float64    `yaml:"radius"`
}

// TemplateSpec is a proxy template as written in YAML.
type TemplateSpec struct {
	Footprint [3]float64 `yaml:"footprint"`
	Shape     ShapeSpec  `yaml:"shape"`
	Color     string     `yaml:"color"`
	Mass      float64    `yaml:"mass"`
}

func (t TemplateSpec) Template(kind string) component.ProxyTemplate {
	return component.ProxyTemplate{
		Kind:      kind,
		Footprint: vec3(t.Footprint),
		Shape: component.ShapeDef{
			HalfExtents: vec3(t.Shape.HalfExtents),
			Radius:      t.Shape.Radius,
		},
		Color: t.Color,
		Mass:  t.Mass,
	}
}

type ArenaSpec struct {
	Physics            physics.Config `yaml:"physics"`
	Center             [3]float64     `yaml:"center"`
	SpawnRadius        float64        `yaml:"spawn_radius"`
	AimOrigin          [3]float64     `yaml:"aim_origin"`
	MessageSeconds     float64        `yaml:"message_seconds"`
	UpgradeCost        int            `yaml:"upgrade_cost"`
	UpgradeDamageBonus int            `yaml:"upgrade_damage_bonus"`
}

func (a ArenaSpec) CenterVec() mgl64.Vec3    { return vec3(a.Center) }
func (a ArenaSpec) AimOriginVec() mgl64.Vec3 { return vec3(a.AimOrigin) }

func LoadArenaSpec() (*ArenaSpec, error) {
	spec, err := LoadSpec[ArenaSpec]("arena.yaml")
	if err != nil {
		return nil, err
	}
	if spec.SpawnRadius <= 0 {
		return nil, &ecs.ConfigurationError{Name: "arena.yaml", Reason: "spawn_radius must be positive"}
	}
	return &spec, nil
}

type BowSpec struct {
	MaxDrawTime    float64      `yaml:"max_draw_time"`
	MinVelocity    float64      `yaml:"min_velocity"`
	MaxVelocity    float64      `yaml:"max_velocity"`
	Cooldown       float64      `yaml:"cooldown"`
	ArrowMass      float64      `yaml:"arrow_mass"`
	SpawnOffset    float64      `yaml:"spawn_offset"`
	BaseDamage     int          `yaml:"base_damage"`
	BonusFactor    float64      `yaml:"bonus_factor"`
	MaxFlightAge   float64      `yaml:"max_flight_age"`
	StuckAge       float64      `yaml:"stuck_age"`
	MaxDistance    float64      `yaml:"max_distance"`
	LinearDamping  float64      `yaml:"linear_damping"`
	AngularDamping float64      `yaml:"angular_damping"`
	Projectile     string       `yaml:"projectile"`
	Arrow          TemplateSpec `yaml:"arrow"`
}

func LoadBowSpec() (*BowSpec, error) {
	spec, err := LoadSpec[BowSpec]("bow.yaml")
	if err != nil {
		return nil, err
	}
	if spec.MaxVelocity < spec.MinVelocity {
		return nil, &ecs.ConfigurationError{Name: "bow.yaml", Reason: "max_velocity below min_velocity"}
	}
	return &spec, nil
}

type AttackerSpec struct {
	TemplateSpec  `yaml:",inline"`
	AttackRange   float64 `yaml:"attack_range"`
	LinearDamping float64 `yaml:"linear_damping"`
}

type AttackersSpec struct {
	Attackers map[string]AttackerSpec `yaml:"attackers"`
}

func LoadAttackersSpec() (*AttackersSpec, error) {
	spec, err := LoadSpec[AttackersSpec]("attackers.yaml")
	if err != nil {
		return nil, err
	}
	for name, a := range spec.Attackers {
		if err := a.Template(name).Validate(); err != nil {
			return nil, fmt.Errorf("prefabs: attackers.yaml: %w", err)
		}
	}
	return &spec, nil
}

type WavesSpec struct {
	Script string                     `yaml:"script"`
	Waves  []component.WaveDefinition `yaml:"waves"`
}

func LoadWavesSpec() (*WavesSpec, error) {
	spec, err := LoadSpec[WavesSpec]("waves.yaml")
	if err != nil {
		return nil, err
	}
	for i, w := range spec.Waves {
		if w.Count < 0 || w.SpawnDelay < 0 {
			return nil, &ecs.ConfigurationError{Name: fmt.Sprintf("waves.yaml[%d]", i), Reason: "negative count or spawn_delay"}
		}
		if w.Scale <= 0 {
			spec.Waves[i].Scale = 1
		}
	}
	return &spec, nil
}

type DecorationSpec struct {
	Position     [3]float64   `yaml:"position"`
	DropHeight   float64      `yaml:"drop_height"`
	Container    TemplateSpec `yaml:"container"`
	Arrow        TemplateSpec `yaml:"arrow"`
	ArrowCount   int          `yaml:"arrow_count"`
	ArrowSpacing float64      `yaml:"arrow_spacing"`
	FreezeAfter  float64      `yaml:"freeze_after"`
	ArrowDelay   float64      `yaml:"arrow_delay"`
}

func (d DecorationSpec) PositionVec() mgl64.Vec3 { return vec3(d.Position) }

func LoadDecorationSpec() (*DecorationSpec, error) {
	spec, err := LoadSpec[DecorationSpec]("decoration.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}
