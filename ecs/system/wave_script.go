package system

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/bastion/ecs/component"
)

const waveScaleDispatchScript = `
__result := scale(__wave, __stats)
`

// WaveScript runs a tengo `scale(wave, stats)` function over wave stats.
type WaveScript struct {
	name     string
	compiled *tengo.Compiled
}

// NewWaveScript compiles src. The script must define `scale`.
func NewWaveScript(name string, src []byte) (*WaveScript, error) {
	script := tengo.NewScript([]byte(string(src) + "\n" + waveScaleDispatchScript))
	_ = script.Add("__wave", 0)
	_ = script.Add("__stats", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("wave script %s: compile: %w", name, err)
	}
	return &WaveScript{name: name, compiled: compiled}, nil
}

// Scale runs the script for a 1-based wave number. Keys the script leaves
// out keep their original values.
func (s *WaveScript) Scale(waveNumber int, def component.WaveDefinition) (component.WaveDefinition, error) {
	if s == nil || s.compiled == nil {
		return def, nil
	}
	if err := s.compiled.Set("__wave", waveNumber); err != nil {
		return def, err
	}
	if err := s.compiled.Set("__stats", waveToMap(def)); err != nil {
		return def, err
	}
	if err := s.compiled.Run(); err != nil {
		return def, fmt.Errorf("wave script %s: run: %w", s.name, err)
	}
	out := s.compiled.Get("__result").Map()
	if out == nil {
		return def, fmt.Errorf("wave script %s: scale must return a map", s.name)
	}
	return waveFromMap(def, out), nil
}

func waveToMap(def component.WaveDefinition) map[string]any {
	return map[string]any{
		"attacker_type":  def.AttackerType,
		"count":          def.Count,
		"spawn_delay":    def.SpawnDelay,
		"health":         def.Health,
		"speed":          def.Speed,
		"score_value":    def.ScoreValue,
		"resource_value": def.ResourceValue,
		"attack_damage":  def.AttackDamage,
		"attack_rate":    def.AttackRate,
		"scale":          def.Scale,
	}
}

func waveFromMap(def component.WaveDefinition, m map[string]any) component.WaveDefinition {
	if v, ok := m["attacker_type"].(string); ok && v != "" {
		def.AttackerType = v
	}
	setInt(&def.Count, m["count"])
	setFloat(&def.SpawnDelay, m["spawn_delay"])
	setInt(&def.Health, m["health"])
	setFloat(&def.Speed, m["speed"])
	setInt(&def.ScoreValue, m["score_value"])
	setInt(&def.ResourceValue, m["resource_value"])
	setInt(&def.AttackDamage, m["attack_damage"])
	setFloat(&def.AttackRate, m["attack_rate"])
	setFloat(&def.Scale, m["scale"])
	return def
}

func setInt(dst *int, v any) {
	switch n := v.(type) {
	case int64:
		*dst = int(n)
	case int:
		*dst = n
	case float64:
		*dst = int(n + 0.5)
	}
}

func setFloat(dst *float64, v any) {
	switch n := v.(type) {
	case float64:
		*dst = n
	case int64:
		*dst = float64(n)
	case int:
		*dst = float64(n)
	}
}
