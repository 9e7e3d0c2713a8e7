package system

import (
	"fmt"
	"log"
	"path"

	"github.com/milk9111/bastion/prefabs"
)

// Reload re-reads one prefab file and applies it at the frame boundary.
// Arena and decoration changes only take effect on the next launch.
func (l *CombatLoop) Reload(name string, catalog *prefabs.Catalog) error {
	switch {
	case name == "bow.yaml":
		spec, err := prefabs.LoadBowSpec()
		if err != nil {
			return err
		}
		l.ApplyBowSpec(*spec, catalog)
	case name == "attackers.yaml":
		spec, err := prefabs.LoadAttackersSpec()
		if err != nil {
			return err
		}
		l.ApplyAttackers(spec.Attackers, catalog)
	case name == "waves.yaml" || path.Ext(name) == ".tengo":
		spec, err := prefabs.LoadWavesSpec()
		if err != nil {
			return err
		}
		var scaler WaveScaler
		if spec.Script != "" {
			src, err := prefabs.LoadScript(spec.Script)
			if err != nil {
				return fmt.Errorf("system: reload wave script: %w", err)
			}
			script, err := NewWaveScript(spec.Script, src)
			if err != nil {
				return err
			}
			scaler = script
		}
		l.ApplyWaves(spec.Waves, scaler)
	case name == "arena.yaml" || name == "decoration.yaml":
		log.Printf("CombatLoop: %s changed; restart to apply", name)
		return nil
	default:
		return nil
	}
	log.Printf("CombatLoop: reloaded %s", name)
	return nil
}
