package system

import (
	"testing"

	"github.com/milk9111/bastion/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaveScriptScales(t *testing.T) {
	src := []byte(`
scale := func(wave, stats) {
	if wave > 1 {
		stats["health"] = stats["health"] * wave
		stats["spawn_delay"] = stats["spawn_delay"] / 2.0
	}
	return stats
}
`)
	script, err := NewWaveScript("test.tengo", src)
	require.NoError(t, err)

	def := goblinWave(4, 2)
	first, err := script.Scale(1, def)
	require.NoError(t, err)
	assert.Equal(t, def, first)

	third, err := script.Scale(3, def)
	require.NoError(t, err)
	assert.Equal(t, 60, third.Health)
	assert.InDelta(t, 1.0, third.SpawnDelay, 1e-9)
	assert.Equal(t, def.Count, third.Count)
	assert.Equal(t, def.AttackerType, third.AttackerType)
}

func TestWaveScriptErrors(t *testing.T) {
	_, err := NewWaveScript("broken.tengo", []byte(`scale := func(wave, stats) {`))
	assert.Error(t, err)

	_, err = NewWaveScript("missing.tengo", []byte(`x := 1`))
	assert.Error(t, err)

	script, err := NewWaveScript("number.tengo", []byte(`scale := func(wave, stats) { return 5 }`))
	require.NoError(t, err)
	def := goblinWave(2, 1)
	out, err := script.Scale(1, def)
	assert.Error(t, err)
	assert.Equal(t, def, out)
}

func TestEmbeddedWaveScriptIsIdentity(t *testing.T) {
	src, err := prefabs.LoadScript("wave_scaling.tengo")
	require.NoError(t, err)
	script, err := NewWaveScript("wave_scaling.tengo", src)
	require.NoError(t, err)

	def := goblinWave(6, 1.5)
	out, err := script.Scale(4, def)
	require.NoError(t, err)
	assert.Equal(t, def, out)

	var nilScript *WaveScript
	out, err = nilScript.Scale(2, def)
	require.NoError(t, err)
	assert.Equal(t, def, out)
}
