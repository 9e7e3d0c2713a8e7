package physics

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/bastion/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w := NewWorld(DefaultConfig())
	require.NoError(t, w.Init())
	return w
}

func arrowDef(pos, vel mgl64.Vec3, ballistic bool) BodyDef {
	return BodyDef{
		Kind:        KindProjectile,
		Material:    MaterialProjectile,
		Mass:        0.1,
		Radius:      0.05,
		HalfExtents: mgl64.Vec3{0.05, 0.05, 0.05},
		Position:    pos,
		Velocity:    vel,
		Ballistic:   ballistic,
		Bullet:      true,
	}
}

func TestMaterialBeforeInit(t *testing.T) {
	w := NewWorld(DefaultConfig())
	_, err := w.Material(MaterialGround)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ecs.ErrConfiguration))

	require.NoError(t, w.Init())
	for _, name := range materialNames {
		m, err := w.Material(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, m.Name)
	}

	_, err = w.Material("lava")
	assert.ErrorIs(t, err, ecs.ErrConfiguration)
}

func TestInitRejectsUnknownContactMaterial(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Contacts = append(cfg.Contacts, ContactMaterial{A: "ice", B: MaterialGround, Friction: 0.01})
	w := NewWorld(cfg)
	err := w.Init()
	require.ErrorIs(t, err, ecs.ErrConfiguration)
	assert.False(t, w.Ready())
}

func TestDerivedShapeCoefficients(t *testing.T) {
	w := newTestWorld(t)
	tests := []struct {
		name        string
		friction    float64
		restitution float64
	}{
		{MaterialGround, 1, 1},
		{MaterialDefender, 1, 1},
		{MaterialAttacker, 0.4, 0.1},
		{MaterialProjectile, 0.1, 0.4},
		{MaterialContainer, 0.6, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := w.Material(tt.name)
			require.NoError(t, err)
			assert.InDelta(t, tt.friction, m.Friction, 1e-9)
			assert.InDelta(t, tt.restitution, m.Restitution, 1e-9)
		})
	}

	pair, ok := w.ContactMaterial(MaterialProjectile, MaterialAttacker)
	require.True(t, ok)
	assert.True(t, pair.EventOnly())
}

func TestStepSubstepCount(t *testing.T) {
	tests := []struct {
		name string
		dts  []float64
		want []int
	}{
		{"one_frame", []float64{1.0 / 60}, []int{1}},
		{"hitch_capped", []float64{0.5}, []int{3}},
		{"half_frames_accumulate", []float64{1.0 / 120, 1.0 / 120}, []int{0, 1}},
		{"zero_dt", []float64{0}, []int{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t)
			for i, dt := range tt.dts {
				assert.Equal(t, tt.want[i], w.Step(dt), "step %d", i)
			}
		})
	}
}

func TestStructureIsStatic(t *testing.T) {
	w := newTestWorld(t)
	s := w.Structure()
	require.NotNil(t, s)
	assert.Equal(t, KindStructure, s.Kind())
	assert.Equal(t, MaterialDefender, s.Material())
	assert.Zero(t, s.Mass())
	assert.True(t, s.IsStatic())
	assert.InDelta(t, 0.75, s.Position().Y(), 1e-9)
}

func TestFreezeOnStaticContact(t *testing.T) {
	w := newTestWorld(t)
	arrow, err := w.NewBody(arrowDef(mgl64.Vec3{-3, 0.75, 0}, mgl64.Vec3{30, 0, 0}, true))
	require.NoError(t, err)
	require.NoError(t, w.AddBody(arrow))

	var hits []Kind
	w.Subscribe(arrow, func(c Contact) {
		hits = append(hits, c.Other.Kind())
		if c.Other.IsStatic() {
			w.Freeze(c.Self)
		}
	})

	for i := 0; i < 60 && len(hits) == 0; i++ {
		w.Step(1.0 / 60)
	}
	require.Equal(t, []Kind{KindStructure}, hits)
	assert.False(t, arrow.Subscribed())

	for i := 0; i < 30; i++ {
		w.Step(1.0 / 60)
		require.Zero(t, arrow.Mass(), "tick %d", i)
		require.Equal(t, mgl64.Vec3{}, arrow.Velocity(), "tick %d", i)
	}
	assert.True(t, arrow.IsStatic())
	assert.Len(t, hits, 1)
}

func TestBallisticGroundContact(t *testing.T) {
	w := newTestWorld(t)
	arrow, err := w.NewBody(arrowDef(mgl64.Vec3{5, 2, 5}, mgl64.Vec3{1, 0, 0}, true))
	require.NoError(t, err)
	require.NoError(t, w.AddBody(arrow))

	var other *Body
	w.Subscribe(arrow, func(c Contact) {
		other = c.Other
		w.Freeze(c.Self)
	})
	for i := 0; i < 120 && other == nil; i++ {
		w.Step(1.0 / 60)
	}
	require.NotNil(t, other)
	assert.Equal(t, KindGround, other.Kind())
	assert.Same(t, w.Ground(), other)
	assert.InDelta(t, 0.05, arrow.Position().Y(), 1e-9)
}

func TestEventOnlyPairPassesThrough(t *testing.T) {
	tests := []struct {
		name      string
		elevation float64
		wantHits  int
	}{
		{"level_shot_hits", 0.75, 1},
		{"high_shot_misses", 3.0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t)
			target, err := w.NewBody(BodyDef{
				Kind:          KindAttacker,
				Owner:         ecs.Entity(7),
				Material:      MaterialAttacker,
				Mass:          5,
				HalfExtents:   mgl64.Vec3{0.4, 0.75, 0.4},
				Position:      mgl64.Vec3{0, 0.75, 5},
				FixedRotation: true,
			})
			require.NoError(t, err)
			require.NoError(t, w.AddBody(target))

			arrow, err := w.NewBody(arrowDef(mgl64.Vec3{-3, tt.elevation, 5}, mgl64.Vec3{20, 0, 0}, false))
			require.NoError(t, err)
			require.NoError(t, w.AddBody(arrow))

			hits := 0
			w.Subscribe(arrow, func(c Contact) {
				if c.Other.Kind() == KindAttacker {
					assert.Equal(t, ecs.Entity(7), c.Other.Owner())
					hits++
				}
			})
			for i := 0; i < 30; i++ {
				w.Step(1.0 / 60)
			}
			assert.Equal(t, tt.wantHits, hits)
			assert.InDelta(t, 20, arrow.Velocity().X(), 0.5)
			assert.InDelta(t, 0, target.Velocity().Len(), 1e-6)
		})
	}
}

func TestRemoveBodyDuringStepIsRejected(t *testing.T) {
	w := newTestWorld(t)
	arrow, err := w.NewBody(arrowDef(mgl64.Vec3{-3, 0.75, 0}, mgl64.Vec3{30, 0, 0}, false))
	require.NoError(t, err)
	require.NoError(t, w.AddBody(arrow))

	var removeErr error
	w.Subscribe(arrow, func(c Contact) {
		removeErr = w.RemoveBody(c.Self)
		w.Unsubscribe(c.Self)
	})
	for i := 0; i < 60 && removeErr == nil; i++ {
		w.Step(1.0 / 60)
	}
	require.ErrorIs(t, removeErr, ErrWorldLocked)

	count := w.BodyCount()
	require.NoError(t, w.RemoveBody(arrow))
	assert.Equal(t, count-1, w.BodyCount())
	require.NoError(t, w.RemoveBody(arrow), "second removal is a no-op")
	assert.Equal(t, count-1, w.BodyCount())
}

func TestRemoveBodyDetachesSubscription(t *testing.T) {
	w := newTestWorld(t)
	b, err := w.NewBody(arrowDef(mgl64.Vec3{10, 1, 10}, mgl64.Vec3{}, false))
	require.NoError(t, err)
	require.NoError(t, w.AddBody(b))
	w.Subscribe(b, func(Contact) {})
	require.True(t, b.Subscribed())
	require.NoError(t, w.RemoveBody(b))
	assert.False(t, b.Subscribed())
}
