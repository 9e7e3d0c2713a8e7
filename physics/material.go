package physics

import "github.com/jakecoffman/cp"

const (
	MaterialGround     = "ground"
	MaterialDefender   = "defender"
	MaterialAttacker   = "attacker"
	MaterialProjectile = "projectile"
	MaterialContainer  = "container"
)

var materialNames = []string{
	MaterialGround,
	MaterialDefender,
	MaterialAttacker,
	MaterialProjectile,
	MaterialContainer,
}

// static materials only ever belong to immovable geometry.
var staticMaterials = map[string]bool{
	MaterialGround:   true,
	MaterialDefender: true,
}

// Material is a named surface. Friction and Restitution are the per-shape
// coefficients the engine multiplies together for a contact.
type Material struct {
	Name        string
	Friction    float64
	Restitution float64

	collisionType cp.CollisionType
}

// ContactMaterial is the friction/restitution of one material pair.
type ContactMaterial struct {
	A           string  `yaml:"a"`
	B           string  `yaml:"b"`
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
}

// EventOnly reports whether the pair has no physical response and is
// resolved entirely by contact subscribers.
func (c ContactMaterial) EventOnly() bool {
	return c.Friction == 0 && c.Restitution == 0
}

func (c ContactMaterial) involves(name string) (other string, ok bool) {
	switch name {
	case c.A:
		return c.B, true
	case c.B:
		return c.A, true
	}
	return "", false
}

// DefaultContacts is the pair table used when the arena definition has none.
func DefaultContacts() []ContactMaterial {
	return []ContactMaterial{
		{A: MaterialGround, B: MaterialAttacker, Friction: 0.4, Restitution: 0.1},
		{A: MaterialGround, B: MaterialProjectile, Friction: 0.1, Restitution: 0.4},
		{A: MaterialAttacker, B: MaterialProjectile, Friction: 0, Restitution: 0},
		{A: MaterialDefender, B: MaterialAttacker, Friction: 0.2, Restitution: 0},
		{A: MaterialDefender, B: MaterialContainer, Friction: 0.5, Restitution: 0.1},
		{A: MaterialGround, B: MaterialContainer, Friction: 0.6, Restitution: 0.1},
		{A: MaterialProjectile, B: MaterialContainer, Friction: 0.1, Restitution: 0.2},
	}
}

type pairKey struct{ a, b string }

func makePairKey(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// buildMaterials derives per-shape coefficients from the pair table. Static
// materials get 1 so a contact against them yields the dynamic material's
// pair value; a dynamic material takes its value against ground, falling
// back to the defender pair.
func buildMaterials(contacts []ContactMaterial) map[string]Material {
	out := make(map[string]Material, len(materialNames))
	for i, name := range materialNames {
		m := Material{Name: name, collisionType: cp.CollisionType(i + 1)}
		if staticMaterials[name] {
			m.Friction, m.Restitution = 1, 1
			out[name] = m
			continue
		}
		m.Friction, m.Restitution = 0.5, 0
		found := false
		for _, partner := range []string{MaterialGround, MaterialDefender} {
			for _, c := range contacts {
				other, ok := c.involves(name)
				if !ok || other != partner {
					continue
				}
				m.Friction, m.Restitution = c.Friction, c.Restitution
				found = true
				break
			}
			if found {
				break
			}
		}
		out[name] = m
	}
	return out
}
