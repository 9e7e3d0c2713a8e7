package prefabs

import (
	"log"

	"github.com/milk9111/bastion/ecs/component"
)

// Catalog maps visual kinds to proxy templates. It satisfies the combat
// loop's asset collaborator.
type Catalog struct {
	templates map[string]component.ProxyTemplate
}

func NewCatalog() *Catalog {
	return &Catalog{templates: make(map[string]component.ProxyTemplate)}
}

// LoadCatalog builds a catalog from attackers.yaml and the arrow in bow.yaml.
func LoadCatalog() (*Catalog, error) {
	attackers, err := LoadAttackersSpec()
	if err != nil {
		return nil, err
	}
	bow, err := LoadBowSpec()
	if err != nil {
		return nil, err
	}
	c := NewCatalog()
	for name, a := range attackers.Attackers {
		c.Put(a.Template(name))
	}
	c.Put(bow.Arrow.Template(bow.Projectile))
	return c, nil
}

func (c *Catalog) Put(t component.ProxyTemplate) {
	if c == nil || t.Kind == "" {
		return
	}
	if c.templates == nil {
		c.templates = make(map[string]component.ProxyTemplate)
	}
	c.templates[t.Kind] = t
}

func (c *Catalog) Delete(kind string) {
	if c == nil {
		return
	}
	delete(c.templates, kind)
}

// Template returns the template for kind.
func (c *Catalog) Template(kind string) (component.ProxyTemplate, bool) {
	if c == nil {
		return component.ProxyTemplate{}, false
	}
	t, ok := c.templates[kind]
	if !ok {
		log.Printf("prefabs: no template for %q", kind)
	}
	return t, ok
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.templates)
}
