package component

// Scene holds the proxies currently visible. Attach and Detach are the only
// way proxies enter or leave it.
type Scene struct {
	proxies []*Proxy
}

func NewScene() *Scene {
	return &Scene{}
}

// Attach adds p. Attaching an attached proxy is a no-op.
func (s *Scene) Attach(p *Proxy) {
	if s == nil || p == nil || p.attached {
		return
	}
	p.attached = true
	s.proxies = append(s.proxies, p)
}

// Detach removes p and reports whether it was attached.
func (s *Scene) Detach(p *Proxy) bool {
	if s == nil || p == nil || !p.attached {
		return false
	}
	for i, other := range s.proxies {
		if other == p {
			s.proxies = append(s.proxies[:i], s.proxies[i+1:]...)
			break
		}
	}
	p.attached = false
	return true
}

func (s *Scene) Len() int {
	if s == nil {
		return 0
	}
	return len(s.proxies)
}

// Proxies returns the attached proxies in attach order.
func (s *Scene) Proxies() []*Proxy {
	if s == nil {
		return nil
	}
	return s.proxies
}
