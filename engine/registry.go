package engine

import (
	"math/rand"
	"sort"

	"github.com/grissess/gscope/model"
)

// Registry owns the identifier-to-host-entity mapping. Entities are
// created lazily on first reference, placed uniformly at random within the
// viewport, and live for the rest of the session. The registry never moves
// an existing host; only the interaction surface does, via drag.
type Registry struct {
	hosts   map[string]*model.Host
	width   float64
	height  float64
	rng     *rand.Rand
	surface model.Surface
}

// NewRegistry creates a registry placing new hosts within width x height.
// surface may be nil when no rendering surface wants creation callbacks.
func NewRegistry(width, height float64, rng *rand.Rand, surface model.Surface) *Registry {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Registry{
		hosts:   make(map[string]*model.Host),
		width:   width,
		height:  height,
		rng:     rng,
		surface: surface,
	}
}

// Resolve returns the entity for id, creating it on first reference. The
// same identifier always yields the same entity, with its position intact.
func (r *Registry) Resolve(id string) *model.Host {
	if h, ok := r.hosts[id]; ok {
		return h
	}
	h := &model.Host{
		ID:    id,
		Label: id,
		X:     r.rng.Float64() * r.width,
		Y:     r.rng.Float64() * r.height,
	}
	r.hosts[id] = h
	if r.surface != nil {
		r.surface.AddNode(h)
	}
	return h
}

// Len reports how many hosts have been created.
func (r *Registry) Len() int {
	return len(r.hosts)
}

// Hosts returns the registered hosts in stable identifier order.
func (r *Registry) Hosts() []*model.Host {
	out := make([]*model.Host, 0, len(r.hosts))
	for _, h := range r.hosts {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
