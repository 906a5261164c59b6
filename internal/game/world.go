package game

import (
	"math"
	"sort"

	"katamini/internal/level"
)

// World is the flat object store for one level attempt. Objects are never
// deleted; absorption flips their state and takes them out of the indexes.
type World struct {
	entities []*Entity
	byID     map[string]*Entity
	Grid     *SpatialGrid

	free      int       // free objects, loaded or not
	bySize    []*Entity // collidable objects sorted by size
	maxRadius float64   // largest collision radius ever indexed
}

// NewWorld spawns one entity per instance. Nothing is collidable until
// MarkReady is called for it.
func NewWorld(instances []level.Instance) *World {
	w := &World{
		entities: make([]*Entity, 0, len(instances)),
		byID:     make(map[string]*Entity, len(instances)),
		Grid:     NewSpatialGrid(GridCellSize),
	}
	for _, inst := range instances {
		inst.Index = len(w.entities)
		e := newEntity(inst)
		w.entities = append(w.entities, e)
		w.byID[e.ID] = e
		w.free++
	}
	return w
}

// Entities returns every object in stored order.
func (w *World) Entities() []*Entity { return w.entities }

// Get returns an entity by id.
func (w *World) Get(id string) (*Entity, bool) {
	e, ok := w.byID[id]
	return e, ok
}

// At returns the entity at a stored index.
func (w *World) At(i int) *Entity { return w.entities[i] }

// LiveCount is the number of objects not yet absorbed, loaded or not.
func (w *World) LiveCount() int { return w.free }

// MarkReady makes a spawned object collidable. fallback records that the
// model failed to load; size and collision are unaffected.
func (w *World) MarkReady(i int, fallback bool) {
	if i < 0 || i >= len(w.entities) {
		return
	}
	e := w.entities[i]
	if e.Ready || e.State != Free {
		return
	}
	e.Ready = true
	e.Fallback = fallback
	w.Grid.Insert(e)
	pos := sort.Search(len(w.bySize), func(j int) bool {
		return w.bySize[j].size > e.size
	})
	w.bySize = append(w.bySize, nil)
	copy(w.bySize[pos+1:], w.bySize[pos:])
	w.bySize[pos] = e
	if r := e.Radius(); r > w.maxRadius {
		w.maxRadius = r
	}
}

// MarkAllReady makes every spawned object collidable.
func (w *World) MarkAllReady() {
	for i := range w.entities {
		w.MarkReady(i, false)
	}
}

// Smallest returns the size of the smallest collidable object, or +Inf
// when none is on the field.
func (w *World) Smallest() float64 {
	if len(w.bySize) == 0 {
		return math.Inf(1)
	}
	return w.bySize[0].size
}

// Absorb takes a free object off the field.
func (w *World) Absorb(e *Entity) {
	if e.State != Free {
		return
	}
	if e.Ready {
		w.Grid.Remove(e)
		w.removeBySize(e)
	}
	e.State = Absorbed
	w.free--
}

// Release marks every object removed when the level is torn down.
func (w *World) Release() {
	for _, e := range w.entities {
		e.State = Removed
	}
	w.Grid.Clear()
	w.bySize = nil
	w.free = 0
}

// Candidates returns collidable objects that may touch a sphere of the
// given radius at (x,z), in stored order.
func (w *World) Candidates(x, z, radius float64) []*Entity {
	idx := w.Grid.Nearby(x, z, radius+w.maxRadius)
	out := make([]*Entity, 0, len(idx))
	for _, i := range idx {
		if e := w.entities[i]; e.Collidable() {
			out = append(out, e)
		}
	}
	return out
}

// Collidable returns every collidable object in stored order.
func (w *World) Collidable() []*Entity {
	out := make([]*Entity, 0, len(w.bySize))
	for _, e := range w.entities {
		if e.Collidable() {
			out = append(out, e)
		}
	}
	return out
}

func (w *World) removeBySize(e *Entity) {
	lo := sort.Search(len(w.bySize), func(j int) bool {
		return w.bySize[j].size >= e.size
	})
	for j := lo; j < len(w.bySize) && w.bySize[j].size == e.size; j++ {
		if w.bySize[j] == e {
			w.bySize = append(w.bySize[:j], w.bySize[j+1:]...)
			return
		}
	}
}
