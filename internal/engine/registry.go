package engine

// Registry owns every live entity and the id counter.
type Registry struct {
	entities []*Entity
	byID     map[int]*Entity
	nextID   int
}

func NewRegistry() *Registry {
	return &Registry{
		entities: make([]*Entity, 0),
		byID:     make(map[int]*Entity),
		nextID:   1,
	}
}

// NextID allocates a fresh id. Ids are never reused.
func (r *Registry) NextID() int {
	id := r.nextID
	r.nextID++
	return id
}

// Watermark is the id the next NextID call returns.
func (r *Registry) Watermark() int {
	return r.nextID
}

// Advance fast-forwards the counter so the next id is at least id.
func (r *Registry) Advance(id int) {
	if id > r.nextID {
		r.nextID = id
	}
}

// Restore rewinds the counter to a value saved with Watermark.
func (r *Registry) Restore(watermark int) {
	r.nextID = watermark
}

// Add registers e under its id, advancing the counter past it.
func (r *Registry) Add(e *Entity) {
	r.entities = append(r.entities, e)
	r.byID[e.ID] = e
	r.Advance(e.ID + 1)
}

func (r *Registry) Remove(e *Entity) {
	for i, obj := range r.entities {
		if obj == e {
			r.entities = append(r.entities[:i], r.entities[i+1:]...)
			break
		}
	}
	if r.byID[e.ID] == e {
		delete(r.byID, e.ID)
	}
}

func (r *Registry) FindByID(id int) *Entity {
	return r.byID[id]
}

// FindByNode maps a picked node back to its entity.
func (r *Registry) FindByNode(n NodeID) *Entity {
	if n == 0 {
		return nil
	}
	for _, e := range r.entities {
		if e.Visual == n {
			return e
		}
	}
	return nil
}

func (r *Registry) FindByName(name string) *Entity {
	for _, e := range r.entities {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// All returns a snapshot in creation order, safe to range over while mutating.
func (r *Registry) All() []*Entity {
	out := make([]*Entity, len(r.entities))
	copy(out, r.entities)
	return out
}

func (r *Registry) Len() int {
	return len(r.entities)
}

func (r *Registry) Empty() bool {
	return len(r.entities) == 0
}
