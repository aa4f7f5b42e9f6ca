package floorplan

// Registry is an immutable, insertion-ordered set of tables keyed by id.
// Every mutation returns a new Registry and leaves the receiver untouched,
// so a caller holding an older snapshot never observes later changes.
type Registry struct {
	tables  []Table
	index   map[string]int
	version uint64
}

func NewRegistry(tables ...Table) (*Registry, error) {
	r := &Registry{index: make(map[string]int, len(tables))}
	for _, t := range tables {
		if _, ok := r.index[t.ID]; ok {
			return nil, ErrDuplicateID
		}
		r.index[t.ID] = len(r.tables)
		r.tables = append(r.tables, t)
	}
	return r, nil
}

func (r *Registry) Len() int {
	return len(r.tables)
}

// Version increases by one on every mutation that changed the collection.
func (r *Registry) Version() uint64 {
	return r.version
}

// All returns a copy of the tables in insertion order.
func (r *Registry) All() []Table {
	out := make([]Table, len(r.tables))
	copy(out, r.tables)
	return out
}

func (r *Registry) Get(id string) (Table, bool) {
	i, ok := r.index[id]
	if !ok {
		return Table{}, false
	}
	return r.tables[i], true
}

func (r *Registry) Has(id string) bool {
	_, ok := r.index[id]
	return ok
}

// NextNumber is one past the highest table number, or 1 when empty.
func (r *Registry) NextNumber() int {
	max := 0
	for _, t := range r.tables {
		if t.Number > max {
			max = t.Number
		}
	}
	return max + 1
}

func (r *Registry) Insert(t Table) (*Registry, error) {
	if r.Has(t.ID) {
		return r, ErrDuplicateID
	}
	next := r.clone(len(r.tables) + 1)
	next.index[t.ID] = len(next.tables)
	next.tables = append(next.tables, t)
	return next, nil
}

// Update replaces the record for id with fn(old). An absent id is a no-op
// and returns the receiver itself.
func (r *Registry) Update(id string, fn func(Table) Table) *Registry {
	i, ok := r.index[id]
	if !ok {
		return r
	}
	updated := fn(r.tables[i])
	updated.ID = id
	if updated == r.tables[i] {
		return r
	}
	next := r.clone(len(r.tables))
	next.tables[i] = updated
	return next
}

// Delete drops the record for id. An absent id is a no-op.
func (r *Registry) Delete(id string) *Registry {
	i, ok := r.index[id]
	if !ok {
		return r
	}
	next := &Registry{
		tables:  make([]Table, 0, len(r.tables)-1),
		index:   make(map[string]int, len(r.tables)-1),
		version: r.version + 1,
	}
	for j, t := range r.tables {
		if j == i {
			continue
		}
		next.index[t.ID] = len(next.tables)
		next.tables = append(next.tables, t)
	}
	return next
}

func (r *Registry) clone(capacity int) *Registry {
	next := &Registry{
		tables:  make([]Table, len(r.tables), capacity),
		index:   make(map[string]int, capacity),
		version: r.version + 1,
	}
	copy(next.tables, r.tables)
	for k, v := range r.index {
		next.index[k] = v
	}
	return next
}
