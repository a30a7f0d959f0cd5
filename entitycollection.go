package ecs

import "sync"

// EntityCollection is a Collection of *Entity that additionally indexes
// entities by ID for O(1) lookup. The index is maintained by a locked
// listener the collection installs on itself at construction, the same
// pattern ComponentContainer uses for its type-descriptor cache.
type EntityCollection struct {
	*Collection[*Entity]

	mu   sync.Mutex
	byID map[any]*Entity
}

// NewEntityCollection builds an EntityCollection seeded with entities,
// de-duplicated by reference identity like any Collection.
func NewEntityCollection(entities ...*Entity) *EntityCollection {
	ec := &EntityCollection{
		Collection: NewCollection(entities...),
		byID:       make(map[any]*Entity),
	}
	for _, e := range entities {
		ec.byID[e.ID] = e
	}
	ec.Listeners.AddListener(&CollectionListener[*Entity]{
		OnAdded: func(added []*Entity) {
			ec.mu.Lock()
			for _, e := range added {
				ec.byID[e.ID] = e
			}
			ec.mu.Unlock()
		},
		OnRemoved: func(removed []*Entity) {
			ec.mu.Lock()
			for _, e := range removed {
				if ec.byID[e.ID] == e {
					delete(ec.byID, e.ID)
				}
			}
			ec.mu.Unlock()
		},
		OnCleared: func() {
			ec.mu.Lock()
			ec.byID = make(map[any]*Entity)
			ec.mu.Unlock()
		},
	}, true)
	return ec
}

// ByID returns the entity currently registered under id, if any. When two
// entities are added under the same id, the later add overwrites the index
// entry (the superseded entity remains in the collection and is still
// reachable via Elements/IndexOf, just not via ByID). Removing an entity
// clears the entry only if that entity holds it, so removing a superseded
// entity never evicts the live one; removing the current holder clears the
// entry even if an older entity with the same id is still in the
// collection.
func (ec *EntityCollection) ByID(id any) (*Entity, bool) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	e, ok := ec.byID[id]
	return e, ok
}
