package ecs

// EntityListener holds the optional callbacks an Entity dispatches to. Each
// callback mirrors the corresponding ComponentContainer event, re-emitted
// at the Entity's own Dispatcher so callers never need to reach into an
// Entity's Components container directly to observe it.
type EntityListener struct {
	OnAddedComponents   func(e *Entity, added []Component)
	OnRemovedComponents func(e *Entity, removed []Component)
	OnClearedComponents func(e *Entity)
	OnSortedComponents  func(e *Entity)
}

// Entity is an opaque identity paired with a ComponentContainer it owns.
// The id is caller-supplied — this package never generates one — and is
// never interpreted beyond the by-ID index an EntityCollection keeps; Equals
// does not consult it.
type Entity struct {
	ID         any
	Components *ComponentContainer

	Listeners Dispatcher[*EntityListener]
}

// NewEntity builds an Entity with the given id, owning a fresh
// ComponentContainer seeded with components. The Entity installs a locked
// listener on its own container at construction so every future mutation
// re-fires as the matching Entity-level event; callers cannot remove that
// re-emission by reaching into Components.Listeners.
func NewEntity(id any, components ...Component) *Entity {
	e := &Entity{
		ID:         id,
		Components: NewComponentContainer(components...),
	}
	e.Components.Listeners.AddListener(&CollectionListener[Component]{
		OnAdded: func(added []Component) {
			e.Listeners.Dispatch(func(l *EntityListener) {
				if l.OnAddedComponents != nil {
					l.OnAddedComponents(e, added)
				}
			})
		},
		OnRemoved: func(removed []Component) {
			e.Listeners.Dispatch(func(l *EntityListener) {
				if l.OnRemovedComponents != nil {
					l.OnRemovedComponents(e, removed)
				}
			})
		},
		OnCleared: func() {
			e.Listeners.Dispatch(func(l *EntityListener) {
				if l.OnClearedComponents != nil {
					l.OnClearedComponents(e)
				}
			})
		},
		OnSorted: func() {
			e.Listeners.Dispatch(func(l *EntityListener) {
				if l.OnSortedComponents != nil {
					l.OnSortedComponents(e)
				}
			})
		},
	}, true)
	return e
}

// Equals reports whether two Entity references denote the same identity.
// Entities are reference types; two distinct *Entity values with equal IDs
// are still different entities unless they are the same pointer — ID
// equality alone is never used for Collection de-duplication.
func (e *Entity) Equals(other *Entity) bool {
	return e == other
}

// Has reports whether the entity carries a component matching d.
func (e *Entity) Has(d TypeDescriptor) bool {
	return e.Components.Has(d)
}

// Get returns the first component on the entity matching d.
func (e *Entity) Get(d TypeDescriptor) (Component, bool) {
	return e.Components.Get(d)
}

// Add adds components to the entity, delegating to its ComponentContainer.
func (e *Entity) Add(components ...Component) bool {
	return e.Components.Add(components...)
}

// Remove removes components from the entity, delegating to its
// ComponentContainer.
func (e *Entity) Remove(components ...Component) bool {
	return e.Components.Remove(components...)
}
