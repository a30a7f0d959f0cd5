package ecs

import (
	"sync"
	"sync/atomic"
)

var aspectIDCounter uint64

func nextAspectID() uint64 {
	return atomic.AddUint64(&aspectIDCounter, 1)
}

// AspectListener holds the optional callbacks an Aspect dispatches to,
// beyond the membership OnAdded/OnRemoved events its embedded Collection
// already exposes: Attach/Detach lifecycle, and the four
// ComponentContainer-level events re-emitted, unconditionally, for every
// entity this Aspect watches — whether or not that particular change
// happened to affect the Aspect's own membership.
type AspectListener struct {
	OnAttached          func()
	OnDetached          func()
	OnAddedComponents   func(entity *Entity, added []Component)
	OnRemovedComponents func(entity *Entity, removed []Component)
	OnClearedComponents func(entity *Entity)
	OnSortedComponents  func(entity *Entity)
}

// AspectOption configures an Aspect at construction time. The same
// constraints can also be changed after construction through All/Exclude/
// One, which re-synchronize the view immediately if the Aspect is attached.
type AspectOption func(*Aspect)

// WithAll requires every matching entity to carry all of descriptors.
func WithAll(descriptors ...TypeDescriptor) AspectOption {
	return func(a *Aspect) { a.all = descriptors }
}

// WithExclude disqualifies any entity carrying any of descriptors.
func WithExclude(descriptors ...TypeDescriptor) AspectOption {
	return func(a *Aspect) { a.exclude = descriptors }
}

// WithOne requires a matching entity to carry at least one of descriptors.
// An empty One constraint imposes no requirement.
func WithOne(descriptors ...TypeDescriptor) AspectOption {
	return func(a *Aspect) { a.one = descriptors }
}

// Aspect is a live-maintained, filtered view over an EntityCollection: the
// set of entities satisfying an all/exclude/one constraint triple. The
// all-empty triple matches every entity in the source.
//
// Aspect embeds a Collection[*Entity] as its own view, so callers observe
// membership changes the same way they observe any Collection: a frozen
// Entities snapshot via Elements, and OnAdded/OnRemoved events (entities
// admitted to or evicted from the view) through the embedded Listeners
// Dispatcher.
//
// An Aspect only tracks its source while attached. Attach/Detach are both
// idempotent. Detaching does not tear down the listeners an Aspect installs
// on the source collection and on every entity it has ever seen — those
// stay registered for the entity's lifetime, locked against external
// removal, and simply become inert (recompute no-ops) once detached; a
// later Attach call picks them back up without re-registering duplicates.
// This trades a small amount of always-on bookkeeping for never needing a
// privileged "owner-only" removal path through Dispatcher.
type Aspect struct {
	*Collection[*Entity]

	// Events carries Attach/Detach lifecycle and the per-entity
	// component-change re-emission described on AspectListener. Named
	// distinctly from the embedded Collection's own Listeners field, which
	// carries membership OnAdded/OnRemoved events.
	Events Dispatcher[*AspectListener]

	id     uint64
	source *EntityCollection

	mu                sync.Mutex
	all, exclude, one []TypeDescriptor
	attached          bool
	sourceListener    *CollectionListener[*Entity]
	entityListeners   map[*Entity]*EntityListener
}

// NewAspect builds an Aspect over source with the given constraints. The
// Aspect does not begin tracking until Attach is called.
func NewAspect(source *EntityCollection, opts ...AspectOption) *Aspect {
	a := &Aspect{
		Collection:      NewCollection[*Entity](),
		id:              nextAspectID(),
		source:          source,
		entityListeners: make(map[*Entity]*EntityListener),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ID returns a process-unique identifier for this Aspect, stable for its
// lifetime.
func (a *Aspect) ID() uint64 { return a.id }

// Entities returns the current frozen membership snapshot. Equivalent to
// Elements, named to match the rest of this package's entity-facing API.
func (a *Aspect) Entities() []*Entity { return a.Collection.Elements() }

// All replaces the "all" constraint and re-synchronizes the view if
// attached.
func (a *Aspect) All(descriptors ...TypeDescriptor) *Aspect {
	a.mu.Lock()
	a.all = descriptors
	a.mu.Unlock()
	a.recompute()
	return a
}

// Exclude replaces the "exclude" constraint and re-synchronizes the view if
// attached.
func (a *Aspect) Exclude(descriptors ...TypeDescriptor) *Aspect {
	a.mu.Lock()
	a.exclude = descriptors
	a.mu.Unlock()
	a.recompute()
	return a
}

// One replaces the "one" constraint and re-synchronizes the view if
// attached.
func (a *Aspect) One(descriptors ...TypeDescriptor) *Aspect {
	a.mu.Lock()
	a.one = descriptors
	a.mu.Unlock()
	a.recompute()
	return a
}

// Attach begins tracking source: every current entity is watched for
// component changes, and the view is synchronized to the current constraint
// triple. Calling Attach again while already attached is a no-op.
func (a *Aspect) Attach() *Aspect {
	a.mu.Lock()
	if a.attached {
		a.mu.Unlock()
		return a
	}
	a.attached = true
	if a.sourceListener == nil {
		a.sourceListener = &CollectionListener[*Entity]{
			OnAdded:   a.onSourceAdded,
			OnRemoved: func([]*Entity) { a.recompute() },
			OnCleared: func() { a.recompute() },
			OnSorted:  func() { a.recompute() },
		}
		a.source.Listeners.AddListener(a.sourceListener, true)
	}
	a.mu.Unlock()

	for _, e := range a.source.Elements() {
		a.watchEntity(e)
	}
	a.recompute()
	a.Events.Dispatch(func(l *AspectListener) {
		if l.OnAttached != nil {
			l.OnAttached()
		}
	})
	return a
}

// Detach stops tracking source and empties the view. The listeners Attach
// installed remain registered (see the Aspect doc comment) but become
// inert until the next Attach. Calling Detach while already detached is a
// no-op.
func (a *Aspect) Detach() *Aspect {
	a.mu.Lock()
	if !a.attached {
		a.mu.Unlock()
		return a
	}
	a.attached = false
	a.mu.Unlock()
	a.Collection.Clear()
	a.Events.Dispatch(func(l *AspectListener) {
		if l.OnDetached != nil {
			l.OnDetached()
		}
	})
	return a
}

func (a *Aspect) onSourceAdded(added []*Entity) {
	for _, e := range added {
		a.watchEntity(e)
	}
	a.recompute()
}

// watchEntity installs a locked, permanent listener on e the first time
// this Aspect sees it, so later component changes on e trigger a
// recompute. Re-seeing the same entity (e.g. it left and re-entered the
// source while still attached) is a no-op: the original listener is still
// registered and still correct.
func (a *Aspect) watchEntity(e *Entity) {
	a.mu.Lock()
	if _, ok := a.entityListeners[e]; ok {
		a.mu.Unlock()
		return
	}
	listener := &EntityListener{
		OnAddedComponents: func(entity *Entity, added []Component) {
			a.recompute()
			a.Events.Dispatch(func(l *AspectListener) {
				if l.OnAddedComponents != nil {
					l.OnAddedComponents(entity, added)
				}
			})
		},
		OnRemovedComponents: func(entity *Entity, removed []Component) {
			a.recompute()
			a.Events.Dispatch(func(l *AspectListener) {
				if l.OnRemovedComponents != nil {
					l.OnRemovedComponents(entity, removed)
				}
			})
		},
		OnClearedComponents: func(entity *Entity) {
			a.recompute()
			a.Events.Dispatch(func(l *AspectListener) {
				if l.OnClearedComponents != nil {
					l.OnClearedComponents(entity)
				}
			})
		},
		OnSortedComponents: func(entity *Entity) {
			a.recompute()
			a.Events.Dispatch(func(l *AspectListener) {
				if l.OnSortedComponents != nil {
					l.OnSortedComponents(entity)
				}
			})
		},
	}
	a.entityListeners[e] = listener
	a.mu.Unlock()

	e.Listeners.AddListener(listener, true)
}

func matchesConstraints(e *Entity, all, exclude, one []TypeDescriptor) bool {
	for _, d := range all {
		if !e.Has(d) {
			return false
		}
	}
	for _, d := range exclude {
		if e.Has(d) {
			return false
		}
	}
	if len(one) > 0 {
		matched := false
		for _, d := range one {
			if e.Has(d) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// recompute re-derives the full matching set from source's current
// elements and the current constraint triple, diffs it against the view's
// current membership, and applies exactly the Add/Remove calls needed so
// the view's OnAdded/OnRemoved events carry only the entities that
// actually changed status. It then reorders the view to match source's
// current order, inheriting source's ordering the way Collection.Filter
// naturally would. A full rescan on every source or entity event is the
// simplest correct implementation for the small collections (one process's
// systems and entities) this package targets; a reverse-index incremental
// version would only pay off at a scale this package does not target.
func (a *Aspect) recompute() {
	a.mu.Lock()
	if !a.attached {
		a.mu.Unlock()
		return
	}
	all := append([]TypeDescriptor(nil), a.all...)
	exclude := append([]TypeDescriptor(nil), a.exclude...)
	one := append([]TypeDescriptor(nil), a.one...)
	a.mu.Unlock()

	var matched []*Entity
	for _, e := range a.source.Elements() {
		if matchesConstraints(e, all, exclude, one) {
			matched = append(matched, e)
		}
	}

	current := a.Collection.Elements()
	currentSet := make(map[*Entity]bool, len(current))
	for _, e := range current {
		currentSet[e] = true
	}
	matchedSet := make(map[*Entity]bool, len(matched))
	for _, e := range matched {
		matchedSet[e] = true
	}

	var toRemove []*Entity
	for _, e := range current {
		if !matchedSet[e] {
			toRemove = append(toRemove, e)
		}
	}
	var toAdd []*Entity
	for _, e := range matched {
		if !currentSet[e] {
			toAdd = append(toAdd, e)
		}
	}

	if len(toRemove) > 0 {
		a.Collection.Remove(toRemove...)
	}
	if len(toAdd) > 0 {
		a.Collection.Add(toAdd...)
	}

	position := make(map[*Entity]int, len(matched))
	for i, e := range matched {
		position[e] = i
	}
	a.Collection.Sort(func(x, y *Entity) bool { return position[x] < position[y] })
}
