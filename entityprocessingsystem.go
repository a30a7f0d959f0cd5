package ecs

import "sync"

// EntityProcessingSystem is a System bound to an Aspect, processing the
// Aspect's current members one at a time instead of handling iteration
// itself.
type EntityProcessingSystem interface {
	System
	Aspect() *Aspect
	// ProcessEntity handles one member of Aspect().Entities(), given its
	// index and the full snapshot being iterated (so an implementation can
	// look at neighbors without re-querying the Aspect mid-iteration).
	ProcessEntity(entity *Entity, index int, entities []*Entity, options any) error
}

// BaseEntityProcessingSystem supplies the Aspect binding for an
// EntityProcessingSystem: constructed with an optional (all, exclude, one)
// constraint triple (as AspectOptions), it builds and attaches its own
// Aspect over the owning Engine's entities when added to one, and detaches
// it when removed — a caller never attaches or detaches the Aspect by
// hand. An empty triple matches every entity in the engine, the same
// all-empty-triple default Aspect itself uses.
//
// It deliberately does not implement Process: Go has no virtual dispatch
// through embedding, so a Process method defined here could only ever call
// this type's own ProcessEntity, never a concrete system's override.
// Concrete systems implement Process as a one-line call to
// RunProcessEntities, passing themselves so the dynamic interface dispatch
// reaches their actual ProcessEntity — and Run as a one-line call to
// RunSystem, for the same reason.
type BaseEntityProcessingSystem struct {
	*BaseSystem
	opts []AspectOption

	mu     sync.Mutex
	aspect *Aspect
}

// NewBaseEntityProcessingSystem builds a BaseEntityProcessingSystem at
// priority that, once added to an Engine, maintains its own Aspect built
// from opts.
func NewBaseEntityProcessingSystem(priority int64, opts ...AspectOption) *BaseEntityProcessingSystem {
	return &BaseEntityProcessingSystem{BaseSystem: NewBaseSystem(priority), opts: opts}
}

func (b *BaseEntityProcessingSystem) Aspect() *Aspect {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.aspect
}

// OnAddedToEngine builds this system's Aspect over engine's entities from
// the triple given at construction and attaches it. Overriding this hook
// further is unusual but safe; call BaseEntityProcessingSystem's version
// explicitly if an override still needs the Aspect built.
func (b *BaseEntityProcessingSystem) OnAddedToEngine(engine *Engine) {
	aspect := NewAspect(engine.Entities, b.opts...).Attach()
	b.mu.Lock()
	b.aspect = aspect
	b.mu.Unlock()
}

// OnRemovedFromEngine detaches this system's Aspect, built by
// OnAddedToEngine.
func (b *BaseEntityProcessingSystem) OnRemovedFromEngine(*Engine) {
	b.mu.Lock()
	aspect := b.aspect
	b.aspect = nil
	b.mu.Unlock()
	if aspect != nil {
		aspect.Detach()
	}
}

// ProcessEntity is a no-op default; concrete systems override it.
func (b *BaseEntityProcessingSystem) ProcessEntity(*Entity, int, []*Entity, any) error {
	return nil
}

// RunProcessEntities iterates eps.Aspect().Entities() in order, calling
// eps.ProcessEntity for each, stopping at (and returning) the first error.
// Concrete EntityProcessingSystems call this from their own Process:
//
//	func (s *MovementSystem) Process(options any) error {
//	    return RunProcessEntities(s, options)
//	}
func RunProcessEntities(eps EntityProcessingSystem, options any) error {
	entities := eps.Aspect().Entities()
	for i, e := range entities {
		if err := eps.ProcessEntity(e, i, entities, options); err != nil {
			return err
		}
	}
	return nil
}

// FuncProcessingSystem adapts a plain per-entity function to
// EntityProcessingSystem, for systems simple enough not to need a named
// type of their own.
type FuncProcessingSystem struct {
	*BaseEntityProcessingSystem
	Fn func(entity *Entity, index int, entities []*Entity, options any) error
}

// NewFuncProcessingSystem builds a FuncProcessingSystem at priority that
// runs fn per entity matching opts, once added to an Engine.
func NewFuncProcessingSystem(
	priority int64,
	fn func(entity *Entity, index int, entities []*Entity, options any) error,
	opts ...AspectOption,
) *FuncProcessingSystem {
	return &FuncProcessingSystem{
		BaseEntityProcessingSystem: NewBaseEntityProcessingSystem(priority, opts...),
		Fn:                         fn,
	}
}

func (f *FuncProcessingSystem) ProcessEntity(entity *Entity, index int, entities []*Entity, options any) error {
	if f.Fn == nil {
		return nil
	}
	return f.Fn(entity, index, entities, options)
}

func (f *FuncProcessingSystem) Process(options any) error {
	return RunProcessEntities(f, options)
}

func (f *FuncProcessingSystem) Run(options any, mode SystemMode) error {
	return RunSystem(f, options, mode)
}
