package ecs

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/brightforge/ecs/internal/telemetry"
)

// EngineMode selects how Engine.Run invokes its active systems.
type EngineMode int

const (
	// DEFAULT runs every active system's Process synchronously, in
	// priority order, and keeps going even if one system errors — the
	// closest Go analog of "fire and forget": every system still gets a
	// turn, and every error is still routed to OnError, just not used to
	// abort the rest of the run.
	DEFAULT EngineMode = iota
	// SUCCESSIVE runs every active system's Process synchronously, in
	// priority order, stopping at the first error. Go has no separate
	// "await" step for a plain function call, so SUCCESSIVE differs from
	// DEFAULT only in whether a system's error stops the run.
	SUCCESSIVE
	// PARALLEL starts every active system's Process on its own goroutine
	// and joins all of them with a sync.WaitGroup before Run returns —
	// Go's idiomatic "start all, then join" mapping of the spec's
	// parallel/await-all semantics.
	PARALLEL
)

// String renders the mode for logging and metric labels.
func (m EngineMode) String() string {
	switch m {
	case DEFAULT:
		return "default"
	case SUCCESSIVE:
		return "successive"
	case PARALLEL:
		return "parallel"
	default:
		return "unknown"
	}
}

// EngineListener holds the optional callbacks an Engine dispatches to:
// System registration, a locked re-emission of its Entities collection's
// own add/remove/clear events, and run-time errors.
type EngineListener struct {
	OnAddedSystems   func(added []System)
	OnRemovedSystems func(removed []System)
	OnClearedSystems func()

	OnAddedEntities   func(added []*Entity)
	OnRemovedEntities func(removed []*Entity)
	OnClearedEntities func()

	OnError func(err *SystemProcessingError)
}

// EngineOption configures an Engine at construction time.
type EngineOption func(*Engine)

// WithLogger attaches a structured logger. Nil is a valid, no-op logger.
func WithLogger(logger *telemetry.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics attaches a metrics collector. Nil is valid and records
// nothing.
func WithMetrics(metrics *telemetry.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = metrics }
}

// WithName labels this Engine's log lines and metric label values, so
// multiple Engines in one process are distinguishable. Defaults to
// "engine" when not set.
func WithName(name string) EngineOption {
	return func(e *Engine) { e.name = name }
}

// Engine orchestrates a Collection of Systems against a shared
// EntityCollection. It maintains its own System and Entity collections as
// locked self-listeners install no additional invariant beyond what
// Collection and EntityCollection already guarantee — the lock here exists
// so external code cannot blindly RemoveListenerAt the bookkeeping listener
// Engine installs to route OnAddedToEngine/OnRemovedFromEngine.
type Engine struct {
	Systems  *Collection[System]
	Entities *EntityCollection

	Listeners Dispatcher[*EngineListener]

	name    string
	logger  *telemetry.Logger
	metrics *telemetry.Metrics
}

// NewEngine builds an Engine with empty System and Entity collections.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		Systems:  NewCollection[System](),
		Entities: NewEntityCollection(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.name == "" {
		e.name = "engine"
	}
	e.logger = e.logger.With("engine", e.name)

	e.Systems.Listeners.AddListener(&CollectionListener[System]{
		OnAdded:   e.onSystemsAdded,
		OnRemoved: e.onSystemsRemoved,
		OnCleared: e.onSystemsCleared,
	}, true)
	e.Entities.Listeners.AddListener(&CollectionListener[*Entity]{
		OnAdded:   e.onEntitiesAdded,
		OnRemoved: e.onEntitiesRemoved,
		OnCleared: e.onEntitiesCleared,
	}, true)
	return e
}

// Name returns this Engine's configured label.
func (e *Engine) Name() string { return e.name }

func (e *Engine) onSystemsAdded(added []System) {
	for _, sys := range added {
		sys.setEngine(e)
		sys.OnAddedToEngine(e)
	}
	e.logger.Debug("systems added", map[string]any{"count": len(added)})
	e.Listeners.Dispatch(func(l *EngineListener) {
		if l.OnAddedSystems != nil {
			l.OnAddedSystems(added)
		}
	})
}

func (e *Engine) onSystemsRemoved(removed []System) {
	for _, sys := range removed {
		sys.OnRemovedFromEngine(e)
		sys.setEngine(nil)
	}
	e.logger.Debug("systems removed", map[string]any{"count": len(removed)})
	e.Listeners.Dispatch(func(l *EngineListener) {
		if l.OnRemovedSystems != nil {
			l.OnRemovedSystems(removed)
		}
	})
}

func (e *Engine) onSystemsCleared() {
	e.logger.Debug("systems cleared", nil)
	e.Listeners.Dispatch(func(l *EngineListener) {
		if l.OnClearedSystems != nil {
			l.OnClearedSystems()
		}
	})
}

func (e *Engine) onEntitiesAdded(added []*Entity) {
	e.logger.Debug("entities added", map[string]any{"count": len(added)})
	e.Listeners.Dispatch(func(l *EngineListener) {
		if l.OnAddedEntities != nil {
			l.OnAddedEntities(added)
		}
	})
}

func (e *Engine) onEntitiesRemoved(removed []*Entity) {
	e.logger.Debug("entities removed", map[string]any{"count": len(removed)})
	e.Listeners.Dispatch(func(l *EngineListener) {
		if l.OnRemovedEntities != nil {
			l.OnRemovedEntities(removed)
		}
	})
}

func (e *Engine) onEntitiesCleared() {
	e.logger.Debug("entities cleared", nil)
	e.Listeners.Dispatch(func(l *EngineListener) {
		if l.OnClearedEntities != nil {
			l.OnClearedEntities()
		}
	})
}

// AddSystem registers sys with the Engine. Returns false if sys was
// already registered.
func (e *Engine) AddSystem(sys System) bool { return e.Systems.Add(sys) }

// RemoveSystem unregisters sys. Returns false if sys was not registered.
func (e *Engine) RemoveSystem(sys System) bool { return e.Systems.Remove(sys) }

// Activate marks sys active and calls its OnActivated hook, unless it was
// already active.
func (e *Engine) Activate(sys System) {
	if sys.IsActive() {
		return
	}
	sys.SetActive(true)
	sys.OnActivated()
}

// Deactivate marks sys inactive and calls its OnDeactivated hook, unless it
// was already inactive. An inactive system is skipped by Run.
func (e *Engine) Deactivate(sys System) {
	if !sys.IsActive() {
		return
	}
	sys.SetActive(false)
	sys.OnDeactivated()
}

// ActiveSystems returns the currently active systems, ordered by ascending
// priority (lower runs first); ties preserve registration order.
func (e *Engine) ActiveSystems() []System {
	all := e.Systems.Elements()
	active := make([]System, 0, len(all))
	for _, sys := range all {
		if sys.IsActive() {
			active = append(active, sys)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority() < active[j].Priority()
	})
	return active
}

// Run executes one pass over ActiveSystems under mode. The returned error,
// if any, joins every *SystemProcessingError encountered — via errors.Join,
// so errors.As/errors.Is still reaches any individual one.
func (e *Engine) Run(options any, mode EngineMode) error {
	start := time.Now()
	systems := e.ActiveSystems()

	var err error
	switch mode {
	case PARALLEL:
		err = e.runParallel(systems, options)
	case SUCCESSIVE:
		err = e.runSuccessive(systems, options)
	default:
		err = e.runDefault(systems, options)
	}

	e.metrics.ObserveRunDuration(e.name, mode.String(), time.Since(start).Seconds())
	return err
}

func (e *Engine) runDefault(systems []System, options any) error {
	var errs []error
	for _, sys := range systems {
		if err := e.runOne(sys, options, DEFAULT); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) runSuccessive(systems []System, options any) error {
	for _, sys := range systems {
		if err := e.runOne(sys, options, SUCCESSIVE); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) runParallel(systems []System, options any) error {
	var wg sync.WaitGroup
	errs := make([]error, len(systems))
	for i, sys := range systems {
		wg.Add(1)
		go func(i int, sys System) {
			defer wg.Done()
			errs[i] = e.runOne(sys, options, PARALLEL)
		}(i, sys)
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (e *Engine) runOne(sys System, options any, mode EngineMode) error {
	name := systemName(sys)
	e.metrics.CountSystemRun(e.name, name)

	sysMode := SYNC
	if mode == PARALLEL {
		sysMode = ASYNC
	}

	// sys.Run captures the error and routes it through the System's own
	// OnError before returning it — Engine only wraps it for metrics,
	// logging, and its own listeners, it does not call OnError itself.
	if err := sys.Run(options, sysMode); err != nil {
		wrapped := &SystemProcessingError{System: sys, Err: err}
		e.metrics.CountSystemError(e.name, name, mode.String())
		e.logger.Error("system process failed", wrapped, map[string]any{
			"system": name,
			"mode":   mode.String(),
		})
		e.Listeners.Dispatch(func(l *EngineListener) {
			if l.OnError != nil {
				l.OnError(wrapped)
			}
		})
		return wrapped
	}
	return nil
}

func systemName(sys System) string {
	return fmt.Sprintf("%T", sys)
}
