package ecs

import "sync"

// SystemMode selects how a System's Run executes its Process call, the
// System-level counterpart of EngineMode: DEFAULT and SUCCESSIVE both drive
// their systems with SYNC, PARALLEL drives them with ASYNC.
type SystemMode int

const (
	// SYNC runs Process on the caller's own goroutine.
	SYNC SystemMode = iota
	// ASYNC runs Process on its own goroutine, started and joined before
	// Run returns — Run is still synchronous from its caller's point of
	// view; ASYNC only lets an Engine running several systems under
	// PARALLEL overlap their Process calls.
	ASYNC
)

// String renders the mode for logging.
func (m SystemMode) String() string {
	if m == ASYNC {
		return "async"
	}
	return "sync"
}

// System is the unit of per-run work an Engine orchestrates. Concrete
// systems embed BaseSystem (directly or transitively) to pick up priority
// ordering, the active flag, and no-op lifecycle hooks, override Process —
// and whichever hooks they actually need — the same way the teacher's
// concrete systems are thin structs satisfying an interface, and implement
// Run as a one-line call to RunSystem (see RunSystem for why BaseSystem
// cannot supply Run itself).
//
// setEngine and setUpdating are unexported, so System can only be
// implemented by embedding BaseSystem: the same closed-interface idiom
// testing.TB uses to keep third-party code from implementing it from
// scratch.
type System interface {
	Priority() int64
	IsActive() bool
	SetActive(active bool)
	Engine() *Engine
	// IsUpdating reports whether this System is currently inside a Run
	// call — true for the duration of Process, false otherwise.
	IsUpdating() bool

	OnAddedToEngine(engine *Engine)
	OnRemovedFromEngine(engine *Engine)
	OnActivated()
	OnDeactivated()
	OnError(err error)

	// Process performs this system's work for one Engine.Run call. options
	// is whatever the caller passed to Run, untyped because systems in a
	// single Engine may want entirely different option shapes.
	Process(options any) error

	// Run drives one Process call under mode, marking IsUpdating true for
	// its duration and routing any returned error through OnError before
	// returning it. Engine.runOne calls Run, not Process, so error capture
	// happens once, at the System, not duplicated at the Engine.
	Run(options any, mode SystemMode) error

	setEngine(e *Engine)
	setUpdating(updating bool)
}

// BaseSystem supplies the bookkeeping every System needs: priority,
// active flag, updating flag, and the owning Engine reference, plus no-op
// lifecycle hooks. Embed it by value... no, by pointer (*BaseSystem) so
// SetActive and friends mutate the same state the concrete system reads.
type BaseSystem struct {
	mu       sync.Mutex
	priority int64
	active   bool
	updating bool
	eng      *Engine
}

// NewBaseSystem builds a BaseSystem at priority, active by default. Lower
// priority values run first within an Engine.Run call, matching the
// teacher's SystemManager ordering.
func NewBaseSystem(priority int64) *BaseSystem {
	return &BaseSystem{priority: priority, active: true}
}

func (s *BaseSystem) Priority() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.priority
}

// SetPriority changes this system's priority. The new order is picked up
// by the owning Engine's next ActiveSystems or Run call, which sort by
// priority each time — SetPriority itself does not reach into the Engine.
func (s *BaseSystem) SetPriority(priority int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.priority = priority
}

func (s *BaseSystem) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActive flips the active flag. It does not itself call OnActivated or
// OnDeactivated — callers that want those hooks invoked alongside the flag
// change should go through Engine.Activate/Engine.Deactivate, which hold
// the concrete System reference and so dispatch to any hook override
// correctly; BaseSystem calling its own hook methods would only ever reach
// BaseSystem's no-op, never an embedding type's override.
func (s *BaseSystem) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *BaseSystem) Engine() *Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng
}

func (s *BaseSystem) setEngine(e *Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng = e
}

func (s *BaseSystem) IsUpdating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updating
}

func (s *BaseSystem) setUpdating(updating bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updating = updating
}

func (s *BaseSystem) OnAddedToEngine(*Engine)     {}
func (s *BaseSystem) OnRemovedFromEngine(*Engine) {}
func (s *BaseSystem) OnActivated()                {}
func (s *BaseSystem) OnDeactivated()              {}
func (s *BaseSystem) OnError(error)               {}

// Process is the hook BaseSystem leaves as a no-op; any system doing real
// work shadows it with a Process method on its own embedding type.
func (s *BaseSystem) Process(options any) error { return nil }

// RunSystem drives sys.Process under mode: it marks sys updating for the
// call's duration, runs Process synchronously (SYNC) or on its own
// goroutine joined before returning (ASYNC), and routes any error through
// sys.OnError before returning it. Concrete systems implement Run as:
//
//	func (s *MovementSystem) Run(options any, mode SystemMode) error {
//	    return RunSystem(s, options, mode)
//	}
//
// BaseSystem cannot supply Run itself: Go has no virtual dispatch through
// embedding, so a Run defined on BaseSystem could only ever call
// BaseSystem's own Process, never a concrete system's override — the same
// limitation RunProcessEntities works around for EntityProcessingSystem.
func RunSystem(sys System, options any, mode SystemMode) error {
	sys.setUpdating(true)
	defer sys.setUpdating(false)

	var err error
	if mode == ASYNC {
		errCh := make(chan error, 1)
		go func() { errCh <- sys.Process(options) }()
		err = <-errCh
	} else {
		err = sys.Process(options)
	}
	if err != nil {
		sys.OnError(err)
	}
	return err
}

// FuncSystem adapts a plain function to System for systems that need no
// per-entity iteration and no custom lifecycle hooks — the base-System
// analog of FuncProcessingSystem.
type FuncSystem struct {
	*BaseSystem
	Fn func(options any) error
}

// NewFuncSystem builds a FuncSystem at priority that runs fn on Process.
func NewFuncSystem(priority int64, fn func(options any) error) *FuncSystem {
	return &FuncSystem{BaseSystem: NewBaseSystem(priority), Fn: fn}
}

func (f *FuncSystem) Process(options any) error {
	if f.Fn == nil {
		return nil
	}
	return f.Fn(options)
}

func (f *FuncSystem) Run(options any, mode SystemMode) error {
	return RunSystem(f, options, mode)
}
