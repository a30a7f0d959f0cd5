package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAspectAllConstraintAdmitsOnlyQualifyingEntities(t *testing.T) {
	withBoth := NewEntity("both", &position{}, &velocity{})
	withPositionOnly := NewEntity("pos-only", &position{})

	source := NewEntityCollection(withBoth, withPositionOnly)
	a := NewAspect(source, WithAll(TypeOf[*position](), TypeOf[*velocity]())).Attach()

	assert.ElementsMatch(t, []*Entity{withBoth}, a.Entities())
}

func TestAspectEmptyConstraintTripleMatchesEverySourceEntity(t *testing.T) {
	e1, e2 := NewEntity("a"), NewEntity("b", &position{})
	source := NewEntityCollection(e1, e2)
	a := NewAspect(source).Attach()

	assert.ElementsMatch(t, []*Entity{e1, e2}, a.Entities())
}

func TestAspectExcludeConstraintRejectsMatchingEntities(t *testing.T) {
	alive := NewEntity("alive", &position{})
	dead := NewEntity("dead", &position{}, &statusEffect{name: "dead"})
	source := NewEntityCollection(alive, dead)

	a := NewAspect(source,
		WithAll(TypeOf[*position]()),
		WithExclude(Tag("status")),
	).Attach()

	assert.ElementsMatch(t, []*Entity{alive}, a.Entities())
}

func TestAspectOneConstraintRequiresAtLeastOneMatch(t *testing.T) {
	withVelocity := NewEntity("v", &velocity{})
	withPoison := NewEntity("p", &poisonStatus{})
	withNeither := NewEntity("n")

	source := NewEntityCollection(withVelocity, withPoison, withNeither)
	a := NewAspect(source, WithOne(TypeOf[*velocity](), Tag("status"))).Attach()

	assert.ElementsMatch(t, []*Entity{withVelocity, withPoison}, a.Entities())
}

func TestAspectFiresOnAddedWhenEntityNewlyQualifies(t *testing.T) {
	e := NewEntity("e")
	source := NewEntityCollection(e)
	a := NewAspect(source, WithAll(TypeOf[*position]())).Attach()
	require.Empty(t, a.Entities())

	var added []*Entity
	a.Listeners.AddListener(&CollectionListener[*Entity]{
		OnAdded: func(got []*Entity) { added = got },
	}, false)

	e.Add(&position{})

	assert.Equal(t, []*Entity{e}, added)
	assert.Equal(t, []*Entity{e}, a.Entities())
}

func TestAspectFiresOnRemovedWhenEntityNoLongerQualifies(t *testing.T) {
	p := &position{}
	e := NewEntity("e", p)
	source := NewEntityCollection(e)
	a := NewAspect(source, WithAll(TypeOf[*position]())).Attach()
	require.Equal(t, []*Entity{e}, a.Entities())

	var removed []*Entity
	a.Listeners.AddListener(&CollectionListener[*Entity]{
		OnRemoved: func(got []*Entity) { removed = got },
	}, false)

	e.Remove(p)

	assert.Equal(t, []*Entity{e}, removed)
	assert.Empty(t, a.Entities())
}

func TestAspectTracksEntitiesAddedToSourceAfterAttach(t *testing.T) {
	source := NewEntityCollection()
	a := NewAspect(source, WithAll(TypeOf[*position]())).Attach()

	e := NewEntity("late", &position{})
	source.Add(e)

	assert.Equal(t, []*Entity{e}, a.Entities())
}

func TestAspectDetachEmptiesViewAndStopsTracking(t *testing.T) {
	e := NewEntity("e", &position{})
	source := NewEntityCollection(e)
	a := NewAspect(source, WithAll(TypeOf[*position]())).Attach()
	require.Equal(t, []*Entity{e}, a.Entities())

	a.Detach()
	assert.Empty(t, a.Entities())

	other := NewEntity("other", &position{})
	source.Add(other)
	assert.Empty(t, a.Entities(), "detached aspect must not track new source entities")
}

func TestAspectAttachAfterDetachResumesTracking(t *testing.T) {
	e := NewEntity("e", &position{})
	source := NewEntityCollection(e)
	a := NewAspect(source, WithAll(TypeOf[*position]())).Attach()

	a.Detach()
	a.Attach()

	assert.Equal(t, []*Entity{e}, a.Entities())
}

func TestAspectAttachIsIdempotent(t *testing.T) {
	e := NewEntity("e", &position{})
	source := NewEntityCollection(e)
	a := NewAspect(source, WithAll(TypeOf[*position]())).Attach()

	assert.NotPanics(t, func() { a.Attach() })
	assert.Equal(t, []*Entity{e}, a.Entities())
}

func TestAspectDetachIsIdempotent(t *testing.T) {
	a := NewAspect(NewEntityCollection())
	a.Attach()
	a.Detach()
	assert.NotPanics(t, func() { a.Detach() })
}

func TestAspectTagAndConcreteTypeAreInterchangeableForMatching(t *testing.T) {
	// S5: two components of different concrete Go types but sharing the
	// same ComponentTag must both satisfy a constraint built from either
	// the tag or a class descriptor resolved from either sample.
	poison := NewEntity("poison", &poisonStatus{stacks: 1})
	burn := NewEntity("burn", &statusEffect{name: "burn"})
	source := NewEntityCollection(poison, burn)

	byTag := NewAspect(source, WithAll(Tag("status"))).Attach()
	assert.ElementsMatch(t, []*Entity{poison, burn}, byTag.Entities())

	byResolvedClass := NewAspect(source, WithAll(ClassOf(&poisonStatus{}))).Attach()
	assert.ElementsMatch(t, []*Entity{poison, burn}, byResolvedClass.Entities())
}

func TestAspectChangingConstraintsResynchronizesImmediately(t *testing.T) {
	withPos := NewEntity("pos", &position{})
	withVel := NewEntity("vel", &velocity{})
	source := NewEntityCollection(withPos, withVel)

	a := NewAspect(source, WithAll(TypeOf[*position]())).Attach()
	require.Equal(t, []*Entity{withPos}, a.Entities())

	a.All(TypeOf[*velocity]())
	assert.Equal(t, []*Entity{withVel}, a.Entities())
}

func TestAspectDispatchesOnAttachedAndOnDetached(t *testing.T) {
	source := NewEntityCollection()
	a := NewAspect(source)

	attached := 0
	detached := 0
	a.Events.AddListener(&AspectListener{
		OnAttached: func() { attached++ },
		OnDetached: func() { detached++ },
	}, false)

	a.Attach()
	assert.Equal(t, 1, attached)
	assert.Equal(t, 0, detached)

	a.Detach()
	assert.Equal(t, 1, attached)
	assert.Equal(t, 1, detached)
}

func TestAspectAttachDoesNotRedispatchOnAttachedWhenAlreadyAttached(t *testing.T) {
	source := NewEntityCollection()
	a := NewAspect(source).Attach()

	attached := 0
	a.Events.AddListener(&AspectListener{OnAttached: func() { attached++ }}, false)

	a.Attach()
	assert.Equal(t, 0, attached, "Attach on an already-attached Aspect must not fire OnAttached again")
}

func TestAspectReemitsComponentEventsForWatchedEntitiesRegardlessOfMembershipChange(t *testing.T) {
	// Per scenario S2: component-level events re-emit through the Aspect
	// for every watched entity, even when the change does not flip that
	// entity's membership in the view (here, e satisfies the constraint
	// before and after adding the status component; the final Clear then
	// evicts it).
	e := NewEntity("e", &position{}, &velocity{})
	source := NewEntityCollection(e)
	a := NewAspect(source, WithAll(TypeOf[*position]())).Attach()
	require.Equal(t, []*Entity{e}, a.Entities())

	var addedFor *Entity
	var clearedFor *Entity
	a.Events.AddListener(&AspectListener{
		OnAddedComponents:   func(entity *Entity, added []Component) { addedFor = entity },
		OnClearedComponents: func(entity *Entity) { clearedFor = entity },
	}, false)

	e.Add(&statusEffect{name: "burn"})
	assert.Same(t, e, addedFor)
	assert.Equal(t, []*Entity{e}, a.Entities(), "adding an unrelated component must not evict e from the view")

	e.Components.Clear()
	assert.Same(t, e, clearedFor)
}

func TestAspectIDIsStableAndUnique(t *testing.T) {
	source := NewEntityCollection()
	a1 := NewAspect(source)
	a2 := NewAspect(source)

	assert.NotEqual(t, a1.ID(), a2.ID())
	assert.Equal(t, a1.ID(), a1.ID())
}

func TestAspectPreservesSourceOrderInView(t *testing.T) {
	e1 := NewEntity("1", &position{})
	e2 := NewEntity("2", &position{})
	e3 := NewEntity("3", &position{})
	source := NewEntityCollection(e1, e2, e3)
	a := NewAspect(source, WithAll(TypeOf[*position]())).Attach()

	assert.Equal(t, []*Entity{e1, e2, e3}, a.Entities())

	source.Remove(e2)
	source.Add(e2)
	assert.Equal(t, []*Entity{e1, e3, e2}, a.Entities())
}
