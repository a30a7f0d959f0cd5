package ecs

import "reflect"

// Component is any value a caller associates with an Entity. The library
// treats it as opaque: it never inspects component fields, only identity
// (for Collection de-duplication) and, optionally, the type descriptor
// used for ComponentContainer and Aspect matching.
//
// Components compared for de-duplication must be Go-comparable — pointer
// types are the common and recommended shape. A component stored by value
// that contains a slice or map can panic inside Add or Remove, once the
// Collection compares it with another element of the same type or uses it
// as a map key.
type Component any

// Tagged is implemented by components that carry a stable, descriptor-level
// type tag instead of relying on their concrete Go type for matching. Two
// components whose concrete types differ but whose ComponentTag results
// agree are treated as the same kind by ComponentContainer and Aspect.
type Tagged interface {
	ComponentTag() string
}

// TypeDescriptor identifies a component kind for ComponentContainer lookups
// and Aspect constraints: either a stable string tag or a concrete Go type,
// never both at once — see DESIGN.md for why this resolves the two eagerly
// instead of carrying them side by side.
type TypeDescriptor struct {
	tag   string
	rtype reflect.Type
}

// Tag builds a descriptor that matches any component whose ComponentTag
// equals tag, regardless of its concrete Go type.
func Tag(tag string) TypeDescriptor {
	return TypeDescriptor{tag: tag}
}

// ClassOf builds a descriptor from a representative component value. If the
// sample implements Tagged and returns a non-empty tag, the descriptor
// resolves to that tag so every class sharing it becomes interchangeable
// for matching; otherwise it resolves to the sample's concrete Go type.
func ClassOf(sample Component) TypeDescriptor {
	if tagged, ok := sample.(Tagged); ok {
		if tag := tagged.ComponentTag(); tag != "" {
			return TypeDescriptor{tag: tag}
		}
	}
	return TypeDescriptor{rtype: reflect.TypeOf(sample)}
}

// TypeOf builds a class descriptor for T without requiring a sample
// instance. It does not consult Tagged — there is no value to call
// ComponentTag on — so prefer ClassOf when T might declare a tag.
func TypeOf[T any]() TypeDescriptor {
	return TypeDescriptor{rtype: reflect.TypeOf((*T)(nil)).Elem()}
}

// IsZero reports whether d was never assigned a tag or a type.
func (d TypeDescriptor) IsZero() bool {
	return d.tag == "" && d.rtype == nil
}

func (d TypeDescriptor) key() any {
	if d.tag != "" {
		return d.tag
	}
	return d.rtype
}

func (d TypeDescriptor) matches(c Component) bool {
	if d.tag != "" {
		tagged, ok := c.(Tagged)
		return ok && tagged.ComponentTag() == d.tag
	}
	return reflect.TypeOf(c) == d.rtype
}

// String renders the descriptor for diagnostics and error messages.
func (d TypeDescriptor) String() string {
	switch {
	case d.tag != "":
		return "tag:" + d.tag
	case d.rtype != nil:
		return "type:" + d.rtype.String()
	default:
		return "<empty descriptor>"
	}
}
