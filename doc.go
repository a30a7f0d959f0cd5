// Package ecs provides an Entity-Component-System runtime: an observable,
// duplicate-free Collection primitive, a per-entity ComponentContainer with
// type-indexed caching, a live-maintained Aspect view over an entity
// collection, and an Engine that orchestrates Systems under three
// execution strategies.
//
// The package does not generate identifiers, serialize state, render
// anything, or define concrete game/domain components — callers supply
// entity identity and component values; ecs only wires the reactive
// plumbing between them.
package ecs
