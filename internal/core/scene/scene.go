// Package scene implements the component-type registry the project
// store dispatches creation, destruction and (de)serialization through
// (spec §4.C). Each component type is bound to exactly one scene: a
// collaborator that owns the actual component data and knows how to
// create, destroy, serialize and deserialize it. The registry itself
// holds none of that data — it only routes calls and keeps the store's
// presence mask in sync, mirroring Project::ComponentTypeEntry /
// Project::registerComponentType in the original engine.
package scene

import (
	"fmt"

	"worldeditor/internal/core/store"
)

// CreateFunc creates a scene's component data for e. It must not touch
// the store directly; the registry calls back store.OnComponentCreated
// once this returns.
type CreateFunc func(e store.Entity)

// DestroyFunc releases a scene's component data for e.
type DestroyFunc func(e store.Entity)

// SerializeFunc captures a component's data as a payload of named
// fields. Package serialize encodes the payload as YAML inside its blob
// and directory formats exactly as returned: entity-valued fields are
// stored as raw store.Entity values, with no translation to or from
// GUIDs.
type SerializeFunc func(e store.Entity) (map[string]any, error)

// DeserializeFunc restores a component's data for e from a payload
// written by the matching SerializeFunc at the given scene version,
// supporting the spec §4.G "component payload tagged with ... a
// per-scene version number" compatibility story.
type DeserializeFunc func(e store.Entity, sceneVersion int, payload map[string]any) error

// Entry is everything the registry knows about one component type.
type Entry struct {
	Name        string
	TypeHash    uint32 // stable cross-run identifier, stored in snapshots instead of the runtime ComponentType (spec §6)
	Version     int
	Create      CreateFunc
	Destroy     DestroyFunc
	Serialize   SerializeFunc
	Deserialize DeserializeFunc
}

// Registry binds component types to their owning scenes and implements
// store.Registry. A Registry is constructed before its Store (the two
// are mutually dependent), then wired together with Bind.
type Registry struct {
	store   *store.Store
	entries map[store.ComponentType]*Entry
	byHash  map[uint32]store.ComponentType
	order   []store.ComponentType // registration order, used for deterministic snapshot iteration
}

// NewRegistry creates an empty component-type registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[store.ComponentType]*Entry),
		byHash:  make(map[uint32]store.ComponentType),
	}
}

// Bind completes construction by pointing the registry back at the
// store whose component presence mask it maintains. Must be called
// once, after store.New(registry, ...).
func (r *Registry) Bind(s *store.Store) { r.store = s }

// Register binds a component type to its scene's four callbacks.
// Registering the same type twice, or reusing a type hash, is an
// authoring error and returns an error rather than silently
// overwriting an existing binding.
func (r *Registry) Register(t store.ComponentType, entry Entry) error {
	if t == 0 || t > store.MaxComponentTypes {
		return fmt.Errorf("scene: component type %d out of range 1..%d", t, store.MaxComponentTypes)
	}
	if _, exists := r.entries[t]; exists {
		return fmt.Errorf("scene: component type %d already registered", t)
	}
	if _, exists := r.byHash[entry.TypeHash]; exists {
		return fmt.Errorf("scene: component type hash %#x already registered", entry.TypeHash)
	}
	e := entry
	r.entries[t] = &e
	r.byHash[entry.TypeHash] = t
	r.order = append(r.order, t)
	return nil
}

// Registered reports whether t has a bound scene (store.Registry).
func (r *Registry) Registered(t store.ComponentType) bool {
	_, ok := r.entries[t]
	return ok
}

// Create dispatches to the scene's CreateFunc, then reports completion
// back to the store (store.Registry).
func (r *Registry) Create(t store.ComponentType, e store.Entity) {
	entry := r.entries[t]
	if entry.Create != nil {
		entry.Create(e)
	}
	r.store.OnComponentCreated(e, t)
}

// Destroy dispatches to the scene's DestroyFunc, then reports
// completion back to the store (store.Registry).
func (r *Registry) Destroy(t store.ComponentType, e store.Entity) {
	entry := r.entries[t]
	if entry.Destroy != nil {
		entry.Destroy(e)
	}
	r.store.OnComponentDestroyed(e, t)
}

// Entry returns the registration for t, if any.
func (r *Registry) Entry(t store.ComponentType) (*Entry, bool) {
	e, ok := r.entries[t]
	return e, ok
}

// TypeForHash resolves a snapshot's stable type hash back to the
// runtime ComponentType, since component indices are only stable for
// the lifetime of one process (spec §6).
func (r *Registry) TypeForHash(hash uint32) (store.ComponentType, bool) {
	t, ok := r.byHash[hash]
	return t, ok
}

// OrderedTypes returns every registered component type in registration
// order, for deterministic snapshot iteration.
func (r *Registry) OrderedTypes() []store.ComponentType {
	out := make([]store.ComponentType, len(r.order))
	copy(out, r.order)
	return out
}

// Serialize captures e's component t as a named-field payload.
func (r *Registry) Serialize(t store.ComponentType, e store.Entity) (map[string]any, error) {
	entry, ok := r.entries[t]
	if !ok || entry.Serialize == nil {
		return nil, nil
	}
	return entry.Serialize(e)
}

// Deserialize restores component t on e from a payload written at
// sceneVersion.
func (r *Registry) Deserialize(t store.ComponentType, e store.Entity, sceneVersion int, payload map[string]any) error {
	entry, ok := r.entries[t]
	if !ok || entry.Deserialize == nil {
		return nil
	}
	return entry.Deserialize(e, sceneVersion, payload)
}
