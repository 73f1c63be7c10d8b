package command

import (
	"worldeditor/internal/core/mathutil"
	"worldeditor/internal/core/store"
)

// AddEntityCommand creates a single entity at a fixed position and
// rotation; undo destroys it, redo re-creates it at the same dense
// index it held before (spec §4.E "add_entity").
type AddEntityCommand struct {
	world       *World
	Position    mathutil.Vec3
	Rotation    mathutil.Quat
	entity      store.Entity
	everCreated bool
}

func NewAddEntityCommand(w *World, pos mathutil.Vec3, rot mathutil.Quat) *AddEntityCommand {
	return &AddEntityCommand{world: w, Position: pos, Rotation: rot}
}

func (c *AddEntityCommand) Execute() bool {
	if c.everCreated {
		c.world.Store.EmplaceEntity(c.entity)
		c.world.Store.SetGlobalTransform(c.entity, mathutil.Transform{Position: c.Position, Rotation: c.Rotation, Scale: 1})
		return true
	}
	c.entity = c.world.Store.CreateEntity(c.Position, c.Rotation)
	c.everCreated = true
	return true
}

func (c *AddEntityCommand) Undo() { c.world.Store.DestroyEntity(c.entity) }

func (c *AddEntityCommand) TypeID() string  { return "add_entity" }
func (c *AddEntityCommand) Merge(Command) bool { return false }

func (c *AddEntityCommand) Payload() map[string]any {
	return map[string]any{"position": c.Position, "rotation": c.Rotation, "entity": int32(c.entity)}
}

func (c *AddEntityCommand) LoadPayload(p map[string]any) {
	if v, ok := p["position"].(mathutil.Vec3); ok {
		c.Position = v
	}
	if v, ok := p["rotation"].(mathutil.Quat); ok {
		c.Rotation = v
	}
}

// componentSnapshot captures everything needed to recreate one
// component on undo: its type, scene version at save time, and its
// serialized payload.
type componentSnapshot struct {
	Type     store.ComponentType
	Version  int
	Payload  map[string]any
	resource ResourceRef
}

// entitySnapshot captures one destroyed entity's full state so
// DestroyEntitiesCommand can recreate it byte-for-byte on undo.
type entitySnapshot struct {
	Entity     store.Entity
	Transform  mathutil.Transform
	Name       string
	Parent     store.Entity
	Components []componentSnapshot
}

// DestroyEntitiesCommand destroys a set of entities (and, transitively,
// their children) and records each one's full payload so undo can
// recreate them (spec §4.E "destroy_entities"). It does not propagate
// across prefab instances.
type DestroyEntitiesCommand struct {
	world     *World
	Entities  []store.Entity
	snapshots []entitySnapshot
}

func NewDestroyEntitiesCommand(w *World, entities []store.Entity) *DestroyEntitiesCommand {
	return &DestroyEntitiesCommand{world: w, Entities: entities}
}

func (c *DestroyEntitiesCommand) snapshotSubtree(e store.Entity, out *[]entitySnapshot) {
	if !c.world.Store.IsValid(e) {
		return
	}
	for child := c.world.Store.GetFirstChild(e); child != store.Invalid; child = c.world.Store.GetNextSibling(child) {
		c.snapshotSubtree(child, out)
	}
	snap := entitySnapshot{
		Entity:    e,
		Transform: c.world.Store.GlobalTransform(e),
		Name:      c.world.Store.Name(e),
		Parent:    c.world.Store.GetParent(e),
	}
	for t, ok := c.world.Store.FirstComponent(e); ok; t, ok = c.world.Store.NextComponent(e, t) {
		entry, found := c.world.Registry.Entry(t)
		if !found {
			continue
		}
		payload, _ := c.world.Registry.Serialize(t, e)
		snap.Components = append(snap.Components, componentSnapshot{
			Type: t, Version: entry.Version, Payload: payload,
			resource: acquireResource(c.world, t, payload),
		})
	}
	*out = append(*out, snap)
}

func (c *DestroyEntitiesCommand) Execute() bool {
	if len(c.Entities) == 0 {
		return false
	}
	c.snapshots = nil
	for _, e := range c.Entities {
		c.snapshotSubtree(e, &c.snapshots)
	}
	for _, snap := range c.snapshots {
		c.world.Store.DestroyEntity(snap.Entity)
	}
	return true
}

// Undo recreates every destroyed entity in children-first snapshot
// order reversed (parents before children), restoring transform, name,
// parent link and components.
func (c *DestroyEntitiesCommand) Undo() {
	for i := len(c.snapshots) - 1; i >= 0; i-- {
		snap := c.snapshots[i]
		c.world.Store.EmplaceEntity(snap.Entity)
		c.world.Store.SetGlobalTransform(snap.Entity, snap.Transform)
		if snap.Name != "" {
			c.world.Store.SetName(snap.Entity, snap.Name)
		}
		if snap.Parent != store.Invalid {
			c.world.Store.SetParent(snap.Parent, snap.Entity)
		}
		for _, cs := range snap.Components {
			c.world.Store.CreateComponent(cs.Type, snap.Entity)
			c.world.Registry.Deserialize(cs.Type, snap.Entity, cs.Version, cs.Payload)
		}
	}
}

// ReleaseResources releases every resource this command's component
// snapshots pinned, called by the journal once the command is dropped
// from the stack outright rather than undone.
func (c *DestroyEntitiesCommand) ReleaseResources() {
	for _, snap := range c.snapshots {
		for _, cs := range snap.Components {
			releaseResource(cs.resource)
		}
	}
}

func (c *DestroyEntitiesCommand) TypeID() string     { return "destroy_entities" }
func (c *DestroyEntitiesCommand) Merge(Command) bool { return false }
func (c *DestroyEntitiesCommand) Payload() map[string]any {
	return map[string]any{"entities": c.Entities}
}
func (c *DestroyEntitiesCommand) LoadPayload(p map[string]any) {
	if v, ok := p["entities"].([]store.Entity); ok {
		c.Entities = v
	}
}

// AddComponentCommand creates a component on every propagated instance
// of each target entity (spec §4.E "add_component").
type AddComponentCommand struct {
	world  *World
	Type   store.ComponentType
	Target []store.Entity
	added  []store.Entity
}

func NewAddComponentCommand(w *World, t store.ComponentType, target []store.Entity) *AddComponentCommand {
	return &AddComponentCommand{world: w, Type: t, Target: target}
}

func (c *AddComponentCommand) Execute() bool {
	c.added = nil
	for _, e := range propagationTargets(c.world, c.Target) {
		if !c.world.Store.HasComponent(e, c.Type) {
			c.world.Store.CreateComponent(c.Type, e)
			c.added = append(c.added, e)
		}
	}
	return len(c.added) > 0
}

func (c *AddComponentCommand) Undo() {
	for _, e := range c.added {
		c.world.Store.DestroyComponent(e, c.Type)
	}
}

func (c *AddComponentCommand) TypeID() string     { return "add_component" }
func (c *AddComponentCommand) Merge(Command) bool { return false }
func (c *AddComponentCommand) Payload() map[string]any {
	return map[string]any{"type": int(c.Type), "target": c.Target}
}
func (c *AddComponentCommand) LoadPayload(p map[string]any) {
	if v, ok := p["type"].(int); ok {
		c.Type = store.ComponentType(v)
	}
	if v, ok := p["target"].([]store.Entity); ok {
		c.Target = v
	}
}

// DestroyComponentsCommand destroys a component on every propagated
// instance of each target entity, recording its payload for undo
// (spec §4.E "destroy_components").
type DestroyComponentsCommand struct {
	world     *World
	Type      store.ComponentType
	Target    []store.Entity
	destroyed []componentUndo
}

type componentUndo struct {
	Entity   store.Entity
	Version  int
	Payload  map[string]any
	resource ResourceRef
}

func NewDestroyComponentsCommand(w *World, t store.ComponentType, target []store.Entity) *DestroyComponentsCommand {
	return &DestroyComponentsCommand{world: w, Type: t, Target: target}
}

func (c *DestroyComponentsCommand) Execute() bool {
	c.destroyed = nil
	entry, ok := c.world.Registry.Entry(c.Type)
	if !ok {
		return false
	}
	for _, e := range propagationTargets(c.world, c.Target) {
		if !c.world.Store.HasComponent(e, c.Type) {
			continue
		}
		payload, _ := c.world.Registry.Serialize(c.Type, e)
		c.destroyed = append(c.destroyed, componentUndo{
			Entity: e, Version: entry.Version, Payload: payload,
			resource: acquireResource(c.world, c.Type, payload),
		})
		c.world.Store.DestroyComponent(e, c.Type)
	}
	return len(c.destroyed) > 0
}

func (c *DestroyComponentsCommand) Undo() {
	for _, d := range c.destroyed {
		c.world.Store.CreateComponent(c.Type, d.Entity)
		c.world.Registry.Deserialize(c.Type, d.Entity, d.Version, d.Payload)
	}
}

// ReleaseResources releases every resource this command's destroyed
// components pinned (see DestroyEntitiesCommand.ReleaseResources).
func (c *DestroyComponentsCommand) ReleaseResources() {
	for _, d := range c.destroyed {
		releaseResource(d.resource)
	}
}

func (c *DestroyComponentsCommand) TypeID() string     { return "destroy_components" }
func (c *DestroyComponentsCommand) Merge(Command) bool { return false }
func (c *DestroyComponentsCommand) Payload() map[string]any {
	return map[string]any{"type": int(c.Type), "target": c.Target}
}
func (c *DestroyComponentsCommand) LoadPayload(p map[string]any) {
	if v, ok := p["type"].(int); ok {
		c.Type = store.ComponentType(v)
	}
	if v, ok := p["target"].([]store.Entity); ok {
		c.Target = v
	}
}
