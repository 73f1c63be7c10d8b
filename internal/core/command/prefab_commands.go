package command

import (
	"go.uber.org/zap"

	"worldeditor/internal/core/mathutil"
	"worldeditor/internal/core/store"
)

// PasteEntityCommand clones a single previously-copied entity into the
// project at a given position (spec §4.E "paste_entity"). Only Source
// itself is pasted: its children are not cloned and the copy has no
// parent. It leans on store.Clone for the structural copy and then
// copies each component's payload from Source; cross-references inside the
// cloned component payloads are not rewritten (see DESIGN.md — a
// bounded simplification of the original's local-load-map remap).
type PasteEntityCommand struct {
	world       *World
	Source      store.Entity
	Position    mathutil.Vec3
	created     store.Entity
	everCreated bool

	// name, transform, components and payloads snapshot the entity
	// pasted on the first Execute, so redo can restore the exact pasted
	// state (name, transform, component set and data) rather than just
	// reclaiming a bare, empty slot — the Source entity may since have
	// been renamed, moved or destroyed by the time redo runs.
	name       string
	transform  mathutil.Transform
	components []store.ComponentType
	payloads   []map[string]any
}

func NewPasteEntityCommand(w *World, source store.Entity, pos mathutil.Vec3) *PasteEntityCommand {
	return &PasteEntityCommand{world: w, Source: source, Position: pos}
}

func (c *PasteEntityCommand) Execute() bool {
	if c.everCreated {
		c.world.Store.EmplaceEntity(c.created)
		c.world.Store.SetGlobalTransform(c.created, c.transform)
		if c.name != "" {
			c.world.Store.SetName(c.created, c.name)
		}
		for i, ct := range c.components {
			c.world.Store.CreateComponent(ct, c.created)
			if entry, found := c.world.Registry.Entry(ct); found && c.payloads[i] != nil {
				c.world.Registry.Deserialize(ct, c.created, entry.Version, c.payloads[i])
			}
		}
		return true
	}
	if !c.world.Store.IsValid(c.Source) {
		return false
	}
	c.created = c.world.Store.Clone(c.Source)
	c.world.Store.SetPosition(c.created, c.Position)
	c.everCreated = true

	c.name = c.world.Store.Name(c.created)
	c.transform = c.world.Store.GlobalTransform(c.created)
	c.components = nil
	c.payloads = nil
	for ct, ok := c.world.Store.FirstComponent(c.created); ok; ct, ok = c.world.Store.NextComponent(c.created, ct) {
		payload, _ := c.world.Registry.Serialize(ct, c.Source)
		if entry, found := c.world.Registry.Entry(ct); found && payload != nil {
			c.world.Registry.Deserialize(ct, c.created, entry.Version, payload)
		}
		c.components = append(c.components, ct)
		c.payloads = append(c.payloads, payload)
	}
	return true
}

func (c *PasteEntityCommand) Undo() { c.world.Store.DestroyEntity(c.created) }

func (c *PasteEntityCommand) TypeID() string     { return "paste_entity" }
func (c *PasteEntityCommand) Merge(Command) bool { return false }

func (c *PasteEntityCommand) Payload() map[string]any {
	return map[string]any{"source": c.Source, "position": c.Position}
}
func (c *PasteEntityCommand) LoadPayload(p map[string]any) {
	if v, ok := p["source"].(store.Entity); ok {
		c.Source = v
	}
	if v, ok := p["position"].(mathutil.Vec3); ok {
		c.Position = v
	}
}

// InstantiatePrefabCommand instances a prefab resource's blob into the
// project at a given transform (spec §4.E "instantiate_prefab"), a thin
// wrapper around prefab.System.InstantiateAll run through the journal
// so it is itself undoable. A prefab file commonly instantiates more
// than one entity (root plus descendants); undo must destroy every one
// of them, not just the root — destroying only the root would leave
// store.DestroyEntity detaching the root's children to the scene root
// instead of removing them, leaking the rest of the subtree.
type InstantiatePrefabCommand struct {
	world    *World
	Blob     []byte
	Position mathutil.Vec3
	Rotation mathutil.Quat
	Scale    float64
	created  []store.Entity
}

func NewInstantiatePrefabCommand(w *World, blob []byte, pos mathutil.Vec3, rot mathutil.Quat, scale float64) *InstantiatePrefabCommand {
	return &InstantiatePrefabCommand{world: w, Blob: blob, Position: pos, Rotation: rot, Scale: scale}
}

func (c *InstantiatePrefabCommand) Execute() bool {
	entities, err := c.world.Prefabs.InstantiateAll(c.Blob, c.Position, c.Rotation, c.Scale)
	if err != nil {
		c.world.Log.Error("InstantiatePrefabFailed", "failed to instantiate prefab", zap.Error(err))
		return false
	}
	c.created = entities
	return true
}

// Undo destroys every entity this instantiation created, in reverse
// creation order (descendants before the root) so no destroy ever has
// to re-parent a still-pending sibling.
func (c *InstantiatePrefabCommand) Undo() {
	for i := len(c.created) - 1; i >= 0; i-- {
		c.world.Store.DestroyEntity(c.created[i])
	}
}

func (c *InstantiatePrefabCommand) TypeID() string     { return "instantiate_prefab" }
func (c *InstantiatePrefabCommand) Merge(Command) bool { return false }

func (c *InstantiatePrefabCommand) Payload() map[string]any {
	return map[string]any{"position": c.Position, "rotation": c.Rotation, "scale": c.Scale}
}
func (c *InstantiatePrefabCommand) LoadPayload(p map[string]any) {
	if v, ok := p["position"].(mathutil.Vec3); ok {
		c.Position = v
	}
	if v, ok := p["rotation"].(mathutil.Quat); ok {
		c.Rotation = v
	}
	if v, ok := p["scale"].(float64); ok {
		c.Scale = v
	}
}
