package command

import (
	"worldeditor/internal/core/mathutil"
	"worldeditor/internal/core/store"
)

// entityTransform is one entity's global transform, snapshotted for undo.
type entityTransform struct {
	Entity store.Entity
	Before mathutil.Transform
}

// MoveEntityCommand sets a set of entities' global transform, propagating
// across prefab instances. Two moves of the same entity set in a row
// merge into one undo step (spec §4.E "move_entity").
type MoveEntityCommand struct {
	world    *World
	Target   []store.Entity
	To       mathutil.Transform
	previous []entityTransform
	executed bool
}

func NewMoveEntityCommand(w *World, target []store.Entity, to mathutil.Transform) *MoveEntityCommand {
	return &MoveEntityCommand{world: w, Target: target, To: to}
}

// Execute applies To to every propagated target. The "before" snapshot
// is only captured the first time Execute runs: a merge re-executes the
// same command object with an updated To, and re-snapshotting then
// would record the already-moved state instead of the true original.
func (c *MoveEntityCommand) Execute() bool {
	if !c.executed {
		c.previous = nil
		for _, e := range propagationTargets(c.world, c.Target) {
			c.previous = append(c.previous, entityTransform{Entity: e, Before: c.world.Store.GlobalTransform(e)})
		}
		c.executed = true
	}
	for _, p := range c.previous {
		c.world.Store.SetGlobalTransform(p.Entity, c.To)
	}
	return len(c.previous) > 0
}

func (c *MoveEntityCommand) Undo() {
	for _, p := range c.previous {
		c.world.Store.SetGlobalTransform(p.Entity, p.Before)
	}
}

func (c *MoveEntityCommand) TypeID() string { return "move_entity" }

// Merge absorbs a follow-up move of the exact same entity set, keeping
// the earliest "before" snapshot so undo still restores the original
// state prior to the whole drag gesture.
func (c *MoveEntityCommand) Merge(previous Command) bool {
	p, ok := previous.(*MoveEntityCommand)
	if !ok || !sameEntitySet(p.Target, c.Target) {
		return false
	}
	p.To = c.To
	return true
}

func (c *MoveEntityCommand) Payload() map[string]any {
	return map[string]any{"target": c.Target, "to": c.To}
}
func (c *MoveEntityCommand) LoadPayload(p map[string]any) {
	if v, ok := p["target"].([]store.Entity); ok {
		c.Target = v
	}
	if v, ok := p["to"].(mathutil.Transform); ok {
		c.To = v
	}
}

// LocalMoveEntityCommand sets a single entity's transform relative to
// its parent, not propagated across prefabs (it is typically issued per
// propagated instance by the caller already).
type LocalMoveEntityCommand struct {
	world    *World
	Target   store.Entity
	To       mathutil.Transform
	before   mathutil.Transform
	executed bool
}

func NewLocalMoveEntityCommand(w *World, target store.Entity, to mathutil.Transform) *LocalMoveEntityCommand {
	return &LocalMoveEntityCommand{world: w, Target: target, To: to}
}

func (c *LocalMoveEntityCommand) Execute() bool {
	if !c.executed {
		c.before = c.world.Store.LocalTransform(c.Target)
		c.executed = true
	}
	c.world.Store.SetLocalTransform(c.Target, c.To)
	return true
}

func (c *LocalMoveEntityCommand) Undo() {
	c.world.Store.SetLocalTransform(c.Target, c.before)
}

func (c *LocalMoveEntityCommand) TypeID() string { return "local_move_entity" }

func (c *LocalMoveEntityCommand) Merge(previous Command) bool {
	p, ok := previous.(*LocalMoveEntityCommand)
	if !ok || p.Target != c.Target {
		return false
	}
	p.To = c.To
	return true
}

func (c *LocalMoveEntityCommand) Payload() map[string]any {
	return map[string]any{"target": c.Target, "to": c.To}
}
func (c *LocalMoveEntityCommand) LoadPayload(p map[string]any) {
	if v, ok := p["target"].(store.Entity); ok {
		c.Target = v
	}
	if v, ok := p["to"].(mathutil.Transform); ok {
		c.To = v
	}
}

// ScaleEntityCommand sets a single entity's uniform scale. The entity's
// scene-graph children follow (store.SetScale recomputes their global
// transforms), but the scale does not propagate across prefab
// instances, matching the original's per-instance scale handling.
type ScaleEntityCommand struct {
	world    *World
	Target   store.Entity
	To       float64
	before   float64
	executed bool
}

func NewScaleEntityCommand(w *World, target store.Entity, to float64) *ScaleEntityCommand {
	return &ScaleEntityCommand{world: w, Target: target, To: to}
}

func (c *ScaleEntityCommand) Execute() bool {
	if !c.executed {
		c.before = c.world.Store.Scale(c.Target)
		c.executed = true
	}
	c.world.Store.SetScale(c.Target, c.To)
	return true
}

func (c *ScaleEntityCommand) Undo() { c.world.Store.SetScale(c.Target, c.before) }

func (c *ScaleEntityCommand) TypeID() string { return "scale_entity" }

func (c *ScaleEntityCommand) Merge(previous Command) bool {
	p, ok := previous.(*ScaleEntityCommand)
	if !ok || p.Target != c.Target {
		return false
	}
	p.To = c.To
	return true
}

func (c *ScaleEntityCommand) Payload() map[string]any {
	return map[string]any{"target": c.Target, "to": c.To}
}
func (c *ScaleEntityCommand) LoadPayload(p map[string]any) {
	if v, ok := p["target"].(store.Entity); ok {
		c.Target = v
	}
	if v, ok := p["to"].(float64); ok {
		c.To = v
	}
}

// SetNameCommand renames a single entity.
type SetNameCommand struct {
	world    *World
	Target   store.Entity
	To       string
	before   string
	executed bool
}

func NewSetNameCommand(w *World, target store.Entity, to string) *SetNameCommand {
	return &SetNameCommand{world: w, Target: target, To: to}
}

func (c *SetNameCommand) Execute() bool {
	if !c.executed {
		c.before = c.world.Store.Name(c.Target)
		c.executed = true
	}
	c.world.Store.SetName(c.Target, c.To)
	return true
}

func (c *SetNameCommand) Undo() { c.world.Store.SetName(c.Target, c.before) }

func (c *SetNameCommand) TypeID() string { return "set_name" }

func (c *SetNameCommand) Merge(previous Command) bool {
	p, ok := previous.(*SetNameCommand)
	if !ok || p.Target != c.Target {
		return false
	}
	p.To = c.To
	return true
}

func (c *SetNameCommand) Payload() map[string]any {
	return map[string]any{"target": c.Target, "to": c.To}
}
func (c *SetNameCommand) LoadPayload(p map[string]any) {
	if v, ok := p["target"].(store.Entity); ok {
		c.Target = v
	}
	if v, ok := p["to"].(string); ok {
		c.To = v
	}
}

// MakeParentCommand reparents a single child entity under a new parent
// (or under root, if newParent is store.Invalid), rejecting cycles the
// same way store.SetParent does. SetParent itself preserves the child's
// global transform across the reparent, so the command only needs to
// remember the old parent for undo. The "before" snapshot is only
// captured the first time Execute runs (mirroring MoveEntityCommand):
// a merge re-executes the same command object with an updated
// NewParent, and re-snapshotting then would record the already-
// reparented state instead of the true original parent.
type MakeParentCommand struct {
	world     *World
	Child     store.Entity
	NewParent store.Entity
	before    store.Entity
	executed  bool
}

func NewMakeParentCommand(w *World, child, newParent store.Entity) *MakeParentCommand {
	return &MakeParentCommand{world: w, Child: child, NewParent: newParent}
}

func (c *MakeParentCommand) Execute() bool {
	if !c.executed {
		c.before = c.world.Store.GetParent(c.Child)
		c.executed = true
	}
	return c.world.Store.SetParent(c.NewParent, c.Child) == nil
}

func (c *MakeParentCommand) Undo() {
	_ = c.world.Store.SetParent(c.before, c.Child)
}

func (c *MakeParentCommand) TypeID() string { return "make_parent" }

// Merge absorbs a follow-up reparent of the same child, keeping the
// earliest "before" parent so undo still restores the state prior to
// the whole sequence of reparents (spec §4.E command table: make_parent
// "Merges? yes (same child)").
func (c *MakeParentCommand) Merge(previous Command) bool {
	p, ok := previous.(*MakeParentCommand)
	if !ok || p.Child != c.Child {
		return false
	}
	p.NewParent = c.NewParent
	return true
}

func (c *MakeParentCommand) Payload() map[string]any {
	return map[string]any{"child": c.Child, "new_parent": c.NewParent}
}
func (c *MakeParentCommand) LoadPayload(p map[string]any) {
	if v, ok := p["child"].(store.Entity); ok {
		c.Child = v
	}
	if v, ok := p["new_parent"].(store.Entity); ok {
		c.NewParent = v
	}
}

func sameEntitySet(a, b []store.Entity) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[store.Entity]bool, len(a))
	for _, e := range a {
		seen[e] = true
	}
	for _, e := range b {
		if !seen[e] {
			return false
		}
	}
	return true
}
