package command

import (
	"worldeditor/internal/core/store"
)

// propertySnapshot is one target entity's whole component payload before
// a property edit, kept verbatim so undo restores it exactly.
type propertySnapshot struct {
	Entity  store.Entity
	Payload map[string]any
}

// applyProperty re-serializes target's component t, applies fn to the
// payload in place, and deserializes the mutated payload back onto the
// entity. There is no field-level reflection system (spec's simplified
// component model), so every property command round-trips the whole
// payload through Serialize/Deserialize as its setter.
func applyProperty(w *World, t store.ComponentType, target store.Entity, fn func(payload map[string]any)) (before map[string]any, ok bool) {
	entry, found := w.Registry.Entry(t)
	if !found {
		return nil, false
	}
	payload, err := w.Registry.Serialize(t, target)
	if err != nil || payload == nil {
		return nil, false
	}
	before = clonePayload(payload)
	fn(payload)
	if err := w.Registry.Deserialize(t, target, entry.Version, payload); err != nil {
		return nil, false
	}
	return before, true
}

func clonePayload(p map[string]any) map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// SetPropertyCommand sets a single named field on a component's payload,
// propagating across prefab instances (spec §4.E "set_property"). Two
// edits of the same entity/component/field in a row merge.
type SetPropertyCommand struct {
	world     *World
	Type      store.ComponentType
	Target    []store.Entity
	Field     string
	Value     any
	snapshots []propertySnapshot
	executed  bool
}

func NewSetPropertyCommand(w *World, t store.ComponentType, target []store.Entity, field string, value any) *SetPropertyCommand {
	return &SetPropertyCommand{world: w, Type: t, Target: target, Field: field, Value: value}
}

// Execute applies Value to Field on every propagated target. The
// "before" snapshot is only captured the first time Execute runs: a
// merge re-executes the same command object with an updated Value, and
// re-snapshotting then would record the already-edited payload instead
// of the true original.
func (c *SetPropertyCommand) Execute() bool {
	if !c.executed {
		c.snapshots = nil
		for _, e := range propagationTargets(c.world, c.Target) {
			before, ok := applyProperty(c.world, c.Type, e, func(payload map[string]any) {
				payload[c.Field] = c.Value
			})
			if ok {
				c.snapshots = append(c.snapshots, propertySnapshot{Entity: e, Payload: before})
			}
		}
		c.executed = true
		return len(c.snapshots) > 0
	}
	entry, ok := c.world.Registry.Entry(c.Type)
	if !ok {
		return false
	}
	for _, snap := range c.snapshots {
		payload := clonePayload(snap.Payload)
		payload[c.Field] = c.Value
		c.world.Registry.Deserialize(c.Type, snap.Entity, entry.Version, payload)
	}
	return len(c.snapshots) > 0
}

func (c *SetPropertyCommand) Undo() {
	entry, ok := c.world.Registry.Entry(c.Type)
	if !ok {
		return
	}
	for _, snap := range c.snapshots {
		c.world.Registry.Deserialize(c.Type, snap.Entity, entry.Version, snap.Payload)
	}
}

func (c *SetPropertyCommand) TypeID() string { return "set_property" }

func (c *SetPropertyCommand) Merge(previous Command) bool {
	p, ok := previous.(*SetPropertyCommand)
	if !ok || p.Type != c.Type || p.Field != c.Field || !sameEntitySet(p.Target, c.Target) {
		return false
	}
	p.Value = c.Value
	return true
}

func (c *SetPropertyCommand) Payload() map[string]any {
	return map[string]any{"type": int(c.Type), "target": c.Target, "field": c.Field, "value": c.Value}
}
func (c *SetPropertyCommand) LoadPayload(p map[string]any) {
	if v, ok := p["type"].(int); ok {
		c.Type = store.ComponentType(v)
	}
	if v, ok := p["target"].([]store.Entity); ok {
		c.Target = v
	}
	if v, ok := p["field"].(string); ok {
		c.Field = v
	}
	if v, ok := p["value"]; ok {
		c.Value = v
	}
}

// AddArrayPropertyItemCommand appends a value to an array-valued field
// in a component's payload, propagating across prefab instances (spec
// §4.E "add_array_property_item").
type AddArrayPropertyItemCommand struct {
	world     *World
	Type      store.ComponentType
	Target    []store.Entity
	Field     string
	Item      any
	snapshots []propertySnapshot
}

func NewAddArrayPropertyItemCommand(w *World, t store.ComponentType, target []store.Entity, field string, item any) *AddArrayPropertyItemCommand {
	return &AddArrayPropertyItemCommand{world: w, Type: t, Target: target, Field: field, Item: item}
}

func (c *AddArrayPropertyItemCommand) Execute() bool {
	c.snapshots = nil
	for _, e := range propagationTargets(c.world, c.Target) {
		before, ok := applyProperty(c.world, c.Type, e, func(payload map[string]any) {
			arr, _ := payload[c.Field].([]any)
			payload[c.Field] = append(arr, c.Item)
		})
		if ok {
			c.snapshots = append(c.snapshots, propertySnapshot{Entity: e, Payload: before})
		}
	}
	return len(c.snapshots) > 0
}

func (c *AddArrayPropertyItemCommand) Undo() {
	entry, ok := c.world.Registry.Entry(c.Type)
	if !ok {
		return
	}
	for _, snap := range c.snapshots {
		c.world.Registry.Deserialize(c.Type, snap.Entity, entry.Version, snap.Payload)
	}
}

func (c *AddArrayPropertyItemCommand) TypeID() string     { return "add_array_property_item" }
func (c *AddArrayPropertyItemCommand) Merge(Command) bool { return false }

func (c *AddArrayPropertyItemCommand) Payload() map[string]any {
	return map[string]any{"type": int(c.Type), "target": c.Target, "field": c.Field, "item": c.Item}
}
func (c *AddArrayPropertyItemCommand) LoadPayload(p map[string]any) {
	if v, ok := p["type"].(int); ok {
		c.Type = store.ComponentType(v)
	}
	if v, ok := p["target"].([]store.Entity); ok {
		c.Target = v
	}
	if v, ok := p["field"].(string); ok {
		c.Field = v
	}
	if v, ok := p["item"]; ok {
		c.Item = v
	}
}

// RemoveArrayPropertyItemCommand removes the item at Index from an
// array-valued field, propagating across prefab instances (spec §4.E
// "remove_array_property_item").
type RemoveArrayPropertyItemCommand struct {
	world     *World
	Type      store.ComponentType
	Target    []store.Entity
	Field     string
	Index     int
	snapshots []propertySnapshot
}

func NewRemoveArrayPropertyItemCommand(w *World, t store.ComponentType, target []store.Entity, field string, index int) *RemoveArrayPropertyItemCommand {
	return &RemoveArrayPropertyItemCommand{world: w, Type: t, Target: target, Field: field, Index: index}
}

func (c *RemoveArrayPropertyItemCommand) Execute() bool {
	c.snapshots = nil
	for _, e := range propagationTargets(c.world, c.Target) {
		before, ok := applyProperty(c.world, c.Type, e, func(payload map[string]any) {
			arr, _ := payload[c.Field].([]any)
			if c.Index < 0 || c.Index >= len(arr) {
				return
			}
			out := make([]any, 0, len(arr)-1)
			out = append(out, arr[:c.Index]...)
			payload[c.Field] = append(out, arr[c.Index+1:]...)
		})
		if ok {
			c.snapshots = append(c.snapshots, propertySnapshot{Entity: e, Payload: before})
		}
	}
	return len(c.snapshots) > 0
}

func (c *RemoveArrayPropertyItemCommand) Undo() {
	entry, ok := c.world.Registry.Entry(c.Type)
	if !ok {
		return
	}
	for _, snap := range c.snapshots {
		c.world.Registry.Deserialize(c.Type, snap.Entity, entry.Version, snap.Payload)
	}
}

func (c *RemoveArrayPropertyItemCommand) TypeID() string     { return "remove_array_property_item" }
func (c *RemoveArrayPropertyItemCommand) Merge(Command) bool { return false }

func (c *RemoveArrayPropertyItemCommand) Payload() map[string]any {
	return map[string]any{"type": int(c.Type), "target": c.Target, "field": c.Field, "index": c.Index}
}
func (c *RemoveArrayPropertyItemCommand) LoadPayload(p map[string]any) {
	if v, ok := p["type"].(int); ok {
		c.Type = store.ComponentType(v)
	}
	if v, ok := p["target"].([]store.Entity); ok {
		c.Target = v
	}
	if v, ok := p["field"].(string); ok {
		c.Field = v
	}
	if v, ok := p["index"].(int); ok {
		c.Index = v
	}
}
