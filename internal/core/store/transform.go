package store

import "worldeditor/internal/core/mathutil"

// GlobalTransform returns e's cached world-space transform.
func (s *Store) GlobalTransform(e Entity) mathutil.Transform {
	rec := &s.entities[e]
	return mathutil.Transform{Position: rec.position, Rotation: rec.rotation, Scale: rec.scale}
}

// Position returns e's world-space position.
func (s *Store) Position(e Entity) mathutil.Vec3 { return s.entities[e].position }

// Rotation returns e's world-space rotation.
func (s *Store) Rotation(e Entity) mathutil.Quat { return s.entities[e].rotation }

// Scale returns e's world-space scale.
func (s *Store) Scale(e Entity) float64 { return s.entities[e].scale }

// PositionAndRotation returns just e's position and rotation (scale
// omitted), the way the original's getPositionAndRotation does;
// recovered per SPEC_FULL.md §4.
func (s *Store) PositionAndRotation(e Entity) (mathutil.Vec3, mathutil.Quat) {
	rec := &s.entities[e]
	return rec.position, rec.rotation
}

// LocalTransform returns e's transform relative to its parent, or its
// global transform when e has no hierarchy node (no parent frame).
func (s *Store) LocalTransform(e Entity) mathutil.Transform {
	slot := s.entities[e].hierSlot
	if slot < 0 {
		return s.GlobalTransform(e)
	}
	return s.hierarchy[slot].local
}

func (s *Store) writeGlobal(e Entity, t mathutil.Transform) {
	rec := &s.entities[e]
	rec.position = t.Position
	rec.rotation = t.Rotation.Unit()
	rec.scale = t.Scale
}

// recomputeGlobalFromLocal recomputes e's global transform from its
// stored local transform and its parent's (already up to date) global,
// then cascades to children depth-first in sibling order (spec §5).
func (s *Store) recomputeGlobalFromLocal(e Entity) {
	slot := s.entities[e].hierSlot
	if slot < 0 {
		return
	}
	node := s.hierarchy[slot]
	global := node.local
	if node.parent != Invalid {
		global = s.GlobalTransform(node.parent).Mul(node.local)
	}
	s.writeGlobal(e, global)
	s.events.fireTransformed(e)
	s.propagateToChildren(e)
}

func (s *Store) propagateToChildren(e Entity) {
	slot := s.entities[e].hierSlot
	if slot < 0 {
		return
	}
	for cur := s.hierarchy[slot].firstChild; cur != Invalid; cur = s.GetNextSibling(cur) {
		s.recomputeGlobalFromLocal(cur)
	}
}

// SetGlobalTransform sets e's world transform directly. If e is
// attached to a parent, its local offset is recomputed so the new
// global value sticks; children are then recomputed so each keeps its
// own local offset relative to e's new global transform.
func (s *Store) SetGlobalTransform(e Entity, t mathutil.Transform) {
	s.writeGlobal(e, t)
	if slot := s.entities[e].hierSlot; slot >= 0 {
		node := &s.hierarchy[slot]
		if node.parent != Invalid {
			node.local = s.GlobalTransform(node.parent).Inverse().Mul(t)
		} else {
			node.local = t
		}
	}
	s.events.fireTransformed(e)
	s.propagateToChildren(e)
}

// SetPosition sets e's world-space position, preserving rotation/scale.
func (s *Store) SetPosition(e Entity, pos mathutil.Vec3) {
	t := s.GlobalTransform(e)
	t.Position = pos
	s.SetGlobalTransform(e, t)
}

// SetRotation sets e's world-space rotation, preserving position/scale.
func (s *Store) SetRotation(e Entity, rot mathutil.Quat) {
	t := s.GlobalTransform(e)
	t.Rotation = rot
	s.SetGlobalTransform(e, t)
}

// SetScale sets e's scale. spec §4.E's command table marks scale_entity
// as not propagating "across prefab instances" — a sibling prefab
// instance's own scale is left alone — but that is unrelated to e's own
// scene-graph children, whose cached global transforms must still be
// recomputed the same way SetGlobalTransform does, or
// CheckTransformConsistency (spec §8 property 4) would fail for any
// scaled parent with attached children.
func (s *Store) SetScale(e Entity, scale float64) {
	t := s.GlobalTransform(e)
	t.Scale = scale
	s.writeGlobal(e, t)
	if slot := s.entities[e].hierSlot; slot >= 0 {
		node := &s.hierarchy[slot]
		if node.parent != Invalid {
			node.local = s.GlobalTransform(node.parent).Inverse().Mul(t)
		} else {
			node.local = t
		}
	}
	s.events.fireTransformed(e)
	s.propagateToChildren(e)
}

// SetLocalTransform sets e's transform relative to its parent (or its
// global transform, when e has no parent), then cascades to children.
func (s *Store) SetLocalTransform(e Entity, local mathutil.Transform) {
	slot := s.entities[e].hierSlot
	if slot < 0 {
		s.SetGlobalTransform(e, local)
		return
	}
	s.hierarchy[slot].local = local
	s.recomputeGlobalFromLocal(e)
}

// SetLocalPosition sets e's position relative to its parent.
func (s *Store) SetLocalPosition(e Entity, pos mathutil.Vec3) {
	t := s.LocalTransform(e)
	t.Position = pos
	s.SetLocalTransform(e, t)
}

// SetTransformKeepChildren sets e's global transform without recomputing
// children's local offsets to match the new position, i.e. it leaves
// children's globals untouched this call; used by play-mode restore to
// reseed entities that will immediately be reloaded wholesale. Recovered
// per SPEC_FULL.md §4.
func (s *Store) SetTransformKeepChildren(e Entity, t mathutil.Transform) {
	s.writeGlobal(e, t)
	if slot := s.entities[e].hierSlot; slot >= 0 {
		node := &s.hierarchy[slot]
		if node.parent != Invalid {
			node.local = s.GlobalTransform(node.parent).Inverse().Mul(t)
		} else {
			node.local = t
		}
	}
	s.events.fireTransformed(e)
}

// ComputeLocalTransform returns what child's local transform would be
// if reparented under parent, without mutating the store.
func (s *Store) ComputeLocalTransform(parent Entity, global mathutil.Transform) mathutil.Transform {
	if parent == Invalid {
		return global
	}
	return s.GlobalTransform(parent).Inverse().Mul(global)
}

// CheckTransformConsistency verifies global(e) == global(parent(e)) *
// local(e) for every hierarchy-attached entity (spec §8 property 4). It
// is a debug/test assertion, not used on the hot path.
func (s *Store) CheckTransformConsistency() bool {
	for i := range s.hierarchy {
		node := s.hierarchy[i]
		if !node.valid {
			continue
		}
		expected := node.local
		if node.parent != Invalid {
			expected = s.GlobalTransform(node.parent).Mul(node.local)
		}
		if !s.GlobalTransform(node.entity).Equal(expected) {
			return false
		}
	}
	return true
}
