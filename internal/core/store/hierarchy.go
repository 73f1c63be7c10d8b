package store

import "worldeditor/internal/core/mathutil"

// hierarchyNode exists only for entities participating in a
// parent-child relationship, stored in a separately packed array; an
// entity records its index or -1 (spec §3).
type hierarchyNode struct {
	entity      Entity
	parent      Entity
	firstChild  Entity
	nextSibling Entity
	local       mathutil.Transform
	valid       bool
}

type nameSlot struct {
	entity Entity
	name   string
}

func (s *Store) ensureHierarchyNode(e Entity) int32 {
	rec := &s.entities[e]
	if rec.hierSlot >= 0 {
		return rec.hierSlot
	}
	node := hierarchyNode{
		entity:      e,
		parent:      Invalid,
		firstChild:  Invalid,
		nextSibling: Invalid,
		local:       mathutil.Transform{Position: rec.position, Rotation: rec.rotation, Scale: rec.scale},
		valid:       true,
	}
	for i := range s.hierarchy {
		if !s.hierarchy[i].valid {
			s.hierarchy[i] = node
			rec.hierSlot = int32(i)
			return rec.hierSlot
		}
	}
	s.hierarchy = append(s.hierarchy, node)
	rec.hierSlot = int32(len(s.hierarchy) - 1)
	return rec.hierSlot
}

func (s *Store) freeHierarchyNode(slot int32) {
	s.hierarchy[slot] = hierarchyNode{}
}

// gcNodeIfOrphan removes e's hierarchy node once it has neither a
// parent nor any children, per spec §4.B.
func (s *Store) gcNodeIfOrphan(e Entity) {
	rec := &s.entities[e]
	if rec.hierSlot < 0 {
		return
	}
	node := s.hierarchy[rec.hierSlot]
	if node.parent == Invalid && node.firstChild == Invalid {
		s.freeHierarchyNode(rec.hierSlot)
		rec.hierSlot = -1
	}
}

// IsDescendant reports whether descendant is somewhere below ancestor in
// the tree, found by walking up descendant's parent chain.
func (s *Store) IsDescendant(ancestor, descendant Entity) bool {
	cur := s.GetParent(descendant)
	for cur != Invalid {
		if cur == ancestor {
			return true
		}
		cur = s.GetParent(cur)
	}
	return false
}

// GetParent returns e's parent, or Invalid if e has none.
func (s *Store) GetParent(e Entity) Entity {
	if !s.IsValid(e) || s.entities[e].hierSlot < 0 {
		return Invalid
	}
	return s.hierarchy[s.entities[e].hierSlot].parent
}

// GetFirstChild returns e's first child, or Invalid.
func (s *Store) GetFirstChild(e Entity) Entity {
	if !s.IsValid(e) || s.entities[e].hierSlot < 0 {
		return Invalid
	}
	return s.hierarchy[s.entities[e].hierSlot].firstChild
}

// GetNextSibling returns e's next sibling in its parent's child list,
// or Invalid.
func (s *Store) GetNextSibling(e Entity) Entity {
	if !s.IsValid(e) || s.entities[e].hierSlot < 0 {
		return Invalid
	}
	return s.hierarchy[s.entities[e].hierSlot].nextSibling
}

func (s *Store) removeFromParent(e Entity) {
	rec := &s.entities[e]
	if rec.hierSlot < 0 {
		return
	}
	node := &s.hierarchy[rec.hierSlot]
	parent := node.parent
	if parent == Invalid {
		return
	}
	pSlot := s.entities[parent].hierSlot
	pNode := &s.hierarchy[pSlot]
	if pNode.firstChild == e {
		pNode.firstChild = node.nextSibling
	} else {
		for cur := pNode.firstChild; cur != Invalid; {
			curSlot := s.entities[cur].hierSlot
			curNode := &s.hierarchy[curSlot]
			if curNode.nextSibling == e {
				curNode.nextSibling = node.nextSibling
				break
			}
			cur = curNode.nextSibling
		}
	}
	node.parent = Invalid
	node.nextSibling = Invalid
	s.gcNodeIfOrphan(parent)
}

// detachChildren re-parents all of e's children to root (Invalid),
// preserving their global transforms, as part of destroying e.
func (s *Store) detachChildren(e Entity) {
	rec := &s.entities[e]
	if rec.hierSlot < 0 {
		return
	}
	node := &s.hierarchy[rec.hierSlot]
	for cur := node.firstChild; cur != Invalid; {
		next := s.GetNextSibling(cur)
		s.SetParent(Invalid, cur)
		cur = next
	}
}

// SetParent reparents child under newParent, rejecting the operation
// (logging CycleInHierarchy, leaving state untouched) if it would
// create a cycle. newParent == Invalid detaches child to the root.
// Attaching recomputes child.local so its global transform is
// preserved; detaching resets local to the (unchanged) global.
func (s *Store) SetParent(newParent, child Entity) error {
	if !s.IsValid(child) {
		return ErrInvalidOperation("SetParent: invalid child")
	}
	if newParent != Invalid {
		if !s.IsValid(newParent) {
			return ErrInvalidOperation("SetParent: invalid parent")
		}
		if newParent == child || s.IsDescendant(child, newParent) {
			s.log.Warn(KindCycleInHierarchy, "rejected reparent that would create a cycle")
			return ErrCycleInHierarchy
		}
	}

	childGlobal := s.GlobalTransform(child)
	s.removeFromParent(child)

	if newParent == Invalid {
		s.gcNodeIfOrphan(child)
		if s.entities[child].hierSlot >= 0 {
			s.hierarchy[s.entities[child].hierSlot].local = childGlobal
		}
		s.events.fireTransformed(child)
		return nil
	}

	childSlot := s.ensureHierarchyNode(child)
	parentSlot := s.ensureHierarchyNode(newParent)

	parentGlobal := s.GlobalTransform(newParent)
	s.hierarchy[childSlot].parent = newParent
	s.hierarchy[childSlot].local = parentGlobal.Inverse().Mul(childGlobal)
	s.hierarchy[childSlot].nextSibling = s.hierarchy[parentSlot].firstChild
	s.hierarchy[parentSlot].firstChild = child

	s.recomputeGlobalFromLocal(child)
	return nil
}

// SetName assigns a name to e, allocating a name slot if needed.
func (s *Store) SetName(e Entity, name string) {
	rec := &s.entities[e]
	if rec.nameSlot < 0 {
		for i := range s.names {
			if s.names[i].entity == Invalid {
				s.names[i] = nameSlot{entity: e, name: name}
				rec.nameSlot = int32(i)
				return
			}
		}
		s.names = append(s.names, nameSlot{entity: e, name: name})
		rec.nameSlot = int32(len(s.names) - 1)
		return
	}
	s.names[rec.nameSlot].name = name
}

// Name returns e's name, or "" if unset.
func (s *Store) Name(e Entity) string {
	if !s.IsValid(e) || s.entities[e].nameSlot < 0 {
		return ""
	}
	return s.names[s.entities[e].nameSlot].name
}

func (s *Store) freeNameSlot(slot int32) {
	s.names[slot] = nameSlot{entity: Invalid}
}

// FindByName looks up a child of parent (or any root entity when
// parent is Invalid) by name. Supplemented from the original's
// Project::findByName (not in spec.md, recovered per SPEC_FULL.md §4).
func (s *Store) FindByName(parent Entity, name string) Entity {
	if parent != Invalid {
		for cur := s.GetFirstChild(parent); cur != Invalid; cur = s.GetNextSibling(cur) {
			if s.Name(cur) == name {
				return cur
			}
		}
		return Invalid
	}
	for i := range s.entities {
		e := Entity(i)
		if s.entities[i].valid && s.GetParent(e) == Invalid && s.Name(e) == name {
			return e
		}
	}
	return Invalid
}
