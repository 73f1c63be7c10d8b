// Package store implements the project store: the entity/component/
// hierarchy database the editor mutates (spec §3, §4.B). Entities are
// dense, recyclable 32-bit handles; component ownership lives in
// scene-registered collaborators and is only tracked here as a bitmask.
package store

import (
	"worldeditor/internal/core/editorlog"
	"worldeditor/internal/core/mathutil"
)

// Entity is a dense handle into the store: an index plus implicit
// validity (tracked out-of-band in the store, not in the handle itself).
type Entity int32

const (
	// Invalid is returned wherever "no entity" is a valid answer.
	Invalid Entity = -1
	// Unassigned marks a reference that was never wired, distinct from
	// one explicitly cleared to Invalid (spec §3).
	Unassigned Entity = -2
)

// ComponentType is a dense small integer, 1..MaxComponentTypes. A
// project has at most MaxComponentTypes distinct component types since
// presence is tracked as a single bit in a 64-bit mask.
type ComponentType uint8

// MaxComponentTypes is the largest ComponentType a project may register.
const MaxComponentTypes = 63

// Mask is the 64-bit component-presence bitmask for one entity.
type Mask uint64

func (m Mask) has(t ComponentType) bool { return m&(1<<uint(t)) != 0 }
func (m Mask) set(t ComponentType) Mask { return m | (1 << uint(t)) }
func (m Mask) clear(t ComponentType) Mask { return m &^ (1 << uint(t)) }

type entityRecord struct {
	position mathutil.Vec3
	rotation mathutil.Quat
	scale    float64
	mask     Mask
	nameSlot int32
	hierSlot int32
	valid    bool
}

// Registry is the scene-registry contract the store dispatches
// component creation and destruction through (spec §4.C). The concrete
// implementation lives in package scene; store only depends on this
// narrow interface to avoid an import cycle.
type Registry interface {
	Create(t ComponentType, e Entity)
	Destroy(t ComponentType, e Entity)
	Registered(t ComponentType) bool
}

// Store is the project's entity/component/hierarchy database.
type Store struct {
	entities  []entityRecord
	nextFree  []Entity // side-band free-list links, parallel to entities
	firstFree Entity

	hierarchy []hierarchyNode
	names     []nameSlot

	registry Registry
	log      *editorlog.Logger

	events eventHub
}

// New creates an empty project store bound to a component registry.
func New(registry Registry, log *editorlog.Logger) *Store {
	if log == nil {
		log = editorlog.Nop()
	}
	return &Store{
		registry:  registry,
		log:       log,
		firstFree: Invalid,
	}
}

// CreateEntity allocates a new entity at the given world position and
// rotation, reusing a free slot when one is available. O(1), never
// fails. Fires EntityCreated.
func (s *Store) CreateEntity(pos mathutil.Vec3, rot mathutil.Quat) Entity {
	var e Entity
	if s.firstFree != Invalid {
		e = s.firstFree
		s.firstFree = s.nextFree[e]
		s.entities[e] = entityRecord{position: pos, rotation: rot, scale: 1, nameSlot: -1, hierSlot: -1, valid: true}
	} else {
		e = Entity(len(s.entities))
		s.entities = append(s.entities, entityRecord{position: pos, rotation: rot, scale: 1, nameSlot: -1, hierSlot: -1, valid: true})
		s.nextFree = append(s.nextFree, Invalid)
	}
	s.events.fireEntityCreated(e)
	return e
}

// EmplaceEntity claims the slot at an explicit index, extending the
// array and patching the free list as needed. Used by deserialization
// to recreate entities at their saved indices.
func (s *Store) EmplaceEntity(idx Entity) {
	for Entity(len(s.entities)) <= idx {
		free := Entity(len(s.entities))
		s.entities = append(s.entities, entityRecord{nameSlot: -1, hierSlot: -1})
		s.nextFree = append(s.nextFree, s.firstFree)
		s.firstFree = free
	}
	if s.entities[idx].valid {
		return
	}
	s.unlinkFree(idx)
	s.entities[idx] = entityRecord{position: mathutil.Vec3{}, rotation: mathutil.QIdentity(), scale: 1, nameSlot: -1, hierSlot: -1, valid: true}
	s.events.fireEntityCreated(idx)
}

func (s *Store) unlinkFree(target Entity) {
	if s.firstFree == target {
		s.firstFree = s.nextFree[target]
		return
	}
	for cur := s.firstFree; cur != Invalid; cur = s.nextFree[cur] {
		if s.nextFree[cur] == target {
			s.nextFree[cur] = s.nextFree[target]
			return
		}
	}
}

// IsValid reports whether e refers to a live entity.
func (s *Store) IsValid(e Entity) bool {
	return e >= 0 && int(e) < len(s.entities) && s.entities[e].valid
}

// DestroyEntity tears down components, detaches from hierarchy
// (reparenting children to root), removes the name, and returns the
// slot to the free list. Fires EntityDestroyed.
func (s *Store) DestroyEntity(e Entity) {
	if !s.IsValid(e) {
		return
	}
	rec := &s.entities[e]

	for t := ComponentType(1); t <= MaxComponentTypes; t++ {
		if rec.mask.has(t) {
			s.DestroyComponent(e, t)
		}
	}

	if rec.hierSlot >= 0 {
		s.detachChildren(e)
		s.removeFromParent(e)
		s.freeHierarchyNode(rec.hierSlot)
	}

	if rec.nameSlot >= 0 {
		s.freeNameSlot(rec.nameSlot)
	}

	*rec = entityRecord{}
	s.nextFree[e] = s.firstFree
	s.firstFree = e

	s.events.fireEntityDestroyed(e)
}

// EntityCount returns the number of currently live entities.
func (s *Store) EntityCount() int {
	n := 0
	for i := range s.entities {
		if s.entities[i].valid {
			n++
		}
	}
	return n
}

// Capacity returns the dense array length, live or free.
func (s *Store) Capacity() int { return len(s.entities) }

// FreeListValid walks the free-list chain and reports whether it is
// either empty or a cycle-free chain ending in Invalid (spec §8
// property 8). Intended for tests and debug assertions.
func (s *Store) FreeListValid() bool {
	seen := make(map[Entity]bool)
	for cur := s.firstFree; cur != Invalid; cur = s.nextFree[cur] {
		if seen[cur] {
			return false
		}
		seen[cur] = true
		if int(cur) >= len(s.entities) {
			return false
		}
	}
	return true
}
