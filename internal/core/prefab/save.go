package prefab

import (
	"worldeditor/internal/core/store"
	"worldeditor/internal/core/wire"
)

func countHierarchy(s *store.Store, e store.Entity) int {
	if e == store.Invalid {
		return 0
	}
	return 1 + countHierarchy(s, s.GetFirstChild(e)) + countHierarchy(s, s.GetNextSibling(e))
}

// SerializeSubtree renders root and its full descendant subtree as a
// prefab file, assigning each entity a fresh tag built from
// resourceHash and a sequence number that increments in the same
// depth-first, sibling-ordered walk used everywhere else in the store
// (spec §4.D save_prefab, grounded on
// PrefabSystemImpl::serializePrefab/serializePrefabGameObject).
func (s *System) SerializeSubtree(root store.Entity, resourceHash uint32) []byte {
	w := wire.NewWriter()
	w.WriteU32(uint32(versionLast - 1))
	count := 1 + countHierarchy(s.store, s.store.GetFirstChild(root))
	w.WriteU32(uint32(count))

	seq := uint32(0)
	localIndex := make(map[store.Entity]uint32)
	s.writeEntity(w, resourceHash, &seq, localIndex, root, true)
	return w.Bytes()
}

// writeEntity assigns each entity a local index equal to its position
// in this pre-order walk, the same order the reader re-creates
// entities in (Instantiate's localGUIDMap), so a parent reference can
// be written as that index rather than a handle meaningless outside
// this one file.
func (s *System) writeEntity(w *wire.Writer, resourceHash uint32, seq *uint32, localIndex map[store.Entity]uint32, e store.Entity, isRoot bool) {
	if e == store.Invalid {
		return
	}
	myIndex := *seq
	localIndex[e] = myIndex
	tag := MakeTag(resourceHash, myIndex)
	*seq++
	w.WriteU64(uint64(tag))

	var parent store.Entity = store.Invalid
	if !isRoot {
		parent = s.store.GetParent(e)
	}
	if parent == store.Invalid {
		w.WriteU64(invalidLocalGUID)
	} else {
		w.WriteU64(uint64(localIndex[parent]))
		w.WriteTransform(s.store.LocalTransform(e))
	}

	for t, ok := s.store.FirstComponent(e); ok; t, ok = s.store.NextComponent(e, t) {
		entry, found := s.registry.Entry(t)
		if !found {
			continue
		}
		payload, err := s.registry.Serialize(t, e)
		if err != nil {
			continue
		}
		encoded, err := encodePayload(payload)
		if err != nil {
			continue
		}
		w.WriteU32(entry.TypeHash)
		w.WriteU32(uint32(entry.Version))
		w.WriteBytes(encoded)
	}
	w.WriteU32(0) // component-list sentinel

	s.writeEntity(w, resourceHash, seq, localIndex, s.store.GetFirstChild(e), false)
	if !isRoot {
		s.writeEntity(w, resourceHash, seq, localIndex, s.store.GetNextSibling(e), false)
	}
}
