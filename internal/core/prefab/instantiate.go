package prefab

import (
	"gopkg.in/yaml.v3"

	"worldeditor/internal/core/mathutil"
	"worldeditor/internal/core/store"
	"worldeditor/internal/core/wire"
)

// invalidLocalGUID marks "no parent" in a prefab file's local GUID
// space (spec §4.D step 3: "read parent-GUID and, if valid, ...").
const invalidLocalGUID = ^uint64(0)

// localGUIDMap implements the prefab instantiate algorithm's "local
// load map": a file-local GUID value is just the pre-allocated
// entity's index within this one instantiate call (spec §4.D step 2,
// grounded on PrefabSystemImpl::LoadGameObjectGUIDMap).
type localGUIDMap struct{ entities []store.Entity }

func (m localGUIDMap) get(localGUID uint64) store.Entity {
	if localGUID >= uint64(len(m.entities)) {
		return store.Invalid
	}
	return m.entities[localGUID]
}

// encodePayload renders a component payload (spec §4.C's serialize
// callback output) as YAML, embedded as a length-prefixed chunk inside
// the otherwise binary-framed prefab/blob wire format. Reusing the
// directory snapshot's encoding here avoids a second hand-rolled
// typed-value visitor for the binary side.
func encodePayload(payload map[string]any) ([]byte, error) {
	if payload == nil {
		return nil, nil
	}
	return yaml.Marshal(payload)
}

func decodePayload(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var payload map[string]any
	if err := yaml.Unmarshal(raw, &payload); err != nil {
		return map[string]any{}
	}
	return payload
}

// Instantiate reads a prefab file's bytes and recreates its entity
// subtree in the store, rooted at the given world position, rotation
// and scale, returning the root entity. Implements spec §4.D's
// instantiation algorithm exactly: pre-allocate N entities, then for
// each serialized record wire its prefab tag, optional hierarchy
// parent, and components in turn.
func (s *System) Instantiate(data []byte, pos mathutil.Vec3, rot mathutil.Quat, scale float64) (store.Entity, error) {
	entities, err := s.InstantiateAll(data, pos, rot, scale)
	if err != nil {
		return store.Invalid, err
	}
	if len(entities) == 0 {
		return store.Invalid, nil
	}
	return entities[0], nil
}

// InstantiateAll is Instantiate but returns every entity it created
// (root first, then descendants in file order) rather than just the
// root, so a caller that must be able to fully undo the instantiation
// — the command journal — can destroy all of them instead of leaking
// every non-root entity (spec §8 property 1).
func (s *System) InstantiateAll(data []byte, pos mathutil.Vec3, rot mathutil.Quat, scale float64) ([]store.Entity, error) {
	r := wire.NewReader(data)
	version := Version(r.ReadU32())
	if version >= versionLast {
		s.log.Warn(KindUnsupportedVersion, "prefab file version is not supported")
		return nil, ErrUnsupportedVersion
	}
	count := int(r.ReadU32())
	if r.Err() != nil {
		return nil, r.Err()
	}

	entities := make([]store.Entity, 0, count)
	for i := 0; i < count; i++ {
		entities = append(entities, s.store.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity()))
	}
	localMap := localGUIDMap{entities: entities}

	for idx := 0; idx < count && r.Remaining() > 0; idx++ {
		e := entities[idx]
		tag := Tag(r.ReadU64())

		s.reserve(e)
		s.links[e].tag = tag
		s.link(e, tag)

		if idx == 0 {
			s.store.SetGlobalTransform(e, mathutil.Transform{Position: pos, Rotation: rot, Scale: scale})
		}

		if version > VersionFirst {
			parentLocal := r.ReadU64()
			if parentLocal != invalidLocalGUID {
				parent := localMap.get(parentLocal)
				localTransform := r.ReadTransform()
				if parent != store.Invalid {
					if err := s.store.SetParent(parent, e); err != nil {
						return nil, err
					}
					s.store.SetLocalTransform(e, localTransform)
				}
			}
		}

		if err := s.readComponents(r, e); err != nil {
			return nil, err
		}
	}
	if r.Err() != nil {
		return nil, r.Err()
	}
	return entities, nil
}

func (s *System) readComponents(r *wire.Reader, e store.Entity) error {
	for {
		hash := r.ReadU32()
		if r.Err() != nil {
			return r.Err()
		}
		if hash == 0 {
			return nil
		}
		sceneVersion := int(r.ReadU32())
		payloadBytes := r.ReadBytes()
		t, ok := s.registry.TypeForHash(hash)
		if !ok {
			// Unknown component type: its payload was still read above
			// (keeping the stream aligned), just not applied.
			continue
		}
		s.store.CreateComponent(t, e)
		if err := s.registry.Deserialize(t, e, sceneVersion, decodePayload(payloadBytes)); err != nil {
			return err
		}
	}
}
