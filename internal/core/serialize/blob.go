package serialize

import (
	"hash/crc32"

	"worldeditor/internal/core/editorlog"
	"worldeditor/internal/core/guid"
	"worldeditor/internal/core/prefab"
	"worldeditor/internal/core/scene"
	"worldeditor/internal/core/store"
	"worldeditor/internal/core/wire"
)

// blobMagic, blobHeaderSize and blobVersion pin the exact layout spec
// §4.G.1/§6 describe: a 16-byte header of four u32 fields, magic
// 0xffffFFFF, followed by a CRC32(IEEE)-checked payload.
const (
	blobMagic      uint32 = 0xffffFFFF
	blobHeaderSize        = 16
	blobVersion    uint32 = 1
	// engineHash is a stable build-identity tag; snapshots from a build
	// with a different value are still readable (only magic/hash/version
	// gate loading) but the field is carried through for parity with the
	// original format.
	engineHash uint32 = 0x57454431 // "WED1"
)

// SaveBlob renders the full project as a single binary stream (spec
// §4.G.1): every live entity (name, transform, parent GUID, prefab tag,
// scene-registered component payloads in registration order), then the
// prefab-system payload last, wrapped in a CRC32-checked header.
func SaveBlob(w *World) []byte {
	body := wire.NewWriter()
	writeEntities(body, w)
	writePrefabSystem(body, w)

	payload := body.Bytes()
	hash := crc32.ChecksumIEEE(payload)

	head := wire.NewWriter()
	head.WriteU32(blobMagic)
	head.WriteU32(blobVersion)
	head.WriteU32(hash)
	head.WriteU32(engineHash)

	out := make([]byte, 0, blobHeaderSize+len(payload))
	out = append(out, head.Bytes()...)
	out = append(out, payload...)
	return out
}

func writeEntities(w *wire.Writer, world *World) {
	all := world.Store.AllEntities()
	w.WriteU32(uint32(len(all)))
	for _, e := range all {
		w.WriteU64(uint64(world.GUIDs.GUID(guid.Entity(e))))
		w.WriteString(world.Store.Name(e))
		w.WriteTransform(world.Store.GlobalTransform(e))

		parentGUID := guid.Invalid
		if parent := world.Store.GetParent(e); parent != store.Invalid {
			parentGUID = world.GUIDs.GUID(guid.Entity(parent))
		}
		w.WriteU64(uint64(parentGUID))
		w.WriteU64(uint64(world.Prefabs.GetPrefab(e)))

		for _, t := range world.Registry.OrderedTypes() {
			if !world.Store.HasComponent(e, t) {
				continue
			}
			entry, _ := world.Registry.Entry(t)
			payload, _ := world.Registry.Serialize(t, e)
			blob, _ := encodeComponentPayload(payload)
			w.WriteU32(entry.TypeHash)
			w.WriteU32(uint32(entry.Version))
			w.WriteBytes(blob)
		}
		w.WriteU32(0) // sentinel: no more components for this entity
	}
}

func writePrefabSystem(w *wire.Writer, world *World) {
	resources := world.Prefabs.Resources()
	w.WriteU32(uint32(len(resources)))
	for hash, data := range resources {
		w.WriteU32(hash)
		w.WriteBytes(data)
	}

	tags := world.Prefabs.Tags()
	w.WriteU32(uint32(len(tags)))
	for e, tag := range tags {
		w.WriteU64(uint64(world.GUIDs.GUID(guid.Entity(e))))
		w.WriteU64(uint64(tag))
	}
}

// LoadBlob parses a blob snapshot and builds a fresh World from it.
// Validates the header magic and the CRC32 payload hash before touching
// anything; on either mismatch it returns ErrCorruptFile and the caller
// is expected to fall back to a new empty project (spec §7).
func LoadBlob(data []byte, registry *scene.Registry, mode guid.Mode, log *editorlog.Logger) (*World, error) {
	if len(data) < blobHeaderSize {
		return nil, ErrCorruptFile
	}
	head := wire.NewReader(data[:blobHeaderSize])
	magic := head.ReadU32()
	version := head.ReadU32()
	wantHash := head.ReadU32()
	_ = head.ReadU32() // engine hash: informational, not a load gate
	if magic != blobMagic {
		return nil, ErrCorruptFile
	}
	if version > blobVersion {
		return nil, ErrUnsupportedVersion
	}

	payload := data[blobHeaderSize:]
	if crc32.ChecksumIEEE(payload) != wantHash {
		return nil, ErrCorruptFile
	}

	world := NewEmptyWorld(registry, mode, log)
	r := wire.NewReader(payload)
	guidToEntity, err := readEntities(r, world)
	if err != nil {
		return nil, err
	}
	if err := readPrefabSystem(r, world, guidToEntity); err != nil {
		return nil, err
	}
	if r.Err() != nil {
		return nil, r.Err()
	}
	return world, nil
}

type entityRecordIn struct {
	entity     store.Entity
	parentGUID guid.GUID
	tag        prefab.Tag
}

func readEntities(r *wire.Reader, world *World) (map[guid.GUID]store.Entity, error) {
	count := int(r.ReadU32())
	guidToEntity := make(map[guid.GUID]store.Entity, count)
	records := make([]entityRecordIn, 0, count)

	for i := 0; i < count; i++ {
		g := guid.GUID(r.ReadU64())
		name := r.ReadString()
		transform := r.ReadTransform()
		parentGUID := guid.GUID(r.ReadU64())
		tag := prefab.Tag(r.ReadU64())

		e := world.Store.CreateEntity(transform.Position, transform.Rotation)
		world.Store.SetScale(e, transform.Scale)
		if name != "" {
			world.Store.SetName(e, name)
		}
		world.GUIDs.Assign(e, g)
		guidToEntity[g] = e
		records = append(records, entityRecordIn{entity: e, parentGUID: parentGUID, tag: tag})

		if err := readComponentRecords(r, world, e); err != nil {
			return nil, err
		}
	}

	for _, rec := range records {
		if rec.parentGUID != guid.Invalid {
			if parent, ok := guidToEntity[rec.parentGUID]; ok {
				global := world.Store.GlobalTransform(rec.entity)
				if err := world.Store.SetParent(parent, rec.entity); err == nil {
					world.Store.SetTransformKeepChildren(rec.entity, global)
				}
			}
		}
		if rec.tag != prefab.NoTag {
			world.Prefabs.SetPrefab(rec.entity, rec.tag)
		}
	}
	return guidToEntity, nil
}

func readComponentRecords(r *wire.Reader, world *World, e store.Entity) error {
	for {
		hash := r.ReadU32()
		if r.Err() != nil {
			return r.Err()
		}
		if hash == 0 {
			return nil
		}
		sceneVersion := int(r.ReadU32())
		raw := r.ReadBytes()
		t, ok := world.Registry.TypeForHash(hash)
		if !ok {
			continue
		}
		world.Store.CreateComponent(t, e)
		if err := world.Registry.Deserialize(t, e, sceneVersion, decodeComponentPayload(raw)); err != nil {
			return err
		}
	}
}

func readPrefabSystem(r *wire.Reader, world *World, guidToEntity map[guid.GUID]store.Entity) error {
	resourceCount := int(r.ReadU32())
	for i := 0; i < resourceCount; i++ {
		hash := r.ReadU32()
		data := r.ReadBytes()
		world.Prefabs.LoadResource(hash, data)
	}

	tagCount := int(r.ReadU32())
	for i := 0; i < tagCount; i++ {
		g := guid.GUID(r.ReadU64())
		tag := prefab.Tag(r.ReadU64())
		if e, ok := guidToEntity[g]; ok {
			world.Prefabs.SetPrefab(e, tag)
		}
	}
	return r.Err()
}
