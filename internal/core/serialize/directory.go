package serialize

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"worldeditor/internal/core/editorlog"
	"worldeditor/internal/core/guid"
	"worldeditor/internal/core/prefab"
	"worldeditor/internal/core/scene"
	"worldeditor/internal/core/store"
	"worldeditor/internal/core/wire"
)

// Path conventions for a project directory (spec §6).
const (
	scenesDir     = "scenes"
	systemsDir    = "systems"
	templatesFile = "templates.sys"
	entExt        = ".ent"
	scnExt        = ".scn"
)

func entPath(projectDir string, g guid.GUID) string {
	return filepath.Join(projectDir, strconv.FormatUint(uint64(g), 10)+entExt)
}

func scnPath(projectDir, sceneName string) string {
	return filepath.Join(projectDir, scenesDir, sceneName+scnExt)
}

func sysPath(projectDir string) string {
	return filepath.Join(projectDir, systemsDir, templatesFile)
}

// SaveDirectory persists world as a project directory (spec §4.G.2): a
// per-scene .scn file, one .ent file per non-prefab-linked entity that
// has a GUID in w.GUIDs (entities without one are not written), and
// a systems/templates.sys file for prefab-system state. Save is a full
// rewrite followed by a garbage-collection pass that deletes any .ent
// file whose GUID is no longer live.
func SaveDirectory(projectDir string, w *World) error {
	if err := os.MkdirAll(filepath.Join(projectDir, scenesDir), 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(projectDir, systemsDir), 0o755); err != nil {
		return err
	}

	if err := saveScenes(projectDir, w); err != nil {
		return err
	}
	written, err := saveEntities(projectDir, w)
	if err != nil {
		return err
	}
	if err := saveSystems(projectDir, w); err != nil {
		return err
	}
	return gcOrphanedEntityFiles(projectDir, written)
}

func saveScenes(projectDir string, w *World) error {
	for _, t := range w.Registry.OrderedTypes() {
		entry, _ := w.Registry.Entry(t)
		entries := wire.NewWriter()
		count := uint32(0)
		for _, e := range w.Store.AllEntities() {
			if !w.Store.HasComponent(e, t) {
				continue
			}
			payload, _ := w.Registry.Serialize(t, e)
			blob, _ := encodeComponentPayload(payload)
			entries.WriteU64(uint64(w.GUIDs.GUID(guid.Entity(e))))
			entries.WriteBytes(blob)
			count++
		}

		header := wire.NewWriter()
		header.WriteU32(uint32(entry.Version))
		header.WriteU32(count)
		final := append(append([]byte{}, header.Bytes()...), entries.Bytes()...)
		if err := os.WriteFile(scnPath(projectDir, entry.Name), final, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func saveEntities(projectDir string, w *World) (map[guid.GUID]bool, error) {
	written := make(map[guid.GUID]bool)
	for _, e := range w.Store.AllEntities() {
		if w.Prefabs.GetPrefab(e) != prefab.NoTag {
			continue
		}
		g := w.GUIDs.GUID(guid.Entity(e))
		if g == guid.Invalid {
			continue
		}

		body := wire.NewWriter()
		body.WriteString(w.Store.Name(e))
		body.WriteTransform(w.Store.GlobalTransform(e))

		parentGUID := guid.Invalid
		if parent := w.Store.GetParent(e); parent != store.Invalid {
			parentGUID = w.GUIDs.GUID(guid.Entity(parent))
		}
		body.WriteU64(uint64(parentGUID))

		for _, t := range w.Registry.OrderedTypes() {
			if !w.Store.HasComponent(e, t) {
				continue
			}
			entry, _ := w.Registry.Entry(t)
			payload, _ := w.Registry.Serialize(t, e)
			blob, _ := encodeComponentPayload(payload)
			body.WriteString(entry.Name)
			body.WriteU32(entry.TypeHash)
			body.WriteU32(uint32(entry.Version))
			body.WriteBytes(blob)
		}
		body.WriteU32(0)

		if err := os.WriteFile(entPath(projectDir, g), body.Bytes(), 0o644); err != nil {
			return nil, err
		}
		written[g] = true
	}
	return written, nil
}

func saveSystems(projectDir string, w *World) error {
	body := wire.NewWriter()
	resources := w.Prefabs.Resources()
	body.WriteU32(uint32(len(resources)))
	for hash, data := range resources {
		body.WriteU32(hash)
		body.WriteBytes(data)
	}
	tags := w.Prefabs.Tags()
	body.WriteU32(uint32(len(tags)))
	for e, tag := range tags {
		body.WriteU64(uint64(w.GUIDs.GUID(guid.Entity(e))))
		body.WriteU64(uint64(tag))
	}
	return os.WriteFile(sysPath(projectDir), body.Bytes(), 0o644)
}

// gcOrphanedEntityFiles deletes any .ent file under projectDir whose
// GUID (parsed from its filename) is not in written — the save-time
// garbage collection pass spec §4.G.2 calls for.
func gcOrphanedEntityFiles(projectDir string, written map[guid.GUID]bool) error {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), entExt) {
			continue
		}
		raw := strings.TrimSuffix(entry.Name(), entExt)
		g, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			continue
		}
		if !written[guid.GUID(g)] {
			_ = os.Remove(filepath.Join(projectDir, entry.Name()))
		}
	}
	return nil
}

// LoadDirectory rebuilds a World from a project directory. Scenes are
// matched by file name against registry's registered component names;
// a .scn file with no matching registration is an UnknownScene error
// and the whole load aborts (spec §7).
func LoadDirectory(projectDir string, registry *scene.Registry, mode guid.Mode, log *editorlog.Logger) (*World, error) {
	w := NewEmptyWorld(registry, mode, log)

	guidToEntity, err := loadEntities(projectDir, w)
	if err != nil {
		return nil, err
	}
	if err := loadScenes(projectDir, w, guidToEntity); err != nil {
		return nil, err
	}
	if err := loadSystems(projectDir, w, guidToEntity); err != nil {
		return nil, err
	}
	return w, nil
}

func loadEntities(projectDir string, w *World) (map[guid.GUID]store.Entity, error) {
	guidToEntity := make(map[guid.GUID]store.Entity)
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		if os.IsNotExist(err) {
			return guidToEntity, nil
		}
		return nil, err
	}

	type pending struct {
		entity     store.Entity
		parentGUID guid.GUID
	}
	var parents []pending

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), entExt) {
			continue
		}
		raw := strings.TrimSuffix(entry.Name(), entExt)
		gVal, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			continue
		}
		g := guid.GUID(gVal)

		data, err := os.ReadFile(filepath.Join(projectDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		r := wire.NewReader(data)
		name := r.ReadString()
		transform := r.ReadTransform()
		parentGUID := guid.GUID(r.ReadU64())

		e := w.Store.CreateEntity(transform.Position, transform.Rotation)
		w.Store.SetScale(e, transform.Scale)
		if name != "" {
			w.Store.SetName(e, name)
		}
		w.GUIDs.Assign(e, g)
		guidToEntity[g] = e
		parents = append(parents, pending{entity: e, parentGUID: parentGUID})

		for {
			_ = r.ReadString() // component name, informational only
			hash := r.ReadU32()
			if r.Err() != nil {
				return nil, r.Err()
			}
			if hash == 0 {
				break
			}
			sceneVersion := int(r.ReadU32())
			blob := r.ReadBytes()
			t, ok := w.Registry.TypeForHash(hash)
			if !ok {
				continue
			}
			w.Store.CreateComponent(t, e)
			if err := w.Registry.Deserialize(t, e, sceneVersion, decodeComponentPayload(blob)); err != nil {
				return nil, err
			}
		}
		if r.Err() != nil {
			return nil, r.Err()
		}
	}

	for _, p := range parents {
		if p.parentGUID == guid.Invalid {
			continue
		}
		parent, ok := guidToEntity[p.parentGUID]
		if !ok {
			continue
		}
		global := w.Store.GlobalTransform(p.entity)
		if err := w.Store.SetParent(parent, p.entity); err == nil {
			w.Store.SetTransformKeepChildren(p.entity, global)
		}
	}
	return guidToEntity, nil
}

func loadScenes(projectDir string, w *World, guidToEntity map[guid.GUID]store.Entity) error {
	dir := filepath.Join(projectDir, scenesDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), scnExt) {
			continue
		}
		sceneName := strings.TrimSuffix(entry.Name(), scnExt)

		found := false
		var t store.ComponentType
		for _, candidate := range w.Registry.OrderedTypes() {
			e, _ := w.Registry.Entry(candidate)
			if e.Name == sceneName {
				t, found = candidate, true
				break
			}
		}
		if !found {
			return &UnknownSceneError{Name: sceneName}
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		r := wire.NewReader(data)
		sceneVersion := int(r.ReadU32())
		count := r.ReadU32()
		for i := uint32(0); i < count; i++ {
			g := guid.GUID(r.ReadU64())
			blob := r.ReadBytes()
			if r.Err() != nil {
				return r.Err()
			}
			e, ok := guidToEntity[g]
			if !ok {
				continue
			}
			if !w.Store.HasComponent(e, t) {
				w.Store.CreateComponent(t, e)
			}
			if err := w.Registry.Deserialize(t, e, sceneVersion, decodeComponentPayload(blob)); err != nil {
				return err
			}
		}
	}
	return nil
}

func loadSystems(projectDir string, w *World, guidToEntity map[guid.GUID]store.Entity) error {
	data, err := os.ReadFile(sysPath(projectDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	r := wire.NewReader(data)
	resourceCount := r.ReadU32()
	for i := uint32(0); i < resourceCount; i++ {
		hash := r.ReadU32()
		blob := r.ReadBytes()
		w.Prefabs.LoadResource(hash, blob)
	}
	tagCount := r.ReadU32()
	for i := uint32(0); i < tagCount; i++ {
		g := guid.GUID(r.ReadU64())
		tag := prefab.Tag(r.ReadU64())
		if e, ok := guidToEntity[g]; ok {
			w.Prefabs.SetPrefab(e, tag)
		}
	}
	return r.Err()
}
