package command

import (
	"testing"

	"worldeditor/internal/core/editorlog"
	"worldeditor/internal/core/guid"
	"worldeditor/internal/core/prefab"
	"worldeditor/internal/core/scene"
	"worldeditor/internal/core/store"
)

const lightComponent store.ComponentType = 1

// newHarness wires a fresh store/registry/prefab-system/journal, the
// same two-phase construction used throughout the core packages' own
// tests (scene.NewRegistry before store.New, then Bind).
func newHarness(t *testing.T) (*World, *Journal) {
	t.Helper()
	reg := scene.NewRegistry()
	s := store.New(reg, nil)
	reg.Bind(s)
	prefabs := prefab.New(s, reg, guid.NewMap(guid.ModeCounter), nil)
	w := &World{Store: s, Registry: reg, Prefabs: prefabs, Log: editorlog.Nop()}
	return w, New(w)
}

func registerLight(t *testing.T, reg *scene.Registry) {
	t.Helper()
	data := map[store.Entity]map[string]any{}
	err := reg.Register(lightComponent, scene.Entry{
		Name:     "light",
		TypeHash: 0xAAAA,
		Version:  1,
		Create: func(e store.Entity) {
			data[e] = map[string]any{"radius": 1.0, "tags": []any{}}
		},
		Destroy: func(e store.Entity) { delete(data, e) },
		Serialize: func(e store.Entity) (map[string]any, error) {
			out := map[string]any{}
			for k, v := range data[e] {
				out[k] = v
			}
			return out, nil
		},
		Deserialize: func(e store.Entity, sceneVersion int, payload map[string]any) error {
			out := map[string]any{}
			for k, v := range payload {
				out[k] = v
			}
			data[e] = out
			return nil
		},
	})
	if err != nil {
		t.Fatalf("register light component: %v", err)
	}
}
