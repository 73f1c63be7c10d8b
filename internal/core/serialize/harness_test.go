package serialize

import (
	"testing"

	"worldeditor/internal/core/guid"
	"worldeditor/internal/core/scene"
	"worldeditor/internal/core/store"
)

const lightComponent store.ComponentType = 1

// newHarness builds an empty World the same way a brand-new project or
// a failed load would, against a registry with one "light" component
// type registered so round-trip tests have a non-trivial payload.
func newHarness(t *testing.T) (*World, *scene.Registry) {
	t.Helper()
	reg := scene.NewRegistry()
	data := map[store.Entity]map[string]any{}
	if err := reg.Register(lightComponent, scene.Entry{
		Name:     "light",
		TypeHash: 0xAAAA,
		Version:  1,
		Create: func(e store.Entity) {
			data[e] = map[string]any{"radius": 1.0}
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
	}); err != nil {
		t.Fatalf("register light component: %v", err)
	}
	w := NewEmptyWorld(reg, guid.ModeCounter, nil)
	return w, reg
}
