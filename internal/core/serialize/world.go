package serialize

import (
	"worldeditor/internal/core/editorlog"
	"worldeditor/internal/core/guid"
	"worldeditor/internal/core/prefab"
	"worldeditor/internal/core/scene"
	"worldeditor/internal/core/store"
)

// World bundles the collaborators one snapshot reads from or, on load,
// rebuilds into. Loading always produces a fresh Store and GUID map —
// "the project is destroyed and re-created" (spec §4.F play-mode
// contract; §7 "on load failure the editor presents a new empty
// project") — while reusing the caller's Registry, since component type
// registrations are fixed for the process's lifetime.
type World struct {
	Store    *store.Store
	Registry *scene.Registry
	Prefabs  *prefab.System
	GUIDs    *guid.Map
	Log      *editorlog.Logger
}

// NewEmptyWorld builds a fresh, empty World bound to registry, the way
// both a failed load and a brand-new project start.
func NewEmptyWorld(registry *scene.Registry, mode guid.Mode, log *editorlog.Logger) *World {
	if log == nil {
		log = editorlog.Nop()
	}
	s := store.New(registry, log)
	registry.Bind(s)
	guids := guid.NewMap(mode)
	prefabs := prefab.New(s, registry, guids, log)
	return &World{Store: s, Registry: registry, Prefabs: prefabs, GUIDs: guids, Log: log}
}
