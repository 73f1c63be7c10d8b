// Package command implements the undo/redo journal: every mutation the
// editor makes to the project goes through a Command, recorded on an
// ordered stack with a cursor, so it can be undone, redone, merged
// with its predecessor, or replayed from a text log (spec §4.E).
package command

import (
	"worldeditor/internal/core/editorlog"
	"worldeditor/internal/core/prefab"
	"worldeditor/internal/core/scene"
	"worldeditor/internal/core/store"
)

// World is the set of collaborators a command needs to act on. Every
// concrete command is constructed with a *World rather than reaching
// for globals, mirroring how the original's IEditorCommand subclasses
// hold a WorldEditor& reference.
type World struct {
	Store    *store.Store
	Registry *scene.Registry
	Prefabs  *prefab.System
	Log      *editorlog.Logger
	// Resources resolves pinned resources for commands that hold
	// component payloads referencing them (spec §5). May be nil.
	Resources ResourceResolver
}

// Command is a tagged, undoable unit of work (spec §4.E).
type Command interface {
	// Execute applies the command. Returning false means "no-op": the
	// journal discards the command instead of recording it.
	Execute() bool
	// Undo reverts the command's effect, returning the project to the
	// bitwise-equal state it was in before Execute ran.
	Undo()
	// TypeID is a stable identifier used for merge matching and replay.
	TypeID() string
	// Merge is asked of the new command, passed the command currently
	// on top of the stack. Returning true means the new command has
	// absorbed into previous and should be discarded (previous is then
	// re-executed with its updated state).
	Merge(previous Command) bool
	// Payload captures the command's undo-relevant state as named
	// fields, for the textual command log (spec §6 "Command log").
	Payload() map[string]any
	// LoadPayload restores a freshly-created command's fields from a
	// payload produced by Payload, used by replay.
	LoadPayload(payload map[string]any)
}

// propagationTargets expands a single entity into the full set of
// prefab-linked siblings a propagating command must also touch (spec
// §4.D). Non-propagating commands do not call it and act only on the
// literal entities they were given.
func propagationTargets(w *World, entities []store.Entity) []store.Entity {
	seen := make(map[store.Entity]bool)
	var out []store.Entity
	for _, e := range entities {
		for _, inst := range w.Prefabs.Instances(e) {
			if !seen[inst] {
				seen[inst] = true
				out = append(out, inst)
			}
		}
	}
	return out
}
