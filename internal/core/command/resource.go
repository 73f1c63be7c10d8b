package command

import "worldeditor/internal/core/store"

// ResourceRef is an external resource (model, texture, prefab template)
// that a command's undo payload refers to. The resource manager itself
// is out of scope (spec §1); this is only the contract a command uses
// to keep a referenced resource alive for as long as its payload might
// still be replayed (spec §5: "Resources referenced by command undo
// payloads ... are pinned by the command for its lifetime").
type ResourceRef interface {
	Acquire()
	Release()
}

// ResourceResolver looks up the ResourceRef (if any) that a component's
// serialized payload pins. A World with no resource manager leaves
// Resources nil, and commands skip pinning entirely.
type ResourceResolver interface {
	ResolveResource(t store.ComponentType, payload map[string]any) ResourceRef
}

// Releasable is implemented by commands that may be holding pinned
// resources. The journal calls ReleaseResources when such a command is
// dropped from the stack outright (its redo tail is overwritten) rather
// than stepped back over with Undo, since Undo alone doesn't mean the
// payload has become unreachable.
type Releasable interface {
	ReleaseResources()
}

func acquireResource(w *World, t store.ComponentType, payload map[string]any) ResourceRef {
	if w.Resources == nil {
		return nil
	}
	ref := w.Resources.ResolveResource(t, payload)
	if ref != nil {
		ref.Acquire()
	}
	return ref
}

func releaseResource(ref ResourceRef) {
	if ref != nil {
		ref.Release()
	}
}
