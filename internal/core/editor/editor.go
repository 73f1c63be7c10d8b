// Package editor implements the façade that turns human-scale editor
// operations — click, drag, "enter play", "save this subtree as a
// prefab" — into commands submitted through the journal, and owns the
// state a human operator cares about that no command by itself does:
// the selection set, edit-camera pose, viewport input state and the
// play-mode toggle (spec §4.F).
package editor

import (
	"fmt"
	"os"

	"worldeditor/internal/core/command"
	"worldeditor/internal/core/editorlog"
	"worldeditor/internal/core/guid"
	"worldeditor/internal/core/mathutil"
	"worldeditor/internal/core/prefab"
	"worldeditor/internal/core/scene"
	"worldeditor/internal/core/serialize"
	"worldeditor/internal/core/store"
)

// Camera is the edit-mode viewpoint, independent of any in-scene
// camera entity.
type Camera struct {
	Position mathutil.Vec3
	Rotation mathutil.Quat
	FOV      float64
}

// DefaultCamera places the edit camera a few units back along -Z,
// looking at the origin, with a conventional 60-degree vertical FOV.
func DefaultCamera() Camera {
	return Camera{Position: mathutil.Vec3{Z: -10}, Rotation: mathutil.QIdentity(), FOV: 60}
}

// GizmoMode selects which transform handle the viewport gizmo shows.
type GizmoMode int

const (
	GizmoTranslate GizmoMode = iota
	GizmoRotate
	GizmoScale
)

// ScreenPoint is a viewport-space pixel coordinate.
type ScreenPoint struct{ X, Y float64 }

// Viewport tracks the transient input state a mouse/keyboard-driven
// viewport accumulates between frames: which mouse buttons are down,
// whether snapping is on, whether the camera is orbiting, which gizmo
// is active, and the in-progress rectangle-select drag (if any).
type Viewport struct {
	MouseButtonsDown [3]bool
	SnapEnabled      bool
	SnapIncrement    float64
	Orbiting         bool
	Gizmo            GizmoMode

	rectSelecting bool
	rectStart     ScreenPoint
	rectEnd       ScreenPoint
}

// BeginRectSelect starts a rectangle-select drag at a viewport point.
func (v *Viewport) BeginRectSelect(at ScreenPoint) {
	v.rectSelecting = true
	v.rectStart = at
	v.rectEnd = at
}

// DragRectSelect updates the in-progress rectangle's far corner.
func (v *Viewport) DragRectSelect(at ScreenPoint) { v.rectEnd = at }

// Ray is a world-space ray cast from the edit camera through a viewport
// pixel, used for ray-selection (spec §4.F).
type Ray struct {
	Origin    mathutil.Vec3
	Direction mathutil.Vec3
}

// RenderCollaborator is the out-of-scope renderer's contract (spec §1:
// "only their contracts are specified"): the façade asks it for a
// world ray and, on a rectangle drag, for a frustum multi-select.
type RenderCollaborator interface {
	ViewportRay(camera Camera, at ScreenPoint) Ray
	FrustumSelect(camera Camera, topLeft, bottomRight ScreenPoint) []store.Entity
}

// RayTester is implemented by each of the three ray-selection sources
// (spec §4.F: "editor-icon billboards, renderable meshes via the
// scene's raycast, and terrain"). A miss returns ok=false.
type RayTester interface {
	Raycast(r Ray) (hit store.Entity, distance float64, ok bool)
}

// Editor is the façade: one per open project.
type Editor struct {
	world   *command.World
	guids   *guid.Map
	mode    guid.Mode
	Journal *command.Journal
	Log     *editorlog.Logger

	Selection []store.Entity
	Camera    Camera
	Viewport  Viewport

	billboards RayTester
	sceneRay   RayTester
	terrain    RayTester
	render     RenderCollaborator

	playing       bool
	playScratch   []byte
	playCursor    int
	playSelection []store.Entity
	playCamera    Camera
}

// New builds a façade bound to a fresh, empty project (spec §4.F, §9
// "a new project" path). registry must already have every component
// type registered; registrations are process-lifetime, not per-project
// (package serialize's World doc comment explains why).
func New(registry *scene.Registry, mode guid.Mode, log *editorlog.Logger) *Editor {
	if log == nil {
		log = editorlog.Nop()
	}
	w := serialize.NewEmptyWorld(registry, mode, log)
	cw := &command.World{Store: w.Store, Registry: w.Registry, Prefabs: w.Prefabs, Log: log}
	return &Editor{
		world:   cw,
		guids:   w.GUIDs,
		mode:    mode,
		Journal: command.New(cw),
		Log:     log,
		Camera:  DefaultCamera(),
	}
}

// FromWorld adopts an already-loaded serialize.World (the result of
// LoadBlob/LoadDirectory) as the façade's live project, the way the
// entry point does after a successful load.
func FromWorld(w *serialize.World) *Editor {
	log := w.Log
	if log == nil {
		log = editorlog.Nop()
	}
	cw := &command.World{Store: w.Store, Registry: w.Registry, Prefabs: w.Prefabs, Log: log}
	return &Editor{
		world:   cw,
		guids:   w.GUIDs,
		mode:    w.GUIDs.Mode(),
		Journal: command.New(cw),
		Log:     log,
		Camera:  DefaultCamera(),
	}
}

// SetRayTesters wires the three ray-selection sources (spec §4.F); any
// of them may be nil (treated as "never hits").
func (e *Editor) SetRayTesters(billboards, sceneRay, terrain RayTester, render RenderCollaborator) {
	e.billboards, e.sceneRay, e.terrain, e.render = billboards, sceneRay, terrain, render
}

func (e *Editor) serializeWorld() *serialize.World {
	return &serialize.World{Store: e.world.Store, Registry: e.world.Registry, Prefabs: e.world.Prefabs, GUIDs: e.guids, Log: e.Log}
}

// IsPlaying reports whether the project is currently in play mode.
func (e *Editor) IsPlaying() bool { return e.playing }

// EntityCount reports the live entity count of the current project.
func (e *Editor) EntityCount() int { return e.world.Store.EntityCount() }

// EnterPlayMode snapshots the current project and selection so they
// can be restored bit-for-bit on ExitPlayMode (spec §4.F, end-to-end
// scenario 5). Commands submitted after this call are play-mode
// commands: ExitPlayMode discards them unconditionally.
func (e *Editor) EnterPlayMode() {
	if e.playing {
		return
	}
	e.playScratch = serialize.SaveBlob(e.serializeWorld())
	e.playCursor = e.Journal.Cursor()
	e.playSelection = append([]store.Entity(nil), e.Selection...)
	e.playCamera = e.Camera
	e.playing = true
}

// ExitPlayMode discards every command recorded during play, rebuilds
// the project from the scratch snapshot taken on entry, and restores
// selection and camera. The project's Store/Prefabs/GUIDs are replaced
// in place on the shared World/Editor so already-constructed command
// objects (and their captured entity handles) keep working against the
// live collaborators.
func (e *Editor) ExitPlayMode() error {
	if !e.playing {
		return nil
	}
	e.Journal.RewindAndDiscard(e.playCursor)

	loaded, err := serialize.LoadBlob(e.playScratch, e.world.Registry, e.mode, e.Log)
	if err != nil {
		return fmt.Errorf("editor: restoring play-mode scratch snapshot: %w", err)
	}
	e.world.Store = loaded.Store
	e.world.Prefabs = loaded.Prefabs
	e.guids = loaded.GUIDs

	e.Selection = e.playSelection
	e.Camera = e.playCamera
	e.playScratch = nil
	e.playSelection = nil
	e.playing = false
	return nil
}

// SelectAtPoint performs the three-source ray-selection contract (spec
// §4.F): it queries billboards, the scene's own raycast and terrain in
// that priority order, keeping the nearest hit across all three, and
// replaces the selection with that single entity. A nearer terrain hit
// than any entity hit clears the selection (terrain itself is never
// selectable).
func (e *Editor) SelectAtPoint(at ScreenPoint) store.Entity {
	if e.render == nil {
		return store.Invalid
	}
	ray := e.render.ViewportRay(e.Camera, at)

	var (
		best     store.Entity = store.Invalid
		bestDist float64
		found    bool
	)
	consider := func(t RayTester) {
		if t == nil {
			return
		}
		if hit, dist, ok := t.Raycast(ray); ok && (!found || dist < bestDist) {
			best, bestDist, found = hit, dist, true
		}
	}
	consider(e.billboards)
	consider(e.sceneRay)

	if e.terrain != nil {
		if _, dist, ok := e.terrain.Raycast(ray); ok && found && dist < bestDist {
			best, found = store.Invalid, false
		} else if ok && !found {
			best = store.Invalid
		}
	}

	if best == store.Invalid {
		e.Selection = nil
	} else {
		e.Selection = []store.Entity{best}
	}
	return best
}

// EndRectSelect finishes a rectangle-select drag: if no rectangle was
// actually dragged (start == end), it falls back to a point
// selection at that location; otherwise it asks the render
// collaborator for a frustum multi-select (spec §4.F).
func (e *Editor) EndRectSelect() {
	v := &e.Viewport
	if !v.rectSelecting {
		return
	}
	v.rectSelecting = false
	if v.rectStart == v.rectEnd {
		e.SelectAtPoint(v.rectStart)
		return
	}
	if e.render == nil {
		return
	}
	e.Selection = e.render.FrustumSelect(e.Camera, v.rectStart, v.rectEnd)
}

// SavePrefab writes root's subtree to path as a prefab file, then — if
// root was not already itself a prefab instance — replaces it in the
// project with a fresh instantiation of the file just written,
// submitted as one undoable group (spec §4.E "save_prefab", §9 open
// question on rollback). The file write happens before any journal
// mutation, so a write failure leaves the project untouched: there is
// nothing to roll back.
func (e *Editor) SavePrefab(root store.Entity, path string, resourceHash uint32) error {
	blob := e.world.Prefabs.SerializeSubtree(root, resourceHash)
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return fmt.Errorf("editor: writing prefab file: %w", err)
	}
	e.world.Prefabs.LoadResource(resourceHash, blob)

	if e.world.Prefabs.GetPrefab(root) != prefab.NoTag {
		return nil
	}

	transform := e.world.Store.GlobalTransform(root)
	e.Journal.BeginGroup("save_prefab")
	e.Journal.Execute(command.NewDestroyEntitiesCommand(e.world, []store.Entity{root}))
	e.Journal.Execute(command.NewInstantiatePrefabCommand(e.world, blob, transform.Position, transform.Rotation, transform.Scale))
	e.Journal.EndGroup("save_prefab")
	return nil
}
