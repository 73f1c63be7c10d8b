package editor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"worldeditor/internal/core/command"
	"worldeditor/internal/core/guid"
	"worldeditor/internal/core/mathutil"
	"worldeditor/internal/core/prefab"
	"worldeditor/internal/core/scene"
	"worldeditor/internal/core/store"
)

func newTestEditor(t *testing.T) *Editor {
	t.Helper()
	reg := scene.NewRegistry()
	return New(reg, guid.ModeCounter, nil)
}

type fakeRender struct {
	rectResult []store.Entity
}

func (f *fakeRender) ViewportRay(Camera, ScreenPoint) Ray { return Ray{} }
func (f *fakeRender) FrustumSelect(Camera, ScreenPoint, ScreenPoint) []store.Entity {
	return f.rectResult
}

type fakeHit struct {
	entity   store.Entity
	distance float64
	ok       bool
}

func (f fakeHit) Raycast(Ray) (store.Entity, float64, bool) { return f.entity, f.distance, f.ok }

func Test_Editor_SelectAtPoint_PicksNearestAcrossSources(t *testing.T) {
	// Arrange
	e := newTestEditor(t)
	a := e.world.Store.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	b := e.world.Store.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	e.SetRayTesters(
		fakeHit{entity: a, distance: 5, ok: true},
		fakeHit{entity: b, distance: 2, ok: true},
		nil,
		&fakeRender{},
	)

	// Act
	hit := e.SelectAtPoint(ScreenPoint{X: 1, Y: 1})

	// Assert
	assert.Equal(t, b, hit)
	assert.Equal(t, []store.Entity{b}, e.Selection)
}

func Test_Editor_SelectAtPoint_NearerTerrainClearsSelection(t *testing.T) {
	// Arrange
	e := newTestEditor(t)
	a := e.world.Store.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	e.SetRayTesters(
		fakeHit{entity: a, distance: 10, ok: true},
		nil,
		fakeHit{distance: 1, ok: true},
		&fakeRender{},
	)

	// Act
	hit := e.SelectAtPoint(ScreenPoint{})

	// Assert
	assert.Equal(t, store.Invalid, hit)
	assert.Nil(t, e.Selection)
}

func Test_Editor_EndRectSelect_FallsBackToPointSelectionWithoutDrag(t *testing.T) {
	// Arrange
	e := newTestEditor(t)
	a := e.world.Store.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	e.SetRayTesters(fakeHit{entity: a, distance: 1, ok: true}, nil, nil, &fakeRender{})

	// Act
	e.Viewport.BeginRectSelect(ScreenPoint{X: 3, Y: 3})
	e.EndRectSelect()

	// Assert
	assert.Equal(t, []store.Entity{a}, e.Selection)
}

func Test_Editor_EndRectSelect_UsesFrustumSelectWhenDragged(t *testing.T) {
	// Arrange
	e := newTestEditor(t)
	a := e.world.Store.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	b := e.world.Store.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	e.SetRayTesters(nil, nil, nil, &fakeRender{rectResult: []store.Entity{a, b}})

	// Act
	e.Viewport.BeginRectSelect(ScreenPoint{X: 0, Y: 0})
	e.Viewport.DragRectSelect(ScreenPoint{X: 50, Y: 50})
	e.EndRectSelect()

	// Assert
	assert.ElementsMatch(t, []store.Entity{a, b}, e.Selection)
}

func Test_Editor_EnterExitPlayMode_DiscardsPlayCommandsAndRestoresSelectionAndCamera(t *testing.T) {
	// Arrange
	e := newTestEditor(t)
	existing := e.world.Store.CreateEntity(mathutil.Vec3{X: 1}, mathutil.QIdentity())
	e.Selection = []store.Entity{existing}
	e.Camera.Position = mathutil.Vec3{X: 42}
	cursorBefore := e.Journal.Cursor()

	// Act
	e.EnterPlayMode()
	e.Selection = nil
	e.Camera.Position = mathutil.Vec3{X: 999}
	e.Journal.Execute(command.NewAddEntityCommand(e.world, mathutil.Vec3{X: 7}, mathutil.QIdentity()))
	e.Journal.Execute(command.NewMoveEntityCommand(e.world, []store.Entity{existing}, mathutil.Transform{Position: mathutil.Vec3{X: 100}, Rotation: mathutil.QIdentity(), Scale: 1}))
	require.NoError(t, e.ExitPlayMode())

	// Assert
	assert.False(t, e.IsPlaying())
	assert.Equal(t, 1, e.world.Store.EntityCount())
	assert.Equal(t, cursorBefore, e.Journal.Cursor())
	assert.Equal(t, []store.Entity{existing}, e.Selection)
	assert.Equal(t, mathutil.Vec3{X: 42}, e.Camera.Position)
	assert.True(t, e.world.Store.Position(existing).Equal(mathutil.Vec3{X: 1}))
}

func Test_Editor_SavePrefab_ReplacesNonPrefabRootWithInstantiatedCopy(t *testing.T) {
	// Arrange
	e := newTestEditor(t)
	root := e.world.Store.CreateEntity(mathutil.Vec3{X: 3}, mathutil.QIdentity())
	path := filepath.Join(t.TempDir(), "actor.fab")

	// Act
	err := e.SavePrefab(root, path, 0xBEEF)

	// Assert
	require.NoError(t, err)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
	assert.Equal(t, 1, e.world.Store.EntityCount())

	var replacement store.Entity
	for _, ent := range e.world.Store.AllEntities() {
		replacement = ent
	}
	assert.NotEqual(t, prefab.NoTag, e.world.Prefabs.GetPrefab(replacement))
	assert.True(t, e.world.Store.Position(replacement).Equal(mathutil.Vec3{X: 3}))

	// A single Undo reverses the whole save_prefab group: the
	// instantiated copy is removed and the original root comes back.
	require.True(t, e.Journal.Undo())
	assert.Equal(t, 1, e.world.Store.EntityCount())
	assert.True(t, e.world.Store.Position(root).Equal(mathutil.Vec3{X: 3}))
	assert.Equal(t, prefab.NoTag, e.world.Prefabs.GetPrefab(root))
}
