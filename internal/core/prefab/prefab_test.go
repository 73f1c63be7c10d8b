package prefab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"worldeditor/internal/core/guid"
	"worldeditor/internal/core/mathutil"
	"worldeditor/internal/core/scene"
	"worldeditor/internal/core/store"
)

func newHarness(t *testing.T) (*store.Store, *scene.Registry, *System) {
	t.Helper()
	reg := scene.NewRegistry()
	s := store.New(reg, nil)
	reg.Bind(s)
	sys := New(s, reg, guid.NewMap(guid.ModeCounter), nil)
	return s, reg, sys
}

func Test_System_SetPrefab_BuildsInstanceList(t *testing.T) {
	// Arrange
	s, _, sys := newHarness(t)
	a := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	b := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	tag := MakeTag(0xAAAA, 0)

	// Act
	sys.SetPrefab(a, tag)
	sys.SetPrefab(b, tag)

	// Assert: most-recently-linked entity is the head.
	assert.Equal(t, b, sys.FirstInstance(tag))
	assert.Equal(t, a, sys.NextInstance(b))
	assert.Equal(t, store.Invalid, sys.NextInstance(a))
}

func Test_System_DestroyEntity_UnlinksFromInstanceList(t *testing.T) {
	// Arrange
	s, _, sys := newHarness(t)
	a := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	b := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	tag := MakeTag(0xAAAA, 0)
	sys.SetPrefab(a, tag)
	sys.SetPrefab(b, tag)

	// Act
	s.DestroyEntity(b)

	// Assert
	assert.Equal(t, a, sys.FirstInstance(tag))
	assert.Equal(t, NoTag, sys.GetPrefab(b))
}

func Test_System_Instances_ReturnsWholeFamilyIncludingSelf(t *testing.T) {
	// Arrange
	s, _, sys := newHarness(t)
	a := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	b := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	c := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	tag := MakeTag(1, 1)
	sys.SetPrefab(a, tag)
	sys.SetPrefab(b, tag)

	// Act
	family := sys.Instances(a)
	solo := sys.Instances(c)

	// Assert
	assert.ElementsMatch(t, []store.Entity{a, b}, family)
	assert.Equal(t, []store.Entity{c}, solo)
}

func Test_System_SerializeSubtree_InstantiateRoundTrip(t *testing.T) {
	// Arrange
	s, reg, sys := newHarness(t)
	var createdRadii []float64
	require.NoError(t, reg.Register(1, scene.Entry{
		Name:     "light",
		TypeHash: 0x1234,
		Version:  1,
		Serialize: func(e store.Entity) (map[string]any, error) {
			return map[string]any{"radius": 7.0}, nil
		},
		Deserialize: func(e store.Entity, sceneVersion int, payload map[string]any) error {
			createdRadii = append(createdRadii, payload["radius"].(float64))
			return nil
		},
	}))
	root := s.CreateEntity(mathutil.Vec3{X: 1}, mathutil.QIdentity())
	child := s.CreateEntity(mathutil.Vec3{X: 2}, mathutil.QIdentity())
	require.NoError(t, s.SetParent(root, child))
	s.CreateComponent(1, root)
	s.CreateComponent(1, child)

	// Act
	blob := sys.SerializeSubtree(root, 0xF00D)
	instantiated, err := sys.Instantiate(blob, mathutil.Vec3{X: 100}, mathutil.QIdentity(), 1)

	// Assert
	require.NoError(t, err)
	assert.True(t, s.Position(instantiated).Equal(mathutil.Vec3{X: 100}))
	assert.Len(t, createdRadii, 2)
	newChild := s.GetFirstChild(instantiated)
	assert.NotEqual(t, store.Invalid, newChild)
	assert.Equal(t, instantiated, s.GetParent(newChild))
	assert.Equal(t, MakeTag(0xF00D, 0), sys.GetPrefab(instantiated))
	assert.Equal(t, MakeTag(0xF00D, 1), sys.GetPrefab(newChild))
}
