package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"worldeditor/internal/core/mathutil"
	"worldeditor/internal/core/store"
)

func newBoundRegistry() (*Registry, *store.Store) {
	reg := NewRegistry()
	s := store.New(reg, nil)
	reg.Bind(s)
	return reg, s
}

func Test_Registry_CreateDestroy_RoundTripsThroughStoreMask(t *testing.T) {
	// Arrange
	reg, s := newBoundRegistry()
	var created, destroyed []store.Entity
	require.NoError(t, reg.Register(1, Entry{
		Name:     "mesh",
		TypeHash: 0xA001,
		Create:   func(e store.Entity) { created = append(created, e) },
		Destroy:  func(e store.Entity) { destroyed = append(destroyed, e) },
	}))
	e := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())

	// Act
	s.CreateComponent(1, e)
	hasAfterCreate := s.HasComponent(e, 1)
	s.DestroyComponent(e, 1)
	hasAfterDestroy := s.HasComponent(e, 1)

	// Assert
	assert.Equal(t, []store.Entity{e}, created)
	assert.Equal(t, []store.Entity{e}, destroyed)
	assert.True(t, hasAfterCreate)
	assert.False(t, hasAfterDestroy)
}

func Test_Registry_Register_RejectsDuplicateType(t *testing.T) {
	// Arrange
	reg, _ := newBoundRegistry()
	require.NoError(t, reg.Register(1, Entry{Name: "mesh", TypeHash: 1}))

	// Act
	err := reg.Register(1, Entry{Name: "mesh2", TypeHash: 2})

	// Assert
	assert.Error(t, err)
}

func Test_Registry_Register_RejectsDuplicateTypeHash(t *testing.T) {
	// Arrange
	reg, _ := newBoundRegistry()
	require.NoError(t, reg.Register(1, Entry{Name: "mesh", TypeHash: 1}))

	// Act
	err := reg.Register(2, Entry{Name: "camera", TypeHash: 1})

	// Assert
	assert.Error(t, err)
}

func Test_Registry_TypeForHash_ResolvesBackToRuntimeType(t *testing.T) {
	// Arrange
	reg, _ := newBoundRegistry()
	require.NoError(t, reg.Register(3, Entry{Name: "light", TypeHash: 0xBEEF}))

	// Act
	t3, ok := reg.TypeForHash(0xBEEF)

	// Assert
	assert.True(t, ok)
	assert.Equal(t, store.ComponentType(3), t3)
}

func Test_Registry_Serialize_RoundTripsPayloadThroughDeserialize(t *testing.T) {
	// Arrange
	reg, s := newBoundRegistry()
	var radius float64
	require.NoError(t, reg.Register(1, Entry{
		Name:     "light",
		TypeHash: 1,
		Version:  2,
		Serialize: func(e store.Entity) (map[string]any, error) {
			return map[string]any{"radius": 4.5}, nil
		},
		Deserialize: func(e store.Entity, sceneVersion int, payload map[string]any) error {
			radius = payload["radius"].(float64)
			return nil
		},
	}))
	e := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	s.CreateComponent(1, e)

	// Act
	payload, err := reg.Serialize(1, e)
	require.NoError(t, err)
	require.NoError(t, reg.Deserialize(1, e, 2, payload))

	// Assert
	assert.Equal(t, 4.5, radius)
}
