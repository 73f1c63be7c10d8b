package guid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Map_CreateThenGUID_RoundTrips(t *testing.T) {
	// Arrange
	m := NewMap(ModeCounter)

	// Act
	g := m.Create(0)

	// Assert
	assert.NotEqual(t, Invalid, g)
	assert.Equal(t, Entity(0), m.Entity(g))
	assert.Equal(t, g, m.GUID(0))
}

func Test_Map_Erase_DropsGUIDEntirely(t *testing.T) {
	// Arrange
	m := NewMap(ModeCounter)
	g := m.Create(0)

	// Act
	m.Erase(0)

	// Assert
	assert.Equal(t, InvalidEntity, m.Entity(g))
	assert.Equal(t, Invalid, m.GUID(0))
	assert.Equal(t, 0, m.Len())
}

func Test_Map_EraseIdempotent_OnAlreadyErased(t *testing.T) {
	// Arrange
	m := NewMap(ModeCounter)
	m.Create(0)
	m.Erase(0)

	// Act & Assert: second erase must not panic or alter state.
	assert.NotPanics(t, func() { m.Erase(0) })
	assert.Equal(t, 0, m.Len())
}

func Test_Map_CounterMode_NeverReusesGUID(t *testing.T) {
	// Arrange
	m := NewMap(ModeCounter)
	first := m.Create(0)
	m.Erase(0)

	// Act: recycle the same entity slot.
	second := m.Create(0)

	// Assert
	assert.NotEqual(t, first, second)
}

func Test_Map_Clear_EmptiesBothMapsAndResetsCounter(t *testing.T) {
	// Arrange
	m := NewMap(ModeCounter)
	m.Create(0)
	m.Create(1)

	// Act
	m.Clear()
	g := m.Create(0)

	// Assert
	assert.Equal(t, GUID(1), g) // counter restarted from zero
	assert.Equal(t, 1, m.Len())
}

func Test_Map_RandomMode_AllocatesNonZeroUniqueGUIDs(t *testing.T) {
	// Arrange
	m := NewMapWithSeed(42)

	// Act
	a := m.Create(0)
	b := m.Create(1)

	// Assert
	assert.NotEqual(t, Invalid, a)
	assert.NotEqual(t, Invalid, b)
	assert.NotEqual(t, a, b)
}
