package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"worldeditor/internal/core/mathutil"
)

func Test_Store_SetParent_PreservesChildGlobalPosition(t *testing.T) {
	// Arrange
	s := newTestStore()
	parent := s.CreateEntity(mathutil.Vec3{X: 10}, mathutil.QIdentity())
	child := s.CreateEntity(mathutil.Vec3{X: 12}, mathutil.QIdentity())

	// Act
	err := s.SetParent(parent, child)

	// Assert
	require.NoError(t, err)
	assert.True(t, s.Position(child).Equal(mathutil.Vec3{X: 12}))
	assert.True(t, s.CheckTransformConsistency())
}

func Test_Store_SetParent_RejectsCycle(t *testing.T) {
	// Arrange: A -> B -> C chain.
	s := newTestStore()
	a := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	b := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	c := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	require.NoError(t, s.SetParent(a, b))
	require.NoError(t, s.SetParent(b, c))

	// Act: try to make A a child of its own descendant C.
	err := s.SetParent(c, a)

	// Assert
	assert.ErrorIs(t, err, ErrCycleInHierarchy)
	assert.Equal(t, a, s.GetParent(b))
	assert.Equal(t, b, s.GetParent(c))
	assert.Equal(t, Invalid, s.GetParent(a))
}

func Test_Store_SetGlobalTransform_PropagatesToChildrenPreservingLocalOffset(t *testing.T) {
	// Arrange
	s := newTestStore()
	parent := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	child := s.CreateEntity(mathutil.Vec3{X: 1}, mathutil.QIdentity())
	require.NoError(t, s.SetParent(parent, child))

	// Act
	s.SetPosition(parent, mathutil.Vec3{X: 100})

	// Assert
	assert.True(t, s.Position(child).Equal(mathutil.Vec3{X: 101}))
	assert.True(t, s.CheckTransformConsistency())
}

func Test_Store_SetScale_PropagatesToChildrenKeepingConsistency(t *testing.T) {
	// Arrange
	s := newTestStore()
	parent := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	child := s.CreateEntity(mathutil.Vec3{X: 2}, mathutil.QIdentity())
	require.NoError(t, s.SetParent(parent, child))

	// Act: doubling the parent's scale must double the child's global
	// offset too, the same way SetGlobalTransform cascades.
	s.SetScale(parent, 2)

	// Assert
	assert.True(t, s.Position(child).Equal(mathutil.Vec3{X: 4}))
	assert.True(t, s.CheckTransformConsistency())
}

func Test_Store_SetLocalTransform_RecomputesGlobal(t *testing.T) {
	// Arrange
	s := newTestStore()
	parent := s.CreateEntity(mathutil.Vec3{X: 5}, mathutil.QIdentity())
	child := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	require.NoError(t, s.SetParent(parent, child))

	// Act
	s.SetLocalPosition(child, mathutil.Vec3{X: 2})

	// Assert
	assert.True(t, s.Position(child).Equal(mathutil.Vec3{X: 7}))
}

func Test_Store_DestroyEntity_ReparentsChildrenToRoot(t *testing.T) {
	// Arrange
	s := newTestStore()
	parent := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	child := s.CreateEntity(mathutil.Vec3{X: 3}, mathutil.QIdentity())
	require.NoError(t, s.SetParent(parent, child))

	// Act
	s.DestroyEntity(parent)

	// Assert
	assert.True(t, s.IsValid(child))
	assert.Equal(t, Invalid, s.GetParent(child))
	assert.True(t, s.Position(child).Equal(mathutil.Vec3{X: 3}))
}

func Test_Store_DetachToRoot_GarbageCollectsOrphanNodes(t *testing.T) {
	// Arrange
	s := newTestStore()
	parent := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	child := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	require.NoError(t, s.SetParent(parent, child))

	// Act: detach child back to root; neither entity should keep a
	// hierarchy node once it has no parent and no children.
	require.NoError(t, s.SetParent(Invalid, child))

	// Assert
	assert.Equal(t, int32(-1), s.entities[parent].hierSlot)
	assert.Equal(t, int32(-1), s.entities[child].hierSlot)
}

func Test_Store_FindByName_LocatesChildUnderParent(t *testing.T) {
	// Arrange
	s := newTestStore()
	parent := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	child := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	require.NoError(t, s.SetParent(parent, child))
	s.SetName(child, "turret")

	// Act
	found := s.FindByName(parent, "turret")

	// Assert
	assert.Equal(t, child, found)
}
