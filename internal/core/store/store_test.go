package store

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"worldeditor/internal/core/mathutil"
)

// fakeRegistry is a minimal scene registry used by tests: it just calls
// back into the store's OnComponentCreated/OnComponentDestroyed hooks,
// the way a real scene would after touching its own component storage.
type fakeRegistry struct {
	store      *Store
	registered map[ComponentType]bool
	destroyed  map[Entity]map[ComponentType]bool
}

func newFakeRegistry(s *Store, types ...ComponentType) *fakeRegistry {
	reg := map[ComponentType]bool{}
	for _, t := range types {
		reg[t] = true
	}
	return &fakeRegistry{store: s, registered: reg, destroyed: map[Entity]map[ComponentType]bool{}}
}

func (r *fakeRegistry) Registered(t ComponentType) bool { return r.registered[t] }
func (r *fakeRegistry) Create(t ComponentType, e Entity) { r.store.OnComponentCreated(e, t) }
func (r *fakeRegistry) Destroy(t ComponentType, e Entity) {
	if r.destroyed[e] == nil {
		r.destroyed[e] = map[ComponentType]bool{}
	}
	r.destroyed[e][t] = true
	r.store.OnComponentDestroyed(e, t)
}

func newTestStore(types ...ComponentType) *Store {
	s := New(nil, nil)
	s.registry = newFakeRegistry(s, types...)
	return s
}

func Test_Store_CreateEntity_AllocatesAtExpectedTransform(t *testing.T) {
	// Arrange
	s := newTestStore()

	// Act
	e := s.CreateEntity(mathutil.Vec3{X: 1, Y: 2, Z: 3}, mathutil.QIdentity())

	// Assert
	assert.Equal(t, Entity(0), e)
	assert.True(t, s.IsValid(e))
	assert.Equal(t, mathutil.Vec3{X: 1, Y: 2, Z: 3}, s.Position(e))
	assert.Equal(t, 1.0, s.Scale(e))
	assert.Equal(t, 1, s.EntityCount())
}

func Test_Store_DestroyEntity_FreesSlotForReuse(t *testing.T) {
	// Arrange
	s := newTestStore()
	e := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())

	// Act
	s.DestroyEntity(e)
	reused := s.CreateEntity(mathutil.Vec3{X: 9}, mathutil.QIdentity())

	// Assert
	assert.False(t, s.IsValid(e))
	assert.Equal(t, e, reused) // slot recycled
	assert.Equal(t, 1, s.EntityCount())
}

func Test_Store_ComponentLifecycle_SetsAndClearsMaskBit(t *testing.T) {
	// Arrange
	s := newTestStore(ComponentType(1))
	e := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())

	// Act
	s.CreateComponent(1, e)
	hasAfterCreate := s.HasComponent(e, 1)
	s.DestroyComponent(e, 1)
	hasAfterDestroy := s.HasComponent(e, 1)

	// Assert
	assert.True(t, hasAfterCreate)
	assert.False(t, hasAfterDestroy)
}

func Test_Store_DestroyEntity_DestroysAllItsComponents(t *testing.T) {
	// Arrange
	s := newTestStore(ComponentType(1), ComponentType(2))
	e := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	s.CreateComponent(1, e)
	s.CreateComponent(2, e)
	reg := s.registry.(*fakeRegistry)

	// Act
	s.DestroyEntity(e)

	// Assert
	assert.True(t, reg.destroyed[e][ComponentType(1)])
	assert.True(t, reg.destroyed[e][ComponentType(2)])
}

func Test_Store_EntityEvents_FireOnCreateAndDestroy(t *testing.T) {
	// Arrange
	s := newTestStore()
	var created, destroyed []Entity
	s.OnEntityCreated(func(e Entity) { created = append(created, e) })
	s.OnEntityDestroyed(func(e Entity) { destroyed = append(destroyed, e) })

	// Act
	e := s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	s.DestroyEntity(e)

	// Assert
	assert.Equal(t, []Entity{e}, created)
	assert.Equal(t, []Entity{e}, destroyed)
}

func Test_Store_Unsubscribe_StopsFurtherNotifications(t *testing.T) {
	// Arrange
	s := newTestStore()
	count := 0
	id := s.OnEntityCreated(func(Entity) { count++ })

	// Act
	s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())
	s.Unsubscribe(id)
	s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity())

	// Assert
	assert.Equal(t, 1, count)
}

func Test_Store_FreeListIntegrity_AfterRandomCreateDestroyPairs(t *testing.T) {
	// Arrange
	s := newTestStore()
	rng := rand.New(rand.NewSource(7))
	var live []Entity

	// Act: a bounded amount of random create/destroy churn.
	for i := 0; i < 500; i++ {
		if len(live) == 0 || rng.Intn(2) == 0 {
			live = append(live, s.CreateEntity(mathutil.Vec3{}, mathutil.QIdentity()))
		} else {
			idx := rng.Intn(len(live))
			s.DestroyEntity(live[idx])
			live = append(live[:idx], live[idx+1:]...)
		}
	}

	// Assert
	assert.True(t, s.FreeListValid())
	assert.Equal(t, len(live), s.EntityCount())
}

func Test_Store_Clone_CopiesTransformNameAndComponents(t *testing.T) {
	// Arrange
	s := newTestStore(ComponentType(1))
	src := s.CreateEntity(mathutil.Vec3{X: 5}, mathutil.QIdentity())
	s.SetName(src, "box")
	s.CreateComponent(1, src)

	// Act
	dst := s.Clone(src)

	// Assert
	assert.Equal(t, s.Position(src), s.Position(dst))
	assert.Equal(t, "box_copy", s.Name(dst))
	assert.True(t, s.HasComponent(dst, 1))
	assert.NotEqual(t, src, dst)
}
