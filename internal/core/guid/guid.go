// Package guid maintains the bijection between live entity handles and
// stable 64-bit identities that survive entity-slot recycling across
// saves, reloads and play-mode round-trips.
package guid

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// Invalid is the guid value returned for an entity with no identity.
const Invalid GUID = 0

// Entity mirrors store.Entity without importing the store package, to
// keep the identity map a leaf dependency the way the teacher keeps
// storage.SparseSet independent of the higher-level ecs package.
type Entity int32

// InvalidEntity is the handle returned when a GUID has no live entity.
const InvalidEntity Entity = -1

// GUID is a stable 64-bit identity, independent of entity slot reuse.
type GUID uint64

// Mode selects how new GUIDs are allocated. It is fixed for the lifetime
// of a Map; the source never switches modes mid-session (spec §9).
type Mode int

const (
	// ModeRandom allocates GUIDs from a CSPRNG-seeded source. This is
	// the default editor mode.
	ModeRandom Mode = iota
	// ModeCounter allocates GUIDs from a monotonically increasing
	// counter, selected by -pseudorandom_guid for reproducible tests.
	ModeCounter
)

// Map is a bijection between entities and GUIDs.
type Map struct {
	mode    Mode
	rng     *rand.Rand
	counter uint64
	forward map[GUID]Entity
	reverse []GUID // indexed by entity's dense index
}

// NewMap creates an empty identity map using the given allocation mode.
func NewMap(mode Mode) *Map {
	var seed [8]byte
	_, _ = crand.Read(seed[:])
	return &Map{
		mode:    mode,
		rng:     rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(seed[:])))),
		forward: make(map[GUID]Entity),
	}
}

// NewMapWithSeed creates a map in ModeRandom with an explicit seed, used
// by tests that want reproducible "random" allocation without switching
// to ModeCounter.
func NewMapWithSeed(seed int64) *Map {
	return &Map{
		mode:    ModeRandom,
		rng:     rand.New(rand.NewSource(seed)),
		forward: make(map[GUID]Entity),
	}
}

func (m *Map) allocate() GUID {
	if m.mode == ModeCounter {
		m.counter++
		return GUID(m.counter)
	}
	for {
		g := GUID(m.rng.Uint64())
		if g == Invalid {
			continue
		}
		if _, exists := m.forward[g]; !exists {
			return g
		}
	}
}

// Create allocates a fresh GUID for entity and inserts both map
// directions, growing the reverse slice as needed. Never fails.
func (m *Map) Create(entity Entity) GUID {
	g := m.allocate()
	idx := int(entity)
	for idx >= len(m.reverse) {
		m.reverse = append(m.reverse, Invalid)
	}
	m.reverse[idx] = g
	m.forward[g] = entity
	return g
}

// Assign inserts a specific, already-known GUID for entity (both map
// directions), used by the deserializer to restore exactly the GUIDs a
// snapshot recorded rather than allocating fresh ones (spec §8 property
// 5, "GUID round-trip"). If g's counter-mode value is higher than the
// map's current counter, the counter is advanced past it so future
// allocations never collide with a restored GUID.
func (m *Map) Assign(entity Entity, g GUID) {
	idx := int(entity)
	for idx >= len(m.reverse) {
		m.reverse = append(m.reverse, Invalid)
	}
	m.reverse[idx] = g
	m.forward[g] = entity
	if m.mode == ModeCounter && uint64(g) > m.counter {
		m.counter = uint64(g)
	}
}

// Erase removes the forward map entry and writes Invalid into the
// reverse slot. Idempotent on an already-erased entity.
func (m *Map) Erase(entity Entity) {
	idx := int(entity)
	if idx < 0 || idx >= len(m.reverse) {
		return
	}
	g := m.reverse[idx]
	if g == Invalid {
		return
	}
	delete(m.forward, g)
	m.reverse[idx] = Invalid
}

// Entity returns the entity mapped to guid, or InvalidEntity.
func (m *Map) Entity(g GUID) Entity {
	if e, ok := m.forward[g]; ok {
		return e
	}
	return InvalidEntity
}

// GUID returns the guid mapped to entity, or Invalid.
func (m *Map) GUID(entity Entity) GUID {
	idx := int(entity)
	if idx < 0 || idx >= len(m.reverse) {
		return Invalid
	}
	return m.reverse[idx]
}

// Clear empties both maps and resets the monotonic counter.
func (m *Map) Clear() {
	m.forward = make(map[GUID]Entity)
	m.reverse = m.reverse[:0]
	m.counter = 0
}

// Len returns the number of live identities.
func (m *Map) Len() int { return len(m.forward) }

// Mode returns the allocation mode this map was created with, used to
// recreate an equivalently-configured map after a destroy-and-reload
// (spec §4.F play-mode restore).
func (m *Map) Mode() Mode { return m.mode }
