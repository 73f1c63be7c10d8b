// Package prefab implements the prefab-instancing system: it links
// entities back to the prefab resource they were instantiated from,
// keeps every live instance of one prefab on a doubly-linked list for
// O(1) first/next traversal, and knows how to read and write the
// prefab file format. Grounded on PrefabSystemImpl in the original
// editor's prefab_system.cpp (m_prefabs / m_instances / link / unlink).
package prefab

import (
	"fmt"

	"worldeditor/internal/core/editorlog"
	"worldeditor/internal/core/guid"
	"worldeditor/internal/core/scene"
	"worldeditor/internal/core/store"
)

// Version enumerates prefab file format revisions; readers honor both.
type Version uint32

const (
	VersionFirst Version = iota
	VersionWithHierarchy
	versionLast
)

// Tag is a prefab-instance identity: the low 32 bits are the prefab
// resource's content hash, the high 32 bits are a per-entity sequence
// number baked in at save time so that every instance's "same role"
// entity shares one tag (spec §3, "PrefabLink").
type Tag uint64

// NoTag marks an entity with no prefab link.
const NoTag Tag = 0

// Hash returns the prefab resource's content hash.
func (t Tag) Hash() uint32 { return uint32(t) }

// Sequence returns the per-entity role index within the prefab's tree.
func (t Tag) Sequence() uint32 { return uint32(t >> 32) }

// MakeTag packs a content hash and sequence index into one tag.
func MakeTag(hash uint32, seq uint32) Tag { return Tag(uint64(hash) | uint64(seq)<<32) }

const (
	KindUnsupportedVersion = "UnsupportedVersion"
)

type link struct {
	tag  Tag
	prev store.Entity
	next store.Entity
}

// System is the prefab-instancing collaborator: it owns the per-entity
// link table, the tag→head-instance map, and the cache of loaded
// prefab resource blobs.
type System struct {
	store    *store.Store
	registry *scene.Registry
	guids    *guid.Map
	log      *editorlog.Logger

	links     []link // parallel to store's dense entity array; zero-value means "no prefab"
	heads     map[Tag]store.Entity
	resources map[uint32][]byte // loaded prefab blobs, keyed by content hash
}

// New creates a prefab system bound to the project's store, component
// registry and identity map, and subscribes to entity destruction so
// links are cleaned up automatically (spec §4.D: "destroying an entity
// always unlinks it").
func New(s *store.Store, reg *scene.Registry, guids *guid.Map, log *editorlog.Logger) *System {
	if log == nil {
		log = editorlog.Nop()
	}
	sys := &System{
		store:     s,
		registry:  reg,
		guids:     guids,
		log:       log,
		heads:     make(map[Tag]store.Entity),
		resources: make(map[uint32][]byte),
	}
	s.OnEntityDestroyed(sys.onEntityDestroyed)
	return sys
}

func (s *System) reserve(e store.Entity) {
	for store.Entity(len(s.links)) <= e {
		s.links = append(s.links, link{})
	}
}

// GetPrefab returns e's prefab tag, or NoTag if it has none.
func (s *System) GetPrefab(e store.Entity) Tag {
	if int(e) >= len(s.links) || e < 0 {
		return NoTag
	}
	return s.links[e].tag
}

// SetPrefab links e into tag's instance list, extending the per-entity
// table as needed.
func (s *System) SetPrefab(e store.Entity, tag Tag) {
	s.reserve(e)
	s.links[e].tag = tag
	s.link(e, tag)
}

func (s *System) link(e store.Entity, tag Tag) {
	s.links[e].prev = store.Invalid
	if head, ok := s.heads[tag]; ok {
		s.links[head].prev = e
		s.links[e].next = head
	} else {
		s.links[e].next = store.Invalid
	}
	s.heads[tag] = e
}

func (s *System) unlink(e store.Entity) {
	l := s.links[e]
	if l.tag == NoTag {
		return
	}
	if s.heads[l.tag] == e {
		if l.next != store.Invalid {
			s.heads[l.tag] = l.next
		} else {
			delete(s.heads, l.tag)
		}
	}
	if l.prev != store.Invalid {
		s.links[l.prev].next = l.next
	}
	if l.next != store.Invalid {
		s.links[l.next].prev = l.prev
	}
}

func (s *System) onEntityDestroyed(e store.Entity) {
	if int(e) >= len(s.links) {
		return
	}
	s.unlink(e)
	s.links[e] = link{}
}

// FirstInstance returns the head of tag's instance list, or Invalid.
func (s *System) FirstInstance(tag Tag) store.Entity {
	if head, ok := s.heads[tag]; ok {
		return head
	}
	return store.Invalid
}

// NextInstance returns the next entity on e's instance list, or
// Invalid.
func (s *System) NextInstance(e store.Entity) store.Entity {
	if int(e) >= len(s.links) {
		return store.Invalid
	}
	return s.links[e].next
}

// Instances returns every live instance sharing e's prefab tag,
// including e itself; used by command propagation (spec §4.D).
func (s *System) Instances(e store.Entity) []store.Entity {
	tag := s.GetPrefab(e)
	if tag == NoTag {
		return []store.Entity{e}
	}
	var out []store.Entity
	for cur := s.FirstInstance(tag); cur != store.Invalid; cur = s.NextInstance(cur) {
		out = append(out, cur)
	}
	return out
}

// LoadResource registers a prefab file's raw bytes under its content
// hash, the way the original caches PrefabResource blobs by path hash.
func (s *System) LoadResource(hash uint32, data []byte) {
	s.resources[hash] = data
}

// Resources returns every loaded prefab resource blob keyed by content
// hash, for the serializer's systems/templates.sys persistence (spec
// §4.G.2).
func (s *System) Resources() map[uint32][]byte {
	out := make(map[uint32][]byte, len(s.resources))
	for k, v := range s.resources {
		out[k] = v
	}
	return out
}

// Tags returns every entity currently linked to a prefab, for the
// serializer's "per-entity prefab tags" persistence (spec §4.G.2).
func (s *System) Tags() map[store.Entity]Tag {
	out := make(map[store.Entity]Tag)
	for e, l := range s.links {
		if l.tag != NoTag {
			out[store.Entity(e)] = l.tag
		}
	}
	return out
}

// ErrUnsupportedVersion is returned when a prefab file's version
// exceeds the newest one this build understands (spec §7).
var ErrUnsupportedVersion = fmt.Errorf("prefab: unsupported file version")
