// Package serialize implements the two on-disk encodings the editor
// reads and writes: a single binary blob (play-mode scratch file and
// the legacy full-project save) and a directory snapshot (the
// persisted project form), per spec §4.G.
package serialize

import "fmt"

const (
	KindCorruptFile        = "CorruptFile"
	KindUnsupportedVersion = "UnsupportedVersion"
	KindUnknownScene       = "UnknownScene"
)

// ErrCorruptFile is returned when a blob snapshot's header magic or
// payload hash does not match (spec §7).
var ErrCorruptFile = fmt.Errorf("serialize: corrupt blob file")

// ErrUnsupportedVersion is returned when a blob or scene file's version
// exceeds what this build understands (spec §7).
var ErrUnsupportedVersion = fmt.Errorf("serialize: unsupported version")

// UnknownSceneError is returned when a directory load finds a .scn file
// for a scene name with no registered component type (spec §7:
// "abort the load").
type UnknownSceneError struct{ Name string }

func (e *UnknownSceneError) Error() string {
	return fmt.Sprintf("serialize: unknown scene %q", e.Name)
}
