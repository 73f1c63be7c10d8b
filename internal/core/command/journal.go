package command

import (
	"fmt"

	"go.uber.org/zap"
)

const (
	KindUnknownCommand = "UnknownCommand"
)

type groupSentinel struct {
	kind  string
	begin bool
}

func (g *groupSentinel) Execute() bool { return true }
func (g *groupSentinel) Undo()         {}
func (g *groupSentinel) TypeID() string {
	if g.begin {
		return "begin_group"
	}
	return "end_group"
}
func (g *groupSentinel) Merge(Command) bool { return false }
func (g *groupSentinel) Payload() map[string]any {
	return map[string]any{"kind": g.kind}
}
func (g *groupSentinel) LoadPayload(p map[string]any) {
	if k, ok := p["kind"].(string); ok {
		g.kind = k
	}
}

// Journal owns the ordered undo/redo stack and cursor (spec §4.E).
// Commands [0..cursor] are "done"; commands after cursor are a
// discarded redo tail kept only until the next push overwrites it.
type Journal struct {
	world    *World
	commands []Command
	cursor   int // index of the last executed command, -1 when empty
	creators map[string]func() Command
}

// New creates an empty journal bound to the given collaborators.
func New(w *World) *Journal {
	return &Journal{world: w, cursor: -1, creators: make(map[string]func() Command)}
}

// Register records a zero-value constructor for typeID so replay can
// recreate commands of that type from a logged payload.
func (j *Journal) Register(typeID string, creator func() Command) {
	j.creators[typeID] = creator
}

func (j *Journal) truncateTail() {
	for _, c := range j.commands[j.cursor+1:] {
		if r, ok := c.(Releasable); ok {
			r.ReleaseResources()
		}
	}
	j.commands = j.commands[:j.cursor+1]
}

// Execute runs the merge-then-execute procedure (spec §4.E): if cmd's
// type matches the command on top of the stack, cmd.Merge(top) is
// tried first; on success top is re-executed with its absorbed state
// and cmd is discarded. Otherwise cmd is executed and, unless it
// reports a no-op, pushed onto the stack (discarding any redo tail).
func (j *Journal) Execute(cmd Command) bool {
	if j.cursor >= 0 && j.cursor < len(j.commands) {
		top := j.commands[j.cursor]
		if top.TypeID() == cmd.TypeID() && cmd.Merge(top) {
			top.Execute()
			return true
		}
	}
	if !cmd.Execute() {
		return false
	}
	j.truncateTail()
	j.commands = append(j.commands, cmd)
	j.cursor++
	return true
}

// BeginGroup opens a named atomic group. Per spec §4.E, opening a new
// group while the cursor is not at the tail discards the tail first.
func (j *Journal) BeginGroup(kind string) {
	j.truncateTail()
	j.commands = append(j.commands, &groupSentinel{kind: kind, begin: true})
	j.cursor++
}

// EndGroup closes the most recently opened group. An immediately-empty
// group (begin with nothing executed in between) is elided entirely.
func (j *Journal) EndGroup(kind string) {
	if j.cursor >= 0 {
		if g, ok := j.commands[j.cursor].(*groupSentinel); ok && g.begin {
			j.commands = j.commands[:j.cursor]
			j.cursor--
			return
		}
	}
	j.truncateTail()
	j.commands = append(j.commands, &groupSentinel{kind: kind, begin: false})
	j.cursor++
}

// Undo reverts the command (or whole group) at the cursor and moves
// the cursor back one logical step.
func (j *Journal) Undo() bool {
	if j.cursor < 0 {
		return false
	}
	if g, ok := j.commands[j.cursor].(*groupSentinel); ok && !g.begin {
		i := j.cursor - 1
		depth := 1
		for depth > 0 {
			switch c := j.commands[i].(type) {
			case *groupSentinel:
				if c.begin {
					depth--
				} else {
					depth++
				}
			default:
				c.Undo()
			}
			i--
		}
		j.cursor = i
		return true
	}
	j.commands[j.cursor].Undo()
	j.cursor--
	return true
}

// Redo re-executes the command (or whole group) after the cursor.
func (j *Journal) Redo() bool {
	if j.cursor+1 >= len(j.commands) {
		return false
	}
	next := j.commands[j.cursor+1]
	if g, ok := next.(*groupSentinel); ok && g.begin {
		i := j.cursor + 2
		depth := 1
		for depth > 0 {
			switch c := j.commands[i].(type) {
			case *groupSentinel:
				if c.begin {
					depth++
				} else {
					depth--
				}
			default:
				c.Execute()
			}
			i++
		}
		j.cursor = i - 1
		return true
	}
	next.Execute()
	j.cursor++
	return true
}

// ReplayEntry is one logged command in the text replay format (spec
// §6 "Command log"): `{undo_command_type, <payload fields>}`.
type ReplayEntry struct {
	TypeID  string
	Payload map[string]any
}

// ExecuteUndoStack replays a logged sequence of commands through the
// same Execute path used for live editing (spec §4.E, §8 regression
// harness). Replay stops with an error on an unregistered type id.
func (j *Journal) ExecuteUndoStack(entries []ReplayEntry) error {
	for _, entry := range entries {
		creator, ok := j.creators[entry.TypeID]
		if !ok {
			j.world.Log.Error(KindUnknownCommand, "replay found an unregistered command type", zap.String("type_id", entry.TypeID))
			return fmt.Errorf("command: unknown command type %q", entry.TypeID)
		}
		cmd := creator()
		cmd.LoadPayload(entry.Payload)
		j.Execute(cmd)
	}
	return nil
}

// RewindAndDiscard drops every command after cursor without undoing
// them, used by play-mode exit (spec §4.F): the commands issued during
// play are "popped + deleted" wholesale because the project itself is
// about to be rebuilt from the pre-play scratch snapshot, not replayed
// back to it one undo at a time.
func (j *Journal) RewindAndDiscard(cursor int) {
	j.cursor = cursor
	j.truncateTail()
}

// Commands exposes the current stack for inspection/tests.
func (j *Journal) Commands() []Command { return j.commands }

// Cursor returns the current cursor index.
func (j *Journal) Cursor() int { return j.cursor }
