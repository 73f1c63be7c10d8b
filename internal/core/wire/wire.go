// Package wire implements the fixed binary encoding shared by the
// prefab file format, the blob snapshot and the directory snapshot's
// .ent/.scn/.sys files (spec §6): plain length-prefixed fields written
// with encoding/binary, no schema negotiation. Component payloads inside
// these records are YAML-encoded by their callers; this package exists
// because the blob snapshot format is pinned byte-for-byte (magic
// number, a CRC32 field in the header, fixed field widths) and a general-purpose encoding library
// would not let us match that layout exactly.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"

	"worldeditor/internal/core/mathutil"
)

// ErrTruncated is set on a Reader once a read runs past the end of the
// buffer; callers check Err() once after a sequence of reads instead of
// after every individual call.
var ErrTruncated = errors.New("wire: truncated record")

// Writer accumulates a binary record in the wire format.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated record.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteF64(v float64) { w.WriteU64(math.Float64bits(v)) }

func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// WriteString writes a u32 byte length followed by the raw bytes.
func (w *Writer) WriteString(v string) {
	w.WriteU32(uint32(len(v)))
	w.buf.WriteString(v)
}

// WriteBytes writes a u32 byte length followed by the raw bytes, used
// to embed an already-encoded component payload inline.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteU32(uint32(len(b)))
	w.buf.Write(b)
}

func (w *Writer) WriteVec3(v mathutil.Vec3) {
	w.WriteF64(v.X)
	w.WriteF64(v.Y)
	w.WriteF64(v.Z)
}

func (w *Writer) WriteQuat(v mathutil.Quat) {
	w.WriteF64(v.X)
	w.WriteF64(v.Y)
	w.WriteF64(v.Z)
	w.WriteF64(v.W)
}

func (w *Writer) WriteTransform(t mathutil.Transform) {
	w.WriteVec3(t.Position)
	w.WriteQuat(t.Rotation)
	w.WriteF64(t.Scale)
}

// Reader walks a wire-encoded record. Read errors are sticky: once one
// read fails every subsequent read becomes a no-op returning the zero
// value, so a deserializer can perform a whole sequence of reads and
// check Err() a single time at the end.
type Reader struct {
	r   *bytes.Reader
	err error
}

// NewReader wraps data for sequential reading.
func NewReader(data []byte) *Reader { return &Reader{r: bytes.NewReader(data)} }

// Err returns the first read error encountered, if any.
func (r *Reader) Err() error { return r.err }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return r.r.Len() }

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) readN(n int) []byte {
	if r.err != nil {
		return make([]byte, n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		r.fail(ErrTruncated)
		return make([]byte, n)
	}
	return b
}

func (r *Reader) ReadU32() uint32 { return binary.LittleEndian.Uint32(r.readN(4)) }
func (r *Reader) ReadU64() uint64 { return binary.LittleEndian.Uint64(r.readN(8)) }
func (r *Reader) ReadF64() float64 { return math.Float64frombits(r.ReadU64()) }
func (r *Reader) ReadBool() bool   { return r.readN(1)[0] != 0 }

func (r *Reader) ReadString() string {
	n := r.ReadU32()
	if r.err != nil {
		return ""
	}
	return string(r.readN(int(n)))
}

func (r *Reader) ReadBytes() []byte {
	n := r.ReadU32()
	if r.err != nil {
		return nil
	}
	return r.readN(int(n))
}

func (r *Reader) ReadVec3() mathutil.Vec3 {
	return mathutil.Vec3{X: r.ReadF64(), Y: r.ReadF64(), Z: r.ReadF64()}
}

func (r *Reader) ReadQuat() mathutil.Quat {
	return mathutil.Quat{X: r.ReadF64(), Y: r.ReadF64(), Z: r.ReadF64(), W: r.ReadF64()}
}

func (r *Reader) ReadTransform() mathutil.Transform {
	return mathutil.Transform{Position: r.ReadVec3(), Rotation: r.ReadQuat(), Scale: r.ReadF64()}
}
