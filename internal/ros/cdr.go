package ros

import (
	"encoding/binary"
	"math"
)

// Encoder serializes message fields into CDR (XCDR1, little endian), the
// wire format rosbag2 stores with serialization_format "cdr". Primitive
// values are aligned to their own size, counted from the start of the
// message body (the serialized payload additionally carries a 4-byte
// encapsulation header that does not participate in alignment).
type Encoder struct {
	buf []byte
}

// encapsulation identifier for CDR_LE followed by two option bytes.
var cdrEncapsulation = []byte{0x00, 0x01, 0x00, 0x00}

// Serialize returns the full rosbag2 payload for m: encapsulation header
// plus CDR body.
func Serialize(m Message) []byte {
	var e Encoder
	m.SerializeCDR(&e)
	out := make([]byte, 0, len(cdrEncapsulation)+len(e.buf))
	out = append(out, cdrEncapsulation...)
	return append(out, e.buf...)
}

func (e *Encoder) align(size int) {
	if pad := (size - len(e.buf)%size) % size; pad > 0 {
		e.buf = append(e.buf, make([]byte, pad)...)
	}
}

// WriteBool writes a single-byte boolean.
func (e *Encoder) WriteBool(v bool) {
	if v {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
}

// WriteUint8 writes an unaligned octet.
func (e *Encoder) WriteUint8(v uint8) {
	e.buf = append(e.buf, v)
}

// WriteInt8 writes an unaligned signed octet.
func (e *Encoder) WriteInt8(v int8) {
	e.buf = append(e.buf, byte(v))
}

// WriteUint16 writes a 2-byte-aligned unsigned short.
func (e *Encoder) WriteUint16(v uint16) {
	e.align(2)
	e.buf = binary.LittleEndian.AppendUint16(e.buf, v)
}

// WriteInt16 writes a 2-byte-aligned signed short.
func (e *Encoder) WriteInt16(v int16) {
	e.WriteUint16(uint16(v))
}

// WriteUint32 writes a 4-byte-aligned unsigned long.
func (e *Encoder) WriteUint32(v uint32) {
	e.align(4)
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

// WriteInt32 writes a 4-byte-aligned signed long.
func (e *Encoder) WriteInt32(v int32) {
	e.WriteUint32(uint32(v))
}

// WriteUint64 writes an 8-byte-aligned unsigned long long.
func (e *Encoder) WriteUint64(v uint64) {
	e.align(8)
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

// WriteInt64 writes an 8-byte-aligned signed long long.
func (e *Encoder) WriteInt64(v int64) {
	e.WriteUint64(uint64(v))
}

// WriteFloat32 writes a 4-byte-aligned IEEE float.
func (e *Encoder) WriteFloat32(v float32) {
	e.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 writes an 8-byte-aligned IEEE double.
func (e *Encoder) WriteFloat64(v float64) {
	e.WriteUint64(math.Float64bits(v))
}

// WriteString writes a CDR string: length prefix including the trailing
// NUL, the bytes, then the NUL.
func (e *Encoder) WriteString(v string) {
	e.WriteUint32(uint32(len(v)) + 1)
	e.buf = append(e.buf, v...)
	e.buf = append(e.buf, 0)
}

// WriteSequenceLen writes the element-count prefix of a sequence.
func (e *Encoder) WriteSequenceLen(n int) {
	e.WriteUint32(uint32(n))
}

// WriteBytes writes raw octets with no prefix; callers emit the sequence
// length themselves.
func (e *Encoder) WriteBytes(v []byte) {
	e.buf = append(e.buf, v...)
}

// Len reports the current body size in bytes.
func (e *Encoder) Len() int { return len(e.buf) }
