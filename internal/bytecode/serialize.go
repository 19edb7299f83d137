package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/value"
)

// magic identifies an Atlas bytecode file; version is the only wire
// version this implementation understands (spec.md §4.9).
var magic = [4]byte{'A', 'T', 'B', 0}

const currentVersion = 1

const (
	flagDebugInfo = 1 << 0
)

// Value tags (spec.md §4.9).
const (
	tagNull     = 0x00
	tagBool     = 0x01
	tagNumber   = 0x02
	tagString   = 0x03
	tagFunction = 0x04
)

// Serialize encodes chunk as a `.atb` file. debugInfo controls whether the
// debug-span table is emitted (the debugger needs it; a release build may
// omit it to shrink the file).
func Serialize(chunk *Chunk, debugInfo bool) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(magic[:])
	writeU16(&buf, currentVersion)
	var flags uint16
	if debugInfo {
		flags |= flagDebugInfo
	}
	writeU16(&buf, flags)

	writeU32(&buf, uint32(len(chunk.Constants)))
	for _, c := range chunk.Constants {
		if err := writeConstant(&buf, c); err != nil {
			return nil, err
		}
	}

	writeU32(&buf, uint32(len(chunk.Code)))
	buf.Write(chunk.Code)

	if debugInfo {
		writeU32(&buf, uint32(len(chunk.Debug)))
		for _, d := range chunk.Debug {
			writeU32(&buf, uint32(d.Offset))
			writeU32(&buf, uint32(d.Span.Start))
			writeU32(&buf, uint32(d.Span.End))
		}
	}
	return buf.Bytes(), nil
}

// Deserialize decodes a `.atb` file. It consumes exactly len(data) bytes
// and rejects trailing bytes; a version mismatch produces a diagnostic
// instructing recompilation rather than a generic parse error.
func Deserialize(data []byte) (*Chunk, error) {
	r := &reader{data: data}

	var gotMagic [4]byte
	if !r.readBytes(gotMagic[:]) || gotMagic != magic {
		return nil, fmt.Errorf("atlas bytecode: not an .atb file (bad magic)")
	}
	version, ok := r.readU16()
	if !ok {
		return nil, fmt.Errorf("atlas bytecode: truncated header")
	}
	if version != currentVersion {
		return nil, fmt.Errorf("atlas bytecode: version %d unsupported by this build (expected %d) — recompile the source", version, currentVersion)
	}
	flags, ok := r.readU16()
	if !ok {
		return nil, fmt.Errorf("atlas bytecode: truncated header")
	}
	hasDebug := flags&flagDebugInfo != 0

	constCt, ok := r.readU32()
	if !ok {
		return nil, fmt.Errorf("atlas bytecode: truncated constant count")
	}
	chunk := NewChunk()
	// TopLevelLocals isn't part of the wire format (spec.md §4.9's header is
	// exactly magic/version/flags/const_ct, with no room for it); the VM
	// recovers the needed slot count by growing the top-level frame on
	// demand, the same way it already grows a called function's frame.
	for i := uint32(0); i < constCt; i++ {
		v, err := readConstant(r)
		if err != nil {
			return nil, err
		}
		chunk.Constants = append(chunk.Constants, v)
	}

	instrLen, ok := r.readU32()
	if !ok {
		return nil, fmt.Errorf("atlas bytecode: truncated instruction length")
	}
	code := make([]byte, instrLen)
	if !r.readBytes(code) {
		return nil, fmt.Errorf("atlas bytecode: truncated instruction stream")
	}
	chunk.Code = code

	if hasDebug {
		debugCt, ok := r.readU32()
		if !ok {
			return nil, fmt.Errorf("atlas bytecode: truncated debug table")
		}
		for i := uint32(0); i < debugCt; i++ {
			offset, ok1 := r.readU32()
			start, ok2 := r.readU32()
			end, ok3 := r.readU32()
			if !ok1 || !ok2 || !ok3 {
				return nil, fmt.Errorf("atlas bytecode: truncated debug entry")
			}
			chunk.Debug = append(chunk.Debug, DebugSpan{
				Offset: int(offset),
				Span:   diag.Span{Start: int(start), End: int(end)},
			})
		}
	}

	if !r.atEOF() {
		return nil, fmt.Errorf("atlas bytecode: %d trailing bytes after a well-formed file", len(r.data)-r.pos)
	}
	return chunk, nil
}

func writeConstant(buf *bytes.Buffer, v value.Value) error {
	switch x := v.(type) {
	case value.Null:
		buf.WriteByte(tagNull)
	case value.Bool:
		buf.WriteByte(tagBool)
		if x {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case value.Number:
		buf.WriteByte(tagNumber)
		writeF64(buf, float64(x))
	case value.String:
		buf.WriteByte(tagString)
		writeU32(buf, uint32(len(x)))
		buf.WriteString(string(x))
	case value.Function:
		buf.WriteByte(tagFunction)
		writeU32(buf, uint32(len(x.Name)))
		buf.WriteString(x.Name)
		buf.WriteByte(byte(x.Arity))
		writeU32(buf, uint32(x.BytecodeOffset))
	default:
		return fmt.Errorf("atlas bytecode: %s is not a serializable constant (arrays are not serializable per spec.md §4.9)", v.TypeName())
	}
	return nil
}

func readConstant(r *reader) (value.Value, error) {
	tag, ok := r.readByte()
	if !ok {
		return nil, fmt.Errorf("atlas bytecode: truncated constant tag")
	}
	switch tag {
	case tagNull:
		return value.Null{}, nil
	case tagBool:
		b, ok := r.readByte()
		if !ok {
			return nil, fmt.Errorf("atlas bytecode: truncated bool constant")
		}
		return value.Bool(b != 0), nil
	case tagNumber:
		f, ok := r.readF64()
		if !ok {
			return nil, fmt.Errorf("atlas bytecode: truncated number constant")
		}
		return value.Number(f), nil
	case tagString:
		n, ok := r.readU32()
		if !ok {
			return nil, fmt.Errorf("atlas bytecode: truncated string length")
		}
		s := make([]byte, n)
		if !r.readBytes(s) {
			return nil, fmt.Errorf("atlas bytecode: truncated string constant")
		}
		return value.String(s), nil
	case tagFunction:
		n, ok := r.readU32()
		if !ok {
			return nil, fmt.Errorf("atlas bytecode: truncated function-name length")
		}
		name := make([]byte, n)
		if !r.readBytes(name) {
			return nil, fmt.Errorf("atlas bytecode: truncated function name")
		}
		arity, ok := r.readByte()
		if !ok {
			return nil, fmt.Errorf("atlas bytecode: truncated function arity")
		}
		offset, ok := r.readU32()
		if !ok {
			return nil, fmt.Errorf("atlas bytecode: truncated function offset")
		}
		return value.Function{Name: string(name), Arity: int(arity), BytecodeOffset: int(offset)}, nil
	default:
		return nil, fmt.Errorf("atlas bytecode: unknown constant tag 0x%02x", tag)
	}
}

// reader is a forward-only cursor over an `.atb` byte slice.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) atEOF() bool { return r.pos == len(r.data) }

func (r *reader) readBytes(dst []byte) bool {
	if r.pos+len(dst) > len(r.data) {
		return false
	}
	copy(dst, r.data[r.pos:])
	r.pos += len(dst)
	return true
}

func (r *reader) readByte() (byte, bool) {
	if r.pos+1 > len(r.data) {
		return 0, false
	}
	b := r.data[r.pos]
	r.pos++
	return b, true
}

func (r *reader) readU16() (uint16, bool) {
	if r.pos+2 > len(r.data) {
		return 0, false
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, true
}

func (r *reader) readU32() (uint32, bool) {
	if r.pos+4 > len(r.data) {
		return 0, false
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, true
}

func (r *reader) readF64() (float64, bool) {
	if r.pos+8 > len(r.data) {
		return 0, false
	}
	bits := binary.BigEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return math.Float64frombits(bits), true
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeF64(buf *bytes.Buffer, f float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(f))
	buf.Write(b[:])
}
