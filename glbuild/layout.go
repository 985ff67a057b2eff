package glbuild

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

// Packing is a constant buffer packing rule.
type Packing uint8

const (
	// PackStd140 follows the GLSL std140 uniform block rules.
	PackStd140 Packing = iota
	// PackRegisters starts every constant on a new 16 byte register, as
	// HLSL register(cN) bound constants are laid out.
	PackRegisters
)

// Field is a constant in a [Layout].
type Field struct {
	Name      string
	Type      Type
	ArraySize int
	Offset    int
	Size      int
	// Stride is the distance between array elements or matrix columns.
	Stride int
}

// Register returns the 16 byte register the field starts at.
func (f Field) Register() int { return f.Offset / 16 }

// Layout is the memory layout of the uniform constants of one shader stage.
// It is generated alongside the shader so host code can fill constant
// buffers at matching offsets.
type Layout struct {
	Packing Packing
	Fields  []Field
	Size    int
}

// NewLayout lays out uniforms in the given order.
func NewLayout(pk Packing, uniforms []*Var) Layout {
	l := Layout{Packing: pk}
	off := 0
	for _, v := range uniforms {
		if v.Type.IsSampler() {
			continue
		}
		align, size, stride := fieldSize(pk, v.Type, v.ArraySize)
		off = alignUp(off, align)
		l.Fields = append(l.Fields, Field{
			Name:      v.Ident(),
			Type:      v.Type,
			ArraySize: v.ArraySize,
			Offset:    off,
			Size:      size,
			Stride:    stride,
		})
		off += size
	}
	l.Size = alignUp(off, 16)
	return l
}

func fieldSize(pk Packing, t Type, arraySize int) (align, size, stride int) {
	scalar := 4 * t.Cols()
	if pk == PackRegisters {
		stride = 16
		return 16, 16 * t.Rows() * max(arraySize, 1), stride
	}
	switch {
	case t.IsMatrix() || arraySize > 0:
		stride = 16
		return 16, 16 * t.Rows() * max(arraySize, 1), stride
	case t == Float3:
		return 16, scalar, 0
	}
	return scalar, scalar, 0
}

func alignUp(v, align int) int {
	return (v + align - 1) / align * align
}

// Field returns the field with the given identifier.
func (l Layout) Field(name string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Register returns the register of the named field or -1 if not found.
func (l Layout) Register(name string) int {
	f, ok := l.Field(name)
	if !ok {
		return -1
	}
	return f.Register()
}

// Pack writes values into a constant buffer of size l.Size appended to dst.
// Values are keyed by identifier; supported types are float32, ms2.Vec,
// ms3.Vec, [4]float32, ms3.Mat3, ms3.Mat4 and slices or arrays of them for
// array constants. Matrices are stored column major.
func (l Layout) Pack(dst []byte, values map[string]any) ([]byte, error) {
	start := len(dst)
	dst = append(dst, make([]byte, l.Size)...)
	buf := dst[start:]
	for name, value := range values {
		f, ok := l.Field(name)
		if !ok {
			return dst[:start], fmt.Errorf("constant %q not in layout", name)
		}
		typ, _, err := TypeOf(reflect.TypeOf(value))
		if err != nil {
			return dst[:start], fmt.Errorf("constant %q: %w", name, err)
		} else if typ != f.Type {
			return dst[:start], fmt.Errorf("constant %q: have %s, want %s", name, typ, f.Type)
		}
		rv := reflect.ValueOf(value)
		if f.ArraySize == 0 {
			putValue(buf[f.Offset:f.Offset+f.Size], f, value)
			continue
		}
		if kind := rv.Kind(); kind != reflect.Slice && kind != reflect.Array || rv.Len() > f.ArraySize {
			return dst[:start], fmt.Errorf("constant %q: want at most %d elements", name, f.ArraySize)
		}
		elemSize := f.Stride * f.Type.Rows()
		for i := 0; i < rv.Len(); i++ {
			off := f.Offset + i*elemSize
			putValue(buf[off:off+elemSize], f, rv.Index(i).Interface())
		}
	}
	return dst, nil
}

func putValue(b []byte, f Field, value any) {
	switch v := value.(type) {
	case float32:
		putFloats(b, v)
	case ms2.Vec:
		putFloats(b, v.X, v.Y)
	case [2]float32:
		putFloats(b, v[:]...)
	case ms3.Vec:
		putFloats(b, v.X, v.Y, v.Z)
	case [3]float32:
		putFloats(b, v[:]...)
	case [4]float32:
		putFloats(b, v[:]...)
	case ms3.Mat3:
		arr := v.Array()
		putColumns(b, f.Stride, 3, arr[:])
	case ms3.Mat4:
		arr := v.Array()
		putColumns(b, f.Stride, 4, arr[:])
	}
}

// putColumns writes the row major n×n matrix arr one column per stride.
func putColumns(b []byte, stride, n int, arr []float32) {
	if stride == 0 {
		stride = 16
	}
	for j := 0; j < n; j++ {
		col := b[j*stride:]
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint32(col[4*i:], math.Float32bits(arr[i*n+j]))
		}
	}
}

func putFloats(b []byte, fs ...float32) {
	for i, f := range fs {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
}
