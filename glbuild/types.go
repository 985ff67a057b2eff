package glbuild

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

// Type is the type of a language element. Spelling depends on the [Syntax].
type Type uint8

const (
	TypeUndefined Type = iota
	Float
	Float2
	Float3
	Float4
	Float3x3
	Float4x4
	Sampler2D
	SamplerCube
	numTypes
)

var typeStrings = [numTypes]string{
	TypeUndefined: "undefined",
	Float:         "float",
	Float2:        "float2",
	Float3:        "float3",
	Float4:        "float4",
	Float3x3:      "float3x3",
	Float4x4:      "float4x4",
	Sampler2D:     "sampler2D",
	SamplerCube:   "samplerCUBE",
}

func (t Type) String() string {
	if t >= numTypes {
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
	return typeStrings[t]
}

// IsSampler reports whether t is a texture sampler type.
func (t Type) IsSampler() bool { return t == Sampler2D || t == SamplerCube }

// IsMatrix reports whether t is a matrix type.
func (t Type) IsMatrix() bool { return t == Float3x3 || t == Float4x4 }

// Rows returns the number of vector rows of t. Vectors and scalars have one row.
func (t Type) Rows() int {
	switch t {
	case Float3x3:
		return 3
	case Float4x4:
		return 4
	}
	return 1
}

// Cols returns the number of scalar components per row of t.
func (t Type) Cols() int {
	switch t {
	case Float:
		return 1
	case Float2:
		return 2
	case Float3, Float3x3:
		return 3
	case Float4, Float4x4:
		return 4
	}
	return 0
}

// Components returns the number of scalar components in t.
func (t Type) Components() int { return t.Rows() * t.Cols() }

// TypeOf returns the shader type equivalent to the Go type tp.
// Slices and arrays return the element type and their length, zero for slices.
func TypeOf(tp reflect.Type) (t Type, arraySize int, err error) {
	if tp == nil {
		return TypeUndefined, 0, errors.New("nil element type")
	}
	switch tp.Kind() {
	case reflect.Slice:
		t, _, err = TypeOf(tp.Elem())
		return t, 0, err
	case reflect.Array:
		if tp == reflect.TypeOf([2]float32{}) || tp == reflect.TypeOf([3]float32{}) || tp == reflect.TypeOf([4]float32{}) {
			break // Vectors.
		}
		t, _, err = TypeOf(tp.Elem())
		return t, tp.Len(), err
	}
	switch tp {
	case reflect.TypeOf(float32(0)):
		t = Float
	case reflect.TypeOf(ms2.Vec{}), reflect.TypeOf([2]float32{}):
		t = Float2
	case reflect.TypeOf(ms3.Vec{}), reflect.TypeOf([3]float32{}):
		t = Float3
	case reflect.TypeOf([4]float32{}):
		t = Float4
	case reflect.TypeOf(ms3.Mat3{}):
		t = Float3x3
	case reflect.TypeOf(ms3.Mat4{}):
		t = Float4x4
	default:
		err = fmt.Errorf("equivalent type not implemented for %s", tp.String())
	}
	return t, 0, err
}
