package gshaderaux

import (
	"fmt"
	"sort"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gshader"
	"github.com/soypat/gshader/glbuild"
)

// PackConstants packs the constants of a material into the vertex and pixel
// constant buffers of a generated shader. A constant may live in both
// stages. Constants the shader does not declare are an error.
func PackConstants(res gshader.Result, constants map[string][]float32) (vertex, pixel []byte, err error) {
	names := make([]string, 0, len(constants))
	for name := range constants {
		_, inVert := res.VertexConstants.Field(name)
		_, inPix := res.PixelConstants.Field(name)
		if !inVert && !inPix {
			return nil, nil, fmt.Errorf("constant %q not used by the shader", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	vertex, err = packStage(res.VertexConstants, names, constants)
	if err != nil {
		return nil, nil, fmt.Errorf("vertex constants: %w", err)
	}
	pixel, err = packStage(res.PixelConstants, names, constants)
	if err != nil {
		return nil, nil, fmt.Errorf("pixel constants: %w", err)
	}
	return vertex, pixel, nil
}

func packStage(l glbuild.Layout, names []string, constants map[string][]float32) ([]byte, error) {
	values := make(map[string]any)
	for _, name := range names {
		f, ok := l.Field(name)
		if !ok {
			continue
		}
		v, err := constantValue(f, constants[name])
		if err != nil {
			return nil, fmt.Errorf("constant %q: %w", name, err)
		}
		values[name] = v
	}
	return l.Pack(nil, values)
}

// constantValue converts flat floats into the Go value [glbuild.Layout.Pack]
// takes for field f.
func constantValue(f glbuild.Field, floats []float32) (any, error) {
	n := f.Type.Components()
	if n == 0 {
		return nil, fmt.Errorf("unsupported constant type %s", f.Type)
	}
	if f.ArraySize == 0 {
		if len(floats) != n {
			return nil, fmt.Errorf("%s wants %d values, got %d", f.Type, n, len(floats))
		}
		return elementValue(f.Type, floats)
	}
	if len(floats)%n != 0 || len(floats)/n > f.ArraySize {
		return nil, fmt.Errorf("%s[%d] wants up to %d values in multiples of %d, got %d", f.Type, f.ArraySize, n*f.ArraySize, n, len(floats))
	}
	switch f.Type {
	case glbuild.Float:
		return floats, nil
	case glbuild.Float2:
		var vecs [][2]float32
		for i := 0; i < len(floats); i += n {
			vecs = append(vecs, [2]float32(floats[i:i+n]))
		}
		return vecs, nil
	case glbuild.Float3:
		var vecs [][3]float32
		for i := 0; i < len(floats); i += n {
			vecs = append(vecs, [3]float32(floats[i:i+n]))
		}
		return vecs, nil
	case glbuild.Float4:
		var vecs [][4]float32
		for i := 0; i < len(floats); i += n {
			vecs = append(vecs, [4]float32(floats[i:i+n]))
		}
		return vecs, nil
	case glbuild.Float3x3:
		var mats []ms3.Mat3
		for i := 0; i < len(floats); i += n {
			mats = append(mats, ms3.NewMat3(floats[i:i+n]))
		}
		return mats, nil
	case glbuild.Float4x4:
		var mats []ms3.Mat4
		for i := 0; i < len(floats); i += n {
			mats = append(mats, ms3.NewMat4(floats[i:i+n]))
		}
		return mats, nil
	}
	return nil, fmt.Errorf("unsupported constant type %s", f.Type)
}

func elementValue(t glbuild.Type, v []float32) (any, error) {
	switch t {
	case glbuild.Float:
		return v[0], nil
	case glbuild.Float2:
		return [2]float32(v), nil
	case glbuild.Float3:
		return [3]float32(v), nil
	case glbuild.Float4:
		return [4]float32(v), nil
	case glbuild.Float3x3:
		return ms3.NewMat3(v), nil
	case glbuild.Float4x4:
		return ms3.NewMat4(v), nil
	}
	return nil, fmt.Errorf("unsupported constant type %s", t)
}
