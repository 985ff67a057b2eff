// Package gleval evaluates the color arithmetic emitted by generated shaders
// on the CPU. It is a reference for checking blend, fog and HDR encoding
// results against known values without a GPU.
//
// The package also queries the resource limits of the GPU in use, see
// [QueryDevice].
package gleval

import (
	"errors"
	"fmt"

	math "github.com/chewxy/math32"
	"github.com/soypat/geometry/ms1"
	"github.com/soypat/gshader"
)

var (
	errEmptyBuffers         = errors.New("empty buffers")
	errMismatchBufferLength = errors.New("color buffer length mismatch")
)

// Color is a linear RGBA color as held by a float4 shader value.
type Color struct {
	R, G, B, A float32
}

// Gray returns an opaque gray color of intensity v.
func Gray(v float32) Color { return Color{R: v, G: v, B: v, A: 1} }

// RGBA implements [image/color.Color]. Components are clamped to [0,1].
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(Saturate(c.R)*0xffff + 0.5)
	g = uint32(Saturate(c.G)*0xffff + 0.5)
	b = uint32(Saturate(c.B)*0xffff + 0.5)
	a = uint32(Saturate(c.A)*0xffff + 0.5)
	// Premultiplied.
	return r * a / 0xffff, g * a / 0xffff, b * a / 0xffff, a
}

func (c Color) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", c.R, c.G, c.B, c.A)
}

func (c Color) add(d Color) Color { return Color{c.R + d.R, c.G + d.G, c.B + d.B, c.A + d.A} }
func (c Color) sub(d Color) Color { return Color{c.R - d.R, c.G - d.G, c.B - d.B, c.A - d.A} }
func (c Color) mul(d Color) Color { return Color{c.R * d.R, c.G * d.G, c.B * d.B, c.A * d.A} }
func (c Color) scale(f float32) Color {
	return Color{c.R * f, c.G * f, c.B * f, c.A * f}
}

// lerpRGB interpolates the color channels towards d and keeps the alpha of c.
func (c Color) lerpRGB(d Color, t float32) Color {
	return Color{
		R: ms1.Interp(c.R, d.R, t),
		G: ms1.Interp(c.G, d.G, t),
		B: ms1.Interp(c.B, d.B, t),
		A: c.A,
	}
}

// Saturate clamps v to [0,1].
func Saturate(v float32) float32 { return ms1.Clamp(v, 0, 1) }

// Blend combines src into dst the way [gshader.Context.AssignColor] emits
// it. lerp is only used by [gshader.BlendLerpAlpha]; its zero value
// means src.
func Blend(op gshader.BlendOp, dst, src Color, lerp *Color) (Color, error) {
	switch op {
	case gshader.BlendNone:
		return src, nil
	case gshader.BlendAdd:
		return dst.add(src), nil
	case gshader.BlendSub:
		return dst.sub(src), nil
	case gshader.BlendMul:
		return dst.mul(src), nil
	case gshader.BlendAddAlpha:
		return dst.add(src.scale(src.A)), nil
	case gshader.BlendLerpAlpha:
		t := src.A
		if lerp != nil {
			t = lerp.A
		}
		return dst.lerpRGB(src, t), nil
	case gshader.BlendToneMap:
		return Color{
			R: 1 - math.Exp(-dst.R*src.R),
			G: 1 - math.Exp(-dst.G*src.G),
			B: 1 - math.Exp(-dst.B*src.B),
			A: 1 - math.Exp(-dst.A*src.A),
		}, nil
	}
	return dst, fmt.Errorf("unknown blend op %s", op)
}

// Layer is one color contribution of a pass applied over a buffer of
// pixels. Src and Lerp hold one value per pixel or a single value used for
// every pixel.
type Layer struct {
	Op   gshader.BlendOp
	Src  []Color
	Lerp []Color
}

func (l Layer) at(i int) (src Color, lerp *Color) {
	src = l.Src[0]
	if len(l.Src) > 1 {
		src = l.Src[i]
	}
	if len(l.Lerp) == 1 {
		lerp = &l.Lerp[0]
	} else if len(l.Lerp) > 1 {
		lerp = &l.Lerp[i]
	}
	return src, lerp
}

func (l Layer) validate(n int) error {
	if len(l.Src) == 0 {
		return errEmptyBuffers
	} else if len(l.Src) != 1 && len(l.Src) != n {
		return errMismatchBufferLength
	} else if len(l.Lerp) > 1 && len(l.Lerp) != n {
		return errMismatchBufferLength
	}
	return nil
}

// Evaluate applies layers in order over dst. The first layer assigns the
// color whatever its op, as the first assignment in a pixel shader
// declares it.
func Evaluate(dst []Color, layers []Layer) error {
	if len(dst) == 0 {
		return errEmptyBuffers
	}
	for i, l := range layers {
		err := l.validate(len(dst))
		if err != nil {
			return fmt.Errorf("layer %d (%s): %w", i, l.Op, err)
		}
	}
	for i := range dst {
		for il, l := range layers {
			src, lerp := l.at(i)
			if il == 0 {
				dst[i] = src
				continue
			}
			c, err := Blend(l.Op, dst[i], src, lerp)
			if err != nil {
				return fmt.Errorf("layer %d: %w", il, err)
			}
			dst[i] = c
		}
	}
	return nil
}
