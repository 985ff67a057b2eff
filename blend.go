package gshader

import (
	"fmt"
	"strings"
)

// BlendOp is how a color contribution combines with the accumulated output color.
type BlendOp uint8

const (
	// BlendNone assigns the contribution.
	BlendNone BlendOp = iota
	BlendAdd
	BlendSub
	BlendMul
	// BlendAddAlpha adds the contribution weighted by its alpha.
	BlendAddAlpha
	// BlendLerpAlpha interpolates the color towards the contribution by the
	// alpha of the lerp element.
	BlendLerpAlpha
	// BlendToneMap computes 1 - exp(-1 * color * contribution).
	BlendToneMap
	numBlendOps
)

var blendOpNames = [numBlendOps]string{
	BlendNone:      "None",
	BlendAdd:       "Add",
	BlendSub:       "Sub",
	BlendMul:       "Mul",
	BlendAddAlpha:  "AddAlpha",
	BlendLerpAlpha: "LerpAlpha",
	BlendToneMap:   "ToneMap",
}

func (op BlendOp) String() string {
	if op >= numBlendOps {
		return fmt.Sprintf("BlendOp(%d)", uint8(op))
	}
	return blendOpNames[op]
}

// ParseBlendOp parses a blend op name, case insensitive.
func ParseBlendOp(s string) (BlendOp, error) {
	for op := BlendNone; op < numBlendOps; op++ {
		if strings.EqualFold(blendOpNames[op], s) {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown blend op %q", s)
}

// OutputTarget selects the pixel shader output a color is written to.
type OutputTarget uint8

const (
	TargetColor OutputTarget = iota
	RenderTarget1
	RenderTarget2
	RenderTarget3
)

func (t OutputTarget) String() string {
	if t == TargetColor {
		return "TargetColor"
	}
	return fmt.Sprintf("RenderTarget%d", uint8(t))
}
