// Package gshader generates vertex and pixel shader pairs from an ordered
// set of material features.
//
// Features are registered in a [FeatureManager] whose registration order is
// the priority order: for every request the [Generator] runs the vertex
// stage of each active feature in that order, then the pixel stage, and
// concatenates their statements in the same order. Features never reference
// each other. They share values through the element graphs of the
// generation [Context], looking up well-known names (see glbuild.Name) before
// creating them, so the first feature to need objTrans declares it and later
// features reuse it.
package gshader

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/soypat/gshader/glbuild"
)

// Target describes the language and hardware a shader is generated for.
type Target struct {
	Lang glbuild.Lang
	// ShaderModel gates code paths such as VPOS input and per pixel fog.
	ShaderModel float32
	Limits      Limits
}

// DefaultTarget returns a shader model 3 target for lang with its
// hardware limits.
func DefaultTarget(lang glbuild.Lang) Target {
	return Target{
		Lang:        lang,
		ShaderModel: 3,
		Limits:      Limits{MaxTextures: 16, MaxTexCoords: 8},
	}
}

// Limits are hardware resource limits. Zero means unlimited.
type Limits struct {
	// MaxTextures is the number of texture units.
	MaxTextures int
	// MaxTexCoords is the number of texture coordinate interpolators.
	MaxTexCoords int
}

// Check returns a *LimitError for each exceeded limit, joined.
func (l Limits) Check(r Resources) error {
	var errs []error
	if l.MaxTextures > 0 && r.NumTex > l.MaxTextures {
		errs = append(errs, &LimitError{Resource: "texture units", Have: r.NumTex, Max: l.MaxTextures})
	}
	if l.MaxTexCoords > 0 && r.NumTexReg > l.MaxTexCoords {
		errs = append(errs, &LimitError{Resource: "texcoord registers", Have: r.NumTexReg, Max: l.MaxTexCoords})
	}
	return errors.Join(errs...)
}

// LimitError is returned when a generated shader needs more of a hardware
// resource than the target has.
type LimitError struct {
	Resource string
	Have     int
	Max      int
}

func (e *LimitError) Error() string {
	return "shader needs " + strconv.Itoa(e.Have) + " " + e.Resource + ", target has " + strconv.Itoa(e.Max)
}

// Error is a configuration error found during generation: a missing
// precondition element, a type mismatch on a shared element, an unknown
// blend op or a connector slot requested twice. Such errors abort the
// generation; they are fixed by changing the feature set or registration.
type Error struct {
	// Feature is the name of the feature being processed, if any.
	Feature string
	Stage   glbuild.Stage
	Err     error
}

func (e *Error) Error() string {
	if e.Feature == "" {
		return "gshader: " + e.Err.Error()
	}
	return fmt.Sprintf("gshader: %s (%s stage): %s", e.Feature, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
