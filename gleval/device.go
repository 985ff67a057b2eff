package gleval

import (
	"fmt"

	"github.com/soypat/gshader"
	"github.com/soypat/gshader/glbuild"
)

// Device describes the GPU of the current GL context.
type Device struct {
	Renderer    string
	Version     string
	GLSLVersion string
	// GLFW is the version string of the windowing library used to open the context.
	GLFW string
	// MaxTextureUnits is the number of samplers a fragment shader may use.
	MaxTextureUnits int
	// MaxVaryingVectors is the number of float4 interpolators between stages.
	MaxVaryingVectors int
	MaxVertexAttribs  int
}

// Limits returns the resource limits of the device. Zero values are left
// unlimited.
func (d Device) Limits() gshader.Limits {
	return gshader.Limits{
		MaxTextures:  d.MaxTextureUnits,
		MaxTexCoords: d.MaxVaryingVectors,
	}
}

// Target returns the default target for lang bounded by the device limits.
// Devices that report no limits keep the defaults.
func (d Device) Target(lang glbuild.Lang) gshader.Target {
	t := gshader.DefaultTarget(lang)
	if d.MaxTextureUnits > 0 {
		t.Limits.MaxTextures = d.MaxTextureUnits
	}
	if d.MaxVaryingVectors > 0 {
		t.Limits.MaxTexCoords = d.MaxVaryingVectors
	}
	return t
}

func (d Device) String() string {
	return fmt.Sprintf("%s (GL %s, GLSL %s): %d texture units, %d varyings, %d attributes",
		d.Renderer, d.Version, d.GLSLVersion, d.MaxTextureUnits, d.MaxVaryingVectors, d.MaxVertexAttribs)
}
