//go:build !tinygo && cgo

package gleval

import (
	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/glgl/v4.6-core/glgl"
)

// QueryDevice opens a 1x1 hidden GLFW window and reads the limits of the GPU
// backing its context. The window is terminated before returning.
func QueryDevice() (Device, error) {
	_, terminate, err := glgl.InitWithCurrentWindow33(glgl.WindowConfig{
		Title:   "gshader",
		Version: [2]int{4, 6},
		Width:   1,
		Height:  1,
	})
	if err != nil {
		return Device{}, err
	}
	defer terminate()
	d := Device{
		Renderer:          gl.GoStr(gl.GetString(gl.RENDERER)),
		Version:           gl.GoStr(gl.GetString(gl.VERSION)),
		GLSLVersion:       gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)),
		GLFW:              glfw.GetVersionString(),
		MaxTextureUnits:   getInt(gl.MAX_TEXTURE_IMAGE_UNITS),
		MaxVaryingVectors: getInt(gl.MAX_VARYING_VECTORS),
		MaxVertexAttribs:  getInt(gl.MAX_VERTEX_ATTRIBS),
	}
	return d, glgl.Err()
}

func getInt(pname uint32) int {
	var v int32
	gl.GetIntegerv(pname, &v)
	return int(v)
}
