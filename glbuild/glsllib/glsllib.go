// Package glsllib embeds the shader libraries generated programs include.
// Pass [Resolve] as glbuild.Programmer.Resolve to inline them.
package glsllib

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/soypat/gshader/glbuild"
)

//go:embed gl/*.glsl *.hlsl
var libFS embed.FS

const includeRoot = "shaders/common/"

// Resolve returns the source of the library at an include path as printed
// by glbuild, i.e. "shaders/common/gl/torque.glsl".
func Resolve(path string) ([]byte, error) {
	name, ok := strings.CutPrefix(path, includeRoot)
	if !ok {
		return nil, fmt.Errorf("include %q outside %s", path, includeRoot)
	}
	src, err := fs.ReadFile(libFS, name)
	if err != nil {
		return nil, fmt.Errorf("shader library: %w", err)
	}
	return src, nil
}

// Source returns the source of library lib for the language.
//
//	src, err := glsllib.Source(glbuild.HLSL, "torque")
func Source(lang glbuild.Lang, lib string) ([]byte, error) {
	return Resolve(lang.Syntax().IncludePath(lib))
}
