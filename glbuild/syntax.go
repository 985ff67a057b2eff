package glbuild

import (
	"fmt"
	"strings"
)

// Lang is a target shading language.
type Lang uint8

const (
	GLSL Lang = iota
	HLSL
)

func (l Lang) String() string {
	switch l {
	case GLSL:
		return "GLSL"
	case HLSL:
		return "HLSL"
	}
	return fmt.Sprintf("Lang(%d)", uint8(l))
}

// ParseLang parses a language name, case insensitive.
func ParseLang(s string) (Lang, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "glsl", "gl", "opengl":
		return GLSL, nil
	case "hlsl", "d3d", "direct3d":
		return HLSL, nil
	}
	return 0, fmt.Errorf("unknown shading language %q", s)
}

// Syntax returns the syntax table of the language. It panics for an unknown language.
func (l Lang) Syntax() *Syntax {
	switch l {
	case GLSL:
		return &glslSyntax
	case HLSL:
		return &hlslSyntax
	}
	panic("unknown shading language " + l.String())
}

// Syntax is the table of spellings and conventions that differ between
// shading languages. Generation code is written once against it.
type Syntax struct {
	Lang  Lang
	types [numTypes]string
	// words maps template words to their spelling, see [Op].
	words map[string]string
	// memberSep joins struct and member name: IN.texCoord vs IN_texCoord.
	memberSep string
	// positionOut overrides the vertex stage reference to the clip position.
	positionOut string
	includeDir  string
	includeExt  string
}

const (
	inStruct  = "IN"
	outStruct = "OUT"
)

var glslSyntax = Syntax{
	Lang: GLSL,
	types: [numTypes]string{
		Float:       "float",
		Float2:      "vec2",
		Float3:      "vec3",
		Float4:      "vec4",
		Float3x3:    "mat3",
		Float4x4:    "mat4",
		Sampler2D:   "sampler2D",
		SamplerCube: "samplerCube",
	},
	words: map[string]string{
		"tex2D":      "texture",
		"texCUBE":    "texture",
		"lerp":       "mix",
		"frac":       "fract",
		"saturate":   "saturate",
		"mul":        "tMul",
		"ddx":        "dFdx",
		"ddy":        "dFdy",
		"rsqrt":      "inversesqrt",
		"float2":     "vec2",
		"float3":     "vec3",
		"float4":     "vec4",
		"float3x3":   "mat3",
		"float4x4":   "mat4",
		"toFloat3x3": "mat3",
	},
	memberSep:   "_",
	positionOut: "gl_Position",
	includeDir:  "shaders/common/gl/",
	includeExt:  ".glsl",
}

var hlslSyntax = Syntax{
	Lang: HLSL,
	types: [numTypes]string{
		Float:       "float",
		Float2:      "float2",
		Float3:      "float3",
		Float4:      "float4",
		Float3x3:    "float3x3",
		Float4x4:    "float4x4",
		Sampler2D:   "sampler2D",
		SamplerCube: "samplerCUBE",
	},
	words: map[string]string{
		"tex2D":      "tex2D",
		"texCUBE":    "texCUBE",
		"lerp":       "lerp",
		"frac":       "frac",
		"saturate":   "saturate",
		"mul":        "mul",
		"ddx":        "ddx",
		"ddy":        "ddy",
		"rsqrt":      "rsqrt",
		"float2":     "float2",
		"float3":     "float3",
		"float4":     "float4",
		"float3x3":   "float3x3",
		"float4x4":   "float4x4",
		"toFloat3x3": "(float3x3)",
	},
	memberSep:  ".",
	includeDir: "shaders/common/",
	includeExt: ".hlsl",
}

// TypeName returns the spelling of t.
func (s *Syntax) TypeName(t Type) string {
	if t >= numTypes {
		return ""
	}
	return s.types[t]
}

// Word returns the spelling of a template word.
func (s *Syntax) Word(w string) (string, bool) {
	spelling, ok := s.words[w]
	return spelling, ok
}

// IncludePath returns the include path of the shader library lib, i.e.
// "torque" is "shaders/common/torque.hlsl" in HLSL.
func (s *Syntax) IncludePath(lib string) string {
	return s.includeDir + lib + s.includeExt
}

func (s *Syntax) appendRef(b []byte, v *Var, stage Stage) []byte {
	switch v.Usage {
	case UsageVertexInput:
		b = append(b, inStruct...)
		b = append(b, s.memberSep...)
	case UsageVarying:
		if stage == StageVertex && v.Key.Name == Hpos && s.positionOut != "" {
			return append(b, s.positionOut...)
		}
		if stage == StageVertex {
			b = append(b, outStruct...)
		} else {
			b = append(b, inStruct...)
		}
		b = append(b, s.memberSep...)
	}
	return v.Key.AppendIdent(b)
}

func (s *Syntax) appendDecl(b []byte, v *Var) []byte {
	b = append(b, s.TypeName(v.Type)...)
	b = append(b, ' ')
	b = v.Key.AppendIdent(b)
	if v.ArraySize > 0 {
		b = append(b, '[')
		b = appendInt(b, v.ArraySize)
		b = append(b, ']')
	}
	return b
}

func (s *Syntax) appendSemantic(b []byte, v *Var) []byte {
	b = append(b, v.Semantic.String()...)
	if v.Semantic.numbered() {
		b = appendInt(b, v.Slot)
	}
	return b
}
