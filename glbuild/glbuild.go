// Package glbuild implements the language layer of procedural shader
// generation: the element graph features share values through, the stage
// connectors that assign interpolator registers, statement templates and the
// per-language syntax tables used to print GLSL and HLSL programs.
package glbuild

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"slices"
	"strconv"
)

// Program is the generated content of one shader stage ready to be printed.
type Program struct {
	Stage Stage
	// Inputs is the vertex stream for the vertex stage and the
	// interpolators for the pixel stage.
	Inputs *Connector
	// Outputs is the interpolator connector written by the vertex stage.
	// Must be nil for the pixel stage.
	Outputs *Connector
	// Graph holds the stage's uniforms, samplers and locals.
	Graph *Graph
	// Includes lists shader library names, see [Syntax.IncludePath].
	Includes []string
	// Body is the main function body in priority order.
	Body Element
}

// Programmer prints shader programs.
type Programmer struct {
	scratch []byte
	// names maps identifier hashes to declaration hashes for checking conflicts.
	names map[uint64]uint64
	// Resolve, when set, returns the source of an include path so it is
	// inlined into the program instead of #included.
	Resolve func(path string) ([]byte, error)
}

// NewDefaultProgrammer returns a Programmer with reasonable default parameters.
func NewDefaultProgrammer() *Programmer {
	return &Programmer{
		scratch: make([]byte, 0, 4096),
		names:   make(map[uint64]uint64),
	}
}

// Uniforms returns the stage uniforms in declaration order: sorted by
// [ConstSort] and then by creation order.
func Uniforms(g *Graph) []*Var {
	uniforms := g.AppendUsage(nil, UsageUniform)
	slices.SortStableFunc(uniforms, func(a, b *Var) int { return int(a.Sort) - int(b.Sort) })
	return uniforms
}

// Samplers returns the stage samplers ordered by texture unit.
func Samplers(g *Graph) []*Var {
	samplers := g.AppendUsage(nil, UsageSampler)
	slices.SortStableFunc(samplers, func(a, b *Var) int { return a.Slot - b.Slot })
	return samplers
}

// LayoutOf returns the constant layout of the graph's uniforms for the syntax.
func LayoutOf(s *Syntax, g *Graph) Layout {
	pk := PackStd140
	if s.Lang == HLSL {
		pk = PackRegisters
	}
	return NewLayout(pk, Uniforms(g))
}

// WriteProgram prints prog in the language of syntax s to w.
func (p *Programmer) WriteProgram(w io.Writer, s *Syntax, prog *Program) (int, error) {
	if prog.Stage == StagePixel && prog.Outputs != nil {
		return 0, fmt.Errorf("pixel stage program cannot write interpolators")
	}
	if err := p.checkNames(prog); err != nil {
		return 0, err
	}
	b := p.scratch[:0]
	b = p.appendHeader(b, s)
	libs := prog.Includes
	if s.Lang == GLSL {
		libs = append([]string{"hlslCompat"}, libs...)
	}
	b, err := p.appendIncludes(b, s, libs)
	if err != nil {
		return 0, err
	}
	switch s.Lang {
	case HLSL:
		b = appendHLSL(b, s, prog)
	default:
		b = appendGLSL(b, s, prog)
	}
	p.scratch = b
	return w.Write(b)
}

func (p *Programmer) appendHeader(b []byte, s *Syntax) []byte {
	const bar = "//*****************************************************************************\n"
	b = append(b, bar...)
	b = append(b, "// gshader -- "...)
	b = append(b, s.Lang.String()...)
	b = append(b, " procedural shader\n"...)
	return append(b, bar...)
}

func (p *Programmer) appendIncludes(b []byte, s *Syntax, libs []string) ([]byte, error) {
	if len(libs) == 0 {
		return append(b, '\n'), nil
	}
	clear(p.names)
	b = append(b, "\n// Dependencies:\n"...)
	for _, lib := range libs {
		h := hash([]byte(lib), 0)
		if _, dup := p.names[h]; dup {
			continue
		}
		p.names[h] = h
		path := s.IncludePath(lib)
		if p.Resolve == nil {
			b = append(b, "#include \""...)
			b = append(b, path...)
			b = append(b, "\"\n"...)
			continue
		}
		src, err := p.Resolve(path)
		if err != nil {
			return b, fmt.Errorf("resolving include %q: %w", path, err)
		}
		b = append(b, "// "...)
		b = append(b, path...)
		b = append(b, '\n')
		b = append(b, bytes.TrimSpace(src)...)
		b = append(b, '\n')
	}
	return append(b, '\n'), nil
}

// checkNames rejects distinct elements of one stage that print the same
// unqualified identifier.
func (p *Programmer) checkNames(prog *Program) error {
	clear(p.names)
	for _, v := range prog.Graph.Elements() {
		ident := v.Key.AppendIdent(p.scratch[:0])
		h := hash(ident, 0)
		declHash := hash([]byte{byte(v.Type), byte(v.Usage)}, h)
		if old, ok := p.names[h]; ok && old != declHash {
			return fmt.Errorf("conflicting %s stage declarations of %q", prog.Stage, ident)
		}
		p.names[h] = declHash
	}
	return nil
}

const mainComment = "//-----------------------------------------------------------------------------\n" +
	"// Main\n" +
	"//-----------------------------------------------------------------------------\n"

func appendHLSL(b []byte, s *Syntax, prog *Program) []byte {
	scope := Scope{Syntax: s, Stage: prog.Stage}
	inName, outName := "VertData", "ConnectData"
	if prog.Stage == StagePixel {
		inName, outName = "ConnectData", "Fragout"
	}
	b = appendHLSLStruct(b, s, inName, prog.Inputs, prog.Stage)
	if prog.Outputs != nil {
		b = appendHLSLStruct(b, s, outName, prog.Outputs, StageVertex)
	} else {
		b = append(b, "struct Fragout\n{\n"...)
		b = append(b, "   float4 col : COLOR0;\n"...)
		if prog.Graph.Lookup(Col1) != nil {
			b = append(b, "   float4 col1 : COLOR1;\n"...)
		}
		b = append(b, "};\n\n\n"...)
	}
	b = append(b, mainComment...)
	b = append(b, outName...)
	b = append(b, " main( "...)
	b = append(b, inName...)
	b = append(b, " IN"...)
	const paramIndent = "\n                  "
	for _, v := range Samplers(prog.Graph) {
		b = append(b, ","+paramIndent+"uniform "...)
		b = s.appendDecl(b, v)
		b = append(b, " : register(S"...)
		b = appendInt(b, v.Slot)
		b = append(b, ')')
	}
	layout := NewLayout(PackRegisters, Uniforms(prog.Graph))
	for _, v := range Uniforms(prog.Graph) {
		b = append(b, ","+paramIndent+"uniform "...)
		b = s.appendDecl(b, v)
		b = append(b, " : register(C"...)
		b = appendInt(b, layout.Register(v.Ident()))
		b = append(b, ')')
	}
	b = append(b, "\n)\n{\n   "...)
	b = append(b, outName...)
	b = append(b, " OUT;\n\n"...)
	if prog.Body != nil {
		b = prog.Body.AppendElement(b, scope)
	}
	b = append(b, '\n')
	if prog.Stage == StagePixel {
		b = append(b, "   OUT.col = col;\n"...)
		if prog.Graph.Lookup(Col1) != nil {
			b = append(b, "   OUT.col1 = col1;\n"...)
		}
	}
	b = append(b, "   return OUT;\n}\n"...)
	return b
}

func appendHLSLStruct(b []byte, s *Syntax, name string, c *Connector, writer Stage) []byte {
	b = append(b, "struct "...)
	b = append(b, name...)
	b = append(b, "\n{\n"...)
	for _, v := range c.Elements() {
		if !stageDeclares(v, writer) {
			continue
		}
		b = append(b, "   "...)
		b = s.appendDecl(b, v)
		b = append(b, " : "...)
		b = s.appendSemantic(b, v)
		b = append(b, ";\n"...)
	}
	return append(b, "};\n\n\n"...)
}

// stageDeclares reports whether a connector element appears in the
// interface of stage: the vertex stage never writes VPOS and the pixel stage
// never reads the clip space position.
func stageDeclares(v *Var, stage Stage) bool {
	if v.Usage != UsageVarying {
		return true
	}
	switch v.Semantic {
	case SemanticVPos:
		return stage == StagePixel
	case SemanticPosition:
		return stage == StageVertex
	}
	return true
}

func appendGLSL(b []byte, s *Syntax, prog *Program) []byte {
	scope := Scope{Syntax: s, Stage: prog.Stage}
	b = appendGLSLInterface(b, s, prog.Inputs, prog.Stage, "in")
	if prog.Outputs != nil {
		b = appendGLSLInterface(b, s, prog.Outputs, StageVertex, "out")
	}
	for _, v := range Uniforms(prog.Graph) {
		b = append(b, "uniform "...)
		b = s.appendDecl(b, v)
		b = append(b, ";\n"...)
	}
	for _, v := range Samplers(prog.Graph) {
		b = append(b, "uniform "...)
		b = s.appendDecl(b, v)
		b = append(b, ";\n"...)
	}
	b = append(b, "\n\n"...)
	b = append(b, mainComment...)
	b = append(b, "void main()\n{\n"...)
	if prog.Body != nil {
		b = prog.Body.AppendElement(b, scope)
	}
	b = append(b, '\n')
	if prog.Stage == StagePixel {
		if prog.Graph.Lookup(Col1) != nil {
			b = append(b, "   gl_FragData[0] = col;\n   gl_FragData[1] = col1;\n"...)
		} else {
			b = append(b, "   gl_FragColor = col;\n"...)
		}
	}
	return append(b, "}\n"...)
}

// appendGLSLInterface declares connector elements. Vertex stream inputs are
// declared by qualified name. Interpolators are declared by slot name and
// aliased with #define so both stages agree on locations:
//
//	out vec2 _TEXCOORD0_;
//	#define OUT_texCoord _TEXCOORD0_
func appendGLSLInterface(b []byte, s *Syntax, c *Connector, stage Stage, qualifier string) []byte {
	for _, v := range c.Elements() {
		if !stageDeclares(v, stage) || v.Usage == UsageVarying && v.Key.Name == Hpos {
			continue
		}
		b = append(b, qualifier...)
		b = append(b, ' ')
		b = append(b, s.TypeName(v.Type)...)
		b = append(b, ' ')
		if v.Usage == UsageVertexInput {
			b = s.appendRef(b, v, stage)
			if v.ArraySize > 0 {
				b = append(b, '[')
				b = appendInt(b, v.ArraySize)
				b = append(b, ']')
			}
			b = append(b, ";\n"...)
			continue
		}
		b = append(b, '_')
		b = s.appendSemantic(b, v)
		b = append(b, "_;\n#define "...)
		b = s.appendRef(b, v, stage)
		b = append(b, " _"...)
		b = s.appendSemantic(b, v)
		b = append(b, "_\n"...)
	}
	return b
}

func appendInt(b []byte, v int) []byte { return strconv.AppendInt(b, int64(v), 10) }

// FloatLit returns a literal float element.
func FloatLit(v float32) Element { return Raw(AppendFloat(nil, '-', '.', v)) }

const decimalDigits = 9

// AppendFloat appends v with trailing zeroes trimmed. neg and decimal
// replace the minus sign and decimal point.
func AppendFloat(b []byte, neg, decimal byte, v float32) []byte {
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'f', decimalDigits, 32)
	idx := bytes.IndexByte(b[start:], '.')
	if decimal != '.' && idx >= 0 {
		b[start+idx] = decimal
	}
	if b[start] == '-' {
		b[start] = neg
	}
	end := len(b)
	for i := len(b) - 1; idx >= 0 && i > idx+start+1 && b[i] == '0'; i-- {
		end--
	}
	return b[:end]
}

func hash(b []byte, in uint64) uint64 {
	x := in
	for len(b) >= 8 {
		x ^= binary.LittleEndian.Uint64(b)
		x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
		x = (x ^ (x >> 27)) * 0x94d049bb133111eb
		x ^= x >> 31
		b = b[8:]
	}
	if len(b) > 0 {
		var buf [8]byte
		copy(buf[:], b)
		x ^= binary.LittleEndian.Uint64(buf[:])
		x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
		x = (x ^ (x >> 27)) * 0x94d049bb133111eb
		x ^= x >> 31
	}
	return x
}
