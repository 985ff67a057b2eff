package glbuild_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gshader/glbuild"
	"github.com/soypat/gshader/glbuild/glsllib"
)

func TestKeyIdent(t *testing.T) {
	for _, test := range []struct {
		key  glbuild.Key
		want string
	}{
		{key: glbuild.ObjTrans.Key(), want: "objTrans"},
		{key: glbuild.VertTexCoord.At(0), want: "vert_texCoord"},
		{key: glbuild.VertTexCoord.At(1), want: "vert_texCoord2"},
		{key: glbuild.DetailBlend.At(0), want: "detailBlend0"},
		{key: glbuild.DetailBlend.At(3), want: "detailBlend3"},
		{key: glbuild.LayerDetCoord.At(2), want: "detCoord2"},
		{key: glbuild.DetCoord.Key(), want: "detCoord"},
	} {
		got := test.key.String()
		if got != test.want {
			t.Errorf("key %+v: want %q, got %q", test.key, test.want, got)
		}
	}
}

func TestGraphLookupBeforeCreate(t *testing.T) {
	var g glbuild.Graph
	if g.Lookup(glbuild.ObjTrans) != nil {
		t.Fatal("empty graph found element")
	}
	v := g.Add(&glbuild.Var{Key: glbuild.ObjTrans.Key(), Type: glbuild.Float4x4, Usage: glbuild.UsageUniform})
	if g.Lookup(glbuild.ObjTrans) != v {
		t.Fatal("lookup did not return registered element")
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate element")
		}
	}()
	g.Add(&glbuild.Var{Key: glbuild.ObjTrans.Key(), Type: glbuild.Float4x4, Usage: glbuild.UsageUniform})
}

func TestConnectorSlots(t *testing.T) {
	c := glbuild.NewConnector(glbuild.UsageVarying)
	hpos := c.Element(glbuild.SemanticPosition, glbuild.Hpos.Key(), glbuild.Float4, 0)
	tex := c.Element(glbuild.SemanticTexCoord, glbuild.TexCoord.Key(), glbuild.Float2, 0)
	mat := c.Element(glbuild.SemanticTexCoord, glbuild.ViewToTangent.Key(), glbuild.Float3x3, 0)
	after := c.Element(glbuild.SemanticTexCoord, glbuild.OutWsPosition.Key(), glbuild.Float3, 0)
	col := c.Element(glbuild.SemanticColor, glbuild.VertColor.Key(), glbuild.Float4, 0)
	for _, test := range []struct {
		v    *glbuild.Var
		slot int
	}{
		{hpos, 0}, {tex, 0}, {mat, 1}, {after, 4}, {col, 0},
	} {
		if test.v.Slot != test.slot {
			t.Errorf("%s: want slot %d, got %d", test.v, test.slot, test.v.Slot)
		}
	}
	if got := c.Slots(glbuild.SemanticTexCoord); got != 5 {
		t.Errorf("want 5 texcoord slots used, got %d", got)
	}
	inst := glbuild.NewConnector(glbuild.UsageVertexInput)
	objTrans := inst.Element(glbuild.SemanticTexCoord, glbuild.InstObjectTrans.Key(), glbuild.Float4, 4)
	if objTrans.Slots() != 4 || inst.Slots(glbuild.SemanticTexCoord) != 4 {
		t.Errorf("float4[4] should take 4 slots, got %d", objTrans.Slots())
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic on slot reassignment")
		}
	}()
	c.Element(glbuild.SemanticTexCoord, glbuild.TexCoord.Key(), glbuild.Float2, 0)
}

func TestOpSyntax(t *testing.T) {
	col := &glbuild.Var{Key: glbuild.Col.Key(), Type: glbuild.Float4}
	diffuse := &glbuild.Var{Key: glbuild.DiffuseMap.Key(), Type: glbuild.Sampler2D, Usage: glbuild.UsageSampler}
	tex := &glbuild.Var{Key: glbuild.TexCoord.Key(), Type: glbuild.Float2, Usage: glbuild.UsageVarying}
	op := glbuild.Stmt("@ = $lerp( @, $tex2D(@, @), 0.5 );", glbuild.Decl(col), col, diffuse, tex)
	for _, test := range []struct {
		lang glbuild.Lang
		want string
	}{
		{glbuild.GLSL, "   vec4 col = mix( col, texture(diffuseMap, IN_texCoord), 0.5 );\n"},
		{glbuild.HLSL, "   float4 col = lerp( col, tex2D(diffuseMap, IN.texCoord), 0.5 );\n"},
	} {
		scope := glbuild.Scope{Syntax: test.lang.Syntax(), Stage: glbuild.StagePixel}
		got := string(op.AppendElement(nil, scope))
		if got != test.want {
			t.Errorf("%s: want %q, got %q", test.lang, test.want, got)
		}
	}
	// Vertex stage writes interpolators through OUT and the clip position
	// through gl_Position in GLSL.
	hpos := &glbuild.Var{Key: glbuild.Hpos.Key(), Type: glbuild.Float4, Usage: glbuild.UsageVarying}
	vscope := glbuild.Scope{Syntax: glbuild.GLSL.Syntax(), Stage: glbuild.StageVertex}
	got := string(glbuild.NewOp("@ = @", hpos, tex).AppendElement(nil, vscope))
	if got != "gl_Position = OUT_texCoord" {
		t.Errorf("unexpected vertex stage references %q", got)
	}
}

func TestOpArgumentMismatch(t *testing.T) {
	for _, fn := range []func(){
		func() { glbuild.NewOp("@ = @", glbuild.Raw("a")) },
		func() { glbuild.NewOp("@ = $notAWord(@)", glbuild.Raw("a"), glbuild.Raw("b")) },
		func() { glbuild.NewOp("@", nil) },
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			fn()
		}()
	}
}

func TestLayout(t *testing.T) {
	uniforms := []*glbuild.Var{
		{Key: glbuild.ModelView.Key(), Type: glbuild.Float4x4, Usage: glbuild.UsageUniform},
		{Key: glbuild.EyePosWorld.Key(), Type: glbuild.Float3, Usage: glbuild.UsageUniform, Sort: glbuild.SortPass},
		{Key: glbuild.AlphaTestValue.Key(), Type: glbuild.Float, Usage: glbuild.UsageUniform, Sort: glbuild.SortPass},
		{Key: glbuild.InLightPos.Key(), Type: glbuild.Float4, ArraySize: 3, Usage: glbuild.UsageUniform, Sort: glbuild.SortPass},
	}
	std := glbuild.NewLayout(glbuild.PackStd140, uniforms)
	regs := glbuild.NewLayout(glbuild.PackRegisters, uniforms)
	for _, test := range []struct {
		name     string
		std, reg int
	}{
		{"modelview", 0, 0},
		{"eyePosWorld", 64, 64},
		{"alphaTestValue", 76, 80},
		{"inLightPos", 80, 96},
	} {
		f, ok := std.Field(test.name)
		if !ok || f.Offset != test.std {
			t.Errorf("std140 %s: want offset %d, got %d (found=%v)", test.name, test.std, f.Offset, ok)
		}
		f, ok = regs.Field(test.name)
		if !ok || f.Offset != test.reg {
			t.Errorf("registers %s: want offset %d, got %d (found=%v)", test.name, test.reg, f.Offset, ok)
		}
	}
	if std.Size != 128 || regs.Size != 144 {
		t.Errorf("want sizes 128 and 144, got %d and %d", std.Size, regs.Size)
	}
	if regs.Register("inLightPos") != 6 {
		t.Errorf("want inLightPos at register 6, got %d", regs.Register("inLightPos"))
	}
}

func TestLayoutPack(t *testing.T) {
	uniforms := []*glbuild.Var{
		{Key: glbuild.ModelView.Key(), Type: glbuild.Float4x4, Usage: glbuild.UsageUniform},
		{Key: glbuild.EyePosWorld.Key(), Type: glbuild.Float3, Usage: glbuild.UsageUniform},
	}
	l := glbuild.NewLayout(glbuild.PackStd140, uniforms)
	buf, err := l.Pack(nil, map[string]any{
		"modelview":   ms3.ScalingMat4(ms3.Vec{X: 2, Y: 3, Z: 4}),
		"eyePosWorld": ms3.Vec{X: 5, Y: 6, Z: 7},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) != l.Size {
		t.Fatalf("want %d bytes, got %d", l.Size, len(buf))
	}
	at := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	for _, test := range []struct {
		off  int
		want float32
	}{
		{0, 2}, {20, 3}, {40, 4}, {60, 1}, {4, 0}, {64, 5}, {68, 6}, {72, 7},
	} {
		if got := at(test.off); got != test.want {
			t.Errorf("offset %d: want %v, got %v", test.off, test.want, got)
		}
	}
	_, err = l.Pack(nil, map[string]any{"eyePosWorld": float32(1)})
	if err == nil {
		t.Error("expected type mismatch error")
	}
	_, err = l.Pack(nil, map[string]any{"notAConstant": float32(1)})
	if err == nil {
		t.Error("expected unknown constant error")
	}
}

func TestWriteProgram(t *testing.T) {
	var g glbuild.Graph
	inputs := glbuild.NewConnector(glbuild.UsageVertexInput)
	outputs := glbuild.NewConnector(glbuild.UsageVarying)
	pos := inputs.Element(glbuild.SemanticPosition, glbuild.InPosition.Key(), glbuild.Float3, 0)
	hpos := outputs.Element(glbuild.SemanticPosition, glbuild.Hpos.Key(), glbuild.Float4, 0)
	tex := outputs.Element(glbuild.SemanticTexCoord, glbuild.TexCoord.Key(), glbuild.Float2, 0)
	mv := g.Add(&glbuild.Var{Key: glbuild.ModelView.Key(), Type: glbuild.Float4x4, Usage: glbuild.UsageUniform})
	var body glbuild.MultiLine
	body.Add(glbuild.Stmt("@ = $mul(@, $float4(@.xyz, 1));", hpos, mv, pos))
	body.Add(nil)
	body.Add(glbuild.Stmt("@ = @.xy;", tex, pos))
	prog := &glbuild.Program{
		Stage:    glbuild.StageVertex,
		Inputs:   inputs,
		Outputs:  outputs,
		Graph:    &g,
		Includes: []string{"torque", "torque"},
		Body:     body,
	}
	for _, test := range []struct {
		lang  glbuild.Lang
		decls []string
	}{
		{glbuild.HLSL, []string{
			"float3 position : POSITION;",
			"float2 texCoord : TEXCOORD0;",
			"uniform float4x4 modelview : register(C0)",
			"OUT.hpos = mul(modelview, float4(IN.position.xyz, 1));",
			`#include "shaders/common/torque.hlsl"`,
		}},
		{glbuild.GLSL, []string{
			"in vec3 IN_position;",
			"out vec2 _TEXCOORD0_;",
			"#define OUT_texCoord _TEXCOORD0_",
			"uniform mat4 modelview;",
			"gl_Position = tMul(modelview, vec4(IN_position.xyz, 1));",
			`#include "shaders/common/gl/torque.glsl"`,
			`#include "shaders/common/gl/hlslCompat.glsl"`,
		}},
	} {
		p := glbuild.NewDefaultProgrammer()
		var buf bytes.Buffer
		n, err := p.WriteProgram(&buf, test.lang.Syntax(), prog)
		if err != nil {
			t.Fatal(err)
		} else if n != buf.Len() {
			t.Fatal("written length mismatch")
		}
		src := buf.String()
		for _, decl := range test.decls {
			if c := strings.Count(src, decl); c != 1 {
				t.Errorf("\n%s\n%s: want one %q, got %d", src, test.lang, decl, c)
			}
		}
	}
}

func TestWriteProgramConflictingNames(t *testing.T) {
	var g glbuild.Graph
	// Non indexed names ignore the key index when printed.
	g.Add(&glbuild.Var{Key: glbuild.ModelView.At(0), Type: glbuild.Float4x4, Usage: glbuild.UsageUniform})
	g.Add(&glbuild.Var{Key: glbuild.ModelView.At(1), Type: glbuild.Float3, Usage: glbuild.UsageUniform})
	prog := &glbuild.Program{
		Stage:  glbuild.StagePixel,
		Inputs: glbuild.NewConnector(glbuild.UsageVarying),
		Graph:  &g,
		Body:   glbuild.Raw("   float4 col = 1;\n"),
	}
	var buf bytes.Buffer
	_, err := glbuild.NewDefaultProgrammer().WriteProgram(&buf, glbuild.GLSL.Syntax(), prog)
	if err == nil {
		t.Fatalf("\n%s\nwant conflicting declaration error", buf.String())
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written on conflict")
	}
}

func TestWriteProgramInlineIncludes(t *testing.T) {
	var g glbuild.Graph
	prog := &glbuild.Program{
		Stage:    glbuild.StagePixel,
		Inputs:   glbuild.NewConnector(glbuild.UsageVarying),
		Graph:    &g,
		Includes: []string{"torque"},
		Body:     glbuild.Raw("   float4 col = 1;\n"),
	}
	p := glbuild.NewDefaultProgrammer()
	p.Resolve = glsllib.Resolve
	var buf bytes.Buffer
	_, err := p.WriteProgram(&buf, glbuild.HLSL.Syntax(), prog)
	if err != nil {
		t.Fatal(err)
	}
	src := buf.String()
	if strings.Contains(src, "#include") {
		t.Errorf("\n%s\nincludes should be inlined", src)
	}
	if strings.Count(src, "float4 hdrEncode(") != 1 {
		t.Errorf("\n%s\nwant library source inlined once", src)
	}
	if strings.Count(src, "OUT.col = col;") != 1 {
		t.Errorf("\n%s\nmissing pixel closer", src)
	}
	p.Resolve = func(path string) ([]byte, error) { return glsllib.Resolve("nowhere/" + path) }
	if _, err = p.WriteProgram(&buf, glbuild.HLSL.Syntax(), prog); err == nil {
		t.Error("expected include resolution error")
	}
}

func TestTypeOf(t *testing.T) {
	for _, test := range []struct {
		v     any
		want  glbuild.Type
		array int
	}{
		{float32(1), glbuild.Float, 0},
		{ms3.Vec{}, glbuild.Float3, 0},
		{[4]float32{}, glbuild.Float4, 0},
		{ms3.Mat3{}, glbuild.Float3x3, 0},
		{[3][4]float32{}, glbuild.Float4, 3},
		{[]ms3.Vec{}, glbuild.Float3, 0},
	} {
		got, n, err := glbuild.TypeOf(reflect.TypeOf(test.v))
		if err != nil {
			t.Errorf("%T: %s", test.v, err)
		} else if got != test.want || n != test.array {
			t.Errorf("%T: want %s[%d], got %s[%d]", test.v, test.want, test.array, got, n)
		}
	}
	if _, _, err := glbuild.TypeOf(reflect.TypeOf(int64(1))); err == nil {
		t.Error("expected error for int64")
	}
}

func TestAppendFloat(t *testing.T) {
	for _, test := range []struct {
		v    float32
		want string
	}{
		{1, "1.0"}, {0.5, "0.5"}, {-2.25, "-2.25"}, {0.0001, "0.0001"},
	} {
		got := string(glbuild.AppendFloat(nil, '-', '.', test.v))
		if got != test.want {
			t.Errorf("want %q, got %q", test.want, got)
		}
	}
}

func TestMultiLineSkipsEmpty(t *testing.T) {
	var nilOp *glbuild.Op
	var nilVar *glbuild.Var
	var ml glbuild.MultiLine
	ml.Add(nil)
	ml.Add(nilOp)
	ml.Add(nilVar)
	ml.Add(glbuild.MultiLine{nilOp, nil})
	if len(ml) != 0 || !glbuild.IsEmpty(ml) {
		t.Fatalf("empty elements added: %d", len(ml))
	}
	ml.Add(glbuild.FloatLit(0.5))
	if glbuild.IsEmpty(ml) {
		t.Fatal("literal is not empty")
	}
	scope := glbuild.Scope{Syntax: glbuild.GLSL.Syntax(), Stage: glbuild.StagePixel}
	if got := string(ml.AppendElement(nil, scope)); got != "0.5" {
		t.Errorf("got %q", got)
	}
}
