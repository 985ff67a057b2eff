package gshader

import (
	"github.com/soypat/gshader/glbuild"
)

// The helpers below are shared by features of both languages. Each one
// looks its result up by name first and only declares and computes it when
// absent, appending the computing statements to meta.

var (
	stmt = glbuild.Stmt
	decl = glbuild.Decl
)

// ObjTrans returns the object to world transform. With instancing it is
// read from four texture coordinate slots of the vertex stream.
func (ctx *Context) ObjTrans(meta *glbuild.MultiLine) *glbuild.Var {
	if v := ctx.Lookup(glbuild.ObjTrans); v != nil {
		return v
	}
	if !ctx.instancing() {
		return ctx.Uniform(glbuild.ObjTrans.Key(), glbuild.Float4x4, glbuild.SortPrimitive)
	}
	inst := ctx.InstanceElement(glbuild.InstObjectTrans.Key(), "objTrans", glbuild.Float4, 4)
	obj := ctx.NewLocal(glbuild.ObjTrans.Key(), glbuild.Float4x4)
	meta.Add(stmt("@ = $float4x4( @[0], @[1], @[2], @[3] ); // Instancing!", decl(obj), inst, inst, inst, inst))
	return obj
}

// WorldView returns the object to view transform.
func (ctx *Context) WorldView(meta *glbuild.MultiLine) *glbuild.Var {
	if v := ctx.Lookup(glbuild.WorldViewOnly); v != nil {
		return v
	}
	if !ctx.instancing() {
		return ctx.Uniform(glbuild.WorldViewOnly.Key(), glbuild.Float4x4, glbuild.SortPrimitive)
	}
	objTrans := ctx.ObjTrans(meta)
	worldToCamera := ctx.Uniform(glbuild.WorldToCamera.Key(), glbuild.Float4x4, glbuild.SortPass)
	wv := ctx.NewLocal(glbuild.WorldViewOnly.Key(), glbuild.Float4x4)
	meta.Add(stmt("@ = $mul( @, @ ); // Instancing!", decl(wv), worldToCamera, objTrans))
	return wv
}

// InvWorldView returns the view to object transform. With instancing it is
// the transposed rotation of the world view transform, a float3x3.
func (ctx *Context) InvWorldView(meta *glbuild.MultiLine) *glbuild.Var {
	if v := ctx.Lookup(glbuild.ViewToObj); v != nil {
		return v
	}
	if !ctx.instancing() {
		return ctx.Uniform(glbuild.ViewToObj.Key(), glbuild.Float4x4, glbuild.SortPrimitive)
	}
	wv := ctx.WorldView(meta)
	v := ctx.NewLocal(glbuild.ViewToObj.Key(), glbuild.Float3x3)
	meta.Add(stmt("@ = transpose( $toFloat3x3( @ ) ); // Instancing!", decl(v), wv))
	return v
}

// ModelView returns the object to clip space transform.
func (ctx *Context) ModelView(meta *glbuild.MultiLine) *glbuild.Var {
	if v := ctx.Lookup(glbuild.ModelView); v != nil {
		return v
	}
	if !ctx.instancing() {
		return ctx.Uniform(glbuild.ModelView.Key(), glbuild.Float4x4, glbuild.SortPrimitive)
	}
	objTrans := ctx.ObjTrans(meta)
	viewProj := ctx.Uniform(glbuild.ViewProj.Key(), glbuild.Float4x4, glbuild.SortPass)
	mv := ctx.NewLocal(glbuild.ModelView.Key(), glbuild.Float4x4)
	meta.Add(stmt("@ = $mul( @, @ ); // Instancing!", decl(mv), viewProj, objTrans))
	return mv
}

// OutputTargetVar returns the color local written to target or nil if no
// feature assigned it yet.
func (ctx *Context) OutputTargetVar(target OutputTarget) *glbuild.Var {
	return ctx.Pixel.Lookup(ctx.outputTargetName(target))
}

func (ctx *Context) outputTargetName(target OutputTarget) glbuild.Name {
	switch target {
	case TargetColor:
		return glbuild.Col
	case RenderTarget1:
		return glbuild.Col1
	}
	ctx.Fatalf("unsupported output target %s", target)
	return 0
}

// AssignColor combines elem into the color of target with op. The first
// assignment declares the color whatever the op; lerp is only used by
// [BlendLerpAlpha] and defaults to elem.
func (ctx *Context) AssignColor(elem glbuild.Element, op BlendOp, lerp glbuild.Element, target OutputTarget) glbuild.Element {
	if ctx.stage != glbuild.StagePixel {
		ctx.Fatalf("color assigned outside of pixel stage")
	}
	if op >= numBlendOps {
		ctx.Fatalf("unknown blend op %s", op)
	}
	name := ctx.outputTargetName(target)
	color := ctx.Lookup(name)
	if color == nil {
		color = ctx.NewLocal(name.Key(), glbuild.Float4)
		return stmt("@ = @;", decl(color), elem)
	}
	switch op {
	case BlendNone:
		return stmt("@ = @;", color, elem)
	case BlendAdd:
		return stmt("@ += @;", color, elem)
	case BlendSub:
		return stmt("@ -= @;", color, elem)
	case BlendMul:
		return stmt("@ *= @;", color, elem)
	case BlendAddAlpha:
		return stmt("@ += @ * @.a;", color, elem, elem)
	case BlendLerpAlpha:
		if lerp == nil {
			lerp = elem
		}
		return stmt("@.rgb = $lerp( @.rgb, (@).rgb, (@).a );", color, color, elem, lerp)
	case BlendToneMap:
		return stmt("@ = 1.0 - exp(-1.0 * @ * @);", color, color, elem)
	}
	ctx.Fatalf("unknown blend op %s", op)
	return nil
}

// ExpandNormalMap converts a normal map sample to a normal in [-1,1] and
// stores it in normal, declared by normalDecl. DXTnm maps keep the normal
// in alpha and green and rebuild z.
func (ctx *Context) ExpandNormalMap(sample, normalDecl glbuild.Element, normal *glbuild.Var) glbuild.Element {
	var meta glbuild.MultiLine
	if ctx.Has(FeatureIsDXTnm) {
		meta.Add(stmt("@ = $float4( @.ag * 2.0 - 1.0, 0.0, 0.0 ); // DXTnm", normalDecl, sample))
		meta.Add(stmt("@.z = sqrt( 1.0 - dot( @.xy, @.xy ) ); // DXTnm", normal, normal, normal))
	} else {
		meta.Add(stmt("@ = @;", normalDecl, sample))
		meta.Add(stmt("@.xyz = @.xyz * 2.0 - 1.0;", normal, normal))
	}
	return meta
}

// SetupTexSpaceMat declares the object to tangent space matrix from the
// tangent and normal. A nil binormal is computed as cross(T, N) and flipped
// by the tangent handedness when the vertex stream has it.
func (ctx *Context) SetupTexSpaceMat(meta *glbuild.MultiLine, tangent, binormal, normal glbuild.Element) *glbuild.Var {
	if v := ctx.Lookup(glbuild.ObjToTangentSpace); v != nil {
		return v
	}
	if binormal == nil {
		b := ctx.Lookup(glbuild.InBinormal)
		if b == nil {
			b = ctx.NewLocal(glbuild.InBinormal.Key(), glbuild.Float3)
			meta.Add(stmt("@ = cross( @, normalize(@) );", decl(b), tangent, normal))
		}
		binormal = b
	}
	mat := ctx.NewLocal(glbuild.ObjToTangentSpace.Key(), glbuild.Float3x3)
	meta.Add(stmt("@;", decl(mat)))
	meta.Add(stmt("@[0] = @;", mat, tangent))
	if tw := ctx.VertexInput(glbuild.TcTangentW.Key()); tw != nil {
		meta.Add(stmt("@[1] = @ * @;", mat, binormal, tw))
	} else {
		meta.Add(stmt("@[1] = @;", mat, binormal))
	}
	meta.Add(stmt("@[2] = normalize(@);", mat, normal))
	return mat
}

// VertTexCoord returns the vertex stream texture coordinate set feeding
// the interpolator name: texCoord reads set 0, texCoord2 set 1.
func (ctx *Context) VertTexCoord(name glbuild.Name) *glbuild.Var {
	var set int
	switch name {
	case glbuild.TexCoord, glbuild.DetCoord:
		set = 0
	case glbuild.TexCoord2:
		set = 1
	default:
		ctx.Fatalf("no vertex texture coordinate set for %q", name)
	}
	return ctx.RequireVertexInput(glbuild.VertTexCoord.At(set))
}

// OutTexCoord writes the texture coordinate interpolator name from the
// vertex stream, transformed by the texture matrix when useTexAnim is set.
func (ctx *Context) OutTexCoord(meta *glbuild.MultiLine, name glbuild.Name, t glbuild.Type, useTexAnim bool) *glbuild.Var {
	if v := ctx.Connector.Lookup(name); v != nil {
		ctx.expect(v, t)
		return v
	}
	inTex := ctx.VertTexCoord(name)
	out := ctx.Connect(glbuild.SemanticTexCoord, name.Key(), t)
	if useTexAnim {
		texMat := ctx.Uniform(glbuild.TexMat.Key(), glbuild.Float4x4, glbuild.SortPass)
		meta.Add(stmt("@ = $mul( @, $float4( @, 0.0, 1.0 ) )@;", out, texMat, inTex, swizzle(t)))
		return out
	}
	if inTex.Type != t {
		ctx.Fatalf("%q is %s, vertex stream %q is %s", name, t, inTex.Key, inTex.Type)
	}
	meta.Add(stmt("@ = @;", out, inTex))
	return out
}

// InTexCoord returns the texture coordinate interpolator name in the pixel stage.
func (ctx *Context) InTexCoord(name glbuild.Name, t glbuild.Type) *glbuild.Var {
	return ctx.Connect(glbuild.SemanticTexCoord, name.Key(), t)
}

// WritableTexCoord returns the texture coordinate interpolator k for a
// pixel feature to modify in place. GLSL inputs are read only: the first
// call copies the input to a local that later reads of k return instead.
func (ctx *Context) WritableTexCoord(meta *glbuild.MultiLine, k glbuild.Key, t glbuild.Type) *glbuild.Var {
	if ctx.stage != glbuild.StagePixel {
		ctx.Fatalf("%q written outside of pixel stage", k)
	}
	in := ctx.Connect(glbuild.SemanticTexCoord, k, t)
	if ctx.Target.Lang != glbuild.GLSL || in.Usage == glbuild.UsageLocal {
		return in
	}
	local := ctx.NewLocal(k, t)
	meta.Add(stmt("@ = @;", decl(local), in))
	if ctx.texCoordCopies == nil {
		ctx.texCoordCopies = make(map[glbuild.Key]*glbuild.Var)
	}
	ctx.texCoordCopies[k] = local
	return local
}

// WritableVertexInput returns the vertex stream value k for a vertex
// feature to modify in place. GLSL inputs are read only: the input is
// copied to a local that later reads of k return instead.
func (ctx *Context) WritableVertexInput(meta *glbuild.MultiLine, k glbuild.Key) *glbuild.Var {
	if ctx.stage != glbuild.StageVertex {
		ctx.Fatalf("%q written outside of vertex stage", k)
	}
	in := ctx.RequireVertexInput(k)
	if ctx.Target.Lang != glbuild.GLSL || in.Usage == glbuild.UsageLocal {
		return in
	}
	local := ctx.NewLocal(k, in.Type)
	meta.Add(stmt("@ = @;", decl(local), in))
	return local
}

// AddOutDetailTexCoord writes the detail texture coordinate: the base
// coordinate scaled by the detailScale constant.
func (ctx *Context) AddOutDetailTexCoord(meta *glbuild.MultiLine, useTexAnim bool) *glbuild.Var {
	if v := ctx.Connector.Lookup(glbuild.DetCoord); v != nil {
		return v
	}
	inTex := ctx.VertTexCoord(glbuild.DetCoord)
	detScale := ctx.Uniform(glbuild.DetailScale.Key(), glbuild.Float2, glbuild.SortPotentialPrimitive)
	out := ctx.Connect(glbuild.SemanticTexCoord, glbuild.DetCoord.Key(), glbuild.Float2)
	if useTexAnim {
		texMat := ctx.Uniform(glbuild.TexMat.Key(), glbuild.Float4x4, glbuild.SortPass)
		meta.Add(stmt("@ = $mul( @, $float4( @, 0.0, 1.0 ) ).xy * @;", out, texMat, inTex, detScale))
	} else {
		meta.Add(stmt("@ = @ * @;", out, inTex, detScale))
	}
	return out
}

// AddOutVpos passes the clip position to the pixel stage when the pixel
// stage cannot read its screen position directly. Returns nil when it can.
func (ctx *Context) AddOutVpos(meta *glbuild.MultiLine) *glbuild.Var {
	name := ctx.vposName()
	if name == 0 {
		return nil
	}
	if v := ctx.Connector.Lookup(name); v != nil {
		return v
	}
	hpos := ctx.Connector.Lookup(glbuild.Hpos)
	if hpos == nil {
		ctx.Fatalf("screen position requires %q", glbuild.Hpos)
	}
	out := ctx.Connect(glbuild.SemanticTexCoord, name.Key(), glbuild.Float4)
	meta.Add(stmt("@ = @;", out, hpos))
	return out
}

// InVpos returns the pixel screen position.
func (ctx *Context) InVpos(meta *glbuild.MultiLine) *glbuild.Var {
	if v := ctx.Lookup(glbuild.Vpos); v != nil {
		return v
	}
	name := ctx.vposName()
	if name == 0 {
		return ctx.Connect(glbuild.SemanticVPos, glbuild.Vpos.Key(), glbuild.Float2)
	}
	in := ctx.Connect(glbuild.SemanticTexCoord, name.Key(), glbuild.Float4)
	vpos := ctx.NewLocal(glbuild.Vpos.Key(), glbuild.Float2)
	meta.Add(stmt("@ = @.xy / @.w;", decl(vpos), in, in))
	return vpos
}

// vposName returns the interpolator carrying the clip position or zero
// when the pixel stage has a screen position input.
func (ctx *Context) vposName() glbuild.Name {
	switch {
	case ctx.Target.Lang == glbuild.GLSL:
		return glbuild.ScreenspacePos
	case ctx.Target.ShaderModel < 3:
		return glbuild.OutVpos
	}
	return 0
}

// OutViewToTangent writes the view to tangent space transform
// interpolator, taking three texture coordinate slots.
func (ctx *Context) OutViewToTangent(meta *glbuild.MultiLine) *glbuild.Var {
	if v := ctx.Connector.Lookup(glbuild.ViewToTangent); v != nil {
		return v
	}
	out := ctx.Connect(glbuild.SemanticTexCoord, glbuild.ViewToTangent.Key(), glbuild.Float3x3)
	if local := ctx.Lookup(glbuild.ViewToTangent); local != nil {
		meta.Add(stmt("@ = @;", out, local))
		return out
	}
	if ctx.Has(FeatureParticleNormal) {
		meta.Add(stmt("@ = $toFloat3x3( @ );", out, ctx.WorldView(meta)))
		return out
	}
	texSpace := ctx.tangentSpace(meta)
	viewToObj := ctx.InvWorldView(meta)
	meta.Add(stmt("@ = $mul( @, $toFloat3x3( @ ) );", out, texSpace, viewToObj))
	return out
}

// OutObjToTangentSpace writes the object to tangent space transform interpolator.
func (ctx *Context) OutObjToTangentSpace(meta *glbuild.MultiLine) *glbuild.Var {
	if v := ctx.Connector.Lookup(glbuild.ObjToTangentSpace); v != nil {
		return v
	}
	texSpace := ctx.tangentSpace(meta)
	out := ctx.Connect(glbuild.SemanticTexCoord, glbuild.ObjToTangentSpace.Key(), glbuild.Float3x3)
	meta.Add(stmt("@ = @;", out, texSpace))
	return out
}

// InViewToTangent returns the view to tangent transform in the pixel stage.
func (ctx *Context) InViewToTangent() *glbuild.Var {
	return ctx.Connect(glbuild.SemanticTexCoord, glbuild.ViewToTangent.Key(), glbuild.Float3x3)
}

// OutWorldToTangent writes the world to tangent space transform interpolator.
func (ctx *Context) OutWorldToTangent(meta *glbuild.MultiLine) *glbuild.Var {
	if v := ctx.Connector.Lookup(glbuild.WorldToTangent); v != nil {
		return v
	}
	out := ctx.Connect(glbuild.SemanticTexCoord, glbuild.WorldToTangent.Key(), glbuild.Float3x3)
	if local := ctx.Lookup(glbuild.WorldToTangent); local != nil {
		meta.Add(stmt("@ = @;", out, local))
		return out
	}
	texSpace := ctx.tangentSpace(meta)
	worldToObj := ctx.Uniform(glbuild.WorldToObj.Key(), glbuild.Float4x4, glbuild.SortPrimitive)
	meta.Add(stmt("@ = $mul( @, $toFloat3x3( @ ) );", out, texSpace, worldToObj))
	return out
}

// tangentSpace returns the object to tangent space matrix, built from the
// tangent local (terrain, particles) or the vertex stream tangent.
func (ctx *Context) tangentSpace(meta *glbuild.MultiLine) *glbuild.Var {
	if v := ctx.Lookup(glbuild.ObjToTangentSpace); v != nil {
		return v
	}
	var tangent glbuild.Element
	if t := ctx.VertexInput(glbuild.InTangent.Key()); t != nil {
		tangent = t
	} else {
		ctx.Fatalf("tangent space requires a tangent")
	}
	var binormal glbuild.Element
	if b := ctx.VertexInput(glbuild.InBinormal.Key()); b != nil {
		binormal = b
	}
	normal := ctx.RequireVertexInput(glbuild.InNormal.Key())
	return ctx.SetupTexSpaceMat(meta, tangent, binormal, normal)
}

// NormalMapTex returns the bump map sampler of the pixel stage.
func (ctx *Context) NormalMapTex() *glbuild.Var {
	return ctx.Sampler(glbuild.BumpMap.Key(), glbuild.Sampler2D)
}

// InColor returns the interpolated vertex color, passing it from the vertex
// stream in the vertex stage.
func (ctx *Context) InColor(meta *glbuild.MultiLine) *glbuild.Var {
	if ctx.stage == glbuild.StagePixel {
		return ctx.Connect(glbuild.SemanticColor, glbuild.VertColor.Key(), glbuild.Float4)
	}
	if v := ctx.Connector.Lookup(glbuild.VertColor); v != nil {
		return v
	}
	in := ctx.RequireVertexInput(glbuild.InColor.Key())
	out := ctx.Connect(glbuild.SemanticColor, glbuild.VertColor.Key(), glbuild.Float4)
	meta.Add(stmt("@ = @;", out, in))
	return out
}

// WsPosition returns the world space position in the vertex stage.
func (ctx *Context) WsPosition(meta *glbuild.MultiLine) *glbuild.Var {
	if v := ctx.Lookup(glbuild.WsPosition); v != nil {
		return v
	}
	objTrans := ctx.ObjTrans(meta)
	pos := ctx.RequireVertexInput(glbuild.InPosition.Key())
	ws := ctx.NewLocal(glbuild.WsPosition.Key(), glbuild.Float3)
	meta.Add(stmt("@ = $mul( @, $float4( @.xyz, 1.0 ) ).xyz;", decl(ws), objTrans, pos))
	return ws
}

// AddOutWsPosition writes the world space position interpolator.
func (ctx *Context) AddOutWsPosition(meta *glbuild.MultiLine) *glbuild.Var {
	if v := ctx.Connector.Lookup(glbuild.OutWsPosition); v != nil {
		return v
	}
	ws := ctx.WsPosition(meta)
	out := ctx.Connect(glbuild.SemanticTexCoord, glbuild.OutWsPosition.Key(), glbuild.Float3)
	meta.Add(stmt("@ = @;", out, ws))
	return out
}

// InWsPosition returns the world space position in the pixel stage.
func (ctx *Context) InWsPosition() *glbuild.Var {
	return ctx.Connect(glbuild.SemanticTexCoord, glbuild.OutWsPosition.Key(), glbuild.Float3)
}

// WsView returns the normalized world space direction from wsPosition to the eye.
func (ctx *Context) WsView(meta *glbuild.MultiLine, wsPosition glbuild.Element) *glbuild.Var {
	if v := ctx.Lookup(glbuild.WsView); v != nil {
		return v
	}
	eye := ctx.Uniform(glbuild.EyePosWorld.Key(), glbuild.Float3, glbuild.SortPass)
	v := ctx.NewLocal(glbuild.WsView.Key(), glbuild.Float3)
	meta.Add(stmt("@ = normalize( @ - @ );", decl(v), eye, wsPosition))
	return v
}

// BindTexture records that the sampler k of the pixel stage binds source.
// It does nothing when the feature did not declare the sampler.
func (ctx *Context) BindTexture(pass *PassData, k glbuild.Key, source string) {
	v := ctx.Pixel.Find(k)
	if v == nil || v.Usage != glbuild.UsageSampler {
		return
	}
	pass.Textures = append(pass.Textures, TextureBinding{Sampler: v.Ident(), Unit: v.Slot, Source: source})
}

func swizzle(t glbuild.Type) glbuild.Element {
	switch t {
	case glbuild.Float:
		return glbuild.Raw(".x")
	case glbuild.Float2:
		return glbuild.Raw(".xy")
	case glbuild.Float3:
		return glbuild.Raw(".xyz")
	}
	return glbuild.Raw("")
}
