package material

import (
	"github.com/soypat/gshader"
	"github.com/soypat/gshader/glbuild"
)

// Foliage expands ground cover billboards in the vertex stage and fades
// them with distance. The vertex format carries the billboard corner in
// the first texture coordinate set and needs a normal.
//
// The position, color, corner and normal are modified in place, so every
// later feature sees the expanded billboard.
type Foliage struct{ gshader.NopFeature }

func (Foliage) Name() string { return "Foliage" }

func (Foliage) Resources(ctx *gshader.Context) gshader.Resources {
	return gshader.Resources{NumTexReg: texRegs(ctx, glbuild.FoliageFade, 1)}
}

func (Foliage) ProcessVert(ctx *gshader.Context) glbuild.Element {
	ctx.Include("foliage")
	var meta glbuild.MultiLine
	pos := ctx.WritableVertexInput(&meta, glbuild.InPosition.Key())
	color := ctx.WritableVertexInput(&meta, glbuild.InColor.Key())
	params := ctx.WritableVertexInput(&meta, glbuild.VertTexCoord.At(0))
	normal := ctx.WritableVertexInput(&meta, glbuild.InNormal.Key())
	expectInput(ctx, pos, glbuild.Float3)
	expectInput(ctx, color, glbuild.Float4)
	expectInput(ctx, params, glbuild.Float2)
	expectInput(ctx, normal, glbuild.Float3)

	tangent := ctx.NewLocal(glbuild.InTangent.Key(), glbuild.Float3)
	meta.Add(stmt("@;", decl(tangent)))
	eyePos := ctx.Uniform(glbuild.EyePosWorld.Key(), glbuild.Float3, glbuild.SortPass)
	meta.Add(stmt("foliageProcessVert( @, @, @, @, @, @ );", pos, color, params, normal, tangent, eyePos))
	// foliageProcessVert leaves the fade in the color alpha.
	fade := ctx.Connect(glbuild.SemanticTexCoord, glbuild.FoliageFade.Key(), glbuild.Float)
	meta.Add(stmt("@ = @.a;", fade, color))
	return meta
}

func (Foliage) ProcessPix(ctx *gshader.Context) glbuild.Element {
	return multiplyFade(ctx, ctx.InTexCoord(glbuild.FoliageFade, glbuild.Float))
}

// ImposterVert builds camera facing imposter billboards from their center
// and orientation. It declares the position, texture coordinate and
// tangent frame locals that the features after it read in place of the
// vertex stream, plus wsPosition and viewToTangent.
type ImposterVert struct{ gshader.NopFeature }

func (ImposterVert) Name() string { return "Imposter" }

func (ImposterVert) Resources(ctx *gshader.Context) gshader.Resources {
	return gshader.Resources{NumTexReg: texRegs(ctx, glbuild.ImposterFade, 1)}
}

func (ImposterVert) ProcessVert(ctx *gshader.Context) glbuild.Element {
	ctx.Include("imposter")
	var meta glbuild.MultiLine
	// The stream position holds the center in xyz and the corner in w.
	center := ctx.RequireVertexInput(glbuild.InPosition.Key())
	params := ctx.RequireVertexInput(glbuild.TcImposterParams.Key())
	upVec := ctx.RequireVertexInput(glbuild.TcImposterUpVec.Key())
	rightVec := ctx.RequireVertexInput(glbuild.TcImposterRightVec.Key())
	expectInput(ctx, center, glbuild.Float4)
	expectInput(ctx, params, glbuild.Float4)
	expectInput(ctx, upVec, glbuild.Float3)
	expectInput(ctx, rightVec, glbuild.Float3)

	const pp = glbuild.SortPotentialPrimitive
	limits := ctx.Uniform(glbuild.ImposterLimits.Key(), glbuild.Float4, pp)
	uvs := ctx.UniformArray(glbuild.ImposterUVs.Key(), glbuild.Float4, 64, pp)
	eyePos := ctx.Uniform(glbuild.EyePosWorld.Key(), glbuild.Float3, glbuild.SortPass)

	pos := ctx.NewLocal(glbuild.InPosition.Key(), glbuild.Float3)
	texCoord := ctx.NewLocal(glbuild.VertTexCoord.At(0), glbuild.Float2)
	worldToTangent := ctx.NewLocal(glbuild.WorldToTangent.Key(), glbuild.Float3x3)
	meta.Add(stmt("@; @; @;", decl(pos), decl(texCoord), decl(worldToTangent)))

	fade := ctx.Connect(glbuild.SemanticTexCoord, glbuild.ImposterFade.Key(), glbuild.Float)
	meta.Add(stmt("@ = @.y;", fade, params))
	meta.Add(stmt("imposter_v( @.xyz, @.w, @.x * length(@), normalize(@), normalize(@), @.x, @.y, @.z, @.w > 0.5, @, @, @, @, @ );",
		center, center, params, rightVec, upVec, rightVec,
		limits, limits, limits, limits, eyePos, uvs,
		pos, texCoord, worldToTangent))

	// The billboard is built in world space.
	ws := ctx.NewLocal(glbuild.WsPosition.Key(), glbuild.Float3)
	meta.Add(stmt("@ = @.xyz;", decl(ws), pos))
	viewToTangent := ctx.NewLocal(glbuild.ViewToTangent.Key(), glbuild.Float3x3)
	meta.Add(stmt("@ = @;", decl(viewToTangent), worldToTangent))
	return meta
}

func (ImposterVert) ProcessPix(ctx *gshader.Context) glbuild.Element {
	return multiplyFade(ctx, ctx.InTexCoord(glbuild.ImposterFade, glbuild.Float))
}

// ParticleNormal gives particles a fixed normal and tangent when the
// vertex format has none so lighting and normal mapping apply.
type ParticleNormal struct{ gshader.NopFeature }

func (ParticleNormal) Name() string { return "Particle Normal" }

func (ParticleNormal) ProcessVert(ctx *gshader.Context) glbuild.Element {
	var meta glbuild.MultiLine
	if ctx.VertexInput(glbuild.InNormal.Key()) == nil {
		normal := ctx.NewLocal(glbuild.InNormal.Key(), glbuild.Float3)
		meta.Add(stmt("@ = $float3( 0.0, -0.97, 0.14 );", decl(normal)))
	}
	if ctx.VertexInput(glbuild.InTangent.Key()) == nil {
		tangent := ctx.NewLocal(glbuild.InTangent.Key(), glbuild.Float3)
		meta.Add(stmt("@ = $float3( 0.0, 0.0, -1.0 );", decl(tangent)))
	}
	return meta
}

// multiplyFade multiplies a fade interpolator into the fade local that
// [Visibility] scales the visibility by.
func multiplyFade(ctx *gshader.Context, in *glbuild.Var) glbuild.Element {
	if fade := ctx.Lookup(glbuild.Fade); fade != nil {
		return stmt("@ *= @;", fade, in)
	}
	fade := ctx.NewLocal(glbuild.Fade.Key(), glbuild.Float)
	return stmt("@ = @;", decl(fade), in)
}

func expectInput(ctx *gshader.Context, v *glbuild.Var, t glbuild.Type) {
	if v.Type != t {
		ctx.Fatalf("vertex input %q is %s, want %s", v.Key, v.Type, t)
	}
}
