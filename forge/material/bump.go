package material

import (
	"github.com/soypat/gshader"
	"github.com/soypat/gshader/glbuild"
)

// NormalMap perturbs the world space normal used by forward lighting with
// a tangent space normal map. A detail normal map, when the pass has one,
// adds its xy to the base normal.
type NormalMap struct{ gshader.NopFeature }

func (NormalMap) Name() string { return "Bumpmap" }

func (NormalMap) Resources(ctx *gshader.Context) gshader.Resources {
	res := gshader.Resources{
		NumTex:    1,
		NumTexReg: texRegs(ctx, glbuild.TexCoord, 1) + texRegs(ctx, glbuild.WorldToTangent, 3),
	}
	if ctx.Has(gshader.FeatureDetailNormalMap) {
		res.NumTex++
		res.NumTexReg += texRegs(ctx, glbuild.DetCoord, 1)
	}
	return res
}

func (NormalMap) ProcessVert(ctx *gshader.Context) glbuild.Element {
	var meta glbuild.MultiLine
	ctx.OutTexCoord(&meta, glbuild.TexCoord, glbuild.Float2, useTexAnim(ctx))
	if ctx.Has(gshader.FeatureDetailNormalMap) {
		ctx.AddOutDetailTexCoord(&meta, useTexAnim(ctx))
	}
	ctx.OutWorldToTangent(&meta)
	return meta
}

func (NormalMap) ProcessPix(ctx *gshader.Context) glbuild.Element {
	var meta glbuild.MultiLine
	bump := ExpandBump(ctx, &meta)
	worldToTangent := ctx.Connect(glbuild.SemanticTexCoord, glbuild.WorldToTangent.Key(), glbuild.Float3x3)
	wsNormal := ctx.NewLocal(glbuild.WsNormal.Key(), glbuild.Float3)
	// Row vector times matrix applies the transpose, tangent to world.
	meta.Add(stmt("@ = normalize( $mul( @.xyz, @ ) );", decl(wsNormal), bump, worldToTangent))
	return meta
}

func (NormalMap) SetTexData(ctx *gshader.Context, pass *gshader.PassData) {
	ctx.BindTexture(pass, glbuild.BumpMap.Key(), "$bumpMap")
	ctx.BindTexture(pass, glbuild.DetailBumpMap.Key(), "$detailBumpMap")
}

// ExpandBump samples the normal map into the bumpNormal local and returns
// it. With a detail normal map in the pass the detail normal is added,
// scaled by detailBumpStrength.
func ExpandBump(ctx *gshader.Context, meta *glbuild.MultiLine) *glbuild.Var {
	in := ctx.InTexCoord(glbuild.TexCoord, glbuild.Float2)
	bump := ctx.NewLocal(glbuild.BumpNormal.Key(), glbuild.Float4)
	meta.Add(ctx.ExpandNormalMap(sample2D(ctx.NormalMapTex(), in), decl(bump), bump))
	if !ctx.Has(gshader.FeatureDetailNormalMap) {
		return bump
	}
	detCoord := ctx.InTexCoord(glbuild.DetCoord, glbuild.Float2)
	detailMap := ctx.Sampler(glbuild.DetailBumpMap.Key(), glbuild.Sampler2D)
	detail := ctx.NewLocal(glbuild.DetailBump.Key(), glbuild.Float4)
	meta.Add(ctx.ExpandNormalMap(sample2D(detailMap, detCoord), decl(detail), detail))
	strength := ctx.Uniform(glbuild.DetailBumpStrength.Key(), glbuild.Float, glbuild.SortPass)
	meta.Add(stmt("@.xy += @.xy * @;", bump, detail, strength))
	return bump
}

// Parallax offsets the base texture coordinate along the tangent space view
// direction by the height stored in the normal map alpha.
type Parallax struct{ gshader.NopFeature }

func (Parallax) Name() string { return "Parallax" }

func (Parallax) Resources(ctx *gshader.Context) gshader.Resources {
	res := gshader.Resources{NumTexReg: texRegs(ctx, glbuild.TexCoord, 1) + texRegs(ctx, glbuild.OutNegViewTS, 1)}
	if !ctx.Has(gshader.FeatureNormalMap) {
		res.NumTex = 1
	}
	return res
}

func (Parallax) ProcessVert(ctx *gshader.Context) glbuild.Element {
	var meta glbuild.MultiLine
	ctx.OutTexCoord(&meta, glbuild.TexCoord, glbuild.Float2, useTexAnim(ctx))
	pos := ctx.RequireVertexInput(glbuild.InPosition.Key())
	tangent := ctx.RequireVertexInput(glbuild.InTangent.Key())
	normal := ctx.RequireVertexInput(glbuild.InNormal.Key())
	var binormal glbuild.Element
	if b := ctx.VertexInput(glbuild.InBinormal.Key()); b != nil {
		binormal = b
	}
	texSpace := ctx.SetupTexSpaceMat(&meta, tangent, binormal, normal)
	eyePos := ctx.Uniform(glbuild.EyePos.Key(), glbuild.Float3, glbuild.SortPotentialPrimitive)
	out := ctx.Connect(glbuild.SemanticTexCoord, glbuild.OutNegViewTS.Key(), glbuild.Float3)
	meta.Add(stmt("@ = $mul( @, $float3( @ - @.xyz ) );", out, texSpace, eyePos, pos))
	return meta
}

func (Parallax) ProcessPix(ctx *gshader.Context) glbuild.Element {
	ctx.Include("terrain")
	var meta glbuild.MultiLine
	in := ctx.WritableTexCoord(&meta, glbuild.TexCoord.Key(), glbuild.Float2)
	negViewTS := ctx.NewLocal(glbuild.NegViewTS.Key(), glbuild.Float3)
	meta.Add(stmt("@ = normalize( @ );", decl(negViewTS), ctx.Connect(glbuild.SemanticTexCoord, glbuild.OutNegViewTS.Key(), glbuild.Float3)))
	info := ctx.Uniform(glbuild.ParallaxInfo.Key(), glbuild.Float, glbuild.SortPotentialPrimitive)
	meta.Add(stmt("@ += parallaxOffset( @, @, @, @ );", in, ctx.NormalMapTex(), in, negViewTS, info))
	return meta
}

func (Parallax) SetTexData(ctx *gshader.Context, pass *gshader.PassData) {
	if !ctx.Has(gshader.FeatureNormalMap) {
		ctx.BindTexture(pass, glbuild.BumpMap.Key(), "$bumpMap")
	}
}
