package material

import (
	"github.com/soypat/gshader"
	"github.com/soypat/gshader/glbuild"
)

// ReflectCube reflects a cube map over the color, weighted by a gloss
// value from the diffuse or normal map alpha. When the material has one of
// those maps but the pass does not, the map is sampled again as a gloss map.
type ReflectCube struct{ gshader.NopFeature }

func (ReflectCube) Name() string { return "Reflect Cube" }

// needsGlossMap reports whether the pass samples its own gloss map.
func needsGlossMap(ctx *gshader.Context) bool {
	if ctx.Has(gshader.FeatureDiffuseMap) || ctx.Has(gshader.FeatureNormalMap) {
		return false
	}
	return ctx.FD.Material.Has(gshader.FeatureDiffuseMap) || ctx.FD.Material.Has(gshader.FeatureNormalMap)
}

func (ReflectCube) Resources(ctx *gshader.Context) gshader.Resources {
	if ctx.VertexInput(glbuild.InNormal.Key()) == nil {
		return gshader.Resources{}
	}
	res := gshader.Resources{NumTex: 1, NumTexReg: texRegs(ctx, glbuild.ReflectVec, 1)}
	if needsGlossMap(ctx) {
		res.NumTex++
		res.NumTexReg += texRegs(ctx, glbuild.TexCoord, 1)
	}
	return res
}

func (ReflectCube) ProcessVert(ctx *gshader.Context) glbuild.Element {
	normal := ctx.VertexInput(glbuild.InNormal.Key())
	if normal == nil {
		return nil
	}
	var meta glbuild.MultiLine
	if needsGlossMap(ctx) {
		ctx.OutTexCoord(&meta, glbuild.TexCoord, glbuild.Float2, false)
	}
	pos := ctx.RequireVertexInput(glbuild.InPosition.Key())
	cubeTrans := ctx.Uniform(glbuild.CubeTrans.Key(), glbuild.Float3x3, glbuild.SortPrimitive)
	cubeEyePos := ctx.Uniform(glbuild.CubeEyePos.Key(), glbuild.Float3, glbuild.SortPrimitive)

	vertPos := ctx.NewLocal(glbuild.CubeVertPos.Key(), glbuild.Float3)
	meta.Add(stmt("@ = $mul( @, @ ).xyz;", decl(vertPos), cubeTrans, pos))
	cubeNormal := ctx.NewLocal(glbuild.CubeNormal.Key(), glbuild.Float3)
	meta.Add(stmt("@ = normalize( $mul( @, normalize( @ ) ).xyz );", decl(cubeNormal), cubeTrans, normal))
	eyeToVert := ctx.NewLocal(glbuild.EyeToVert.Key(), glbuild.Float3)
	meta.Add(stmt("@ = @ - @;", decl(eyeToVert), vertPos, cubeEyePos))

	reflectVec := ctx.Connect(glbuild.SemanticTexCoord, glbuild.ReflectVec.Key(), glbuild.Float3)
	meta.Add(stmt("@ = reflect( @, @ );", reflectVec, eyeToVert, cubeNormal))
	return meta
}

func (ReflectCube) ProcessPix(ctx *gshader.Context) glbuild.Element {
	if ctx.Connector.Lookup(glbuild.ReflectVec) == nil {
		return nil
	}
	var meta glbuild.MultiLine
	var gloss *glbuild.Var
	if needsGlossMap(ctx) {
		in := ctx.InTexCoord(glbuild.TexCoord, glbuild.Float2)
		glossMap := ctx.Sampler(glbuild.GlossMap.Key(), glbuild.Sampler2D)
		gloss = ctx.NewLocal(glbuild.DiffuseColor.Key(), glbuild.Float4)
		meta.Add(stmt("@ = $tex2D( @, @ );", decl(gloss), glossMap, in))
	} else if gloss = ctx.Lookup(glbuild.DiffuseColor); gloss == nil {
		gloss = ctx.Lookup(glbuild.BumpNormal)
	}

	reflectVec := ctx.InTexCoord(glbuild.ReflectVec, glbuild.Float3)
	cubeMap := ctx.Sampler(glbuild.CubeMap.Key(), glbuild.SamplerCube)
	var attn *glbuild.Var
	if ctx.FD.Material.Has(gshader.FeatureRTLighting) {
		attn = ctx.Lookup(glbuild.DNLAtt)
	}
	texCube := op("$texCUBE( @, @ )", cubeMap, reflectVec)

	// The lerp value is a float4 for the alpha blend.
	blend := gshader.BlendLerpAlpha
	var lerp glbuild.Element
	switch {
	case gloss != nil && attn != nil:
		lerp = op("@ * $saturate( @ )", gloss, attn)
	case gloss != nil:
		lerp = gloss
	case attn != nil:
		lerp = op("$saturate( @ ).xxxx", attn)
	default:
		blend = gshader.BlendMul
	}
	meta.Add(ctx.AssignColor(texCube, blend, lerp, gshader.TargetColor))
	return meta
}

func (ReflectCube) SetTexData(ctx *gshader.Context, pass *gshader.PassData) {
	glossSource := "$bumpMap"
	if ctx.FD.Material.Has(gshader.FeatureDiffuseMap) {
		glossSource = "$diffuseMap"
	}
	ctx.BindTexture(pass, glbuild.GlossMap.Key(), glossSource)
	cubeSource := "$cubeMap"
	if ctx.Has(gshader.FeatureCubeMap) {
		cubeSource = "$dynamicCubeMap"
	}
	ctx.BindTexture(pass, glbuild.CubeMap.Key(), cubeSource)
}
