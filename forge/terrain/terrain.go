// Package terrain implements the terrain material features: a base texture
// over the whole terrain and up to one detail layer per process index,
// blended by the layer id texture.
//
// The base map writes the float3 texCoord interpolator: xy are the terrain
// coordinates and z the side projection weight. Detail and normal layers
// read it, so BaseMap must be active whenever a layer is.
package terrain

import (
	"github.com/soypat/gshader"
	"github.com/soypat/gshader/glbuild"
)

var (
	stmt = glbuild.Stmt
	decl = glbuild.Decl
	op   = glbuild.NewOp
)

func prepass(ctx *gshader.Context) bool { return ctx.Has(gshader.FeaturePrePassConditioner) }

func inDetailCoord(ctx *gshader.Context) *glbuild.Var {
	return ctx.Connect(glbuild.SemanticTexCoord, glbuild.LayerDetCoord.At(ctx.ProcessIndex()), glbuild.Float4)
}

func normalMapTex(ctx *gshader.Context) *glbuild.Var {
	return ctx.Sampler(glbuild.LayerNormalMap.At(ctx.ProcessIndex()), glbuild.Sampler2D)
}

// detailInfo holds the layer id, detail strength and parallax scale.
func detailInfo(ctx *gshader.Context) *glbuild.Var {
	return ctx.Uniform(glbuild.DetailIDStrengthParallax.At(ctx.ProcessIndex()), glbuild.Float3, glbuild.SortPotentialPrimitive)
}

// baseTexCoord returns the texCoord interpolator written by [BaseMap].
func baseTexCoord(ctx *gshader.Context) *glbuild.Var {
	v := ctx.Connector.Lookup(glbuild.TexCoord)
	if v == nil {
		ctx.Fatalf("terrain layers require the base map texture coordinate")
	}
	return v
}

func bind(ctx *gshader.Context, pass *gshader.PassData, k glbuild.Key) {
	ctx.BindTexture(pass, k, "$"+k.String())
}

// BaseMap colors the terrain with the base texture and writes the terrain
// texture coordinate and tangent for the layers.
type BaseMap struct{ gshader.NopFeature }

func (BaseMap) Name() string { return "Terrain Base Texture" }

func (BaseMap) Resources(ctx *gshader.Context) gshader.Resources {
	res := gshader.Resources{NumTexReg: 1}
	if !prepass(ctx) {
		res.NumTex = 1
	}
	return res
}

func (BaseMap) ProcessVert(ctx *gshader.Context) glbuild.Element {
	var meta glbuild.MultiLine
	out := ctx.Connect(glbuild.SemanticTexCoord, glbuild.TexCoord.Key(), glbuild.Float3)
	pos := ctx.RequireVertexInput(glbuild.InPosition.Key())
	scale := ctx.Uniform(glbuild.OneOverTerrainSize.Key(), glbuild.Float, glbuild.SortPass)
	// Negative y keeps the layer id bilinear blend unflipped; detail scales
	// compensate for it.
	meta.Add(stmt("@ = @.xyz * $float3( @, @, -@ );", out, pos, scale, scale, scale))
	if ctx.Has(gshader.FeatureTerrainSideProject) {
		n := ctx.RequireVertexInput(glbuild.InNormal.Key())
		meta.Add(stmt("@.z = pow( abs( dot( normalize( $float3( @.x, @.y, 0.0 ) ), $float3( 0.0, 1.0, 0.0 ) ) ), 10.0 );", out, n, n))
	} else {
		meta.Add(stmt("@.z = 0.0;", out))
	}

	// Tangent space features of the layers expect the tangent T.
	tangentZ := ctx.RequireVertexInput(glbuild.TcTangentZ.Key())
	squareSize := ctx.Uniform(glbuild.SquareSize.Key(), glbuild.Float, glbuild.SortPass)
	tangent := ctx.NewLocal(glbuild.InTangent.Key(), glbuild.Float3)
	meta.Add(stmt("@ = normalize( $float3( @, 0.0, @ ) );", decl(tangent), squareSize, tangentZ))
	return meta
}

func (BaseMap) ProcessPix(ctx *gshader.Context) glbuild.Element {
	in := ctx.Connect(glbuild.SemanticTexCoord, glbuild.TexCoord.Key(), glbuild.Float3)
	if prepass(ctx) {
		return nil
	}
	var meta glbuild.MultiLine
	tex := ctx.Sampler(glbuild.BaseTexMap.Key(), glbuild.Sampler2D)
	base := ctx.NewLocal(glbuild.BaseColor.Key(), glbuild.Float4)
	meta.Add(stmt("@ = $tex2D( @, @.xy );", decl(base), tex, in))
	meta.Add(ctx.AssignColor(base, gshader.BlendMul, nil, gshader.TargetColor))
	return meta
}

func (BaseMap) SetTexData(ctx *gshader.Context, pass *gshader.PassData) {
	bind(ctx, pass, glbuild.BaseTexMap.Key())
}

// LightMap masks the sun, the first forward light, with the terrain
// lightmap. It runs before lighting, which reads the lightMask.
type LightMap struct{ gshader.NopFeature }

func (LightMap) Name() string { return "Terrain Lightmap Texture" }

func (LightMap) Resources(*gshader.Context) gshader.Resources {
	return gshader.Resources{NumTex: 1}
}

func (LightMap) ProcessPix(ctx *gshader.Context) glbuild.Element {
	in := ctx.Connector.Lookup(glbuild.TexCoord)
	if in == nil {
		return nil
	}
	var meta glbuild.MultiLine
	tex := ctx.Sampler(glbuild.LightMapTex.Key(), glbuild.Sampler2D)
	mask := ctx.Lookup(glbuild.LightMask)
	if mask == nil {
		mask = ctx.NewLocal(glbuild.LightMask.Key(), glbuild.Float4)
		meta.Add(stmt("@ = $float4( 1.0, 1.0, 1.0, 1.0 );", decl(mask)))
	}
	meta.Add(stmt("@[0] = $tex2D( @, @.xy ).r;", mask, tex, in))
	return meta
}

func (LightMap) SetTexData(ctx *gshader.Context, pass *gshader.PassData) {
	bind(ctx, pass, glbuild.LightMapTex.Key())
}

// Additive discards pixels no layer covers and writes the layer coverage
// to alpha, for terrain drawn over other terrain.
type Additive struct{ gshader.NopFeature }

func (Additive) Name() string { return "Terrain Additive" }

func (Additive) ProcessPix(ctx *gshader.Context) glbuild.Element {
	color := ctx.OutputTargetVar(gshader.TargetColor)
	total := ctx.Lookup(glbuild.BlendTotal)
	if color == nil || total == nil {
		return nil
	}
	var meta glbuild.MultiLine
	meta.Add(glbuild.ByLang(
		stmt("if ( @ - 0.0001 < 0.0 ) discard;", total),
		stmt("clip( @ - 0.0001 );", total),
	))
	meta.Add(stmt("@.a = @;", color, total))
	return meta
}
