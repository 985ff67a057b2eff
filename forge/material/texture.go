package material

import (
	"github.com/soypat/gshader"
	"github.com/soypat/gshader/glbuild"
)

// DiffuseMap multiplies the color by the base texture. With the
// [gshader.FeatureDiffuseMapAtlas] flag the texture is an atlas and the
// tile is picked by the diffuseAtlasTileParams constant.
type DiffuseMap struct{ gshader.NopFeature }

func (DiffuseMap) Name() string { return "Base Texture" }

func (DiffuseMap) Resources(ctx *gshader.Context) gshader.Resources {
	return gshader.Resources{NumTex: 1, NumTexReg: texRegs(ctx, glbuild.TexCoord, 1)}
}

func (DiffuseMap) ProcessVert(ctx *gshader.Context) glbuild.Element {
	var meta glbuild.MultiLine
	ctx.OutTexCoord(&meta, glbuild.TexCoord, glbuild.Float2, useTexAnim(ctx))
	return meta
}

func (DiffuseMap) ProcessPix(ctx *gshader.Context) glbuild.Element {
	in := ctx.InTexCoord(glbuild.TexCoord, glbuild.Float2)
	tex := ctx.Sampler(glbuild.DiffuseMap.Key(), glbuild.Sampler2D)
	var sample glbuild.Element
	switch {
	case ctx.Has(gshader.FeatureCubeMap):
		// The reflection reads its gloss from the diffuse alpha.
		sample = sample2D(tex, in)
	case ctx.Has(gshader.FeatureDiffuseMapAtlas):
		ctx.Include("torque")
		const pp = glbuild.SortPotentialPrimitive
		atlas := ctx.Uniform(glbuild.DiffuseAtlasParams.Key(), glbuild.Float4, pp)
		tile := ctx.Uniform(glbuild.DiffuseAtlasTileParams.Key(), glbuild.Float4, pp)
		if ctx.Target.Lang == glbuild.HLSL && ctx.Target.ShaderModel < 3 {
			sample = op("sampleAtlasBase( @, @, @, @ )", tex, in, atlas, tile)
		} else {
			sample = op("sampleAtlas( @, @, @, @ )", tex, in, atlas, tile)
		}
	default:
		return ctx.AssignColor(sample2D(tex, in), gshader.BlendMul, nil, gshader.TargetColor)
	}
	var meta glbuild.MultiLine
	color := ctx.NewLocal(glbuild.DiffuseColor.Key(), glbuild.Float4)
	meta.Add(stmt("@ = @;", decl(color), sample))
	meta.Add(ctx.AssignColor(color, gshader.BlendMul, nil, gshader.TargetColor))
	return meta
}

func (DiffuseMap) SetTexData(ctx *gshader.Context, pass *gshader.PassData) {
	ctx.BindTexture(pass, glbuild.DiffuseMap.Key(), "$diffuseMap")
}

// OverlayMap blends a second texture over the color by its alpha. It reads
// the second texture coordinate set.
type OverlayMap struct{ gshader.NopFeature }

func (OverlayMap) Name() string { return "Overlay Texture" }

func (OverlayMap) Resources(ctx *gshader.Context) gshader.Resources {
	return gshader.Resources{NumTex: 1, NumTexReg: texRegs(ctx, glbuild.TexCoord2, 1)}
}

func (OverlayMap) ProcessVert(ctx *gshader.Context) glbuild.Element {
	var meta glbuild.MultiLine
	ctx.OutTexCoord(&meta, glbuild.TexCoord2, glbuild.Float2, useTexAnim(ctx))
	return meta
}

func (OverlayMap) ProcessPix(ctx *gshader.Context) glbuild.Element {
	in := ctx.InTexCoord(glbuild.TexCoord2, glbuild.Float2)
	tex := ctx.Sampler(glbuild.OverlayMap.Key(), glbuild.Sampler2D)
	return ctx.AssignColor(sample2D(tex, in), gshader.BlendLerpAlpha, nil, gshader.TargetColor)
}

func (OverlayMap) SetTexData(ctx *gshader.Context, pass *gshader.PassData) {
	ctx.BindTexture(pass, glbuild.OverlayMap.Key(), "$overlayMap")
}

// DiffuseColor multiplies the color by the material diffuse color constant.
type DiffuseColor struct{ gshader.NopFeature }

func (DiffuseColor) Name() string { return "Diffuse Color" }

func (DiffuseColor) ProcessPix(ctx *gshader.Context) glbuild.Element {
	color := ctx.Uniform(glbuild.DiffuseMaterialColor.Key(), glbuild.Float4, glbuild.SortPotentialPrimitive)
	return ctx.AssignColor(color, gshader.BlendMul, nil, gshader.TargetColor)
}

// DiffuseVertColor multiplies the color by the vertex color. It does
// nothing for vertex formats without color.
type DiffuseVertColor struct{ gshader.NopFeature }

func (DiffuseVertColor) Name() string { return "Diffuse Vertex Color" }

func (DiffuseVertColor) ProcessVert(ctx *gshader.Context) glbuild.Element {
	if ctx.Connector.Lookup(glbuild.VertColor) != nil || ctx.VertexInput(glbuild.InColor.Key()) == nil {
		return nil
	}
	var meta glbuild.MultiLine
	ctx.InColor(&meta)
	return meta
}

func (DiffuseVertColor) ProcessPix(ctx *gshader.Context) glbuild.Element {
	if ctx.Connector.Lookup(glbuild.VertColor) == nil {
		return nil
	}
	return ctx.AssignColor(ctx.InColor(nil), gshader.BlendMul, nil, gshader.TargetColor)
}

// DetailMap adds a signed detail texture sampled at the scaled base
// texture coordinate.
type DetailMap struct{ gshader.NopFeature }

func (DetailMap) Name() string { return "Detail" }

func (DetailMap) Resources(ctx *gshader.Context) gshader.Resources {
	return gshader.Resources{NumTex: 1, NumTexReg: texRegs(ctx, glbuild.DetCoord, 1)}
}

func (DetailMap) ProcessVert(ctx *gshader.Context) glbuild.Element {
	var meta glbuild.MultiLine
	ctx.AddOutDetailTexCoord(&meta, useTexAnim(ctx))
	return meta
}

func (DetailMap) ProcessPix(ctx *gshader.Context) glbuild.Element {
	in := ctx.InTexCoord(glbuild.DetCoord, glbuild.Float2)
	tex := ctx.Sampler(glbuild.DetailMap.Key(), glbuild.Sampler2D)
	detail := op("( $tex2D(@, @) * 2.0 ) - 1.0", tex, in)
	return ctx.AssignColor(detail, gshader.BlendAdd, nil, gshader.TargetColor)
}

func (DetailMap) SetTexData(ctx *gshader.Context, pass *gshader.PassData) {
	ctx.BindTexture(pass, glbuild.DetailMap.Key(), "$detailMap")
}
