package deferred

import (
	"github.com/soypat/gshader"
	"github.com/soypat/gshader/forge/material"
	"github.com/soypat/gshader/glbuild"
)

// Bump writes the normal mapped view space normal to gbNormal during the
// prepass. In the lit pass the light buffer already holds the bumped
// lighting, so it only samples the normal map alpha for the specular mask.
// Passes lit forward use [material.NormalMap].
type Bump struct{ material.NormalMap }

func (Bump) Name() string { return "Bumpmap [Deferred]" }

func forwardBump(ctx *gshader.Context) bool {
	return ctx.FD.Material.Has(gshader.FeatureNormalsOut) || ctx.Has(gshader.FeatureForwardShading) || !ctx.Has(gshader.FeatureRTLighting)
}

// specularMask reports whether the lit pass samples the normal map for
// the specular mask.
func specularMask(ctx *gshader.Context) bool {
	return ctx.Has(gshader.FeaturePixSpecular) && !ctx.Has(gshader.FeatureSpecularMap)
}

func (b Bump) Resources(ctx *gshader.Context) gshader.Resources {
	if forwardBump(ctx) && !prepass(ctx) {
		return b.NormalMap.Resources(ctx)
	}
	var res gshader.Resources
	if prepass(ctx) {
		res = gshader.Resources{NumTex: 1, NumTexReg: 3}
		if !ctx.Has(gshader.FeatureParallax) && !ctx.Has(gshader.FeatureDiffuseMap) {
			res.NumTexReg++
		}
		if ctx.Has(gshader.FeatureDetailNormalMap) {
			res.NumTex++
			if !ctx.Has(gshader.FeatureDetailMap) {
				res.NumTexReg++
			}
		}
		return res
	}
	if specularMask(ctx) {
		res.NumTex = 1
		if !ctx.Has(gshader.FeatureParallax) && !ctx.Has(gshader.FeatureDiffuseMap) {
			res.NumTexReg = 1
		}
	}
	return res
}

func (b Bump) ProcessVert(ctx *gshader.Context) glbuild.Element {
	var meta glbuild.MultiLine
	switch {
	case prepass(ctx):
		ctx.OutViewToTangent(&meta)
		if !ctx.Has(gshader.FeatureParallax) && !ctx.Has(gshader.FeatureDiffuseMap) {
			ctx.OutTexCoord(&meta, glbuild.TexCoord, glbuild.Float2, ctx.Has(gshader.FeatureTexAnim))
		}
		if ctx.Has(gshader.FeatureDetailNormalMap) {
			ctx.AddOutDetailTexCoord(&meta, ctx.Has(gshader.FeatureTexAnim))
		}
	case forwardBump(ctx):
		return b.NormalMap.ProcessVert(ctx)
	case specularMask(ctx):
		ctx.OutTexCoord(&meta, glbuild.TexCoord, glbuild.Float2, ctx.Has(gshader.FeatureTexAnim))
	default:
		return nil
	}
	return meta
}

func (b Bump) ProcessPix(ctx *gshader.Context) glbuild.Element {
	switch {
	case prepass(ctx):
		var meta glbuild.MultiLine
		viewToTangent := ctx.InViewToTangent()
		bump := material.ExpandBump(ctx, &meta)
		gbNormal := ctx.NewLocal(glbuild.GbNormal.Key(), glbuild.Float3)
		// Normalized by the conditioner.
		meta.Add(stmt("@ = $mul( @.xyz, @ );", decl(gbNormal), bump, viewToTangent))
		return meta
	case forwardBump(ctx):
		return b.NormalMap.ProcessPix(ctx)
	case specularMask(ctx) && ctx.Lookup(glbuild.BumpSample) == nil:
		in := ctx.InTexCoord(glbuild.TexCoord, glbuild.Float2)
		sample := ctx.NewLocal(glbuild.BumpSample.Key(), glbuild.Float4)
		return stmt("@ = $tex2D( @, @ );", decl(sample), ctx.NormalMapTex(), in)
	}
	return nil
}
