package material

import (
	"github.com/soypat/gshader"
	"github.com/soypat/gshader/glbuild"
)

// LightMap multiplies the color by a baked lightmap read with the second
// texture coordinate set. With a normal map it only samples the lightmap
// for the bump lighting to use.
type LightMap struct {
	gshader.NopFeature
	// LightmapsInPrepass is set when lightmaps are rendered into the light
	// buffer during the prepass so the buffer color already includes them.
	LightmapsInPrepass bool
}

func (LightMap) Name() string { return "Lightmap" }

func (LightMap) Resources(ctx *gshader.Context) gshader.Resources {
	return gshader.Resources{NumTex: 1, NumTexReg: texRegs(ctx, glbuild.TexCoord2, 1)}
}

func (LightMap) ProcessVert(ctx *gshader.Context) glbuild.Element {
	var meta glbuild.MultiLine
	ctx.OutTexCoord(&meta, glbuild.TexCoord2, glbuild.Float2, false)
	return meta
}

func (f LightMap) ProcessPix(ctx *gshader.Context) glbuild.Element {
	in := ctx.InTexCoord(glbuild.TexCoord2, glbuild.Float2)
	tex := ctx.Sampler(glbuild.LightMap.Key(), glbuild.Sampler2D)
	if ctx.Has(gshader.FeatureNormalMap) {
		lm := ctx.NewLocal(glbuild.LightMapColor.Key(), glbuild.Float4)
		return stmt("@ = @;", decl(lm), sample2D(tex, in))
	}
	light := sample2D(tex, in)
	if lightColor := ctx.Lookup(glbuild.DLightColor); lightColor != nil && ctx.Has(gshader.FeatureRTLighting) {
		if f.LightmapsInPrepass {
			light = op("$float4( @, 1.0 )", lightColor)
		} else {
			light = op("$tex2D(@, @) + $float4( @.rgb, 0.0 )", tex, in, lightColor)
		}
	}
	var meta glbuild.MultiLine
	assignLighting(ctx, &meta, light, gshader.BlendMul)
	return meta
}

func (LightMap) SetTexData(ctx *gshader.Context, pass *gshader.PassData) {
	ctx.BindTexture(pass, glbuild.LightMap.Key(), "$lightMap")
}

// ToneMap applies a baked tone map. Over a diffuse map the tone map is
// reversed and blended with [gshader.BlendToneMap].
type ToneMap struct {
	gshader.NopFeature
	// LightmapsInPrepass is set when lightmaps are rendered into the light
	// buffer during the prepass so the buffer color already includes them.
	LightmapsInPrepass bool
}

func (ToneMap) Name() string { return "Tonemap" }

func (ToneMap) Resources(ctx *gshader.Context) gshader.Resources {
	if ctx.VertexInput(glbuild.VertTexCoord.At(1)) == nil {
		return gshader.Resources{}
	}
	return gshader.Resources{NumTex: 1, NumTexReg: texRegs(ctx, glbuild.TexCoord2, 1)}
}

func (ToneMap) ProcessVert(ctx *gshader.Context) glbuild.Element {
	if ctx.VertexInput(glbuild.VertTexCoord.At(1)) == nil {
		return nil
	}
	var meta glbuild.MultiLine
	ctx.OutTexCoord(&meta, glbuild.TexCoord2, glbuild.Float2, false)
	return meta
}

func (f ToneMap) ProcessPix(ctx *gshader.Context) glbuild.Element {
	if ctx.Connector.Lookup(glbuild.TexCoord2) == nil {
		return nil
	}
	var meta glbuild.MultiLine
	in := ctx.InTexCoord(glbuild.TexCoord2, glbuild.Float2)
	tex := ctx.Sampler(glbuild.ToneMap.Key(), glbuild.Sampler2D)
	color := ctx.NewLocal(glbuild.ToneMapColor.Key(), glbuild.Float4)
	meta.Add(stmt("@ = @;", decl(color), sample2D(tex, in)))
	blend := gshader.BlendMul
	if ctx.Has(gshader.FeatureDiffuseMap) {
		meta.Add(stmt("@ = -1.0 * log(1.0 - @);", color, color))
		blend = gshader.BlendToneMap
	}
	if lightColor := ctx.Lookup(glbuild.DLightColor); lightColor != nil && ctx.Has(gshader.FeatureRTLighting) {
		if f.LightmapsInPrepass {
			meta.Add(stmt("@.rgb = @;", color, lightColor))
		} else {
			meta.Add(stmt("@.rgb += @.rgb;", color, lightColor))
		}
	}
	assignLighting(ctx, &meta, color, blend)
	return meta
}

func (ToneMap) SetTexData(ctx *gshader.Context, pass *gshader.PassData) {
	ctx.BindTexture(pass, glbuild.ToneMap.Key(), "$toneMap")
}

// VertLit lights with the baked vertex color. Lightmaps and tone maps
// take precedence over it.
type VertLit struct {
	gshader.NopFeature
	// LightmapsInPrepass is set when the light buffer already includes the
	// baked vertex color.
	LightmapsInPrepass bool
}

func (VertLit) Name() string { return "Vert Lit" }

func (VertLit) ProcessVert(ctx *gshader.Context) glbuild.Element {
	if ctx.Has(gshader.FeatureLightMap) || ctx.Has(gshader.FeatureToneMap) ||
		ctx.Connector.Lookup(glbuild.VertColor) != nil || ctx.VertexInput(glbuild.InColor.Key()) == nil {
		return nil
	}
	var meta glbuild.MultiLine
	ctx.InColor(&meta)
	return meta
}

func (f VertLit) ProcessPix(ctx *gshader.Context) glbuild.Element {
	if ctx.Has(gshader.FeatureLightMap) || ctx.Has(gshader.FeatureToneMap) || ctx.Connector.Lookup(glbuild.VertColor) == nil {
		return nil
	}
	var meta glbuild.MultiLine
	vertColor := ctx.InColor(nil)
	blend := gshader.BlendMul
	var out glbuild.Element = vertColor
	if ctx.Has(gshader.FeatureDiffuseMap) || ctx.Has(gshader.FeatureVertLitTone) {
		final := ctx.NewLocal(glbuild.FinalVertColor.Key(), glbuild.Float4)
		meta.Add(stmt("@ = -1.0 * log(1.0 - @);", decl(final), vertColor))
		blend = gshader.BlendToneMap
		out = final
	}
	if lightColor := ctx.Lookup(glbuild.DLightColor); lightColor != nil && ctx.Has(gshader.FeatureRTLighting) {
		if f.LightmapsInPrepass {
			out = op("$float4( @.rgb, 1.0 )", lightColor)
		} else {
			out = op("$float4( @.rgb + @.rgb, 1.0 )", lightColor, out)
		}
	}
	assignLighting(ctx, &meta, out, blend)
	return meta
}

// RTLighting lights the pixel with up to four forward lights. It needs a
// vertex normal and gives way to baked lighting. Imposters have no normal
// and are lit as if facing the eye.
type RTLighting struct{ gshader.NopFeature }

func (RTLighting) Name() string { return "RT Lighting" }

func rtLit(ctx *gshader.Context) bool {
	if bakedLighting(ctx) {
		return false
	}
	return ctx.Has(gshader.FeatureImposterVert) || ctx.VertexInput(glbuild.InNormal.Key()) != nil
}

func (RTLighting) Resources(ctx *gshader.Context) gshader.Resources {
	if !rtLit(ctx) {
		return gshader.Resources{}
	}
	res := gshader.Resources{NumTexReg: texRegs(ctx, glbuild.OutWsPosition, 1)}
	if !ctx.Has(gshader.FeatureNormalMap) {
		res.NumTexReg += texRegs(ctx, glbuild.WsNormal, 1)
	}
	return res
}

func (RTLighting) ProcessVert(ctx *gshader.Context) glbuild.Element {
	if !rtLit(ctx) {
		return nil
	}
	var meta glbuild.MultiLine
	switch normal := ctx.VertexInput(glbuild.InNormal.Key()); {
	case ctx.Has(gshader.FeatureNormalMap):
	case normal == nil:
		eyePos := ctx.Uniform(glbuild.EyePosWorld.Key(), glbuild.Float3, glbuild.SortPass)
		pos := ctx.RequireVertexInput(glbuild.InPosition.Key())
		out := ctx.Connect(glbuild.SemanticTexCoord, glbuild.WsNormal.Key(), glbuild.Float3)
		meta.Add(stmt("@ = normalize( @ - @.xyz );", out, eyePos, pos))
	default:
		objTrans := ctx.ObjTrans(&meta)
		out := ctx.Connect(glbuild.SemanticTexCoord, glbuild.WsNormal.Key(), glbuild.Float3)
		meta.Add(stmt("@ = $mul( @, $float4( normalize( @ ), 0.0 ) ).xyz;", out, objTrans, normal))
	}
	ctx.AddOutWsPosition(&meta)
	return meta
}

func (RTLighting) ProcessPix(ctx *gshader.Context) glbuild.Element {
	if !rtLit(ctx) {
		return nil
	}
	ctx.Include("lighting")
	var meta glbuild.MultiLine
	wsNormal := ctx.Lookup(glbuild.WsNormal)
	if wsNormal == nil {
		in := ctx.Connect(glbuild.SemanticTexCoord, glbuild.WsNormal.Key(), glbuild.Float3)
		wsNormal = ctx.NewLocal(glbuild.WsNormal.Key(), glbuild.Float3)
		meta.Add(stmt("@ = normalize( @ );", decl(wsNormal), in))
	}
	wsPosition := ctx.InWsPosition()
	wsView := ctx.WsView(&meta, wsPosition)
	rtShading := ctx.NewLocal(glbuild.RTShading.Key(), glbuild.Float4)
	specular := ctx.NewLocal(glbuild.Specular.Key(), glbuild.Float4)
	meta.Add(stmt("@; @;", decl(rtShading), decl(specular)))

	// Terrain lightmaps mask the sun with a lightMask.
	var lightMask glbuild.Element = op("$float4( 1.0, 1.0, 1.0, 1.0 )")
	if mask := ctx.Lookup(glbuild.LightMask); mask != nil {
		lightMask = mask
	}
	const pp = glbuild.SortPotentialPrimitive
	lightPos := ctx.UniformArray(glbuild.InLightPos.Key(), glbuild.Float4, 3, pp)
	invRadiusSq := ctx.Uniform(glbuild.InLightInvRadiusSq.Key(), glbuild.Float4, pp)
	lightColor := ctx.UniformArray(glbuild.InLightColor.Key(), glbuild.Float4, 4, pp)
	spotDir := ctx.UniformArray(glbuild.InLightSpotDir.Key(), glbuild.Float4, 3, pp)
	spotAngle := ctx.Uniform(glbuild.InLightSpotAngle.Key(), glbuild.Float4, pp)
	spotFalloff := ctx.Uniform(glbuild.InLightSpotFalloff.Key(), glbuild.Float4, pp)
	specularPower := ctx.Uniform(glbuild.SpecularPower.Key(), glbuild.Float, pp)
	specularColor := ctx.Uniform(glbuild.SpecularColor.Key(), glbuild.Float4, pp)
	ambient := ctx.Uniform(glbuild.Ambient.Key(), glbuild.Float4, glbuild.SortPass)

	meta.Add(op("   compute4Lights( @, @, @, @,\n      @, @, @, @, @, @, @, @,\n      @, @ );\n",
		wsView, wsPosition, wsNormal, lightMask,
		lightPos, invRadiusSq, lightColor, spotDir, spotAngle, spotFalloff, specularPower, specularColor,
		rtShading, specular))
	lighting := op("$float4( @.rgb + @.rgb, 1.0 )", rtShading, ambient)
	meta.Add(ctx.AssignColor(lighting, gshader.BlendMul, nil, gshader.TargetColor))
	return meta
}

// PixelSpecular adds the specular term computed by [RTLighting], masked
// by the normal map alpha when there is no specular map.
type PixelSpecular struct{ gshader.NopFeature }

func (PixelSpecular) Name() string { return "Pixel Specular" }

func (PixelSpecular) ProcessPix(ctx *gshader.Context) glbuild.Element {
	specular := ctx.Lookup(glbuild.Specular)
	if specular == nil {
		return nil
	}
	var final glbuild.Element = specular
	if bump := ctx.Lookup(glbuild.BumpNormal); bump != nil && !ctx.Has(gshader.FeatureSpecularMap) {
		final = op("@ * @.a", specular, bump)
	}
	return ctx.AssignColor(final, gshader.BlendAdd, nil, gshader.TargetColor)
}

// SpecularMap reads the specular color from a texture instead of the
// material constant.
type SpecularMap struct{ gshader.NopFeature }

func (SpecularMap) Name() string { return "Specular Map" }

func (SpecularMap) Resources(ctx *gshader.Context) gshader.Resources {
	return gshader.Resources{NumTex: 1, NumTexReg: texRegs(ctx, glbuild.TexCoord, 1)}
}

func (SpecularMap) ProcessVert(ctx *gshader.Context) glbuild.Element {
	var meta glbuild.MultiLine
	ctx.OutTexCoord(&meta, glbuild.TexCoord, glbuild.Float2, useTexAnim(ctx))
	return meta
}

func (SpecularMap) ProcessPix(ctx *gshader.Context) glbuild.Element {
	in := ctx.InTexCoord(glbuild.TexCoord, glbuild.Float2)
	tex := ctx.Sampler(glbuild.SpecularMap.Key(), glbuild.Sampler2D)
	color := ctx.NewLocal(glbuild.SpecularColor.Key(), glbuild.Float4)
	return stmt("@ = @;", decl(color), sample2D(tex, in))
}

func (SpecularMap) SetTexData(ctx *gshader.Context, pass *gshader.PassData) {
	ctx.BindTexture(pass, glbuild.SpecularMap.Key(), "$specularMap")
}
