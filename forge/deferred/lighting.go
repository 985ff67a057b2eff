package deferred

import (
	"github.com/soypat/gshader"
	"github.com/soypat/gshader/forge/material"
	"github.com/soypat/gshader/glbuild"
)

// RTLighting reads the accumulated lighting from the light info buffer at
// the pixel screen position. It declares d_lightcolor, d_NL_Att and
// d_specular for the features after it.
type RTLighting struct{ gshader.NopFeature }

func (RTLighting) Name() string { return "Deferred RT Lighting" }

func (RTLighting) Resources(*gshader.Context) gshader.Resources {
	return gshader.Resources{NumTex: 1, NumTexReg: 1}
}

func (RTLighting) ProcessVert(ctx *gshader.Context) glbuild.Element {
	if ctx.Connector.Lookup(glbuild.ScreenspacePos) != nil {
		return nil
	}
	hpos := ctx.Connector.Lookup(glbuild.Hpos)
	if hpos == nil {
		ctx.Fatalf("screen position requires %q", glbuild.Hpos)
	}
	out := ctx.Connect(glbuild.SemanticTexCoord, glbuild.ScreenspacePos.Key(), glbuild.Float4)
	return stmt("@ = @;", out, hpos)
}

func (RTLighting) ProcessPix(ctx *gshader.Context) glbuild.Element {
	ctx.Include("deferred")
	var meta glbuild.MultiLine
	ssPos := ctx.Connect(glbuild.SemanticTexCoord, glbuild.ScreenspacePos.Key(), glbuild.Float4)
	rtParams := ctx.Uniform(glbuild.RenderTargetParams.Key(), glbuild.Float4, glbuild.SortPass)
	uv := ctx.NewLocal(glbuild.UVScene.Key(), glbuild.Float2)
	meta.Add(stmt("@ = @.xy / @.w;", decl(uv), ssPos, ssPos))
	meta.Add(stmt("@ = ( @ + 1.0 ) / 2.0;", uv, uv))
	meta.Add(glbuild.ByLang(nil, stmt("@.y = 1.0 - @.y;", uv, uv)))
	meta.Add(stmt("@ = ( @ * @.zw ) + @.xy;", uv, uv, rtParams, rtParams))

	buf := ctx.Sampler(glbuild.LightInfoBuffer.Key(), glbuild.Sampler2D)
	sample := ctx.NewLocal(glbuild.LightInfoSample.Key(), glbuild.Float4)
	meta.Add(stmt("@ = $tex2D( @, @ );", decl(sample), buf, uv))
	lightColor := ctx.NewLocal(glbuild.DLightColor.Key(), glbuild.Float3)
	nlAtt := ctx.NewLocal(glbuild.DNLAtt.Key(), glbuild.Float)
	specular := ctx.NewLocal(glbuild.DSpecular.Key(), glbuild.Float)
	meta.Add(stmt("@; @; @;", decl(lightColor), decl(nlAtt), decl(specular)))
	meta.Add(stmt("lightinfoUncondition( @, @, @, @ );", sample, lightColor, nlAtt, specular))

	rtShading := ctx.NewLocal(glbuild.RTShading.Key(), glbuild.Float4)
	meta.Add(stmt("@ = $float4( @, 1.0 );", decl(rtShading), lightColor))
	// These features apply rtShading themselves.
	if !ctx.Has(gshader.FeatureSubSurface) && !ctx.Has(gshader.FeatureToneMap) && !ctx.Has(gshader.FeatureLightMap) {
		meta.Add(ctx.AssignColor(rtShading, gshader.BlendMul, nil, gshader.TargetColor))
	}
	return meta
}

func (RTLighting) SetTexData(ctx *gshader.Context, pass *gshader.PassData) {
	ctx.BindTexture(pass, glbuild.LightInfoBuffer.Key(), "$lightInfoBuffer")
}

// PixelSpecular derives the specular term from the light info buffer.
// Translucent and unlit passes use the forward feature.
type PixelSpecular struct{ material.PixelSpecular }

func (PixelSpecular) Name() string { return "Deferred Pixel Specular" }

func (f PixelSpecular) Resources(ctx *gshader.Context) gshader.Resources {
	if !active(ctx) {
		return f.PixelSpecular.Resources(ctx)
	}
	return gshader.Resources{}
}

func (f PixelSpecular) ProcessVert(ctx *gshader.Context) glbuild.Element {
	if !active(ctx) {
		return f.PixelSpecular.ProcessVert(ctx)
	}
	return nil
}

func (f PixelSpecular) ProcessPix(ctx *gshader.Context) glbuild.Element {
	if !active(ctx) {
		return f.PixelSpecular.ProcessPix(ctx)
	}
	ctx.Require(glbuild.LightInfoSample.Key())
	var meta glbuild.MultiLine
	specColor := ctx.Uniform(glbuild.SpecularColor.Key(), glbuild.Float4, glbuild.SortPotentialPrimitive)
	var specPower *glbuild.Var
	if ctx.Has(gshader.FeatureGlossMap) {
		specPower = ctx.NewLocal(glbuild.SpecularPower.Key(), glbuild.Float)
		meta.Add(stmt("@ = @.a * 255.0;", decl(specPower), specColor))
	} else {
		specPower = ctx.Uniform(glbuild.SpecularPower.Key(), glbuild.Float, glbuild.SortPotentialPrimitive)
	}
	constPower := ctx.Uniform(glbuild.ConstantSpecularPower.Key(), glbuild.Float, glbuild.SortPass)
	dSpecular := ctx.Require(glbuild.DSpecular.Key())
	nlAtt := ctx.Require(glbuild.DNLAtt.Key())
	specular := ctx.NewLocal(glbuild.Specular.Key(), glbuild.Float)
	meta.Add(stmt("@ = pow( @, ceil( @ / @ ) ) * @;", decl(specular), dSpecular, specPower, constPower, nlAtt))

	var final glbuild.Element = op("@ * @", specColor, specular)
	if !ctx.Has(gshader.FeatureSpecularMap) && ctx.Has(gshader.FeatureNormalMap) {
		if bumpSample := ctx.Lookup(glbuild.BumpSample); bumpSample != nil {
			final = op("@ * @.a", final, bumpSample)
		}
	}
	meta.Add(ctx.AssignColor(final, gshader.BlendAdd, nil, gshader.TargetColor))
	return meta
}

// Minnaert darkens the lighting toward silhouettes using the prepass
// normal, for velvet like materials.
type Minnaert struct{ gshader.NopFeature }

func (Minnaert) Name() string { return "Minnaert Shading" }

func (Minnaert) Resources(ctx *gshader.Context) gshader.Resources {
	if !active(ctx) {
		return gshader.Resources{}
	}
	return gshader.Resources{NumTex: 1, NumTexReg: 1}
}

func (Minnaert) ProcessVert(ctx *gshader.Context) glbuild.Element {
	if !active(ctx) {
		return nil
	}
	var meta glbuild.MultiLine
	pos := ctx.RequireVertexInput(glbuild.InPosition.Key())
	objTrans := ctx.ObjTrans(&meta)
	eye := ctx.Uniform(glbuild.EyePosWorld.Key(), glbuild.Float3, glbuild.SortPass)
	out := ctx.Connect(glbuild.SemanticTexCoord, glbuild.OutWSViewVec.Key(), glbuild.Float4)
	meta.Add(stmt("@ = $mul( @, $float4( @.xyz, 1.0 ) ) - $float4( @, 0.0 );", out, objTrans, pos, eye))
	return meta
}

func (Minnaert) ProcessPix(ctx *gshader.Context) glbuild.Element {
	if !active(ctx) {
		return nil
	}
	ctx.Include("deferred")
	var meta glbuild.MultiLine
	k := ctx.Uniform(glbuild.MinnaertConstant.Key(), glbuild.Float, glbuild.SortPotentialPrimitive)
	prepassBuffer := ctx.Sampler(glbuild.PrepassBuffer.Key(), glbuild.Sampler2D)
	uv := ctx.Require(glbuild.UVScene.Key())
	nlAtt := ctx.Require(glbuild.DNLAtt.Key())
	viewVec := ctx.Connect(glbuild.SemanticTexCoord, glbuild.OutWSViewVec.Key(), glbuild.Float4)

	normalDepth := ctx.NewLocal(glbuild.NormalDepth.Key(), glbuild.Float4)
	meta.Add(stmt("@ = prepassUncondition( @, @ );", decl(normalDepth), prepassBuffer, uv))
	worldView := ctx.NewLocal(glbuild.WorldViewVec.Key(), glbuild.Float3)
	meta.Add(stmt("@ = normalize( @.xyz / @.w );", decl(worldView), viewVec, viewVec))
	vDotN := ctx.NewLocal(glbuild.VDotN.Key(), glbuild.Float)
	meta.Add(stmt("@ = dot( @.xyz, @ );", decl(vDotN), normalDepth, worldView))
	m := ctx.NewLocal(glbuild.Minnaert.Key(), glbuild.Float)
	meta.Add(stmt("@ = pow( @, @ ) * pow( @, 1.0 - @ );", decl(m), nlAtt, k, vDotN, k))
	meta.Add(ctx.AssignColor(op("$float4( @, @, @, 1.0 )", m, m, m), gshader.BlendMul, nil, gshader.TargetColor))
	return meta
}

func (Minnaert) SetTexData(ctx *gshader.Context, pass *gshader.PassData) {
	ctx.BindTexture(pass, glbuild.PrepassBuffer.Key(), "$prepassBuffer")
}

// SubSurface adds light wrapping around the terminator to rtShading and
// applies it in place of [RTLighting].
type SubSurface struct{ gshader.NopFeature }

func (SubSurface) Name() string { return "Sub Surface" }

func (SubSurface) ProcessPix(ctx *gshader.Context) glbuild.Element {
	if !active(ctx) {
		return nil
	}
	var meta glbuild.MultiLine
	params := ctx.Uniform(glbuild.SubSurfaceParams.Key(), glbuild.Float4, glbuild.SortPotentialPrimitive)
	rtShading := ctx.Require(glbuild.RTShading.Key())
	nlAtt := ctx.Require(glbuild.DNLAtt.Key())
	subLamb := ctx.NewLocal(glbuild.SubLamb.Key(), glbuild.Float)
	meta.Add(stmt("@ = smoothstep( -@.a, 1.0, @ ) - smoothstep( 0.0, 1.0, @ );", decl(subLamb), params, nlAtt, nlAtt))
	meta.Add(stmt("@ = max( 0.0, @ );", subLamb, subLamb))
	light := op("$float4( @.rgb + ( @ * @.rgb ), 1.0 )", rtShading, subLamb, params)
	meta.Add(ctx.AssignColor(light, gshader.BlendMul, nil, gshader.TargetColor))
	return meta
}
