package material

import (
	"github.com/soypat/gshader"
	"github.com/soypat/gshader/glbuild"
)

// AlphaTest discards pixels whose alpha is below alphaTestValue.
type AlphaTest struct{ gshader.NopFeature }

func (AlphaTest) Name() string { return "Alpha Test" }

func (AlphaTest) ProcessPix(ctx *gshader.Context) glbuild.Element {
	// Below shader model 3 alpha testing is fixed function state unless
	// the pass writes depth.
	if ctx.Target.ShaderModel < 3 && !ctx.Has(gshader.FeatureDepthOut) && !ctx.Has(gshader.FeatureEyeSpaceDepthOut) {
		return nil
	}
	color := ctx.OutputTargetVar(gshader.TargetColor)
	if color == nil {
		return nil
	}
	ref := ctx.Uniform(glbuild.AlphaTestValue.Key(), glbuild.Float, glbuild.SortPotentialPrimitive)
	return glbuild.ByLang(
		stmt("if ( @.a - @ < 0.0 ) discard;", color, ref),
		stmt("clip( @.a - @ );", color, ref),
	)
}

// GlowMask blacks out the color of non glowing passes of glowing materials.
type GlowMask struct{ gshader.NopFeature }

func (GlowMask) Name() string { return "Glow Mask" }

func (GlowMask) ProcessPix(ctx *gshader.Context) glbuild.Element {
	color := ctx.OutputTargetVar(gshader.TargetColor)
	if color == nil {
		return nil
	}
	return stmt("@.rgb = $float3( 0.0, 0.0, 0.0 );", color)
}

// Visibility fades the object out. Translucent passes scale the alpha,
// opaque passes dither with fizzle using the screen position. The distance
// fade of [Foliage] and [ImposterVert] scales the visibility.
type Visibility struct{ gshader.NopFeature }

func (Visibility) Name() string { return "Visibility" }

func (Visibility) Resources(ctx *gshader.Context) gshader.Resources {
	var res gshader.Resources
	if ctx.Has(gshader.FeatureUseInstancing) {
		res.NumTexReg++
	}
	if !ctx.Has(gshader.FeatureIsTranslucent) && newVposInterpolator(ctx) {
		res.NumTexReg++
	}
	return res
}

// newVposInterpolator reports whether passing the screen position to the
// pixel stage allocates an interpolator. Shader model 3 HLSL reads VPOS and
// deferred lighting may have passed it already.
func newVposInterpolator(ctx *gshader.Context) bool {
	switch {
	case ctx.Target.Lang == glbuild.GLSL:
		return ctx.Connector.Lookup(glbuild.ScreenspacePos) == nil
	case ctx.Target.ShaderModel < 3:
		return ctx.Connector.Lookup(glbuild.OutVpos) == nil
	}
	return false
}

func (Visibility) ProcessVert(ctx *gshader.Context) glbuild.Element {
	var meta glbuild.MultiLine
	if ctx.Has(gshader.FeatureUseInstancing) {
		out := ctx.Connect(glbuild.SemanticTexCoord, glbuild.Visibility.Key(), glbuild.Float)
		inst := ctx.InstanceElement(glbuild.InstVisibility.Key(), "visibility", glbuild.Float, 0)
		meta.Add(stmt("@ = @; // Instancing!", out, inst))
	}
	if !ctx.Has(gshader.FeatureIsTranslucent) {
		ctx.AddOutVpos(&meta)
	}
	return meta
}

func (Visibility) ProcessPix(ctx *gshader.Context) glbuild.Element {
	var vis *glbuild.Var
	if ctx.Has(gshader.FeatureUseInstancing) {
		vis = ctx.Connect(glbuild.SemanticTexCoord, glbuild.Visibility.Key(), glbuild.Float)
	} else {
		vis = ctx.Uniform(glbuild.Visibility.Key(), glbuild.Float, glbuild.SortPotentialPrimitive)
	}
	var faded glbuild.Element = vis
	if fade := ctx.Lookup(glbuild.Fade); fade != nil {
		faded = op("@ * @", vis, fade)
	}
	if ctx.Has(gshader.FeatureIsTranslucent) {
		color := ctx.OutputTargetVar(gshader.TargetColor)
		if color == nil {
			return nil
		}
		return stmt("@.a *= @;", color, faded)
	}
	ctx.Include("torque")
	var meta glbuild.MultiLine
	vpos := ctx.InVpos(&meta)
	meta.Add(stmt("fizzle( @, @ );", vpos, faded))
	return meta
}

// Fog blends the color toward fogColor. The fog amount is computed per
// vertex below shader model 3 or when VertexFog is set, per pixel otherwise.
type Fog struct {
	gshader.NopFeature
	VertexFog bool
}

func (Fog) Name() string { return "Fog" }

func (f Fog) Resources(ctx *gshader.Context) gshader.Resources {
	// Per pixel fog shares the world position with lighting.
	if !f.perVertex(ctx) && ctx.Connector.Lookup(glbuild.OutWsPosition) != nil {
		return gshader.Resources{}
	}
	return gshader.Resources{NumTexReg: 1}
}

func (f Fog) perVertex(ctx *gshader.Context) bool {
	return f.VertexFog || ctx.Target.ShaderModel < 3
}

func (f Fog) ProcessVert(ctx *gshader.Context) glbuild.Element {
	var meta glbuild.MultiLine
	if !f.perVertex(ctx) {
		ctx.AddOutWsPosition(&meta)
		return meta
	}
	ctx.Include("torque")
	ws := ctx.WsPosition(&meta)
	amount := ctx.Connect(glbuild.SemanticTexCoord, glbuild.FogAmount.Key(), glbuild.Float)
	meta.Add(stmt("@ = $saturate( @ );", amount, sceneFog(ctx, ws)))
	return meta
}

func (f Fog) ProcessPix(ctx *gshader.Context) glbuild.Element {
	color := ctx.OutputTargetVar(gshader.TargetColor)
	if color == nil {
		return nil
	}
	var meta glbuild.MultiLine
	var amount *glbuild.Var
	if f.perVertex(ctx) {
		amount = ctx.Connect(glbuild.SemanticTexCoord, glbuild.FogAmount.Key(), glbuild.Float)
	} else {
		ctx.Include("torque")
		amount = ctx.NewLocal(glbuild.FogAmount.Key(), glbuild.Float)
		meta.Add(stmt("@ = $saturate( @ );", decl(amount), sceneFog(ctx, ctx.InWsPosition())))
	}
	fogColor := ctx.Uniform(glbuild.FogColor.Key(), glbuild.Float4, glbuild.SortPass)
	meta.Add(stmt("@.rgb = $lerp( @.rgb, @.rgb, @ );", color, fogColor, color, amount))
	return meta
}

func sceneFog(ctx *gshader.Context, wsPosition glbuild.Element) glbuild.Element {
	eye := ctx.Uniform(glbuild.EyePosWorld.Key(), glbuild.Float3, glbuild.SortPass)
	fogData := ctx.Uniform(glbuild.FogData.Key(), glbuild.Float3, glbuild.SortPass)
	return op("computeSceneFog( @, @, @.r, @.g, @.b )", eye, wsPosition, fogData, fogData, fogData)
}

// HDROut encodes the color for a high dynamic range target.
type HDROut struct{ gshader.NopFeature }

func (HDROut) Name() string { return "HDR Output" }

func (HDROut) ProcessPix(ctx *gshader.Context) glbuild.Element {
	color := ctx.OutputTargetVar(gshader.TargetColor)
	if color == nil {
		return nil
	}
	ctx.Include("torque")
	return stmt("@ = hdrEncode( @ );", color, color)
}

// RenderTargetZero writes a near zero color to Target, clearing the light
// buffer of passes that do not light it.
type RenderTargetZero struct {
	gshader.NopFeature
	Target gshader.OutputTarget
}

func (RenderTargetZero) Name() string { return "Render Target Output = 0.0" }

func (f RenderTargetZero) ProcessPix(ctx *gshader.Context) glbuild.Element {
	return ctx.AssignColor(op("$float4( 0.00001, 0.00001, 0.00001, 0.00001 )"), gshader.BlendNone, nil, f.Target)
}
