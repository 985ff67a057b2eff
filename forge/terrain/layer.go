package terrain

import (
	"github.com/soypat/gshader"
	"github.com/soypat/gshader/glbuild"
)

// DetailMap blends one detail layer, selected by the process index, over
// the base color. Layers fade with distance and, with parallax, offset
// their coordinates by the layer normal map height.
type DetailMap struct{ gshader.NopFeature }

func (DetailMap) Name() string { return "Terrain Detail Texture" }

func (DetailMap) Resources(ctx *gshader.Context) gshader.Resources {
	var res gshader.Resources
	idx := ctx.ProcessIndex()
	if idx == 0 {
		// The first layer samples the layer id texture and writes the
		// tangent space transform and view vector for parallax.
		res.NumTex++
		if ctx.Has(gshader.FeatureTerrainParallaxMap) {
			res.NumTexReg += 4
		}
	}
	if !prepass(ctx) {
		res.NumTex++
	}
	if ctx.FD.Features.HasIndex(gshader.FeatureTerrainParallaxMap, idx) {
		res.NumTex++
	}
	res.NumTexReg++
	return res
}

func (DetailMap) ProcessVert(ctx *gshader.Context) glbuild.Element {
	var meta glbuild.MultiLine
	in := baseTexCoord(ctx)
	pos := ctx.RequireVertexInput(glbuild.InPosition.Key())
	eyePos := ctx.Uniform(glbuild.EyePos.Key(), glbuild.Float3, glbuild.SortPotentialPrimitive)

	if ctx.Has(gshader.FeatureTerrainParallaxMap) && ctx.Connector.Lookup(glbuild.OutNegViewTS) == nil {
		ctx.OutObjToTangentSpace(&meta)
		texSpace := ctx.Lookup(glbuild.ObjToTangentSpace)
		out := ctx.Connect(glbuild.SemanticTexCoord, glbuild.OutNegViewTS.Key(), glbuild.Float3)
		meta.Add(stmt("@ = $mul( @, $float3( @ - @.xyz ) );", out, texSpace, eyePos, pos))
	}

	dist := ctx.Lookup(glbuild.Dist)
	if dist == nil {
		dist = ctx.NewLocal(glbuild.Dist.Key(), glbuild.Float)
		meta.Add(stmt("@ = distance( @.xyz, @ );", decl(dist), pos, eyePos))
	}

	idx := ctx.ProcessIndex()
	out := ctx.Connect(glbuild.SemanticTexCoord, glbuild.LayerDetCoord.At(idx), glbuild.Float4)
	scaleFade := ctx.Uniform(glbuild.DetailScaleAndFade.At(idx), glbuild.Float4, glbuild.SortPotentialPrimitive)
	// xyx scale undoes the flipped y of texCoord.
	meta.Add(stmt("@.xyz = @ * @.xyx;", out, in, scaleFade))
	meta.Add(stmt("@.w = clamp( ( @.z - @ ) * @.w, 0.0, 1.0 );", out, scaleFade, dist, scaleFade))
	return meta
}

func (DetailMap) ProcessPix(ctx *gshader.Context) glbuild.Element {
	ctx.Include("torque")
	ctx.Include("terrain")
	idx := ctx.ProcessIndex()
	in := ctx.Connect(glbuild.SemanticTexCoord, glbuild.TexCoord.Key(), glbuild.Float3)
	var meta glbuild.MultiLine

	negViewTS := ctx.Lookup(glbuild.NegViewTS)
	if negViewTS == nil && ctx.Has(gshader.FeatureTerrainParallaxMap) {
		inNeg := ctx.Connect(glbuild.SemanticTexCoord, glbuild.OutNegViewTS.Key(), glbuild.Float3)
		negViewTS = ctx.NewLocal(glbuild.NegViewTS.Key(), glbuild.Float3)
		meta.Add(stmt("@ = normalize( @ );", decl(negViewTS), inNeg))
	}

	layerSample := ctx.Lookup(glbuild.LayerSample)
	if layerSample == nil {
		layerTex := ctx.Sampler(glbuild.LayerTex.Key(), glbuild.Sampler2D)
		layerSample = ctx.NewLocal(glbuild.LayerSample.Key(), glbuild.Float4)
		meta.Add(stmt("@ = round( $tex2D( @, @.xy ) * 255.0 );", decl(layerSample), layerTex, in))
	}
	layerSize := ctx.Uniform(glbuild.LayerSize.Key(), glbuild.Float, glbuild.SortPass)
	det := inDetailCoord(ctx)
	info := detailInfo(ctx)

	blend := ctx.NewLocal(glbuild.DetailBlend.At(idx), glbuild.Float)
	meta.Add(stmt("@ = calcBlend( @.x, @.xy, @, @ );", decl(blend), info, in, layerSize, layerSample))
	total := ctx.Lookup(glbuild.BlendTotal)
	if total == nil {
		total = ctx.NewLocal(glbuild.BlendTotal.Key(), glbuild.Float)
		meta.Add(stmt("@ = 0.0;", decl(total)))
	}
	meta.Add(stmt("@ = max( @, @ );", total, total, blend))

	// Parallax fades out with the layer blend.
	if ctx.FD.Features.HasIndex(gshader.FeatureTerrainParallaxMap, idx) {
		det = ctx.WritableTexCoord(&meta, glbuild.LayerDetCoord.At(idx), glbuild.Float4)
		meta.Add(stmt("@.xy += parallaxOffset( @, @.xy, @, @.z * @ );", det, normalMapTex(ctx), det, negViewTS, info, blend))
	}

	if prepass(ctx) {
		// Without a layer normal map the default normal is blended in so
		// lower layer normals do not show through.
		gbNormal := ctx.Lookup(glbuild.GbNormal)
		if gbNormal != nil && !ctx.FD.Features.HasIndex(gshader.FeatureTerrainNormalMap, idx) {
			viewToTangent := ctx.InViewToTangent()
			meta.Add(stmt("@ = $lerp( @, @[2], min( @, @.w ) );", gbNormal, gbNormal, viewToTangent, blend, det))
		}
		return meta
	}

	detailColor := ctx.Lookup(glbuild.DetailColor)
	if detailColor == nil {
		detailColor = ctx.NewLocal(glbuild.DetailColor.Key(), glbuild.Float4)
		meta.Add(stmt("@;", decl(detailColor)))
	}
	detailMap := ctx.Sampler(glbuild.LayerDetailMap.At(idx), glbuild.Sampler2D)
	base := ctx.Lookup(glbuild.BaseColor)
	color := ctx.OutputTargetVar(gshader.TargetColor)
	if base == nil || color == nil {
		ctx.Fatalf("detail layer requires the terrain base color")
	}

	if ctx.Target.ShaderModel >= 3 {
		meta.Add(stmt("if ( @ > 0.0 )", blend))
	}
	meta.Add(stmt("{"))
	if ctx.FD.Features.HasIndex(gshader.FeatureTerrainSideProject, idx) {
		meta.Add(stmt("   @ = ( $lerp( $tex2D( @, @.yz ), $tex2D( @, @.xz ), @.z ) * 2.0 ) - 1.0;",
			detailColor, detailMap, det, detailMap, det, in))
	} else {
		meta.Add(stmt("   @ = ( $tex2D( @, @.xy ) * 2.0 ) - 1.0;", detailColor, detailMap, det))
	}
	meta.Add(stmt("   @ *= @.y * @.w;", detailColor, info, det))
	meta.Add(stmt("   @ = $lerp( @, @ + @, @ );", color, color, base, detailColor, blend))
	meta.Add(stmt("}"))
	return meta
}

func (DetailMap) SetTexData(ctx *gshader.Context, pass *gshader.PassData) {
	if ctx.ProcessIndex() == 0 {
		bind(ctx, pass, glbuild.LayerTex.Key())
	}
	idx := ctx.ProcessIndex()
	bind(ctx, pass, glbuild.LayerDetailMap.At(idx))
	if !ctx.FD.Features.HasIndex(gshader.FeatureTerrainNormalMap, idx) {
		// Parallax height only.
		bind(ctx, pass, glbuild.LayerNormalMap.At(idx))
	}
}

// NormalMap blends the layer normal map into the gbuffer normal. It only
// contributes to the prepass.
type NormalMap struct{ gshader.NopFeature }

func (NormalMap) Name() string { return "Terrain Normal Texture" }

func (NormalMap) Resources(ctx *gshader.Context) gshader.Resources {
	if !prepass(ctx) {
		return gshader.Resources{}
	}
	res := gshader.Resources{NumTex: 1}
	idx := ctx.ProcessIndex()
	// The first normal layer writes viewToTangent unless parallax did.
	if !ctx.Has(gshader.FeatureTerrainParallaxMap) &&
		(idx == 0 || !ctx.FD.Features.HasIndex(gshader.FeatureTerrainNormalMap, idx-1)) {
		res.NumTexReg = 3
	}
	return res
}

func (NormalMap) ProcessVert(ctx *gshader.Context) glbuild.Element {
	if !prepass(ctx) {
		return nil
	}
	var meta glbuild.MultiLine
	ctx.OutViewToTangent(&meta)
	return meta
}

func (NormalMap) ProcessPix(ctx *gshader.Context) glbuild.Element {
	if !prepass(ctx) {
		return nil
	}
	var meta glbuild.MultiLine
	idx := ctx.ProcessIndex()
	viewToTangent := ctx.InViewToTangent()
	gbNormal := ctx.Lookup(glbuild.GbNormal)
	if gbNormal == nil {
		gbNormal = ctx.NewLocal(glbuild.GbNormal.Key(), glbuild.Float3)
		meta.Add(stmt("@ = @[2];", decl(gbNormal), viewToTangent))
	}
	blend := ctx.Require(glbuild.DetailBlend.At(idx))
	// Layers share one bumpNormal declared outside their blocks.
	bump := ctx.Lookup(glbuild.BumpNormal)
	if bump == nil {
		bump = ctx.NewLocal(glbuild.BumpNormal.Key(), glbuild.Float4)
		meta.Add(stmt("@;", decl(bump)))
	}

	if ctx.Target.ShaderModel >= 3 {
		meta.Add(stmt("if ( @ > 0.0 )", blend))
	}
	meta.Add(stmt("{"))
	tex := normalMapTex(ctx)
	det := inDetailCoord(ctx)
	var sample glbuild.Element
	if ctx.FD.Features.HasIndex(gshader.FeatureTerrainSideProject, idx) {
		in := ctx.Connect(glbuild.SemanticTexCoord, glbuild.TexCoord.Key(), glbuild.Float3)
		sample = op("$lerp( $tex2D( @, @.yz ), $tex2D( @, @.xz ), @.z )", tex, det, tex, det, in)
	} else {
		sample = op("$tex2D( @, @.xy )", tex, det)
	}
	meta.Add(ctx.ExpandNormalMap(sample, bump, bump))
	// Normalized by the conditioner.
	meta.Add(stmt("   @ = $lerp( @, $mul( @.xyz, @ ), min( @, @.w ) );", gbNormal, gbNormal, bump, viewToTangent, blend, det))
	meta.Add(stmt("}"))
	return meta
}

func (NormalMap) SetTexData(ctx *gshader.Context, pass *gshader.PassData) {
	bind(ctx, pass, glbuild.LayerNormalMap.At(ctx.ProcessIndex()))
}
