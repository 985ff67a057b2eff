package terrain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/soypat/gshader"
	"github.com/soypat/gshader/forge"
	"github.com/soypat/gshader/forge/deferred"
	"github.com/soypat/gshader/glbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func terrainFormat() gshader.VertexFormat {
	var vf gshader.VertexFormat
	vf.Add(gshader.VertexPosition, 0, glbuild.Float3)
	vf.Add(gshader.VertexNormal, 0, glbuild.Float3)
	vf.Add(gshader.VertexTangentZ, 0, glbuild.Float)
	return vf
}

type layer struct {
	idx      int
	normal   bool
	side     bool
	parallax bool
}

func terrainRequest(target gshader.Target, extra []gshader.FeatureType, layers ...layer) gshader.Request {
	req := gshader.Request{Target: target, Format: terrainFormat()}
	fs := &req.Features.Features
	fs.Add(gshader.FeatureVertPosition)
	fs.Add(gshader.FeatureTerrainBaseMap)
	for _, l := range layers {
		fs.AddIndexed(gshader.FeatureTerrainDetailMap, l.idx)
		if l.normal {
			fs.AddIndexed(gshader.FeatureTerrainNormalMap, l.idx)
		}
		if l.side {
			fs.AddIndexed(gshader.FeatureTerrainSideProject, l.idx)
		}
		if l.parallax {
			fs.AddIndexed(gshader.FeatureTerrainParallaxMap, l.idx)
		}
	}
	for _, t := range extra {
		fs.Add(t)
	}
	req.Features.Material = fs.Clone()
	return req
}

func generate(t *testing.T, m *gshader.FeatureManager, req gshader.Request) gshader.Result {
	t.Helper()
	gen := gshader.Generator{Features: m}
	res, err := gen.Generate(req)
	require.NoError(t, err)
	assert.Equal(t, res.Resources.NumTex, strings.Count(res.Pixel, "uniform sampler"), "texture units\n%s", res.Pixel)
	assert.Equal(t, res.Resources.NumTexReg, res.Interpolators, "texcoord registers\n%s", res.Vertex)
	return res
}

func TestTerrainLayers(t *testing.T) {
	m := forge.NewManager(forge.Options{})
	extra := []gshader.FeatureType{gshader.FeatureTerrainLightMap, gshader.FeatureRTLighting, gshader.FeatureTerrainAdditive}
	res := generate(t, m, terrainRequest(gshader.DefaultTarget(glbuild.HLSL), extra, layer{idx: 0}, layer{idx: 1}))

	for _, want := range []string{
		"OUT.texCoord = IN.position.xyz * float3( oneOverTerrainSize, oneOverTerrainSize, -oneOverTerrainSize );",
		"OUT.texCoord.z = 0.0;",
		"float3 T = normalize( float3( squareSize, 0.0, IN.tcTangentZ ) );",
		"float dist = distance( IN.position.xyz, eyePos );",
		"OUT.detCoord0.xyz = OUT.texCoord * detailScaleAndFade0.xyx;",
		"OUT.detCoord1.w = clamp( ( detailScaleAndFade1.z - dist ) * detailScaleAndFade1.w, 0.0, 1.0 );",
	} {
		assert.Contains(t, res.Vertex, want)
	}
	for _, want := range []string{
		"float4 baseColor = tex2D( baseTexMap, IN.texCoord.xy );",
		"float4 layerSample = round( tex2D( layerTex, IN.texCoord.xy ) * 255.0 );",
		"float detailBlend1 = calcBlend( detailIdStrengthParallax1.x, IN.texCoord.xy, layerSize, layerSample );",
		"blendTotal = max( blendTotal, detailBlend1 );",
		"if ( detailBlend0 > 0.0 )",
		"detailColor = ( tex2D( detailMap1, IN.detCoord1.xy ) * 2.0 ) - 1.0;",
		"detailColor *= detailIdStrengthParallax0.y * IN.detCoord0.w;",
		"col = lerp( col, baseColor + detailColor, detailBlend1 );",
		"lightMask[0] = tex2D( lightMapTex, IN.texCoord.xy ).r;",
		"compute4Lights( wsView, IN.outWsPosition, wsNormal, lightMask,",
		"clip( blendTotal - 0.0001 );",
		"col.a = blendTotal;",
		`#include "shaders/common/terrain.hlsl"`,
	} {
		assert.Contains(t, res.Pixel, want)
	}
	// Shared values are declared once for all layers.
	for _, decl := range []string{"float blendTotal", "float4 layerSample", "float4 detailColor"} {
		assert.Equal(t, 1, strings.Count(res.Pixel, decl), decl)
	}
	assert.Equal(t, 1, strings.Count(res.Vertex, "float dist ="))

	var sources []string
	for _, tb := range res.Pass.Textures {
		sources = append(sources, tb.Source)
	}
	assert.Equal(t, []string{"$baseTexMap", "$layerTex", "$detailMap0", "$detailMap1", "$lightMapTex"}, sources)
	assert.Equal(t, gshader.Resources{NumTex: 5, NumTexReg: 5}, res.Resources)
}

func TestTerrainShaderModel2(t *testing.T) {
	target := gshader.DefaultTarget(glbuild.HLSL)
	target.ShaderModel = 2
	res := generate(t, forge.NewManager(forge.Options{}), terrainRequest(target, nil, layer{idx: 0}))
	assert.NotContains(t, res.Pixel, "if (", "no dynamic branching below shader model 3")
	assert.Contains(t, res.Pixel, "col = lerp( col, baseColor + detailColor, detailBlend0 );")
}

func TestTerrainSideProjection(t *testing.T) {
	res := generate(t, forge.NewManager(forge.Options{}),
		terrainRequest(gshader.DefaultTarget(glbuild.HLSL), nil, layer{idx: 0, side: true}))
	assert.Contains(t, res.Vertex, "OUT.texCoord.z = pow( abs( dot( normalize( float3( IN.normal.x, IN.normal.y, 0.0 ) ), float3( 0.0, 1.0, 0.0 ) ) ), 10.0 );")
	assert.Contains(t, res.Pixel, "detailColor = ( lerp( tex2D( detailMap0, IN.detCoord0.yz ), tex2D( detailMap0, IN.detCoord0.xz ), IN.texCoord.z ) * 2.0 ) - 1.0;")
}

func TestTerrainParallax(t *testing.T) {
	res := generate(t, forge.NewManager(forge.Options{}),
		terrainRequest(gshader.DefaultTarget(glbuild.GLSL), nil, layer{idx: 0, parallax: true}))
	assert.Contains(t, res.Vertex, "OUT_objToTangentSpace = objToTangentSpace;")
	assert.Contains(t, res.Vertex, "OUT_outNegViewTS = tMul( objToTangentSpace, vec3( eyePos - IN_position.xyz ) );")
	assert.Contains(t, res.Pixel, "vec3 negViewTS = normalize( IN_outNegViewTS );")
	// GLSL inputs are read only, the offset applies to a local copy.
	assert.Contains(t, res.Pixel, "vec4 detCoord0 = IN_detCoord0;")
	assert.Contains(t, res.Pixel, "detCoord0.xy += parallaxOffset( normalMap0, detCoord0.xy, negViewTS, detailIdStrengthParallax0.z * detailBlend0 );")
	assert.NotContains(t, res.Pixel, "IN_detCoord0.xy +=")
	assert.Contains(t, res.Pixel, "texture( detailMap0, detCoord0.xy )")
	// The layer normal map is bound for its height alone.
	assert.Equal(t, "$normalMap0", res.Pass.Textures[len(res.Pass.Textures)-1].Source)
}

func TestTerrainPrepass(t *testing.T) {
	m := forge.NewManager(forge.Options{})
	deferred.Register(m)
	extra := []gshader.FeatureType{gshader.FeaturePrePassConditioner}
	res := generate(t, m, terrainRequest(gshader.DefaultTarget(glbuild.HLSL), extra,
		layer{idx: 0, normal: true}, layer{idx: 1}))

	assert.NotContains(t, res.Pixel, "baseTexMap", "the prepass does not color")
	assert.NotContains(t, res.Pixel, "detailMap0")
	assert.Contains(t, res.Vertex, "OUT.viewToTangent = mul( objToTangentSpace, (float3x3)( viewToObj ) );")
	for _, want := range []string{
		"float3 gbNormal = IN.viewToTangent[2];",
		"float4 bumpNormal;",
		"bumpNormal = tex2D( normalMap0, IN.detCoord0.xy );",
		"gbNormal = lerp( gbNormal, mul( bumpNormal.xyz, IN.viewToTangent ), min( detailBlend0, IN.detCoord0.w ) );",
		"gbNormal = normalize( gbNormal );",
		"float4 col = prepassCondition( gbNormal, IN.prepassDepth );",
	} {
		assert.Contains(t, res.Pixel, want)
	}
	assert.Equal(t, gshader.Resources{NumTex: 2, NumTexReg: 7}, res.Resources)
}

func TestTerrainLayerWithoutBase(t *testing.T) {
	req := terrainRequest(gshader.DefaultTarget(glbuild.HLSL), nil, layer{idx: 0})
	req.Features.Features.Remove(gshader.FeatureTerrainBaseMap)
	gen := gshader.Generator{Features: forge.NewManager(forge.Options{})}
	_, err := gen.Generate(req)
	var gerr *gshader.Error
	require.True(t, errors.As(err, &gerr), "got %v", err)
	assert.Equal(t, "Terrain Detail Texture", gerr.Feature)
}
