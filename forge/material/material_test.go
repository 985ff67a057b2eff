package material_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/soypat/gshader"
	"github.com/soypat/gshader/forge"
	"github.com/soypat/gshader/glbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func meshFormat() gshader.VertexFormat {
	var vf gshader.VertexFormat
	vf.Add(gshader.VertexPosition, 0, glbuild.Float3)
	vf.Add(gshader.VertexNormal, 0, glbuild.Float3)
	vf.Add(gshader.VertexTangent, 0, glbuild.Float3)
	vf.Add(gshader.VertexColor, 0, glbuild.Float4)
	vf.Add(gshader.VertexTexCoord, 0, glbuild.Float2)
	vf.Add(gshader.VertexTexCoord, 1, glbuild.Float2)
	return vf
}

func request(target gshader.Target, types ...gshader.FeatureType) gshader.Request {
	req := gshader.Request{Target: target, Format: meshFormat()}
	for _, t := range types {
		req.Features.Features.Add(t)
		req.Features.Material.Add(t)
	}
	return req
}

func generate(t *testing.T, req gshader.Request) gshader.Result {
	t.Helper()
	gen := gshader.Generator{Features: forge.NewManager(forge.Options{})}
	res, err := gen.Generate(req)
	require.NoError(t, err)
	for _, stage := range []string{res.Vertex, res.Pixel} {
		require.NotEmpty(t, stage)
	}
	// Every reserved texture unit is a declared sampler.
	assert.Equal(t, res.Resources.NumTex, strings.Count(res.Pixel, "uniform sampler"), "texture units\n%s", res.Pixel)
	// Shared interpolators are reserved once.
	assert.Equal(t, res.Interpolators, res.Resources.NumTexReg, "texcoord registers\n%s", res.Vertex)
	return res
}

func TestResourcesMatchEmittedCode(t *testing.T) {
	noNormal := gshader.VertexFormat{}
	noNormal.Add(gshader.VertexPosition, 0, glbuild.Float3)
	noNormal.Add(gshader.VertexTexCoord, 0, glbuild.Float2)

	req := request(hlsl(), gshader.FeatureVertPosition, gshader.FeatureReflectCube)
	req.Format = noNormal
	res := generate(t, req)
	assert.Zero(t, res.Resources, "no reflection without a normal")

	req = request(hlsl(), gshader.FeatureVertPosition, gshader.FeatureRTLighting)
	req.Format = noNormal
	res = generate(t, req)
	assert.Zero(t, res.Resources, "no lighting without a normal")

	req = request(hlsl(), gshader.FeatureVertPosition, gshader.FeatureToneMap)
	req.Format = noNormal
	res = generate(t, req)
	assert.Zero(t, res.Resources, "no tone map without a second uv set")
	assert.NotContains(t, res.Pixel, "toneMap")

	res = generate(t, request(glsl(), gshader.FeatureVertPosition, gshader.FeatureSpecularMap))
	assert.Equal(t, gshader.Resources{NumTex: 1, NumTexReg: 1}, res.Resources)

	res = generate(t, request(hlsl(), gshader.FeatureVertPosition, gshader.FeatureOverlayMap, gshader.FeatureLightMap))
	assert.Equal(t, gshader.Resources{NumTex: 2, NumTexReg: 1}, res.Resources, "overlay and lightmap share texCoord2")

	res = generate(t, request(hlsl(), gshader.FeatureVertPosition, gshader.FeatureParallax, gshader.FeatureDiffuseMap,
		gshader.FeatureNormalMap, gshader.FeatureRTLighting, gshader.FeatureFog))
	// texCoord, outNegViewTS, worldToTangent rows and outWsPosition.
	assert.Equal(t, 6, res.Resources.NumTexReg)
}

func hlsl() gshader.Target { return gshader.DefaultTarget(glbuild.HLSL) }
func glsl() gshader.Target { return gshader.DefaultTarget(glbuild.GLSL) }

func TestTexturedFog(t *testing.T) {
	res := generate(t, request(hlsl(), gshader.FeatureVertPosition, gshader.FeatureDiffuseMap,
		gshader.FeatureOverlayMap, gshader.FeatureFog))
	assert.Contains(t, res.Vertex, "OUT.hpos = mul( modelview, float4( IN.position.xyz, 1.0 ) );")
	assert.Contains(t, res.Vertex, "OUT.texCoord = IN.vert_texCoord;")
	assert.Contains(t, res.Vertex, "OUT.texCoord2 = IN.vert_texCoord2;")
	assert.Contains(t, res.Pixel, "float4 col = tex2D(diffuseMap, IN.texCoord);")
	assert.Contains(t, res.Pixel, "col.rgb = lerp( col.rgb, (tex2D(overlayMap, IN.texCoord2)).rgb, (tex2D(overlayMap, IN.texCoord2)).a );")
	assert.Contains(t, res.Pixel, "float fogAmount = saturate( computeSceneFog( eyePosWorld, IN.outWsPosition, fogData.r, fogData.g, fogData.b ) );")
	assert.Contains(t, res.Pixel, "col.rgb = lerp( fogColor.rgb, col.rgb, fogAmount );")
	assert.Contains(t, res.Pixel, `#include "shaders/common/torque.hlsl"`)

	assert.Equal(t, 3, res.Resources.NumTexReg)
	assert.Equal(t, res.Resources.NumTexReg, res.Interpolators)
	require.Len(t, res.Pass.Textures, 2)
	assert.Equal(t, gshader.TextureBinding{Sampler: "diffuseMap", Unit: 0, Source: "$diffuseMap"}, res.Pass.Textures[0])
	assert.Equal(t, gshader.TextureBinding{Sampler: "overlayMap", Unit: 1, Source: "$overlayMap"}, res.Pass.Textures[1])
}

func TestVertexFog(t *testing.T) {
	target := hlsl()
	target.ShaderModel = 2
	res := generate(t, request(target, gshader.FeatureVertPosition, gshader.FeatureDiffuseColor, gshader.FeatureFog))
	assert.Contains(t, res.Vertex, "OUT.fogAmount = saturate( computeSceneFog(")
	assert.Contains(t, res.Pixel, "col.rgb = lerp( fogColor.rgb, col.rgb, IN.fogAmount );")
	assert.NotContains(t, res.Pixel, "outWsPosition")
}

func TestAlphaTest(t *testing.T) {
	types := []gshader.FeatureType{gshader.FeatureVertPosition, gshader.FeatureDiffuseMap, gshader.FeatureAlphaTest}
	res := generate(t, request(glsl(), types...))
	assert.Contains(t, res.Pixel, "if ( col.a - alphaTestValue < 0.0 ) discard;")

	res = generate(t, request(hlsl(), types...))
	assert.Contains(t, res.Pixel, "clip( col.a - alphaTestValue );")

	target := hlsl()
	target.ShaderModel = 2
	res = generate(t, request(target, types...))
	assert.NotContains(t, res.Pixel, "alphaTestValue", "fixed function alpha test below shader model 3")

	req := request(target, types...)
	req.Features.Features.Add(gshader.FeatureDepthOut)
	res = generate(t, req)
	assert.Contains(t, res.Pixel, "clip( col.a - alphaTestValue );")
}

func TestNormalMapLighting(t *testing.T) {
	res := generate(t, request(hlsl(), gshader.FeatureVertPosition, gshader.FeatureDiffuseMap,
		gshader.FeatureNormalMap, gshader.FeatureRTLighting, gshader.FeaturePixSpecular))
	assert.Contains(t, res.Vertex, "float3 B = cross( IN.T, normalize(IN.normal) );")
	assert.Contains(t, res.Vertex, "OUT.worldToTangent = mul( objToTangentSpace, (float3x3)( worldToObj ) );")
	assert.Contains(t, res.Pixel, "float4 bumpNormal = tex2D(bumpMap, IN.texCoord);")
	assert.Contains(t, res.Pixel, "bumpNormal.xyz = bumpNormal.xyz * 2.0 - 1.0;")
	assert.Contains(t, res.Pixel, "float3 wsNormal = normalize( mul( bumpNormal.xyz, IN.worldToTangent ) );")
	assert.Contains(t, res.Pixel, "compute4Lights( wsView, IN.outWsPosition, wsNormal,")
	assert.Contains(t, res.Pixel, "col *= float4( rtShading.rgb + ambient.rgb, 1.0 );")
	assert.Contains(t, res.Pixel, "col += specular * bumpNormal.a;")
	// The normal map owns the normal, lighting only adds the world position.
	assert.NotContains(t, res.Vertex, "OUT.wsNormal")

	// texCoord, worldToTangent rows and outWsPosition.
	assert.Equal(t, 5, res.Interpolators)
	assert.Equal(t, res.Interpolators, res.Resources.NumTexReg)
	assert.Equal(t, 2, res.Resources.NumTex)
}

func TestVertexNormalLighting(t *testing.T) {
	res := generate(t, request(glsl(), gshader.FeatureVertPosition, gshader.FeatureRTLighting))
	assert.Contains(t, res.Vertex, "OUT_wsNormal = tMul( objTrans, vec4( normalize( IN_normal ), 0.0 ) ).xyz;")
	assert.Contains(t, res.Pixel, "vec3 wsNormal = normalize( IN_wsNormal );")
	assert.Contains(t, res.Pixel, `#include "shaders/common/gl/lighting.glsl"`)
	assert.Equal(t, 2, res.Resources.NumTexReg)
	assert.Equal(t, 1, strings.Count(res.Vertex, "uniform mat4 objTrans;"))
}

func TestBakedLightingReplacesRTLighting(t *testing.T) {
	res := generate(t, request(hlsl(), gshader.FeatureVertPosition, gshader.FeatureDiffuseMap,
		gshader.FeatureRTLighting, gshader.FeatureLightMap))
	assert.NotContains(t, res.Pixel, "compute4Lights")
	assert.Contains(t, res.Pixel, "col *= tex2D(lightMap, IN.texCoord2);")
	assert.Equal(t, 2, res.Resources.NumTexReg)
}

func TestLightbufferMRT(t *testing.T) {
	req := request(hlsl(), gshader.FeatureVertPosition, gshader.FeatureLightMap)
	req.Features.Features.Add(gshader.FeatureLightbufferMRT)
	res := generate(t, req)
	assert.Contains(t, res.Pixel, "float4 col1 = tex2D(lightMap, IN.texCoord2);")
	assert.Contains(t, res.Pixel, "col1.a = 0.0001;")
	assert.Contains(t, res.Pixel, "float4 col1 : COLOR1;")
	assert.Contains(t, res.Pixel, "OUT.col1 = col1;")
	// The main target still gets a color.
	assert.Contains(t, res.Pixel, "float4 col = float4( 0.0, 0.0, 0.0, 1.0 );")
}

func TestToneMapOverDiffuse(t *testing.T) {
	res := generate(t, request(hlsl(), gshader.FeatureVertPosition, gshader.FeatureDiffuseMap, gshader.FeatureToneMap))
	assert.Contains(t, res.Pixel, "float4 toneMapColor = tex2D(toneMap, IN.texCoord2);")
	assert.Contains(t, res.Pixel, "toneMapColor = -1.0 * log(1.0 - toneMapColor);")
	assert.Contains(t, res.Pixel, "col = 1.0 - exp(-1.0 * col * toneMapColor);")
}

func TestVertLit(t *testing.T) {
	res := generate(t, request(glsl(), gshader.FeatureVertPosition, gshader.FeatureDiffuseMap, gshader.FeatureVertLit))
	assert.Contains(t, res.Vertex, "OUT_vertColor = IN_diffuse;")
	assert.Contains(t, res.Pixel, "vec4 finalVertColor = -1.0 * log(1.0 - IN_vertColor);")
	assert.Contains(t, res.Pixel, "col = 1.0 - exp(-1.0 * col * finalVertColor);")

	// Lightmaps take precedence.
	res = generate(t, request(glsl(), gshader.FeatureVertPosition, gshader.FeatureVertLit, gshader.FeatureLightMap))
	assert.NotContains(t, res.Pixel, "vertColor")
}

func TestReflectCubeGlossMap(t *testing.T) {
	req := request(hlsl(), gshader.FeatureVertPosition, gshader.FeatureReflectCube)
	req.Features.Material.Add(gshader.FeatureDiffuseMap)
	res := generate(t, req)
	assert.Contains(t, res.Vertex, "OUT.reflectVec = reflect( eyeToVert, cubeNormal );")
	assert.Contains(t, res.Pixel, "float4 diffuseColor = tex2D( glossMap, IN.texCoord );")
	assert.Contains(t, res.Pixel, "texCUBE( cubeMap, IN.reflectVec )")
	assert.Equal(t, gshader.Resources{NumTex: 2, NumTexReg: 2}, res.Resources)
	assert.Equal(t, []gshader.TextureBinding{
		{Sampler: "glossMap", Unit: 0, Source: "$diffuseMap"},
		{Sampler: "cubeMap", Unit: 1, Source: "$cubeMap"},
	}, res.Pass.Textures)

	// With the diffuse map in the pass its color is the gloss.
	req = request(hlsl(), gshader.FeatureVertPosition, gshader.FeatureDiffuseMap, gshader.FeatureReflectCube)
	req.Features.Features.Add(gshader.FeatureCubeMap)
	res = generate(t, req)
	assert.Contains(t, res.Pixel, "float4 diffuseColor = tex2D(diffuseMap, IN.texCoord);")
	assert.Contains(t, res.Pixel, "col.rgb = lerp( col.rgb, (texCUBE( cubeMap, IN.reflectVec )).rgb, (diffuseColor).a );")
	assert.Equal(t, "$dynamicCubeMap", res.Pass.Textures[len(res.Pass.Textures)-1].Source)
}

func TestParallax(t *testing.T) {
	types := []gshader.FeatureType{gshader.FeatureVertPosition, gshader.FeatureParallax,
		gshader.FeatureDiffuseMap, gshader.FeatureNormalMap}
	res := generate(t, request(hlsl(), types...))
	assert.Contains(t, res.Pixel, "IN.texCoord += parallaxOffset( bumpMap, IN.texCoord, negViewTS, parallaxInfo );")
	assert.Contains(t, res.Pixel, "tex2D(diffuseMap, IN.texCoord)")

	// GLSL inputs are read only so later features read the offset copy.
	res = generate(t, request(glsl(), types...))
	assert.Contains(t, res.Pixel, "vec2 texCoord = IN_texCoord;")
	assert.Contains(t, res.Pixel, "texCoord += parallaxOffset( bumpMap, texCoord, negViewTS, parallaxInfo );")
	assert.NotContains(t, res.Pixel, "IN_texCoord +=")
	assert.Contains(t, res.Pixel, "texture(diffuseMap, texCoord)")
	assert.Contains(t, res.Pixel, "texture(bumpMap, texCoord)")
}

func TestDetailMap(t *testing.T) {
	res := generate(t, request(hlsl(), gshader.FeatureVertPosition, gshader.FeatureDiffuseMap, gshader.FeatureDetailMap))
	assert.Contains(t, res.Vertex, "OUT.detCoord = IN.vert_texCoord * detailScale;")
	assert.Contains(t, res.Pixel, "col += ( tex2D(detailMap, IN.detCoord) * 2.0 ) - 1.0;")
}

func TestTexAnim(t *testing.T) {
	res := generate(t, request(hlsl(), gshader.FeatureVertPosition, gshader.FeatureTexAnim, gshader.FeatureDiffuseMap))
	assert.Contains(t, res.Vertex, "OUT.texCoord = mul( texMat, float4( IN.vert_texCoord, 0.0, 1.0 ) ).xy;")
}

func TestDXTnm(t *testing.T) {
	req := request(hlsl(), gshader.FeatureVertPosition, gshader.FeatureDiffuseMap, gshader.FeatureNormalMap)
	req.Features.Features.Add(gshader.FeatureIsDXTnm)
	res := generate(t, req)
	assert.Contains(t, res.Pixel, "float4 bumpNormal = float4( tex2D(bumpMap, IN.texCoord).ag * 2.0 - 1.0, 0.0, 0.0 ); // DXTnm")
	assert.Contains(t, res.Pixel, "bumpNormal.z = sqrt( 1.0 - dot( bumpNormal.xy, bumpNormal.xy ) ); // DXTnm")
}

func TestVisibility(t *testing.T) {
	req := request(hlsl(), gshader.FeatureVertPosition, gshader.FeatureDiffuseMap, gshader.FeatureVisibility)
	req.Features.Features.Add(gshader.FeatureUseInstancing)
	res := generate(t, req)
	assert.Contains(t, res.Vertex, "OUT.visibility = IN.inst_visibility; // Instancing!")
	assert.Contains(t, res.Pixel, "fizzle( IN.vpos, IN.visibility );")
	var names []string
	for _, e := range res.Instancing.Elements {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "visibility")

	req = request(glsl(), gshader.FeatureVertPosition, gshader.FeatureDiffuseMap, gshader.FeatureVisibility)
	req.Features.Features.Add(gshader.FeatureIsTranslucent)
	res = generate(t, req)
	assert.Contains(t, res.Pixel, "col.a *= visibility;")
	assert.Equal(t, 1, res.Resources.NumTexReg)
}

func TestPostEffects(t *testing.T) {
	res := generate(t, request(hlsl(), gshader.FeatureVertPosition, gshader.FeatureDiffuseMap,
		gshader.FeatureGlowMask, gshader.FeatureHDROut))
	glow := strings.Index(res.Pixel, "col.rgb = float3( 0.0, 0.0, 0.0 );")
	hdr := strings.Index(res.Pixel, "col = hdrEncode( col );")
	require.True(t, glow > 0 && hdr > 0, res.Pixel)
	assert.Less(t, glow, hdr, "features print in priority order")
}

func TestRenderTargetZero(t *testing.T) {
	res := generate(t, request(glsl(), gshader.FeatureVertPosition, gshader.FeatureDiffuseMap, gshader.FeatureRenderTargetZero))
	assert.Contains(t, res.Pixel, "vec4 col1 = vec4( 0.00001, 0.00001, 0.00001, 0.00001 );")
	assert.Contains(t, res.Pixel, "gl_FragData[1] = col1;")
}

func TestMissingVertexInput(t *testing.T) {
	req := request(hlsl(), gshader.FeatureVertPosition, gshader.FeatureDetailMap)
	req.Format = gshader.VertexFormat{}
	req.Format.Add(gshader.VertexPosition, 0, glbuild.Float3)
	gen := gshader.Generator{Features: forge.NewManager(forge.Options{})}
	_, err := gen.Generate(req)
	var gerr *gshader.Error
	require.True(t, errors.As(err, &gerr), "got %v", err)
	assert.Equal(t, "Detail", gerr.Feature)
	assert.Equal(t, glbuild.StageVertex, gerr.Stage)
}

func foliageFormat() gshader.VertexFormat {
	var vf gshader.VertexFormat
	vf.Add(gshader.VertexPosition, 0, glbuild.Float3)
	vf.Add(gshader.VertexNormal, 0, glbuild.Float3)
	vf.Add(gshader.VertexColor, 0, glbuild.Float4)
	vf.Add(gshader.VertexTexCoord, 0, glbuild.Float2)
	return vf
}

func TestFoliage(t *testing.T) {
	types := []gshader.FeatureType{gshader.FeatureFoliage, gshader.FeatureVertPosition, gshader.FeatureDiffuseMap,
		gshader.FeatureRTLighting, gshader.FeatureVisibility}
	req := request(hlsl(), types...)
	req.Format = foliageFormat()
	req.Features.Features.Add(gshader.FeatureIsTranslucent)
	res := generate(t, req)
	assert.Contains(t, res.Vertex, `#include "shaders/common/foliage.hlsl"`)
	assert.Contains(t, res.Vertex, "float3 T;")
	assert.Contains(t, res.Vertex, "foliageProcessVert( IN.position, IN.diffuse, IN.vert_texCoord, IN.normal, T, eyePosWorld );")
	assert.Contains(t, res.Vertex, "OUT.foliageFade = IN.diffuse.a;")
	assert.Contains(t, res.Pixel, "float fade = IN.foliageFade;")
	assert.Contains(t, res.Pixel, "col.a *= visibility * fade;")
	// foliageFade, texCoord, wsNormal and outWsPosition.
	assert.Equal(t, 4, res.Resources.NumTexReg)

	// GLSL inputs are read only, later features read the copies.
	req.Target = glsl()
	res = generate(t, req)
	for _, want := range []string{
		"vec3 position = IN_position;",
		"vec4 diffuse = IN_diffuse;",
		"vec2 vert_texCoord = IN_vert_texCoord;",
		"vec3 normal = IN_normal;",
		"foliageProcessVert( position, diffuse, vert_texCoord, normal, T, eyePosWorld );",
		"OUT_foliageFade = diffuse.a;",
		"OUT_texCoord = vert_texCoord;",
		"vec4( position.xyz, 1.0 )",
		"OUT_wsNormal = tMul( objTrans, vec4( normalize( normal ), 0.0 ) ).xyz;",
	} {
		assert.Contains(t, res.Vertex, want)
	}
	assert.NotContains(t, res.Vertex, "IN_position.xyz")

	// Without Visibility the fade is computed but not applied.
	req = request(hlsl(), gshader.FeatureFoliage, gshader.FeatureVertPosition, gshader.FeatureDiffuseMap)
	req.Format = foliageFormat()
	res = generate(t, req)
	assert.Contains(t, res.Pixel, "float fade = IN.foliageFade;")
	assert.NotContains(t, res.Pixel, "visibility")
}

func imposterFormat(pos glbuild.Type) gshader.VertexFormat {
	var vf gshader.VertexFormat
	vf.Add(gshader.VertexPosition, 0, pos)
	vf.Add(gshader.VertexImposterParams, 0, glbuild.Float4)
	vf.Add(gshader.VertexImposterUpVec, 0, glbuild.Float3)
	vf.Add(gshader.VertexImposterRightVec, 0, glbuild.Float3)
	return vf
}

func TestImposter(t *testing.T) {
	req := request(hlsl(), gshader.FeatureImposterVert, gshader.FeatureVertPosition, gshader.FeatureDiffuseMap,
		gshader.FeatureNormalMap, gshader.FeatureRTLighting, gshader.FeatureVisibility)
	req.Format = imposterFormat(glbuild.Float4)
	req.Features.Features.Add(gshader.FeatureIsTranslucent)
	res := generate(t, req)
	for _, want := range []string{
		`#include "shaders/common/imposter.hlsl"`,
		"float3 position; float2 vert_texCoord; float3x3 worldToTangent;",
		"OUT.imposterFade = IN.tcImposterParams.y;",
		"imposter_v( IN.position.xyz, IN.position.w, IN.tcImposterParams.x * length(IN.tcImposterRightVec), " +
			"normalize(IN.tcImposterUpVec), normalize(IN.tcImposterRightVec), imposterLimits.x, imposterLimits.y, " +
			"imposterLimits.z, imposterLimits.w > 0.5, eyePosWorld, imposterUVs, position, vert_texCoord, worldToTangent );",
		"float3 wsPosition = position.xyz;",
		"float3x3 viewToTangent = worldToTangent;",
		"imposterUVs[64]",
		// Later features read the imposter locals.
		"OUT.hpos = mul( modelview, float4( position.xyz, 1.0 ) );",
		"OUT.texCoord = vert_texCoord;",
		"OUT.worldToTangent = worldToTangent;",
		"OUT.outWsPosition = wsPosition;",
	} {
		assert.Contains(t, res.Vertex, want)
	}
	assert.Contains(t, res.Pixel, "float fade = IN.imposterFade;")
	assert.Contains(t, res.Pixel, "col.a *= visibility * fade;")
	// imposterFade, texCoord, worldToTangent rows and outWsPosition.
	assert.Equal(t, gshader.Resources{NumTex: 2, NumTexReg: 6}, res.Resources)

	// Without a normal map the imposter faces the eye.
	req = request(glsl(), gshader.FeatureImposterVert, gshader.FeatureVertPosition, gshader.FeatureRTLighting)
	req.Format = imposterFormat(glbuild.Float4)
	res = generate(t, req)
	assert.Contains(t, res.Vertex, "OUT_wsNormal = normalize( eyePosWorld - position.xyz );")
	assert.Contains(t, res.Pixel, "compute4Lights(")
	assert.Equal(t, 3, res.Resources.NumTexReg)

	req.Format = imposterFormat(glbuild.Float3)
	gen := gshader.Generator{Features: forge.NewManager(forge.Options{})}
	_, err := gen.Generate(req)
	var gerr *gshader.Error
	require.True(t, errors.As(err, &gerr), "got %v", err)
	assert.Equal(t, "Imposter", gerr.Feature)
	assert.ErrorContains(t, err, "position")
}

func TestParticleNormal(t *testing.T) {
	var vf gshader.VertexFormat
	vf.Add(gshader.VertexPosition, 0, glbuild.Float3)
	vf.Add(gshader.VertexColor, 0, glbuild.Float4)
	vf.Add(gshader.VertexTexCoord, 0, glbuild.Float2)

	req := request(hlsl(), gshader.FeatureVertPosition, gshader.FeatureDiffuseMap, gshader.FeatureRTLighting)
	req.Format = vf
	res := generate(t, req)
	assert.NotContains(t, res.Pixel, "compute4Lights", "no lighting without a normal")

	req = request(hlsl(), gshader.FeatureParticleNormal, gshader.FeatureVertPosition, gshader.FeatureDiffuseMap,
		gshader.FeatureRTLighting)
	req.Format = vf
	res = generate(t, req)
	assert.Contains(t, res.Vertex, "float3 normal = float3( 0.0, -0.97, 0.14 );")
	assert.Contains(t, res.Vertex, "float3 T = float3( 0.0, 0.0, -1.0 );")
	assert.Contains(t, res.Vertex, "OUT.wsNormal = mul( objTrans, float4( normalize( normal ), 0.0 ) ).xyz;")
	assert.Contains(t, res.Pixel, "compute4Lights(")
	assert.Equal(t, 3, res.Resources.NumTexReg)

	// The tangent frame is built from the defaults.
	req = request(hlsl(), gshader.FeatureParticleNormal, gshader.FeatureVertPosition, gshader.FeatureNormalMap)
	req.Format = vf
	res = generate(t, req)
	assert.Contains(t, res.Vertex, "float3 B = cross( T, normalize(normal) );")
	assert.Equal(t, 4, res.Resources.NumTexReg)

	// Stream elements win over the defaults.
	req = request(hlsl(), gshader.FeatureParticleNormal, gshader.FeatureVertPosition, gshader.FeatureRTLighting)
	res = generate(t, req)
	assert.NotContains(t, res.Vertex, "-0.97")
	assert.Contains(t, res.Vertex, "normalize( IN.normal )")
}

func TestDiffuseMapAtlas(t *testing.T) {
	req := request(hlsl(), gshader.FeatureVertPosition, gshader.FeatureDiffuseMap)
	req.Features.Features.Add(gshader.FeatureDiffuseMapAtlas)
	res := generate(t, req)
	assert.Contains(t, res.Pixel, "float4 diffuseColor = sampleAtlas( diffuseMap, IN.texCoord, diffuseAtlasParams, diffuseAtlasTileParams );")
	assert.Contains(t, res.Pixel, "float4 col = diffuseColor;")
	assert.Contains(t, res.Pixel, `#include "shaders/common/torque.hlsl"`)
	assert.Equal(t, gshader.Resources{NumTex: 1, NumTexReg: 1}, res.Resources)

	req.Target.ShaderModel = 2
	res = generate(t, req)
	assert.Contains(t, res.Pixel, "sampleAtlasBase( diffuseMap, IN.texCoord, diffuseAtlasParams, diffuseAtlasTileParams )")

	req.Target = glsl()
	res = generate(t, req)
	assert.Contains(t, res.Pixel, "vec4 diffuseColor = sampleAtlas( diffuseMap, IN_texCoord, diffuseAtlasParams, diffuseAtlasTileParams );")

	// The cube map reflection reads the plain diffuse sample.
	req.Features.Features.Add(gshader.FeatureCubeMap)
	res = generate(t, req)
	assert.NotContains(t, res.Pixel, "sampleAtlas")
}
