// Package forge assembles the standard feature catalog of the material
// system: the forward material features, the terrain features and
// placeholders for the types other features only test for.
//
// The deferred lighting features are swapped in afterwards with
// deferred.Register.
package forge

import (
	"github.com/soypat/gshader"
	"github.com/soypat/gshader/forge/material"
	"github.com/soypat/gshader/forge/terrain"
)

// Options configure the standard features.
type Options struct {
	// LightmapsInPrepass is set when baked lighting is rendered into the
	// light buffer during the prepass.
	LightmapsInPrepass bool
	// VertexFog computes fog per vertex on every shader model.
	VertexFog bool
}

// Standard returns the standard implementation of every feature type in
// priority order. Flag types have none.
func Standard(opts Options) []Registration {
	named := gshader.NewNamedFeature
	return []Registration{
		{gshader.FeatureFoliage, material.Foliage{}},
		{gshader.FeatureImposterVert, material.ImposterVert{}},
		{gshader.FeatureParticleNormal, material.ParticleNormal{}},
		{gshader.FeatureVertPosition, material.VertPosition{}},
		{gshader.FeatureTexAnim, named("Texture Animation")},
		{gshader.FeatureParallax, material.Parallax{}},
		{gshader.FeatureDiffuseVertColor, material.DiffuseVertColor{}},
		{gshader.FeatureDiffuseMap, material.DiffuseMap{}},
		{gshader.FeatureOverlayMap, material.OverlayMap{}},
		{gshader.FeatureDetailMap, material.DetailMap{}},
		{gshader.FeatureDiffuseColor, material.DiffuseColor{}},
		{gshader.FeatureToneMap, material.ToneMap{LightmapsInPrepass: opts.LightmapsInPrepass}},
		{gshader.FeatureVertLit, material.VertLit{LightmapsInPrepass: opts.LightmapsInPrepass}},
		{gshader.FeatureTerrainBaseMap, terrain.BaseMap{}},
		{gshader.FeatureTerrainParallaxMap, named("Terrain Parallax Texture")},
		{gshader.FeatureTerrainDetailMap, terrain.DetailMap{}},
		{gshader.FeatureTerrainNormalMap, terrain.NormalMap{}},
		{gshader.FeatureTerrainLightMap, terrain.LightMap{}},
		{gshader.FeatureTerrainSideProject, named("Terrain Side Projection")},
		{gshader.FeatureAlphaTest, material.AlphaTest{}},
		{gshader.FeatureSpecularMap, material.SpecularMap{}},
		{gshader.FeatureNormalMap, material.NormalMap{}},
		{gshader.FeatureDetailNormalMap, named("Detail Normal Map")},
		{gshader.FeatureRTLighting, material.RTLighting{}},
		{gshader.FeatureSubSurface, named("Sub Surface")},
		{gshader.FeatureLightMap, material.LightMap{LightmapsInPrepass: opts.LightmapsInPrepass}},
		{gshader.FeatureReflectCube, material.ReflectCube{}},
		{gshader.FeaturePixSpecular, material.PixelSpecular{}},
		{gshader.FeatureMinnaertShading, named("Minnaert Shading")},
		{gshader.FeatureGlowMask, material.GlowMask{}},
		{gshader.FeatureVisibility, material.Visibility{}},
		{gshader.FeatureTerrainAdditive, terrain.Additive{}},
		{gshader.FeatureFog, material.Fog{VertexFog: opts.VertexFog}},
		{gshader.FeaturePrePassConditioner, named("PrePass Conditioner")},
		{gshader.FeatureHDROut, material.HDROut{}},
		{gshader.FeatureRenderTargetZero, material.RenderTargetZero{Target: gshader.RenderTarget1}},
	}
}

// Registration pairs a feature type with its implementation.
type Registration struct {
	Type    gshader.FeatureType
	Feature gshader.Feature
}

// RegisterStandard registers the [Standard] features in m. It panics if
// one of the types already has an implementation.
func RegisterStandard(m *gshader.FeatureManager, opts Options) {
	for _, r := range Standard(opts) {
		m.Register(r.Type, r.Feature)
	}
}

// NewManager returns a manager holding the standard features.
func NewManager(opts Options) *gshader.FeatureManager {
	var m gshader.FeatureManager
	RegisterStandard(&m, opts)
	return &m
}
