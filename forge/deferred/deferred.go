// Package deferred implements the features of the deferred lighting path.
// A prepass writes normals and depth to the prepass buffer, the lights are
// accumulated into the light info buffer and the material pass reads them
// back in screen space instead of evaluating lights per pixel.
//
// [Register] swaps the deferred implementations into a manager holding the
// forward ones and [Unregister] swaps them back. Swapping keeps the
// priority of every type.
package deferred

import (
	"github.com/soypat/gshader"
	"github.com/soypat/gshader/forge/material"
	"github.com/soypat/gshader/glbuild"
)

var (
	stmt = glbuild.Stmt
	decl = glbuild.Decl
	op   = glbuild.NewOp
)

// Register replaces the lighting features of m with the deferred ones. It
// panics if m already has them.
func Register(m *gshader.FeatureManager) {
	if _, ok := m.Get(gshader.FeaturePrePassConditioner).(Conditioner); ok {
		panic("deferred: features already registered")
	}
	swap(m, map[gshader.FeatureType]gshader.Feature{
		gshader.FeaturePrePassConditioner: Conditioner{},
		gshader.FeatureRTLighting:         RTLighting{},
		gshader.FeatureNormalMap:          Bump{},
		gshader.FeaturePixSpecular:        PixelSpecular{},
		gshader.FeatureMinnaertShading:    Minnaert{},
		gshader.FeatureSubSurface:         SubSurface{},
	})
}

// Unregister restores the forward features replaced by [Register].
func Unregister(m *gshader.FeatureManager) {
	swap(m, map[gshader.FeatureType]gshader.Feature{
		gshader.FeaturePrePassConditioner: gshader.NewNamedFeature("PrePass Conditioner"),
		gshader.FeatureRTLighting:         material.RTLighting{},
		gshader.FeatureNormalMap:          material.NormalMap{},
		gshader.FeaturePixSpecular:        material.PixelSpecular{},
		gshader.FeatureMinnaertShading:    gshader.NewNamedFeature("Minnaert Shading"),
		gshader.FeatureSubSurface:         gshader.NewNamedFeature("Sub Surface"),
	})
}

func swap(m *gshader.FeatureManager, features map[gshader.FeatureType]gshader.Feature) {
	// Iterate in type order so types new to m are appended deterministically.
	for _, t := range gshader.FeatureTypes() {
		f, ok := features[t]
		if !ok {
			continue
		}
		m.Unregister(t)
		m.Register(t, f)
	}
}

// active reports whether the pass is lit from the light info buffer.
// Translucent passes are lit forward.
func active(ctx *gshader.Context) bool {
	return !ctx.Has(gshader.FeatureIsTranslucent) && ctx.Has(gshader.FeatureRTLighting)
}

func prepass(ctx *gshader.Context) bool { return ctx.Has(gshader.FeaturePrePassConditioner) }

// Conditioner writes the view space normal and linear depth of the
// prepass. The normal is taken from gbNormal when a normal map feature
// computed it, from the interpolated vertex normal otherwise.
type Conditioner struct{ gshader.NopFeature }

func (Conditioner) Name() string { return "GBuffer Conditioner" }

func pixelNormal(ctx *gshader.Context) bool {
	return ctx.Has(gshader.FeatureNormalMap) || ctx.Has(gshader.FeatureTerrainNormalMap)
}

func (Conditioner) Resources(ctx *gshader.Context) gshader.Resources {
	if pixelNormal(ctx) {
		return gshader.Resources{NumTexReg: 1}
	}
	return gshader.Resources{NumTexReg: 2}
}

func (Conditioner) ProcessVert(ctx *gshader.Context) glbuild.Element {
	var meta glbuild.MultiLine
	pos := ctx.RequireVertexInput(glbuild.InPosition.Key())
	worldView := ctx.WorldView(&meta)
	oneOverFar := ctx.Uniform(glbuild.OneOverFarplane.Key(), glbuild.Float, glbuild.SortPass)
	depth := ctx.Connect(glbuild.SemanticTexCoord, glbuild.PrepassDepth.Key(), glbuild.Float)
	meta.Add(stmt("@ = length( $mul( @, $float4( @.xyz, 1.0 ) ).xyz ) * @;", depth, worldView, pos, oneOverFar))
	if !pixelNormal(ctx) {
		normal := ctx.RequireVertexInput(glbuild.InNormal.Key())
		out := ctx.Connect(glbuild.SemanticTexCoord, glbuild.GbNormal.Key(), glbuild.Float3)
		meta.Add(stmt("@ = $mul( $toFloat3x3( @ ), normalize( @ ) );", out, worldView, normal))
	}
	return meta
}

func (Conditioner) ProcessPix(ctx *gshader.Context) glbuild.Element {
	ctx.Include("deferred")
	var meta glbuild.MultiLine
	gbNormal := ctx.Lookup(glbuild.GbNormal)
	if gbNormal == nil {
		if ctx.Connector.Lookup(glbuild.GbNormal) == nil {
			ctx.Fatalf("prepass has no gbuffer normal, register the deferred normal map")
		}
		in := ctx.Connect(glbuild.SemanticTexCoord, glbuild.GbNormal.Key(), glbuild.Float3)
		gbNormal = ctx.NewLocal(glbuild.GbNormal.Key(), glbuild.Float3)
		meta.Add(stmt("@ = @;", decl(gbNormal), in))
	}
	depth := ctx.Connect(glbuild.SemanticTexCoord, glbuild.PrepassDepth.Key(), glbuild.Float)
	meta.Add(stmt("@ = normalize( @ );", gbNormal, gbNormal))
	meta.Add(ctx.AssignColor(op("prepassCondition( @, @ )", gbNormal, depth), gshader.BlendNone, nil, gshader.TargetColor))
	return meta
}
