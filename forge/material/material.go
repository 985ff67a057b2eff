// Package material implements the forward rendering material features:
// texturing, baked and real time lighting, reflections and the post
// lighting color adjustments.
//
// Features are stateless values. Register them in a gshader.FeatureManager
// under their feature type, or use forge.RegisterStandard for the complete
// catalog in priority order.
package material

import (
	"github.com/soypat/gshader"
	"github.com/soypat/gshader/glbuild"
)

var (
	stmt = glbuild.Stmt
	decl = glbuild.Decl
	op   = glbuild.NewOp
)

func useTexAnim(ctx *gshader.Context) bool { return ctx.Has(gshader.FeatureTexAnim) }

// texRegs returns slots if name is not allocated on the connector yet.
// Features sharing an interpolator only count it once.
func texRegs(ctx *gshader.Context, name glbuild.Name, slots int) int {
	if ctx.Connector.Lookup(name) != nil {
		return 0
	}
	return slots
}

func sample2D(tex, coord glbuild.Element) glbuild.Element {
	return op("$tex2D(@, @)", tex, coord)
}

// assignLighting writes a lighting contribution to the light buffer render
// target when the pass renders lightmaps into it, and blends it into the
// color otherwise.
func assignLighting(ctx *gshader.Context, meta *glbuild.MultiLine, light glbuild.Element, blend gshader.BlendOp) {
	if !ctx.Has(gshader.FeatureLightbufferMRT) {
		meta.Add(ctx.AssignColor(light, blend, nil, gshader.TargetColor))
		return
	}
	meta.Add(ctx.AssignColor(light, gshader.BlendNone, nil, gshader.RenderTarget1))
	meta.Add(stmt("@.a = 0.0001;", ctx.OutputTargetVar(gshader.RenderTarget1)))
}

// bakedLighting reports whether a baked lighting feature replaces real
// time lighting in the pass.
func bakedLighting(ctx *gshader.Context) bool {
	return ctx.Has(gshader.FeatureLightMap) || ctx.Has(gshader.FeatureToneMap) || ctx.Has(gshader.FeatureVertLit)
}

// VertPosition transforms the vertex position to clip space.
type VertPosition struct{ gshader.NopFeature }

func (VertPosition) Name() string { return "Vert Position" }

func (VertPosition) ProcessVert(ctx *gshader.Context) glbuild.Element {
	var meta glbuild.MultiLine
	pos := ctx.RequireVertexInput(glbuild.InPosition.Key())
	mv := ctx.ModelView(&meta)
	hpos := ctx.Connect(glbuild.SemanticPosition, glbuild.Hpos.Key(), glbuild.Float4)
	meta.Add(stmt("@ = $mul( @, $float4( @.xyz, 1.0 ) );", hpos, mv, pos))
	return meta
}
