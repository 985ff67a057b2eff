package gshader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/soypat/gshader/glbuild"
)

// Request is one shader generation request: one vertex and pixel shader
// pair for one material pass.
type Request struct {
	Target   Target
	Format   VertexFormat
	Features FeatureData
}

// Result is the output of a generation.
type Result struct {
	Vertex string
	Pixel  string
	// Resources is the sum of the resources of every processed feature.
	Resources        Resources
	FeatureResources []FeatureResources
	// Interpolators is the number of texture coordinate interpolators
	// allocated on the connector.
	Interpolators int
	// Instancing is the per instance data layout, empty without instancing.
	Instancing InstancingFormat
	Pass       PassData
	// VertexConstants and PixelConstants are the constant buffer layouts of each stage.
	VertexConstants glbuild.Layout
	PixelConstants  glbuild.Layout
}

// FeatureResources are the resources reserved by one processed feature entry.
type FeatureResources struct {
	Type      FeatureType
	Index     int
	Name      string
	Resources Resources
}

// Accountant sums the resources reserved by features.
type Accountant struct {
	total    Resources
	features []FeatureResources
}

// Reserve records the resources of a feature entry.
func (a *Accountant) Reserve(e FeatureEntry, name string, r Resources) {
	a.total = a.total.Add(r)
	a.features = append(a.features, FeatureResources{Type: e.Type, Index: e.Index, Name: name, Resources: r})
}

// Total returns the summed resources.
func (a *Accountant) Total() Resources { return a.total }

// Features returns the per feature reservations in processing order.
func (a *Accountant) Features() []FeatureResources { return a.features }

// Generator composes shaders from the features registered in a [FeatureManager].
// A Generator is safe for concurrent use as long as its manager is not modified.
type Generator struct {
	Features *FeatureManager
	// PanicOnError keeps the panic of a configuration error instead of
	// returning it, preserving the stack of the offending feature.
	PanicOnError bool
	// EnforceLimits makes Generate fail with a [*LimitError] when the summed
	// resources exceed the target limits.
	EnforceLimits bool
	// Logger receives debug records of the generation. Nil disables logging.
	Logger *slog.Logger
	// Resolve, when set, inlines shader library includes. See [glbuild.Programmer].
	Resolve func(path string) ([]byte, error)
}

type activeFeature struct {
	FeatureEntry
	f Feature
}

// Generate runs every active feature in priority order over the vertex and
// then the pixel stage and prints the resulting programs. A configuration
// error found by a feature is returned as an [*Error].
func (g *Generator) Generate(req Request) (res Result, err error) {
	if g.Features == nil {
		return res, errors.New("gshader: generator has no feature manager")
	}
	if req.Target.Lang != glbuild.GLSL && req.Target.Lang != glbuild.HLSL {
		return res, fmt.Errorf("gshader: unsupported shading language %s", req.Target.Lang)
	}
	ctx := newContext(&req)
	if !g.PanicOnError {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			switch e := r.(type) {
			case *Error:
				err = e
			case runtime.Error:
				panic(r)
			case error:
				err = ctx.wrap(e)
			default:
				panic(r)
			}
			res = Result{}
		}()
	}
	active := g.active(&req.Features.Features)
	var acc Accountant
	var vertBody, pixBody glbuild.MultiLine
	for _, af := range active {
		ctx.begin(af.f, af.Index, glbuild.StageVertex)
		acc.Reserve(af.FeatureEntry, af.f.Name(), af.f.Resources(ctx))
		elem := af.f.ProcessVert(ctx)
		g.logFeature(af, glbuild.StageVertex, elem)
		vertBody.Add(elem)
	}
	ctx.begin(nil, 0, glbuild.StageVertex)
	if ctx.Connector.Lookup(glbuild.Hpos) == nil {
		ctx.Fatalf("no feature wrote the clip space position %q", glbuild.Hpos)
	}
	for _, af := range active {
		ctx.begin(af.f, af.Index, glbuild.StagePixel)
		elem := af.f.ProcessPix(ctx)
		g.logFeature(af, glbuild.StagePixel, elem)
		pixBody.Add(elem)
	}
	ctx.begin(nil, 0, glbuild.StagePixel)
	if ctx.Pixel.Lookup(glbuild.Col) == nil {
		pixBody.Add(ctx.AssignColor(glbuild.NewOp("$float4( 0.0, 0.0, 0.0, 1.0 )"), BlendNone, nil, TargetColor))
	}
	for _, af := range active {
		ctx.begin(af.f, af.Index, glbuild.StagePixel)
		af.f.SetTexData(ctx, &res.Pass)
	}
	ctx.begin(nil, 0, glbuild.StagePixel)

	syntax := req.Target.Lang.Syntax()
	prog := glbuild.NewDefaultProgrammer()
	prog.Resolve = g.Resolve
	var buf bytes.Buffer
	_, err = prog.WriteProgram(&buf, syntax, &glbuild.Program{
		Stage:    glbuild.StageVertex,
		Inputs:   ctx.VertexStream,
		Outputs:  ctx.Connector,
		Graph:    &ctx.Vertex,
		Includes: ctx.includes[glbuild.StageVertex],
		Body:     vertBody,
	})
	if err != nil {
		return Result{}, fmt.Errorf("gshader: printing vertex shader: %w", err)
	}
	res.Vertex = buf.String()
	buf.Reset()
	_, err = prog.WriteProgram(&buf, syntax, &glbuild.Program{
		Stage:    glbuild.StagePixel,
		Inputs:   ctx.Connector,
		Graph:    &ctx.Pixel,
		Includes: ctx.includes[glbuild.StagePixel],
		Body:     pixBody,
	})
	if err != nil {
		return Result{}, fmt.Errorf("gshader: printing pixel shader: %w", err)
	}
	res.Pixel = buf.String()
	res.Resources = acc.Total()
	res.FeatureResources = acc.Features()
	res.Interpolators = ctx.Connector.Slots(glbuild.SemanticTexCoord)
	res.Instancing = ctx.Instancing
	res.VertexConstants = glbuild.LayoutOf(syntax, &ctx.Vertex)
	res.PixelConstants = glbuild.LayoutOf(syntax, &ctx.Pixel)
	if g.EnforceLimits {
		// Interpolators a feature failed to report still count.
		used := res.Resources
		used.NumTexReg = max(used.NumTexReg, res.Interpolators)
		if err := req.Target.Limits.Check(used); err != nil {
			return res, err
		}
	}
	if g.Logger != nil {
		g.Logger.Debug("generated shader", slog.String("lang", req.Target.Lang.String()),
			slog.Int("features", len(active)), slog.Int("numTex", res.Resources.NumTex),
			slog.Int("numTexReg", res.Resources.NumTexReg), slog.Int("interpolators", res.Interpolators))
	}
	return res, nil
}

// active returns the registered features present in fs, in priority order
// and then by process index.
func (g *Generator) active(fs *FeatureSet) []activeFeature {
	var active []activeFeature
	for _, t := range g.Features.Types() {
		f := g.Features.Get(t)
		for _, e := range fs.Entries() {
			if e.Type == t {
				active = append(active, activeFeature{FeatureEntry: e, f: f})
			}
		}
	}
	return active
}

func (g *Generator) logFeature(af activeFeature, stage glbuild.Stage, elem glbuild.Element) {
	if g.Logger == nil || !g.Logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	g.Logger.Debug("feature processed", slog.String("feature", af.f.Name()), slog.Int("index", af.Index),
		slog.String("stage", stage.String()), slog.Bool("contributed", !glbuild.IsEmpty(elem)))
}
