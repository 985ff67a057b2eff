package gshader

import (
	"fmt"

	"github.com/soypat/gshader/glbuild"
)

// Context is the state of one generation request. Every feature call
// receives it; nothing is shared between requests, so independent contexts
// may generate concurrently.
type Context struct {
	Target Target
	FD     FeatureData
	// Vertex and Pixel are the element graphs of each stage.
	Vertex glbuild.Graph
	Pixel  glbuild.Graph
	// VertexStream holds the vertex format and instance data inputs.
	VertexStream *glbuild.Connector
	// Connector holds the interpolators between stages. It is the only
	// channel from the vertex to the pixel stage.
	Connector *glbuild.Connector
	// Instancing is filled by features reading per instance data.
	Instancing InstancingFormat

	stage    glbuild.Stage
	feature  Feature
	index    int
	texUnits [2]int
	includes [2][]string
	// texCoordCopies are the writable pixel locals standing in for
	// read only interpolators.
	texCoordCopies map[glbuild.Key]*glbuild.Var
}

func newContext(req *Request) *Context {
	ctx := &Context{
		Target:       req.Target,
		FD:           req.Features,
		VertexStream: glbuild.NewConnector(glbuild.UsageVertexInput),
		Connector:    glbuild.NewConnector(glbuild.UsageVarying),
	}
	for _, e := range req.Format.Elements {
		k, sem := e.key()
		ctx.VertexStream.Element(sem, k, e.Type, 0)
	}
	return ctx
}

// Stage returns the stage being generated.
func (ctx *Context) Stage() glbuild.Stage { return ctx.stage }

// ProcessIndex returns the index of the feature entry being processed.
func (ctx *Context) ProcessIndex() int { return ctx.index }

// Syntax returns the syntax table of the target language.
func (ctx *Context) Syntax() *glbuild.Syntax { return ctx.Target.Lang.Syntax() }

// Has reports whether t is active in the pass.
func (ctx *Context) Has(t FeatureType) bool { return ctx.FD.Features.Has(t) }

// instancing reports whether per instance transforms are read from the vertex stream.
func (ctx *Context) instancing() bool { return ctx.FD.Features.Has(FeatureUseInstancing) }

// Graph returns the element graph of the current stage.
func (ctx *Context) Graph() *glbuild.Graph {
	if ctx.stage == glbuild.StagePixel {
		return &ctx.Pixel
	}
	return &ctx.Vertex
}

// Find returns the element of the current stage registered as k or nil.
func (ctx *Context) Find(k glbuild.Key) *glbuild.Var { return ctx.Graph().Find(k) }

// Lookup returns the element of the current stage registered as n or nil.
func (ctx *Context) Lookup(n glbuild.Name) *glbuild.Var { return ctx.Graph().Lookup(n) }

// Require returns the element of the current stage registered as k. A
// missing element means an earlier feature did not run and aborts generation.
func (ctx *Context) Require(k glbuild.Key) *glbuild.Var {
	v := ctx.Find(k)
	if v == nil {
		ctx.Fatalf("requires %q from an earlier feature", k)
	}
	return v
}

// VertexInput returns the vertex stream value k or nil. A vertex stage
// local declared under k replaces the stream element: features that
// derive or default an input (imposters, particles) declare it first and
// every later feature reads theirs.
func (ctx *Context) VertexInput(k glbuild.Key) *glbuild.Var {
	if v := ctx.Vertex.Find(k); v != nil && v.Usage == glbuild.UsageLocal {
		return v
	}
	return ctx.VertexStream.Find(k)
}

// RequireVertexInput returns the vertex stream value k and aborts
// generation if the vertex format lacks it.
func (ctx *Context) RequireVertexInput(k glbuild.Key) *glbuild.Var {
	v := ctx.VertexInput(k)
	if v == nil {
		ctx.Fatalf("vertex format has no %q", k)
	}
	return v
}

// NewLocal declares a local of the current stage. The key must be free.
func (ctx *Context) NewLocal(k glbuild.Key, t glbuild.Type) *glbuild.Var {
	if old := ctx.Find(k); old != nil {
		ctx.Fatalf("local %q already declared as %s", k, old)
	}
	return ctx.Graph().Add(&glbuild.Var{Key: k, Type: t, Usage: glbuild.UsageLocal})
}

// Uniform returns the uniform k of the current stage, declaring it if absent.
func (ctx *Context) Uniform(k glbuild.Key, t glbuild.Type, sort glbuild.ConstSort) *glbuild.Var {
	return ctx.UniformArray(k, t, 0, sort)
}

// UniformArray returns the uniform array k of the current stage, declaring it if absent.
func (ctx *Context) UniformArray(k glbuild.Key, t glbuild.Type, n int, sort glbuild.ConstSort) *glbuild.Var {
	if v := ctx.Find(k); v != nil {
		ctx.expect(v, t)
		return v
	}
	return ctx.Graph().Add(&glbuild.Var{Key: k, Type: t, Usage: glbuild.UsageUniform, Sort: sort, ArraySize: n})
}

// Sampler returns the sampler k of the current stage, declaring it on the
// next free texture unit if absent.
func (ctx *Context) Sampler(k glbuild.Key, t glbuild.Type) *glbuild.Var {
	if !t.IsSampler() {
		ctx.Fatalf("sampler %q declared with non sampler type %s", k, t)
	}
	if v := ctx.Find(k); v != nil {
		ctx.expect(v, t)
		return v
	}
	unit := ctx.texUnits[ctx.stage]
	ctx.texUnits[ctx.stage]++
	return ctx.Graph().Add(&glbuild.Var{Key: k, Type: t, Usage: glbuild.UsageSampler, Slot: unit})
}

// Connect returns the interpolator k, allocating the next slot of category
// sem if no stage requested it yet. The vertex stage writes it, the pixel
// stage reads it.
func (ctx *Context) Connect(sem glbuild.Semantic, k glbuild.Key, t glbuild.Type) *glbuild.Var {
	if v := ctx.texCoordCopies[k]; v != nil && ctx.stage == glbuild.StagePixel {
		ctx.expect(v, t)
		return v
	}
	if v := ctx.Connector.Find(k); v != nil {
		ctx.expect(v, t)
		return v
	}
	return ctx.Connector.Element(sem, k, t, 0)
}

// InstanceElement allocates texture coordinate slots of the vertex stream
// for per instance data and records them in the instancing format.
func (ctx *Context) InstanceElement(k glbuild.Key, name string, t glbuild.Type, arraySize int) *glbuild.Var {
	v := ctx.VertexStream.Element(glbuild.SemanticTexCoord, k, t, arraySize)
	for i := 0; i < max(arraySize, 1); i++ {
		ctx.Instancing.Add(name, t, v.Slot+i)
	}
	return v
}

// Include adds a shader library dependency to the current stage.
func (ctx *Context) Include(lib string) {
	ctx.includes[ctx.stage] = append(ctx.includes[ctx.stage], lib)
}

// Fatalf aborts the generation with an [*Error].
func (ctx *Context) Fatalf(format string, args ...any) {
	panic(ctx.wrap(fmt.Errorf(format, args...)))
}

func (ctx *Context) wrap(err error) *Error {
	e := &Error{Stage: ctx.stage, Err: err}
	if ctx.feature != nil {
		e.Feature = ctx.feature.Name()
	}
	return e
}

func (ctx *Context) expect(v *glbuild.Var, t glbuild.Type) {
	if v.Type != t {
		ctx.Fatalf("%q is %s, want %s", v.Key, v.Type, t)
	}
}

func (ctx *Context) begin(f Feature, idx int, stage glbuild.Stage) {
	ctx.feature = f
	ctx.index = idx
	ctx.stage = stage
}
