// Package gshaderaux helps users get a material shader generated quickly:
// material configs are read from TOML or YAML files and written out as
// vertex and pixel shader source.
// Applications with their own material pipelines should use
// [gshader.Generator] directly.
package gshaderaux

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/soypat/gshader"
	"github.com/soypat/gshader/forge"
	"github.com/soypat/gshader/forge/deferred"
	"github.com/soypat/gshader/glbuild/glsllib"
	"github.com/soypat/gshader/gleval"
)

type GenerateConfig struct {
	VertexOutput io.Writer
	PixelOutput  io.Writer
	// PreviewOutput receives a PNG color preview when the material has a
	// preview section.
	PreviewOutput io.Writer
	// VertexConstantsOutput and PixelConstantsOutput receive the constant
	// buffers packed from the material constants, when it has any.
	VertexConstantsOutput io.Writer
	PixelConstantsOutput  io.Writer
	// UseGPU queries the current GPU for the target limits and enforces them.
	UseGPU bool
	// EnforceLimits fails generation when the target limits are exceeded.
	EnforceLimits bool
	// InlineIncludes replaces shader library includes with their source.
	InlineIncludes bool
	Silent         bool
	// Logger receives the progress records. Defaults to [slog.Default].
	Logger *slog.Logger
}

// Generate is an auxiliary function that generates the shaders of a
// material config and writes them to the outputs of cfg.
func Generate(cfg GenerateConfig, mat MaterialConfig) (res gshader.Result, err error) {
	if cfg.VertexOutput == nil && cfg.PixelOutput == nil && cfg.PreviewOutput == nil &&
		cfg.VertexConstantsOutput == nil && cfg.PixelConstantsOutput == nil {
		return res, errors.New("Generate requires output parameter in config")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	log := func(msg string, args ...any) {
		if !cfg.Silent {
			logger.Info(msg, args...)
		}
	}
	watch := stopwatch()
	req, err := mat.Request()
	if err != nil {
		return res, fmt.Errorf("material %s: %w", mat.Name, err)
	}
	if cfg.UseGPU {
		device, err := gleval.QueryDevice()
		if err != nil {
			return res, fmt.Errorf("querying GPU: %w", err)
		}
		log("using GPU limits", slog.String("device", device.String()))
		req.Target.Limits = device.Limits()
	}
	gen := gshader.Generator{
		Features:      NewManager(mat),
		EnforceLimits: cfg.EnforceLimits || cfg.UseGPU,
		Logger:        logger,
	}
	if cfg.InlineIncludes {
		gen.Resolve = glsllib.Resolve
	}
	res, err = gen.Generate(req)
	if err != nil {
		return res, fmt.Errorf("material %s: %w", mat.Name, err)
	}
	log("generated", slog.String("material", mat.Name), slog.String("lang", req.Target.Lang.String()),
		slog.String("features", req.Features.Features.String()), slog.Duration("elapsed", watch()))
	log("resources", slog.Int("textures", res.Resources.NumTex), slog.Int("texcoords", res.Resources.NumTexReg),
		slog.Int("interpolators", res.Interpolators))

	if cfg.VertexOutput != nil {
		err = writeOutput(cfg.VertexOutput, res.Vertex, "vertex shader", log)
		if err != nil {
			return res, err
		}
	}
	if cfg.PixelOutput != nil {
		err = writeOutput(cfg.PixelOutput, res.Pixel, "pixel shader", log)
		if err != nil {
			return res, err
		}
	}
	if len(mat.Constants) > 0 && (cfg.VertexConstantsOutput != nil || cfg.PixelConstantsOutput != nil) {
		vcb, pcb, err := PackConstants(res, mat.Constants)
		if err != nil {
			return res, fmt.Errorf("material %s: %w", mat.Name, err)
		}
		if cfg.VertexConstantsOutput != nil {
			err = writeOutput(cfg.VertexConstantsOutput, string(vcb), "vertex constants", log)
			if err != nil {
				return res, err
			}
		}
		if cfg.PixelConstantsOutput != nil {
			err = writeOutput(cfg.PixelConstantsOutput, string(pcb), "pixel constants", log)
			if err != nil {
				return res, err
			}
		}
	}
	if cfg.PreviewOutput != nil && mat.Preview != nil {
		watch = stopwatch()
		err = WritePreviewPNG(cfg.PreviewOutput, *mat.Preview, req.Features.Features)
		if err != nil {
			return res, err
		}
		log("wrote preview", slog.String("file", outputName(cfg.PreviewOutput, "preview")), slog.Duration("elapsed", watch()))
	}
	return res, nil
}

// NewManager returns the feature manager a material is generated with.
func NewManager(mat MaterialConfig) *gshader.FeatureManager {
	m := forge.NewManager(forge.Options{
		LightmapsInPrepass: mat.LightmapsInPrepass,
		VertexFog:          mat.VertexFog,
	})
	if mat.Deferred {
		deferred.Register(m)
	}
	return m
}

func writeOutput(w io.Writer, src, what string, log func(string, ...any)) error {
	watch := stopwatch()
	_, err := io.WriteString(w, src)
	if err != nil {
		return fmt.Errorf("writing %s: %w", what, err)
	}
	log("wrote "+what, slog.String("file", outputName(w, what)), slog.Int("bytes", len(src)), slog.Duration("elapsed", watch()))
	return nil
}

func outputName(w io.Writer, fallback string) string {
	if fp, ok := w.(*os.File); ok {
		return fp.Name()
	}
	return fallback
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
