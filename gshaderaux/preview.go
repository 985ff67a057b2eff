package gshaderaux

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gshader"
	"github.com/soypat/gshader/gleval"
)

// PreviewConfig configures a color preview of a material: a strip of the
// material's output color seen over increasing distance (left to right)
// and height (bottom to top), evaluated on the CPU.
type PreviewConfig struct {
	// Base is the color of the first assignment.
	Base [4]float32 `toml:"base" yaml:"base" json:"base"`
	// Tint is blended over Base with Blend, a [gshader.BlendOp] name.
	// Empty Blend means no tint.
	Tint  [4]float32 `toml:"tint" yaml:"tint" json:"tint"`
	Blend string     `toml:"blend" yaml:"blend" json:"blend"`

	FogColor         [4]float32 `toml:"fog_color" yaml:"fog_color" json:"fog_color"`
	FogDensity       float32    `toml:"fog_density" yaml:"fog_density" json:"fog_density"`
	FogDensityOffset float32    `toml:"fog_density_offset" yaml:"fog_density_offset" json:"fog_density_offset"`
	FogHeightFalloff float32    `toml:"fog_height_falloff" yaml:"fog_height_falloff" json:"fog_height_falloff"`

	// Distance and Height are the world extents of the strip. Default to 100 and 10.
	Distance float32 `toml:"distance" yaml:"distance" json:"distance"`
	Height   float32 `toml:"height" yaml:"height" json:"height"`
	// Width and Rows are the image size in pixels. Default to 256 and 32.
	Width int `toml:"width" yaml:"width" json:"width"`
	Rows  int `toml:"rows" yaml:"rows" json:"rows"`
}

func toColor(c [4]float32) gleval.Color { return gleval.Color{R: c[0], G: c[1], B: c[2], A: c[3]} }

func (p PreviewConfig) withDefaults() PreviewConfig {
	if p.Distance <= 0 {
		p.Distance = 100
	}
	if p.Height <= 0 {
		p.Height = 10
	}
	if p.Width <= 0 {
		p.Width = 256
	}
	if p.Rows <= 0 {
		p.Rows = 32
	}
	return p
}

// Preview evaluates the preview strip of a material pass with the features
// in fs that affect the final color: fog and HDR encoding. Rows are
// returned top to bottom.
func Preview(p PreviewConfig, fs gshader.FeatureSet) ([][]gleval.Color, error) {
	p = p.withDefaults()
	layers := []gleval.Layer{{Op: gshader.BlendNone, Src: []gleval.Color{toColor(p.Base)}}}
	if p.Blend != "" {
		op, err := gshader.ParseBlendOp(p.Blend)
		if err != nil {
			return nil, err
		}
		layers = append(layers, gleval.Layer{Op: op, Src: []gleval.Color{toColor(p.Tint)}})
	}
	fog := gleval.FogData{
		Density:       p.FogDensity,
		DensityOffset: p.FogDensityOffset,
		HeightFalloff: p.FogHeightFalloff,
	}
	var eye ms3.Vec
	pos := make([]ms3.Vec, p.Width)
	rows := make([][]gleval.Color, p.Rows)
	for iy := range rows {
		row := make([]gleval.Color, p.Width)
		err := gleval.Evaluate(row, layers)
		if err != nil {
			return nil, err
		}
		z := p.Height * (1 - float32(iy)/float32(max(1, p.Rows-1)))
		for ix := range pos {
			pos[ix] = ms3.Vec{X: p.Distance * float32(ix) / float32(max(1, p.Width-1)), Z: z}
		}
		if fs.Has(gshader.FeatureFog) {
			err = gleval.FogSpan(row, eye, pos, toColor(p.FogColor), fog)
			if err != nil {
				return nil, err
			}
		}
		if fs.Has(gshader.FeatureHDROut) {
			for i := range row {
				row[i] = gleval.HDREncode(row[i])
			}
		}
		rows[iy] = row
	}
	return rows, nil
}

// WritePreviewPNG writes the [Preview] strip of a material as a PNG image.
func WritePreviewPNG(w io.Writer, p PreviewConfig, fs gshader.FeatureSet) error {
	rows, err := Preview(p, fs)
	if err != nil {
		return err
	}
	img := image.NewRGBA(image.Rect(0, 0, len(rows[0]), len(rows)))
	for y, row := range rows {
		for x, c := range row {
			img.Set(x, y, c)
		}
	}
	err = png.Encode(w, img)
	if err != nil {
		return fmt.Errorf("encoding preview: %w", err)
	}
	return nil
}
