package gshaderaux

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/soypat/gshader"
	"github.com/soypat/gshader/glbuild"
	"gopkg.in/yaml.v3"
)

// MaterialConfig describes one material pass in a file. Feature and vertex
// element names are the ones accepted by [gshader.ParseFeatureType] and
// [gshader.ParseVertexElement].
//
//	name = "rock"
//	lang = "hlsl"
//	vertex = ["position:float3", "normal:float3", "tangent:float3", "texcoord0:float2"]
//	features = ["VertPosition", "DiffuseMap", "NormalMap", "RTLighting", "Fog"]
type MaterialConfig struct {
	Name string `toml:"name" yaml:"name" json:"name"`
	// Lang is "glsl" or "hlsl". Empty means GLSL.
	Lang string `toml:"lang" yaml:"lang" json:"lang"`
	// ShaderModel defaults to 3.
	ShaderModel float32 `toml:"shader_model" yaml:"shader_model" json:"shader_model"`
	Vertex      []string `toml:"vertex" yaml:"vertex" json:"vertex"`
	Features    []string `toml:"features" yaml:"features" json:"features"`
	// Material lists the features the material supports when it is a
	// superset of the pass features, i.e. for a prepass. Empty means Features.
	Material []string `toml:"material,omitempty" yaml:"material,omitempty" json:"material,omitempty"`
	// Layers are the terrain detail layers.
	Layers []LayerConfig `toml:"layers,omitempty" yaml:"layers,omitempty" json:"layers,omitempty"`

	// Deferred swaps in the deferred lighting features.
	Deferred           bool `toml:"deferred" yaml:"deferred" json:"deferred"`
	LightmapsInPrepass bool `toml:"lightmaps_in_prepass" yaml:"lightmaps_in_prepass" json:"lightmaps_in_prepass"`
	VertexFog          bool `toml:"vertex_fog" yaml:"vertex_fog" json:"vertex_fog"`

	// Limits overrides the target's default hardware limits.
	Limits *LimitsConfig `toml:"limits,omitempty" yaml:"limits,omitempty" json:"limits,omitempty"`
	// Preview configures the color preview written by [Generate].
	Preview *PreviewConfig `toml:"preview,omitempty" yaml:"preview,omitempty" json:"preview,omitempty"`
	// Constants are uniform values keyed by identifier, packed into the
	// constant buffers written by [Generate]. Matrices are row major and
	// arrays list their elements one after another.
	Constants map[string][]float32 `toml:"constants,omitempty" yaml:"constants,omitempty" json:"constants,omitempty"`
}

// LayerConfig is one terrain detail layer.
type LayerConfig struct {
	Index       int  `toml:"index" yaml:"index" json:"index"`
	NormalMap   bool `toml:"normal_map" yaml:"normal_map" json:"normal_map"`
	SideProject bool `toml:"side_project" yaml:"side_project" json:"side_project"`
	Parallax    bool `toml:"parallax" yaml:"parallax" json:"parallax"`
}

// LimitsConfig are hardware limits, see [gshader.Limits].
type LimitsConfig struct {
	MaxTextures  int `toml:"max_textures" yaml:"max_textures" json:"max_textures"`
	MaxTexCoords int `toml:"max_texcoords" yaml:"max_texcoords" json:"max_texcoords"`
}

// Format is a material config file format.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatFromPath returns the config format of a file by its extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("unknown material config extension %q, want .toml, .yaml or .yml", filepath.Ext(path))
}

// LoadConfig reads a material config file, TOML or YAML by extension.
func LoadConfig(path string) (MaterialConfig, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return MaterialConfig{}, err
	}
	fp, err := os.Open(path)
	if err != nil {
		return MaterialConfig{}, err
	}
	defer fp.Close()
	cfg, err := DecodeConfig(fp, format)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return cfg, nil
}

// DecodeConfig decodes a material config. Unknown fields are an error.
func DecodeConfig(r io.Reader, format Format) (cfg MaterialConfig, err error) {
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
		if errors.Is(err, io.EOF) {
			err = errors.New("empty material config")
		}
	default:
		err = fmt.Errorf("unknown config format %d", format)
	}
	return cfg, err
}

// EncodeConfig writes cfg in format.
func EncodeConfig(w io.Writer, cfg MaterialConfig, format Format) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(cfg)
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	}
	return fmt.Errorf("unknown config format %d", format)
}

// Request builds the generation request of the material.
func (cfg MaterialConfig) Request() (req gshader.Request, err error) {
	lang := glbuild.GLSL
	if cfg.Lang != "" {
		lang, err = glbuild.ParseLang(cfg.Lang)
		if err != nil {
			return req, err
		}
	}
	req.Target = gshader.DefaultTarget(lang)
	if cfg.ShaderModel != 0 {
		req.Target.ShaderModel = cfg.ShaderModel
	}
	if cfg.Limits != nil {
		req.Target.Limits = gshader.Limits{
			MaxTextures:  cfg.Limits.MaxTextures,
			MaxTexCoords: cfg.Limits.MaxTexCoords,
		}
	}
	if len(cfg.Vertex) == 0 {
		return req, errors.New("material has no vertex format")
	}
	for _, s := range cfg.Vertex {
		e, err := gshader.ParseVertexElement(s)
		if err != nil {
			return req, err
		}
		req.Format.Elements = append(req.Format.Elements, e)
	}
	err = addFeatures(&req.Features.Features, cfg.Features, cfg.Layers)
	if err != nil {
		return req, err
	}
	if len(cfg.Material) == 0 {
		req.Features.Material = req.Features.Features.Clone()
		return req, nil
	}
	err = addFeatures(&req.Features.Material, cfg.Material, cfg.Layers)
	return req, err
}

func addFeatures(fs *gshader.FeatureSet, names []string, layers []LayerConfig) error {
	for _, name := range names {
		ft, err := gshader.ParseFeatureType(name)
		if err != nil {
			return err
		}
		fs.Add(ft)
	}
	for _, l := range layers {
		if l.Index < 0 {
			return fmt.Errorf("negative terrain layer index %d", l.Index)
		} else if fs.HasIndex(gshader.FeatureTerrainDetailMap, l.Index) {
			return fmt.Errorf("terrain layer %d defined twice", l.Index)
		}
		fs.AddIndexed(gshader.FeatureTerrainDetailMap, l.Index)
		if l.NormalMap {
			fs.AddIndexed(gshader.FeatureTerrainNormalMap, l.Index)
		}
		if l.SideProject {
			fs.AddIndexed(gshader.FeatureTerrainSideProject, l.Index)
		}
		if l.Parallax {
			fs.AddIndexed(gshader.FeatureTerrainParallaxMap, l.Index)
		}
	}
	return nil
}
