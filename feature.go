package gshader

import (
	"fmt"
	"slices"
	"strings"

	"github.com/soypat/gshader/glbuild"
)

// FeatureType identifies a material feature or a material flag. Flags
// have no registered implementation and only steer other features.
// The declaration order is the standard priority order.
type FeatureType uint16

const (
	featureUndefined FeatureType = iota

	FeatureFoliage
	FeatureImposterVert
	FeatureParticleNormal
	FeatureVertPosition
	FeatureTexAnim
	FeatureParallax
	FeatureDiffuseVertColor
	FeatureDiffuseMap
	FeatureOverlayMap
	FeatureDetailMap
	FeatureDiffuseColor
	FeatureToneMap
	FeatureVertLit
	FeatureTerrainBaseMap
	FeatureTerrainParallaxMap
	FeatureTerrainDetailMap
	FeatureTerrainNormalMap
	FeatureTerrainLightMap
	FeatureTerrainSideProject
	FeatureAlphaTest
	FeatureSpecularMap
	FeatureNormalMap
	FeatureDetailNormalMap
	FeatureRTLighting
	FeatureSubSurface
	FeatureLightMap
	FeatureReflectCube
	FeaturePixSpecular
	FeatureMinnaertShading
	FeatureGlowMask
	FeatureVisibility
	FeatureTerrainAdditive
	FeatureFog
	FeaturePrePassConditioner
	FeatureHDROut
	FeatureRenderTargetZero

	// Flags.

	FeatureUseInstancing
	FeatureIsTranslucent
	FeatureIsDXTnm
	FeatureCubeMap
	FeatureLightbufferMRT
	FeatureForwardShading
	FeatureGlossMap
	FeatureNormalsOut
	FeatureDepthOut
	FeatureEyeSpaceDepthOut
	FeatureVertLitTone
	FeatureDiffuseMapAtlas

	numFeatureTypes
)

var featureNames = [numFeatureTypes]string{
	FeatureFoliage:            "Foliage",
	FeatureImposterVert:       "ImposterVert",
	FeatureParticleNormal:     "ParticleNormal",
	FeatureVertPosition:       "VertPosition",
	FeatureTexAnim:            "TexAnim",
	FeatureParallax:           "Parallax",
	FeatureDiffuseVertColor:   "DiffuseVertColor",
	FeatureDiffuseMap:         "DiffuseMap",
	FeatureOverlayMap:         "OverlayMap",
	FeatureDetailMap:          "DetailMap",
	FeatureDiffuseColor:       "DiffuseColor",
	FeatureToneMap:            "ToneMap",
	FeatureVertLit:            "VertLit",
	FeatureAlphaTest:          "AlphaTest",
	FeatureSpecularMap:        "SpecularMap",
	FeatureNormalMap:          "NormalMap",
	FeatureDetailNormalMap:    "DetailNormalMap",
	FeatureRTLighting:         "RTLighting",
	FeatureSubSurface:         "SubSurface",
	FeatureLightMap:           "LightMap",
	FeatureReflectCube:        "ReflectCube",
	FeaturePixSpecular:        "PixSpecular",
	FeatureMinnaertShading:    "MinnaertShading",
	FeatureGlowMask:           "GlowMask",
	FeatureVisibility:         "Visibility",
	FeatureTerrainBaseMap:     "TerrainBaseMap",
	FeatureTerrainParallaxMap: "TerrainParallaxMap",
	FeatureTerrainDetailMap:   "TerrainDetailMap",
	FeatureTerrainNormalMap:   "TerrainNormalMap",
	FeatureTerrainLightMap:    "TerrainLightMap",
	FeatureTerrainSideProject: "TerrainSideProject",
	FeatureTerrainAdditive:    "TerrainAdditive",
	FeatureFog:                "Fog",
	FeaturePrePassConditioner: "PrePassConditioner",
	FeatureHDROut:             "HDROut",
	FeatureRenderTargetZero:   "RenderTargetZero",
	FeatureUseInstancing:      "UseInstancing",
	FeatureIsTranslucent:      "IsTranslucent",
	FeatureIsDXTnm:            "IsDXTnm",
	FeatureCubeMap:            "CubeMap",
	FeatureLightbufferMRT:     "LightbufferMRT",
	FeatureForwardShading:     "ForwardShading",
	FeatureGlossMap:           "GlossMap",
	FeatureNormalsOut:         "NormalsOut",
	FeatureDepthOut:           "DepthOut",
	FeatureEyeSpaceDepthOut:   "EyeSpaceDepthOut",
	FeatureVertLitTone:        "VertLitTone",
	FeatureDiffuseMapAtlas:    "DiffuseMapAtlas",
}

func (t FeatureType) String() string {
	if t == featureUndefined || t >= numFeatureTypes {
		return fmt.Sprintf("FeatureType(%d)", uint16(t))
	}
	return featureNames[t]
}

// FeatureTypes returns every feature type and flag in declaration order.
func FeatureTypes() []FeatureType {
	types := make([]FeatureType, 0, numFeatureTypes-1)
	for t := featureUndefined + 1; t < numFeatureTypes; t++ {
		types = append(types, t)
	}
	return types
}

// ParseFeatureType returns the feature type with the given name, case insensitive.
func ParseFeatureType(name string) (FeatureType, error) {
	for t := featureUndefined + 1; t < numFeatureTypes; t++ {
		if strings.EqualFold(featureNames[t], name) {
			return t, nil
		}
	}
	return featureUndefined, fmt.Errorf("unknown feature %q", name)
}

// FeatureEntry is an active feature and its process index.
type FeatureEntry struct {
	Type  FeatureType
	Index int
}

// FeatureSet is a set of feature entries kept sorted by type and index.
// A feature type may be present at several indices, i.e. one entry per
// terrain detail layer. The zero value is an empty set.
type FeatureSet struct {
	entries []FeatureEntry
}

// Add adds t at index 0.
func (fs *FeatureSet) Add(t FeatureType) { fs.AddIndexed(t, 0) }

// AddIndexed adds t at index idx. Adding an existing entry does nothing.
func (fs *FeatureSet) AddIndexed(t FeatureType, idx int) {
	e := FeatureEntry{Type: t, Index: idx}
	i, found := slices.BinarySearchFunc(fs.entries, e, cmpEntry)
	if !found {
		fs.entries = slices.Insert(fs.entries, i, e)
	}
}

// Remove removes every entry of t.
func (fs *FeatureSet) Remove(t FeatureType) {
	fs.entries = slices.DeleteFunc(fs.entries, func(e FeatureEntry) bool { return e.Type == t })
}

// Has reports whether t is in the set at any index.
func (fs FeatureSet) Has(t FeatureType) bool { return fs.Count(t) > 0 }

// HasIndex reports whether t is in the set at index idx.
func (fs FeatureSet) HasIndex(t FeatureType, idx int) bool {
	_, found := slices.BinarySearchFunc(fs.entries, FeatureEntry{Type: t, Index: idx}, cmpEntry)
	return found
}

// Count returns the number of entries of t.
func (fs FeatureSet) Count(t FeatureType) (n int) {
	for _, e := range fs.entries {
		if e.Type == t {
			n++
		}
	}
	return n
}

// Entries returns the entries sorted by type and index. The result must not be modified.
func (fs FeatureSet) Entries() []FeatureEntry { return fs.entries }

// Len returns the number of entries.
func (fs FeatureSet) Len() int { return len(fs.entries) }

// Clone returns a copy of fs that does not share memory with it.
func (fs FeatureSet) Clone() FeatureSet {
	return FeatureSet{entries: slices.Clone(fs.entries)}
}

func (fs FeatureSet) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range fs.entries {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(e.Type.String())
		if e.Index > 0 {
			fmt.Fprintf(&sb, ":%d", e.Index)
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

func cmpEntry(a, b FeatureEntry) int {
	if a.Type != b.Type {
		return int(a.Type) - int(b.Type)
	}
	return a.Index - b.Index
}

// FeatureData is the feature configuration of one generation request.
// Features is what is active in the pass being generated, Material is what
// the source material supports. They differ, i.e. a prepass generates a
// subset of the material's features, and features that depend on each other
// must check the right one.
type FeatureData struct {
	Features FeatureSet
	Material FeatureSet
}

// Resources are the hardware resources a feature consumes.
type Resources struct {
	// NumTex is the number of texture units.
	NumTex int
	// NumTexReg is the number of texture coordinate interpolators.
	NumTexReg int
}

// Add returns the sum of r and o.
func (r Resources) Add(o Resources) Resources {
	return Resources{NumTex: r.NumTex + o.NumTex, NumTexReg: r.NumTexReg + o.NumTexReg}
}

// Feature is a rendering behavior that contributes code to the vertex and
// pixel stage. Implementations hold no per-request state; everything a
// generation mutates lives in the [Context]. Process methods return nil
// when the feature has nothing to contribute to the stage. Typed nils such
// as a nil *glbuild.Op and empty MultiLines count as no contribution, see
// [glbuild.IsEmpty].
type Feature interface {
	Name() string
	// Resources returns what the feature consumes under the context's feature data.
	Resources(ctx *Context) Resources
	ProcessVert(ctx *Context) glbuild.Element
	ProcessPix(ctx *Context) glbuild.Element
	// SetTexData records the textures the feature's samplers bind.
	SetTexData(ctx *Context, pass *PassData)
}

// NopFeature implements every [Feature] method except Name as a no-op.
// Embed it to implement only the stages a feature contributes to.
type NopFeature struct{}

func (NopFeature) Resources(*Context) Resources           { return Resources{} }
func (NopFeature) ProcessVert(*Context) glbuild.Element { return nil }
func (NopFeature) ProcessPix(*Context) glbuild.Element  { return nil }
func (NopFeature) SetTexData(*Context, *PassData)       {}

// NamedFeature contributes no code. It reserves the priority slot of a
// type that other features only test for, like texture animation.
type NamedFeature struct {
	NopFeature
	name string
}

// NewNamedFeature returns a NamedFeature called name.
func NewNamedFeature(name string) NamedFeature { return NamedFeature{name: name} }

func (f NamedFeature) Name() string { return f.name }

// PassData is the render state of the generated pass.
type PassData struct {
	Textures []TextureBinding
}

// TextureBinding tells the renderer what to bind to a texture unit.
type TextureBinding struct {
	Sampler string
	Unit    int
	// Source names the texture, i.e. "$diffuseMap" for the material's
	// diffuse map or "$lightinfo" for the light buffer.
	Source string
}
