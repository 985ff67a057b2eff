package glbuild

import "strconv"

// Name identifies a well-known language element. Features cooperate by
// looking up elements under these names before creating them, so the set is
// closed: adding a shared value means adding a Name here.
type Name uint16

// Key identifies a language element within a graph or connector. Index
// distinguishes per-layer instances of an indexed Name (detail layers, extra
// vertex texture coordinate sets) and must be zero for non-indexed names.
type Key struct {
	Name  Name
	Index int
}

// Key returns the non-indexed key for n.
func (n Name) Key() Key { return Key{Name: n} }

// At returns the key of the idx'th instance of n.
func (n Name) At(idx int) Key { return Key{Name: n, Index: idx} }

const (
	nameUndefined Name = iota

	// Vertex stream inputs.

	InPosition
	InNormal
	InTangent
	InBinormal
	InColor
	VertTexCoord // indexed by texture coordinate set.
	TcTangentW
	TcTangentZ
	InstObjectTrans
	InstVisibility
	TcImposterParams
	TcImposterUpVec
	TcImposterRightVec

	// Transforms.

	ObjTrans
	WorldViewOnly
	ViewToObj
	WorldToObj
	ModelView
	ViewProj
	WorldToCamera
	TexMat
	CubeTrans
	ObjToTangentSpace
	ViewToTangent
	WorldToTangent

	// Vertex to pixel connector values.

	Hpos
	TexCoord
	TexCoord2
	DetCoord
	LayerDetCoord // indexed by terrain layer.
	ScreenspacePos
	OutVpos
	Vpos
	OutWsPosition
	WsNormal
	VertColor
	ReflectVec
	FogAmount
	Visibility
	OutNegViewTS
	OutWSViewVec
	PrepassDepth
	FoliageFade
	ImposterFade

	// Uniform constants.

	EyePosWorld
	EyePos
	FogColor
	FogData
	AlphaTestValue
	DetailScale
	DiffuseMaterialColor
	OneOverTerrainSize
	SquareSize
	LayerSize
	DetailScaleAndFade       // indexed by terrain layer.
	DetailIDStrengthParallax // indexed by terrain layer.
	RenderTargetParams
	SpecularColor
	SpecularPower
	ConstantSpecularPower
	MinnaertConstant
	SubSurfaceParams
	Ambient
	InLightPos
	InLightInvRadiusSq
	InLightColor
	InLightSpotDir
	InLightSpotAngle
	InLightSpotFalloff
	CubeEyePos
	DetailBumpStrength
	OneOverFarplane
	ImposterLimits
	ImposterUVs
	DiffuseAtlasParams
	DiffuseAtlasTileParams

	// Texture samplers.

	DiffuseMap
	OverlayMap
	LightMap
	ToneMap
	DetailMap
	BumpMap
	DetailBumpMap
	CubeMap
	GlossMap
	SpecularMap
	LightInfoBuffer
	PrepassBuffer
	BaseTexMap
	LayerTex
	LayerDetailMap // indexed by terrain layer.
	LayerNormalMap // indexed by terrain layer.
	LightMapTex

	// Shader locals.

	Col
	Col1
	BumpNormal
	BumpSample
	DetailBump
	GbNormal
	LightInfoSample
	UVScene
	RTShading
	Specular
	DLightColor
	DNLAtt
	DSpecular
	BaseColor
	DetailColor
	LayerSample
	BlendTotal
	DetailBlend // indexed by terrain layer.
	Dist
	LightMask
	WsPosition
	WsView
	CubeVertPos
	CubeNormal
	EyeToVert
	ToneMapColor
	LightMapColor
	NegViewTS
	DiffuseColor
	FinalVertColor
	ParallaxInfo
	NormalDepth
	WorldViewVec
	VDotN
	Minnaert
	SubLamb
	Fade

	numNames
)

var nameIdents = [numNames]string{
	nameUndefined: "",

	InPosition:      "position",
	InNormal:        "normal",
	InTangent:       "T",
	InBinormal:      "B",
	InColor:         "diffuse",
	VertTexCoord:    "vert_texCoord",
	TcTangentW:      "tcTangentW",
	TcTangentZ:      "tcTangentZ",
	InstObjectTrans: "inst_objectTrans",
	InstVisibility:  "inst_visibility",

	TcImposterParams:   "tcImposterParams",
	TcImposterUpVec:    "tcImposterUpVec",
	TcImposterRightVec: "tcImposterRightVec",

	ObjTrans:          "objTrans",
	WorldViewOnly:     "worldViewOnly",
	ViewToObj:         "viewToObj",
	WorldToObj:        "worldToObj",
	ModelView:         "modelview",
	ViewProj:          "viewProj",
	WorldToCamera:     "worldToCamera",
	TexMat:            "texMat",
	CubeTrans:         "cubeTrans",
	ObjToTangentSpace: "objToTangentSpace",
	ViewToTangent:     "viewToTangent",
	WorldToTangent:    "worldToTangent",

	Hpos:           "hpos",
	TexCoord:       "texCoord",
	TexCoord2:      "texCoord2",
	DetCoord:       "detCoord",
	LayerDetCoord:  "detCoord",
	ScreenspacePos: "screenspacePos",
	OutVpos:        "outVpos",
	Vpos:           "vpos",
	OutWsPosition:  "outWsPosition",
	WsNormal:       "wsNormal",
	VertColor:      "vertColor",
	ReflectVec:     "reflectVec",
	FogAmount:      "fogAmount",
	Visibility:     "visibility",
	OutNegViewTS:   "outNegViewTS",
	OutWSViewVec:   "outWSViewVec",
	PrepassDepth:   "prepassDepth",
	FoliageFade:    "foliageFade",
	ImposterFade:   "imposterFade",

	EyePosWorld:              "eyePosWorld",
	EyePos:                   "eyePos",
	FogColor:                 "fogColor",
	FogData:                  "fogData",
	AlphaTestValue:           "alphaTestValue",
	DetailScale:              "detailScale",
	DiffuseMaterialColor:     "diffuseMaterialColor",
	OneOverTerrainSize:       "oneOverTerrainSize",
	SquareSize:               "squareSize",
	LayerSize:                "layerSize",
	DetailScaleAndFade:       "detailScaleAndFade",
	DetailIDStrengthParallax: "detailIdStrengthParallax",
	RenderTargetParams:       "renderTargetParams",
	SpecularColor:            "specularColor",
	SpecularPower:            "specularPower",
	ConstantSpecularPower:    "constantSpecularPower",
	MinnaertConstant:         "minnaertConstant",
	SubSurfaceParams:         "subSurfaceParams",
	Ambient:                  "ambient",
	InLightPos:               "inLightPos",
	InLightInvRadiusSq:       "inLightInvRadiusSq",
	InLightColor:             "inLightColor",
	InLightSpotDir:           "inLightSpotDir",
	InLightSpotAngle:         "inLightSpotAngle",
	InLightSpotFalloff:       "inLightSpotFalloff",
	CubeEyePos:               "cubeEyePos",
	DetailBumpStrength:       "detailBumpStrength",
	OneOverFarplane:          "oneOverFarplane",
	ImposterLimits:           "imposterLimits",
	ImposterUVs:              "imposterUVs",
	DiffuseAtlasParams:       "diffuseAtlasParams",
	DiffuseAtlasTileParams:   "diffuseAtlasTileParams",

	DiffuseMap:      "diffuseMap",
	OverlayMap:      "overlayMap",
	LightMap:        "lightMap",
	ToneMap:         "toneMap",
	DetailMap:       "detailMap",
	BumpMap:         "bumpMap",
	DetailBumpMap:   "detailBumpMap",
	CubeMap:         "cubeMap",
	GlossMap:        "glossMap",
	SpecularMap:     "specularMap",
	LightInfoBuffer: "lightInfoBuffer",
	PrepassBuffer:   "prepassBuffer",
	BaseTexMap:      "baseTexMap",
	LayerTex:        "layerTex",
	LayerDetailMap:  "detailMap",
	LayerNormalMap:  "normalMap",
	LightMapTex:     "lightMapTex",

	Col:             "col",
	Col1:            "col1",
	BumpNormal:      "bumpNormal",
	BumpSample:      "bumpSample",
	DetailBump:      "detailBump",
	GbNormal:        "gbNormal",
	LightInfoSample: "lightInfoSample",
	UVScene:         "uvScene",
	RTShading:       "rtShading",
	Specular:        "specular",
	DLightColor:     "d_lightcolor",
	DNLAtt:          "d_NL_Att",
	DSpecular:       "d_specular",
	BaseColor:       "baseColor",
	DetailColor:     "detailColor",
	LayerSample:     "layerSample",
	BlendTotal:      "blendTotal",
	DetailBlend:     "detailBlend",
	Dist:            "dist",
	LightMask:       "lightMask",
	WsPosition:      "wsPosition",
	WsView:          "wsView",
	CubeVertPos:     "cubeVertPos",
	CubeNormal:      "cubeNormal",
	EyeToVert:       "eyeToVert",
	ToneMapColor:    "toneMapColor",
	LightMapColor:   "lmColor",
	NegViewTS:       "negViewTS",
	DiffuseColor:    "diffuseColor",
	FinalVertColor:  "finalVertColor",
	ParallaxInfo:    "parallaxInfo",
	NormalDepth:     "normalDepth",
	WorldViewVec:    "worldViewVec",
	VDotN:           "vDotN",
	Minnaert:        "minnaert",
	SubLamb:         "subLamb",
	Fade:            "fade",
}

// indexedNames are always printed with their index appended.
var indexedNames = [numNames]bool{
	LayerDetCoord:            true,
	DetailScaleAndFade:       true,
	DetailIDStrengthParallax: true,
	LayerDetailMap:           true,
	LayerNormalMap:           true,
	DetailBlend:              true,
}

// String returns the identifier of the non-indexed name.
func (n Name) String() string {
	if n >= numNames {
		return "Name(" + strconv.Itoa(int(n)) + ")"
	}
	return nameIdents[n]
}

// IsIndexed reports whether the name is printed with its index appended.
func (n Name) IsIndexed() bool { return n < numNames && indexedNames[n] }

// String returns the shader identifier of the key.
func (k Key) String() string {
	return string(k.AppendIdent(nil))
}

// AppendIdent appends the shader identifier of the key to b.
// Vertex texture coordinate sets follow the vertex stream convention:
// set 0 is "vert_texCoord" and set N is "vert_texCoordN+1".
func (k Key) AppendIdent(b []byte) []byte {
	b = append(b, k.Name.String()...)
	switch {
	case k.Name == VertTexCoord:
		if k.Index > 0 {
			b = strconv.AppendInt(b, int64(k.Index+1), 10)
		}
	case k.Name.IsIndexed():
		b = strconv.AppendInt(b, int64(k.Index), 10)
	}
	return b
}
