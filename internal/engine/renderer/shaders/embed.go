// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// StandardVertexShader transforms lit meshes.
//
//go:embed standard.vert
var StandardVertexShader string

// StandardFragmentShader shades lit meshes with map, bump, emissive and metalness textures.
//
//go:embed standard.frag
var StandardFragmentShader string

// BasicFragmentShader draws unlit meshes. It shares the standard vertex stage.
//
//go:embed basic.frag
var BasicFragmentShader string

// PointsVertexShader sizes point sprites.
//
//go:embed points.vert
var PointsVertexShader string

// PointsFragmentShader draws round point sprites.
//
//go:embed points.frag
var PointsFragmentShader string

// AtmosphereVertexShader passes view-space normals for the rim glow.
//
//go:embed atmosphere.vert
var AtmosphereVertexShader string

// AtmosphereFragmentShader draws the additive rim glow.
//
//go:embed atmosphere.frag
var AtmosphereFragmentShader string
