package renderer

import (
	_ "embed"

	rl "github.com/gen2brain/raylib-go/raylib"
)

//go:embed shaders/blur5.fs
var blurFS string

//go:embed shaders/blend.fs
var blendFS string

// BlurShader runs one axis of the 5-tap binomial blur.
type BlurShader struct {
	shader      rl.Shader
	stepLoc     int32
	initialized bool
}

// Init loads the shader (must be called after the raylib window is created).
func (b *BlurShader) Init() {
	if b.initialized {
		return
	}
	b.shader = rl.LoadShaderFromMemory("", blurFS)
	b.stepLoc = rl.GetShaderLocation(b.shader, "texelStep")
	b.initialized = true
}

// Begin activates the shader for a pass over a w×h source.
func (b *BlurShader) Begin(w, h int32, horizontal bool) {
	step := []float32{0, 1 / float32(h)}
	if horizontal {
		step = []float32{1 / float32(w), 0}
	}
	rl.SetShaderValue(b.shader, b.stepLoc, step, rl.ShaderUniformVec2)
	rl.BeginShaderMode(b.shader)
}

// Unload frees the shader.
func (b *BlurShader) Unload() {
	if b.initialized {
		rl.UnloadShader(b.shader)
		b.initialized = false
	}
}

// BlendShader mixes two textures by a weight.
type BlendShader struct {
	shader      rl.Shader
	otherLoc    int32
	weightLoc   int32
	initialized bool
}

// Init loads the shader (must be called after the raylib window is created).
func (b *BlendShader) Init() {
	if b.initialized {
		return
	}
	b.shader = rl.LoadShaderFromMemory("", blendFS)
	b.otherLoc = rl.GetShaderLocation(b.shader, "texture1")
	b.weightLoc = rl.GetShaderLocation(b.shader, "weight")
	b.initialized = true
}

// Begin activates the shader with other as the second operand. The
// texture uniform must be set while the shader is active.
func (b *BlendShader) Begin(other rl.Texture2D, w float32) {
	rl.BeginShaderMode(b.shader)
	rl.SetShaderValue(b.shader, b.weightLoc, []float32{w}, rl.ShaderUniformFloat)
	rl.SetShaderValueTexture(b.shader, b.otherLoc, other)
}

// Unload frees the shader.
func (b *BlendShader) Unload() {
	if b.initialized {
		rl.UnloadShader(b.shader)
		b.initialized = false
	}
}
