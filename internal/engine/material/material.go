// Package material pairs a shader program with an optional texture.
package material

import (
	"github.com/Faultbox/rat-engine/internal/engine/gpu"
	"github.com/Faultbox/rat-engine/internal/engine/shader"
)

// SamplerUniform is the sampler the texture is bound to.
const SamplerUniform = "texture0"

// Material is immutable once created.
type Material struct {
	name        string
	shaderName  string
	textureName string
	program     *shader.Program
	texture     uint32
}

// New creates a material. A zero texture handle means untextured.
func New(name, shaderName, textureName string, program *shader.Program, texture uint32) *Material {
	return &Material{
		name:        name,
		shaderName:  shaderName,
		textureName: textureName,
		program:     program,
		texture:     texture,
	}
}

func (m *Material) Name() string             { return m.name }
func (m *Material) ShaderName() string       { return m.shaderName }
func (m *Material) TextureName() string      { return m.textureName }
func (m *Material) Program() *shader.Program { return m.program }
func (m *Material) Texture() uint32          { return m.texture }

// Textured reports whether the material samples a texture.
func (m *Material) Textured() bool { return m.texture != 0 }

// Activate binds the texture to unit 0 and points the sampler at it.
// The program must already be in use.
func (m *Material) Activate(dev gpu.Device) {
	if m.texture == 0 {
		return
	}
	dev.BindTexture(0, m.texture)
	m.program.SetInt(SamplerUniform, 0)
}
