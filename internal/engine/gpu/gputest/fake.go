// Package gputest provides a recording gpu.Device for tests.
package gputest

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/rat-engine/internal/engine/gpu"
)

// Device records every call and hands out sequential handles.
// It never touches a real graphics context.
type Device struct {
	// FailCompile makes CompileShader fail for sources containing this text.
	FailCompile string
	// FailLink makes every LinkProgram call fail.
	FailLink bool
	// Uniforms lists the uniform names every program exposes. Nil means
	// every name resolves.
	Uniforms []string

	Calls []string

	// Uniform values by name, last write wins.
	Mat4s  map[string]mgl32.Mat4
	Vec3s  map[string]mgl32.Vec3
	Floats map[string]float32
	Ints   map[string]int32

	Textures []gpu.Image

	// Framebuffer is returned by ReadPixels when it has the requested size.
	Framebuffer []byte

	next      uint32
	shaders   map[uint32]bool
	programs  map[uint32]bool
	textures  map[uint32]bool
	buffers   map[uint32]gpu.MeshBuffers
	locations map[int32]string
}

// New creates an empty fake device.
func New() *Device {
	return &Device{
		Mat4s:     make(map[string]mgl32.Mat4),
		Vec3s:     make(map[string]mgl32.Vec3),
		Floats:    make(map[string]float32),
		Ints:      make(map[string]int32),
		shaders:   make(map[uint32]bool),
		programs:  make(map[uint32]bool),
		textures:  make(map[uint32]bool),
		buffers:   make(map[uint32]gpu.MeshBuffers),
		locations: make(map[int32]string),
	}
}

func (d *Device) id() uint32 {
	d.next++
	return d.next
}

func (d *Device) record(format string, args ...any) {
	d.Calls = append(d.Calls, fmt.Sprintf(format, args...))
}

// Count returns how many recorded calls start with prefix.
func (d *Device) Count(prefix string) int {
	n := 0
	for _, c := range d.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls but keeps live resources.
func (d *Device) Reset() {
	d.Calls = nil
}

// LiveShaders returns the number of shader stages not yet deleted.
func (d *Device) LiveShaders() int { return len(d.shaders) }

// LivePrograms returns the number of programs not yet deleted.
func (d *Device) LivePrograms() int { return len(d.programs) }

// LiveTextures returns the number of textures not yet deleted.
func (d *Device) LiveTextures() int { return len(d.textures) }

// LiveBuffers returns the number of mesh buffer sets not yet deleted.
func (d *Device) LiveBuffers() int { return len(d.buffers) }

func (d *Device) CompileShader(stage gpu.ShaderStage, source string) (uint32, string, bool) {
	d.record("CompileShader %s", stage)
	if d.FailCompile != "" && strings.Contains(source, d.FailCompile) {
		return 0, fmt.Sprintf("0:1: %s: syntax error", stage), false
	}
	id := d.id()
	d.shaders[id] = true
	return id, "", true
}

func (d *Device) LinkProgram(vertex, fragment uint32) (uint32, string, bool) {
	d.record("LinkProgram %d %d", vertex, fragment)
	if d.FailLink {
		return 0, "error: unresolved varying", false
	}
	id := d.id()
	d.programs[id] = true
	return id, "", true
}

func (d *Device) DeleteShader(id uint32) {
	d.record("DeleteShader %d", id)
	delete(d.shaders, id)
}

func (d *Device) DeleteProgram(id uint32) {
	d.record("DeleteProgram %d", id)
	delete(d.programs, id)
}

func (d *Device) UseProgram(id uint32) {
	d.record("UseProgram %d", id)
}

func (d *Device) UniformLocation(program uint32, name string) int32 {
	d.record("UniformLocation %s", name)
	if d.Uniforms != nil {
		found := false
		for _, u := range d.Uniforms {
			if u == name {
				found = true
				break
			}
		}
		if !found {
			return -1
		}
	}
	loc := int32(len(d.locations))
	for l, n := range d.locations {
		if n == name {
			return l
		}
	}
	d.locations[loc] = name
	return loc
}

func (d *Device) UniformMat4(location int32, m mgl32.Mat4) {
	name := d.locations[location]
	d.record("Uniform %s", name)
	d.Mat4s[name] = m
}

func (d *Device) UniformVec3(location int32, v mgl32.Vec3) {
	name := d.locations[location]
	d.record("Uniform %s", name)
	d.Vec3s[name] = v
}

func (d *Device) UniformFloat(location int32, f float32) {
	name := d.locations[location]
	d.record("Uniform %s", name)
	d.Floats[name] = f
}

func (d *Device) UniformInt(location int32, i int32) {
	name := d.locations[location]
	d.record("Uniform %s", name)
	d.Ints[name] = i
}

func (d *Device) CreateTexture(img gpu.Image) uint32 {
	d.record("CreateTexture %dx%d", img.Width, img.Height)
	id := d.id()
	d.textures[id] = true
	d.Textures = append(d.Textures, img)
	return id
}

func (d *Device) BindTexture(unit uint32, id uint32) {
	d.record("BindTexture %d %d", unit, id)
}

func (d *Device) DeleteTexture(id uint32) {
	d.record("DeleteTexture %d", id)
	delete(d.textures, id)
}

func (d *Device) CreateMeshBuffers(vertices []gpu.Vertex, indices []uint32) gpu.MeshBuffers {
	d.record("CreateMeshBuffers %d %d", len(vertices), len(indices))
	b := gpu.MeshBuffers{VAO: d.id(), VBO: d.id(), EBO: d.id(), IndexCount: int32(len(indices))}
	d.buffers[b.VAO] = b
	return b
}

func (d *Device) DeleteMeshBuffers(b gpu.MeshBuffers) {
	d.record("DeleteMeshBuffers %d", b.VAO)
	delete(d.buffers, b.VAO)
}

func (d *Device) DrawIndexed(b gpu.MeshBuffers) {
	d.record("DrawIndexed %d", b.IndexCount)
}

func (d *Device) SetClearColor(c mgl32.Vec4) {
	d.record("SetClearColor")
}

func (d *Device) Clear() {
	d.record("Clear")
}

func (d *Device) Viewport(width, height int) {
	d.record("Viewport %dx%d", width, height)
}

func (d *Device) ReadPixels(width, height int) []byte {
	d.record("ReadPixels %dx%d", width, height)
	if len(d.Framebuffer) == width*height*4 {
		return append([]byte(nil), d.Framebuffer...)
	}
	return make([]byte, width*height*4)
}

var _ gpu.Device = (*Device)(nil)
