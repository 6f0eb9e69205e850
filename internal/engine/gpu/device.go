// Package gpu abstracts the graphics API calls the engine makes.
//
// The engine talks to a Device rather than to OpenGL directly so the
// resource lifecycle and frame ordering can be exercised without a context.
package gpu

import "github.com/go-gl/mathgl/mgl32"

// ShaderStage identifies a programmable pipeline stage.
type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StageFragment
)

func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// PixelFormat is the channel layout of texture data.
type PixelFormat int

const (
	FormatRed PixelFormat = iota + 1
	FormatRG
	FormatRGB
	FormatRGBA
)

// Channels returns the number of components per pixel.
func (f PixelFormat) Channels() int {
	return int(f)
}

// Vertex is the interleaved layout uploaded for every mesh.
// Attribute 0 is Position, 1 is Normal, 2 is TexCoord.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// MeshBuffers holds the GPU objects backing one sub-mesh.
type MeshBuffers struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
}

// Valid reports whether the buffers were created.
func (b MeshBuffers) Valid() bool {
	return b.VAO != 0
}

// Image is tightly packed pixel data ready for upload, bottom row first.
type Image struct {
	Width  int
	Height int
	Format PixelFormat
	Pixels []byte
}

// Device is the set of graphics operations used by the engine.
// All methods must be called from the thread that owns the context.
type Device interface {
	// CompileShader compiles one stage. On failure the stage is already
	// deleted and log holds the compiler output.
	CompileShader(stage ShaderStage, source string) (id uint32, log string, ok bool)
	// LinkProgram links two compiled stages. On failure the program is
	// already deleted. Stage handles are left to the caller.
	LinkProgram(vertex, fragment uint32) (id uint32, log string, ok bool)
	DeleteShader(id uint32)
	DeleteProgram(id uint32)
	UseProgram(id uint32)

	// UniformLocation returns -1 when the program has no active uniform
	// with that name.
	UniformLocation(program uint32, name string) int32
	UniformMat4(location int32, m mgl32.Mat4)
	UniformVec3(location int32, v mgl32.Vec3)
	UniformFloat(location int32, f float32)
	UniformInt(location int32, i int32)

	CreateTexture(img Image) uint32
	BindTexture(unit uint32, id uint32)
	DeleteTexture(id uint32)

	CreateMeshBuffers(vertices []Vertex, indices []uint32) MeshBuffers
	DeleteMeshBuffers(b MeshBuffers)
	DrawIndexed(b MeshBuffers)

	SetClearColor(c mgl32.Vec4)
	Clear()
	Viewport(width, height int)
	// ReadPixels returns the RGBA contents of the default framebuffer,
	// bottom row first.
	ReadPixels(width, height int) []byte
}
