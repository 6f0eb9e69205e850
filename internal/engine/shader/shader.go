// Package shader compiles and links GPU programs and caches their uniforms.
package shader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/rat-engine/internal/engine/gpu"
	"github.com/Faultbox/rat-engine/internal/logger"
)

// CompileError is returned when a stage fails to compile.
type CompileError struct {
	Stage gpu.ShaderStage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s shader: %s", e.Stage, e.Log)
}

// LinkError is returned when a program fails to link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link: %s", e.Log)
}

// Stage is a compiled, not yet linked shader stage.
type Stage struct {
	ID   uint32
	Kind gpu.ShaderStage
}

// Compile compiles source as the given stage.
func Compile(dev gpu.Device, source string, kind gpu.ShaderStage) (Stage, error) {
	id, log, ok := dev.CompileShader(kind, source)
	if !ok {
		return Stage{}, &CompileError{Stage: kind, Log: log}
	}
	return Stage{ID: id, Kind: kind}, nil
}

// Link links two stages into a program. Both stage handles are deleted
// whether or not linking succeeds.
func Link(dev gpu.Device, vertex, fragment Stage) (*Program, error) {
	defer dev.DeleteShader(vertex.ID)
	defer dev.DeleteShader(fragment.ID)

	id, log, ok := dev.LinkProgram(vertex.ID, fragment.ID)
	if !ok {
		return nil, &LinkError{Log: log}
	}
	return &Program{ID: id, dev: dev, locations: make(map[string]int32)}, nil
}

// Build compiles both sources and links them into a named program.
func Build(dev gpu.Device, name, vertexSrc, fragmentSrc string) (*Program, error) {
	vs, err := Compile(dev, vertexSrc, gpu.StageVertex)
	if err != nil {
		return nil, errors.Wrapf(err, "program %s", name)
	}
	fs, err := Compile(dev, fragmentSrc, gpu.StageFragment)
	if err != nil {
		dev.DeleteShader(vs.ID)
		return nil, errors.Wrapf(err, "program %s", name)
	}
	p, err := Link(dev, vs, fs)
	if err != nil {
		return nil, errors.Wrapf(err, "program %s", name)
	}
	p.Name = name
	return p, nil
}

// Program is a linked GPU program with a uniform location cache.
type Program struct {
	ID   uint32
	Name string

	dev       gpu.Device
	locations map[string]int32
}

// Use makes p the active program.
func (p *Program) Use() {
	p.dev.UseProgram(p.ID)
}

// Location returns the cached uniform location, or -1 if p has no such
// uniform. Misses are cached too and logged once.
func (p *Program) Location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := p.dev.UniformLocation(p.ID, name)
	if loc < 0 {
		logger.Debug("uniform not found",
			zap.String("program", p.Name),
			zap.String("uniform", name),
		)
	}
	p.locations[name] = loc
	return loc
}

// SetMat4 sets a matrix uniform on the bound program.
// It returns false when the uniform does not exist.
func (p *Program) SetMat4(name string, m mgl32.Mat4) bool {
	loc := p.Location(name)
	if loc < 0 {
		return false
	}
	p.dev.UniformMat4(loc, m)
	return true
}

func (p *Program) SetVec3(name string, v mgl32.Vec3) bool {
	loc := p.Location(name)
	if loc < 0 {
		return false
	}
	p.dev.UniformVec3(loc, v)
	return true
}

func (p *Program) SetFloat(name string, f float32) bool {
	loc := p.Location(name)
	if loc < 0 {
		return false
	}
	p.dev.UniformFloat(loc, f)
	return true
}

func (p *Program) SetInt(name string, i int32) bool {
	loc := p.Location(name)
	if loc < 0 {
		return false
	}
	p.dev.UniformInt(loc, i)
	return true
}

// Delete releases the program. It is safe to call more than once.
func (p *Program) Delete() {
	if p.ID == 0 {
		return
	}
	p.dev.DeleteProgram(p.ID)
	p.ID = 0
	clear(p.locations)
}
