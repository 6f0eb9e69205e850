// Package mesh turns parsed model data into drawable GPU resources.
package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"

	"github.com/Faultbox/rat-engine/internal/engine/gpu"
	"github.com/Faultbox/rat-engine/pkg/formats"
)

// Validation errors.
var (
	ErrBadPositions = errors.New("position count is not a multiple of 3")
	ErrBadNormals   = errors.New("normal count does not match positions")
	ErrBadTexCoords = errors.New("texcoord count does not match positions")
	ErrBadIndices   = errors.New("index count is not a multiple of 3")
	ErrIndexRange   = errors.New("index out of range")
	ErrEmpty        = errors.New("no drawable sub-mesh")
)

// SubMeshError reports a sub-mesh that was skipped.
type SubMeshError struct {
	Mesh    string
	SubMesh string
	Err     error
}

func (e *SubMeshError) Error() string {
	return fmt.Sprintf("mesh %s: sub-mesh %q skipped: %v", e.Mesh, e.SubMesh, e.Err)
}

func (e *SubMeshError) Unwrap() error {
	return e.Err
}

// SubMesh is one validated, interleaved part of a mesh.
type SubMesh struct {
	Name     string
	Vertices []gpu.Vertex
	Indices  []uint32

	buffers gpu.MeshBuffers
}

// Resource is a named mesh made of one or more sub-meshes.
type Resource struct {
	name      string
	subMeshes []*SubMesh
	min, max  mgl32.Vec3
	uploaded  bool
}

// Build validates parts and interleaves the surviving sub-meshes. Invalid
// sub-meshes are skipped and reported through the returned error, which
// may be non-nil alongside a usable resource; use multierr.Errors to list
// them. Build fails outright only when nothing survives.
func Build(name string, parts []formats.MeshData) (*Resource, error) {
	r := &Resource{name: name}
	var diag error

	for i := range parts {
		part := &parts[i]
		sm, err := buildSubMesh(part)
		if err != nil {
			diag = multierr.Append(diag, &SubMeshError{Mesh: name, SubMesh: part.Name, Err: err})
			continue
		}
		r.subMeshes = append(r.subMeshes, sm)
	}

	if len(r.subMeshes) == 0 {
		return nil, multierr.Append(diag, fmt.Errorf("mesh %s: %w", name, ErrEmpty))
	}
	r.computeBounds()
	return r, diag
}

func buildSubMesh(m *formats.MeshData) (*SubMesh, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Positions)%3 != 0 {
		return nil, ErrBadPositions
	}
	count := len(m.Positions) / 3
	if len(m.Normals) != 0 && (len(m.Normals)%3 != 0 || len(m.Normals)/3 != count) {
		return nil, ErrBadNormals
	}
	if len(m.TexCoords) != 0 && (len(m.TexCoords)%2 != 0 || len(m.TexCoords)/2 != count) {
		return nil, ErrBadTexCoords
	}
	if len(m.Indices) == 0 || len(m.Indices)%3 != 0 {
		return nil, ErrBadIndices
	}
	for _, idx := range m.Indices {
		if int(idx) >= count {
			return nil, fmt.Errorf("%w: %d >= %d", ErrIndexRange, idx, count)
		}
	}

	verts := make([]gpu.Vertex, count)
	for i := range verts {
		copy(verts[i].Position[:], m.Positions[i*3:i*3+3])
		if len(m.Normals) != 0 {
			copy(verts[i].Normal[:], m.Normals[i*3:i*3+3])
		}
		if len(m.TexCoords) != 0 {
			copy(verts[i].TexCoord[:], m.TexCoords[i*2:i*2+2])
		}
	}
	if len(m.Normals) == 0 {
		generateNormals(verts, m.Indices)
	}

	return &SubMesh{Name: m.Name, Vertices: verts, Indices: m.Indices}, nil
}

// generateNormals accumulates area-weighted face normals per vertex.
func generateNormals(verts []gpu.Vertex, indices []uint32) {
	acc := make([]mgl32.Vec3, len(verts))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		p0 := mgl32.Vec3(verts[a].Position)
		p1 := mgl32.Vec3(verts[b].Position)
		p2 := mgl32.Vec3(verts[c].Position)
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	}
	for i, n := range acc {
		if n.Len() > 1e-8 {
			verts[i].Normal = n.Normalize()
		} else {
			verts[i].Normal = [3]float32{0, 1, 0}
		}
	}
}

func (r *Resource) computeBounds() {
	first := true
	for _, sm := range r.subMeshes {
		for _, v := range sm.Vertices {
			p := mgl32.Vec3(v.Position)
			if first {
				r.min, r.max = p, p
				first = false
				continue
			}
			for k := 0; k < 3; k++ {
				r.min[k] = min(r.min[k], p[k])
				r.max[k] = max(r.max[k], p[k])
			}
		}
	}
}

// Name returns the mesh name.
func (r *Resource) Name() string { return r.name }

// SubMeshes returns the validated parts in source order.
func (r *Resource) SubMeshes() []*SubMesh { return r.subMeshes }

// Bounds returns the axis-aligned bounding box in model space.
func (r *Resource) Bounds() (lo, hi mgl32.Vec3) { return r.min, r.max }

// Uploaded reports whether GPU buffers currently exist.
func (r *Resource) Uploaded() bool { return r.uploaded }

// Upload creates vertex, index and array buffers for every sub-mesh.
// It does nothing when the buffers already exist.
func (r *Resource) Upload(dev gpu.Device) {
	if r.uploaded {
		return
	}
	for _, sm := range r.subMeshes {
		sm.buffers = dev.CreateMeshBuffers(sm.Vertices, sm.Indices)
	}
	r.uploaded = true
}

// Draw issues one indexed draw per sub-mesh. The buffers must be uploaded.
// It returns the number of draw calls made.
func (r *Resource) Draw(dev gpu.Device) int {
	if !r.uploaded {
		return 0
	}
	n := 0
	for _, sm := range r.subMeshes {
		if sm.buffers.Valid() {
			dev.DrawIndexed(sm.buffers)
			n++
		}
	}
	return n
}

// Release deletes the GPU buffers, keeping host data so the mesh can be
// uploaded again. It is safe to call more than once.
func (r *Resource) Release(dev gpu.Device) {
	if !r.uploaded {
		return
	}
	for _, sm := range r.subMeshes {
		if sm.buffers.Valid() {
			dev.DeleteMeshBuffers(sm.buffers)
		}
		sm.buffers = gpu.MeshBuffers{}
	}
	r.uploaded = false
}
