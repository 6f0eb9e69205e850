package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// OBJ format errors.
var (
	ErrOBJBadIndex  = errors.New("face index out of range")
	ErrOBJBadNumber = errors.New("malformed number")
	ErrOBJShortFace = errors.New("face needs at least 3 vertices")
)

// MeshData is one single-indexed sub-mesh as read from a model file.
// Arrays are flat: 3 floats per position and normal, 2 per texcoord.
// Normals or TexCoords are nil when the source had none.
type MeshData struct {
	Name      string
	Positions []float32
	Normals   []float32
	TexCoords []float32
	Indices   []uint32

	// Err is set when the sub-mesh could not be read completely. Other
	// sub-meshes of the same file are unaffected.
	Err error
}

// VertexCount returns the number of vertices described by Positions.
func (m *MeshData) VertexCount() int {
	return len(m.Positions) / 3
}

type objVertexKey struct {
	v, vt, vn int
}

type objBuilder struct {
	mesh       MeshData
	lookup     map[objVertexKey]uint32
	hasNormals bool
	hasUVs     bool
	faces      int
}

func newOBJBuilder(name string) *objBuilder {
	return &objBuilder{mesh: MeshData{Name: name}, lookup: make(map[objVertexKey]uint32)}
}

func (b *objBuilder) fail(line int, err error) {
	if b.mesh.Err == nil {
		b.mesh.Err = fmt.Errorf("line %d: %w", line, err)
	}
}

func (b *objBuilder) finish() (MeshData, bool) {
	if b.faces == 0 && b.mesh.Err == nil {
		return MeshData{}, false
	}
	if !b.hasNormals {
		b.mesh.Normals = nil
	}
	if !b.hasUVs {
		b.mesh.TexCoords = nil
	}
	return b.mesh, true
}

// ParseOBJ reads a Wavefront OBJ model. Each "o" or "g" statement starts
// a new sub-mesh; faces are fan-triangulated and every distinct
// position/texcoord/normal triple becomes one vertex.
func ParseOBJ(data []byte, name string) ([]MeshData, error) {
	var (
		positions [][3]float32
		texcoords [][2]float32
		normals   [][3]float32
		meshes    []MeshData
	)

	cur := newOBJBuilder(name)
	flush := func(next string) {
		if m, ok := cur.finish(); ok {
			meshes = append(meshes, m)
		}
		cur = newOBJBuilder(next)
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		fields := strings.Fields(text)

		switch fields[0] {
		case "v":
			var p [3]float32
			if err := parseOBJFloats(fields[1:], p[:]); err != nil {
				cur.fail(line, err)
			}
			positions = append(positions, p)
		case "vt":
			var t [2]float32
			// A third (w) component is allowed and ignored.
			args := fields[1:]
			if len(args) > 2 {
				args = args[:2]
			}
			if err := parseOBJFloats(args, t[:]); err != nil {
				cur.fail(line, err)
			}
			texcoords = append(texcoords, t)
		case "vn":
			var n [3]float32
			if err := parseOBJFloats(fields[1:], n[:]); err != nil {
				cur.fail(line, err)
			}
			normals = append(normals, n)
		case "o", "g":
			next := name
			if len(fields) > 1 {
				next = strings.Join(fields[1:], " ")
			}
			if cur.faces == 0 && cur.mesh.Err == nil {
				cur.mesh.Name = next
				continue
			}
			flush(next)
		case "f":
			if err := cur.addFace(fields[1:], positions, texcoords, normals); err != nil {
				cur.fail(line, err)
			}
		default:
			// mtllib, usemtl, s, l and p carry nothing we draw.
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	flush("")
	return meshes, nil
}

// LoadOBJ reads and parses an OBJ file. Sub-meshes without a name take
// the file's base name.
func LoadOBJ(path string) ([]MeshData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseOBJ(data, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

func (b *objBuilder) addFace(refs []string, positions [][3]float32, texcoords [][2]float32, normals [][3]float32) error {
	if len(refs) < 3 {
		return ErrOBJShortFace
	}

	corners := make([]uint32, 0, len(refs))
	for _, ref := range refs {
		key, err := parseOBJRef(ref, len(positions), len(texcoords), len(normals))
		if err != nil {
			return err
		}
		idx, ok := b.lookup[key]
		if !ok {
			idx = uint32(len(b.mesh.Positions) / 3)
			p := positions[key.v]
			b.mesh.Positions = append(b.mesh.Positions, p[0], p[1], p[2])
			if key.vt >= 0 {
				t := texcoords[key.vt]
				b.mesh.TexCoords = append(b.mesh.TexCoords, t[0], t[1])
				b.hasUVs = true
			} else {
				b.mesh.TexCoords = append(b.mesh.TexCoords, 0, 0)
			}
			if key.vn >= 0 {
				n := normals[key.vn]
				b.mesh.Normals = append(b.mesh.Normals, n[0], n[1], n[2])
				b.hasNormals = true
			} else {
				b.mesh.Normals = append(b.mesh.Normals, 0, 0, 0)
			}
			b.lookup[key] = idx
		}
		corners = append(corners, idx)
	}

	for i := 1; i+1 < len(corners); i++ {
		b.mesh.Indices = append(b.mesh.Indices, corners[0], corners[i], corners[i+1])
	}
	b.faces++
	return nil
}

// parseOBJRef parses "v", "v/vt", "v//vn" or "v/vt/vn" into zero-based
// indices, -1 marking an absent component.
func parseOBJRef(ref string, nv, nvt, nvn int) (objVertexKey, error) {
	key := objVertexKey{v: -1, vt: -1, vn: -1}
	parts := strings.Split(ref, "/")
	if len(parts) > 3 {
		return key, fmt.Errorf("%w: %q", ErrOBJBadNumber, ref)
	}

	var err error
	if key.v, err = resolveOBJIndex(parts[0], nv); err != nil {
		return key, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if key.vt, err = resolveOBJIndex(parts[1], nvt); err != nil {
			return key, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if key.vn, err = resolveOBJIndex(parts[2], nvn); err != nil {
			return key, err
		}
	}
	return key, nil
}

func resolveOBJIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1, fmt.Errorf("%w: %q", ErrOBJBadNumber, s)
	}
	if n < 0 {
		n = count + n
	} else {
		n--
	}
	if n < 0 || n >= count {
		return -1, fmt.Errorf("%w: %s of %d", ErrOBJBadIndex, s, count)
	}
	return n, nil
}

func parseOBJFloats(fields []string, dst []float32) error {
	if len(fields) < len(dst) {
		return fmt.Errorf("%w: expected %d values, got %d", ErrOBJBadNumber, len(dst), len(fields))
	}
	for i := range dst {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrOBJBadNumber, fields[i])
		}
		dst[i] = float32(f)
	}
	return nil
}
