package formats

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// glTF errors.
var (
	ErrGLTFNotTriangles = errors.New("primitive is not a triangle list")
	ErrGLTFNoPositions  = errors.New("primitive has no POSITION attribute")
)

// ReadGLTF reads every mesh primitive of a .gltf or .glb file as a
// sub-mesh. Node transforms are not applied. Primitives that cannot be
// drawn as indexed triangles are returned with Err set.
func ReadGLTF(path string) ([]MeshData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ConvertGLTF(doc), nil
}

// ConvertGLTF converts an already decoded document.
func ConvertGLTF(doc *gltf.Document) []MeshData {
	var meshes []MeshData
	for mi, mesh := range doc.Meshes {
		base := mesh.Name
		if base == "" {
			base = fmt.Sprintf("mesh%d", mi)
		}
		for pi, prim := range mesh.Primitives {
			name := base
			if len(mesh.Primitives) > 1 {
				name = fmt.Sprintf("%s_%d", base, pi)
			}
			md := MeshData{Name: name}
			if err := readGLTFPrimitive(doc, prim, &md); err != nil {
				md = MeshData{Name: name, Err: err}
			}
			meshes = append(meshes, md)
		}
	}
	return meshes
}

func readGLTFPrimitive(doc *gltf.Document, prim *gltf.Primitive, md *MeshData) error {
	if prim.Mode != gltf.PrimitiveTriangles {
		return ErrGLTFNotTriangles
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok || int(posIdx) >= len(doc.Accessors) {
		return ErrGLTFNoPositions
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}
	md.Positions = make([]float32, 0, len(positions)*3)
	for _, p := range positions {
		md.Positions = append(md.Positions, p[0], p[1], p[2])
	}

	if idx, ok := prim.Attributes["NORMAL"]; ok && int(idx) < len(doc.Accessors) {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return fmt.Errorf("normals: %w", err)
		}
		md.Normals = make([]float32, 0, len(normals)*3)
		for _, n := range normals {
			md.Normals = append(md.Normals, n[0], n[1], n[2])
		}
	}

	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok && int(idx) < len(doc.Accessors) {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return fmt.Errorf("texcoords: %w", err)
		}
		md.TexCoords = make([]float32, 0, len(uvs)*2)
		for _, t := range uvs {
			// glTF puts the texture origin top-left.
			md.TexCoords = append(md.TexCoords, t[0], 1-t[1])
		}
	}

	if prim.Indices != nil && int(*prim.Indices) < len(doc.Accessors) {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return fmt.Errorf("indices: %w", err)
		}
		md.Indices = indices
	} else {
		md.Indices = make([]uint32, len(positions))
		for i := range md.Indices {
			md.Indices[i] = uint32(i)
		}
	}
	return nil
}
