package formats

import (
	"errors"
	"testing"
)

const quadOBJ = `
# unit quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJ_Quad(t *testing.T) {
	meshes, err := ParseOBJ([]byte(quadOBJ), "quad")
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	m := meshes[0]
	if m.Err != nil {
		t.Fatalf("unexpected mesh error: %v", m.Err)
	}
	if m.Name != "quad" {
		t.Errorf("expected name quad, got %q", m.Name)
	}
	if m.VertexCount() != 4 {
		t.Errorf("expected 4 vertices, got %d", m.VertexCount())
	}
	if len(m.Normals) != 12 || len(m.TexCoords) != 8 {
		t.Errorf("expected per-vertex normals and uvs, got %d/%d", len(m.Normals), len(m.TexCoords))
	}
	want := []uint32{0, 1, 2, 0, 2, 3}
	if len(m.Indices) != len(want) {
		t.Fatalf("expected %d indices, got %v", len(want), m.Indices)
	}
	for i := range want {
		if m.Indices[i] != want[i] {
			t.Errorf("index %d: expected %d, got %d", i, want[i], m.Indices[i])
		}
	}
}

func TestParseOBJ_NegativeIndicesAndNoAttributes(t *testing.T) {
	data := `
v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	meshes, err := ParseOBJ([]byte(data), "tri")
	if err != nil {
		t.Fatal(err)
	}
	if len(meshes) != 1 || meshes[0].Err != nil {
		t.Fatalf("unexpected result %+v", meshes)
	}
	m := meshes[0]
	if m.Name != "tri" {
		t.Errorf("expected default name tri, got %q", m.Name)
	}
	if m.Normals != nil || m.TexCoords != nil {
		t.Error("expected nil normals and texcoords when the file has none")
	}
	if len(m.Indices) != 3 {
		t.Errorf("expected 3 indices, got %d", len(m.Indices))
	}
}

func TestParseOBJ_SharedCornersDeduplicated(t *testing.T) {
	data := `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3
f 1 3 4
`
	meshes, err := ParseOBJ([]byte(data), "quad")
	if err != nil {
		t.Fatal(err)
	}
	if got := meshes[0].VertexCount(); got != 4 {
		t.Errorf("expected 4 unique vertices, got %d", got)
	}
}

func TestParseOBJ_BadSubMeshIsolated(t *testing.T) {
	data := `
v 0 0 0
v 1 0 0
v 0 1 0
o good
f 1 2 3
o bad
f 1 2 9
o alsogood
f 3 2 1
`
	meshes, err := ParseOBJ([]byte(data), "multi")
	if err != nil {
		t.Fatal(err)
	}
	if len(meshes) != 3 {
		t.Fatalf("expected 3 sub-meshes, got %d", len(meshes))
	}

	for _, m := range meshes {
		switch m.Name {
		case "good", "alsogood":
			if m.Err != nil {
				t.Errorf("%s: unexpected error %v", m.Name, m.Err)
			}
		case "bad":
			if !errors.Is(m.Err, ErrOBJBadIndex) {
				t.Errorf("bad: expected ErrOBJBadIndex, got %v", m.Err)
			}
		default:
			t.Errorf("unexpected sub-mesh %q", m.Name)
		}
	}
}

func TestParseOBJ_ShortFace(t *testing.T) {
	data := "v 0 0 0\nv 1 0 0\nf 1 2\n"
	meshes, err := ParseOBJ([]byte(data), "line")
	if err != nil {
		t.Fatal(err)
	}
	if len(meshes) != 1 || !errors.Is(meshes[0].Err, ErrOBJShortFace) {
		t.Errorf("expected short face error, got %+v", meshes)
	}
}
