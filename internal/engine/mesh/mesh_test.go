package mesh

import (
	"errors"
	"testing"

	"go.uber.org/multierr"

	"github.com/Faultbox/rat-engine/internal/engine/gpu/gputest"
	"github.com/Faultbox/rat-engine/pkg/formats"
)

func triangle(name string) formats.MeshData {
	return formats.MeshData{
		Name:      name,
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		TexCoords: []float32{0, 0, 1, 0, 0, 1},
		Indices:   []uint32{0, 1, 2},
	}
}

func TestBuild_SkipsMalformedSubMeshes(t *testing.T) {
	badIndex := triangle("bad_index")
	badIndex.Indices = []uint32{0, 1, 7}

	badCount := triangle("bad_count")
	badCount.Indices = []uint32{0, 1}

	badNormals := triangle("bad_normals")
	badNormals.Normals = []float32{0, 0, 1}

	parseErr := formats.MeshData{Name: "unreadable", Err: errors.New("line 4: malformed number")}

	parts := []formats.MeshData{triangle("first"), badIndex, badCount, badNormals, parseErr, triangle("last")}

	r, err := Build("rat", parts)
	if r == nil {
		t.Fatalf("expected resource, got error %v", err)
	}
	if len(r.SubMeshes()) != 2 {
		t.Fatalf("expected 2 surviving sub-meshes, got %d", len(r.SubMeshes()))
	}

	errs := multierr.Errors(err)
	if len(errs) != 4 {
		t.Fatalf("expected 4 diagnostics, got %d: %v", len(errs), err)
	}
	if !errors.Is(errs[0], ErrIndexRange) {
		t.Errorf("expected ErrIndexRange first, got %v", errs[0])
	}
	if !errors.Is(errs[1], ErrBadIndices) {
		t.Errorf("expected ErrBadIndices, got %v", errs[1])
	}
	if !errors.Is(errs[2], ErrBadNormals) {
		t.Errorf("expected ErrBadNormals, got %v", errs[2])
	}
	var sme *SubMeshError
	if !errors.As(errs[3], &sme) || sme.SubMesh != "unreadable" {
		t.Errorf("expected SubMeshError for unreadable, got %v", errs[3])
	}
}

func TestBuild_OddTexCoordCountSkipped(t *testing.T) {
	badUV := triangle("bad_uv")
	badUV.TexCoords = []float32{0, 0, 1, 0, 0}

	r, err := Build("rat", []formats.MeshData{badUV, triangle("after")})
	if r == nil {
		t.Fatalf("expected resource, got error %v", err)
	}
	if !errors.Is(err, ErrBadTexCoords) {
		t.Errorf("expected ErrBadTexCoords, got %v", err)
	}
	subs := r.SubMeshes()
	if len(subs) != 1 || subs[0].Name != "after" {
		t.Fatalf("expected only the following sub-mesh to survive, got %d", len(subs))
	}
	if len(multierr.Errors(err)) != 1 {
		t.Errorf("expected one diagnostic, got %v", err)
	}
}

func TestBuild_NothingSurvives(t *testing.T) {
	bad := triangle("bad")
	bad.Positions = bad.Positions[:8]

	r, err := Build("broken", []formats.MeshData{bad})
	if r != nil {
		t.Fatal("expected nil resource")
	}
	if !errors.Is(err, ErrEmpty) || !errors.Is(err, ErrBadPositions) {
		t.Errorf("expected ErrEmpty and ErrBadPositions, got %v", err)
	}
}

func TestBuild_GeneratesNormals(t *testing.T) {
	r, err := Build("tri", []formats.MeshData{triangle("tri")})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range r.SubMeshes()[0].Vertices {
		if v.Normal != [3]float32{0, 0, 1} {
			t.Errorf("vertex %d: expected +Z normal, got %v", i, v.Normal)
		}
	}
	if uv := r.SubMeshes()[0].Vertices[1].TexCoord; uv != [2]float32{1, 0} {
		t.Errorf("unexpected texcoord %v", uv)
	}

	lo, hi := r.Bounds()
	if lo != [3]float32{0, 0, 0} || hi != [3]float32{1, 1, 0} {
		t.Errorf("unexpected bounds %v %v", lo, hi)
	}
}

func TestResource_Lifecycle(t *testing.T) {
	dev := gputest.New()
	r, err := Build("pair", []formats.MeshData{triangle("a"), triangle("b")})
	if err != nil {
		t.Fatal(err)
	}

	if n := r.Draw(dev); n != 0 {
		t.Errorf("expected no draws before upload, got %d", n)
	}

	r.Upload(dev)
	r.Upload(dev)
	if dev.Count("CreateMeshBuffers") != 2 {
		t.Errorf("expected one buffer set per sub-mesh, got %d", dev.Count("CreateMeshBuffers"))
	}
	if !r.Uploaded() {
		t.Error("expected uploaded")
	}

	if n := r.Draw(dev); n != 2 {
		t.Errorf("expected 2 draw calls, got %d", n)
	}

	r.Release(dev)
	r.Release(dev)
	if dev.LiveBuffers() != 0 {
		t.Errorf("expected all buffers released, %d live", dev.LiveBuffers())
	}
	if dev.Count("DeleteMeshBuffers") != 2 {
		t.Errorf("expected 2 deletes, got %d", dev.Count("DeleteMeshBuffers"))
	}

	// Host data survives release.
	r.Upload(dev)
	if dev.LiveBuffers() != 2 {
		t.Errorf("expected re-upload, %d live", dev.LiveBuffers())
	}
}
