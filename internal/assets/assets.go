// Package assets loads engine resources from the asset directory and
// shares them between scene objects.
//
// Layout under the root:
//
//	objects/<name>.robj     object description (dictionary)
//	materials/<name>.mat    material description (dictionary)
//	models/<name>.obj       mesh (or an explicit .gltf/.glb file name)
//	shaders/<name>.vert     vertex stage
//	shaders/<name>.frag     fragment stage
//	textures/<file>         image
package assets

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/rat-engine/internal/engine/gpu"
	"github.com/Faultbox/rat-engine/internal/engine/material"
	"github.com/Faultbox/rat-engine/internal/engine/mesh"
	"github.com/Faultbox/rat-engine/internal/engine/scene"
	"github.com/Faultbox/rat-engine/internal/engine/shader"
	"github.com/Faultbox/rat-engine/internal/engine/texture"
	"github.com/Faultbox/rat-engine/internal/logger"
	"github.com/Faultbox/rat-engine/pkg/formats"
)

// Asset file extensions.
const (
	ObjectExt   = ".robj"
	MaterialExt = ".mat"
	ModelExt    = ".obj"
	VertexExt   = ".vert"
	FragmentExt = ".frag"
)

// NoTexture marks an untextured material.
const NoTexture = "none"

// Manager resolves asset names to files and keeps GPU resources alive
// while scene objects use them.
type Manager struct {
	root string
	dev  gpu.Device
	log  *zap.Logger

	programs  *Cache[*shader.Program]
	textures  *Cache[*texture.Texture]
	materials *Cache[*material.Material]
	meshes    *Cache[*mesh.Resource]
}

// NewManager creates a manager reading from root.
func NewManager(root string, dev gpu.Device) *Manager {
	m := &Manager{
		root: root,
		dev:  dev,
		log:  logger.Named("assets"),
	}
	m.programs = NewCache(func(p *shader.Program) { p.Delete() })
	m.textures = NewCache(func(t *texture.Texture) { t.Delete(dev) })
	m.meshes = NewCache(func(r *mesh.Resource) { r.Release(dev) })
	m.materials = NewCache(func(mat *material.Material) {
		m.programs.Release(mat.ShaderName())
		if mat.Textured() {
			m.textures.Release(mat.TextureName())
		}
	})
	return m
}

// Root returns the asset directory.
func (m *Manager) Root() string {
	return m.root
}

// Path joins the asset root with a category directory and file name.
func (m *Manager) Path(dir, file string) string {
	return filepath.Join(m.root, dir, file)
}

// LoadDict reads a dictionary file relative to the asset root.
func (m *Manager) LoadDict(dir, file string) (formats.Dict, error) {
	d, err := formats.LoadDict(m.Path(dir, file))
	if err != nil {
		return formats.Dict{}, errors.Wrapf(err, "loading %s/%s", dir, file)
	}
	return d, nil
}

// LoadShader returns the program built from shaders/<name>.vert and
// shaders/<name>.frag. Release it with ReleaseShader.
func (m *Manager) LoadShader(name string) (*shader.Program, error) {
	return m.programs.Acquire(name, func() (*shader.Program, error) {
		vs, err := os.ReadFile(m.Path("shaders", name+VertexExt))
		if err != nil {
			return nil, errors.Wrapf(err, "loading shader %s", name)
		}
		fs, err := os.ReadFile(m.Path("shaders", name+FragmentExt))
		if err != nil {
			return nil, errors.Wrapf(err, "loading shader %s", name)
		}
		p, err := shader.Build(m.dev, name, string(vs), string(fs))
		if err != nil {
			return nil, err
		}
		m.log.Info("shader loaded", zap.String("name", name), zap.Uint32("program", p.ID))
		return p, nil
	})
}

// ReleaseShader drops one reference to a program.
func (m *Manager) ReleaseShader(name string) {
	m.programs.Release(name)
}

// LoadTexture returns the texture uploaded from textures/<file>.
func (m *Manager) LoadTexture(file string) (*texture.Texture, error) {
	return m.textures.Acquire(file, func() (*texture.Texture, error) {
		t, err := texture.Load(m.dev, m.Path("textures", file))
		if err != nil {
			return nil, errors.Wrapf(err, "loading texture %s", file)
		}
		m.log.Info("texture loaded",
			zap.String("file", file),
			zap.Int("width", t.Width),
			zap.Int("height", t.Height),
			zap.Int("channels", t.Format.Channels()),
		)
		return t, nil
	})
}

// ReleaseTexture drops one reference to a texture.
func (m *Manager) ReleaseTexture(file string) {
	m.textures.Release(file)
}

// LoadMaterial returns the material described by materials/<name>.mat,
// loading its shader and texture. The material is named after its file
// so it can be released by name.
func (m *Manager) LoadMaterial(name string) (*material.Material, error) {
	return m.materials.Acquire(name, func() (*material.Material, error) {
		d, err := m.LoadDict("materials", name+MaterialExt)
		if err != nil {
			return nil, err
		}
		shaderName, err := d.String("shader")
		if err != nil {
			return nil, errors.Wrapf(err, "material %s", name)
		}
		texName := d.StringOr("texture", NoTexture)

		prog, err := m.LoadShader(shaderName)
		if err != nil {
			return nil, errors.Wrapf(err, "material %s", name)
		}

		var texID uint32
		if texName != "" && texName != NoTexture {
			tex, err := m.LoadTexture(texName)
			if err != nil {
				m.programs.Release(shaderName)
				return nil, errors.Wrapf(err, "material %s", name)
			}
			texID = tex.ID
		} else {
			texName = ""
		}

		m.log.Debug("material loaded",
			zap.String("name", name),
			zap.String("label", d.StringOr("name", name)),
			zap.String("shader", shaderName),
			zap.String("texture", texName),
		)
		return material.New(name, shaderName, texName, prog, texID), nil
	})
}

// ReleaseMaterial drops one reference to a material.
func (m *Manager) ReleaseMaterial(name string) {
	m.materials.Release(name)
}

// ModelPath resolves a model name: names ending in .gltf, .glb or .obj
// are used as is, anything else gets the .obj extension.
func (m *Manager) ModelPath(model string) string {
	switch strings.ToLower(filepath.Ext(model)) {
	case ".gltf", ".glb", ModelExt:
		return m.Path("models", model)
	}
	return m.Path("models", model+ModelExt)
}

// LoadMesh returns the mesh for a model. Malformed sub-meshes are logged
// and skipped.
func (m *Manager) LoadMesh(model string) (*mesh.Resource, error) {
	return m.meshes.Acquire(model, func() (*mesh.Resource, error) {
		path := m.ModelPath(model)

		var (
			parts []formats.MeshData
			err   error
		)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".gltf", ".glb":
			parts, err = formats.ReadGLTF(path)
		default:
			parts, err = formats.LoadOBJ(path)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "loading model %s", model)
		}

		res, diag := mesh.Build(model, parts)
		for _, e := range multierr.Errors(diag) {
			m.log.Warn("mesh diagnostic", zap.String("model", model), zap.Error(e))
		}
		if res == nil {
			return nil, errors.Wrapf(diag, "loading model %s", model)
		}
		m.log.Info("model loaded",
			zap.String("model", model),
			zap.Int("submeshes", len(res.SubMeshes())),
		)
		return res, nil
	})
}

// ReleaseMesh drops one reference to a mesh.
func (m *Manager) ReleaseMesh(model string) {
	m.meshes.Release(model)
}

// LoadObject builds a scene object from objects/<name>.robj. The object
// holds one reference to its mesh and material; hand it to Release when
// it leaves the scene.
func (m *Manager) LoadObject(name string) (*scene.Object, error) {
	d, err := m.LoadDict("objects", name+ObjectExt)
	if err != nil {
		return nil, err
	}

	model, err := d.String("model")
	if err != nil {
		return nil, errors.Wrapf(err, "object %s", name)
	}
	matName, err := d.String("material")
	if err != nil {
		return nil, errors.Wrapf(err, "object %s", name)
	}
	weight, err := d.Float32Or("weight", 1)
	if err != nil {
		return nil, errors.Wrapf(err, "object %s", name)
	}
	color, err := d.Vec3Or("color", scene.DefaultColor)
	if err != nil {
		return nil, errors.Wrapf(err, "object %s", name)
	}
	position, err := d.Vec3Or("position", mgl32.Vec3{})
	if err != nil {
		return nil, errors.Wrapf(err, "object %s", name)
	}

	res, err := m.LoadMesh(model)
	if err != nil {
		return nil, errors.Wrapf(err, "object %s", name)
	}
	mat, err := m.LoadMaterial(matName)
	if err != nil {
		m.meshes.Release(model)
		return nil, errors.Wrapf(err, "object %s", name)
	}

	obj := scene.NewObject(d.StringOr("name", name), res, mat)
	obj.Source = name
	obj.Weight = weight
	obj.Color = color
	obj.Transform.Position = position
	return obj, nil
}

// Release drops the references obj holds. GPU resources are freed when
// no other object uses them.
func (m *Manager) Release(obj *scene.Object) {
	if obj == nil {
		return
	}
	if obj.Mesh != nil {
		m.meshes.Release(obj.Mesh.Name())
		obj.Mesh = nil
	}
	if obj.Material != nil {
		m.materials.Release(obj.Material.Name())
		obj.Material = nil
	}
}

// Stats reports how many resources of each kind are loaded.
type Stats struct {
	Programs  int
	Textures  int
	Materials int
	Meshes    int
}

// Stats returns the number of live resources per cache.
func (m *Manager) Stats() Stats {
	return Stats{
		Programs:  m.programs.Len(),
		Textures:  m.textures.Len(),
		Materials: m.materials.Len(),
		Meshes:    m.meshes.Len(),
	}
}

// Close frees every cached resource.
func (m *Manager) Close() {
	m.materials.Clear()
	m.meshes.Clear()
	m.programs.Clear()
	m.textures.Clear()
	m.log.Info("assets released")
}
