package loaders

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/df07/go-phong-raytracer/pkg/camera"
	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/lights"
	"github.com/df07/go-phong-raytracer/pkg/material"
	"github.com/df07/go-phong-raytracer/pkg/missshader"
	"github.com/df07/go-phong-raytracer/pkg/scene"
)

var ErrInvalidScene = errors.New("invalid scene description")

// LoadedScene is the result of loading a scene file
type LoadedScene struct {
	Scene         *scene.Scene
	Camera        *camera.Perspective
	MaterialNames map[string]core.MaterialIndex // Named entries of the material table
}

// YAMLLoader builds scenes from YAML scene descriptions
type YAMLLoader struct {
	logger *slog.Logger
}

// NewYAMLLoader creates a loader that reports recoverable problems to logger.
// A nil logger discards them.
func NewYAMLLoader(logger *slog.Logger) *YAMLLoader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &YAMLLoader{logger: logger}
}

// Load reads and builds the scene file at path
func (l *YAMLLoader) Load(path string) (*LoadedScene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	loaded, err := l.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	l.logger.Debug("loaded scene",
		"path", path,
		"materials", loaded.Scene.MaterialCount(),
		"lights", len(loaded.Scene.Lights()),
		"primitives", loaded.Scene.GetPrimitiveCount())
	return loaded, nil
}

// Parse builds a scene from YAML content
func (l *YAMLLoader) Parse(reader io.Reader) (*LoadedScene, error) {
	var doc sceneDocument
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScene)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}

	b := &sceneBuilder{
		logger:        l.logger,
		materialNames: make(map[string]core.MaterialIndex),
	}
	return b.build(&doc)
}

// sceneDocument mirrors the top level of a scene file
type sceneDocument struct {
	Camera     *cameraDocument     `yaml:"camera"`
	MissShader *missShaderDocument `yaml:"missShader"`
	Lights     []lightDocument     `yaml:"lights"`
	Materials  []materialDocument  `yaml:"materials"`
	Geometry   *geometryDocument   `yaml:"geometry"`
	MaxDepth   *int                `yaml:"maxDepth"`
}

type cameraDocument struct {
	Perspective *perspectiveDocument `yaml:"perspective"`
}

type perspectiveDocument struct {
	Position      yamlVec3  `yaml:"position"`
	LookAt        yamlVec3  `yaml:"lookAt"`
	Up            *yamlVec3 `yaml:"up"`
	Fov           core.Real `yaml:"fov"`
	ScreenSize    []int     `yaml:"screenSize"`
	SubpixelCount int       `yaml:"subpixelCount"`
}

type missShaderDocument struct {
	Constant *struct {
		Color yamlColor `yaml:"color"`
	} `yaml:"constant"`
	Gradient *struct {
		Top    yamlColor `yaml:"top"`
		Bottom yamlColor `yaml:"bottom"`
	} `yaml:"gradient"`
}

type lightDocument struct {
	Directional *struct {
		Color     yamlColor `yaml:"color"`
		Direction yamlVec3  `yaml:"direction"`
	} `yaml:"directional"`
	Point *struct {
		Color    yamlColor `yaml:"color"`
		Position yamlVec3  `yaml:"position"`
		Falloff  string    `yaml:"falloff"`
	} `yaml:"point"`
}

type phongDocument struct {
	Name          string    `yaml:"name"`
	AmbientColor  yamlColor `yaml:"ambientColor"`
	DiffuseColor  yamlColor `yaml:"diffuseColor"`
	SpecularColor yamlColor `yaml:"specularColor"`
	Shininess     core.Real `yaml:"shininess"`
}

type materialDocument struct {
	Phong      *phongDocument `yaml:"phong"`
	Reflective *struct {
		phongDocument `yaml:",inline"`
		Reflectivity  yamlColor `yaml:"reflectivity"`
	} `yaml:"reflective"`
}

type geometryDocument struct {
	Sphere *struct {
		Position yamlVec3  `yaml:"position"`
		Radius   core.Real `yaml:"radius"`
		Material string    `yaml:"material"`
	} `yaml:"sphere"`
	Plane *struct {
		Position yamlVec3 `yaml:"position"`
		Normal   yamlVec3 `yaml:"normal"`
		Material string   `yaml:"material"`
	} `yaml:"plane"`
	Collection *struct {
		Children []geometryDocument `yaml:"children"`
	} `yaml:"collection"`
}

// yamlVec3 accepts [x, y, z] or {x, y, z}
type yamlVec3 core.Vec3

func (v *yamlVec3) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var xs []core.Real
		if err := value.Decode(&xs); err != nil {
			return err
		}
		if len(xs) != 3 {
			return fmt.Errorf("line %d: vector needs 3 components, got %d", value.Line, len(xs))
		}
		*v = yamlVec3{X: xs[0], Y: xs[1], Z: xs[2]}
	case yaml.MappingNode:
		var m struct {
			X core.Real `yaml:"x"`
			Y core.Real `yaml:"y"`
			Z core.Real `yaml:"z"`
		}
		if err := value.Decode(&m); err != nil {
			return err
		}
		*v = yamlVec3{X: m.X, Y: m.Y, Z: m.Z}
	default:
		return fmt.Errorf("line %d: vector must be a list or a mapping", value.Line)
	}
	return nil
}

// yamlColor accepts [r, g, b], {r, g, b} or a single grey value
type yamlColor core.Color3

func (c *yamlColor) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var grey core.Real
		if err := value.Decode(&grey); err != nil {
			return err
		}
		*c = yamlColor(core.Grey(grey))
	case yaml.SequenceNode:
		var xs []core.Real
		if err := value.Decode(&xs); err != nil {
			return err
		}
		if len(xs) != 3 {
			return fmt.Errorf("line %d: color needs 3 components, got %d", value.Line, len(xs))
		}
		*c = yamlColor{R: xs[0], G: xs[1], B: xs[2]}
	case yaml.MappingNode:
		var m struct {
			R core.Real `yaml:"r"`
			G core.Real `yaml:"g"`
			B core.Real `yaml:"b"`
		}
		if err := value.Decode(&m); err != nil {
			return err
		}
		*c = yamlColor{R: m.R, G: m.G, B: m.B}
	default:
		return fmt.Errorf("line %d: color must be a number, a list or a mapping", value.Line)
	}
	return nil
}

// sceneBuilder turns a decoded document into validated scene objects
type sceneBuilder struct {
	logger        *slog.Logger
	materials     []material.Material
	materialNames map[string]core.MaterialIndex
}

func (b *sceneBuilder) build(doc *sceneDocument) (*LoadedScene, error) {
	cam, err := b.buildCamera(doc.Camera)
	if err != nil {
		return nil, err
	}

	// Index 0 is always the black fallback material
	b.materials = []material.Material{material.NewDefault()}
	for i := range doc.Materials {
		if err := b.addMaterial(fmt.Sprintf("materials[%d]", i), &doc.Materials[i]); err != nil {
			return nil, err
		}
	}

	sceneLights := make([]lights.Light, 0, len(doc.Lights))
	for i := range doc.Lights {
		light, err := buildLight(fmt.Sprintf("lights[%d]", i), &doc.Lights[i])
		if err != nil {
			return nil, err
		}
		sceneLights = append(sceneLights, light)
	}

	miss, err := buildMissShader(doc.MissShader)
	if err != nil {
		return nil, err
	}

	var root geometry.Intersectable
	if doc.Geometry != nil {
		root, err = b.buildGeometry("geometry", doc.Geometry)
		if err != nil {
			return nil, err
		}
	}

	maxDepth := scene.DefaultMaxDepth
	if doc.MaxDepth != nil {
		maxDepth = *doc.MaxDepth
	}

	s, err := scene.New(scene.Config{
		Materials:  b.materials,
		Lights:     sceneLights,
		MissShader: miss,
		Root:       root,
		MaxDepth:   maxDepth,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}

	return &LoadedScene{Scene: s, Camera: cam, MaterialNames: b.materialNames}, nil
}

func (b *sceneBuilder) buildCamera(doc *cameraDocument) (*camera.Perspective, error) {
	if doc == nil || doc.Perspective == nil {
		return nil, fmt.Errorf("%w: camera: a perspective camera is required", ErrInvalidScene)
	}
	p := doc.Perspective

	if len(p.ScreenSize) != 2 {
		return nil, fmt.Errorf("%w: camera.perspective.screenSize: need [width, height], got %v", ErrInvalidScene, p.ScreenSize)
	}

	up := core.NewVec3(0, 1, 0)
	if p.Up != nil {
		up = core.Vec3(*p.Up)
	}

	cam, err := camera.NewPerspective(camera.Config{
		Position:    core.Vec3(p.Position),
		LookAt:      core.Vec3(p.LookAt),
		Up:          up,
		FieldOfView: p.Fov,
		Width:       p.ScreenSize[0],
		Height:      p.ScreenSize[1],
		Subpixels:   p.SubpixelCount,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: camera.perspective: %w", ErrInvalidScene, err)
	}
	return cam, nil
}

func (b *sceneBuilder) addMaterial(path string, doc *materialDocument) error {
	var (
		m    material.Material
		name string
		err  error
	)

	switch {
	case doc.Phong != nil && doc.Reflective == nil:
		name = doc.Phong.Name
		m, err = newPhong(doc.Phong)
	case doc.Reflective != nil && doc.Phong == nil:
		name = doc.Reflective.Name
		var base *material.Phong
		base, err = newPhong(&doc.Reflective.phongDocument)
		if err == nil {
			m = material.NewReflective(base, core.Color3(doc.Reflective.Reflectivity))
		}
	default:
		return fmt.Errorf("%w: %s: need exactly one of phong or reflective", ErrInvalidScene, path)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidScene, path, err)
	}

	index := core.MaterialIndex(len(b.materials))
	if name != "" {
		if _, exists := b.materialNames[name]; exists {
			return fmt.Errorf("%w: %s: duplicate material name %q", ErrInvalidScene, path, name)
		}
		b.materialNames[name] = index
	}
	b.materials = append(b.materials, m)
	return nil
}

func newPhong(doc *phongDocument) (*material.Phong, error) {
	return material.NewPhong(
		core.Color3(doc.AmbientColor),
		core.Color3(doc.DiffuseColor),
		core.Color3(doc.SpecularColor),
		doc.Shininess,
	)
}

// resolveMaterial maps a material name to its index. Unknown names fall back
// to the default material.
func (b *sceneBuilder) resolveMaterial(path, name string) core.MaterialIndex {
	if name == "" {
		return core.DefaultMaterial
	}
	index, ok := b.materialNames[name]
	if !ok {
		b.logger.Warn("unknown material, using default", "path", path, "material", name)
		return core.DefaultMaterial
	}
	return index
}

func buildLight(path string, doc *lightDocument) (lights.Light, error) {
	switch {
	case doc.Directional != nil && doc.Point == nil:
		light, err := lights.NewDirectionalLight(core.Vec3(doc.Directional.Direction), core.Color3(doc.Directional.Color))
		if err != nil {
			return nil, fmt.Errorf("%w: %s.directional: %w", ErrInvalidScene, path, err)
		}
		return light, nil
	case doc.Point != nil && doc.Directional == nil:
		falloff, err := lights.ParseFalloff(doc.Point.Falloff)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.point: %w", ErrInvalidScene, path, err)
		}
		return lights.NewPointLightWithFalloff(core.Vec3(doc.Point.Position), core.Color3(doc.Point.Color), falloff), nil
	default:
		return nil, fmt.Errorf("%w: %s: need exactly one of directional or point", ErrInvalidScene, path)
	}
}

func buildMissShader(doc *missShaderDocument) (missshader.MissShader, error) {
	if doc == nil {
		return missshader.NewConstant(core.Black), nil
	}
	switch {
	case doc.Constant != nil && doc.Gradient == nil:
		return missshader.NewConstant(core.Color3(doc.Constant.Color)), nil
	case doc.Gradient != nil && doc.Constant == nil:
		return missshader.NewGradient(core.Color3(doc.Gradient.Top), core.Color3(doc.Gradient.Bottom)), nil
	default:
		return nil, fmt.Errorf("%w: missShader: need exactly one of constant or gradient", ErrInvalidScene)
	}
}

func (b *sceneBuilder) buildGeometry(path string, doc *geometryDocument) (geometry.Intersectable, error) {
	variants := 0
	for _, set := range []bool{doc.Sphere != nil, doc.Plane != nil, doc.Collection != nil} {
		if set {
			variants++
		}
	}
	if variants != 1 {
		return nil, fmt.Errorf("%w: %s: need exactly one of sphere, plane or collection", ErrInvalidScene, path)
	}

	switch {
	case doc.Sphere != nil:
		path += ".sphere"
		sphere, err := geometry.NewSphere(
			core.Vec3(doc.Sphere.Position),
			doc.Sphere.Radius,
			b.resolveMaterial(path, doc.Sphere.Material),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidScene, path, err)
		}
		return sphere, nil

	case doc.Plane != nil:
		path += ".plane"
		plane, err := geometry.NewPlane(
			core.Vec3(doc.Plane.Position),
			core.Vec3(doc.Plane.Normal),
			b.resolveMaterial(path, doc.Plane.Material),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidScene, path, err)
		}
		return plane, nil

	default:
		children := make([]geometry.Intersectable, 0, len(doc.Collection.Children))
		for i := range doc.Collection.Children {
			child, err := b.buildGeometry(fmt.Sprintf("%s.collection.children[%d]", path, i), &doc.Collection.Children[i])
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return geometry.NewCollection(children...), nil
	}
}
