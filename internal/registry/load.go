package registry

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"chunkmesh/internal/world"
	"chunkmesh/pkg/blockmodel"
)

//go:embed default_blocks.yaml
var defaultBlocksYAML []byte

// Document is the on-disk registry format.
type Document struct {
	Blocks []BlockSpec `yaml:"blocks"`
}

type BlockSpec struct {
	Name         string       `yaml:"name"`
	ID           int          `yaml:"id,omitempty"`
	Shape        string       `yaml:"shape"`
	Materials    MaterialSpec `yaml:"materials,omitempty"`
	OccludesSame *bool        `yaml:"occludes_same,omitempty"`
	Seam         *SeamSpec    `yaml:"seam,omitempty"`
	AlphaCutoff  float32      `yaml:"alpha_cutoff,omitempty"`
	Fluid        bool         `yaml:"fluid,omitempty"`
	Emission     float32      `yaml:"emission,omitempty"`
	Beacon       float32      `yaml:"beacon,omitempty"`
	Model        string       `yaml:"model,omitempty"`
}

type MaterialSpec struct {
	All    string `yaml:"all,omitempty"`
	Top    string `yaml:"top,omitempty"`
	Bottom string `yaml:"bottom,omitempty"`
	Side   string `yaml:"side,omitempty"`
}

type SeamSpec struct {
	DontOccludeSame   *bool `yaml:"dont_occlude_same,omitempty"`
	DontProjectFixups bool  `yaml:"dont_project_fixups,omitempty"`
}

// Load reads a registry document. Thin-shape models named in the document
// are resolved through models; nil means built-in models only.
func Load(path string, models *blockmodel.Loader) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := Parse(data, models)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Default returns the built-in registry.
func Default() *Registry {
	r, err := Parse(defaultBlocksYAML, nil)
	if err != nil {
		panic(fmt.Sprintf("registry: built-in blocks are invalid: %v", err))
	}
	return r
}

// Parse validates and builds a registry from YAML.
func Parse(data []byte, models *blockmodel.Loader) (*Registry, error) {
	if err := validateDocument(data); err != nil {
		return nil, fmt.Errorf("registry schema: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("registry yaml: %w", err)
	}
	if models == nil {
		models = blockmodel.NewLoader("")
	}
	r := New()
	for i, spec := range doc.Blocks {
		if spec.Name == "air" {
			continue
		}
		def, err := r.definitionFor(spec, models)
		if err != nil {
			return nil, fmt.Errorf("block %d (%s): %w", i, spec.Name, err)
		}
		if _, err := r.RegisterBlock(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) definitionFor(spec BlockSpec, models *blockmodel.Loader) (BlockDefinition, error) {
	shape, err := ParseShape(spec.Shape)
	if err != nil {
		return BlockDefinition{}, err
	}
	seam, err := resolveSeam(spec, shape)
	if err != nil {
		return BlockDefinition{}, err
	}
	def := BlockDefinition{
		ID:          world.BlockID(spec.ID),
		Name:        spec.Name,
		Shape:       shape,
		Seam:        seam,
		AlphaCutoff: spec.AlphaCutoff,
		Fluid:       spec.Fluid,
		Emission:    spec.Emission,
		Beacon:      spec.Beacon,
	}

	mats := spec.Materials
	if spec.Model != "" {
		if !shape.Thin() {
			return BlockDefinition{}, fmt.Errorf("model %q given for non-thin shape %s", spec.Model, shape)
		}
		m, err := models.LoadModel(spec.Model)
		if err != nil {
			return BlockDefinition{}, err
		}
		def.Model = m
		if mats.All == "" {
			mats.All = blockmodel.ResolveTexture("#all", m)
			if mats.All == "#all" {
				mats.All = ""
			}
		}
	}
	pick := func(specific string) MaterialID {
		if specific != "" {
			return r.Material(specific)
		}
		return r.Material(mats.All)
	}
	def.Materials[world.RoleTop] = pick(mats.Top)
	def.Materials[world.RoleBottom] = pick(mats.Bottom)
	def.Materials[world.RoleSide] = pick(mats.Side)
	if shape != ShapeNone && def.Materials == ([3]MaterialID{}) {
		// visible blocks without materials fall back to a material named after the block
		id := r.Material(spec.Name)
		def.Materials = [3]MaterialID{id, id, id}
	}
	return def, nil
}

// resolveSeam merges occludes_same with the seam block. Both spell the same
// rule with opposite polarity; disagreement is a configuration error.
func resolveSeam(spec BlockSpec, shape Shape) (SeamPolicy, error) {
	var p SeamPolicy
	if spec.OccludesSame != nil {
		p.DontOccludeSame = !*spec.OccludesSame
	}
	if spec.Seam == nil {
		return p, nil
	}
	if s := spec.Seam.DontOccludeSame; s != nil {
		if spec.OccludesSame != nil && *s == *spec.OccludesSame {
			return p, fmt.Errorf("%w: occludes_same=%v with seam.dont_occlude_same=%v", ErrContradictorySeam, *spec.OccludesSame, *s)
		}
		p.DontOccludeSame = *s
	}
	if spec.Seam.DontProjectFixups {
		if shape.Thin() || shape == ShapeNone {
			return p, fmt.Errorf("%w: dont_project_fixups on %s, which never reaches a seam", ErrContradictorySeam, shape)
		}
		p.DontProjectFixups = true
	}
	return p, nil
}
