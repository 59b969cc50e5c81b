package blockmodel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Loader struct {
	assetsPath string
	mu         sync.Mutex
	modelCache map[string]*Model
	// unresolved copies, so children re-resolve "#key" textures themselves
	rawCache map[string]*Model
}

func NewLoader(assetsPath string) *Loader {
	return &Loader{
		assetsPath: assetsPath,
		modelCache: make(map[string]*Model),
		rawCache:   make(map[string]*Model),
	}
}

// LoadModel reads models/<name>.json, resolving parents. Names starting with
// "builtin/" resolve to the built-in thin-shape models.
func (l *Loader) LoadModel(name string) (*Model, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, _, err := l.loadLocked(name, 0)
	return m, err
}

func (l *Loader) loadLocked(name string, depth int) (resolved, raw *Model, err error) {
	if depth > 16 {
		return nil, nil, fmt.Errorf("model parent chain too deep at '%s'", name)
	}
	if strings.HasPrefix(name, "builtin/") {
		m, ok := Builtin(strings.TrimPrefix(name, "builtin/"))
		if !ok {
			return nil, nil, fmt.Errorf("unknown builtin model '%s'", name)
		}
		return m, m, nil
	}
	if !strings.Contains(name, "/") {
		name = "block/" + name
	}

	if model, ok := l.modelCache[name]; ok {
		return model, l.rawCache[name], nil
	}

	path := filepath.Join(l.assetsPath, "models", name+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read model file: %w", err)
	}

	var model Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, nil, fmt.Errorf("could not unmarshal model json: %w", err)
	}
	if model.Textures == nil {
		model.Textures = make(map[string]string)
	}

	if model.Parent != "" {
		_, parent, err := l.loadLocked(model.Parent, depth+1)
		if err != nil {
			return nil, nil, fmt.Errorf("could not load parent model '%s': %w", model.Parent, err)
		}
		// copy so resolving our textures never rewrites the parent's elements
		if len(model.Elements) == 0 {
			model.Elements = cloneElements(parent.Elements)
		}
		if len(model.Arms) == 0 && len(parent.Arms) > 0 {
			model.Arms = make(map[string][]Element, len(parent.Arms))
			for side, els := range parent.Arms {
				model.Arms[side] = cloneElements(els)
			}
		}
		for key, val := range parent.Textures {
			if _, ok := model.Textures[key]; !ok {
				model.Textures[key] = val
			}
		}
	}

	for i, e := range model.Elements {
		if !e.Valid() {
			return nil, nil, fmt.Errorf("model '%s': element %d is outside the 0..16 grid or empty", name, i)
		}
	}

	rawModel := model
	rawModel.Elements = cloneElements(model.Elements)
	rawModel.Arms = make(map[string][]Element, len(model.Arms))
	for side, els := range model.Arms {
		rawModel.Arms[side] = cloneElements(els)
	}

	l.resolveTextures(&model)
	l.modelCache[name] = &model
	l.rawCache[name] = &rawModel
	return &model, &rawModel, nil
}

func (l *Loader) resolveTextures(m *Model) {
	resolve := func(els []Element) {
		for i := range els {
			for faceName, face := range els[i].Faces {
				resolved := ResolveTexture(face.Texture, m)
				if resolved != face.Texture {
					face.Texture = resolved
					els[i].Faces[faceName] = face
				}
			}
		}
	}
	resolve(m.Elements)
	for _, els := range m.Arms {
		resolve(els)
	}
}

// ResolveTexture follows "#key" references through the model's texture map.
func ResolveTexture(textureName string, m *Model) string {
	for i := 0; i < 10 && strings.HasPrefix(textureName, "#"); i++ {
		key := strings.TrimPrefix(textureName, "#")
		if resolved, ok := m.Textures[key]; ok {
			textureName = resolved
		} else {
			break
		}
	}
	return textureName
}
