package blockmodel

import (
	"os"
	"path/filepath"
	"testing"
)

func writeModels(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "models", "block")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name+".json"), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestLoadChildModelInheritsArms(t *testing.T) {
	root := writeModels(t, map[string]string{
		"thin_rail": `{
			"textures": { "all": "iron_bars" },
			"elements": [ { "from": [7,0,7], "to": [9,16,9], "faces": { "up": { "texture": "#all" } } } ],
			"arms": { "north": [ { "from": [7,0,0], "to": [9,16,7] } ] }
		}`,
		"copper_rail": `{
			"parent": "block/thin_rail",
			"textures": { "all": "copper_bars" }
		}`,
	})
	loader := NewLoader(root)
	model, err := loader.LoadModel("copper_rail")
	if err != nil {
		t.Fatalf("Failed to load model: %v", err)
	}
	if len(model.Elements) != 1 {
		t.Fatalf("Expected 1 element from parent, got %d", len(model.Elements))
	}
	if got := model.Elements[0].Faces["up"].Texture; got != "copper_bars" {
		t.Errorf("texture: got %q, want copper_bars", got)
	}
	if len(model.Arms["north"]) != 1 {
		t.Errorf("Expected the north arm to be inherited, got %d", len(model.Arms["north"]))
	}
}

func TestSharedParentIsNotMutated(t *testing.T) {
	root := writeModels(t, map[string]string{
		"parent": `{
			"textures": { "dummy": "ignore" },
			"elements": [ { "from": [0,0,0], "to": [16,1,16], "faces": { "up": { "texture": "#all" } } } ]
		}`,
		"child1": `{ "parent": "block/parent", "textures": { "all": "skin1" } }`,
		"child2": `{ "parent": "block/parent", "textures": { "all": "skin2" } }`,
	})
	loader := NewLoader(root)

	c1, err := loader.LoadModel("block/child1")
	if err != nil {
		t.Fatalf("Failed to load child1: %v", err)
	}
	c2, err := loader.LoadModel("block/child2")
	if err != nil {
		t.Fatalf("Failed to load child2: %v", err)
	}
	if got := c1.Elements[0].Faces["up"].Texture; got != "skin1" {
		t.Errorf("child1: got %s, want skin1", got)
	}
	if got := c2.Elements[0].Faces["up"].Texture; got != "skin2" {
		t.Errorf("child2: got %s, want skin2 (parent pollution)", got)
	}
	parent, _ := loader.LoadModel("block/parent")
	if got := parent.Elements[0].Faces["up"].Texture; got != "#all" {
		t.Errorf("parent in cache was mutated, got %s", got)
	}
}

func TestCache(t *testing.T) {
	root := writeModels(t, map[string]string{
		"slab_plate": `{ "elements": [ { "from": [0,0,0], "to": [16,8,16] } ] }`,
	})
	loader := NewLoader(root)
	model1, err := loader.LoadModel("slab_plate")
	if err != nil {
		t.Fatalf("Failed to load model first time: %v", err)
	}
	model2, err := loader.LoadModel("block/slab_plate")
	if err != nil {
		t.Fatalf("Failed to load model second time: %v", err)
	}
	if model1 != model2 {
		t.Errorf("Expected the same model instance to be returned from cache")
	}
}

func TestInvalidElementRejected(t *testing.T) {
	root := writeModels(t, map[string]string{
		"broken": `{ "elements": [ { "from": [0,0,0], "to": [17,16,16] } ] }`,
	})
	if _, err := NewLoader(root).LoadModel("broken"); err == nil {
		t.Errorf("expected an error for an element outside the grid")
	}
}

func TestBuiltinModels(t *testing.T) {
	for _, name := range []string{"pane", "fence", "gate", "carpet"} {
		m, err := NewLoader(t.TempDir()).LoadModel("builtin/" + name)
		if err != nil {
			t.Fatalf("builtin/%s: %v", name, err)
		}
		for i, e := range m.Elements {
			if !e.Valid() {
				t.Errorf("builtin/%s element %d invalid: %+v", name, i, e)
			}
		}
		for side, els := range m.Arms {
			for i, e := range els {
				if !e.Valid() {
					t.Errorf("builtin/%s arm %s/%d invalid", name, side, i)
				}
			}
		}
	}
	if _, err := NewLoader("").LoadModel("builtin/anvil"); err == nil {
		t.Errorf("expected an error for an unknown builtin")
	}
}

func TestRotateY(t *testing.T) {
	e := box(2, 0, 7, 14, 16, 9)
	r := e.RotateY(1)
	if r.From != [3]float32{7, 0, 2} || r.To != [3]float32{9, 16, 14} {
		t.Errorf("RotateY(1): got %v-%v", r.From, r.To)
	}
	if back := e.RotateY(4); back.From != e.From || back.To != e.To {
		t.Errorf("RotateY(4) should be the identity, got %v-%v", back.From, back.To)
	}
	min, max := r.Bounds()
	if min.X() != 7.0/16 || max.Z() != 14.0/16 {
		t.Errorf("Bounds: got %v %v", min, max)
	}
}
