// Package scenetemplate loads a library of starter scenes, one YAML file
// per template, the way the teacher's
// internal/data package loads its NPC/item/map tables from YAML at boot.
package scenetemplate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/owenfeik/vttserver/internal/scene"
)

// Template describes a starter scene: its grid size, an optional named base
// layer, and whether fog of war starts active.
type Template struct {
	Name      string `yaml:"name"`
	GridW     uint32 `yaml:"grid_w"`
	GridH     uint32 `yaml:"grid_h"`
	BaseLayer string `yaml:"base_layer"`
	Fog       bool   `yaml:"fog"`
}

// Store holds every loaded Template, indexed by name, plus the default
// grid size used when create_game names no template.
type Store struct {
	templates map[string]*Template
	defaultW  uint32
	defaultH  uint32
}

// Load reads every *.yaml file in dir as one Template. A template's file
// name (sans extension) is used as its lookup key unless the file sets its
// own Name. An empty or missing dir is not an error: Store just has no
// named templates, and New falls back to a blank scene of defaultW x
// defaultH for every call.
func Load(dir string, defaultW, defaultH uint32) (*Store, error) {
	s := &Store{
		templates: make(map[string]*Template),
		defaultW:  defaultW,
		defaultH:  defaultH,
	}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read scene template dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read scene template %s: %w", path, err)
		}
		var t Template
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parse scene template %s: %w", path, err)
		}
		if t.Name == "" {
			t.Name = strings.TrimSuffix(entry.Name(), ".yaml")
		}
		s.templates[t.Name] = &t
	}
	return s, nil
}

// Count reports how many named templates were loaded.
func (s *Store) Count() int { return len(s.templates) }

// New builds a fresh Scene for sceneID/projectID. name selects a loaded
// Template; an empty or unknown name falls back to a blank scene at the
// store's default grid size with no layers.
func (s *Store) New(name string, sceneID, projectID uuid.UUID) *scene.Scene {
	tmpl, ok := s.templates[name]
	if !ok {
		sc := scene.NewScene(sceneID, projectID, name)
		sc.W, sc.H = s.defaultW, s.defaultH
		sc.Fog = scene.NewFog(sc.W, sc.H)
		return sc
	}

	w, h := tmpl.GridW, tmpl.GridH
	if w == 0 {
		w = s.defaultW
	}
	if h == 0 {
		h = s.defaultH
	}

	sc := scene.NewScene(sceneID, projectID, tmpl.Name)
	sc.W, sc.H = w, h
	sc.Fog = scene.NewFog(w, h)
	sc.Fog.Active = tmpl.Fog

	if tmpl.BaseLayer != "" {
		id := sc.NextID()
		sc.AddLayer(scene.NewLayer(id, tmpl.BaseLayer, 1))
	}
	return sc
}
