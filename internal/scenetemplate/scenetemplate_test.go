package scenetemplate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestLoadMissingDirIsNotAnError(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope"), 32, 32)
	if err != nil {
		t.Fatalf("load missing dir: %v", err)
	}
	if s.Count() != 0 {
		t.Fatalf("expected no templates, got %d", s.Count())
	}
}

func TestNewFallsBackToDefaultGridForUnknownName(t *testing.T) {
	s, _ := Load(t.TempDir(), 40, 40)
	sc := s.New("no-such-template", uuid.New(), uuid.New())
	if sc.W != 40 || sc.H != 40 {
		t.Fatalf("expected default 40x40 grid, got %dx%d", sc.W, sc.H)
	}
	if len(sc.Layers) != 0 {
		t.Fatalf("expected no layers in the blank fallback scene")
	}
}

func TestLoadReadsTemplateFilesAndNewAppliesThem(t *testing.T) {
	dir := t.TempDir()
	content := []byte("name: dungeon\ngrid_w: 64\ngrid_h: 48\nbase_layer: Battlemap\nfog: true\n")
	if err := os.WriteFile(filepath.Join(dir, "dungeon.yaml"), content, 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	s, err := Load(dir, 32, 32)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Count() != 1 {
		t.Fatalf("expected one template, got %d", s.Count())
	}

	sc := s.New("dungeon", uuid.New(), uuid.New())
	if sc.W != 64 || sc.H != 48 {
		t.Fatalf("expected 64x48 grid, got %dx%d", sc.W, sc.H)
	}
	if !sc.Fog.Active {
		t.Fatalf("expected fog to start active")
	}
	if len(sc.Layers) != 1 || sc.Layers[0].Title != "Battlemap" {
		t.Fatalf("expected a Battlemap base layer, got %+v", sc.Layers)
	}
}

func TestLoadDefaultsNameToFileStem(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tavern.yaml"), []byte("grid_w: 20\ngrid_h: 20\n"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	s, err := Load(dir, 32, 32)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sc := s.New("tavern", uuid.New(), uuid.New())
	if sc.Title != "tavern" {
		t.Fatalf("expected scene titled tavern, got %q", sc.Title)
	}
}
