package scene

import "github.com/google/uuid"

// Project is a persisted container of one or more Scenes owned by one user.
type Project struct {
	UUID   uuid.UUID
	Title  string
	Scenes []*Scene
}

func NewProject(id uuid.UUID, title string) *Project {
	return &Project{UUID: id, Title: title}
}

func (p *Project) Scene(id uuid.UUID) *Scene {
	for _, s := range p.Scenes {
		if s.UUID == id {
			return s
		}
	}
	return nil
}

func (p *Project) AddScene(s *Scene) {
	p.Scenes = append(p.Scenes, s)
}

func (p *Project) RemoveScene(id uuid.UUID) bool {
	for i, s := range p.Scenes {
		if s.UUID == id {
			p.Scenes = append(p.Scenes[:i], p.Scenes[i+1:]...)
			return true
		}
	}
	return false
}

// SceneListEntry is the lightweight scene-index row sent to clients in a
// SceneList ServerEvent.
type SceneListEntry struct {
	UUID  uuid.UUID
	Title string
}

func (p *Project) SceneList() []SceneListEntry {
	entries := make([]SceneListEntry, len(p.Scenes))
	for i, s := range p.Scenes {
		entries[i] = SceneListEntry{UUID: s.UUID, Title: s.Title}
	}
	return entries
}
