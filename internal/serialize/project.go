package serialize

import (
	"github.com/owenfeik/vttserver/internal/codec"
	"github.com/owenfeik/vttserver/internal/scene"
)

// EncodeProject writes p's current state, version-prefixed, sharing the
// scene encoding used for single-scene transfer so a project is just its
// scenes concatenated under one envelope.
func EncodeProject(p *scene.Project) []byte {
	w := codec.NewWriter()
	w.WriteU32(CurrentVersion)
	writeUUID(w, p.UUID)
	w.WriteString(p.Title)
	w.WriteU32(uint32(len(p.Scenes)))
	for _, s := range p.Scenes {
		encodeSceneBody(w, s)
	}
	return w.Bytes()
}

// DecodeProject reads a project previously written by EncodeProject.
func DecodeProject(data []byte) (*scene.Project, error) {
	r := codec.NewReader(data)
	if _, err := r.ReadU32(); err != nil {
		return nil, err
	}
	id, err := readUUID(r)
	if err != nil {
		return nil, err
	}
	title, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}

	p := scene.NewProject(id, title)
	for i := uint32(0); i < n; i++ {
		s, err := decodeSceneBodyV1(r)
		if err != nil {
			return nil, err
		}
		p.AddScene(s)
	}
	return p, nil
}
