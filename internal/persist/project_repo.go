package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/owenfeik/vttserver/internal/scene"
	"github.com/owenfeik/vttserver/internal/serialize"
)

// ProjectRepo is the persistence adapter core component 9 names: one row
// per Project, keyed on its uuid, holding the versioned envelope
// serialize.EncodeProject produces. It satisfies game.Persister.
type ProjectRepo struct {
	db *DB
}

func NewProjectRepo(db *DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// SaveProject upserts p's current encoded state. The envelope's version
// prefix lets a later decoder recognize and migrate rows written by an
// older build, per §6 of the wire/persistence contract.
func (r *ProjectRepo) SaveProject(ctx context.Context, p *scene.Project) error {
	payload := serialize.EncodeProject(p)
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO projects (uuid, version, payload, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (uuid) DO UPDATE SET version = $2, payload = $3, updated_at = now()`,
		p.UUID, serialize.CurrentVersion, payload,
	)
	if err != nil {
		return fmt.Errorf("save project %s: %w", p.UUID, err)
	}
	return nil
}

// LoadProject fetches and decodes the Project stored under id.
func (r *ProjectRepo) LoadProject(ctx context.Context, id uuid.UUID) (*scene.Project, error) {
	var payload []byte
	err := r.db.Pool.QueryRow(ctx,
		`SELECT payload FROM projects WHERE uuid = $1`, id,
	).Scan(&payload)
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", id, err)
	}
	p, err := serialize.DecodeProject(payload)
	if err != nil {
		return nil, fmt.Errorf("decode project %s: %w", id, err)
	}
	return p, nil
}
