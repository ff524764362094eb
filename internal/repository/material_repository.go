package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/ecocoleta/ecocoleta-backend/internal/model"
)

// ErrMaterialNotFound is returned when a catalog entry does not exist.
var ErrMaterialNotFound = errors.New("material not found")

// MaterialRepo encapsulates database queries for the recyclable
// material catalog.
type MaterialRepo struct{ db *sql.DB }

func NewMaterialRepo(db *sql.DB) *MaterialRepo { return &MaterialRepo{db: db} }

// Create inserts a new catalog entry.  On success the ID field is
// populated with a fresh UUID.
func (r *MaterialRepo) Create(ctx context.Context, m *model.RecyclableMaterial) error {
	m.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO recyclable_materials (id, type, description) VALUES (?,?,?)",
		m.ID, m.Type, m.Description)
	return err
}

// List returns the whole material catalog ordered by type.
func (r *MaterialRepo) List(ctx context.Context) ([]*model.RecyclableMaterial, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, type, description FROM recyclable_materials ORDER BY type")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.RecyclableMaterial
	for rows.Next() {
		m := new(model.RecyclableMaterial)
		var desc sql.NullString
		if err := rows.Scan(&m.ID, &m.Type, &desc); err != nil {
			return nil, err
		}
		m.Description = desc.String
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches a single catalog entry.
func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*model.RecyclableMaterial, error) {
	m := new(model.RecyclableMaterial)
	var desc sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT id, type, description FROM recyclable_materials WHERE id = ?", id).
		Scan(&m.ID, &m.Type, &desc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMaterialNotFound
		}
		return nil, err
	}
	m.Description = desc.String
	return m, nil
}
