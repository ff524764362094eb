package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/ecocoleta/ecocoleta-backend/internal/model"
)

// ErrAddressNotFound is returned when an address cannot be found or is
// owned by another user.
var ErrAddressNotFound = errors.New("address not found")

// AddressRepo encapsulates database queries for pickup addresses.
type AddressRepo struct{ db *sql.DB }

func NewAddressRepo(db *sql.DB) *AddressRepo { return &AddressRepo{db: db} }

// Create inserts a new address for its owner.  On success the ID field
// is populated with a fresh UUID.
func (r *AddressRepo) Create(ctx context.Context, a *model.Address) error {
	a.ID = uuid.NewString()
	const q = `INSERT INTO addresses (id, user_id, street, number, city, state, zipcode, latitude, longitude)
	           VALUES (?,?,?,?,?,?,?,?,?)`
	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.UserID, a.Street, a.Number, a.City, a.State, a.Zipcode,
		nullable(a.Latitude), nullable(a.Longitude))
	return err
}

// ListByUser returns all addresses registered by a user.
func (r *AddressRepo) ListByUser(ctx context.Context, userID string) ([]*model.Address, error) {
	const q = `SELECT id, user_id, street, number, city, state, zipcode, latitude, longitude
	           FROM addresses WHERE user_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Address
	for rows.Next() {
		a := new(model.Address)
		var lat, lon sql.NullString
		if err := rows.Scan(&a.ID, &a.UserID, &a.Street, &a.Number, &a.City, &a.State, &a.Zipcode, &lat, &lon); err != nil {
			return nil, err
		}
		a.Latitude, a.Longitude = lat.String, lon.String
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIDAndUser fetches an address only if it belongs to the given
// user, so handlers cannot schedule pickups at someone else's address.
func (r *AddressRepo) GetByIDAndUser(ctx context.Context, id, userID string) (*model.Address, error) {
	const q = `SELECT id, user_id, street, number, city, state, zipcode, latitude, longitude
	           FROM addresses WHERE id = ? AND user_id = ?`
	a := new(model.Address)
	var lat, lon sql.NullString
	err := r.db.QueryRowContext(ctx, q, id, userID).
		Scan(&a.ID, &a.UserID, &a.Street, &a.Number, &a.City, &a.State, &a.Zipcode, &lat, &lon)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	a.Latitude, a.Longitude = lat.String, lon.String
	return a, nil
}

// nullable maps the empty string to NULL for optional DECIMAL columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
