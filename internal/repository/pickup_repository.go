package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/ecocoleta/ecocoleta-backend/internal/model"
)

// ErrPickupNotFound is returned when a pickup request does not exist.
var ErrPickupNotFound = errors.New("pickup request not found")

// PickupRepo encapsulates database queries for pickup requests and
// their material line items.
type PickupRepo struct{ db *sql.DB }

func NewPickupRepo(db *sql.DB) *PickupRepo { return &PickupRepo{db: db} }

// Create inserts a pickup request together with all of its line items
// inside a single transaction.  Either the whole request lands or none
// of it does; a failing item insert rolls the request back too.  On
// success the request and item IDs are populated and the status is
// PENDENTE.
func (r *PickupRepo) Create(ctx context.Context, p *model.PickupRequest) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	p.ID = uuid.NewString()
	p.Status = model.StatusPending
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO pickup_requests (id, producer_id, address_id, scheduled_time, status) VALUES (?,?,?,?,?)",
		p.ID, p.ProducerID, p.AddressID, p.ScheduledTime, p.Status); err != nil {
		return err
	}
	for i := range p.Items {
		item := &p.Items[i]
		item.ID = uuid.NewString()
		item.RequestID = p.ID
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO pickup_request_items (id, request_id, material_id, weight_kg, quantity) VALUES (?,?,?,?,?)",
			item.ID, item.RequestID, item.MaterialID, item.WeightKg, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// GetByID fetches a pickup request without its items.
func (r *PickupRepo) GetByID(ctx context.Context, id string) (*model.PickupRequest, error) {
	p := new(model.PickupRequest)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, producer_id, address_id, scheduled_time, status, created_at FROM pickup_requests WHERE id = ?", id).
		Scan(&p.ID, &p.ProducerID, &p.AddressID, &p.ScheduledTime, &p.Status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPickupNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListByProducer returns all pickup requests created by a producer,
// newest first, with their line items attached.
func (r *PickupRepo) ListByProducer(ctx context.Context, producerID string) ([]*model.PickupRequest, error) {
	const q = `SELECT id, producer_id, address_id, scheduled_time, status, created_at
	           FROM pickup_requests WHERE producer_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, producerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.PickupRequest
	for rows.Next() {
		p := new(model.PickupRequest)
		if err := rows.Scan(&p.ID, &p.ProducerID, &p.AddressID, &p.ScheduledTime, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range out {
		items, err := r.ItemsByRequest(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Items = items
	}
	return out, nil
}

// ItemsByRequest returns the line items of one pickup request.
func (r *PickupRepo) ItemsByRequest(ctx context.Context, requestID string) ([]model.PickupRequestItem, error) {
	const q = `SELECT id, request_id, material_id, weight_kg, quantity
	           FROM pickup_request_items WHERE request_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PickupRequestItem
	for rows.Next() {
		var it model.PickupRequestItem
		if err := rows.Scan(&it.ID, &it.RequestID, &it.MaterialID, &it.WeightKg, &it.Quantity); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpdateStatus moves a pickup request to a new lifecycle status.  The
// current status is read and checked inside the transaction, so a
// concurrent transition on the same row cannot skip a state.  Returns
// ErrPickupNotFound for a missing request and ErrConflict for a
// transition the lifecycle does not allow.
func (r *PickupRepo) UpdateStatus(ctx context.Context, id, to string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var current string
	if err = tx.QueryRowContext(ctx,
		"SELECT status FROM pickup_requests WHERE id = ? FOR UPDATE", id).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrPickupNotFound
		}
		return err
	}
	if !model.AllowedTransition(current, to) {
		err = ErrConflict
		return err
	}
	if _, err = tx.ExecContext(ctx,
		"UPDATE pickup_requests SET status = ? WHERE id = ?", to, id); err != nil {
		return err
	}
	return nil
}
