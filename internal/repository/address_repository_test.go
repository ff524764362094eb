package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecocoleta/ecocoleta-backend/internal/model"
)

func TestAddressCreateAssignsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO addresses").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewAddressRepo(db)
	a := &model.Address{UserID: "u1", Street: "Rua Verde", Number: "42", City: "Curitiba", State: "PR", Zipcode: "80000-000"}
	require.NoError(t, repo.Create(context.Background(), a))
	assert.NotEmpty(t, a.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressGetByIDAndUserScopesOwnership(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// The query filters on both id and user_id, so another user's
	// address simply does not exist from the caller's point of view.
	mock.ExpectQuery("SELECT .+ FROM addresses WHERE id = \\? AND user_id =").
		WithArgs("a1", "intruder").
		WillReturnError(sql.ErrNoRows)

	repo := NewAddressRepo(db)
	_, err = repo.GetByIDAndUser(context.Background(), "a1", "intruder")
	assert.ErrorIs(t, err, ErrAddressNotFound)
}
