package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrii/agenda/internal/model"
)

func TestAdvertiserRepoCreateAndGet(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO anunciantes`).
		WithArgs(uint64(42), "Loja Demo").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery(`SELECT id, usuario_id, nome, data_criacao FROM anunciantes WHERE id = \?`).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "usuario_id", "nome", "data_criacao"}).AddRow(5, 42, "Loja Demo", created))

	a := &model.Advertiser{UserID: 42, Name: "Loja Demo"}
	require.NoError(t, NewAdvertiserRepo(db).Create(context.Background(), a))
	assert.Equal(t, uint64(5), a.ID)
	assert.Equal(t, created, a.CreatedAt)
	assert.True(t, a.IsOwner(42))
	assert.False(t, a.IsOwner(0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvertiserRepoNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM anunciantes WHERE usuario_id`).WillReturnError(sql.ErrNoRows)
	_, err := NewAdvertiserRepo(db).GetByUserID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrAdvertiserNotFound)
}
