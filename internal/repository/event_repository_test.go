package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrii/agenda/internal/model"
)

var eventCols = []string{"id", "anunciante_id", "titulo", "descricao", "data_inicio", "data_fim", "cor", "privacidade", "status", "data_criacao"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestEventRepoCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewEventRepo(db)
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	created := start.Add(-24 * time.Hour)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO eventos_agenda`)).
		WithArgs(uint64(5), "Consulta", sql.NullString{}, start, end, model.DefaultEventColor, "publico", "pendente").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, anunciante_id`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(eventCols).
			AddRow(7, 5, "Consulta", nil, start, end, model.DefaultEventColor, "publico", "pendente", created))

	e := &model.Event{
		AdvertiserID: 5,
		Title:        "Consulta",
		StartsAt:     start,
		EndsAt:       end,
		Color:        model.DefaultEventColor,
		Visibility:   model.VisibilityPublic,
		Status:       model.EventPending,
	}
	require.NoError(t, repo.Create(context.Background(), e))
	assert.Equal(t, uint64(7), e.ID)
	assert.Nil(t, e.Description)
	assert.Equal(t, created, e.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepoGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`SELECT .* FROM eventos_agenda WHERE id = \?`).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := NewEventRepo(db).GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepoListByAdvertiserOrder(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	desc := "sala 2"
	for _, tc := range []struct {
		order model.SortOrder
		sql   string
	}{
		{model.SortAsc, `ORDER BY data_inicio ASC, id ASC`},
		{model.SortDesc, `ORDER BY data_inicio DESC, id DESC`},
	} {
		t.Run(string(tc.order), func(t *testing.T) {
			db, mock := newMock(t)
			mock.ExpectQuery(regexp.QuoteMeta(tc.sql)).
				WithArgs(uint64(5)).
				WillReturnRows(sqlmock.NewRows(eventCols).
					AddRow(1, 5, "A", desc, start, start.Add(time.Hour), "#fff", "privado", "realizado", start))

			evs, err := NewEventRepo(db).ListByAdvertiser(context.Background(), 5, tc.order)
			require.NoError(t, err)
			require.Len(t, evs, 1)
			assert.Equal(t, model.VisibilityPrivate, evs[0].Visibility)
			assert.Equal(t, model.EventDone, evs[0].Status)
			require.NotNil(t, evs[0].Description)
			assert.Equal(t, desc, *evs[0].Description)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepoUpdateStatus(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE eventos_agenda SET status = ? WHERE id = ?`)).
			WithArgs("realizado", uint64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, NewEventRepo(db).UpdateStatus(context.Background(), 3, model.EventDone))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unchanged value", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(`UPDATE eventos_agenda`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM eventos_agenda`)).
			WithArgs(uint64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		require.NoError(t, NewEventRepo(db).UpdateStatus(context.Background(), 3, model.EventDone))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(`UPDATE eventos_agenda`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM eventos_agenda`)).WillReturnError(sql.ErrNoRows)
		err := NewEventRepo(db).UpdateStatus(context.Background(), 3, model.EventDone)
		assert.ErrorIs(t, err, ErrEventNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepoFindOverlapping(t *testing.T) {
	db, mock := newMock(t)
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta(`NOT (data_fim <= ? OR data_inicio >= ?)`)).
		WithArgs(uint64(5), uint64(9), start, end).
		WillReturnRows(sqlmock.NewRows(eventCols).
			AddRow(2, 5, "B", nil, start.Add(30*time.Minute), end.Add(time.Hour), "#000", "publico", "pendente", start))

	evs, err := NewEventRepo(db).FindOverlapping(context.Background(), 5, start, end, 9)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, uint64(2), evs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepoQueryError(t *testing.T) {
	db, mock := newMock(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT`).WillReturnError(boom)
	_, err := NewEventRepo(db).ListByAdvertiser(context.Background(), 5, model.SortAsc)
	assert.ErrorIs(t, err, boom)
}
