package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vitrii/agenda/internal/model"
)

const eventColumns = `id, anunciante_id, titulo, descricao, data_inicio, data_fim, cor, privacidade, status, data_criacao`

// EventRepo manages persistence for agenda events.  Events are never
// deleted; status changes are the only mutation after creation.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// Create inserts a new event and re-reads the row so DB defaults
// (data_criacao) are populated on e.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	return insertEvent(ctx, r.db, e)
}

// CreateTx behaves like Create but runs inside tx.  The caller commits or
// rolls back.
func (r *EventRepo) CreateTx(ctx context.Context, tx *sql.Tx, e *model.Event) error {
	return insertEvent(ctx, tx, e)
}

func insertEvent(ctx context.Context, q querier, e *model.Event) error {
	const ins = `INSERT INTO eventos_agenda (anunciante_id, titulo, descricao, data_inicio, data_fim, cor, privacidade, status)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, ins,
		e.AdvertiserID, e.Title, nullString(e.Description),
		e.StartsAt.UTC(), e.EndsAt.UTC(), e.Color, string(e.Visibility), string(e.Status),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := scanEvent(q.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM eventos_agenda WHERE id = ?`, id))
	if err != nil {
		return err
	}
	*e = *created
	return nil
}

// GetByID retrieves an event by its ID.  It returns ErrEventNotFound if
// there is no matching row.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM eventos_agenda WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

// ListByAdvertiser returns every event of an advertiser ordered by start
// time.  Visibility is not applied here; callers filter per viewer.
func (r *EventRepo) ListByAdvertiser(ctx context.Context, advertiserID uint64, order model.SortOrder) ([]model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM eventos_agenda WHERE anunciante_id = ? ORDER BY data_inicio ASC, id ASC`
	if order == model.SortDesc {
		q = `SELECT ` + eventColumns + ` FROM eventos_agenda WHERE anunciante_id = ? ORDER BY data_inicio DESC, id DESC`
	}
	return queryEvents(ctx, r.db, q, advertiserID)
}

// UpdateStatus sets the status of an event.  MySQL reports zero affected
// rows when the value is unchanged, so on zero rows the existence of the
// event is checked to tell "not found" from "no change".
func (r *EventRepo) UpdateStatus(ctx context.Context, id uint64, status model.EventStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE eventos_agenda SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM eventos_agenda WHERE id = ? LIMIT 1`, id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		return err
	}
	return nil
}

// FindOverlapping finds the advertiser's events whose range intersects
// [start, end).  An event overlaps when it starts before the proposed end
// and ends after the proposed start.  excludeID (when non-zero) is left out
// of the result so a freshly created event does not report itself.
func (r *EventRepo) FindOverlapping(ctx context.Context, advertiserID uint64, start, end time.Time, excludeID uint64) ([]model.Event, error) {
	const q = `SELECT ` + eventColumns + `
               FROM eventos_agenda
               WHERE anunciante_id = ? AND id <> ? AND NOT (data_fim <= ? OR data_inicio >= ?)
               ORDER BY data_inicio ASC, id ASC`
	return queryEvents(ctx, r.db, q, advertiserID, excludeID, start.UTC(), end.UTC())
}

func queryEvents(ctx context.Context, q querier, query string, args ...any) ([]model.Event, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanEvent(s rowScanner) (*model.Event, error) {
	var (
		e          model.Event
		desc       sql.NullString
		visibility string
		status     string
	)
	if err := s.Scan(
		&e.ID, &e.AdvertiserID, &e.Title, &desc, &e.StartsAt, &e.EndsAt,
		&e.Color, &visibility, &status, &e.CreatedAt,
	); err != nil {
		return nil, err
	}
	e.Description = stringPtr(desc)
	e.Visibility = model.Visibility(visibility)
	e.Status = model.EventStatus(status)
	e.StartsAt = e.StartsAt.UTC()
	e.EndsAt = e.EndsAt.UTC()
	return &e, nil
}
