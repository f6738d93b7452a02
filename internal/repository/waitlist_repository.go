package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vitrii/agenda/internal/model"
)

const entryColumns = `id, usuario_solicitante_id, anunciante_alvo_id, evento_id, titulo, descricao, data_inicio, data_fim,
       status, motivo_rejeicao, data_sugerida, hora_sugerida, evento_criado_id, data_solicitacao, data_resposta`

// WaitlistRepo manages persistence for waitlist entries ("filas_espera").
// Decisions are applied with a compare-and-set on status so that only one
// decision can ever win for a given entry.
type WaitlistRepo struct {
	db     *sql.DB
	events *EventRepo
}

// NewWaitlistRepo constructs a WaitlistRepo.  events writes the event
// materialised by Accept inside the acceptance transaction; nil uses an
// EventRepo over db.
func NewWaitlistRepo(db *sql.DB, events *EventRepo) *WaitlistRepo {
	if events == nil {
		events = NewEventRepo(db)
	}
	return &WaitlistRepo{db: db, events: events}
}

// Create inserts a pendente entry and re-reads it to populate defaults.
// An EventID of 0 is stored as NULL.
func (r *WaitlistRepo) Create(ctx context.Context, w *model.WaitlistEntry) error {
	const q = `INSERT INTO filas_espera (usuario_solicitante_id, anunciante_alvo_id, evento_id, titulo, descricao, data_inicio, data_fim, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	var eventID sql.NullInt64
	if w.EventID != 0 {
		eventID = sql.NullInt64{Int64: int64(w.EventID), Valid: true}
	}
	res, err := r.db.ExecContext(ctx, q,
		w.RequesterID, w.AdvertiserID, eventID, w.Title, nullString(w.Description),
		w.StartsAt.UTC(), w.EndsAt.UTC(), string(model.WaitlistPending),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*w = *created
	return nil
}

// GetByID returns ErrEntryNotFound when no row matches.
func (r *WaitlistRepo) GetByID(ctx context.Context, id uint64) (*model.WaitlistEntry, error) {
	w, err := scanEntry(r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM filas_espera WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return w, nil
}

// ListByAdvertiser returns every entry addressed to an advertiser, newest first.
func (r *WaitlistRepo) ListByAdvertiser(ctx context.Context, advertiserID uint64) ([]model.WaitlistEntry, error) {
	const q = `SELECT ` + entryColumns + ` FROM filas_espera WHERE anunciante_alvo_id = ? ORDER BY data_solicitacao DESC, id DESC`
	return r.query(ctx, q, advertiserID)
}

// ListByUser returns every entry submitted by a user, newest first.
func (r *WaitlistRepo) ListByUser(ctx context.Context, userID uint64) ([]model.WaitlistEntry, error) {
	const q = `SELECT ` + entryColumns + ` FROM filas_espera WHERE usuario_solicitante_id = ? ORDER BY data_solicitacao DESC, id DESC`
	return r.query(ctx, q, userID)
}

// Accept moves a pendente entry to aceito and materialises ev in a single
// transaction: the conditional status update, the event insert and the
// evento_criado_id link either all commit or none do.  ErrConflict is
// returned when the entry was no longer pendente.  On success ev carries
// the generated ID.
func (r *WaitlistRepo) Accept(ctx context.Context, id uint64, ev *model.Event, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const cas = `UPDATE filas_espera SET status = ?, data_resposta = ? WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, cas, string(model.WaitlistAccepted), at.UTC(), id, string(model.WaitlistPending))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}

	if err := r.events.CreateTx(ctx, tx, ev); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE filas_espera SET evento_criado_id = ? WHERE id = ?`, ev.ID, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Resolve applies a rejection or counter-proposal to a pendente entry.
// The update is conditional on status, so ErrConflict is returned when
// another decision was applied first.
func (r *WaitlistRepo) Resolve(ctx context.Context, id uint64, res model.Resolution) error {
	if res.Status != model.WaitlistRejected && res.Status != model.WaitlistSuggested {
		return fmt.Errorf("resolve: unsupported status %q", res.Status)
	}
	const q = `UPDATE filas_espera
               SET status = ?, motivo_rejeicao = ?, data_sugerida = ?, hora_sugerida = ?, data_resposta = ?
               WHERE id = ? AND status = ?`
	result, err := r.db.ExecContext(ctx, q,
		string(res.Status), nullString(res.RejectReason), nullString(res.SuggestedDate), nullString(res.SuggestedTime),
		res.RespondedAt.UTC(), id, string(model.WaitlistPending),
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func (r *WaitlistRepo) query(ctx context.Context, q string, args ...any) ([]model.WaitlistEntry, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.WaitlistEntry, 0)
	for rows.Next() {
		w, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanEntry(s rowScanner) (*model.WaitlistEntry, error) {
	var (
		w            model.WaitlistEntry
		eventID      sql.NullInt64
		desc         sql.NullString
		status       string
		reason       sql.NullString
		suggestedDay sql.NullString
		suggestedHr  sql.NullString
		createdEvent sql.NullInt64
		respondedAt  sql.NullTime
	)
	if err := s.Scan(
		&w.ID, &w.RequesterID, &w.AdvertiserID, &eventID, &w.Title, &desc, &w.StartsAt, &w.EndsAt,
		&status, &reason, &suggestedDay, &suggestedHr, &createdEvent, &w.RequestedAt, &respondedAt,
	); err != nil {
		return nil, err
	}
	if eventID.Valid {
		w.EventID = uint64(eventID.Int64)
	}
	w.Description = stringPtr(desc)
	w.Status = model.WaitlistStatus(status)
	w.RejectReason = stringPtr(reason)
	w.SuggestedDate = stringPtr(suggestedDay)
	w.SuggestedTime = stringPtr(suggestedHr)
	if createdEvent.Valid {
		id := uint64(createdEvent.Int64)
		w.CreatedEventID = &id
	}
	if respondedAt.Valid {
		t := respondedAt.Time.UTC()
		w.RespondedAt = &t
	}
	w.StartsAt = w.StartsAt.UTC()
	w.EndsAt = w.EndsAt.UTC()
	return &w, nil
}
