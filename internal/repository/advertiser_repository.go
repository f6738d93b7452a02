package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vitrii/agenda/internal/model"
)

// AdvertiserRepo manages persistence for advertisers.  The agenda service
// only reads advertisers; Create exists for seeding.
type AdvertiserRepo struct {
	db *sql.DB
}

// NewAdvertiserRepo constructs an AdvertiserRepo with the given DB handle.
func NewAdvertiserRepo(db *sql.DB) *AdvertiserRepo {
	return &AdvertiserRepo{db: db}
}

// Create inserts an advertiser and fills in the generated ID and timestamp.
func (r *AdvertiserRepo) Create(ctx context.Context, a *model.Advertiser) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO anunciantes (usuario_id, nome) VALUES (?, ?)`, a.UserID, a.Name)
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
	*a = *created
	return nil
}

// GetByID returns ErrAdvertiserNotFound when no row matches.
func (r *AdvertiserRepo) GetByID(ctx context.Context, id uint64) (*model.Advertiser, error) {
	const q = `SELECT id, usuario_id, nome, data_criacao FROM anunciantes WHERE id = ?`
	var a model.Advertiser
	err := r.db.QueryRowContext(ctx, q, id).Scan(&a.ID, &a.UserID, &a.Name, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdvertiserNotFound
		}
		return nil, err
	}
	return &a, nil
}

// GetByUserID returns the advertiser managed by a user account.
func (r *AdvertiserRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Advertiser, error) {
	const q = `SELECT id, usuario_id, nome, data_criacao FROM anunciantes WHERE usuario_id = ? ORDER BY id LIMIT 1`
	var a model.Advertiser
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&a.ID, &a.UserID, &a.Name, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdvertiserNotFound
		}
		return nil, err
	}
	return &a, nil
}
