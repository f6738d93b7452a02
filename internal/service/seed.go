package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vitrii/agenda/internal/model"
	"github.com/vitrii/agenda/internal/repository"
)

// AdvertiserRegistry is the store surface needed to provision advertisers.
// Advertisers are managed by the listing side of the marketplace; the
// agenda only creates them for local runs and demos.
type AdvertiserRegistry interface {
	GetByUserID(ctx context.Context, userID uint64) (*model.Advertiser, error)
	Create(ctx context.Context, a *model.Advertiser) error
}

// EnsureAdvertiser returns the advertiser owned by userID, creating it with
// name when the user has none yet.
func EnsureAdvertiser(ctx context.Context, reg AdvertiserRegistry, userID uint64, name string) (*model.Advertiser, bool, error) {
	if userID == 0 {
		return nil, false, errors.New("ensure advertiser: user id is required")
	}
	adv, err := reg.GetByUserID(ctx, userID)
	if err == nil {
		return adv, false, nil
	}
	if !errors.Is(err, repository.ErrAdvertiserNotFound) {
		return nil, false, fmt.Errorf("ensure advertiser: %w", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Anunciante %d", userID)
	}
	created := &model.Advertiser{UserID: userID, Name: name}
	if err := reg.Create(ctx, created); err != nil {
		return nil, false, fmt.Errorf("ensure advertiser: %w", err)
	}
	return created, true, nil
}
