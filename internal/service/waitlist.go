package service

import (
	"context"
	"strings"
	"time"

	"github.com/vitrii/agenda/internal/apperror"
	"github.com/vitrii/agenda/internal/model"
	"github.com/vitrii/agenda/internal/session"
)

// SubmitRequestInput carries a new waitlist request.  EventID is 0 when the
// user asks for a brand-new slot.
type SubmitRequestInput struct {
	EventID      uint64
	AdvertiserID uint64
	Title        string
	Description  *string
	StartsAt     time.Time
	EndsAt       time.Time
}

// SubmitRequest queues a request for the target advertiser.  Overlapping
// requests are accepted; the owner sees overlaps when deciding.
func (s *Service) SubmitRequest(ctx context.Context, actor session.Viewer, in SubmitRequestInput) (*model.WaitlistEntry, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	start, end := storedInstant(in.StartsAt), storedInstant(in.EndsAt)
	if err := validateRange(in.Title, start, end); err != nil {
		return nil, err
	}
	adv, err := s.loadAdvertiser(ctx, in.AdvertiserID)
	if err != nil {
		return nil, err
	}
	if in.EventID != 0 {
		e, err := s.getEvent(ctx, in.EventID)
		if err != nil {
			if apperror.Is(err, apperror.CodeNotFound) {
				return nil, apperror.Validation("eventoId %d does not exist", in.EventID)
			}
			return nil, err
		}
		if e.AdvertiserID != adv.ID {
			return nil, apperror.Validation("eventoId %d does not belong to anunciante %d", in.EventID, adv.ID)
		}
	}

	entry := &model.WaitlistEntry{
		RequesterID:  actor.UserID,
		AdvertiserID: adv.ID,
		EventID:      in.EventID,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		StartsAt:     start,
		EndsAt:       end,
		Status:       model.WaitlistPending,
	}
	if err := s.waitlist.Create(ctx, entry); err != nil {
		return nil, apperror.Internal("create waitlist entry", err)
	}
	s.log.Info().Uint64("entry_id", entry.ID).Uint64("advertiser_id", adv.ID).Uint64("user_id", actor.UserID).Msg("waitlist request submitted")
	return entry, nil
}

// ListRequestsForAdvertiser returns the owner's inbox, any status, newest first.
func (s *Service) ListRequestsForAdvertiser(ctx context.Context, actor session.Viewer, advertiserID uint64) ([]model.WaitlistEntry, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	adv, err := s.loadAdvertiser(ctx, advertiserID)
	if err != nil {
		return nil, err
	}
	if !adv.IsOwner(actor.UserID) {
		return nil, apperror.Forbidden("only the advertiser owner can read its waitlist")
	}
	entries, err := s.waitlist.ListByAdvertiser(ctx, adv.ID)
	if err != nil {
		return nil, apperror.Internal("list waitlist", err)
	}
	return entries, nil
}

// ListRequestsForUser returns the actor's own submissions, newest first.
func (s *Service) ListRequestsForUser(ctx context.Context, actor session.Viewer) ([]model.WaitlistEntry, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	entries, err := s.waitlist.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, apperror.Internal("list waitlist", err)
	}
	return entries, nil
}
