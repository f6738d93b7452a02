package service

import (
	"context"
	"errors"

	"github.com/vitrii/agenda/internal/apperror"
	"github.com/vitrii/agenda/internal/model"
	"github.com/vitrii/agenda/internal/repository"
	"github.com/vitrii/agenda/internal/session"
	"github.com/vitrii/agenda/internal/validation"
)

// AcceptResult is the outcome of accepting a waitlist entry.  Overlaps
// lists other events of the same advertiser intersecting the new event;
// it is informational, double-booking is never blocked.
type AcceptResult struct {
	Entry    model.WaitlistEntry `json:"filaEspera"`
	Event    model.Event         `json:"evento"`
	Overlaps []model.Event       `json:"sobreposicoes"`
}

// loadPending reads an entry for a decision by actor.  It returns
// INVALID_STATE when the entry is already decided; a decision that loses a
// race after this read is reported as CONFLICT by the caller.
func (s *Service) loadPending(ctx context.Context, actor session.Viewer, entryID uint64) (*model.WaitlistEntry, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	entry, err := s.waitlist.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return nil, apperror.NotFound("waitlist entry")
		}
		return nil, apperror.Internal("load waitlist entry", err)
	}
	adv, err := s.loadAdvertiser(ctx, entry.AdvertiserID)
	if err != nil {
		return nil, err
	}
	if !adv.IsOwner(actor.UserID) {
		return nil, apperror.Forbidden("only the advertiser owner can decide on this request")
	}
	if entry.Status != model.WaitlistPending {
		return nil, apperror.InvalidState("waitlist entry %d is already %s", entry.ID, entry.Status)
	}
	return entry, nil
}

func decisionError(op string, entryID uint64, err error) error {
	if errors.Is(err, repository.ErrConflict) {
		return apperror.Conflict("waitlist entry %d was decided concurrently", entryID)
	}
	return apperror.Internal(op, err)
}

// Accept approves a pendente entry and materialises it as a publico event
// with the default color.  The status change and the event insert commit
// together or not at all.
func (s *Service) Accept(ctx context.Context, actor session.Viewer, entryID uint64) (*AcceptResult, error) {
	entry, err := s.loadPending(ctx, actor, entryID)
	if err != nil {
		return nil, err
	}

	ev := &model.Event{
		AdvertiserID: entry.AdvertiserID,
		Title:        entry.Title,
		Description:  entry.Description,
		StartsAt:     entry.StartsAt,
		EndsAt:       entry.EndsAt,
		Color:        model.DefaultEventColor,
		Visibility:   model.VisibilityPublic,
		Status:       model.EventPending,
	}
	at := s.now().UTC()
	if err := s.waitlist.Accept(ctx, entry.ID, ev, at); err != nil {
		return nil, decisionError("accept waitlist entry", entry.ID, err)
	}

	eventID := ev.ID
	entry.Status = model.WaitlistAccepted
	entry.CreatedEventID = &eventID
	entry.RespondedAt = &at

	overlaps, err := s.events.FindOverlapping(ctx, ev.AdvertiserID, ev.StartsAt, ev.EndsAt, ev.ID)
	if err != nil {
		s.log.Warn().Err(err).Uint64("event_id", ev.ID).Msg("overlap lookup failed")
	}
	if overlaps == nil {
		overlaps = []model.Event{}
	}
	if len(overlaps) > 0 {
		s.log.Info().Uint64("event_id", ev.ID).Int("overlaps", len(overlaps)).Msg("accepted slot overlaps existing events")
	}

	s.invalidate(ctx, entry.AdvertiserID)
	s.notify(ctx, *entry)
	s.log.Info().Uint64("entry_id", entry.ID).Uint64("event_id", ev.ID).Msg("waitlist entry accepted")
	return &AcceptResult{Entry: *entry, Event: *ev, Overlaps: overlaps}, nil
}

// Reject declines a pendente entry.  reason is stored as given and may be
// empty.
func (s *Service) Reject(ctx context.Context, actor session.Viewer, entryID uint64, reason string) (*model.WaitlistEntry, error) {
	entry, err := s.loadPending(ctx, actor, entryID)
	if err != nil {
		return nil, err
	}
	res := model.Resolution{
		Status:       model.WaitlistRejected,
		RejectReason: &reason,
		RespondedAt:  s.now().UTC(),
	}
	return s.resolve(ctx, entry, res)
}

// CounterPropose answers a pendente entry with another date and time.  No
// event is created; the requester has to submit a new request.
func (s *Service) CounterPropose(ctx context.Context, actor session.Viewer, entryID uint64, date, hour string) (*model.WaitlistEntry, error) {
	if !validation.IsISODate(date) {
		return nil, apperror.Validation("dataSugerida must be YYYY-MM-DD")
	}
	if !validation.IsHHMM(hour) {
		return nil, apperror.Validation("horaSugerida must be HH:MM")
	}
	entry, err := s.loadPending(ctx, actor, entryID)
	if err != nil {
		return nil, err
	}
	res := model.Resolution{
		Status:        model.WaitlistSuggested,
		SuggestedDate: &date,
		SuggestedTime: &hour,
		RespondedAt:   s.now().UTC(),
	}
	return s.resolve(ctx, entry, res)
}

func (s *Service) resolve(ctx context.Context, entry *model.WaitlistEntry, res model.Resolution) (*model.WaitlistEntry, error) {
	if err := s.waitlist.Resolve(ctx, entry.ID, res); err != nil {
		return nil, decisionError("resolve waitlist entry", entry.ID, err)
	}
	at := res.RespondedAt
	entry.Status = res.Status
	entry.RejectReason = res.RejectReason
	entry.SuggestedDate = res.SuggestedDate
	entry.SuggestedTime = res.SuggestedTime
	entry.RespondedAt = &at

	s.notify(ctx, *entry)
	s.log.Info().Uint64("entry_id", entry.ID).Str("decision", string(res.Status)).Msg("waitlist entry resolved")
	return entry, nil
}
