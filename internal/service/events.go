package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vitrii/agenda/internal/apperror"
	"github.com/vitrii/agenda/internal/model"
	"github.com/vitrii/agenda/internal/repository"
	"github.com/vitrii/agenda/internal/session"
)

// CreateEventInput carries the fields of a new agenda event.  Empty
// Visibility defaults to publico and empty Color to model.DefaultEventColor.
type CreateEventInput struct {
	AdvertiserID uint64
	Title        string
	Description  *string
	StartsAt     time.Time
	EndsAt       time.Time
	Visibility   model.Visibility
	Color        string
}

// storedInstant reduces t to what the DATETIME columns keep: UTC, whole
// seconds.  Ranges are validated on the stored values.
func storedInstant(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func validateRange(title string, start, end time.Time) error {
	if strings.TrimSpace(title) == "" {
		return apperror.Validation("titulo is required")
	}
	if start.IsZero() || end.IsZero() {
		return apperror.Validation("dataInicio and dataFim are required")
	}
	if !start.Before(end) {
		return apperror.Validation("dataInicio must be before dataFim")
	}
	return nil
}

func requireUser(actor session.Viewer) error {
	if !actor.Authenticated || actor.UserID == 0 {
		return apperror.Unauthorized("authentication required")
	}
	return nil
}

// CreateEvent adds an event to the advertiser's agenda.  Only the owner of
// the advertiser may create events; the event starts as pendente.
func (s *Service) CreateEvent(ctx context.Context, actor session.Viewer, in CreateEventInput) (*model.Event, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	start, end := storedInstant(in.StartsAt), storedInstant(in.EndsAt)
	if err := validateRange(in.Title, start, end); err != nil {
		return nil, err
	}
	visibility := in.Visibility
	if visibility == "" {
		visibility = model.VisibilityPublic
	}
	if !visibility.Valid() {
		return nil, apperror.Validation("unknown privacidade %q", visibility)
	}
	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = model.DefaultEventColor
	}

	adv, err := s.loadAdvertiser(ctx, in.AdvertiserID)
	if err != nil {
		return nil, err
	}
	if !adv.IsOwner(actor.UserID) {
		return nil, apperror.Forbidden("only the advertiser owner can create events")
	}

	e := &model.Event{
		AdvertiserID: adv.ID,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		StartsAt:     start,
		EndsAt:       end,
		Color:        color,
		Visibility:   visibility,
		Status:       model.EventPending,
	}
	if err := s.events.Create(ctx, e); err != nil {
		return nil, apperror.Internal("create event", err)
	}
	s.invalidate(ctx, adv.ID)
	s.log.Info().Uint64("event_id", e.ID).Uint64("advertiser_id", adv.ID).Msg("event created")
	return e, nil
}

// ListEventsForViewer returns the advertiser's events that viewer may see,
// ordered by start time.
func (s *Service) ListEventsForViewer(ctx context.Context, viewer session.Viewer, advertiserID uint64, order model.SortOrder) ([]model.Event, error) {
	adv, err := s.loadAdvertiser(ctx, advertiserID)
	if err != nil {
		return nil, err
	}
	if order != model.SortDesc {
		order = model.SortAsc
	}
	events, err := s.events.ListByAdvertiser(ctx, adv.ID, order)
	if err != nil {
		return nil, apperror.Internal("list events", err)
	}
	return FilterVisible(events, viewer, adv.UserID), nil
}

// GetEventForViewer returns one event.  Events the viewer may not see are
// reported as not found so their existence does not leak.
func (s *Service) GetEventForViewer(ctx context.Context, viewer session.Viewer, eventID uint64) (*model.Event, error) {
	e, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	adv, err := s.loadAdvertiser(ctx, e.AdvertiserID)
	if err != nil {
		return nil, err
	}
	if !Visible(*e, viewer, adv.UserID) {
		return nil, apperror.NotFound("event")
	}
	return e, nil
}

// UpdateEventStatus sets an event's status.  Any status may follow any
// other; only membership in the status set is checked.
func (s *Service) UpdateEventStatus(ctx context.Context, actor session.Viewer, eventID uint64, status model.EventStatus) (*model.Event, error) {
	if !status.Valid() {
		return nil, apperror.Validation("unknown status %q", status)
	}
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	e, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	adv, err := s.loadAdvertiser(ctx, e.AdvertiserID)
	if err != nil {
		return nil, err
	}
	if !adv.IsOwner(actor.UserID) {
		return nil, apperror.Forbidden("only the advertiser owner can change event status")
	}

	if err := s.events.UpdateStatus(ctx, e.ID, status); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, apperror.NotFound("event")
		}
		return nil, apperror.Internal("update event status", err)
	}
	e.Status = status
	s.invalidate(ctx, adv.ID)
	s.log.Info().Uint64("event_id", e.ID).Str("status", string(status)).Msg("event status updated")
	return e, nil
}

func (s *Service) getEvent(ctx context.Context, id uint64) (*model.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, apperror.NotFound("event")
		}
		return nil, apperror.Internal("load event", err)
	}
	return e, nil
}
