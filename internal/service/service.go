// Package service implements the agenda rules: the event store operations,
// the waitlist queue and the approval workflow.  Every read of events goes
// through Visible.  Storage is reached through the small interfaces below so
// the same rules run against MySQL and the in-memory store.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/vitrii/agenda/internal/apperror"
	"github.com/vitrii/agenda/internal/model"
	"github.com/vitrii/agenda/internal/queue"
	"github.com/vitrii/agenda/internal/repository"
)

// AdvertiserStore reads advertisers.
type AdvertiserStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Advertiser, error)
}

// EventStore persists agenda events.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
	ListByAdvertiser(ctx context.Context, advertiserID uint64, order model.SortOrder) ([]model.Event, error)
	UpdateStatus(ctx context.Context, id uint64, status model.EventStatus) error
	FindOverlapping(ctx context.Context, advertiserID uint64, start, end time.Time, excludeID uint64) ([]model.Event, error)
}

// WaitlistStore persists waitlist entries.  Accept and Resolve must only
// apply when the entry is still pendente and report repository.ErrConflict
// otherwise.
type WaitlistStore interface {
	Create(ctx context.Context, w *model.WaitlistEntry) error
	GetByID(ctx context.Context, id uint64) (*model.WaitlistEntry, error)
	ListByAdvertiser(ctx context.Context, advertiserID uint64) ([]model.WaitlistEntry, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.WaitlistEntry, error)
	Accept(ctx context.Context, id uint64, ev *model.Event, at time.Time) error
	Resolve(ctx context.Context, id uint64, res model.Resolution) error
}

// Notifier delivers decision notifications to the notification surface.
type Notifier interface {
	PublishDecision(ctx context.Context, msg queue.DecisionMade) error
}

// CacheInvalidator drops cached agenda responses of an advertiser.
type CacheInvalidator interface {
	InvalidateAdvertiser(ctx context.Context, advertiserID uint64) error
}

const notifyTimeout = 5 * time.Second

// Service bundles the stores and the side channels used after writes.
type Service struct {
	advertisers AdvertiserStore
	events      EventStore
	waitlist    WaitlistStore
	notifier    Notifier
	cache       CacheInvalidator
	now         func() time.Time
	log         zerolog.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithNotifier publishes a message after every successful decision.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithCacheInvalidator drops an advertiser's cached agenda after writes.
func WithCacheInvalidator(c CacheInvalidator) Option {
	return func(s *Service) { s.cache = c }
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New wires a Service.
func New(advertisers AdvertiserStore, events EventStore, waitlist WaitlistStore, opts ...Option) *Service {
	s := &Service{
		advertisers: advertisers,
		events:      events,
		waitlist:    waitlist,
		now:         time.Now,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) loadAdvertiser(ctx context.Context, id uint64) (*model.Advertiser, error) {
	adv, err := s.advertisers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAdvertiserNotFound) {
			return nil, apperror.NotFound("advertiser")
		}
		return nil, apperror.Internal("load advertiser", err)
	}
	return adv, nil
}

// invalidate is best effort: a stale cache entry expires on its own TTL.
func (s *Service) invalidate(ctx context.Context, advertiserID uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAdvertiser(ctx, advertiserID); err != nil {
		s.log.Warn().Err(err).Uint64("advertiser_id", advertiserID).Msg("cache invalidation failed")
	}
}

// notify runs after commit and never fails the decision.
func (s *Service) notify(ctx context.Context, entry model.WaitlistEntry) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := s.notifier.PublishDecision(ctx, queue.NewDecisionMade(entry)); err != nil {
		s.log.Warn().Err(err).Uint64("entry_id", entry.ID).Msg("decision notification not delivered")
	}
}
