package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vitrii/agenda/internal/model"
	"github.com/vitrii/agenda/internal/queue"
	"github.com/vitrii/agenda/internal/repository/memstore"
	"github.com/vitrii/agenda/internal/session"
)

const (
	ownerUserID  = uint64(100)
	requesterID  = uint64(10)
	otherOwnerID = uint64(200)
)

var (
	slotStart = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	slotEnd   = time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)
	fixedNow  = time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC)
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []queue.DecisionMade
	err  error
}

func (n *recordingNotifier) PublishDecision(_ context.Context, msg queue.DecisionMade) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return n.err
}

func (n *recordingNotifier) sent() []queue.DecisionMade {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]queue.DecisionMade(nil), n.msgs...)
}

type recordingInvalidator struct {
	mu  sync.Mutex
	ids []uint64
}

func (r *recordingInvalidator) InvalidateAdvertiser(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	return nil
}

type fixture struct {
	store    *memstore.Store
	svc      *Service
	notifier *recordingNotifier
	cache    *recordingInvalidator
	adv      *model.Advertiser
	other    *model.Advertiser
	owner    session.Viewer
	user     session.Viewer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	store.SetClock(func() time.Time { return fixedNow })
	f := &fixture{
		store:    store,
		notifier: &recordingNotifier{},
		cache:    &recordingInvalidator{},
		owner:    session.User(ownerUserID),
		user:     session.User(requesterID),
	}
	f.svc = New(store.Advertisers(), store.Events(), store.Waitlist(),
		WithNotifier(f.notifier),
		WithCacheInvalidator(f.cache),
		WithClock(func() time.Time { return fixedNow }),
	)

	ctx := context.Background()
	f.adv = &model.Advertiser{UserID: ownerUserID, Name: "Clínica"}
	require.NoError(t, store.Advertisers().Create(ctx, f.adv))
	f.other = &model.Advertiser{UserID: otherOwnerID, Name: "Outra"}
	require.NoError(t, store.Advertisers().Create(ctx, f.other))
	return f
}

func (f *fixture) submit(t *testing.T, title string) *model.WaitlistEntry {
	t.Helper()
	entry, err := f.svc.SubmitRequest(context.Background(), f.user, SubmitRequestInput{
		AdvertiserID: f.adv.ID,
		Title:        title,
		StartsAt:     slotStart,
		EndsAt:       slotEnd,
	})
	require.NoError(t, err)
	return entry
}

func (f *fixture) createEvent(t *testing.T, title string, vis model.Visibility, start, end time.Time) *model.Event {
	t.Helper()
	e, err := f.svc.CreateEvent(context.Background(), f.owner, CreateEventInput{
		AdvertiserID: f.adv.ID,
		Title:        title,
		StartsAt:     start,
		EndsAt:       end,
		Visibility:   vis,
	})
	require.NoError(t, err)
	return e
}

func ptr[T any](v T) *T { return &v }
