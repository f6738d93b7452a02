package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitrii/agenda/internal/model"
	"github.com/vitrii/agenda/internal/session"
)

func TestVisible(t *testing.T) {
	const owner = uint64(42)
	anonymous := session.Anonymous()
	stranger := session.User(7)
	ownerViewer := session.User(owner)

	cases := []struct {
		name       string
		visibility model.Visibility
		viewer     session.Viewer
		want       bool
	}{
		{"public anonymous", model.VisibilityPublic, anonymous, true},
		{"public user", model.VisibilityPublic, stranger, true},
		{"users-only anonymous", model.VisibilityUsersOnly, anonymous, false},
		{"users-only user", model.VisibilityUsersOnly, stranger, true},
		{"private anonymous", model.VisibilityPrivate, anonymous, false},
		{"private user", model.VisibilityPrivate, stranger, false},
		{"private owner", model.VisibilityPrivate, ownerViewer, true},
		{"users-only owner", model.VisibilityUsersOnly, ownerViewer, true},
		{"unknown value hidden", model.Visibility("rascunho"), stranger, false},
		{"unknown value owner", model.Visibility("rascunho"), ownerViewer, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := model.Event{Visibility: tc.visibility}
			assert.Equal(t, tc.want, Visible(e, tc.viewer, owner))
		})
	}
}

func TestVisibleAnonymousNeverMatchesZeroOwner(t *testing.T) {
	e := model.Event{Visibility: model.VisibilityPrivate}
	assert.False(t, Visible(e, session.Anonymous(), 0))
}

func TestFilterVisiblePreservesOrder(t *testing.T) {
	events := []model.Event{
		{ID: 1, Visibility: model.VisibilityPublic},
		{ID: 2, Visibility: model.VisibilityPrivate},
		{ID: 3, Visibility: model.VisibilityUsersOnly},
		{ID: 4, Visibility: model.VisibilityPublic},
	}
	got := FilterVisible(events, session.User(7), 42)
	ids := make([]uint64, 0, len(got))
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []uint64{1, 3, 4}, ids)
	assert.Empty(t, FilterVisible(nil, session.Anonymous(), 42))
}
