package service

import (
	"github.com/vitrii/agenda/internal/model"
	"github.com/vitrii/agenda/internal/session"
)

// Visible decides whether viewer may see e.  ownerUserID is the user that
// owns e's advertiser.  The owner sees everything; otherwise publico is
// open to all, privado_usuarios needs a logged-in viewer and privado is
// hidden.  Unknown visibility values are treated as privado.
func Visible(e model.Event, viewer session.Viewer, ownerUserID uint64) bool {
	if viewer.Authenticated && viewer.UserID != 0 && viewer.UserID == ownerUserID {
		return true
	}
	switch e.Visibility {
	case model.VisibilityPublic:
		return true
	case model.VisibilityUsersOnly:
		return viewer.Authenticated
	default:
		return false
	}
}

// FilterVisible keeps the events viewer may see, preserving order.
func FilterVisible(events []model.Event, viewer session.Viewer, ownerUserID uint64) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if Visible(e, viewer, ownerUserID) {
			out = append(out, e)
		}
	}
	return out
}
