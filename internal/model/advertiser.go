package model

import "time"

// Advertiser is a store account ("anunciante") that owns calendar events
// and receives waitlist requests.  UserID is the user account allowed to
// manage the advertiser's agenda.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user account that owns the advertiser.
//  Name      – display name.
//  CreatedAt – creation timestamp.
type Advertiser struct {
	ID        uint64    `json:"id"`          // anunciantes.id
	UserID    uint64    `json:"usuarioId"`   // anunciantes.usuario_id
	Name      string    `json:"nome"`        // anunciantes.nome
	CreatedAt time.Time `json:"dataCriacao"` // anunciantes.data_criacao
}

// IsOwner reports whether userID manages this advertiser.
func (a Advertiser) IsOwner(userID uint64) bool {
	return userID != 0 && a.UserID == userID
}
