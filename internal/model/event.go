package model

import "time"

// Visibility controls who can see an event in the agenda.
type Visibility string

const (
	VisibilityPublic    Visibility = "publico"          // everyone, including anonymous viewers
	VisibilityUsersOnly Visibility = "privado_usuarios" // any logged-in user
	VisibilityPrivate   Visibility = "privado"          // the advertiser owner only
)

// Valid reports whether v is one of the known visibility values.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityUsersOnly, VisibilityPrivate:
		return true
	}
	return false
}

// EventStatus is the lifecycle marker of an agenda event.  Any status may
// move to any other; only membership in the set is checked.
type EventStatus string

const (
	EventPending        EventStatus = "pendente"
	EventDone           EventStatus = "realizado"
	EventPendingPayment EventStatus = "pendente_pagamento"
	EventReplacement    EventStatus = "substituicao"
)

// Valid reports whether s is one of the known event statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case EventPending, EventDone, EventPendingPayment, EventReplacement:
		return true
	}
	return false
}

// DefaultEventColor is used when an event is created without a color tag
// and for events materialised from accepted waitlist entries.
const DefaultEventColor = "#3b82f6"

// Event is a calendar entry owned by an advertiser.  Events are never
// hard-deleted; their lifecycle is expressed through Status.
//
// Fields:
//  ID           – primary key identifier.
//  AdvertiserID – owning advertiser.
//  Title        – non-blank title.
//  Description  – optional free text.
//  StartsAt     – start of the slot (UTC).
//  EndsAt       – end of the slot, strictly after StartsAt.
//  Color        – color tag used by the calendar UI.
//  Visibility   – privacy level, see Visibility.
//  Status       – lifecycle status, see EventStatus.
//  CreatedAt    – creation timestamp.
type Event struct {
	ID           uint64      `json:"id"`           // eventos_agenda.id
	AdvertiserID uint64      `json:"anuncianteId"` // eventos_agenda.anunciante_id
	Title        string      `json:"titulo"`       // eventos_agenda.titulo
	Description  *string     `json:"descricao"`    // eventos_agenda.descricao (nullable)
	StartsAt     time.Time   `json:"dataInicio"`   // eventos_agenda.data_inicio
	EndsAt       time.Time   `json:"dataFim"`      // eventos_agenda.data_fim
	Color        string      `json:"cor"`          // eventos_agenda.cor
	Visibility   Visibility  `json:"privacidade"`  // eventos_agenda.privacidade
	Status       EventStatus `json:"status"`       // eventos_agenda.status
	CreatedAt    time.Time   `json:"dataCriacao"`  // eventos_agenda.data_criacao
}

// Overlaps reports whether the event's range intersects [start, end).
func (e Event) Overlaps(start, end time.Time) bool {
	return e.StartsAt.Before(end) && e.EndsAt.After(start)
}

// SortOrder selects the start-time ordering of agenda listings.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"  // calendar view
	SortDesc SortOrder = "desc" // status management view
)

// ParseSortOrder maps a query value to a SortOrder, defaulting to SortAsc.
func ParseSortOrder(raw string) SortOrder {
	if SortOrder(raw) == SortDesc {
		return SortDesc
	}
	return SortAsc
}
