// Package queue defines the decision notifications exchanged over RabbitMQ
// together with the publisher and the background consumer.
package queue

import (
	"time"

	"github.com/vitrii/agenda/internal/model"
)

// DecisionQueueName is the default queue for waitlist decisions.
const DecisionQueueName = "agenda.waitlist.decision"

// DecisionMade is published after an owner accepts, rejects or
// counter-proposes a waitlist entry.  It carries enough information for the
// notification surface to message the requester without querying the
// primary database.
type DecisionMade struct {
	EntryID        uint64               `json:"fila_espera_id"`
	AdvertiserID   uint64               `json:"anunciante_id"`
	RequesterID    uint64               `json:"usuario_solicitante_id"`
	Decision       model.WaitlistStatus `json:"decisao"`
	Title          string               `json:"titulo"`
	StartsAt       string               `json:"data_inicio"`
	EndsAt         string               `json:"data_fim"`
	CreatedEventID uint64               `json:"evento_criado_id,omitempty"`
	RejectReason   string               `json:"motivo_rejeicao,omitempty"`
	SuggestedDate  string               `json:"data_sugerida,omitempty"`
	SuggestedTime  string               `json:"hora_sugerida,omitempty"`
	DecidedAt      string               `json:"data_resposta"`
}

// NewDecisionMade builds the notification for a decided entry.
func NewDecisionMade(entry model.WaitlistEntry) DecisionMade {
	msg := DecisionMade{
		EntryID:      entry.ID,
		AdvertiserID: entry.AdvertiserID,
		RequesterID:  entry.RequesterID,
		Decision:     entry.Status,
		Title:        entry.Title,
		StartsAt:     entry.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:       entry.EndsAt.UTC().Format(time.RFC3339),
	}
	if entry.CreatedEventID != nil {
		msg.CreatedEventID = *entry.CreatedEventID
	}
	if entry.RejectReason != nil {
		msg.RejectReason = *entry.RejectReason
	}
	if entry.SuggestedDate != nil {
		msg.SuggestedDate = *entry.SuggestedDate
	}
	if entry.SuggestedTime != nil {
		msg.SuggestedTime = *entry.SuggestedTime
	}
	if entry.RespondedAt != nil {
		msg.DecidedAt = entry.RespondedAt.UTC().Format(time.RFC3339)
	}
	return msg
}
