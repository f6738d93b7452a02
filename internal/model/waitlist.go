package model

import "time"

// WaitlistStatus is the state of a waitlist entry in the approval workflow.
// pendente is the only non-terminal state.
type WaitlistStatus string

const (
	WaitlistPending   WaitlistStatus = "pendente"
	WaitlistAccepted  WaitlistStatus = "aceito"
	WaitlistRejected  WaitlistStatus = "rejeitado"
	WaitlistSuggested WaitlistStatus = "sugestao"
)

// Terminal reports whether no further decision can be applied.
func (s WaitlistStatus) Terminal() bool {
	return s != WaitlistPending
}

// WaitlistEntry is a user request ("fila de espera") for a new slot, or for
// an existing event when EventID is non-zero, addressed to an advertiser.
//
// Fields:
//  ID             – primary key identifier.
//  RequesterID    – user who submitted the request.
//  AdvertiserID   – advertiser the request targets.
//  EventID        – contested event, 0 when asking for a new slot.
//  Title          – non-blank title.
//  Description    – optional free text.
//  StartsAt       – requested start (UTC).
//  EndsAt         – requested end, strictly after StartsAt.
//  Status         – workflow state.
//  RejectReason   – reason stored on rejection.
//  SuggestedDate  – counter-proposed date (YYYY-MM-DD).
//  SuggestedTime  – counter-proposed time (HH:MM).
//  CreatedEventID – event materialised on acceptance.
//  RequestedAt    – submission timestamp.
//  RespondedAt    – decision timestamp.
type WaitlistEntry struct {
	ID             uint64         `json:"id"`                       // filas_espera.id
	RequesterID    uint64         `json:"usuarioSolicitanteId"`     // filas_espera.usuario_solicitante_id
	AdvertiserID   uint64         `json:"anuncianteAlvoId"`         // filas_espera.anunciante_alvo_id
	EventID        uint64         `json:"eventoId"`                 // filas_espera.evento_id (0 = new slot)
	Title          string         `json:"titulo"`                   // filas_espera.titulo
	Description    *string        `json:"descricao"`                // filas_espera.descricao (nullable)
	StartsAt       time.Time      `json:"dataInicio"`               // filas_espera.data_inicio
	EndsAt         time.Time      `json:"dataFim"`                  // filas_espera.data_fim
	Status         WaitlistStatus `json:"status"`                   // filas_espera.status
	RejectReason   *string        `json:"motivoRejeicao,omitempty"` // filas_espera.motivo_rejeicao (nullable)
	SuggestedDate  *string        `json:"dataSugerida,omitempty"`   // filas_espera.data_sugerida (nullable)
	SuggestedTime  *string        `json:"horaSugerida,omitempty"`   // filas_espera.hora_sugerida (nullable)
	CreatedEventID *uint64        `json:"eventoCriadoId,omitempty"` // filas_espera.evento_criado_id (nullable)
	RequestedAt    time.Time      `json:"dataSolicitacao"`          // filas_espera.data_solicitacao
	RespondedAt    *time.Time     `json:"dataResposta,omitempty"`   // filas_espera.data_resposta (nullable)
}

// Resolution carries a non-accepting decision (reject or counter-proposal)
// to the store.  Status must be WaitlistRejected or WaitlistSuggested.
type Resolution struct {
	Status        WaitlistStatus
	RejectReason  *string
	SuggestedDate *string
	SuggestedTime *string
	RespondedAt   time.Time
}
