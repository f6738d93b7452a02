package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vitrii/agenda/internal/middleware"
	"github.com/vitrii/agenda/internal/service"
)

// WaitlistHandler serves /api/filas-espera: submissions, inboxes and the
// owner's decisions.
type WaitlistHandler struct {
	svc *service.Service
	log zerolog.Logger
}

// NewWaitlistHandler panics on a nil service.
func NewWaitlistHandler(svc *service.Service, log zerolog.Logger) *WaitlistHandler {
	if svc == nil {
		panic("nil service passed to NewWaitlistHandler")
	}
	return &WaitlistHandler{svc: svc, log: log}
}

type submitRequest struct {
	EventID      uint64  `json:"eventoId"`
	AdvertiserID uint64  `json:"anuncianteAlvoId" validate:"required"`
	Title        string  `json:"titulo" validate:"required,max=255"`
	Description  *string `json:"descricao"`
	StartsAt     string  `json:"dataInicio" validate:"required,isotime"`
	EndsAt       string  `json:"dataFim" validate:"required,isotime"`
}

// Submit handles POST /api/filas-espera.
func (h *WaitlistHandler) Submit(c echo.Context) error {
	var body submitRequest
	if err := bindAndValidate(c, &body); err != nil {
		return respondError(c, h.log, err)
	}
	start, end, err := parseRange(body.StartsAt, body.EndsAt)
	if err != nil {
		return respondError(c, h.log, err)
	}
	entry, err := h.svc.SubmitRequest(c.Request().Context(), middleware.ViewerOf(c), service.SubmitRequestInput{
		EventID:      body.EventID,
		AdvertiserID: body.AdvertiserID,
		Title:        body.Title,
		Description:  body.Description,
		StartsAt:     start,
		EndsAt:       end,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

// Mine handles GET /api/filas-espera/minhas.
func (h *WaitlistHandler) Mine(c echo.Context) error {
	entries, err := h.svc.ListRequestsForUser(c.Request().Context(), middleware.ViewerOf(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, entries)
}

// Inbox handles GET /api/filas-espera/anunciante/:anuncianteId.
func (h *WaitlistHandler) Inbox(c echo.Context) error {
	advertiserID, err := pathID(c, "anuncianteId")
	if err != nil {
		return respondError(c, h.log, err)
	}
	entries, err := h.svc.ListRequestsForAdvertiser(c.Request().Context(), middleware.ViewerOf(c), advertiserID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, entries)
}

// Accept handles POST /api/filas-espera/:id/aceitar.  The response carries
// the updated entry, the created event and any overlapping events.
func (h *WaitlistHandler) Accept(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	res, err := h.svc.Accept(c.Request().Context(), middleware.ViewerOf(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

type rejectRequest struct {
	Reason string `json:"motivo" validate:"max=500"`
}

// Reject handles POST /api/filas-espera/:id/rejeitar.  The body is optional.
func (h *WaitlistHandler) Reject(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var body rejectRequest
	if err := bindAndValidate(c, &body); err != nil {
		return respondError(c, h.log, err)
	}
	entry, err := h.svc.Reject(c.Request().Context(), middleware.ViewerOf(c), id, body.Reason)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, entry)
}

type suggestRequest struct {
	Date string `json:"dataSugerida" validate:"required,isodate"`
	Time string `json:"horaSugerida" validate:"required,hhmm"`
}

// Suggest handles POST /api/filas-espera/:id/sugerir.
func (h *WaitlistHandler) Suggest(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var body suggestRequest
	if err := bindAndValidate(c, &body); err != nil {
		return respondError(c, h.log, err)
	}
	entry, err := h.svc.CounterPropose(c.Request().Context(), middleware.ViewerOf(c), id, body.Date, body.Time)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, entry)
}
