package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vitrii/agenda/internal/middleware"
	"github.com/vitrii/agenda/internal/model"
	"github.com/vitrii/agenda/internal/service"
)

// EventHandler serves /api/eventos-agenda.
type EventHandler struct {
	svc *service.Service
	log zerolog.Logger
}

// NewEventHandler panics on a nil service.
func NewEventHandler(svc *service.Service, log zerolog.Logger) *EventHandler {
	if svc == nil {
		panic("nil service passed to NewEventHandler")
	}
	return &EventHandler{svc: svc, log: log}
}

type createEventRequest struct {
	AdvertiserID uint64  `json:"anuncianteId" validate:"required"`
	Title        string  `json:"titulo" validate:"required,max=255"`
	Description  *string `json:"descricao"`
	StartsAt     string  `json:"dataInicio" validate:"required,isotime"`
	EndsAt       string  `json:"dataFim" validate:"required,isotime"`
	Color        string  `json:"cor" validate:"omitempty,max=20"`
	Visibility   string  `json:"privacidade" validate:"omitempty,visibility"`
}

// Create handles POST /api/eventos-agenda.
func (h *EventHandler) Create(c echo.Context) error {
	var body createEventRequest
	if err := bindAndValidate(c, &body); err != nil {
		return respondError(c, h.log, err)
	}
	start, end, err := parseRange(body.StartsAt, body.EndsAt)
	if err != nil {
		return respondError(c, h.log, err)
	}
	e, err := h.svc.CreateEvent(c.Request().Context(), middleware.ViewerOf(c), service.CreateEventInput{
		AdvertiserID: body.AdvertiserID,
		Title:        body.Title,
		Description:  body.Description,
		StartsAt:     start,
		EndsAt:       end,
		Visibility:   model.Visibility(body.Visibility),
		Color:        body.Color,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, e)
}

// ListVisible handles GET /api/eventos-agenda/visiveis/:anuncianteId.
// ordem=desc lists the most recent first; anything else is ascending.
func (h *EventHandler) ListVisible(c echo.Context) error {
	advertiserID, err := pathID(c, "anuncianteId")
	if err != nil {
		return respondError(c, h.log, err)
	}
	order := model.ParseSortOrder(c.QueryParam("ordem"))
	events, err := h.svc.ListEventsForViewer(c.Request().Context(), middleware.ViewerOf(c), advertiserID, order)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, events)
}

// Get handles GET /api/eventos-agenda/:id.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	e, err := h.svc.GetEventForViewer(c.Request().Context(), middleware.ViewerOf(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, e)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,eventstatus"`
}

// UpdateStatus handles PATCH /api/eventos-agenda/:id/status.
func (h *EventHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var body updateStatusRequest
	if err := bindAndValidate(c, &body); err != nil {
		return respondError(c, h.log, err)
	}
	e, err := h.svc.UpdateEventStatus(c.Request().Context(), middleware.ViewerOf(c), id, model.EventStatus(body.Status))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, e)
}
