package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sundaiclub/pitch-service/internal/dto"
	"github.com/sundaiclub/pitch-service/internal/middleware"
	"github.com/sundaiclub/pitch-service/internal/models"
	"github.com/sundaiclub/pitch-service/internal/service"
)

type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

func (h *EventHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/events", h.Create)
	g.GET("/events", h.ListUpcoming)
	g.GET("/events/:id", h.Get)
	g.PATCH("/events/:id", h.Update)
	g.PUT("/events/:id/emcees", h.SetEmcees)
}

func (h *EventHandler) Create(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no caller identity")
	}

	var req dto.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	event := &models.Event{
		Title:              req.Title,
		StartsAt:           req.StartsAt,
		AudienceCanReorder: req.AudienceCanReorder,
	}
	if err := h.svc.Create(c.Request().Context(), actor, event); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

func (h *EventHandler) Get(c echo.Context) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	event, err := h.svc.Get(c.Request().Context(), eventID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) ListUpcoming(c echo.Context) error {
	events, err := h.svc.ListUpcoming(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}

	resp := make([]dto.EventResponse, len(events))
	for i := range events {
		resp[i] = dto.ToEventResponse(&events[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *EventHandler) Update(c echo.Context) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no caller identity")
	}

	var req dto.UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	event, err := h.svc.Update(c.Request().Context(), actor, eventID, service.EventPatch{
		Title:              req.Title,
		StartsAt:           req.StartsAt,
		AudienceCanReorder: req.AudienceCanReorder,
		IsFinished:         req.IsFinished,
	})
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) SetEmcees(c echo.Context) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no caller identity")
	}

	var req dto.SetEmceesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	event, err := h.svc.SetEmcees(c.Request().Context(), actor, eventID, req.MemberIDs)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}
