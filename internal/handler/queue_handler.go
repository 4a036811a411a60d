package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sundaiclub/pitch-service/internal/dto"
	"github.com/sundaiclub/pitch-service/internal/middleware"
	"github.com/sundaiclub/pitch-service/internal/models"
	"github.com/sundaiclub/pitch-service/internal/service"
	"github.com/sundaiclub/pitch-service/internal/ws"
)

type QueueHandler struct {
	svc service.QueueService
	hub *ws.Hub
}

func NewQueueHandler(svc service.QueueService, hub *ws.Hub) *QueueHandler {
	return &QueueHandler{svc: svc, hub: hub}
}

func (h *QueueHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/events/:id/queue", h.List)
	g.POST("/events/:id/queue", h.Join)
	g.DELETE("/events/:id/queue/:itemID", h.Delist)
	g.POST("/events/:id/queue/advance", h.Advance)
	g.POST("/events/:id/queue/previous", h.Previous)
	g.PATCH("/events/:id/queue/positions", h.Reorder)
	g.PATCH("/events/:id/queue/:itemID", h.SetStatus)
}

func (h *QueueHandler) List(c echo.Context) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	items, err := h.svc.List(c.Request().Context(), eventID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToQueueSnapshotResponse(eventID, items, false))
}

func (h *QueueHandler) Join(c echo.Context) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no caller identity")
	}

	var req dto.JoinQueueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	item, err := h.svc.Join(c.Request().Context(), eventID, actor, req.ProjectID)
	if err != nil {
		return mapServiceError(err)
	}

	h.broadcastSnapshot(c, eventID)
	return c.JSON(http.StatusCreated, dto.ToQueueItemResponse(item))
}

func (h *QueueHandler) Delist(c echo.Context) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	itemID, err := parseID(c, "itemID")
	if err != nil {
		return err
	}
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no caller identity")
	}

	if err := h.svc.Delist(c.Request().Context(), eventID, itemID, actor); err != nil {
		return mapServiceError(err)
	}

	h.broadcastSnapshot(c, eventID)
	return c.NoContent(http.StatusNoContent)
}

func (h *QueueHandler) Advance(c echo.Context) error {
	return h.step(c, h.svc.Advance)
}

func (h *QueueHandler) Previous(c echo.Context) error {
	return h.step(c, h.svc.Previous)
}

// step handles advance and previous, which share their HTTP shape. A no-op
// outcome is reported as success with changed=false and the unchanged
// snapshot, so callers can tell "nothing to do" apart from "failed".
func (h *QueueHandler) step(c echo.Context, op func(ctx context.Context, eventID uint, actor service.Actor) ([]models.QueueItem, error)) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no caller identity")
	}

	items, err := op(c.Request().Context(), eventID, actor)
	if err != nil {
		if errors.Is(err, service.ErrNoOp) {
			return c.JSON(http.StatusOK, dto.ToQueueSnapshotResponse(eventID, items, false))
		}
		return mapServiceError(err)
	}

	snapshot := dto.ToQueueSnapshotResponse(eventID, items, true)
	h.broadcast(eventID, snapshot)
	return c.JSON(http.StatusOK, snapshot)
}

func (h *QueueHandler) Reorder(c echo.Context) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no caller identity")
	}

	var req dto.ReorderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updates := make([]service.PositionUpdate, len(req.Items))
	for i, item := range req.Items {
		updates[i] = service.PositionUpdate{ItemID: item.ID, Position: item.Position}
	}

	items, err := h.svc.Reorder(c.Request().Context(), eventID, actor, updates)
	if err != nil {
		return mapServiceError(err)
	}

	snapshot := dto.ToQueueSnapshotResponse(eventID, items, true)
	h.broadcast(eventID, snapshot)
	return c.JSON(http.StatusOK, snapshot)
}

func (h *QueueHandler) SetStatus(c echo.Context) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	itemID, err := parseID(c, "itemID")
	if err != nil {
		return err
	}
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no caller identity")
	}

	var req dto.SetStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var status *models.QueueStatus
	if req.Status != nil {
		s := models.QueueStatus(*req.Status)
		status = &s
	}

	item, err := h.svc.SetStatus(c.Request().Context(), eventID, itemID, actor, status, req.Approved)
	if err != nil {
		return mapServiceError(err)
	}

	h.broadcastSnapshot(c, eventID)
	return c.JSON(http.StatusOK, dto.ToQueueItemResponse(item))
}

// broadcastSnapshot reloads the queue and pushes it to the event's watchers.
func (h *QueueHandler) broadcastSnapshot(c echo.Context, eventID uint) {
	if h.hub == nil {
		return
	}
	items, err := h.svc.List(c.Request().Context(), eventID)
	if err != nil {
		return
	}
	h.broadcast(eventID, dto.ToQueueSnapshotResponse(eventID, items, true))
}

func (h *QueueHandler) broadcast(eventID uint, snapshot dto.QueueSnapshotResponse) {
	if h.hub == nil {
		return
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	h.hub.Broadcast(eventID, payload)
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}

// mapServiceError translates service sentinels into HTTP errors.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrMemberNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAlreadyQueued),
		errors.Is(err, service.ErrEventFinished):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrBadReorder),
		errors.Is(err, service.ErrBadStatus):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
