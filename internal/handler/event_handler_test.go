package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/sundaiclub/pitch-service/internal/dto"
	"github.com/sundaiclub/pitch-service/internal/models"
	"github.com/sundaiclub/pitch-service/internal/service"
)

type mockEventService struct {
	createFn    func(ctx context.Context, actor service.Actor, event *models.Event) error
	getFn       func(ctx context.Context, id uint) (*models.Event, error)
	listFn      func(ctx context.Context) ([]models.Event, error)
	updateFn    func(ctx context.Context, actor service.Actor, eventID uint, patch service.EventPatch) (*models.Event, error)
	setEmceesFn func(ctx context.Context, actor service.Actor, eventID uint, memberIDs []uint) (*models.Event, error)
}

func (m *mockEventService) Create(ctx context.Context, actor service.Actor, event *models.Event) error {
	return m.createFn(ctx, actor, event)
}
func (m *mockEventService) Get(ctx context.Context, id uint) (*models.Event, error) {
	return m.getFn(ctx, id)
}
func (m *mockEventService) ListUpcoming(ctx context.Context) ([]models.Event, error) {
	return m.listFn(ctx)
}
func (m *mockEventService) Update(ctx context.Context, actor service.Actor, eventID uint, patch service.EventPatch) (*models.Event, error) {
	return m.updateFn(ctx, actor, eventID, patch)
}
func (m *mockEventService) SetEmcees(ctx context.Context, actor service.Actor, eventID uint, memberIDs []uint) (*models.Event, error) {
	return m.setEmceesFn(ctx, actor, eventID, memberIDs)
}

func TestCreateEventHandler_Created(t *testing.T) {
	svc := &mockEventService{
		createFn: func(ctx context.Context, actor service.Actor, event *models.Event) error {
			event.ID = 1
			return nil
		},
	}

	body := `{"title":"Demo Night","starts_at":"2026-09-07T18:00:00Z","audience_can_reorder":true}`
	c, rec := newContext(t, http.MethodPost, "/api/v1/events", body, nil)
	h := NewEventHandler(svc)

	assert.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.EventResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint(1), resp.ID)
	assert.True(t, resp.AudienceCanReorder)
}

func TestCreateEventHandler_MissingTitle(t *testing.T) {
	c, _ := newContext(t, http.MethodPost, "/api/v1/events", `{"starts_at":"2026-09-07T18:00:00Z"}`, nil)
	h := NewEventHandler(&mockEventService{})

	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestCreateEventHandler_NonAdminForbidden(t *testing.T) {
	svc := &mockEventService{
		createFn: func(ctx context.Context, actor service.Actor, event *models.Event) error {
			return service.ErrUnauthorized
		},
	}

	body := `{"title":"Demo Night","starts_at":"2026-09-07T18:00:00Z"}`
	c, _ := newContext(t, http.MethodPost, "/api/v1/events", body, nil)
	h := NewEventHandler(svc)

	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Code)
}

func TestUpdateEventHandler_PatchPassthrough(t *testing.T) {
	var got service.EventPatch
	svc := &mockEventService{
		updateFn: func(ctx context.Context, actor service.Actor, eventID uint, patch service.EventPatch) (*models.Event, error) {
			got = patch
			return &models.Event{ID: eventID, Title: *patch.Title}, nil
		},
	}

	c, rec := newContext(t, http.MethodPatch, "/api/v1/events/1", `{"title":"Finale","is_finished":true}`, map[string]string{"id": "1"})
	h := NewEventHandler(svc)

	assert.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Finale", *got.Title)
	assert.True(t, *got.IsFinished)
	assert.Nil(t, got.StartsAt)
}

func TestGetEventHandler_NotFound(t *testing.T) {
	svc := &mockEventService{
		getFn: func(ctx context.Context, id uint) (*models.Event, error) {
			return nil, service.ErrEventNotFound
		},
	}

	c, _ := newContext(t, http.MethodGet, "/api/v1/events/9", "", map[string]string{"id": "9"})
	h := NewEventHandler(svc)

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestListEventsHandler_Success(t *testing.T) {
	svc := &mockEventService{
		listFn: func(ctx context.Context) ([]models.Event, error) {
			return []models.Event{
				{ID: 1, Title: "Demo Night", StartsAt: time.Date(2026, 9, 7, 18, 0, 0, 0, time.UTC)},
				{ID: 2, Title: "Hack Night", StartsAt: time.Date(2026, 9, 14, 18, 0, 0, 0, time.UTC)},
			}, nil
		},
	}

	c, rec := newContext(t, http.MethodGet, "/api/v1/events", "", nil)
	h := NewEventHandler(svc)

	assert.NoError(t, h.ListUpcoming(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.EventResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestSetEmceesHandler_Success(t *testing.T) {
	svc := &mockEventService{
		setEmceesFn: func(ctx context.Context, actor service.Actor, eventID uint, memberIDs []uint) (*models.Event, error) {
			emcees := make([]models.Member, len(memberIDs))
			for i, id := range memberIDs {
				emcees[i] = models.Member{ID: id}
			}
			return &models.Event{ID: eventID, Emcees: emcees}, nil
		},
	}

	c, rec := newContext(t, http.MethodPut, "/api/v1/events/1/emcees", `{"member_ids":[2,3]}`, map[string]string{"id": "1"})
	h := NewEventHandler(svc)

	assert.NoError(t, h.SetEmcees(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.EventResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []uint{2, 3}, resp.EmceeIDs)
}
