package dto

import (
	"time"

	"github.com/sundaiclub/pitch-service/internal/models"
)

type QueueItemResponse struct {
	ID          uint               `json:"id"`
	EventID     uint               `json:"event_id"`
	ProjectID   uint               `json:"project_id"`
	ProjectName string             `json:"project_name,omitempty"`
	Position    int                `json:"position"`
	Status      models.QueueStatus `json:"status"`
	Approved    bool               `json:"approved"`
	AddedByID   uint               `json:"added_by_id"`
	CreatedAt   time.Time          `json:"created_at"`
}

// QueueSnapshotResponse is the full ordered queue after an operation.
// Changed is false when the operation was a valid no-op.
type QueueSnapshotResponse struct {
	EventID uint                `json:"event_id"`
	Changed bool                `json:"changed"`
	Items   []QueueItemResponse `json:"items"`
}

type EventResponse struct {
	ID                 uint      `json:"id"`
	Title              string    `json:"title"`
	StartsAt           time.Time `json:"starts_at"`
	AudienceCanReorder bool      `json:"audience_can_reorder"`
	IsFinished         bool      `json:"is_finished"`
	EmceeIDs           []uint    `json:"emcee_ids"`
	CreatedAt          time.Time `json:"created_at"`
}

func ToQueueItemResponse(item *models.QueueItem) QueueItemResponse {
	resp := QueueItemResponse{
		ID:        item.ID,
		EventID:   item.EventID,
		ProjectID: item.ProjectID,
		Position:  item.Position,
		Status:    item.Status,
		Approved:  item.Approved,
		AddedByID: item.AddedByID,
		CreatedAt: item.CreatedAt,
	}
	if item.Project != nil {
		resp.ProjectName = item.Project.Name
	}
	return resp
}

func ToQueueSnapshotResponse(eventID uint, items []models.QueueItem, changed bool) QueueSnapshotResponse {
	resp := QueueSnapshotResponse{
		EventID: eventID,
		Changed: changed,
		Items:   make([]QueueItemResponse, len(items)),
	}
	for i := range items {
		resp.Items[i] = ToQueueItemResponse(&items[i])
	}
	return resp
}

func ToEventResponse(event *models.Event) EventResponse {
	emceeIDs := make([]uint, len(event.Emcees))
	for i, m := range event.Emcees {
		emceeIDs[i] = m.ID
	}
	return EventResponse{
		ID:                 event.ID,
		Title:              event.Title,
		StartsAt:           event.StartsAt,
		AudienceCanReorder: event.AudienceCanReorder,
		IsFinished:         event.IsFinished,
		EmceeIDs:           emceeIDs,
		CreatedAt:          event.CreatedAt,
	}
}
