package models

import "time"

type QueueStatus string

const (
	StatusQueued   QueueStatus = "queued"
	StatusApproved QueueStatus = "approved"
	StatusCurrent  QueueStatus = "current"
	StatusDone     QueueStatus = "done"
	StatusSkipped  QueueStatus = "skipped"
)

// ValidQueueStatus reports whether s is one of the five known statuses.
// Unknown values are rejected at the API boundary, not deep in transition logic.
func ValidQueueStatus(s QueueStatus) bool {
	switch s {
	case StatusQueued, StatusApproved, StatusCurrent, StatusDone, StatusSkipped:
		return true
	}
	return false
}

// Eligible reports whether the item may become current via the normal
// advance path.
func (s QueueStatus) Eligible() bool {
	return s == StatusQueued || s == StatusApproved
}

// Presented reports whether the item has already been shown (or skipped).
func (s QueueStatus) Presented() bool {
	return s == StatusDone || s == StatusSkipped
}

type QueueItem struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	EventID   uint        `gorm:"not null;uniqueIndex:idx_event_project" json:"event_id"`
	ProjectID uint        `gorm:"not null;uniqueIndex:idx_event_project" json:"project_id"`
	Position  int         `gorm:"not null;index" json:"position"`
	Status    QueueStatus `gorm:"type:varchar(20);not null;default:'queued'" json:"status"`
	Approved  bool        `gorm:"not null;default:false" json:"approved"`
	AddedByID uint        `gorm:"not null" json:"added_by_id"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}
