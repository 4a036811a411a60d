package models

import "time"

type Event struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Title              string    `gorm:"not null" json:"title"`
	StartsAt           time.Time `gorm:"not null" json:"starts_at"`
	AudienceCanReorder bool      `gorm:"not null;default:false" json:"audience_can_reorder"`
	IsFinished         bool      `gorm:"not null;default:false" json:"is_finished"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Emcees []Member `gorm:"many2many:event_emcees" json:"emcees,omitempty"`
}

// HasEmcee reports whether the given member is on the event's emcee roster.
func (e *Event) HasEmcee(memberID uint) bool {
	for _, m := range e.Emcees {
		if m.ID == memberID {
			return true
		}
	}
	return false
}
