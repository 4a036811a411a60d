package models

import "time"

type Project struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	LeadID    uint      `gorm:"not null" json:"lead_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Lead    *Member  `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
	Members []Member `gorm:"many2many:project_members" json:"members,omitempty"`
}

// HasMember reports whether the given member leads or participates in the project.
func (p *Project) HasMember(memberID uint) bool {
	if p.LeadID == memberID {
		return true
	}
	for _, m := range p.Members {
		if m.ID == memberID {
			return true
		}
	}
	return false
}
