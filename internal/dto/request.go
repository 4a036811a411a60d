package dto

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type CreateEventRequest struct {
	Title              string    `json:"title" validate:"required"`
	StartsAt           time.Time `json:"starts_at" validate:"required"`
	AudienceCanReorder bool      `json:"audience_can_reorder"`
}

type UpdateEventRequest struct {
	Title              *string    `json:"title,omitempty"`
	StartsAt           *time.Time `json:"starts_at,omitempty"`
	AudienceCanReorder *bool      `json:"audience_can_reorder,omitempty"`
	IsFinished         *bool      `json:"is_finished,omitempty"`
}

type SetEmceesRequest struct {
	MemberIDs []uint `json:"member_ids" validate:"required"`
}

type JoinQueueRequest struct {
	ProjectID uint `json:"project_id" validate:"required"`
}

type ReorderRequest struct {
	Items []ReorderItem `json:"items" validate:"required,min=1,dive"`
}

type ReorderItem struct {
	ID       uint `json:"id" validate:"required"`
	Position int  `json:"position" validate:"required"`
}

type SetStatusRequest struct {
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=queued approved current done skipped"`
	Approved *bool   `json:"approved,omitempty"`
}

// Validator adapts go-playground/validator to echo's Validator interface.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
