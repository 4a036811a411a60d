package service

import (
	"context"
	"time"

	"github.com/sundaiclub/pitch-service/internal/models"
	"github.com/sundaiclub/pitch-service/internal/repository"
	"github.com/sundaiclub/pitch-service/pkg/rabbitmq"
	"go.uber.org/zap"
)

// EventPatch carries the mutable event fields; nil means "leave unchanged".
type EventPatch struct {
	Title              *string
	StartsAt           *time.Time
	AudienceCanReorder *bool
	IsFinished         *bool
}

type EventService interface {
	Create(ctx context.Context, actor Actor, event *models.Event) error
	Get(ctx context.Context, id uint) (*models.Event, error)
	ListUpcoming(ctx context.Context) ([]models.Event, error)
	Update(ctx context.Context, actor Actor, eventID uint, patch EventPatch) (*models.Event, error)
	SetEmcees(ctx context.Context, actor Actor, eventID uint, memberIDs []uint) (*models.Event, error)
}

type eventService struct {
	eventRepo  repository.EventRepository
	memberRepo repository.MemberRepository
	publisher  *rabbitmq.Publisher
	log        *zap.Logger
}

func NewEventService(eventRepo repository.EventRepository, memberRepo repository.MemberRepository, publisher *rabbitmq.Publisher, log *zap.Logger) EventService {
	if log == nil {
		log = zap.NewNop()
	}
	return &eventService{eventRepo: eventRepo, memberRepo: memberRepo, publisher: publisher, log: log}
}

func (s *eventService) Create(ctx context.Context, actor Actor, event *models.Event) error {
	if actor.Role != models.RoleAdmin {
		return ErrUnauthorized
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.log.Error("create event failed", zap.String("op", "event_create"), zap.Error(err))
		return err
	}

	if s.publisher != nil {
		_ = s.publisher.Publish("event.created", event)
	}
	return nil
}

func (s *eventService) Get(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func (s *eventService) ListUpcoming(ctx context.Context) ([]models.Event, error) {
	return s.eventRepo.FindUpcoming(ctx)
}

func (s *eventService) Update(ctx context.Context, actor Actor, eventID uint, patch EventPatch) (*models.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, ErrEventNotFound
	}
	if !moderates(actor, event) {
		return nil, ErrUnauthorized
	}

	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.StartsAt != nil {
		event.StartsAt = *patch.StartsAt
	}
	if patch.AudienceCanReorder != nil {
		event.AudienceCanReorder = *patch.AudienceCanReorder
	}
	if patch.IsFinished != nil {
		event.IsFinished = *patch.IsFinished
	}

	if err := s.eventRepo.Save(ctx, event); err != nil {
		s.log.Error("update event failed", zap.String("op", "event_update"), zap.Uint("event_id", eventID), zap.Error(err))
		return nil, err
	}

	if s.publisher != nil {
		_ = s.publisher.Publish("event.updated", event)
	}
	return event, nil
}

// SetEmcees replaces the event's emcee roster. Admin only; emcees cannot
// grant or revoke each other.
func (s *eventService) SetEmcees(ctx context.Context, actor Actor, eventID uint, memberIDs []uint) (*models.Event, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrUnauthorized
	}

	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, ErrEventNotFound
	}

	members, err := s.memberRepo.FindByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	if len(members) != len(memberIDs) {
		return nil, ErrMemberNotFound
	}

	if err := s.eventRepo.ReplaceEmcees(ctx, event, members); err != nil {
		s.log.Error("replace emcees failed", zap.String("op", "event_set_emcees"), zap.Uint("event_id", eventID), zap.Error(err))
		return nil, err
	}
	event.Emcees = members

	if s.publisher != nil {
		_ = s.publisher.Publish("event.updated", event)
	}
	return event, nil
}
