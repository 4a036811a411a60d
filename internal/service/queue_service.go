package service

import (
	"context"
	"errors"

	"github.com/sundaiclub/pitch-service/internal/models"
	"github.com/sundaiclub/pitch-service/internal/repository"
	"github.com/sundaiclub/pitch-service/pkg/rabbitmq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrItemNotFound    = errors.New("queue item not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrUnauthorized    = errors.New("caller may not perform this operation")
	ErrAlreadyQueued   = errors.New("project is already queued for this event")
	ErrEventFinished   = errors.New("event is finished")
	ErrBadReorder      = errors.New("reorder request violates position rules")
	ErrBadStatus       = errors.New("unknown queue status")

	// ErrNoOp signals a valid request with no eligible transition. It is a
	// distinguishable outcome, not a failure: callers still receive the
	// unchanged snapshot alongside it.
	ErrNoOp = errors.New("no eligible transition")
)

// Actor is the resolved caller identity passed into every operation.
// Emcee membership is deliberately not part of it; it is re-read from the
// event row on each call.
type Actor struct {
	MemberID uint
	Role     models.MemberRole
}

// PositionUpdate is one entry of a bulk reorder request.
type PositionUpdate struct {
	ItemID   uint
	Position int
}

type QueueService interface {
	List(ctx context.Context, eventID uint) ([]models.QueueItem, error)
	Join(ctx context.Context, eventID uint, actor Actor, projectID uint) (*models.QueueItem, error)
	Delist(ctx context.Context, eventID, itemID uint, actor Actor) error
	Advance(ctx context.Context, eventID uint, actor Actor) ([]models.QueueItem, error)
	Previous(ctx context.Context, eventID uint, actor Actor) ([]models.QueueItem, error)
	Reorder(ctx context.Context, eventID uint, actor Actor, updates []PositionUpdate) ([]models.QueueItem, error)
	SetStatus(ctx context.Context, eventID, itemID uint, actor Actor, status *models.QueueStatus, approved *bool) (*models.QueueItem, error)
}

type queueService struct {
	queueRepo   repository.QueueRepository
	eventRepo   repository.EventRepository
	projectRepo repository.ProjectRepository
	publisher   *rabbitmq.Publisher
	log         *zap.Logger
}

func NewQueueService(
	queueRepo repository.QueueRepository,
	eventRepo repository.EventRepository,
	projectRepo repository.ProjectRepository,
	publisher *rabbitmq.Publisher,
	log *zap.Logger,
) QueueService {
	if log == nil {
		log = zap.NewNop()
	}
	return &queueService{
		queueRepo:   queueRepo,
		eventRepo:   eventRepo,
		projectRepo: projectRepo,
		publisher:   publisher,
		log:         log,
	}
}

// moderates reports whether the actor holds moderator rights for the event:
// global admins and the event's assigned emcees.
func moderates(actor Actor, event *models.Event) bool {
	return actor.Role == models.RoleAdmin || event.HasEmcee(actor.MemberID)
}

// currentIndex returns the index of the CURRENT item in an ordered snapshot,
// or -1 when no item is current.
func currentIndex(items []models.QueueItem) int {
	for i := range items {
		if items[i].Status == models.StatusCurrent {
			return i
		}
	}
	return -1
}

func (s *queueService) List(ctx context.Context, eventID uint) ([]models.QueueItem, error) {
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return nil, ErrEventNotFound
	}
	items, err := s.queueRepo.FindByEventOrdered(ctx, s.queueRepo.GetDB(), eventID)
	if err != nil {
		s.log.Error("load queue snapshot failed", zap.String("op", "list"), zap.Uint("event_id", eventID), zap.Error(err))
		return nil, err
	}
	return items, nil
}

func (s *queueService) Join(ctx context.Context, eventID uint, actor Actor, projectID uint) (*models.QueueItem, error) {
	var result *models.QueueItem

	err := s.queueRepo.InTx(ctx, func(tx *gorm.DB) error {
		// Lock the event row; serializes all queue mutations for this event
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			return ErrEventNotFound
		}
		if event.IsFinished {
			return ErrEventFinished
		}

		project, err := s.projectRepo.FindByID(ctx, projectID)
		if err != nil {
			return ErrProjectNotFound
		}
		if !project.HasMember(actor.MemberID) && !moderates(actor, event) {
			return ErrUnauthorized
		}

		exists, err := s.queueRepo.ExistsByEventAndProject(ctx, tx, eventID, projectID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyQueued
		}

		maxPos, err := s.queueRepo.MaxPosition(ctx, tx, eventID)
		if err != nil {
			return err
		}

		item := &models.QueueItem{
			EventID:   eventID,
			ProjectID: projectID,
			Position:  maxPos + 1,
			Status:    models.StatusQueued,
			AddedByID: actor.MemberID,
		}
		if err := s.queueRepo.Create(ctx, tx, item); err != nil {
			// Unique index on (event_id, project_id) backs the existence
			// check against concurrent joins.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyQueued
			}
			return err
		}
		result = item
		return nil
	})
	if err != nil {
		return nil, s.opErr("join", eventID, err)
	}

	s.publish("queue.joined", eventID, result)
	return result, nil
}

func (s *queueService) Delist(ctx context.Context, eventID, itemID uint, actor Actor) error {
	err := s.queueRepo.InTx(ctx, func(tx *gorm.DB) error {
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			return ErrEventNotFound
		}
		if event.IsFinished {
			return ErrEventFinished
		}

		item, err := s.queueRepo.FindByID(ctx, tx, itemID)
		if err != nil || item.EventID != eventID {
			return ErrItemNotFound
		}

		if !moderates(actor, event) {
			// Owners may pull their own item, but never the one being
			// presented right now.
			if item.AddedByID != actor.MemberID || item.Status == models.StatusCurrent {
				return ErrUnauthorized
			}
		}

		return s.queueRepo.Delete(ctx, tx, itemID)
	})
	if err != nil {
		return s.opErr("delist", eventID, err)
	}

	s.publish("queue.delisted", eventID, itemID)
	return nil
}

func (s *queueService) Advance(ctx context.Context, eventID uint, actor Actor) ([]models.QueueItem, error) {
	var snapshot []models.QueueItem
	noop := false

	err := s.queueRepo.InTx(ctx, func(tx *gorm.DB) error {
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			return ErrEventNotFound
		}
		if event.IsFinished {
			return ErrEventFinished
		}
		if !moderates(actor, event) {
			return ErrUnauthorized
		}

		items, err := s.queueRepo.FindByEventOrdered(ctx, tx, eventID)
		if err != nil {
			return err
		}

		cur := currentIndex(items)

		// First eligible item after the current one, or the first overall
		// when nothing is current.
		next := -1
		for i := cur + 1; i < len(items); i++ {
			if items[i].Status.Eligible() {
				next = i
				break
			}
		}

		if cur == -1 && next == -1 {
			noop = true
			snapshot = items
			return nil
		}

		// Demotion and promotion commit together or not at all.
		if cur != -1 {
			if err := s.queueRepo.SetStatus(ctx, tx, items[cur].ID, models.StatusDone, nil); err != nil {
				return err
			}
		}
		if next != -1 {
			approved := true
			if err := s.queueRepo.SetStatus(ctx, tx, items[next].ID, models.StatusCurrent, &approved); err != nil {
				return err
			}
		}

		snapshot, err = s.queueRepo.FindByEventOrdered(ctx, tx, eventID)
		return err
	})
	if err != nil {
		return nil, s.opErr("advance", eventID, err)
	}
	if noop {
		return snapshot, ErrNoOp
	}

	s.publish("queue.advanced", eventID, snapshot)
	return snapshot, nil
}

func (s *queueService) Previous(ctx context.Context, eventID uint, actor Actor) ([]models.QueueItem, error) {
	var snapshot []models.QueueItem
	noop := false

	err := s.queueRepo.InTx(ctx, func(tx *gorm.DB) error {
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			return ErrEventNotFound
		}
		if event.IsFinished {
			return ErrEventFinished
		}
		if !moderates(actor, event) {
			return ErrUnauthorized
		}

		items, err := s.queueRepo.FindByEventOrdered(ctx, tx, eventID)
		if err != nil {
			return err
		}

		cur := currentIndex(items)
		approved := true

		if cur == -1 {
			// Resume where the session left off: prefer the most recent
			// presented item, then the most recent not-yet-shown one.
			target := -1
			for i := len(items) - 1; i >= 0; i-- {
				if items[i].Status.Presented() {
					target = i
					break
				}
			}
			if target == -1 {
				for i := len(items) - 1; i >= 0; i-- {
					if items[i].Status.Eligible() {
						target = i
						break
					}
				}
			}
			if target == -1 {
				noop = true
				snapshot = items
				return nil
			}
			if err := s.queueRepo.SetStatus(ctx, tx, items[target].ID, models.StatusCurrent, &approved); err != nil {
				return err
			}
		} else {
			// Nearest backward item in any non-current state.
			target := -1
			for i := cur - 1; i >= 0; i-- {
				if items[i].Status != models.StatusCurrent {
					target = i
					break
				}
			}
			if target == -1 {
				noop = true
				snapshot = items
				return nil
			}
			if err := s.queueRepo.SetStatus(ctx, tx, items[cur].ID, models.StatusApproved, nil); err != nil {
				return err
			}
			if err := s.queueRepo.SetStatus(ctx, tx, items[target].ID, models.StatusCurrent, &approved); err != nil {
				return err
			}
		}

		snapshot, err = s.queueRepo.FindByEventOrdered(ctx, tx, eventID)
		return err
	})
	if err != nil {
		return nil, s.opErr("previous", eventID, err)
	}
	if noop {
		return snapshot, ErrNoOp
	}

	s.publish("queue.previous", eventID, snapshot)
	return snapshot, nil
}

func (s *queueService) Reorder(ctx context.Context, eventID uint, actor Actor, updates []PositionUpdate) ([]models.QueueItem, error) {
	if len(updates) == 0 {
		return nil, ErrBadReorder
	}

	var snapshot []models.QueueItem

	err := s.queueRepo.InTx(ctx, func(tx *gorm.DB) error {
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			return ErrEventNotFound
		}
		if event.IsFinished {
			return ErrEventFinished
		}

		items, err := s.queueRepo.FindByEventOrdered(ctx, tx, eventID)
		if err != nil {
			return err
		}
		byID := make(map[uint]*models.QueueItem, len(items))
		for i := range items {
			byID[items[i].ID] = &items[i]
		}

		free := event.AudienceCanReorder || moderates(actor, event)

		// Position floor for restricted mode: strictly after the item
		// being presented.
		floor := -1
		if cur := currentIndex(items); cur != -1 {
			floor = items[cur].Position
		}

		for _, u := range updates {
			item, ok := byID[u.ItemID]
			if !ok {
				// Unknown id or an item of a different event; either way
				// the whole batch fails.
				return ErrItemNotFound
			}
			if free {
				continue
			}
			if item.AddedByID != actor.MemberID {
				return ErrUnauthorized
			}
			if u.Position <= floor {
				return ErrBadReorder
			}
		}

		for _, u := range updates {
			if err := s.queueRepo.SetPosition(ctx, tx, u.ItemID, u.Position); err != nil {
				return err
			}
		}

		snapshot, err = s.queueRepo.FindByEventOrdered(ctx, tx, eventID)
		return err
	})
	if err != nil {
		return nil, s.opErr("reorder", eventID, err)
	}

	s.publish("queue.reordered", eventID, snapshot)
	return snapshot, nil
}

// SetStatus is the admin-only moderation override. It writes status and
// approved directly, bypassing transition rules.
func (s *queueService) SetStatus(ctx context.Context, eventID, itemID uint, actor Actor, status *models.QueueStatus, approved *bool) (*models.QueueItem, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrUnauthorized
	}
	if status != nil && !models.ValidQueueStatus(*status) {
		return nil, ErrBadStatus
	}

	var result *models.QueueItem

	err := s.queueRepo.InTx(ctx, func(tx *gorm.DB) error {
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			return ErrEventNotFound
		}
		if event.IsFinished {
			return ErrEventFinished
		}

		item, err := s.queueRepo.FindByID(ctx, tx, itemID)
		if err != nil || item.EventID != eventID {
			return ErrItemNotFound
		}

		if status != nil {
			item.Status = *status
		}
		if approved != nil {
			item.Approved = *approved
		}
		if err := s.queueRepo.SetStatus(ctx, tx, itemID, item.Status, approved); err != nil {
			return err
		}
		result = item
		return nil
	})
	if err != nil {
		return nil, s.opErr("set_status", eventID, err)
	}

	s.publish("queue.status", eventID, result)
	return result, nil
}

// knownErr lists the outcomes that are part of the service contract and are
// not logged as failures.
func knownErr(err error) bool {
	for _, e := range []error{
		ErrEventNotFound, ErrItemNotFound, ErrProjectNotFound, ErrMemberNotFound,
		ErrUnauthorized, ErrAlreadyQueued, ErrEventFinished,
		ErrBadReorder, ErrBadStatus, ErrNoOp,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

func (s *queueService) opErr(op string, eventID uint, err error) error {
	if !knownErr(err) {
		s.log.Error("queue operation failed", zap.String("op", op), zap.Uint("event_id", eventID), zap.Error(err))
	}
	return err
}

func (s *queueService) publish(routingKey string, eventID uint, payload any) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(routingKey, map[string]any{
		"event_id": eventID,
		"data":     payload,
	})
}
