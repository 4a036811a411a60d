package repository

import (
	"context"

	"github.com/sundaiclub/pitch-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uint) (*models.Event, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error)
	FindUpcoming(ctx context.Context) ([]models.Event, error)
	Save(ctx context.Context, event *models.Event) error
	ReplaceEmcees(ctx context.Context, event *models.Event, emcees []models.Member) error
	GetDB() *gorm.DB
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).Preload("Emcees").First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// FindByIDForUpdate acquires a row-level lock on the event within the given
// transaction. All queue mutations for one event serialize on this lock.
func (r *eventRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	var event models.Event
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, id).Error; err != nil {
		return nil, err
	}
	// Emcee roster is read fresh on every call; it is not covered by the lock
	// and must not be cached across requests.
	if err := tx.WithContext(ctx).Model(&event).Association("Emcees").Find(&event.Emcees); err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindUpcoming(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("is_finished = ?", false).
		Order("starts_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) Save(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *eventRepository) ReplaceEmcees(ctx context.Context, event *models.Event, emcees []models.Member) error {
	return r.db.WithContext(ctx).Model(event).Association("Emcees").Replace(emcees)
}
