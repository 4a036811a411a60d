package repository

import (
	"context"

	"github.com/sundaiclub/pitch-service/internal/models"
	"gorm.io/gorm"
)

type QueueRepository interface {
	Create(ctx context.Context, tx *gorm.DB, item *models.QueueItem) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.QueueItem, error)
	FindByEventOrdered(ctx context.Context, tx *gorm.DB, eventID uint) ([]models.QueueItem, error)
	ExistsByEventAndProject(ctx context.Context, tx *gorm.DB, eventID, projectID uint) (bool, error)
	MaxPosition(ctx context.Context, tx *gorm.DB, eventID uint) (int, error)
	SetStatus(ctx context.Context, tx *gorm.DB, itemID uint, status models.QueueStatus, approved *bool) error
	SetPosition(ctx context.Context, tx *gorm.DB, itemID uint, position int) error
	Delete(ctx context.Context, tx *gorm.DB, itemID uint) error

	// InTx runs fn inside one database transaction. Every queue mutation
	// goes through here so its snapshot read and dependent writes commit
	// atomically.
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	GetDB() *gorm.DB
}

type queueRepository struct {
	db *gorm.DB
}

func NewQueueRepository(db *gorm.DB) QueueRepository {
	return &queueRepository{db: db}
}

func (r *queueRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *queueRepository) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *queueRepository) Create(ctx context.Context, tx *gorm.DB, item *models.QueueItem) error {
	return tx.WithContext(ctx).Create(item).Error
}

func (r *queueRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.QueueItem, error) {
	var item models.QueueItem
	if err := tx.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByEventOrdered returns the event's queue sorted by (position, id).
// The secondary id sort makes position ties deterministic.
func (r *queueRepository) FindByEventOrdered(ctx context.Context, tx *gorm.DB, eventID uint) ([]models.QueueItem, error) {
	var items []models.QueueItem
	err := tx.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("position ASC, id ASC").
		Preload("Project").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *queueRepository) ExistsByEventAndProject(ctx context.Context, tx *gorm.DB, eventID, projectID uint) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.QueueItem{}).
		Where("event_id = ? AND project_id = ?", eventID, projectID).
		Count(&count).Error
	return count > 0, err
}

func (r *queueRepository) MaxPosition(ctx context.Context, tx *gorm.DB, eventID uint) (int, error) {
	var max int
	err := tx.WithContext(ctx).
		Model(&models.QueueItem{}).
		Where("event_id = ?", eventID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	return max, err
}

func (r *queueRepository) SetStatus(ctx context.Context, tx *gorm.DB, itemID uint, status models.QueueStatus, approved *bool) error {
	updates := map[string]any{"status": status}
	if approved != nil {
		updates["approved"] = *approved
	}
	return tx.WithContext(ctx).
		Model(&models.QueueItem{}).
		Where("id = ?", itemID).
		Updates(updates).Error
}

func (r *queueRepository) SetPosition(ctx context.Context, tx *gorm.DB, itemID uint, position int) error {
	return tx.WithContext(ctx).
		Model(&models.QueueItem{}).
		Where("id = ?", itemID).
		Update("position", position).Error
}

func (r *queueRepository) Delete(ctx context.Context, tx *gorm.DB, itemID uint) error {
	return tx.WithContext(ctx).Delete(&models.QueueItem{}, itemID).Error
}
