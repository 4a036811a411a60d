package repository

import (
	"context"

	"github.com/sundaiclub/pitch-service/internal/models"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Project, error)
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// FindByID loads the project with its full team roster, which the queue
// service needs for ownership checks on join.
func (r *projectRepository) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Members").
		First(&project, id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}
