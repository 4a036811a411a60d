package repository

import (
	"context"

	"github.com/sundaiclub/pitch-service/internal/models"
	"gorm.io/gorm"
)

type MemberRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Member, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Member, error)
}

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) FindByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Member, error) {
	var members []models.Member
	if err := r.db.WithContext(ctx).Find(&members, ids).Error; err != nil {
		return nil, err
	}
	return members, nil
}
