package repository

import (
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/model"

	"gorm.io/gorm"
)

type BadgeRepository struct {
	DB *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: db}
}

func (r *BadgeRepository) FindAll(db *gorm.DB) ([]model.Badge, error) {
	var badges []model.Badge
	err := db.Order("threshold ASC").Find(&badges).Error
	return badges, err
}

func (r *BadgeRepository) FindByUserID(userID uint) ([]model.Badge, error) {
	var badges []model.Badge
	err := r.DB.Joins("JOIN user_badges ON user_badges.badge_id = badges.id").
		Where("user_badges.user_id = ? AND user_badges.deleted_at IS NULL", userID).
		Order("badges.threshold ASC").
		Find(&badges).Error
	return badges, err
}

// HeldIDs returns the set of badge IDs the user already holds.
func (r *BadgeRepository) HeldIDs(db *gorm.DB, userID uint) (map[uint]bool, error) {
	var ids []uint
	err := db.Model(&model.UserBadge{}).
		Where("user_id = ?", userID).
		Pluck("badge_id", &ids).Error
	if err != nil {
		return nil, err
	}
	held := make(map[uint]bool, len(ids))
	for _, id := range ids {
		held[id] = true
	}
	return held, nil
}

// Grant inserts a user badge. FirstOrCreate keeps the grant idempotent even if
// two evaluations race; the unique index backs it up.
func (r *BadgeRepository) Grant(db *gorm.DB, userID, badgeID uint) error {
	var ub model.UserBadge
	return db.Where(model.UserBadge{UserID: userID, BadgeID: badgeID}).
		FirstOrCreate(&ub).Error
}
