package service

import (
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/model"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/repository"
	"github.com/Youssef-Elbanna/Ping-Gamify/pkg/logger"
	"github.com/Youssef-Elbanna/Ping-Gamify/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BadgeService struct {
	BadgeRepo    *repository.BadgeRepository
	ProgressRepo *repository.ProgressRepository
}

func NewBadgeService(badgeRepo *repository.BadgeRepository, progressRepo *repository.ProgressRepository) *BadgeService {
	return &BadgeService{
		BadgeRepo:    badgeRepo,
		ProgressRepo: progressRepo,
	}
}

// EvaluateForUser grants every badge whose threshold the user's total
// completed-task count (across all courses) now meets. Grants are idempotent:
// held badges are skipped and the unique index backs that up. Returns only the
// newly granted badges.
func (s *BadgeService) EvaluateForUser(tx *gorm.DB, userID uint) ([]model.Badge, error) {
	totalCompleted, err := s.ProgressRepo.TotalCompletedByUser(tx, userID)
	if err != nil {
		return nil, err
	}

	badges, err := s.BadgeRepo.FindAll(tx)
	if err != nil {
		return nil, err
	}

	held, err := s.BadgeRepo.HeldIDs(tx, userID)
	if err != nil {
		return nil, err
	}

	var granted []model.Badge
	for _, badge := range badges {
		if badge.CriteriaKind != model.CriteriaTasksCompleted {
			continue
		}
		if held[badge.ID] || totalCompleted < int64(badge.Threshold) {
			continue
		}
		if err := s.BadgeRepo.Grant(tx, userID, badge.ID); err != nil {
			return nil, err
		}
		granted = append(granted, badge)
		monitoring.BadgesGranted.Inc()
		logger.Log.Info("badge granted",
			zap.Uint("userId", userID),
			zap.String("badge", badge.Name),
		)
	}

	return granted, nil
}

func (s *BadgeService) ListAll() ([]model.Badge, error) {
	return s.BadgeRepo.FindAll(s.BadgeRepo.DB)
}

func (s *BadgeService) ListUserBadges(userID uint) ([]model.Badge, error) {
	return s.BadgeRepo.FindByUserID(userID)
}
