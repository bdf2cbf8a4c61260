package model

type BadgeCriteriaKind string

const (
	CriteriaTasksCompleted BadgeCriteriaKind = "tasks_completed"
)

// Badge thresholds are data, not code: the evaluator compares the typed
// threshold, Criteria keeps the original free-text description for display.
type Badge struct {
	BaseModel
	Name         string            `gorm:"size:100;not null" json:"name"`
	Description  string            `gorm:"type:text" json:"description"`
	Icon         string            `gorm:"size:255" json:"icon"`
	Criteria     string            `gorm:"size:255" json:"criteria"`
	CriteriaKind BadgeCriteriaKind `gorm:"size:30;default:'tasks_completed'" json:"criteriaKind"`
	Threshold    int               `gorm:"default:0" json:"threshold"`
}

func (Badge) TableName() string {
	return "badges"
}

// UserBadge records a grant. The unique index makes grants idempotent at the
// storage level as well as in the evaluator.
type UserBadge struct {
	BaseModel
	UserID  uint `gorm:"uniqueIndex:idx_user_badge;not null" json:"userId"`
	BadgeID uint `gorm:"uniqueIndex:idx_user_badge;not null" json:"badgeId"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}
