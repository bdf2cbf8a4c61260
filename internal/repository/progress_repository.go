package repository

import (
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) FindByUserAndCourse(db *gorm.DB, userID, courseID uint) (*model.ProgressRecord, error) {
	var record model.ProgressRecord
	err := db.
		Preload("TaskProgress").
		Preload("TaskProgress.Uploads").
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *ProgressRepository) FindByUser(db *gorm.DB, userID uint) ([]model.ProgressRecord, error) {
	var records []model.ProgressRecord
	err := db.Where("user_id = ?", userID).Order("course_id ASC").Find(&records).Error
	return records, err
}

func (r *ProgressRepository) FindByCourse(db *gorm.DB, courseID uint) ([]model.ProgressRecord, error) {
	var records []model.ProgressRecord
	err := db.Where("course_id = ?", courseID).Find(&records).Error
	return records, err
}

func (r *ProgressRepository) Save(db *gorm.DB, record *model.ProgressRecord) error {
	return db.Save(record).Error
}

func (r *ProgressRepository) FindEntry(db *gorm.DB, progressID, taskID uint) (*model.TaskProgress, error) {
	var entry model.TaskProgress
	err := db.Preload("Uploads").
		Where("progress_id = ? AND task_id = ?", progressID, taskID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *ProgressRepository) SaveEntry(db *gorm.DB, entry *model.TaskProgress) error {
	return db.Save(entry).Error
}

// TotalCompletedByUser sums completed task entries across all of the user's
// progress records, for badge evaluation.
func (r *ProgressRepository) TotalCompletedByUser(db *gorm.DB, userID uint) (int64, error) {
	var count int64
	err := db.Model(&model.TaskProgress{}).
		Joins("JOIN progress_records ON progress_records.id = task_progress.progress_id").
		Where("progress_records.user_id = ? AND task_progress.completed = ? AND progress_records.deleted_at IS NULL", userID, true).
		Count(&count).Error
	return count, err
}
