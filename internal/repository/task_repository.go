package repository

import (
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/model"

	"gorm.io/gorm"
)

type TaskRepository struct {
	DB *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

func (r *TaskRepository) Create(task *model.Task) error {
	return r.DB.Create(task).Error
}

func (r *TaskRepository) FindByID(id uint) (*model.Task, error) {
	var task model.Task
	err := r.DB.Preload("Links").First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Update(task *model.Task) error {
	return r.DB.Save(task).Error
}

// CourseID resolves the course a task belongs to via its skill.
func (r *TaskRepository) CourseID(db *gorm.DB, taskID uint) (uint, error) {
	var courseID uint
	err := db.Model(&model.Task{}).
		Joins("JOIN skills ON skills.id = tasks.skill_id").
		Where("tasks.id = ?", taskID).
		Select("skills.course_id").
		Scan(&courseID).Error
	return courseID, err
}
