package repository

import (
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByIDWithCatalog loads the course with its skills and their tasks, in
// display order.
func (r *CourseRepository) FindByIDWithCatalog(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Skills", func(db *gorm.DB) *gorm.DB {
			return db.Order("skills.`order` ASC")
		}).
		Preload("Skills.Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("tasks.`order` ASC")
		}).
		Preload("Skills.Tasks.Links").
		First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindAll(offset, limit int) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64
	if err := r.DB.Model(&model.Course{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB.Offset(offset).Limit(limit).Order("created_at desc").Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) FindByCoach(coachID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("coach_id = ?", coachID).Order("created_at desc").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

// CountTasks returns the number of tasks reachable from the course's current
// skills. This is the authoritative total for progress records.
func (r *CourseRepository) CountTasks(db *gorm.DB, courseID uint) (int64, error) {
	var count int64
	err := db.Model(&model.Task{}).
		Joins("JOIN skills ON skills.id = tasks.skill_id").
		Where("skills.course_id = ? AND skills.deleted_at IS NULL", courseID).
		Count(&count).Error
	return count, err
}

// TaskIDs returns the IDs of every task reachable from the course's skills.
func (r *CourseRepository) TaskIDs(db *gorm.DB, courseID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&model.Task{}).
		Joins("JOIN skills ON skills.id = tasks.skill_id").
		Where("skills.course_id = ? AND skills.deleted_at IS NULL", courseID).
		Pluck("tasks.id", &ids).Error
	return ids, err
}

func (r *CourseRepository) Enroll(enrollment *model.Enrollment) error {
	return r.DB.Create(enrollment).Error
}

func (r *CourseRepository) IsEnrolled(db *gorm.DB, userID, courseID uint) (bool, error) {
	var count int64
	err := db.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// Unenroll hard-deletes the enrollment row. A soft delete would leave the
// (user_id, course_id) unique index occupied and block re-enrolling.
func (r *CourseRepository) Unenroll(userID, courseID uint) error {
	return r.DB.Unscoped().Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&model.Enrollment{}).Error
}

func (r *CourseRepository) FindEnrolledCourses(userID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.user_id = ? AND enrollments.deleted_at IS NULL", userID).
		Find(&courses).Error
	return courses, err
}
