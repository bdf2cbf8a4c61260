package service

import (
	"fmt"
	"time"

	"github.com/Youssef-Elbanna/Ping-Gamify/internal/model"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/repository"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/util"
	"github.com/Youssef-Elbanna/Ping-Gamify/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService owns the Course → Skill → Task hierarchy. Referential
// integrity is maintained manually on every delete: no deletion path may
// leave an orphan reference in the catalog or in any progress record.
type CatalogService struct {
	DB           *gorm.DB
	CourseRepo   *repository.CourseRepository
	SkillRepo    *repository.SkillRepository
	TaskRepo     *repository.TaskRepository
	ProgressRepo *repository.ProgressRepository
}

func NewCatalogService(
	courseRepo *repository.CourseRepository,
	skillRepo *repository.SkillRepository,
	taskRepo *repository.TaskRepository,
	progressRepo *repository.ProgressRepository,
	db *gorm.DB,
) *CatalogService {
	return &CatalogService{
		DB:           db,
		CourseRepo:   courseRepo,
		SkillRepo:    skillRepo,
		TaskRepo:     taskRepo,
		ProgressRepo: progressRepo,
	}
}

type CourseRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
}

type SkillRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

type TaskRequest struct {
	Title       string                `json:"title" binding:"required,max=255"`
	Description string                `json:"description"`
	ContentType model.TaskContentType `json:"contentType"`
	Deadline    *time.Time            `json:"deadline"`
	Order       int                   `json:"order"`
	Links       []TaskLinkRequest     `json:"links" binding:"required,min=1,dive"`
}

type TaskLinkRequest struct {
	URL   string `json:"url" binding:"required,max=512"`
	Label string `json:"label"`
}

func (s *CatalogService) CreateCourse(coachID uint, req CourseRequest) (*model.Course, error) {
	course := &model.Course{
		Title:       req.Title,
		Description: req.Description,
		CoachID:     coachID,
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CatalogService) GetCourse(courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByIDWithCatalog(courseID)
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("course %d: %w", courseID, util.ErrNotFound)
	} else if err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CatalogService) ListCourses(page, limit int) ([]model.Course, int64, error) {
	return s.CourseRepo.FindAll((page-1)*limit, limit)
}

func (s *CatalogService) ListCoachCourses(coachID uint) ([]model.Course, error) {
	return s.CourseRepo.FindByCoach(coachID)
}

func (s *CatalogService) UpdateCourse(callerID uint, callerRole model.UserRole, courseID uint, req CourseRequest) (*model.Course, error) {
	course, err := s.requireOwnedCourse(callerID, callerRole, courseID)
	if err != nil {
		return nil, err
	}

	course.Title = req.Title
	course.Description = req.Description
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

// DeleteCourse cascades through skills, tasks, enrollments and every progress
// record for the course.
func (s *CatalogService) DeleteCourse(callerID uint, callerRole model.UserRole, courseID uint) error {
	if _, err := s.requireOwnedCourse(callerID, callerRole, courseID); err != nil {
		return err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		skills, err := s.SkillRepo.FindByCourse(courseID)
		if err != nil {
			return err
		}
		for _, skill := range skills {
			if err := s.deleteSkillCascade(tx, skill.ID); err != nil {
				return err
			}
		}

		if err := tx.Where("course_id = ?", courseID).Delete(&model.Enrollment{}).Error; err != nil {
			return err
		}

		records, err := s.ProgressRepo.FindByCourse(tx, courseID)
		if err != nil {
			return err
		}
		for _, record := range records {
			if err := deleteProgressCascade(tx, record.ID); err != nil {
				return err
			}
		}

		return tx.Delete(&model.Course{}, courseID).Error
	})
	if err != nil {
		return err
	}

	logger.Log.Info("course deleted", zap.Uint("courseId", courseID))
	return nil
}

func (s *CatalogService) CreateSkill(callerID uint, callerRole model.UserRole, courseID uint, req SkillRequest) (*model.Skill, error) {
	if _, err := s.requireOwnedCourse(callerID, callerRole, courseID); err != nil {
		return nil, err
	}

	skill := &model.Skill{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
		Order:       req.Order,
	}
	if err := s.SkillRepo.Create(skill); err != nil {
		return nil, err
	}
	return skill, nil
}

func (s *CatalogService) UpdateSkill(callerID uint, callerRole model.UserRole, skillID uint, req SkillRequest) (*model.Skill, error) {
	skill, err := s.SkillRepo.FindByID(skillID)
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("skill %d: %w", skillID, util.ErrNotFound)
	} else if err != nil {
		return nil, err
	}

	if _, err := s.requireOwnedCourse(callerID, callerRole, skill.CourseID); err != nil {
		return nil, err
	}

	skill.Title = req.Title
	skill.Description = req.Description
	skill.Order = req.Order
	if err := s.SkillRepo.Update(skill); err != nil {
		return nil, err
	}
	return skill, nil
}

// DeleteSkill deletes the skill's tasks first (cascading their progress
// references), then the skill itself.
func (s *CatalogService) DeleteSkill(callerID uint, callerRole model.UserRole, skillID uint) error {
	skill, err := s.SkillRepo.FindByID(skillID)
	if err == gorm.ErrRecordNotFound {
		return fmt.Errorf("skill %d: %w", skillID, util.ErrNotFound)
	} else if err != nil {
		return err
	}

	if _, err := s.requireOwnedCourse(callerID, callerRole, skill.CourseID); err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.deleteSkillCascade(tx, skillID)
	})
}

func (s *CatalogService) CreateTask(callerID uint, callerRole model.UserRole, skillID uint, req TaskRequest) (*model.Task, error) {
	skill, err := s.SkillRepo.FindByID(skillID)
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("skill %d: %w", skillID, util.ErrNotFound)
	} else if err != nil {
		return nil, err
	}

	if _, err := s.requireOwnedCourse(callerID, callerRole, skill.CourseID); err != nil {
		return nil, err
	}

	if len(req.Links) == 0 {
		return nil, fmt.Errorf("a task needs at least one content location: %w", util.ErrValidation)
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = model.TaskContentUpload
	}

	task := &model.Task{
		SkillID:     skillID,
		Title:       req.Title,
		Description: req.Description,
		ContentType: contentType,
		Deadline:    req.Deadline,
		Order:       req.Order,
	}
	for _, link := range req.Links {
		task.Links = append(task.Links, model.TaskLink{URL: link.URL, Label: link.Label})
	}
	if err := s.TaskRepo.Create(task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask rewrites the task's fields and replaces its content locations.
func (s *CatalogService) UpdateTask(callerID uint, callerRole model.UserRole, taskID uint, req TaskRequest) (*model.Task, error) {
	task, err := s.TaskRepo.FindByID(taskID)
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("task %d: %w", taskID, util.ErrNotFound)
	} else if err != nil {
		return nil, err
	}

	skill, err := s.SkillRepo.FindByID(task.SkillID)
	if err != nil {
		return nil, err
	}

	if _, err := s.requireOwnedCourse(callerID, callerRole, skill.CourseID); err != nil {
		return nil, err
	}

	if len(req.Links) == 0 {
		return nil, fmt.Errorf("a task needs at least one content location: %w", util.ErrValidation)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		task.Title = req.Title
		task.Description = req.Description
		if req.ContentType != "" {
			task.ContentType = req.ContentType
		}
		task.Deadline = req.Deadline
		task.Order = req.Order

		if err := tx.Where("task_id = ?", taskID).Delete(&model.TaskLink{}).Error; err != nil {
			return err
		}
		task.Links = nil
		for _, link := range req.Links {
			task.Links = append(task.Links, model.TaskLink{TaskID: taskID, URL: link.URL, Label: link.Label})
		}
		return tx.Save(task).Error
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes the task and purges every reference to it from every
// progress record, then recomputes the touched records' totals. Skipping
// this cascade is exactly how completion counts historically overstated.
func (s *CatalogService) DeleteTask(callerID uint, callerRole model.UserRole, taskID uint) error {
	task, err := s.TaskRepo.FindByID(taskID)
	if err == gorm.ErrRecordNotFound {
		return fmt.Errorf("task %d: %w", taskID, util.ErrNotFound)
	} else if err != nil {
		return err
	}

	skill, err := s.SkillRepo.FindByID(task.SkillID)
	if err != nil {
		return err
	}

	if _, err := s.requireOwnedCourse(callerID, callerRole, skill.CourseID); err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.deleteTaskCascade(tx, taskID, skill.CourseID)
	})
}

func (s *CatalogService) Enroll(userID, courseID uint) error {
	if _, err := s.CourseRepo.FindByID(courseID); err == gorm.ErrRecordNotFound {
		return fmt.Errorf("course %d: %w", courseID, util.ErrNotFound)
	} else if err != nil {
		return err
	}

	enrolled, err := s.CourseRepo.IsEnrolled(s.DB, userID, courseID)
	if err != nil {
		return err
	}
	if enrolled {
		return fmt.Errorf("already enrolled: %w", util.ErrConflict)
	}

	return s.CourseRepo.Enroll(&model.Enrollment{UserID: userID, CourseID: courseID})
}

func (s *CatalogService) Unenroll(userID, courseID uint) error {
	enrolled, err := s.CourseRepo.IsEnrolled(s.DB, userID, courseID)
	if err != nil {
		return err
	}
	if !enrolled {
		return fmt.Errorf("not enrolled: %w", util.ErrNotFound)
	}
	return s.CourseRepo.Unenroll(userID, courseID)
}

func (s *CatalogService) ListEnrolledCourses(userID uint) ([]model.Course, error) {
	return s.CourseRepo.FindEnrolledCourses(userID)
}

func (s *CatalogService) requireOwnedCourse(callerID uint, callerRole model.UserRole, courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("course %d: %w", courseID, util.ErrNotFound)
	} else if err != nil {
		return nil, err
	}

	if callerRole != model.Admin && course.CoachID != callerID {
		return nil, fmt.Errorf("only the course coach may do this: %w", util.ErrForbidden)
	}
	return course, nil
}

func (s *CatalogService) deleteSkillCascade(tx *gorm.DB, skillID uint) error {
	skill, err := s.SkillRepo.FindByID(skillID)
	if err != nil {
		return err
	}

	var tasks []model.Task
	if err := tx.Where("skill_id = ?", skillID).Find(&tasks).Error; err != nil {
		return err
	}
	for _, task := range tasks {
		if err := s.deleteTaskCascade(tx, task.ID, skill.CourseID); err != nil {
			return err
		}
	}

	return tx.Delete(&model.Skill{}, skillID).Error
}

func (s *CatalogService) deleteTaskCascade(tx *gorm.DB, taskID, courseID uint) error {
	// Entries and uploads for this task, across every student.
	var entryIDs []uint
	if err := tx.Model(&model.TaskProgress{}).
		Where("task_id = ?", taskID).
		Pluck("id", &entryIDs).Error; err != nil {
		return err
	}
	if len(entryIDs) > 0 {
		if err := tx.Where("task_progress_id IN ?", entryIDs).Delete(&model.StudentUpload{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", entryIDs).Delete(&model.TaskProgress{}).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("task_id = ?", taskID).Delete(&model.TaskLink{}).Error; err != nil {
		return err
	}
	if err := tx.Delete(&model.Task{}, taskID).Error; err != nil {
		return err
	}

	// Strip the task from the flat completed lists and refresh the derived
	// totals of every record in the course.
	records, err := s.ProgressRepo.FindByCourse(tx, courseID)
	if err != nil {
		return err
	}
	for i := range records {
		record := &records[i]
		filtered := record.CompletedTaskIDs[:0]
		for _, id := range record.CompletedTaskIDs {
			if id != taskID {
				filtered = append(filtered, id)
			}
		}
		record.CompletedTaskIDs = filtered

		if err := recalculateRecord(tx, s.CourseRepo, record); err != nil {
			return err
		}
		if err := tx.Save(record).Error; err != nil {
			return err
		}
	}

	return nil
}

func deleteProgressCascade(tx *gorm.DB, progressID uint) error {
	var entryIDs []uint
	if err := tx.Model(&model.TaskProgress{}).
		Where("progress_id = ?", progressID).
		Pluck("id", &entryIDs).Error; err != nil {
		return err
	}
	if len(entryIDs) > 0 {
		if err := tx.Where("task_progress_id IN ?", entryIDs).Delete(&model.StudentUpload{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", entryIDs).Delete(&model.TaskProgress{}).Error; err != nil {
			return err
		}
	}
	return tx.Delete(&model.ProgressRecord{}, progressID).Error
}
