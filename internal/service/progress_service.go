package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"time"

	"github.com/Youssef-Elbanna/Ping-Gamify/internal/config"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/model"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/repository"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/util"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProgressService struct {
	DB           *gorm.DB
	ProgressRepo *repository.ProgressRepository
	CourseRepo   *repository.CourseRepository
	TaskRepo     *repository.TaskRepository
	Badges       *BadgeService
	Storage      *StorageService
	Cfg          *config.Config
}

func NewProgressService(
	progressRepo *repository.ProgressRepository,
	courseRepo *repository.CourseRepository,
	taskRepo *repository.TaskRepository,
	badges *BadgeService,
	storage *StorageService,
	cfg *config.Config,
	db *gorm.DB,
) *ProgressService {
	return &ProgressService{
		DB:           db,
		ProgressRepo: progressRepo,
		CourseRepo:   courseRepo,
		TaskRepo:     taskRepo,
		Badges:       badges,
		Storage:      storage,
		Cfg:          cfg,
	}
}

// ProgressSummary is the read model for a progress record. Totals are always
// freshly derived, never the possibly stale stored values.
type ProgressSummary struct {
	CourseID             uint                 `json:"courseId"`
	CompletedTasksCount  int                  `json:"completedTasksCount"`
	TotalTasks           int                  `json:"totalTasks"`
	CompletionPercentage int                  `json:"completionPercentage"`
	AverageRating        float64              `json:"averageRating"`
	LastActivity         time.Time            `json:"lastActivity"`
	CompletedTaskIDs     []uint               `json:"completedTaskIds"`
	TaskProgress         []model.TaskProgress `json:"taskProgress"`
}

type CompleteTaskResult struct {
	Progress  *ProgressSummary `json:"progress"`
	NewBadges []model.Badge    `json:"newBadges"`
}

// SubmissionFile is one uploaded file of a task submission.
type SubmissionFile struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// CompleteTask marks a task completed for the student. Idempotent: completing
// an already completed task is a no-op that still refreshes the derived
// totals. Triggers badge evaluation and reports newly granted badges.
func (s *ProgressService) CompleteTask(userID, courseID, taskID uint) (*CompleteTaskResult, error) {
	result := &CompleteTaskResult{}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		record, entry, err := s.loadForMutation(tx, userID, courseID, taskID)
		if err != nil {
			return err
		}

		now := time.Now()
		if !entry.Completed {
			entry.Completed = true
			entry.CompletedAt = &now
			if err := s.ProgressRepo.SaveEntry(tx, entry); err != nil {
				return err
			}
		}

		if !containsID(record.CompletedTaskIDs, taskID) {
			record.CompletedTaskIDs = append(record.CompletedTaskIDs, taskID)
		}

		if err := s.recalculate(tx, record); err != nil {
			return err
		}
		record.LastActivity = now
		if err := s.ProgressRepo.Save(tx, record); err != nil {
			return err
		}

		badges, err := s.Badges.EvaluateForUser(tx, userID)
		if err != nil {
			return err
		}
		result.NewBadges = badges
		result.Progress = s.summarize(tx, record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SubmitTask appends the uploaded files to the task's submission history and
// flags it for coach review. It does NOT mark the task completed.
func (s *ProgressService) SubmitTask(ctx context.Context, userID, courseID, taskID uint, files []SubmissionFile) (*model.TaskProgress, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("at least one file is required: %w", util.ErrValidation)
	}
	if len(files) > s.Cfg.Upload.MaxFiles {
		return nil, fmt.Errorf("at most %d files per submission: %w", s.Cfg.Upload.MaxFiles, util.ErrValidation)
	}
	maxBytes := int64(s.Cfg.Upload.MaxFileSizeMB) << 20
	for _, f := range files {
		if f.Size > maxBytes {
			return nil, fmt.Errorf("file %s exceeds the %dMB limit: %w", f.Name, s.Cfg.Upload.MaxFileSizeMB, util.ErrValidation)
		}
	}

	// Upload to the blob store first; only the returned locations are
	// persisted.
	now := time.Now()
	uploads := make([]model.StudentUpload, 0, len(files))
	for _, f := range files {
		object := fmt.Sprintf("submissions/%d/%d/%s%s", userID, taskID, uuid.New().String(), filepath.Ext(f.Name))
		url, err := s.Storage.Upload(ctx, object, f.Reader, f.Size, f.ContentType)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, model.StudentUpload{
			URL:          url,
			OriginalName: f.Name,
			UploadedAt:   now,
		})
	}

	var saved *model.TaskProgress
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		record, entry, err := s.loadForMutation(tx, userID, courseID, taskID)
		if err != nil {
			return err
		}

		entry.SubmittedForReview = true
		entry.SubmittedAt = &now
		if err := s.ProgressRepo.SaveEntry(tx, entry); err != nil {
			return err
		}
		for i := range uploads {
			uploads[i].TaskProgressID = entry.ID
			if err := tx.Create(&uploads[i]).Error; err != nil {
				return err
			}
		}
		entry.Uploads = append(entry.Uploads, uploads...)

		if err := s.recalculate(tx, record); err != nil {
			return err
		}
		record.LastActivity = now
		if err := s.ProgressRepo.Save(tx, record); err != nil {
			return err
		}

		saved = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// RateTask sets the coach rating for a submitted task. Only the course's
// owning coach (or an admin) may rate; the rating clears the review flag.
func (s *ProgressService) RateTask(callerID uint, callerRole model.UserRole, courseID, studentID, taskID uint, rating int, feedback string) (*ProgressSummary, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", util.ErrValidation)
	}

	if err := s.requireCourseOwner(callerID, callerRole, courseID); err != nil {
		return nil, err
	}

	var summary *ProgressSummary
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		record, err := s.ProgressRepo.FindByUserAndCourse(tx, studentID, courseID)
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("no progress for student %d in course %d: %w", studentID, courseID, util.ErrNotFound)
		} else if err != nil {
			return err
		}

		entry, err := s.ProgressRepo.FindEntry(tx, record.ID, taskID)
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("no submission for task %d: %w", taskID, util.ErrNotFound)
		} else if err != nil {
			return err
		}

		now := time.Now()
		entry.CoachRating = &rating
		entry.CoachFeedback = feedback
		entry.CoachRatedAt = &now
		entry.SubmittedForReview = false
		if err := s.ProgressRepo.SaveEntry(tx, entry); err != nil {
			return err
		}

		if err := s.recalculate(tx, record); err != nil {
			return err
		}
		record.LastActivity = now
		if err := s.ProgressRepo.Save(tx, record); err != nil {
			return err
		}

		summary = s.summarize(tx, record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// ReviewTask records a coach review verdict. Resets the seen flag so the
// student is notified of the new feedback.
func (s *ProgressService) ReviewTask(callerID uint, callerRole model.UserRole, courseID, studentID, taskID uint, approved bool, feedback string) error {
	if err := s.requireCourseOwner(callerID, callerRole, courseID); err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		record, err := s.ProgressRepo.FindByUserAndCourse(tx, studentID, courseID)
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("no progress for student %d in course %d: %w", studentID, courseID, util.ErrNotFound)
		} else if err != nil {
			return err
		}

		entry, err := s.ProgressRepo.FindEntry(tx, record.ID, taskID)
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("no submission for task %d: %w", taskID, util.ErrNotFound)
		} else if err != nil {
			return err
		}

		now := time.Now()
		entry.Reviewed = true
		if approved {
			entry.Approved = model.ReviewApproved
		} else {
			entry.Approved = model.ReviewRejected
		}
		entry.ReviewedAt = &now
		entry.ReviewFeedback = feedback
		entry.SeenByStudent = false
		if err := s.ProgressRepo.SaveEntry(tx, entry); err != nil {
			return err
		}

		record.LastActivity = now
		return s.ProgressRepo.Save(tx, record)
	})
}

// MarkFeedbackSeen flips the seen flag on every reviewed-but-unseen entry.
// Persists only when something actually changed.
func (s *ProgressService) MarkFeedbackSeen(userID, courseID uint) (int, error) {
	changed := 0
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		record, err := s.ProgressRepo.FindByUserAndCourse(tx, userID, courseID)
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("no progress for course %d: %w", courseID, util.ErrNotFound)
		} else if err != nil {
			return err
		}

		for i := range record.TaskProgress {
			entry := &record.TaskProgress[i]
			if entry.Reviewed && !entry.SeenByStudent {
				entry.SeenByStudent = true
				if err := s.ProgressRepo.SaveEntry(tx, entry); err != nil {
					return err
				}
				changed++
			}
		}

		if changed == 0 {
			return nil
		}
		record.LastActivity = time.Now()
		return s.ProgressRepo.Save(tx, record)
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// CountUnseenFeedback drives the "new feedback" notification dot.
func (s *ProgressService) CountUnseenFeedback(userID uint) (int64, error) {
	var count int64
	err := s.DB.Model(&model.TaskProgress{}).
		Joins("JOIN progress_records ON progress_records.id = task_progress.progress_id").
		Where("progress_records.user_id = ? AND task_progress.reviewed = ? AND task_progress.seen_by_student = ?",
			userID, true, false).
		Count(&count).Error
	return count, err
}

// GetProgress returns the student's progress for a course with totals derived
// from the current catalog. A missing record is not created on read: the
// summary is computed against the live catalog with zero completions.
func (s *ProgressService) GetProgress(userID, courseID uint) (*ProgressSummary, error) {
	var summary *ProgressSummary
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		record, err := s.ProgressRepo.FindByUserAndCourse(tx, userID, courseID)
		if err == gorm.ErrRecordNotFound {
			total, err := s.CourseRepo.CountTasks(tx, courseID)
			if err != nil {
				return err
			}
			summary = &ProgressSummary{
				CourseID:         courseID,
				TotalTasks:       int(total),
				CompletedTaskIDs: []uint{},
				TaskProgress:     []model.TaskProgress{},
			}
			return nil
		} else if err != nil {
			return err
		}

		// Derived totals are recomputed on every read; catalog edits since
		// the last write must never leak stale counts.
		if err := s.recalculate(tx, record); err != nil {
			return err
		}
		if err := s.ProgressRepo.Save(tx, record); err != nil {
			return err
		}

		summary = s.summarize(tx, record)
		summary.TaskProgress = record.TaskProgress
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// ListMyProgress returns a summary per enrolled course the student has touched,
// with totals refreshed against the live catalog.
func (s *ProgressService) ListMyProgress(userID uint) ([]ProgressSummary, error) {
	var summaries []ProgressSummary
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		records, err := s.ProgressRepo.FindByUser(tx, userID)
		if err != nil {
			return err
		}
		summaries = make([]ProgressSummary, 0, len(records))
		for i := range records {
			if err := s.recalculate(tx, &records[i]); err != nil {
				return err
			}
			if err := s.ProgressRepo.Save(tx, &records[i]); err != nil {
				return err
			}
			summaries = append(summaries, *s.summarize(tx, &records[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// GetCourseProgress lists every student's progress in a course, for the
// owning coach.
func (s *ProgressService) GetCourseProgress(callerID uint, callerRole model.UserRole, courseID uint) ([]model.ProgressRecord, error) {
	if err := s.requireCourseOwner(callerID, callerRole, courseID); err != nil {
		return nil, err
	}

	var records []model.ProgressRecord
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		records, err = s.ProgressRepo.FindByCourse(tx, courseID)
		if err != nil {
			return err
		}
		for i := range records {
			if err := s.recalculate(tx, &records[i]); err != nil {
				return err
			}
			if err := s.ProgressRepo.Save(tx, &records[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// loadForMutation validates the (user, course, task) triple and lazily
// creates the progress record and task entry inside the caller's transaction.
func (s *ProgressService) loadForMutation(tx *gorm.DB, userID, courseID, taskID uint) (*model.ProgressRecord, *model.TaskProgress, error) {
	taskCourse, err := s.TaskRepo.CourseID(tx, taskID)
	if err != nil {
		return nil, nil, err
	}
	if taskCourse == 0 {
		return nil, nil, fmt.Errorf("task %d: %w", taskID, util.ErrNotFound)
	}
	if taskCourse != courseID {
		return nil, nil, fmt.Errorf("task %d does not belong to course %d: %w", taskID, courseID, util.ErrValidation)
	}

	enrolled, err := s.CourseRepo.IsEnrolled(tx, userID, courseID)
	if err != nil {
		return nil, nil, err
	}
	if !enrolled {
		return nil, nil, fmt.Errorf("not enrolled in course %d: %w", courseID, util.ErrForbidden)
	}

	record, err := s.ProgressRepo.FindByUserAndCourse(tx, userID, courseID)
	if err == gorm.ErrRecordNotFound {
		record = &model.ProgressRecord{
			UserID:           userID,
			CourseID:         courseID,
			CompletedTaskIDs: datatypes.JSONSlice[uint]{},
			LastActivity:     time.Now(),
		}
		if err := tx.Create(record).Error; err != nil {
			return nil, nil, err
		}
	} else if err != nil {
		return nil, nil, err
	}

	entry, err := s.ProgressRepo.FindEntry(tx, record.ID, taskID)
	if err == gorm.ErrRecordNotFound {
		entry = &model.TaskProgress{
			ProgressID: record.ID,
			TaskID:     taskID,
			Approved:   model.ReviewPending,
		}
		if err := tx.Create(entry).Error; err != nil {
			return nil, nil, err
		}
	} else if err != nil {
		return nil, nil, err
	}

	return record, entry, nil
}

func (s *ProgressService) recalculate(tx *gorm.DB, record *model.ProgressRecord) error {
	return recalculateRecord(tx, s.CourseRepo, record)
}

// recalculateRecord is the single derivation routine for every denormalized
// field on a progress record: total tasks from the live catalog, the
// completed set filtered to live tasks, and the average rating over rated
// entries. It is a full recomputation on purpose; incremental updates drift
// when the catalog changes under concurrent edits. Every caller that mutates
// a record or the catalog goes through here, never a hand-rolled copy.
func recalculateRecord(tx *gorm.DB, courses *repository.CourseRepository, record *model.ProgressRecord) error {
	liveIDs, err := courses.TaskIDs(tx, record.CourseID)
	if err != nil {
		return err
	}
	live := make(map[uint]bool, len(liveIDs))
	for _, id := range liveIDs {
		live[id] = true
	}

	var entries []model.TaskProgress
	if err := tx.Where("progress_id = ?", record.ID).Order("task_id ASC").Find(&entries).Error; err != nil {
		return err
	}

	// The flat completed list and the detailed entries are kept in lockstep:
	// completion is the union of both, restricted to tasks still in the
	// catalog.
	completed := make(map[uint]bool)
	for _, id := range record.CompletedTaskIDs {
		if live[id] {
			completed[id] = true
		}
	}

	ratingSum := 0
	ratingCount := 0
	for _, entry := range entries {
		if entry.Completed && live[entry.TaskID] {
			completed[entry.TaskID] = true
		}
		if entry.CoachRating != nil {
			ratingSum += *entry.CoachRating
			ratingCount++
		}
	}

	flat := make(datatypes.JSONSlice[uint], 0, len(completed))
	for _, id := range liveIDs {
		if completed[id] {
			flat = append(flat, id)
		}
	}

	record.CompletedTaskIDs = flat
	record.CompletedTasksCount = len(flat)
	record.TotalTasks = len(liveIDs)
	if ratingCount == 0 {
		record.AverageRating = 0
	} else {
		record.AverageRating = math.Round(float64(ratingSum)/float64(ratingCount)*10) / 10
	}
	return nil
}

func (s *ProgressService) requireCourseOwner(callerID uint, callerRole model.UserRole, courseID uint) error {
	course, err := s.CourseRepo.FindByID(courseID)
	if err == gorm.ErrRecordNotFound {
		return fmt.Errorf("course %d: %w", courseID, util.ErrNotFound)
	} else if err != nil {
		return err
	}

	if callerRole != model.Admin && course.CoachID != callerID {
		return fmt.Errorf("only the course coach may do this: %w", util.ErrForbidden)
	}
	return nil
}

func (s *ProgressService) summarize(tx *gorm.DB, record *model.ProgressRecord) *ProgressSummary {
	return &ProgressSummary{
		CourseID:             record.CourseID,
		CompletedTasksCount:  record.CompletedTasksCount,
		TotalTasks:           record.TotalTasks,
		CompletionPercentage: CompletionPercentage(record.CompletedTasksCount, record.TotalTasks),
		AverageRating:        record.AverageRating,
		LastActivity:         record.LastActivity,
		CompletedTaskIDs:     record.CompletedTaskIDs,
		TaskProgress:         record.TaskProgress,
	}
}

// CompletionPercentage is 0 when there are no tasks, avoiding the division
// by zero the percentage would otherwise hit on an empty course.
func CompletionPercentage(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

func containsID(ids []uint, id uint) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
