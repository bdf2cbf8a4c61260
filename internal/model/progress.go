package model

import (
	"time"

	"gorm.io/datatypes"
)

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// ProgressRecord holds per-student-per-course completion state. One row per
// (user, course), enforced by the compound unique index.
//
// CompletedTasksCount, TotalTasks and AverageRating are denormalized: they are
// recomputed from the catalog and the task entries on every read and write,
// never trusted across catalog edits.
type ProgressRecord struct {
	BaseModel
	UserID   uint `gorm:"uniqueIndex:idx_progress_user_course;not null" json:"userId"`
	CourseID uint `gorm:"uniqueIndex:idx_progress_user_course;not null" json:"courseId"`

	// CompletedTaskIDs is the legacy flat representation kept alongside the
	// detailed TaskProgress entries. See the reconciliation notes in DESIGN.md.
	CompletedTaskIDs datatypes.JSONSlice[uint] `gorm:"type:json" json:"completedTaskIds"`

	CompletedTasksCount int            `gorm:"default:0" json:"completedTasksCount"`
	TotalTasks          int            `gorm:"default:0" json:"totalTasks"`
	AverageRating       float64        `gorm:"default:0" json:"averageRating"`
	LastActivity        time.Time      `json:"lastActivity"`
	TaskProgress        []TaskProgress `gorm:"foreignKey:ProgressID" json:"taskProgress,omitempty"`
}

func (ProgressRecord) TableName() string {
	return "progress_records"
}

// TaskProgress is the submission lifecycle state for one task inside a
// progress record. At most one entry per (progress, task).
type TaskProgress struct {
	BaseModel
	ProgressID uint `gorm:"uniqueIndex:idx_task_progress_entry;not null" json:"progressId"`
	TaskID     uint `gorm:"uniqueIndex:idx_task_progress_entry;not null" json:"taskId"`

	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	SubmittedForReview bool       `gorm:"default:false" json:"submittedForReview"`
	SubmittedAt        *time.Time `json:"submittedAt,omitempty"`

	// Rating, feedback and rated-at are written together; writing a rating
	// clears SubmittedForReview.
	CoachRating   *int       `json:"coachRating,omitempty"`
	CoachFeedback string     `gorm:"type:text" json:"coachFeedback"`
	CoachRatedAt  *time.Time `json:"coachRatedAt,omitempty"`

	Reviewed       bool         `gorm:"default:false" json:"reviewed"`
	Approved       ReviewStatus `gorm:"size:10;default:'pending'" json:"approved"`
	ReviewedAt     *time.Time   `json:"reviewedAt,omitempty"`
	ReviewFeedback string       `gorm:"type:text" json:"reviewFeedback"`

	// SeenByStudent may only become true once Reviewed is true; it drives the
	// "new feedback" notification.
	SeenByStudent bool `gorm:"default:false" json:"seenByStudent"`

	Uploads []StudentUpload `gorm:"foreignKey:TaskProgressID" json:"uploads,omitempty"`
}

func (TaskProgress) TableName() string {
	return "task_progress"
}

// StudentUpload rows are append-only.
type StudentUpload struct {
	BaseModel
	TaskProgressID uint      `gorm:"index;not null" json:"taskProgressId"`
	URL            string    `gorm:"size:512;not null" json:"url"`
	OriginalName   string    `gorm:"size:255" json:"originalName"`
	UploadedAt     time.Time `json:"uploadedAt"`
}

func (StudentUpload) TableName() string {
	return "student_uploads"
}
