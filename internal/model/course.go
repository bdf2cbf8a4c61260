package model

import "time"

type TaskContentType string

const (
	TaskContentVideo    TaskContentType = "video"
	TaskContentArticle  TaskContentType = "article"
	TaskContentExercise TaskContentType = "exercise"
	TaskContentUpload   TaskContentType = "upload"
)

// Course is the top-level curriculum unit, owned by a coach.
type Course struct {
	BaseModel
	Title       string  `gorm:"size:255;not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	CoachID     uint    `gorm:"index;not null" json:"coachId"`
	Skills      []Skill `gorm:"foreignKey:CourseID" json:"skills,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// Skill groups tasks inside a course.
type Skill struct {
	BaseModel
	CourseID    uint   `gorm:"index;not null" json:"courseId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Order       int    `gorm:"default:0" json:"order"`
	Tasks       []Task `gorm:"foreignKey:SkillID" json:"tasks,omitempty"`
}

func (Skill) TableName() string {
	return "skills"
}

// Task is a unit of work with one or more content locations and an optional deadline.
type Task struct {
	BaseModel
	SkillID     uint            `gorm:"index;not null" json:"skillId"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	ContentType TaskContentType `gorm:"size:20;default:'upload'" json:"contentType"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
	Order       int             `gorm:"default:0" json:"order"`
	Links       []TaskLink      `gorm:"foreignKey:TaskID" json:"links,omitempty"`
}

func (Task) TableName() string {
	return "tasks"
}

type TaskLink struct {
	BaseModel
	TaskID uint   `gorm:"index;not null" json:"taskId"`
	URL    string `gorm:"size:512;not null" json:"url"`
	Label  string `gorm:"size:255" json:"label"`
}

func (TaskLink) TableName() string {
	return "task_links"
}

// Enrollment ties a student to a course. One row per (user, course).
type Enrollment struct {
	BaseModel
	UserID   uint `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"userId"`
	CourseID uint `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"courseId"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
