package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Youssef-Elbanna/Ping-Gamify/internal/config"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/model"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/repository"
	"github.com/Youssef-Elbanna/Ping-Gamify/pkg/database"
	"github.com/Youssef-Elbanna/Ping-Gamify/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// One named in-memory database per test, shared across the pool's
	// connections.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	db  *gorm.DB
	cfg *config.Config

	users    *repository.UserRepository
	courses  *repository.CourseRepository
	progress *repository.ProgressRepository
	badges   *repository.BadgeRepository
	groups   *repository.GroupRepository

	auth            *AuthService
	catalog         *CatalogService
	badgeService    *BadgeService
	progressService *ProgressService
	groupService    *GroupService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-test-secret-test-secret"
	cfg.JWT.ExpireTime = time.Hour
	cfg.Upload.MaxFileSizeMB = 20
	cfg.Upload.MaxFiles = 5
	cfg.Storage.Type = "local"
	cfg.Storage.LocalPath = t.TempDir()

	users := repository.NewUserRepository(db)
	courses := repository.NewCourseRepository(db)
	skills := repository.NewSkillRepository(db)
	tasks := repository.NewTaskRepository(db)
	progress := repository.NewProgressRepository(db)
	badges := repository.NewBadgeRepository(db)
	groups := repository.NewGroupRepository(db)

	storage := &StorageService{Provider: &LocalStorageProvider{Config: &cfg.Storage}}
	badgeService := NewBadgeService(badges, progress)

	return &fixture{
		db:              db,
		cfg:             cfg,
		users:           users,
		courses:         courses,
		progress:        progress,
		badges:          badges,
		groups:          groups,
		auth:            NewAuthService(users, NewMailService(cfg), nil, cfg),
		catalog:         NewCatalogService(courses, skills, tasks, progress, db),
		badgeService:    badgeService,
		progressService: NewProgressService(progress, courses, tasks, badgeService, storage, cfg, db),
		groupService:    NewGroupService(groups, users, storage, db),
	}
}

func seedUser(t *testing.T, f *fixture, email string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Name:     strings.SplitN(email, "@", 2)[0],
		Email:    email,
		Password: "irrelevant",
		Role:     role,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

// seedCourse builds a course with one skill and taskCount tasks, returning the
// task IDs in creation order.
func seedCourse(t *testing.T, f *fixture, coachID uint, taskCount int) (*model.Course, []uint) {
	t.Helper()

	course, err := f.catalog.CreateCourse(coachID, CourseRequest{Title: "Serve fundamentals"})
	require.NoError(t, err)

	skill, err := f.catalog.CreateSkill(coachID, model.Coach, course.ID, SkillRequest{Title: "Forehand serve"})
	require.NoError(t, err)

	ids := make([]uint, 0, taskCount)
	for i := 0; i < taskCount; i++ {
		task, err := f.catalog.CreateTask(coachID, model.Coach, skill.ID, TaskRequest{
			Title: fmt.Sprintf("Drill %d", i+1),
			Links: []TaskLinkRequest{{URL: "https://example.com/drill", Label: "video"}},
		})
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}
	return course, ids
}

func enroll(t *testing.T, f *fixture, userID, courseID uint) {
	t.Helper()
	require.NoError(t, f.catalog.Enroll(userID, courseID))
}
