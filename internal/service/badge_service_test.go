package service

import (
	"testing"

	"github.com/Youssef-Elbanna/Ping-Gamify/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedBadge(t *testing.T, f *fixture, name string, threshold int) *model.Badge {
	t.Helper()
	badge := &model.Badge{
		Name:         name,
		CriteriaKind: model.CriteriaTasksCompleted,
		Threshold:    threshold,
	}
	require.NoError(t, f.db.Create(badge).Error)
	return badge
}

func TestBadgeGrantedAtThreshold(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	student := seedUser(t, f, "student@example.com", model.Student)
	course, taskIDs := seedCourse(t, f, coach.ID, 3)
	enroll(t, f, student.ID, course.ID)

	first := seedBadge(t, f, "First Steps", 1)
	third := seedBadge(t, f, "Getting Going", 3)

	result, err := f.progressService.CompleteTask(student.ID, course.ID, taskIDs[0])
	require.NoError(t, err)
	require.Len(t, result.NewBadges, 1)
	assert.Equal(t, first.Name, result.NewBadges[0].Name)

	// Below the next threshold: nothing new.
	result, err = f.progressService.CompleteTask(student.ID, course.ID, taskIDs[1])
	require.NoError(t, err)
	assert.Empty(t, result.NewBadges)

	result, err = f.progressService.CompleteTask(student.ID, course.ID, taskIDs[2])
	require.NoError(t, err)
	require.Len(t, result.NewBadges, 1)
	assert.Equal(t, third.Name, result.NewBadges[0].Name)

	mine, err := f.badgeService.ListUserBadges(student.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestBadgeGrantIdempotent(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	student := seedUser(t, f, "student@example.com", model.Student)
	course, taskIDs := seedCourse(t, f, coach.ID, 1)
	enroll(t, f, student.ID, course.ID)

	seedBadge(t, f, "First Steps", 1)

	_, err := f.progressService.CompleteTask(student.ID, course.ID, taskIDs[0])
	require.NoError(t, err)

	// Re-evaluating with no new completions grants nothing and leaves exactly
	// one grant row.
	granted, err := f.badgeService.EvaluateForUser(f.db, student.ID)
	require.NoError(t, err)
	assert.Empty(t, granted)

	var count int64
	require.NoError(t, f.db.Model(&model.UserBadge{}).Where("user_id = ?", student.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestBadgeIgnoresUnknownCriteria(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	student := seedUser(t, f, "student@example.com", model.Student)
	course, taskIDs := seedCourse(t, f, coach.ID, 1)
	enroll(t, f, student.ID, course.ID)

	require.NoError(t, f.db.Create(&model.Badge{
		Name:         "Streak",
		CriteriaKind: "login_streak",
		Threshold:    1,
	}).Error)

	result, err := f.progressService.CompleteTask(student.ID, course.ID, taskIDs[0])
	require.NoError(t, err)
	assert.Empty(t, result.NewBadges)
}
