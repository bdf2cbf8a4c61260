package service

import (
	"testing"

	"github.com/Youssef-Elbanna/Ping-Gamify/internal/model"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskRequiresLink(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	course, err := f.catalog.CreateCourse(coach.ID, CourseRequest{Title: "Backhand"})
	require.NoError(t, err)
	skill, err := f.catalog.CreateSkill(coach.ID, model.Coach, course.ID, SkillRequest{Title: "Topspin"})
	require.NoError(t, err)

	_, err = f.catalog.CreateTask(coach.ID, model.Coach, skill.ID, TaskRequest{Title: "Drill"})
	require.ErrorIs(t, err, util.ErrValidation)
}

func TestCatalogOwnership(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	other := seedUser(t, f, "other@example.com", model.Coach)
	admin := seedUser(t, f, "admin@example.com", model.Admin)
	course, _ := seedCourse(t, f, coach.ID, 1)

	_, err := f.catalog.UpdateCourse(other.ID, model.Coach, course.ID, CourseRequest{Title: "Hijacked"})
	require.ErrorIs(t, err, util.ErrForbidden)

	updated, err := f.catalog.UpdateCourse(admin.ID, model.Admin, course.ID, CourseRequest{Title: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestUpdateTaskReplacesLinks(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	_, taskIDs := seedCourse(t, f, coach.ID, 1)

	_, err := f.catalog.UpdateTask(coach.ID, model.Coach, taskIDs[0], TaskRequest{Title: "Renamed"})
	require.ErrorIs(t, err, util.ErrValidation)

	task, err := f.catalog.UpdateTask(coach.ID, model.Coach, taskIDs[0], TaskRequest{
		Title: "Renamed",
		Links: []TaskLinkRequest{
			{URL: "https://example.com/a", Label: "part 1"},
			{URL: "https://example.com/b", Label: "part 2"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", task.Title)
	assert.Len(t, task.Links, 2)

	var links int64
	require.NoError(t, f.db.Model(&model.TaskLink{}).Where("task_id = ?", taskIDs[0]).Count(&links).Error)
	assert.EqualValues(t, 2, links)
}

func TestEnrollment(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	student := seedUser(t, f, "student@example.com", model.Student)
	course, _ := seedCourse(t, f, coach.ID, 1)

	require.NoError(t, f.catalog.Enroll(student.ID, course.ID))
	require.ErrorIs(t, f.catalog.Enroll(student.ID, course.ID), util.ErrConflict)

	require.ErrorIs(t, f.catalog.Enroll(student.ID, 9999), util.ErrNotFound)

	enrolled, err := f.catalog.ListEnrolledCourses(student.ID)
	require.NoError(t, err)
	assert.Len(t, enrolled, 1)

	require.NoError(t, f.catalog.Unenroll(student.ID, course.ID))
	require.ErrorIs(t, f.catalog.Unenroll(student.ID, course.ID), util.ErrNotFound)
}

func TestReenrollAfterUnenroll(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	student := seedUser(t, f, "student@example.com", model.Student)
	course, _ := seedCourse(t, f, coach.ID, 1)

	require.NoError(t, f.catalog.Enroll(student.ID, course.ID))
	require.NoError(t, f.catalog.Unenroll(student.ID, course.ID))

	// Leaving a course must not block signing up for it again.
	require.NoError(t, f.catalog.Enroll(student.ID, course.ID))

	enrolled, err := f.catalog.ListEnrolledCourses(student.ID)
	require.NoError(t, err)
	assert.Len(t, enrolled, 1)
}

func TestDeleteTaskPurgesProgress(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	student := seedUser(t, f, "student@example.com", model.Student)
	course, taskIDs := seedCourse(t, f, coach.ID, 2)
	enroll(t, f, student.ID, course.ID)

	_, err := f.progressService.CompleteTask(student.ID, course.ID, taskIDs[0])
	require.NoError(t, err)
	_, err = f.progressService.CompleteTask(student.ID, course.ID, taskIDs[1])
	require.NoError(t, err)

	require.NoError(t, f.catalog.DeleteTask(coach.ID, model.Coach, taskIDs[0]))

	record, err := f.progress.FindByUserAndCourse(f.db, student.ID, course.ID)
	require.NoError(t, err)
	assert.NotContains(t, []uint(record.CompletedTaskIDs), taskIDs[0])
	assert.Equal(t, 1, record.CompletedTasksCount)
	assert.Equal(t, 1, record.TotalTasks)

	// No orphaned entries or links.
	var entries int64
	require.NoError(t, f.db.Model(&model.TaskProgress{}).Where("task_id = ?", taskIDs[0]).Count(&entries).Error)
	assert.Zero(t, entries)
	var links int64
	require.NoError(t, f.db.Model(&model.TaskLink{}).Where("task_id = ?", taskIDs[0]).Count(&links).Error)
	assert.Zero(t, links)
}

func TestDeleteSkillCascadesTasks(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	student := seedUser(t, f, "student@example.com", model.Student)
	course, taskIDs := seedCourse(t, f, coach.ID, 2)
	enroll(t, f, student.ID, course.ID)

	_, err := f.progressService.CompleteTask(student.ID, course.ID, taskIDs[0])
	require.NoError(t, err)

	detail, err := f.catalog.GetCourse(course.ID)
	require.NoError(t, err)
	require.Len(t, detail.Skills, 1)

	require.NoError(t, f.catalog.DeleteSkill(coach.ID, model.Coach, detail.Skills[0].ID))

	var tasks int64
	require.NoError(t, f.db.Model(&model.Task{}).Count(&tasks).Error)
	assert.Zero(t, tasks)

	record, err := f.progress.FindByUserAndCourse(f.db, student.ID, course.ID)
	require.NoError(t, err)
	assert.Zero(t, record.CompletedTasksCount)
	assert.Zero(t, record.TotalTasks)
	assert.Empty(t, record.CompletedTaskIDs)
}

func TestDeleteCourseCascade(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	student := seedUser(t, f, "student@example.com", model.Student)
	course, taskIDs := seedCourse(t, f, coach.ID, 2)
	enroll(t, f, student.ID, course.ID)

	_, err := f.progressService.CompleteTask(student.ID, course.ID, taskIDs[0])
	require.NoError(t, err)

	require.NoError(t, f.catalog.DeleteCourse(coach.ID, model.Coach, course.ID))

	for name, m := range map[string]interface{}{
		"skills":      &model.Skill{},
		"tasks":       &model.Task{},
		"task links":  &model.TaskLink{},
		"enrollments": &model.Enrollment{},
		"records":     &model.ProgressRecord{},
		"entries":     &model.TaskProgress{},
	} {
		var count int64
		require.NoError(t, f.db.Model(m).Count(&count).Error)
		assert.Zero(t, count, "expected no %s after course delete", name)
	}

	_, err = f.catalog.GetCourse(course.ID)
	require.ErrorIs(t, err, util.ErrNotFound)
}
