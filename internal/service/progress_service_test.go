package service

import (
	"context"
	"strings"
	"testing"

	"github.com/Youssef-Elbanna/Ping-Gamify/internal/model"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteTaskDerivesTotals(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	student := seedUser(t, f, "student@example.com", model.Student)
	course, taskIDs := seedCourse(t, f, coach.ID, 4)
	enroll(t, f, student.ID, course.ID)

	result, err := f.progressService.CompleteTask(student.ID, course.ID, taskIDs[0])
	require.NoError(t, err)

	assert.Equal(t, 1, result.Progress.CompletedTasksCount)
	assert.Equal(t, 4, result.Progress.TotalTasks)
	assert.Equal(t, 25, result.Progress.CompletionPercentage)
	assert.Equal(t, []uint{taskIDs[0]}, []uint(result.Progress.CompletedTaskIDs))

	// Completing the same task again changes nothing.
	result, err = f.progressService.CompleteTask(student.ID, course.ID, taskIDs[0])
	require.NoError(t, err)
	assert.Equal(t, 1, result.Progress.CompletedTasksCount)
	assert.Len(t, result.Progress.CompletedTaskIDs, 1)
}

func TestCompleteTaskRequiresEnrollment(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	student := seedUser(t, f, "student@example.com", model.Student)
	course, taskIDs := seedCourse(t, f, coach.ID, 1)

	_, err := f.progressService.CompleteTask(student.ID, course.ID, taskIDs[0])
	require.ErrorIs(t, err, util.ErrForbidden)
}

func TestCompleteTaskRejectsForeignTask(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	student := seedUser(t, f, "student@example.com", model.Student)
	course, _ := seedCourse(t, f, coach.ID, 1)
	_, otherTaskIDs := seedCourse(t, f, coach.ID, 1)
	enroll(t, f, student.ID, course.ID)

	_, err := f.progressService.CompleteTask(student.ID, course.ID, otherTaskIDs[0])
	require.ErrorIs(t, err, util.ErrValidation)

	_, err = f.progressService.CompleteTask(student.ID, course.ID, 9999)
	require.ErrorIs(t, err, util.ErrNotFound)
}

func TestGetProgressWithoutRecord(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	student := seedUser(t, f, "student@example.com", model.Student)
	course, _ := seedCourse(t, f, coach.ID, 3)
	enroll(t, f, student.ID, course.ID)

	summary, err := f.progressService.GetProgress(student.ID, course.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.CompletedTasksCount)
	assert.Equal(t, 3, summary.TotalTasks)
	assert.Equal(t, 0, summary.CompletionPercentage)
	assert.Empty(t, summary.CompletedTaskIDs)

	// A read never creates the record.
	var count int64
	require.NoError(t, f.db.Model(&model.ProgressRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetProgressTracksCatalogChanges(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	student := seedUser(t, f, "student@example.com", model.Student)
	course, taskIDs := seedCourse(t, f, coach.ID, 4)
	enroll(t, f, student.ID, course.ID)

	_, err := f.progressService.CompleteTask(student.ID, course.ID, taskIDs[0])
	require.NoError(t, err)
	_, err = f.progressService.CompleteTask(student.ID, course.ID, taskIDs[1])
	require.NoError(t, err)

	// Deleting a completed task must shrink both the total and the completed
	// count on the next read.
	require.NoError(t, f.catalog.DeleteTask(coach.ID, model.Coach, taskIDs[0]))

	summary, err := f.progressService.GetProgress(student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CompletedTasksCount)
	assert.Equal(t, 3, summary.TotalTasks)
	assert.NotContains(t, []uint(summary.CompletedTaskIDs), taskIDs[0])
}

func TestRateTaskAverages(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	student := seedUser(t, f, "student@example.com", model.Student)
	course, taskIDs := seedCourse(t, f, coach.ID, 3)
	enroll(t, f, student.ID, course.ID)

	for _, id := range taskIDs[:2] {
		_, err := f.progressService.CompleteTask(student.ID, course.ID, id)
		require.NoError(t, err)
	}

	// Unrated entries contribute an average of zero.
	summary, err := f.progressService.GetProgress(student.ID, course.ID)
	require.NoError(t, err)
	assert.Zero(t, summary.AverageRating)

	_, err = f.progressService.RateTask(coach.ID, model.Coach, course.ID, student.ID, taskIDs[0], 4, "solid")
	require.NoError(t, err)
	summary, err = f.progressService.RateTask(coach.ID, model.Coach, course.ID, student.ID, taskIDs[1], 5, "great")
	require.NoError(t, err)

	assert.InDelta(t, 4.5, summary.AverageRating, 0.001)
}

func TestRateTaskGuards(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	other := seedUser(t, f, "other@example.com", model.Coach)
	student := seedUser(t, f, "student@example.com", model.Student)
	course, taskIDs := seedCourse(t, f, coach.ID, 1)
	enroll(t, f, student.ID, course.ID)

	_, err := f.progressService.RateTask(coach.ID, model.Coach, course.ID, student.ID, taskIDs[0], 0, "")
	require.ErrorIs(t, err, util.ErrValidation)
	_, err = f.progressService.RateTask(coach.ID, model.Coach, course.ID, student.ID, taskIDs[0], 6, "")
	require.ErrorIs(t, err, util.ErrValidation)

	// Only the owning coach may rate.
	_, err = f.progressService.RateTask(other.ID, model.Coach, course.ID, student.ID, taskIDs[0], 3, "")
	require.ErrorIs(t, err, util.ErrForbidden)

	// No progress record yet.
	_, err = f.progressService.RateTask(coach.ID, model.Coach, course.ID, student.ID, taskIDs[0], 3, "")
	require.ErrorIs(t, err, util.ErrNotFound)
}

func TestSubmitTask(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	student := seedUser(t, f, "student@example.com", model.Student)
	course, taskIDs := seedCourse(t, f, coach.ID, 1)
	enroll(t, f, student.ID, course.ID)

	ctx := context.Background()

	_, err := f.progressService.SubmitTask(ctx, student.ID, course.ID, taskIDs[0], nil)
	require.ErrorIs(t, err, util.ErrValidation)

	tooMany := make([]SubmissionFile, f.cfg.Upload.MaxFiles+1)
	for i := range tooMany {
		tooMany[i] = SubmissionFile{Name: "a.mp4", Size: 1, Reader: strings.NewReader("x")}
	}
	_, err = f.progressService.SubmitTask(ctx, student.ID, course.ID, taskIDs[0], tooMany)
	require.ErrorIs(t, err, util.ErrValidation)

	_, err = f.progressService.SubmitTask(ctx, student.ID, course.ID, taskIDs[0], []SubmissionFile{
		{Name: "huge.mp4", Size: int64(f.cfg.Upload.MaxFileSizeMB+1) << 20, Reader: strings.NewReader("x")},
	})
	require.ErrorIs(t, err, util.ErrValidation)

	content := "swing footage"
	entry, err := f.progressService.SubmitTask(ctx, student.ID, course.ID, taskIDs[0], []SubmissionFile{
		{Name: "swing.mp4", Size: int64(len(content)), ContentType: "video/mp4", Reader: strings.NewReader(content)},
	})
	require.NoError(t, err)

	assert.True(t, entry.SubmittedForReview)
	assert.False(t, entry.Completed, "submission alone must not complete the task")
	require.Len(t, entry.Uploads, 1)
	assert.Equal(t, "swing.mp4", entry.Uploads[0].OriginalName)
	assert.NotEmpty(t, entry.Uploads[0].URL)
}

func TestReviewAndFeedbackSeen(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	student := seedUser(t, f, "student@example.com", model.Student)
	course, taskIDs := seedCourse(t, f, coach.ID, 1)
	enroll(t, f, student.ID, course.ID)

	_, err := f.progressService.CompleteTask(student.ID, course.ID, taskIDs[0])
	require.NoError(t, err)

	require.NoError(t, f.progressService.ReviewTask(coach.ID, model.Coach, course.ID, student.ID, taskIDs[0], true, "nice form"))

	count, err := f.progressService.CountUnseenFeedback(student.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	record, err := f.progress.FindByUserAndCourse(f.db, student.ID, course.ID)
	require.NoError(t, err)
	require.Len(t, record.TaskProgress, 1)
	assert.True(t, record.TaskProgress[0].Reviewed)
	assert.Equal(t, model.ReviewApproved, record.TaskProgress[0].Approved)
	assert.False(t, record.TaskProgress[0].SeenByStudent)

	changed, err := f.progressService.MarkFeedbackSeen(student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	count, err = f.progressService.CountUnseenFeedback(student.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Nothing left to mark.
	changed, err = f.progressService.MarkFeedbackSeen(student.ID, course.ID)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestListMyProgress(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	student := seedUser(t, f, "student@example.com", model.Student)
	courseA, tasksA := seedCourse(t, f, coach.ID, 2)
	courseB, tasksB := seedCourse(t, f, coach.ID, 4)
	enroll(t, f, student.ID, courseA.ID)
	enroll(t, f, student.ID, courseB.ID)

	_, err := f.progressService.CompleteTask(student.ID, courseA.ID, tasksA[0])
	require.NoError(t, err)
	_, err = f.progressService.CompleteTask(student.ID, courseB.ID, tasksB[0])
	require.NoError(t, err)

	summaries, err := f.progressService.ListMyProgress(student.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byCourse := map[uint]ProgressSummary{}
	for _, s := range summaries {
		byCourse[s.CourseID] = s
	}
	assert.Equal(t, 50, byCourse[courseA.ID].CompletionPercentage)
	assert.Equal(t, 25, byCourse[courseB.ID].CompletionPercentage)
}

func TestGetCourseProgressCoachOnly(t *testing.T) {
	f := newFixture(t)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	other := seedUser(t, f, "other@example.com", model.Coach)
	admin := seedUser(t, f, "admin@example.com", model.Admin)
	student := seedUser(t, f, "student@example.com", model.Student)
	course, taskIDs := seedCourse(t, f, coach.ID, 2)
	enroll(t, f, student.ID, course.ID)

	_, err := f.progressService.CompleteTask(student.ID, course.ID, taskIDs[0])
	require.NoError(t, err)

	_, err = f.progressService.GetCourseProgress(other.ID, model.Coach, course.ID)
	require.ErrorIs(t, err, util.ErrForbidden)

	records, err := f.progressService.GetCourseProgress(coach.ID, model.Coach, course.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].CompletedTasksCount)

	// Admin bypasses ownership.
	_, err = f.progressService.GetCourseProgress(admin.ID, model.Admin, course.ID)
	require.NoError(t, err)
}

func TestCompletionPercentage(t *testing.T) {
	assert.Equal(t, 0, CompletionPercentage(0, 0))
	assert.Equal(t, 0, CompletionPercentage(3, 0))
	assert.Equal(t, 25, CompletionPercentage(1, 4))
	assert.Equal(t, 67, CompletionPercentage(2, 3))
	assert.Equal(t, 100, CompletionPercentage(3, 3))
}
