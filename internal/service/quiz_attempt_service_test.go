package service

import (
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/util"
	"coursehub_backend/pkg/clock"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMissingQuestionIDs(t *testing.T) {
	q1 := model.QuizQuestion{}
	q1.ID = 1
	q2 := model.QuizQuestion{}
	q2.ID = 2
	q3 := model.QuizQuestion{}
	q3.ID = 3
	questions := []model.QuizQuestion{q1, q2, q3}

	tests := []struct {
		name    string
		answers map[uint][]uint
		want    []uint
	}{
		{
			name:    "all answered",
			answers: map[uint][]uint{1: {10}, 2: {20}, 3: {30}},
			want:    nil,
		},
		{
			name:    "empty selection still counts as answered",
			answers: map[uint][]uint{1: {10}, 2: {}, 3: nil},
			want:    nil,
		},
		{
			name:    "one missing",
			answers: map[uint][]uint{1: {10}, 3: {30}},
			want:    []uint{2},
		},
		{
			name:    "all missing",
			answers: map[uint][]uint{},
			want:    []uint{1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, missingQuestionIDs(questions, tt.answers))
		})
	}
}

func TestAttemptDeadline(t *testing.T) {
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	attempt := &model.QuizAttempt{StartedAt: started}

	t.Run("no time limit", func(t *testing.T) {
		_, limited := attempt.Deadline(nil)
		assert.False(t, limited)
	})

	t.Run("limited", func(t *testing.T) {
		limit := 30
		deadline, limited := attempt.Deadline(&limit)
		assert.True(t, limited)
		assert.Equal(t, started.Add(30*time.Minute), deadline)
	})
}

// 提交时间等于截止时间仍然有效，超过一纳秒即为超时
func TestDeadlineBoundary(t *testing.T) {
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	attempt := &model.QuizAttempt{StartedAt: started}
	limit := 10

	deadline, limited := attempt.Deadline(&limit)
	assert.True(t, limited)

	atDeadline := deadline
	assert.False(t, atDeadline.After(deadline))

	pastDeadline := deadline.Add(time.Nanosecond)
	assert.True(t, pastDeadline.After(deadline))
}

func TestRoundToMinutes(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want int
	}{
		{"zero", 0, 0},
		{"under half a minute rounds down", 29 * time.Second, 0},
		{"over half a minute rounds up", 31 * time.Second, 1},
		{"exact minutes", 12 * time.Minute, 12},
		{"mixed", 9*time.Minute + 45*time.Second, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, roundToMinutes(tt.d))
		})
	}
}

func TestPassedLabel(t *testing.T) {
	assert.Equal(t, "true", passedLabel(true))
	assert.Equal(t, "false", passedLabel(false))
}

func TestAttemptAnswerRoundTrip(t *testing.T) {
	var row model.QuizAttemptAnswer
	row.EncodeSelected([]uint{3, 1, 2})
	assert.Equal(t, []uint{3, 1, 2}, row.Selected())

	var empty model.QuizAttemptAnswer
	assert.Nil(t, empty.Selected())
}

func newAttemptService(gdb *gorm.DB, now time.Time) *QuizAttemptService {
	return NewQuizAttemptService(
		repository.NewQuizRepository(gdb, nil, 0),
		repository.NewAttemptRepository(gdb),
		&clock.Fixed{Time: now},
		gdb,
	)
}

func quizColumns() []string {
	return []string{"id", "course_id", "title", "time_limit", "passing_score", "max_attempts", "is_active"}
}

func attemptColumns() []string {
	return []string{"id", "quiz_id", "user_id", "started_at", "completed_at", "score", "max_score", "time_spent", "is_passed"}
}

func questionColumns() []string {
	return []string{"id", "quiz_id", "question_type", "text", "points", "order", "is_active"}
}

func answerColumns() []string {
	return []string{"id", "question_id", "text", "is_correct", "order"}
}

// 次数用满后再开考被拒，约束检查在行锁内完成
func TestStartAttemptLimitExceeded(t *testing.T) {
	gdb, mock := newMockDB(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newAttemptService(gdb, now)

	mock.ExpectQuery("SELECT \\* FROM `quizzes` WHERE `quizzes`\\.`id` = \\?").
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows(quizColumns()).
			AddRow(7, 1, "期末测验", nil, 60, 1, true))

	earlier := now.Add(-48 * time.Hour)
	done := earlier.Add(20 * time.Minute)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `quiz_attempts` WHERE \\(user_id = \\? AND quiz_id = \\?\\).*FOR UPDATE").
		WithArgs(42, 7).
		WillReturnRows(sqlmock.NewRows(attemptColumns()).
			AddRow("a-1", 7, 42, earlier, done, 8, 10, 20, true))
	mock.ExpectRollback()

	_, err := svc.StartAttempt(42, 7)
	assert.ErrorIs(t, err, util.ErrAttemptLimitExceeded)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// 超过截止时间仍未提交的进行中记录，在下一次开考时按 0 分自动关闭，
// 随后的新答题正常建立
func TestStartAttemptAutoClosesExpired(t *testing.T) {
	gdb, mock := newMockDB(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newAttemptService(gdb, now)

	mock.ExpectQuery("SELECT \\* FROM `quizzes` WHERE `quizzes`\\.`id` = \\?").
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows(quizColumns()).
			AddRow(7, 1, "期末测验", 10, 60, 3, true))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `quiz_attempts` WHERE \\(user_id = \\? AND quiz_id = \\?\\).*FOR UPDATE").
		WithArgs(42, 7).
		WillReturnRows(sqlmock.NewRows(attemptColumns()).
			AddRow("a-old", 7, 42, now.Add(-30*time.Minute), nil, 0, 10, 0, false))
	mock.ExpectExec("UPDATE `quiz_attempts` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT \\* FROM `quiz_questions` WHERE \\(quiz_id = \\? AND is_active = \\?\\)").
		WithArgs(7, true).
		WillReturnRows(sqlmock.NewRows(questionColumns()).
			AddRow(1, 7, "true_false", "Go 有泛型吗", 10, 1, true))
	mock.ExpectExec("INSERT INTO `quiz_attempts`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT \\* FROM `quiz_answers` WHERE question_id IN").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(answerColumns()).
			AddRow(11, 1, "是", true, 1).
			AddRow(12, 1, "否", false, 2))

	view, err := svc.StartAttempt(42, 7)
	require.NoError(t, err)
	assert.Equal(t, 10, view.MaxScore)
	require.NotNil(t, view.ExpiresAt)
	assert.True(t, view.ExpiresAt.Equal(now.Add(10*time.Minute)))
	require.Len(t, view.Questions, 1)
	assert.Len(t, view.Questions[0].Options, 2)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// 限时 10 分钟、第 11 分钟提交：拒绝并保持进行中，不产生任何写入
func TestSubmitAttemptPastDeadline(t *testing.T) {
	gdb, mock := newMockDB(t)
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newAttemptService(gdb, started.Add(11*time.Minute))

	mock.ExpectQuery("SELECT \\* FROM `quiz_attempts` WHERE id = \\?").
		WithArgs("a-1", 1).
		WillReturnRows(sqlmock.NewRows(attemptColumns()).
			AddRow("a-1", 7, 42, started, nil, 0, 10, 0, false))
	mock.ExpectQuery("SELECT \\* FROM `quizzes` WHERE `quizzes`\\.`id` = \\?").
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows(quizColumns()).
			AddRow(7, 1, "期末测验", 10, 60, 3, true))

	_, err := svc.SubmitAttempt(42, "a-1", map[uint][]uint{1: {11}})
	assert.ErrorIs(t, err, util.ErrAttemptTimeExpired)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// 提交时间恰好等于截止时间仍然有效，评分、判定通过并原子落盘
func TestSubmitAttemptGradesAtDeadline(t *testing.T) {
	gdb, mock := newMockDB(t)
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	now := started.Add(10 * time.Minute)
	svc := newAttemptService(gdb, now)

	mock.ExpectQuery("SELECT \\* FROM `quiz_attempts` WHERE id = \\?").
		WithArgs("a-1", 1).
		WillReturnRows(sqlmock.NewRows(attemptColumns()).
			AddRow("a-1", 7, 42, started, nil, 0, 10, 0, false))
	mock.ExpectQuery("SELECT \\* FROM `quizzes` WHERE `quizzes`\\.`id` = \\?").
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows(quizColumns()).
			AddRow(7, 1, "期末测验", 10, 50, 3, true))
	mock.ExpectQuery("SELECT \\* FROM `quiz_questions` WHERE \\(quiz_id = \\? AND is_active = \\?\\)").
		WithArgs(7, true).
		WillReturnRows(sqlmock.NewRows(questionColumns()).
			AddRow(1, 7, "true_false", "Go 有泛型吗", 10, 1, true))
	mock.ExpectQuery("SELECT \\* FROM `quiz_answers` WHERE question_id IN").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(answerColumns()).
			AddRow(11, 1, "是", true, 1).
			AddRow(12, 1, "否", false, 2))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `quiz_attempts` SET .* WHERE \\(id = \\? AND completed_at IS NULL\\)").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `quiz_attempt_answers`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := svc.SubmitAttempt(42, "a-1", map[uint][]uint{1: {11}})
	require.NoError(t, err)
	assert.Equal(t, 10, result.Score)
	assert.Equal(t, 10, result.MaxScore)
	assert.Equal(t, 100.0, result.Percentage)
	assert.True(t, result.IsPassed)
	assert.Equal(t, 10, result.TimeSpent)
	assert.True(t, result.CompletedAt.Equal(now))

	assert.NoError(t, mock.ExpectationsWereMet())
}
