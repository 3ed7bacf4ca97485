package repository

import (
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/util"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gdb, mock
}

func TestAttemptRepositoryFindByID(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewAttemptRepository(gdb)

	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "quiz_id", "user_id", "started_at", "completed_at", "score", "max_score", "time_spent", "is_passed"}).
		AddRow("a-1", 7, 42, started, nil, 0, 10, 0, false)
	mock.ExpectQuery("SELECT \\* FROM `quiz_attempts` WHERE id = \\?").
		WithArgs("a-1", 1).
		WillReturnRows(rows)

	attempt, err := repo.FindByID("a-1")
	require.NoError(t, err)
	assert.Equal(t, "a-1", attempt.ID)
	assert.Equal(t, uint(7), attempt.QuizID)
	assert.Equal(t, uint(42), attempt.UserID)
	assert.True(t, attempt.InProgress())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptRepositoryFindByIDNotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewAttemptRepository(gdb)

	mock.ExpectQuery("SELECT \\* FROM `quiz_attempts` WHERE id = \\?").
		WithArgs("missing", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID("missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptRepositoryCountByUserAndQuiz(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewAttemptRepository(gdb)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `quiz_attempts` WHERE \\(user_id = \\? AND quiz_id = \\?\\)").
		WithArgs(42, 7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountByUserAndQuiz(42, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptRepositoryListByUserAndQuiz(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewAttemptRepository(gdb)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `quiz_attempts` WHERE \\(user_id = \\? AND quiz_id = \\?\\)").
		WithArgs(42, 7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	completed := started.Add(20 * time.Minute)
	rows := sqlmock.NewRows([]string{"id", "quiz_id", "user_id", "started_at", "completed_at", "score", "max_score", "time_spent", "is_passed"}).
		AddRow("a-2", 7, 42, started.Add(time.Hour), nil, 0, 10, 0, false).
		AddRow("a-1", 7, 42, started, completed, 8, 10, 20, true)
	mock.ExpectQuery("SELECT \\* FROM `quiz_attempts` WHERE \\(user_id = \\? AND quiz_id = \\?\\).*ORDER BY started_at desc LIMIT \\?").
		WithArgs(42, 7, 20).
		WillReturnRows(rows)

	attempts, total, err := repo.ListByUserAndQuiz(42, 7, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, attempts, 2)
	assert.True(t, attempts[0].InProgress())
	assert.True(t, attempts[1].IsPassed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptRepositoryCompleteWithAnswers(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewAttemptRepository(gdb)

	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	completed := started.Add(15 * time.Minute)

	attempt := &model.QuizAttempt{
		QuizID:      7,
		UserID:      42,
		StartedAt:   started,
		CompletedAt: &completed,
		Score:       8,
		MaxScore:    10,
		TimeSpent:   15,
		IsPassed:    true,
	}
	attempt.ID = "a-1"

	answer := model.QuizAttemptAnswer{
		AttemptID:    "a-1",
		QuestionID:   1,
		IsCorrect:    true,
		PointsEarned: 5,
	}
	answer.EncodeSelected([]uint{3})

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `quiz_attempts` SET .* WHERE \\(id = \\? AND completed_at IS NULL\\)").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `quiz_attempt_answers`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.CompleteWithAnswers(attempt, []model.QuizAttemptAnswer{answer})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// 完成态更新带 completed_at IS NULL 谓词，已完成的记录再提交时
// 更新落空，整个事务回滚并报 ErrAttemptCompleted，不会重复写作答行
func TestAttemptRepositoryCompleteWithAnswersAlreadyCompleted(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewAttemptRepository(gdb)

	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	completed := started.Add(15 * time.Minute)

	attempt := &model.QuizAttempt{
		QuizID:      7,
		UserID:      42,
		StartedAt:   started,
		CompletedAt: &completed,
		Score:       8,
		MaxScore:    10,
		TimeSpent:   15,
		IsPassed:    true,
	}
	attempt.ID = "a-1"

	answer := model.QuizAttemptAnswer{AttemptID: "a-1", QuestionID: 1}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `quiz_attempts` SET .* WHERE \\(id = \\? AND completed_at IS NULL\\)").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.CompleteWithAnswers(attempt, []model.QuizAttemptAnswer{answer})
	assert.True(t, errors.Is(err, util.ErrAttemptCompleted))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptRepositoryCompleteWithAnswersRollsBack(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewAttemptRepository(gdb)

	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	completed := started.Add(15 * time.Minute)

	attempt := &model.QuizAttempt{
		QuizID:      7,
		UserID:      42,
		StartedAt:   started,
		CompletedAt: &completed,
	}
	attempt.ID = "a-1"

	answer := model.QuizAttemptAnswer{AttemptID: "a-1", QuestionID: 1}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `quiz_attempts` SET .* WHERE \\(id = \\? AND completed_at IS NULL\\)").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `quiz_attempt_answers`").
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	err := repo.CompleteWithAnswers(attempt, []model.QuizAttemptAnswer{answer})
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
