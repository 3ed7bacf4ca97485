package service

import (
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/util"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func option(id uint, correct bool) model.QuizAnswer {
	a := model.QuizAnswer{IsCorrect: correct}
	a.ID = id
	return a
}

func TestGradeQuestion(t *testing.T) {
	tests := []struct {
		name         string
		questionType model.QuestionType
		points       int
		options      []model.QuizAnswer
		selected     []uint
		wantCorrect  bool
		wantPoints   int
	}{
		{
			name:         "single choice correct",
			questionType: model.QuestionSingleChoice,
			points:       5,
			options:      []model.QuizAnswer{option(1, false), option(2, true), option(3, false)},
			selected:     []uint{2},
			wantCorrect:  true,
			wantPoints:   5,
		},
		{
			name:         "single choice wrong option",
			questionType: model.QuestionSingleChoice,
			points:       5,
			options:      []model.QuizAnswer{option(1, false), option(2, true)},
			selected:     []uint{1},
		},
		{
			name:         "single choice multiple selections rejected",
			questionType: model.QuestionSingleChoice,
			points:       5,
			options:      []model.QuizAnswer{option(1, false), option(2, true)},
			selected:     []uint{1, 2},
		},
		{
			name:         "single choice empty selection",
			questionType: model.QuestionSingleChoice,
			points:       5,
			options:      []model.QuizAnswer{option(1, false), option(2, true)},
			selected:     nil,
		},
		{
			// 目录数据不一致：单选题挂了两个正确选项，按答错处理
			name:         "single choice with two correct options in catalog",
			questionType: model.QuestionSingleChoice,
			points:       5,
			options:      []model.QuizAnswer{option(1, true), option(2, true)},
			selected:     []uint{1},
		},
		{
			name:         "true false correct",
			questionType: model.QuestionTrueFalse,
			points:       2,
			options:      []model.QuizAnswer{option(10, true), option(11, false)},
			selected:     []uint{10},
			wantCorrect:  true,
			wantPoints:   2,
		},
		{
			name:         "short answer exact set match",
			questionType: model.QuestionShortAnswer,
			points:       4,
			options:      []model.QuizAnswer{option(1, true), option(2, true), option(3, false)},
			selected:     []uint{2, 1},
			wantCorrect:  true,
			wantPoints:   4,
		},
		{
			name:         "short answer subset is not enough",
			questionType: model.QuestionShortAnswer,
			points:       4,
			options:      []model.QuizAnswer{option(1, true), option(2, true)},
			selected:     []uint{1},
		},
		{
			name:         "short answer superset fails",
			questionType: model.QuestionShortAnswer,
			points:       4,
			options:      []model.QuizAnswer{option(1, true), option(2, false)},
			selected:     []uint{1, 2},
		},
		{
			name:         "essay no partial credit",
			questionType: model.QuestionEssay,
			points:       10,
			options:      []model.QuizAnswer{option(1, true), option(2, true), option(3, true)},
			selected:     []uint{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			question := &model.QuizQuestion{
				QuestionType: tt.questionType,
				Points:       tt.points,
			}

			result, err := GradeQuestion(question, tt.options, tt.selected)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCorrect, result.IsCorrect)
			assert.Equal(t, tt.wantPoints, result.PointsEarned)
		})
	}
}

func TestGradeQuestionUnknownType(t *testing.T) {
	question := &model.QuizQuestion{QuestionType: "matching", Points: 3}

	_, err := GradeQuestion(question, []model.QuizAnswer{option(1, true)}, []uint{1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrUnknownQuestionType))
}

func TestScorePercentage(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		maxScore int
		want     float64
	}{
		{"full marks", 10, 10, 100},
		{"half", 5, 10, 50},
		{"zero score", 0, 10, 0},
		{"zero max score", 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScorePercentage(tt.score, tt.maxScore), 0.001)
		})
	}
}

func TestIsPassed(t *testing.T) {
	tests := []struct {
		name         string
		score        int
		maxScore     int
		passingScore int
		want         bool
	}{
		{"exactly at passing line", 6, 10, 60, true},
		{"just below passing line", 59, 100, 60, false},
		{"above passing line", 8, 10, 60, true},
		{"zero max score never passes", 0, 0, 0, false},
		{"zero passing score with positive max", 0, 10, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPassed(tt.score, tt.maxScore, tt.passingScore))
		})
	}
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		name      string
		completed int64
		total     int64
		want      float64
	}{
		{"no lessons", 0, 0, 0},
		{"none completed", 0, 10, 0},
		{"all completed", 10, 10, 100},
		{"one third rounds to two decimals", 1, 3, 33.33},
		{"two thirds rounds up", 2, 3, 66.67},
		{"more completed than total clamps to 100", 5, 3, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ProgressPercent(tt.completed, tt.total), 0.001)
		})
	}
}
