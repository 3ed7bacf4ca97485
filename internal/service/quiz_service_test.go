package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCreateQuizValidation(t *testing.T) {
	s := &QuizService{}

	tests := []struct {
		name   string
		req    QuizReq
		errMsg string
	}{
		{
			name:   "missing title",
			req:    QuizReq{CourseID: 1},
			errMsg: "title is required",
		},
		{
			name:   "empty title",
			req:    QuizReq{CourseID: 1, Title: strPtr("")},
			errMsg: "title is required",
		},
		{
			name:   "zero time limit",
			req:    QuizReq{CourseID: 1, Title: strPtr("期中测验"), TimeLimit: intPtr(0)},
			errMsg: "timeLimit must be greater than zero",
		},
		{
			name:   "negative time limit",
			req:    QuizReq{CourseID: 1, Title: strPtr("期中测验"), TimeLimit: intPtr(-5)},
			errMsg: "timeLimit must be greater than zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateQuiz(tt.req)
			assert.EqualError(t, err, tt.errMsg)
		})
	}
}
