package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingAnswersErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		ids  []uint
		want string
	}{
		{
			name: "single id",
			ids:  []uint{7},
			want: "missing answers for questions: 7",
		},
		{
			name: "ids sorted in message regardless of input order",
			ids:  []uint{3, 1, 2},
			want: "missing answers for questions: 1, 2, 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &MissingAnswersError{QuestionIDs: tt.ids}
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestMissingAnswersErrorAs(t *testing.T) {
	wrapped := fmt.Errorf("submit failed: %w", &MissingAnswersError{QuestionIDs: []uint{1}})

	var target *MissingAnswersError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, []uint{1}, target.QuestionIDs)
}
