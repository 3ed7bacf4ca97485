package service

import (
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/util"
	"fmt"
	"math"
)

// GradeResult 单题评分结果
type GradeResult struct {
	IsCorrect    bool
	PointsEarned int
}

// GradeQuestion 按题型评分。不给部分分：要么拿满该题分值，要么 0 分。
//
// 单选类（single_choice / true_false）要求目录中恰好一个正确选项；
// 目录数据不一致（多个正确选项）按答错处理而不是报错，
// 选择数量不等于 1 或选错同样判错。
// 其余题型按所选选项集合与正确选项集合完全相等判定。
// 未知题型是服务端缺陷，返回错误而不是静默跳过。
func GradeQuestion(question *model.QuizQuestion, options []model.QuizAnswer, selected []uint) (GradeResult, error) {
	correct := correctAnswerIDs(options)

	var ok bool
	switch {
	case question.QuestionType.SingleCorrect():
		ok = len(correct) == 1 && len(selected) == 1 && selected[0] == correct[0]
	case question.QuestionType == model.QuestionShortAnswer || question.QuestionType == model.QuestionEssay:
		ok = sameIDSet(selected, correct)
	default:
		return GradeResult{}, fmt.Errorf("%w: %q", util.ErrUnknownQuestionType, question.QuestionType)
	}

	result := GradeResult{IsCorrect: ok}
	if ok {
		result.PointsEarned = question.Points
	}
	return result, nil
}

func correctAnswerIDs(options []model.QuizAnswer) []uint {
	var ids []uint
	for _, o := range options {
		if o.IsCorrect {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

func sameIDSet(a, b []uint) bool {
	setA := make(map[uint]struct{}, len(a))
	for _, id := range a {
		setA[id] = struct{}{}
	}
	setB := make(map[uint]struct{}, len(b))
	for _, id := range b {
		setB[id] = struct{}{}
	}
	if len(setA) != len(setB) {
		return false
	}
	for id := range setA {
		if _, found := setB[id]; !found {
			return false
		}
	}
	return true
}

// ScorePercentage maxScore 为 0 时约定为 0
func ScorePercentage(score, maxScore int) float64 {
	if maxScore <= 0 {
		return 0
	}
	return float64(score) / float64(maxScore) * 100
}

// IsPassed maxScore 为 0 的测验永远不算通过
func IsPassed(score, maxScore, passingScore int) bool {
	if maxScore <= 0 {
		return false
	}
	return ScorePercentage(score, maxScore) >= float64(passingScore)
}

// ProgressPercent 完成课时数 / 总课时数，两位小数，钳制在 [0, 100]
func ProgressPercent(completed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	percent := math.Round(float64(completed)/float64(total)*100*100) / 100
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}
	return percent
}
