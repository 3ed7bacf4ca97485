package model

// QuestionType 题目类型，评分逻辑按类型分派
type QuestionType string

const (
	QuestionSingleChoice QuestionType = "single_choice"
	QuestionTrueFalse    QuestionType = "true_false"
	QuestionShortAnswer  QuestionType = "short_answer"
	QuestionEssay        QuestionType = "essay"
)

// SingleCorrect reports whether the type expects exactly one correct option.
func (t QuestionType) SingleCorrect() bool {
	return t == QuestionSingleChoice || t == QuestionTrueFalse
}

// Quiz 测验，归属课程，可选关联具体课时
type Quiz struct {
	BaseModel
	CourseID     uint   `gorm:"index;type:bigint unsigned;not null" json:"courseId"`
	LessonID     *uint  `gorm:"index;type:bigint unsigned" json:"lessonId,omitempty"`
	Title        string `gorm:"size:255;not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	TimeLimit    *int   `json:"timeLimit,omitempty"` // Minutes, nil 表示不限时
	PassingScore int    `gorm:"default:60" json:"passingScore"`
	MaxAttempts  int    `gorm:"default:1" json:"maxAttempts"`
	IsActive     bool   `gorm:"default:false" json:"isActive"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// QuizQuestion IsActive=false 的题目不下发、不计分
type QuizQuestion struct {
	BaseModel
	QuizID       uint         `gorm:"index;type:bigint unsigned;not null" json:"quizId"`
	QuestionType QuestionType `gorm:"size:50;not null" json:"questionType"`
	Text         string       `gorm:"type:text;not null" json:"text"`
	Points       int          `gorm:"default:1" json:"points"`
	Order        int          `gorm:"default:0" json:"order"`
	IsActive     bool         `gorm:"default:true" json:"isActive"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// QuizAnswer 选项。IsCorrect 不允许跨越服务边界下发给答题中的学生
type QuizAnswer struct {
	BaseModel
	QuestionID uint   `gorm:"index;type:bigint unsigned;not null" json:"questionId"`
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
	Order      int    `gorm:"default:0" json:"order"`
}

func (QuizAnswer) TableName() string {
	return "quiz_answers"
}
