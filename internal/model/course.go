package model

// Course 课程，报名与进度汇总的归属单位
type Course struct {
	BaseModel
	Title        string `gorm:"size:255;not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	InstructorID uint   `gorm:"index;type:bigint unsigned" json:"instructorId"`
	IsPublished  bool   `gorm:"default:false" json:"isPublished"`
}

func (Course) TableName() string {
	return "courses"
}

// Lesson 课时，进度按课时粒度统计；IsActive=false 的课时不计入进度
type Lesson struct {
	BaseModel
	CourseID uint   `gorm:"index;type:bigint unsigned;not null" json:"courseId"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Content  string `gorm:"type:text" json:"content"`
	Order    int    `gorm:"default:0" json:"order"`
	IsActive bool   `gorm:"default:true" json:"isActive"`
}

func (Lesson) TableName() string {
	return "lessons"
}
