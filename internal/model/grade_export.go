package model

// GradeExport 一次完整成绩导出的记录，只在导出时写入
type GradeExport struct {
	UUIDBase
	AssignmentID   string `gorm:"index;type:varchar(64);not null" json:"assignmentId"`
	AssignmentName string `gorm:"size:255" json:"assignmentName"`
	GraderID       string `gorm:"index;type:varchar(36)" json:"graderId"`
	FileName       string `gorm:"size:255;not null" json:"fileName"`
	URL            string `gorm:"size:512" json:"url"`
	AnswerCount    int    `json:"answerCount"`
	GradedCount    int    `json:"gradedCount"`
	Size           int64  `json:"size"`
}

func (GradeExport) TableName() string {
	return "grade_exports"
}
