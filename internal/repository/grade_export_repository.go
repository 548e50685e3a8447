package repository

import (
	"grader_web/internal/model"

	"gorm.io/gorm"
)

type GradeExportRepository struct {
	DB *gorm.DB
}

func NewGradeExportRepository(db *gorm.DB) *GradeExportRepository {
	return &GradeExportRepository{DB: db}
}

func (r *GradeExportRepository) Create(export *model.GradeExport) error {
	return r.DB.Create(export).Error
}

// List 按时间倒序分页；assignmentID 为空时返回全部作业的导出记录
func (r *GradeExportRepository) List(assignmentID string, page, limit int) ([]model.GradeExport, int64, error) {
	query := r.DB.Model(&model.GradeExport{})
	if assignmentID != "" {
		query = query.Where("assignment_id = ?", assignmentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * limit).Limit(limit)
	}

	var exports []model.GradeExport
	err := query.Order("created_at desc").Find(&exports).Error
	return exports, total, err
}
