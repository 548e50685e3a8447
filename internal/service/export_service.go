package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"grader_web/internal/grading"
	"grader_web/internal/model"
	"grader_web/internal/util"
	"grader_web/pkg/logger"
	"grader_web/pkg/monitoring"
	"strings"
	"time"

	"go.uber.org/zap"
)

// GradeExportStore 导出历史持久化，由 repository.GradeExportRepository 实现
type GradeExportStore interface {
	Create(export *model.GradeExport) error
	List(assignmentID string, page, limit int) ([]model.GradeExport, int64, error)
}

type ExportResult struct {
	FileName string
	Data     []byte
	Record   *model.GradeExport
}

// ExportService 生成成绩文件。归档和历史记录都是可选的，对应依赖为 nil 时跳过
type ExportService struct {
	storage StorageProvider
	history GradeExportStore
}

func NewExportService(storage StorageProvider, history GradeExportStore) *ExportService {
	return &ExportService{storage: storage, history: history}
}

// GradesFileName 导出文件名 ${assignmentName}-grades.json
func GradesFileName(assignmentName string) string {
	return assignmentName + util.GradesFileSuffix
}

// ArchiveSegment 归档 key 中的一段。去掉路径分隔符，"." 和 ".." 替换为 "_"
func ArchiveSegment(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, s)
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}

// ArchiveKey 归档 key：作业/评分者/时间/文件名
func ArchiveKey(assignmentID, graderID string, at time.Time, fileName string) string {
	return strings.Join([]string{
		ArchiveSegment(assignmentID),
		ArchiveSegment(graderID),
		at.Format("20060102150405"),
		ArchiveSegment(fileName),
	}, "/")
}

// Export 序列化全部答案的成绩快照，未评分的答案为 null
func (s *ExportService) Export(ctx context.Context, graderID string, assignment *model.Assignment, grades *grading.Accumulator) (*ExportResult, error) {
	report := grades.ExportAll(assignment.Answers)
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal grades: %w", err)
	}

	result := &ExportResult{
		FileName: GradesFileName(assignment.Name),
		Data:     data,
	}
	monitoring.GradeExportCounter.Inc()

	record := &model.GradeExport{
		AssignmentID:   assignment.ID,
		AssignmentName: assignment.Name,
		GraderID:       graderID,
		FileName:       result.FileName,
		AnswerCount:    len(assignment.Answers),
		GradedCount:    grades.GradedCount(assignment.Answers),
		Size:           int64(len(data)),
	}

	var archived string
	if s.storage != nil {
		key := ArchiveKey(assignment.ID, graderID, time.Now(), result.FileName)
		url, err := s.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), util.MimeJSON)
		if err != nil {
			// 归档失败不影响下载
			logger.Log.Warn("Failed to archive grades",
				zap.String("assignmentId", assignment.ID),
				zap.String("key", key),
				zap.Error(err))
		} else {
			record.URL = url
			archived = key
		}
	}

	if s.history != nil {
		if err := s.history.Create(record); err != nil {
			logger.Log.Warn("Failed to record grade export",
				zap.String("assignmentId", assignment.ID),
				zap.Error(err))
			// 没有历史记录的归档无人能找到，一并删除
			if archived != "" {
				if err := s.storage.Delete(ctx, archived); err != nil {
					logger.Log.Warn("Failed to remove orphaned archive",
						zap.String("key", archived),
						zap.Error(err))
				}
			}
		} else {
			result.Record = record
		}
	}

	logger.Log.Info("Grades exported",
		zap.String("assignmentId", assignment.ID),
		zap.String("graderId", graderID),
		zap.Int("answers", record.AnswerCount),
		zap.Int("graded", record.GradedCount))

	return result, nil
}

// History 导出历史，需要启用数据库
func (s *ExportService) History(ctx context.Context, assignmentID string, page, limit int) ([]model.GradeExport, int64, error) {
	if s.history == nil {
		return nil, 0, util.NewConfigurationError("Export history requires the database to be enabled")
	}
	return s.history.List(assignmentID, page, limit)
}
