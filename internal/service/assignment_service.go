package service

import (
	"context"
	"grader_web/internal/config"
	"grader_web/internal/model"
	"grader_web/internal/util"
	"grader_web/pkg/logger"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

type UploadFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// UploadRequest 上传表单。Name 非空时作为上传文件的文件名，后端据此命名作业
type UploadRequest struct {
	Name      string
	Files     []UploadFile
	Questions []string
}

type AssignmentService struct {
	backend BackendClient
	format  string
	maxSize int64
}

func NewAssignmentService(backend BackendClient, cfg config.UploadConfig) *AssignmentService {
	format := cfg.Format
	if format == "" {
		format = util.UploadFormatJSON
	}
	return &AssignmentService{
		backend: backend,
		format:  format,
		maxSize: cfg.MaxSizeMB << 20,
	}
}

// Format 上传文件格式，json 或 csv
func (s *AssignmentService) Format() string {
	return s.format
}

func (s *AssignmentService) List(ctx context.Context) ([]model.AssignmentSummary, error) {
	return s.backend.ListForums(ctx)
}

// SplitQuestions 每行一个问题，忽略空行
func SplitQuestions(raw string) []string {
	var questions []string
	for _, line := range strings.Split(raw, "\n") {
		if q := strings.TrimSpace(line); q != "" {
			questions = append(questions, q)
		}
	}
	return questions
}

// Validate 只做本地校验，不发请求
func (s *AssignmentService) Validate(req UploadRequest) (UploadFile, []string, error) {
	label := util.FormatLabel(s.format)

	switch {
	case len(req.Files) == 0:
		return UploadFile{}, nil, util.NewValidationError("Need to upload a %s file", label)
	case len(req.Files) > 1:
		return UploadFile{}, nil, util.NewValidationError("Can only upload one file at a time")
	}

	file := req.Files[0]
	if !util.MatchesFormat(file.Filename, file.ContentType, s.format) {
		return UploadFile{}, nil, util.NewValidationError("Type of file must be %s", label)
	}
	if len(file.Content) == 0 {
		return UploadFile{}, nil, util.NewValidationError("Uploaded file is empty")
	}
	if s.maxSize > 0 && int64(len(file.Content)) > s.maxSize {
		return UploadFile{}, nil, util.NewValidationError("File must be smaller than %d MB", s.maxSize>>20)
	}
	if !util.IsTextContent(file.Content) {
		return UploadFile{}, nil, util.NewValidationError("Type of file must be %s", label)
	}

	var questions []string
	for _, q := range req.Questions {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return UploadFile{}, nil, util.NewValidationError("Need at least one question")
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		file.Filename = filepath.Base(name) + "." + s.format
	}
	file.ContentType = util.ContentTypeFor(s.format)
	return file, questions, nil
}

// Create 上传作业文件，再为问题集创建推理，返回作业 id
func (s *AssignmentService) Create(ctx context.Context, req UploadRequest) (string, error) {
	file, questions, err := s.Validate(req)
	if err != nil {
		return "", err
	}

	assignmentID, err := s.backend.CreateAssignment(ctx, file.Filename, file.ContentType, file.Content)
	if err != nil {
		return "", err
	}

	if err := s.backend.CreateInferences(ctx, assignmentID, questions); err != nil {
		logger.Log.Warn("Assignment created without inferences",
			zap.String("assignmentId", assignmentID),
			zap.Error(err))
		return "", err
	}

	logger.Log.Info("Assignment uploaded",
		zap.String("assignmentId", assignmentID),
		zap.String("file", file.Filename),
		zap.Int("questions", len(questions)))
	return assignmentID, nil
}
