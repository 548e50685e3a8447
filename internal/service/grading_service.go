package service

import (
	"context"
	"errors"
	"grader_web/internal/grading"
	"grader_web/internal/model"
	"grader_web/internal/util"
	"grader_web/pkg/logger"
	"math"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// QuestionView 评分页上的一个问题
type QuestionView struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Color string `json:"color"`
	// 推理给出的答案片段，没有时为空
	Highlight string  `json:"highlight"`
	Score     float64 `json:"score"`
}

// GradingView 渲染评分页所需的全部数据
type GradingView struct {
	AssignmentID   string            `json:"assignmentId"`
	AssignmentName string            `json:"assignmentName"`
	AnswerID       model.AnswerID    `json:"answerId"`
	Student        string            `json:"student"`
	Answer         string            `json:"answer"`
	Segments       []grading.Segment `json:"segments"`
	Questions      []QuestionView    `json:"questions"`
	Graded         bool              `json:"graded"`
	Index          int               `json:"index"`
	Total          int               `json:"total"`
	CanPrev        bool              `json:"canPrev"`
	CanNext        bool              `json:"canNext"`
	GradedCount    int               `json:"gradedCount"`
}

// Page 从 1 开始的页码
func (v *GradingView) Page() int {
	return v.Index + 1
}

// SimilarAnswer 与当前答案相似的其他答案
type SimilarAnswer struct {
	AnswerID   model.AnswerID `json:"answerId"`
	Student    string         `json:"student"`
	Similarity float64        `json:"similarity"`
	Index      int            `json:"index"`
}

type GradingService struct {
	backend  BackendClient
	sessions SessionStore
	exports  *ExportService

	// 读取-修改-保存会话期间持有，按 (评分者, 作业) 区分
	locks *sessionLocks
	// 同一会话并发打开时只向后端拉取一次
	fetches singleflight.Group

	settingsMu sync.RWMutex
	palette    grading.Palette
	threshold  float64
}

func NewGradingService(backend BackendClient, sessions SessionStore, exports *ExportService, palette grading.Palette, threshold float64) *GradingService {
	return &GradingService{
		backend:   backend,
		sessions:  sessions,
		exports:   exports,
		locks:     newSessionLocks(),
		palette:   palette,
		threshold: threshold,
	}
}

// UpdateSettings 配置热更新时调用
func (s *GradingService) UpdateSettings(palette grading.Palette, threshold float64) {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	s.palette = palette
	s.threshold = threshold
}

func (s *GradingService) settings() (grading.Palette, float64) {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()
	return s.palette, s.threshold
}

// Open 进入评分页。已有会话时直接复用，否则并发拉取答案和推理结果，两者都成功才建立会话。
// 拉取期间不持有会话锁
func (s *GradingService) Open(ctx context.Context, graderID, assignmentID string) (*GradingView, error) {
	if view, ok := s.reuse(ctx, graderID, assignmentID); ok {
		return view, nil
	}

	key := sessionKey(graderID, assignmentID)
	v, err, _ := s.fetches.Do(key, func() (interface{}, error) {
		return s.fetch(ctx, graderID, assignmentID)
	})
	if err != nil {
		return nil, err
	}
	fresh := v.(*GradingSession)

	unlock := s.locks.lock(key)
	defer unlock()

	// 拉取期间其他请求可能已经建立了会话，以先保存的为准
	if sess, err := s.sessions.Get(ctx, graderID, assignmentID); err == nil {
		return s.buildView(sess)
	}
	if err := s.save(ctx, fresh); err != nil {
		return nil, err
	}

	logger.Log.Info("Grading session opened",
		zap.String("graderId", graderID),
		zap.String("assignmentId", assignmentID),
		zap.Int("answers", len(fresh.Assignment.Answers)),
		zap.Int("questions", fresh.Grades.NumQuestions()))

	return s.buildView(fresh)
}

func (s *GradingService) reuse(ctx context.Context, graderID, assignmentID string) (*GradingView, bool) {
	unlock := s.locks.lock(sessionKey(graderID, assignmentID))
	defer unlock()

	sess, err := s.sessions.Get(ctx, graderID, assignmentID)
	if err != nil {
		if !errors.Is(err, util.ErrSessionNotFound) {
			logger.Log.Warn("Discarding unreadable grading session",
				zap.String("graderId", graderID),
				zap.String("assignmentId", assignmentID),
				zap.Error(err))
		}
		return nil, false
	}
	view, err := s.buildView(sess)
	if err != nil {
		return nil, false
	}
	return view, true
}

// fetch 从后端拉取答案和推理结果并构造新会话，不写入存储
func (s *GradingService) fetch(ctx context.Context, graderID, assignmentID string) (*GradingSession, error) {
	var (
		assignment *model.Assignment
		inference  *model.Inference
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		assignment, err = s.backend.GetAssignment(gctx, assignmentID)
		return err
	})
	g.Go(func() error {
		var err error
		inference, err = s.backend.GetInference(gctx, assignmentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if assignment.ID == "" {
		assignment.ID = assignmentID
	}

	pager, err := grading.NewPager(len(assignment.Answers))
	if err != nil {
		return nil, err
	}

	palette, _ := s.settings()
	numQuestions := len(inference.Questions)
	if err := grading.CheckPalette(numQuestions, palette); err != nil {
		return nil, err
	}
	prepareInferences(assignmentID, inference, numQuestions)

	return &GradingSession{
		GraderID:     graderID,
		AssignmentID: assignmentID,
		Assignment:   assignment,
		Inference:    inference,
		Grades:       grading.NewAccumulator(numQuestions),
		Pager:        pager,
	}, nil
}

// prepareInferences 丢弃会话用不到的向量；推理条数多于问题数时多出的部分没有颜色可用
func prepareInferences(assignmentID string, inference *model.Inference, numQuestions int) {
	for id, list := range inference.Inferences {
		for i := range list {
			list[i].AnswerEmbedding = nil
		}
		if len(list) > numQuestions {
			logger.Log.Warn("Dropping inferences beyond question count",
				zap.String("assignmentId", assignmentID),
				zap.String("answerId", id.String()),
				zap.Int("inferences", len(list)),
				zap.Int("questions", numQuestions))
			inference.Inferences[id] = list[:numQuestions]
		}
	}
}

func (s *GradingService) View(ctx context.Context, graderID, assignmentID string) (*GradingView, error) {
	sess, err := s.sessions.Get(ctx, graderID, assignmentID)
	if err != nil {
		return nil, err
	}
	return s.buildView(sess)
}

func (s *GradingService) Next(ctx context.Context, graderID, assignmentID string) (*GradingView, error) {
	return s.update(ctx, graderID, assignmentID, func(sess *GradingSession) error {
		sess.Pager.Advance()
		return nil
	})
}

func (s *GradingService) Prev(ctx context.Context, graderID, assignmentID string) (*GradingView, error) {
	return s.update(ctx, graderID, assignmentID, func(sess *GradingSession) error {
		sess.Pager.Retreat()
		return nil
	})
}

// Seek 跳转到指定答案，下标越界时停在两端
func (s *GradingService) Seek(ctx context.Context, graderID, assignmentID string, index int) (*GradingView, error) {
	return s.update(ctx, graderID, assignmentID, func(sess *GradingSession) error {
		sess.Pager.Seek(index)
		return nil
	})
}

// SetScores 同时写入一个答案的多个问题分数。任意一个不合法时整体不生效
func (s *GradingService) SetScores(ctx context.Context, graderID, assignmentID string, answerID model.AnswerID, scores map[int]float64) (*GradingView, error) {
	return s.update(ctx, graderID, assignmentID, func(sess *GradingSession) error {
		if _, ok := sess.Assignment.FindAnswer(answerID); !ok {
			return util.ErrAnswerNotFound
		}

		questions := make([]int, 0, len(scores))
		for q, v := range scores {
			if q < 0 || q >= sess.Grades.NumQuestions() {
				return util.NewValidationError("Question index %d is out of range", q)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return util.NewValidationError("Score for question %d must be a number", q+1)
			}
			questions = append(questions, q)
		}
		slices.Sort(questions)

		for _, q := range questions {
			if err := sess.Grades.SetScore(answerID, q, scores[q]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GradingService) SetScore(ctx context.Context, graderID, assignmentID string, answerID model.AnswerID, questionIndex int, value float64) (*GradingView, error) {
	return s.SetScores(ctx, graderID, assignmentID, answerID, map[int]float64{questionIndex: value})
}

// Grades 当前成绩快照，格式与导出文件相同
func (s *GradingService) Grades(ctx context.Context, graderID, assignmentID string) (grading.Report, error) {
	sess, err := s.sessions.Get(ctx, graderID, assignmentID)
	if err != nil {
		return nil, err
	}
	return sess.Grades.ExportAll(sess.Assignment.Answers), nil
}

func (s *GradingService) Export(ctx context.Context, graderID, assignmentID string) (*ExportResult, error) {
	sess, err := s.sessions.Get(ctx, graderID, assignmentID)
	if err != nil {
		return nil, err
	}
	return s.exports.Export(ctx, graderID, sess.Assignment, sess.Grades)
}

// SimilarAnswers 查询与某个答案在指定问题上相似的答案。threshold <= 0 时使用配置的默认阈值
func (s *GradingService) SimilarAnswers(ctx context.Context, graderID, assignmentID string, answerID model.AnswerID, questionIndex int, threshold float64) ([]SimilarAnswer, error) {
	sess, err := s.sessions.Get(ctx, graderID, assignmentID)
	if err != nil {
		return nil, err
	}
	if _, ok := sess.Assignment.FindAnswer(answerID); !ok {
		return nil, util.ErrAnswerNotFound
	}
	if questionIndex < 0 || questionIndex >= len(sess.Inference.Questions) {
		return nil, util.NewValidationError("Question index %d is out of range", questionIndex)
	}
	numericID, err := answerID.Int()
	if err != nil {
		return nil, util.NewValidationError("Similar answers are only available for numeric answer ids")
	}
	if threshold <= 0 {
		_, threshold = s.settings()
	}

	relations, err := s.backend.AnswerRelations(ctx, model.AnswerRelationsRequest{
		AssignmentID: assignmentID,
		AnswerID:     numericID,
		Question:     sess.Inference.Questions[questionIndex],
		Similarity:   threshold,
	})
	if err != nil {
		return nil, err
	}

	similar := make([]SimilarAnswer, 0, len(relations))
	for _, rel := range relations {
		if rel.AnswerID == answerID {
			continue
		}
		idx, ok := sess.Assignment.FindAnswer(rel.AnswerID)
		if !ok {
			continue
		}
		similar = append(similar, SimilarAnswer{
			AnswerID:   rel.AnswerID,
			Student:    sess.Assignment.Answers[idx].Student,
			Similarity: rel.Similarity,
			Index:      idx,
		})
	}
	return similar, nil
}

// DeleteInferences 删除后端推理结果，并丢弃当前评分者在该作业上的会话
func (s *GradingService) DeleteInferences(ctx context.Context, graderID, assignmentID string) error {
	if err := s.backend.DeleteInferences(ctx, assignmentID); err != nil {
		return err
	}
	return s.Close(ctx, graderID, assignmentID)
}

// Close 丢弃会话，未导出的成绩随之丢失
func (s *GradingService) Close(ctx context.Context, graderID, assignmentID string) error {
	unlock := s.locks.lock(sessionKey(graderID, assignmentID))
	defer unlock()
	return s.sessions.Delete(ctx, graderID, assignmentID)
}

func (s *GradingService) update(ctx context.Context, graderID, assignmentID string, fn func(sess *GradingSession) error) (*GradingView, error) {
	unlock := s.locks.lock(sessionKey(graderID, assignmentID))
	defer unlock()

	sess, err := s.sessions.Get(ctx, graderID, assignmentID)
	if err != nil {
		return nil, err
	}
	// 会话是存储中的副本，fn 失败时不保存即可回滚
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return s.buildView(sess)
}

func (s *GradingService) save(ctx context.Context, sess *GradingSession) error {
	sess.UpdatedAt = time.Now()
	return s.sessions.Save(ctx, sess)
}

func (s *GradingService) buildView(sess *GradingSession) (*GradingView, error) {
	palette, _ := s.settings()
	questions := sess.Inference.Questions
	if err := grading.CheckPalette(len(questions), palette); err != nil {
		return nil, err
	}

	answer := sess.Current()
	inferences := sess.Inference.For(answer.ID)
	colors, err := grading.Colorize(answer.Answer, grading.SpansFor(inferences), palette)
	if err != nil {
		return nil, err
	}
	scores, graded := sess.Grades.Scores(answer.ID)

	view := &GradingView{
		AssignmentID:   sess.AssignmentID,
		AssignmentName: sess.Assignment.Name,
		AnswerID:       answer.ID,
		Student:        answer.Student,
		Answer:         answer.Answer,
		Segments:       grading.Segments(answer.Answer, colors),
		Questions:      make([]QuestionView, len(questions)),
		Graded:         graded,
		Index:          sess.Pager.Index(),
		Total:          sess.Pager.Total(),
		CanPrev:        sess.Pager.CanRetreat(),
		CanNext:        sess.Pager.CanAdvance(),
		GradedCount:    sess.Grades.GradedCount(sess.Assignment.Answers),
	}
	for i, q := range questions {
		qv := QuestionView{Index: i, Text: q, Color: palette.Colors[i]}
		if i < len(inferences) {
			qv.Highlight = inferences[i].Answer
		}
		if graded {
			qv.Score = scores[i]
		}
		view.Questions[i] = qv
	}
	return view, nil
}
