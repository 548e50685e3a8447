package service

import (
	"context"
	"encoding/json"
	"errors"
	"grader_web/internal/grading"
	"grader_web/internal/model"
	svcmocks "grader_web/internal/service/mocks"
	"grader_web/internal/util"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testPalette = grading.Palette{Colors: []string{"red", "blue"}, Default: "white"}

func testAssignment() *model.Assignment {
	return &model.Assignment{
		ID:   "hw",
		Name: "Homework 1",
		Answers: []model.Answer{
			{ID: "1", Student: "Ann", Answer: "hello"},
			{ID: "2", Student: "Bob", Answer: "world"},
			{ID: "3", Student: "Cat", Answer: "again"},
		},
	}
}

func testInference() *model.Inference {
	return &model.Inference{
		Questions: []string{"Q1", "Q2"},
		Inferences: map[model.AnswerID][]model.AnswerInference{
			"1": {{Answer: "he", StartInd: 0, EndInd: 1}, {Answer: "lo", StartInd: 3, EndInd: 4}},
		},
	}
}

func newTestGradingService(t *testing.T, backend BackendClient) *GradingService {
	exports := NewExportService(nil, nil)
	return NewGradingService(backend, NewMemorySessionStore(time.Hour), exports, testPalette, 0.8)
}

func openTestSession(t *testing.T, ctrl *gomock.Controller) (*GradingService, *svcmocks.MockBackendClient) {
	backend := svcmocks.NewMockBackendClient(ctrl)
	backend.EXPECT().GetAssignment(gomock.Any(), "hw").Return(testAssignment(), nil)
	backend.EXPECT().GetInference(gomock.Any(), "hw").Return(testInference(), nil)
	svc := newTestGradingService(t, backend)
	_, err := svc.Open(context.Background(), "g1", "hw")
	require.NoError(t, err)
	return svc, backend
}

func TestGradingService_Open(t *testing.T) {
	testCases := []struct {
		name    string
		mock    func(ctrl *gomock.Controller) BackendClient
		palette grading.Palette
		check   func(t *testing.T, view *GradingView, err error)
	}{
		{
			name: "打开成功",
			mock: func(ctrl *gomock.Controller) BackendClient {
				backend := svcmocks.NewMockBackendClient(ctrl)
				backend.EXPECT().GetAssignment(gomock.Any(), "hw").Return(testAssignment(), nil)
				backend.EXPECT().GetInference(gomock.Any(), "hw").Return(testInference(), nil)
				return backend
			},
			palette: testPalette,
			check: func(t *testing.T, view *GradingView, err error) {
				require.NoError(t, err)
				assert.Equal(t, model.AnswerID("1"), view.AnswerID)
				assert.Equal(t, "Ann", view.Student)
				assert.Equal(t, 3, view.Total)
				assert.False(t, view.CanPrev)
				assert.True(t, view.CanNext)
				assert.False(t, view.Graded)
				assert.Equal(t, []grading.Segment{
					{Text: "he", Color: "red"},
					{Text: "l", Color: "white"},
					{Text: "lo", Color: "blue"},
				}, view.Segments)
				require.Len(t, view.Questions, 2)
				assert.Equal(t, QuestionView{Index: 1, Text: "Q2", Color: "blue", Highlight: "lo"}, view.Questions[1])
			},
		},
		{
			name: "答案请求失败",
			mock: func(ctrl *gomock.Controller) BackendClient {
				backend := svcmocks.NewMockBackendClient(ctrl)
				backend.EXPECT().GetAssignment(gomock.Any(), "hw").
					Return(nil, util.NewNetworkError(msgFetchAnswers, 500, nil))
				backend.EXPECT().GetInference(gomock.Any(), "hw").Return(testInference(), nil).AnyTimes()
				return backend
			},
			palette: testPalette,
			check: func(t *testing.T, view *GradingView, err error) {
				var netErr *util.NetworkError
				require.ErrorAs(t, err, &netErr)
				assert.Equal(t, msgFetchAnswers, netErr.Message)
				assert.Nil(t, view)
			},
		},
		{
			name: "没有答案",
			mock: func(ctrl *gomock.Controller) BackendClient {
				backend := svcmocks.NewMockBackendClient(ctrl)
				backend.EXPECT().GetAssignment(gomock.Any(), "hw").Return(&model.Assignment{ID: "hw"}, nil)
				backend.EXPECT().GetInference(gomock.Any(), "hw").Return(testInference(), nil)
				return backend
			},
			palette: testPalette,
			check: func(t *testing.T, view *GradingView, err error) {
				assert.ErrorIs(t, err, util.ErrNoAnswers)
			},
		},
		{
			name: "调色板颜色不够",
			mock: func(ctrl *gomock.Controller) BackendClient {
				backend := svcmocks.NewMockBackendClient(ctrl)
				backend.EXPECT().GetAssignment(gomock.Any(), "hw").Return(testAssignment(), nil)
				backend.EXPECT().GetInference(gomock.Any(), "hw").Return(testInference(), nil)
				return backend
			},
			palette: grading.Palette{Colors: []string{"red"}, Default: "white"},
			check: func(t *testing.T, view *GradingView, err error) {
				var cfgErr *util.ConfigurationError
				assert.ErrorAs(t, err, &cfgErr)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := NewGradingService(tc.mock(ctrl), NewMemorySessionStore(time.Hour), NewExportService(nil, nil), tc.palette, 0.8)
			view, err := svc.Open(context.Background(), "g1", "hw")
			tc.check(t, view, err)
		})
	}
}

func TestGradingService_OpenReusesSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, _ := openTestSession(t, ctrl)
	ctx := context.Background()

	_, err := svc.SetScore(ctx, "g1", "hw", "1", 0, 3)
	require.NoError(t, err)
	_, err = svc.Next(ctx, "g1", "hw")
	require.NoError(t, err)

	// 不再请求后端
	view, err := svc.Open(ctx, "g1", "hw")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Index)
	assert.Equal(t, 1, view.GradedCount)
}

func TestGradingService_OpenTruncatesExtraInferences(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inf := testInference()
	inf.Inferences["1"] = append(inf.Inferences["1"], model.AnswerInference{Answer: "o", StartInd: 4, EndInd: 4})
	backend := svcmocks.NewMockBackendClient(ctrl)
	backend.EXPECT().GetAssignment(gomock.Any(), "hw").Return(testAssignment(), nil)
	backend.EXPECT().GetInference(gomock.Any(), "hw").Return(inf, nil)

	svc := newTestGradingService(t, backend)
	view, err := svc.Open(context.Background(), "g1", "hw")
	require.NoError(t, err)
	assert.Equal(t, "blue", view.Segments[len(view.Segments)-1].Color)
}

func TestGradingService_OpenDropsEmbeddings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inf := testInference()
	inf.Inferences["1"][0].AnswerEmbedding = []float64{0.1, 0.2, 0.3}
	inf.Inferences["1"][1].AnswerEmbedding = []float64{0.4, 0.5, 0.6}
	backend := svcmocks.NewMockBackendClient(ctrl)
	backend.EXPECT().GetAssignment(gomock.Any(), "hw").Return(testAssignment(), nil)
	backend.EXPECT().GetInference(gomock.Any(), "hw").Return(inf, nil)

	store := NewMemorySessionStore(time.Hour)
	svc := NewGradingService(backend, store, NewExportService(nil, nil), testPalette, 0.8)
	ctx := context.Background()
	_, err := svc.Open(ctx, "g1", "hw")
	require.NoError(t, err)

	sess, err := store.Get(ctx, "g1", "hw")
	require.NoError(t, err)
	for _, list := range sess.Inference.Inferences {
		for _, ai := range list {
			assert.Nil(t, ai.AnswerEmbedding)
		}
	}
	data, err := encodeSession(sess)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "answer_embedding")
	// 高亮片段仍然保留
	assert.Equal(t, "he", sess.Inference.For("1")[0].Answer)
}

func TestGradingService_SlowOpenDoesNotBlockOtherGraders(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entered := make(chan struct{})
	release := make(chan struct{})
	backend := svcmocks.NewMockBackendClient(ctrl)
	backend.EXPECT().GetAssignment(gomock.Any(), "hw").Return(testAssignment(), nil)
	backend.EXPECT().GetInference(gomock.Any(), "hw").Return(testInference(), nil)
	backend.EXPECT().GetAssignment(gomock.Any(), "slow").
		DoAndReturn(func(ctx context.Context, id string) (*model.Assignment, error) {
			close(entered)
			<-release
			a := testAssignment()
			a.ID = id
			return a, nil
		})
	backend.EXPECT().GetInference(gomock.Any(), "slow").Return(testInference(), nil)

	svc := newTestGradingService(t, backend)
	ctx := context.Background()
	_, err := svc.Open(ctx, "g1", "hw")
	require.NoError(t, err)

	slowDone := make(chan error, 1)
	go func() {
		_, err := svc.Open(ctx, "g2", "slow")
		slowDone <- err
	}()
	<-entered

	nextDone := make(chan error, 1)
	go func() {
		_, err := svc.Next(ctx, "g1", "hw")
		nextDone <- err
	}()
	select {
	case err := <-nextDone:
		require.NoError(t, err)
	case <-time.After(time.Second):
		close(release)
		t.Fatal("Next waited for another grader's backend fetch")
	}

	close(release)
	require.NoError(t, <-slowDone)
	view, err := svc.View(ctx, "g2", "slow")
	require.NoError(t, err)
	assert.Equal(t, "slow", view.AssignmentID)
	assert.Equal(t, 0, svc.locks.size())
}

func TestGradingService_Navigation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, _ := openTestSession(t, ctrl)
	ctx := context.Background()

	view, err := svc.Prev(ctx, "g1", "hw")
	require.NoError(t, err)
	assert.Equal(t, 0, view.Index)

	view, err = svc.Next(ctx, "g1", "hw")
	require.NoError(t, err)
	assert.Equal(t, "Bob", view.Student)
	// 没有推理结果的答案全部为默认色
	assert.Equal(t, []grading.Segment{{Text: "world", Color: "white"}}, view.Segments)

	view, err = svc.Next(ctx, "g1", "hw")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Index)
	assert.False(t, view.CanNext)

	view, err = svc.Next(ctx, "g1", "hw")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Index)

	view, err = svc.Seek(ctx, "g1", "hw", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Page())

	_, err = svc.Next(ctx, "g2", "hw")
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestGradingService_SetScores(t *testing.T) {
	testCases := []struct {
		name     string
		answerID model.AnswerID
		scores   map[int]float64
		wantErr  func(t *testing.T, err error)
		want     []float64
	}{
		{
			name:     "写入多个分数",
			answerID: "1",
			scores:   map[int]float64{0: 2, 1: 1.5},
			want:     []float64{2, 1.5},
		},
		{
			name:     "问题下标越界时整体不生效",
			answerID: "1",
			scores:   map[int]float64{0: 2, 5: 1},
			wantErr: func(t *testing.T, err error) {
				var valErr *util.ValidationError
				assert.ErrorAs(t, err, &valErr)
			},
		},
		{
			name:     "分数不是数字",
			answerID: "1",
			scores:   map[int]float64{1: math.NaN()},
			wantErr: func(t *testing.T, err error) {
				var valErr *util.ValidationError
				assert.ErrorAs(t, err, &valErr)
			},
		},
		{
			name:     "答案不存在",
			answerID: "9",
			scores:   map[int]float64{0: 1},
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, util.ErrAnswerNotFound)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			svc, _ := openTestSession(t, ctrl)
			ctx := context.Background()

			_, err := svc.SetScores(ctx, "g1", "hw", tc.answerID, tc.scores)
			report, gerr := svc.Grades(ctx, "g1", "hw")
			require.NoError(t, gerr)
			scores, ok := report.Lookup("1")
			require.True(t, ok)

			if tc.wantErr != nil {
				tc.wantErr(t, err)
				assert.Nil(t, scores)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, scores)
		})
	}
}

func TestGradingService_SetScoreShowsInView(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, _ := openTestSession(t, ctrl)
	ctx := context.Background()

	view, err := svc.SetScore(ctx, "g1", "hw", "1", 1, 4)
	require.NoError(t, err)
	assert.True(t, view.Graded)
	assert.Equal(t, 0.0, view.Questions[0].Score)
	assert.Equal(t, 4.0, view.Questions[1].Score)
	assert.Equal(t, 1, view.GradedCount)

	// 切换页面后分数仍然保留
	_, err = svc.Next(ctx, "g1", "hw")
	require.NoError(t, err)
	view, err = svc.Prev(ctx, "g1", "hw")
	require.NoError(t, err)
	assert.Equal(t, 4.0, view.Questions[1].Score)
}

func TestGradingService_Export(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, _ := openTestSession(t, ctrl)
	ctx := context.Background()

	_, err := svc.SetScore(ctx, "g1", "hw", "2", 0, 5)
	require.NoError(t, err)

	res, err := svc.Export(ctx, "g1", "hw")
	require.NoError(t, err)
	assert.Equal(t, "Homework 1-grades.json", res.FileName)
	assert.JSONEq(t, `{"1":null,"2":[5,0],"3":null}`, string(res.Data))
	assert.Nil(t, res.Record)
}

func TestGradingService_SimilarAnswers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, backend := openTestSession(t, ctrl)
	ctx := context.Background()

	backend.EXPECT().AnswerRelations(gomock.Any(), model.AnswerRelationsRequest{
		AssignmentID: "hw",
		AnswerID:     1,
		Question:     "Q2",
		Similarity:   0.8,
	}).Return([]model.AnswerRelation{
		{AnswerID: "3", Similarity: 0.95},
		{AnswerID: "1", Similarity: 1},
		{AnswerID: "42", Similarity: 0.9},
	}, nil)

	similar, err := svc.SimilarAnswers(ctx, "g1", "hw", "1", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []SimilarAnswer{{AnswerID: "3", Student: "Cat", Similarity: 0.95, Index: 2}}, similar)

	_, err = svc.SimilarAnswers(ctx, "g1", "hw", "1", 7, 0)
	var valErr *util.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestGradingService_SimilarAnswersNonNumericID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	assignment := testAssignment()
	assignment.Answers[0].ID = "a-1"
	backend := svcmocks.NewMockBackendClient(ctrl)
	backend.EXPECT().GetAssignment(gomock.Any(), "hw").Return(assignment, nil)
	backend.EXPECT().GetInference(gomock.Any(), "hw").Return(testInference(), nil)
	svc := newTestGradingService(t, backend)
	ctx := context.Background()
	_, err := svc.Open(ctx, "g1", "hw")
	require.NoError(t, err)

	_, err = svc.SimilarAnswers(ctx, "g1", "hw", "a-1", 0, 0.5)
	var valErr *util.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestGradingService_DeleteInferences(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, backend := openTestSession(t, ctrl)
	ctx := context.Background()

	backend.EXPECT().DeleteInferences(gomock.Any(), "hw").Return(nil)
	require.NoError(t, svc.DeleteInferences(ctx, "g1", "hw"))

	_, err := svc.View(ctx, "g1", "hw")
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestGradingService_DeleteInferencesFailureKeepsSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, backend := openTestSession(t, ctrl)
	ctx := context.Background()

	backend.EXPECT().DeleteInferences(gomock.Any(), "hw").
		Return(util.NewNetworkError(msgDeleteInferences, 500, nil))
	err := svc.DeleteInferences(ctx, "g1", "hw")
	var netErr *util.NetworkError
	require.True(t, errors.As(err, &netErr))

	_, err = svc.View(ctx, "g1", "hw")
	assert.NoError(t, err)
}

func TestGradingService_UpdateSettings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, _ := openTestSession(t, ctrl)
	ctx := context.Background()

	svc.UpdateSettings(grading.Palette{Colors: []string{"black", "green"}, Default: "gray"}, 0.5)
	view, err := svc.View(ctx, "g1", "hw")
	require.NoError(t, err)
	assert.Equal(t, "black", view.Segments[0].Color)
	assert.Equal(t, "gray", view.Segments[1].Color)

	svc.UpdateSettings(grading.Palette{Colors: []string{"black"}, Default: "gray"}, 0.5)
	_, err = svc.View(ctx, "g1", "hw")
	var cfgErr *util.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestGradingView_JSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, _ := openTestSession(t, ctrl)

	view, err := svc.View(context.Background(), "g1", "hw")
	require.NoError(t, err)
	data, err := json.Marshal(view)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"answerId":"1"`)
	assert.Contains(t, string(data), `"canNext":true`)
}
