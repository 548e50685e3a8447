package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"grader_web/internal/config"
	"grader_web/internal/model"
	"grader_web/internal/util"
	"grader_web/pkg/monitoring"
	"grader_web/pkg/tracing"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

// 与原前端保持一致的错误提示
const (
	msgFetchForums      = "An error occurred while fetching forums. Please try again later."
	msgFetchAnswers     = "Error occurred while fetching answers"
	msgFetchInferences  = "Error occurred while fetching inferences for answers"
	msgCreateAssignment = "An error while creating assignment. Please try again later."
	msgCreateInferences = "Error occurred while creating inferences. Please try again later."
	msgAnswerRelations  = "Error occurred while fetching similar answers"
	msgDeleteInferences = "Error occurred while deleting inferences"
)

// BackendClient 推理后端的 HTTP 接口
type BackendClient interface {
	ListForums(ctx context.Context) ([]model.AssignmentSummary, error)
	GetAssignment(ctx context.Context, assignmentID string) (*model.Assignment, error)
	GetInference(ctx context.Context, assignmentID string) (*model.Inference, error)
	CreateAssignment(ctx context.Context, filename, contentType string, content []byte) (string, error)
	CreateInferences(ctx context.Context, assignmentID string, questions []string) error
	AnswerRelations(ctx context.Context, req model.AnswerRelationsRequest) ([]model.AnswerRelation, error)
	DeleteInferences(ctx context.Context, assignmentID string) error
}

type HTTPBackendClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPBackendClient(cfg config.BackendConfig) *HTTPBackendClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPBackendClient{
		baseURL: cfg.URL,
		client:  &http.Client{Timeout: timeout},
	}
}

type envelope[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type backendCall struct {
	endpoint    string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	failMsg     string
}

// do 发送请求；out 为 nil 时不解析响应体
func (c *HTTPBackendClient) do(ctx context.Context, call backendCall, out interface{}) (err error) {
	start := time.Now()
	defer func() { monitoring.ObserveBackend(call.endpoint, start, err) }()

	u := c.baseURL + call.path
	if len(call.query) > 0 {
		u += "?" + call.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, call.method, u, call.body)
	if err != nil {
		return util.NewNetworkError(call.failMsg, 0, err)
	}
	if call.contentType != "" {
		req.Header.Set("Content-Type", call.contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	ctx, span := tracing.StartClientSpan(ctx, "backend "+call.endpoint, propagation.HeaderCarrier(req.Header),
		attribute.String("http.method", call.method),
		attribute.String("http.url", u),
	)
	defer func() { tracing.EndSpan(span, err) }()
	req = req.WithContext(ctx)

	resp, err := c.client.Do(req)
	if err != nil {
		return util.NewNetworkError(call.failMsg, 0, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return util.NewNetworkError(call.failMsg, resp.StatusCode, nil)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return util.NewNetworkError(call.failMsg, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *HTTPBackendClient) ListForums(ctx context.Context) ([]model.AssignmentSummary, error) {
	var res envelope[[]model.AssignmentSummary]
	err := c.do(ctx, backendCall{
		endpoint: "forums",
		method:   http.MethodGet,
		path:     "/forums/",
		failMsg:  msgFetchForums,
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (c *HTTPBackendClient) GetAssignment(ctx context.Context, assignmentID string) (*model.Assignment, error) {
	var res envelope[*model.Assignment]
	err := c.do(ctx, backendCall{
		endpoint: "assignments",
		method:   http.MethodGet,
		path:     "/assignments/",
		query:    url.Values{"assignment_id": {assignmentID}},
		failMsg:  msgFetchAnswers,
	}, &res)
	if err != nil {
		return nil, err
	}
	if res.Data == nil {
		return nil, util.NewNetworkError(msgFetchAnswers, http.StatusOK, fmt.Errorf("empty assignment payload"))
	}
	return res.Data, nil
}

func (c *HTTPBackendClient) GetInference(ctx context.Context, assignmentID string) (*model.Inference, error) {
	var res envelope[*model.Inference]
	err := c.do(ctx, backendCall{
		endpoint: "inference",
		method:   http.MethodGet,
		path:     "/inference/",
		query:    url.Values{"assignment_id": {assignmentID}},
		failMsg:  msgFetchInferences,
	}, &res)
	if err != nil {
		return nil, err
	}
	if res.Data == nil {
		return nil, util.NewNetworkError(msgFetchInferences, http.StatusOK, fmt.Errorf("empty inference payload"))
	}
	return res.Data, nil
}

// CreateAssignment 以 multipart 表单字段 file 上传作业文件，返回新作业 id
func (c *HTTPBackendClient) CreateAssignment(ctx context.Context, filename, contentType string, content []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return "", util.NewNetworkError(msgCreateAssignment, 0, err)
	}
	if _, err := part.Write(content); err != nil {
		return "", util.NewNetworkError(msgCreateAssignment, 0, err)
	}
	if err := w.Close(); err != nil {
		return "", util.NewNetworkError(msgCreateAssignment, 0, err)
	}

	var res envelope[string]
	err = c.do(ctx, backendCall{
		endpoint:    "assignments_create",
		method:      http.MethodPost,
		path:        "/assignments/",
		body:        &buf,
		contentType: w.FormDataContentType(),
		failMsg:     msgCreateAssignment,
	}, &res)
	if err != nil {
		return "", err
	}
	if res.Data == "" {
		return "", util.NewNetworkError(msgCreateAssignment, http.StatusOK, fmt.Errorf("backend returned no assignment id"))
	}
	return res.Data, nil
}

func (c *HTTPBackendClient) CreateInferences(ctx context.Context, assignmentID string, questions []string) error {
	body, err := json.Marshal(map[string]interface{}{
		"assignment_id": assignmentID,
		"questions":     questions,
	})
	if err != nil {
		return util.NewNetworkError(msgCreateInferences, 0, err)
	}
	return c.do(ctx, backendCall{
		endpoint:    "inference_create",
		method:      http.MethodPost,
		path:        "/inference/",
		body:        bytes.NewReader(body),
		contentType: util.MimeJSON,
		failMsg:     msgCreateInferences,
	}, nil)
}

// AnswerRelations 返回与基准答案相似度超过阈值的答案，按相似度降序
func (c *HTTPBackendClient) AnswerRelations(ctx context.Context, req model.AnswerRelationsRequest) ([]model.AnswerRelation, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, util.NewNetworkError(msgAnswerRelations, 0, err)
	}
	var res envelope[map[string]model.AnswerRelation]
	err = c.do(ctx, backendCall{
		endpoint:    "answer_relations",
		method:      http.MethodPost,
		path:        "/answerrelations/",
		body:        bytes.NewReader(body),
		contentType: util.MimeJSON,
		failMsg:     msgAnswerRelations,
	}, &res)
	if err != nil {
		return nil, err
	}

	relations := make([]model.AnswerRelation, 0, len(res.Data))
	for id, rel := range res.Data {
		if rel.AnswerID == "" {
			rel.AnswerID = model.AnswerID(id)
		}
		relations = append(relations, rel)
	}
	slices.SortFunc(relations, func(a, b model.AnswerRelation) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		}
		if a.AnswerID < b.AnswerID {
			return -1
		}
		if a.AnswerID > b.AnswerID {
			return 1
		}
		return 0
	})
	return relations, nil
}

func (c *HTTPBackendClient) DeleteInferences(ctx context.Context, assignmentID string) error {
	body, err := json.Marshal(map[string]string{"assignment_id": assignmentID})
	if err != nil {
		return util.NewNetworkError(msgDeleteInferences, 0, err)
	}
	return c.do(ctx, backendCall{
		endpoint:    "inference_delete",
		method:      http.MethodPost,
		path:        "/deleteinferences/",
		body:        bytes.NewReader(body),
		contentType: util.MimeJSON,
		failMsg:     msgDeleteInferences,
	}, nil)
}
