package service

import (
	"context"
	"encoding/json"
	"grader_web/internal/config"
	"grader_web/internal/model"
	"grader_web/internal/util"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *HTTPBackendClient {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPBackendClient(config.BackendConfig{URL: srv.URL, Timeout: 5 * time.Second})
}

func TestHTTPBackendClient_ListForums(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/forums/", r.URL.Path)
		w.Write([]byte(`{"data":[{"id":"1","name":"hw1"},{"id":"2","name":"hw2"}]}`))
	})

	forums, err := client.ListForums(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.AssignmentSummary{{ID: "1", Name: "hw1"}, {ID: "2", Name: "hw2"}}, forums)
}

func TestHTTPBackendClient_GetAssignment(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		wantErr string
		want    *model.Assignment
	}{
		{
			name:   "成功",
			status: http.StatusOK,
			body:   `{"message":"Success","data":{"id":"x","name":"hw1","answers":[{"id":1,"student":"Ann","answer":"hello"}]}}`,
			want:   &model.Assignment{ID: "x", Name: "hw1", Answers: []model.Answer{{ID: "1", Student: "Ann", Answer: "hello"}}},
		},
		{
			name:    "作业不存在",
			status:  http.StatusNotFound,
			body:    `{"message":"Assignment does not exist"}`,
			wantErr: msgFetchAnswers,
		},
		{
			name:    "响应不是 JSON",
			status:  http.StatusOK,
			body:    `<html>`,
			wantErr: msgFetchAnswers,
		},
		{
			name:    "缺少 data",
			status:  http.StatusOK,
			body:    `{"message":"Success"}`,
			wantErr: msgFetchAnswers,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/assignments/", r.URL.Path)
				assert.Equal(t, "x", r.URL.Query().Get("assignment_id"))
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			got, err := client.GetAssignment(context.Background(), "x")
			if tc.wantErr != "" {
				var netErr *util.NetworkError
				require.ErrorAs(t, err, &netErr)
				assert.Equal(t, tc.wantErr, netErr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestHTTPBackendClient_GetInference(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inference/", r.URL.Path)
		w.Write([]byte(`{"data":{"questions":["Q1","Q2"],"inferences":{"1":[{"answer":"he","start_ind":0,"end_ind":1,"answer_embedding":[0.5]}]}}}`))
	})

	inf, err := client.GetInference(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1", "Q2"}, inf.Questions)
	assert.Equal(t, 1, inf.For("1")[0].EndInd)
}

func TestHTTPBackendClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewHTTPBackendClient(config.BackendConfig{URL: srv.URL, Timeout: time.Second})

	_, err := client.GetInference(context.Background(), "x")
	var netErr *util.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, msgFetchInferences, netErr.Message)
	assert.Error(t, netErr.Err)
}

func TestHTTPBackendClient_CreateAssignment(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/assignments/", r.URL.Path)
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, "hw1.json", header.Filename)
		assert.Equal(t, `{"answers":[]}`, string(content))
		w.Write([]byte(`{"message":"Successfuly created assignment","data":"new-id"}`))
	})

	id, err := client.CreateAssignment(context.Background(), "hw1.json", util.MimeJSON, []byte(`{"answers":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "new-id", id)
}

func TestHTTPBackendClient_CreateInferences(t *testing.T) {
	var got map[string]interface{}
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inference/", r.URL.Path)
		assert.Equal(t, util.MimeJSON, r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusBadRequest)
	})

	err := client.CreateInferences(context.Background(), "x", []string{"Q1"})
	var netErr *util.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, msgCreateInferences, netErr.Message)
	assert.Equal(t, http.StatusBadRequest, netErr.Status)
	assert.Equal(t, "x", got["assignment_id"])
	assert.Equal(t, []interface{}{"Q1"}, got["questions"])
}

func TestHTTPBackendClient_AnswerRelations(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/answerrelations/", r.URL.Path)
		var req model.AnswerRelationsRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(3), req.AnswerID)
		assert.Equal(t, "Q1", req.Question)
		w.Write([]byte(`{"data":{"3":{"answer_id":"3","similarity":1.0},"5":{"answer_id":"5","similarity":0.91},"4":{"similarity":0.95}}}`))
	})

	rels, err := client.AnswerRelations(context.Background(), model.AnswerRelationsRequest{
		AssignmentID: "x", AnswerID: 3, Question: "Q1", Similarity: 0.9,
	})
	require.NoError(t, err)
	assert.Equal(t, []model.AnswerRelation{
		{AnswerID: "3", Similarity: 1.0},
		{AnswerID: "4", Similarity: 0.95},
		{AnswerID: "5", Similarity: 0.91},
	}, rels)
}

func TestHTTPBackendClient_DeleteInferences(t *testing.T) {
	called := false
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, "/deleteinferences/", r.URL.Path)
		w.Write([]byte(`{"message":"Succesfuly deleted inferences"}`))
	})
	require.NoError(t, client.DeleteInferences(context.Background(), "x"))
	assert.True(t, called)
}
