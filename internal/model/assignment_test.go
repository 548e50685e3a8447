package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerID_UnmarshalJSON(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    AnswerID
		wantErr bool
	}{
		{name: "字符串", input: `"a-1"`, want: "a-1"},
		{name: "整数", input: `42`, want: "42"},
		{name: "null", input: `null`, wantErr: true},
		{name: "对象", input: `{}`, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var id AnswerID
			err := json.Unmarshal([]byte(tc.input), &id)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, id)
		})
	}
}

func TestAssignment_Decode(t *testing.T) {
	body := `{"id":"x","name":"hw1","answers":[{"id":1,"student":"Ann","answer":"hello"},{"id":"2","student":"Bob","answer":"bye"}]}`
	var a Assignment
	require.NoError(t, json.Unmarshal([]byte(body), &a))

	idx, ok := a.FindAnswer("2")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	_, ok = a.FindAnswer("3")
	assert.False(t, ok)

	n, err := a.Answers[0].ID.Int()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestInference_For(t *testing.T) {
	body := `{"questions":["Q1"],"inferences":{"1":[{"answer":"he","start_ind":0,"end_ind":1,"answer_embedding":[0.1]}]}}`
	var inf Inference
	require.NoError(t, json.Unmarshal([]byte(body), &inf))

	got := inf.For("1")
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].EndInd)
	assert.Nil(t, inf.For("2"))

	var empty *Inference
	assert.Nil(t, empty.For("1"))
}
