package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// AnswerID 答案标识。后端按上传文件原样返回，可能是数字也可能是字符串
type AnswerID string

func (id *AnswerID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("answer id must not be null")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = AnswerID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid answer id %s: %w", string(data), err)
	}
	*id = AnswerID(n.String())
	return nil
}

func (id AnswerID) String() string {
	return string(id)
}

// Int 后端部分接口（answerrelations）要求整数 id
func (id AnswerID) Int() (int64, error) {
	return strconv.ParseInt(string(id), 10, 64)
}

// swagger:model Answer
type Answer struct {
	ID      AnswerID `json:"id"`
	Student string   `json:"student"`
	Answer  string   `json:"answer"`
}

// swagger:model Assignment
type Assignment struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Answers []Answer `json:"answers"`
}

// AssignmentSummary 列表页只需要 id 和名称
type AssignmentSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FindAnswer 按 id 查找答案，返回下标
func (a *Assignment) FindAnswer(id AnswerID) (int, bool) {
	for i := range a.Answers {
		if a.Answers[i].ID == id {
			return i, true
		}
	}
	return -1, false
}
