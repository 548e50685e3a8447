package grading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"grader_web/internal/model"
	"grader_web/internal/util"
	"math"
)

// Accumulator 按答案收集每个问题的分数。
// 某个答案第一次被打分时才初始化为全 0，之后翻页回来不会被重置。
type Accumulator struct {
	numQuestions int
	grades       map[model.AnswerID][]float64
}

func NewAccumulator(numQuestions int) *Accumulator {
	return &Accumulator{
		numQuestions: numQuestions,
		grades:       make(map[model.AnswerID][]float64),
	}
}

func (a *Accumulator) NumQuestions() int {
	return a.numQuestions
}

func (a *Accumulator) SetScore(id model.AnswerID, questionIndex int, value float64) error {
	if questionIndex < 0 || questionIndex >= a.numQuestions {
		return util.NewValidationError("question index %d out of range [0, %d)", questionIndex, a.numQuestions)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return util.NewValidationError("score must be a finite number")
	}

	scores, ok := a.grades[id]
	if !ok {
		scores = make([]float64, a.numQuestions)
		a.grades[id] = scores
	}
	scores[questionIndex] = value
	return nil
}

// Scores 返回分数副本，未打过分时 ok 为 false
func (a *Accumulator) Scores(id model.AnswerID) ([]float64, bool) {
	scores, ok := a.grades[id]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), scores...), true
}

func (a *Accumulator) GradedCount(answers []model.Answer) int {
	n := 0
	for _, ans := range answers {
		if _, ok := a.grades[ans.ID]; ok {
			n++
		}
	}
	return n
}

// ExportAll 按 answers 的顺序导出全部答案，未打分的答案为 null
func (a *Accumulator) ExportAll(answers []model.Answer) Report {
	report := make(Report, 0, len(answers))
	for _, ans := range answers {
		scores, _ := a.Scores(ans.ID)
		report = append(report, ReportEntry{AnswerID: ans.ID, Scores: scores})
	}
	return report
}

type accumulatorJSON struct {
	NumQuestions int                          `json:"numQuestions"`
	Grades       map[model.AnswerID][]float64 `json:"grades"`
}

func (a *Accumulator) MarshalJSON() ([]byte, error) {
	return json.Marshal(accumulatorJSON{NumQuestions: a.numQuestions, Grades: a.grades})
}

func (a *Accumulator) UnmarshalJSON(data []byte) error {
	var raw accumulatorJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.NumQuestions < 0 {
		return fmt.Errorf("invalid question count %d", raw.NumQuestions)
	}
	for id, scores := range raw.Grades {
		if len(scores) != raw.NumQuestions {
			return fmt.Errorf("answer %s has %d scores, want %d", id, len(scores), raw.NumQuestions)
		}
	}
	if raw.Grades == nil {
		raw.Grades = make(map[model.AnswerID][]float64)
	}
	a.numQuestions = raw.NumQuestions
	a.grades = raw.Grades
	return nil
}

type ReportEntry struct {
	AnswerID model.AnswerID
	// nil 表示从未打分
	Scores []float64
}

// Report 导出结果，序列化为按答案顺序排列的 JSON 对象
type Report []ReportEntry

func (r Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(e.AnswerID))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val := []byte("null")
		if e.Scores != nil {
			if val, err = json.Marshal(e.Scores); err != nil {
				return nil, err
			}
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Lookup 测试和展示用
func (r Report) Lookup(id model.AnswerID) ([]float64, bool) {
	for _, e := range r {
		if e.AnswerID == id {
			return e.Scores, true
		}
	}
	return nil, false
}
