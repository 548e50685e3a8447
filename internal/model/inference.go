package model

// swagger:model AnswerInference
type AnswerInference struct {
	Answer          string    `json:"answer"`
	StartInd        int       `json:"start_ind"`
	EndInd          int       `json:"end_ind"`
	AnswerEmbedding []float64 `json:"answer_embedding,omitempty"`
}

// swagger:model Inference
type Inference struct {
	Questions  []string                       `json:"questions"`
	Inferences map[AnswerID][]AnswerInference `json:"inferences"`
}

// For 返回某个答案的推理结果，第 i 条对应第 i 个问题
func (inf *Inference) For(id AnswerID) []AnswerInference {
	if inf == nil || inf.Inferences == nil {
		return nil
	}
	return inf.Inferences[id]
}

type AnswerRelationsRequest struct {
	AssignmentID string  `json:"assignment_id"`
	AnswerID     int64   `json:"answer_id"`
	Question     string  `json:"question"`
	Similarity   float64 `json:"similarity"`
}

// AnswerRelation 与基准答案相似的答案
type AnswerRelation struct {
	AnswerID   AnswerID `json:"answer_id"`
	Similarity float64  `json:"similarity"`
}
