package grading

import (
	"encoding/json"
	"fmt"
	"grader_web/internal/util"
)

// Pager 当前答案下标，始终位于 [0, total-1]
type Pager struct {
	current int
	total   int
}

func NewPager(total int) (*Pager, error) {
	if total <= 0 {
		return nil, util.ErrNoAnswers
	}
	return &Pager{total: total}, nil
}

func (p *Pager) Index() int { return p.current }

func (p *Pager) Total() int { return p.total }

// Advance 在最后一页时不做任何事
func (p *Pager) Advance() {
	p.current = min(p.current+1, p.total-1)
}

// Retreat 在第一页时不做任何事
func (p *Pager) Retreat() {
	p.current = max(p.current-1, 0)
}

// Seek 跳到指定页，超出范围时取边界
func (p *Pager) Seek(index int) {
	p.current = min(max(index, 0), p.total-1)
}

func (p *Pager) CanAdvance() bool { return p.current < p.total-1 }

func (p *Pager) CanRetreat() bool { return p.current > 0 }

type pagerJSON struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

func (p *Pager) MarshalJSON() ([]byte, error) {
	return json.Marshal(pagerJSON{Current: p.current, Total: p.total})
}

func (p *Pager) UnmarshalJSON(data []byte) error {
	var raw pagerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Total <= 0 || raw.Current < 0 || raw.Current >= raw.Total {
		return fmt.Errorf("invalid pager state %d/%d", raw.Current, raw.Total)
	}
	p.current, p.total = raw.Current, raw.Total
	return nil
}
