// Package grading holds the state and pure transformations behind the
// grading page: span highlighting, score accumulation and paging.
package grading

import (
	"grader_web/internal/model"
	"grader_web/internal/util"
)

// Palette 问题 i 使用 Colors[i] 高亮，没有高亮的字符使用 Default
type Palette struct {
	Colors  []string
	Default string
}

// Span 答案文本中的闭区间 [Start, End]，下标按字符（rune）计算
type Span struct {
	Start      int
	End        int
	ColorIndex int
}

// Segment 连续同色的一段文本，渲染时一个 segment 对应一个 <span>
type Segment struct {
	Text  string
	Color string
}

// SpansFor 第 i 条推理对应第 i 个问题
func SpansFor(inferences []model.AnswerInference) []Span {
	spans := make([]Span, 0, len(inferences))
	for i, inf := range inferences {
		spans = append(spans, Span{Start: inf.StartInd, End: inf.EndInd, ColorIndex: i})
	}
	return spans
}

// CheckPalette 问题数不能超过调色板颜色数
func CheckPalette(numQuestions int, p Palette) error {
	if numQuestions > len(p.Colors) {
		return util.NewConfigurationError("assignment has %d questions but the palette only has %d colors", numQuestions, len(p.Colors))
	}
	return nil
}

// Colorize 返回每个字符的颜色。多个区间覆盖同一字符时，输入顺序中靠后的区间生效。
func Colorize(text string, spans []Span, p Palette) ([]string, error) {
	for _, s := range spans {
		if s.ColorIndex < 0 || s.ColorIndex >= len(p.Colors) {
			return nil, util.NewConfigurationError("color index %d is outside the palette (%d colors)", s.ColorIndex, len(p.Colors))
		}
	}

	runes := []rune(text)
	colors := make([]string, len(runes))
	for i := range colors {
		colors[i] = p.Default
	}

	last := len(runes) - 1
	for _, s := range spans {
		start, end := max(s.Start, 0), min(s.End, last)
		for j := start; j <= end; j++ {
			colors[j] = p.Colors[s.ColorIndex]
		}
	}
	return colors, nil
}

// Segments 把逐字符颜色合并成连续的段
func Segments(text string, colors []string) []Segment {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) != len(colors) {
		return []Segment{{Text: text}}
	}

	var segs []Segment
	begin := 0
	for i := 1; i <= len(runes); i++ {
		if i == len(runes) || colors[i] != colors[begin] {
			segs = append(segs, Segment{Text: string(runes[begin:i]), Color: colors[begin]})
			begin = i
		}
	}
	return segs
}
