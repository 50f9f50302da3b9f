package parser

import (
	"errors"
	"fmt"

	"github.com/schollz/closestmatch"

	"github.com/motumbon/contratos/internal/fuzzy"
)

// DefaultSheetCutoff Sheet 名模糊匹配阈值
const DefaultSheetCutoff = 70

// ErrSheetNotFound 找不到目标 Sheet
var ErrSheetNotFound = errors.New("sheet not found")

// SheetNotFoundError 带诊断信息的 Sheet 缺失错误
type SheetNotFoundError struct {
	Required   string
	BestScore  int
	Suggestion string
}

func (e *SheetNotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("sheet %q not found (closest: %q, score %d)", e.Required, e.Suggestion, e.BestScore)
	}
	return fmt.Sprintf("sheet %q not found", e.Required)
}

func (e *SheetNotFoundError) Unwrap() error { return ErrSheetNotFound }

// SheetRecognizer 目标 Sheet 识别器
type SheetRecognizer struct {
	matcher *fuzzy.Matcher
	cutoff  int
}

// NewSheetRecognizer 创建识别器
func NewSheetRecognizer(matcher *fuzzy.Matcher, cutoff int) *SheetRecognizer {
	if matcher == nil {
		matcher = fuzzy.NewMatcher(nil)
	}
	if cutoff <= 0 {
		cutoff = DefaultSheetCutoff
	}
	return &SheetRecognizer{matcher: matcher, cutoff: cutoff}
}

// Recognize 优先精确匹配（区分大小写），否则取模糊最佳且不低于阈值的 Sheet
func (r *SheetRecognizer) Recognize(required string, sheetNames []string) (SheetMatch, error) {
	for _, name := range sheetNames {
		if name == required {
			return SheetMatch{SheetName: name, Score: 100, Exact: true}, nil
		}
	}

	if len(sheetNames) == 0 {
		return SheetMatch{}, &SheetNotFoundError{Required: required, BestScore: -1}
	}

	best, _ := r.matcher.ExtractOne(required, sheetNames, 0)
	if best.Score >= r.cutoff {
		return SheetMatch{SheetName: best.Option, Score: best.Score}, nil
	}

	return SheetMatch{}, &SheetNotFoundError{
		Required:   required,
		BestScore:  best.Score,
		Suggestion: suggestSheet(required, sheetNames, best.Option),
	}
}

// suggestSheet 为诊断信息挑一个最接近的 Sheet 名
func suggestSheet(required string, sheetNames []string, fallback string) string {
	cm := closestmatch.New(sheetNames, []int{2, 3})
	if s := cm.Closest(required); s != "" {
		return s
	}
	return fallback
}
