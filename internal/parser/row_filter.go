package parser

import (
	"strings"

	"github.com/motumbon/contratos/internal/fuzzy"
	"github.com/motumbon/contratos/internal/textnorm"
)

// 行过滤阈值
const (
	DefaultRepMatchThreshold          = 70
	DefaultContractTypeMatchThreshold = 85
)

// DefaultContractTypes 有效合同类型
var DefaultContractTypes = []string{
	"Licitacion Publica",
	"Licitacion Privada",
	"Trato Directo",
	"Acuerdo Comercial",
	"Cotizacion",
	"Cotizacion Masiva",
}

// RepresentativeFilter 按销售代表姓名过滤行
type RepresentativeFilter struct {
	target    string
	threshold int
	matcher   *fuzzy.Matcher
}

// NewRepresentativeFilter 创建代表人过滤器
func NewRepresentativeFilter(target string, threshold int, matcher *fuzzy.Matcher) *RepresentativeFilter {
	if threshold <= 0 {
		threshold = DefaultRepMatchThreshold
	}
	if matcher == nil {
		matcher = fuzzy.NewMatcher(nil)
	}
	return &RepresentativeFilter{
		target:    textnorm.NormalizeString(target),
		threshold: threshold,
		matcher:   matcher,
	}
}

// Match 单元格是否属于目标代表：互为子串或相似度 >= 阈值
func (f *RepresentativeFilter) Match(cell any) bool {
	if textnorm.IsBlank(cell) {
		return false
	}
	value := textnorm.Normalize(cell)
	if f.target == "" {
		return false
	}
	if strings.Contains(value, f.target) || strings.Contains(f.target, value) {
		return true
	}
	return f.matcher.Score(value, f.target) >= f.threshold
}

// Apply 过滤表格；未识别代表人列时返回空表
func (f *RepresentativeFilter) Apply(t *RawTable, header string) *RawTable {
	if _, ok := t.ColumnIndex(header); header == "" || !ok {
		return t.Filter(func(int) bool { return false })
	}
	return t.Filter(func(row int) bool {
		return f.Match(t.Cell(row, header))
	})
}

// ContractTypeFilter 按合同类型白名单过滤行
type ContractTypeFilter struct {
	vocabulary []string
	threshold  int
	matcher    *fuzzy.Matcher
}

// NewContractTypeFilter 创建合同类型过滤器
func NewContractTypeFilter(vocabulary []string, threshold int, matcher *fuzzy.Matcher) *ContractTypeFilter {
	if vocabulary == nil {
		vocabulary = DefaultContractTypes
	}
	if threshold <= 0 {
		threshold = DefaultContractTypeMatchThreshold
	}
	if matcher == nil {
		matcher = fuzzy.NewMatcher(nil)
	}
	normalized := make([]string, 0, len(vocabulary))
	for _, v := range vocabulary {
		if n := textnorm.NormalizeString(v); n != "" {
			normalized = append(normalized, n)
		}
	}
	return &ContractTypeFilter{vocabulary: normalized, threshold: threshold, matcher: matcher}
}

// Match 单元格是否为有效合同类型：规范化后完全相等或相似度 >= 阈值
func (f *ContractTypeFilter) Match(cell any) bool {
	if textnorm.IsBlank(cell) {
		return false
	}
	value := textnorm.Normalize(cell)
	for _, v := range f.vocabulary {
		if value == v {
			return true
		}
	}
	for _, v := range f.vocabulary {
		if f.matcher.Score(value, v) >= f.threshold {
			return true
		}
	}
	return false
}

// Apply 过滤表格；未识别合同类型列时不过滤
func (f *ContractTypeFilter) Apply(t *RawTable, header string) *RawTable {
	if _, ok := t.ColumnIndex(header); header == "" || !ok {
		return t
	}
	return t.Filter(func(row int) bool {
		return f.Match(t.Cell(row, header))
	})
}
