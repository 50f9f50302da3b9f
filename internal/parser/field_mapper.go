package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/motumbon/contratos/internal/fuzzy"
)

// 识别阈值
const (
	DefaultRepColumnCutoff = 65
	DefaultFieldCutoff     = 60
)

// DefaultRepCandidates 代表人列的常见表头
var DefaultRepCandidates = []string{
	"KAM / Repr", "KAM", "Repr", "Representante", "KAM/Repr", "KAM-Rep", "Vendedor", "Ejecutivo",
}

// DefaultFieldCandidates 各数据字段的常见表头
func DefaultFieldCandidates() map[CanonicalKey][]string {
	return map[CanonicalKey][]string{
		KeyLinea:         {"Linea", "Línea", "Linea Comercial", "Line"},
		KeyNomCliente:    {"Nom_Cliente", "Cliente", "Nombre Cliente", "Cliente Nombre"},
		KeyNPedido:       {"Nº de pedido", "N° de pedido", "N de pedido", "Pedido", "Nro Pedido", "Nro de pedido"},
		KeyDenominacion:  {"Denominación", "Producto", "Descripción", "Denominacion"},
		KeyInicioValidez: {"Inicio validez", "Inicio de validez", "Fecha Inicio", "Desde"},
		KeyFinValidez:    {"Fin de validez", "Fin validez", "Fecha Fin", "Hasta", "Vencimiento"},
		KeyTipoCtto:      {"Tipo Ctto", "Tipo Ctto.", "Tipo Contrato", "Tipo de Contrato", "TipoCtto"},
	}
}

// FieldRequest 一个字段的识别请求
type FieldRequest struct {
	Key    CanonicalKey
	Names  []string
	Cutoff int
}

// ResolveStrategy 表头分配策略
type ResolveStrategy interface {
	Name() string
	Resolve(m *fuzzy.Matcher, reqs []FieldRequest, headers []string) []ColumnMatch
}

// IndependentStrategy 每个字段独立取最佳表头；同一表头可能被两个字段同时选中
type IndependentStrategy struct{}

func (IndependentStrategy) Name() string { return "independent" }

func (IndependentStrategy) Resolve(m *fuzzy.Matcher, reqs []FieldRequest, headers []string) []ColumnMatch {
	out := make([]ColumnMatch, 0, len(reqs))
	for _, req := range reqs {
		header, score, ok := m.BestMatch(req.Names, headers, req.Cutoff)
		if !ok {
			continue
		}
		out = append(out, ColumnMatch{Key: req.Key, Header: header, Score: score})
	}
	return out
}

// ExclusiveStrategy 一个表头只分配给一个字段：按分数从高到低贪心分配
type ExclusiveStrategy struct{}

func (ExclusiveStrategy) Name() string { return "exclusive" }

func (ExclusiveStrategy) Resolve(m *fuzzy.Matcher, reqs []FieldRequest, headers []string) []ColumnMatch {
	type pair struct {
		req    int
		header int
		score  int
	}

	pairs := make([]pair, 0, len(reqs)*len(headers))
	for ri, req := range reqs {
		for hi, h := range headers {
			best := -1
			for _, name := range req.Names {
				if s := m.Score(name, h); s >= req.Cutoff && s > best {
					best = s
				}
			}
			if best >= 0 {
				pairs = append(pairs, pair{req: ri, header: hi, score: best})
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].score != pairs[j].score {
			return pairs[i].score > pairs[j].score
		}
		if pairs[i].req != pairs[j].req {
			return pairs[i].req < pairs[j].req
		}
		return pairs[i].header < pairs[j].header
	})

	assigned := make(map[int]ColumnMatch, len(reqs))
	usedHeader := make(map[int]struct{}, len(headers))
	for _, p := range pairs {
		if _, done := assigned[p.req]; done {
			continue
		}
		if _, used := usedHeader[p.header]; used {
			continue
		}
		assigned[p.req] = ColumnMatch{Key: reqs[p.req].Key, Header: headers[p.header], Score: p.score}
		usedHeader[p.header] = struct{}{}
	}

	out := make([]ColumnMatch, 0, len(assigned))
	for ri := range reqs {
		if cm, ok := assigned[ri]; ok {
			out = append(out, cm)
		}
	}
	return out
}

// StrategyByName 按名称取策略，空串为 independent
func StrategyByName(name string) (ResolveStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "independent":
		return IndependentStrategy{}, nil
	case "exclusive":
		return ExclusiveStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown resolve strategy %q", name)
	}
}

// FieldMapperOptions 字段映射器配置
type FieldMapperOptions struct {
	RepCandidates   []string
	FieldCandidates map[CanonicalKey][]string
	RepCutoff       int
	FieldCutoff     int
	Strategy        ResolveStrategy
	Matcher         *fuzzy.Matcher
}

// FieldMapper 字段映射器：把任意表头映射到规范字段
type FieldMapper struct {
	matcher  *fuzzy.Matcher
	strategy ResolveStrategy
	requests []FieldRequest
}

// NewFieldMapper 创建字段映射器；未设置的选项使用默认值
func NewFieldMapper(opts FieldMapperOptions) *FieldMapper {
	if opts.RepCandidates == nil {
		opts.RepCandidates = DefaultRepCandidates
	}
	if opts.FieldCandidates == nil {
		opts.FieldCandidates = DefaultFieldCandidates()
	}
	if opts.RepCutoff <= 0 {
		opts.RepCutoff = DefaultRepColumnCutoff
	}
	if opts.FieldCutoff <= 0 {
		opts.FieldCutoff = DefaultFieldCutoff
	}
	if opts.Strategy == nil {
		opts.Strategy = IndependentStrategy{}
	}
	if opts.Matcher == nil {
		opts.Matcher = fuzzy.NewMatcher(nil)
	}

	reqs := make([]FieldRequest, 0, len(DataKeys)+1)
	reqs = append(reqs, FieldRequest{Key: KeyRep, Names: opts.RepCandidates, Cutoff: opts.RepCutoff})
	for _, key := range DataKeys {
		names := opts.FieldCandidates[key]
		if len(names) == 0 {
			continue
		}
		reqs = append(reqs, FieldRequest{Key: key, Names: names, Cutoff: opts.FieldCutoff})
	}

	return &FieldMapper{
		matcher:  opts.Matcher,
		strategy: opts.Strategy,
		requests: reqs,
	}
}

// Strategy 当前分配策略
func (m *FieldMapper) Strategy() ResolveStrategy {
	return m.strategy
}

// Map 识别表头
func (m *FieldMapper) Map(headers []string) MappingResult {
	options := make([]string, 0, len(headers))
	for _, h := range headers {
		if strings.TrimSpace(h) != "" {
			options = append(options, h)
		}
	}

	matches := m.strategy.Resolve(m.matcher, m.requests, options)

	result := MappingResult{
		Mapping:    make(ColumnMapping, len(matches)),
		Matches:    matches,
		Unresolved: []CanonicalKey{},
	}
	for _, cm := range matches {
		result.Mapping[cm.Key] = cm.Header
	}
	for _, req := range m.requests {
		if _, ok := result.Mapping[req.Key]; !ok {
			result.Unresolved = append(result.Unresolved, req.Key)
		}
	}
	return result
}
