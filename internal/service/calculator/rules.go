package calculator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/motumbon/contratos/internal/model"
)

// ErrUnknownDateRange date_range 取值不在允许范围内
var ErrUnknownDateRange = errors.New("unknown date range")

// DateRange 到期区间
type DateRange string

const (
	RangeExpired DateRange = "vencidos"
	Range0To30   DateRange = "0-30"
	Range31To60  DateRange = "31-60"
	Range61To90  DateRange = "61-90"
	RangeOver90  DateRange = "90+"
)

// DateRanges 全部区间，顺序与分桶标签一致
var DateRanges = []DateRange{RangeExpired, Range0To30, Range31To60, Range61To90, RangeOver90}

var rangeBucket = map[DateRange]string{
	RangeExpired: model.BucketExpired,
	Range0To30:   model.Bucket0To30,
	Range31To60:  model.Bucket31To60,
	Range61To90:  model.Bucket61To90,
	RangeOver90:  model.BucketOver90,
}

// ParseDateRange 解析 date_range 参数；空串表示不限制
func ParseDateRange(s string) (DateRange, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	r := DateRange(s)
	if _, ok := rangeBucket[r]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDateRange, s)
	}
	return r, nil
}

// Contains 天数是否落在区间内（与分桶边界一致）
func (r DateRange) Contains(delta int) bool {
	return BucketOf(delta) == rangeBucket[r]
}

// FilterByRange 只保留到期天数落在区间内的记录；无到期日的记录被排除。空区间不过滤
func (e *Engine) FilterByRange(records []model.ContractRecord, r DateRange) []model.ContractRecord {
	if r == "" {
		return records
	}
	today := e.Today()
	out := make([]model.ContractRecord, 0, len(records))
	for _, rec := range records {
		delta, ok := daysBetween(today, rec.FinValidez)
		if ok && r.Contains(delta) {
			out = append(out, rec)
		}
	}
	return out
}

// Query 数据查询条件：同一字段多个取值为“任一匹配”，空集合不限制
type Query struct {
	Lineas    []string
	Clientes  []string
	Productos []string
	Range     DateRange
}

// Apply 按条件过滤，保持原顺序
func (e *Engine) Apply(records []model.ContractRecord, q Query) []model.ContractRecord {
	lineas := toSet(q.Lineas)
	clientes := toSet(q.Clientes)
	productos := toSet(q.Productos)

	out := make([]model.ContractRecord, 0, len(records))
	for _, r := range records {
		if !inSet(lineas, r.Linea) || !inSet(clientes, r.Cliente) || !inSet(productos, r.Denominacion) {
			continue
		}
		out = append(out, r)
	}
	return e.FilterByRange(out, q.Range)
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func inSet(set map[string]struct{}, v *string) bool {
	if set == nil {
		return true
	}
	if v == nil {
		return false
	}
	_, ok := set[*v]
	return ok
}

// BuildFilterOptions 前端筛选项：去重、排序、去空
func BuildFilterOptions(records []model.ContractRecord) model.FilterOptions {
	return model.FilterOptions{
		Lineas:    distinct(records, func(r model.ContractRecord) *string { return r.Linea }),
		Clientes:  distinct(records, func(r model.ContractRecord) *string { return r.Cliente }),
		Productos: distinct(records, func(r model.ContractRecord) *string { return r.Denominacion }),
	}
}

func distinct(records []model.ContractRecord, field func(model.ContractRecord) *string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range records {
		v := field(r)
		if v == nil || *v == "" {
			continue
		}
		if _, ok := seen[*v]; ok {
			continue
		}
		seen[*v] = struct{}{}
		out = append(out, *v)
	}
	sort.Strings(out)
	return out
}
