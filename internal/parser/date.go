package parser

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"

	"github.com/motumbon/contratos/internal/model"
	"github.com/motumbon/contratos/internal/textnorm"
)

// DateReason 日期解析结果原因
type DateReason string

const (
	ReasonMissing     DateReason = "missing"
	ReasonNative      DateReason = "native"
	ReasonSerial      DateReason = "serial"
	ReasonParsed      DateReason = "parsed"
	ReasonUnparseable DateReason = "unparseable"
)

// Excel 序列号合理范围：1900-01-01 .. 9999-12-31
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// 文本单元格里的纯数字只有 >= 20000（1954 年之后）才按序列号处理，"2025"、"12" 之类不是日期
const minTextSerial = 20000

// dayFirstNumeric 以 - 或 . 分隔的 日-月-年 文本，统一成 / 后按日在前解析
var dayFirstNumeric = regexp.MustCompile(`^(\d{1,2})[-.](\d{1,2})[-.](\d{2,4})(\s.*)?$`)

var dayFirstLayouts = []string{
	"2/1/2006",
	"2/1/2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/06",
	"2/1/06 15:04",
	"2/1/06 15:04:05",
}

// DateResult 日期解析结果；OK 为 false 时 Time 为零值
type DateResult struct {
	Time   time.Time
	OK     bool
	Reason DateReason
	Raw    string
}

// ISO 格式化为 YYYY-MM-DD；未解析时返回 nil
func (r DateResult) ISO() *string {
	if !r.OK {
		return nil
	}
	s := r.Time.Format(model.DateLayout)
	return &s
}

// ParseDate 解析单元格日期，日/月歧义时按日在前处理。不会 panic，失败通过 Reason 表达
func ParseDate(v any) DateResult {
	switch x := v.(type) {
	case nil:
		return DateResult{Reason: ReasonMissing}
	case time.Time:
		if x.IsZero() {
			return DateResult{Reason: ReasonMissing}
		}
		return DateResult{Time: x, OK: true, Reason: ReasonNative}
	case *time.Time:
		if x == nil || x.IsZero() {
			return DateResult{Reason: ReasonMissing}
		}
		return DateResult{Time: *x, OK: true, Reason: ReasonNative}
	case float64:
		return fromSerial(x, textnorm.String(x))
	case int:
		return fromSerial(float64(x), strconv.Itoa(x))
	case int64:
		return fromSerial(float64(x), strconv.FormatInt(x, 10))
	}

	raw := strings.TrimSpace(textnorm.String(v))
	if textnorm.IsBlank(raw) {
		return DateResult{Reason: ReasonMissing}
	}

	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		if f < minTextSerial {
			return DateResult{Reason: ReasonUnparseable, Raw: raw}
		}
		return fromSerial(f, raw)
	}

	t, err := parseText(raw)
	if err != nil {
		return DateResult{Reason: ReasonUnparseable, Raw: raw}
	}
	return DateResult{Time: t, OK: true, Reason: ReasonParsed, Raw: raw}
}

func fromSerial(f float64, raw string) DateResult {
	if f < minExcelSerial || f > maxExcelSerial {
		return DateResult{Reason: ReasonUnparseable, Raw: raw}
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return DateResult{Reason: ReasonUnparseable, Raw: raw}
	}
	return DateResult{Time: t, OK: true, Reason: ReasonSerial, Raw: raw}
}

// parseText 文本日期；dd-mm-yyyy 与 dd.mm.yyyy 先按日在前的固定格式解析，其余交给 dateparse。
// dateparse 在极端输入下可能 panic，这里兜底
func parseText(raw string) (t time.Time, err error) {
	if m := dayFirstNumeric.FindStringSubmatch(raw); m != nil {
		slashed := m[1] + "/" + m[2] + "/" + m[3] + m[4]
		for _, layout := range dayFirstLayouts {
			if t, err := time.Parse(layout, slashed); err == nil {
				return t, nil
			}
		}
		return time.Time{}, errUnparseableDate
	}

	defer func() {
		if r := recover(); r != nil {
			err = errUnparseableDate
		}
	}()
	return dateparse.ParseIn(raw, time.UTC, dateparse.PreferMonthFirst(false))
}

var errUnparseableDate = errors.New("unparseable date")
