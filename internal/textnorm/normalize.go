// Package textnorm 文本规范化：所有模糊匹配前的统一比较形式
package textnorm

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// invisible 需要直接删除的不可见/格式字符
var invisible = strings.NewReplacer(
	"\u00a0", "", // 不换行空格
	"\u200b", "", // 零宽空格
	"\u200c", "",
	"\u200d", "",
	"\u2060", "",
	"\u00ad", "", // 软连字符
	"\ufeff", "", // BOM
)

// Normalize 规范化任意单元格值：删除不可见字符、去首尾空白、压缩空白、转大写
// nil 返回空串
func Normalize(v any) string {
	return NormalizeString(String(v))
}

// NormalizeString 规范化字符串
func NormalizeString(s string) string {
	if s == "" {
		return ""
	}
	s = invisible.Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToUpper(s)
}

// Fold 在 NormalizeString 基础上去除重音，作为模糊比较的键
func Fold(s string) string {
	s = NormalizeString(s)
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// String 单元格值转字符串（不做规范化）
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(x)
	}
}

// IsBlank 判断单元格是否为空（nil 或只有空白/不可见字符）
func IsBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	return NormalizeString(s) == ""
}
