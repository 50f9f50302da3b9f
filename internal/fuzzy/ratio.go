// Package fuzzy 0-100 字符串相似度（weighted ratio）与候选项检索
package fuzzy

import (
	"math"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/motumbon/contratos/internal/textnorm"
)

const (
	unbaseScale = 0.95
)

// Scorer 相似度打分函数，返回 [0,100]
type Scorer func(a, b string) int

// WRatio 加权相似度：对大小写、空白、重音、词序和部分重叠不敏感
func WRatio(a, b string) int {
	return int(math.Round(wratio(textnorm.Fold(a), textnorm.Fold(b))))
}

func wratio(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0
	}

	len1 := float64(runeLen(s1))
	len2 := float64(runeLen(s2))
	lenRatio := len1 / len2
	if len2 > len1 {
		lenRatio = len2 / len1
	}

	end := ratio(s1, s2)
	if lenRatio < 1.5 {
		return math.Max(end, tokenRatio(s1, s2)*unbaseScale)
	}

	partialScale := 0.9
	if lenRatio >= 8.0 {
		partialScale = 0.6
	}
	end = math.Max(end, partialRatio(s1, s2)*partialScale)
	return math.Max(end, partialTokenRatio(s1, s2)*unbaseScale*partialScale)
}

// Ratio 归一化 Indel 相似度（不做预处理）
func Ratio(a, b string) int {
	return int(math.Round(ratio(a, b)))
}

// PartialRatio 短串与长串最佳对齐子串的相似度（不做预处理）
func PartialRatio(a, b string) int {
	return int(math.Round(partialRatio(a, b)))
}

// TokenSortRatio 词排序后的相似度（不做预处理）
func TokenSortRatio(a, b string) int {
	return int(math.Round(tokenSortRatio(a, b)))
}

// TokenSetRatio 词集合相似度（不做预处理）
func TokenSetRatio(a, b string) int {
	return int(math.Round(tokenSetRatio(a, b)))
}

// ratio = 2*LCS / (len1+len2)
func ratio(s1, s2 string) float64 {
	total := runeLen(s1) + runeLen(s2)
	if total == 0 {
		return 100
	}
	if s1 == s2 {
		return 100
	}
	lcs := edlib.LCS(s1, s2)
	return math.Min(100, 100*float64(2*lcs)/float64(total))
}

func partialRatio(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0
	}
	short, long := []rune(s1), []rune(s2)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == len(long) {
		return ratio(s1, s2)
	}

	needle := string(short)
	m := len(short)
	best := 0.0
	consider := func(window []rune) bool {
		r := ratio(needle, string(window))
		if r > best {
			best = r
		}
		return best >= 100
	}

	for i := 0; i+m <= len(long); i++ {
		if consider(long[i : i+m]) {
			return 100
		}
	}
	// 两端不足长度的窗口
	for k := 1; k < m; k++ {
		if consider(long[:k]) || consider(long[len(long)-k:]) {
			return 100
		}
	}
	return best
}

func tokenRatio(s1, s2 string) float64 {
	return math.Max(tokenSortRatio(s1, s2), tokenSetRatio(s1, s2))
}

func tokenSortRatio(s1, s2 string) float64 {
	return ratio(sortedTokens(s1), sortedTokens(s2))
}

func tokenSetRatio(s1, s2 string) float64 {
	setA, setB := tokenSet(s1), tokenSet(s2)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var inter, diffAB, diffBA []string
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			inter = append(inter, tok)
		} else {
			diffAB = append(diffAB, tok)
		}
	}
	for tok := range setB {
		if _, ok := setA[tok]; !ok {
			diffBA = append(diffBA, tok)
		}
	}
	sort.Strings(inter)
	sort.Strings(diffAB)
	sort.Strings(diffBA)

	t0 := strings.Join(inter, " ")
	t1 := strings.TrimSpace(t0 + " " + strings.Join(diffAB, " "))
	t2 := strings.TrimSpace(t0 + " " + strings.Join(diffBA, " "))

	best := ratio(t1, t2)
	if t0 != "" {
		best = math.Max(best, ratio(t0, t1))
		best = math.Max(best, ratio(t0, t2))
	}
	return best
}

// partialTokenRatio 有共同词直接 100，否则对排序后的词串做 partial
func partialTokenRatio(s1, s2 string) float64 {
	setA, setB := tokenSet(s1), tokenSet(s2)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			return 100
		}
	}
	return partialRatio(joinSorted(setA), joinSorted(setB))
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		out[tok] = struct{}{}
	}
	return out
}

func joinSorted(set map[string]struct{}) string {
	tokens := make([]string, 0, len(set))
	for tok := range set {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func runeLen(s string) int {
	return len([]rune(s))
}
