package fuzzy

// Match 检索结果
type Match struct {
	Option string `json:"option"`
	Score  int    `json:"score"`
	Index  int    `json:"index"`
}

// Matcher 带打分函数的检索器
type Matcher struct {
	scorer Scorer
}

// NewMatcher 创建检索器；scorer 为 nil 时使用 WRatio
func NewMatcher(scorer Scorer) *Matcher {
	if scorer == nil {
		scorer = WRatio
	}
	return &Matcher{scorer: scorer}
}

// Score 对两个字符串打分
func (m *Matcher) Score(a, b string) int {
	return m.scorer(a, b)
}

// ExtractOne 在 options 中找与 query 最相似的一项；低于 cutoff 视为无匹配。
// 同分取靠前的选项。
func (m *Matcher) ExtractOne(query string, options []string, cutoff int) (Match, bool) {
	best := Match{Score: -1, Index: -1}
	for i, opt := range options {
		score := m.scorer(query, opt)
		if score < cutoff {
			continue
		}
		if score > best.Score {
			best = Match{Option: opt, Score: score, Index: i}
		}
	}
	return best, best.Index >= 0
}

// BestMatch 多个候选名分别检索，取全局最高分；同分保留先出现候选名的结果。
// 无任何候选过线时返回 ("", -1, false)。
func (m *Matcher) BestMatch(candidates, options []string, cutoff int) (string, int, bool) {
	best := ""
	bestScore := -1
	for _, cand := range candidates {
		match, ok := m.ExtractOne(cand, options, cutoff)
		if !ok {
			continue
		}
		if match.Score > bestScore {
			best = match.Option
			bestScore = match.Score
		}
	}
	return best, bestScore, bestScore >= 0
}

var defaultMatcher = NewMatcher(WRatio)

// ExtractOne 使用默认 WRatio 检索
func ExtractOne(query string, options []string, cutoff int) (Match, bool) {
	return defaultMatcher.ExtractOne(query, options, cutoff)
}

// BestMatch 使用默认 WRatio 检索
func BestMatch(candidates, options []string, cutoff int) (string, int, bool) {
	return defaultMatcher.BestMatch(candidates, options, cutoff)
}
