package calculator

import (
	"sort"
	"time"

	"github.com/motumbon/contratos/internal/model"
)

// SoonestLimit 即将到期列表最大条数
const SoonestLimit = 20

// Engine 到期计算引擎
type Engine struct {
	now func() time.Time
}

// NewEngine 创建计算引擎；now 为 nil 时使用系统时间
func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// Summary 分桶结果
type Summary struct {
	Buckets model.ExpirationBuckets `json:"buckets"`
	Soonest []model.ContractRecord  `json:"soonest"`
}

// Today 当前日历日（按本地日期取年月日，落在 UTC 零点）
func (e *Engine) Today() time.Time {
	n := e.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysUntil 到期剩余天数；没有或无法解析到期日时 ok=false
func (e *Engine) DaysUntil(r model.ContractRecord) (int, bool) {
	return daysBetween(e.Today(), r.FinValidez)
}

func daysBetween(today time.Time, end *string) (int, bool) {
	if end == nil || *end == "" {
		return 0, false
	}
	d, err := time.Parse(model.DateLayout, *end)
	if err != nil {
		return 0, false
	}
	return int(d.Sub(today).Hours() / 24), true
}

// BucketOf 天数对应的分桶标签
func BucketOf(delta int) string {
	switch {
	case delta < 0:
		return model.BucketExpired
	case delta <= 30:
		return model.Bucket0To30
	case delta <= 60:
		return model.Bucket31To60
	case delta <= 90:
		return model.Bucket61To90
	default:
		return model.BucketOver90
	}
}

// Buckets 统计到期分桶并生成即将到期列表。
// 分桶计入每条记录（同一订单多行分别计数）；列表按订单号去重，保留天数最小者，升序取前 20。
func (e *Engine) Buckets(records []model.ContractRecord) (model.ExpirationBuckets, []model.ContractRecord) {
	today := e.Today()

	var buckets model.ExpirationBuckets
	type entry struct {
		delta int
		rec   model.ContractRecord
	}
	byPedido := make(map[string]int, len(records))
	entries := make([]entry, 0, len(records))

	for _, r := range records {
		delta, ok := daysBetween(today, r.FinValidez)
		if !ok {
			continue
		}
		buckets.Add(BucketOf(delta))

		if i, seen := byPedido[r.Pedido]; seen {
			if delta < entries[i].delta {
				entries[i] = entry{delta: delta, rec: r}
			}
			continue
		}
		byPedido[r.Pedido] = len(entries)
		entries = append(entries, entry{delta: delta, rec: r})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].delta < entries[j].delta })
	if len(entries) > SoonestLimit {
		entries = entries[:SoonestLimit]
	}

	soonest := make([]model.ContractRecord, len(entries))
	for i, en := range entries {
		soonest[i] = en.rec
	}
	return buckets, soonest
}

// Summarize 同 Buckets，返回可直接序列化的结构
func (e *Engine) Summarize(records []model.ContractRecord) Summary {
	b, s := e.Buckets(records)
	return Summary{Buckets: b, Soonest: s}
}
