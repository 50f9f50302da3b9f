package parser

import (
	"strings"

	"github.com/motumbon/contratos/internal/model"
	"github.com/motumbon/contratos/internal/textnorm"
)

// DateIssue 无法解析的日期单元格
type DateIssue struct {
	Row int          `json:"row"`
	Key CanonicalKey `json:"key"`
	Raw string       `json:"raw"`
}

// BuildStats 记录构建统计
type BuildStats struct {
	Rows       int         `json:"rows"`
	Dropped    int         `json:"dropped"`
	DateIssues []DateIssue `json:"dateIssues,omitempty"`
}

// BuildRecords 按映射把表格行投影为规范记录。
// 订单号为空的行被丢弃；未识别的字段一律为 null；保持行顺序。
func BuildRecords(t *RawTable, mapping ColumnMapping) ([]model.ContractRecord, BuildStats) {
	stats := BuildStats{Rows: t.Len()}
	records := make([]model.ContractRecord, 0, t.Len())

	text := func(row int, key CanonicalKey) *string {
		header, ok := mapping.Header(key)
		if !ok {
			return nil
		}
		v := t.Cell(row, header)
		if textnorm.IsBlank(v) {
			return nil
		}
		s := strings.TrimSpace(textnorm.String(v))
		return &s
	}

	date := func(row int, key CanonicalKey) *string {
		header, ok := mapping.Header(key)
		if !ok {
			return nil
		}
		res := ParseDate(t.Cell(row, header))
		if res.Reason == ReasonUnparseable {
			stats.DateIssues = append(stats.DateIssues, DateIssue{Row: row, Key: key, Raw: res.Raw})
		}
		return res.ISO()
	}

	for row := range t.Rows {
		pedido := text(row, KeyNPedido)
		if pedido == nil {
			stats.Dropped++
			continue
		}
		records = append(records, model.ContractRecord{
			Linea:         text(row, KeyLinea),
			Cliente:       text(row, KeyNomCliente),
			Pedido:        *pedido,
			Denominacion:  text(row, KeyDenominacion),
			TipoContrato:  text(row, KeyTipoCtto),
			InicioValidez: date(row, KeyInicioValidez),
			FinValidez:    date(row, KeyFinValidez),
		})
	}
	return records, stats
}
