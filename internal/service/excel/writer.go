package excel

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/motumbon/contratos/internal/model"
)

// SheetData 待写入的 Sheet：第一行通常为表头
type SheetData struct {
	Name string
	Rows [][]any
}

// WriteWorkbook 按顺序写出多个 Sheet，返回 xlsx 字节
func WriteWorkbook(sheets ...SheetData) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, errors.New("no sheets to write")
	}

	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName(wb.GetSheetName(0), sheets[0].Name); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, s := range sheets[1:] {
		if _, err := wb.NewSheet(s.Name); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", s.Name, err)
		}
	}

	for _, s := range sheets {
		for i, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return nil, err
			}
			r := row
			if err := wb.SetSheetRow(s.Name, cell, &r); err != nil {
				return nil, fmt.Errorf("write sheet %q row %d: %w", s.Name, i+1, err)
			}
		}
	}
	wb.SetActiveSheet(0)

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// 导出表头，与记录 JSON 字段一致
var exportHeaders = []any{"Linea", "Nom_Cliente", "Nº de pedido", "Denominación", "Tipo Ctto", "Inicio de validez", "Fin de validez"}

// ExportRecords 导出记录与到期分桶（"Contratos" + "Resumen" 两个 Sheet）
func ExportRecords(records []model.ContractRecord, buckets model.ExpirationBuckets) ([]byte, error) {
	rows := make([][]any, 0, len(records)+1)
	rows = append(rows, exportHeaders)
	for _, r := range records {
		rows = append(rows, []any{
			deref(r.Linea), deref(r.Cliente), r.Pedido, deref(r.Denominacion),
			deref(r.TipoContrato), deref(r.InicioValidez), deref(r.FinValidez),
		})
	}

	summary := [][]any{{"Plazo", "Contratos"}}
	for _, label := range model.BucketLabels {
		summary = append(summary, []any{label, buckets.Count(label)})
	}

	return WriteWorkbook(
		SheetData{Name: "Contratos", Rows: rows},
		SheetData{Name: "Resumen", Rows: summary},
	)
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
