package main

import (
	"os"
	"time"

	"github.com/motumbon/contratos/internal/importer"
	"github.com/motumbon/contratos/internal/model"
	"github.com/motumbon/contratos/internal/service/excel"
)

var sampleHeaders = []any{"KAM / Repr", "Linea", "Nom_Cliente", "Nº de pedido", "Denominación", "Inicio de validez", "Fin de validez", "Tipo Ctto"}

// sampleRows 示例数据：到期日相对 today，覆盖每个分桶
func sampleRows(today time.Time) [][]any {
	day := func(offset int) string { return today.AddDate(0, 0, offset).Format(model.DateLayout) }
	start := today.AddDate(-1, 0, 0).Format("02/01/2006")

	rep := importer.DefaultTargetRep
	return [][]any{
		sampleHeaders,
		{rep, "Cardiología", "Hospital Regional", "4500010001", "Stent coronario", start, day(-12), "Licitacion Publica"},
		{rep, "Cardiología", "Hospital Regional", "4500010001", "Catéter guía", start, day(-12), "Licitacion Publica"},
		{rep, "Neurología", "Clínica Santa María", "4500010002", "Coil", start, day(9), "Trato Directo"},
		{rep, "Vascular", "Hospital del Salvador", "4500010003", "Balón", start, day(27), "Cotizacion"},
		{rep, "Cardiología", "Clínica Alemana", "4500010004", "Stent coronario", start, day(45), "Acuerdo Comercial"},
		{rep, "Neurología", "Hospital Regional", "4500010005", "Microcatéter", start, day(80), "Licitacion Privada"},
		{rep, "Vascular", "Clínica Santa María", "4500010006", "Introductor", start, day(150), "Cotizacion Masiva"},
		{"MARIA GONZALEZ", "Cardiología", "Hospital Regional", "4500020001", "Stent coronario", start, day(20), "Trato Directo"},
		{rep, "Cardiología", "Hospital Regional", "4500010007", "Stent coronario", start, day(20), "Convenio Marco"},
	}
}

// writeSample 生成包含 DDBB 与 Resumen 两个 Sheet 的示例工作簿
func writeSample(path string, today time.Time) error {
	data, err := excel.WriteWorkbook(
		excel.SheetData{Name: "Resumen", Rows: [][]any{{"Archivo de ejemplo"}}},
		excel.SheetData{Name: importer.DefaultRequiredSheet, Rows: sampleRows(today)},
	)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
