package excel_test

import (
	"errors"
	"testing"

	"github.com/motumbon/contratos/internal/service/excel"
)

func buildWorkbook(t *testing.T, sheets ...excel.SheetData) []byte {
	t.Helper()

	data, err := excel.WriteWorkbook(sheets...)
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return data
}

func TestFormatOf(t *testing.T) {
	t.Parallel()

	cases := map[string]excel.Format{
		"contratos.xlsx": excel.FormatXLSX,
		"CONTRATOS.XLSX": excel.FormatXLSX,
		"viejo.Xls":      excel.FormatXLS,
	}
	for name, want := range cases {
		got, err := excel.FormatOf(name)
		if err != nil || got != want {
			t.Fatalf("FormatOf(%q) want=%s got=%s err=%v", name, want, got, err)
		}
	}
	for _, name := range []string{"datos.csv", "sin_extension", "x.xlsm"} {
		if _, err := excel.FormatOf(name); !errors.Is(err, excel.ErrUnsupportedFormat) {
			t.Fatalf("FormatOf(%q) want ErrUnsupportedFormat, got %v", name, err)
		}
	}
}

func TestOpen_XLSXTable(t *testing.T) {
	t.Parallel()

	data := buildWorkbook(t,
		excel.SheetData{Name: "Resumen", Rows: [][]any{{"Total"}, {3}}},
		excel.SheetData{Name: "DDBB", Rows: [][]any{
			{"KAM / Repr", "Nº de pedido", "Fin de validez"},
			{"PABLO YEVENES", 4500012345, 45292},
			{},
			{"MARIA GONZALEZ", "PO-2", "31/12/2025"},
		}},
	)

	wb, err := excel.Open(data, "contratos.xlsx")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = wb.Close() })

	if wb.Format() != excel.FormatXLSX {
		t.Fatalf("unexpected format %s", wb.Format())
	}
	names := wb.SheetNames()
	if len(names) != 2 {
		t.Fatalf("unexpected sheets: %v", names)
	}

	table, err := wb.Table("DDBB")
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("want 2 data rows, got %d", table.Len())
	}
	if got := table.Cell(0, "Nº de pedido"); got != "4500012345" {
		t.Fatalf("unexpected pedido cell: %v", got)
	}
	if got := table.Cell(0, "Fin de validez"); got != "45292" {
		t.Fatalf("date serial should be kept raw, got %v", got)
	}
	if got := table.Cell(1, "Fin de validez"); got != "31/12/2025" {
		t.Fatalf("text date should be kept, got %v", got)
	}
}

func TestOpen_MislabeledExtensionFallsBack(t *testing.T) {
	t.Parallel()

	data := buildWorkbook(t, excel.SheetData{Name: "DDBB", Rows: [][]any{{"A"}, {"1"}}})
	wb, err := excel.Open(data, "renombrado.xls")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = wb.Close() })
	if wb.Format() != excel.FormatXLSX {
		t.Fatalf("want xlsx fallback, got %s", wb.Format())
	}
}

func TestOpen_Garbage(t *testing.T) {
	t.Parallel()

	if _, err := excel.Open([]byte("not a workbook"), "datos.xlsx"); err == nil {
		t.Fatalf("expected error for garbage input")
	}
	if _, err := excel.Open([]byte("x"), "datos.txt"); !errors.Is(err, excel.ErrUnsupportedFormat) {
		t.Fatalf("want ErrUnsupportedFormat, got %v", err)
	}
}

func TestWorkbook_MissingSheet(t *testing.T) {
	t.Parallel()

	data := buildWorkbook(t, excel.SheetData{Name: "DDBB", Rows: [][]any{{"A"}}})
	wb, err := excel.Open(data, "x.xlsx")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = wb.Close() })
	if _, err := wb.Table("Otra"); err == nil {
		t.Fatalf("expected error for missing sheet")
	}
}
