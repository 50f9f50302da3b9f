package importer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/motumbon/contratos/internal/parser"
	"github.com/motumbon/contratos/internal/service/excel"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Emit(_ context.Context, evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

var fullHeaders = []any{"KAM / Repr", "Linea", "Nom_Cliente", "Nº de pedido", "Denominación", "Inicio de validez", "Fin de validez", "Tipo Ctto"}

func day(offset int) string {
	return time.Now().AddDate(0, 0, offset).Format("2006-01-02")
}

func workbook(t *testing.T, sheets ...excel.SheetData) []byte {
	t.Helper()

	data, err := excel.WriteWorkbook(sheets...)
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return data
}

func ddbb(rows ...[]any) excel.SheetData {
	return excel.SheetData{Name: "DDBB", Rows: append([][]any{fullHeaders}, rows...)}
}

func TestCoordinator_Process_HappyPath(t *testing.T) {
	t.Parallel()

	data := workbook(t,
		excel.SheetData{Name: "Resumen", Rows: [][]any{{"x"}}},
		ddbb(
			[]any{"Pablo Yévenes Soto", "Cardio", "Hospital A", "PO-1", "Stent", "01/01/2025", day(-10), "licitación pública"},
			[]any{"PABLO YEVENES", "Neuro", "Clínica B", 4500012345, "Coil", "01/02/2025", day(15), "Trato Directo"},
			[]any{"MARIA GONZALEZ", "Cardio", "Hospital A", "PO-3", "Stent", nil, day(5), "Trato Directo"},
			[]any{"PABLO YEVENES", "Cardio", "Hospital A", "PO-4", "Stent", nil, day(5), "Convenio Marco"},
			[]any{"PABLO YEVENES", "Cardio", "Hospital A", nil, "Stent", nil, day(5), "Cotizacion"},
			[]any{"PABLO YEVENES", "Cardio", "Hospital C", "PO-6", "Guía", nil, "pronto", "Cotizacion"},
		),
	)

	sink := &recordingSink{}
	c := NewCoordinator(Options{}, sink)
	res, err := c.Process(context.Background(), Upload{Filename: "Contratos.XLSX", Data: data})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if res.Sheet.SheetName != "DDBB" || !res.Sheet.Exact {
		t.Fatalf("unexpected sheet: %+v", res.Sheet)
	}
	want := Funnel{Rows: 6, ContractTypes: 5, Representative: 4, Records: 3}
	if res.Funnel != want {
		t.Fatalf("funnel want=%+v got=%+v", want, res.Funnel)
	}

	recs := res.Set.Records
	if recs[0].Pedido != "PO-1" || recs[1].Pedido != "4500012345" || recs[2].Pedido != "PO-6" {
		t.Fatalf("unexpected records order: %+v", recs)
	}
	if recs[0].InicioValidez == nil || *recs[0].InicioValidez != "2025-01-01" {
		t.Fatalf("day-first start date not parsed: %v", recs[0].InicioValidez)
	}
	if recs[0].FinValidez == nil || *recs[0].FinValidez != day(-10) {
		t.Fatalf("unexpected end date: %v", recs[0].FinValidez)
	}
	if recs[2].FinValidez != nil {
		t.Fatalf("unparseable date should be null")
	}
	if len(res.Stats.DateIssues) != 1 {
		t.Fatalf("want one date issue, got %+v", res.Stats.DateIssues)
	}
	if res.Set.Sheet != "DDBB" || res.Set.Filename != "Contratos.XLSX" || res.Set.Mapping["rep"] != "KAM / Repr" {
		t.Fatalf("unexpected record set metadata: %+v", res.Set)
	}

	types := strings.Join(sink.types(), ",")
	for _, want := range []string{EventStart, EventSheetMatched, EventColumnResolved, EventRowsFiltered, EventDateIssue, EventDone} {
		if !strings.Contains(types, want) {
			t.Fatalf("missing event %s in %s", want, types)
		}
	}
}

func TestCoordinator_Process_Failures(t *testing.T) {
	t.Parallel()

	row := func(rep, tipo string) []any {
		return []any{rep, "Cardio", "Hospital A", "PO-1", "Stent", nil, day(3), tipo}
	}

	cases := []struct {
		name     string
		filename string
		data     func(t *testing.T) []byte
		kind     Kind
		code     error
		contains string
	}{
		{
			name:     "empty filename",
			filename: "",
			data:     func(*testing.T) []byte { return nil },
			kind:     KindInputValidation,
			code:     ErrEmptyFilename,
		},
		{
			name:     "bad extension",
			filename: "datos.csv",
			data:     func(*testing.T) []byte { return []byte("a,b") },
			kind:     KindInputValidation,
			code:     ErrUnsupportedFormat,
		},
		{
			name:     "no ddbb sheet",
			filename: "x.xlsx",
			data: func(t *testing.T) []byte {
				return workbook(t, excel.SheetData{Name: "Hoja1", Rows: [][]any{{"a"}, {"b"}}})
			},
			kind:     KindSchemaResolution,
			code:     ErrSheetNotFound,
			contains: `"DDBB"`,
		},
		{
			name:     "empty sheet",
			filename: "x.xlsx",
			data:     func(t *testing.T) []byte { return workbook(t, ddbb()) },
			kind:     KindSchemaResolution,
			code:     ErrEmptySheet,
		},
		{
			name:     "no columns",
			filename: "x.xlsx",
			data: func(t *testing.T) []byte {
				return workbook(t, excel.SheetData{Name: "DDBB", Rows: [][]any{{"Sucursal"}, {"Santiago"}}})
			},
			kind: KindSchemaResolution,
			code: ErrNoColumns,
		},
		{
			name:     "no contract types",
			filename: "x.xlsx",
			data:     func(t *testing.T) []byte { return workbook(t, ddbb(row("PABLO YEVENES", "Convenio Marco"))) },
			kind:     KindContentFilter,
			code:     ErrNoContractTypes,
		},
		{
			name:     "no representative",
			filename: "x.xlsx",
			data:     func(t *testing.T) []byte { return workbook(t, ddbb(row("MARIA GONZALEZ", "Trato Directo"))) },
			kind:     KindContentFilter,
			code:     ErrNoRepresentative,
			contains: "PABLO YEVENES",
		},
		{
			name:     "no records",
			filename: "x.xlsx",
			data: func(t *testing.T) []byte {
				return workbook(t, excel.SheetData{Name: "DDBB", Rows: [][]any{{"KAM / Repr", "Linea"}, {"PABLO YEVENES", "Cardio"}}})
			},
			kind: KindRecordBuild,
			code: ErrNoRecords,
		},
		{
			name:     "corrupt workbook",
			filename: "x.xlsx",
			data:     func(*testing.T) []byte { return []byte("not a zip") },
			kind:     KindInternal,
			code:     ErrProcessing,
			contains: "Error procesando el archivo",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := NewCoordinator(Options{}, nil)
			_, err := c.Process(context.Background(), Upload{Filename: tc.filename, Data: tc.data(t)})
			if err == nil {
				t.Fatalf("expected error")
			}
			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("want *Error, got %T", err)
			}
			if e.Kind != tc.kind || KindOf(err) != tc.kind {
				t.Fatalf("kind want=%s got=%s", tc.kind, e.Kind)
			}
			if !errors.Is(err, tc.code) {
				t.Fatalf("want errors.Is %v, got %v", tc.code, err)
			}
			if tc.contains != "" && !strings.Contains(e.Message, tc.contains) {
				t.Fatalf("message %q should contain %q", e.Message, tc.contains)
			}
		})
	}
}

func TestCoordinator_SheetNotFoundKeepsParserCause(t *testing.T) {
	t.Parallel()

	data := workbook(t, excel.SheetData{Name: "Resumen", Rows: [][]any{{"a"}, {"b"}}})
	_, err := NewCoordinator(Options{}, nil).Process(context.Background(), Upload{Filename: "x.xlsx", Data: data})
	if !errors.Is(err, parser.ErrSheetNotFound) {
		t.Fatalf("parser cause should be reachable: %v", err)
	}
}

func TestCoordinator_FuzzySheetAndCustomTarget(t *testing.T) {
	t.Parallel()

	data := workbook(t, excel.SheetData{Name: "Base DDBB", Rows: [][]any{
		{"Vendedor", "Pedido", "Fecha Fin"},
		{"Ana Rojas", "PO-9", day(40)},
		{"PABLO YEVENES", "PO-10", day(40)},
	}})
	c := NewCoordinator(Options{TargetRep: "ANA ROJAS"}, nil)
	res, err := c.Process(context.Background(), Upload{Filename: "x.xlsx", Data: data})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Sheet.SheetName != "Base DDBB" || res.Sheet.Exact {
		t.Fatalf("unexpected sheet: %+v", res.Sheet)
	}
	if len(res.Set.Records) != 1 || res.Set.Records[0].Pedido != "PO-9" {
		t.Fatalf("unexpected records: %+v", res.Set.Records)
	}
	if res.Set.Records[0].TipoContrato != nil {
		t.Fatalf("contract type column absent should leave field null")
	}
}

func TestSlogSink_DoesNotPanic(t *testing.T) {
	t.Parallel()

	sink := NewSlogSink(nil)
	sink.Emit(context.Background(), Event{Type: EventError, Message: "x", Data: map[string]any{"k": 1}})
}

func TestInternalError_Message(t *testing.T) {
	t.Parallel()

	e := InternalError(errors.New("boom"))
	if e.Message != "Error procesando el archivo: boom" || e.Kind != KindInternal {
		t.Fatalf("unexpected error: %+v", e)
	}
}
