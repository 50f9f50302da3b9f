package parser

import "testing"

func TestBuildRecords(t *testing.T) {
	t.Parallel()

	headers := []string{"KAM / Repr", "Linea", "Nom_Cliente", "Nº de pedido", "Denominación", "Fin de validez"}
	table := NewRawTable(headers, [][]any{
		{"PABLO YEVENES", "Cardio", "Hospital A", 4500012345.0, "Stent", 45292.0},
		{"PABLO YEVENES", "Cardio", "Hospital A", nil, "Catéter", "31/12/2025"},
		{"PABLO YEVENES", nil, "Hospital B", "  ", "Guía", "31/12/2025"},
		{"PABLO YEVENES", "Neuro", " Clínica C ", "PO-77", nil, "31/12/2025"},
		{"PABLO YEVENES", "Neuro", "Clínica C", "PO-78", "Coil", "pronto"},
	})
	mapping := ColumnMapping{
		KeyRep:          "KAM / Repr",
		KeyLinea:        "Linea",
		KeyNomCliente:   "Nom_Cliente",
		KeyNPedido:      "Nº de pedido",
		KeyDenominacion: "Denominación",
		KeyFinValidez:   "Fin de validez",
	}

	records, stats := BuildRecords(table, mapping)
	if len(records) != 3 {
		t.Fatalf("want 3 records, got %d", len(records))
	}
	if stats.Dropped != 2 || stats.Rows != 5 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(stats.DateIssues) != 1 || stats.DateIssues[0].Raw != "pronto" || stats.DateIssues[0].Key != KeyFinValidez {
		t.Fatalf("unexpected date issues: %+v", stats.DateIssues)
	}

	first := records[0]
	if first.Pedido != "4500012345" {
		t.Fatalf("pedido want=4500012345 got=%q", first.Pedido)
	}
	if first.FinValidez == nil || *first.FinValidez != "2024-01-01" {
		t.Fatalf("fin validez want=2024-01-01 got=%v", first.FinValidez)
	}
	if first.InicioValidez != nil || first.TipoContrato != nil {
		t.Fatalf("unresolved keys must be null: %+v", first)
	}

	second := records[1]
	if second.Pedido != "PO-77" || second.Denominacion != nil {
		t.Fatalf("unexpected second record: %+v", second)
	}
	if second.Cliente == nil || *second.Cliente != "Clínica C" {
		t.Fatalf("cliente should be trimmed: %v", second.Cliente)
	}
	if second.FinValidez == nil || *second.FinValidez != "2025-12-31" {
		t.Fatalf("fin validez want=2025-12-31 got=%v", second.FinValidez)
	}

	if records[2].FinValidez != nil {
		t.Fatalf("unparseable date should be null, got %v", *records[2].FinValidez)
	}
	for _, r := range records {
		if r.Pedido == "" {
			t.Fatalf("record without order id: %+v", r)
		}
	}
}

func TestBuildRecords_NoOrderColumnDropsAll(t *testing.T) {
	t.Parallel()

	table := NewRawTable([]string{"Linea"}, [][]any{{"Cardio"}, {"Neuro"}})
	records, stats := BuildRecords(table, ColumnMapping{KeyLinea: "Linea"})
	if len(records) != 0 || stats.Dropped != 2 {
		t.Fatalf("want all rows dropped, got records=%d stats=%+v", len(records), stats)
	}
}
