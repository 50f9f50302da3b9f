package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/motumbon/contratos/internal/importer"
	"github.com/motumbon/contratos/internal/model"
	"github.com/motumbon/contratos/internal/service/calculator"
)

func TestWriteSample_ProcessesEndToEnd(t *testing.T) {
	t.Parallel()

	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "muestra.xlsx")
	if err := writeSample(path, today); err != nil {
		t.Fatalf("write sample: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	res, err := importer.NewCoordinator(importer.Options{}, nil).Process(context.Background(), importer.Upload{Filename: "muestra.xlsx", Data: data})
	if err != nil {
		t.Fatalf("process sample: %v", err)
	}
	// 其他代表与无效合同类型各排除一行
	if res.Set.Len() != 7 {
		t.Fatalf("want 7 records, got %d", res.Set.Len())
	}

	engine := calculator.NewEngine(func() time.Time { return today })
	buckets, soonest := engine.Buckets(res.Set.Records)
	want := model.ExpirationBuckets{Expired: 2, Days0To30: 2, Days31To60: 1, Days61To90: 1, Over90: 1}
	if buckets != want {
		t.Fatalf("buckets want=%+v got=%+v", want, buckets)
	}
	if len(soonest) != 6 || soonest[0].Pedido != "4500010001" {
		t.Fatalf("unexpected soonest: %+v", soonest)
	}
}
