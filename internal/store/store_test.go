package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/motumbon/contratos/internal/model"
	sessionstore "github.com/motumbon/contratos/internal/service/store"
)

var _ sessionstore.SessionStore = (*Store)(nil)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()

	st, err := New(filepath.Join(t.TempDir(), "data", "contratos.db"), ttl)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func strPtr(s string) *string { return &s }

func TestStore_SessionRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t, 0)

	if _, ok, err := st.Get(ctx, "s1"); ok || err != nil {
		t.Fatalf("empty store should miss: ok=%v err=%v", ok, err)
	}

	uploaded := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	in := &model.RecordSet{
		Records: []model.ContractRecord{
			{Pedido: "PO-1", Linea: strPtr("Cardio"), FinValidez: strPtr("2025-12-31")},
			{Pedido: "PO-2"},
		},
		Filename:   "contratos.xlsx",
		Sheet:      "DDBB",
		Mapping:    map[string]string{"rep": "KAM / Repr"},
		UploadedAt: uploaded,
	}
	if err := st.Put(ctx, "s1", in); err != nil {
		t.Fatalf("put: %v", err)
	}

	out, ok, err := st.Get(ctx, "s1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if out.Len() != 2 || out.Records[0].Pedido != "PO-1" || *out.Records[0].Linea != "Cardio" {
		t.Fatalf("unexpected records: %+v", out.Records)
	}
	if out.Records[1].Linea != nil {
		t.Fatalf("null field should round-trip as nil")
	}
	if out.Mapping["rep"] != "KAM / Repr" || !out.UploadedAt.Equal(uploaded) {
		t.Fatalf("unexpected metadata: %+v", out)
	}

	if err := st.Put(ctx, "s1", &model.RecordSet{Records: []model.ContractRecord{{Pedido: "PO-9"}}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	out, _, _ = st.Get(ctx, "s1")
	if out.Len() != 1 || out.Records[0].Pedido != "PO-9" {
		t.Fatalf("put should replace the set: %+v", out.Records)
	}

	if err := st.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := st.Get(ctx, "s1"); ok {
		t.Fatalf("session should be deleted")
	}
}

func TestStore_SessionTTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t, time.Hour)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	_ = st.Put(ctx, "a", &model.RecordSet{})
	if n, _ := st.CountSessions(ctx); n != 1 {
		t.Fatalf("want 1 session, got %d", n)
	}

	now = now.Add(2 * time.Hour)
	if _, ok, _ := st.Get(ctx, "a"); ok {
		t.Fatalf("session should have expired")
	}
	if n, _ := st.CountSessions(ctx); n != 0 {
		t.Fatalf("want 0 sessions, got %d", n)
	}
}

func TestStore_UploadLogs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t, 0)

	okID, err := st.CreateUploadLog(ctx, "s1", "contratos.xlsx", 2048, "abc")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.FinishUploadLog(ctx, okID, UploadSuccess, "", "", 12); err != nil {
		t.Fatalf("finish: %v", err)
	}
	badID, _ := st.CreateUploadLog(ctx, "s2", "otro.xlsx", 10, "def")
	_ = st.FinishUploadLog(ctx, badID, UploadError, "SchemaResolution", "No se encontró la hoja", 0)

	all, err := st.ListUploadLogs(ctx, "", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != badID {
		t.Fatalf("want newest first, got %+v", all)
	}
	if all[0].Kind != "SchemaResolution" || all[0].Status != UploadError {
		t.Fatalf("unexpected error log: %+v", all[0])
	}

	mine, _ := st.ListUploadLogs(ctx, "s1", 10)
	if len(mine) != 1 || mine[0].RecordCount != 12 || mine[0].FileSize != 2048 || mine[0].CreatedAt.IsZero() {
		t.Fatalf("unexpected session logs: %+v", mine)
	}
}
