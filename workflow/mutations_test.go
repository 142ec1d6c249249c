package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"bitbucket.org/rodmar/rodmar_backend/config"
	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"bitbucket.org/rodmar/rodmar_backend/models"
	"bitbucket.org/rodmar/rodmar_backend/notify"
	"bitbucket.org/rodmar/rodmar_backend/utils"
	"github.com/shopspring/decimal"
)

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Publish(event notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) types() []notify.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func TestChanged_PublishesWithoutRedis(t *testing.T) {
	rec := &recorder{}
	SetNotifier(rec)
	defer SetNotifier(nil)

	CounterpartyCreated(utils.SetUserIdInContext(context.Background(), 7), ledger.PartyMina, "3")
	CounterpartyCreated(context.Background(), ledger.PartyComprador, "4")

	if got := rec.types(); len(got) != 2 || got[0] != notify.CounterpartyCreated {
		t.Fatalf("CounterpartyCreated expected two socio.created events, got %v", got)
	}
	if rec.events[0].Modulo != "mina" || rec.events[0].Ids[0] != "3" || rec.events[0].UserId != 7 {
		t.Fatalf("unexpected event %+v", rec.events[0])
	}
	if rec.events[1].UserId != 0 {
		t.Fatalf("event without a user in context expected UserId 0, got %+v", rec.events[1])
	}
}

func setupSQLite(t *testing.T) context.Context {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires cgo sqlite)")
	}
	t.Setenv("DB_DRIVER", config.DriverSQLite)
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "rodmar_workflow.db"))
	conn, err := config.OpenDatabase()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	previous := config.GetDB()
	config.SetDB(conn)
	t.Cleanup(func() { config.SetDB(previous) })
	models.MigrateTable()
	return context.Background()
}

func TestWorkflow_Integration_Events(t *testing.T) {
	ctx := setupSQLite(t)
	rec := &recorder{}
	SetNotifier(rec)
	defer SetNotifier(nil)

	mina, err := models.CreateMina(ctx, &models.NewMina{Nombre: "El Carmen"})
	if err != nil {
		t.Fatalf("CreateMina: %v", err)
	}
	minaId := strconv.Itoa(mina.ID)
	input := &models.NewTransaccion{
		Concepto: "Anticipo", Valor: models.NewAmount(decimal.NewFromInt(800)), Fecha: "2024-07-01",
		DeQuienTipo: "banco", ParaQuienTipo: "mina", ParaQuienId: minaId,
	}
	first, err := CreateTransaccion(ctx, input)
	if err != nil {
		t.Fatalf("CreateTransaccion: %v", err)
	}
	second, err := CreateTransaccion(ctx, input)
	if err != nil {
		t.Fatalf("CreateTransaccion: %v", err)
	}

	if _, err := HideTransaccion(ctx, first.ID, models.ModuloMina); err != nil {
		t.Fatalf("HideTransaccion: %v", err)
	}
	if _, err := HideTransaccion(ctx, 9999, models.ModuloMina); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("hiding a missing row expected not found, got %v", err)
	}
	party := ledger.Party{Tipo: ledger.PartyMina, Id: minaId}
	n, err := ShowAllHiddenTransacciones(ctx, models.ModuloMina, &party)
	if err != nil || n != 1 {
		t.Fatalf("ShowAllHiddenTransacciones expected 1, got %d (%v)", n, err)
	}
	if n, _ := ShowAllHiddenTransacciones(ctx, models.ModuloMina, &party); n != 0 {
		t.Fatalf("second show-all expected nothing to restore, got %d", n)
	}
	if _, err := BulkDeleteTransacciones(ctx, []int{first.ID, second.ID}); err != nil {
		t.Fatalf("BulkDeleteTransacciones: %v", err)
	}

	want := []notify.EventType{
		notify.TransaccionCreated,
		notify.TransaccionCreated,
		notify.TransaccionHidden,
		notify.TransaccionShown,
		notify.TransaccionDeleted,
	}
	got := rec.types()
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d expected %s, got %s", i, want[i], got[i])
		}
	}
	if ids := rec.events[len(rec.events)-1].Ids; len(ids) != 2 {
		t.Fatalf("bulk delete event expected both ids, got %v", ids)
	}
}
