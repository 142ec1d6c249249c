package reports

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"bitbucket.org/rodmar/rodmar_backend/config"
	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"bitbucket.org/rodmar/rodmar_backend/listview"
	"bitbucket.org/rodmar/rodmar_backend/models"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func bal(pos, neg string) ledger.Balance {
	return ledger.Balance{Positivos: d(pos), Negativos: d(neg), Balance: d(pos).Sub(d(neg))}
}

// seedLedger builds one mine with a completed trip, a payment to the mine and
// a sale to RodMar that is hidden in the mines screen.
func seedLedger(t *testing.T) (context.Context, ledger.Party) {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires cgo sqlite)")
	}
	t.Setenv("DB_DRIVER", config.DriverSQLite)
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "rodmar_reports.db"))
	conn, err := config.OpenDatabase()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	previous := config.GetDB()
	config.SetDB(conn)
	t.Cleanup(func() { config.SetDB(previous) })
	models.MigrateTable()

	ctx := context.Background()
	mina, err := models.CreateMina(ctx, &models.NewMina{Nombre: "La Esperanza"})
	if err != nil {
		t.Fatalf("CreateMina: %v", err)
	}
	comprador, err := models.CreateComprador(ctx, &models.NewComprador{Nombre: "Carbones del Norte"})
	if err != nil {
		t.Fatalf("CreateComprador: %v", err)
	}
	if _, err := models.CreateRodMarCuenta(ctx, &models.NewRodMarCuenta{Codigo: "bemovil", Nombre: "Bemovil"}); err != nil {
		t.Fatalf("CreateRodMarCuenta: %v", err)
	}
	minaId := strconv.Itoa(mina.ID)

	if _, err := models.CreateViaje(ctx, &models.NewViaje{
		ID:              "T1",
		FechaCargue:     "2024-06-08",
		MinaId:          mina.ID,
		Peso:            models.NewAmount(d("20")),
		PrecioCompraTon: models.NewAmount(d("200")),
		VentaTon:        models.NewAmount(d("450")),
		FleteTon:        models.NewAmount(d("75")),
	}); err != nil {
		t.Fatalf("CreateViaje: %v", err)
	}
	if _, err := models.UnloadViaje(ctx, "T1", &models.Descargue{FechaDescargue: "2024-06-10", CompradorId: &comprador.ID}); err != nil {
		t.Fatalf("UnloadViaje: %v", err)
	}

	if _, err := models.CreateTransaccion(ctx, &models.NewTransaccion{
		Concepto: "Anticipo", Valor: models.NewAmount(d("1500")), Fecha: "2024-06-01",
		DeQuienTipo: "rodmar", DeQuienId: "bemovil", ParaQuienTipo: "mina", ParaQuienId: minaId,
	}); err != nil {
		t.Fatalf("CreateTransaccion: %v", err)
	}
	sale, err := models.CreateTransaccion(ctx, &models.NewTransaccion{
		Concepto: "Devolución", Valor: models.NewAmount(d("200")), Fecha: "2024-06-02",
		DeQuienTipo: "mina", DeQuienId: minaId, ParaQuienTipo: "rodmar", ParaQuienId: "bemovil",
	})
	if err != nil {
		t.Fatalf("CreateTransaccion: %v", err)
	}
	if _, err := models.HideTransaccion(ctx, sale.ID, models.ModuloMina); err != nil {
		t.Fatalf("HideTransaccion: %v", err)
	}
	return ctx, ledger.Party{Tipo: ledger.PartyMina, Id: minaId}
}

func TestCounterpartyView_Integration(t *testing.T) {
	ctx, mina := seedLedger(t)

	view, err := GetCounterpartyView(ctx, CounterpartyRequest{Party: mina, Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("GetCounterpartyView: %v", err)
	}
	if !view.Balance.Header.Equal(bal("4200", "1500")) {
		t.Fatalf("header expected hidden rows included, got %+v", view.Balance.Header)
	}
	if !view.Balance.Filtered.Equal(bal("4000", "1500")) {
		t.Fatalf("filtered expected hidden rows excluded, got %+v", view.Balance.Filtered)
	}
	if len(view.Data) != 2 || view.Data[0].Kind != ledger.KindViaje {
		t.Fatalf("expected trip then payment, newest first, got %+v", view.Data)
	}
	if view.Viajes.Count != 1 || !view.Viajes.TotalCompra.Equal(d("4000")) {
		t.Fatalf("unexpected trip totals %+v", view.Viajes)
	}

	search, err := GetCounterpartyView(ctx, CounterpartyRequest{Party: mina, Query: listview.Query{Search: "viaje"}})
	if err != nil {
		t.Fatalf("GetCounterpartyView search: %v", err)
	}
	if !search.Balance.Header.Equal(view.Balance.Header) || !search.Balance.Filtered.Equal(bal("4000", "0")) {
		t.Fatalf("search must only narrow the filtered balance, got %+v", search.Balance)
	}

	temporal := ledger.Entry{
		ID: ledger.TemporalEntryID(1), Kind: ledger.KindTemporal, Valor: d("100"), Fecha: "2024-06-11",
		DeQuien: mina, ParaQuien: ledger.Party{Tipo: ledger.PartyRodMar}, Estado: ledger.StatusCompletada,
	}
	withTemp, err := GetCounterpartyView(ctx, CounterpartyRequest{Party: mina, Temporales: []ledger.Entry{temporal}})
	if err != nil {
		t.Fatalf("GetCounterpartyView temporales: %v", err)
	}
	if !withTemp.Balance.Header.Equal(bal("4300", "1500")) || withTemp.Data[0].Kind != ledger.KindTemporal {
		t.Fatalf("temporal entry should lead the list and count in the header, got %+v", withTemp.Balance)
	}
}

func TestBalanceAndSummary_Integration(t *testing.T) {
	ctx, mina := seedLedger(t)

	self, err := GetBalance(ctx, mina, PerspectiveSelf)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	inverted, err := GetBalance(ctx, mina, PerspectiveRodMar)
	if err != nil {
		t.Fatalf("GetBalance rodmar: %v", err)
	}
	if !self.Balance.Balance.Equal(d("2700")) || !inverted.Balance.Equal(ledger.Invert(self.Balance)) {
		t.Fatalf("expected 2700 and its inverse, got %+v / %+v", self.Balance, inverted.Balance)
	}

	summary, err := GetFinancialSummary(ctx)
	if err != nil {
		t.Fatalf("GetFinancialSummary: %v", err)
	}
	want := map[ledger.PartyType]ledger.Balance{
		ledger.PartyMina:       bal("4200", "1500"),
		ledger.PartyComprador:  bal("0", "9000"),
		ledger.PartyVolquetero: bal("0", "0"),
		ledger.PartyBanco:      bal("0", "0"),
	}
	for _, s := range summary.Tipos {
		if !s.Balance.Equal(want[s.Tipo]) || !s.RodMarView.Equal(ledger.Invert(want[s.Tipo])) {
			t.Fatalf("%s expected %+v, got %+v", s.Tipo, want[s.Tipo], s)
		}
	}
	if !summary.RodMar.Equal(bal("10500", "4200")) {
		t.Fatalf("rodmar aggregate expected 10500/4200, got %+v", summary.RodMar)
	}
	if !summary.Ganancia.Equal(d("3500")) || summary.Viajes.Count != 1 {
		t.Fatalf("unexpected trip summary %s %+v", summary.Ganancia, summary.Viajes)
	}

	accounts, err := GetRodMarAccounts(ctx)
	if err != nil || len(accounts) != 1 {
		t.Fatalf("GetRodMarAccounts expected 1 account, got %d (%v)", len(accounts), err)
	}
	if !accounts[0].Balance.Equal(bal("1500", "200")) {
		t.Fatalf("bemovil expected 1500/200, got %+v", accounts[0].Balance)
	}
}
