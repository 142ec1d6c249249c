package reports

import (
	"context"
	"time"

	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"bitbucket.org/rodmar/rodmar_backend/models"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

type Perspective string

const (
	PerspectiveSelf   Perspective = "self"
	PerspectiveRodMar Perspective = "rodmar"
)

// BalanceResponse is the header balance of a counterparty, from its own side
// or inverted to RodMar's side.
type BalanceResponse struct {
	Party       ledger.Party   `json:"party"`
	Perspective Perspective    `json:"perspectiva"`
	Balance     ledger.Balance `json:"balance"`
}

func GetBalance(ctx context.Context, p ledger.Party, perspective Perspective) (*BalanceResponse, error) {
	start := time.Now()
	defer logSlowReport(ctx, "balance", start, map[string]any{"party": p.String()})

	ctx, span := tracer.Start(ctx, "reports.GetBalance")
	defer span.End()
	span.SetAttributes(attribute.String("party", p.String()), attribute.String("perspective", string(perspective)))

	header, err := cached("report:balance:"+p.String(), func() (ledger.Balance, error) {
		c := newCalculator()
		feed, err := loadFeed(ctx, c, p, nil)
		if err != nil {
			return ledger.Balance{}, err
		}
		return c.Compute(feed.Entries, p), nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if perspective == PerspectiveRodMar {
		header = ledger.Invert(header)
	} else {
		perspective = PerspectiveSelf
	}
	return &BalanceResponse{Party: p, Perspective: perspective, Balance: header}, nil
}

type RodMarAccountBalance struct {
	Codigo  string         `json:"codigo"`
	Nombre  string         `json:"nombre"`
	Balance ledger.Balance `json:"balance"`
}

// GetRodMarAccounts nets every transaction against each RodMar account.
// Transfers between two accounts count once on each side.
func GetRodMarAccounts(ctx context.Context) ([]RodMarAccountBalance, error) {
	ctx, span := tracer.Start(ctx, "reports.GetRodMarAccounts")
	defer span.End()

	return cached("report:rodmar_accounts", func() ([]RodMarAccountBalance, error) {
		cuentas, err := models.ListRodMarCuentas(ctx)
		if err != nil {
			return nil, err
		}
		rows, err := models.TransaccionesForParty(ctx, ledger.Party{Tipo: ledger.PartyRodMar})
		if err != nil {
			return nil, err
		}
		entries := make([]ledger.Entry, 0, len(rows))
		for _, row := range rows {
			entries = append(entries, row.ToEntry(models.ModuloRodMar, nil))
		}
		c := newCalculator()
		out := make([]RodMarAccountBalance, 0, len(cuentas))
		for _, cuenta := range cuentas {
			p := ledger.Party{Tipo: ledger.PartyRodMar, Id: cuenta.Codigo}
			out = append(out, RodMarAccountBalance{
				Codigo:  cuenta.Codigo,
				Nombre:  cuenta.Nombre,
				Balance: c.Compute(entries, p),
			})
		}
		return out, nil
	})
}

type TypeSummary struct {
	Tipo       ledger.PartyType `json:"tipo"`
	Balance    ledger.Balance   `json:"balance"`
	RodMarView ledger.Balance   `json:"rodmarView"`
}

type FinancialSummary struct {
	Tipos      []TypeSummary     `json:"tipos"`
	RodMar     ledger.Balance    `json:"rodmar"`
	Viajes     ledger.TripTotals `json:"viajes"`
	Ganancia   decimal.Decimal   `json:"ganancia"`
	Pendientes int               `json:"pendientes"`
}

// GetFinancialSummary aggregates every counterparty type and shows each one
// from RodMar's side as well.
func GetFinancialSummary(ctx context.Context) (*FinancialSummary, error) {
	start := time.Now()
	defer logSlowReport(ctx, "financial_summary", start, nil)

	ctx, span := tracer.Start(ctx, "reports.GetFinancialSummary")
	defer span.End()

	return cached("report:financial_summary", func() (*FinancialSummary, error) {
		rows, err := models.AllTransacciones(ctx)
		if err != nil {
			return nil, err
		}
		rodmar := ledger.Party{Tipo: ledger.PartyRodMar}
		viajes, err := models.ViajesForParty(ctx, rodmar)
		if err != nil {
			return nil, err
		}
		entries := make([]ledger.Entry, 0, len(rows))
		pendientes := 0
		for _, row := range rows {
			e := row.ToEntry(models.ModuloGeneral, nil)
			if e.IsPending() {
				pendientes++
			}
			entries = append(entries, e)
		}
		c := newCalculator()
		trips := models.ToTrips(viajes)
		feed := c.Feed(entries, trips, rodmar)

		summary := &FinancialSummary{
			RodMar:     c.Compute(feed, rodmar),
			Viajes:     ledger.SummarizeTrips(trips),
			Ganancia:   decimal.Zero,
			Pendientes: pendientes,
		}
		for _, t := range []ledger.PartyType{ledger.PartyMina, ledger.PartyComprador, ledger.PartyVolquetero, ledger.PartyBanco} {
			b := c.Compute(feed, ledger.Party{Tipo: t})
			summary.Tipos = append(summary.Tipos, TypeSummary{Tipo: t, Balance: b, RodMarView: ledger.Invert(b)})
		}
		for _, v := range viajes {
			if v.ToTrip().Completed() {
				summary.Ganancia = summary.Ganancia.Add(v.Ganancia)
			}
		}
		return summary, nil
	})
}
