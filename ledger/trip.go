package ledger

import (
	"strings"

	"bitbucket.org/rodmar/rodmar_backend/daterange"
	"github.com/shopspring/decimal"
)

const TripCompletado = "completado"

// Trip carries the precomputed totals of a haulage trip. The ledger never
// recomputes them.
type Trip struct {
	ID             string          `json:"id"`
	FechaDescargue string          `json:"fechaDescargue"`
	Estado         string          `json:"estado"`
	MinaId         string          `json:"minaId"`
	CompradorId    string          `json:"compradorId"`
	VolqueteroId   string          `json:"volqueteroId"`
	Conductor      string          `json:"conductor"`
	Placa          string          `json:"placa"`
	TotalCompra    decimal.Decimal `json:"totalCompra"`
	TotalVenta     decimal.Decimal `json:"totalVenta"`
	TotalFlete     decimal.Decimal `json:"totalFlete"`
	ValorConsignar decimal.Decimal `json:"valorConsignar"`
	QuienPagaFlete string          `json:"quienPagaFlete"`
	Hidden         bool            `json:"oculta"`
}

// Completed trips are the only ones that produce ledger entries.
func (t Trip) Completed() bool {
	return strings.EqualFold(strings.TrimSpace(t.Estado), TripCompletado) && daterange.Day(t.FechaDescargue) != ""
}

// BuyerPaysFreight recognises "comprador" as well as the older "El comprador" spelling.
func (t Trip) BuyerPaysFreight() bool {
	v := strings.ToLower(strings.TrimSpace(t.QuienPagaFlete))
	return v == "comprador" || v == "el comprador"
}

func (t Trip) entry(valor decimal.Decimal, de, para Party, concepto string) Entry {
	return Entry{
		ID:        TripEntryID(t.ID),
		Kind:      KindViaje,
		Valor:     valor.Abs(),
		Fecha:     daterange.Day(t.FechaDescargue),
		DeQuien:   de,
		ParaQuien: para,
		Estado:    StatusCompletada,
		Hidden:    t.Hidden,
		Concepto:  concepto,
	}
}

var rodmar = Party{Tipo: PartyRodMar}

func mineTripEntry(t Trip) (Entry, bool) {
	if t.MinaId == "" {
		return Entry{}, false
	}
	return t.entry(t.TotalCompra, Party{PartyMina, t.MinaId}, rodmar, "Viaje "+t.ID+" compra"), true
}

func buyerTripEntry(t Trip) (Entry, bool) {
	if t.CompradorId == "" {
		return Entry{}, false
	}
	return t.entry(t.ValorConsignar, rodmar, Party{PartyComprador, t.CompradorId}, "Viaje "+t.ID+" valor a consignar"), true
}

func truckerTripEntry(t Trip) (Entry, bool) {
	if t.VolqueteroId == "" || t.BuyerPaysFreight() {
		return Entry{}, false
	}
	return t.entry(t.TotalFlete, Party{PartyVolquetero, t.VolqueteroId}, rodmar, "Viaje "+t.ID+" flete"), true
}

// TripTotals sums every completed trip of a counterparty, whoever paid the freight.
type TripTotals struct {
	Count          int             `json:"count"`
	TotalCompra    decimal.Decimal `json:"totalCompra"`
	TotalVenta     decimal.Decimal `json:"totalVenta"`
	TotalFlete     decimal.Decimal `json:"totalFlete"`
	ValorConsignar decimal.Decimal `json:"valorConsignar"`
}

func SummarizeTrips(trips []Trip) TripTotals {
	var out TripTotals
	for _, t := range trips {
		if !t.Completed() {
			continue
		}
		out.Count++
		out.TotalCompra = out.TotalCompra.Add(t.TotalCompra)
		out.TotalVenta = out.TotalVenta.Add(t.TotalVenta)
		out.TotalFlete = out.TotalFlete.Add(t.TotalFlete)
		out.ValorConsignar = out.ValorConsignar.Add(t.ValorConsignar)
	}
	return out
}
