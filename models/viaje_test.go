package models

import (
	"encoding/json"
	"testing"

	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestViaje_CalculateTotals(t *testing.T) {
	cases := []struct {
		quien                                     QuienPagaFlete
		compra, venta, flete, consignar, ganancia string
	}{
		{QuienPagaFleteRodMar, "4000", "9000", "1550", "9000", "3450"},
		{QuienPagaFleteComprador, "4000", "9000", "1550", "7450", "3450"},
	}
	for _, tc := range cases {
		v := Viaje{
			Peso:             d("20"),
			PrecioCompraTon:  d("200"),
			VentaTon:         d("450"),
			FleteTon:         d("75"),
			OtrosGastosFlete: d("50"),
			QuienPagaFlete:   tc.quien,
		}
		v.CalculateTotals()
		got := []decimal.Decimal{v.TotalCompra, v.TotalVenta, v.TotalFlete, v.ValorConsignar, v.Ganancia}
		want := []string{tc.compra, tc.venta, tc.flete, tc.consignar, tc.ganancia}
		for i := range got {
			if !got[i].Equal(d(want[i])) {
				t.Fatalf("quienPagaFlete=%s total #%d expected %s, got %s", tc.quien, i, want[i], got[i])
			}
		}
	}
}

func TestViaje_ToTrip(t *testing.T) {
	fecha := "2024-06-10"
	comprador := 7
	v := Viaje{ID: "TRP001", MinaId: 1, CompradorId: &comprador, FechaDescargue: &fecha, Estado: EstadoViajeCompletado, Oculta: true}
	trip := v.ToTrip()
	if trip.MinaId != "1" || trip.CompradorId != "7" || trip.VolqueteroId != "" {
		t.Fatalf("unexpected party ids %+v", trip)
	}
	if !trip.Completed() || !trip.Hidden {
		t.Fatalf("expected completed hidden trip, got %+v", trip)
	}

	v.FechaDescargue = nil
	if v.ToTrip().Completed() {
		t.Fatalf("trip without unload date must not count as completed")
	}
}

func TestTransaccion_HiddenIn(t *testing.T) {
	tx := Transaccion{OcultaEnMina: true}
	if !tx.HiddenIn(ModuloMina) || tx.HiddenIn(ModuloComprador) || tx.HiddenIn(ModuloGeneral) {
		t.Fatalf("per-module flag leaked into other modules")
	}
	tx = Transaccion{Oculta: true}
	for _, m := range []Modulo{ModuloGeneral, ModuloMina, ModuloComprador, ModuloVolquetero, ModuloRodMar} {
		if !tx.HiddenIn(m) {
			t.Fatalf("oculta must hide the row in %s", m)
		}
	}
}

func TestTransaccion_ToEntry(t *testing.T) {
	tx := Transaccion{
		ID:            12,
		Valor:         d("1500"),
		Fecha:         "2024-05-01T23:30:00.000Z",
		DeQuienTipo:   ledger.PartyMina,
		DeQuienId:     "1",
		ParaQuienTipo: ledger.PartyRodMar,
		ParaQuienId:   "bemovil",
		Estado:        EstadoTransaccionPendiente,
		OcultaEnMina:  true,
	}
	names := map[ledger.Party]string{{Tipo: ledger.PartyMina, Id: "1"}: "La Esperanza"}
	e := tx.ToEntry(ModuloMina, names)
	if e.ID != "12" || e.Kind != ledger.KindManual || e.Fecha != "2024-05-01" {
		t.Fatalf("unexpected entry identity %+v", e)
	}
	if !e.IsPending() || !e.Hidden || e.DeQuienNombre != "La Esperanza" {
		t.Fatalf("unexpected entry state %+v", e)
	}
	if tx.ToEntry(ModuloComprador, nil).Hidden {
		t.Fatalf("row hidden only in mina must be visible in comprador")
	}
}

func TestParseModulo(t *testing.T) {
	cases := []struct {
		in   string
		want Modulo
		ok   bool
	}{
		{"", ModuloGeneral, true},
		{"minas", ModuloMina, true},
		{"Compradores", ModuloComprador, true},
		{"volquetero", ModuloVolquetero, true},
		{"banco", ModuloRodMar, true},
		{"bodega", "", false},
	}
	for _, tc := range cases {
		got, err := ParseModulo(tc.in)
		if (err == nil) != tc.ok || got != tc.want {
			t.Fatalf("ParseModulo(%q) expected %q ok=%v, got %q err=%v", tc.in, tc.want, tc.ok, got, err)
		}
	}
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	var in struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a": 1500.5, "b": "$ 1.500.000"}`), &in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !in.A.Equal(d("1500.5")) || !in.B.Equal(d("1500000")) {
		t.Fatalf("unexpected amounts %s %s", in.A, in.B)
	}
	if err := json.Unmarshal([]byte(`{"a": "abc"}`), &in); err == nil {
		t.Fatalf("expected error for non-numeric amount")
	}
}

func TestParsePartyPath(t *testing.T) {
	cases := []struct {
		tipo, id string
		want     ledger.Party
		ok       bool
	}{
		{"mina", "3", ledger.Party{Tipo: ledger.PartyMina, Id: "3"}, true},
		{"comprador", "all", ledger.Party{Tipo: ledger.PartyComprador}, true},
		{"rodmar", "bemovil", ledger.Party{Tipo: ledger.PartyRodMar, Id: "bemovil"}, true},
		{"mina", "abc", ledger.Party{}, false},
		{"cliente", "1", ledger.Party{}, false},
	}
	for _, tc := range cases {
		got, err := ParsePartyPath(tc.tipo, tc.id)
		if (err == nil) != tc.ok || got != tc.want {
			t.Fatalf("ParsePartyPath(%q, %q) expected %+v ok=%v, got %+v err=%v", tc.tipo, tc.id, tc.want, tc.ok, got, err)
		}
	}
}
