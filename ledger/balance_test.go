package ledger

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func manual(id int, valor int64, de, para Party) Entry {
	return Entry{
		ID:        ManualEntryID(id),
		Kind:      KindManual,
		Valor:     dec(valor),
		Fecha:     "2024-05-01",
		DeQuien:   de,
		ParaQuien: para,
		Estado:    StatusCompletada,
	}
}

var (
	mina1   = Party{PartyMina, "1"}
	mina2   = Party{PartyMina, "2"}
	comp1   = Party{PartyComprador, "7"}
	volq1   = Party{PartyVolquetero, "3"}
	bemovil = Party{PartyRodMar, "bemovil"}
	caja    = Party{PartyRodMar, "caja"}
	banco   = Party{PartyBanco, "bancolombia"}
)

func assertBalance(t *testing.T, got Balance, pos, neg, bal int64) {
	t.Helper()
	want := Balance{Positivos: dec(pos), Negativos: dec(neg), Balance: dec(bal)}
	if !got.Equal(want) {
		t.Fatalf("expected {+%d -%d =%d}, got {+%s -%s =%s}", pos, neg, bal, got.Positivos, got.Negativos, got.Balance)
	}
}

func TestCompute_MineExample(t *testing.T) {
	pending := manual(3, 5000, mina1, bemovil)
	pending.Estado = StatusPendiente
	entries := []Entry{
		manual(1, 1000, mina1, bemovil),
		manual(2, 300, bemovil, mina1),
		pending,
	}
	assertBalance(t, Compute(entries, mina1), 1000, 300, 700)
}

func TestCompute_OriginIsAlwaysPositiveForMine(t *testing.T) {
	others := []Party{bemovil, banco, comp1, volq1, mina2}
	for _, other := range others {
		e := manual(1, 2500, mina1, other)
		if got := DefaultRules.Contribution(e, mina1); !got.Equal(dec(2500)) {
			t.Fatalf("mina->%s expected +2500, got %s", other, got)
		}
		// The all-mines view agrees unless the other side is a mine too.
		if other.Tipo != PartyMina {
			if got := DefaultRules.Contribution(e, Party{Tipo: PartyMina}); !got.Equal(dec(2500)) {
				t.Fatalf("aggregate mina->%s expected +2500, got %s", other, got)
			}
		}
	}
}

func TestCompute_StoredSignIsIgnored(t *testing.T) {
	e := manual(1, -800, mina1, bemovil)
	assertBalance(t, Compute([]Entry{e}, mina1), 800, 0, 800)
}

func TestCompute_PendingNeverCounts(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	parties := []Party{mina1, mina2, comp1, volq1, bemovil, caja, banco}
	for run := 0; run < 50; run++ {
		var entries []Entry
		for i := 0; i < 30; i++ {
			de := parties[rng.Intn(len(parties))]
			para := parties[rng.Intn(len(parties))]
			e := manual(i, int64(rng.Intn(100000)+1), de, para)
			if rng.Intn(3) == 0 {
				e.Estado = StatusPendiente
			}
			entries = append(entries, e)
		}
		for _, p := range parties {
			withPending := Compute(entries, p)
			without := Compute(WithoutPending(entries), p)
			if !withPending.Equal(without) {
				t.Fatalf("run=%d perspective=%s pending entries changed the balance: %+v vs %+v", run, p, withPending, without)
			}
		}
	}
}

func TestInvert_RoundTrip(t *testing.T) {
	cases := []Balance{
		{Positivos: dec(1000), Negativos: dec(300), Balance: dec(700)},
		{Positivos: dec(0), Negativos: dec(50), Balance: dec(-50)},
		{},
	}
	for _, b := range cases {
		inv := Invert(b)
		if !inv.Positivos.Equal(b.Negativos) || !inv.Negativos.Equal(b.Positivos) || !inv.Balance.Equal(b.Balance.Neg()) {
			t.Fatalf("Invert(%+v) got %+v", b, inv)
		}
		if !Invert(inv).Equal(b) {
			t.Fatalf("Invert(Invert(%+v)) got %+v", b, Invert(inv))
		}
	}
}

func TestInvert_MatchesRodMarView(t *testing.T) {
	entries := []Entry{
		manual(1, 1000, mina1, Party{Tipo: PartyRodMar}),
		manual(2, 300, Party{Tipo: PartyRodMar}, mina1),
	}
	trips := []Trip{{ID: "T1", Estado: TripCompletado, FechaDescargue: "2024-05-02", MinaId: "1", TotalCompra: dec(4000)}}
	c := NewCalculator()
	mine := c.Compute(c.Feed(entries, trips, mina1), mina1)
	rodmarView := c.Compute(c.Feed(entries, trips, mina1), Party{Tipo: PartyRodMar})
	if !Invert(mine).Equal(rodmarView) {
		t.Fatalf("expected RodMar view %+v to be the inverse of %+v", rodmarView, mine)
	}
}

func TestCompute_RodMarToRodMarIsNeutral(t *testing.T) {
	transfer := manual(1, 900, bemovil, caja)
	assertBalance(t, Compute([]Entry{transfer}, Party{Tipo: PartyRodMar}), 0, 0, 0)
	// Each account still sees its own leg.
	assertBalance(t, Compute([]Entry{transfer}, bemovil), 900, 0, 900)
	assertBalance(t, Compute([]Entry{transfer}, caja), 0, 900, -900)
}

func TestCompute_SelfPaymentIsNeutral(t *testing.T) {
	assertBalance(t, Compute([]Entry{manual(1, 10, mina1, mina1)}, mina1), 0, 0, 0)
}

func TestCompute_UnrelatedEntriesIgnored(t *testing.T) {
	entries := []Entry{manual(1, 500, comp1, bemovil), manual(2, 100, mina2, volq1)}
	assertBalance(t, Compute(entries, mina1), 0, 0, 0)
}

func TestDualView_FilteringDoesNotMoveHeader(t *testing.T) {
	all := []Entry{
		manual(1, 1000, mina1, bemovil),
		manual(2, 300, bemovil, mina1),
		manual(3, 200, bemovil, mina1),
	}
	all[2].Hidden = true

	c := NewCalculator()
	full := c.DualView(all, Visible(all), mina1)
	assertBalance(t, full.Header, 1000, 500, 500)
	assertBalance(t, full.Filtered, 1000, 300, 700)

	// Narrowing the visible list further leaves the header untouched.
	narrowed := c.DualView(all, Visible(all)[:1], mina1)
	if !narrowed.Header.Equal(full.Header) {
		t.Fatalf("header moved from %+v to %+v", full.Header, narrowed.Header)
	}
	assertBalance(t, narrowed.Filtered, 1000, 0, 1000)
}

func TestCalculator_ObserveSeesContributions(t *testing.T) {
	var seen []string
	c := &Calculator{Rules: DefaultRules, Observe: func(e Entry, p Party, v decimal.Decimal) {
		seen = append(seen, fmt.Sprintf("%s=%s", e.ID, v))
	}}
	c.Compute([]Entry{manual(1, 10, mina1, bemovil), manual(2, 5, bemovil, mina1), manual(3, 1, comp1, bemovil)}, mina1)
	if len(seen) != 2 || seen[0] != "1=10" || seen[1] != "2=-5" {
		t.Fatalf("unexpected observed contributions %v", seen)
	}
}

func TestBalance_Add(t *testing.T) {
	a := Balance{Positivos: dec(10), Negativos: dec(4), Balance: dec(6)}
	b := Balance{Positivos: dec(1), Negativos: dec(9), Balance: dec(-8)}
	assertBalance(t, a.Add(b), 11, 13, -2)
}
