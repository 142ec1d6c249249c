package reports

import (
	"testing"

	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"github.com/shopspring/decimal"
)

func TestAuditRows_RunningBalanceOldestFirst(t *testing.T) {
	mina := ledger.Party{Tipo: ledger.PartyMina, Id: "1"}
	rodmar := ledger.Party{Tipo: ledger.PartyRodMar, Id: "bemovil"}
	entries := []ledger.Entry{
		{ID: "3", Valor: decimal.NewFromInt(500), Fecha: "2024-05-03", DeQuien: rodmar, ParaQuien: mina, Estado: ledger.StatusCompletada},
		{ID: "2", Valor: decimal.NewFromInt(900), Fecha: "2024-05-02", DeQuien: mina, ParaQuien: rodmar, Estado: ledger.StatusPendiente},
		{ID: "1", Valor: decimal.NewFromInt(1000), Fecha: "2024-05-01", DeQuien: mina, ParaQuien: rodmar, Estado: ledger.StatusCompletada, Hidden: true},
	}

	rows := auditRows(ledger.NewCalculator(), entries, mina)

	want := []struct {
		id                    string
		contribution, running int64
	}{
		{"1", 1000, 1000},
		{"2", 0, 1000},
		{"3", -500, 500},
	}
	if len(rows) != len(want) {
		t.Fatalf("auditRows expected %d rows, got %d", len(want), len(rows))
	}
	for i, w := range want {
		r := rows[i]
		if r.Entry.ID != w.id || !r.Contribution.Equal(decimal.NewFromInt(w.contribution)) || !r.Running.Equal(decimal.NewFromInt(w.running)) {
			t.Fatalf("row %d expected %s %d/%d, got %s %s/%s", i, w.id, w.contribution, w.running, r.Entry.ID, r.Contribution, r.Running)
		}
	}
	if entries[0].ID != "3" {
		t.Fatalf("auditRows reordered its input")
	}
}
