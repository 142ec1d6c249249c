package reports

import (
	"context"
	"sort"

	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"github.com/shopspring/decimal"
)

// AuditRow is one entry of a counterparty with its signed contribution and
// the running balance up to and including it.
type AuditRow struct {
	Entry        ledger.Entry    `json:"entry"`
	Contribution decimal.Decimal `json:"contribution"`
	Running      decimal.Decimal `json:"running"`
}

// AuditCounterparty replays every entry of p oldest first, hidden and pending
// ones included, so the row that moves the balance can be found.
func AuditCounterparty(ctx context.Context, p ledger.Party) ([]AuditRow, ledger.Balance, error) {
	ctx, span := tracer.Start(ctx, "reports.AuditCounterparty")
	defer span.End()

	c := newCalculator()
	feed, err := loadFeed(ctx, c, p, nil)
	if err != nil {
		span.RecordError(err)
		return nil, ledger.Balance{}, err
	}
	return auditRows(c, feed.Entries, p), c.Compute(feed.Entries, p), nil
}

func auditRows(c *ledger.Calculator, entries []ledger.Entry, p ledger.Party) []AuditRow {
	ordered := append([]ledger.Entry(nil), entries...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Fecha < ordered[j].Fecha })

	rules := c.Rules
	if rules == nil {
		rules = ledger.DefaultRules
	}
	rows := make([]AuditRow, 0, len(ordered))
	running := decimal.Zero
	for _, e := range ordered {
		v := rules.Contribution(e, p)
		running = running.Add(v)
		rows = append(rows, AuditRow{Entry: e, Contribution: v, Running: running})
	}
	return rows
}
