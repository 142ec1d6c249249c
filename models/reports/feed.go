package reports

import (
	"context"
	"sort"

	"bitbucket.org/rodmar/rodmar_backend/config"
	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"bitbucket.org/rodmar/rodmar_backend/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// newCalculator logs the contributions of the entries listed in LEDGER_TRACE_IDS.
func newCalculator() *ledger.Calculator {
	c := ledger.NewCalculator()
	ids := config.LedgerTraceIds()
	if len(ids) == 0 {
		return c
	}
	logger := config.GetLogger()
	c.Observe = func(e ledger.Entry, p ledger.Party, v decimal.Decimal) {
		if !ids[e.ID] {
			return
		}
		logger.WithFields(logrus.Fields{
			"entry":        e.ID,
			"perspective":  p.String(),
			"contribution": v.String(),
		}).Debug("ledger contribution")
	}
	return c
}

// partyFeed is everything a counterparty's screen is computed from.
type partyFeed struct {
	Entries []ledger.Entry
	Trips   []ledger.Trip
}

// loadFeed reads the persisted transactions and trips of p and merges the
// trip pseudo-entries and temporales into one list, newest first.
func loadFeed(ctx context.Context, c *ledger.Calculator, p ledger.Party, temporales []ledger.Entry) (*partyFeed, error) {
	names, err := models.PartyNames(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := models.TransaccionesForParty(ctx, p)
	if err != nil {
		return nil, err
	}
	viajes, err := models.ViajesForParty(ctx, p)
	if err != nil {
		return nil, err
	}
	modulo := models.ModuloFor(p.Tipo)
	entries := make([]ledger.Entry, 0, len(rows)+len(temporales))
	for _, row := range rows {
		entries = append(entries, row.ToEntry(modulo, names))
	}
	entries = append(entries, temporales...)
	trips := models.ToTrips(viajes)
	feed := c.Feed(entries, trips, p)
	nameEntries(feed, names)
	sortNewestFirst(feed)
	return &partyFeed{Entries: feed, Trips: trips}, nil
}

func nameEntries(entries []ledger.Entry, names map[ledger.Party]string) {
	for i := range entries {
		if entries[i].DeQuienNombre == "" {
			entries[i].DeQuienNombre = names[entries[i].DeQuien]
		}
		if entries[i].ParaQuienNombre == "" {
			entries[i].ParaQuienNombre = names[entries[i].ParaQuien]
		}
	}
}

func sortNewestFirst(entries []ledger.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Fecha > entries[j].Fecha
	})
}
