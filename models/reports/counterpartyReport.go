package reports

import (
	"context"
	"time"

	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"bitbucket.org/rodmar/rodmar_backend/listview"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type CounterpartyRequest struct {
	Party      ledger.Party
	Query      listview.Query
	Page       int
	Limit      int
	Temporales []ledger.Entry
}

// CounterpartyView is one counterparty's transaction screen: the listed page,
// the header balance over every entry and the balance of what is listed.
type CounterpartyView struct {
	Data       []ledger.Entry      `json:"data"`
	Pagination listview.Pagination `json:"pagination"`
	Balance    ledger.DualView     `json:"balance"`
	Viajes     ledger.TripTotals   `json:"viajes"`
}

func GetCounterpartyView(ctx context.Context, req CounterpartyRequest) (*CounterpartyView, error) {
	start := time.Now()
	defer logSlowReport(ctx, "counterparty_view", start, map[string]any{"party": req.Party.String()})

	ctx, span := tracer.Start(ctx, "reports.GetCounterpartyView",
		trace.WithAttributes(attribute.String("party", req.Party.String())),
	)
	defer span.End()

	entries, err := ListCounterpartyEntries(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	page, pagination := listview.Paginate(entries.Listed, req.Page, req.Limit)
	return &CounterpartyView{
		Data:       page,
		Pagination: pagination,
		Balance:    entries.Balance,
		Viajes:     entries.Viajes,
	}, nil
}

// CounterpartyListing is the unpaginated form of a counterparty view, also
// used by the export.
type CounterpartyListing struct {
	Listed  []ledger.Entry
	Balance ledger.DualView
	Viajes  ledger.TripTotals
}

func ListCounterpartyEntries(ctx context.Context, req CounterpartyRequest) (*CounterpartyListing, error) {
	c := newCalculator()
	feed, err := loadFeed(ctx, c, req.Party, req.Temporales)
	if err != nil {
		return nil, err
	}
	listed := listview.Apply(ledger.Visible(feed.Entries), req.Query)
	return &CounterpartyListing{
		Listed:  listed,
		Balance: c.DualView(feed.Entries, listed, req.Party),
		Viajes:  ledger.SummarizeTrips(feed.Trips),
	}, nil
}
