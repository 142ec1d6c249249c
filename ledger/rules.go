package ledger

import "github.com/shopspring/decimal"

type Sign int

const (
	Neutral  Sign = 0
	Positive Sign = 1
	Negative Sign = -1
)

// SignRule is one row of the netting table: how a movement is signed when the
// perspective sits at its origin or at its destination, and which leg of a
// completed trip the perspective sees.
type SignRule struct {
	Origin      Sign
	Destination Sign
	Trip        func(Trip) (Entry, bool)
}

type Rules map[PartyType]SignRule

// DefaultRules: every party counts what it sends as positive and what it
// receives as negative. Because RodMar and Banco follow the same row, RodMar's
// view of a movement is always the inverse of the counterparty's view.
var DefaultRules = Rules{
	PartyMina:       {Origin: Positive, Destination: Negative, Trip: mineTripEntry},
	PartyComprador:  {Origin: Positive, Destination: Negative, Trip: buyerTripEntry},
	PartyVolquetero: {Origin: Positive, Destination: Negative, Trip: truckerTripEntry},
	PartyRodMar:     {Origin: Positive, Destination: Negative},
	PartyBanco:      {Origin: Positive, Destination: Negative},
}

// SignFor returns the direction of e as seen from p. Pending entries and
// movements with both ends inside p (RodMar to RodMar, a transfer between two
// mines in an all-mines view) are neutral.
func (r Rules) SignFor(e Entry, p Party) Sign {
	if e.IsPending() {
		return Neutral
	}
	rule, ok := r[p.Tipo]
	if !ok {
		return Neutral
	}
	from := p.Includes(e.DeQuien)
	to := p.Includes(e.ParaQuien)
	switch {
	case from && to:
		return Neutral
	case from:
		return rule.Origin
	case to:
		return rule.Destination
	default:
		return Neutral
	}
}

// Contribution is the signed amount e adds to p's balance.
func (r Rules) Contribution(e Entry, p Party) decimal.Decimal {
	switch r.SignFor(e, p) {
	case Positive:
		return e.Amount()
	case Negative:
		return e.Amount().Neg()
	default:
		return decimal.Zero
	}
}

// TripEntries turns the completed trips into the pseudo-transactions p sees.
// Trips that do not touch p, or that the rule excludes, produce nothing. A
// type without its own trip leg (RodMar) sees the legs of every other type.
func (r Rules) TripEntries(trips []Trip, p Party) []Entry {
	rule, ok := r[p.Tipo]
	if !ok {
		return nil
	}
	legs := []func(Trip) (Entry, bool){rule.Trip}
	if rule.Trip == nil {
		legs = legs[:0]
		for _, t := range partyTypes {
			if other := r[t]; other.Trip != nil {
				legs = append(legs, other.Trip)
			}
		}
	}
	var out []Entry
	for _, t := range trips {
		if !t.Completed() {
			continue
		}
		for _, leg := range legs {
			e, ok := leg(t)
			if !ok {
				continue
			}
			if !p.Includes(e.DeQuien) && !p.Includes(e.ParaQuien) {
				continue
			}
			out = append(out, e)
		}
	}
	return out
}
