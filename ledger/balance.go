package ledger

import (
	"github.com/shopspring/decimal"
)

// Balance is the netted position of one perspective.
type Balance struct {
	Positivos decimal.Decimal `json:"positivos"`
	Negativos decimal.Decimal `json:"negativos"`
	Balance   decimal.Decimal `json:"balance"`
}

func (b Balance) Add(other Balance) Balance {
	pos := b.Positivos.Add(other.Positivos)
	neg := b.Negativos.Add(other.Negativos)
	return Balance{Positivos: pos, Negativos: neg, Balance: pos.Sub(neg)}
}

func (b Balance) Equal(other Balance) bool {
	return b.Positivos.Equal(other.Positivos) && b.Negativos.Equal(other.Negativos) && b.Balance.Equal(other.Balance)
}

// Invert shifts a balance to the opposite side of the same movements, e.g.
// from a mine's view to RodMar's view of that mine.
func Invert(b Balance) Balance {
	return Balance{Positivos: b.Negativos, Negativos: b.Positivos, Balance: b.Balance.Neg()}
}

// DualView pairs the header balance (every entry, hidden ones included) with
// the balance of what is currently listed.
type DualView struct {
	Header   Balance `json:"header"`
	Filtered Balance `json:"filtered"`
}

// Calculator nets entries with a rule table. Observe, when set, receives
// every non-zero contribution.
type Calculator struct {
	Rules   Rules
	Observe func(e Entry, p Party, contribution decimal.Decimal)
}

func NewCalculator() *Calculator {
	return &Calculator{Rules: DefaultRules}
}

func (c *Calculator) rules() Rules {
	if c == nil || c.Rules == nil {
		return DefaultRules
	}
	return c.Rules
}

func (c *Calculator) Compute(entries []Entry, p Party) Balance {
	rules := c.rules()
	pos := decimal.Zero
	neg := decimal.Zero
	for _, e := range entries {
		v := rules.Contribution(e, p)
		if v.IsZero() {
			continue
		}
		if c != nil && c.Observe != nil {
			c.Observe(e, p, v)
		}
		if v.IsPositive() {
			pos = pos.Add(v)
		} else {
			neg = neg.Add(v.Neg())
		}
	}
	return Balance{Positivos: pos, Negativos: neg, Balance: pos.Sub(neg)}
}

// Feed returns the manual entries followed by the trip pseudo-entries p sees.
func (c *Calculator) Feed(entries []Entry, trips []Trip, p Party) []Entry {
	tripEntries := c.rules().TripEntries(trips, p)
	out := make([]Entry, 0, len(entries)+len(tripEntries))
	out = append(out, entries...)
	return append(out, tripEntries...)
}

func (c *Calculator) DualView(all, visible []Entry, p Party) DualView {
	return DualView{Header: c.Compute(all, p), Filtered: c.Compute(visible, p)}
}

// Compute nets entries with DefaultRules.
func Compute(entries []Entry, p Party) Balance {
	return NewCalculator().Compute(entries, p)
}

// Visible drops the entries hidden in the current view. It never touches the
// header balance, which is always computed on the full feed.
func Visible(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Hidden {
			out = append(out, e)
		}
	}
	return out
}

// WithoutPending drops pending entries.
func WithoutPending(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.IsPending() {
			out = append(out, e)
		}
	}
	return out
}
