// Package listview narrows and orders the entries shown in a counterparty's
// transaction list: free-text search, date range, amount range and a single
// active sort key.
package listview

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"bitbucket.org/rodmar/rodmar_backend/daterange"
	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"github.com/shopspring/decimal"
)

type SortKey string

const (
	SortNone  SortKey = ""
	SortFecha SortKey = "fecha"
	SortValor SortKey = "valor"
)

type SortDir string

const (
	DirNone SortDir = ""
	DirAsc  SortDir = "asc"
	DirDesc SortDir = "desc"
)

// Next walks none -> asc -> desc -> none.
func (d SortDir) Next() SortDir {
	switch d {
	case DirNone:
		return DirAsc
	case DirAsc:
		return DirDesc
	default:
		return DirNone
	}
}

// SortState holds at most one active sort key.
type SortState struct {
	Key SortKey `json:"key"`
	Dir SortDir `json:"dir"`
}

func (s SortState) Active() bool {
	return s.Key != SortNone && s.Dir != DirNone
}

// Toggle advances the cycle of key. Selecting a different key clears the
// previous one and starts the new key at ascending.
func (s SortState) Toggle(key SortKey) SortState {
	if key == SortNone {
		return SortState{}
	}
	if s.Key != key {
		return SortState{Key: key, Dir: DirAsc}
	}
	next := s.Dir.Next()
	if next == DirNone {
		return SortState{}
	}
	return SortState{Key: key, Dir: next}
}

func ParseSort(key, dir string) (SortState, error) {
	k := SortKey(strings.ToLower(strings.TrimSpace(key)))
	d := SortDir(strings.ToLower(strings.TrimSpace(dir)))
	switch k {
	case SortNone, SortFecha, SortValor:
	default:
		return SortState{}, fmt.Errorf("invalid sortBy %q", key)
	}
	switch d {
	case DirNone, DirAsc, DirDesc:
	default:
		return SortState{}, fmt.Errorf("invalid sortDir %q", dir)
	}
	if k == SortNone || d == DirNone {
		return SortState{}, nil
	}
	return SortState{Key: k, Dir: d}, nil
}

type Query struct {
	Search   string
	Range    *daterange.Range
	MinValor *decimal.Decimal
	MaxValor *decimal.Decimal
	Sort     SortState
}

// Apply returns the entries matching q in display order. The input slice and
// its entries are left untouched, so Apply(Apply(x, q), q) == Apply(x, q).
func Apply(entries []ledger.Entry, q Query) []ledger.Entry {
	out := make([]ledger.Entry, 0, len(entries))
	term := strings.TrimSpace(q.Search)
	for _, e := range entries {
		if term != "" && !MatchesSearch(e, term) {
			continue
		}
		if q.Range != nil && !q.Range.Contains(e.Fecha) {
			continue
		}
		if !inValueRange(e, q.MinValor, q.MaxValor) {
			continue
		}
		out = append(out, e)
	}
	if q.Sort.Active() {
		sortEntries(out, q.Sort)
	}
	return out
}

// MatchesSearch matches term case-insensitively against the text fields, or,
// when term is purely numeric, against the digits of the amount.
func MatchesSearch(e ledger.Entry, term string) bool {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return true
	}
	for _, field := range []string{e.Concepto, e.Comentario, e.DeQuienNombre, e.ParaQuienNombre} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	if digits, ok := numericTerm(needle); ok {
		return strings.Contains(onlyDigits(e.Amount().String()), digits)
	}
	return false
}

// numericTerm accepts amounts typed with thousand separators or a currency
// sign ("1.500.000", "$ 1,500").
func numericTerm(term string) (string, bool) {
	var digits strings.Builder
	for _, r := range term {
		switch {
		case unicode.IsDigit(r):
			digits.WriteRune(r)
		case r == '.' || r == ',' || r == '$' || r == ' ':
		default:
			return "", false
		}
	}
	if digits.Len() == 0 {
		return "", false
	}
	return digits.String(), true
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func inValueRange(e ledger.Entry, min, max *decimal.Decimal) bool {
	v := e.Amount()
	if min != nil && v.LessThan(min.Abs()) {
		return false
	}
	if max != nil && v.GreaterThan(max.Abs()) {
		return false
	}
	return true
}

func sortEntries(entries []ledger.Entry, s SortState) {
	less := func(i, j int) bool { return false }
	switch s.Key {
	case SortFecha:
		less = func(i, j int) bool { return entries[i].Fecha < entries[j].Fecha }
	case SortValor:
		less = func(i, j int) bool { return entries[i].Amount().LessThan(entries[j].Amount()) }
	}
	if s.Dir == DirDesc {
		asc := less
		less = func(i, j int) bool { return asc(j, i) }
	}
	sort.SliceStable(entries, less)
}
