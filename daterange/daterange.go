// Package daterange resolves the dashboard's symbolic date filters into
// inclusive calendar-day intervals.
//
// Every value handled here is a "YYYY-MM-DD" string. Stored values are cut
// down to their calendar-day prefix instead of being parsed into a time.Time,
// so a record saved at 23:30 never slides into the next day because of a
// timezone conversion.
package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// Sentinel bounds for the open-ended filters.
const (
	MinDay = "0000-01-01"
	MaxDay = "9999-12-31"
)

type Filter string

const (
	FilterHoy          Filter = "hoy"
	FilterAyer         Filter = "ayer"
	FilterEstaSemana   Filter = "esta-semana"
	FilterSemanaPasada Filter = "semana-pasada"
	FilterEsteMes      Filter = "este-mes"
	FilterMesPasado    Filter = "mes-pasado"
	FilterEsteAno      Filter = "este-año"
	FilterAnoPasado    Filter = "año-pasado"
	FilterExactamente  Filter = "exactamente"
	FilterEntre        Filter = "entre"
	FilterDespuesDe    Filter = "despues-de"
	FilterAntesDe      Filter = "antes-de"
	FilterTodos        Filter = "todos"
)

var knownFilters = map[Filter]bool{
	FilterHoy: true, FilterAyer: true, FilterEstaSemana: true, FilterSemanaPasada: true,
	FilterEsteMes: true, FilterMesPasado: true, FilterEsteAno: true, FilterAnoPasado: true,
	FilterExactamente: true, FilterEntre: true, FilterDespuesDe: true, FilterAntesDe: true,
	FilterTodos: true,
}

var ErrUnknownFilter = errors.New("unknown date filter")

// ParseFilter accepts the filter names used by the client. An empty value means FilterTodos.
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterTodos, nil
	}
	// "este-ano"/"ano-pasado" show up when clients strip the ñ.
	switch s {
	case "este-ano":
		return FilterEsteAno, nil
	case "ano-pasado":
		return FilterAnoPasado, nil
	}
	f := Filter(s)
	if !knownFilters[f] {
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
	}
	return f, nil
}

// Range is a closed interval of calendar days.
type Range struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Contains reports whether day (any value with a calendar-day prefix) falls inside the range.
// Values without a recognisable day never match.
func (r Range) Contains(day string) bool {
	d := Day(day)
	if d == "" {
		return false
	}
	return d >= r.Start && d <= r.End
}

// IsUnbounded is true for the "todos" range.
func (r Range) IsUnbounded() bool {
	return r.Start == MinDay && r.End == MaxDay
}

// Day extracts the "YYYY-MM-DD" prefix of a stored date value
// ("2024-03-05", "2024-03-05T23:59:00.000Z", "2024-03-05 10:00:00").
// It returns "" when the prefix is not a calendar day.
func Day(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) < len(dayLayout) {
		return ""
	}
	d := raw[:len(dayLayout)]
	if _, err := time.Parse(dayLayout, d); err != nil {
		return ""
	}
	return d
}

// Today renders the caller's clock as a calendar day in the clock's own location.
func Today(now time.Time) string {
	return now.Format(dayLayout)
}

// civil arithmetic is done on UTC midnights so DST never moves a day boundary
func civil(day string) time.Time {
	t, _ := time.Parse(dayLayout, day)
	return t
}

func format(t time.Time) string {
	return t.Format(dayLayout)
}

// Resolve maps a filter plus its explicit values onto a Range, relative to now.
// It returns nil when the filter needs explicit values that are missing or
// malformed; callers must then skip date filtering.
func Resolve(filter Filter, value1, value2 string, now time.Time) *Range {
	today := civil(Today(now))
	v1 := Day(value1)
	v2 := Day(value2)

	switch filter {
	case FilterTodos, "":
		return &Range{Start: MinDay, End: MaxDay}
	case FilterHoy:
		return &Range{Start: format(today), End: format(today)}
	case FilterAyer:
		y := today.AddDate(0, 0, -1)
		return &Range{Start: format(y), End: format(y)}
	case FilterEstaSemana:
		sunday := today.AddDate(0, 0, -int(today.Weekday()))
		return &Range{Start: format(sunday), End: format(today)}
	case FilterSemanaPasada:
		sunday := today.AddDate(0, 0, -int(today.Weekday()))
		return &Range{Start: format(sunday.AddDate(0, 0, -7)), End: format(sunday.AddDate(0, 0, -1))}
	case FilterEsteMes:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return &Range{Start: format(first), End: format(first.AddDate(0, 1, -1))}
	case FilterMesPasado:
		// time.Date normalises month 0 to December of the previous year.
		first := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		return &Range{Start: format(first), End: format(first.AddDate(0, 1, -1))}
	case FilterEsteAno:
		y := today.Year()
		return &Range{Start: fmt.Sprintf("%04d-01-01", y), End: fmt.Sprintf("%04d-12-31", y)}
	case FilterAnoPasado:
		y := today.Year() - 1
		return &Range{Start: fmt.Sprintf("%04d-01-01", y), End: fmt.Sprintf("%04d-12-31", y)}
	case FilterExactamente:
		if v1 == "" {
			return nil
		}
		return &Range{Start: v1, End: v1}
	case FilterEntre:
		if v1 == "" || v2 == "" {
			return nil
		}
		if v2 < v1 {
			v1, v2 = v2, v1
		}
		return &Range{Start: v1, End: v2}
	case FilterDespuesDe:
		if v1 == "" {
			return nil
		}
		return &Range{Start: v1, End: MaxDay}
	case FilterAntesDe:
		if v1 == "" {
			return nil
		}
		return &Range{Start: MinDay, End: v1}
	default:
		return nil
	}
}
