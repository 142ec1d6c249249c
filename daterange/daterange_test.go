package daterange

import (
	"errors"
	"testing"
	"time"
)

// Wednesday 2024-03-13
var wednesday = time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)

func TestResolve_RelativeFilters(t *testing.T) {
	cases := []struct {
		filter Filter
		now    time.Time
		start  string
		end    string
	}{
		{FilterHoy, wednesday, "2024-03-13", "2024-03-13"},
		{FilterAyer, wednesday, "2024-03-12", "2024-03-12"},
		{FilterAyer, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), "2024-02-29", "2024-02-29"},
		{FilterEstaSemana, wednesday, "2024-03-10", "2024-03-13"},
		{FilterEstaSemana, time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), "2024-03-10", "2024-03-10"},
		{FilterSemanaPasada, wednesday, "2024-03-03", "2024-03-09"},
		{FilterEsteMes, wednesday, "2024-03-01", "2024-03-31"},
		{FilterMesPasado, wednesday, "2024-02-01", "2024-02-29"},
		{FilterEsteAno, wednesday, "2024-01-01", "2024-12-31"},
		{FilterAnoPasado, wednesday, "2023-01-01", "2023-12-31"},
		{FilterTodos, wednesday, MinDay, MaxDay},
	}
	for _, tc := range cases {
		r := Resolve(tc.filter, "", "", tc.now)
		if r == nil {
			t.Fatalf("Resolve(%s) returned nil", tc.filter)
		}
		if r.Start != tc.start || r.End != tc.end {
			t.Fatalf("Resolve(%s, now=%s) expected [%s,%s], got [%s,%s]", tc.filter, tc.now.Format(time.RFC3339), tc.start, tc.end, r.Start, r.End)
		}
	}
}

func TestResolve_MesPasadoRollsOverYear(t *testing.T) {
	for day := 1; day <= 31; day++ {
		now := time.Date(2025, time.January, day, 12, 0, 0, 0, time.UTC)
		r := Resolve(FilterMesPasado, "", "", now)
		if r == nil {
			t.Fatalf("Resolve(mes-pasado) returned nil")
		}
		if r.Start != "2024-12-01" || r.End != "2024-12-31" {
			t.Fatalf("mes-pasado in %s expected December 2024, got [%s,%s]", Today(now), r.Start, r.End)
		}
	}
}

func TestResolve_UsesClockLocationNotUTC(t *testing.T) {
	bogota := time.FixedZone("COT", -5*3600)
	// 2024-03-13 21:30 in Bogota is already the 14th in UTC.
	now := time.Date(2024, 3, 13, 21, 30, 0, 0, bogota)
	r := Resolve(FilterHoy, "", "", now)
	if r.Start != "2024-03-13" {
		t.Fatalf("expected hoy to stay on the local calendar day, got %s", r.Start)
	}
}

func TestResolve_ExplicitValues(t *testing.T) {
	cases := []struct {
		filter Filter
		v1, v2 string
		want   *Range
	}{
		{FilterExactamente, "2024-05-02", "", &Range{"2024-05-02", "2024-05-02"}},
		{FilterExactamente, "", "", nil},
		{FilterEntre, "2024-05-01", "2024-05-31", &Range{"2024-05-01", "2024-05-31"}},
		{FilterEntre, "2024-05-31", "2024-05-01", &Range{"2024-05-01", "2024-05-31"}},
		{FilterEntre, "2024-05-01", "", nil},
		{FilterDespuesDe, "2024-05-01", "", &Range{"2024-05-01", MaxDay}},
		{FilterDespuesDe, "", "", nil},
		{FilterAntesDe, "2024-05-01T23:59:59Z", "", &Range{MinDay, "2024-05-01"}},
		{FilterAntesDe, "not-a-date", "", nil},
	}
	for _, tc := range cases {
		got := Resolve(tc.filter, tc.v1, tc.v2, wednesday)
		if tc.want == nil {
			if got != nil {
				t.Fatalf("Resolve(%s, %q, %q) expected nil, got %+v", tc.filter, tc.v1, tc.v2, *got)
			}
			continue
		}
		if got == nil || *got != *tc.want {
			t.Fatalf("Resolve(%s, %q, %q) expected %+v, got %+v", tc.filter, tc.v1, tc.v2, *tc.want, got)
		}
	}
}

func TestRange_EntreBoundsAreInclusive(t *testing.T) {
	r := Resolve(FilterEntre, "2024-05-10", "2024-05-20", wednesday)
	cases := []struct {
		day  string
		want bool
	}{
		{"2024-05-09", false},
		{"2024-05-10", true},
		{"2024-05-10T00:00:00.000Z", true},
		{"2024-05-15", true},
		{"2024-05-20", true},
		{"2024-05-20T23:59:59.999Z", true},
		{"2024-05-21", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := r.Contains(tc.day); got != tc.want {
			t.Fatalf("Contains(%q) expected %v, got %v", tc.day, tc.want, got)
		}
	}
}

func TestDay(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"2024-01-31", "2024-01-31"},
		{"2024-01-31T23:30:00-05:00", "2024-01-31"},
		{"2024-01-31 23:30:00", "2024-01-31"},
		{" 2024-01-31 ", "2024-01-31"},
		{"2024-02-30", ""},
		{"31/01/2024", ""},
		{"2024", ""},
	}
	for _, tc := range cases {
		if got := Day(tc.in); got != tc.out {
			t.Fatalf("Day(%q) expected %q, got %q", tc.in, tc.out, got)
		}
	}
}

func TestParseFilter(t *testing.T) {
	if f, err := ParseFilter(""); err != nil || f != FilterTodos {
		t.Fatalf("ParseFilter(\"\") expected todos, got %q (%v)", f, err)
	}
	if f, err := ParseFilter("Este-Ano"); err != nil || f != FilterEsteAno {
		t.Fatalf("ParseFilter(Este-Ano) expected este-año, got %q (%v)", f, err)
	}
	if _, err := ParseFilter("mañana"); !errors.Is(err, ErrUnknownFilter) {
		t.Fatalf("ParseFilter(mañana) expected ErrUnknownFilter, got %v", err)
	}
}
