package listview

import (
	"math"
	"reflect"
	"testing"

	"bitbucket.org/rodmar/rodmar_backend/daterange"
	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"github.com/shopspring/decimal"
)

func entry(id string, fecha string, valor int64, concepto string) ledger.Entry {
	return ledger.Entry{
		ID:            id,
		Kind:          ledger.KindManual,
		Valor:         decimal.NewFromInt(valor),
		Fecha:         fecha,
		Concepto:      concepto,
		DeQuien:       ledger.Party{Tipo: ledger.PartyMina, Id: "1"},
		ParaQuien:     ledger.Party{Tipo: ledger.PartyRodMar, Id: "bemovil"},
		DeQuienNombre: "Mina La Esperanza",
		Estado:        ledger.StatusCompletada,
	}
}

func sample() []ledger.Entry {
	return []ledger.Entry{
		entry("1", "2024-05-03", 1500000, "Pago carbón"),
		entry("2", "2024-05-01", -200, "Anticipo"),
		entry("3", "2024-05-02", 90000, "Flete"),
		entry("4", "2024-05-01", 1500, "Ajuste"),
	}
}

func ids(entries []ledger.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func ptr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestApply_Filters(t *testing.T) {
	cases := []struct {
		name string
		q    Query
		want []string
	}{
		{"empty query keeps order", Query{}, []string{"1", "2", "3", "4"}},
		{"text is case insensitive", Query{Search: "FLETE"}, []string{"3"}},
		{"counterparty name", Query{Search: "esperanza"}, []string{"1", "2", "3", "4"}},
		{"numeric matches digits of amount", Query{Search: "1.500"}, []string{"1", "4"}},
		{"numeric uses absolute value", Query{Search: "200"}, []string{"2"}},
		{"no match", Query{Search: "zzz"}, []string{}},
		{"date range", Query{Range: &daterange.Range{Start: "2024-05-02", End: "2024-05-03"}}, []string{"1", "3"}},
		{"min value on absolute amount", Query{MinValor: ptr(1500)}, []string{"1", "3", "4"}},
		{"max value on absolute amount", Query{MaxValor: ptr(1500)}, []string{"2", "4"}},
		{"combined", Query{Search: "a", MinValor: ptr(100), MaxValor: ptr(100000)}, []string{"2", "3", "4"}},
	}
	for _, tc := range cases {
		got := ids(Apply(sample(), tc.q))
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestApply_Sorting(t *testing.T) {
	cases := []struct {
		sort SortState
		want []string
	}{
		{SortState{Key: SortFecha, Dir: DirAsc}, []string{"2", "4", "3", "1"}},
		{SortState{Key: SortFecha, Dir: DirDesc}, []string{"1", "3", "2", "4"}},
		{SortState{Key: SortValor, Dir: DirAsc}, []string{"2", "4", "3", "1"}},
		{SortState{Key: SortValor, Dir: DirDesc}, []string{"1", "3", "4", "2"}},
		{SortState{Key: SortValor, Dir: DirNone}, []string{"1", "2", "3", "4"}},
	}
	for _, tc := range cases {
		got := ids(Apply(sample(), Query{Sort: tc.sort}))
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("sort %+v: expected %v, got %v", tc.sort, tc.want, got)
		}
	}
}

func TestApply_IdempotentAndDoesNotMutate(t *testing.T) {
	in := sample()
	before := ids(in)
	q := Query{Search: "a", Range: &daterange.Range{Start: "2024-05-01", End: "2024-05-03"}, Sort: SortState{Key: SortValor, Dir: DirDesc}}

	once := Apply(in, q)
	twice := Apply(once, q)
	if !reflect.DeepEqual(ids(once), ids(twice)) {
		t.Fatalf("Apply is not idempotent: %v vs %v", ids(once), ids(twice))
	}
	if !reflect.DeepEqual(before, ids(in)) {
		t.Fatalf("Apply reordered its input: %v -> %v", before, ids(in))
	}
}

func TestSortState_Toggle(t *testing.T) {
	var s SortState
	steps := []struct {
		key  SortKey
		want SortState
	}{
		{SortFecha, SortState{SortFecha, DirAsc}},
		{SortFecha, SortState{SortFecha, DirDesc}},
		{SortFecha, SortState{}},
		{SortFecha, SortState{SortFecha, DirAsc}},
		{SortValor, SortState{SortValor, DirAsc}},
		{SortValor, SortState{SortValor, DirDesc}},
		{SortFecha, SortState{SortFecha, DirAsc}},
	}
	for i, step := range steps {
		s = s.Toggle(step.key)
		if s != step.want {
			t.Fatalf("step %d Toggle(%s) expected %+v, got %+v", i, step.key, step.want, s)
		}
	}
}

func TestParseSort(t *testing.T) {
	cases := []struct {
		key, dir string
		want     SortState
		wantErr  bool
	}{
		{"", "", SortState{}, false},
		{"fecha", "DESC", SortState{SortFecha, DirDesc}, false},
		{"valor", "", SortState{}, false},
		{"nombre", "asc", SortState{}, true},
		{"fecha", "up", SortState{}, true},
	}
	for _, tc := range cases {
		got, err := ParseSort(tc.key, tc.dir)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Fatalf("ParseSort(%q, %q) expected %+v err=%v, got %+v err=%v", tc.key, tc.dir, tc.want, tc.wantErr, got, err)
		}
	}
}

func TestNormalizePage_OffsetFitsInt(t *testing.T) {
	cases := []struct{ page, limit int }{
		{1<<62 + 1, 50},
		{math.MaxInt, MaxLimit},
		{math.MaxInt, math.MaxInt},
	}
	for _, tc := range cases {
		page, limit := NormalizePage(tc.page, tc.limit)
		if offset := (page - 1) * limit; offset < 0 {
			t.Fatalf("NormalizePage(%d, %d) expected a non-negative offset, got %d", tc.page, tc.limit, offset)
		}
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	cases := []struct {
		page, limit int
		want        []int
		p           Pagination
	}{
		{1, 2, []int{1, 2}, Pagination{Page: 1, Limit: 2, Total: 5, TotalPages: 3, HasMore: true}},
		{3, 2, []int{5}, Pagination{Page: 3, Limit: 2, Total: 5, TotalPages: 3, HasMore: false}},
		{4, 2, []int{}, Pagination{Page: 4, Limit: 2, Total: 5, TotalPages: 3, HasMore: false}},
		{0, 0, []int{1, 2, 3, 4, 5}, Pagination{Page: 1, Limit: DefaultLimit, Total: 5, TotalPages: 1, HasMore: false}},
		{1<<62 + 1, 50, []int{}, Pagination{Page: MaxPage, Limit: 50, Total: 5, TotalPages: 1, HasMore: false}},
		{MaxPage, MaxLimit, []int{}, Pagination{Page: MaxPage, Limit: MaxLimit, Total: 5, TotalPages: 1, HasMore: false}},
	}
	for _, tc := range cases {
		got, p := Paginate(items, tc.page, tc.limit)
		if !reflect.DeepEqual(got, tc.want) || p != tc.p {
			t.Fatalf("Paginate(page=%d, limit=%d) expected %v %+v, got %v %+v", tc.page, tc.limit, tc.want, tc.p, got, p)
		}
	}
}
