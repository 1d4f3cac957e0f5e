package listquery

import (
	"net/url"
	"reflect"
	"testing"
)

func testConfig() Config {
	return Config{
		Searchable: []string{"name"},
		Filterable: []string{"category", "status"},
	}
}

func TestParse_Defaults(t *testing.T) {
	q := testConfig().Parse(url.Values{})
	if q.Page != 1 || q.PerPage != 10 {
		t.Fatalf("expected defaults page=1 per_page=10, got %d/%d", q.Page, q.PerPage)
	}
	if q.Sort != nil {
		t.Fatalf("expected no sort, got %+v", q.Sort)
	}
	if len(q.Filters) != 0 {
		t.Fatalf("expected no filters, got %+v", q.Filters)
	}
}

func TestParse_FullURL(t *testing.T) {
	q := testConfig().ParseString("page=2&per_page=20&sort=name.desc&category=c1,c2")
	if q.Page != 2 || q.PerPage != 20 {
		t.Fatalf("unexpected paging: %d/%d", q.Page, q.PerPage)
	}
	if q.Sort == nil || q.Sort.Column != "name" || !q.Sort.Desc {
		t.Fatalf("unexpected sort: %+v", q.Sort)
	}
	if len(q.Filters) != 1 {
		t.Fatalf("expected one filter, got %+v", q.Filters)
	}
	f := q.Filters[0]
	if f.Column != "category" || !reflect.DeepEqual(f.Values, []string{"c1", "c2"}) {
		t.Fatalf("unexpected filter: %+v", f)
	}
}

func TestParse_SearchableIsSingleString(t *testing.T) {
	q := testConfig().ParseString("name=robot,arm")
	if len(q.Filters) != 1 {
		t.Fatalf("expected one filter, got %+v", q.Filters)
	}
	if q.Filters[0].Text != "robot,arm" || q.Filters[0].Values != nil {
		t.Fatalf("searchable column must keep raw text: %+v", q.Filters[0])
	}
}

func TestParse_MalformedNumbersFallBack(t *testing.T) {
	for _, raw := range []string{"page=abc", "page=-3", "page=0", "per_page=x", "per_page=-1"} {
		q := testConfig().ParseString(raw)
		if q.Page != 1 || q.PerPage != 10 {
			t.Fatalf("%q: expected silent defaults, got %d/%d", raw, q.Page, q.PerPage)
		}
	}
}

func TestParse_MalformedSortFallsBackToDefault(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultSort = &Sort{Column: "created_at", Desc: true}
	for _, raw := range []string{"", "sort=name", "sort=name.sideways", "sort=.asc"} {
		q := cfg.ParseString(raw)
		if q.Sort == nil || q.Sort.Column != "created_at" || !q.Sort.Desc {
			t.Fatalf("%q: expected default sort, got %+v", raw, q.Sort)
		}
	}
}

func TestParse_UnknownKeysIgnored(t *testing.T) {
	q := testConfig().ParseString("utm_source=mail&whatever=1&name=ana")
	if len(q.Filters) != 1 || q.Filters[0].Column != "name" {
		t.Fatalf("unknown keys must be ignored, got %+v", q.Filters)
	}
}

func TestParse_MaxPerPageCaps(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPerPage = 50
	if q := cfg.ParseString("per_page=500"); q.PerPage != 50 {
		t.Fatalf("expected cap at 50, got %d", q.PerPage)
	}
}

func TestParseEncode_Idempotent(t *testing.T) {
	cfg := testConfig()
	cases := []string{
		"",
		"page=2",
		"page=3&per_page=20",
		"sort=name.asc",
		"page=2&per_page=20&sort=name.desc&category=c1,c2",
		"name=robotica&status=approved",
	}
	for _, raw := range cases {
		first := cfg.ParseString(raw)
		second := cfg.ParseString(first.EncodeString())
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("%q: parse/encode not idempotent:\n first: %+v\nsecond: %+v", raw, first, second)
		}
	}
}

func TestEncode_OmitsDefaultsAndEmpties(t *testing.T) {
	q := Query{Page: 1, PerPage: 10}
	if got := q.EncodeString(); got != "" {
		t.Fatalf("defaults must encode empty, got %q", got)
	}
	q = q.WithSearch("name", "ana").WithSearch("name", "")
	if got := q.EncodeString(); got != "" {
		t.Fatalf("cleared filter must drop its key, got %q", got)
	}
}

func TestTransitions_FilterChangesResetPage(t *testing.T) {
	q := testConfig().ParseString("page=7&per_page=20")
	if got := q.WithSearch("name", "x"); got.Page != 1 {
		t.Fatalf("search change must reset page, got %d", got.Page)
	}
	if got := q.WithFacet("category", []string{"c1"}); got.Page != 1 {
		t.Fatalf("facet change must reset page, got %d", got.Page)
	}
	if got := q.WithPerPage(50); got.Page != 1 {
		t.Fatalf("per_page change must reset page, got %d", got.Page)
	}
	if got := q.WithPage(3); got.Page != 3 || got.PerPage != 20 {
		t.Fatalf("page change must keep the rest, got %+v", got)
	}
}

func TestTransitions_FacetReplaceAndClear(t *testing.T) {
	q := Query{Page: 1, PerPage: 10}
	q = q.WithFacet("category", []string{"c1", "c2"})
	q = q.WithFacet("category", []string{"c3"})
	if got := q.FilterValues("category"); !reflect.DeepEqual(got, []string{"c3"}) {
		t.Fatalf("facet must replace, got %v", got)
	}
	q = q.WithFacet("category", nil)
	if got := q.FilterValues("category"); got != nil {
		t.Fatalf("empty set must clear the filter, got %v", got)
	}
}

func TestToggleSort_TwoState(t *testing.T) {
	q := Query{}
	q = q.ToggleSort("name")
	if q.Sort == nil || q.Sort.Column != "name" || q.Sort.Desc {
		t.Fatalf("first toggle must be asc, got %+v", q.Sort)
	}
	q = q.ToggleSort("name")
	if !q.Sort.Desc {
		t.Fatalf("second toggle must be desc, got %+v", q.Sort)
	}
	q = q.ToggleSort("name")
	if q.Sort == nil || q.Sort.Desc {
		t.Fatalf("third toggle must return to asc, got %+v", q.Sort)
	}
	q = q.ToggleSort("title")
	if q.Sort.Column != "title" || q.Sort.Desc {
		t.Fatalf("new column must start asc, got %+v", q.Sort)
	}
}

func TestOffsetLimitPageCount(t *testing.T) {
	q := Query{Page: 3, PerPage: 20}
	if q.Offset() != 40 || q.Limit() != 20 {
		t.Fatalf("unexpected offset/limit: %d/%d", q.Offset(), q.Limit())
	}
	if got := PageCount(0, 10); got != 0 {
		t.Fatalf("empty total must be 0 pages, got %d", got)
	}
	if got := PageCount(41, 20); got != 3 {
		t.Fatalf("ceil(41/20) must be 3, got %d", got)
	}
	if got := PageCount(40, 20); got != 2 {
		t.Fatalf("exact division must be 2, got %d", got)
	}
}
