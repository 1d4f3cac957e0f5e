package listquery

import (
	"sync"
	"testing"
	"time"
)

type syncRecorder struct {
	mu     sync.Mutex
	states []Query
}

func (r *syncRecorder) record(q Query) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, q)
}

func (r *syncRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func (r *syncRecorder) last() Query {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[len(r.states)-1]
}

func TestController_ImmediateOps(t *testing.T) {
	rec := &syncRecorder{}
	c := NewController(testConfig(), Query{Page: 1, PerPage: 10}, rec.record)
	defer c.Close()

	c.SetPage(3)
	c.SetFacet("category", []string{"c1"})
	c.ToggleSort("name")

	if rec.count() != 3 {
		t.Fatalf("immediate ops must sync each time, got %d", rec.count())
	}
	last := rec.last()
	if last.Page != 1 {
		t.Fatalf("facet change must have reset page, got %d", last.Page)
	}
	if last.Sort == nil || last.Sort.Column != "name" {
		t.Fatalf("unexpected sort: %+v", last.Sort)
	}
}

func TestController_SearchDebounces(t *testing.T) {
	rec := &syncRecorder{}
	c := NewControllerWithDebounce(testConfig(), Query{Page: 4, PerPage: 10}, rec.record, 30*time.Millisecond)
	defer c.Close()

	c.SetSearch("name", "r")
	c.SetSearch("name", "ro")
	c.SetSearch("name", "robot")
	if rec.count() != 0 {
		t.Fatalf("debounced search must not sync immediately, got %d", rec.count())
	}

	deadline := time.Now().Add(time.Second)
	for rec.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if rec.count() != 1 {
		t.Fatalf("expected a single coalesced sync, got %d", rec.count())
	}
	last := rec.last()
	if last.FilterText("name") != "robot" {
		t.Fatalf("expected last typed value, got %q", last.FilterText("name"))
	}
	if last.Page != 1 {
		t.Fatalf("search must reset page, got %d", last.Page)
	}
}

func TestController_Flush(t *testing.T) {
	rec := &syncRecorder{}
	c := NewControllerWithDebounce(testConfig(), Query{Page: 1, PerPage: 10}, rec.record, time.Hour)
	defer c.Close()

	c.SetSearch("name", "ana")
	c.Flush()
	if rec.count() != 1 || rec.last().FilterText("name") != "ana" {
		t.Fatalf("flush must apply pending search, got %d syncs", rec.count())
	}
}

func TestController_CloseStopsPendingTimer(t *testing.T) {
	rec := &syncRecorder{}
	c := NewControllerWithDebounce(testConfig(), Query{Page: 1, PerPage: 10}, rec.record, 20*time.Millisecond)

	c.SetSearch("name", "tarde")
	c.Close()
	time.Sleep(60 * time.Millisecond)
	if rec.count() != 0 {
		t.Fatalf("no sync may fire after Close, got %d", rec.count())
	}

	c.SetPage(2)
	if rec.count() != 0 {
		t.Fatalf("ops after Close must be no-ops, got %d", rec.count())
	}
}
