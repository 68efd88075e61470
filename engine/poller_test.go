package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/grissess/gscope/model"
)

// fakeSource is a scriptable Querier.
type fakeSource struct {
	available bool
	rows      []model.ConnRecord
	err       error
	queries   int
}

func (f *fakeSource) Available() bool { return f.available }

func (f *fakeSource) QueryLatest() ([]model.ConnRecord, error) {
	f.queries++
	return f.rows, f.err
}

func TestPollerIdleWithoutStore(t *testing.T) {
	src := &fakeSource{available: false}
	p := NewPoller(src, 250*time.Millisecond, 5.0)

	if p.Tick(time.Now()) {
		t.Error("Tick reported new data with no store open")
	}
	if src.queries != 0 {
		t.Errorf("source queried %d times, want 0", src.queries)
	}
}

func TestPollerRespectsPeriod(t *testing.T) {
	src := &fakeSource{available: true, rows: []model.ConnRecord{{Ident: "a"}}}
	p := NewPoller(src, 250*time.Millisecond, 5.0)
	base := time.Now()

	if !p.Tick(base) {
		t.Fatal("first tick did not poll")
	}
	if p.Tick(base.Add(100 * time.Millisecond)) {
		t.Error("tick inside the period polled")
	}
	if !p.Tick(base.Add(250 * time.Millisecond)) {
		t.Error("tick at the period boundary did not poll")
	}
	if src.queries != 2 {
		t.Errorf("source queried %d times, want 2", src.queries)
	}
	if len(p.Rows()) != 1 || p.Rows()[0].Ident != "a" {
		t.Errorf("cached rows = %v, want the queried snapshot", p.Rows())
	}
}

func TestPollerRetriesFailureEveryTick(t *testing.T) {
	src := &fakeSource{available: true, rows: []model.ConnRecord{{Ident: "a"}}}
	p := NewPoller(src, 250*time.Millisecond, 5.0)
	base := time.Now()

	p.Tick(base)

	// The store starts failing: the old snapshot stays and the schedule
	// does not advance, so every subsequent tick retries.
	src.err = errors.New("database is locked")
	if p.Tick(base.Add(300 * time.Millisecond)) {
		t.Error("failed poll reported new data")
	}
	if len(p.Rows()) != 1 {
		t.Error("failed poll dropped the cached snapshot")
	}
	p.Tick(base.Add(310 * time.Millisecond))
	p.Tick(base.Add(320 * time.Millisecond))
	if src.queries != 4 {
		t.Errorf("source queried %d times, want retry on every tick (4)", src.queries)
	}

	// Recovery replaces the snapshot wholesale.
	src.err = nil
	src.rows = []model.ConnRecord{{Ident: "b"}, {Ident: "c"}}
	if !p.Tick(base.Add(330 * time.Millisecond)) {
		t.Fatal("recovered poll reported no data")
	}
	if len(p.Rows()) != 2 {
		t.Errorf("cached rows = %d, want replaced snapshot of 2", len(p.Rows()))
	}
}

func TestPollerLiveConfig(t *testing.T) {
	src := &fakeSource{available: true}
	p := NewPoller(src, 250*time.Millisecond, 5.0)
	base := time.Now()

	p.Tick(base)
	p.SetPeriod(50 * time.Millisecond)
	if !p.Tick(base.Add(260 * time.Millisecond)) {
		t.Error("tick after old period did not poll")
	}
	if !p.Tick(base.Add(320 * time.Millisecond)) {
		t.Error("shortened period not effective on next tick")
	}

	p.SetHistory(30)
	if p.History() != 30 {
		t.Errorf("History() = %v, want 30", p.History())
	}
}
