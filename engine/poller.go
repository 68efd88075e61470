package engine

import (
	"log"
	"time"

	"github.com/grissess/gscope/model"
)

// Querier is the slice of the store adapter the scheduler needs.
type Querier interface {
	Available() bool
	QueryLatest() ([]model.ConnRecord, error)
}

// Poller drives the fixed-period poll-then-redraw cycle. It is ticked from
// the host frame loop and stays idle until the next scheduled poll time,
// decoupling query cadence from frame cadence. The cached result set is
// replaced wholesale on each successful poll and treated as an immutable
// snapshot by everything downstream.
type Poller struct {
	source   Querier
	period   time.Duration
	history  float64
	nextPoll time.Time
	polling  bool
	rows     []model.ConnRecord
}

// NewPoller creates a scheduler polling source every period, fading
// non-active edges over history seconds.
func NewPoller(source Querier, period time.Duration, history float64) *Poller {
	return &Poller{
		source:  source,
		period:  period,
		history: history,
	}
}

// Tick runs one scheduler step at the given time. It reports whether the
// cached rows were replaced, i.e. whether a redraw is warranted. A failed
// query keeps the previous rows and does not advance the schedule, so the
// next tick retries immediately; queries hit a local file, so no backoff
// is applied.
func (p *Poller) Tick(now time.Time) bool {
	if p.polling || !p.source.Available() || now.Before(p.nextPoll) {
		return false
	}

	p.polling = true
	defer func() { p.polling = false }()

	rows, err := p.source.QueryLatest()
	if err != nil {
		log.Printf("engine: poll failed: %v", err)
		return false
	}
	p.rows = rows
	p.nextPoll = now.Add(p.period)
	return true
}

// Rows returns the current result-set snapshot. Callers must not mutate it.
func (p *Poller) Rows() []model.ConnRecord {
	return p.rows
}

// SetPeriod changes the poll period; it takes effect on the next tick.
func (p *Poller) SetPeriod(d time.Duration) {
	p.period = d
}

// Period returns the configured poll period.
func (p *Poller) Period() time.Duration {
	return p.period
}

// SetHistory changes the fade window, in seconds, effective immediately.
func (p *Poller) SetHistory(h float64) {
	p.history = h
}

// History returns the fade window in seconds.
func (p *Poller) History() float64 {
	return p.history
}
