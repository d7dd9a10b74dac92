package extraction

import (
	"fmt"
	"time"
)

// DataMode selects which platform account a worker session runs against.
type DataMode string

const (
	// ModeDemo runs against a demo account.
	ModeDemo DataMode = "demo"
	// ModeLive runs against a live account.
	ModeLive DataMode = "live"
)

// Tick represents a single tick data point as returned by a worker process.
type Tick struct {
	// Timestamp has millisecond precision.
	Timestamp time.Time `json:"timestamp"`
	Bid       float64   `json:"bid"`
	Ask       float64   `json:"ask"`
	Last      float64   `json:"last"`
	Volume    float64   `json:"volume"`
}

// Key identifies one (broker, symbol) pair. Exactly one worker process owns it.
type Key struct {
	Broker string
	Symbol string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Broker, k.Symbol)
}

// Request describes one tick download against one worker.
//
// WindowEnd is exclusive: a tick timestamped exactly at WindowEnd is dropped
// by the worker before returning, so adjacent windows tile without
// double-counting.
type Request struct {
	Broker      string
	Symbol      string
	WindowStart time.Time
	WindowEnd   time.Time
	Mode        DataMode

	// CheckConnection verifies and, if needed, reinitializes the worker
	// session before downloading. Disabling it is the low-latency path used
	// at inference time; how stale an unverified session may be is the
	// caller's policy, not enforced here.
	CheckConnection bool
}

// Key returns the result-map key for the request.
func (r Request) Key() Key {
	return Key{Broker: r.Broker, Symbol: r.Symbol}
}

// Validate checks the request window.
func (r Request) Validate() error {
	if r.Broker == "" || r.Symbol == "" {
		return fmt.Errorf("broker and symbol are required")
	}
	if !r.WindowEnd.After(r.WindowStart) {
		return fmt.Errorf("window end %s must be after window start %s", r.WindowEnd, r.WindowStart)
	}
	return nil
}

// Result carries either the downloaded ticks or the failure for one request.
// Ownership transfers to the caller once collected.
type Result struct {
	Broker string
	Symbol string
	Ticks  []Tick
	Err    error
}

// Failed reports whether the request produced an error instead of ticks.
func (r Result) Failed() bool {
	return r.Err != nil
}
