package tick

import (
	"time"

	"github.com/muhammadchandra19/tick-extractor/internal/domain/extraction"
)

// Record is one stored tick row, the extraction result enriched with its
// origin pair and data mode.
type Record struct {
	Timestamp time.Time
	Broker    string
	Symbol    string
	Bid       float64
	Ask       float64
	Last      float64
	Volume    float64
	Mode      string
}

// Filter represents the filter criteria for stored ticks.
type Filter struct {
	Broker string
	Symbol string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// FromExtraction converts one extraction result into storable rows.
func FromExtraction(broker, symbol string, mode extraction.DataMode, ticks []extraction.Tick) []*Record {
	records := make([]*Record, 0, len(ticks))
	for _, t := range ticks {
		records = append(records, &Record{
			Timestamp: t.Timestamp,
			Broker:    broker,
			Symbol:    symbol,
			Bid:       t.Bid,
			Ask:       t.Ask,
			Last:      t.Last,
			Volume:    t.Volume,
			Mode:      string(mode),
		})
	}
	return records
}
