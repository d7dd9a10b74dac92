package dispatcher

import (
	"time"

	"github.com/muhammadchandra19/tick-extractor/internal/domain/extraction"
	"github.com/muhammadchandra19/tick-extractor/internal/routing"
)

// BuildBatch assembles one extraction request per data route in the table,
// control ports excluded. An empty brokers list means every broker.
func BuildBatch(table *routing.Table, brokers []string, windowStart, windowEnd time.Time, mode extraction.DataMode, checkConnection bool) ([]extraction.Request, error) {
	if len(brokers) == 0 {
		brokers = table.Brokers()
	}

	var requests []extraction.Request
	for _, broker := range brokers {
		routes, err := table.SymbolRoutes(broker)
		if err != nil {
			return nil, err
		}
		for _, route := range routes {
			requests = append(requests, extraction.Request{
				Broker:          broker,
				Symbol:          route.Symbol,
				WindowStart:     windowStart,
				WindowEnd:       windowEnd,
				Mode:            mode,
				CheckConnection: checkConnection,
			})
		}
	}
	return requests, nil
}
