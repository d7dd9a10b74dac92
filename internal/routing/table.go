package routing

import (
	"fmt"
	"sort"

	"github.com/muhammadchandra19/tick-extractor/pkg/errors"
)

// ControlSymbol is the reserved symbol key whose port carries order and
// position operations instead of tick data. It is excluded from extraction
// fan-out.
const ControlSymbol = "general"

// Route is one (symbol, port) entry under a broker.
type Route struct {
	Symbol string
	Port   int
}

// Table is the static broker/symbol to port directory addressing worker
// processes. It is built once at process start and never mutated afterwards,
// so it is safe for concurrent reads by dispatcher units.
type Table struct {
	brokers map[string]map[string]int
}

// NewTable builds a Table from a two-level {broker: {symbol: port}} mapping
// and validates its invariants: every broker carries the reserved control
// symbol, and ports are unique across the whole table.
func NewTable(brokers map[string]map[string]int) (*Table, error) {
	if len(brokers) == 0 {
		return nil, errors.NewErrorDetails(
			"routing table has no brokers",
			string(errors.RoutingConfigError),
			"brokers",
		)
	}

	seen := make(map[int]string)
	for broker, symbols := range brokers {
		if _, ok := symbols[ControlSymbol]; !ok {
			return nil, errors.NewErrorDetails(
				fmt.Sprintf("broker %s has no %q control port", broker, ControlSymbol),
				string(errors.RoutingConfigError),
				"brokers."+broker,
			)
		}
		for symbol, port := range symbols {
			if port <= 0 || port > 65535 {
				return nil, errors.NewErrorDetails(
					fmt.Sprintf("broker %s symbol %s has invalid port %d", broker, symbol, port),
					string(errors.RoutingConfigError),
					"brokers."+broker+"."+symbol,
				)
			}
			if owner, dup := seen[port]; dup {
				return nil, errors.NewErrorDetails(
					fmt.Sprintf("port %d assigned to both %s and %s/%s", port, owner, broker, symbol),
					string(errors.RoutingConfigError),
					"brokers."+broker+"."+symbol,
				)
			}
			seen[port] = broker + "/" + symbol
		}
	}

	// deep copy so the caller's map cannot mutate the table afterwards
	copied := make(map[string]map[string]int, len(brokers))
	for broker, symbols := range brokers {
		inner := make(map[string]int, len(symbols))
		for symbol, port := range symbols {
			inner[symbol] = port
		}
		copied[broker] = inner
	}

	return &Table{brokers: copied}, nil
}

// Resolve returns the worker port for a (broker, symbol) pair.
func (t *Table) Resolve(broker, symbol string) (int, error) {
	symbols, ok := t.brokers[broker]
	if !ok {
		return 0, errors.NewErrorDetails(
			fmt.Sprintf("broker %s is not present in the routing table", broker),
			string(errors.UnknownRouteError),
			"broker",
		)
	}
	port, ok := symbols[symbol]
	if !ok {
		return 0, errors.NewErrorDetails(
			fmt.Sprintf("symbol %s is not routed for broker %s", symbol, broker),
			string(errors.UnknownRouteError),
			"symbol",
		)
	}
	return port, nil
}

// SymbolRoutes returns the broker's data routes ordered by symbol, with the
// reserved control symbol excluded.
func (t *Table) SymbolRoutes(broker string) ([]Route, error) {
	symbols, ok := t.brokers[broker]
	if !ok {
		return nil, errors.NewErrorDetails(
			fmt.Sprintf("broker %s is not present in the routing table", broker),
			string(errors.UnknownRouteError),
			"broker",
		)
	}

	routes := make([]Route, 0, len(symbols)-1)
	for symbol, port := range symbols {
		if symbol == ControlSymbol {
			continue
		}
		routes = append(routes, Route{Symbol: symbol, Port: port})
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Symbol < routes[j].Symbol })
	return routes, nil
}

// Brokers returns the broker ids, sorted.
func (t *Table) Brokers() []string {
	brokers := make([]string, 0, len(t.brokers))
	for broker := range t.brokers {
		brokers = append(brokers, broker)
	}
	sort.Strings(brokers)
	return brokers
}

// AllRoutes returns every (broker, symbol, port) entry including control
// ports, ordered by broker then symbol. The lifecycle manager uses this to
// reach every live session during teardown.
func (t *Table) AllRoutes() []BrokerRoute {
	var all []BrokerRoute
	for _, broker := range t.Brokers() {
		symbols := t.brokers[broker]
		keys := make([]string, 0, len(symbols))
		for symbol := range symbols {
			keys = append(keys, symbol)
		}
		sort.Strings(keys)
		for _, symbol := range keys {
			all = append(all, BrokerRoute{Broker: broker, Symbol: symbol, Port: symbols[symbol]})
		}
	}
	return all
}

// BrokerRoute is a fully qualified routing entry.
type BrokerRoute struct {
	Broker string
	Symbol string
	Port   int
}
