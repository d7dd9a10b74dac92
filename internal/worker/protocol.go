package worker

import "github.com/muhammadchandra19/tick-extractor/internal/domain/extraction"

// Wire shapes of the worker daemon's HTTP/JSON API. One worker process serves
// exactly one (broker, symbol) pair on its routed port.

const (
	// StatusOK is the worker's healthy status string.
	StatusOK = "ok"
	// StatusFail is the worker's unhealthy status string.
	StatusFail = "fail"
)

// StatusResponse is returned by /healthcheck, /init and /shutdown.
type StatusResponse struct {
	Status string `json:"status"`
}

// InitRequest asks the worker to (re)initialize its platform session.
type InitRequest struct {
	Broker      string              `json:"broker"`
	Mode        extraction.DataMode `json:"mode"`
	Credentials Credentials         `json:"credentials"`
}

// TicksResponse is returned by /ticks.
type TicksResponse struct {
	Ticks []extraction.Tick `json:"ticks"`
}

// ErrorResponse carries a worker-side failure description.
type ErrorResponse struct {
	Error string `json:"error"`
}
