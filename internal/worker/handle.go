package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"

	"github.com/muhammadchandra19/tick-extractor/internal/domain/extraction"
	pkgerrors "github.com/muhammadchandra19/tick-extractor/pkg/errors"
	"github.com/muhammadchandra19/tick-extractor/pkg/logger"
)

const defaultRequestTimeout = 120 * time.Second

// Handle addresses one worker process over HTTP on localhost. It is stateless
// beyond its routing entry: no connection is cached, every operation goes to
// whatever process is live at the port.
type Handle struct {
	broker string
	symbol string
	port   int

	baseURL string
	client  *http.Client
	creds   *CredentialsStore
	mode    extraction.DataMode
	logger  logger.Interface
}

var _ extraction.Downloader = (*Handle)(nil)

// Option configures a Handle.
type Option func(*Handle)

// WithRequestTimeout bounds every worker call. A stalled worker surfaces as a
// typed timeout error instead of hanging its dispatcher unit.
func WithRequestTimeout(d time.Duration) Option {
	return func(h *Handle) {
		h.client.Timeout = d
	}
}

// WithBaseURL overrides the worker address, used by tests.
func WithBaseURL(u string) Option {
	return func(h *Handle) {
		h.baseURL = u
	}
}

// NewHandle creates the capability object for one routing entry.
func NewHandle(broker, symbol string, port int, mode extraction.DataMode, creds *CredentialsStore, log logger.Interface, opts ...Option) *Handle {
	h := &Handle{
		broker:  broker,
		symbol:  symbol,
		port:    port,
		baseURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		client:  &http.Client{Timeout: defaultRequestTimeout},
		creds:   creds,
		mode:    mode,
		logger:  log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Broker returns the handle's broker id.
func (h *Handle) Broker() string { return h.broker }

// Symbol returns the handle's symbol id.
func (h *Handle) Symbol() string { return h.symbol }

// Port returns the handle's worker port.
func (h *Handle) Port() int { return h.port }

// CheckConnection pings the worker's healthcheck endpoint. It never repairs
// the session itself; repair is EnsureConnection's job.
func (h *Handle) CheckConnection(ctx context.Context) bool {
	var status StatusResponse
	if err := h.getJSON(ctx, "/healthcheck", nil, &status); err != nil {
		h.logger.DebugContext(ctx, "worker healthcheck failed",
			logger.NewField("broker", h.broker),
			logger.NewField("symbol", h.symbol),
			logger.NewField("port", h.port),
			logger.NewField("error", err.Error()),
		)
		return false
	}
	return status.Status == StatusOK
}

// EnsureConnection reinitializes the worker session once if the healthcheck
// fails, and propagates the failure if reinitialization fails too.
func (h *Handle) EnsureConnection(ctx context.Context) error {
	if h.CheckConnection(ctx) {
		return nil
	}

	creds, err := h.creds.Get(h.broker, h.mode)
	if err != nil {
		return pkgerrors.TracerFromError(err)
	}

	var status StatusResponse
	err = h.postJSON(ctx, "/init", InitRequest{
		Broker:      h.broker,
		Mode:        h.mode,
		Credentials: creds,
	}, &status)
	if err != nil {
		return h.connectionError(fmt.Sprintf("failed to reinitialize session: %v", err))
	}
	if status.Status != StatusOK {
		return h.connectionError("worker rejected session init")
	}
	return nil
}

// DownloadTicks fetches ticks for the request window. The worker returns them
// chronological with the window end already excluded.
func (h *Handle) DownloadTicks(ctx context.Context, req extraction.Request) ([]extraction.Tick, error) {
	if err := req.Validate(); err != nil {
		return nil, pkgerrors.NewErrorDetailsWithObject(
			err.Error(),
			string(pkgerrors.ExtractionFailedError),
			"window",
			req,
		)
	}

	if req.CheckConnection {
		if err := h.EnsureConnection(ctx); err != nil {
			return nil, err
		}
	}

	params := url.Values{}
	params.Set("symbol", req.Symbol)
	params.Set("from", req.WindowStart.UTC().Format(time.RFC3339Nano))
	params.Set("to", req.WindowEnd.UTC().Format(time.RFC3339Nano))
	params.Set("mode", string(req.Mode))

	var resp TicksResponse
	if err := h.getJSON(ctx, "/ticks", params, &resp); err != nil {
		code := pkgerrors.ExtractionFailedError
		if isTimeout(err) {
			code = pkgerrors.ExtractionTimeoutError
		}
		return nil, pkgerrors.NewErrorDetailsWithObject(
			fmt.Sprintf("tick download failed for %s/%s: %v", h.broker, h.symbol, err),
			string(code),
			"ticks",
			req,
		)
	}
	return resp.Ticks, nil
}

// Terminate asks the worker to shut down its platform session. A worker that
// is already gone (connection refused) is treated as success.
func (h *Handle) Terminate(ctx context.Context) error {
	var status StatusResponse
	err := h.postJSON(ctx, "/shutdown", struct{}{}, &status)
	if err == nil {
		return nil
	}
	if isConnectionRefused(err) {
		return nil
	}
	return pkgerrors.NewErrorDetails(
		fmt.Sprintf("failed to terminate session %s/%s: %v", h.broker, h.symbol, err),
		string(pkgerrors.ProcessLifecycleError),
		"terminate",
	)
}

func (h *Handle) connectionError(message string) error {
	return pkgerrors.NewErrorDetails(
		fmt.Sprintf("%s/%s at port %d: %s", h.broker, h.symbol, h.port, message),
		string(pkgerrors.ConnectionUnavailableError),
		"connection",
	)
}

func (h *Handle) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := h.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return h.do(req, out)
}

func (h *Handle) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return h.do(req, out)
}

func (h *Handle) do(req *http.Request, out any) error {
	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var workerErr ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&workerErr); decodeErr == nil && workerErr.Error != "" {
			return fmt.Errorf("worker returned status %d: %s", resp.StatusCode, workerErr.Error)
		}
		return fmt.Errorf("worker returned status %d", resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}
