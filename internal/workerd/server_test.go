package workerd_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/muhammadchandra19/tick-extractor/internal/domain/extraction"
	"github.com/muhammadchandra19/tick-extractor/internal/worker"
	"github.com/muhammadchandra19/tick-extractor/internal/workerd"
	workerdMock "github.com/muhammadchandra19/tick-extractor/internal/workerd/mock"
	pkgerrors "github.com/muhammadchandra19/tick-extractor/pkg/errors"
	"github.com/muhammadchandra19/tick-extractor/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testLogger(t *testing.T) logger.Interface {
	t.Helper()
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)
	return log
}

func ticksURL(symbol string, from, to time.Time) string {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("from", from.UTC().Format(time.RFC3339Nano))
	params.Set("to", to.UTC().Format(time.RFC3339Nano))
	return "/ticks?" + params.Encode()
}

func TestServer_Healthcheck(t *testing.T) {
	testCases := []struct {
		name       string
		healthy    bool
		wantStatus string
	}{
		{name: "healthy session", healthy: true, wantStatus: worker.StatusOK},
		{name: "dead session", healthy: false, wantStatus: worker.StatusFail},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			connector := workerdMock.NewMockConnector(ctrl)
			connector.EXPECT().HealthCheck(gomock.Any()).Return(tc.healthy)

			s := workerd.NewServer("metaquotes", "EURUSD", 2001, connector, testLogger(t))

			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

			require.Equal(t, http.StatusOK, rec.Code)
			var body worker.StatusResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.wantStatus, body.Status)
		})
	}
}

func TestServer_Ticks_WindowEndExclusive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	from := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	to := from.Add(time.Minute)

	// the connector leaks ticks at and past the boundary, the server must
	// drop them before answering
	connector := workerdMock.NewMockConnector(ctrl)
	connector.EXPECT().TickData(gomock.Any(), "EURUSD", from, to).Return([]extraction.Tick{
		{Timestamp: from, Bid: 1.0},
		{Timestamp: to.Add(-time.Second), Bid: 1.1},
		{Timestamp: to, Bid: 1.2},
		{Timestamp: to.Add(time.Second), Bid: 1.3},
	}, nil)

	s := workerd.NewServer("metaquotes", "EURUSD", 2001, connector, testLogger(t))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ticksURL("EURUSD", from, to), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body worker.TicksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Ticks, 2)
	for _, tick := range body.Ticks {
		assert.True(t, tick.Timestamp.Before(to), "tick %s at or past window end", tick.Timestamp)
	}
}

func TestServer_Ticks_Validation(t *testing.T) {
	from := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	to := from.Add(time.Minute)

	testCases := []struct {
		name   string
		target string
	}{
		{name: "wrong symbol", target: ticksURL("XAUUSD", from, to)},
		{name: "missing from", target: "/ticks?symbol=EURUSD&to=" + url.QueryEscape(to.Format(time.RFC3339Nano))},
		{name: "garbage to", target: "/ticks?symbol=EURUSD&from=" + url.QueryEscape(from.Format(time.RFC3339Nano)) + "&to=yesterday"},
		{name: "empty window", target: ticksURL("EURUSD", from, from)},
		{name: "inverted window", target: ticksURL("EURUSD", to, from)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// validation failures never reach the connector
			connector := workerdMock.NewMockConnector(ctrl)
			s := workerd.NewServer("metaquotes", "EURUSD", 2001, connector, testLogger(t))

			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var body worker.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestServer_Ticks_ConnectorFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	from := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	to := from.Add(time.Minute)

	connector := workerdMock.NewMockConnector(ctrl)
	connector.EXPECT().TickData(gomock.Any(), "EURUSD", from, to).Return(nil, pkgerrors.NewErrorDetails(
		"terminal not responding",
		string(pkgerrors.ConnectionUnavailableError),
		"session",
	))

	s := workerd.NewServer("metaquotes", "EURUSD", 2001, connector, testLogger(t))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ticksURL("EURUSD", from, to), nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body worker.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "terminal not responding")
}

func TestServer_Init(t *testing.T) {
	creds := worker.Credentials{Server: "Demo-Server", Login: 123, Password: "secret"}

	testCases := []struct {
		name     string
		payload  worker.InitRequest
		mockFn   func(connector *workerdMock.MockConnector)
		wantCode int
		wantBody string
	}{
		{
			name:    "session comes up",
			payload: worker.InitRequest{Broker: "metaquotes", Mode: extraction.ModeDemo, Credentials: creds},
			mockFn: func(connector *workerdMock.MockConnector) {
				connector.EXPECT().Initialize(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCode: http.StatusOK,
			wantBody: worker.StatusOK,
		},
		{
			name:    "login rejected",
			payload: worker.InitRequest{Broker: "metaquotes", Mode: extraction.ModeDemo, Credentials: creds},
			mockFn: func(connector *workerdMock.MockConnector) {
				connector.EXPECT().Initialize(gomock.Any(), gomock.Any()).Return(pkgerrors.NewErrorDetails(
					"invalid account",
					string(pkgerrors.ConnectionUnavailableError),
					"credentials",
				))
			},
			wantCode: http.StatusOK,
			wantBody: worker.StatusFail,
		},
		{
			name:     "wrong broker",
			payload:  worker.InitRequest{Broker: "otherbroker", Mode: extraction.ModeDemo, Credentials: creds},
			mockFn:   func(connector *workerdMock.MockConnector) {},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			connector := workerdMock.NewMockConnector(ctrl)
			tc.mockFn(connector)

			s := workerd.NewServer("metaquotes", "EURUSD", 2001, connector, testLogger(t))

			raw, err := json.Marshal(tc.payload)
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/init", bytes.NewReader(raw))
			req.Header.Set("Content-Type", "application/json")
			s.Handler().ServeHTTP(rec, req)

			require.Equal(t, tc.wantCode, rec.Code)
			if tc.wantBody != "" {
				var body worker.StatusResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tc.wantBody, body.Status)
			}
		})
	}
}

func TestSimulatedConnector(t *testing.T) {
	ctx := context.Background()
	connector := workerd.NewSimulatedConnector(1.08, time.Second, 7)

	assert.False(t, connector.HealthCheck(ctx), "uninitialized session is unhealthy")

	_, err := connector.TickData(ctx, "EURUSD", time.Now(), time.Now().Add(time.Minute))
	require.Error(t, err)
	assert.True(t, pkgerrors.ErrorCodeEquals(err, pkgerrors.ConnectionUnavailableError))

	require.NoError(t, connector.Initialize(ctx, worker.InitRequest{Broker: "metaquotes"}))
	assert.True(t, connector.HealthCheck(ctx))

	from := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	to := from.Add(10 * time.Second)
	ticks, err := connector.TickData(ctx, "EURUSD", from, to)
	require.NoError(t, err)
	require.Len(t, ticks, 10)
	for _, tick := range ticks {
		assert.True(t, !tick.Timestamp.Before(from) && tick.Timestamp.Before(to))
		assert.Greater(t, tick.Ask, tick.Bid)
	}

	require.NoError(t, connector.Shutdown(ctx))
	assert.False(t, connector.HealthCheck(ctx))
}
