package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/muhammadchandra19/tick-extractor/internal/domain/extraction"
	extractionMock "github.com/muhammadchandra19/tick-extractor/internal/domain/extraction/mock"
	"github.com/muhammadchandra19/tick-extractor/internal/routing"
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

// stubHandle is an instrumented Downloader that records how many downloads
// overlap in time.
type stubHandle struct {
	delay    time.Duration
	err      error
	ticks    []extraction.Tick
	inFlight *int32
	maxSeen  *int32
}

func (s *stubHandle) CheckConnection(ctx context.Context) bool   { return true }
func (s *stubHandle) EnsureConnection(ctx context.Context) error { return nil }
func (s *stubHandle) Terminate(ctx context.Context) error        { return nil }

func (s *stubHandle) DownloadTicks(ctx context.Context, req extraction.Request) ([]extraction.Tick, error) {
	if s.inFlight != nil {
		cur := atomic.AddInt32(s.inFlight, 1)
		for {
			seen := atomic.LoadInt32(s.maxSeen)
			if cur <= seen || atomic.CompareAndSwapInt32(s.maxSeen, seen, cur) {
				break
			}
		}
		defer atomic.AddInt32(s.inFlight, -1)
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.ticks, nil
}

// stubResolver resolves every pair to the same instrumented handle, except
// pairs listed in failures which resolve to an error or failing handle.
type stubResolver struct {
	mu       sync.Mutex
	handle   func(broker, symbol string) (extraction.Downloader, error)
	resolved []extraction.Key
}

func (s *stubResolver) ResolveHandle(broker, symbol string) (extraction.Downloader, error) {
	s.mu.Lock()
	s.resolved = append(s.resolved, extraction.Key{Broker: broker, Symbol: symbol})
	s.mu.Unlock()
	return s.handle(broker, symbol)
}

func makeRequests(n int) []extraction.Request {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	requests := make([]extraction.Request, 0, n)
	for i := 0; i < n; i++ {
		requests = append(requests, extraction.Request{
			Broker:      "metaquotes",
			Symbol:      fmt.Sprintf("SYM%02d", i),
			WindowStart: start,
			WindowEnd:   start.Add(time.Minute),
			Mode:        extraction.ModeDemo,
		})
	}
	return requests
}

func TestDispatcher_Dispatch(t *testing.T) {
	ticks := []extraction.Tick{{Bid: 1.1, Ask: 1.2, Volume: 1}}

	testCases := []struct {
		name           string
		requests       []extraction.Request
		maxConcurrency int
		handle         func(broker, symbol string) (extraction.Downloader, error)
		assertFn       func(t *testing.T, results map[extraction.Key]extraction.Result)
	}{
		{
			name:           "empty batch",
			requests:       nil,
			maxConcurrency: 4,
			handle: func(broker, symbol string) (extraction.Downloader, error) {
				t.Fatal("no resolution expected")
				return nil, nil
			},
			assertFn: func(t *testing.T, results map[extraction.Key]extraction.Result) {
				assert.Empty(t, results)
			},
		},
		{
			name:           "one result per distinct key",
			requests:       makeRequests(5),
			maxConcurrency: 2,
			handle: func(broker, symbol string) (extraction.Downloader, error) {
				return &stubHandle{ticks: ticks}, nil
			},
			assertFn: func(t *testing.T, results map[extraction.Key]extraction.Result) {
				assert.Len(t, results, 5)
				for key, res := range results {
					assert.False(t, res.Failed(), "unexpected failure for %s", key)
					assert.Len(t, res.Ticks, 1)
				}
			},
		},
		{
			name:           "one bad symbol never blocks the rest",
			requests:       makeRequests(6),
			maxConcurrency: 3,
			handle: func(broker, symbol string) (extraction.Downloader, error) {
				if symbol == "SYM03" {
					return nil, pkgerrors.NewErrorDetails(
						"symbol SYM03 is not routed",
						string(pkgerrors.UnknownRouteError),
						"symbol",
					)
				}
				return &stubHandle{ticks: ticks}, nil
			},
			assertFn: func(t *testing.T, results map[extraction.Key]extraction.Result) {
				assert.Len(t, results, 6)

				bad := results[extraction.Key{Broker: "metaquotes", Symbol: "SYM03"}]
				assert.True(t, bad.Failed())
				assert.True(t, pkgerrors.ErrorCodeEquals(bad.Err, pkgerrors.UnknownRouteError))

				for key, res := range results {
					if key.Symbol == "SYM03" {
						continue
					}
					assert.False(t, res.Failed(), "sibling %s must succeed", key)
				}
			},
		},
		{
			name:           "download failure captured in its slot",
			requests:       makeRequests(3),
			maxConcurrency: 3,
			handle: func(broker, symbol string) (extraction.Downloader, error) {
				if symbol == "SYM01" {
					return &stubHandle{err: pkgerrors.NewErrorDetails(
						"worker gone",
						string(pkgerrors.ExtractionFailedError),
						"ticks",
					)}, nil
				}
				return &stubHandle{ticks: ticks}, nil
			},
			assertFn: func(t *testing.T, results map[extraction.Key]extraction.Result) {
				assert.Len(t, results, 3)
				assert.True(t, results[extraction.Key{Broker: "metaquotes", Symbol: "SYM01"}].Failed())
				assert.False(t, results[extraction.Key{Broker: "metaquotes", Symbol: "SYM00"}].Failed())
				assert.False(t, results[extraction.Key{Broker: "metaquotes", Symbol: "SYM02"}].Failed())
			},
		},
		{
			name:           "panicking handle becomes a failure result",
			requests:       makeRequests(2),
			maxConcurrency: 2,
			handle: func(broker, symbol string) (extraction.Downloader, error) {
				if symbol == "SYM00" {
					return panicHandle{}, nil
				}
				return &stubHandle{ticks: ticks}, nil
			},
			assertFn: func(t *testing.T, results map[extraction.Key]extraction.Result) {
				assert.Len(t, results, 2)
				assert.True(t, results[extraction.Key{Broker: "metaquotes", Symbol: "SYM00"}].Failed())
				assert.False(t, results[extraction.Key{Broker: "metaquotes", Symbol: "SYM01"}].Failed())
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resolver := &stubResolver{handle: tc.handle}
			d := NewDispatcher(resolver, testLogger(t))

			results := d.Dispatch(context.Background(), tc.requests, tc.maxConcurrency)
			tc.assertFn(t, results)
		})
	}
}

type panicHandle struct{}

func (panicHandle) CheckConnection(ctx context.Context) bool   { return true }
func (panicHandle) EnsureConnection(ctx context.Context) error { return nil }
func (panicHandle) Terminate(ctx context.Context) error        { return nil }
func (panicHandle) DownloadTicks(ctx context.Context, req extraction.Request) ([]extraction.Tick, error) {
	panic("boom")
}

func TestDispatcher_ConcurrencyBound(t *testing.T) {
	const batchSize = 12
	const bound = 3

	var inFlight, maxSeen int32
	resolver := &stubResolver{
		handle: func(broker, symbol string) (extraction.Downloader, error) {
			return &stubHandle{
				delay:    20 * time.Millisecond,
				inFlight: &inFlight,
				maxSeen:  &maxSeen,
			}, nil
		},
	}

	d := NewDispatcher(resolver, testLogger(t))
	results := d.Dispatch(context.Background(), makeRequests(batchSize), bound)

	assert.Len(t, results, batchSize)
	assert.LessOrEqual(t, atomic.LoadInt32(&maxSeen), int32(bound),
		"never more than maxConcurrency requests in flight")
	assert.Greater(t, atomic.LoadInt32(&maxSeen), int32(1),
		"requests do run in parallel")
}

func TestDispatcher_DuplicateKeysLastWriterWins(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	requests := []extraction.Request{
		{Broker: "metaquotes", Symbol: "EURUSD", WindowStart: start, WindowEnd: start.Add(time.Minute)},
		{Broker: "metaquotes", Symbol: "EURUSD", WindowStart: start, WindowEnd: start.Add(2 * time.Minute)},
	}

	handle := extractionMock.NewMockDownloader(ctrl)
	handle.EXPECT().DownloadTicks(gomock.Any(), gomock.Any()).Return([]extraction.Tick{{Volume: 1}}, nil).Times(2)

	resolver := extractionMock.NewMockHandleResolver(ctrl)
	resolver.EXPECT().ResolveHandle("metaquotes", "EURUSD").Return(handle, nil).Times(2)

	d := NewDispatcher(resolver, testLogger(t))
	results := d.Dispatch(context.Background(), requests, 1)

	// both requests ran, one slot survives
	assert.Len(t, results, 1)
	assert.False(t, results[extraction.Key{Broker: "metaquotes", Symbol: "EURUSD"}].Failed())
}

func TestBuildBatch(t *testing.T) {
	table, err := routing.NewTable(map[string]map[string]int{
		"metaquotes": {
			"general": 2000,
			"EURUSD":  2001,
			"XAUUSD":  2003,
		},
		"metaquotes2": {
			"general": 2100,
			"AUDJPY":  2101,
		},
	})
	require.NoError(t, err)

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	t.Run("all brokers, control excluded", func(t *testing.T) {
		requests, err := BuildBatch(table, nil, start, end, extraction.ModeDemo, true)
		require.NoError(t, err)
		assert.Len(t, requests, 3)
		for _, req := range requests {
			assert.NotEqual(t, routing.ControlSymbol, req.Symbol)
			assert.Equal(t, start, req.WindowStart)
			assert.Equal(t, end, req.WindowEnd)
			assert.True(t, req.CheckConnection)
		}
	})

	t.Run("single broker", func(t *testing.T) {
		requests, err := BuildBatch(table, []string{"metaquotes2"}, start, end, extraction.ModeLive, false)
		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, "AUDJPY", requests[0].Symbol)
		assert.Equal(t, extraction.ModeLive, requests[0].Mode)
		assert.False(t, requests[0].CheckConnection)
	})

	t.Run("unknown broker", func(t *testing.T) {
		_, err := BuildBatch(table, []string{"nosuch"}, start, end, extraction.ModeDemo, false)
		assert.Error(t, err)
	})
}
