package lifecycle_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/muhammadchandra19/tick-extractor/internal/domain/extraction"
	extractionMock "github.com/muhammadchandra19/tick-extractor/internal/domain/extraction/mock"
	"github.com/muhammadchandra19/tick-extractor/internal/lifecycle"
	lifecycleMock "github.com/muhammadchandra19/tick-extractor/internal/lifecycle/mock"
	"github.com/muhammadchandra19/tick-extractor/internal/routing"
	pkgerrors "github.com/muhammadchandra19/tick-extractor/pkg/errors"
	"github.com/muhammadchandra19/tick-extractor/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/multierr"
)

func testLogger(t *testing.T) logger.Interface {
	t.Helper()
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)
	return log
}

func testTable(t *testing.T) *routing.Table {
	t.Helper()
	table, err := routing.NewTable(map[string]map[string]int{
		"metaquotes": {
			"general": 2000,
			"EURUSD":  2001,
		},
	})
	require.NoError(t, err)
	return table
}

func TestManager_StopAllSessions(t *testing.T) {
	testCases := []struct {
		name     string
		mockFn   func(resolver *extractionMock.MockHandleResolver, ctrl *gomock.Controller)
		assertFn func(t *testing.T, err error)
	}{
		{
			name: "every routed worker asked to stop, control included",
			mockFn: func(resolver *extractionMock.MockHandleResolver, ctrl *gomock.Controller) {
				handle := extractionMock.NewMockDownloader(ctrl)
				handle.EXPECT().Terminate(gomock.Any()).Return(nil).Times(2)
				resolver.EXPECT().ResolveHandle("metaquotes", "EURUSD").Return(handle, nil)
				resolver.EXPECT().ResolveHandle("metaquotes", "general").Return(handle, nil)
			},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "one refusal does not stop the walk",
			mockFn: func(resolver *extractionMock.MockHandleResolver, ctrl *gomock.Controller) {
				healthy := extractionMock.NewMockDownloader(ctrl)
				healthy.EXPECT().Terminate(gomock.Any()).Return(nil)

				stuck := extractionMock.NewMockDownloader(ctrl)
				stuck.EXPECT().Terminate(gomock.Any()).Return(pkgerrors.NewErrorDetails(
					"worker refused shutdown",
					string(pkgerrors.ProcessLifecycleError),
					"shutdown",
				))

				resolver.EXPECT().ResolveHandle("metaquotes", "EURUSD").Return(stuck, nil)
				resolver.EXPECT().ResolveHandle("metaquotes", "general").Return(healthy, nil)
			},
			assertFn: func(t *testing.T, err error) {
				require.Error(t, err)
				assert.Len(t, multierr.Errors(err), 1)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			resolver := extractionMock.NewMockHandleResolver(ctrl)
			tc.mockFn(resolver, ctrl)

			m := lifecycle.NewManager(
				testTable(t),
				resolver,
				lifecycleMock.NewMockProcessGateway(ctrl),
				lifecycle.NewMemoryRegistry(),
				lifecycle.Config{},
				testLogger(t),
			)

			tc.assertFn(t, m.StopAllSessions(context.Background()))
		})
	}
}

func TestManager_Teardown(t *testing.T) {
	key := extraction.Key{Broker: "metaquotes", Symbol: "EURUSD"}
	config := lifecycle.Config{PlatformBinary: "terminal64.exe", WorkerBinary: "workerd"}

	t.Run("graceful stop, platform sweep, registry walk, worker sweep", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		handle := extractionMock.NewMockDownloader(ctrl)
		handle.EXPECT().Terminate(gomock.Any()).Return(nil).Times(2)
		resolver := extractionMock.NewMockHandleResolver(ctrl)
		resolver.EXPECT().ResolveHandle(gomock.Any(), gomock.Any()).Return(handle, nil).Times(2)

		registry := lifecycle.NewMemoryRegistry()
		require.NoError(t, registry.Record(context.Background(), key, 4242))

		gateway := lifecycleMock.NewMockProcessGateway(ctrl)
		gomock.InOrder(
			gateway.EXPECT().FindByName(gomock.Any(), "terminal64.exe").Return([]lifecycle.ProcessInfo{
				{PID: 100, Name: "terminal64.exe"},
			}, nil),
			gateway.EXPECT().Terminate(gomock.Any(), int32(100)).Return(nil),
			gateway.EXPECT().Terminate(gomock.Any(), int32(4242)).Return(nil),
			gateway.EXPECT().FindByName(gomock.Any(), "workerd").Return(nil, nil),
		)

		m := lifecycle.NewManager(testTable(t), resolver, gateway, registry, config, testLogger(t))
		require.NoError(t, m.Teardown(context.Background()))

		remaining, err := registry.All(context.Background())
		require.NoError(t, err)
		assert.Empty(t, remaining, "terminated workers leave the registry")
	})

	t.Run("no worker pid is signalled before the platform is down", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// graceful stop fails for every session, so teardown cannot assume
		// the platform sessions are closed when the forceful phase starts
		handle := extractionMock.NewMockDownloader(ctrl)
		handle.EXPECT().Terminate(gomock.Any()).Return(pkgerrors.NewErrorDetails(
			"worker refused shutdown",
			string(pkgerrors.ProcessLifecycleError),
			"shutdown",
		)).Times(2)
		resolver := extractionMock.NewMockHandleResolver(ctrl)
		resolver.EXPECT().ResolveHandle(gomock.Any(), gomock.Any()).Return(handle, nil).Times(2)

		registry := lifecycle.NewMemoryRegistry()
		require.NoError(t, registry.Record(context.Background(), key, 4242))

		gateway := &recordingGateway{byName: map[string][]lifecycle.ProcessInfo{
			"terminal64.exe": {{PID: 100, Name: "terminal64.exe"}},
		}}

		m := lifecycle.NewManager(testTable(t), resolver, gateway, registry, config, testLogger(t))
		err := m.Teardown(context.Background())
		require.Error(t, err, "graceful failures still surface")

		require.Equal(t, []string{
			"find:terminal64.exe",
			"kill:100",
			"kill:4242",
			"find:workerd",
		}, gateway.actions, "platform processes go down before any worker pid")
	})

	t.Run("nothing running is a clean teardown", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		handle := extractionMock.NewMockDownloader(ctrl)
		handle.EXPECT().Terminate(gomock.Any()).Return(nil).Times(2)
		resolver := extractionMock.NewMockHandleResolver(ctrl)
		resolver.EXPECT().ResolveHandle(gomock.Any(), gomock.Any()).Return(handle, nil).Times(2)

		gateway := lifecycleMock.NewMockProcessGateway(ctrl)
		gateway.EXPECT().FindByName(gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)

		m := lifecycle.NewManager(testTable(t), resolver, gateway, lifecycle.NewMemoryRegistry(), config, testLogger(t))
		assert.NoError(t, m.Teardown(context.Background()))
	})

	t.Run("signal failures aggregate instead of short-circuiting", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		handle := extractionMock.NewMockDownloader(ctrl)
		handle.EXPECT().Terminate(gomock.Any()).Return(nil).Times(2)
		resolver := extractionMock.NewMockHandleResolver(ctrl)
		resolver.EXPECT().ResolveHandle(gomock.Any(), gomock.Any()).Return(handle, nil).Times(2)

		registry := lifecycle.NewMemoryRegistry()
		require.NoError(t, registry.Record(context.Background(), key, 4242))

		signalErr := pkgerrors.NewErrorDetails(
			"operation not permitted",
			string(pkgerrors.ProcessLifecycleError),
			"pid",
		)

		gateway := lifecycleMock.NewMockProcessGateway(ctrl)
		gateway.EXPECT().Terminate(gomock.Any(), int32(4242)).Return(signalErr)
		gateway.EXPECT().FindByName(gomock.Any(), "terminal64.exe").Return([]lifecycle.ProcessInfo{
			{PID: 100, Name: "terminal64.exe"},
			{PID: 101, Name: "terminal64.exe"},
		}, nil)
		gateway.EXPECT().Terminate(gomock.Any(), int32(100)).Return(signalErr)
		gateway.EXPECT().Terminate(gomock.Any(), int32(101)).Return(nil)
		gateway.EXPECT().FindByName(gomock.Any(), "workerd").Return(nil, nil)

		m := lifecycle.NewManager(testTable(t), resolver, gateway, registry, config, testLogger(t))
		err := m.Teardown(context.Background())
		require.Error(t, err)
		assert.Len(t, multierr.Errors(err), 2)

		remaining, lookupErr := registry.All(context.Background())
		require.NoError(t, lookupErr)
		assert.Contains(t, remaining, key, "unsignalled workers stay registered")
	})
}

// recordingGateway captures every forceful action in call order.
type recordingGateway struct {
	byName  map[string][]lifecycle.ProcessInfo
	actions []string
}

func (g *recordingGateway) FindByName(ctx context.Context, pattern string) ([]lifecycle.ProcessInfo, error) {
	g.actions = append(g.actions, "find:"+pattern)
	return g.byName[pattern], nil
}

func (g *recordingGateway) Terminate(ctx context.Context, pid int32) error {
	g.actions = append(g.actions, "kill:"+strconv.Itoa(int(pid)))
	return nil
}

func TestMemoryRegistry(t *testing.T) {
	ctx := context.Background()
	registry := lifecycle.NewMemoryRegistry()

	k1 := extraction.Key{Broker: "metaquotes", Symbol: "EURUSD"}
	k2 := extraction.Key{Broker: "metaquotes", Symbol: "XAUUSD"}

	require.NoError(t, registry.Record(ctx, k1, 10))
	require.NoError(t, registry.Record(ctx, k2, 20))
	require.NoError(t, registry.Record(ctx, k1, 11))

	all, err := registry.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[extraction.Key]int32{k1: 11, k2: 20}, all)

	require.NoError(t, registry.Remove(ctx, k1))
	all, err = registry.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[extraction.Key]int32{k2: 20}, all)
}
