package lifecycle_test

import (
	"context"
	"testing"

	"github.com/muhammadchandra19/tick-extractor/internal/lifecycle"
	lifecycleMock "github.com/muhammadchandra19/tick-extractor/internal/lifecycle/mock"
	pkgerrors "github.com/muhammadchandra19/tick-extractor/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/multierr"
)

func TestHostGateway_Terminate_GonePID(t *testing.T) {
	gateway := lifecycle.NewHostGateway()

	// far above any plausible pid_max, the process cannot exist
	err := gateway.Terminate(context.Background(), 1<<30)
	assert.NoError(t, err, "signalling a vanished process is not a failure")
}

func TestHostGateway_FindByName_NoMatch(t *testing.T) {
	gateway := lifecycle.NewHostGateway()

	procs, err := gateway.FindByName(context.Background(), "no-process-is-named-this-4d1f")
	require.NoError(t, err)
	assert.Empty(t, procs, "zero matches is an empty result, not an error")
}

func TestKillByName(t *testing.T) {
	signalErr := pkgerrors.NewErrorDetails(
		"operation not permitted",
		string(pkgerrors.ProcessLifecycleError),
		"pid",
	)

	testCases := []struct {
		name     string
		mockFn   func(gateway *lifecycleMock.MockProcessGateway)
		assertFn func(t *testing.T, err error)
	}{
		{
			name: "every match signalled",
			mockFn: func(gateway *lifecycleMock.MockProcessGateway) {
				gateway.EXPECT().FindByName(gomock.Any(), "terminal64.exe").Return([]lifecycle.ProcessInfo{
					{PID: 100, Name: "terminal64.exe"},
					{PID: 101, Name: "terminal64.exe"},
				}, nil)
				gateway.EXPECT().Terminate(gomock.Any(), int32(100)).Return(nil)
				gateway.EXPECT().Terminate(gomock.Any(), int32(101)).Return(nil)
			},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "signal failures aggregate across the whole sweep",
			mockFn: func(gateway *lifecycleMock.MockProcessGateway) {
				gateway.EXPECT().FindByName(gomock.Any(), "terminal64.exe").Return([]lifecycle.ProcessInfo{
					{PID: 100, Name: "terminal64.exe"},
					{PID: 101, Name: "terminal64.exe"},
					{PID: 102, Name: "terminal64.exe"},
				}, nil)
				gateway.EXPECT().Terminate(gomock.Any(), int32(100)).Return(signalErr)
				gateway.EXPECT().Terminate(gomock.Any(), int32(101)).Return(nil)
				gateway.EXPECT().Terminate(gomock.Any(), int32(102)).Return(signalErr)
			},
			assertFn: func(t *testing.T, err error) {
				require.Error(t, err)
				assert.Len(t, multierr.Errors(err), 2)
			},
		},
		{
			name: "nothing matching is a clean sweep",
			mockFn: func(gateway *lifecycleMock.MockProcessGateway) {
				gateway.EXPECT().FindByName(gomock.Any(), "terminal64.exe").Return(nil, nil)
			},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			gateway := lifecycleMock.NewMockProcessGateway(ctrl)
			tc.mockFn(gateway)

			tc.assertFn(t, lifecycle.KillByName(context.Background(), gateway, "terminal64.exe"))
		})
	}
}
