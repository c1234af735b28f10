package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	testCases := []struct {
		name        string
		cfg         Log
		expectedErr error
	}{
		{
			name: "missing service name",
			cfg: Log{
				LogLevel: "info",
				AppName:  "test",
			},
			expectedErr: ErrServiceNameIsEmpty,
		},
		{
			name: "missing app name",
			cfg: Log{
				LogLevel:    "info",
				ServiceName: "test",
			},
			expectedErr: ErrAppNameIsEmpty,
		},
		{
			name: "unsupported log level",
			cfg: Log{
				LogLevel:    "chatty",
				AppName:     "test",
				ServiceName: "test",
			},
		},
		{
			name: "console logger enabled",
			cfg: Log{
				LogLevel:    "info",
				AppName:     "test",
				ServiceName: "test",
				Console: Console{
					Enabled:          true,
					UseConsoleWriter: true,
				},
			},
		},
		{
			name: "trace level enables stack marshaling",
			cfg: Log{
				LogLevel:    "trace",
				AppName:     "test",
				ServiceName: "test",
				Console: Console{
					Enabled: true,
				},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Init(tc.cfg)

			switch {
			case tc.expectedErr != nil:
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedErr)
			case tc.name == "unsupported log level":
				require.Error(t, err)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestNewConsoleWriter(t *testing.T) {
	w := NewConsoleWriter(Log{Console: Console{Enabled: true}})
	assert.NotNil(t, w)

	w = NewConsoleWriter(Log{Console: Console{Enabled: true, UseConsoleWriter: true}})
	assert.NotNil(t, w)
}

func TestNewPrometheusHook(t *testing.T) {
	// repeated calls must reuse the singleton counter without re-registering
	h := NewPrometheusHook("test")
	assert.NotNil(t, h)

	h = NewPrometheusHook("test")
	assert.NotNil(t, h)
}
