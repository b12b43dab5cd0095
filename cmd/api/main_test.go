package main

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysupertc/MySuperTC-sub001/config"
	"github.com/mysupertc/MySuperTC-sub001/internal/app"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

// fakeApp implements the lifecycle methods runServer drives; the rest of
// app.AppInterface is left nil
type fakeApp struct {
	app.AppInterface

	initErr     error
	startErr    error
	shutdownErr error

	stopped         chan struct{}
	stopOnce        sync.Once
	shutdownTimeout time.Duration
	shutdownCalled  bool
}

func newFakeApp() *fakeApp {
	return &fakeApp{stopped: make(chan struct{})}
}

func (f *fakeApp) Initialize() error { return f.initErr }

func (f *fakeApp) Start() error {
	if f.startErr != nil {
		return f.startErr
	}
	<-f.stopped
	return nil
}

func (f *fakeApp) Shutdown(ctx context.Context) error {
	f.shutdownCalled = true
	f.stopOnce.Do(func() { close(f.stopped) })
	return f.shutdownErr
}

func (f *fakeApp) SetShutdownTimeout(timeout time.Duration) { f.shutdownTimeout = timeout }

func (f *fakeApp) GetActiveRequestCount() int64 { return 0 }

func withFakeApp(t *testing.T, fake *fakeApp) {
	original := newApp
	newApp = func(cfg *config.Config, opts ...app.AppOption) app.AppInterface { return fake }
	t.Cleanup(func() { newApp = original })
}

// withSignal delivers sig to the first channel registered for signals
func withSignal(t *testing.T, sig os.Signal) {
	original := signalNotify
	calls := 0
	signalNotify = func(c chan<- os.Signal, _ ...os.Signal) {
		calls++
		if calls == 1 {
			go func() {
				time.Sleep(10 * time.Millisecond)
				c <- sig
			}()
		}
	}
	t.Cleanup(func() { signalNotify = original })
}

func TestRunServer(t *testing.T) {
	cfg := &config.Config{}

	t.Run("graceful shutdown on interrupt", func(t *testing.T) {
		fake := newFakeApp()
		withFakeApp(t, fake)
		withSignal(t, os.Interrupt)

		err := runServer(cfg, logger.NewTestLogger(t))
		require.NoError(t, err)
		assert.True(t, fake.shutdownCalled)
		assert.Equal(t, 25*time.Second, fake.shutdownTimeout)
	})

	t.Run("initialization failure", func(t *testing.T) {
		fake := newFakeApp()
		fake.initErr = errors.New("failed to connect to redis: dial tcp: connection refused")
		withFakeApp(t, fake)

		err := runServer(cfg, logger.NewTestLogger(t))
		require.Error(t, err)
		assert.False(t, fake.shutdownCalled)
	})

	t.Run("server error", func(t *testing.T) {
		fake := newFakeApp()
		fake.startErr = errors.New("listen tcp :8080: bind: address already in use")
		withFakeApp(t, fake)
		original := signalNotify
		signalNotify = func(c chan<- os.Signal, _ ...os.Signal) {}
		t.Cleanup(func() { signalNotify = original })

		err := runServer(cfg, logger.NewTestLogger(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "address already in use")
	})

	t.Run("shutdown error is returned", func(t *testing.T) {
		fake := newFakeApp()
		fake.shutdownErr = errors.New("shutdown timeout exceeded")
		withFakeApp(t, fake)
		withSignal(t, os.Interrupt)

		err := runServer(cfg, logger.NewTestLogger(t))
		require.Error(t, err)
		assert.Equal(t, "shutdown timeout exceeded", err.Error())
	})
}

func TestConfigLoading(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err := config.Load()
	assert.Error(t, err)
}
