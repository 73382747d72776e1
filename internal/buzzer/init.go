package buzzer

import (
	"context"
	"sync"
	"time"

	"code.sztanpet.net/zvpsz/buzzer/internal/storage"
)

const (
	MaxInitRetry      = 15
	InitRetryInterval = 1 * time.Second
)

// InitTask loads the settings, brings the pin up and plays the startup beep,
// in the background. Cancel the context passed to StartInit or call Stop to
// abandon the retry loop.
type InitTask struct {
	ctrl     *Controller
	store    storage.Store
	retries  int
	interval time.Duration
	wait     func(ctx context.Context, d time.Duration) error

	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	attempts int
	ready    bool
}

type InitOption func(*InitTask)

func WithRetries(n int) InitOption {
	return func(t *InitTask) {
		t.retries = n
	}
}

func WithRetryInterval(d time.Duration) InitOption {
	return func(t *InitTask) {
		t.interval = d
	}
}

// StartInit returns immediately, use Done to wait for the task.
func StartInit(ctx context.Context, ctrl *Controller, st storage.Store, opts ...InitOption) *InitTask {
	ctx, cancel := context.WithCancel(ctx)
	t := &InitTask{
		ctrl:     ctrl,
		store:    st,
		retries:  MaxInitRetry,
		interval: InitRetryInterval,
		wait:     sleepContext,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(t)
	}

	go t.run(ctx)
	return t
}

// Done is closed once the startup beep was played or the task was cancelled.
func (t *InitTask) Done() <-chan struct{} {
	return t.done
}

// Stop cancels the task and waits for it to exit.
func (t *InitTask) Stop() {
	t.cancel()
	<-t.done
}

// Ready reports whether the retry loop got the pin up, only meaningful after Done.
func (t *InitTask) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ready
}

// Attempts is the number of InitPin calls made so far.
func (t *InitTask) Attempts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts
}

func (t *InitTask) run(ctx context.Context) {
	defer close(t.done)
	defer t.cancel()

	t.ctrl.LoadSettings(t.store)

	ready := t.waitForReady(ctx)
	t.mu.Lock()
	t.ready = ready
	t.mu.Unlock()

	if ctx.Err() != nil {
		logger.Infof("buzzer init cancelled")
		return
	}

	// Buzz refuses on its own if the pin never came up
	if err := t.ctrl.Buzz(t.ctrl.Settings().StartupBeep); err != nil {
		logger.Debugf("startup beep: %v", err)
	}
}

func (t *InitTask) waitForReady(ctx context.Context) bool {
	retry := 0
	for !t.ctrl.IsReady() && retry < t.retries {
		if retry == 0 {
			logger.Infof("buzzer not ready yet")
		}

		if err := t.wait(ctx, t.interval); err != nil {
			return false
		}

		logger.Infof("attempting to reinitialize buzzer (%d/%d)", retry+1, t.retries)
		if err := t.ctrl.InitPin(); err != nil {
			logger.Infof("buzzer init failed: %v", err)
			initAttempts.WithLabelValues("failed").Inc()
		} else {
			logger.Infof("buzzer init done")
			initAttempts.WithLabelValues("done").Inc()
		}

		retry++
		t.mu.Lock()
		t.attempts = retry
		t.mu.Unlock()
	}

	if !t.ctrl.IsReady() {
		logger.Warningf("buzzer failure, giving up after %d attempts", retry)
		return false
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	tm := time.NewTimer(d)
	defer tm.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-tm.C:
		return nil
	}
}
