package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRemote = errors.New("remote failed")

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newBreaker(settings Settings) (*Breaker, *clock) {
	clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := New("test", settings)
	b.now = clk.Now
	b.mu.Lock()
	b.toNewGeneration(clk.Now())
	b.mu.Unlock()
	return b, clk
}

func fail() error    { return errRemote }
func succeed() error { return nil }

func tripAfter(n uint32) func(Counts) bool {
	return func(c Counts) bool { return c.ConsecutiveFailures >= n }
}

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name     string
		calls    []func() error
		expected State
	}{
		{"stays closed on successes", []func() error{succeed, succeed, succeed}, StateClosed},
		{"opens after consecutive failures", []func() error{fail, fail, fail}, StateOpen},
		{"success resets the streak", []func() error{fail, fail, succeed, fail, fail}, StateClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newBreaker(Settings{Timeout: time.Minute, ReadyToTrip: tripAfter(3)})
			for _, call := range tt.calls {
				_ = b.Do(context.Background(), call)
			}
			assert.Equal(t, tt.expected, b.State())
		})
	}
}

func TestBreakerCounts(t *testing.T) {
	b, _ := newBreaker(Settings{Timeout: time.Minute})

	require.NoError(t, b.Do(context.Background(), succeed))
	counts := b.Counts()
	assert.Equal(t, uint32(1), counts.Requests)
	assert.Equal(t, uint32(1), counts.TotalSuccesses)
	assert.Equal(t, uint32(1), counts.ConsecutiveSuccesses)

	assert.ErrorIs(t, b.Do(context.Background(), fail), errRemote)
	counts = b.Counts()
	assert.Equal(t, uint32(2), counts.Requests)
	assert.Equal(t, uint32(1), counts.TotalFailures)
	assert.Equal(t, uint32(1), counts.ConsecutiveFailures)
	assert.Equal(t, uint32(0), counts.ConsecutiveSuccesses)
}

func TestBreakerIntervalClearsCounts(t *testing.T) {
	b, clk := newBreaker(Settings{Interval: time.Minute, Timeout: time.Minute, ReadyToTrip: tripAfter(2)})

	_ = b.Do(context.Background(), fail)
	clk.Advance(2 * time.Minute)
	_ = b.Do(context.Background(), fail)

	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, uint32(1), b.Counts().ConsecutiveFailures)
}

func TestBreakerOpenRejects(t *testing.T) {
	b, _ := newBreaker(Settings{Timeout: time.Minute, ReadyToTrip: tripAfter(2)})
	_ = b.Do(context.Background(), fail)
	_ = b.Do(context.Background(), fail)
	require.Equal(t, StateOpen, b.State())

	called := false
	err := b.Do(context.Background(), func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerHalfOpen(t *testing.T) {
	b, clk := newBreaker(Settings{MaxRequests: 2, Timeout: time.Second, ReadyToTrip: tripAfter(1)})
	_ = b.Do(context.Background(), fail)
	require.Equal(t, StateOpen, b.State())

	clk.Advance(2 * time.Second)
	assert.Equal(t, StateHalfOpen, b.State())

	require.NoError(t, b.Do(context.Background(), succeed))
	assert.Equal(t, StateHalfOpen, b.State())
	require.NoError(t, b.Do(context.Background(), succeed))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b, clk := newBreaker(Settings{MaxRequests: 2, Timeout: time.Second, ReadyToTrip: tripAfter(1)})
	_ = b.Do(context.Background(), fail)
	clk.Advance(2 * time.Second)

	_ = b.Do(context.Background(), fail)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerHalfOpenLimitsTrialCalls(t *testing.T) {
	b, clk := newBreaker(Settings{MaxRequests: 1, Timeout: time.Second, ReadyToTrip: tripAfter(1)})
	_ = b.Do(context.Background(), fail)
	clk.Advance(2 * time.Second)

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Do(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	assert.ErrorIs(t, b.Do(context.Background(), succeed), ErrTooManyRequests)
	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerIsSuccessful(t *testing.T) {
	errClient := errors.New("bad request")
	b, _ := newBreaker(Settings{
		Timeout:      time.Minute,
		ReadyToTrip:  tripAfter(1),
		IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, errClient) },
	})

	assert.ErrorIs(t, b.Do(context.Background(), func() error { return errClient }), errClient)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, uint32(1), b.Counts().TotalSuccesses)
}

func TestBreakerContextDone(t *testing.T) {
	b, _ := newBreaker(Settings{Timeout: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, b.Do(ctx, succeed), context.Canceled)
	assert.Equal(t, uint32(0), b.Counts().Requests)
}

func TestBreakerPanicCountsAsFailure(t *testing.T) {
	b, _ := newBreaker(Settings{Timeout: time.Minute, ReadyToTrip: tripAfter(1)})
	assert.Panics(t, func() {
		_ = b.Do(context.Background(), func() error { panic("boom") })
	})
	assert.Equal(t, StateOpen, b.State())
}

func TestCall(t *testing.T) {
	b, _ := newBreaker(Settings{Timeout: time.Minute})
	got, err := Call(context.Background(), b, func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestBreakerCallbacks(t *testing.T) {
	var mu sync.Mutex
	var transitions []string

	b, clk := newBreaker(Settings{
		Timeout:     time.Second,
		ReadyToTrip: tripAfter(2),
		OnStateChange: func(name string, from, to State) {
			mu.Lock()
			transitions = append(transitions, from.String()+"->"+to.String())
			mu.Unlock()
		},
	})

	_ = b.Do(context.Background(), fail)
	_ = b.Do(context.Background(), fail)
	clk.Advance(2 * time.Second)
	require.Equal(t, StateHalfOpen, b.State())
	require.NoError(t, b.Do(context.Background(), succeed))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}
