package circuit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// outcome is one recorded call: true for success.
type outcome bool

const (
	ok   outcome = true
	fail outcome = false
)

func record(b *Breaker, outcomes ...outcome) StateChange {
	var last StateChange
	for _, o := range outcomes {
		if o {
			_, last = b.RecordSuccess()
		} else {
			_, last = b.RecordFailure()
		}
	}
	return last
}

func TestBreakerTransitions(t *testing.T) {
	tests := []struct {
		name       string
		failures   int
		successes  int
		outcomes   []outcome
		wantState  State
		wantChange StateChange
	}{
		{
			name:      "stays closed below the failure threshold",
			failures:  3,
			outcomes:  []outcome{fail, fail},
			wantState: StateClosed,
		},
		{
			name:       "opens on the threshold failure",
			failures:   3,
			outcomes:   []outcome{fail, fail, fail},
			wantState:  StateOpen,
			wantChange: StateChange{Opened: true},
		},
		{
			name:      "a success resets the failure streak",
			failures:  3,
			outcomes:  []outcome{fail, fail, ok, fail, fail},
			wantState: StateClosed,
		},
		{
			name:      "failures while open report no transition",
			failures:  1,
			outcomes:  []outcome{fail, fail},
			wantState: StateOpen,
		},
		{
			name:      "one success is not enough to close",
			failures:  1,
			successes: 2,
			outcomes:  []outcome{fail, ok},
			wantState: StateOpen,
		},
		{
			name:       "closes after the success threshold",
			failures:   1,
			successes:  2,
			outcomes:   []outcome{fail, ok, ok},
			wantState:  StateClosed,
			wantChange: StateChange{Closed: true},
		},
		{
			name:      "a failure while open resets the success streak",
			failures:  1,
			successes: 3,
			outcomes:  []outcome{fail, ok, ok, fail, ok, ok},
			wantState: StateOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := []Option{WithFailureThreshold(tt.failures)}
			if tt.successes > 0 {
				opts = append(opts, WithSuccessThreshold(tt.successes))
			}
			b := New("index", opts...)

			change := record(b, tt.outcomes...)

			assert.Equal(t, tt.wantState, b.State())
			assert.Equal(t, tt.wantChange, change)
		})
	}
}

func TestRecordFlags(t *testing.T) {
	b := New("index", WithFailureThreshold(1), WithSuccessThreshold(1))
	assert.Equal(t, "index", b.Name())

	useFallback, _ := b.RecordFailure()
	assert.True(t, useFallback)

	usePrimary, _ := b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.False(t, b.IsOpen())
}

func TestReset(t *testing.T) {
	b := New("index", WithFailureThreshold(1))
	record(b, fail)
	require.True(t, b.IsOpen())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestAllowWaitsForCooldown(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	b := New("webfinger",
		WithFailureThreshold(1),
		WithCooldown(10*time.Second),
		WithClock(func() time.Time { return now }),
	)
	assert.True(t, b.Allow())

	record(b, fail)
	assert.False(t, b.Allow())

	now = now.Add(9 * time.Second)
	assert.False(t, b.Allow())

	now = now.Add(time.Second)
	assert.True(t, b.Allow(), "probe after cooldown")

	record(b, fail)
	assert.False(t, b.Allow(), "failed probe restarts the cooldown")
}

func TestConcurrentFailuresOpenExactlyOnce(t *testing.T) {
	b := New("index", WithFailureThreshold(10))

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		opened int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, change := b.RecordFailure(); change.Opened {
				mu.Lock()
				opened++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, opened)
	assert.True(t, b.IsOpen())
}
