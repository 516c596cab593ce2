package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream 502")

func newTestBreaker(t *testing.T, cfg CircuitBreakerConfig) (*CircuitBreaker, *time.Time, *[]string) {
	t.Helper()

	now := time.Date(2024, 9, 8, 17, 0, 0, 0, time.UTC)
	b := NewCircuitBreaker("nflverse", cfg)
	b.now = func() time.Time { return now }

	var transitions []string
	b.OnStateChange(func(name string, from, to CircuitState) {
		transitions = append(transitions, name+":"+string(from)+"->"+string(to))
	})
	return b, &now, &transitions
}

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	t.Parallel()

	b, now, transitions := newTestBreaker(t, CircuitBreakerConfig{Enabled: true, FailureThreshold: 2, OpenTimeout: 5 * time.Second, HalfOpenMaxReq: 1})
	transient := func(error) bool { return true }
	fail := func() error { return errUpstream }

	require.ErrorIs(t, b.Execute(fail, transient), errUpstream)
	assert.Equal(t, CircuitStateClosed, b.State())
	require.ErrorIs(t, b.Execute(fail, transient), errUpstream)
	assert.Equal(t, CircuitStateOpen, b.State())

	calls := 0
	err := b.Execute(func() error { calls++; return nil }, transient)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, calls)

	*now = now.Add(6 * time.Second)
	assert.Equal(t, CircuitStateHalfOpen, b.State())
	require.NoError(t, b.Allow())
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen, "only one probe is admitted")
	b.RecordSuccess()
	assert.Equal(t, CircuitStateClosed, b.State())

	assert.Equal(t, []string{
		"nflverse:closed->open",
		"nflverse:open->half_open",
		"nflverse:half_open->closed",
	}, *transitions)
}

func TestCircuitBreakerIgnoresPermanentErrors(t *testing.T) {
	t.Parallel()

	b, _, transitions := newTestBreaker(t, CircuitBreakerConfig{Enabled: true, FailureThreshold: 1})
	notFound := errors.New("status 404")

	for range 3 {
		err := b.Execute(func() error { return notFound }, func(err error) bool { return !errors.Is(err, notFound) })
		require.ErrorIs(t, err, notFound)
	}
	assert.Equal(t, CircuitStateClosed, b.State())
	assert.Empty(t, *transitions)
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	b, now, _ := newTestBreaker(t, CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Second})
	b.RecordFailure()
	*now = now.Add(2 * time.Second)

	require.NoError(t, b.Allow())
	b.RecordFailure()
	assert.Equal(t, CircuitStateOpen, b.State())
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestDisabledCircuitBreakerAdmitsEverything(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker("off", CircuitBreakerConfig{FailureThreshold: 1})
	for range 5 {
		require.ErrorIs(t, b.Execute(func() error { return errUpstream }, nil), errUpstream)
	}
	assert.Equal(t, CircuitStateClosed, b.State())
}

func TestNormalizeCircuitBreakerConfig(t *testing.T) {
	t.Parallel()

	cfg := NormalizeCircuitBreakerConfig(CircuitBreakerConfig{Enabled: true, OpenTimeout: -time.Second})
	assert.Equal(t, CircuitBreakerConfig{Enabled: true, FailureThreshold: 3, OpenTimeout: 30 * time.Second, HalfOpenMaxReq: 1}, cfg)
}
