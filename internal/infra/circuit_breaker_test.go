package infra_test

import (
	"errors"
	"testing"
	"time"

	"varejopos/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newTestCB(openTimeout time.Duration) *infra.CircuitBreaker {
	return infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		OpenTimeout:      openTimeout,
	})
}

func TestCircuitBreakerAbreAposFalhasConsecutivas(t *testing.T) {
	cb := newTestCB(time.Minute)

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return errBoom })
		require.ErrorIs(t, err, errBoom)
	}
	assert.Equal(t, infra.CBOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
	assert.False(t, called, "open circuit must not invoke the call")
}

func TestCircuitBreakerSucessoZeraContagem(t *testing.T) {
	cb := newTestCB(time.Minute)

	for i := 0; i < 2; i++ {
		_ = cb.Execute(func() error { return errBoom })
	}
	require.NoError(t, cb.Execute(func() error { return nil }))

	// Contador zerado: duas falhas a mais não bastam para abrir.
	for i := 0; i < 2; i++ {
		_ = cb.Execute(func() error { return errBoom })
	}
	assert.Equal(t, infra.CBClosed, cb.State())
}

func TestCircuitBreakerRecuperaViaHalfOpen(t *testing.T) {
	cb := newTestCB(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errBoom })
	}
	require.Equal(t, infra.CBOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, infra.CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, infra.CBClosed, cb.State())
}

func TestCircuitBreakerProbeFalhaReabre(t *testing.T) {
	cb := newTestCB(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errBoom })
	}
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, infra.CBHalfOpen, cb.State())

	_ = cb.Execute(func() error { return errBoom })
	assert.Equal(t, infra.CBOpen, cb.State())
}
