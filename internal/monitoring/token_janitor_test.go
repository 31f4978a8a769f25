package monitoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPurger struct {
	mu     sync.Mutex
	purges int
	err    error
}

func (p *countingPurger) PurgeExpiredTokens(context.Context) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.purges++
	return 3, p.err
}

func (p *countingPurger) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.purges
}

func TestTokenJanitor_PurgesOnStart(t *testing.T) {
	purger := &countingPurger{}
	janitor := NewTokenJanitor(purger, "@hourly")

	require.NoError(t, janitor.Run())
	defer janitor.Stop()

	assert.Equal(t, 1, purger.count())
}

func TestTokenJanitor_RunsOnSchedule(t *testing.T) {
	purger := &countingPurger{}
	janitor := NewTokenJanitor(purger, "@every 50ms")

	require.NoError(t, janitor.Run())

	assert.Eventually(t, func() bool {
		return purger.count() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	janitor.Stop()
}

func TestTokenJanitor_RejectsBadSchedule(t *testing.T) {
	janitor := NewTokenJanitor(&countingPurger{}, "not a schedule")
	assert.Error(t, janitor.Run())
}

func TestTokenJanitor_KeepsRunningAfterPurgeError(t *testing.T) {
	purger := &countingPurger{err: errors.New("database locked")}
	janitor := NewTokenJanitor(purger, "@every 50ms")

	require.NoError(t, janitor.Run())

	assert.Eventually(t, func() bool {
		return purger.count() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	janitor.Stop()
}
