package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakePolicyExpirer struct {
	expired int64
	err     error
	calls   int
}

func (f *fakePolicyExpirer) ExpireActiveBefore(cutoff time.Time) (int64, error) {
	f.calls++
	return f.expired, f.err
}

func TestExpirationSweep(t *testing.T) {
	expirer := &fakePolicyExpirer{expired: 3}
	service := NewPolicyExpirationService(expirer)

	err := service.Sweep(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, expirer.calls)

	total, failed, _ := service.GetStats()
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(0), failed)
}

func TestExpirationSweep_RepositoryError(t *testing.T) {
	expirer := &fakePolicyExpirer{err: errors.New("connection refused")}
	service := NewPolicyExpirationService(expirer)

	err := service.Sweep(context.Background())
	assert.Error(t, err)

	total, failed, _ := service.GetStats()
	assert.Equal(t, int64(0), total)
	assert.Equal(t, int64(1), failed)
}
