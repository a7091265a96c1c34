package concurrent

import (
	"context"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	var running, maxRunning int32
	jobs := []int{1, 2, 3, 4, 5, 6, 7, 8}

	res := Run(context.Background(), 3, jobs, func(ctx context.Context, job int) int {
		n := atomic.AddInt32(&running, 1)
		for {
			m := atomic.LoadInt32(&maxRunning)
			if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
				break
			}
		}
		defer atomic.AddInt32(&running, -1)
		return job * job
	})

	sort.Ints(res)
	assert.Equal(t, []int{1, 4, 9, 16, 25, 36, 49, 64}, res)
	assert.LessOrEqual(t, atomic.LoadInt32(&maxRunning), int32(3))
}

func TestRunEmpty(t *testing.T) {
	res := Run(context.Background(), 0, []string{}, func(ctx context.Context, job string) int { return len(job) })
	assert.Empty(t, res)
}

func TestRunPassesContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := Run(ctx, 2, []int{1, 2}, func(ctx context.Context, job int) error { return ctx.Err() })
	assert.Len(t, res, 2)
	for _, err := range res {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
