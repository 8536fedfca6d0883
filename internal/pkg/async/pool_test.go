package async

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolExecute(t *testing.T) {
	pool := NewPool[int](3)

	var tasks []Task[int]
	for i := 0; i < 10; i++ {
		tasks = append(tasks, Task[int]{
			Name:    fmt.Sprintf("task-%d", i),
			Execute: func(context.Context) (int, error) { return i * i, nil },
		})
	}

	results := pool.Execute(context.Background(), tasks)
	require.Len(t, results, 10)
	for i := 0; i < 10; i++ {
		r := results[fmt.Sprintf("task-%d", i)]
		assert.NoError(t, r.Err)
		assert.Equal(t, i*i, r.Data)
	}
}

func TestPoolKeepsTaskErrors(t *testing.T) {
	boom := errors.New("boom")
	results := NewPool[string](2).Execute(context.Background(), []Task[string]{
		{Name: "ok", Execute: func(context.Context) (string, error) { return "fine", nil }},
		{Name: "bad", Execute: func(context.Context) (string, error) { return "", boom }},
	})

	require.Len(t, results, 2)
	assert.Equal(t, "fine", results["ok"].Data)
	assert.ErrorIs(t, results["bad"].Err, boom)
}

func TestPoolLimitsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	task := func(context.Context) (bool, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return true, nil
	}

	var tasks []Task[bool]
	for i := 0; i < 8; i++ {
		tasks = append(tasks, Task[bool]{Name: fmt.Sprint(i), Execute: task})
	}

	results := NewPool[bool](2).Execute(context.Background(), tasks)
	assert.Len(t, results, 8)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestPoolCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewPool[int](1).Execute(ctx, []Task[int]{
		{Name: "a", Execute: func(context.Context) (int, error) { return 1, nil }},
	})
	assert.LessOrEqual(t, len(results), 1)
}

func TestPoolNoTasks(t *testing.T) {
	assert.Empty(t, NewPool[int](4).Execute(context.Background(), nil))
}
