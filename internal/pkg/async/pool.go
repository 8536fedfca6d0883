// internal/pkg/async/pool.go
package async

import (
	"context"
	"sync"
)

// Task is a named unit of work run by a Pool.
type Task[T any] struct {
	Name    string
	Execute func(ctx context.Context) (T, error)
}

// Result is the outcome of one Task.
type Result[T any] struct {
	Name string
	Data T
	Err  error
}

// Pool runs batches of tasks on a fixed number of goroutines.
type Pool[T any] struct {
	workerCount int
}

func NewPool[T any](workerCount int) *Pool[T] {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool[T]{workerCount: workerCount}
}

// Execute runs tasks and returns their results keyed by task name. When ctx is
// cancelled the results collected so far are returned.
func (p *Pool[T]) Execute(ctx context.Context, tasks []Task[T]) map[string]Result[T] {
	taskCh := make(chan Task[T])
	resultCh := make(chan Result[T], len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < min(p.workerCount, len(tasks)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				data, err := task.Execute(ctx)
				resultCh <- Result[T]{Name: task.Name, Data: data, Err: err}
			}
		}()
	}

	go func() {
		defer close(taskCh)
		for _, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make(map[string]Result[T], len(tasks))
	for {
		select {
		case result, ok := <-resultCh:
			if !ok {
				return results
			}
			results[result.Name] = result
		case <-ctx.Done():
			return results
		}
	}
}
