package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/xkilldash9x/cursorctl/api/schemas"
	"go.uber.org/zap"
)

type job struct {
	ctx     context.Context
	actions []schemas.Action
	result  chan schemas.ExecutionResult
}

// Queue is a bounded FIFO of action sequences drained by a single worker goroutine, so
// sequences submitted from several callers never interleave on the device.
type Queue struct {
	dispatcher *Dispatcher
	logger     *zap.Logger
	jobs       chan job

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	exited    chan struct{}
	wg        sync.WaitGroup

	// mu is held shared while enqueueing and exclusively for the final drain, so every
	// accepted sequence is either dispatched or drained.
	mu     sync.RWMutex
	closed bool
}

// NewQueue creates a queue holding at most size pending sequences.
func NewQueue(d *Dispatcher, size int, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		dispatcher: d,
		logger:     logger.With(zap.String("component", "dispatch_queue")),
		jobs:       make(chan job, max(1, size)),
		stop:       make(chan struct{}),
		exited:     make(chan struct{}),
	}
}

// Start launches the worker. It returns immediately; further calls are no-ops.
func (q *Queue) Start(ctx context.Context) {
	q.startOnce.Do(func() {
		q.wg.Add(1)
		go q.run(ctx)
	})
}

// Stop signals the worker and waits for it to exit. Sequences still queued are answered with
// a canceled result. Safe to call more than once.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() { close(q.stop) })
	q.wg.Wait()
}

// Submit enqueues actions, blocking while the queue is full. The returned channel receives
// exactly one result.
func (q *Queue) Submit(ctx context.Context, actions []schemas.Action) (<-chan schemas.ExecutionResult, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return nil, ErrQueueClosed
	}

	select {
	case <-q.stop:
		return nil, ErrQueueClosed
	case <-q.exited:
		return nil, ErrQueueClosed
	default:
	}

	j := job{ctx: ctx, actions: actions, result: make(chan schemas.ExecutionResult, 1)}
	select {
	case q.jobs <- j:
		return j.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-q.stop:
		return nil, ErrQueueClosed
	case <-q.exited:
		return nil, ErrQueueClosed
	}
}

// Do submits actions and waits for their result.
func (q *Queue) Do(ctx context.Context, actions []schemas.Action) (schemas.ExecutionResult, error) {
	ch, err := q.Submit(ctx, actions)
	if err != nil {
		return schemas.ExecutionResult{}, err
	}
	select {
	case res := <-ch:
		return res, nil
	case <-ctx.Done():
		return schemas.ExecutionResult{}, ctx.Err()
	case <-q.exited:
		// Accepted sequences are always answered, at the latest by the final drain.
		return <-ch, nil
	}
}

func (q *Queue) run(ctx context.Context) {
	defer q.wg.Done()
	defer q.shutdown()
	defer close(q.exited)

	q.logger.Info("Dispatch worker started.")
	for {
		select {
		case <-ctx.Done():
			q.logger.Info("Context cancelled, dispatch worker shutting down.", zap.Error(ctx.Err()))
			return
		case <-q.stop:
			q.logger.Info("Dispatch worker stopped.")
			return
		case j := <-q.jobs:
			q.process(j)
		}
	}
}

func (q *Queue) process(j job) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("Recovered from panic during dispatch.", zap.Any("panic_value", r))
			j.result <- failedResult(j.actions, ErrBackendRejected, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := j.ctx.Err(); err != nil {
		j.result <- failedResult(j.actions, ErrCanceled, err)
		return
	}
	j.result <- q.dispatcher.Dispatch(j.ctx, j.actions)
}

// shutdown refuses further submissions and answers whatever is still queued. Closing exited
// first releases submitters blocked on a full queue.
func (q *Queue) shutdown() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.drain()
}

// drain answers everything still queued so no submitter waits forever.
func (q *Queue) drain() {
	for {
		select {
		case j := <-q.jobs:
			j.result <- failedResult(j.actions, ErrCanceled, ErrQueueClosed)
		default:
			return
		}
	}
}

func failedResult(actions []schemas.Action, kind, err error) schemas.ExecutionResult {
	if len(actions) == 0 {
		return schemas.ExecutionResult{Success: true, Executed: []schemas.Action{}}
	}
	dErr := &DispatchError{Kind: kind, Index: 0, Action: actions[0], Err: err}
	return schemas.ExecutionResult{
		Executed: []schemas.Action{},
		Failed: &schemas.FailedAction{
			Index:   0,
			Action:  actions[0],
			Err:     dErr,
			Message: dErr.Error(),
		},
	}
}
