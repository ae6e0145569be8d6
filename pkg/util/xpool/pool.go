package xpool

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
)

const (
	maxWorkers   = 1 << 16
	maxQueueSize = 1 << 24
)

var _ io.Closer = (*Pool[int])(nil)

// Handler 任务处理函数，worker 为处理该任务的 worker 编号。
type Handler[T any] func(worker int, task T)

// Pool 固定大小的泛型 worker pool。
type Pool[T any] struct {
	handler Handler[T]
	queue   chan T
	opts    options
	workers int

	mu       sync.RWMutex // 写锁仅在关闭队列时持有
	stopped  chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	done     chan struct{}
}

// New 创建并启动 worker pool。
func New[T any](workers, queueSize int, handler Handler[T], opts ...Option) (*Pool[T], error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if workers < 1 || workers > maxWorkers {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, workers)
	}
	if queueSize < 0 || queueSize > maxQueueSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQueueSize, queueSize)
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	p := &Pool[T]{
		handler: handler,
		queue:   make(chan T, queueSize),
		opts:    o,
		workers: workers,
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
	}
	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	go func() {
		p.wg.Wait()
		close(p.done)
	}()
	return p, nil
}

func (p *Pool[T]) worker(id int) {
	defer p.wg.Done()
	for task := range p.queue {
		p.run(id, task)
	}
}

func (p *Pool[T]) run(id int, task T) {
	defer func() {
		if r := recover(); r != nil {
			attrs := []any{
				slog.Any("panic", r),
				slog.Int("worker", id),
				slog.String("task_type", fmt.Sprintf("%T", task)),
				slog.String("stack", string(debug.Stack())),
			}
			if p.opts.name != "" {
				attrs = append(attrs, slog.String("pool", p.opts.name))
			}
			p.opts.logger.Error("xpool: worker panic recovered", attrs...)
		}
	}()
	p.handler(id, task)
}

// Submit 非阻塞提交任务。
func (p *Pool[T]) Submit(task T) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	select {
	case <-p.stopped:
		return ErrPoolStopped
	default:
	}
	select {
	case p.queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// SubmitWait 阻塞提交任务，直到任务入队、ctx 结束或 pool 关闭。
func (p *Pool[T]) SubmitWait(ctx context.Context, task T) error {
	if ctx == nil {
		return ErrNilContext
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	select {
	case <-p.stopped:
		return ErrPoolStopped
	default:
	}
	select {
	case p.queue <- task:
		return nil
	case <-p.stopped:
		return ErrPoolStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown 停止接收任务并等待队列处理完成，ctx 到期时提前返回。
func (p *Pool[T]) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	p.stopOnce.Do(func() {
		close(p.stopped)
		p.mu.Lock()
		close(p.queue)
		p.mu.Unlock()
	})
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close 停止 pool 并等待所有任务完成。
func (p *Pool[T]) Close() error {
	return p.Shutdown(context.Background())
}

// Done 返回所有 worker 退出后关闭的 channel。
func (p *Pool[T]) Done() <-chan struct{} {
	return p.done
}

// Workers 返回 worker 数量。
func (p *Pool[T]) Workers() int {
	return p.workers
}

// QueueSize 返回队列容量。
func (p *Pool[T]) QueueSize() int {
	return cap(p.queue)
}
