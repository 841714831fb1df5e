package streaming

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrPoolStarted    = errors.New("worker pool already started")
	ErrPoolNotStarted = errors.New("worker pool not started")
)

type Job interface {
	Execute(ctx context.Context) error
	Key() string
}

type WorkerPool interface {
	Start(ctx context.Context) error
	Stop() error
	Submit(ctx context.Context, job Job) error
	SubmitBatch(ctx context.Context, jobs []Job) error
}

const workerQueueSize = 100

func newHashBasedWorkerPool(maxWorkers int, logger *zap.Logger) *hashBasedWorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pool := &hashBasedWorkerPool{
		workerQueues: make([]chan Job, maxWorkers),
		workers:      make([]*hashBasedWorker, 0, maxWorkers),
		maxWorkers:   maxWorkers,
		logger:       logger.Named("workerpool"),
	}

	for i := 0; i < maxWorkers; i++ {
		pool.workerQueues[i] = make(chan Job, workerQueueSize)
	}

	return pool
}

// hashBasedWorkerPool routes every job with the same key to the same worker,
// so jobs sharing a key run one at a time in submission order.
type hashBasedWorkerPool struct {
	workerQueues []chan Job
	workers      []*hashBasedWorker
	maxWorkers   int
	started      bool
	mutex        sync.RWMutex
	wg           sync.WaitGroup
	logger       *zap.Logger
}

func (p *hashBasedWorkerPool) getWorkerForKey(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(p.maxWorkers))
}

func (p *hashBasedWorkerPool) Start(ctx context.Context) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.started {
		return ErrPoolStarted
	}

	for i := 0; i < p.maxWorkers; i++ {
		w := &hashBasedWorker{
			id:       i,
			jobQueue: p.workerQueues[i],
			quit:     make(chan struct{}),
			wg:       &p.wg,
			logger:   p.logger,
		}

		p.workers = append(p.workers, w)
		p.wg.Add(1)
		go w.run(ctx)
	}

	p.started = true
	return nil
}

func (p *hashBasedWorkerPool) Stop() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.started {
		return nil
	}

	for i := 0; i < p.maxWorkers; i++ {
		close(p.workerQueues[i])
	}

	for _, w := range p.workers {
		close(w.quit)
	}

	p.wg.Wait()

	p.workers = nil
	p.started = false

	return nil
}

func (p *hashBasedWorkerPool) Submit(ctx context.Context, job Job) error {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	if !p.started {
		return ErrPoolNotStarted
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	workerID := p.getWorkerForKey(job.Key())

	select {
	case p.workerQueues[workerID] <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *hashBasedWorkerPool) SubmitBatch(ctx context.Context, jobs []Job) error {
	for _, job := range jobs {
		if err := p.Submit(ctx, job); err != nil {
			return err
		}
	}
	return nil
}

type hashBasedWorker struct {
	id       int
	jobQueue chan Job
	quit     chan struct{}
	wg       *sync.WaitGroup
	logger   *zap.Logger
}

func (w *hashBasedWorker) run(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				return
			}

			if err := job.Execute(ctx); err != nil {
				w.logger.Warn("job failed",
					zap.Int("worker", w.id),
					zap.String("key", job.Key()),
					zap.Error(err))
			}
		case <-w.quit:
			return
		case <-ctx.Done():
			return
		}
	}
}
