package streaming

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

type ProcessingStrategy interface {
	ProcessRecords(
		ctx context.Context,
		records []ConsumerMessage,
		handler MessageHandler,
	) error
	Stop() error
}

type SequentialProcessor struct{}

func (p *SequentialProcessor) ProcessRecords(
	ctx context.Context,
	records []ConsumerMessage,
	handler MessageHandler,
) error {
	for _, record := range records {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := handler(ctx, record); err != nil {
			return fmt.Errorf("error processing record %s/%d@%d: %w", record.Topic, record.Partition, record.Offset, err)
		}
	}
	return nil
}

func (p *SequentialProcessor) Stop() error {
	return nil
}

type keyProcessingJob struct {
	key      string
	messages []ConsumerMessage
	handler  MessageHandler
}

func (k *keyProcessingJob) Key() string {
	return k.key
}

func (k *keyProcessingJob) Execute(ctx context.Context) error {
	for _, message := range k.messages {
		if err := k.handler(ctx, message); err != nil {
			return fmt.Errorf("error processing message %s/%d@%d: %w", message.Topic, message.Partition, message.Offset, err)
		}
	}
	return nil
}

// KeyOrderedProcessor fans a batch out over a hash-keyed worker pool so that
// messages sharing a key are handled in offset order by a single worker, while
// different keys proceed in parallel. ProcessRecords returns once the whole
// batch has been handled.
type KeyOrderedProcessor struct {
	MaxWorkers int
	Logger     *zap.Logger
	pool       *hashBasedWorkerPool
	once       sync.Once
	startErr   error
	mu         sync.Mutex
}

func (p *KeyOrderedProcessor) startUnsafe(ctx context.Context) error {
	if p.MaxWorkers <= 0 {
		p.MaxWorkers = 1
	}

	p.pool = newHashBasedWorkerPool(p.MaxWorkers, p.Logger)
	if err := p.pool.Start(ctx); err != nil {
		return err
	}

	return nil
}

func (p *KeyOrderedProcessor) ProcessRecords(
	ctx context.Context,
	records []ConsumerMessage,
	handler MessageHandler,
) error {
	p.once.Do(func() {
		p.startErr = p.startUnsafe(ctx)
	})

	if p.startErr != nil {
		return p.startErr
	}

	messagesByKey := p.groupMessagesByKey(records)
	if len(messagesByKey) == 0 {
		return nil
	}

	batch := newBatch(p.createJobs(messagesByKey, handler))

	p.mu.Lock()
	pool := p.pool
	p.mu.Unlock()
	if pool == nil {
		return errors.New("key ordered processor stopped")
	}

	submitted, err := batch.submit(ctx, pool)
	if err != nil {
		batch.abandon(submitted)
		return err
	}

	return batch.wait(ctx)
}

func (p *KeyOrderedProcessor) createJobs(messagesByKey map[string][]ConsumerMessage, handler MessageHandler) []Job {
	jobs := make([]Job, 0, len(messagesByKey))
	for key, messages := range messagesByKey {
		jobs = append(jobs, &keyProcessingJob{
			key:      key,
			messages: messages,
			handler:  handler,
		})
	}
	return jobs
}

func (p *KeyOrderedProcessor) groupMessagesByKey(records []ConsumerMessage) map[string][]ConsumerMessage {
	sort.SliceStable(
		records,
		func(i, j int) bool {
			return records[i].Offset < records[j].Offset
		},
	)

	groups := make(map[string][]ConsumerMessage)
	for _, record := range records {
		key := p.getKey(record)
		groups[key] = append(groups[key], record)
	}

	return groups
}

func (p *KeyOrderedProcessor) getKey(msg ConsumerMessage) string {
	if len(msg.Key) > 0 {
		return string(msg.Key)
	}

	return fmt.Sprintf("%s-%d", msg.Topic, msg.Partition)
}

func (p *KeyOrderedProcessor) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pool != nil {
		err := p.pool.Stop()
		p.pool = nil
		return err
	}
	return nil
}

// batch tracks completion of a set of jobs submitted together.
type batch struct {
	jobs []Job
	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

func newBatch(jobs []Job) *batch {
	b := &batch{}
	b.wg.Add(len(jobs))
	for _, job := range jobs {
		b.jobs = append(b.jobs, &batchJob{Job: job, batch: b})
	}
	return b
}

func (b *batch) submit(ctx context.Context, pool WorkerPool) (int, error) {
	for i, job := range b.jobs {
		if err := pool.Submit(ctx, job); err != nil {
			return i, err
		}
	}
	return len(b.jobs), nil
}

// abandon releases the jobs that never reached the pool.
func (b *batch) abandon(submitted int) {
	for i := submitted; i < len(b.jobs); i++ {
		b.wg.Done()
	}
}

func (b *batch) wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return errors.Join(b.errs...)
}

type batchJob struct {
	Job
	batch *batch
}

func (j *batchJob) Execute(ctx context.Context) error {
	defer j.batch.wg.Done()

	err := j.Job.Execute(ctx)
	if err != nil {
		j.batch.mu.Lock()
		j.batch.errs = append(j.batch.errs, err)
		j.batch.mu.Unlock()
	}
	return err
}
