package core

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// JobProcessor handles one reserved job.
type JobProcessor interface {
	Process(ctx context.Context, jobID string) (string, error)
}

// SubmissionWorker runs the reservers and the reclaimer of one worker process.
type SubmissionWorker struct {
	queue       JobQueue
	repo        SubmissionRepository
	processor   JobProcessor
	state       *HeartbeatState
	concurrency int

	visibility      time.Duration
	reclaimInterval time.Duration
	idleWait        time.Duration
	errorWait       time.Duration
}

func NewSubmissionWorker(queue JobQueue, repo SubmissionRepository, processor JobProcessor, state *HeartbeatState, concurrency int) *SubmissionWorker {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &SubmissionWorker{
		queue:           queue,
		repo:            repo,
		processor:       processor,
		state:           state,
		concurrency:     concurrency,
		visibility:      DefaultVisibilityTimeout,
		reclaimInterval: ReclaimInterval,
		idleWait:        100 * time.Millisecond,
		errorWait:       time.Second,
	}
}

// Run blocks until ctx is cancelled.
func (w *SubmissionWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w.reclaimLoop(ctx)
		return nil
	})
	for i := 1; i <= w.concurrency; i++ {
		n := i
		g.Go(func() error {
			w.consume(ctx, n)
			return nil
		})
	}
	return g.Wait()
}

func (w *SubmissionWorker) consume(ctx context.Context, n int) {
	for {
		if ctx.Err() != nil {
			return
		}
		job, err := w.queue.Reserve(ctx, w.visibility)
		if err != nil {
			wait := w.errorWait
			if errors.Is(err, ErrQueueEmpty) {
				wait = w.idleWait
			} else if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			} else {
				log.Printf("[worker %d] dequeue error: %v", n, err)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			continue
		}
		w.handle(ctx, n, job)
	}
}

func (w *SubmissionWorker) handle(ctx context.Context, n int, job string) {
	log.Printf("[worker %d] received job %s", n, job)
	if w.state != nil {
		w.state.JobStarted(job)
	}

	nomor, err := w.processor.Process(ctx, job)
	switch {
	case err == nil:
		log.Printf("[worker %d] job %s done nomorSurat=%s", n, job, nomor)
	case errors.Is(err, ErrSubmissionNotPending):
		log.Printf("[worker %d] skip job %s: already processed", n, job)
		err = nil
	}

	if ackErr := w.queue.Ack(ctx, job); ackErr != nil {
		log.Printf("[worker %d] ack failed for job %s: %v", n, job, ackErr)
	}
	if err != nil {
		w.retryOrFail(ctx, n, job, err)
	}
	if w.state != nil {
		w.state.JobFinished(job, err)
	}
}

// retryOrFail puts a failed job back on the queue until MaxSubmissionRetries is
// exceeded, then marks the submission gagal.
func (w *SubmissionWorker) retryOrFail(ctx context.Context, n int, job string, procErr error) {
	id, err := strconv.ParseInt(job, 10, 64)
	if err != nil {
		log.Printf("[worker %d] dropping malformed job %q: %v", n, job, procErr)
		return
	}
	if errors.Is(procErr, ErrUnknownLetterType) {
		w.fail(ctx, n, id, procErr)
		return
	}

	retries, err := w.repo.IncrementRetry(ctx, id)
	if errors.Is(err, ErrSubmissionNotPending) {
		log.Printf("[worker %d] job %s already final, not retried: %v", n, job, procErr)
		return
	}
	if err != nil {
		log.Printf("[worker %d] increment retry failed for job %s: %v", n, job, err)
		return
	}
	if retries > MaxSubmissionRetries {
		w.fail(ctx, n, id, procErr)
		return
	}
	if err := w.repo.MarkStatus(ctx, id, StatusPending); err != nil {
		if errors.Is(err, ErrSubmissionNotPending) {
			log.Printf("[worker %d] job %s already final, not retried: %v", n, job, procErr)
			return
		}
		log.Printf("[worker %d] reset job %s to pending failed: %v", n, job, err)
	}
	if err := w.queue.Enqueue(ctx, job); err != nil {
		log.Printf("[worker %d] re-enqueue job %s failed: %v", n, job, err)
		return
	}
	log.Printf("[worker %d] job %s retried (retry_count=%d): %v", n, job, retries, procErr)
}

func (w *SubmissionWorker) fail(ctx context.Context, n int, id int64, procErr error) {
	if err := w.repo.Fail(ctx, id, procErr.Error()); err != nil {
		if errors.Is(err, ErrSubmissionNotPending) {
			log.Printf("[worker %d] submission %d already final, keeping it: %v", n, id, procErr)
			return
		}
		log.Printf("[worker %d] mark submission %d gagal failed: %v", n, id, err)
		return
	}
	log.Printf("[worker %d] submission %d gagal: %v", n, id, procErr)
}

func (w *SubmissionWorker) reclaimLoop(ctx context.Context) {
	ticker := time.NewTicker(w.reclaimInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.reclaim(ctx, time.Now())
		}
	}
}

// reclaim requeues reservations whose visibility deadline passed before now. A row
// left in processing by a dead worker goes back to pending and counts as a retry.
func (w *SubmissionWorker) reclaim(ctx context.Context, now time.Time) {
	jobs, err := w.queue.RequeueExpired(ctx, now)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("[reclaimer] requeue expired error: %v", err)
		}
		return
	}
	for _, job := range jobs {
		id, err := strconv.ParseInt(job, 10, 64)
		if err != nil {
			continue
		}
		sub, err := w.repo.Get(ctx, id)
		if err != nil || sub.Status != StatusProcessing {
			continue
		}
		retries, err := w.repo.IncrementRetry(ctx, id)
		if err != nil {
			log.Printf("[reclaimer] increment retry failed for job %s: %v", job, err)
			continue
		}
		if retries > MaxSubmissionRetries {
			w.fail(ctx, 0, id, errors.New("visibility timeout exceeded"))
			continue
		}
		if err := w.repo.MarkStatus(ctx, id, StatusPending); err != nil {
			log.Printf("[reclaimer] reset job %s failed: %v", job, err)
		}
	}
	if len(jobs) > 0 {
		log.Printf("[reclaimer] requeued %d expired jobs", len(jobs))
	}
}
