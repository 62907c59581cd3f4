package jobs

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/timber/engine/core"
)

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrShutdown = errors.New("job system shut down")

// Job is a unit of work. OnComplete or OnFailure runs on the worker right
// after Run returns.
type Job struct {
	Name       string
	Run        func() error
	OnComplete func()
	OnFailure  func(err error)
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan Job
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan Job, channelSize),
	}
	js.start()
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				if err := job.Run(); err != nil {
					core.LogDebug("job '%s' failed: %s", job.Name, err.Error())
					if job.OnFailure != nil {
						job.OnFailure(err)
					}
				} else if job.OnComplete != nil {
					job.OnComplete()
				}
			}
		}()
	}
}

/**
 * @brief Queues a job, blocking while the queue is full.
 * @return ErrShutdown once Shutdown has been called.
 */
func (js *JobSystem) Submit(job Job) error {
	js.mu.RLock()
	defer js.mu.RUnlock()
	if js.closed {
		return ErrShutdown
	}
	js.jobQueue <- job
	return nil
}

/**
 * @brief Stops accepting jobs and waits for the queued ones to finish.
 */
func (js *JobSystem) Shutdown() error {
	js.mu.Lock()
	if js.closed {
		js.mu.Unlock()
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.mu.Unlock()
	js.wg.Wait()
	return nil
}

// RunAll runs every job on a fresh pool of workers and returns once all of
// them finished, joining their errors.
func RunAll(workers int, jobs []Job) error {
	if len(jobs) == 0 {
		return nil
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}
	js, err := NewJobSystem(workers, len(jobs))
	if err != nil {
		return err
	}

	var mu sync.Mutex
	var errs []error
	for _, j := range jobs {
		j := j
		onFailure := j.OnFailure
		j.OnFailure = func(err error) {
			mu.Lock()
			errs = append(errs, fmt.Errorf("%s: %w", j.Name, err))
			mu.Unlock()
			if onFailure != nil {
				onFailure(err)
			}
		}
		if err := js.Submit(j); err != nil {
			return err
		}
	}
	if err := js.Shutdown(); err != nil {
		return err
	}
	return errors.Join(errs...)
}
