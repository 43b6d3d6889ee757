package systems

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/prism/engine/containers"
	"github.com/spaghettifunk/prism/engine/core"
)

var (
	ErrNoWorkers           = errors.New("attempting to create worker pool with less than 1 worker")
	ErrNegativeChannelSize = errors.New("attempting to create worker pool with a negative channel size")
	ErrJobQueueFull        = errors.New("job queue is full")
	ErrJobSystemStopped    = errors.New("job system is shut down")
)

/**
 * @brief A unit of CPU work. Run executes on a worker goroutine; exactly one
 * of OnComplete and OnFailure is then invoked from Update, on the goroutine
 * that drives the frame loop.
 */
type JobTask struct {
	Name       string
	Run        func() (interface{}, error)
	OnComplete func(result interface{})
	OnFailure  func(err error)
}

type jobResult struct {
	task   JobTask
	result interface{}
	err    error
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup

	// guards stopped and serialises sends against the close in Shutdown
	submitMu sync.Mutex
	stopped  bool

	resultMu sync.Mutex
	results  *containers.RingQueue[jobResult]
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
		jobQueue:   make(chan JobTask, channelSize),
		results:    containers.NewGrowableRingQueue[jobResult](channelSize + numWorkers),
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
				result, err := js.run(job)
				if err != nil {
					core.LogError("job '%s' failed: %s", job.Name, err)
				}
				js.resultMu.Lock()
				_ = js.results.Enqueue(jobResult{task: job, result: result, err: err})
				js.resultMu.Unlock()
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job '%s' panicked: %v", job.Name, r)
		}
	}()
	if job.Run == nil {
		return nil, nil
	}
	return job.Run()
}

/**
 * @brief Shuts the job system down. Queued jobs still run; their callbacks
 * fire on the next Update.
 */
func (js *JobSystem) Shutdown() error {
	js.submitMu.Lock()
	if js.stopped {
		js.submitMu.Unlock()
		return nil
	}
	js.stopped = true
	close(js.jobQueue)
	js.submitMu.Unlock()

	js.wg.Wait()
	return nil
}

/**
 * @brief Updates the job system. Should happen once an update cycle.
 * Runs the callbacks of every job finished since the previous call and
 * returns how many there were.
 */
func (js *JobSystem) Update() int {
	js.resultMu.Lock()
	done := js.results.Drain()
	js.resultMu.Unlock()

	for _, r := range done {
		if r.err != nil {
			if r.task.OnFailure != nil {
				r.task.OnFailure(r.err)
			}
			continue
		}
		if r.task.OnComplete != nil {
			r.task.OnComplete(r.result)
		}
	}
	return len(done)
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the queue is full.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	js.submitMu.Lock()
	defer js.submitMu.Unlock()
	if js.stopped {
		return fmt.Errorf("submit '%s': %w", jt.Name, ErrJobSystemStopped)
	}
	js.jobQueue <- jt
	return nil
}

// TrySubmit queues the job only if there is room for it right now.
func (js *JobSystem) TrySubmit(jt JobTask) error {
	js.submitMu.Lock()
	defer js.submitMu.Unlock()
	if js.stopped {
		return fmt.Errorf("submit '%s': %w", jt.Name, ErrJobSystemStopped)
	}
	select {
	case js.jobQueue <- jt:
		return nil
	default:
		return fmt.Errorf("submit '%s': %w", jt.Name, ErrJobQueueFull)
	}
}
