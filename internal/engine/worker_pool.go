package engine

import (
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/quantgrid/gridtrail-engine/pkg/config"
	"github.com/quantgrid/gridtrail-engine/pkg/types"
)

// Job is one independent backtest run: its own config, market map, and
// candle stream. Runs share no state (spec.md §5: "parallelism across
// independent runs is embarrassingly parallel; each run owns its state").
type Job struct {
	Label   string
	Cfg     *config.Config
	Markets map[string]types.Market
	Minutes []map[string]types.Candle
	LogDir  string
}

// Result is one completed Job's driver, tagged with the run ID the
// worker pool generated for it.
type Result struct {
	RunID  string
	Job    Job
	Driver *Driver
	Err    *EngineHaltError
}

// EngineHaltError carries the fatal condition (if any) a run halted on,
// keeping the result comparable/serializable without importing the
// errors package's pointer receiver type directly into call sites that
// only check "did it halt".
type EngineHaltError struct {
	Message string
}

func (e *EngineHaltError) Error() string { return e.Message }

// WorkerPool runs a fixed number of Jobs concurrently, each job getting a
// fresh Driver (and therefore a fresh, non-colliding metrics Collector)
// tagged with a google/uuid run ID. Grounded on the teacher's
// internal/backtest.WorkerPool channel/goroutine shape, generalized from
// one shared BacktestEngine constructor to one Driver per job.
type WorkerPool struct {
	workerCount int
	jobs        chan Job
	results     chan Result
	wg          sync.WaitGroup
}

// NewWorkerPool creates a pool sized to workerCount (or runtime.NumCPU()
// if <= 0) with jobBufferSize slots in each channel.
func NewWorkerPool(workerCount, jobBufferSize int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	return &WorkerPool{
		workerCount: workerCount,
		jobs:        make(chan Job, jobBufferSize),
		results:     make(chan Result, jobBufferSize),
	}
}

// Start launches the pool's workers.
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Stop closes the job queue, waits for in-flight jobs to drain, then
// closes the result channel.
func (wp *WorkerPool) Stop() {
	close(wp.jobs)
	wp.wg.Wait()
	close(wp.results)
}

// Submit enqueues a job. Safe to call only before Stop.
func (wp *WorkerPool) Submit(job Job) {
	wp.jobs <- job
}

// Results returns the channel completed runs are published to.
func (wp *WorkerPool) Results() <-chan Result {
	return wp.results
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for job := range wp.jobs {
		wp.results <- wp.run(job)
	}
}

func (wp *WorkerPool) run(job Job) Result {
	runID := uuid.NewString()
	driver := NewDriver(job.Markets, job.Cfg, nil, runID)

	for _, minute := range job.Minutes {
		if err := driver.StepMinute(minute); err != nil {
			return Result{RunID: runID, Job: job, Driver: driver, Err: &EngineHaltError{Message: err.Error()}}
		}
		if driver.Halted {
			break
		}
	}
	return Result{RunID: runID, Job: job, Driver: driver}
}
