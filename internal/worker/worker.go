package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/internal/job"
	"github.com/akolanti/PdfQA/internal/metrics"
	"github.com/akolanti/PdfQA/internal/rag"
	"github.com/akolanti/PdfQA/pkg/logger_i"
)

var (
	_jobService        *job.Service
	stopWorkerChannel  chan bool
	workerWaitGroup    *sync.WaitGroup
	dispatcherChannel  chan bool
	currentWorkerCount int64
	logger             = logger_i.NewLogger("WorkerPool")
	_ragService        rag.Service
	minWorkerCount     int64 = config.MinWorkerCount
	maxWorkerCount     int64 = config.MaxWorkerCount
	idleWorkerTimeout        = config.IdleWorkerTimeout
	jobTimeout               = config.JobTimeout
)

func InitServices(jobService *job.Service, ragService rag.Service) {
	_jobService = jobService
	_ragService = ragService
	dispatcherChannel = jobService.DispatcherChannel
}

// InitWorkerPool starts the dispatcher with its minimum set of workers.
// Closing stopWorkerChan retires every worker and the dispatcher.
func InitWorkerPool(settings config.WorkerSettings, stopWorkerChan chan bool, waitGroup *sync.WaitGroup) {
	if settings.Min > 0 {
		atomic.StoreInt64(&minWorkerCount, settings.Min)
	}
	if settings.Max > 0 {
		atomic.StoreInt64(&maxWorkerCount, settings.Max)
	}
	if settings.IdleTimeout > 0 {
		idleWorkerTimeout = settings.IdleTimeout
	}
	if settings.JobTimeout > 0 {
		jobTimeout = settings.JobTimeout
	}
	stopWorkerChannel = stopWorkerChan
	workerWaitGroup = waitGroup
	logger = logger_i.NewLogger("WorkerPool")
	logger.Info("Initializing worker pool", "min", minWorkerCount, "max", maxWorkerCount)

	initial := max(atomic.LoadInt64(&minWorkerCount), 1)
	for i := int64(0); i < initial; i++ {
		createWorker()
	}
	go dispatcher()
}

func dispatcher() {
	logger.Info("Dispatcher started")
	for {
		select {
		case <-dispatcherChannel:
			if atomic.LoadInt64(&currentWorkerCount) < atomic.LoadInt64(&maxWorkerCount) {
				logger.Info("Creating new worker", "WorkerCount", atomic.LoadInt64(&currentWorkerCount))
				createWorker()
			}
		case <-stopWorkerChannel:
			logger.Info("Dispatcher stopped")
			return
		}
	}
}

func createWorker() {
	workerWaitGroup.Add(1)
	atomic.AddInt64(&currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	go worker()
	logger.Debug("Created new worker")
}

func worker() {
	for {
		select {
		case <-stopWorkerChannel:
			removeWorker("Stop worker signal received")
			return
		default:
		}

		select {
		case currentJob := <-_jobService.JobChannel:
			metrics.DecrementJobsInQueue()
			executeJob(currentJob)

		case <-stopWorkerChannel:
			removeWorker("Stop worker signal received")
			return

		case <-time.After(idleWorkerTimeout):
			// Worker was idle for too long; retire unless the pool is at its floor
			if retireIdle() {
				return
			}
		}
	}
}

func retireIdle() bool {
	for {
		n := atomic.LoadInt64(&currentWorkerCount)
		if n <= atomic.LoadInt64(&minWorkerCount) {
			return false
		}
		if atomic.CompareAndSwapInt64(&currentWorkerCount, n, n-1) {
			workerWaitGroup.Done()
			metrics.DecrementActiveWorkerCount()
			logger.Info("Idle worker timeout - Removed worker", "workerCount", n-1)
			return true
		}
	}
}
