package game

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum number of dispatch groups worth handing to the pool.
// Below this, the kernel runs inline on the calling goroutine.
const parallelThreshold = 4

// kernel processes items [start, end).
type kernel func(start, end int)

// workChunk represents a range of items for a worker to process.
type workChunk struct {
	start, end int
	fn         kernel
}

// workerPool runs kernels over chunked index ranges on persistent goroutines.
// dispatch returns only once every chunk has completed, so consecutive dispatches
// are separated by a full barrier.
type workerPool struct {
	numWorkers int

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// newWorkerPool creates a pool. numWorkers <= 0 uses GOMAXPROCS.
func newWorkerPool(numWorkers int) *workerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	return &workerPool{numWorkers: numWorkers}
}

// start launches persistent worker goroutines.
func (p *workerPool) start() {
	if p.running || p.numWorkers < 2 {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *workerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// dispatch runs fn over [0,n) split into chunks whose boundaries fall on multiples
// of grain, and blocks until all chunks are done.
func (p *workerPool) dispatch(n, grain int, fn kernel) {
	if n <= 0 {
		return
	}
	if grain < 1 {
		grain = 1
	}

	groups := (n + grain - 1) / grain
	if groups < parallelThreshold || p.numWorkers < 2 {
		fn(0, n)
		return
	}

	if !p.running {
		p.start()
	}

	groupsPerChunk := (groups + p.numWorkers - 1) / p.numWorkers
	chunkSize := groupsPerChunk * grain

	chunksDispatched := 0
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		p.workChan <- workChunk{start: start, end: end, fn: fn}
		chunksDispatched++
	}

	// Barrier: wait for all chunks to complete
	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
}
