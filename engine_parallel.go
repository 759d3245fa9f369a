package pyreview

import (
	"context"
	"runtime"
	"sync"

	"github.com/jward/pyreview/internal/findings"
)

// analysisJob is one (pass, file) unit of work. slot is the job's position
// in the result table, which fixes output order regardless of completion
// order.
type analysisJob struct {
	pass Pass
	path string
	slot int
}

// analyzeFilesParallel fans (pass, file) jobs out over a worker pool and
// reassembles results in pass-major, file-minor order, so output is
// identical to the serial path. Passes hold no mutable state, so one
// instance is safe to share across workers.
func (e *Engine) analyzeFilesParallel(ctx context.Context, paths []string) *findings.Collection {
	jobs := make([]analysisJob, 0, len(e.passes)*len(paths))
	for _, p := range e.passes {
		for _, path := range paths {
			jobs = append(jobs, analysisJob{pass: p, path: path, slot: len(jobs)})
		}
	}
	if len(jobs) == 0 {
		return findings.NewCollection()
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > len(jobs) {
		numWorkers = len(jobs)
	}
	e.logger.Debug("parallel analysis", "jobs", len(jobs), "workers", numWorkers)

	workCh := make(chan analysisJob)
	results := make([]*findings.Collection, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range workCh {
				// Each slot is written by exactly one worker.
				results[job.slot] = job.pass.Analyze(ctx, job.path)
			}
		}()
	}
	for _, job := range jobs {
		workCh <- job
	}
	close(workCh)
	wg.Wait()

	out := findings.NewCollection()
	for _, col := range results {
		out.Extend(col)
	}
	return out
}
