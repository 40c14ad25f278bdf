// Package batch runs WEM-to-OGG conversions across a worker pool, adapted
// from the teacher's GPK bulk-extraction worker pool
// (gpk_extraction.go's UnpackAll/extractionWorker) onto WEM conversion
// jobs instead of GPK archive entries.
package batch

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/wwiseaudio/wwtools/internal/output"
	"github.com/wwiseaudio/wwtools/internal/wem"
	"github.com/wwiseaudio/wwtools"
)

// Job is one WEM buffer to convert and the path its OGG output should be
// written to.
type Job struct {
	ID      uint32
	Data    []byte
	OutPath string
	Index   int
	Total   int
}

// Result reports the outcome of converting and writing a single Job.
type Result struct {
	Job Job
	Err error
}

// Convert runs every job through wwtools.WemToOgg and writes the result to
// job.OutPath, spreading work across a bounded worker pool the same way
// the teacher's UnpackAll spreads GPK entry extraction: at most
// min(len(jobs), NumCPU*2, 10) workers, a buffered job channel, and a
// buffered result channel that is drained into the returned slice once
// every worker has finished.
func Convert(jobs []Job, opts wem.Options, write func(path string, data []byte) error) []Result {
	if len(jobs) == 0 {
		return nil
	}
	maxWorkers := min(len(jobs), runtime.NumCPU()*2, 10)
	output.Debugf("    Using %d workers for converting %d WEMs\n", maxWorkers, len(jobs))

	jobCh := make(chan Job, len(jobs))
	resultCh := make(chan Result, len(jobs))

	var wg sync.WaitGroup
	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			worker(workerID, jobCh, resultCh, opts, write)
		}(w)
	}

	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)

	wg.Wait()
	close(resultCh)

	results := make([]Result, 0, len(jobs))
	for r := range resultCh {
		results = append(results, r)
	}
	return results
}

func worker(workerID int, jobs <-chan Job, results chan<- Result, opts wem.Options, write func(path string, data []byte) error) {
	for job := range jobs {
		output.Progressf("    [worker %d] [%d/%d] %s\n", workerID, job.Index+1, job.Total, job.OutPath)

		out, err := wwtools.WemToOgg(job.Data, opts)
		if err != nil {
			results <- Result{Job: job, Err: fmt.Errorf("converting: %w", err)}
			continue
		}
		if err := write(job.OutPath, out); err != nil {
			results <- Result{Job: job, Err: fmt.Errorf("writing: %w", err)}
			continue
		}
		results <- Result{Job: job}
	}
}
