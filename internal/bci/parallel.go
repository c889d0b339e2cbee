package bci

import (
	"runtime"
	"sync"
)

// QueryJob is one overlap query in a batch.
type QueryJob struct {
	Seq    int
	Contig string
	Start  int32
	End    int32
}

// QueryResult holds the records collected for one job.
type QueryResult[T Feature] struct {
	Job     QueryJob
	Records []T
	Err     error
}

// ParallelQuery runs each job on its own reader clone using a pool of
// workers and calls fn for each result in submission order. Clones own
// independent cursors, so queries proceed concurrently; the shared index is
// loaded once, whichever worker gets there first. If workers is 0,
// runtime.NumCPU() is used.
func ParallelQuery[T Feature](r *Reader[T], jobs []QueryJob, workers int, fn func(QueryResult[T]) error) error {
	if len(jobs) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	items := make(chan QueryJob)
	results := make(chan QueryResult[T], 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for job := range items {
				results <- runQuery(r, job)
			}
		}()
	}

	go func() {
		for i, job := range jobs {
			job.Seq = i
			items <- job
		}
		close(items)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Emit results in submission order, buffering any that arrive early.
	pending := make(map[int]QueryResult[T])
	nextSeq := 0
	for res := range results {
		pending[res.Job.Seq] = res
		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}
	return nil
}

func runQuery[T Feature](r *Reader[T], job QueryJob) QueryResult[T] {
	res := QueryResult[T]{Job: job}
	it, err := r.Query(job.Contig, job.Start, job.End)
	if err != nil {
		res.Err = err
		return res
	}
	for it.Next() {
		res.Records = append(res.Records, it.Record())
	}
	res.Err = it.Err()
	if cerr := it.Close(); res.Err == nil {
		res.Err = cerr
	}
	return res
}
