package runner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"depeval/internal/aggregate"
	"depeval/internal/corpus"
	"depeval/internal/eval"
	"depeval/internal/extract"
	"depeval/internal/query"
)

// job is one instance queued for grading together with its collected
// response attempts. Instances with no attempts grade as missing.
type job struct {
	instance query.Instance
	attempts []string
	usage    *eval.Usage
}

// scoreAll fans jobs out to a worker pool. Each worker owns a private
// aggregator; graded results flow through a single sink goroutine so the
// result stream and observer see one write at a time. The merged
// aggregator is independent of scheduling order.
func scoreAll(ctx context.Context, store *corpus.Store, jobs []job, workers int, sink func(eval.Result) error) (*aggregate.Aggregator, error) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) && len(jobs) > 0 {
		workers = len(jobs)
	}

	results := make(chan eval.Result, workers)
	sinkDone := make(chan error, 1)
	go func() {
		var sinkErr error
		for result := range results {
			if sinkErr != nil {
				continue
			}
			sinkErr = sink(result)
		}
		sinkDone <- sinkErr
	}()

	group, groupCtx := errgroup.WithContext(ctx)
	jobCh := make(chan job)
	group.Go(func() error {
		defer close(jobCh)
		for _, item := range jobs {
			select {
			case jobCh <- item:
			case <-groupCtx.Done():
				return groupCtx.Err()
			}
		}
		return nil
	})

	partials := make([]*aggregate.Aggregator, workers)
	for i := 0; i < workers; i++ {
		aggregator := aggregate.New()
		partials[i] = aggregator
		group.Go(func() error {
			for item := range jobCh {
				result := scoreJob(store, item)
				aggregator.Add(result)
				select {
				case results <- result:
				case <-groupCtx.Done():
					return groupCtx.Err()
				}
			}
			return nil
		})
	}

	workerErr := group.Wait()
	close(results)
	sinkErr := <-sinkDone
	if workerErr != nil {
		return nil, workerErr
	}
	if sinkErr != nil {
		return nil, sinkErr
	}

	merged := aggregate.New()
	for _, partial := range partials {
		merged.Merge(partial)
	}
	return merged, nil
}

// scoreJob grades one instance. Extraction failures become scored results,
// never errors; nothing here can abort the batch.
func scoreJob(store *corpus.Store, item job) eval.Result {
	record, _ := store.Scan(item.instance.Language, item.instance.ProgramID)
	prediction, failure := extract.ExtractAttempts(item.attempts, item.instance, record)
	var result eval.Result
	if failure != nil {
		result = eval.ScoreFailure(item.instance, failure)
	} else {
		result = eval.Score(item.instance, prediction)
	}
	result.Usage = item.usage
	return result
}
