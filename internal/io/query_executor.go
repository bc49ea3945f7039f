package io

import (
	"context"
	"runtime"
	"sync"

	"github.com/ecopia-map/globe_renderer/internal/dataset"
)

// Runs a batch of tier queries. Results are returned in the order of the units.
type QueryExecutor interface {
	Execute(ctx context.Context, db dataset.Database, units []*WorkUnit) ([]*dataset.QueryResult, error)
}

// Runs the queries one after the other on the calling goroutine
type SequentialExecutor struct{}

func (e SequentialExecutor) Execute(ctx context.Context, db dataset.Database, units []*WorkUnit) ([]*dataset.QueryResult, error) {
	consumer := NewStandardConsumer(ctx, db)
	results := make([]*dataset.QueryResult, len(units))
	for i, unit := range units {
		res, err := consumer.doWork(unit)
		if err != nil {
			return nil, err
		}
		results[i] = res.Result
	}
	return results, nil
}

// Runs the queries on a pool of consumers fed by a producer. The results are reduced back into unit order,
// so callers observe the same ordering as with SequentialExecutor.
type ParallelExecutor struct {
	Workers int
}

func (e ParallelExecutor) Execute(ctx context.Context, db dataset.Database, units []*WorkUnit) ([]*dataset.QueryResult, error) {
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(units) {
		workers = len(units)
	}

	for i, unit := range units {
		unit.Order = i
	}

	workChannel := make(chan *WorkUnit, len(units))
	resultChannel := make(chan *WorkResult, len(units))
	errorChannel := make(chan error, workers)

	var wg sync.WaitGroup
	wg.Add(1)
	go NewStandardProducer().Produce(workChannel, &wg, units)

	consumer := NewStandardConsumer(ctx, db)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go consumer.Consume(workChannel, resultChannel, errorChannel, &wg)
	}
	wg.Wait()
	close(resultChannel)
	close(errorChannel)

	if err, ok := <-errorChannel; ok {
		return nil, err
	}

	results := make([]*dataset.QueryResult, len(units))
	for res := range resultChannel {
		results[res.Unit.Order] = res.Result
	}
	return results, nil
}
