package io

import (
	"context"
	"fmt"
	"sync"

	"github.com/golang/glog"

	"github.com/ecopia-map/globe_renderer/internal/dataset"
)

type StandardConsumer struct {
	ctx context.Context
	db  dataset.Database
}

func NewStandardConsumer(ctx context.Context, db dataset.Database) *StandardConsumer {
	return &StandardConsumer{ctx: ctx, db: db}
}

// Continually consumes WorkUnits submitted to a work channel, sending the query results to the result channel.
// Continues working until the work channel is closed or an error is raised. In this last case submits the error
// to the error channel before quitting.
func (c *StandardConsumer) Consume(workchan chan *WorkUnit, results chan *WorkResult, errchan chan error, waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()

	for work := range workchan {
		res, err := c.doWork(work)
		if err != nil {
			errchan <- err
			glog.Warningf("query worker stopped: %v", err)
			// keep draining so that the producer never blocks
			for range workchan {
			}
			return
		}
		results <- res
	}
}

func (c *StandardConsumer) doWork(work *WorkUnit) (*WorkResult, error) {
	res, err := c.db.Query(c.ctx, work.Bound, work.Types)
	if err != nil {
		return nil, fmt.Errorf("tier %d query: %w", work.Tier, err)
	}
	return &WorkResult{Unit: work, Result: res}, nil
}
