package io

import "sync"

type StandardProducer struct{}

func NewStandardProducer() *StandardProducer {
	return &StandardProducer{}
}

// Submits the WorkUnits to the provided work channel in order and closes it when all work is submitted
func (p *StandardProducer) Produce(work chan *WorkUnit, wg *sync.WaitGroup, units []*WorkUnit) {
	for _, unit := range units {
		work <- unit
	}
	close(work)
	wg.Done()
}
