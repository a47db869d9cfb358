package pipeline

import (
	"context"
	"fmt"
	"sync"
)

type fifo[P Payload] struct {
	proc Processor[P]
}

// FIFO returns a StageRunner that processes incoming payloads one at a time
// in arrival order and emits each output to the next stage.
func FIFO[P Payload](proc Processor[P]) StageRunner[P] {
	return &fifo[P]{proc: proc}
}

func (r *fifo[P]) Run(ctx context.Context, params StageParams[P]) {
	for {
		select {
		case <-ctx.Done():
			return
		case payloadIn, ok := <-params.Input():
			if !ok {
				return
			}

			payloadOut, keep, err := r.proc.Process(ctx, payloadIn)
			if err != nil {
				maybeEmitError(fmt.Errorf("pipeline stage %d: %w", params.StageIndex(), err), params.Error())
				return
			}
			if !keep {
				payloadIn.MarkAsProcessed()
				continue
			}

			select {
			case <-ctx.Done():
				return
			case params.Output() <- payloadOut:
			}
		}
	}
}

type fixedWorkerPool[P Payload] struct {
	fifos []StageRunner[P]
}

// FixedWorkerPool returns a StageRunner that runs numWorkers FIFO workers
// reading from the same input. Output order is not preserved.
func FixedWorkerPool[P Payload](proc Processor[P], numWorkers int) StageRunner[P] {
	if numWorkers <= 0 {
		panic("FixedWorkerPool: numWorkers must be > 0")
	}
	fifos := make([]StageRunner[P], numWorkers)
	for i := range numWorkers {
		fifos[i] = FIFO(proc)
	}
	return &fixedWorkerPool[P]{fifos: fifos}
}

func (p *fixedWorkerPool[P]) Run(ctx context.Context, params StageParams[P]) {
	var wg sync.WaitGroup
	for _, f := range p.fifos {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Run(ctx, params)
		}()
	}
	wg.Wait()
}
