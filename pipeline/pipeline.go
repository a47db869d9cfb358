package pipeline

import (
	"context"
	"fmt"
	"sync"

	multierror "github.com/hashicorp/go-multierror"
)

type workerParams[P Payload] struct {
	stage int

	inCh  <-chan P
	outCh chan<- P
	errCh chan<- error
}

func (p *workerParams[P]) StageIndex() int { return p.stage }

func (p *workerParams[P]) Input() <-chan P     { return p.inCh }
func (p *workerParams[P]) Output() chan<- P    { return p.outCh }
func (p *workerParams[P]) Error() chan<- error { return p.errCh }

// Pipeline wires a source, zero or more stages and a sink together. The
// output of stage i is the input of stage i+1.
type Pipeline[P Payload] struct {
	stages []StageRunner[P]
}

// New returns a pipeline whose payloads traverse each one of stages.
func New[P Payload](stages ...StageRunner[P]) *Pipeline[P] {
	return &Pipeline[P]{stages: stages}
}

// Process drains source through the pipeline stages into sink. It blocks
// until the source is exhausted, an error occurs or ctx expires, and
// returns every error emitted along the way.
//
// It is safe to call Process concurrently with different sources and sinks.
func (p *Pipeline[P]) Process(ctx context.Context, source Source[P], sink Sink[P]) error {
	var wg sync.WaitGroup
	pCtx, ctxCancelFn := context.WithCancel(ctx)

	stageCh := make([]chan P, len(p.stages)+1)
	errCh := make(chan error, len(p.stages)+2)
	for i := range stageCh {
		stageCh[i] = make(chan P)
	}

	for i := range p.stages {
		wg.Add(1)
		go func(stageIndex int) {
			p.stages[stageIndex].Run(pCtx, &workerParams[P]{
				stage: stageIndex,
				inCh:  stageCh[stageIndex],
				outCh: stageCh[stageIndex+1],
				errCh: errCh,
			})

			close(stageCh[stageIndex+1])
			wg.Done()
		}(i)
	}

	wg.Add(2)
	go func() {
		sourceWorker(pCtx, source, stageCh[0], errCh)
		close(stageCh[0])
		wg.Done()
	}()

	go func() {
		sinkWorker(pCtx, sink, stageCh[len(stageCh)-1], errCh)
		wg.Done()
	}()

	go func() {
		wg.Wait()
		close(errCh)
		ctxCancelFn()
	}()

	var err error
	for pErr := range errCh {
		err = multierror.Append(err, pErr)
		ctxCancelFn()
	}
	return err
}

func sourceWorker[P Payload](ctx context.Context, source Source[P], outCh chan<- P, errCh chan<- error) {
	for source.Next(ctx) {
		select {
		case outCh <- source.Payload():
		case <-ctx.Done():
			return
		}
	}

	if err := source.Error(); err != nil {
		maybeEmitError(fmt.Errorf("pipeline source: %w", err), errCh)
	}
}

func sinkWorker[P Payload](ctx context.Context, sink Sink[P], inCh <-chan P, errCh chan<- error) {
	for {
		select {
		case payload, ok := <-inCh:
			if !ok {
				return
			}

			if err := sink.Consume(ctx, payload); err != nil {
				maybeEmitError(fmt.Errorf("pipeline sink: %w", err), errCh)
				return
			}
			payload.MarkAsProcessed()
		case <-ctx.Done():
			return
		}
	}
}

func maybeEmitError(err error, errCh chan<- error) {
	select {
	case errCh <- err:
	default:
	}
}
