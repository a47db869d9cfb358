package pipeline

import "context"

// Payload is implemented by values that can be sent through a pipeline.
type Payload interface {
	// MarkAsProcessed is invoked by the pipeline when the Payload either
	// reaches the pipeline sink or gets discarded by one of the stages.
	MarkAsProcessed()
}

// Processor is implemented by types that can process payloads as part of a
// pipeline stage.
type Processor[P Payload] interface {
	// Process operates on the input payload and returns the payload to
	// forward to the next stage. Returning ok == false drops the payload.
	Process(ctx context.Context, in P) (out P, ok bool, err error)
}

// ProcessorFunc is an adapter to allow the use of plain functions as
// Processor instances.
type ProcessorFunc[P Payload] func(context.Context, P) (P, bool, error)

// Process calls f(ctx, in).
func (f ProcessorFunc[P]) Process(ctx context.Context, in P) (P, bool, error) {
	return f(ctx, in)
}

// StageParams encapsulates the information required for executing a
// pipeline stage.
type StageParams[P Payload] interface {
	// StageIndex returns the position of this stage in the pipeline.
	StageIndex() int

	// Input returns a channel for reading the input payloads for a stage.
	Input() <-chan P

	// Output returns a channel for writing the output payloads for a stage.
	Output() chan<- P

	// Error returns a channel for writing errors that were encountered by
	// a stage while processing payloads.
	Error() chan<- error
}

// StageRunner is implemented by types that can be strung together to form
// a multi-stage pipeline.
//
// Calls to Run are expected to block until the stage input channel is
// closed, the provided context expires or an error occurs while processing
// payloads.
type StageRunner[P Payload] interface {
	Run(context.Context, StageParams[P])
}

// Source is implemented by types that generate the payloads fed into a
// Pipeline.
type Source[P Payload] interface {
	// Next fetches the next payload from the source. If no more items are
	// available or an error occurs, calls to Next return false.
	Next(context.Context) bool

	// Payload returns the payload fetched by the last call to Next.
	Payload() P

	// Error return the last error observed by the source.
	Error() error
}

// Sink is implemented by types that can operate as the tail of a pipeline.
type Sink[P Payload] interface {
	Consume(context.Context, P) error
}

// SliceSource emits the payloads of a slice in order.
type SliceSource[P Payload] struct {
	items []P
	index int
}

// NewSliceSource returns a source over items.
func NewSliceSource[P Payload](items []P) *SliceSource[P] {
	return &SliceSource[P]{items: items}
}

func (s *SliceSource[P]) Next(context.Context) bool {
	if s.index == len(s.items) {
		return false
	}
	s.index++
	return true
}

func (s *SliceSource[P]) Payload() P { return s.items[s.index-1] }

func (s *SliceSource[P]) Error() error { return nil }

// SinkFunc adapts a function to the Sink interface.
type SinkFunc[P Payload] func(context.Context, P) error

func (f SinkFunc[P]) Consume(ctx context.Context, p P) error { return f(ctx, p) }
