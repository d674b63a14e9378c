package fastpath

import (
	"fmt"

	"github.com/google/uuid"
)

// Dispatcher fans decisions out across N independent streams. It is the
// batched-dispatch layer for multi-queue callers (an NVMe queue pair, a
// market feed, an asset lane each): every stream gets its own kernel and its
// own window buffer, so each stream's state evolves exactly as it would on a
// standalone kernel. The dispatcher adds routing and bookkeeping, never
// cross-stream coupling.
//
// Ownership stays single-writer per stream. Callers that drive different
// streams from different goroutines must partition the stream indexes, not
// share them.
type Dispatcher struct {
	trace   uuid.UUID
	kernels []*Kernel
	windows []WindowBuffer
}

// NewDispatcher builds streams independent kernels from one shared
// configuration. Each dispatcher gets a fresh trace identity so concurrent
// dispatchers can be told apart in logs and stats.
func NewDispatcher(streams int, cfg KernelConfig) (*Dispatcher, error) {
	if streams < 1 {
		return nil, fmt.Errorf("dispatcher needs at least 1 stream, got %d", streams)
	}
	d := &Dispatcher{
		trace:   uuid.New(),
		kernels: make([]*Kernel, streams),
		windows: make([]WindowBuffer, streams),
	}
	for i := range d.kernels {
		k, err := NewKernel(cfg)
		if err != nil {
			return nil, err
		}
		d.kernels[i] = k
	}
	return d, nil
}

// TraceID identifies this dispatcher when several run in one process.
func (d *Dispatcher) TraceID() uuid.UUID { return d.trace }

// Streams reports the number of managed streams.
func (d *Dispatcher) Streams() int { return len(d.kernels) }

func (d *Dispatcher) checkStream(stream int) error {
	if stream < 0 || stream >= len(d.kernels) {
		return fmt.Errorf("stream %d out of range [0, %d)", stream, len(d.kernels))
	}
	return nil
}

// Observe records one address on a stream's window buffer.
func (d *Dispatcher) Observe(stream int, lba uint64) error {
	if err := d.checkStream(stream); err != nil {
		return err
	}
	d.windows[stream].Observe(lba)
	return nil
}

// Decide runs one decision cycle for a stream over its buffered window.
func (d *Dispatcher) Decide(stream int) (bool, error) {
	if err := d.checkStream(stream); err != nil {
		return false, err
	}
	var scratch [MaxWindow]uint64
	window := d.windows[stream].Window(scratch[:0])
	if len(window) == 0 {
		return false, fmt.Errorf(
			"stream %d has no observed addresses yet\n"+
				"  Action: Observe at least one address before requesting a decision",
			stream)
	}
	return d.kernels[stream].ProcessIOCycle(window)
}

// DecideAll runs one cycle on every stream in index order and appends the
// decisions to dst. The first stream without observations aborts the batch.
func (d *Dispatcher) DecideAll(dst []bool) ([]bool, error) {
	for i := range d.kernels {
		decision, err := d.Decide(i)
		if err != nil {
			return dst, err
		}
		dst = append(dst, decision)
	}
	return dst, nil
}

// Snapshot captures one stream's kernel state.
func (d *Dispatcher) Snapshot(stream int) (KernelSnapshot, error) {
	if err := d.checkStream(stream); err != nil {
		return KernelSnapshot{}, err
	}
	return d.kernels[stream].Snapshot(), nil
}

// DispatchStats aggregates the per-stream counters of one dispatcher.
type DispatchStats struct {
	TraceID    string
	Streams    int
	Cycles     uint64
	Prefetches uint64
	Ratio      float64
}

// Stats sums counters across all streams.
func (d *Dispatcher) Stats() DispatchStats {
	st := DispatchStats{TraceID: d.trace.String(), Streams: len(d.kernels)}
	for _, k := range d.kernels {
		st.Cycles += k.Cycles()
		st.Prefetches += k.Prefetches()
	}
	if st.Cycles > 0 {
		st.Ratio = float64(st.Prefetches) / float64(st.Cycles)
	}
	return st
}
