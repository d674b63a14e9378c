package fastpath

// WindowBuffer accumulates the most recent addresses of one stream in a
// fixed-capacity ring, the window shape ProcessIOCycle expects. The calling
// I/O layer owns one buffer per stream, observes every address as it is
// requested, and materializes a window whenever it wants a decision.
//
// Like the kernel, a buffer is single-writer state with no locking inside.
type WindowBuffer struct {
	buf  [MaxWindow]uint64
	next int // ring write position
	n    int // filled length, saturates at MaxWindow
}

// Observe records one address, overwriting the oldest once the ring is full.
func (w *WindowBuffer) Observe(lba uint64) {
	w.buf[w.next] = lba
	w.next++
	if w.next == MaxWindow {
		w.next = 0
	}
	if w.n < MaxWindow {
		w.n++
	}
}

// Len reports how many addresses are buffered, at most MaxWindow.
func (w *WindowBuffer) Len() int { return w.n }

// Window appends the buffered addresses to dst in arrival order (oldest
// first) and returns the extended slice. With a dst of capacity MaxWindow
// the call does not allocate:
//
//	var scratch [MaxWindow]uint64
//	window := buf.Window(scratch[:0])
func (w *WindowBuffer) Window(dst []uint64) []uint64 {
	if w.n < MaxWindow {
		return append(dst, w.buf[:w.n]...)
	}
	dst = append(dst, w.buf[w.next:]...)
	return append(dst, w.buf[:w.next]...)
}

// Reset empties the buffer.
func (w *WindowBuffer) Reset() {
	w.next = 0
	w.n = 0
}
