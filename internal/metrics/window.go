package metrics

// HistoryLimit bounds the per-step history a metric keeps for graphs.
// Run-level values are accumulated separately and cover every step.
const HistoryLimit = 1024

// window keeps the most recent limit samples, oldest first. It grows to
// twice the limit before shifting, so pushes are amortised O(1).
type window struct {
	limit int
	buf   []float64
}

func newWindow(limit int) window {
	return window{limit: limit}
}

func (w *window) push(v float64) {
	if w.limit > 0 && len(w.buf) >= 2*w.limit {
		n := copy(w.buf, w.buf[len(w.buf)-w.limit+1:])
		w.buf = w.buf[:n]
	}
	w.buf = append(w.buf, v)
}

func (w *window) values() []float64 {
	if w.limit > 0 && len(w.buf) > w.limit {
		return w.buf[len(w.buf)-w.limit:]
	}
	return w.buf
}

func (w *window) reset() { w.buf = w.buf[:0] }
