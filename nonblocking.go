package lumen

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
)

// defaultQueueLen is the number of pending lines the file worker buffers
// before lossy mode starts dropping (or blocking mode starts blocking).
const defaultQueueLen = 4096

var errWorkerStopped = errors.New("lumen: file worker stopped")

// fileWorker decouples log emission from file I/O. Writes are queued and
// drained by a single background goroutine. In lossy mode a full queue drops
// the line and counts it; otherwise Write blocks until there is room.
//
// fileWorker implements zapcore.WriteSyncer: Sync blocks until every line
// queued before it has reached the underlying writer.
type fileWorker struct {
	out   io.Writer
	lossy bool

	in      chan []byte
	flushCh chan chan struct{}
	quit    chan struct{}
	done    chan struct{}

	dropped  atomic.Uint64
	stopOnce sync.Once
}

func newFileWorker(out io.Writer, lossy bool, queueLen int) *fileWorker {
	if queueLen <= 0 {
		queueLen = defaultQueueLen
	}
	w := &fileWorker{
		out:     out,
		lossy:   lossy,
		in:      make(chan []byte, queueLen),
		flushCh: make(chan chan struct{}),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *fileWorker) run() {
	defer close(w.done)
	for {
		select {
		case buf := <-w.in:
			w.out.Write(buf) //nolint:errcheck // sink errors are not mediated here
		case ack := <-w.flushCh:
			w.drain()
			close(ack)
		case <-w.quit:
			w.drain()
			return
		}
	}
}

// drain writes everything currently queued.
func (w *fileWorker) drain() {
	for {
		select {
		case buf := <-w.in:
			w.out.Write(buf) //nolint:errcheck
		default:
			return
		}
	}
}

// Write queues p for the background goroutine. The buffer is copied because
// zap reuses it after Write returns.
func (w *fileWorker) Write(p []byte) (int, error) {
	buf := make([]byte, len(p))
	copy(buf, p)

	if w.lossy {
		select {
		case w.in <- buf:
		default:
			w.dropped.Add(1)
		}
		return len(p), nil
	}

	select {
	case w.in <- buf:
		return len(p), nil
	case <-w.done:
		return 0, errWorkerStopped
	}
}

// Sync blocks until all previously queued lines have been written.
func (w *fileWorker) Sync() error {
	ack := make(chan struct{})
	select {
	case w.flushCh <- ack:
		<-ack
	case <-w.done:
	}
	return nil
}

// Stop drains the queue, stops the goroutine, and closes the underlying
// writer. Safe to call more than once.
func (w *fileWorker) Stop() error {
	w.stopOnce.Do(func() { close(w.quit) })
	<-w.done

	if c, ok := w.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Dropped returns the number of lines lossy mode discarded.
func (w *fileWorker) Dropped() uint64 {
	return w.dropped.Load()
}
