package streaming

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"photo-gallery/internal/logging"
)

var (
	// ErrWriteTimeout means a single write blocked longer than WriteTimeout,
	// usually because the client reads too slowly.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone means the request context was canceled mid-stream.
	ErrClientGone = errors.New("client disconnected")

	// ErrStreamCanceled means the writer was closed or went idle.
	ErrStreamCanceled = errors.New("stream canceled")
)

// WriterConfig bounds how long a response body may stall.
type WriterConfig struct {
	// WriteTimeout is the maximum time to wait for a single write.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum time between successful writes (0 = off).
	IdleTimeout time.Duration
	// ChunkSize splits large writes and flushes between them (0 = off).
	ChunkSize int
}

// DefaultWriterConfig suits image-sized bodies.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ChunkSize:    64 * 1024,
	}
}

// TimeoutWriter wraps an http.ResponseWriter so that a stalled or vanished
// client cannot pin the handler goroutine. Each write also carries a
// connection write deadline when the ResponseWriter supports one, and Close
// waits for an abandoned write to return, so nothing touches the
// ResponseWriter after the handler is done with it.
type TimeoutWriter struct {
	w        http.ResponseWriter
	rc       *http.ResponseController
	flusher  http.Flusher
	ctx      context.Context
	cancel   context.CancelFunc
	config   WriterConfig
	inflight sync.WaitGroup

	mu        sync.Mutex
	started   time.Time
	lastWrite time.Time
	written   int64
	closed    bool
}

// NewTimeoutWriter starts the idle watchdog; Close must be called to stop it.
func NewTimeoutWriter(ctx context.Context, w http.ResponseWriter, config WriterConfig) *TimeoutWriter {
	writerCtx, cancel := context.WithCancel(ctx)
	now := time.Now()

	tw := &TimeoutWriter{
		w:         w,
		rc:        http.NewResponseController(w),
		ctx:       writerCtx,
		cancel:    cancel,
		config:    config,
		started:   now,
		lastWrite: now,
	}
	if flusher, ok := w.(http.Flusher); ok {
		tw.flusher = flusher
	}

	if config.IdleTimeout > 0 {
		go tw.watchIdle()
	}
	return tw
}

// Write implements io.Writer.
func (tw *TimeoutWriter) Write(p []byte) (int, error) {
	tw.mu.Lock()
	closed := tw.closed
	tw.mu.Unlock()
	if closed {
		return 0, ErrStreamCanceled
	}

	total := 0
	for len(p) > 0 {
		if err := tw.ctx.Err(); err != nil {
			return total, tw.contextError()
		}

		chunk := p
		if size := tw.config.ChunkSize; size > 0 && len(chunk) > size {
			chunk = chunk[:size]
		}

		n, err := tw.writeOnce(chunk)
		total += n
		if err != nil {
			return total, err
		}
		p = p[len(chunk):]

		if len(p) > 0 && tw.flusher != nil {
			tw.flusher.Flush()
		}
	}
	return total, nil
}

func (tw *TimeoutWriter) writeOnce(p []byte) (int, error) {
	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)

	// Unblocks the underlying conn write at the same moment the timer fires.
	// Writers without deadline support return http.ErrNotSupported.
	_ = tw.rc.SetWriteDeadline(time.Now().Add(tw.config.WriteTimeout))

	tw.inflight.Add(1)
	go func() {
		defer tw.inflight.Done()
		n, err := tw.w.Write(p)
		done <- result{n, err}
	}()

	timer := time.NewTimer(tw.config.WriteTimeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.n > 0 {
			tw.mu.Lock()
			tw.lastWrite = time.Now()
			tw.written += int64(res.n)
			tw.mu.Unlock()
		}
		return res.n, res.err
	case <-timer.C:
		tw.cancel()
		return 0, ErrWriteTimeout
	case <-tw.ctx.Done():
		return 0, tw.contextError()
	}
}

func (tw *TimeoutWriter) watchIdle() {
	ticker := time.NewTicker(tw.config.IdleTimeout / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tw.mu.Lock()
			idle := time.Since(tw.lastWrite)
			tw.mu.Unlock()

			if idle > tw.config.IdleTimeout {
				logging.Warn("Stream idle timeout exceeded: %v", idle)
				tw.cancel()
				return
			}
		case <-tw.ctx.Done():
			return
		}
	}
}

func (tw *TimeoutWriter) contextError() error {
	if errors.Is(tw.ctx.Err(), context.Canceled) {
		tw.mu.Lock()
		closed := tw.closed
		tw.mu.Unlock()
		if !closed {
			return ErrClientGone
		}
	}
	return ErrStreamCanceled
}

// Close stops the watchdog and waits for any write still blocked in the
// ResponseWriter. Later writes fail with ErrStreamCanceled.
func (tw *TimeoutWriter) Close() error {
	tw.mu.Lock()
	alreadyClosed := tw.closed
	if !tw.closed {
		tw.closed = true
		tw.cancel()
	}
	tw.mu.Unlock()

	if alreadyClosed {
		return nil
	}
	tw.inflight.Wait()
	_ = tw.rc.SetWriteDeadline(time.Time{})
	return nil
}

// Stats returns the bytes written so far and the time since creation.
func (tw *TimeoutWriter) Stats() (int64, time.Duration) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.written, time.Since(tw.started)
}

// Copy streams r into w through a TimeoutWriter and returns the number of
// bytes delivered.
func Copy(ctx context.Context, w http.ResponseWriter, r io.Reader, config WriterConfig) (int64, error) {
	tw := NewTimeoutWriter(ctx, w, config)
	defer tw.Close()

	_, err := io.Copy(tw, r)

	written, elapsed := tw.Stats()
	logging.Debug("Stream completed: %d bytes in %v", written, elapsed)
	return written, err
}
