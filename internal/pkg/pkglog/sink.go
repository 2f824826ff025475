package pkglog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Sink is a destination for serialized log lines. WriteLine appends exactly
// one newline-terminated JSON document.
type Sink interface {
	WriteLine(line []byte) error
	Close() error
}

// Observer receives counters about the pipeline itself. Implementations must
// be safe for concurrent use. All methods are optional side channels; the
// pipeline works with a nil Observer.
type Observer interface {
	RecordEmitted(level, component string)
	RecordDropped(component string)
	SinkWriteError(component string)
	SerializationFallback()
}

// fileSink writes lines to a rotating file. Rotation thresholds are delegated
// to lumberjack; it swaps segments atomically with respect to its callers, and
// the async drain loop above this sink guarantees a single writer.
type fileSink struct {
	out *lumberjack.Logger
}

func newFileSink(path string, maxSizeMB, maxBackups int) (*fileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}

	return &fileSink{
		out: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
		},
	}, nil
}

func (s *fileSink) WriteLine(line []byte) error {
	_, err := s.out.Write(line)
	return err
}

func (s *fileSink) Close() error {
	return s.out.Close()
}

// consoleSink serializes writes to a shared stream (stdout). All console
// writers share one mutex so interleaved lines stay whole.
type consoleSink struct {
	mu  *sync.Mutex
	out *os.File
}

func (s *consoleSink) WriteLine(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.out.Write(line)
	return err
}

func (s *consoleSink) Close() error {
	return nil
}

// teeSink fans a line out to several sinks. The first error wins but every
// sink still sees the line.
type teeSink struct {
	sinks []Sink
}

func (s *teeSink) WriteLine(line []byte) error {
	var firstErr error
	for _, sink := range s.sinks {
		if err := sink.WriteLine(line); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *teeSink) Close() error {
	var firstErr error
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// asyncSink decouples producers from sink latency: WriteLine enqueues into a
// bounded channel and a background goroutine drains it. A full queue drops the
// record (counted) instead of blocking the producer. Write failures go to the
// fallback buffer and stderr, never back to the caller.
type asyncSink struct {
	component string
	dst       Sink
	queue     chan []byte
	done      chan struct{}
	fallback  *fallbackBuffer
	observer  Observer

	mu     sync.RWMutex
	closed bool
}

func newAsyncSink(component string, dst Sink, queueSize int, fb *fallbackBuffer, obs Observer) *asyncSink {
	if queueSize < 1 {
		queueSize = 1024
	}

	s := &asyncSink{
		component: component,
		dst:       dst,
		queue:     make(chan []byte, queueSize),
		done:      make(chan struct{}),
		fallback:  fb,
		observer:  obs,
	}
	go s.drain()

	return s
}

func (s *asyncSink) WriteLine(line []byte) error {
	// The line may be reused by the caller after WriteLine returns.
	buf := make([]byte, len(line))
	copy(buf, line)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil
	}

	select {
	case s.queue <- buf:
		return nil
	default:
		if s.observer != nil {
			s.observer.RecordDropped(s.component)
		}
		return nil
	}
}

func (s *asyncSink) drain() {
	defer close(s.done)

	for line := range s.queue {
		s.write(line)
	}
}

func (s *asyncSink) write(line []byte) {
	if err := s.dst.WriteLine(line); err != nil {
		if s.observer != nil {
			s.observer.SinkWriteError(s.component)
		}
		if s.fallback != nil {
			s.fallback.Store(line)
		}
		fmt.Fprintf(os.Stderr, "pkglog: sink %q write failed: %v: %s", s.component, err, line)
	}
}

// Recover replays fallback-buffered lines into the sink, in arrival order.
// Call after the underlying sink is known to be healthy again.
func (s *asyncSink) Recover() {
	if s.fallback == nil {
		return
	}
	for _, line := range s.fallback.Drain() {
		s.write(line)
	}
}

// Close drains the queue and closes the destination. Lines enqueued after
// Close are dropped.
func (s *asyncSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	<-s.done

	return s.dst.Close()
}

// fallbackBuffer keeps the most recent lines that could not be written so a
// later Recover can replay them.
type fallbackBuffer struct {
	mu       sync.Mutex
	capacity int
	lines    [][]byte
}

func newFallbackBuffer(capacity int) *fallbackBuffer {
	if capacity < 1 {
		capacity = 500
	}
	return &fallbackBuffer{capacity: capacity}
}

func (b *fallbackBuffer) Store(line []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lines = append(b.lines, line)
	if len(b.lines) > b.capacity {
		b.lines = b.lines[1:]
	}
}

func (b *fallbackBuffer) Drain() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	lines := b.lines
	b.lines = nil

	return lines
}

func (b *fallbackBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.lines)
}
