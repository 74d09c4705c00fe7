package audit

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Emit(_ context.Context, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestDispatcherDisabledReturnsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, &recordingSink{})
	if d != nil {
		t.Fatal("disabled dispatcher must be nil")
	}

	// Nil dispatchers are safe to use.
	d.Emit(context.Background(), Event{EventType: "x"})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher must report zero drops")
	}
}

func TestDispatcherDeliversToSink(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8}, sink)

	d.Emit(context.Background(), Event{EventType: "a", Timestamp: time.Now()})
	d.Emit(context.Background(), Event{EventType: "b", Timestamp: time.Now()})
	d.Close()

	if got := sink.count(); got != 2 {
		t.Fatalf("delivered = %d, want 2", got)
	}
}

func TestDispatcherCloseDrainsBuffer(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 100}, sink)

	const n = 100
	for i := 0; i < n; i++ {
		d.Emit(context.Background(), Event{EventType: "burst"})
	}
	d.Close()

	if got := sink.count(); got != n {
		t.Fatalf("drained = %d, want %d", got, n)
	}
	if d.Dropped() != 0 {
		t.Fatalf("dropped = %d, want 0", d.Dropped())
	}
}

func TestDispatcherDropIfFull(t *testing.T) {
	release := make(chan struct{})
	blocked := sinkFunc(func(context.Context, Event) { <-release })

	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, blocked)

	// One event is held by the sink, one sits in the buffer; the rest must
	// be dropped without blocking the emitter.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: "flood"})
	}

	deadline := time.Now().Add(time.Second)
	for d.Dropped() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if d.Dropped() == 0 {
		t.Fatal("expected drops under a blocked sink")
	}

	close(release)
	d.Close()
}

func TestDispatcherBlockingEmitHonorsContext(t *testing.T) {
	release := make(chan struct{})
	blocked := sinkFunc(func(context.Context, Event) { <-release })

	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, blocked)

	// Fill the pipeline.
	d.Emit(context.Background(), Event{EventType: "a"})
	d.Emit(context.Background(), Event{EventType: "b"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		d.Emit(ctx, Event{EventType: "c"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("blocking emit must give up when the context expires")
	}

	close(release)
	d.Close()
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, &recordingSink{})
	d.Close()
	d.Close()

	// Emit after close is a no-op, not a panic.
	d.Emit(context.Background(), Event{EventType: "late"})
}

type sinkFunc func(ctx context.Context, event Event)

func (f sinkFunc) Emit(ctx context.Context, event Event) { f(ctx, event) }
