package eventstream

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultBufferSize = 64

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithBufferSize sets the per-subscriber channel capacity.
func WithBufferSize(size int) StreamOption {
	return func(s *Stream) {
		if size > 0 {
			s.bufferSize = size
		}
	}
}

type subscriber struct {
	id   string
	ch   chan Event
	done chan struct{}
}

// Stream is a single-producer, multi-consumer ordered event sequence for
// one task. Publish assigns sequence numbers and retains every event so
// late subscribers can replay from the start. A slow subscriber blocks
// the producer; events are never dropped.
type Stream struct {
	taskID     string
	bufferSize int

	mu      sync.Mutex
	seq     uint64
	history []Event
	subs    map[string]*subscriber
	closed  bool
}

// New creates a stream for the given task.
func New(taskID string, opts ...StreamOption) *Stream {
	s := &Stream{
		taskID:     taskID,
		bufferSize: defaultBufferSize,
		subs:       make(map[string]*subscriber),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish appends an event to the stream and delivers it to every
// subscriber. It must only be called from the task's owning goroutine.
// Publishing on a closed stream is a no-op.
func (s *Stream) Publish(eventType string, data map[string]interface{}) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.seq++
	event := Event{
		Type:      eventType,
		TaskID:    s.taskID,
		Seq:       s.seq,
		Timestamp: time.Now(),
		Data:      data,
	}
	s.history = append(s.history, event)
	targets := make([]*subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		targets = append(targets, sub)
	}
	s.mu.Unlock()

	for _, sub := range targets {
		select {
		case sub.ch <- event:
		case <-sub.done:
		}
	}
}

// Subscribe registers a new consumer. The returned channel first yields
// the full history from seq 1, then live events, with no gaps or
// duplicates. The cancel func detaches the consumer; the channel is
// closed when the stream closes or the subscription is cancelled.
func (s *Stream) Subscribe() (<-chan Event, func()) {
	sub := &subscriber{
		id:   uuid.New().String(),
		ch:   make(chan Event, s.bufferSize),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	replay := append([]Event(nil), s.history...)
	closed := s.closed
	if !closed {
		s.subs[sub.id] = sub
	}
	s.mu.Unlock()

	out := make(chan Event, s.bufferSize)
	go func() {
		defer close(out)
		for _, event := range replay {
			select {
			case out <- event:
			case <-sub.done:
				return
			}
		}
		if closed {
			return
		}
		for {
			select {
			case event, ok := <-sub.ch:
				if !ok {
					return
				}
				select {
				case out <- event:
				case <-sub.done:
					return
				}
			case <-sub.done:
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, sub.id)
			s.mu.Unlock()
			close(sub.done)
		})
	}
	return out, cancel
}

// Close ends the stream. Subscriber channels drain their buffered events
// and then close, so consumers observe a finite sequence. Close is
// idempotent.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := make([]*subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subs = make(map[string]*subscriber)
	s.mu.Unlock()

	for _, sub := range subs {
		close(sub.ch)
	}
}

// History returns a copy of every event published so far.
func (s *Stream) History() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.history...)
}

// Seq returns the sequence number of the most recent event.
func (s *Stream) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}
