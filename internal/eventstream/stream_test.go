package eventstream

import (
	"testing"
	"time"
)

func collect(t *testing.T, ch <-chan Event, want int) []Event {
	t.Helper()
	events := make([]Event, 0, want)
	timeout := time.After(2 * time.Second)
	for len(events) < want {
		select {
		case event, ok := <-ch:
			if !ok {
				t.Fatalf("channel closed after %d events, wanted %d", len(events), want)
			}
			events = append(events, event)
		case <-timeout:
			t.Fatalf("timed out after %d events, wanted %d", len(events), want)
		}
	}
	return events
}

func assertClosed(t *testing.T, ch <-chan Event) {
	t.Helper()
	select {
	case event, ok := <-ch:
		if ok {
			t.Fatalf("expected closed channel, got event seq %d", event.Seq)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestPublishAssignsGaplessSequence(t *testing.T) {
	s := New("task-1")
	defer s.Close()

	s.Publish(TypeTaskStatus, map[string]interface{}{"status": "queued"})
	s.Publish(TypePlanningUpdate, map[string]interface{}{"progress": 10})
	s.Publish(TypePlanningUpdate, map[string]interface{}{"progress": 100})

	history := s.History()
	if len(history) != 3 {
		t.Fatalf("expected 3 events in history, got %d", len(history))
	}
	for i, event := range history {
		if event.Seq != uint64(i+1) {
			t.Errorf("event %d: expected seq %d, got %d", i, i+1, event.Seq)
		}
		if event.TaskID != "task-1" {
			t.Errorf("event %d: expected task_id task-1, got %s", i, event.TaskID)
		}
	}
	if s.Seq() != 3 {
		t.Errorf("expected current seq 3, got %d", s.Seq())
	}
}

func TestSubscriberReceivesEventsInOrder(t *testing.T) {
	s := New("task-1")
	ch, cancel := s.Subscribe()
	defer cancel()

	go func() {
		for i := 0; i < 5; i++ {
			s.Publish(TypeExecutionUpdate, map[string]interface{}{"i": i})
		}
		s.Close()
	}()

	events := collect(t, ch, 5)
	for i, event := range events {
		if event.Seq != uint64(i+1) {
			t.Errorf("event %d: expected seq %d, got %d", i, i+1, event.Seq)
		}
	}
	assertClosed(t, ch)
}

func TestLateSubscriberReplaysHistory(t *testing.T) {
	s := New("task-1")

	s.Publish(TypeTaskStatus, map[string]interface{}{"status": "queued"})
	s.Publish(TypeTaskStatus, map[string]interface{}{"status": "planning"})
	s.Publish(TypeTaskStatus, map[string]interface{}{"status": "executing"})

	ch, cancel := s.Subscribe()
	defer cancel()

	go func() {
		s.Publish(TypeTaskStatus, map[string]interface{}{"status": "solving"})
		s.Publish(TypeTaskCompleted, map[string]interface{}{"result": "42"})
		s.Close()
	}()

	events := collect(t, ch, 5)
	for i, event := range events {
		if event.Seq != uint64(i+1) {
			t.Errorf("event %d: expected seq %d, got %d (gap or duplicate)", i, i+1, event.Seq)
		}
	}
	if events[4].Type != TypeTaskCompleted {
		t.Errorf("expected final event %s, got %s", TypeTaskCompleted, events[4].Type)
	}
	assertClosed(t, ch)
}

func TestSubscribeAfterCloseReplaysAndCloses(t *testing.T) {
	s := New("task-1")
	s.Publish(TypeTaskStatus, map[string]interface{}{"status": "queued"})
	s.Publish(TypeTaskFailed, map[string]interface{}{"reason": "boom"})
	s.Close()

	ch, cancel := s.Subscribe()
	defer cancel()

	events := collect(t, ch, 2)
	if events[1].Type != TypeTaskFailed {
		t.Errorf("expected %s, got %s", TypeTaskFailed, events[1].Type)
	}
	assertClosed(t, ch)
}

func TestSlowSubscriberLosesNothing(t *testing.T) {
	s := New("task-1", WithBufferSize(1))
	ch, cancel := s.Subscribe()
	defer cancel()

	const total = 20
	go func() {
		for i := 0; i < total; i++ {
			s.Publish(TypeExecutionUpdate, map[string]interface{}{"i": i})
		}
		s.Close()
	}()

	events := make([]Event, 0, total)
	for event := range ch {
		// Slow consumer; the producer must block instead of dropping.
		time.Sleep(time.Millisecond)
		events = append(events, event)
	}
	if len(events) != total {
		t.Fatalf("expected %d events, got %d", total, len(events))
	}
	for i, event := range events {
		if event.Seq != uint64(i+1) {
			t.Errorf("event %d: expected seq %d, got %d", i, i+1, event.Seq)
		}
	}
}

func TestUnsubscribeDetachesConsumer(t *testing.T) {
	s := New("task-1")
	defer s.Close()

	ch, cancel := s.Subscribe()
	s.Publish(TypeTaskStatus, map[string]interface{}{"status": "queued"})
	collect(t, ch, 1)

	cancel()
	// Publishing after detach must not block on the dead subscriber.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.Publish(TypeExecutionUpdate, nil)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on an unsubscribed consumer")
	}
}

func TestPublishAfterCloseIsNoop(t *testing.T) {
	s := New("task-1")
	s.Publish(TypeTaskStatus, map[string]interface{}{"status": "queued"})
	s.Close()
	s.Close()
	s.Publish(TypeTaskStatus, map[string]interface{}{"status": "late"})

	if len(s.History()) != 1 {
		t.Errorf("expected history unchanged after close, got %d events", len(s.History()))
	}
}
