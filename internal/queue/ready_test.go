package queue

import (
	"context"
	"testing"
	"time"

	"github.com/jabolina/pleroma/internal/evaluator"
	"github.com/jabolina/pleroma/internal/message"
	"github.com/jabolina/pleroma/internal/vat"
)

func newWorkingVat(t *testing.T) *vat.Vat {
	ev := evaluator.NewTableEvaluator()
	ev.Register(&evaluator.Module{Name: "noop", Methods: map[string]evaluator.Method{}})
	v := vat.New(1, 0, ev)
	if _, err := v.CreateEntity(0, "noop"); err != nil {
		t.Fatalf("create entity: %v", err)
	}
	return v
}

func TestPushIsNoOpWithoutWork(t *testing.T) {
	r := NewReady()
	v := newWorkingVat(t)
	r.Push(v)
	if r.Len() != 0 {
		t.Fatalf("expected an empty vat to not be queued, len=%d", r.Len())
	}
}

func TestPushQueuesVatWithPendingMail(t *testing.T) {
	r := NewReady()
	v := newWorkingVat(t)
	v.Enqueue(message.Message{})
	r.Push(v)
	if r.Len() != 1 {
		t.Fatalf("expected vat to be queued, len=%d", r.Len())
	}
}

func TestPushTwiceQueuesOnce(t *testing.T) {
	r := NewReady()
	v := newWorkingVat(t)
	v.Enqueue(message.Message{})
	r.Push(v)
	r.Push(v)
	if r.Len() != 1 {
		t.Fatalf("expected a vat to appear at most once in the ready queue, len=%d", r.Len())
	}
}

func TestPopReturnsPushedVat(t *testing.T) {
	r := NewReady()
	v := newWorkingVat(t)
	v.Enqueue(message.Message{})
	r.Push(v)

	got, ok := r.Pop(context.Background())
	if !ok || got != v {
		t.Fatalf("expected to pop back the pushed vat")
	}
	if r.Len() != 0 {
		t.Fatalf("expected the queue to be empty after Pop")
	}
}

func TestCloseUnblocksPop(t *testing.T) {
	r := NewReady()
	done := make(chan bool, 1)
	go func() {
		_, ok := r.Pop(context.Background())
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	r.Close()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected Pop to report false after Close")
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock Pop")
	}
}
