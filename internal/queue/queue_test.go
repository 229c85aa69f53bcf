package queue

import (
	"context"
	"testing"
	"time"
)

func TestBlockingPushThenPop(t *testing.T) {
	q := NewBlocking[int]()
	q.Push(1)
	q.Push(2)

	v, ok := q.PopBlocking(context.Background())
	if !ok || v != 1 {
		t.Fatalf("expected (1, true), got (%d, %v)", v, ok)
	}
}

func TestBlockingPopBlocksUntilPush(t *testing.T) {
	q := NewBlocking[string]()
	done := make(chan string, 1)
	go func() {
		v, _ := q.PopBlocking(context.Background())
		done <- v
	}()

	time.Sleep(10 * time.Millisecond)
	q.Push("hi")

	select {
	case v := <-done:
		if v != "hi" {
			t.Fatalf("expected hi, got %s", v)
		}
	case <-time.After(time.Second):
		t.Fatal("PopBlocking did not unblock after Push")
	}
}

func TestBlockingCloseUnblocksWaiters(t *testing.T) {
	q := NewBlocking[int]()
	done := make(chan bool, 1)
	go func() {
		_, ok := q.PopBlocking(context.Background())
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected PopBlocking to report false after Close")
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock waiter")
	}
}

func TestBlockingPopRespectsContextCancellation(t *testing.T) {
	q := NewBlocking[int]()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool, 1)
	go func() {
		_, ok := q.PopBlocking(ctx)
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected PopBlocking to report false after context cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("cancellation did not unblock waiter")
	}
}

func TestDrainUpToBoundsResult(t *testing.T) {
	q := NewBlocking[int]()
	for i := 0; i < 10; i++ {
		q.Push(i)
	}
	batch := q.DrainUpTo(3)
	if len(batch) != 3 {
		t.Fatalf("expected 3 items, got %d", len(batch))
	}
	if q.Len() != 7 {
		t.Fatalf("expected 7 remaining, got %d", q.Len())
	}
}
