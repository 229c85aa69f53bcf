package router

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/jabolina/pleroma/internal/address"
	"github.com/jabolina/pleroma/internal/burner"
	"github.com/jabolina/pleroma/internal/logging"
	"github.com/jabolina/pleroma/internal/message"
	"github.com/jabolina/pleroma/internal/queue"
)

// TestLifecycleLeavesNoGoroutinesBehind runs a full burner-pool/router
// cycle against a fake transport and asserts every goroutine it spawned
// has exited by the time Stop returns, mirroring go-mcast's own
// goleak.VerifyNone(t) usage in fuzzy/commit_test.go.
func TestLifecycleLeavesNoGoroutinesBehind(t *testing.T) {
	defer goleak.VerifyNone(t)

	ready := queue.NewReady()
	v := echoVat(t, 1, 0, 0)
	ft := newFakeTransport()
	log := logging.NewDefaultLogger()
	pool := burner.NewPool(2, ready, log)
	r := New(1, ft, ready, pool, log)
	r.Register(v)

	v.Enqueue(message.Message{
		Destination: address.EntityAddress{Node: 1, Vat: 0, Entity: 0},
		Source:      address.EntityAddress{Node: 2, Vat: 0, Entity: 0},
		Function:    "ping",
		PromiseID:   1,
	})
	r.Admit(v)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx, 2)

	routerDone := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(routerDone)
	}()

	deadline := time.Now().Add(time.Second)
	for ft.sentCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	ready.Close()
	pool.Wait()
	<-routerDone
	_ = ft.Close()
}
