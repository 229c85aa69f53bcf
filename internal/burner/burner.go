// Package burner implements the burner thread pool (spec.md section 4.3
// and section 5): a fixed number of goroutines pull a vat off the ready
// queue, execute exactly one turn, and hand the vat to the router -
// never back onto the ready queue directly. The router re-admits it
// once outbound delivery and any newly arrived mail are accounted for;
// park-to-ready is the only path back into scheduling.
package burner

import (
	"context"
	"sync"

	"github.com/jabolina/pleroma/internal/logging"
	"github.com/jabolina/pleroma/internal/message"
	"github.com/jabolina/pleroma/internal/queue"
	"github.com/jabolina/pleroma/internal/vat"
)

// Parked is what a burner hands to the router after a turn: the vat
// that just ran, and whatever messages its flush phase produced for the
// network (same-node, same-vat sends never leave the vat).
type Parked struct {
	Vat *vat.Vat
	Out []message.Message
}

// Fault is reported when a vat's turn fails fatally (a routing fault or
// an evaluator fault). The burner stops running that vat and reports
// it on the Faults channel; the router treats every fault as fatal to
// the node.
type Fault struct {
	Vat *vat.Vat
	Err error
}

// Pool runs a fixed set of burner goroutines against a shared ready
// queue.
type Pool struct {
	ready  *queue.Ready
	parked chan Parked
	faults chan Fault
	log    logging.Logger

	wg sync.WaitGroup
}

// NewPool creates a pool of n burners reading from ready. parked and
// faults are sized generously so a slow router does not stall every
// burner at once; the router is expected to drain both promptly.
func NewPool(n int, ready *queue.Ready, log logging.Logger) *Pool {
	return &Pool{
		ready:  ready,
		parked: make(chan Parked, n*4),
		faults: make(chan Fault, n*4),
		log:    log,
	}
}

// Parked returns the channel the router drains completed turns from.
func (p *Pool) Parked() <-chan Parked {
	return p.parked
}

// Faults returns the channel fatal per-vat errors are reported on.
func (p *Pool) Faults() <-chan Fault {
	return p.faults
}

// Start launches n burner goroutines; they run until ctx is cancelled
// or the ready queue is closed.
func (p *Pool) Start(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.run(ctx)
	}
}

// Wait blocks until every burner goroutine has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
	close(p.parked)
	close(p.faults)
}

func (p *Pool) run(ctx context.Context) {
	defer p.wg.Done()
	for {
		v, ok := p.ready.Pop(ctx)
		if !ok {
			return
		}

		out, err := v.Turn()
		if err != nil {
			p.log.Errorf("vat %d fatal turn error: %v", v.ID, err)
			select {
			case p.faults <- Fault{Vat: v, Err: err}:
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case p.parked <- Parked{Vat: v, Out: out}:
		case <-ctx.Done():
			return
		}
	}
}
