package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jabolina/relt/pkg/relt"
	promlog "github.com/prometheus/common/log"

	"github.com/jabolina/pleroma/internal/address"
	"github.com/jabolina/pleroma/internal/logging"
	"github.com/jabolina/pleroma/internal/message"
)

// ReltTransport is the default Transport, backed by relt's reliable
// group broadcast: a relt.Relt bound to this node's own group address, a
// background poll loop that consumes and decodes inbound records, and a
// peer table mapping a remote NodeID to the relt group address it
// listens on.
//
// A message always has exactly one destination node, so Send resolves
// the single peer group address and hands it a relt.Send directly
// rather than broadcasting to a set of destinations.
type ReltTransport struct {
	self address.NodeID
	r    *relt.Relt
	log  logging.Logger

	mu    sync.RWMutex
	peers map[address.NodeID]relt.GroupAddress

	inbound chan Inbound
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewReltTransport creates a transport for node self, listening on the
// given local group name (typically the node's own host:port).
func NewReltTransport(self address.NodeID, name, localExchange string, log logging.Logger) (*ReltTransport, error) {
	conf := relt.DefaultReltConfiguration()
	conf.Name = name
	conf.Exchange = relt.GroupAddress(localExchange)
	r, err := relt.NewRelt(*conf)
	if err != nil {
		return nil, fmt.Errorf("transport: create relt: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &ReltTransport{
		self:    self,
		r:       r,
		log:     log,
		peers:   make(map[address.NodeID]relt.GroupAddress),
		inbound: make(chan Inbound, 128),
		ctx:     ctx,
		cancel:  cancel,
	}
	go t.poll()
	return t, nil
}

// Join records the relt group address a remote node listens on.
func (t *ReltTransport) Join(node address.NodeID, addr string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.peers[node] = relt.GroupAddress(addr)
	return nil
}

// Send unicasts m to the relt group address registered for the
// destination node.
func (t *ReltTransport) Send(node address.NodeID, m message.Message) error {
	t.mu.RLock()
	dest, ok := t.peers[node]
	t.mu.RUnlock()
	if !ok {
		return fmt.Errorf("transport: no peer registered for node %d", node)
	}

	data, err := Encode(m)
	if err != nil {
		// A marshal failure sits below the injected Logger façade, so it
		// is logged at the package level instead.
		promlog.Errorf("failed marshalling message %#v: %v", m, err)
		return err
	}

	send := relt.Send{Address: dest, Data: data}
	if err := t.r.Broadcast(t.ctx, send); err != nil {
		t.log.Errorf("failed sending to node %d: %v", node, err)
		return err
	}
	return nil
}

// Listen returns the channel decoded inbound messages arrive on.
func (t *ReltTransport) Listen() <-chan Inbound {
	return t.inbound
}

// Close stops the poll loop and releases the underlying relt instance.
func (t *ReltTransport) Close() error {
	t.cancel()
	close(t.inbound)
	return t.r.Close()
}

func (t *ReltTransport) poll() {
	listener, err := t.r.Consume()
	if err != nil {
		t.log.Errorf("transport: consume failed: %v", err)
		return
	}
	for {
		select {
		case <-t.ctx.Done():
			return
		case recv, ok := <-listener:
			if !ok {
				return
			}
			t.consume(recv)
		}
	}
}

func (t *ReltTransport) consume(recv relt.Recv) {
	if recv.Error != nil {
		t.log.Errorf("transport: consume error: %v", recv.Error)
		return
	}
	if recv.Data == nil {
		t.log.Warnf("transport: empty payload from %s", recv.Origin)
		return
	}

	m, err := Decode(recv.Data)
	if err != nil {
		t.log.Errorf("transport: decode failed: %v", err)
		return
	}

	timeout, cancel := context.WithTimeout(t.ctx, 250*time.Millisecond)
	defer cancel()
	select {
	case <-timeout.Done():
		t.log.Warnf("transport: dropped message, consumer not draining fast enough")
	case t.inbound <- Inbound{From: m.Source.Node, Msg: m}:
	}
}
