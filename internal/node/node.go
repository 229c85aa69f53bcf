// Package node wires every other package together into one running
// process (spec.md section 6): load config, install the kernel, stand
// up the ready queue, burner pool, transport and router, inoculate or
// join a remote, then run until stopped.
package node

import (
	"context"
	"fmt"
	"os"

	"github.com/jabolina/pleroma/internal/address"
	"github.com/jabolina/pleroma/internal/burner"
	"github.com/jabolina/pleroma/internal/config"
	"github.com/jabolina/pleroma/internal/evaluator"
	"github.com/jabolina/pleroma/internal/kernel"
	"github.com/jabolina/pleroma/internal/logging"
	"github.com/jabolina/pleroma/internal/queue"
	"github.com/jabolina/pleroma/internal/router"
	"github.com/jabolina/pleroma/internal/transport"
	"github.com/jabolina/pleroma/internal/vat"
)

// Options configures a single node's bootstrap.
type Options struct {
	NodeID      address.NodeID
	ConfigPath  string
	LocalHost   string
	LocalPort   int
	RemoteHost  string
	RemotePort  int
	RemoteNode  address.NodeID
	VatCount    int
	BurnerCount int
	Program     string
	Entity      string
	Logger      logging.Logger
}

// Node is a single running instance of the runtime.
type Node struct {
	opts        Options
	log         logging.Logger
	cfg         config.Node
	vats        []*vat.Vat
	ready       *queue.Ready
	pool        *burner.Pool
	router      *router.Router
	tport       transport.Transport
	burnerCount int

	cancel context.CancelFunc
}

// Bootstrap loads configuration, builds the vat set, the evaluator with
// the kernel modules installed, the transport, the burner pool and the
// router, then inoculates the boot vat (or, when a remote host is given,
// joins that remote instead). It does not yet start serving -
// call Run for that.
func Bootstrap(opts Options) (*Node, error) {
	log := opts.Logger
	if log == nil {
		log = logging.NewDefaultLogger()
	}

	cfg := config.Node{Name: fmt.Sprintf("node-%d", opts.NodeID)}
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	vatCount := opts.VatCount
	if vatCount < 2 {
		// Vat 0 hosts Monad, vat 1 hosts NodeMan (spec.md section 6).
		vatCount = 2
	}
	burnerCount := opts.BurnerCount
	if burnerCount <= 0 {
		burnerCount = vatCount
	}

	ev := evaluator.NewTableEvaluator()
	kernel.Register(ev)

	// --program names a file for the module loader's load_file(path)
	// (spec.md section 6) to compile; that loader is an external
	// collaborator out of scope for the core runtime, so this only
	// confirms the file exists before boot continues.
	if opts.Program != "" {
		if _, err := os.Stat(opts.Program); err != nil {
			return nil, fmt.Errorf("node: program %s: %w", opts.Program, err)
		}
		log.Infof("node: program %s accepted, module loading is the loader's responsibility", opts.Program)
	}
	if opts.Entity != "" && !ev.HasModule(opts.Entity) {
		return nil, fmt.Errorf("node: no registered module named %q", opts.Entity)
	}

	ready := queue.NewReady()

	vats := make([]*vat.Vat, 0, vatCount)
	for i := 0; i < vatCount; i++ {
		v := vat.New(opts.NodeID, address.VatID(i), ev)
		vats = append(vats, v)
	}

	port := opts.LocalPort
	if port <= 0 {
		port = config.DefaultPort
	}
	localExchange := fmt.Sprintf("%s:%d", opts.LocalHost, port)
	tport, err := transport.NewReltTransport(opts.NodeID, cfg.Name, localExchange, log)
	if err != nil {
		return nil, fmt.Errorf("node: create transport: %w", err)
	}

	pool := burner.NewPool(burnerCount, ready, log)
	r := router.New(opts.NodeID, tport, ready, pool, log)
	for _, v := range vats {
		r.Register(v)
	}

	if opts.RemoteHost != "" {
		remotePort := opts.RemotePort
		if remotePort <= 0 {
			remotePort = config.DefaultPort
		}
		remoteExchange := fmt.Sprintf("%s:%d", opts.RemoteHost, remotePort)
		if err := r.Join(opts.RemoteNode, remoteExchange); err != nil {
			return nil, fmt.Errorf("node: join remote: %w", err)
		}
	} else {
		if err := kernel.Inoculate(vats[kernel.BootVat]); err != nil {
			return nil, fmt.Errorf("node: inoculate: %w", err)
		}
	}
	if err := kernel.CreateNodeMan(vats[kernel.NodeManVat], cfg.Resources); err != nil {
		return nil, fmt.Errorf("node: create node manager: %w", err)
	}

	n := &Node{
		opts:        opts,
		log:         log,
		cfg:         cfg,
		vats:        vats,
		ready:       ready,
		pool:        pool,
		router:      r,
		tport:       tport,
		burnerCount: burnerCount,
	}
	return n, nil
}

// Run starts the burner pool and the router loop, admits every vat with
// pending work, and blocks until ctx is cancelled.
func (n *Node) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	n.cancel = cancel
	defer cancel()

	n.pool.Start(ctx, n.burnerCount)
	for _, v := range n.vats {
		n.router.Admit(v)
	}

	n.log.Infof("node %d (%s) running with %d vat(s)", n.opts.NodeID, n.cfg.Name, len(n.vats))

	done := make(chan struct{})
	go func() {
		n.router.Run(ctx)
		close(done)
	}()

	<-ctx.Done()
	n.ready.Close()
	<-done
	n.pool.Wait()
	return n.tport.Close()
}

// Stop cancels a running node.
func (n *Node) Stop() {
	if n.cancel != nil {
		n.cancel()
	}
}
