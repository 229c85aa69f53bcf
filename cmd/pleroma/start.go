package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jabolina/pleroma/internal/address"
	"github.com/jabolina/pleroma/internal/logging"
	"github.com/jabolina/pleroma/internal/node"
)

func startCmd() *cobra.Command {
	var (
		nodeID     uint32
		localHost  string
		localPort  int
		remoteHost string
		remotePort int
		remoteNode uint32
		configPath string
		program    string
		entity     string
		vats       int
		burners    int
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a Pleroma node",
		Long:  "Boot a node: load config, inoculate the boot vat (or join a remote), then run the burner pool and router",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.NewDefaultLogger()
			log.ToggleDebug(debug)

			n, err := node.Bootstrap(node.Options{
				NodeID:      address.NodeID(nodeID),
				ConfigPath:  configPath,
				LocalHost:   localHost,
				LocalPort:   localPort,
				RemoteHost:  remoteHost,
				RemotePort:  remotePort,
				RemoteNode:  address.NodeID(remoteNode),
				VatCount:    vats,
				BurnerCount: burners,
				Program:     program,
				Entity:      entity,
				Logger:      log,
			})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				log.Info("shutdown signal received")
				cancel()
			}()

			return n.Run(ctx)
		},
	}

	cmd.Flags().Uint32Var(&nodeID, "node-id", 0, "This node's numeric id")
	cmd.Flags().StringVar(&localHost, "local-host", "127.0.0.1", "Local bind host")
	cmd.Flags().IntVar(&localPort, "local-port", 0, "Local bind port (default 1234)")
	cmd.Flags().StringVar(&remoteHost, "remote-host", "", "Remote node host to join, if any")
	cmd.Flags().IntVar(&remotePort, "remote-port", 0, "Remote node port (default 1234)")
	cmd.Flags().Uint32Var(&remoteNode, "remote-node-id", 0, "Remote node's numeric id")
	cmd.Flags().StringVar(&configPath, "config", "pleroma.json", "Path to node JSON config")
	cmd.Flags().StringVar(&program, "program", "", "Path to a program file to load")
	cmd.Flags().StringVar(&entity, "entity", "", "Bootstrap entity name to validate against registered modules")
	cmd.Flags().IntVar(&vats, "vats", 1, "Number of vats to run")
	cmd.Flags().IntVar(&burners, "burners", 0, "Number of burner goroutines (default: one per vat)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	return cmd
}
