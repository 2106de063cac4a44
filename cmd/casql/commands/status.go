package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/casql/casql/internal/adapters/database/cassandra"
	"github.com/casql/casql/internal/config"
)

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check cluster connectivity",
		Long:  "Connect to the configured cluster and report whether it is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			adapter, err := connect(cfg)
			if err != nil {
				printError(fmt.Sprintf("Cannot reach %s: %v", strings.Join(cfg.Hosts, ", "), err))
				return err
			}
			defer adapter.Close()

			printSuccess(fmt.Sprintf("Connected to %s (keyspace %q)", strings.Join(cfg.Hosts, ", "), cfg.Keyspace))
			return nil
		},
	}
}

func connect(cfg *config.Config) (*cassandra.Adapter, error) {
	return cassandra.Connect(cassandra.Config{
		Hosts:          cfg.Hosts,
		Port:           cfg.Port,
		Keyspace:       cfg.Keyspace,
		Username:       cfg.Username,
		Password:       cfg.Password,
		Timeout:        cfg.Timeout,
		ConnectTimeout: cfg.ConnectTimeout,
	})
}
