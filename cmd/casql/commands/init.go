// Package commands implements the casql CLI commands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/casql/casql/internal/config"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var hosts []string
	var port int
	var keyspace string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration",
		Long:  "Write a .casql.yaml with the cluster contact points and keyspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &config.Config{
				Hosts:    hosts,
				Port:     port,
				Keyspace: keyspace,
			}
			if err := config.Save(cfg); err != nil {
				return err
			}
			printSuccess("Configuration written")
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&hosts, "hosts", []string{"127.0.0.1"}, "Cluster contact points")
	cmd.Flags().IntVar(&port, "port", 9042, "CQL native transport port")
	cmd.Flags().StringVar(&keyspace, "keyspace", "", "Default keyspace")
	cmd.MarkFlagRequired("keyspace")

	return cmd
}
