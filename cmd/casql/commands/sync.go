package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/casql/casql/internal/config"
)

// NewSyncCommand creates the sync command. Model schemas are declared in
// application code and synchronized there through schemasync; this command
// verifies the target the application will sync against.
func NewSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Verify the schema synchronization target",
		Long:  "Connect to the configured cluster and report the keyspace that model schemas will be synchronized into",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Keyspace == "" {
				printError("No keyspace configured; run casql init --keyspace <name>")
				return fmt.Errorf("keyspace is required")
			}

			adapter, err := connect(cfg)
			if err != nil {
				printError(fmt.Sprintf("Cannot reach %s: %v", strings.Join(cfg.Hosts, ", "), err))
				return err
			}
			defer adapter.Close()

			printSuccess(fmt.Sprintf("Sync target ready: keyspace %q on %s", adapter.Keyspace(), strings.Join(cfg.Hosts, ", ")))
			fmt.Println("Declare model schemas in application code and call schemasync.Sync with AutoApply to reconcile them.")
			return nil
		},
	}
}
