package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/casql/casql/internal/config"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <table>",
		Short: "Show the live schema of a table",
		Long:  "Introspect a table's columns, key structure and indexes from the cluster metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := args[0]

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			adapter, err := connect(cfg)
			if err != nil {
				return err
			}
			defer adapter.Close()

			ctx := cmd.Context()
			live, err := adapter.TableSchema(ctx, table)
			if err != nil {
				return err
			}
			if live == nil {
				printWarning(fmt.Sprintf("Table %q does not exist in keyspace %q", table, cfg.Keyspace))
				return nil
			}

			rows := pterm.TableData{{"Column", "Type", "Kind"}}
			names := make([]string, 0, len(live.Fields))
			for name := range live.Fields {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				field := live.Fields[name]
				kind := field.Kind
				if kind == "" {
					kind = "regular"
				}
				rows = append(rows, []string{name, field.Type, kind})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
				return err
			}

			fmt.Printf("Partition key: (%s)\n", strings.Join(live.PartitionKeys, ", "))
			if len(live.ClusteringKeys) > 0 {
				fmt.Printf("Clustering key: (%s)\n", strings.Join(live.ClusteringKeys, ", "))
			}

			indexes, err := adapter.Indexes(ctx, table)
			if err != nil {
				return err
			}
			if len(indexes) > 0 {
				names := make([]string, 0, len(indexes))
				for name := range indexes {
					names = append(names, name)
				}
				sort.Strings(names)
				fmt.Printf("Indexes: %s\n", strings.Join(names, ", "))
			}
			return nil
		},
	}
}
