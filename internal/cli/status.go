package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/duocommerce/warehousectl/internal/db"
	"github.com/duocommerce/warehousectl/internal/warehouse"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show warehouse row counts and last refresh metadata",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection, time.Duration(cfg.ConnectTimeout)*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	counts, err := warehouse.TableCounts(ctx, pool)
	if err != nil {
		return err
	}

	tables := make([]string, 0, len(counts))
	for table := range counts {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	cmd.Println("Warehouse tables:")
	for _, table := range tables {
		cmd.Printf("  %-16s %d rows\n", table, counts[table])
	}

	exists, err := db.MetadataExists(ctx, pool)
	if err != nil {
		return err
	}
	if !exists {
		cmd.Println("\nNo refresh has run yet.")
		return nil
	}

	metadata, err := db.GetAllMetadata(ctx, pool)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	cmd.Println("\nLast refresh:")
	for _, key := range keys {
		cmd.Printf("  %-20s %s\n", key, metadata[key])
	}
	return nil
}
