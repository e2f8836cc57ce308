package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/duocommerce/warehousectl/internal/db"
	"github.com/duocommerce/warehousectl/internal/logging"
	"github.com/duocommerce/warehousectl/internal/warehouse"
)

var (
	initDropExisting bool
	initWithSource   bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the warehouse schema",
	Long: `Create the warehouse target tables (dimensions, fact table, confirmed
orders view, rfm_segments) with the unique constraints that back the
refresh idempotence checks.

With --with-source the operational tables (clients, produits, commandes)
are created too, for demo and test environments where no upstream
commerce system provides them.

Example:
  warehousectl init --connection "postgres://..." --with-source`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing warehouse tables before creating them")
	initCmd.Flags().BoolVar(&initWithSource, "with-source", false,
		"also create the operational source tables")
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection, time.Duration(cfg.ConnectTimeout)*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if initDropExisting {
		logging.Warn().Msg("Dropping existing warehouse schema")
		if err := warehouse.DropSchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
		if err := db.DropMetadata(ctx, pool); err != nil {
			logging.Debug().Err(err).Msg("No metadata table to drop")
		}
	}

	logging.Info().Msg("Creating warehouse schema")
	if err := warehouse.CreateSchema(ctx, pool); err != nil {
		return err
	}

	if initWithSource {
		logging.Info().Msg("Creating operational source schema")
		if err := warehouse.CreateSourceSchema(ctx, pool); err != nil {
			return err
		}
	}

	logging.Info().Msg("Warehouse initialization complete")
	return nil
}
