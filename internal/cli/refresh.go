package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/duocommerce/warehousectl/internal/db"
	"github.com/duocommerce/warehousectl/internal/warehouse"
)

var refreshReferenceCity string

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run the incremental warehouse refresh",
	Long: `Run the five-stage incremental warehouse refresh: calendar dimension,
status lookup, client dimension, product dimension, order-line facts.
All five stages run inside one transaction; on any failure the whole
run rolls back and nothing from it persists.

Example:
  warehousectl refresh --connection "postgres://..."`,
	RunE: runRefresh,
}

func init() {
	refreshCmd.Flags().StringVar(&refreshReferenceCity, "reference-city", "",
		"city mapped to the core commercial region")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if refreshReferenceCity != "" {
		cfg.Refresh.ReferenceCity = refreshReferenceCity
	}

	if err := cfg.ValidateRefresh(); err != nil {
		return err
	}
	start, end, err := cfg.Refresh.CalendarRange()
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection, time.Duration(cfg.ConnectTimeout)*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	refresher := warehouse.NewRefresher(pool, warehouse.Options{
		CalendarStart: start,
		CalendarEnd:   end,
		ReferenceCity: cfg.Refresh.ReferenceCity,
	})

	if _, err := refresher.Run(ctx); err != nil {
		return err
	}
	return nil
}
