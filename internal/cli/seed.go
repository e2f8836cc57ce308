package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/duocommerce/warehousectl/internal/db"
	"github.com/duocommerce/warehousectl/internal/logging"
	"github.com/duocommerce/warehousectl/internal/seed"
	"github.com/duocommerce/warehousectl/internal/warehouse"
)

var (
	seedClients  int
	seedProducts int
	seedOrders   int
	seedRandom   uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the operational tables with demo data",
	Long: `Populate the operational source tables (clients, produits, commandes)
with generated demo data. The tables are created if absent. Order dates
fall inside the configured warehouse calendar range.

Example:
  warehousectl seed --clients 500 --products 80 --orders 10000`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedClients, "clients", 0,
		"number of client rows to generate")
	seedCmd.Flags().IntVar(&seedProducts, "products", 0,
		"number of product rows to generate")
	seedCmd.Flags().IntVar(&seedOrders, "orders", 0,
		"number of order rows to generate")
	seedCmd.Flags().Uint64Var(&seedRandom, "random-seed", 0,
		"random seed for reproducible data (0 = random)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if seedClients > 0 {
		cfg.Seed.Clients = seedClients
	}
	if seedProducts > 0 {
		cfg.Seed.Products = seedProducts
	}
	if seedOrders > 0 {
		cfg.Seed.Orders = seedOrders
	}
	if seedRandom != 0 {
		cfg.Seed.RandomSeed = seedRandom
	}

	if err := cfg.ValidateSeed(); err != nil {
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

	if err := warehouse.CreateSourceSchema(ctx, pool); err != nil {
		return err
	}

	generator := seed.New(cfg.Seed.RandomSeed)
	err = generator.Seed(ctx, pool, seed.Config{
		Clients:        cfg.Seed.Clients,
		Products:       cfg.Seed.Products,
		Orders:         cfg.Seed.Orders,
		OrderDateStart: start,
		OrderDateEnd:   end,
	})
	if err != nil {
		return err
	}

	logging.Info().
		Int("clients", cfg.Seed.Clients).
		Int("products", cfg.Seed.Products).
		Int("orders", cfg.Seed.Orders).
		Msg("Demo data seeded")
	return nil
}
