// Package seed generates operational demo data for the source tables the
// warehouse refresh reads from.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5"

	"github.com/duocommerce/warehousectl/internal/db"
	"github.com/duocommerce/warehousectl/internal/logging"
)

// Config controls how much demo data is generated.
type Config struct {
	Clients  int
	Products int
	Orders   int

	// OrderDateStart and OrderDateEnd bound generated order dates; they
	// should sit inside the warehouse calendar range.
	OrderDateStart time.Time
	OrderDateEnd   time.Time
}

// Reference data
var cities = []string{
	"Paris", "Paris", "Paris", // weighted: the reference city dominates
	"Lyon", "Marseille", "Toulouse", "Nantes", "Lille", "Bordeaux", "Strasbourg",
}

var clientCategories = []string{"web", "store", "partner"}

var productCategories = []string{
	"Electronics", "Accessories", "Lighting", "Furniture", "Stationery", "Kitchen",
}

var orderStatuses = []string{
	"Confirmed", "Confirmed", "Confirmed", "Confirmed", "Confirmed", "Confirmed", "Confirmed",
	"Pending", "Pending",
	"Cancelled",
}

var discounts = []float64{0, 0, 0, 5, 10, 10, 20}

// Generator generates demo data using gofakeit.
type Generator struct {
	faker *gofakeit.Faker
}

// New creates a generator. A zero seed gives non-reproducible data.
func New(seed uint64) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{faker: gofakeit.New(seed)}
}

// Seed populates the operational tables. Counts come from cfg; client and
// product identifiers are sequential so orders can reference them.
func (g *Generator) Seed(ctx context.Context, q db.Querier, cfg Config) error {
	if err := g.seedClients(ctx, q, cfg); err != nil {
		return fmt.Errorf("failed to seed clients: %w", err)
	}
	if err := g.seedProducts(ctx, q, cfg); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	if err := g.seedOrders(ctx, q, cfg); err != nil {
		return fmt.Errorf("failed to seed orders: %w", err)
	}
	return nil
}

func (g *Generator) seedClients(ctx context.Context, q db.Querier, cfg Config) error {
	logging.Info().Int("count", cfg.Clients).Msg("Seeding clients")

	signupStart := cfg.OrderDateStart.AddDate(-2, 0, 0)
	batch := &pgx.Batch{}
	for i := 1; i <= cfg.Clients; i++ {
		var email *string
		if g.faker.IntRange(1, 10) > 1 { // roughly one in ten has no email on file
			e := g.faker.Email()
			email = &e
		}
		batch.Queue(`
            INSERT INTO clients (client_id, nom, email, ville, date_inscription, categorie)
            VALUES ($1, $2, $3, $4, $5, $6)
            ON CONFLICT (client_id) DO NOTHING`,
			i,
			g.faker.Name(),
			email,
			g.faker.RandomString(cities),
			g.faker.DateRange(signupStart, cfg.OrderDateEnd),
			g.faker.RandomString(clientCategories),
		)
	}
	return flushBatch(ctx, q, batch)
}

func (g *Generator) seedProducts(ctx context.Context, q db.Querier, cfg Config) error {
	logging.Info().Int("count", cfg.Products).Msg("Seeding products")

	batch := &pgx.Batch{}
	for i := 1; i <= cfg.Products; i++ {
		price := g.faker.Price(5, 400)
		cost := price * float64(g.faker.IntRange(30, 79)) / 100
		batch.Queue(`
            INSERT INTO produits (produit_id, nom, categorie, prix, cout_production, est_actif)
            VALUES ($1, $2, $3, $4, $5, $6)
            ON CONFLICT (produit_id) DO NOTHING`,
			i,
			g.faker.ProductName(),
			g.faker.RandomString(productCategories),
			price,
			cost,
			g.faker.IntRange(1, 20) > 1,
		)
	}
	return flushBatch(ctx, q, batch)
}

func (g *Generator) seedOrders(ctx context.Context, q db.Querier, cfg Config) error {
	logging.Info().Int("count", cfg.Orders).Msg("Seeding orders")

	batch := &pgx.Batch{}
	for i := 1; i <= cfg.Orders; i++ {
		batch.Queue(`
            INSERT INTO commandes (commande_id, client_id, produit_id, date_commande, quantite, reduction, statut)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
            ON CONFLICT (commande_id) DO NOTHING`,
			i,
			g.faker.IntRange(1, cfg.Clients),
			g.faker.IntRange(1, cfg.Products),
			g.faker.DateRange(cfg.OrderDateStart, cfg.OrderDateEnd),
			g.faker.IntRange(1, 5),
			discounts[g.faker.IntRange(0, len(discounts)-1)],
			g.faker.RandomString(orderStatuses),
		)
	}
	return flushBatch(ctx, q, batch)
}

func flushBatch(ctx context.Context, q db.Querier, batch *pgx.Batch) error {
	results := q.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return results.Close()
}
