package warehouse

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duocommerce/warehousectl/internal/db"
	"github.com/duocommerce/warehousectl/internal/logging"
)

// Stage is the orchestrator state. Stages run strictly in order; any failure
// moves directly to StageFailed.
type Stage int

const (
	StageInit Stage = iota
	StageDatesReady
	StageStatusReady
	StageClientsReady
	StageProductsReady
	StageFactsReady
	StageCommitted
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageInit:
		return "init"
	case StageDatesReady:
		return "dates_ready"
	case StageStatusReady:
		return "status_ready"
	case StageClientsReady:
		return "clients_ready"
	case StageProductsReady:
		return "products_ready"
	case StageFactsReady:
		return "facts_ready"
	case StageCommitted:
		return "committed"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configures a refresh run.
type Options struct {
	// CalendarStart and CalendarEnd bound the date dimension, inclusive.
	CalendarStart time.Time
	CalendarEnd   time.Time

	// ReferenceCity maps to the core commercial region bucket.
	ReferenceCity string

	// Now anchors tenure and date-added computations. Zero means wall clock.
	Now time.Time
}

// Summary reports the outcome of a refresh run.
type Summary struct {
	Stage             Stage
	DatesInserted     int64
	ClientsInserted   int64
	ClientsRefreshed  int64
	ProductsInserted  int64
	ProductsRefreshed int64
	FactsInserted     int64
}

// Refresher runs the five-stage warehouse refresh inside one transaction:
// dimensions strictly before facts, commit only after every stage succeeds,
// full rollback on any stage failure.
type Refresher struct {
	pool *pgxpool.Pool
	opts Options
}

// NewRefresher creates a refresher over the given pool.
func NewRefresher(pool *pgxpool.Pool, opts Options) *Refresher {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	return &Refresher{pool: pool, opts: opts}
}

// Run executes the refresh. The returned summary reports the terminal stage
// and per-stage counts; on error the transaction has been rolled back and no
// rows from this run persist.
func (r *Refresher) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{Stage: StageInit}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		summary.Stage = StageFailed
		return summary, fmt.Errorf("failed to begin refresh transaction: %w", err)
	}
	// Rollback is a no-op once the transaction committed.
	defer func() { _ = tx.Rollback(ctx) }()

	fail := func(stage string, err error) (*Summary, error) {
		summary.Stage = StageFailed
		logging.Error().Err(err).Str("stage", stage).Msg("Refresh stage failed, rolling back")
		return summary, fmt.Errorf("refresh stage %s: %w", stage, err)
	}

	logging.Info().Msg("Refreshing dim_dates")
	summary.DatesInserted, err = RefreshDates(ctx, tx, r.opts.CalendarStart, r.opts.CalendarEnd)
	if err != nil {
		return fail("dates", err)
	}
	summary.Stage = StageDatesReady

	logging.Info().Msg("Refreshing dim_statut")
	if err := RefreshStatuses(ctx, tx); err != nil {
		return fail("status", err)
	}
	summary.Stage = StageStatusReady

	logging.Info().Msg("Refreshing dim_clients")
	summary.ClientsInserted, summary.ClientsRefreshed, err = RefreshClients(ctx, tx, r.opts.ReferenceCity, r.opts.Now)
	if err != nil {
		return fail("clients", err)
	}
	summary.Stage = StageClientsReady

	logging.Info().Msg("Refreshing dim_produits")
	summary.ProductsInserted, summary.ProductsRefreshed, err = RefreshProducts(ctx, tx, r.opts.Now)
	if err != nil {
		return fail("products", err)
	}
	summary.Stage = StageProductsReady

	logging.Info().Msg("Refreshing fct_commandes")
	summary.FactsInserted, err = RefreshFacts(ctx, tx)
	if err != nil {
		return fail("facts", err)
	}
	summary.Stage = StageFactsReady

	// The run record commits or rolls back with the run itself.
	if err := db.SaveRefreshMetadata(ctx, tx, map[string]string{
		"dates_inserted":     strconv.FormatInt(summary.DatesInserted, 10),
		"clients_inserted":   strconv.FormatInt(summary.ClientsInserted, 10),
		"clients_refreshed":  strconv.FormatInt(summary.ClientsRefreshed, 10),
		"products_inserted":  strconv.FormatInt(summary.ProductsInserted, 10),
		"products_refreshed": strconv.FormatInt(summary.ProductsRefreshed, 10),
		"facts_inserted":     strconv.FormatInt(summary.FactsInserted, 10),
	}); err != nil {
		return fail("metadata", err)
	}

	if err := tx.Commit(ctx); err != nil {
		summary.Stage = StageFailed
		return summary, fmt.Errorf("failed to commit refresh: %w", err)
	}
	summary.Stage = StageCommitted

	logging.Info().
		Int64("dates", summary.DatesInserted).
		Int64("clients_inserted", summary.ClientsInserted).
		Int64("clients_refreshed", summary.ClientsRefreshed).
		Int64("products_inserted", summary.ProductsInserted).
		Int64("products_refreshed", summary.ProductsRefreshed).
		Int64("facts", summary.FactsInserted).
		Msg("Warehouse refresh committed")

	return summary, nil
}
