package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/duocommerce/warehousectl/internal/db"
)

// Source status labels recognized by the fact loader. Anything else resolves
// to a NULL status key rather than an error.
var statusKeys = map[string]int16{
	"Confirmed": StatusConfirmed,
	"Cancelled": StatusCancelled,
	"Pending":   StatusPending,
}

// StatusKey resolves an operational status label to its dimension key, or
// nil when the label is unrecognized or absent.
func StatusKey(label *string) *int16 {
	if label == nil {
		return nil
	}
	if key, ok := statusKeys[*label]; ok {
		k := key
		return &k
	}
	return nil
}

// LineAmount is the order-line amount: quantity times unit price, less the
// discount expressed in percentage points.
func LineAmount(quantity int, price, discountPct float64) float64 {
	return float64(quantity) * price * (1 - discountPct/100)
}

// LineMargin is the order-line margin: line amount less the production cost
// of the quantity sold.
func LineMargin(amount float64, quantity int, cost float64) float64 {
	return amount - float64(quantity)*cost
}

// The dimensions are outer-joined: an order whose client or product is not
// yet in the warehouse still loads, carrying NULL surrogate keys so orphan
// facts surface instead of being dropped. The product source join supplies
// the current price and cost, not the price at order time.
const selectSourceOrdersSQL = `
SELECT cmd.commande_id,
       cmd.date_commande,
       COALESCE(cmd.quantite, 0),
       COALESCE(cmd.reduction, 0),
       cmd.statut,
       cli_dim.id_client,
       prod_dim.id_produit,
       COALESCE(prod_source.prix, 0),
       COALESCE(prod_source.cout_production, 0)
FROM commandes AS cmd
LEFT JOIN dim_clients AS cli_dim ON cmd.client_id = cli_dim.client_id_original
LEFT JOIN dim_produits AS prod_dim ON cmd.produit_id = prod_dim.produit_id_original
LEFT JOIN produits AS prod_source ON cmd.produit_id = prod_source.produit_id
ORDER BY cmd.commande_id`

const insertFactSQL = `
INSERT INTO fct_commandes (
    commande_id_original, id_date, id_client, id_produit, id_statut,
    quantite, prix_unitaire, reduction, montant_total, marge
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (commande_id_original) DO NOTHING`

type sourceOrder struct {
	ID         int64
	OrderDate  time.Time
	Quantity   int
	Discount   float64
	Status     *string
	ClientKey  *int64
	ProductKey *int64
	Price      float64
	Cost       float64
}

// RefreshFacts loads every operational order not yet present in
// fct_commandes, keyed by the source order identifier. Returns the number of
// rows inserted.
func RefreshFacts(ctx context.Context, q db.Querier) (int64, error) {
	rows, err := q.Query(ctx, selectSourceOrdersSQL)
	if err != nil {
		return 0, fmt.Errorf("failed to read source orders: %w", err)
	}

	var orders []sourceOrder
	for rows.Next() {
		var o sourceOrder
		if err := rows.Scan(&o.ID, &o.OrderDate, &o.Quantity, &o.Discount,
			&o.Status, &o.ClientKey, &o.ProductKey, &o.Price, &o.Cost); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan source order: %w", err)
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read source orders: %w", err)
	}

	batch := &pgx.Batch{}
	for _, o := range orders {
		amount := LineAmount(o.Quantity, o.Price, o.Discount)
		margin := LineMargin(amount, o.Quantity, o.Cost)
		batch.Queue(insertFactSQL,
			o.ID, DateKey(o.OrderDate), o.ClientKey, o.ProductKey, StatusKey(o.Status),
			o.Quantity, o.Price, o.Discount, amount, margin,
		)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for i := 0; i < batch.Len(); i++ {
		tag, err := results.Exec()
		if err != nil {
			return 0, fmt.Errorf("failed to insert fact: %w", err)
		}
		inserted += tag.RowsAffected()
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("failed to flush fact batch: %w", err)
	}

	return inserted, nil
}
