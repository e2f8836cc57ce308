package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/duocommerce/warehousectl/internal/db"
)

// Price tier labels.
const (
	TierPremium = "premium"
	TierEntry   = "entry"
	TierMid     = "mid"
)

// Price tier thresholds, both inclusive: a product priced exactly at the
// high threshold is premium, exactly at the low threshold is entry.
const (
	priceTierHigh = 200.0
	priceTierLow  = 50.0
)

// ProductAttrs holds the derived columns of a product dimension row.
type ProductAttrs struct {
	Tier       string
	MarginRate float64
	UnitMargin float64
}

// TierForPrice maps a price to its tier label.
func TierForPrice(price float64) string {
	switch {
	case price >= priceTierHigh:
		return TierPremium
	case price <= priceTierLow:
		return TierEntry
	default:
		return TierMid
	}
}

// MarginRate returns the margin as a percentage of price. Zero when the
// price is zero rather than dividing by it.
func MarginRate(price, cost float64) float64 {
	if price <= 0 {
		return 0
	}
	return (price - cost) / price * 100
}

// DeriveProductAttrs computes every derived product column from price and
// production cost.
func DeriveProductAttrs(price, cost float64) ProductAttrs {
	return ProductAttrs{
		Tier:       TierForPrice(price),
		MarginRate: MarginRate(price, cost),
		UnitMargin: price - cost,
	}
}

const selectSourceProductsSQL = `
SELECT p.produit_id, p.nom, p.categorie, p.prix, p.cout_production, p.est_actif,
       dp.id_produit IS NULL AS is_new
FROM produits p
LEFT JOIN dim_produits dp ON dp.produit_id_original = p.produit_id
ORDER BY p.produit_id`

const upsertProductSQL = `
INSERT INTO dim_produits (
    produit_id_original, nom, categorie, prix, cout_production, est_actif,
    gamme_prix, taux_marge, marge_brut_unit, est_produit_phare, date_ajout
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, $10)
ON CONFLICT (produit_id_original) DO UPDATE SET
    nom             = EXCLUDED.nom,
    categorie       = EXCLUDED.categorie,
    prix            = EXCLUDED.prix,
    cout_production = EXCLUDED.cout_production,
    est_actif       = EXCLUDED.est_actif,
    gamme_prix      = EXCLUDED.gamme_prix,
    taux_marge      = EXCLUDED.taux_marge,
    marge_brut_unit = EXCLUDED.marge_brut_unit`

type sourceProduct struct {
	ID       int64
	Name     string
	Category string
	Price    float64
	Cost     float64
	Active   bool
	IsNew    bool
}

// RefreshProducts upserts every operational product into dim_produits. New
// natural keys are inserted with the run date as date_ajout and the flagship
// flag off; existing rows get price, cost and derived columns overwritten
// (SCD type 1), keeping date_ajout and the flagship flag first-seen. Returns
// the number of rows inserted and the number refreshed.
func RefreshProducts(ctx context.Context, q db.Querier, now time.Time) (int64, int64, error) {
	rows, err := q.Query(ctx, selectSourceProductsSQL)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read source products: %w", err)
	}

	var products []sourceProduct
	for rows.Next() {
		var p sourceProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Cost, &p.Active, &p.IsNew); err != nil {
			rows.Close()
			return 0, 0, fmt.Errorf("failed to scan source product: %w", err)
		}
		products = append(products, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, 0, fmt.Errorf("failed to read source products: %w", err)
	}

	batch := &pgx.Batch{}
	var inserted, refreshed int64
	for _, p := range products {
		attrs := DeriveProductAttrs(p.Price, p.Cost)
		batch.Queue(upsertProductSQL,
			p.ID, p.Name, p.Category, p.Price, p.Cost, p.Active,
			attrs.Tier, attrs.MarginRate, attrs.UnitMargin, now,
		)
		if p.IsNew {
			inserted++
		} else {
			refreshed++
		}
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return 0, 0, fmt.Errorf("failed to upsert product: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return 0, 0, fmt.Errorf("failed to flush product batch: %w", err)
	}

	return inserted, refreshed, nil
}
