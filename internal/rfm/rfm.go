// Package rfm implements the Recency-Frequency-Monetary customer
// segmentation over the warehouse: confirmed orders only, aggregated per
// client, clustered into behavioral segments.
package rfm

import (
	"context"
	"fmt"

	"github.com/duocommerce/warehousectl/internal/db"
)

// NeverOrderedRecency is the sentinel recency, in days, for clients with no
// confirmed order.
const NeverOrderedRecency = 999

// ClientRFM is the per-client feature row the segmentation consumes.
type ClientRFM struct {
	ClientKey    int64
	Name         string
	City         string
	Category     string
	TenureMonths int

	// Recency is days since the last confirmed order, 999 when none exists.
	Recency int

	// Frequency is the number of confirmed orders.
	Frequency int

	// Monetary is the total confirmed order amount.
	Monetary float64
}

// Clients left-join the confirmed-orders view so clients who never ordered
// still appear, carrying the sentinel recency and zero totals.
const loadQuery = `
SELECT c.id_client,
       c.nom,
       c.ville,
       c.categorie,
       c.anciennete_mois,
       COALESCE((CURRENT_DATE - MAX(cv.date_complete))::integer, 999) AS recence,
       COUNT(cv.id_client)                                            AS frequence,
       COALESCE(SUM(cv.montant_total), 0)                             AS montant
FROM dim_clients c
LEFT JOIN v_commandes_confirmees cv ON cv.id_client = c.id_client
GROUP BY c.id_client, c.nom, c.ville, c.categorie, c.anciennete_mois
ORDER BY montant DESC`

// Load reads the per-client RFM features from the warehouse.
func Load(ctx context.Context, q db.Querier) ([]ClientRFM, error) {
	rows, err := q.Query(ctx, loadQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to load RFM features: %w", err)
	}
	defer rows.Close()

	var clients []ClientRFM
	for rows.Next() {
		var c ClientRFM
		if err := rows.Scan(&c.ClientKey, &c.Name, &c.City, &c.Category,
			&c.TenureMonths, &c.Recency, &c.Frequency, &c.Monetary); err != nil {
			return nil, fmt.Errorf("failed to scan RFM row: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load RFM features: %w", err)
	}

	return clients, nil
}
