package warehouse

import (
	"context"
	"fmt"

	"github.com/duocommerce/warehousectl/internal/db"
)

// Canonical status members. The dimension is static: the same three rows
// regardless of how many times the builder runs.
const (
	StatusConfirmed int16 = 1
	StatusCancelled int16 = 2
	StatusPending   int16 = 3
)

var statusMembers = []struct {
	ID    int16
	Code  string
	Label string
}{
	{StatusConfirmed, "CONFIRMED", "Confirmed"},
	{StatusCancelled, "CANCELLED", "Cancelled"},
	{StatusPending, "PENDING", "Pending"},
}

const createStatusTableSQL = `
CREATE TABLE IF NOT EXISTS dim_statut (
    id_statut      INTEGER PRIMARY KEY,
    code_statut    VARCHAR(20) NOT NULL,
    libelle_statut VARCHAR(50) NOT NULL
)`

const insertStatusSQL = `
INSERT INTO dim_statut (id_statut, code_statut, libelle_statut)
VALUES ($1, $2, $3)
ON CONFLICT (id_statut) DO NOTHING`

// RefreshStatuses ensures the status lookup table exists with its canonical
// members. Conflicts on the primary key are no-ops, so repeated runs never
// produce duplicate or extra rows.
func RefreshStatuses(ctx context.Context, q db.Querier) error {
	if _, err := q.Exec(ctx, createStatusTableSQL); err != nil {
		return fmt.Errorf("failed to create dim_statut: %w", err)
	}
	for _, m := range statusMembers {
		if _, err := q.Exec(ctx, insertStatusSQL, m.ID, m.Code, m.Label); err != nil {
			return fmt.Errorf("failed to insert status %s: %w", m.Code, err)
		}
	}
	return nil
}
