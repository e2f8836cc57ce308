package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/duocommerce/warehousectl/internal/db"
)

// Behavioral segment labels derived from client tenure.
const (
	SegmentNew     = "New"
	SegmentLoyal   = "Loyal"
	SegmentRegular = "Regular"
)

// Commercial region buckets. The reference city maps to the core region,
// every other city to the catch-all.
const (
	RegionCore  = "ile-de-france"
	RegionOther = "autres-regions"
)

// Tenure thresholds, in whole months. The comparisons are strict on both
// sides: exactly 3 and exactly 12 months are both Regular.
const (
	tenureNewBelow   = 3
	tenureLoyalAbove = 12
)

// ClientAttrs holds the derived columns of a client dimension row.
type ClientAttrs struct {
	TenureMonths int
	Segment      string
	EmailPresent bool
	Region       string
}

// MonthsBetween returns the number of whole months from one date to another,
// truncating any partial month. Never negative.
func MonthsBetween(from, to time.Time) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// SegmentForTenure maps a tenure in whole months to a behavioral segment.
func SegmentForTenure(months int) string {
	switch {
	case months < tenureNewBelow:
		return SegmentNew
	case months > tenureLoyalAbove:
		return SegmentLoyal
	default:
		return SegmentRegular
	}
}

// RegionForCity maps a city to its commercial region bucket.
func RegionForCity(city, referenceCity string) string {
	if city == referenceCity {
		return RegionCore
	}
	return RegionOther
}

// DeriveClientAttrs computes every derived client column from the signup
// date, email presence and city, relative to now.
func DeriveClientAttrs(signup time.Time, email *string, city, referenceCity string, now time.Time) ClientAttrs {
	tenure := MonthsBetween(signup, now)
	return ClientAttrs{
		TenureMonths: tenure,
		Segment:      SegmentForTenure(tenure),
		EmailPresent: email != nil && *email != "",
		Region:       RegionForCity(city, referenceCity),
	}
}

const selectSourceClientsSQL = `
SELECT c.client_id, c.nom, c.email, c.ville, c.date_inscription, c.categorie,
       dc.id_client IS NULL AS is_new
FROM clients c
LEFT JOIN dim_clients dc ON dc.client_id_original = c.client_id
ORDER BY c.client_id`

const upsertClientSQL = `
INSERT INTO dim_clients (
    client_id_original, nom, email, ville, date_inscription, categorie,
    anciennete_mois, segment, email_present, region_commercial
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (client_id_original) DO UPDATE SET
    nom               = EXCLUDED.nom,
    email             = EXCLUDED.email,
    ville             = EXCLUDED.ville,
    categorie         = EXCLUDED.categorie,
    anciennete_mois   = EXCLUDED.anciennete_mois,
    segment           = EXCLUDED.segment,
    email_present     = EXCLUDED.email_present,
    region_commercial = EXCLUDED.region_commercial`

type sourceClient struct {
	ID       int64
	Name     string
	Email    *string
	City     string
	SignedUp time.Time
	Category string
	IsNew    bool
}

// RefreshClients upserts every operational client into dim_clients. New
// natural keys are inserted; rows already present get their derived columns
// overwritten (SCD type 1), keeping signup date first-seen. Returns the
// number of rows inserted and the number refreshed.
func RefreshClients(ctx context.Context, q db.Querier, referenceCity string, now time.Time) (int64, int64, error) {
	rows, err := q.Query(ctx, selectSourceClientsSQL)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read source clients: %w", err)
	}

	var clients []sourceClient
	for rows.Next() {
		var c sourceClient
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.City, &c.SignedUp, &c.Category, &c.IsNew); err != nil {
			rows.Close()
			return 0, 0, fmt.Errorf("failed to scan source client: %w", err)
		}
		clients = append(clients, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, 0, fmt.Errorf("failed to read source clients: %w", err)
	}

	batch := &pgx.Batch{}
	var inserted, refreshed int64
	for _, c := range clients {
		attrs := DeriveClientAttrs(c.SignedUp, c.Email, c.City, referenceCity, now)
		batch.Queue(upsertClientSQL,
			c.ID, c.Name, c.Email, c.City, c.SignedUp, c.Category,
			attrs.TenureMonths, attrs.Segment, attrs.EmailPresent, attrs.Region,
		)
		if c.IsNew {
			inserted++
		} else {
			refreshed++
		}
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return 0, 0, fmt.Errorf("failed to upsert client: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return 0, 0, fmt.Errorf("failed to flush client batch: %w", err)
	}

	return inserted, refreshed, nil
}
