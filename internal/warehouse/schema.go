// Package warehouse implements the incremental refresh of the DuoCommerce
// dimensional warehouse: a calendar dimension, a static status lookup, client
// and product dimensions keyed by their operational identifiers, and an
// order-line fact table resolving natural keys to surrogate keys.
package warehouse

import (
	"context"
	"fmt"

	"github.com/duocommerce/warehousectl/internal/db"
)

// Target schema. Every natural-key idempotence check is backed by a real
// UNIQUE constraint so the conditional inserts are atomic. The fact key
// columns carry no foreign-key constraints: orders whose client or product is
// missing from the dimensions load with NULL surrogate keys instead of being
// rejected.
const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS dim_dates (
    id_date            INTEGER PRIMARY KEY,
    date_complete      DATE NOT NULL UNIQUE,
    annee              INTEGER NOT NULL,
    trimestre          INTEGER NOT NULL,
    mois               INTEGER NOT NULL,
    nom_mois           VARCHAR(20) NOT NULL,
    jour_mois          INTEGER NOT NULL,
    jour_semaine       INTEGER NOT NULL,
    nom_jour           VARCHAR(20) NOT NULL,
    est_weekend        BOOLEAN NOT NULL,
    est_jour_ferie     BOOLEAN NOT NULL,
    numero_semaine_iso INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS dim_statut (
    id_statut      INTEGER PRIMARY KEY,
    code_statut    VARCHAR(20) NOT NULL,
    libelle_statut VARCHAR(50) NOT NULL
);

CREATE TABLE IF NOT EXISTS dim_clients (
    id_client          SERIAL PRIMARY KEY,
    client_id_original INTEGER NOT NULL UNIQUE,
    nom                VARCHAR(100),
    email              VARCHAR(255),
    ville              VARCHAR(100),
    date_inscription   DATE,
    categorie          VARCHAR(50),
    anciennete_mois    INTEGER NOT NULL,
    segment            VARCHAR(20) NOT NULL,
    email_present      BOOLEAN NOT NULL,
    region_commercial  VARCHAR(30) NOT NULL
);

CREATE TABLE IF NOT EXISTS dim_produits (
    id_produit          SERIAL PRIMARY KEY,
    produit_id_original INTEGER NOT NULL UNIQUE,
    nom                 VARCHAR(200),
    categorie           VARCHAR(50),
    prix                NUMERIC(10,2) NOT NULL,
    cout_production     NUMERIC(10,2) NOT NULL,
    est_actif           BOOLEAN NOT NULL,
    gamme_prix          VARCHAR(20) NOT NULL,
    taux_marge          NUMERIC(6,2) NOT NULL,
    marge_brut_unit     NUMERIC(10,2) NOT NULL,
    est_produit_phare   BOOLEAN NOT NULL,
    date_ajout          DATE NOT NULL
);

CREATE TABLE IF NOT EXISTS fct_commandes (
    id                   SERIAL PRIMARY KEY,
    commande_id_original INTEGER NOT NULL UNIQUE,
    id_date              INTEGER NOT NULL,
    id_client            INTEGER,
    id_produit           INTEGER,
    id_statut            INTEGER,
    quantite             INTEGER NOT NULL,
    prix_unitaire        NUMERIC(10,2) NOT NULL,
    reduction            NUMERIC(5,2) NOT NULL,
    montant_total        NUMERIC(12,2) NOT NULL,
    marge                NUMERIC(12,2) NOT NULL
);

CREATE TABLE IF NOT EXISTS rfm_segments (
    id_client   INTEGER PRIMARY KEY,
    nom         VARCHAR(100),
    segment     INTEGER NOT NULL,
    segment_nom VARCHAR(50) NOT NULL,
    recence     INTEGER NOT NULL,
    frequence   INTEGER NOT NULL,
    montant     NUMERIC(12,2) NOT NULL
);

CREATE OR REPLACE VIEW v_commandes_confirmees AS
SELECT f.id_client,
       d.date_complete,
       f.montant_total
FROM fct_commandes f
JOIN dim_dates d ON f.id_date = d.id_date
WHERE f.id_statut = 1;
`

// Operational source schema, owned by the upstream commerce system. Created
// here only for demo and test environments (init --with-source, seed).
const createSourceSchemaSQL = `
CREATE TABLE IF NOT EXISTS clients (
    client_id        SERIAL PRIMARY KEY,
    nom              VARCHAR(100) NOT NULL,
    email            VARCHAR(255),
    ville            VARCHAR(100) NOT NULL,
    date_inscription DATE NOT NULL,
    categorie        VARCHAR(50) NOT NULL
);

CREATE TABLE IF NOT EXISTS produits (
    produit_id      SERIAL PRIMARY KEY,
    nom             VARCHAR(200) NOT NULL,
    categorie       VARCHAR(50) NOT NULL,
    prix            NUMERIC(10,2) NOT NULL,
    cout_production NUMERIC(10,2) NOT NULL,
    est_actif       BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS commandes (
    commande_id   SERIAL PRIMARY KEY,
    client_id     INTEGER NOT NULL,
    produit_id    INTEGER NOT NULL,
    date_commande DATE NOT NULL,
    quantite      INTEGER NOT NULL,
    reduction     NUMERIC(5,2),
    statut        VARCHAR(20)
);
`

var warehouseTables = []string{
	"rfm_segments",
	"fct_commandes",
	"dim_produits",
	"dim_clients",
	"dim_statut",
	"dim_dates",
}

var sourceTables = []string{
	"commandes",
	"produits",
	"clients",
}

// CreateSchema creates the warehouse target tables and the confirmed-orders view.
func CreateSchema(ctx context.Context, q db.Querier) error {
	if _, err := q.Exec(ctx, createSchemaSQL); err != nil {
		return fmt.Errorf("failed to create warehouse schema: %w", err)
	}
	return nil
}

// CreateSourceSchema creates the operational source tables.
func CreateSourceSchema(ctx context.Context, q db.Querier) error {
	if _, err := q.Exec(ctx, createSourceSchemaSQL); err != nil {
		return fmt.Errorf("failed to create source schema: %w", err)
	}
	return nil
}

// DropSchema drops the warehouse target tables and view.
func DropSchema(ctx context.Context, q db.Querier) error {
	if _, err := q.Exec(ctx, "DROP VIEW IF EXISTS v_commandes_confirmees"); err != nil {
		return fmt.Errorf("failed to drop view: %w", err)
	}
	for _, table := range warehouseTables {
		if _, err := q.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}

// DropSourceSchema drops the operational source tables.
func DropSourceSchema(ctx context.Context, q db.Querier) error {
	for _, table := range sourceTables {
		if _, err := q.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}

// TableCounts returns the row count of every warehouse table.
func TableCounts(ctx context.Context, q db.Querier) (map[string]int64, error) {
	counts := make(map[string]int64, len(warehouseTables))
	for _, table := range warehouseTables {
		var n int64
		if err := q.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
