package export

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"tradelens/internal/insights"
	"tradelens/internal/model"
)

// WriteSQLite serializes records and summary metrics into a fresh sqlite
// database at path. Existing rows at the same path are replaced.
func WriteSQLite(ctx context.Context, path string, records []model.ShipmentRecord, metrics []insights.Metric) error {
	if path == "" {
		return fmt.Errorf("export: sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, statement := range []string{`DELETE FROM shipments;`, `DELETE FROM summary_metrics;`} {
		if _, err = tx.ExecContext(ctx, statement); err != nil {
			return err
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO shipments (
			consignee, exporter, mark, tons, month, year, consignee_state, product
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range records {
		record := records[i]
		var tons any
		if record.HasQuantity {
			tons = record.Quantity.String()
		}
		_, err = stmt.ExecContext(
			ctx,
			record.Consignee,
			record.Exporter,
			record.Mark,
			tons,
			record.Month.String(),
			record.Year,
			record.State,
			record.ProductCategory,
		)
		if err != nil {
			return err
		}
	}

	for _, metric := range metrics {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO summary_metrics (label, value) VALUES (?, ?)`,
			metric.Label, metric.Value,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS shipments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			consignee TEXT NOT NULL,
			exporter TEXT NOT NULL,
			mark TEXT NOT NULL,
			tons TEXT,
			month TEXT NOT NULL,
			year INTEGER NOT NULL,
			consignee_state TEXT NOT NULL,
			product TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS summary_metrics (
			label TEXT NOT NULL,
			value TEXT NOT NULL
		);`,
	}

	for _, statement := range statements {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return err
		}
	}

	return nil
}
