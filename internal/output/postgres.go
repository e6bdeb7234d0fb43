package output

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"riprice/internal/aws/pricing/models"
	"riprice/internal/logging"
)

// postgresColumns mirror Header, plus the run the row was loaded by
var postgresColumns = []struct {
	name string
	kind string
}{
	{"sku", "TEXT NOT NULL"},
	{"offer_term_code", "TEXT NOT NULL"},
	{"platform", "TEXT"},
	{"tenancy", "TEXT"},
	{"operation", "TEXT"},
	{"usage_type", "TEXT"},
	{"region", "TEXT"},
	{"service", "TEXT NOT NULL"},
	{"instance_type", "TEXT"},
	{"operating_system", "TEXT"},
	{"adjusted_price_per_unit", "DOUBLE PRECISION"},
	{"on_demand_hourly_cost", "DOUBLE PRECISION"},
	{"breakeven_percentage", "DOUBLE PRECISION"},
	{"upfront_fee", "DOUBLE PRECISION"},
	{"lease_term", "INTEGER"},
	{"purchase_option", "TEXT"},
	{"offering_class", "TEXT"},
	{"term_type", "TEXT"},
	{"term_key", "TEXT"},
	{"reserved_instance_cost", "DOUBLE PRECISION"},
	{"on_demand_cost_for_term", "DOUBLE PRECISION"},
	{"cost_savings", "DOUBLE PRECISION"},
	{"percent_savings", "DOUBLE PRECISION"},
	{"vcpu", "INTEGER"},
	{"memory", "DOUBLE PRECISION"},
	{"run_id", "TEXT"},
	{"loaded_at", "TIMESTAMPTZ"},
}

// PostgresSink replaces the rows of a service in a Postgres table
type PostgresSink struct {
	db    *sql.DB
	table string
	runID string
	now   func() time.Time
}

// OpenPostgres connects to dsn using the lib/pq driver
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// NewPostgresSink creates a sink writing into table
func NewPostgresSink(db *sql.DB, table, runID string) (*PostgresSink, error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("postgres table not specified")
	}
	return &PostgresSink{db: db, table: table, runID: runID, now: time.Now}, nil
}

// Close closes the underlying connection pool
func (s *PostgresSink) Close() error {
	return s.db.Close()
}

// EnsureTable creates the table when it does not exist
func (s *PostgresSink) EnsureTable(ctx context.Context) error {
	cols := make([]string, 0, len(postgresColumns))
	for _, c := range postgresColumns {
		cols = append(cols, pq.QuoteIdentifier(c.name)+" "+c.kind)
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.quotedTable(), strings.Join(cols, ", "))
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}
	return nil
}

// quotedTable quotes each part of a possibly schema-qualified table name
func (s *PostgresSink) quotedTable() string {
	parts := strings.Split(s.table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// copyTarget returns the schema and table for pq.CopyInSchema
func (s *PostgresSink) copyTarget() (string, string) {
	if i := strings.LastIndex(s.table, "."); i >= 0 {
		return s.table[:i], s.table[i+1:]
	}
	return "", s.table
}

// Write deletes the service's previous rows and copies terms in, in one transaction.
// It returns the number of rows written.
func (s *PostgresSink) Write(ctx context.Context, service string, terms []models.ComparisonTerm) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	del := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", s.quotedTable(), pq.QuoteIdentifier("service"))
	res, err := tx.ExecContext(ctx, del, service)
	if err != nil {
		return 0, fmt.Errorf("failed to delete previous rows of %s: %w", service, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		logging.Debug("Deleted previous rows", map[string]interface{}{
			"service": service,
			"rows":    n,
		})
	}

	names := make([]string, len(postgresColumns))
	for i, c := range postgresColumns {
		names[i] = c.name
	}
	var copyStmt string
	if schema, table := s.copyTarget(); schema != "" {
		copyStmt = pq.CopyInSchema(schema, table, names...)
	} else {
		copyStmt = pq.CopyIn(table, names...)
	}

	stmt, err := tx.PrepareContext(ctx, copyStmt)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare copy: %w", err)
	}

	loadedAt := s.now().UTC()
	for _, t := range terms {
		if _, err := stmt.ExecContext(ctx,
			t.Sku, t.OfferTermCode, t.Platform, t.Tenancy, t.Operation, t.UsageType, t.Region,
			t.Service, t.InstanceType, t.OperatingSystem, t.AdjustedPricePerUnit, t.OnDemandHourlyCost,
			t.BreakevenPercentage, t.UpfrontFee, t.LeaseTerm, t.PurchaseOption, t.OfferingClass,
			t.TermType, t.Key, t.ReservedInstanceCost, t.OnDemandCostForTerm, t.CostSavings,
			t.PercentSavings, t.VCPU, t.Memory, s.runID, loadedAt,
		); err != nil {
			stmt.Close()
			return 0, fmt.Errorf("failed to copy sku %s: %w", t.Sku, err)
		}
	}

	// An argument-less exec flushes the COPY buffer.
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return 0, fmt.Errorf("failed to flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return 0, fmt.Errorf("failed to close copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit rows of %s: %w", service, err)
	}
	return len(terms), nil
}
