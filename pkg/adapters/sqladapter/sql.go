package sqladapter

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/oarkflow/log"
	"github.com/oarkflow/squealx"
	"github.com/oarkflow/squealx/connection"
	"github.com/oarkflow/squealx/drivers/sqlite"

	"github.com/oarkflow/productetl/pkg/config"
	"github.com/oarkflow/productetl/pkg/contracts"
	"github.com/oarkflow/productetl/pkg/models"
	"github.com/oarkflow/productetl/pkg/utils"
)

// Open connects to the relational store described by cfg. For sqlite the
// database name is the file path.
func Open(cfg config.Database) (*squealx.DB, error) {
	var (
		db  *squealx.DB
		err error
	)
	if d, derr := dialectFor(cfg.Driver); derr == nil && d.driver == "sqlite" {
		db, err = sqlite.Open(cfg.Database, "")
	} else {
		db, _, err = connection.FromConfig(cfg.ToSquealxConfig())
	}
	if err != nil {
		return nil, fmt.Errorf("connect to %s database %s: %w", cfg.Driver, cfg.Database, err)
	}
	return db, nil
}

type Adapter struct {
	Db         *squealx.DB
	dialect    dialect
	mode       string
	query      string
	autoCreate bool
	batchSize  int
	logger     *log.Logger
}

type LoaderOption func(*Adapter)

func WithAutoCreate(autoCreate bool) LoaderOption {
	return func(a *Adapter) {
		a.autoCreate = autoCreate
	}
}

func WithBatchSize(size int) LoaderOption {
	return func(a *Adapter) {
		a.batchSize = size
	}
}

func WithLogger(logger *log.Logger) LoaderOption {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// NewSource creates an adapter that extracts the product/price/sales join.
func NewSource(db *squealx.DB, driver string) (*Adapter, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &Adapter{Db: db, dialect: d, mode: "source", query: extractQuery, logger: &log.DefaultLogger}, nil
}

// NewLoader creates an adapter that writes the normalized product schema.
func NewLoader(db *squealx.DB, driver string, opts ...LoaderOption) (*Adapter, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	a := &Adapter{Db: db, dialect: d, mode: "loader", batchSize: 500, logger: &log.DefaultLogger}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

var (
	_ contracts.Source         = (*Adapter)(nil)
	_ contracts.RelationalSink = (*Adapter)(nil)
)

func (a *Adapter) Setup(ctx context.Context) error {
	if a.mode != "loader" {
		var one int
		if err := a.Db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
			return fmt.Errorf("ping %s: %w", a.dialect.driver, err)
		}
		return nil
	}
	if !a.autoCreate {
		return nil
	}
	stmts, err := a.dialect.schemaStatements()
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := a.Db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (a *Adapter) Truncate(ctx context.Context) error {
	for _, stmt := range a.dialect.truncateStatements() {
		if _, err := a.Db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
	}
	return nil
}

func (a *Adapter) InsertProducts(ctx context.Context, products []models.Product) (int64, error) {
	values := make([][]any, len(products))
	for i, p := range products {
		values[i] = p.Values()
	}
	return a.insert(ctx, models.TableProduct, models.ProductColumns, values, true)
}

func (a *Adapter) InsertPrices(ctx context.Context, prices []models.Price) (int64, error) {
	values := make([][]any, len(prices))
	for i, p := range prices {
		values[i] = p.Values()
	}
	return a.insert(ctx, models.TablePrice, models.PriceColumns, values, true)
}

func (a *Adapter) InsertSales(ctx context.Context, sales []models.Sale) (int64, error) {
	values := make([][]any, len(sales))
	for i, s := range sales {
		values[i] = s.Values()
	}
	return a.insert(ctx, models.TableSales, models.SaleColumns, values, true)
}

// insert writes one table inside a single transaction. A failing chunk rolls
// back every chunk before it, so a table is either fully written or untouched.
func (a *Adapter) insert(ctx context.Context, table string, cols []string, values [][]any, ignore bool) (written int64, err error) {
	if len(values) == 0 {
		return 0, nil
	}
	tx, err := a.Db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert into %s: %w", table, err)
	}
	defer func() {
		if err == nil {
			return
		}
		written = 0
		if rbErr := tx.Rollback(); rbErr != nil {
			a.logger.Error().Err(rbErr).Str("table", table).Msg("failed to roll back insert")
		}
	}()
	size := a.dialect.chunkSize(len(cols), a.batchSize)
	for start := 0; start < len(values); start += size {
		end := min(start+size, len(values))
		chunk := values[start:end]
		args := make([]any, 0, len(chunk)*len(cols))
		for _, row := range chunk {
			args = append(args, row...)
		}
		q := a.dialect.buildInsert(table, cols, len(chunk), ignore)
		res, execErr := tx.ExecContext(ctx, q, args...)
		if execErr != nil {
			return 0, fmt.Errorf("insert into %s (rows %d-%d): %w", table, start+1, end, execErr)
		}
		written += affected(res, int64(len(chunk)))
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert into %s: %w", table, err)
	}
	return written, nil
}

func affected(res sql.Result, fallback int64) int64 {
	if res == nil {
		return fallback
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fallback
	}
	return n
}

func (a *Adapter) Extract(ctx context.Context, opts ...contracts.Option) ([]utils.Record, error) {
	opt := &contracts.SourceOption{Query: a.query}
	for _, op := range opts {
		op(opt)
	}
	rows, err := a.Db.QueryContext(ctx, opt.Query, opt.Args...)
	if err != nil {
		return nil, fmt.Errorf("extract query: %w", err)
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("extract columns: %w", err)
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("extract column types: %w", err)
	}
	typeNames := make([]string, len(colTypes))
	for i, ct := range colTypes {
		typeNames[i] = ct.DatabaseTypeName()
	}
	records, err := scanRecords(rows, cols, typeNames)
	if err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("extract rows: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
}

func scanRecords(rows rowScanner, cols, typeNames []string) ([]utils.Record, error) {
	var records []utils.Record
	for rows.Next() {
		columns := make([]any, len(cols))
		pointers := make([]any, len(cols))
		for i := range columns {
			pointers[i] = &columns[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("extract scan: %w", err)
		}
		rec := make(utils.Record, len(cols))
		for i, name := range cols {
			typeName := ""
			if i < len(typeNames) {
				typeName = typeNames[i]
			}
			rec[name] = decodeValue(typeName, columns[i])
		}
		records = append(records, rec)
	}
	return records, nil
}

// decodeValue turns driver byte slices into numbers where the column type
// says so. NUMERIC arrives as text from lib/pq.
func decodeValue(dbType string, v any) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	if b == nil {
		return nil
	}
	s := string(b)
	switch strings.ToUpper(dbType) {
	case "INT", "INT2", "INT4", "INT8", "INTEGER", "BIGINT", "SMALLINT", "TINYINT", "MEDIUMINT":
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case "NUMERIC", "DECIMAL", "FLOAT", "FLOAT4", "FLOAT8", "DOUBLE", "REAL":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

func (a *Adapter) Close() error {
	if a.Db == nil {
		return nil
	}
	if err := a.Db.Close(); err != nil {
		a.logger.Error().Err(err).Str("mode", a.mode).Msg("failed to close database")
		return err
	}
	return nil
}
