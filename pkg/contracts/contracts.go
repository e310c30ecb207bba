package contracts

import (
	"context"

	"github.com/oarkflow/productetl/pkg/models"
	"github.com/oarkflow/productetl/pkg/utils"
)

type SourceOption struct {
	Query string
	Args  []any
}

// Option defines a function type for configuring an extraction.
type Option func(*SourceOption)

// WithQuery overrides the source's default query.
func WithQuery(query string) Option {
	return func(o *SourceOption) {
		o.Query = query
	}
}

func WithArguments(args ...any) Option {
	return func(o *SourceOption) {
		o.Args = args
	}
}

// Source returns the complete result set of one extraction.
type Source interface {
	Setup(ctx context.Context) error
	Extract(ctx context.Context, opts ...Option) ([]utils.Record, error)
	Close() error
}

// SheetReader reads a tabular file with normalized column headers.
type SheetReader interface {
	Read(ctx context.Context) ([]utils.Record, error)
}

// RelationalSink stores the normalized product schema. Every insert skips
// rows whose primary key already exists and reports how many rows were
// actually written.
type RelationalSink interface {
	Setup(ctx context.Context) error
	Truncate(ctx context.Context) error
	InsertProducts(ctx context.Context, products []models.Product) (int64, error)
	InsertPrices(ctx context.Context, prices []models.Price) (int64, error)
	InsertSales(ctx context.Context, sales []models.Sale) (int64, error)
	Close() error
}

// DocumentSink appends records as new documents.
type DocumentSink interface {
	Setup(ctx context.Context) error
	StoreBatch(ctx context.Context, batch []utils.Record) error
	Close() error
}

type Transformer interface {
	Name() string
	Transform(ctx context.Context, rec utils.Record) (utils.Record, error)
}
