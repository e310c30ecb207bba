package etl

import (
	"context"
	"fmt"

	"github.com/oarkflow/productetl/pkg/contracts"
	"github.com/oarkflow/productetl/pkg/mappers"
	"github.com/oarkflow/productetl/pkg/transformers"
	"github.com/oarkflow/productetl/pkg/utils"
)

const SeedPipeline = "seed"

const (
	MsgRelationalLoaded = "Data successfully loaded into PostgreSQL"
	MsgDocumentsLoaded  = "Data successfully loaded into MongoDB"
)

// Seed bootstraps both stores from a spreadsheet. With truncation enabled
// (the default) it replaces the relational tables wholesale.
type Seed struct {
	reader     contracts.SheetReader
	relational contracts.RelationalSink
	documents  contracts.DocumentSink
	settings   settings
}

var _ Pipeline = (*Seed)(nil)

func NewSeed(reader contracts.SheetReader, relational contracts.RelationalSink, documents contracts.DocumentSink, opts ...Option) *Seed {
	return &Seed{
		reader:     reader,
		relational: relational,
		documents:  documents,
		settings:   applyOptions(opts),
	}
}

func (p *Seed) Name() string {
	return SeedPipeline
}

// Run reads and cleans the spreadsheet, assigns surrogate keys, writes the
// relational tables and then the documents. A failure in a later sink does
// not undo earlier writes.
func (p *Seed) Run(ctx context.Context) (run *Run, err error) {
	s := p.settings
	run = newRun(SeedPipeline)
	s.start(run)
	defer func() {
		s.closeAll(run, p.relational, p.documents)
		s.finish(ctx, run, err)
	}()

	records, err := p.reader.Read(ctx)
	if err != nil {
		return run, run.fail(StepExtract, err)
	}
	run.Summary.Extracted = len(records)
	s.advance(run, StageExtracted)

	rows, stats := transformers.CleanRecords(records)
	run.Summary.addCleaning(stats)
	assignment := mappers.Assign(rows)
	run.Summary.Transformed = len(rows)
	run.Summary.addMapping(assignment.Stats)
	s.warnNulled(run)
	s.advance(run, StageTransformed)

	if err := p.loadRelational(ctx, run, assignment); err != nil {
		return run, run.fail(StepLoad, err)
	}
	fmt.Fprintln(s.progress, MsgRelationalLoaded)

	if err := p.loadDocuments(ctx, run, assignment.Documents(rows)); err != nil {
		return run, run.fail(StepLoad, err)
	}
	fmt.Fprintln(s.progress, MsgDocumentsLoaded)

	run.Summary.Loaded = int(run.Summary.Products + run.Summary.Prices + run.Summary.Sales)
	s.advance(run, StageLoaded)
	return run, nil
}

func (p *Seed) loadRelational(ctx context.Context, run *Run, a mappers.Assignment) error {
	s := p.settings
	if err := p.relational.Setup(ctx); err != nil {
		return fmt.Errorf("relational setup: %w", err)
	}
	if !s.skipTruncate {
		if err := p.relational.Truncate(ctx); err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
	}
	products, err := p.relational.InsertProducts(ctx, a.Products)
	if err != nil {
		return fmt.Errorf("insert products: %w", err)
	}
	prices, err := p.relational.InsertPrices(ctx, a.Prices)
	if err != nil {
		return fmt.Errorf("insert prices: %w", err)
	}
	sales, err := p.relational.InsertSales(ctx, a.Sales)
	if err != nil {
		return fmt.Errorf("insert sales: %w", err)
	}
	run.Summary.Products = products
	run.Summary.Prices = prices
	run.Summary.Sales = sales
	run.Summary.SkippedRows = int64(len(a.Products)+len(a.Prices)+len(a.Sales)) - products - prices - sales
	if run.Summary.SkippedRows > 0 {
		s.logger.Warn().
			Str("run_id", run.ID).
			Int("skipped", int(run.Summary.SkippedRows)).
			Msg("rows skipped on primary key conflict")
	}
	return nil
}

func (p *Seed) loadDocuments(ctx context.Context, run *Run, docs []utils.Record) error {
	if err := p.documents.Setup(ctx); err != nil {
		return fmt.Errorf("document setup: %w", err)
	}
	for _, batch := range chunks(docs, p.settings.batchSize) {
		if err := p.documents.StoreBatch(ctx, batch); err != nil {
			return fmt.Errorf("insert documents: %w", err)
		}
		run.Summary.Documents += len(batch)
	}
	return nil
}
