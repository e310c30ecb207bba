package etl

import (
	"context"

	"github.com/oarkflow/productetl/pkg/contracts"
	"github.com/oarkflow/productetl/pkg/transformers"
)

const RecurringPipeline = "recurring"

// Recurring copies the relational product snapshot into the document store.
// Every run appends a full copy; nothing is deduplicated against earlier runs.
type Recurring struct {
	source   contracts.Source
	sink     contracts.DocumentSink
	settings settings
}

var _ Pipeline = (*Recurring)(nil)

func NewRecurring(source contracts.Source, sink contracts.DocumentSink, opts ...Option) *Recurring {
	return &Recurring{source: source, sink: sink, settings: applyOptions(opts)}
}

func (p *Recurring) Name() string {
	return RecurringPipeline
}

// Run extracts the whole join, transforms the whole table and only then
// loads it. Source and sink are closed before Run returns.
func (p *Recurring) Run(ctx context.Context) (run *Run, err error) {
	s := p.settings
	run = newRun(RecurringPipeline)
	s.start(run)
	defer func() {
		s.closeAll(run, p.source, p.sink)
		s.finish(ctx, run, err)
	}()

	if err := p.source.Setup(ctx); err != nil {
		return run, run.fail(StepExtract, err)
	}
	records, err := p.source.Extract(ctx)
	if err != nil {
		return run, run.fail(StepExtract, err)
	}
	run.Summary.Extracted = len(records)
	s.advance(run, StageExtracted)

	transformed, stats, err := transformers.TransformAll(ctx, records)
	if err != nil {
		return run, run.fail(StepTransform, err)
	}
	run.Summary.Transformed = len(transformed)
	run.Summary.addCleaning(stats)
	s.warnNulled(run)
	s.advance(run, StageTransformed)

	if err := p.sink.Setup(ctx); err != nil {
		return run, run.fail(StepLoad, err)
	}
	for _, batch := range chunks(transformed, s.batchSize) {
		if err := p.sink.StoreBatch(ctx, batch); err != nil {
			return run, run.fail(StepLoad, err)
		}
		run.Summary.Loaded += len(batch)
	}
	run.Summary.Documents = run.Summary.Loaded
	s.advance(run, StageLoaded)
	s.logger.Info().
		Str("run_id", run.ID).
		Int("documents", run.Summary.Documents).
		Msg("snapshot appended; earlier copies in the collection are kept")
	return run, nil
}
