package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/oarkflow/json"
	"github.com/oarkflow/log"
	"github.com/urfave/cli/v2"

	"github.com/oarkflow/productetl/etl"
	"github.com/oarkflow/productetl/pkg/adapters/fileadapter"
	"github.com/oarkflow/productetl/pkg/adapters/ioadapter"
	"github.com/oarkflow/productetl/pkg/adapters/memadapter"
	"github.com/oarkflow/productetl/pkg/adapters/nosqladapter"
	"github.com/oarkflow/productetl/pkg/adapters/sqladapter"
	"github.com/oarkflow/productetl/pkg/config"
	"github.com/oarkflow/productetl/pkg/contracts"
	"github.com/oarkflow/productetl/pkg/scheduler"
)

var logger = &log.DefaultLogger

func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.Load(c.String("config"))
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// pipelineOptions keeps dry-run history in memory so a dry run never
// appears in the history directory.
func pipelineOptions(cfg *config.Config, t targets, out io.Writer) ([]etl.Option, error) {
	opts := []etl.Option{
		etl.WithLogger(logger),
		etl.WithProgress(out),
		etl.WithBatchSize(cfg.Seed.BatchSize),
	}
	switch {
	case t.dryRun:
		opts = append(opts, etl.WithRunStore(etl.NewMemoryRunStore()))
	case cfg.Schedule.HistoryDir != "":
		store, err := etl.NewFileRunStore(cfg.Schedule.HistoryDir)
		if err != nil {
			return nil, fmt.Errorf("open run history: %w", err)
		}
		opts = append(opts, etl.WithRunStore(store))
	}
	return opts, nil
}

type targets struct {
	dryRun       bool
	documentsOut string
}

func targetsFrom(c *cli.Context) targets {
	return targets{dryRun: c.Bool("dry-run"), documentsOut: c.String("documents-out")}
}

func (t targets) documentSink(cfg *config.Config) (contracts.DocumentSink, error) {
	switch {
	case t.documentsOut != "":
		return ioadapter.Open(t.documentsOut)
	case t.dryRun:
		return memadapter.NewDocumentStore(), nil
	}
	return nosqladapter.New(cfg.Mongo, logger), nil
}

// recurringPipeline opens the source database. The pipeline closes both
// collaborators when it returns.
func recurringPipeline(cfg *config.Config, t targets, opts []etl.Option) (*etl.Recurring, error) {
	var source contracts.Source
	if t.dryRun {
		source = memadapter.NewRelationalStore()
	} else {
		db, err := sqladapter.Open(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		src, err := sqladapter.NewSource(db, cfg.Postgres.Driver)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		source = src
	}
	sink, err := t.documentSink(cfg)
	if err != nil {
		_ = source.Close()
		return nil, err
	}
	return etl.NewRecurring(source, sink, opts...), nil
}

func runRecurring(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	t := targetsFrom(c)
	opts, err := pipelineOptions(cfg, t, c.App.Writer)
	if err != nil {
		return err
	}
	p, err := recurringPipeline(cfg, t, opts)
	if err != nil {
		return err
	}
	ctx, stop := signalContext(c.Context)
	defer stop()
	run, err := p.Run(ctx)
	return report(c, run, err)
}

func runSeed(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if f := c.String("file"); f != "" {
		cfg.Seed.File = f
	}
	if s := c.String("sheet"); s != "" {
		cfg.Seed.Sheet = s
	}
	if c.Bool("no-truncate") {
		cfg.Seed.SkipTruncate = true
	}
	if c.Bool("auto-create") {
		cfg.Seed.AutoCreate = true
	}
	t := targetsFrom(c)
	opts, err := pipelineOptions(cfg, t, c.App.Writer)
	if err != nil {
		return err
	}
	opts = append(opts, etl.WithTruncate(!cfg.Seed.SkipTruncate))

	var relational contracts.RelationalSink
	if t.dryRun {
		relational = memadapter.NewRelationalStore()
	} else {
		db, err := sqladapter.Open(cfg.Postgres)
		if err != nil {
			return err
		}
		loader, err := sqladapter.NewLoader(db, cfg.Postgres.Driver,
			sqladapter.WithAutoCreate(cfg.Seed.AutoCreate),
			sqladapter.WithBatchSize(cfg.Seed.BatchSize),
			sqladapter.WithLogger(logger),
		)
		if err != nil {
			_ = db.Close()
			return err
		}
		relational = loader
	}
	documents, err := t.documentSink(cfg)
	if err != nil {
		_ = relational.Close()
		return err
	}
	reader := fileadapter.New(cfg.Seed.File, cfg.Seed.Sheet)

	ctx, stop := signalContext(c.Context)
	defer stop()
	run, err := etl.NewSeed(reader, relational, documents, opts...).Run(ctx)
	return report(c, run, err)
}

func runSchedule(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := scheduler.Validate(cfg.Schedule.Spec); err != nil {
		return err
	}
	t := targetsFrom(c)
	opts, err := pipelineOptions(cfg, t, c.App.Writer)
	if err != nil {
		return err
	}
	job := func(ctx context.Context) error {
		// Every attempt opens fresh handles; the previous attempt closed its own.
		p, err := recurringPipeline(cfg, t, opts)
		if err != nil {
			return err
		}
		run, err := p.Run(ctx)
		if err != nil {
			return err
		}
		logger.Info().Str("run_id", run.ID).Int("documents", run.Summary.Documents).Msg("scheduled run complete")
		return nil
	}
	s := scheduler.New(cfg.Schedule.Spec, job,
		scheduler.WithRetryPolicy(scheduler.RetryPolicy{
			Retries: cfg.Schedule.Retries,
			Delay:   cfg.Schedule.RetryDelay,
		}),
		scheduler.WithLockFile(cfg.Schedule.LockFile),
		scheduler.WithLogger(logger),
	)
	ctx, stop := signalContext(c.Context)
	defer stop()
	return s.Run(ctx)
}

func listHistory(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Schedule.HistoryDir == "" {
		return fmt.Errorf("no history directory configured (schedule.history_dir)")
	}
	store, err := etl.NewFileRunStore(cfg.Schedule.HistoryDir)
	if err != nil {
		return err
	}
	runs, err := store.List(c.Context)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, runs)
	}
	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPIPELINE\tSTAGE\tSTARTED\tDURATION\tERROR")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			run.ID, run.Pipeline, run.Stage, run.StartedAt.Format("2006-01-02 15:04:05"), run.Duration(), run.Error)
	}
	return w.Flush()
}

func printConfig(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, cfg.Redacted())
	}
	data, err := cfg.YAML()
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(data)
	return err
}

func report(c *cli.Context, run *etl.Run, err error) error {
	if run != nil && c.Bool("json") {
		if werr := writeJSON(c.App.Writer, run); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
