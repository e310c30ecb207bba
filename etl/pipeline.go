package etl

import (
	"context"

	"github.com/oarkflow/productetl/pkg/utils"
)

// Pipeline is one end-to-end run over fixed collaborators.
type Pipeline interface {
	Name() string
	Run(ctx context.Context) (*Run, error)
}

func (s settings) advance(run *Run, stage Stage) {
	run.Stage = stage
	s.logger.Info().Str("run_id", run.ID).Str("pipeline", run.Pipeline).Str("stage", string(stage)).Msg("stage complete")
	s.events.Publish(EventStageChanged, run)
}

func (s settings) start(run *Run) {
	s.logger.Info().Str("run_id", run.ID).Str("pipeline", run.Pipeline).Msg("run started")
	s.events.Publish(EventRunStarted, run)
}

// finish records the outcome of run. err is the already wrapped stage error.
func (s settings) finish(ctx context.Context, run *Run, err error) {
	if err != nil {
		s.logger.Error().Err(err).Str("run_id", run.ID).Str("pipeline", run.Pipeline).Str("step", string(run.FailedStep)).Msg("run failed")
		s.events.Publish(EventRunFailed, run)
	} else {
		run.finish()
		s.logger.Info().
			Str("run_id", run.ID).
			Str("pipeline", run.Pipeline).
			Dur("duration", run.Duration()).
			Any("summary", run.Summary).
			Msg("run finished")
		s.events.Publish(EventRunFinished, run)
	}
	if s.store != nil {
		if serr := s.store.Save(ctx, run); serr != nil {
			s.logger.Warn().Err(serr).Str("run_id", run.ID).Msg("could not persist run record")
		}
	}
}

func (s settings) warnNulled(run *Run) {
	if run.Summary.NulledNumerics == 0 && run.Summary.NulledDates == 0 {
		return
	}
	s.logger.Warn().
		Str("run_id", run.ID).
		Int("nulled_numerics", run.Summary.NulledNumerics).
		Int("nulled_dates", run.Summary.NulledDates).
		Msg("malformed values replaced with null")
}

// chunks splits records into consecutive slices of at most size elements.
func chunks(records []utils.Record, size int) [][]utils.Record {
	if size <= 0 || len(records) <= size {
		if len(records) == 0 {
			return nil
		}
		return [][]utils.Record{records}
	}
	out := make([][]utils.Record, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		out = append(out, records[start:end])
	}
	return out
}

type closer interface {
	Close() error
}

// closeAll closes every collaborator and logs failures; the run's own error
// takes precedence over close errors.
func (s settings) closeAll(run *Run, cs ...closer) {
	for _, c := range cs {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			s.logger.Warn().Err(err).Str("run_id", run.ID).Msg("close failed")
		}
	}
}
