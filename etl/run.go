package etl

import (
	"time"

	"github.com/oarkflow/xid"

	"github.com/oarkflow/productetl/pkg/mappers"
	"github.com/oarkflow/productetl/pkg/transformers"
)

// Summary holds the counters reported at the end of a run.
type Summary struct {
	Extracted      int   `json:"extracted"`
	Transformed    int   `json:"transformed"`
	Loaded         int   `json:"loaded"`
	NulledNumerics int   `json:"nulled_numerics"`
	NulledDates    int   `json:"nulled_dates"`
	Products       int64 `json:"products"`
	Prices         int64 `json:"prices"`
	Sales          int64 `json:"sales"`
	SkippedRows    int64 `json:"skipped_rows"`
	NameCollisions int   `json:"name_collisions"`
	Unmapped       int   `json:"unmapped"`
	Documents      int   `json:"documents"`
}

func (s *Summary) addCleaning(st transformers.Stats) {
	s.NulledNumerics += st.NulledNumerics
	s.NulledDates += st.NulledDates
}

func (s *Summary) addMapping(st mappers.Stats) {
	s.NameCollisions += st.NameCollisions
	s.Unmapped += st.Unmapped
}

// Run is the record of a single pipeline execution. A run is driven by one
// goroutine; observers get copies through events.
type Run struct {
	ID         string     `json:"id"`
	Pipeline   string     `json:"pipeline"`
	Stage      Stage      `json:"stage"`
	FailedStep Step       `json:"failed_step,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Summary    Summary    `json:"summary"`
}

func newRun(pipeline string) *Run {
	return &Run{
		ID:        xid.New().String(),
		Pipeline:  pipeline,
		Stage:     StageNotStarted,
		StartedAt: time.Now(),
	}
}

// fail moves the run into the failed state and returns the wrapped error.
func (r *Run) fail(step Step, err error) error {
	serr := &StageError{Step: step, Completed: r.Stage, Err: err}
	r.Stage = StageFailed
	r.FailedStep = step
	r.Error = err.Error()
	r.finish()
	return serr
}

func (r *Run) finish() {
	now := time.Now()
	r.FinishedAt = &now
}

// Duration is zero until the run has finished.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
