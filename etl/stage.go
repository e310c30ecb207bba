package etl

import (
	"fmt"
)

// Stage is the externally visible progress of one pipeline run.
type Stage string

const (
	StageNotStarted  Stage = "not_started"
	StageExtracted   Stage = "extracted"
	StageTransformed Stage = "transformed"
	StageLoaded      Stage = "loaded"
	StageFailed      Stage = "failed"
)

// Step names the unit of work a StageError was raised from.
type Step string

const (
	StepExtract   Step = "extract"
	StepTransform Step = "transform"
	StepLoad      Step = "load"
)

// StageError reports the step that aborted a run and the last stage the
// run had completed before it.
type StageError struct {
	Step      Step
	Completed Stage
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed after stage %s: %v", e.Step, e.Completed, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
