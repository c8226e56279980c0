package runner

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/hitsheet/packages/auth"
	"github.com/abdul-hamid-achik/hitsheet/packages/core/config"
	"github.com/abdul-hamid-achik/hitsheet/packages/executor"
)

// Stage names a pipeline step.
type Stage string

const (
	StageConfig    Stage = "config"
	StageAuth      Stage = "auth"
	StageWorkbook  Stage = "workbook"
	StageWrite     Stage = "write"
	StageExecute   Stage = "execute"
	StageReconcile Stage = "reconcile"
	StageSave      Stage = "save"
)

// StageError wraps the error that stopped a run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// IsConfigError reports whether err comes from configuration or authentication.
func IsConfigError(err error) bool {
	var se *StageError
	if errors.As(err, &se) && (se.Stage == StageConfig || se.Stage == StageAuth) {
		return true
	}
	var ae *auth.Error
	return errors.Is(err, config.ErrMissingExcelPath) || errors.As(err, &ae)
}

// IsRunnerError reports whether err comes from executing the collection.
func IsRunnerError(err error) bool {
	var se *StageError
	if errors.As(err, &se) && se.Stage == StageExecute {
		return true
	}
	return errors.Is(err, executor.ErrNoReport)
}
