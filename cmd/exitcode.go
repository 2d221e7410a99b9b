package main

import (
	"github.com/pkg/errors"

	warrantyagent "github.com/httprunner/WarrantyAgent"
)

// Process exit codes. An unsupported vendor is a normal exit.
const (
	exitOK            = 0
	exitOther         = 1
	exitConfig        = 2
	exitIdentity      = 3
	exitSession       = 4
	exitForm          = 5
	exitProductNumber = 6
	exitExtract       = 7
	exitNormalize     = 8
	exitPersist       = 9
)

var stageExitCodes = map[warrantyagent.Stage]int{
	warrantyagent.StageIdentity:      exitIdentity,
	warrantyagent.StageSession:       exitSession,
	warrantyagent.StageForm:          exitForm,
	warrantyagent.StageProductNumber: exitProductNumber,
	warrantyagent.StageExtract:       exitExtract,
	warrantyagent.StageNormalize:     exitNormalize,
	warrantyagent.StagePersist:       exitPersist,
}

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

func exitCodeFor(err error) int {
	if err == nil || errors.Is(err, warrantyagent.ErrUnsupportedVendor) {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if code, ok := stageExitCodes[warrantyagent.StageOf(err)]; ok {
		return code
	}
	return exitOther
}
