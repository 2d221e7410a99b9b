package warrantyagent

import (
	"fmt"

	"github.com/pkg/errors"
)

// Stage names the pipeline step a fatal error came from.
type Stage string

const (
	StageIdentity      Stage = "identity"
	StageSession       Stage = "session"
	StageForm          Stage = "form"
	StageProductNumber Stage = "product_number"
	StageExtract       Stage = "extract"
	StageNormalize     Stage = "normalize"
	StagePersist       Stage = "persist"
)

// ErrUnsupportedVendor ends the run quietly on non-HP hardware.
var ErrUnsupportedVendor = errors.New("warrantyagent: host is not an expected vendor machine")

// StageError attributes a fatal error to the stage that raised it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage recorded in err, or "" when err carries none.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
