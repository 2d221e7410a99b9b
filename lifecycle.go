package warrantyagent

// Callbacks are optional hooks invoked during Run.
type Callbacks struct {
	OnStageStarted func(stage Stage)
	OnResult       func(res *WarrantyResult, err error)
}

func (c Callbacks) stageStarted(stage Stage) {
	if c.OnStageStarted != nil {
		c.OnStageStarted(stage)
	}
}

func (c Callbacks) result(res *WarrantyResult, err error) {
	if c.OnResult != nil {
		c.OnResult(res, err)
	}
}
