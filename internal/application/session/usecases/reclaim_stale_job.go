package usecases

import "context"

// ReclaimStaleJob adapts the reclaim use case to the scheduler's batch
// job shape.
type ReclaimStaleJob struct {
	uc *ReclaimStaleUseCase
}

func NewReclaimStaleJob(uc *ReclaimStaleUseCase) *ReclaimStaleJob {
	return &ReclaimStaleJob{uc: uc}
}

func (j *ReclaimStaleJob) Execute(ctx context.Context) (int, error) {
	result, err := j.uc.Execute(ctx, ReclaimStaleCommand{})
	if err != nil {
		return 0, err
	}
	return int(result.Reclaimed), nil
}
