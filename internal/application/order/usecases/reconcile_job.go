package usecases

import "context"

// ReconcileJob adapts the pending-order reconcile pass to the
// scheduler's batch job shape.
type ReconcileJob struct {
	uc *ReconcileOrdersUseCase
}

func NewReconcileJob(uc *ReconcileOrdersUseCase) *ReconcileJob {
	return &ReconcileJob{uc: uc}
}

func (j *ReconcileJob) Execute(ctx context.Context) (int, error) {
	result, err := j.uc.Execute(ctx, ReconcileOrdersCommand{})
	if err != nil {
		return 0, err
	}
	return result.NewlyApproved, nil
}
