package notification

import "context"

// RetryJob adapts the retry queue pass to the scheduler's batch job
// shape.
type RetryJob struct {
	notifier     *Notifier
	adminAddress string
}

func NewRetryJob(notifier *Notifier, adminAddress string) *RetryJob {
	return &RetryJob{
		notifier:     notifier,
		adminAddress: adminAddress,
	}
}

func (j *RetryJob) Execute(ctx context.Context) (int, error) {
	result, err := j.notifier.ProcessRetryQueue(ctx, j.adminAddress)
	if err != nil {
		return 0, err
	}
	return result.Sent + result.Retried + result.Dropped + result.Escalated, nil
}
