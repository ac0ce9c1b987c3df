package jobs

import "fmt"

// JobManager coordinates the scheduled jobs: daily billing reconciliation,
// slot horizon generation and booking reminders.
type JobManager struct {
	billing   *BillingJob
	slots     *SlotsJob
	reminders *ReminderJob
}

func NewJobManager(
	billing *BillingJob,
	slots *SlotsJob,
	reminders *ReminderJob,
) *JobManager {
	return &JobManager{
		billing:   billing,
		slots:     slots,
		reminders: reminders,
	}
}

func (jm *JobManager) StartAll() error {
	if err := jm.billing.Start(); err != nil {
		return fmt.Errorf("failed to start billing job: %w", err)
	}

	if err := jm.slots.Start(); err != nil {
		jm.billing.Stop()
		return fmt.Errorf("failed to start slots job: %w", err)
	}

	if err := jm.reminders.Start(); err != nil {
		jm.billing.Stop()
		jm.slots.Stop()
		return fmt.Errorf("failed to start reminder job: %w", err)
	}

	return nil
}

func (jm *JobManager) StopAll() {
	jm.reminders.Stop()
	jm.slots.Stop()
	jm.billing.Stop()
}
