package jobs

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	ucsubscription "github.com/motmatch/mot-marketplace/internal/usecase/subscription"
)

// BillingJob runs the daily subscription reconciliation at 03:00.
type BillingJob struct {
	reconcile *ucsubscription.Reconcile
	cron      *cron.Cron
}

func NewBillingJob(reconcile *ucsubscription.Reconcile) *BillingJob {
	return &BillingJob{
		reconcile: reconcile,
		cron:      cron.New(),
	}
}

func (j *BillingJob) Start() error {
	_, err := j.cron.AddFunc("0 3 * * *", func() {
		if err := j.reconcile.Execute(context.Background()); err != nil {
			log.Printf("billing reconciliation failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	log.Println("billing reconciliation job started (daily 03:00)")
	return nil
}

func (j *BillingJob) Stop() {
	j.cron.Stop()
}
