package jobs

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	ucschedule "github.com/motmatch/mot-marketplace/internal/usecase/schedule"
)

// SlotsJob extends the materialized slot horizon every night at 02:00.
type SlotsJob struct {
	generate *ucschedule.GenerateSlots
	cron     *cron.Cron
}

func NewSlotsJob(generate *ucschedule.GenerateSlots) *SlotsJob {
	return &SlotsJob{
		generate: generate,
		cron:     cron.New(),
	}
}

func (j *SlotsJob) Start() error {
	_, err := j.cron.AddFunc("0 2 * * *", func() {
		if err := j.generate.Execute(context.Background(), ucschedule.DefaultHorizonDays); err != nil {
			log.Printf("slot generation failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	log.Println("slot generation job started (daily 02:00)")
	return nil
}

func (j *SlotsJob) Stop() {
	j.cron.Stop()
}
