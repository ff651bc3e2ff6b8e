// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartExpiryScheduler sweeps pending gateway payments every minute and
// cancels anything older than the gateway's 30-minute transaction expiry.
func (s *PaymentService) StartExpiryScheduler() {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("[Scheduler] failed to start payment expiry sweep: %v", err)
		return
	}
	sched.Start()

	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			cutoff := time.Now().Add(-30 * time.Minute)
			n, err := s.ExpireStalePayments(cutoff)
			if err != nil {
				log.Printf("[Scheduler] payment expiry sweep failed: %v", err)
				return
			}
			if n > 0 {
				log.Printf("✅ Cancelled %d expired pending payments", n)
			}
		}),
	)
	if err != nil {
		log.Printf("[Scheduler] failed to schedule payment expiry sweep: %v", err)
	}
}
