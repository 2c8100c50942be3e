// services/scheduler.go
package services

import (
	"log"
	"time"

	"award-nomination-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartRecomputeScheduler refreshes judge totals for every category on a
// timer. RecomputeTotals is idempotent, so overlapping or missed runs are
// harmless; the schedule only keeps totals from drifting as nominations
// enter review.
func (s *JudgeService) StartRecomputeScheduler(interval time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			for _, cat := range models.AwardCategories {
				if err := s.RecomputeTotals(cat); err != nil {
					log.Printf("[Scheduler] recompute totals failed for %q: %v", cat, err)
				}
			}
		}),
	)
}
