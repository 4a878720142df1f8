package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/shakespr/cost-data-service/internal/costs"
)

// Scheduler periodically pre-warms the cache for tracked cities so that
// interactive lookups for popular destinations rarely pay for a live fetch.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *costs.Service
	cities    []costs.CityKey
	interval  time.Duration
}

// New creates a new Scheduler.
func New(cities []costs.CityKey, interval time.Duration, service *costs.Service) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		cities:    cities,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.cities) == 0 {
		log.Println("scheduler: no tracked cities configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(intervalMinutes(s.interval)).Minutes().Do(func() {
		log.Println("scheduler: running cost pre-warm job")

		// Cities are refreshed one at a time: the source sees at most one
		// request from this process, and fresh cities cost a single store read.
		for _, city := range s.cities {
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			if _, err := s.service.GetOrRefresh(ctx, city.Name, city.Country); err != nil {
				log.Printf("scheduler: refresh failed for %s: %v", city, err)
			}
			cancel()
		}
		log.Println("scheduler: completed cost pre-warm job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// intervalMinutes converts the refresh interval to whole minutes, falling back
// to daily for intervals under a minute.
func intervalMinutes(d time.Duration) int {
	minutes := int(d.Minutes())
	if minutes <= 0 {
		return 24 * 60
	}
	return minutes
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
