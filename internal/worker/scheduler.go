package worker

import (
	"context"
	"log"
	"sync"
	"time"
)

// JobScheduler submits its registered jobs to a pool on a fixed interval.
type JobScheduler struct {
	Name   string
	Ticker *time.Ticker
	Jobs   []Job
	Pool   *WorkingPool
	mu     sync.RWMutex
}

func NewJobScheduler(name string, interval time.Duration, pool *WorkingPool) *JobScheduler {
	return &JobScheduler{
		Name:   name,
		Ticker: time.NewTicker(interval),
		Jobs:   make([]Job, 0),
		Pool:   pool,
	}
}

func (s *JobScheduler) AddJob(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Jobs = append(s.Jobs, job)
}

func (s *JobScheduler) Start(ctx context.Context) {
	log.Printf("[Scheduler %s] Started.\n", s.Name)
	defer s.Ticker.Stop()

	for {
		select {
		case <-s.Ticker.C:
			s.submitAll()
		case <-ctx.Done():
			log.Printf("[Scheduler %s] Context canceled. Exiting.\n", s.Name)
			return
		}
	}
}

func (s *JobScheduler) submitAll() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, job := range s.Jobs {
		s.Pool.SubmitJob(job)
	}
}
