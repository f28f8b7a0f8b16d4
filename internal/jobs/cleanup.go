package jobs

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Pruner drops stale entries and reports how many were removed.
type Pruner func() int

// CleanupJob periodically evicts stale in-memory state: abandoned
// matchmaking waiters and idle frame throttle entries.
type CleanupJob struct {
	pruners  map[string]Pruner
	interval time.Duration
	done     chan struct{}
}

func NewCleanupJob(interval time.Duration) *CleanupJob {
	return &CleanupJob{
		pruners:  make(map[string]Pruner),
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Register adds a named pruner. All registration happens before Start.
func (j *CleanupJob) Register(name string, fn Pruner) {
	j.pruners[name] = fn
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	for name, fn := range j.pruners {
		j.runCleanup(name, fn)
	}
}

func (j *CleanupJob) runCleanup(name string, fn Pruner) {
	if count := fn(); count > 0 {
		log.Info().Int("count", count).Msgf("cleaned up %s", name)
	}
}
