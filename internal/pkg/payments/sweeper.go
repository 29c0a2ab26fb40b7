package payments

import (
	"context"
	"sync"
	"time"

	"github.com/FelixKnapp/ShopFox/internal/pkg/cache"
	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

const (
	sweepBatchSize = 50
	sweepLockKey   = "webhook_sweep_lock"
	sweepLockTTL   = 2 * time.Minute
)

// Sweeper periodically redrives pending webhook events through the shared
// state machine path. It carries no business logic of its own: selecting
// candidates and invoking Service.ProcessEvent is all it does.
type Sweeper struct {
	svc      *Service
	repo     Repository
	cache    *redis.Client
	interval time.Duration
	ticker   *time.Ticker
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
}

// NewSweeper creates a sweeper. cacheClient may be nil; the cross-instance
// sweep lock is then skipped.
func NewSweeper(svc *Service, repo Repository, cacheClient *redis.Client, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	return &Sweeper{
		svc:      svc,
		repo:     repo,
		cache:    cacheClient,
		interval: interval,
	}
}

// Start launches the background sweep loop.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.stopCh = make(chan struct{})
	s.running = true
	s.ticker = time.NewTicker(s.interval)

	s.wg.Add(1)
	go s.run()

	log.Infof("[Sweeper] Started (interval: %s)", s.interval)
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.ticker.Stop()
	close(s.stopCh)
	s.running = false
	s.wg.Wait()
	log.Info("[Sweeper] Stopped")
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopCh:
			return
		case <-s.ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.interval)
			if _, err := s.SweepOnce(ctx); err != nil {
				log.Errorf("[Sweeper] sweep failed: %v", err)
			}
			cancel()
		}
	}
}

// SweepOnce scans pending events oldest-first and redrives each one.
// Processing errors are already recorded on the rows; the sweep itself
// only fails when the candidate scan does. Returns the number of events
// attempted.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	if s.cache != nil {
		if !cache.AcquireLock(ctx, s.cache, sweepLockKey, sweepLockTTL) {
			log.Debug("[Sweeper] another instance is sweeping, skipping")
			return 0, nil
		}
		defer cache.ReleaseLock(ctx, s.cache, sweepLockKey)
	}

	events, err := s.repo.ListPendingEvents(sweepBatchSize)
	if err != nil {
		return 0, err
	}

	attempted := 0
	for i := range events {
		select {
		case <-ctx.Done():
			return attempted, ctx.Err()
		default:
		}

		event := &events[i]
		attempted++
		if err := s.svc.ProcessEvent(ctx, event); err != nil {
			log.Warnf("[Sweeper] event %s attempt %d failed: %v",
				event.GatewayEventID, event.RetryCount+1, err)
		}
	}

	if err := s.repo.SetLastSweepAt(time.Now()); err != nil {
		log.Warnf("[Sweeper] could not persist last run timestamp: %v", err)
	}

	if attempted > 0 {
		log.Infof("[Sweeper] redrove %d pending event(s)", attempted)
	}
	return attempted, nil
}
