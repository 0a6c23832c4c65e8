package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/silomba/backend/internal/metrics"
	"github.com/silomba/backend/internal/storage"
	"github.com/silomba/backend/pkg/logger"
)

const cleanupTimeout = 30 * time.Second

// CleanupService removes replaced or orphaned poster files after the database
// write that detached them has succeeded. Failures never reach the caller;
// they are logged and counted.
type CleanupService struct {
	store storage.PosterStore

	queue  chan string
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewCleanupService(store storage.PosterStore, bufferSize int) *CleanupService {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	s := &CleanupService{
		store: store,
		queue: make(chan string, bufferSize),
	}
	s.wg.Add(1)
	go s.processQueue()
	return s
}

// Enqueue schedules removal of the poster referenced by posterURL.
func (s *CleanupService) Enqueue(posterURL string) {
	if s == nil || posterURL == "" {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}

	select {
	case s.queue <- posterURL:
	default:
		metrics.CleanupQueueDropped.Inc()
		logger.Warn("poster_cleanup_queue_full", map[string]interface{}{
			"poster":  posterURL,
			"dropped": true,
		})
	}
}

func (s *CleanupService) processQueue() {
	defer s.wg.Done()
	for posterURL := range s.queue {
		s.remove(posterURL)
	}
}

func (s *CleanupService) remove(posterURL string) {
	name, ok := storage.NameFromURL(posterURL)
	if !ok {
		logger.Warn("poster_cleanup_skipped", map[string]interface{}{
			"poster": posterURL,
			"reason": "not a stored poster",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	err := s.store.Delete(ctx, name)
	switch {
	case err == nil:
		logger.Info("poster_cleanup_done", map[string]interface{}{
			"poster": posterURL,
		})
	case errors.Is(err, storage.ErrNotFound):
		logger.Warn("poster_cleanup_missing", map[string]interface{}{
			"poster": posterURL,
		})
	default:
		metrics.PosterCleanupFailures.Inc()
		logger.Error("poster_cleanup_failed", err, map[string]interface{}{
			"poster": posterURL,
		})
	}
}

// Close stops accepting work and waits for queued removals to finish.
func (s *CleanupService) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.wg.Wait()
}
