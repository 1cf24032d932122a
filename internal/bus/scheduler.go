package bus

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultDebounce is the auto-backup coalescing window.
const DefaultDebounce = 5 * time.Second

// Scheduler is the auto-backup subscriber: it coalesces bursts of
// collection changes within a debounce window into a single call to the
// flush function (typically an export to the configured backup file).
type Scheduler struct {
	mu       sync.Mutex
	timer    *time.Timer
	debounce time.Duration
	flush    func() error
	log      *zap.Logger
	stopped  bool
}

// NewScheduler subscribes a scheduler to the bus. A zero debounce selects
// DefaultDebounce.
func NewScheduler(b *Bus, debounce time.Duration, flush func() error, log *zap.Logger) *Scheduler {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scheduler{debounce: debounce, flush: flush, log: log}
	b.Subscribe(s.onEvent)
	return s
}

func (s *Scheduler) onEvent(Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.fire)
		return
	}
	s.timer.Reset(s.debounce)
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	if err := s.flush(); err != nil {
		s.log.Warn("auto-backup failed", zap.Error(err))
	}
}

// Stop cancels any pending flush. The scheduler ignores all events after
// Stop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
