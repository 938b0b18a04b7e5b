package scheduler

import (
	"sync"
	"time"
)

type IScheduler interface {
	Schedule(key string, delay time.Duration, fn func()) bool
	Cancel(key string) bool
	Pending() int
	Stop()
}

type task struct {
	timer *time.Timer
	seq   uint64
}

// Scheduler runs delayed tasks keyed by id. Scheduling a key that already has
// a pending task replaces it; a task removes itself once it has run.
type Scheduler struct {
	mu      sync.Mutex
	tasks   map[string]*task
	seq     uint64
	stopped bool
}

func New() *Scheduler {
	return &Scheduler{
		tasks: make(map[string]*task),
	}
}

// Schedule returns false once the scheduler is stopped.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}

	if existing, ok := s.tasks[key]; ok {
		existing.timer.Stop()
	}

	s.seq++
	t := &task{seq: s.seq}
	t.timer = time.AfterFunc(delay, func() {
		if !s.release(key, t.seq) {
			return
		}
		fn()
	})
	s.tasks[key] = t

	return true
}

// release drops the task entry and reports whether it is still the current
// task for key, so a stopped-but-already-fired timer does not run.
func (s *Scheduler) release(key string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tasks[key]
	if !ok || current.seq != seq {
		return false
	}
	delete(s.tasks, key)
	return true
}

func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[key]
	if !ok {
		return false
	}
	t.timer.Stop()
	delete(s.tasks, key)
	return true
}

func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.tasks {
		t.timer.Stop()
		delete(s.tasks, key)
	}
	s.stopped = true
}
