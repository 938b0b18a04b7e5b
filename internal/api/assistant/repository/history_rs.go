package assistantRepository

import (
	"SuperApp/internal/api/assistant"
	"SuperApp/internal/entity"
	contextPkg "SuperApp/pkg/context"
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// historyRepository is the command history log. Entries keep insertion order
// and are only ever mutated in place by id.
type historyRepository struct {
	mu       sync.RWMutex
	commands []entity.Command
	index    map[string]int
	log      *logrus.Logger
}

func newHistoryRepository(log *logrus.Logger) *historyRepository {
	return &historyRepository{
		index: make(map[string]int),
		log:   log,
	}
}

func (r *historyRepository) Append(ctx context.Context, cmd entity.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[cmd.ID]; exists {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"command_id": cmd.ID,
		}).Warn("Command already in history")
		return assistant.ErrDuplicateID
	}

	r.index[cmd.ID] = len(r.commands)
	r.commands = append(r.commands, cmd)

	return nil
}

// Update replaces a stored command. Status only moves forward, and a
// completed or failed entry is never touched again.
func (r *historyRepository) Update(ctx context.Context, cmd entity.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.index[cmd.ID]
	if !ok {
		return assistant.ErrCommandNotFound
	}

	current := r.commands[pos]
	if current.Status.IsTerminal() {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"command_id": cmd.ID,
			"status":     current.Status,
		}).Warn("Refusing to update finalized command")
		return assistant.ErrCommandFinalized
	}

	if !current.Status.CanAdvanceTo(cmd.Status) {
		return assistant.ErrInvalidStatusChange
	}

	cmd.CreatedAt = current.CreatedAt
	if cmd.UpdatedAt.IsZero() {
		cmd.UpdatedAt = time.Now()
	}
	r.commands[pos] = cmd

	return nil
}

func (r *historyRepository) Get(_ context.Context, id string) (entity.Command, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, ok := r.index[id]
	if !ok {
		return entity.Command{}, assistant.ErrCommandNotFound
	}
	return r.commands[pos], nil
}

// List returns the newest limit entries, oldest first. A limit <= 0 returns
// the whole log.
func (r *historyRepository) List(_ context.Context, limit int) ([]entity.Command, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := 0
	if limit > 0 && len(r.commands) > limit {
		start = len(r.commands) - limit
	}

	out := make([]entity.Command, len(r.commands)-start)
	copy(out, r.commands[start:])
	return out, nil
}

func (r *historyRepository) Count(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}
