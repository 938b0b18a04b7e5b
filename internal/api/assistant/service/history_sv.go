package assistantService

import (
	"SuperApp/internal/api/assistant"
	"context"
)

// History returns the display view of the log, or the whole log when all is
// set. Total always counts every entry.
func (s *assistantService) History(ctx context.Context, sessionID string, all bool) (*assistant.HistoryResponse, error) {
	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	limit := s.config.DisplayLimit
	if all {
		limit = 0
	}

	commands, err := sess.store.History.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	return &assistant.HistoryResponse{
		Commands: commands,
		Total:    sess.store.History.Count(ctx),
		Limit:    limit,
	}, nil
}
