package session

import (
	"context"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"
)

// Session bundles everything scoped to one signed-in facility: the store, the
// service, and teardown hooks. It is constructed once at startup and torn down
// on shutdown; nothing about it is ambient or global.
type Session struct {
	ID         string
	FacilityID string
	Store      *Store
	Service    *Service

	logger  log.Logger
	onClose []func()
}

// New creates a session for one facility with a fresh store and service.
func New(facilityID string, b Backend, logger log.Logger, m *Metrics, n Notifier) *Session {
	if logger == nil {
		logger = log.Nop()
	}
	store := NewStore()
	return &Session{
		ID:         ulid.Make().String(),
		FacilityID: facilityID,
		Store:      store,
		Service:    NewService(store, b, logger, m, n),
		logger:     logger,
	}
}

// OnClose registers a teardown hook, run in reverse registration order.
func (s *Session) OnClose(fn func()) {
	s.onClose = append(s.onClose, fn)
}

// Close tears the session down.
func (s *Session) Close(ctx context.Context) {
	for i := len(s.onClose) - 1; i >= 0; i-- {
		s.onClose[i]()
	}
	s.logger.Info(ctx, "session closed", "session_id", s.ID, "facility_id", s.FacilityID)
}
