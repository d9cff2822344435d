package session

import (
	"context"

	"github.com/kapu/attendee-profile-web/internal/constants"
	"github.com/kapu/attendee-profile-web/internal/domain"
)

// Store persists SessionState per (session id, short_id). Implementations must
// never persist SessionState.Pin; the JSON encoding of domain.SessionState
// already omits it.
type Store interface {
	// Load returns the stored state and true, or a zero state and false when
	// nothing is stored.
	Load(ctx context.Context, sessionID, shortID string) (domain.SessionState, bool, error)
	Save(ctx context.Context, sessionID string, state domain.SessionState) error
	Ping(ctx context.Context) error
	Close() error
}

func storageKey(sessionID, shortID string) string {
	return constants.SessionConfig.KeyPrefix + sessionID + ":" + shortID
}
